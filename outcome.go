package chain

import (
	stderrors "errors"
	"time"

	apperrors "github.com/goliatone/go-errors"
)

// Meta carries identity and timing for one chain execution. Duration spans
// everything downstream of the executor, terminal handler included.
type Meta struct {
	Procedure string        `json:"procedure"`
	Kind      CallKind      `json:"kind"`
	CallID    string        `json:"callId,omitempty"`
	StartedAt time.Time     `json:"startedAt,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// Outcome is the discriminated result of running a chain: success with a
// value, or failure with a classified error. Exactly one of the two holds;
// the executor guarantees every call settles into an Outcome.
type Outcome struct {
	value any
	err   error
	meta  Meta
}

// OK builds a success outcome carrying the terminal handler's value.
func OK(value any) Outcome {
	return Outcome{value: value}
}

// Fail builds a failure outcome. The error should carry a classification;
// the executor classifies anything that reaches it unclassified.
func Fail(err error) Outcome {
	if err == nil {
		return OK(nil)
	}
	return Outcome{err: err}
}

// Reject builds a voluntary rejection: a unit declines to call next and
// surfaces the given classification to the caller unchanged.
func Reject(code, message string) Outcome {
	return Outcome{
		err: apperrors.New(message, apperrors.CategoryBadInput).
			WithTextCode(code),
	}
}

// Ok reports whether the outcome is a success.
func (o Outcome) Ok() bool {
	return o.err == nil
}

// Value returns the success value. It is nil for failure outcomes.
func (o Outcome) Value() any {
	return o.value
}

// Err returns the classified error for failure outcomes.
func (o Outcome) Err() error {
	return o.err
}

// Classification returns the outcome's error classification code, or the
// empty string for success outcomes.
func (o Outcome) Classification() string {
	return Classification(o.err)
}

// Meta returns the execution metadata stamped by the executor.
func (o Outcome) Meta() Meta {
	return o.meta
}

// WithMeta returns a copy of the outcome carrying meta.
func (o Outcome) WithMeta(meta Meta) Outcome {
	o.meta = meta
	return o
}

// Classification extracts the text code from a classified error. It returns
// the empty string when err is nil or carries no classification.
func Classification(err error) string {
	if err == nil {
		return ""
	}
	var ge *apperrors.Error
	if stderrors.As(err, &ge) {
		return ge.TextCode
	}
	return ""
}
