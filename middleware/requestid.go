package middleware

import (
	"context"

	"github.com/goliatone/go-chain"
	"github.com/google/uuid"
)

// RequestIDField carries the request id the RequestID unit attaches to the
// context for downstream correlation.
var RequestIDField = chain.NewField[string]("requestId", "correlates the call across services")

// RequestID propagates the incoming request id header into the context,
// generating one when the caller did not supply it.
type RequestID struct {
	header string
}

// RequestIDOption customizes the request id unit.
type RequestIDOption func(*RequestID)

// WithRequestIDHeader overrides the header the id is read from.
func WithRequestIDHeader(name string) RequestIDOption {
	return func(m *RequestID) {
		if name != "" {
			m.header = name
		}
	}
}

// NewRequestID builds a request id unit reading "x-request-id" by default.
func NewRequestID(opts ...RequestIDOption) *RequestID {
	m := &RequestID{header: "x-request-id"}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

func (m *RequestID) Name() string { return "requestid" }

func (m *RequestID) Extends() []chain.FieldSpec {
	return []chain.FieldSpec{RequestIDField.Spec()}
}

func (m *RequestID) Handle(ctx context.Context, cc *chain.Context, next chain.Next) chain.Outcome {
	id := cc.Header(m.header)
	if id == "" {
		id = uuid.NewString()
	}
	return next(ctx, RequestIDField.Patch(id))
}
