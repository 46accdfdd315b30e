package chain

import "context"

// CallKind describes how a procedure is invoked.
type CallKind string

const (
	KindQuery        CallKind = "query"
	KindMutation     CallKind = "mutation"
	KindSubscription CallKind = "subscription"
)

// ValidKind reports whether kind is one of the supported call kinds.
func ValidKind(kind CallKind) bool {
	switch kind {
	case KindQuery, KindMutation, KindSubscription:
		return true
	}
	return false
}

// Next invokes the remainder of the chain. The supplied context flows to
// every downstream frame; a nil patch forwards the caller's Context
// unchanged, otherwise the patch is overlaid on it.
type Next func(ctx context.Context, patch Fields) Outcome

// Handler is the function a middleware unit executes. A handler that never
// calls next short-circuits the chain and its Outcome becomes the chain's
// Outcome. Calling next more than once is a programming error.
type Handler func(ctx context.Context, cc *Context, next Next) Outcome

// Terminal is the procedure handler at the end of a chain.
type Terminal func(ctx context.Context, cc *Context) (any, error)

// Unit is one named interceptor participating in a procedure chain.
// Instances are long lived and shared across concurrent calls; any mutable
// state held outside of Context must be synchronized by the unit itself.
type Unit interface {
	Name() string
	Handle(ctx context.Context, cc *Context, next Next) Outcome
}

// Extender is implemented by units that declare the context fields they add,
// so tooling can export the shape of the context each procedure receives.
type Extender interface {
	Extends() []FieldSpec
}

type unitFunc struct {
	name    string
	fields  []FieldSpec
	handler Handler
}

// NewUnit adapts a named handler function into a Unit. Declared fields are
// reported through the Extender interface for metadata export.
func NewUnit(name string, handler Handler, fields ...FieldSpec) Unit {
	return &unitFunc{name: name, fields: fields, handler: handler}
}

func (u *unitFunc) Name() string { return u.name }

func (u *unitFunc) Handle(ctx context.Context, cc *Context, next Next) Outcome {
	if u.handler == nil {
		return next(ctx, nil)
	}
	return u.handler(ctx, cc, next)
}

func (u *unitFunc) Extends() []FieldSpec {
	return cloneFieldSpecs(u.fields)
}

// UnitFields returns the declared context extension shape for a unit, or
// nil when the unit does not declare one.
func UnitFields(unit Unit) []FieldSpec {
	if ext, ok := unit.(Extender); ok {
		return ext.Extends()
	}
	return nil
}
