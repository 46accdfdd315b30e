package chain

import "reflect"

// FieldSpec describes one context field a unit adds. It feeds metadata
// export and the chain-ctxgen tool, which synthesizes a named
// <UnitName>Context type from the declared shape.
type FieldSpec struct {
	Name   string `json:"name"`
	GoType string `json:"goType"`
	Doc    string `json:"doc,omitempty"`
}

// Field is a typed accessor for one context field. It pairs compile time
// typed reads and patches with the runtime Fields merge, so the context
// type a procedure handler sees accumulates across the resolved chain.
type Field[T any] struct {
	name string
	doc  string
}

// NewField declares a typed context field stored under name.
func NewField[T any](name string, doc ...string) Field[T] {
	f := Field[T]{name: name}
	if len(doc) > 0 {
		f.doc = doc[0]
	}
	return f
}

// Name returns the field's storage key.
func (f Field[T]) Name() string {
	return f.name
}

// Spec returns the declared shape of the field for metadata export.
func (f Field[T]) Spec() FieldSpec {
	return FieldSpec{
		Name:   f.name,
		GoType: reflect.TypeFor[T]().String(),
		Doc:    f.doc,
	}
}

// Patch builds a one entry overlay assigning value to the field.
func (f Field[T]) Patch(value T) Fields {
	return Fields{f.name: value}
}

// From reads the field from the context. The second return is false when
// the field is absent or holds a different type.
func (f Field[T]) From(cc *Context) (T, bool) {
	var zero T
	if cc == nil {
		return zero, false
	}
	raw, ok := cc.Value(f.name)
	if !ok {
		return zero, false
	}
	value, ok := raw.(T)
	if !ok {
		return zero, false
	}
	return value, true
}

func cloneFieldSpecs(specs []FieldSpec) []FieldSpec {
	if len(specs) == 0 {
		return nil
	}
	out := make([]FieldSpec, len(specs))
	copy(out, specs)
	return out
}
