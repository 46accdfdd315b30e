package chain

import (
	"strings"

	"github.com/google/uuid"
)

// Fields is an overlay of call scoped context values. Patches applied via
// Next merge into the current Context; the patch wins on key collision.
type Fields map[string]any

// Context is the call scoped data bag threaded through a chain. It is
// created fresh per incoming call from base request data and discarded when
// the call settles. Fields are append only by convention: a merge never
// removes values written by an earlier unit.
type Context struct {
	procedure string
	kind      CallKind
	callID    string
	headers   map[string]string
	input     any
	fields    Fields
}

// ContextOption customizes context construction.
type ContextOption func(*Context)

// WithHeaders seeds the context with transport headers. Keys are matched
// case insensitively.
func WithHeaders(headers map[string]string) ContextOption {
	return func(c *Context) {
		for k, v := range headers {
			c.headers[strings.ToLower(k)] = v
		}
	}
}

// WithInput attaches the transport decoded request payload.
func WithInput(input any) ContextOption {
	return func(c *Context) {
		c.input = input
	}
}

// WithCallID overrides the generated call identifier.
func WithCallID(id string) ContextOption {
	return func(c *Context) {
		c.callID = id
	}
}

// WithSeedFields preloads context fields before the first unit runs.
func WithSeedFields(fields Fields) ContextOption {
	return func(c *Context) {
		for k, v := range fields {
			c.fields[k] = v
		}
	}
}

// NewContext creates a fresh per call context. A call identifier is
// generated when none is supplied.
func NewContext(procedure string, kind CallKind, opts ...ContextOption) *Context {
	cc := &Context{
		procedure: procedure,
		kind:      kind,
		headers:   make(map[string]string),
		fields:    make(Fields),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cc)
		}
	}
	if cc.callID == "" {
		cc.callID = uuid.NewString()
	}
	return cc
}

// Procedure returns the path of the procedure this call targets.
func (c *Context) Procedure() string {
	if c == nil {
		return ""
	}
	return c.procedure
}

// Kind returns the call kind.
func (c *Context) Kind() CallKind {
	if c == nil {
		return ""
	}
	return c.kind
}

// CallID returns the per call identifier.
func (c *Context) CallID() string {
	if c == nil {
		return ""
	}
	return c.callID
}

// Input returns the transport decoded request payload.
func (c *Context) Input() any {
	if c == nil {
		return nil
	}
	return c.input
}

// Header returns the transport header for key, matching case insensitively.
func (c *Context) Header(key string) string {
	if c == nil {
		return ""
	}
	return c.headers[strings.ToLower(key)]
}

// Value returns the context field stored under name.
func (c *Context) Value(name string) (any, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.fields[name]
	return v, ok
}

// FieldNames returns the names of all fields currently set.
func (c *Context) FieldNames() []string {
	if c == nil || len(c.fields) == 0 {
		return nil
	}
	names := make([]string, 0, len(c.fields))
	for k := range c.fields {
		names = append(names, k)
	}
	return names
}

// Merge returns a context with patch overlaid on the receiver's fields.
// The receiver is never mutated; an empty patch returns the receiver.
func (c *Context) Merge(patch Fields) *Context {
	if c == nil || len(patch) == 0 {
		return c
	}

	fields := make(Fields, len(c.fields)+len(patch))
	for k, v := range c.fields {
		fields[k] = v
	}
	for k, v := range patch {
		fields[k] = v
	}

	next := *c
	next.fields = fields
	return &next
}
