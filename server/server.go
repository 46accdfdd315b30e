// Package server is the registration façade around the chain engine: it
// holds router and procedure declarations, resolves and memoizes each
// procedure's middleware chain, and produces one Outcome per incoming call.
package server

import (
	"context"
	"io"
	"sort"
	"sync"

	"github.com/goccy/go-json"
	"github.com/goliatone/go-chain"
	"github.com/goliatone/go-chain/executor"
	"github.com/goliatone/go-chain/resolver"
	"github.com/goliatone/go-errors"
)

// Option customizes server behavior.
type Option func(*Server)

// WithExecutor replaces the default chain executor.
func WithExecutor(exec *executor.Executor) Option {
	return func(s *Server) {
		if exec != nil {
			s.exec = exec
		}
	}
}

// WithLogger sets the server logger.
func WithLogger(logger chain.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type procedureEntry struct {
	spec     ProcedureSpec
	names    []string
	units    []chain.Unit
	terminal chain.Terminal
}

// Server provides an in memory procedure registry and invoker. Transport
// adapters register procedures with their middleware attachments and call
// Invoke once per incoming request; the server maps the chain's Outcome to
// whatever envelope the transport needs.
type Server struct {
	mu         sync.RWMutex
	units      *resolver.Registry
	routers    map[string][]string
	procedures map[string]*procedureEntry
	exec       *executor.Executor
	logger     chain.Logger
}

// New creates an empty server.
func New(opts ...Option) *Server {
	s := &Server{
		units:      resolver.NewRegistry(),
		routers:    make(map[string][]string),
		procedures: make(map[string]*procedureEntry),
		exec:       executor.New(),
		logger:     chain.NewFmtLogger(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// RegisterUnits stores pre-constructed middleware unit instances. The
// server never constructs units or manages their dependencies; that is the
// caller's container's job.
func (s *Server) RegisterUnits(units ...chain.Unit) error {
	return s.units.Register(units...)
}

// RegisterRouter declares a router level middleware list under name.
// Procedures referencing the router prepend these units to their own.
func (s *Server) RegisterRouter(name string, use ...string) error {
	if name == "" {
		return errors.New("router name required", errors.CategoryBadInput).
			WithTextCode("ROUTER_NAME_REQUIRED")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.routers[name]; exists {
		return errors.New("router already registered", errors.CategoryConflict).
			WithTextCode("ROUTER_ALREADY_REGISTERED").
			WithMetadata(map[string]any{"router": name})
	}
	s.routers[name] = cloneStrings(use)
	return nil
}

// RegisterProcedure declares a procedure and resolves its chain once,
// memoized for the lifetime of the registration. Resolution fails fast when
// the spec references an unregistered router or unit identity.
func (s *Server) RegisterProcedure(spec ProcedureSpec, terminal chain.Terminal) error {
	if spec.Path == "" {
		return errors.New("procedure path required", errors.CategoryBadInput).
			WithTextCode("PROCEDURE_PATH_REQUIRED")
	}
	if terminal == nil {
		return errors.New("procedure handler required", errors.CategoryBadInput).
			WithTextCode("PROCEDURE_HANDLER_REQUIRED").
			WithMetadata(map[string]any{"procedure": spec.Path})
	}
	if spec.Kind == "" {
		spec.Kind = chain.KindQuery
	}
	if !chain.ValidKind(spec.Kind) {
		return errors.New("invalid call kind", errors.CategoryBadInput).
			WithTextCode("PROCEDURE_KIND_INVALID").
			WithMetadata(map[string]any{"procedure": spec.Path, "kind": string(spec.Kind)})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.procedures[spec.Path]; exists {
		return errors.New("procedure already registered", errors.CategoryConflict).
			WithTextCode("PROCEDURE_ALREADY_REGISTERED").
			WithMetadata(map[string]any{"procedure": spec.Path})
	}

	var routerUse []string
	if spec.Router != "" {
		use, ok := s.routers[spec.Router]
		if !ok {
			return errors.New("router not registered", errors.CategoryBadInput).
				WithTextCode("ROUTER_NOT_REGISTERED").
				WithMetadata(map[string]any{"procedure": spec.Path, "router": spec.Router})
		}
		routerUse = use
	}

	names := resolver.Resolve(routerUse, spec.Use)
	units, err := s.units.Build(names...)
	if err != nil {
		return errors.Wrap(err, errors.CategoryConflict, "chain resolution failed").
			WithTextCode("PROCEDURE_CHAIN_UNRESOLVED").
			WithMetadata(map[string]any{"procedure": spec.Path})
	}

	spec.Use = cloneStrings(spec.Use)
	spec.Tags = cloneStrings(spec.Tags)
	s.procedures[spec.Path] = &procedureEntry{
		spec:     spec,
		names:    names,
		units:    units,
		terminal: terminal,
	}
	return nil
}

// Invoke executes a registered procedure, threading a fresh call scoped
// Context through its resolved chain. Exactly one Outcome is returned per
// call; failures anywhere in the chain arrive classified, never as a panic.
func (s *Server) Invoke(ctx context.Context, path string, req Request) chain.Outcome {
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.RLock()
	entry, ok := s.procedures[path]
	s.mu.RUnlock()
	if !ok {
		return chain.Fail(errors.New("procedure not found", errors.CategoryBadInput).
			WithTextCode("PROCEDURE_NOT_FOUND").
			WithMetadata(map[string]any{"procedure": path}))
	}

	if entry.spec.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, entry.spec.Timeout)
		defer cancel()
	}

	cc := chain.NewContext(path, entry.spec.Kind,
		chain.WithHeaders(req.Headers),
		chain.WithInput(req.Input),
	)

	out := s.exec.Execute(ctx, entry.units, entry.terminal, cc)

	if !out.Ok() {
		s.logger.Debug("procedure call failed",
			"procedure", path,
			"classification", out.Classification(),
			"duration", out.Meta().Duration,
		)
	}
	return out
}

// Procedure returns metadata for the procedure at path.
func (s *Server) Procedure(path string) (ProcedureMeta, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.procedures[path]
	if !ok {
		return ProcedureMeta{}, false
	}
	return s.procedureMeta(entry), true
}

// Procedures returns metadata for all registered procedures sorted by path.
func (s *Server) Procedures() []ProcedureMeta {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ProcedureMeta, 0, len(s.procedures))
	for _, entry := range s.procedures {
		out = append(out, s.procedureMeta(entry))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Path < out[j].Path
	})
	return out
}

// Units returns metadata for every registered unit sorted by name.
func (s *Server) Units() []resolver.UnitInfo {
	return s.units.Units()
}

// Manifest builds the full metadata export for tooling.
func (s *Server) Manifest() Manifest {
	return Manifest{
		Procedures: s.Procedures(),
		Units:      s.Units(),
	}
}

// WriteManifest serializes the manifest as JSON, the input format consumed
// by chain-ctxgen.
func (s *Server) WriteManifest(w io.Writer) error {
	data, err := json.MarshalIndent(s.Manifest(), "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.CategoryExternal, "manifest encoding failed").
			WithTextCode("MANIFEST_ENCODE_FAILED")
	}
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(err, errors.CategoryExternal, "manifest write failed").
			WithTextCode("MANIFEST_WRITE_FAILED")
	}
	return nil
}

func (s *Server) procedureMeta(entry *procedureEntry) ProcedureMeta {
	units := make([]resolver.UnitInfo, 0, len(entry.units))
	for _, unit := range entry.units {
		units = append(units, resolver.UnitInfo{
			Name:   unit.Name(),
			Fields: chain.UnitFields(unit),
		})
	}
	return ProcedureMeta{
		Path:        entry.spec.Path,
		Kind:        entry.spec.Kind,
		Router:      entry.spec.Router,
		Units:       units,
		Timeout:     entry.spec.Timeout,
		Summary:     entry.spec.Summary,
		Description: entry.spec.Description,
		Tags:        cloneStrings(entry.spec.Tags),
	}
}
