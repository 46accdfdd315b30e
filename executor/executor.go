// Package executor composes a resolved middleware chain and a terminal
// handler into one continuation and runs it, producing exactly one Outcome
// per call.
package executor

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-chain"
	"github.com/goliatone/go-errors"
)

// Option customizes executor behavior.
type Option func(*Executor)

// WithLogger sets the logger used for programming error reports.
func WithLogger(logger chain.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock overrides the time source, useful in tests.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) {
		if now != nil {
			e.now = now
		}
	}
}

// Executor runs middleware chains. Instances are safe for concurrent use;
// each call executes with its own frame state and call scoped Context.
type Executor struct {
	logger chain.Logger
	now    func() time.Time
}

// New constructs an executor, applying defaults if unset.
func New(opts ...Option) *Executor {
	e := &Executor{
		logger: chain.NewFmtLogger(nil),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// step runs the remainder of the chain against the current context.
type step func(ctx context.Context, cc *chain.Context) chain.Outcome

// callState tracks per call invariants shared across frames.
type callState struct {
	mu        sync.Mutex
	settled   bool
	violation error
}

func (s *callState) violate(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.violation == nil {
		s.violation = err
	}
}

func (s *callState) settle() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settled = true
	return s.violation
}

func (s *callState) reusable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.settled
}

// Execute composes units and terminal right to left and drives the call
// through the resulting continuation. Within one call execution is strictly
// sequential: unit K's post-next code runs only after everything downstream
// of it has settled. The returned Outcome carries timing metadata spanning
// the whole chain.
func (e *Executor) Execute(ctx context.Context, units []chain.Unit, terminal chain.Terminal, cc *chain.Context) chain.Outcome {
	if ctx == nil {
		ctx = context.Background()
	}
	if cc == nil {
		cc = chain.NewContext("", chain.KindQuery)
	}

	start := e.now()
	state := &callState{}

	next := e.terminalStep(terminal, state)
	for i := len(units) - 1; i >= 0; i-- {
		if units[i] == nil {
			continue
		}
		next = e.unitStep(units[i], next, state)
	}

	out := next(ctx, cc)

	if violation := state.settle(); violation != nil {
		// fail fast: a frame that reused next poisons the whole call
		e.logger.Error("chain programming error",
			"procedure", cc.Procedure(),
			"classification", chain.Classification(violation),
		)
		out = chain.Fail(violation)
	}

	meta := chain.Meta{
		Procedure: cc.Procedure(),
		Kind:      cc.Kind(),
		CallID:    cc.CallID(),
		StartedAt: start,
		Duration:  e.now().Sub(start),
	}
	return out.WithMeta(meta)
}

func (e *Executor) unitStep(unit chain.Unit, nextStep step, state *callState) step {
	return func(ctx context.Context, cc *chain.Context) (out chain.Outcome) {
		if err := ctx.Err(); err != nil {
			return chain.Fail(chain.Cancelled(err))
		}

		var consumed bool
		next := chain.Next(func(nctx context.Context, patch chain.Fields) chain.Outcome {
			if consumed || !state.reusable() {
				violation := chain.NextReused(unit.Name())
				state.violate(violation)
				return chain.Fail(violation)
			}
			consumed = true
			if nctx == nil {
				nctx = ctx
			}
			return nextStep(nctx, cc.Merge(patch))
		})

		// each frame is a boundary: an uncaught failure never crosses it
		defer func() {
			if p := recover(); p != nil {
				out = chain.Fail(chain.MiddlewareFailure(unit.Name(), p, chain.CaptureStack()))
			}
		}()

		return unit.Handle(ctx, cc, next)
	}
}

func (e *Executor) terminalStep(terminal chain.Terminal, state *callState) step {
	return func(ctx context.Context, cc *chain.Context) (out chain.Outcome) {
		if err := ctx.Err(); err != nil {
			return chain.Fail(chain.Cancelled(err))
		}
		if terminal == nil {
			return chain.Fail(errors.New("terminal handler not configured", errors.CategoryBadInput).
				WithTextCode("CHAIN_TERMINAL_REQUIRED"))
		}

		defer func() {
			if p := recover(); p != nil {
				out = chain.Fail(chain.HandlerPanic(cc.Procedure(), p, chain.CaptureStack()))
			}
		}()

		value, err := terminal(ctx, cc)
		if err != nil {
			if chain.IsCancellation(err) {
				return chain.Fail(chain.Cancelled(err))
			}
			return chain.Fail(chain.HandlerFailure(cc.Procedure(), err))
		}
		return chain.OK(value)
	}
}

// Execute runs the chain with a default executor.
func Execute(ctx context.Context, units []chain.Unit, terminal chain.Terminal, cc *chain.Context) chain.Outcome {
	return New().Execute(ctx, units, terminal, cc)
}
