package middleware

import (
	"context"
	"time"

	"github.com/goliatone/go-chain"
)

// Timeout bounds everything downstream of it with a deadline. Downstream
// units and the terminal handler observe cancellation cooperatively through
// the context; expiry surfaces as a cancellation classified Outcome.
type Timeout struct {
	timeout time.Duration
}

// NewTimeout builds a timeout unit. A non positive duration disables it.
func NewTimeout(timeout time.Duration) *Timeout {
	return &Timeout{timeout: timeout}
}

func (m *Timeout) Name() string { return "timeout" }

func (m *Timeout) Handle(ctx context.Context, cc *chain.Context, next chain.Next) chain.Outcome {
	if m.timeout <= 0 {
		return next(ctx, nil)
	}

	tctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	return next(tctx, nil)
}
