// Package middleware provides stock chain units: logging, authentication,
// rate limiting, timeouts, and request id propagation. Units are long lived
// and safe for concurrent calls.
package middleware

import (
	"context"
	"time"

	"github.com/goliatone/go-chain"
)

// Logging brackets everything downstream with timing and emits one
// structured line per call. It observes failures without swallowing them;
// the downstream Outcome always flows back unchanged.
type Logging struct {
	logger chain.Logger
}

// NewLogging builds a logging unit, falling back to FmtLogger when logger
// is nil.
func NewLogging(logger chain.Logger) *Logging {
	if logger == nil {
		logger = chain.NewFmtLogger(nil)
	}
	return &Logging{logger: logger}
}

func (m *Logging) Name() string { return "logging" }

func (m *Logging) Handle(ctx context.Context, cc *chain.Context, next chain.Next) chain.Outcome {
	start := time.Now()
	out := next(ctx, nil)
	elapsed := time.Since(start)

	logger := m.logger
	if fl, ok := logger.(chain.FieldsLogger); ok {
		logger = fl.WithFields(map[string]any{
			"procedure": cc.Procedure(),
			"kind":      string(cc.Kind()),
			"callId":    cc.CallID(),
		})
	}

	if out.Ok() {
		logger.Info("chain call completed", "duration", elapsed)
	} else {
		logger.Error("chain call failed",
			"classification", out.Classification(),
			"duration", elapsed,
		)
	}
	return out
}
