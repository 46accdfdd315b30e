package middleware

import (
	"context"

	"github.com/goliatone/go-chain"
	"golang.org/x/time/rate"
)

// ErrCodeRateLimited classifies calls rejected by the RateLimit unit.
const ErrCodeRateLimited = "RATE_LIMITED"

// RateLimit rejects calls above the configured rate using a token bucket.
// The limiter is shared across calls and internally synchronized.
type RateLimit struct {
	limiter *rate.Limiter
}

// NewRateLimit builds a rate limiting unit allowing r calls per second with
// the given burst.
func NewRateLimit(r float64, burst int) *RateLimit {
	return &RateLimit{
		limiter: rate.NewLimiter(rate.Limit(r), burst),
	}
}

func (m *RateLimit) Name() string { return "ratelimit" }

func (m *RateLimit) Handle(ctx context.Context, cc *chain.Context, next chain.Next) chain.Outcome {
	if !m.limiter.Allow() {
		return chain.Reject(ErrCodeRateLimited, "rate limit exceeded")
	}
	return next(ctx, nil)
}
