package llm

import (
	"context"

	"golang.org/x/time/rate"
)

// CallGuard paces provider calls. It never rejects a call on its own; a
// caller only waits for a token or for its context to end.
type CallGuard struct {
	limiter *rate.Limiter
}

// NewCallGuard allows perMinute calls per minute; zero or less disables pacing
func NewCallGuard(perMinute int) *CallGuard {
	if perMinute <= 0 {
		return &CallGuard{}
	}
	return &CallGuard{
		limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), 5),
	}
}

// Acquire blocks until a call may proceed
func (g *CallGuard) Acquire(ctx context.Context) error {
	if g.limiter == nil {
		return ctx.Err()
	}
	return g.limiter.Wait(ctx)
}
