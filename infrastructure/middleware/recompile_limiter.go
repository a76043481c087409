package middleware

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RecompileLimiter rate-limits recompilation triggers from a file-watching
// compile driver with a token bucket; Pipeline.Watch merges the triggers
// that queue up while it waits here into a single compile (§9: scheduling
// concern, not CLI scope).
type RecompileLimiter struct {
	limiter *rate.Limiter
}

// NewRecompileLimiter returns a limiter allowing on average limit
// recompiles per second, with up to burst recompiles permitted at once.
func NewRecompileLimiter(limit rate.Limit, burst int) *RecompileLimiter {
	return &RecompileLimiter{limiter: rate.NewLimiter(limit, burst)}
}

// Wait blocks until a recompile is permitted, or returns an error if ctx
// is canceled first.
func (l *RecompileLimiter) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("recompile limiter: %w", err)
	}
	return nil
}

// Allow reports, without blocking, whether a recompile may proceed now.
func (l *RecompileLimiter) Allow() bool { return l.limiter.Allow() }
