package middleware

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/lf-go/pretsched/internal/ports"
)

// retryTarget retries a failed render with exponential backoff and
// jitter, stopping early on a circuit-open error or context cancellation.
type retryTarget struct {
	next       ports.TargetTypes
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// RetryMiddleware creates middleware that retries a failed render call up
// to maxRetries times with exponential backoff starting at baseDelay
// (jittered by -25% to +25%) and capped at maxDelay.
func RetryMiddleware(maxRetries int, baseDelay, maxDelay time.Duration) ports.TargetMiddleware {
	return func(next ports.TargetTypes) ports.TargetTypes {
		return &retryTarget{next: next, maxRetries: maxRetries, baseDelay: baseDelay, maxDelay: maxDelay}
	}
}

func (r *retryTarget) Name() string          { return r.next.Name() }
func (r *retryTarget) SupportsGenerics() bool { return r.next.SupportsGenerics() }

func (r *retryTarget) RenderTimeLiteral(magnitude int64, unit ports.TimeUnit) (string, error) {
	return r.next.RenderTimeLiteral(magnitude, unit)
}

func (r *retryTarget) RenderType(t ports.Type) (string, error) {
	return r.next.RenderType(t)
}

func (r *retryTarget) RenderDelayReactionBody(ctx context.Context, actionName, port string) (string, error) {
	return r.withRetry(ctx, func(ctx context.Context) (string, error) {
		return r.next.RenderDelayReactionBody(ctx, actionName, port)
	})
}

func (r *retryTarget) RenderForwardBody(ctx context.Context, actionName, port string) (string, error) {
	return r.withRetry(ctx, func(ctx context.Context) (string, error) {
		return r.next.RenderForwardBody(ctx, actionName, port)
	})
}

func (r *retryTarget) withRetry(ctx context.Context, call func(context.Context) (string, error)) (string, error) {
	var lastErr error
	attempts := 0
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		attempts++
		out, err := call(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if err == ports.ErrCircuitOpen || ctx.Err() != nil || attempt == r.maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(r.calculateDelay(attempt)):
		}
	}
	return "", fmt.Errorf("render failed after %d attempts: %w", attempts, lastErr)
}

func (r *retryTarget) calculateDelay(attempt int) time.Duration {
	if attempt > 30 {
		attempt = 30
	}
	delay := r.baseDelay * time.Duration(int64(1)<<uint(attempt))
	jitter := time.Duration(rand.Float64() * float64(delay) * 0.5)
	delay = delay + jitter - (delay / 4)
	if delay > r.maxDelay {
		delay = r.maxDelay
	}
	return delay
}
