// Package middleware provides ports.TargetMiddleware decorators around a
// ports.TargetTypes adapter: timeout, retry, circuit breaker, metrics, and
// tracing, in the same shape as the teacher's LLM middleware chain,
// justified because target adapters are a pluggable external collaborator
// (§6) and a real build may shell out to an external formatter or
// template service.
package middleware

import (
	"context"
	"time"

	"github.com/lf-go/pretsched/internal/ports"
)

// timeoutTarget enforces a deadline on each render call.
type timeoutTarget struct {
	next    ports.TargetTypes
	timeout time.Duration
}

// TimeoutMiddleware creates middleware that bounds how long a single
// render call may run.
func TimeoutMiddleware(timeout time.Duration) ports.TargetMiddleware {
	return func(next ports.TargetTypes) ports.TargetTypes {
		return &timeoutTarget{next: next, timeout: timeout}
	}
}

func (t *timeoutTarget) Name() string          { return t.next.Name() }
func (t *timeoutTarget) SupportsGenerics() bool { return t.next.SupportsGenerics() }

func (t *timeoutTarget) RenderTimeLiteral(magnitude int64, unit ports.TimeUnit) (string, error) {
	return t.next.RenderTimeLiteral(magnitude, unit)
}

func (t *timeoutTarget) RenderType(typ ports.Type) (string, error) {
	return t.next.RenderType(typ)
}

func (t *timeoutTarget) RenderDelayReactionBody(ctx context.Context, actionName, port string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.RenderDelayReactionBody(ctx, actionName, port)
}

func (t *timeoutTarget) RenderForwardBody(ctx context.Context, actionName, port string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.RenderForwardBody(ctx, actionName, port)
}
