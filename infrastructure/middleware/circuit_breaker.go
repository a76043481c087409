package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/lf-go/pretsched/internal/ports"
)

// CircuitBreakerState is the current state of a CircuitBreaker.
type CircuitBreakerState int

const (
	StateClosed CircuitBreakerState = iota
	StateOpen
	StateHalfOpen
)

// CircuitBreaker trips open after maxFailures consecutive render
// failures, then probes recovery after cooldown elapses.
type CircuitBreaker struct {
	mu               sync.Mutex
	state            CircuitBreakerState
	failureCount     int
	maxFailures      int
	cooldownDuration time.Duration
	lastFailure      time.Time
}

// NewCircuitBreaker returns a CircuitBreaker that opens after maxFailures
// consecutive failures and stays open for cooldownDuration.
func NewCircuitBreaker(maxFailures int, cooldownDuration time.Duration) *CircuitBreaker {
	return &CircuitBreaker{maxFailures: maxFailures, cooldownDuration: cooldownDuration}
}

// Call runs fn through the breaker, returning ports.ErrCircuitOpen
// without calling fn when the circuit is open and the cooldown has not
// elapsed.
func (cb *CircuitBreaker) Call(fn func() error) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if time.Since(cb.lastFailure) < cb.cooldownDuration {
			return ports.ErrCircuitOpen
		}
		cb.state = StateHalfOpen
		fallthrough
	case StateHalfOpen, StateClosed:
		err := fn()
		if err != nil {
			cb.failureCount++
			cb.lastFailure = time.Now()
			if cb.state == StateHalfOpen || cb.failureCount >= cb.maxFailures {
				cb.state = StateOpen
			}
			return err
		}
		cb.failureCount = 0
		cb.state = StateClosed
		return nil
	}
	return nil
}

// State returns the breaker's current state.
func (cb *CircuitBreaker) State() CircuitBreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

type circuitBreakerTarget struct {
	next ports.TargetTypes
	cb   *CircuitBreaker
}

// CircuitBreakerMiddleware creates middleware implementing the circuit
// breaker pattern around render calls.
func CircuitBreakerMiddleware(maxFailures int, cooldown time.Duration) ports.TargetMiddleware {
	cb := NewCircuitBreaker(maxFailures, cooldown)
	return func(next ports.TargetTypes) ports.TargetTypes {
		return &circuitBreakerTarget{next: next, cb: cb}
	}
}

func (c *circuitBreakerTarget) Name() string          { return c.next.Name() }
func (c *circuitBreakerTarget) SupportsGenerics() bool { return c.next.SupportsGenerics() }

func (c *circuitBreakerTarget) RenderTimeLiteral(magnitude int64, unit ports.TimeUnit) (string, error) {
	return c.next.RenderTimeLiteral(magnitude, unit)
}

func (c *circuitBreakerTarget) RenderType(t ports.Type) (string, error) {
	return c.next.RenderType(t)
}

func (c *circuitBreakerTarget) RenderDelayReactionBody(ctx context.Context, actionName, port string) (string, error) {
	var out string
	err := c.cb.Call(func() error {
		var err error
		out, err = c.next.RenderDelayReactionBody(ctx, actionName, port)
		return err
	})
	return out, err
}

func (c *circuitBreakerTarget) RenderForwardBody(ctx context.Context, actionName, port string) (string, error) {
	var out string
	err := c.cb.Call(func() error {
		var err error
		out, err = c.next.RenderForwardBody(ctx, actionName, port)
		return err
	})
	return out, err
}
