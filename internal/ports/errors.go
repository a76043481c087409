package ports

import (
	"errors"
	"fmt"
	"time"
)

// Infrastructure-level errors a TargetTypes adapter or its middleware
// chain may return; mirrored on a rich struct via Unwrap so callers can
// use errors.Is without depending on the concrete type (teacher's
// ports/errors.go pattern).
var (
	// ErrTargetUnavailable indicates the adapter (or whatever external
	// process it shells out to) could not be reached.
	ErrTargetUnavailable = errors.New("target adapter unavailable")

	// ErrTargetTimeout indicates a render call exceeded its deadline.
	ErrTargetTimeout = errors.New("target render timed out")

	// ErrTargetRateLimited indicates a call was rejected by a rate limit.
	// RecompileLimiter does not return it; its Wait wraps the rate
	// package's own errors.
	ErrTargetRateLimited = errors.New("recompile rate limited")

	// ErrCircuitOpen indicates the circuit breaker is open and is
	// failing fast rather than calling the wrapped adapter.
	ErrCircuitOpen = errors.New("target adapter circuit open")
)

// TargetError wraps a failure from a TargetTypes call with the adapter
// name and the operation that failed, for diagnostics.
type TargetError struct {
	Target    string
	Operation string
	Err       error
}

func (e *TargetError) Error() string {
	return fmt.Sprintf("target %q: %s: %v", e.Target, e.Operation, e.Err)
}

func (e *TargetError) Unwrap() error { return e.Err }

// RateLimitedError carries a retry-after hint for a rate-limited call and
// unwraps to ErrTargetRateLimited, mirroring the teacher's
// LLMError.RetryAfter field.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("%s, retry after %s", ErrTargetRateLimited, e.RetryAfter)
}

func (e *RateLimitedError) Unwrap() error { return ErrTargetRateLimited }
