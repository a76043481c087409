package ports

import "context"

// CompileStage is the contract shared by every pipeline stage
// (elaborate, explore, split-fragments, generate-fragments, link) (§5: "stages are
// single-threaded and pure with respect to their inputs"). Grounded on
// the teacher's Executable: a named, context-aware unit of work over an
// opaque input/output pair.
type CompileStage interface {
	// ID identifies the stage for logging, tracing span names, and metric
	// labels.
	ID() string

	// Run executes the stage. Implementations must not mutate in; they
	// return a new value (or the same immutable one) as out.
	Run(ctx context.Context, in any) (out any, err error)
}

// StageFunc adapts a plain function to CompileStage.
type StageFunc struct {
	IDValue string
	Fn      func(ctx context.Context, in any) (any, error)
}

func (f StageFunc) ID() string { return f.IDValue }

func (f StageFunc) Run(ctx context.Context, in any) (any, error) { return f.Fn(ctx, in) }

// TargetMiddleware decorates a TargetTypes adapter with cross-cutting
// behavior (timeout, retry, circuit breaker, metrics, tracing), mirroring
// the teacher's LLM client Middleware chain (§9, DOMAIN STACK).
type TargetMiddleware func(next TargetTypes) TargetTypes
