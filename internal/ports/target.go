package ports

import "context"

// TargetTypes is the pluggable target-language collaborator (§6): it
// renders the pieces of the generated executable that are target-specific
// — time literals, inferred types, and the bodies of the delayed- and
// forwarded-connection transformation — while the core stages in this
// module remain target-agnostic.
//
// Implementations must be safe for concurrent use: the pipeline may
// render several fragments' delay/forward bodies concurrently via
// errgroup (§5, §9).
type TargetTypes interface {
	// Name identifies the target, e.g. "c", "python", "typescript". Used
	// in diagnostics and as the middleware chain's metric/trace label.
	Name() string

	// SupportsGenerics reports whether the target can render a
	// parameterized reactor class without monomorphization.
	SupportsGenerics() bool

	// RenderTimeLiteral renders a time magnitude+unit as a literal in the
	// target language.
	RenderTimeLiteral(magnitude int64, unit TimeUnit) (string, error)

	// RenderType renders an inferred type as a target-language type
	// reference.
	RenderType(t Type) (string, error)

	// RenderDelayReactionBody renders the body of the synthetic reaction
	// a delayed connection lowers to: read actionName, write it to port.
	// Takes a context because a real adapter may shell out to an external
	// formatter or template service (§6, §9).
	RenderDelayReactionBody(ctx context.Context, actionName, port string) (string, error)

	// RenderForwardBody renders the body of the synthetic reaction a
	// physical (zero-delay forwarding) connection lowers to.
	RenderForwardBody(ctx context.Context, actionName, port string) (string, error)
}
