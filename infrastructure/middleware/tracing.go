package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/lf-go/pretsched/internal/ports"
)

type tracingTarget struct {
	next   ports.TargetTypes
	tracer trace.Tracer
}

// TracingMiddleware creates middleware that emits an OpenTelemetry span
// around each render call.
func TracingMiddleware() ports.TargetMiddleware {
	tracer := otel.Tracer("pretsched-target")
	return func(next ports.TargetTypes) ports.TargetTypes {
		return &tracingTarget{next: next, tracer: tracer}
	}
}

func (t *tracingTarget) Name() string          { return t.next.Name() }
func (t *tracingTarget) SupportsGenerics() bool { return t.next.SupportsGenerics() }

func (t *tracingTarget) RenderTimeLiteral(magnitude int64, unit ports.TimeUnit) (string, error) {
	return t.next.RenderTimeLiteral(magnitude, unit)
}

func (t *tracingTarget) RenderType(typ ports.Type) (string, error) {
	return t.next.RenderType(typ)
}

func (t *tracingTarget) RenderDelayReactionBody(ctx context.Context, actionName, port string) (string, error) {
	ctx, span := t.tracer.Start(ctx, "TargetTypes.RenderDelayReactionBody",
		trace.WithAttributes(
			attribute.String("target", t.next.Name()),
			attribute.String("action", actionName),
			attribute.String("port", port),
		),
	)
	defer span.End()

	out, err := t.next.RenderDelayReactionBody(ctx, actionName, port)
	if err != nil {
		span.RecordError(err)
	}
	return out, err
}

func (t *tracingTarget) RenderForwardBody(ctx context.Context, actionName, port string) (string, error) {
	ctx, span := t.tracer.Start(ctx, "TargetTypes.RenderForwardBody",
		trace.WithAttributes(
			attribute.String("target", t.next.Name()),
			attribute.String("action", actionName),
			attribute.String("port", port),
		),
	)
	defer span.End()

	out, err := t.next.RenderForwardBody(ctx, actionName, port)
	if err != nil {
		span.RecordError(err)
	}
	return out, err
}
