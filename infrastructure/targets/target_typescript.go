package targets

import (
	"context"
	"fmt"
	"text/template"

	"github.com/lf-go/pretsched/internal/ports"
)

var tsDelayTemplate = template.Must(template.New("ts_delay").Parse(
	`{{.Port}}.set(this.{{.ActionName}}.get()!)`))

var tsForwardTemplate = template.Must(template.New("ts_forward").Parse(
	`{{.Port}}.set(this.{{.ActionName}}.get()!)`))

// typescriptTarget renders PretVM reaction bodies for the TypeScript
// target, modeled on LinguaFranca's reactor-ts runtime conventions.
type typescriptTarget struct{}

// NewTypeScriptTarget returns the TypeScript ports.TargetTypes adapter.
func NewTypeScriptTarget() ports.TargetTypes { return typescriptTarget{} }

func (typescriptTarget) Name() string           { return "typescript" }
func (typescriptTarget) SupportsGenerics() bool { return true }

func (typescriptTarget) RenderTimeLiteral(magnitude int64, unit ports.TimeUnit) (string, error) {
	unitName, err := tsTimeUnitName(unit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("TimeValue.%s(%d)", unitName, magnitude), nil
}

func tsTimeUnitName(unit ports.TimeUnit) (string, error) {
	switch unit {
	case ports.Nanoseconds:
		return "nsec", nil
	case ports.Microseconds:
		return "usec", nil
	case ports.Milliseconds:
		return "msec", nil
	case ports.Seconds:
		return "sec", nil
	case ports.Minutes:
		return "min", nil
	case ports.Hours:
		return "hour", nil
	default:
		return "", fmt.Errorf("typescript target: unknown time unit %v", unit)
	}
}

func (typescriptTarget) RenderType(t ports.Type) (string, error) {
	switch t.Name {
	case "", "int", "float":
		return "number", nil
	case "bool":
		return "boolean", nil
	case "string":
		return "string", nil
	default:
		if len(t.TypeParams) > 0 {
			return t.Name + "<unknown>", nil
		}
		return t.Name, nil
	}
}

func (typescriptTarget) RenderDelayReactionBody(ctx context.Context, actionName, port string) (string, error) {
	return renderBody(ctx, tsDelayTemplate, delayBodyData{ActionName: actionName, Port: port})
}

func (typescriptTarget) RenderForwardBody(ctx context.Context, actionName, port string) (string, error) {
	return renderBody(ctx, tsForwardTemplate, forwardBodyData{ActionName: actionName, Port: port})
}
