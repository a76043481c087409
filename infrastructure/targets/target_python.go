package targets

import (
	"context"
	"fmt"
	"text/template"

	"github.com/lf-go/pretsched/internal/ports"
)

var pythonDelayTemplate = template.Must(template.New("python_delay").Parse(
	`{{.Port}}.set(self.{{.ActionName}}.value)`))

var pythonForwardTemplate = template.Must(template.New("python_forward").Parse(
	`{{.Port}}.set(self.{{.ActionName}}.value)`))

// pythonTarget renders PretVM reaction bodies for the Python target,
// modeled on LinguaFranca's reactor-python runtime conventions.
type pythonTarget struct{}

// NewPythonTarget returns the Python ports.TargetTypes adapter.
func NewPythonTarget() ports.TargetTypes { return pythonTarget{} }

func (pythonTarget) Name() string           { return "python" }
func (pythonTarget) SupportsGenerics() bool { return true }

func (pythonTarget) RenderTimeLiteral(magnitude int64, unit ports.TimeUnit) (string, error) {
	unitName, err := pythonTimeUnitName(unit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d * %s", magnitude, unitName), nil
}

func pythonTimeUnitName(unit ports.TimeUnit) (string, error) {
	switch unit {
	case ports.Nanoseconds:
		return "NSEC", nil
	case ports.Microseconds:
		return "USEC", nil
	case ports.Milliseconds:
		return "MSEC", nil
	case ports.Seconds:
		return "SEC", nil
	case ports.Minutes:
		return "MIN", nil
	case ports.Hours:
		return "HOUR", nil
	default:
		return "", fmt.Errorf("python target: unknown time unit %v", unit)
	}
}

func (pythonTarget) RenderType(t ports.Type) (string, error) {
	if len(t.TypeParams) > 0 {
		return t.Name, nil
	}
	switch t.Name {
	case "", "int":
		return "int", nil
	case "float":
		return "float", nil
	case "bool":
		return "bool", nil
	case "string":
		return "str", nil
	default:
		return t.Name, nil
	}
}

func (pythonTarget) RenderDelayReactionBody(ctx context.Context, actionName, port string) (string, error) {
	return renderBody(ctx, pythonDelayTemplate, delayBodyData{ActionName: actionName, Port: port})
}

func (pythonTarget) RenderForwardBody(ctx context.Context, actionName, port string) (string, error) {
	return renderBody(ctx, pythonForwardTemplate, forwardBodyData{ActionName: actionName, Port: port})
}
