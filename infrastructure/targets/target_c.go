package targets

import (
	"context"
	"fmt"
	"text/template"

	"github.com/lf-go/pretsched/internal/ports"
)

var cDelayTemplate = template.Must(template.New("c_delay").Parse(
	`{{.Port}} = self->{{.ActionName}}_value;`))

var cForwardTemplate = template.Must(template.New("c_forward").Parse(
	`lf_set({{.Port}}, self->{{.ActionName}}_value);`))

// cTarget renders PretVM reaction bodies for the C target, modeled on
// reactor-c's generated-code conventions.
type cTarget struct{}

// NewCTarget returns the C ports.TargetTypes adapter.
func NewCTarget() ports.TargetTypes { return cTarget{} }

func (cTarget) Name() string           { return "c" }
func (cTarget) SupportsGenerics() bool { return false }

func (cTarget) RenderTimeLiteral(magnitude int64, unit ports.TimeUnit) (string, error) {
	suffix, err := cTimeSuffix(unit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d%s", magnitude, suffix), nil
}

func cTimeSuffix(unit ports.TimeUnit) (string, error) {
	switch unit {
	case ports.Nanoseconds:
		return "LL", nil
	case ports.Microseconds:
		return "000LL", nil
	case ports.Milliseconds:
		return "000000LL", nil
	case ports.Seconds:
		return "000000000LL", nil
	case ports.Minutes:
		return "* 60000000000LL", nil
	case ports.Hours:
		return "* 3600000000000LL", nil
	default:
		return "", fmt.Errorf("c target: unknown time unit %v", unit)
	}
}

func (cTarget) RenderType(t ports.Type) (string, error) {
	switch t.Name {
	case "", "int":
		return "int", nil
	case "float":
		return "double", nil
	case "bool":
		return "bool", nil
	case "string":
		return "char*", nil
	default:
		return t.Name + "_t", nil
	}
}

func (cTarget) RenderDelayReactionBody(ctx context.Context, actionName, port string) (string, error) {
	return renderBody(ctx, cDelayTemplate, delayBodyData{ActionName: actionName, Port: port})
}

func (cTarget) RenderForwardBody(ctx context.Context, actionName, port string) (string, error) {
	return renderBody(ctx, cForwardTemplate, forwardBodyData{ActionName: actionName, Port: port})
}
