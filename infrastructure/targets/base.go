// Package targets provides ports.TargetTypes adapters for the concrete
// output languages this backend can render fragment bodies for (§6):
// C, Python, and TypeScript. Each adapter shares a small text/template
// helper for rendering the synthetic delay/forward reaction bodies.
package targets

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
)

// ErrUnsupportedTarget is returned by a registry lookup for an
// unregistered target name.
var ErrUnsupportedTarget = fmt.Errorf("unsupported target")

// renderBody executes a cached template by name against data, returning
// its output as a string. ctx is accepted for symmetry with the
// ports.TargetTypes signature and so a future adapter that shells out to
// an external formatter can honor cancellation; the in-process
// text/template renderer here never blocks on it.
func renderBody(ctx context.Context, tmpl *template.Template, data any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// delayBodyData is the template data for a delayed-connection synthetic
// reaction body: read the triggering action, write it to the port.
type delayBodyData struct {
	ActionName string
	Port       string
}

// forwardBodyData is the template data for a physical (zero-delay
// forwarding) connection synthetic reaction body.
type forwardBodyData struct {
	ActionName string
	Port       string
}
