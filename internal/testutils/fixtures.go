// Package testutils holds sample reactor programs and small test doubles
// shared across the backend's test suites, so every package exercises the
// same known-good and known-bad fixtures instead of redefining its own.
package testutils

import "github.com/lf-go/pretsched/internal/ports"

// SingleTimerYAML is the smallest program that exercises the scheduler at
// all: one reactor with a periodic timer and a reaction it triggers.
const SingleTimerYAML = `
version: 1.0.0
main: Blinker
classes:
  - class_name: Blinker
    timers:
      - name: tick
        offset: {magnitude: 0, unit: ms}
        period: {magnitude: 10, unit: ms}
    reactions:
      - triggers:
          - action: tick
`

// DelayedConnectionYAML describes a logical-delay connection between two
// instantiated reactors.
const DelayedConnectionYAML = `
version: 1.0.0
main: Main
classes:
  - class_name: Source
    outputs:
      - name: out
    timers:
      - name: t
        offset: {magnitude: 0, unit: ms}
        period: {magnitude: 5, unit: ms}
    reactions:
      - triggers:
          - action: t
        effects:
          - port: {port: out}
  - class_name: Sink
    inputs:
      - name: in
    reactions:
      - triggers:
          - port: {port: in}
  - class_name: Main
    instantiations:
      - name: src
        class_name: Source
      - name: snk
        class_name: Sink
    connections:
      - left:
          - instantiation: src
            port: out
        right:
          - instantiation: snk
            port: in
        delay: {magnitude: 1, unit: ms}
`

// ShutdownTimeoutYAML gives the SHUTDOWN_TIMEOUT exploration a non-trivial
// timeout horizon to explore against, distinct from the startup/periodic
// behavior SingleTimerYAML exercises.
const ShutdownTimeoutYAML = `
version: 1.0.0
main: Watchdog
classes:
  - class_name: Watchdog
    actions:
      - name: alarm
        origin: logical
        minimum_delay: {magnitude: 100, unit: ms}
    reactions:
      - triggers:
          - shutdown: true
        effects:
          - action: alarm
`

// UnknownClassYAML references an instantiation class that is never
// declared (a near miss of a declared one); ProgramLoader's semantic
// validation rejects it as an undeclared class before elaboration runs.
const UnknownClassYAML = `
version: 1.0.0
main: Main
classes:
  - class_name: Sourcee
  - class_name: Main
    instantiations:
      - name: src
        class_name: Source
`

// UnresolvedPortYAML references a port name that is close to, but not
// exactly, a declared port, for exercising the "did you mean" suggestion
// on UnresolvedPort.
const UnresolvedPortYAML = `
version: 1.0.0
main: Main
classes:
  - class_name: Leaf
    inputs:
      - name: value
  - class_name: Main
    instantiations:
      - name: leaf
        class_name: Leaf
    reactions:
      - triggers:
          - port: {instantiation: leaf, port: valeu}
`

// StubASTSource is a minimal in-memory ports.ASTSource for unit tests that
// want to build a program tree directly rather than round-trip through
// YAML.
type StubASTSource struct {
	Main    string
	Classes map[string]*ports.Reactor
}

// NewStubASTSource returns a StubASTSource with no classes registered;
// callers add classes with AddClass before use.
func NewStubASTSource(main string) *StubASTSource {
	return &StubASTSource{Main: main, Classes: make(map[string]*ports.Reactor)}
}

// AddClass registers r under its own ClassName and returns the receiver,
// so callers can chain several AddClass calls while building a fixture.
func (s *StubASTSource) AddClass(r *ports.Reactor) *StubASTSource {
	s.Classes[r.ClassName] = r
	return s
}

func (s *StubASTSource) MainClassName() string { return s.Main }

func (s *StubASTSource) LookupClass(name string) (*ports.Reactor, bool) {
	r, ok := s.Classes[name]
	return r, ok
}

func (s *StubASTSource) AllClassNames() []string {
	names := make([]string, 0, len(s.Classes))
	for name := range s.Classes {
		names = append(names, name)
	}
	return names
}
