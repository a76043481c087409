package application

import "github.com/lf-go/pretsched/internal/ports"

// ProgramConfig is the serialized reactor-program description this
// backend accepts for testing, tooling, and incremental/batch
// compilation, alongside the in-memory ports.ASTSource an embedding
// compiler would supply directly (§1, AMBIENT STACK).
type ProgramConfig struct {
	Version string          `yaml:"version" validate:"required,semver"`
	Main    string          `yaml:"main" validate:"required"`
	Timeout *TimeConfig     `yaml:"timeout,omitempty"`
	Classes []ReactorConfig `yaml:"classes" validate:"required,min=1,dive"`
}

// ReactorConfig is the YAML form of a ports.Reactor class declaration.
type ReactorConfig struct {
	ClassName      string               `yaml:"class_name" validate:"required,alphanum"`
	Inputs         []PortConfig         `yaml:"inputs" validate:"dive"`
	Outputs        []PortConfig         `yaml:"outputs" validate:"dive"`
	Timers         []TimerConfig        `yaml:"timers" validate:"dive"`
	Actions        []ActionConfig       `yaml:"actions" validate:"dive"`
	Reactions      []ReactionConfig     `yaml:"reactions" validate:"dive"`
	Instantiations []InstantiationConfig `yaml:"instantiations" validate:"dive"`
	Connections    []ConnectionConfig   `yaml:"connections" validate:"dive"`
}

type PortConfig struct {
	Name string `yaml:"name" validate:"required"`
}

type TimeConfig struct {
	Magnitude int64  `yaml:"magnitude"`
	Unit      string `yaml:"unit" validate:"omitempty,oneof=ns us ms s min h"`
}

type TimerConfig struct {
	Name   string     `yaml:"name" validate:"required"`
	Offset TimeConfig `yaml:"offset"`
	Period TimeConfig `yaml:"period"`
}

type ActionConfig struct {
	Name         string     `yaml:"name" validate:"required"`
	Origin       string     `yaml:"origin" validate:"omitempty,oneof=logical physical"`
	MinimumDelay TimeConfig `yaml:"minimum_delay"`
}

type PortRefConfig struct {
	Instantiation string `yaml:"instantiation"`
	Port          string `yaml:"port" validate:"required"`
}

type TriggerRefConfig struct {
	Port       *PortRefConfig `yaml:"port,omitempty"`
	Action     string         `yaml:"action,omitempty"`
	IsStartup  bool           `yaml:"startup,omitempty"`
	IsShutdown bool           `yaml:"shutdown,omitempty"`
}

type ReactionConfig struct {
	Triggers []TriggerRefConfig `yaml:"triggers" validate:"required,min=1,dive"`
	Sources  []TriggerRefConfig `yaml:"sources" validate:"dive"`
	Effects  []TriggerRefConfig `yaml:"effects" validate:"dive"`
}

type InstantiationConfig struct {
	Name      string `yaml:"name" validate:"required"`
	ClassName string `yaml:"class_name" validate:"required"`
}

type ConnectionWidthConfig struct {
	Width int `yaml:"width" validate:"min=1"`
}

type ConnectionConfig struct {
	Left     []PortRefConfig        `yaml:"left" validate:"required,min=1,dive"`
	Right    []PortRefConfig        `yaml:"right" validate:"required,min=1,dive"`
	Delay    *TimeConfig            `yaml:"delay,omitempty"`
	Physical bool                   `yaml:"physical,omitempty"`
	Width    *ConnectionWidthConfig `yaml:"width,omitempty"`
}

func timeUnitFromString(s string) ports.TimeUnit {
	switch s {
	case "us":
		return ports.Microseconds
	case "ms":
		return ports.Milliseconds
	case "s":
		return ports.Seconds
	case "min":
		return ports.Minutes
	case "h":
		return ports.Hours
	default:
		return ports.Nanoseconds
	}
}

func (t TimeConfig) toPortsTime() ports.Time {
	return ports.Time{Magnitude: t.Magnitude, Unit: timeUnitFromString(t.Unit)}
}

func (p PortRefConfig) toPortsRef() ports.PortRef {
	return ports.PortRef{Instantiation: p.Instantiation, Port: p.Port}
}

func (t TriggerRefConfig) toPortsRef() ports.TriggerRefDecl {
	out := ports.TriggerRefDecl{Action: t.Action, IsStartup: t.IsStartup, IsShutdown: t.IsShutdown}
	if t.Port != nil {
		ref := t.Port.toPortsRef()
		out.Port = &ref
	}
	return out
}

// toASTSource adapts a validated ProgramConfig into a ports.ASTSource the
// Elaborator can consume, so the same elaboration code path serves both
// an in-memory compiler front end and this backend's standalone tooling.
func (c *ProgramConfig) toASTSource() ports.ASTSource {
	classes := make(map[string]*ports.Reactor, len(c.Classes))
	for _, rc := range c.Classes {
		classes[rc.ClassName] = rc.toPortsReactor()
	}
	return &configAST{mainClass: c.Main, classes: classes}
}

func (rc ReactorConfig) toPortsReactor() *ports.Reactor {
	r := &ports.Reactor{ClassName: rc.ClassName}
	for _, p := range rc.Inputs {
		r.Inputs = append(r.Inputs, ports.PortDecl{Name: p.Name, IsInput: true})
	}
	for _, p := range rc.Outputs {
		r.Outputs = append(r.Outputs, ports.PortDecl{Name: p.Name, IsInput: false})
	}
	for _, t := range rc.Timers {
		r.Timers = append(r.Timers, ports.TimerDecl{Name: t.Name, Offset: t.Offset.toPortsTime(), Period: t.Period.toPortsTime()})
	}
	for _, a := range rc.Actions {
		origin := ports.LogicalActionDecl
		if a.Origin == "physical" {
			origin = ports.PhysicalActionDecl
		}
		r.Actions = append(r.Actions, ports.ActionDecl{Name: a.Name, Origin: origin, MinimumDelay: a.MinimumDelay.toPortsTime()})
	}
	for _, rd := range rc.Reactions {
		decl := ports.ReactionDecl{}
		for _, t := range rd.Triggers {
			decl.Triggers = append(decl.Triggers, t.toPortsRef())
		}
		for _, s := range rd.Sources {
			decl.Sources = append(decl.Sources, s.toPortsRef())
		}
		for _, e := range rd.Effects {
			decl.Effects = append(decl.Effects, e.toPortsRef())
		}
		r.Reactions = append(r.Reactions, decl)
	}
	for _, inst := range rc.Instantiations {
		r.Instantiations = append(r.Instantiations, ports.InstantiationDecl{Name: inst.Name, ClassName: inst.ClassName})
	}
	for _, c := range rc.Connections {
		cd := ports.ConnectionDecl{Physical: c.Physical}
		for _, l := range c.Left {
			cd.Left = append(cd.Left, l.toPortsRef())
		}
		for _, rr := range c.Right {
			cd.Right = append(cd.Right, rr.toPortsRef())
		}
		if c.Delay != nil {
			d := c.Delay.toPortsTime()
			cd.Delay = &d
		}
		if c.Width != nil {
			cd.Width = &ports.ConnectionWidth{Width: c.Width.Width}
		}
		r.Connections = append(r.Connections, cd)
	}
	return r
}

type configAST struct {
	mainClass string
	classes   map[string]*ports.Reactor
}

func (a *configAST) MainClassName() string { return a.mainClass }

func (a *configAST) LookupClass(name string) (*ports.Reactor, bool) {
	r, ok := a.classes[name]
	return r, ok
}

func (a *configAST) AllClassNames() []string {
	names := make([]string, 0, len(a.classes))
	for name := range a.classes {
		names = append(names, name)
	}
	return names
}
