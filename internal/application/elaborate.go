// Package application orchestrates the compile-time pipeline: elaboration,
// state-space exploration, DAG generation, instruction emission, and
// linking, over the pure models in internal/domain and the external
// collaborators defined in internal/ports.
package application

import (
	"fmt"

	"github.com/lf-go/pretsched/internal/domain"
	"github.com/lf-go/pretsched/internal/ports"
)

// Elaborator expands a checked AST into the runtime reactor instance tree
// and its dependency graph (§4.1).
type Elaborator struct {
	source ports.ASTSource
}

// NewElaborator returns an Elaborator reading reactor classes from source.
func NewElaborator(source ports.ASTSource) *Elaborator {
	return &Elaborator{source: source}
}

// instantiationCount tracks, within one Elaborate call, how many prior
// siblings of a given reactor instance share its class — used only for
// the instantiation ordinal (display disambiguation, §4.1 step 1).
type instantiationCount struct {
	countByClass map[string]int
}

func newInstantiationCount() *instantiationCount {
	return &instantiationCount{countByClass: make(map[string]int)}
}

func (c *instantiationCount) next(className string) int {
	ordinal := c.countByClass[className]
	c.countByClass[className]++
	return ordinal
}

// Elaborate expands the program rooted at the AST's main class into a
// ReactorInstance tree (§4.1's public contract: elaborate(AST root) →
// ReactorInstance).
func (e *Elaborator) Elaborate() (*domain.ReactorInstance, error) {
	mainName := e.source.MainClassName()
	mainClass, ok := e.source.LookupClass(mainName)
	if !ok {
		elabErr := &domain.ElaborationError{Kind: domain.ErrUnknownReactorClass, Detail: mainName}
		if s, ok := nearestName(mainName, e.source.AllClassNames()); ok {
			elabErr.Suggestion = s
		}
		return nil, elabErr
	}

	root, err := e.elaborateInstance(mainName, mainClass, nil, newInstantiationCount())
	if err != nil {
		return nil, fmt.Errorf("elaborate: %w", err)
	}
	return root, nil
}

// elaborateInstance creates one ReactorInstance and recursively elaborates
// its children, ports, timers, actions, connection map, and reactions, in
// the order fixed by §4.1 steps 1-5.
func (e *Elaborator) elaborateInstance(
	instanceName string,
	class *ports.Reactor,
	parent *domain.ReactorInstance,
	siblings *instantiationCount,
) (*domain.ReactorInstance, error) {
	inst := &domain.ReactorInstance{
		Name:                 instanceName,
		ClassName:            class.ClassName,
		InstantiationOrdinal: siblings.next(class.ClassName),
		Parent:               parent,
		ConnectionMap:        make(map[*domain.PortInstance][]*domain.ConnectionEdge),
	}

	childSiblings := newInstantiationCount()
	for _, childDecl := range class.Instantiations {
		childClass, ok := e.source.LookupClass(childDecl.ClassName)
		if !ok {
			elabErr := &domain.ElaborationError{
				Kind:     domain.ErrUnknownReactorClass,
				Location: inst.Path() + "." + childDecl.Name,
				Detail:   childDecl.ClassName,
			}
			if s, ok := nearestName(childDecl.ClassName, e.source.AllClassNames()); ok {
				elabErr.Suggestion = s
			}
			return nil, elabErr
		}
		child, err := e.elaborateInstance(childDecl.Name, childClass, inst, childSiblings)
		if err != nil {
			return nil, err
		}
		inst.Children = append(inst.Children, child)
	}

	if err := populatePorts(inst, class); err != nil {
		return nil, err
	}
	populateTimersAndActions(inst, class)

	if err := populateConnections(inst, class); err != nil {
		return nil, err
	}

	if err := populateReactions(inst, class); err != nil {
		return nil, err
	}

	return inst, nil
}

func populatePorts(inst *domain.ReactorInstance, class *ports.Reactor) error {
	seen := make(map[string]struct{}, len(class.Inputs)+len(class.Outputs))
	for _, p := range class.Inputs {
		if _, dup := seen[p.Name]; dup {
			return &domain.ElaborationError{Kind: domain.ErrDuplicateName, Location: inst.Path(), Detail: p.Name}
		}
		seen[p.Name] = struct{}{}
		inst.Inputs = append(inst.Inputs, &domain.PortInstance{Name: p.Name, Direction: domain.Input, Owner: inst})
	}
	for _, p := range class.Outputs {
		if _, dup := seen[p.Name]; dup {
			return &domain.ElaborationError{Kind: domain.ErrDuplicateName, Location: inst.Path(), Detail: p.Name}
		}
		seen[p.Name] = struct{}{}
		inst.Outputs = append(inst.Outputs, &domain.PortInstance{Name: p.Name, Direction: domain.Output, Owner: inst})
	}
	return nil
}

func populateTimersAndActions(inst *domain.ReactorInstance, class *ports.Reactor) {
	for _, td := range class.Timers {
		inst.Timers = append(inst.Timers, &domain.TimerInstance{
			Name:   td.Name,
			Owner:  inst,
			Offset: timeToTimestamp(td.Offset),
			Period: timeToTimestamp(td.Period),
		})
	}
	for _, ad := range class.Actions {
		origin := domain.LogicalOrigin
		if ad.Origin == ports.PhysicalActionDecl {
			origin = domain.PhysicalOrigin
		}
		inst.Actions = append(inst.Actions, &domain.ActionInstance{
			Name:         ad.Name,
			Owner:        inst,
			Origin:       origin,
			MinimumDelay: timeToTimestamp(ad.MinimumDelay),
		})
	}
}

func timeToTimestamp(t ports.Time) domain.Timestamp {
	var unitNanos int64
	switch t.Unit {
	case ports.Nanoseconds:
		unitNanos = 1
	case ports.Microseconds:
		unitNanos = 1_000
	case ports.Milliseconds:
		unitNanos = 1_000_000
	case ports.Seconds:
		unitNanos = 1_000_000_000
	case ports.Minutes:
		unitNanos = 60_000_000_000
	case ports.Hours:
		unitNanos = 3_600_000_000_000
	default:
		unitNanos = 1
	}
	return domain.Timestamp(t.Magnitude * unitNanos)
}

// resolvePortRef resolves a source-level port reference against inst: a
// local reference names one of inst's own ports, a qualified reference
// names a port on an immediate child (§4.1 step 4).
func resolvePortRef(inst *domain.ReactorInstance, ref ports.PortRef) (*domain.PortInstance, error) {
	if ref.Instantiation == "" {
		if p := inst.FindLocalPort(ref.Port); p != nil {
			return p, nil
		}
		unresolved := &domain.ElaborationError{Kind: domain.ErrUnresolvedPort, Location: inst.Path(), Detail: ref.Port}
		if s, ok := nearestName(ref.Port, localPortNames(inst)); ok {
			unresolved.Suggestion = s
		}
		return nil, unresolved
	}
	child := inst.FindChild(ref.Instantiation)
	if child == nil {
		return nil, &domain.ElaborationError{
			Kind:     domain.ErrUnresolvedPort,
			Location: inst.Path(),
			Detail:   ref.Instantiation + "." + ref.Port,
		}
	}
	if p := child.FindLocalPort(ref.Port); p != nil {
		return p, nil
	}
	unresolved := &domain.ElaborationError{
		Kind:     domain.ErrUnresolvedPort,
		Location: inst.Path(),
		Detail:   ref.Instantiation + "." + ref.Port,
	}
	if s, ok := nearestName(ref.Port, localPortNames(child)); ok {
		unresolved.Suggestion = s
	}
	return nil, unresolved
}

// localPortNames returns every input and output port name declared
// directly on inst, used as the candidate set for "did you mean"
// suggestions on an unresolved port reference.
func localPortNames(inst *domain.ReactorInstance) []string {
	names := make([]string, 0, len(inst.Inputs)+len(inst.Outputs))
	for _, p := range inst.Inputs {
		names = append(names, p.Name)
	}
	for _, p := range inst.Outputs {
		names = append(names, p.Name)
	}
	return names
}

func populateConnections(inst *domain.ReactorInstance, class *ports.Reactor) error {
	for _, c := range class.Connections {
		var delay domain.Timestamp
		if c.Delay != nil {
			delay = timeToTimestamp(*c.Delay)
		}
		var width *domain.WidthSpec
		if c.Width != nil {
			width = &domain.WidthSpec{Width: c.Width.Width}
		}

		for _, leftRef := range c.Left {
			src, err := resolvePortRef(inst, leftRef)
			if err != nil {
				return err
			}
			for _, rightRef := range c.Right {
				dst, err := resolvePortRef(inst, rightRef)
				if err != nil {
					return err
				}
				inst.ConnectionMap[src] = append(inst.ConnectionMap[src], &domain.ConnectionEdge{
					Destination: dst,
					Delay:       delay,
					Physical:    c.Physical,
					WidthSpec:   width,
				})
			}
		}
	}
	return nil
}

// resolveTrigger resolves one source-level trigger/source/effect reference
// to the owning port or action instance, or recognizes it as the implicit
// startup/shutdown trigger.
func resolveTrigger(inst *domain.ReactorInstance, ref ports.TriggerRefDecl) (port *domain.PortInstance, action *domain.ActionInstance, timer *domain.TimerInstance, err error) {
	switch {
	case ref.IsStartup, ref.IsShutdown:
		return nil, nil, nil, nil
	case ref.Port != nil:
		p, rerr := resolvePortRef(inst, *ref.Port)
		if rerr != nil {
			return nil, nil, nil, rerr
		}
		return p, nil, nil, nil
	case ref.Action != "":
		for _, a := range inst.Actions {
			if a.Name == ref.Action {
				return nil, a, nil, nil
			}
		}
		for _, t := range inst.Timers {
			if t.Name == ref.Action {
				return nil, nil, t, nil
			}
		}
		return nil, nil, nil, &domain.ElaborationError{
			Kind:     domain.ErrUnresolvedPort,
			Location: inst.Path(),
			Detail:   ref.Action,
		}
	default:
		return nil, nil, nil, nil
	}
}

func populateReactions(inst *domain.ReactorInstance, class *ports.Reactor) error {
	var previous *domain.ReactionInstance
	for i, rd := range class.Reactions {
		reaction := &domain.ReactionInstance{
			Name:     fmt.Sprintf("reaction_%d", i+1),
			Owner:    inst,
			Priority: i + 1,
		}

		for _, t := range rd.Triggers {
			port, action, timer, err := resolveTrigger(inst, t)
			if err != nil {
				return err
			}
			switch {
			case t.IsStartup:
				reaction.TriggersStartup = true
			case t.IsShutdown:
				reaction.TriggersShutdown = true
			case timer != nil:
				reaction.TriggerTimers = append(reaction.TriggerTimers, timer)
			case port != nil:
				reaction.TriggerPorts = append(reaction.TriggerPorts, port)
				port.ReactionsRead = append(port.ReactionsRead, reaction)
			case action != nil:
				reaction.TriggerActions = append(reaction.TriggerActions, action)
				action.ReactionsRead = append(action.ReactionsRead, reaction)
			}
		}

		for _, s := range rd.Sources {
			port, _, _, err := resolveTrigger(inst, s)
			if err != nil {
				return err
			}
			if port != nil {
				reaction.SourcePorts = append(reaction.SourcePorts, port)
			}
		}

		for _, eff := range rd.Effects {
			port, action, _, err := resolveTrigger(inst, eff)
			if err != nil {
				return err
			}
			if port != nil {
				reaction.EffectPorts = append(reaction.EffectPorts, port)
				port.ReactionsWrite = append(port.ReactionsWrite, reaction)
			}
			if action != nil {
				reaction.EffectActions = append(reaction.EffectActions, action)
				action.ReactionsWrite = append(action.ReactionsWrite, reaction)
			}
		}

		if previous != nil {
			reaction.DependsOnReactions = append(reaction.DependsOnReactions, previous)
			previous.DependentReactions = append(previous.DependentReactions, reaction)
		}
		previous = reaction

		inst.Reactions = append(inst.Reactions, reaction)
	}
	return nil
}

// TransitiveDestinations computes transitiveClosure(p) per §4.1: the
// smallest set of ports reachable from p by following p's direct
// destinations at its own level, then each reached port's destinations
// within its own owning reactor's connection map. Only p itself is also
// looked up in its owner's parent's map, so a port reached as a
// destination is never followed upward out of its owner.
func TransitiveDestinations(p *domain.PortInstance) []*domain.PortInstance {
	visited := make(map[*domain.PortInstance]bool)
	var order []*domain.PortInstance

	var visit func(port *domain.PortInstance)
	visit = func(port *domain.PortInstance) {
		owner := port.Owner
		if owner == nil {
			return
		}
		// p is a connectable endpoint in at most two scopes: the
		// connections its own owner declares (p used locally), and the
		// connections the owner's parent declares (p referenced as
		// "owner.p"). Either may record p as a source. A port reached as a
		// destination is followed only within its own owner's map.
		edges := owner.ConnectionMap[port]
		if owner.Parent != nil && port == p {
			edges = append(edges, owner.Parent.ConnectionMap[port]...)
		}
		for _, edge := range edges {
			dst := edge.Destination
			if visited[dst] {
				continue
			}
			visited[dst] = true
			order = append(order, dst)
			visit(dst)
		}
	}
	visit(p)
	return order
}
