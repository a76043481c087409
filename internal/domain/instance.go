package domain

import "fmt"

// PortDirection distinguishes the two port variants (§3).
type PortDirection int

const (
	// Input is a port that receives values.
	Input PortDirection = iota
	// Output is a port that produces values.
	Output
)

// ActionOrigin distinguishes logical from physical actions (§3).
type ActionOrigin int

const (
	// LogicalOrigin actions are scheduled deterministically by reactions.
	LogicalOrigin ActionOrigin = iota
	// PhysicalOrigin actions arrive nondeterministically at runtime and are
	// never enqueued by the state-space explorer (§4.2).
	PhysicalOrigin
)

// PortInstance is a single input or output port owned by exactly one
// ReactorInstance. ReactionsRead and ReactionsWrite are non-owning
// back-references into the same tree, populated during elaboration (§4.1).
type PortInstance struct {
	Name      string
	Direction PortDirection
	Owner     *ReactorInstance // non-owning, lookup only

	ReactionsRead  []*ReactionInstance // reactions that depend on this port
	ReactionsWrite []*ReactionInstance // reactions that write to this port
}

// Path returns the fully qualified dotted path of the port, e.g.
// "main.sensor.value".
func (p *PortInstance) Path() string {
	if p.Owner == nil {
		return p.Name
	}
	return p.Owner.Path() + "." + p.Name
}

// TimerInstance is a periodic (or one-shot, when Period == 0) trigger
// (§3). Offset and Period are nonnegative nanosecond durations.
type TimerInstance struct {
	Name   string
	Owner  *ReactorInstance
	Offset Timestamp
	Period Timestamp
}

// Path returns the fully qualified dotted path of the timer.
func (t *TimerInstance) Path() string { return t.Owner.Path() + "." + t.Name }

// IsOneShot reports whether the timer fires exactly once (zero period).
func (t *TimerInstance) IsOneShot() bool { return t.Period == 0 }

// ActionInstance is a logical or physical action with a minimum delay
// (§3). ReactionsRead and ReactionsWrite mirror PortInstance's role for
// actions used as triggers/sources/effects.
type ActionInstance struct {
	Name         string
	Owner        *ReactorInstance
	Origin       ActionOrigin
	MinimumDelay Timestamp

	ReactionsRead  []*ReactionInstance
	ReactionsWrite []*ReactionInstance
}

// Path returns the fully qualified dotted path of the action.
func (a *ActionInstance) Path() string { return a.Owner.Path() + "." + a.Name }

// TriggerRef returns the stable reference used to identify this action in
// events and trigger multisets.
func (a *ActionInstance) TriggerRef() TriggerRef {
	return TriggerRef{Kind: TriggerAction, Path: a.Path()}
}

// TriggerRef returns the stable reference used to identify this timer in
// events and trigger multisets.
func (t *TimerInstance) TriggerRef() TriggerRef {
	return TriggerRef{Kind: TriggerTimer, Path: t.Path()}
}

// TriggerRef returns the stable reference used to identify this port in
// events and trigger multisets.
func (p *PortInstance) TriggerRef() TriggerRef {
	return TriggerRef{Kind: TriggerPort, Path: p.Path()}
}

// ReactionInstance is a single reaction belonging to one ReactorInstance,
// ordered by declaration position (1-based Priority) (§3). Triggers,
// sources, and effects hold non-owning references into the tree; each
// trigger is recorded in one of TriggerPorts/TriggerActions/TriggerTimers
// or as the TriggersStartup/TriggersShutdown flag (kept denormalized here
// as typed slices for direct use by the explorer and DAG generator, rather
// than an interface{} union).
type ReactionInstance struct {
	Name     string
	Owner    *ReactorInstance
	Priority int // 1-based declaration order within Owner

	TriggerPorts     []*PortInstance
	TriggerActions   []*ActionInstance
	TriggerTimers    []*TimerInstance
	TriggersStartup  bool
	TriggersShutdown bool

	SourcePorts []*PortInstance // read-only, non-triggering

	EffectPorts   []*PortInstance
	EffectActions []*ActionInstance

	// DependsOnReactions and DependentReactions encode the intra-reactor
	// priority chain (§3): reaction k observes all effects of reactions
	// 1..k-1 at the same tag. Populated during elaboration step 5.
	DependsOnReactions   []*ReactionInstance
	DependentReactions   []*ReactionInstance
}

// Path returns the fully qualified dotted path of the reaction.
func (r *ReactionInstance) Path() string {
	return fmt.Sprintf("%s.reaction[%d]", r.Owner.Path(), r.Priority)
}

// TriggeredBy reports whether this reaction is ever invoked by the
// given trigger reference, used by the explorer to decide which reactions a
// popped event activates.
func (r *ReactionInstance) TriggeredBy(ref TriggerRef) bool {
	switch ref.Kind {
	case TriggerStartup:
		return r.TriggersStartup
	case TriggerShutdown:
		return r.TriggersShutdown
	case TriggerTimer:
		for _, t := range r.TriggerTimers {
			if t.TriggerRef() == ref {
				return true
			}
		}
		return false
	case TriggerPort:
		for _, p := range r.TriggerPorts {
			if p.TriggerRef() == ref {
				return true
			}
		}
		return false
	case TriggerAction:
		for _, a := range r.TriggerActions {
			if a.TriggerRef() == ref {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// ReactorInstance is a node in the runtime reactor tree (§3). Parent is a
// non-owning back-reference; Children/Inputs/Outputs/Timers/Actions/
// Reactions are owned. ConnectionMap materializes the class's connection
// declarations at this level: source port -> set of destination ports.
type ReactorInstance struct {
	Name              string
	ClassName         string
	InstantiationOrdinal int // count of prior siblings sharing ClassName
	Parent            *ReactorInstance // non-owning, lookup only

	Children  []*ReactorInstance
	Inputs    []*PortInstance
	Outputs   []*PortInstance
	Timers    []*TimerInstance
	Actions   []*ActionInstance
	Reactions []*ReactionInstance

	// ConnectionMap maps a source port to its directly declared
	// destination ports at this reactor's level, plus the per-destination
	// connection attributes (delay/physical/after/width).
	ConnectionMap map[*PortInstance][]*ConnectionEdge
}

// ConnectionEdge is one resolved destination of a connection, carrying the
// attributes the explorer needs to compute arrival tags (§3, §4.2).
type ConnectionEdge struct {
	Destination *PortInstance
	Delay       Timestamp // effective delay; 0 if none declared
	Physical    bool
	WidthSpec   *WidthSpec
}

// WidthSpec describes a bank/multiport connection width; nil means a
// plain 1:1 connection.
type WidthSpec struct {
	Width int
}

// IsMain reports whether this instance is the tree root.
func (r *ReactorInstance) IsMain() bool { return r.Parent == nil }

// Path returns the fully qualified dotted path of this reactor instance,
// e.g. "main.sensor".
func (r *ReactorInstance) Path() string {
	if r.Parent == nil {
		return r.Name
	}
	return r.Parent.Path() + "." + r.Name
}

// FindChild returns the immediate child with the given name, or nil.
func (r *ReactorInstance) FindChild(name string) *ReactorInstance {
	for _, c := range r.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// FindLocalPort resolves a bare port name against this reactor's own
// inputs and outputs (not its children's).
func (r *ReactorInstance) FindLocalPort(name string) *PortInstance {
	for _, p := range r.Inputs {
		if p.Name == name {
			return p
		}
	}
	for _, p := range r.Outputs {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// AllReactorInstances performs a preorder walk of the subtree rooted at r,
// visiting r itself first.
func (r *ReactorInstance) AllReactorInstances() []*ReactorInstance {
	out := []*ReactorInstance{r}
	for _, c := range r.Children {
		out = append(out, c.AllReactorInstances()...)
	}
	return out
}

// AllReactions returns every reaction instance in the subtree rooted at r,
// in the deterministic order produced by a preorder walk followed by each
// reactor's declaration order — the order elaboration builds the tree in.
func (r *ReactorInstance) AllReactions() []*ReactionInstance {
	var out []*ReactionInstance
	for _, inst := range r.AllReactorInstances() {
		out = append(out, inst.Reactions...)
	}
	return out
}

// AllTimers returns every timer instance in the subtree rooted at r.
func (r *ReactorInstance) AllTimers() []*TimerInstance {
	var out []*TimerInstance
	for _, inst := range r.AllReactorInstances() {
		out = append(out, inst.Timers...)
	}
	return out
}

// AllActions returns every action instance in the subtree rooted at r.
func (r *ReactorInstance) AllActions() []*ActionInstance {
	var out []*ActionInstance
	for _, inst := range r.AllReactorInstances() {
		out = append(out, inst.Actions...)
	}
	return out
}

// AllInputPorts returns every input port instance in the subtree rooted at r.
func (r *ReactorInstance) AllInputPorts() []*PortInstance {
	var out []*PortInstance
	for _, inst := range r.AllReactorInstances() {
		out = append(out, inst.Inputs...)
	}
	return out
}
