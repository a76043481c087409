package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSampleTree() (*ReactorInstance, *PortInstance, *ReactionInstance) {
	root := &ReactorInstance{Name: "main", ClassName: "Main"}
	child := &ReactorInstance{Name: "sensor", ClassName: "Sensor", Parent: root}
	root.Children = append(root.Children, child)

	out := &PortInstance{Name: "value", Direction: Output, Owner: child}
	child.Outputs = append(child.Outputs, out)

	timer := &TimerInstance{Name: "tick", Owner: child, Offset: 0, Period: 1000}
	child.Timers = append(child.Timers, timer)

	reaction := &ReactionInstance{Name: "on_tick", Owner: child, Priority: 1, TriggerTimers: []*TimerInstance{timer}, EffectPorts: []*PortInstance{out}}
	child.Reactions = append(child.Reactions, reaction)

	return root, out, reaction
}

// TestReactorInstance_Path verifies the dotted instance-path convention
// used throughout the backend as the stable identity for triggers,
// reactions, and diagnostics (§3).
func TestReactorInstance_Path(t *testing.T) {
	root, port, reaction := buildSampleTree()
	child := root.Children[0]

	assert.Equal(t, "main", root.Path())
	assert.Equal(t, "main.sensor", child.Path())
	assert.Equal(t, "main.sensor.value", port.Path())
	assert.Equal(t, "main.sensor.reaction[1]", reaction.Path())
}

// TestReactorInstance_IsMain verifies the root-detection helper the
// elaborator and explorer use to find the startup/shutdown scope.
func TestReactorInstance_IsMain(t *testing.T) {
	root, _, _ := buildSampleTree()
	assert.True(t, root.IsMain())
	assert.False(t, root.Children[0].IsMain())
}

// TestReactorInstance_AllReactions verifies the preorder, declaration-order
// traversal elaboration relies on to assign a deterministic global reaction
// ordering (§4.1).
func TestReactorInstance_AllReactions(t *testing.T) {
	root, _, reaction := buildSampleTree()
	all := root.AllReactions()
	require.Len(t, all, 1)
	assert.Same(t, reaction, all[0])
}

// TestReactionInstance_TriggeredBy verifies trigger-kind dispatch across
// timers, ports, and the implicit startup/shutdown triggers, used
// by the explorer to decide which reactions an event activates (§4.2).
func TestReactionInstance_TriggeredBy(t *testing.T) {
	_, _, reaction := buildSampleTree()
	timerRef := reaction.TriggerTimers[0].TriggerRef()

	assert.True(t, reaction.TriggeredBy(timerRef))
	assert.False(t, reaction.TriggeredBy(TriggerRef{Kind: TriggerPort, Path: "main.sensor.value"}))

	startupReaction := &ReactionInstance{TriggersStartup: true}
	assert.True(t, startupReaction.TriggeredBy(TriggerRef{Kind: TriggerStartup}))
	assert.False(t, startupReaction.TriggeredBy(TriggerRef{Kind: TriggerShutdown}))
}

// TestTimerInstance_IsOneShot verifies the zero-period convention for
// one-shot timers (§3).
func TestTimerInstance_IsOneShot(t *testing.T) {
	oneShot := &TimerInstance{Period: 0}
	periodic := &TimerInstance{Period: 1000}
	assert.True(t, oneShot.IsOneShot())
	assert.False(t, periodic.IsOneShot())
}

// TestReactorInstance_FindChild verifies child lookup by name, used by the
// elaborator when resolving instantiation hierarchies.
func TestReactorInstance_FindChild(t *testing.T) {
	root, _, _ := buildSampleTree()
	assert.Same(t, root.Children[0], root.FindChild("sensor"))
	assert.Nil(t, root.FindChild("missing"))
}

// TestPortInstance_TriggerRef verifies the trigger-reference derivation
// that event coalescing depends on for equality.
func TestPortInstance_TriggerRef(t *testing.T) {
	_, port, _ := buildSampleTree()
	ref := port.TriggerRef()
	assert.Equal(t, TriggerPort, ref.Kind)
	assert.Equal(t, "main.sensor.value", ref.Path)
}
