package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lf-go/pretsched/internal/ports"
)

func TestTimeConfig_ToPortsTime_MapsUnitStrings(t *testing.T) {
	cases := []struct {
		unit string
		want ports.TimeUnit
	}{
		{"", ports.Nanoseconds},
		{"us", ports.Microseconds},
		{"ms", ports.Milliseconds},
		{"s", ports.Seconds},
		{"min", ports.Minutes},
		{"h", ports.Hours},
	}
	for _, c := range cases {
		tc := TimeConfig{Magnitude: 5, Unit: c.unit}
		got := tc.toPortsTime()
		assert.Equal(t, int64(5), got.Magnitude)
		assert.Equal(t, c.want, got.Unit)
	}
}

func TestReactorConfig_ToPortsReactor_MapsAllDeclarations(t *testing.T) {
	rc := ReactorConfig{
		ClassName: "Main",
		Inputs:    []PortConfig{{Name: "in"}},
		Outputs:   []PortConfig{{Name: "out"}},
		Timers: []TimerConfig{
			{Name: "t", Offset: TimeConfig{Magnitude: 1, Unit: "ms"}, Period: TimeConfig{Magnitude: 10, Unit: "ms"}},
		},
		Actions: []ActionConfig{
			{Name: "a", Origin: "physical", MinimumDelay: TimeConfig{Magnitude: 2, Unit: "s"}},
		},
		Reactions: []ReactionConfig{
			{Triggers: []TriggerRefConfig{{Action: "t"}}, Effects: []TriggerRefConfig{{Port: &PortRefConfig{Port: "out"}}}},
		},
		Instantiations: []InstantiationConfig{{Name: "child", ClassName: "Child"}},
		Connections: []ConnectionConfig{
			{
				Left:  []PortRefConfig{{Instantiation: "child", Port: "out"}},
				Right: []PortRefConfig{{Port: "in"}},
				Delay: &TimeConfig{Magnitude: 3, Unit: "ms"},
				Width: &ConnectionWidthConfig{Width: 4},
			},
		},
	}

	r := rc.toPortsReactor()

	require.Len(t, r.Inputs, 1)
	assert.Equal(t, "in", r.Inputs[0].Name)
	assert.True(t, r.Inputs[0].IsInput)

	require.Len(t, r.Outputs, 1)
	assert.False(t, r.Outputs[0].IsInput)

	require.Len(t, r.Timers, 1)
	assert.Equal(t, int64(1), r.Timers[0].Offset.Magnitude)
	assert.Equal(t, ports.Milliseconds, r.Timers[0].Offset.Unit)
	assert.Equal(t, int64(10), r.Timers[0].Period.Magnitude)

	require.Len(t, r.Actions, 1)
	assert.Equal(t, ports.PhysicalActionDecl, r.Actions[0].Origin)
	assert.Equal(t, int64(2), r.Actions[0].MinimumDelay.Magnitude)
	assert.Equal(t, ports.Seconds, r.Actions[0].MinimumDelay.Unit)

	require.Len(t, r.Reactions, 1)
	require.Len(t, r.Reactions[0].Triggers, 1)
	assert.Equal(t, "t", r.Reactions[0].Triggers[0].Action)
	require.Len(t, r.Reactions[0].Effects, 1)
	assert.Equal(t, "out", r.Reactions[0].Effects[0].Port.Port)

	require.Len(t, r.Instantiations, 1)
	assert.Equal(t, "Child", r.Instantiations[0].ClassName)

	require.Len(t, r.Connections, 1)
	conn := r.Connections[0]
	assert.Equal(t, "child", conn.Left[0].Instantiation)
	assert.Equal(t, "in", conn.Right[0].Port)
	require.NotNil(t, conn.Delay)
	assert.Equal(t, int64(3), conn.Delay.Magnitude)
	require.NotNil(t, conn.Width)
	assert.Equal(t, 4, conn.Width.Width)
}

func TestReactorConfig_ToPortsReactor_DefaultActionOriginIsLogical(t *testing.T) {
	rc := ReactorConfig{ClassName: "Main", Actions: []ActionConfig{{Name: "a"}}}
	r := rc.toPortsReactor()
	require.Len(t, r.Actions, 1)
	assert.Equal(t, ports.LogicalActionDecl, r.Actions[0].Origin)
}

func TestProgramConfig_ToASTSource_ResolvesMainAndClasses(t *testing.T) {
	cfg := &ProgramConfig{
		Main: "Main",
		Classes: []ReactorConfig{
			{ClassName: "Main", Instantiations: []InstantiationConfig{{Name: "c", ClassName: "Child"}}},
			{ClassName: "Child"},
		},
	}

	source := cfg.toASTSource()
	assert.Equal(t, "Main", source.MainClassName())

	main, ok := source.LookupClass("Main")
	require.True(t, ok)
	assert.Equal(t, "Main", main.ClassName)

	_, ok = source.LookupClass("Missing")
	assert.False(t, ok)

	names := source.AllClassNames()
	assert.ElementsMatch(t, []string{"Main", "Child"}, names)
}

func TestProgramConfig_ToASTSource_ElaboratesThroughToReactorInstance(t *testing.T) {
	cfg := &ProgramConfig{
		Main: "Main",
		Classes: []ReactorConfig{
			{
				ClassName: "Main",
				Timers:    []TimerConfig{{Name: "t", Period: TimeConfig{Magnitude: 10, Unit: "ms"}}},
				Reactions: []ReactionConfig{
					{Triggers: []TriggerRefConfig{{Action: "t"}}},
				},
			},
		},
	}

	root, err := NewElaborator(cfg.toASTSource()).Elaborate()
	require.NoError(t, err)
	assert.True(t, root.IsMain())
	require.Len(t, root.AllTimers(), 1)
	require.Len(t, root.Reactions, 1)
}
