package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFragment_ValidateTransitions_AllowsSingleDefault verifies a fragment
// with zero or one default transitions (plus any number of guarded ones)
// passes validation.
func TestFragment_ValidateTransitions_AllowsSingleDefault(t *testing.T) {
	target := &Fragment{Phase: PhasePeriodic}
	f := &Fragment{
		Phase: PhaseInit,
		Downstream: []Transition{
			{Kind: GuardedTransition, Target: target},
			{Kind: DefaultTransition, Target: target},
		},
	}
	assert.NoError(t, f.ValidateTransitions())
}

// TestFragment_ValidateTransitions_RejectsDuplicateDefault verifies more
// than one default transition is an EmissionError (§4.4.4, §4.4.6).
func TestFragment_ValidateTransitions_RejectsDuplicateDefault(t *testing.T) {
	t1 := &Fragment{Phase: PhasePeriodic}
	t2 := &Fragment{Phase: PhaseShutdownTimeout}
	f := &Fragment{
		Phase: PhaseInit,
		Downstream: []Transition{
			{Kind: DefaultTransition, Target: t1},
			{Kind: DefaultTransition, Target: t2},
		},
	}

	err := f.ValidateTransitions()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateDefaultTransition)
}

// TestFragment_DefaultTransitionTarget verifies lookup of the single
// default transition, and the not-found case.
func TestFragment_DefaultTransitionTarget(t *testing.T) {
	target := &Fragment{Phase: PhasePeriodic}
	withDefault := &Fragment{Downstream: []Transition{{Kind: DefaultTransition, Target: target}}}
	got, ok := withDefault.DefaultTransitionTarget()
	assert.True(t, ok)
	assert.Same(t, target, got)

	withoutDefault := &Fragment{Downstream: []Transition{{Kind: GuardedTransition, Target: target}}}
	_, ok = withoutDefault.DefaultTransitionTarget()
	assert.False(t, ok)
}

// TestFragment_HasUpstream verifies the linker's traversal-root detection:
// exactly the fragments with no recorded upstream start a linked stream
// (§4.4.4).
func TestFragment_HasUpstream(t *testing.T) {
	root := &Fragment{Phase: PhaseInit}
	child := &Fragment{Phase: PhasePeriodic, Upstream: []*Fragment{root}}

	assert.False(t, root.HasUpstream())
	assert.True(t, child.HasUpstream())
}
