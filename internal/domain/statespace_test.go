package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStateSpaceNode_HashKey_TagIndependent verifies the loop-detection
// invariant from §3: two nodes with the same reactions invoked and the
// same queued-trigger multiset hash identically regardless of tag.
func TestStateSpaceNode_HashKey_TagIndependent(t *testing.T) {
	reaction := &ReactionInstance{Owner: &ReactorInstance{Name: "main"}, Priority: 1}
	queue := []TriggerRef{{Kind: TriggerTimer, Path: "main.t"}}

	early := &StateSpaceNode{Tag: Tag{100, 0}, ReactionsInvoked: []*ReactionInstance{reaction}, QueueSnapshot: queue}
	late := &StateSpaceNode{Tag: Tag{900, 0}, ReactionsInvoked: []*ReactionInstance{reaction}, QueueSnapshot: queue}

	assert.Equal(t, early.HashKey(), late.HashKey(), "hash must be independent of tag")
}

// TestStateSpaceNode_HashKey_DiffersOnReactionSet verifies the hash does
// distinguish nodes that invoke a different set of reactions.
func TestStateSpaceNode_HashKey_DiffersOnReactionSet(t *testing.T) {
	owner := &ReactorInstance{Name: "main"}
	r1 := &ReactionInstance{Owner: owner, Priority: 1}
	r2 := &ReactionInstance{Owner: owner, Priority: 2}

	a := &StateSpaceNode{Tag: Tag{100, 0}, ReactionsInvoked: []*ReactionInstance{r1}}
	b := &StateSpaceNode{Tag: Tag{100, 0}, ReactionsInvoked: []*ReactionInstance{r2}}

	assert.NotEqual(t, a.HashKey(), b.HashKey())
}

// TestStateSpaceNode_HashKey_OrderIndependent verifies the hash sorts both
// the reaction set and the trigger multiset before hashing, so insertion
// order does not matter (§9).
func TestStateSpaceNode_HashKey_OrderIndependent(t *testing.T) {
	owner := &ReactorInstance{Name: "main"}
	r1 := &ReactionInstance{Owner: owner, Priority: 1}
	r2 := &ReactionInstance{Owner: owner, Priority: 2}

	a := &StateSpaceNode{ReactionsInvoked: []*ReactionInstance{r1, r2}}
	b := &StateSpaceNode{ReactionsInvoked: []*ReactionInstance{r2, r1}}

	assert.Equal(t, a.HashKey(), b.HashKey())
}

// TestStateSpaceDiagram_HasLoop verifies loop detection is reported only
// once LoopNode is set by the explorer.
func TestStateSpaceDiagram_HasLoop(t *testing.T) {
	d := &StateSpaceDiagram{}
	assert.False(t, d.HasLoop())

	repeat := &StateSpaceNode{Tag: Tag{100, 0}}
	d.LoopNode = repeat
	d.LoopNodeNext = &StateSpaceNode{Tag: Tag{900, 0}}
	d.Hyperperiod = 800

	assert.True(t, d.HasLoop())
}

// TestStateSpaceNode_Next verifies successor linkage used by the diagram
// walk that feeds the fragment splitter.
func TestStateSpaceNode_Next(t *testing.T) {
	a := &StateSpaceNode{Tag: Tag{0, 0}}
	b := &StateSpaceNode{Tag: Tag{100, 0}}
	a.AddEdge(b)

	require.Len(t, a.Next(), 1)
	assert.Same(t, b, a.Next()[0])
}
