package domain

import "fmt"

// ExplorationMode selects the set of initial events the state-space
// explorer injects before simulating forward (§4.2).
type ExplorationMode int

const (
	// InitAndPeriodic enqueues startup and every timer at its offset.
	InitAndPeriodic ExplorationMode = iota
	// ShutdownTimeout enqueues shutdown plus an overapproximation of
	// everything that might fire at the shutdown instant.
	ShutdownTimeout
	// ShutdownStarvation enqueues shutdown alone.
	ShutdownStarvation
)

// Phase identifies which execution phase a state-space node, fragment, or
// instruction block belongs to (§3).
type Phase int

const (
	PhaseInit Phase = iota
	PhasePeriodic
	PhaseShutdownTimeout
	PhaseShutdownStarvation
	PhaseSyncBlock
	PhasePreamble
	PhaseEpilogue
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "INIT"
	case PhasePeriodic:
		return "PERIODIC"
	case PhaseShutdownTimeout:
		return "SHUTDOWN_TIMEOUT"
	case PhaseShutdownStarvation:
		return "SHUTDOWN_STARVATION"
	case PhaseSyncBlock:
		return "SYNC_BLOCK"
	case PhasePreamble:
		return "PREAMBLE"
	case PhaseEpilogue:
		return "EPILOGUE"
	default:
		return "UNKNOWN"
	}
}

// StateSpaceNode is a finalized snapshot of one logical instant visited by
// the explorer (§3): the tag it occurred at, the reactions invoked there,
// and the event-queue snapshot taken on entry (after inserting the new
// events produced at this tag).
type StateSpaceNode struct {
	Tag              Tag
	ReactionsInvoked []*ReactionInstance // insertion order within this node
	QueueSnapshot    []TriggerRef        // sorted multiset, for hashing

	next []*StateSpaceNode // forward edges (usually one; the loop-closing
	// edge from loopNode to tail is the only node with this unused — the
	// diagram walks head->tail via Next() and treats the loop edge
	// separately through LoopNode/LoopNodeNext).
}

// Next returns the node(s) reachable in one step from this node.
func (n *StateSpaceNode) Next() []*StateSpaceNode { return n.next }

// AddEdge links n to a successor; used by the explorer while building the
// diagram and by the loop-closing step.
func (n *StateSpaceNode) AddEdge(to *StateSpaceNode) { n.next = append(n.next, to) }

// HashKey returns the stable hash key for loop detection: the sorted
// reaction-invocation set plus the sorted trigger-multiset snapshot,
// independent of tag (§3: "hash on (reactions invoked, multiset of queued
// triggers), independent of tag").
func (n *StateSpaceNode) HashKey() string {
	reactionPaths := make([]string, len(n.ReactionsInvoked))
	for i, r := range n.ReactionsInvoked {
		reactionPaths[i] = r.Path()
	}
	sortStrings(reactionPaths)

	triggerPaths := make([]string, len(n.QueueSnapshot))
	for i, t := range n.QueueSnapshot {
		triggerPaths[i] = fmt.Sprintf("%d:%s", t.Kind, t.Path)
	}
	sortStrings(triggerPaths)

	return fmt.Sprintf("R%v|Q%v", reactionPaths, triggerPaths)
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

// StateSpaceDiagram is the directed graph of state-space nodes produced by
// one exploration run (§3). Head is the first node visited; Tail is the
// last finalized node (the one immediately before a detected loop, or the
// final node when exploration terminated without a loop). LoopNode and
// LoopNodeNext are nil unless a loop was detected.
type StateSpaceDiagram struct {
	Mode ExplorationMode
	Head *StateSpaceNode
	Tail *StateSpaceNode

	Nodes []*StateSpaceNode // finalized nodes in visitation order

	LoopNode     *StateSpaceNode // first repeated node
	LoopNodeNext *StateSpaceNode // node reached on the second visit

	// Hyperperiod is timestamp(LoopNodeNext) - timestamp(LoopNode); zero
	// when no loop was detected.
	Hyperperiod Timestamp
}

// HasLoop reports whether exploration detected a repeating state.
func (d *StateSpaceDiagram) HasLoop() bool { return d.LoopNode != nil }
