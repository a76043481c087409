package application

import (
	"fmt"

	"github.com/lf-go/pretsched/internal/domain"
)

// DagGenerator walks a finalized state-space diagram and produces the
// partitioned reaction-invocation DAG (§4.3).
type DagGenerator struct {
	NumWorkers int
}

// NewDagGenerator returns a DagGenerator that will partition reactions
// across numWorkers worker lanes.
func NewDagGenerator(numWorkers int) *DagGenerator {
	return &DagGenerator{NumWorkers: numWorkers}
}

// GenerateDag implements §4.3's public contract: generateDag(diagram) → Dag.
func (g *DagGenerator) GenerateDag(diagram *domain.StateSpaceDiagram) (*domain.Dag, error) {
	dag := domain.NewDag()

	var previousSync *domain.DagNode
	var previousTime domain.Timestamp
	reactionsUnconnectedToSync := make(map[*domain.ReactionInstance]*domain.DagNode)
	reactionsUnconnectedToNext := make(map[*domain.ReactionInstance]*domain.DagNode)

	nodes := diagram.Nodes
	for i, node := range nodes {
		isLoopClosing := diagram.HasLoop() && node == diagram.LoopNodeNext

		sync := dag.AddNode(&domain.DagNode{Kind: domain.SyncNode, Time: node.Tag})
		if previousSync != nil {
			if node.Tag.Timestamp > previousTime {
				dummy := dag.AddNode(&domain.DagNode{Kind: domain.DummyNode, Duration: node.Tag.Timestamp - previousTime})
				dag.AddEdge(previousSync, dummy)
				dag.AddEdge(dummy, sync)
			} else {
				dag.AddEdge(previousSync, sync)
			}
		} else {
			dag.Head = sync
		}

		var currentReactionNodes []*domain.DagNode
		reactionOf := make(map[*domain.ReactionInstance]*domain.DagNode)

		// Steps 2-3 run for every finalized node, including the one that
		// closes the loop: it carries its own real ReactionsInvoked (the
		// state repeats, but the invocation at that tag still executes),
		// so it needs its own REACTION nodes just like any other step.
		for _, r := range node.ReactionsInvoked {
			rn := dag.AddNode(&domain.DagNode{Kind: domain.ReactionNode, Reaction: r})
			dag.AddEdge(sync, rn)
			currentReactionNodes = append(currentReactionNodes, rn)
			reactionOf[r] = rn
		}

		// Step 3: intra-reactor priority edges within this step's set.
		for _, r := range node.ReactionsInvoked {
			rn := reactionOf[r]
			for _, dep := range r.DependsOnReactions {
				if depNode, ok := reactionOf[dep]; ok {
					dag.AddEdge(depNode, rn)
				}
			}
		}

		// Step 4: cross-step determinism edges to sync.
		for r, n := range reactionsUnconnectedToSync {
			if _, firesAgain := reactionOf[r]; firesAgain || isLoopClosing {
				dag.AddEdge(n, sync)
				delete(reactionsUnconnectedToSync, r)
			}
		}
		for r, n := range reactionOf {
			reactionsUnconnectedToSync[r] = n
		}

		// Step 5: cross-step same-reactor successor edges.
		if !isLoopClosing {
			for r, n := range reactionsUnconnectedToNext {
				for newR, newN := range reactionOf {
					if newR.Owner == r.Owner {
						dag.AddEdge(n, newN)
						delete(reactionsUnconnectedToNext, r)
					}
				}
			}
			for r, n := range reactionOf {
				reactionsUnconnectedToNext[r] = n
			}
		}

		previousSync = sync
		previousTime = node.Tag.Timestamp

		if i == len(nodes)-1 {
			dag.Tail = sync
		}
	}

	// Step 6: connect any reaction that still hasn't been wired to a
	// later sync back to the tail, so the loop closes. A reaction whose
	// own node already descends directly from dag.Tail (the common case
	// for the tail's own invocations, and for a diagram with no loop at
	// all) is already where it belongs; adding another edge here would
	// wire sync -> reaction -> sync right back to its own origin, a
	// spurious cycle.
	if dag.Tail != nil {
		for _, n := range reactionsUnconnectedToSync {
			if !dag.HasEdge(dag.Tail, n) {
				dag.AddEdge(n, dag.Tail)
			}
		}
	}

	if dag.HasCycle() {
		return nil, &domain.DagError{Detail: "generated graph contains a cycle"}
	}

	if err := g.partition(dag); err != nil {
		return nil, err
	}

	return dag, nil
}

// partition assigns a worker to every REACTION node and, within each
// worker, monotonically increasing release values in topological order;
// it also computes each REACTION node's nearest upstream SYNC (§4.3
// "Partitioning across workers").
func (g *DagGenerator) partition(dag *domain.Dag) error {
	order, err := dag.TopologicalSort()
	if err != nil {
		return fmt.Errorf("partition: %w", err)
	}

	next := 0
	for _, n := range order {
		if n.Kind != domain.ReactionNode {
			continue
		}
		n.Worker = next % g.NumWorkers
		next++
	}

	release := make([]int, g.NumWorkers)
	for _, n := range order {
		if n.Kind != domain.ReactionNode {
			continue
		}
		release[n.Worker]++
		n.ReleaseValue = release[n.Worker]
	}

	nearestSync := make(map[int]*domain.DagNode, len(dag.Nodes))
	for _, n := range order {
		switch n.Kind {
		case domain.SyncNode:
			nearestSync[n.ID] = n
		default:
			var sync *domain.DagNode
			for _, pred := range dag.Predecessors(n) {
				if s, ok := nearestSync[pred.ID]; ok {
					sync = s
				}
			}
			nearestSync[n.ID] = sync
		}
	}
	for _, n := range order {
		if n.Kind != domain.ReactionNode {
			continue
		}
		sync, ok := nearestSync[n.ID]
		if !ok || sync == nil {
			return &domain.DagError{Detail: fmt.Sprintf("reaction node %s has no associated sync", n)}
		}
		n.AssociatedSync = sync
	}

	return nil
}
