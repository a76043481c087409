package application

import (
	"github.com/lf-go/pretsched/internal/domain"
)

// FragmentSplitter partitions a finalized state-space diagram into
// phase-tagged fragments (§3's Fragment type; referenced by §4.4.3's "walk
// the partitioned DAG ... per fragment").
type FragmentSplitter struct {
	NumWorkers int
}

// NewFragmentSplitter returns a FragmentSplitter that wires guarded
// shutdown transitions for numWorkers workers.
func NewFragmentSplitter(numWorkers int) *FragmentSplitter {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	return &FragmentSplitter{NumWorkers: numWorkers}
}

// phaseFor maps an exploration mode to the phase its diagram's nodes
// belong to.
func phaseFor(mode domain.ExplorationMode) domain.Phase {
	switch mode {
	case domain.InitAndPeriodic:
		return domain.PhaseInit
	case domain.ShutdownTimeout:
		return domain.PhaseShutdownTimeout
	case domain.ShutdownStarvation:
		return domain.PhaseShutdownStarvation
	default:
		return domain.PhaseInit
	}
}

// Split produces one Fragment per exploration-mode diagram supplied,
// linking INIT_AND_PERIODIC's loop body (if present) into a dedicated
// PERIODIC fragment and wiring the default transition init -> periodic ->
// (loops to itself), plus a BIT-guarded transition from the long-lived
// fragment (periodic if the program loops, otherwise init) to
// SHUTDOWN_TIMEOUT and a starvation-guarded transition to
// SHUTDOWN_STARVATION (§4.4.1, §5).
//
// diagrams must be keyed by mode; missing modes produce no fragment.
func (s *FragmentSplitter) Split(diagrams map[domain.ExplorationMode]*domain.StateSpaceDiagram) []*domain.Fragment {
	var fragments []*domain.Fragment

	var initFragment, periodicFragment *domain.Fragment
	initDiagram := diagrams[domain.InitAndPeriodic]
	if initDiagram != nil {
		initFragment, periodicFragment = splitInitAndPeriodic(initDiagram)
		fragments = append(fragments, initFragment)
		if periodicFragment != nil {
			fragments = append(fragments, periodicFragment)
			// Both default transitions into PERIODIC (from init, and its own
			// loop back) are one unconditional jump per worker to its label.
			jumps := make([]domain.Instruction, s.NumWorkers)
			for w := range jumps {
				jumps[w], _ = domain.NewInstruction(domain.JAL, "",
					domain.RegOperand(domain.GlobalZero),
					domain.LabelOp(periodicFragment.Phase.String()))
			}
			periodicFragment.Downstream[0].Instructions = jumps
			initFragment.Downstream = append(initFragment.Downstream, domain.Transition{
				Kind: domain.DefaultTransition, Target: periodicFragment, Instructions: jumps,
			})
			periodicFragment.Upstream = append(periodicFragment.Upstream, initFragment)
		}
	}

	// The cancellation checks live wherever the program spends the rest of
	// its life: the periodic loop body if one was found, otherwise the
	// init fragment itself (a program with no loop still runs to shutdown).
	cancelOrigin := periodicFragment
	if cancelOrigin == nil {
		cancelOrigin = initFragment
	}

	for _, mode := range []domain.ExplorationMode{domain.ShutdownTimeout, domain.ShutdownStarvation} {
		d := diagrams[mode]
		if d == nil {
			continue
		}
		f := &domain.Fragment{Phase: phaseFor(mode), Diagram: d}
		fragments = append(fragments, f)
		if cancelOrigin != nil {
			s.wireShutdownGuard(cancelOrigin, f, mode)
		}
	}

	return fragments
}

// wireShutdownGuard adds a guarded transition from origin to target and
// records target's upstream link, so the linker's traversal reaches the
// shutdown fragment's object file instead of leaving it dead. Timeout is
// checked with the BIT opcode against GLOBAL_TIMEOUT; starvation is
// checked against GLOBAL_QUEUE_EMPTY, set by the runtime when the event
// queue drains with shutdown the only thing left to fire (§4.4.1, §5).
func (s *FragmentSplitter) wireShutdownGuard(origin, target *domain.Fragment, mode domain.ExplorationMode) {
	label := target.Phase.String()
	insts := make([]domain.Instruction, s.NumWorkers)
	for w := 0; w < s.NumWorkers; w++ {
		switch mode {
		case domain.ShutdownTimeout:
			insts[w], _ = domain.NewInstruction(domain.BIT, "", domain.LabelOp(label))
		case domain.ShutdownStarvation:
			insts[w], _ = domain.NewInstruction(domain.BEQ, "",
				domain.RegOperand(domain.GlobalQueueEmpty),
				domain.RegOperand(domain.GlobalOne),
				domain.LabelOp(label),
			)
		}
	}
	origin.Downstream = append(origin.Downstream, domain.Transition{
		Kind: domain.GuardedTransition, Target: target, Instructions: insts,
	})
	target.Upstream = append(target.Upstream, origin)
}

// splitInitAndPeriodic separates the INIT_AND_PERIODIC diagram into an
// INIT fragment (the acyclic prefix up to the loop) and, if a loop was
// detected, a PERIODIC fragment covering loopNode..tail that transitions
// back to itself by default.
func splitInitAndPeriodic(d *domain.StateSpaceDiagram) (init, periodic *domain.Fragment) {
	if !d.HasLoop() {
		return &domain.Fragment{Phase: domain.PhaseInit, Diagram: d}, nil
	}

	prefixNodes, loopNodes := splitNodesAtLoop(d)

	initDiagram := &domain.StateSpaceDiagram{Mode: d.Mode, Nodes: prefixNodes}
	if len(prefixNodes) > 0 {
		initDiagram.Head = prefixNodes[0]
		initDiagram.Tail = prefixNodes[len(prefixNodes)-1]
	}
	initFragment := &domain.Fragment{Phase: domain.PhaseInit, Diagram: initDiagram}

	periodicDiagram := &domain.StateSpaceDiagram{
		Mode:         d.Mode,
		Nodes:        loopNodes,
		LoopNode:     d.LoopNode,
		LoopNodeNext: d.LoopNodeNext,
		Hyperperiod:  d.Hyperperiod,
	}
	if len(loopNodes) > 0 {
		periodicDiagram.Head = loopNodes[0]
		periodicDiagram.Tail = loopNodes[len(loopNodes)-1]
	}
	periodicFragment := &domain.Fragment{Phase: domain.PhasePeriodic, Diagram: periodicDiagram}
	periodicFragment.Downstream = append(periodicFragment.Downstream, domain.Transition{
		Kind: domain.DefaultTransition, Target: periodicFragment,
	})
	periodicFragment.Upstream = append(periodicFragment.Upstream, periodicFragment)

	return initFragment, periodicFragment
}

func splitNodesAtLoop(d *domain.StateSpaceDiagram) (prefix, loop []*domain.StateSpaceNode) {
	splitAt := -1
	for i, n := range d.Nodes {
		if n == d.LoopNode {
			splitAt = i
			break
		}
	}
	if splitAt < 0 {
		return d.Nodes, nil
	}
	return d.Nodes[:splitAt], d.Nodes[splitAt:]
}
