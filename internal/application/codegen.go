package application

import (
	"fmt"

	"github.com/lf-go/pretsched/internal/domain"
)

// labelAllocator produces unique per-worker branch-target labels within
// one compilation: each label carries the fragment's phase name and a
// per-fragment monotonic counter, rather than any process-global
// namespace (§5, §9).
type labelAllocator struct {
	scope string
	next  int
}

func (a *labelAllocator) fresh(prefix string) string {
	a.next++
	return fmt.Sprintf("%s_%s_%d", a.scope, prefix, a.next)
}

// CodeGenerator lowers one fragment's partitioned DAG into a per-worker
// PretVM instruction stream (§4.4.1-§4.4.3).
type CodeGenerator struct {
	NumWorkers int
	FastMode   bool // when true, ADVI is not followed by a DU
}

// NewCodeGenerator returns a CodeGenerator targeting numWorkers workers.
func NewCodeGenerator(numWorkers int, fastMode bool) *CodeGenerator {
	return &CodeGenerator{NumWorkers: numWorkers, FastMode: fastMode}
}

// lastAssociatedSync tracks, per owning reactor instance, the last SYNC
// node a tag-advance was emitted for, so §4.4.3 step 2's "differs from the
// last associated SYNC recorded for n's owning reactor" can be checked.
type lastAssociatedSync map[*domain.ReactorInstance]*domain.DagNode

// Generate walks dag in topological order and emits the per-worker object
// file for the fragment it belongs to (§4.4.3).
func (g *CodeGenerator) Generate(phase domain.Phase, dag *domain.Dag) (*domain.ObjectFile, error) {
	order, err := dag.TopologicalSort()
	if err != nil {
		return nil, fmt.Errorf("codegen: %w", err)
	}

	of := &domain.ObjectFile{Fragment: phase, Workers: make([]domain.WorkerStream, g.NumWorkers)}
	labels := &labelAllocator{scope: phase.String()}
	lastSync := make(lastAssociatedSync)

	for _, n := range order {
		if n.Kind == domain.ReactionNode {
			if err := g.emitReaction(of, dag, n, labels, lastSync); err != nil {
				return nil, err
			}
		}
	}

	// The tail's own barrier-return sequence runs last: it always has the
	// highest topological position among SYNC nodes, but its own REACTION
	// children (if any) sort after it in topological order and must still
	// execute before the worker jumps into SYNC_BLOCK.
	if dag.Tail != nil {
		g.emitSyncTail(of, dag, dag.Tail)
	}

	return of, nil
}

// emitReaction emits one REACTION node's cross-worker wait, tag advance,
// and guarded-execute sequence on its assigned worker (§4.4.3 steps 1-4).
func (g *CodeGenerator) emitReaction(
	of *domain.ObjectFile,
	dag *domain.Dag,
	n *domain.DagNode,
	labels *labelAllocator,
	lastSync lastAssociatedSync,
) error {
	w := n.Worker
	stream := &of.Workers[w]

	// Step 1: cross-worker wait for every upstream REACTION assigned to a
	// different worker.
	for _, pred := range dag.Predecessors(n) {
		if pred.Kind != domain.ReactionNode || pred.Worker == w {
			continue
		}
		inst, err := domain.NewInstruction(domain.WU, "",
			domain.RegOperand(domain.WorkerCounter(pred.Worker)),
			domain.ImmOperand(int64(pred.ReleaseValue)),
		)
		if err != nil {
			return err
		}
		*stream = append(*stream, inst)
	}

	// Step 2: tag advance, if this reaction's associated sync differs
	// from the last one recorded for its owning reactor and is not head.
	owner := n.Reaction.Owner
	if n.AssociatedSync != dag.Head && lastSync[owner] != n.AssociatedSync {
		advi, err := domain.NewInstruction(domain.ADVI, "",
			domain.ReactorPlaceholderOperand(owner), // resolved at link time
			domain.RegOperand(domain.GlobalOffset),
			domain.ImmOperand(int64(n.AssociatedSync.Time.Timestamp)),
		)
		if err != nil {
			return err
		}
		*stream = append(*stream, advi)

		if !g.FastMode {
			du, err := domain.NewInstruction(domain.DU, "",
				domain.RegOperand(domain.GlobalOffset),
				domain.ImmOperand(int64(n.AssociatedSync.Time.Timestamp)),
			)
			if err != nil {
				return err
			}
			*stream = append(*stream, du)
		}
		lastSync[owner] = n.AssociatedSync
	}

	// Step 3: guarded execute.
	exeInst, err := domain.NewInstruction(domain.EXE, "", domain.ReactionPlaceholderOperand(n.Reaction))
	if err != nil {
		return err
	}

	guards := guardTriggers(n.Reaction)
	postExeLabel := labels.fresh("POST_EXE")
	if len(guards) > 0 {
		exeLabel := labels.fresh("EXE")
		for _, guardVar := range guards {
			beq, err := domain.NewInstruction(domain.BEQ, "",
				domain.RegOperand(guardVar),
				domain.RegOperand(domain.GlobalOne),
				domain.LabelOp(exeLabel),
			)
			if err != nil {
				return err
			}
			*stream = append(*stream, beq)
		}
		skip, err := domain.NewInstruction(domain.JAL, "",
			domain.RegOperand(domain.GlobalZero),
			domain.LabelOp(postExeLabel),
		)
		if err != nil {
			return err
		}
		*stream = append(*stream, skip)
		exeInst.Label = exeLabel
	}
	*stream = append(*stream, exeInst)

	// Step 4: release increment, labeled so waiters and the skip-guard
	// above can target it.
	inc, err := domain.NewInstruction(domain.ADDI, postExeLabel,
		domain.RegOperand(domain.WorkerCounter(w)),
		domain.RegOperand(domain.WorkerCounter(w)),
		domain.ImmOperand(1),
	)
	if err != nil {
		return err
	}
	*stream = append(*stream, inc)

	return nil
}

// guardTriggers returns the symbolic presence-flag register for every
// trigger of r that carries an is-present field: input ports and actions
// (§4.4.3 step 3).
func guardTriggers(r *domain.ReactionInstance) []domain.GlobalRegister {
	var out []domain.GlobalRegister
	for _, p := range r.TriggerPorts {
		out = append(out, domain.GlobalRegister("PRESENT["+p.Path()+"]"))
	}
	for _, a := range r.TriggerActions {
		out = append(out, domain.GlobalRegister("PRESENT["+a.Path()+"]"))
	}
	return out
}

// emitSyncTail emits the tail-sync barrier-return sequence on every
// worker, for the fragment's terminal sync node (§4.4.3, final paragraph).
func (g *CodeGenerator) emitSyncTail(of *domain.ObjectFile, dag *domain.Dag, sync *domain.DagNode) {
	if sync != dag.Tail || sync.Time.IsForever() {
		return
	}
	for w := range of.Workers {
		stream := &of.Workers[w]
		if !g.FastMode {
			du, _ := domain.NewInstruction(domain.DU, "",
				domain.RegOperand(domain.GlobalOffset),
				domain.ImmOperand(int64(sync.Time.Timestamp)),
			)
			*stream = append(*stream, du)
		}
		if w == 0 {
			setInc, _ := domain.NewInstruction(domain.ADDI, "",
				domain.RegOperand(domain.GlobalOffsetInc),
				domain.RegOperand(domain.GlobalZero),
				domain.ImmOperand(int64(sync.Time.Timestamp)),
			)
			*stream = append(*stream, setInc)
		}
		jal, _ := domain.NewInstruction(domain.JAL, "",
			domain.RegOperand(domain.WorkerReturnAddr(w)),
			domain.LabelOp("SYNC_BLOCK"),
		)
		*stream = append(*stream, jal)
	}
}
