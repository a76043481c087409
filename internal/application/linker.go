package application

import (
	"fmt"

	"github.com/lf-go/pretsched/internal/domain"
)

// ReactorResolver maps a reactor instance to its runtime placeholder
// symbol (e.g. "env.reactor_self_array[3]"), filled in by the linker when
// it resolves PLACEHOLDER operands (§4.4.3, §9).
type ReactorResolver func(r *domain.ReactorInstance) string

// ReactionResolver maps a reaction instance to its runtime placeholder
// symbol.
type ReactionResolver func(r *domain.ReactionInstance) string

// Linker combines per-fragment object files into one linked executable
// with a preamble, the fragment bodies in traversal order, an epilogue,
// and the shared synchronization block (§4.4.4).
type Linker struct {
	NumWorkers       int
	Timeout          domain.Timestamp
	ResolveReactor   ReactorResolver
	ResolveReaction  ReactionResolver
	AllReactors      []*domain.ReactorInstance
}

// NewLinker returns a Linker for the given worker count.
func NewLinker(numWorkers int, timeout domain.Timestamp, reactors []*domain.ReactorInstance, resolveReactor ReactorResolver, resolveReaction ReactionResolver) *Linker {
	return &Linker{
		NumWorkers:      numWorkers,
		Timeout:         timeout,
		ResolveReactor:  resolveReactor,
		ResolveReaction: resolveReaction,
		AllReactors:     reactors,
	}
}

// Link implements §4.4.4: preamble, fragment traversal, epilogue, sync
// block, then placeholder resolution. fragments must already have their
// ObjectFile populated and must form a single chain reachable from the
// fragment with no upstream.
func (l *Linker) Link(fragments []*domain.Fragment) (*domain.Program, error) {
	root, err := findRoot(fragments)
	if err != nil {
		return nil, err
	}

	program := &domain.Program{Workers: make([]domain.WorkerStream, l.NumWorkers)}
	for _, f := range fragments {
		if f.Phase == domain.PhasePeriodic && f.Diagram != nil {
			program.Hyperperiod = f.Diagram.Hyperperiod
		}
	}

	l.appendPreamble(program)

	visited := make(map[*domain.Fragment]bool)
	if err := l.appendFragmentChain(program, root, visited); err != nil {
		return nil, err
	}

	l.appendEpilogue(program)

	syncBlock := GenerateSyncBlock(l.NumWorkers, l.AllReactors)
	for w := range program.Workers {
		program.Workers[w] = append(program.Workers[w], syncBlock[w]...)
	}

	if err := l.resolvePlaceholders(program); err != nil {
		return nil, err
	}

	return program, nil
}

func findRoot(fragments []*domain.Fragment) (*domain.Fragment, error) {
	for _, f := range fragments {
		if !f.HasUpstream() {
			return f, nil
		}
	}
	return nil, fmt.Errorf("link: no fragment without an upstream to start traversal from")
}

// appendPreamble emits worker 0's global-register initialization and
// every worker's jump into the synchronization block (§4.4.4 step 1).
func (l *Linker) appendPreamble(program *domain.Program) {
	label := "PREAMBLE"
	emitLabeled := func(w int, inst domain.Instruction) {
		if program.Workers[w] == nil && label != "" {
			inst.Label = label
		}
		program.Workers[w] = append(program.Workers[w], inst)
		label = ""
	}

	setOffset, _ := domain.NewInstruction(domain.ADDI, "",
		domain.RegOperand(domain.GlobalOffset),
		domain.RegOperand(domain.ExternStartTime),
		domain.ImmOperand(0),
	)
	emitLabeled(0, setOffset)

	setTimeout, _ := domain.NewInstruction(domain.ADDI, "",
		domain.RegOperand(domain.GlobalTimeout),
		domain.RegOperand(domain.ExternStartTime),
		domain.ImmOperand(int64(l.Timeout)),
	)
	program.Workers[0] = append(program.Workers[0], setTimeout)

	setInc, _ := domain.NewInstruction(domain.ADDI, "",
		domain.RegOperand(domain.GlobalOffsetInc),
		domain.RegOperand(domain.GlobalZero),
		domain.ImmOperand(0),
	)
	program.Workers[0] = append(program.Workers[0], setInc)

	for w := 0; w < l.NumWorkers; w++ {
		jal, _ := domain.NewInstruction(domain.JAL, "",
			domain.RegOperand(domain.WorkerReturnAddr(w)),
			domain.LabelOp("SYNC_BLOCK"),
		)
		if w != 0 {
			jal.Label = "PREAMBLE"
		}
		program.Workers[w] = append(program.Workers[w], jal)
	}
}

// appendFragmentChain breadth-first traverses f's downstream transitions,
// appending each visited fragment's per-worker body, then the cloned
// transition instructions (guarded transitions in order, the default
// transition last) (§4.4.4 step 2).
func (l *Linker) appendFragmentChain(program *domain.Program, f *domain.Fragment, visited map[*domain.Fragment]bool) error {
	queue := []*domain.Fragment{f}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if visited[cur] {
			continue
		}
		visited[cur] = true

		if err := cur.ValidateTransitions(); err != nil {
			return err
		}

		if cur.ObjectFile == nil {
			return fmt.Errorf("link: fragment %s has no object file", cur.Phase)
		}
		bodyLabel := cur.Phase.String()
		for w := 0; w < l.NumWorkers; w++ {
			stream := cur.ObjectFile.Workers[w]
			if len(stream) > 0 && stream[0].Label == "" {
				stream = append(domain.WorkerStream{}, stream...)
				stream[0].Label = bodyLabel
			}
			program.Workers[w] = append(program.Workers[w], stream...)
		}

		var guarded, def []domain.Transition
		for _, t := range cur.Downstream {
			if t.Kind == domain.DefaultTransition {
				def = append(def, t)
			} else {
				guarded = append(guarded, t)
			}
		}
		for _, t := range append(guarded, def...) {
			for w := 0; w < l.NumWorkers && w < len(t.Instructions); w++ {
				program.Workers[w] = append(program.Workers[w], t.Instructions[w])
			}
			if !visited[t.Target] {
				queue = append(queue, t.Target)
			}
		}
	}
	return nil
}

// appendEpilogue emits a single STP labeled EPILOGUE on every worker
// (§4.4.4 step 3).
func (l *Linker) appendEpilogue(program *domain.Program) {
	for w := 0; w < l.NumWorkers; w++ {
		stp, _ := domain.NewInstruction(domain.STP, "EPILOGUE")
		program.Workers[w] = append(program.Workers[w], stp)
	}
}

// resolvePlaceholders replaces every PLACEHOLDER operand with its
// runtime-derived address, returning EmissionError::UnresolvedPlaceholder
// for any that carry no object context to resolve against, or that
// remain after resolution (§4.4.6, §4.4.3: "replaces these with
// runtime-derived addresses").
func (l *Linker) resolvePlaceholders(program *domain.Program) error {
	for w, stream := range program.Workers {
		for i, inst := range stream {
			for _, slot := range inst.PlaceholderSlots() {
				op := operandAt(inst, slot)
				symbol, ok := l.resolveSymbol(op)
				if !ok {
					return fmt.Errorf("link: worker %d instruction %d: %w", w, i, &domain.EmissionError{
						Kind:   domain.ErrUnresolvedPlaceholder,
						Detail: fmt.Sprintf("operand slot %d of %s has no resolvable reactor/reaction reference", slot, inst.Op),
					})
				}
				resolved := op
				resolved.IsPlaceholder = false
				resolved.ResolvedSymbol = symbol
				inst = inst.WithOperand(slot, resolved)
			}
			stream[i] = inst
		}
	}
	return nil
}

func operandAt(inst domain.Instruction, slot int) domain.Operand {
	switch slot {
	case 0:
		return inst.A
	case 1:
		return inst.B
	default:
		return inst.C
	}
}

func (l *Linker) resolveSymbol(op domain.Operand) (string, bool) {
	switch {
	case op.PlaceholderReactor != nil && l.ResolveReactor != nil:
		return l.ResolveReactor(op.PlaceholderReactor), true
	case op.PlaceholderReaction != nil && l.ResolveReaction != nil:
		return l.ResolveReaction(op.PlaceholderReaction), true
	default:
		return "", false
	}
}
