package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lf-go/pretsched/internal/domain"
	"github.com/lf-go/pretsched/internal/ports"
)

func singleReactionPeriodicDag(t *testing.T, numWorkers int) (*domain.Dag, *domain.ReactionInstance) {
	t.Helper()
	main := &ports.Reactor{
		ClassName: "Main",
		Timers:    []ports.TimerDecl{{Name: "t", Period: ports.Time{Magnitude: 10, Unit: ports.Nanoseconds}}},
		Reactions: []ports.ReactionDecl{
			{Triggers: []ports.TriggerRefDecl{{Action: "t"}}},
		},
	}
	root := elaborateMain(t, main)

	diagram, err := NewExplorer(root).Explore(domain.ForeverTag, domain.InitAndPeriodic)
	require.NoError(t, err)
	require.True(t, diagram.HasLoop())

	dag, err := NewDagGenerator(numWorkers).GenerateDag(diagram)
	require.NoError(t, err)

	return dag, root.Reactions[0]
}

func opcodes(stream domain.WorkerStream) []domain.Opcode {
	out := make([]domain.Opcode, len(stream))
	for i, inst := range stream {
		out[i] = inst.Op
	}
	return out
}

func TestCodeGenerator_Generate_EmitsReactionAndSyncTail(t *testing.T) {
	dag, reaction := singleReactionPeriodicDag(t, 1)

	of, err := NewCodeGenerator(1, false).Generate(domain.PhasePeriodic, dag)
	require.NoError(t, err)
	assert.Equal(t, domain.PhasePeriodic, of.Fragment)
	require.Equal(t, 1, of.NumWorkers())

	// The timer's single reaction fires once at the head tag (no tag
	// advance needed, nothing precedes it) and once more at the
	// loop-closing tail tag (spec.md §8 Scenario 1's two EXE instructions),
	// followed by the tail sync's barrier-return sequence.
	stream := of.Workers[0]
	require.Len(t, stream, 9)

	assert.Equal(t, domain.EXE, stream[0].Op)
	assert.Same(t, reaction, stream[0].A.PlaceholderReaction)
	assert.Empty(t, stream[0].Label, "an unguarded reaction needs no branch target")

	assert.Equal(t, domain.ADDI, stream[1].Op)
	assert.NotEmpty(t, stream[1].Label)
	assert.Equal(t, domain.WorkerCounter(0), stream[1].A.Register)

	assert.Equal(t, domain.ADVI, stream[2].Op, "the tail reaction's tag differs from head, so it needs a tag advance first")
	assert.Equal(t, domain.GlobalOffset, stream[2].B.Register)
	assert.Equal(t, int64(10), stream[2].C.Imm)

	assert.Equal(t, domain.DU, stream[3].Op)

	assert.Equal(t, domain.EXE, stream[4].Op)
	assert.Same(t, reaction, stream[4].A.PlaceholderReaction)

	assert.Equal(t, domain.ADDI, stream[5].Op)
	assert.Equal(t, domain.WorkerCounter(0), stream[5].A.Register)

	assert.Equal(t, domain.DU, stream[6].Op)

	assert.Equal(t, domain.ADDI, stream[7].Op)
	assert.Equal(t, domain.GlobalOffsetInc, stream[7].A.Register)
	assert.Equal(t, domain.GlobalZero, stream[7].B.Register)
	assert.Equal(t, int64(10), stream[7].C.Imm)

	assert.Equal(t, domain.JAL, stream[8].Op)
	assert.Equal(t, domain.WorkerReturnAddr(0), stream[8].A.Register)
	assert.Equal(t, "SYNC_BLOCK", stream[8].B.Label)
}

func TestCodeGenerator_Generate_FastModeOmitsDelayUntil(t *testing.T) {
	dag, _ := singleReactionPeriodicDag(t, 1)

	of, err := NewCodeGenerator(1, true).Generate(domain.PhasePeriodic, dag)
	require.NoError(t, err)

	for _, op := range opcodes(of.Workers[0]) {
		assert.NotEqual(t, domain.DU, op, "fast mode must not emit a DU instruction")
	}
}

func TestCodeGenerator_Generate_GuardedReactionEmitsBranchSequence(t *testing.T) {
	owner := &domain.ReactorInstance{Name: "r", ClassName: "R"}
	port := &domain.PortInstance{Name: "in", Direction: domain.Input, Owner: owner}
	owner.Inputs = []*domain.PortInstance{port}
	reaction := &domain.ReactionInstance{
		Name: "reaction_1", Owner: owner, Priority: 1,
		TriggerPorts: []*domain.PortInstance{port},
	}
	owner.Reactions = []*domain.ReactionInstance{reaction}

	dag := domain.NewDag()
	sync := dag.AddNode(&domain.DagNode{Kind: domain.SyncNode, Time: domain.Tag{Timestamp: 0}})
	dag.Head = sync
	dag.Tail = sync
	rn := dag.AddNode(&domain.DagNode{Kind: domain.ReactionNode, Reaction: reaction, Worker: 0, AssociatedSync: sync})
	dag.AddEdge(sync, rn)

	of, err := NewCodeGenerator(1, false).Generate(domain.PhaseInit, dag)
	require.NoError(t, err)

	stream := of.Workers[0]
	var beqIdx, jalSkipIdx, exeIdx, releaseIdx = -1, -1, -1, -1
	for i, inst := range stream {
		switch inst.Op {
		case domain.BEQ:
			beqIdx = i
		case domain.EXE:
			exeIdx = i
		case domain.JAL:
			if jalSkipIdx == -1 && inst.B.Label != "SYNC_BLOCK" {
				jalSkipIdx = i
			}
		case domain.ADDI:
			if inst.A.Register == domain.WorkerCounter(0) {
				releaseIdx = i
			}
		}
	}

	require.NotEqual(t, -1, beqIdx)
	require.NotEqual(t, -1, jalSkipIdx)
	require.NotEqual(t, -1, exeIdx)
	require.NotEqual(t, -1, releaseIdx)

	assert.Less(t, beqIdx, jalSkipIdx)
	assert.Less(t, jalSkipIdx, exeIdx)
	assert.Less(t, exeIdx, releaseIdx)

	assert.Equal(t, domain.GlobalRegister("PRESENT[r.in]"), stream[beqIdx].A.Register)
	assert.Equal(t, domain.GlobalOne, stream[beqIdx].B.Register)
	assert.Equal(t, stream[exeIdx].Label, stream[beqIdx].C.Label, "the BEQ must branch straight to the EXE's label")
	assert.Equal(t, stream[jalSkipIdx].B.Label, stream[releaseIdx].Label, "the skip jump must land on the release increment")
	assert.Same(t, reaction, stream[exeIdx].A.PlaceholderReaction)
}
