package application

import (
	"github.com/lf-go/pretsched/internal/domain"
)

// GenerateSyncBlock emits the sense-reversing barrier shared by every
// worker between hyperperiods, labeled SYNC_BLOCK (§4.4.5). allReactors is
// every reactor instance whose logical tag must advance on barrier
// release.
func GenerateSyncBlock(numWorkers int, allReactors []*domain.ReactorInstance) []domain.WorkerStream {
	streams := make([]domain.WorkerStream, numWorkers)

	// Worker 0's coordination sequence, labeled SYNC_BLOCK.
	var w0 domain.WorkerStream
	labeled := false
	emit := func(inst domain.Instruction) {
		if !labeled {
			inst.Label = "SYNC_BLOCK"
			labeled = true
		}
		w0 = append(w0, inst)
	}

	for w := 1; w < numWorkers; w++ {
		inst, _ := domain.NewInstruction(domain.WU, "",
			domain.RegOperand(domain.WorkerBinarySema(w)),
			domain.ImmOperand(1),
		)
		emit(inst)
	}

	addOffset, _ := domain.NewInstruction(domain.ADD, "",
		domain.RegOperand(domain.GlobalOffset),
		domain.RegOperand(domain.GlobalOffset),
		domain.RegOperand(domain.GlobalOffsetInc),
	)
	emit(addOffset)

	for w := 0; w < numWorkers; w++ {
		resetCounter, _ := domain.NewInstruction(domain.ADDI, "",
			domain.RegOperand(domain.WorkerCounter(w)),
			domain.RegOperand(domain.GlobalZero),
			domain.ImmOperand(0),
		)
		emit(resetCounter)
	}

	for _, r := range allReactors {
		advi, _ := domain.NewInstruction(domain.ADVI, "",
			domain.ReactorPlaceholderOperand(r),
			domain.RegOperand(domain.GlobalOffset),
			domain.ImmOperand(0),
		)
		emit(advi)
	}

	for w := 1; w < numWorkers; w++ {
		release, _ := domain.NewInstruction(domain.ADDI, "",
			domain.RegOperand(domain.WorkerBinarySema(w)),
			domain.RegOperand(domain.GlobalZero),
			domain.ImmOperand(0),
		)
		emit(release)
	}

	returnToCaller, _ := domain.NewInstruction(domain.JALR, "",
		domain.RegOperand(domain.GlobalZero),
		domain.RegOperand(domain.WorkerReturnAddr(0)),
		domain.ImmOperand(0),
	)
	emit(returnToCaller)

	streams[0] = w0

	for w := 1; w < numWorkers; w++ {
		post, _ := domain.NewInstruction(domain.ADDI, "SYNC_BLOCK",
			domain.RegOperand(domain.WorkerBinarySema(w)),
			domain.RegOperand(domain.GlobalZero),
			domain.ImmOperand(1),
		)
		wait, _ := domain.NewInstruction(domain.WLT, "",
			domain.RegOperand(domain.WorkerBinarySema(w)),
			domain.ImmOperand(1),
		)
		ret, _ := domain.NewInstruction(domain.JALR, "",
			domain.RegOperand(domain.GlobalZero),
			domain.RegOperand(domain.WorkerReturnAddr(w)),
			domain.ImmOperand(0),
		)
		streams[w] = domain.WorkerStream{post, wait, ret}
	}

	return streams
}
