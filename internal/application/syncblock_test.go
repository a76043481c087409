package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lf-go/pretsched/internal/domain"
)

func TestGenerateSyncBlock_SingleWorkerHasNoBinarySemaTraffic(t *testing.T) {
	reactors := []*domain.ReactorInstance{{Name: "main"}}
	streams := GenerateSyncBlock(1, reactors)

	require.Len(t, streams, 1)
	require.NotEmpty(t, streams[0])
	assert.Equal(t, "SYNC_BLOCK", streams[0][0].Label)

	for _, inst := range streams[0] {
		assert.NotEqual(t, domain.WU, inst.Op)
	}

	var advi, jalr int
	for _, inst := range streams[0] {
		switch inst.Op {
		case domain.ADVI:
			advi++
		case domain.JALR:
			jalr++
		}
	}
	assert.Equal(t, 1, advi)
	assert.Equal(t, 1, jalr)
	assert.Equal(t, domain.JALR, streams[0][len(streams[0])-1].Op, "the barrier must end by returning to its caller")
}

func TestGenerateSyncBlock_MultiWorkerCoordinatesViaBinarySemaphores(t *testing.T) {
	reactors := []*domain.ReactorInstance{{Name: "a"}, {Name: "b"}}
	streams := GenerateSyncBlock(3, reactors)

	require.Len(t, streams, 3)

	w0 := streams[0]
	require.NotEmpty(t, w0)
	assert.Equal(t, "SYNC_BLOCK", w0[0].Label)
	assert.Equal(t, domain.WU, w0[0].Op)
	assert.Equal(t, domain.WorkerBinarySema(1), w0[0].A.Register)

	var adviCount int
	for _, inst := range w0 {
		if inst.Op == domain.ADVI {
			adviCount++
		}
	}
	assert.Equal(t, len(reactors), adviCount)

	for w := 1; w < 3; w++ {
		stream := streams[w]
		require.Len(t, stream, 3)
		assert.Equal(t, "SYNC_BLOCK", stream[0].Label)
		assert.Equal(t, domain.ADDI, stream[0].Op)
		assert.Equal(t, domain.WorkerBinarySema(w), stream[0].A.Register)
		assert.Equal(t, domain.WLT, stream[1].Op)
		assert.Equal(t, domain.JALR, stream[2].Op)
		assert.Equal(t, domain.WorkerReturnAddr(w), stream[2].B.Register)
	}
}
