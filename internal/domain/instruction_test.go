package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestOpcode_Valid verifies membership in the closed opcode set emission
// relies on to detect a generator bug (§4.4.1, §4.4.6).
func TestOpcode_Valid(t *testing.T) {
	assert.True(t, EXE.Valid())
	assert.True(t, BIT.Valid())
	assert.False(t, Opcode(999).Valid())
}

// TestOpcode_String verifies disassembly mnemonics and the fallback for an
// out-of-range opcode, used in error messages and test failure output.
func TestOpcode_String(t *testing.T) {
	assert.Equal(t, "EXE", EXE.String())
	assert.Equal(t, "OPCODE(999)", Opcode(999).String())
}

// TestNewInstruction_RejectsUnknownOpcode verifies construction refuses an
// opcode outside the closed set (§4.4.6: ErrUnknownOpcode).
func TestNewInstruction_RejectsUnknownOpcode(t *testing.T) {
	_, err := NewInstruction(Opcode(999), "", ImmOperand(1))
	require.Error(t, err)
	var emissionErr *EmissionError
	require.ErrorAs(t, err, &emissionErr)
	assert.ErrorIs(t, err, ErrUnknownOpcode)
}

// TestNewInstruction_OperandCounts verifies the variadic constructor wires
// 1, 2, and 3 operand instructions to the right fields.
func TestNewInstruction_OperandCounts(t *testing.T) {
	one, err := NewInstruction(STP, "", RegOperand(WorkerCounter(0)))
	require.NoError(t, err)
	assert.Equal(t, 1, one.NumOperands)
	assert.Equal(t, WorkerCounter(0), one.A.Register)

	two, err := NewInstruction(ADDI, "", RegOperand(GlobalOffset), ImmOperand(5))
	require.NoError(t, err)
	assert.Equal(t, 2, two.NumOperands)
	assert.Equal(t, int64(5), two.B.Imm)

	three, err := NewInstruction(ADD, "L0", RegOperand(GlobalZero), RegOperand(GlobalOne), RegOperand(GlobalOffset))
	require.NoError(t, err)
	assert.Equal(t, 3, three.NumOperands)
	assert.True(t, three.HasLabel())
	assert.Equal(t, "L0", three.Label)
}

// TestInstruction_PlaceholderSlots verifies only populated operand slots
// carrying the placeholder sentinel are reported, used by the linker's
// resolution pass (§4.4.3).
func TestInstruction_PlaceholderSlots(t *testing.T) {
	inst, err := NewInstruction(EXE, "", PlaceholderOperand(), ImmOperand(0))
	require.NoError(t, err)
	assert.Equal(t, []int{0}, inst.PlaceholderSlots())

	resolved, err := NewInstruction(EXE, "", RegOperand(WorkerCounter(0)), ImmOperand(0))
	require.NoError(t, err)
	assert.Empty(t, resolved.PlaceholderSlots())
}

// TestInstruction_WithOperand verifies the linker rewrites a resolved
// placeholder by returning a new instruction value rather than mutating
// the original — regression coverage for a pointer-into-copy bug caught
// during review.
func TestInstruction_WithOperand(t *testing.T) {
	original, err := NewInstruction(EXE, "", PlaceholderOperand())
	require.NoError(t, err)

	resolved := original.WithOperand(0, RegOperand(WorkerCounter(2)))

	assert.True(t, original.A.IsPlaceholder, "original instruction must be unchanged")
	assert.False(t, resolved.A.IsPlaceholder)
	assert.Equal(t, WorkerCounter(2), resolved.A.Register)
}

// TestObjectFile_NumWorkers verifies the per-fragment worker-stream count
// reported to the linker.
func TestObjectFile_NumWorkers(t *testing.T) {
	of := &ObjectFile{Workers: []WorkerStream{{}, {}, {}}}
	assert.Equal(t, 3, of.NumWorkers())
}
