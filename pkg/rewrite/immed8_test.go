package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EtchedPixels/Opt85/pkg/dataflow"
	"github.com/EtchedPixels/Opt85/pkg/ir"
	"github.com/EtchedPixels/Opt85/pkg/opcode"
)

func build(t *testing.T, lines ...string) *ir.Builder {
	t.Helper()
	b := ir.NewBuilder()
	for _, l := range lines {
		_, err := b.Add("", l)
		require.NoError(t, err)
	}
	require.NoError(t, dataflow.ComputeValues(b.Chain))
	return b
}

func TestAdjustImmed8EliminatesRedundantMVI(t *testing.T) {
	b := build(t, "MVI A,5", "MVI A,5")
	second := b.Chain.Next(b.Chain.Head())

	AdjustImmed8(b.Chain)

	assert.True(t, b.Chain.Instr(second).Dead)
}

func TestAdjustImmed8ConvertsMVIToDCR(t *testing.T) {
	b := build(t, "MVI A,5", "MVI A,4")
	second := b.Chain.Next(b.Chain.Head())

	AdjustImmed8(b.Chain)

	assert.Equal(t, opcode.DCR, b.Chain.Instr(second).Mnemonic)
}

func TestAdjustImmed8ConvertsMVIToINR(t *testing.T) {
	b := build(t, "MVI A,5", "MVI A,6")
	second := b.Chain.Next(b.Chain.Head())

	AdjustImmed8(b.Chain)

	assert.Equal(t, opcode.INR, b.Chain.Instr(second).Mnemonic)
}

func TestAdjustImmed8EliminatesRedundantMOV(t *testing.T) {
	b := build(t, "MVI A,5", "MVI B,5", "MOV A,B")
	mov := b.Chain.Tail()

	AdjustImmed8(b.Chain)

	assert.True(t, b.Chain.Instr(mov).Dead)
}

func TestAdjustImmed8SubstitutesMVIWithMOV(t *testing.T) {
	b := build(t, "MVI B,5", "MVI A,5")
	second := b.Chain.Next(b.Chain.Head())

	AdjustImmed8(b.Chain)

	instr := b.Chain.Instr(second)
	assert.Equal(t, opcode.MOV, instr.Mnemonic)
	assert.Equal(t, opcode.RegB, instr.Sr)
}

func TestAdjustImmed8SubstitutesImmediateAOPWithRegisterForm(t *testing.T) {
	b := build(t, "MVI B,5", "ADI 5")
	second := b.Chain.Next(b.Chain.Head())

	AdjustImmed8(b.Chain)

	instr := b.Chain.Instr(second)
	assert.Equal(t, opcode.ADD, instr.Mnemonic)
	assert.Equal(t, opcode.RegB, instr.Sr)
}

func TestAdjustImmed8LeavesUnmatchedImmediateAlone(t *testing.T) {
	b := build(t, "MVI B,9", "ADI 5")
	second := b.Chain.Next(b.Chain.Head())

	AdjustImmed8(b.Chain)

	assert.Equal(t, opcode.ADI, b.Chain.Instr(second).Mnemonic)
}
