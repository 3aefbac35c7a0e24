package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EtchedPixels/Opt85/pkg/opcode"
)

func TestAdjustImmed16EliminatesRedundantLXI(t *testing.T) {
	b := build(t, "LXI H,0x1234", "LXI H,0x1234")
	second := b.Chain.Next(b.Chain.Head())

	AdjustImmed16(b.Chain)

	assert.True(t, b.Chain.Instr(second).Dead)
}

func TestAdjustImmed16ConvertsLXIToDEX(t *testing.T) {
	b := build(t, "LXI H,5", "LXI H,4")
	second := b.Chain.Next(b.Chain.Head())

	AdjustImmed16(b.Chain)

	assert.Equal(t, opcode.DEX, b.Chain.Instr(second).Mnemonic)
}

func TestAdjustImmed16ConvertsLXIToINX(t *testing.T) {
	b := build(t, "LXI H,5", "LXI H,6")
	second := b.Chain.Next(b.Chain.Head())

	AdjustImmed16(b.Chain)

	assert.Equal(t, opcode.INX, b.Chain.Instr(second).Mnemonic)
}

func TestAdjustImmed16SynthesizesRegisterPairLoad(t *testing.T) {
	b := build(t, "MVI B,0x12", "MVI C,0x34", "LXI H,0x1234")
	lxi := b.Chain.Tail()

	AdjustImmed16(b.Chain)

	first := b.Chain.Instr(lxi)
	require.Equal(t, opcode.MOV, first.Mnemonic)
	assert.Equal(t, opcode.RegH, first.Dr)
	assert.Equal(t, opcode.RegB, first.Sr)

	second := b.Chain.Next(lxi)
	require.NotEqual(t, b.Chain.Tail(), lxi)
	secondInstr := b.Chain.Instr(second)
	assert.Equal(t, opcode.MOV, secondInstr.Mnemonic)
	assert.Equal(t, opcode.RegL, secondInstr.Dr)
	assert.Equal(t, opcode.RegC, secondInstr.Sr)
}

func TestAdjustImmed16EliminatesDADByZero(t *testing.T) {
	b := build(t, "LXI B,0", "DAD B")
	dad := b.Chain.Tail()

	AdjustImmed16(b.Chain)

	assert.True(t, b.Chain.Instr(dad).Dead)
}

func TestAdjustImmed16ConvertsDADToINX(t *testing.T) {
	b := build(t, "LXI B,1", "DAD B")
	dad := b.Chain.Tail()

	AdjustImmed16(b.Chain)

	assert.Equal(t, opcode.INX, b.Chain.Instr(dad).Mnemonic)
	assert.Equal(t, opcode.RegH, b.Chain.Instr(dad).Dr)
}

func TestAdjustImmed16ConvertsDADToDEX(t *testing.T) {
	b := build(t, "LXI B,0xFFFF", "DAD B")
	dad := b.Chain.Tail()

	AdjustImmed16(b.Chain)

	assert.Equal(t, opcode.DEX, b.Chain.Instr(dad).Mnemonic)
}

func TestAdjustImmed16LeavesDADAloneWhenPSWNeededAfter(t *testing.T) {
	b := build(t, "LXI B,1", "DAD B", "JC 100")
	dad := b.Chain.Next(b.Chain.Head())

	AdjustImmed16(b.Chain)

	assert.Equal(t, opcode.DAD, b.Chain.Instr(dad).Mnemonic)
}
