package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/EtchedPixels/Opt85/pkg/exec85"
	"github.com/EtchedPixels/Opt85/pkg/ir"
)

// run walks every live instruction in the chain and executes it against a
// fresh state, skipping anything AdjustImmed8/16 marked Dead.
func run(c *ir.Chain, seed exec85.State) exec85.State {
	s := seed
	for id := c.Head(); id != ir.NoInstr; id = c.Next(id) {
		instr := c.Instr(id)
		if instr.Dead {
			continue
		}
		exec85.Exec(&s, instr.Mnemonic, instr.Dr, instr.Sr, instr.AddrConst)
	}
	return s
}

func TestAdjustImmed8PreservesSemanticsForDCRFold(t *testing.T) {
	b := build(t, "MVI A,5", "MVI A,4")
	before := run(b.Chain, exec85.State{})

	AdjustImmed8(b.Chain)
	after := run(b.Chain, exec85.State{})

	assert.Equal(t, before.A, after.A)
}

func TestAdjustImmed8PreservesSemanticsForRegisterSubstitution(t *testing.T) {
	b := build(t, "MVI B,5", "ADI 5")
	before := run(b.Chain, exec85.State{})

	AdjustImmed8(b.Chain)
	after := run(b.Chain, exec85.State{})

	assert.True(t, before.Equal(after))
}

func TestAdjustImmed16PreservesSemanticsForPairSynthesis(t *testing.T) {
	b := build(t, "MVI B,0x12", "MVI C,0x34", "LXI H,0x1234")
	before := run(b.Chain, exec85.State{})

	AdjustImmed16(b.Chain)
	after := run(b.Chain, exec85.State{})

	assert.Equal(t, before.H, after.H)
	assert.Equal(t, before.L, after.L)
}

func TestAdjustImmed16PreservesSemanticsForDADFold(t *testing.T) {
	b := build(t, "LXI B,1", "DAD B")
	before := run(b.Chain, exec85.State{H: 0x10, L: 0x20})

	AdjustImmed16(b.Chain)
	after := run(b.Chain, exec85.State{H: 0x10, L: 0x20})

	assert.Equal(t, before.H, after.H)
	assert.Equal(t, before.L, after.L)
}
