package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EtchedPixels/Opt85/pkg/opcode"
)

func TestAppendBuildsWalkableChain(t *testing.T) {
	c := NewChain()
	assert.Equal(t, NoInstr, c.Head())
	assert.Equal(t, NoInstr, c.Tail())

	a := c.Append()
	b := c.Append()
	cc := c.Append()

	assert.Equal(t, a, c.Head())
	assert.Equal(t, cc, c.Tail())
	assert.Equal(t, b, c.Next(a))
	assert.Equal(t, cc, c.Next(b))
	assert.Equal(t, NoInstr, c.Next(cc))
	assert.Equal(t, NoInstr, c.Prev(a))
	assert.Equal(t, a, c.Prev(b))
	assert.Equal(t, b, c.Prev(cc))
}

func TestAppendAfterSplicesInBetween(t *testing.T) {
	c := NewChain()
	a := c.Append()
	cc := c.Append()

	b := c.AppendAfter(a)

	assert.Equal(t, b, c.Next(a))
	assert.Equal(t, cc, c.Next(b))
	assert.Equal(t, b, c.Prev(cc))
	assert.Equal(t, cc, c.Tail())
}

func TestAppendAfterAtTailExtendsTail(t *testing.T) {
	c := NewChain()
	a := c.Append()
	b := c.AppendAfter(a)

	assert.Equal(t, b, c.Tail())
	assert.Equal(t, NoInstr, c.Next(b))
}

func TestEliminateMiddleInstructionSplices(t *testing.T) {
	c := NewChain()
	a := c.Append()
	b := c.Append()
	cc := c.Append()

	c.Eliminate(b)

	assert.True(t, c.Instr(b).Dead)
	assert.Equal(t, cc, c.Next(a))
	assert.Equal(t, a, c.Prev(cc))
	assert.Equal(t, a, c.Head())
	assert.Equal(t, cc, c.Tail())
}

func TestEliminateHeadUpdatesHead(t *testing.T) {
	c := NewChain()
	a := c.Append()
	b := c.Append()

	c.Eliminate(a)

	assert.Equal(t, b, c.Head())
	assert.Equal(t, NoInstr, c.Prev(b))
}

func TestEliminateTailUpdatesTail(t *testing.T) {
	c := NewChain()
	a := c.Append()
	b := c.Append()

	c.Eliminate(b)

	assert.Equal(t, a, c.Tail())
	assert.Equal(t, NoInstr, c.Next(a))
}

func TestEliminateOnlyInstructionEmptiesChain(t *testing.T) {
	c := NewChain()
	a := c.Append()

	c.Eliminate(a)

	assert.Equal(t, NoInstr, c.Head())
	assert.Equal(t, NoInstr, c.Tail())
}

func TestEliminateMigratesLabelToSurvivingSuccessor(t *testing.T) {
	c := NewChain()
	a := c.Append()
	b := c.Append()
	c.Instr(a).Label = &Label{Name: "loop"}

	c.Eliminate(a)

	require.NotNil(t, c.Instr(b).Label)
	assert.Equal(t, "loop", c.Instr(b).Label.Name)
	assert.Nil(t, c.Instr(b).Label.Next)
}

func TestEliminateChainsMigratedLabelAheadOfExistingOne(t *testing.T) {
	c := NewChain()
	a := c.Append()
	b := c.Append()
	c.Instr(a).Label = &Label{Name: "first"}
	c.Instr(b).Label = &Label{Name: "second"}

	c.Eliminate(a)

	got := c.Instr(b).Label
	require.NotNil(t, got)
	assert.Equal(t, "first", got.Name)
	require.NotNil(t, got.Next)
	assert.Equal(t, "second", got.Next.Name)
}

func TestEliminateInvalidatesSuccessorsLeadingEdgeWhenLabelMigrates(t *testing.T) {
	c := NewChain()
	a := c.Append()
	b := c.Append()
	c.Instr(a).Label = &Label{Name: "loop"}
	c.Effect(c.Instr(b).Prev).SetRegValue(opcode.RegA, 5)

	c.Eliminate(a)

	_, err := c.Effect(c.Instr(b).Prev).RegValue(opcode.RegA)
	assert.Error(t, err)
	assert.Equal(t, opcode.MaskAll, c.Effect(c.Instr(b).Prev).Need)
}

func TestEliminateOfLastInstructionDropsItsLabel(t *testing.T) {
	c := NewChain()
	a := c.Append()
	c.Instr(a).Label = &Label{Name: "tail"}

	c.Eliminate(a)

	assert.Equal(t, NoInstr, c.Tail())
	assert.Nil(t, c.Instr(a).Label)
}

func TestEliminatePullsNeedForward(t *testing.T) {
	c := NewChain()
	a := c.Append()
	b := c.Append()

	c.Effect(c.Instr(b).Next).Need = opcode.MaskA | opcode.MaskB

	c.Eliminate(b)

	require.Equal(t, opcode.MaskA|opcode.MaskB, c.Effect(c.Instr(a).Next).Need)
}

func TestValueTrackingRoundTrip(t *testing.T) {
	e := &Effect{}
	assert.False(t, e.KnowRegValue(opcode.RegA))

	e.SetRegValue(opcode.RegA, 0x42)
	v, err := e.RegValue(opcode.RegA)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x42), v)

	e.ClearRegValue(opcode.RegA)
	assert.False(t, e.KnowRegValue(opcode.RegA))
}

func TestPairValueRoundTrip(t *testing.T) {
	e := &Effect{}
	e.SetPairValue(opcode.RegH, 0x1234)

	require.True(t, e.KnowPairValue(opcode.RegH))
	v, err := e.PairValue(opcode.RegH)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), v)

	hi, _ := e.RegValue(opcode.RegH)
	lo, _ := e.RegValue(opcode.RegL)
	assert.Equal(t, uint8(0x12), hi)
	assert.Equal(t, uint8(0x34), lo)
}

func TestFindRegValue(t *testing.T) {
	e := &Effect{}
	e.SetRegValue(opcode.RegB, 7)
	e.SetRegValue(opcode.RegC, 9)

	assert.Equal(t, opcode.RegB, e.FindRegValue(7))
	assert.Equal(t, opcode.RegNone, e.FindRegValue(99))
	assert.Equal(t, opcode.RegNone, e.FindRegValue(ConstUnknown))
}

func TestInvalidateRegsClearsValuesAndMarksAllNeeded(t *testing.T) {
	e := &Effect{}
	e.SetRegValue(opcode.RegA, 1)

	e.InvalidateRegs()

	assert.False(t, e.KnowRegValue(opcode.RegA))
	assert.Equal(t, opcode.MaskAll, e.Need)
}
