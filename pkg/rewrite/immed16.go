package rewrite

import (
	"github.com/EtchedPixels/Opt85/pkg/dataflow"
	"github.com/EtchedPixels/Opt85/pkg/ir"
	"github.com/EtchedPixels/Opt85/pkg/opcode"
)

// assignSynth gives a freshly appended, still-blank instruction a real
// mnemonic and operands, then lets the instruction's own masks and
// register values settle the way a freshly parsed instruction's would.
// Used only for nodes AppendAfter just created — an in-place substitution
// of an existing instruction's mnemonic should use (*ir.Chain).Retarget
// instead, which deliberately leaves already-propagated masks alone.
func assignSynth(c *ir.Chain, id ir.InstrID, m opcode.Mnemonic, dr, sr opcode.Reg) {
	instr := c.Instr(id)
	instr.Mnemonic = m
	instr.Dr, instr.Sr = dr, sr

	info := opcode.Table[m]
	next := c.Effect(instr.Next)
	prev := c.Effect(instr.Prev)
	next.Set |= info.OMask
	prev.Need |= info.ImplicitNeeds()

	if info.Flags.Has(opcode.OpPAIRMOD) {
		if pm, ok := opcode.PairMask(dr); ok {
			next.Set |= pm
			prev.Need |= pm
		}
	}
	if info.Flags.Has(opcode.OpMOV) {
		next.Set |= dr.Mask()
		prev.Need |= sr.Mask()
	}

	instr.Set = next.Set
	instr.Need = prev.Need
}

// appendSynth appends a new instruction after i, assigns it, computes its
// propagated values, and fixes up the Need masks on both halves of the
// split. opt85.c's add_op1/add_op2_r.
func appendSynth(c *ir.Chain, i ir.InstrID, m opcode.Mnemonic, dr, sr opcode.Reg) ir.InstrID {
	n := c.AppendAfter(i)
	assignSynth(c, n, m, dr, sr)
	dataflow.ComputeEffects(c, i)
	dataflow.ComputeEffects(c, n)
	c.RecomputeNeed(i)
	c.RecomputeNeed(n)
	return n
}

// AdjustImmed16 folds LXI loads and DAD adds whose pair is already known
// into a cheaper INX/DEX pair, or — lacking labels to reason about
// relative addresses — synthesizes two MOVs when the target 16-bit value
// is already sitting split across two other registers. opt85.c's
// adjust_immed16.
func AdjustImmed16(c *ir.Chain) {
	for id := c.Head(); id != ir.NoInstr; id = c.Next(id) {
		instr := c.Instr(id)
		prev := c.Effect(instr.Prev)

		switch instr.Mnemonic {
		case opcode.LXI:
			adjustLXI(c, id)
		case opcode.DAD:
			if !prev.KnowPairValue(instr.Sr) {
				continue
			}
			adjustDAD(c, id)
		}
	}
}

func adjustLXI(c *ir.Chain, id ir.InstrID) {
	instr := c.Instr(id)
	if instr.AddrConst == ir.ConstUnknown {
		return
	}
	prev := c.Effect(instr.Prev)
	dr := instr.Dr
	kdr := prev.KnowPairValue(dr)
	var v uint16
	if kdr {
		v, _ = prev.PairValue(dr)
	}

	switch {
	// opt85.c compares v against (uint8_t)i->addrconst here — an 8-bit
	// truncation that would equate an LXI to any value sharing its low
	// byte with the pair's full 16-bit value. Compared against the full
	// 16-bit constant instead, which is what an exact-match elimination
	// actually requires.
	case kdr && v == uint16(instr.AddrConst):
		c.Eliminate(id)
	case kdr && v == uint16(instr.AddrConst+1):
		c.Retarget(id, opcode.DEX, dr, dr)
	case kdr && v == uint16(instr.AddrConst-1):
		c.Retarget(id, opcode.INX, dr, dr)
	case kdr && v == uint16(instr.AddrConst+2):
		c.Retarget(id, opcode.DEX, dr, dr)
		appendSynth(c, id, opcode.DEX, dr, dr)
	case kdr && v == uint16(instr.AddrConst-2):
		c.Retarget(id, opcode.INX, dr, dr)
		appendSynth(c, id, opcode.INX, dr, dr)
	default:
		// Look for the value split across two other registers. Only a
		// win if both halves are present and we aren't exchanging halves
		// with ourselves.
		low := opcode.PairLow(dr)
		rl := prev.FindRegValue(instr.AddrConst & 0xFF)
		rh := prev.FindRegValue((instr.AddrConst >> 8) & 0xFF)
		if rl == opcode.RegNone || rh == opcode.RegNone {
			return
		}
		if rl == dr && rh == low {
			return
		}
		if rl == dr || rl == low {
			// The low half's source overlaps the pair we're loading:
			// write the low half first before it's clobbered.
			c.Retarget(id, opcode.MOV, low, rl)
			appendSynth(c, id, opcode.MOV, dr, rh)
		} else {
			c.Retarget(id, opcode.MOV, dr, rh)
			appendSynth(c, id, opcode.MOV, low, rl)
		}
	}
}

func adjustDAD(c *ir.Chain, id ir.InstrID) {
	instr := c.Instr(id)
	next := c.Effect(instr.Next)
	// Flags from a DAD are only safe to discard if nothing downstream
	// needs PSW.
	if next.Need&opcode.MaskPSW != 0 {
		return
	}
	prev := c.Effect(instr.Prev)
	v, _ := prev.PairValue(instr.Sr)
	sv := int16(v)

	switch sv {
	case 0:
		c.Eliminate(id)
	case 1:
		c.Retarget(id, opcode.INX, opcode.RegH, opcode.RegH)
	case -1:
		c.Retarget(id, opcode.DEX, opcode.RegH, opcode.RegH)
	case 2:
		c.Retarget(id, opcode.INX, opcode.RegH, opcode.RegH)
		appendSynth(c, id, opcode.INX, opcode.RegH, opcode.RegH)
	case -2:
		c.Retarget(id, opcode.DEX, opcode.RegH, opcode.RegH)
		appendSynth(c, id, opcode.DEX, opcode.RegH, opcode.RegH)
	}
}
