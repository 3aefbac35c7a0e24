// Package dataflow implements the two whole-chain analyses the rewrite
// passes depend on: constant value propagation (this file) and liveness
// (liveness.go). Both are single forward/backward sweeps over an
// ir.Chain — no fixed points, no iteration to convergence, matching
// opt85.c's compute_values/propagate_need.
package dataflow

import (
	"github.com/EtchedPixels/Opt85/pkg/ir"
	"github.com/EtchedPixels/Opt85/pkg/opcode"
)

// ComputeValues walks the chain head to tail, deriving each instruction's
// trailing effect from its leading effect plus what the instruction itself
// is known to do. opt85.c's compute_values.
func ComputeValues(c *ir.Chain) error {
	for id := c.Head(); id != ir.NoInstr; id = c.Next(id) {
		if err := ComputeEffects(c, id); err != nil {
			return err
		}
	}
	return nil
}

// ComputeEffects derives instruction id's trailing effect (register
// values, SP bias) from its leading effect. opt85.c's compute_effects,
// dispatched on a Mnemonic enum instead of repeated strcasecmp.
func ComputeEffects(c *ir.Chain, id ir.InstrID) error {
	instr := c.Instr(id)
	prev := c.Effect(instr.Prev)
	next := c.Effect(instr.Next)
	m := instr.Mnemonic
	info := opcode.Table[m]

	if info.Flags.Has(opcode.OpMOV) {
		if v, err := prev.RegValue(instr.Sr); err == nil {
			next.SetRegValue(instr.Dr, int(v))
		}
	}
	if info.Flags.Has(opcode.OpMVI) && instr.AddrConst != ir.ConstUnknown {
		next.SetRegValue(instr.Dr, instr.AddrConst)
	}
	if info.Flags.Has(opcode.OpIMMED) && !info.Flags.Has(opcode.OpAOP) && instr.AddrConst != ir.ConstUnknown {
		next.SetPairValue(instr.Dr, instr.AddrConst)
	}

	// SP bias is a running displacement seeded from whatever the
	// preceding instruction settled on; opt85.c leaves this field
	// unseeded (struct instruction starts zeroed, never copied forward),
	// a TODO validate_spbias() away from doing anything — completed here
	// so the tracking described in the design actually chains.
	instr.SPBias = ir.SPBiasUnknown
	if p := c.Prev(id); p != ir.NoInstr {
		instr.SPBias = c.Instr(p).SPBias
	} else {
		instr.SPBias = 0
	}

	switch {
	case m == opcode.PUSH:
		if instr.SPBias != ir.SPBiasUnknown {
			instr.SPBias += 2
		}
	case m == opcode.POP:
		if instr.SPBias != ir.SPBiasUnknown {
			instr.SPBias -= 2
		}
	case m == opcode.INX && instr.Dr == opcode.RegSP:
		if instr.SPBias != ir.SPBiasUnknown {
			instr.SPBias--
		}
	case m == opcode.DEX && instr.Dr == opcode.RegSP:
		if instr.SPBias != ir.SPBiasUnknown {
			instr.SPBias++
		}
	}

	// LXI H,nn; DAD SP; SPHL is the idiom the compiler uses to take the
	// address of a stack slot. We track it so the bias survives the
	// pattern instead of going unknown at the DAD.
	//
	// opt85.c guards this with `strcasecmp(op, "DAD")` (true whenever op
	// is NOT "DAD") and `strcasecmp(op, "SPHL")` (true whenever op is NOT
	// "SPHL") — strcasecmp returns 0 on a match, so as literally written
	// these conditions only ever fire for instructions that AREN'T DAD or
	// SPHL, which can't be right given i->sr == REG_SP / i->dr == REG_SP
	// only ever hold for DAD SP and SPHL respectively. Implemented here as
	// the evidently intended equality check instead.
	if m == opcode.DAD && instr.Sr == opcode.RegSP {
		if prev.KnowPairValue(opcode.RegH) {
			next.Flags |= ir.FlagHLSPBias
			hv, _ := prev.PairValue(opcode.RegH)
			next.SPBias = int(int16(hv))
		}
	}
	if m == opcode.SPHL && instr.SPBias != ir.SPBiasUnknown {
		if prev.Flags&ir.FlagHLSPBias != 0 {
			instr.SPBias += int(int16(prev.SPBias & 0xFFFF))
		} else {
			instr.SPBias = ir.SPBiasUnknown
		}
	}

	if instr.SPBias != ir.SPBiasUnknown && instr.SPBias < 0 {
		// opt85.c's error("negative frame bias"), fatal there and fatal
		// here: a POP that drives the bias negative means our stack-depth
		// model has lost track of reality, not something to paper over.
		return ir.ErrNegativeSPBias
	}

	// Whatever register this instruction doesn't explicitly set carries
	// its value forward unchanged.
	for r := opcode.FirstTracked8; r <= opcode.LastTracked8; r++ {
		if next.Set&r.Mask() != 0 {
			continue
		}
		if v, err := prev.RegValue(r); err == nil {
			next.SetRegValue(r, int(v))
		}
	}

	switch m {
	case opcode.DCR:
		if v, err := prev.RegValue(instr.Dr); err == nil {
			next.SetRegValue(instr.Dr, int(v-1))
		}
	case opcode.INR:
		if v, err := prev.RegValue(instr.Dr); err == nil {
			next.SetRegValue(instr.Dr, int(v+1))
		}
	case opcode.DEX:
		if prev.KnowPairValue(instr.Dr) {
			v, _ := prev.PairValue(instr.Dr)
			next.SetPairValue(instr.Dr, int(v-1))
		}
	case opcode.INX:
		if prev.KnowPairValue(instr.Dr) {
			v, _ := prev.PairValue(instr.Dr)
			next.SetPairValue(instr.Dr, int(v+1))
		}
	case opcode.ANA:
		if a, err := prev.RegValue(opcode.RegA); err == nil {
			if v, err := prev.RegValue(instr.Sr); err == nil {
				next.SetRegValue(instr.Dr, int(a&v))
			}
		}
	case opcode.ORA:
		if a, err := prev.RegValue(opcode.RegA); err == nil {
			if v, err := prev.RegValue(instr.Sr); err == nil {
				next.SetRegValue(instr.Dr, int(a|v))
			}
		}
	case opcode.XRA:
		// XRA A clears A regardless of A's prior value; treat it as an
		// implied MVI A,0 rather than requiring A's value be known.
		if instr.Sr == opcode.RegA {
			next.SetRegValue(opcode.RegA, 0)
		} else if a, err := prev.RegValue(opcode.RegA); err == nil {
			if v, err := prev.RegValue(instr.Sr); err == nil {
				next.SetRegValue(instr.Dr, int(a^v))
			}
		}
	case opcode.ADD:
		if a, err := prev.RegValue(opcode.RegA); err == nil {
			if v, err := prev.RegValue(instr.Sr); err == nil {
				next.SetRegValue(instr.Dr, int(a+v))
			}
		}
	case opcode.SUB:
		if a, err := prev.RegValue(opcode.RegA); err == nil {
			if v, err := prev.RegValue(instr.Sr); err == nil {
				next.SetRegValue(instr.Dr, int(a-v))
			}
		}
	case opcode.DAD:
		if prev.KnowPairValue(opcode.RegH) && prev.KnowPairValue(instr.Sr) {
			h, _ := prev.PairValue(opcode.RegH)
			s, _ := prev.PairValue(instr.Sr)
			next.SetPairValue(opcode.RegH, int(h+s))
		}
	}

	if instr.AddrConst != ir.ConstUnknown {
		if a, err := prev.RegValue(opcode.RegA); err == nil {
			switch m {
			case opcode.ANI:
				next.SetRegValue(instr.Dr, int(a)&instr.AddrConst)
			case opcode.ORI:
				next.SetRegValue(instr.Dr, int(a)|instr.AddrConst)
			case opcode.XRI:
				next.SetRegValue(instr.Dr, int(a)^instr.AddrConst)
			case opcode.ADI:
				next.SetRegValue(instr.Dr, int(a)+instr.AddrConst)
			case opcode.SUI:
				next.SetRegValue(instr.Dr, int(a)-instr.AddrConst)
			}
		}
	}

	return nil
}
