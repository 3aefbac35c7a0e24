// Package rewrite holds the peephole substitutions that run after
// liveness and value propagation have settled: folding a known-redundant
// 8-bit immediate load into a no-op, INR, or DCR (immed8.go), and folding
// a 16-bit immediate load or DAD into INX/DEX or a register-to-register
// pair synthesis (immed16.go). opt85.c's adjust_immed8/adjust_immed16.
package rewrite

import (
	"github.com/EtchedPixels/Opt85/pkg/ir"
	"github.com/EtchedPixels/Opt85/pkg/opcode"
)

// AdjustImmed8 looks for 8-bit immediate operations whose effect is
// already satisfied by the register's known value, and either drops them
// or replaces them with a cheaper INR/DCR/register-form equivalent.
// opt85.c's adjust_immed8. We don't bother looking for e.g. "mov a,0"
// because the compiler producing this assembly is already smart enough
// to avoid it.
func AdjustImmed8(c *ir.Chain) {
	for id := c.Head(); id != ir.NoInstr; id = c.Next(id) {
		instr := c.Instr(id)
		prev := c.Effect(instr.Prev)
		info := opcode.Table[instr.Mnemonic]

		if info.Flags.Has(opcode.OpMVI) {
			if v, err := prev.RegValue(instr.Dr); err == nil {
				switch {
				case int(v) == instr.AddrConst&0xFF:
					c.Eliminate(id)
				case int(v) == (instr.AddrConst+1)&0xFF:
					c.Retarget(id, opcode.DCR, instr.Dr, instr.Dr)
				case int(v) == (instr.AddrConst-1)&0xFF:
					c.Retarget(id, opcode.INR, instr.Dr, instr.Dr)
				}
			}
		}

		instr = c.Instr(id) // Retarget may have changed Mnemonic/Dr/Sr
		info = opcode.Table[instr.Mnemonic]

		switch {
		case info.Flags.Has(opcode.OpMOV):
			dv, derr := prev.RegValue(instr.Dr)
			sv, serr := prev.RegValue(instr.Sr)
			if derr == nil && serr == nil && dv == sv {
				c.Eliminate(id)
			}
		case !instr.Dead && ((info.Flags.Has(opcode.OpIMMED) && info.Flags.Has(opcode.OpAOP)) || info.Flags.Has(opcode.OpMVI)):
			// For each 8-bit operation with an immediate source, look to
			// see if the value is already sitting in some register: for
			// 0, 1, and 255 at least, it's got a fair chance of being
			// there already.
			r := prev.FindRegValue(instr.AddrConst)
			if r != opcode.RegNone {
				if info.Flags.Has(opcode.OpMVI) {
					c.Retarget(id, opcode.MOV, instr.Dr, r)
				} else if reg, ok := opcode.ImmediateToRegister[instr.Mnemonic]; ok {
					c.Retarget(id, reg, instr.Dr, r)
				}
			}
		}
	}
}
