// Package emit renders an ir.Chain back to text, in two modes: plain
// reassembled source for production use, and an annotated trace carrying
// the live-register masks and known values at each instruction, modeled
// on opt85.c's dump_output.
package emit

import (
	"fmt"
	"io"

	"github.com/EtchedPixels/Opt85/pkg/ir"
	"github.com/EtchedPixels/Opt85/pkg/opcode"
)

// Render returns the canonical text for an instruction. Most instructions
// carry their original source text verbatim (pkg/ir.Builder never clears
// it); only a rewrite pass's in-place Retarget blanks it, and Retarget is
// only ever used for the four shapes below — a two-register MOV, a
// single-register INR/DCR, a single-pair INX/DEX, or a register-form
// accumulator operation such as ADD B — so that's all this needs to
// reconstruct. opt85.c's make_op/make_op1/make_op2_r.
func Render(c *ir.Chain, id ir.InstrID) string {
	instr := c.Instr(id)
	if instr.Text != "" {
		return instr.Text
	}
	name := opcode.Table[instr.Mnemonic].Name
	info := opcode.Table[instr.Mnemonic]
	switch {
	case info.Flags.Has(opcode.OpMOV):
		return fmt.Sprintf("%s %c,%c", name, opcode.RegName(instr.Dr), opcode.RegName(instr.Sr))
	case info.Flags.Has(opcode.OpPAIRMOD):
		return fmt.Sprintf("%s %s", name, opcode.PairName(instr.Dr))
	case info.Flags.Has(opcode.OpREGMOD):
		return fmt.Sprintf("%s %c", name, opcode.RegName(instr.Dr))
	case info.Flags.Has(opcode.OpAOP):
		return fmt.Sprintf("%s %c", name, opcode.RegName(instr.Sr))
	default:
		return name
	}
}

// WritePlain writes the reassembled source for every live instruction in
// the chain, one per line, labels rendered as "name:" prefixes.
func WritePlain(w io.Writer, c *ir.Chain) {
	for id := c.Head(); id != ir.NoInstr; id = c.Next(id) {
		instr := c.Instr(id)
		if instr.Dead {
			continue
		}
		for l := instr.Label; l != nil; l = l.Next {
			fmt.Fprintf(w, "%s:\n", l.Name)
		}
		fmt.Fprintln(w, Render(c, id))
	}
}

// WriteTrace writes the reassembled source interleaved with the live-in
// register mask, live-out register mask, and known values at each
// instruction, matching opt85.c's dump_output/print_regmap/print_values
// output shape. Dead instructions are shown bracketed rather than
// skipped, for debugging what the rewrite passes removed.
func WriteTrace(w io.Writer, c *ir.Chain) {
	var order []ir.InstrID
	var visit func(ir.InstrID)
	visit = func(id ir.InstrID) {
		for d := ir.InstrID(1); int(d) < c.Len(); d++ {
			if c.Instr(d).Dead && c.Effect(c.Instr(d).Next).Next == id {
				visit(d)
			}
		}
		order = append(order, id)
	}
	for id := c.Head(); id != ir.NoInstr; id = c.Next(id) {
		visit(id)
	}
	visit(ir.NoInstr)
	for _, id := range order[:len(order)-1] {
		instr := c.Instr(id)
		prev := c.Effect(instr.Prev)
		next := c.Effect(instr.Next)

		if instr.Dead {
			fmt.Fprintln(w, "---- BEGIN DEAD ----")
		}
		fmt.Fprint(w, regmapString(prev.Need))
		fmt.Fprintln(w)
		for l := instr.Label; l != nil; l = l.Next {
			fmt.Fprintf(w, "%s:", l.Name)
		}
		fmt.Fprintln(w, Render(c, id))
		fmt.Fprint(w, regmapString(next.Need))
		fmt.Fprintln(w)
		fmt.Fprintln(w, valuesString(next))
		if instr.Dead {
			fmt.Fprintln(w, "----  END DEAD  ----")
		}
	}
}

func regmapString(m opcode.RegMask) string {
	buf := make([]byte, 0, int(opcode.LastTracked8-opcode.FirstTracked8)+1)
	for r := opcode.FirstTracked8; r <= opcode.LastTracked8; r++ {
		if m&r.Mask() != 0 {
			buf = append(buf, opcode.RegName(r))
		} else {
			buf = append(buf, '-')
		}
	}
	return string(buf)
}

func valuesString(e *ir.Effect) string {
	s := ""
	for r := opcode.FirstTracked8; r <= opcode.LastTracked8; r++ {
		s += string(opcode.RegName(r))
		if v, err := e.RegValue(r); err == nil {
			s += fmt.Sprintf("%02X", v)
		} else {
			s += "??"
		}
	}
	return s
}
