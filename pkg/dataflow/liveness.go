package dataflow

import (
	"github.com/EtchedPixels/Opt85/pkg/ir"
	"github.com/EtchedPixels/Opt85/pkg/opcode"
)

// PropagateNeed walks the chain tail to head. An instruction that sets
// nothing its successors need, and carries no side effect the KEEPMASK
// bits forbid eliminating, is dead and gets removed; otherwise whatever
// it didn't set but its successor needed becomes its own predecessor's
// need. opt85.c's propagate_need.
//
// A value is needed if the instruction after needed it and this
// instruction didn't set it. It may still be needed even if set, since the
// set may be an operation depending on the prior value (inr a, for one).
func PropagateNeed(c *ir.Chain) {
	if tail := c.Tail(); tail != ir.NoInstr {
		// Nothing downstream of the last instruction to base a need on —
		// treat falling off the end of the chain as the same kind of
		// barrier a label is, rather than letting the zero-valued Need on
		// a freshly allocated effect read as "nothing is live here" and
		// cascade into eliminating the whole tail of the program.
		c.Effect(c.Instr(tail).Next).Need |= opcode.MaskAll
	}

	for id := c.Tail(); id != ir.NoInstr; {
		prior := c.Prev(id)
		instr := c.Instr(id)
		next := c.Effect(instr.Next)

		if next.Need&next.Set == 0 && next.Set&opcode.MaskKeep == 0 {
			c.Eliminate(id)
		} else {
			prev := c.Effect(instr.Prev)
			prev.Need |= next.Need &^ next.Set
		}
		id = prior
	}
}
