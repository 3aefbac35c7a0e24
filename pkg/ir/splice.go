package ir

import "github.com/EtchedPixels/Opt85/pkg/opcode"

// AppendAfter inserts a brand-new, empty instruction directly after i and
// returns its id. The new instruction's Set/Need start at zero; callers
// that give it a real mnemonic should follow with RecomputeNeed.
// opt85.c's append_instruction.
func (c *Chain) AppendAfter(i InstrID) InstrID {
	afterEffect := c.instrs[i].Next
	oldFollow := c.effects[afterEffect].Next

	n, tailEff := c.newNode()
	c.effects[tailEff].Next = oldFollow
	c.effects[afterEffect].Next = n
	c.instrs[n].Prev = afterEffect

	if oldFollow != NoInstr {
		c.instrs[oldFollow].Prev = tailEff
	} else {
		c.tail = n
	}
	return n
}

// Eliminate removes i from the chain as dead code. i's own Prev/Next
// handles stay valid afterward (its effect slots are kept, just orphaned
// from the live chain), matching opt85.c's "unlink ourself but keep our
// own pointers valid" comment in eliminate_instruction.
//
// opt85.c dereferences i->next->next->prev unconditionally even when i is
// codetail (i->next->next is NULL there); this port guards that case
// instead of replicating the null dereference.
func (c *Chain) Eliminate(i InstrID) {
	e1 := c.instrs[i].Prev
	e2 := c.instrs[i].Next
	p := c.Prev(i)
	after := c.Next(i)

	c.effects[e1].Next = after
	if after != NoInstr {
		c.instrs[after].Prev = e1
	}
	if p == NoInstr {
		c.head = after
	}
	if after == NoInstr {
		c.tail = p
	}

	c.instrs[i].Set = 0
	c.instrs[i].Dead = true
	// The eliminated instruction no longer blocks anything: whatever its
	// successor still needs becomes what its predecessor's effect needs.
	c.effects[e1].Need = c.effects[e2].Need
	c.effects[e2].Set = 0

	if label := c.instrs[i].Label; label != nil {
		c.instrs[i].Label = nil
		if after != NoInstr {
			// The surviving successor may already carry its own label;
			// chain the migrated one in front so a jump to either name
			// still lands on the right instruction, and invalidate its
			// leading edge the same way Builder.Add does for a fresh label.
			c.instrs[after].Label = prependLabel(label, c.instrs[after].Label)
			c.Effect(c.instrs[after].Prev).InvalidateRegs()
		}
		// Else i was the last surviving instruction: there is nothing left
		// to migrate the label onto, so it is dropped.
	}
}

// prependLabel returns head's label list with existing appended after it,
// so a migrated label renders before whatever label its new host already had.
func prependLabel(head, existing *Label) *Label {
	if existing == nil {
		return head
	}
	tail := head
	for tail.Next != nil {
		tail = tail.Next
	}
	tail.Next = existing
	return head
}

// RecomputeNeed derives i's trailing effect's Need from its leading
// effect's Need minus whatever i sets, for a freshly synthesized
// instruction whose Set has just been assigned. opt85.c's
// `i->next->need = i->prev->need & ~i->next->set` in add_op1/add_op2_r.
func (c *Chain) RecomputeNeed(i InstrID) {
	leading := c.instrs[i].Prev
	trailing := c.instrs[i].Next
	c.effects[trailing].Need = c.effects[leading].Need &^ c.effects[trailing].Set
}

// Retarget swaps i's mnemonic and register operands in place without
// touching its already-propagated Set/Need masks, which keep describing
// the original mnemonic: a register the new form reads but the old one
// did not (the source of a MOV or of a register-form accumulator op, the
// operand of INR/DCR/INX/DEX) is not added to them. Callers are the
// immediate-to-register, MVI-to-INR/DCR, LXI-to-INX/DEX and DAD-to-INX/DEX
// rewrites. opt85.c's make_op/make_op1/make_op2_r, which likewise only
// swap opinfo and never touch the surrounding effects.
func (c *Chain) Retarget(i InstrID, m opcode.Mnemonic, dr, sr opcode.Reg) {
	ci := c.Instr(i)
	ci.Mnemonic = m
	ci.Dr = dr
	ci.Sr = sr
	ci.Text = "" // canonical rendering takes over; see internal/emit
}
