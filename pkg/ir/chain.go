// Package ir holds the instruction chain the optimizer core operates on:
// instructions alternating with the effect state that separates them,
// the same shape opt85.c builds out of struct instruction/struct effect
// pointer pairs. Design Note §9 re-architects that doubly-linked pointer
// cycle as an arena of handles (plain slice indices) so the chain has no
// Go-GC-unfriendly reference cycles and splicing is just integer bookkeeping.
package ir

import "github.com/EtchedPixels/Opt85/pkg/opcode"

// InstrID indexes Chain.instrs. Zero is reserved and never a live
// instruction (mirrors a nil *instruction in opt85.c).
type InstrID int

// EffectID indexes Chain.effects. Zero is the sentinel "dummy_effect" slot:
// it is the leading effect of whichever instruction is currently the head.
// The tail instruction ends at its own trailing effect, not the sentinel.
type EffectID int

const (
	NoInstr  InstrID  = 0
	Sentinel EffectID = 0
)

// ConstUnknown and SPBiasUnknown mark an immediate or a stack-bias value
// the analysis couldn't pin down. opt85.c uses 0xFFFF0000 for both; here
// both are -1<<30, likewise outside the range of any 16-bit value.
const (
	ConstUnknown  = -1 << 30
	SPBiasUnknown = -1 << 30
)

// regValue is one tracked 8-bit register's constant-propagation state.
// opt85.c packs this into value[reg] with a VALUE_KNOWN bit; a small
// struct reads better in Go than bit-packing an already-narrow value.
type regValue struct {
	known bool
	v     uint8
}

// EffectFlag records effect-local tracking bits beyond register values.
type EffectFlag uint8

const (
	// FlagHLSPBias marks an effect where HL was just loaded with a value
	// about to become the new SP bias (the LXI H,n / DAD SP / SPHL idiom).
	// opt85.c's HL_SPBIAS.
	FlagHLSPBias EffectFlag = 1 << iota
)

// Effect is the register/value state living between two instructions.
// opt85.c's struct effect.
type Effect struct {
	Prev, Next InstrID

	Need opcode.RegMask
	Set  opcode.RegMask

	// values, indexed directly by opcode.Reg (RegA..RegL); lower slots unused.
	values [opcode.LastTracked8 + 1]regValue

	Flags  EffectFlag
	SPBias int
}

// Label names an instruction's entry point. opt85.c's struct label, plus a
// Next link: eliminating a labeled instruction migrates its label onto its
// surviving successor, and that successor may already carry a label of its
// own, so more than one name can end up pointing at the same instruction.
type Label struct {
	Name string
	Next *Label
}

// Instruction is one parsed line of assembly. opt85.c's struct instruction.
type Instruction struct {
	Prev, Next EffectID // the effect before and after this instruction

	Label *Label
	Text  string // the instruction text after any label was stripped

	Mnemonic opcode.Mnemonic
	Sr, Dr   opcode.Reg // source/dest register, pair tag, or RegNone

	AddrConst int // immediate operand or address constant; ConstUnknown if none
	SPBias    int // running SP displacement at this point; SPBiasUnknown if lost

	Dead bool

	// Set/Need are this instruction's own local snapshot of its effect's
	// Set/Need, kept so later passes can inspect an instruction's direct
	// requirements without walking through Prev/Next. opt85.c's i->set/i->need.
	Set  opcode.RegMask
	Need opcode.RegMask
}

// Chain is the full alternating instruction/effect list for one source file.
type Chain struct {
	instrs  []Instruction
	effects []Effect

	head, tail InstrID
}

// NewChain returns an empty chain, with the reserved zero slots filled in.
func NewChain() *Chain {
	c := &Chain{
		instrs:  make([]Instruction, 1),
		effects: make([]Effect, 1),
	}
	return c
}

// Head returns the first instruction, or NoInstr if the chain is empty.
func (c *Chain) Head() InstrID { return c.head }

// Tail returns the last instruction, or NoInstr if the chain is empty.
func (c *Chain) Tail() InstrID { return c.tail }

// Len returns the total number of instruction slots ever allocated,
// including ones a rewrite pass later marked dead or appended — i.e.
// before filtering for liveness. Used for before/after reporting.
func (c *Chain) Len() int { return len(c.instrs) }

// LiveLen returns the count of instructions still linked into the chain.
func (c *Chain) LiveLen() int {
	n := 0
	for id := c.Head(); id != NoInstr; id = c.Next(id) {
		n++
	}
	return n
}

// Instr returns a pointer to the instruction identified by id. Never call
// with NoInstr.
func (c *Chain) Instr(id InstrID) *Instruction { return &c.instrs[id] }

// Effect returns a pointer to the effect identified by id.
func (c *Chain) Effect(id EffectID) *Effect { return &c.effects[id] }

// Next returns the instruction following id, or NoInstr at the tail.
// Mirrors opt85.c's `i = i->next->next`.
func (c *Chain) Next(id InstrID) InstrID {
	return c.effects[c.instrs[id].Next].Next
}

// Prev returns the instruction preceding id, or NoInstr at the head.
func (c *Chain) Prev(id InstrID) InstrID {
	return c.effects[c.instrs[id].Prev].Prev
}

// newNode allocates one instruction slot and one effect slot to trail it,
// returning their ids with the effect already linked as the instruction's
// Next. opt85.c's make_instruction.
func (c *Chain) newNode() (InstrID, EffectID) {
	iid := InstrID(len(c.instrs))
	c.instrs = append(c.instrs, Instruction{AddrConst: ConstUnknown, SPBias: SPBiasUnknown})
	eid := EffectID(len(c.effects))
	c.effects = append(c.effects, Effect{SPBias: SPBiasUnknown})
	c.instrs[iid].Next = eid
	c.effects[eid].Prev = iid
	return iid, eid
}

// Append adds a new, empty instruction at the tail of the chain and
// returns its id. opt85.c's new_instruction.
func (c *Chain) Append() InstrID {
	iid, _ := c.newNode()
	if c.tail == NoInstr {
		c.instrs[iid].Prev = Sentinel
		c.head = iid
		c.tail = iid
		return iid
	}
	tailEffect := c.instrs[c.tail].Next
	c.instrs[iid].Prev = tailEffect
	c.effects[tailEffect].Next = iid
	c.tail = iid
	return iid
}
