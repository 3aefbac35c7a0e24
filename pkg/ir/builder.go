package ir

import (
	"strconv"
	"strings"

	"github.com/EtchedPixels/Opt85/pkg/opcode"
)

// Builder turns already-delabeled, already-decommented instruction text
// into chain nodes. opt85.c's parse_instruction, generalized from a
// single global codehead/codetail pair to an explicit Chain.
type Builder struct {
	Chain *Chain
}

// NewBuilder returns a Builder over a fresh, empty chain.
func NewBuilder() *Builder {
	return &Builder{Chain: NewChain()}
}

// tokenizer is a tiny strtok(3) stand-in: each call to next consumes up to
// the first rune in sep (or to the end, if sep is empty) and trims
// surrounding space, returning ok=false once nothing is left.
type tokenizer struct {
	s string
}

func (t *tokenizer) next(sep string) (string, bool) {
	if sep == "" {
		tok := strings.TrimSpace(t.s)
		t.s = ""
		return tok, tok != ""
	}
	idx := strings.IndexAny(t.s, sep)
	var tok string
	if idx < 0 {
		tok = t.s
		t.s = ""
	} else {
		tok = t.s[:idx]
		t.s = t.s[idx+1:]
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}

func decodeReg8(tok string) (opcode.Reg, error) {
	if len(tok) != 1 {
		return opcode.RegNone, ErrBadRegister8
	}
	switch tok[0] {
	case 'a', 'A':
		return opcode.RegA, nil
	case 'b', 'B':
		return opcode.RegB, nil
	case 'c', 'C':
		return opcode.RegC, nil
	case 'd', 'D':
		return opcode.RegD, nil
	case 'e', 'E':
		return opcode.RegE, nil
	case 'h', 'H':
		return opcode.RegH, nil
	case 'l', 'L':
		return opcode.RegL, nil
	}
	return opcode.RegNone, ErrBadRegister8
}

func decodeReg8M(tok string) (opcode.Reg, error) {
	if len(tok) == 1 && (tok[0] == 'm' || tok[0] == 'M') {
		return opcode.MemHL, nil
	}
	return decodeReg8(tok)
}

func decodePair(tok string) (opcode.Reg, error) {
	switch strings.ToUpper(tok) {
	case "PSW":
		return opcode.RegPSW, nil
	case "SP":
		return opcode.RegSP, nil
	}
	if len(tok) != 1 {
		return opcode.RegNone, ErrBadRegisterPair
	}
	switch tok[0] {
	case 'b', 'B':
		return opcode.RegB, nil
	case 'd', 'D':
		return opcode.RegD, nil
	case 'h', 'H':
		return opcode.RegH, nil
	}
	return opcode.RegNone, ErrBadRegisterPair
}

// decodeConst parses a numeric literal the way strtol(p, &t, 0) does:
// base auto-detected from a 0x/0 prefix, ConstUnknown if nothing parses.
func decodeConst(tok string) int {
	v, err := strconv.ParseInt(tok, 0, 32)
	if err != nil {
		return ConstUnknown
	}
	return int(v)
}

func pairMaskOf(pair opcode.Reg) opcode.RegMask {
	m, _ := opcode.PairMask(pair)
	return m
}

// Add decodes one instruction line — mnemonic plus operand text, already
// stripped of comment and label by the caller — and appends it to the
// chain. label, if non-empty, names the entry point this instruction
// starts; a label invalidates all tracked register values, since an
// unknown caller might jump in with any register state.
//
// opt85.c's parse_instruction plus the label handling from parse_line.
func (b *Builder) Add(label string, text string) (InstrID, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return NoInstr, ErrLabelAlone
	}

	var mnemonicTok, rest string
	if idx := strings.IndexAny(text, " \t"); idx < 0 {
		mnemonicTok = text
	} else {
		mnemonicTok = text[:idx]
		rest = strings.TrimSpace(text[idx+1:])
	}

	m, ok := opcode.Lookup(mnemonicTok)
	if !ok {
		return NoInstr, ErrUnknownMnemonic
	}
	info := opcode.Table[m]

	id := b.Chain.Append()
	instr := b.Chain.Instr(id)
	instr.Mnemonic = m
	instr.Text = text
	if label != "" {
		instr.Label = &Label{Name: label}
		b.Chain.Effect(instr.Prev).InvalidateRegs()
	}

	prev := b.Chain.Effect(instr.Prev)
	next := b.Chain.Effect(instr.Next)
	prev.Need |= info.ImplicitNeeds()
	next.Set |= info.OMask

	t := tokenizer{s: rest}

	if info.Flags.Has(opcode.OpMOV) {
		rtok, ok := t.next(",")
		if !ok {
			return NoInstr, ErrCommaExpected
		}
		dtok, ok := t.next("")
		if !ok {
			return NoInstr, ErrOperandExpected
		}
		dr, err := decodeReg8M(rtok)
		if err != nil {
			return NoInstr, err
		}
		sr, err := decodeReg8M(dtok)
		if err != nil {
			return NoInstr, err
		}
		if sr == dr && sr == opcode.MemHL {
			return NoInstr, ErrInvalidMove
		}
		prev.Need |= sr.Mask()
		next.Set |= dr.Mask()
		instr.Sr, instr.Dr = sr, dr
	}

	if info.Flags.Has(opcode.OpMVI) {
		rtok, ok := t.next(",")
		if !ok {
			return NoInstr, ErrCommaExpected
		}
		dtok, ok := t.next("")
		if !ok {
			return NoInstr, ErrOperandExpected
		}
		dr, err := decodeReg8M(rtok)
		if err != nil {
			return NoInstr, err
		}
		next.Set |= dr.Mask()
		instr.Dr = dr
		instr.AddrConst = decodeConst(dtok)
	}

	if info.Flags.Has(opcode.OpIMMED) {
		switch {
		case info.Flags.Any(opcode.OpSPAIR | opcode.OpDPAIR):
			ptok, ok := t.next(",")
			if !ok {
				return NoInstr, ErrCommaExpected
			}
			ctok, ok := t.next("")
			if !ok {
				return NoInstr, ErrOperandExpected
			}
			pair, err := decodePair(ptok)
			if err != nil {
				return NoInstr, err
			}
			cv := decodeConst(ctok)
			if info.Flags.Has(opcode.OpSPAIR) {
				instr.Sr = pair
				prev.Need |= pairMaskOf(pair)
			} else {
				instr.Dr = pair
				next.Set |= pairMaskOf(pair)
				if cv != ConstUnknown {
					next.SetPairValue(pair, cv)
				}
			}
			instr.AddrConst = cv
		case info.Flags.Has(opcode.OpAOP):
			ctok, ok := t.next("")
			if !ok {
				return NoInstr, ErrOperandExpected
			}
			instr.Sr, instr.Dr = opcode.RegA, opcode.RegA
			instr.AddrConst = decodeConst(ctok)
		}
	} else {
		switch {
		case info.Flags.Has(opcode.OpDPAIR):
			ptok, ok := t.next("")
			if !ok {
				return NoInstr, ErrOperandExpected
			}
			pair, err := decodePair(ptok)
			if err != nil {
				return NoInstr, err
			}
			instr.Dr = pair
			next.Set |= pairMaskOf(pair)
		case info.Flags.Has(opcode.OpSPAIR):
			ptok, ok := t.next("")
			if !ok {
				return NoInstr, ErrOperandExpected
			}
			pair, err := decodePair(ptok)
			if err != nil {
				return NoInstr, err
			}
			instr.Sr = pair
			if strings.EqualFold(mnemonicTok, "DAD") {
				instr.Dr = opcode.RegH
			}
			prev.Need |= pairMaskOf(pair)
		case info.Flags.Has(opcode.OpAOP):
			rtok, ok := t.next("")
			if !ok {
				return NoInstr, ErrOperandExpected
			}
			r, err := decodeReg8M(rtok)
			if err != nil {
				return NoInstr, err
			}
			instr.Dr = opcode.RegA
			instr.Sr = r
			prev.Need |= r.Mask()
		}
	}

	if info.Flags.Has(opcode.OpREGMOD) {
		rtok, ok := t.next("")
		if !ok {
			return NoInstr, ErrOperandExpected
		}
		r, err := decodeReg8M(rtok)
		if err != nil {
			return NoInstr, err
		}
		next.Set |= r.Mask()
		prev.Need |= r.Mask()
		instr.Dr, instr.Sr = r, r
	}

	if info.Flags.Has(opcode.OpPAIRMOD) {
		ptok, ok := t.next("")
		if !ok {
			return NoInstr, ErrOperandExpected
		}
		pair, err := decodePair(ptok)
		if err != nil {
			return NoInstr, err
		}
		pm := pairMaskOf(pair)
		next.Set |= pm
		prev.Need |= pm
		instr.Dr, instr.Sr = pair, pair
	}

	// LDAX/STAX carry OpADDR|OpSPAIR or OpADDR|OpDPAIR but take a register
	// pair operand, not a literal address — that operand was already
	// consumed above. Only a bare OpADDR mnemonic (LDA/STA/LHLD/SHLD) has
	// an address left to read here.
	if info.Flags.Has(opcode.OpADDR) && !info.Flags.Any(opcode.OpSPAIR|opcode.OpDPAIR) {
		ctok, ok := t.next("")
		if !ok {
			return NoInstr, ErrOperandExpected
		}
		instr.AddrConst = decodeConst(ctok)
	}

	// Save a local snapshot of the instruction's own direct set/need so
	// later passes can inspect them without walking Prev/Next.
	instr.Set = next.Set
	instr.Need = prev.Need

	// Branches, calls, and returns are treated as opaque side effects for
	// now, so nothing downstream of them gets eliminated across them.
	if info.Flags.Any(opcode.OpRET | opcode.OpCALL | opcode.OpBRA) {
		next.Set |= opcode.MaskSideEffect
	}

	return id, nil
}
