package exec85

import "github.com/EtchedPixels/Opt85/pkg/opcode"

// reg8 reads an 8-bit register or the virtual memory cell.
func reg8(s *State, r opcode.Reg) uint8 {
	switch r {
	case opcode.RegA:
		return s.A
	case opcode.RegB:
		return s.B
	case opcode.RegC:
		return s.C
	case opcode.RegD:
		return s.D
	case opcode.RegE:
		return s.E
	case opcode.RegH:
		return s.H
	case opcode.RegL:
		return s.L
	case opcode.MemHL:
		return s.M
	}
	panic("exec85: unreadable register")
}

func setReg8(s *State, r opcode.Reg, v uint8) {
	switch r {
	case opcode.RegA:
		s.A = v
	case opcode.RegB:
		s.B = v
	case opcode.RegC:
		s.C = v
	case opcode.RegD:
		s.D = v
	case opcode.RegE:
		s.E = v
	case opcode.RegH:
		s.H = v
	case opcode.RegL:
		s.L = v
	case opcode.MemHL:
		s.M = v
	default:
		panic("exec85: unwritable register")
	}
}

func pairHi(s *State, p opcode.Reg) *uint8 {
	switch p {
	case opcode.RegB:
		return &s.B
	case opcode.RegD:
		return &s.D
	case opcode.RegH:
		return &s.H
	}
	panic("exec85: not a pair")
}

func pairLo(s *State, p opcode.Reg) *uint8 {
	switch p {
	case opcode.RegB:
		return &s.C
	case opcode.RegD:
		return &s.E
	case opcode.RegH:
		return &s.L
	}
	panic("exec85: not a pair")
}

func pairValue(s *State, p opcode.Reg) uint16 {
	if p == opcode.RegSP {
		return s.SP
	}
	return uint16(*pairHi(s, p))<<8 | uint16(*pairLo(s, p))
}

func setPairValue(s *State, p opcode.Reg, v uint16) {
	if p == opcode.RegSP {
		s.SP = v
		return
	}
	*pairHi(s, p) = uint8(v >> 8)
	*pairLo(s, p) = uint8(v)
}

// Exec runs a single instruction against s, mutating it in place.
//
// Only the mnemonics that participate in register-value propagation are
// given real semantics. Branches, calls, returns, RST, IN/OUT/EI/DI/HLT
// never reach this interpreter in the tests that use it: this core only
// reasons about straight-line basic blocks between labels.
func Exec(s *State, m opcode.Mnemonic, dr, sr opcode.Reg, addrConst int) {
	switch m {
	case opcode.MOV:
		setReg8(s, dr, reg8(s, sr))

	case opcode.MVI:
		setReg8(s, dr, uint8(addrConst))

	case opcode.LXI:
		setPairValue(s, dr, uint16(addrConst))

	case opcode.XCHG:
		s.D, s.H = s.H, s.D
		s.E, s.L = s.L, s.E

	case opcode.INR:
		v := reg8(s, dr) + 1
		s.Flags = (s.Flags & FlagCY) | szp(v) | acAdd(reg8(s, dr)-1, 1, v)
		setReg8(s, dr, v)

	case opcode.DCR:
		old := reg8(s, dr)
		v := old - 1
		s.Flags = (s.Flags & FlagCY) | szp(v) | acSub(old, 1, v)
		setReg8(s, dr, v)

	case opcode.INX:
		setPairValue(s, dr, pairValue(s, dr)+1)

	case opcode.DEX:
		setPairValue(s, dr, pairValue(s, dr)-1)

	case opcode.DAD:
		hl := pairValue(s, opcode.RegH)
		add := pairValue(s, sr)
		result := uint32(hl) + uint32(add)
		if result&0x10000 != 0 {
			s.Flags |= FlagCY
		} else {
			s.Flags &^= FlagCY
		}
		setPairValue(s, opcode.RegH, uint16(result))

	case opcode.DAA:
		execDAA(s)

	case opcode.RLC:
		carry := s.A >> 7
		s.A = (s.A << 1) | carry
		s.Flags = (s.Flags &^ FlagCY) | carry

	case opcode.RRC:
		carry := s.A & 1
		s.A = (s.A >> 1) | (carry << 7)
		s.Flags = (s.Flags &^ FlagCY) | carry

	case opcode.RAL:
		carry := s.A >> 7
		s.A = (s.A << 1) | (s.Flags & FlagCY)
		s.Flags = (s.Flags &^ FlagCY) | carry

	case opcode.RAR:
		carry := s.A & 1
		s.A = (s.A >> 1) | ((s.Flags & FlagCY) << 7)
		s.Flags = (s.Flags &^ FlagCY) | carry

	case opcode.CMA:
		s.A = ^s.A

	case opcode.CMC:
		s.Flags ^= FlagCY

	case opcode.STC:
		s.Flags |= FlagCY

	case opcode.ADD:
		execAdd(s, reg8(s, sr))
	case opcode.ADI:
		execAdd(s, uint8(addrConst))
	case opcode.ADC:
		execAdd(s, reg8(s, sr)+(s.Flags&FlagCY))
	case opcode.ACI:
		execAdd(s, uint8(addrConst)+(s.Flags&FlagCY))
	case opcode.SUB:
		execSub(s, reg8(s, sr))
	case opcode.SUI:
		execSub(s, uint8(addrConst))
	case opcode.SBC:
		execSub(s, reg8(s, sr)+(s.Flags&FlagCY))
	case opcode.SBI:
		execSub(s, uint8(addrConst)+(s.Flags&FlagCY))
	case opcode.ANA:
		s.A &= reg8(s, sr)
		s.Flags = szp(s.A)
	case opcode.ANI:
		s.A &= uint8(addrConst)
		s.Flags = szp(s.A)
	case opcode.ORA:
		s.A |= reg8(s, sr)
		s.Flags = szp(s.A)
	case opcode.ORI:
		s.A |= uint8(addrConst)
		s.Flags = szp(s.A)
	case opcode.XRA:
		s.A ^= reg8(s, sr)
		s.Flags = szp(s.A)
	case opcode.XRI:
		s.A ^= uint8(addrConst)
		s.Flags = szp(s.A)
	case opcode.CMP:
		execCmp(s, reg8(s, sr))
	case opcode.CPI:
		execCmp(s, uint8(addrConst))

	case opcode.PUSH:
		s.Stack = append(s.Stack, pairValue(s, dr))
		s.SP -= 2
	case opcode.POP:
		n := len(s.Stack)
		setPairValue(s, dr, s.Stack[n-1])
		s.Stack = s.Stack[:n-1]
		s.SP += 2

	case opcode.XTHL:
		n := len(s.Stack)
		top := s.Stack[n-1]
		s.Stack[n-1] = pairValue(s, opcode.RegH)
		setPairValue(s, opcode.RegH, top)

	case opcode.SPHL:
		s.SP = pairValue(s, opcode.RegH)

	// LDA/LHLD/LDAX/STA/SHLD/STAX all reference a fixed or pair-indirect
	// address the value-propagation pass never tracks (Memory/MemHL carry
	// no tracked value, only liveness); approximated against the single
	// virtual memory cell for round-trip tests that don't rely on an
	// actual address space.
	case opcode.LDA, opcode.LDAX:
		s.A = s.M
	case opcode.LHLD:
		s.L, s.H = s.M, s.M
	case opcode.STA, opcode.STAX:
		s.M = s.A
	case opcode.SHLD:
		s.M = s.L

	case opcode.NOP:
		// nothing

	default:
		panic("exec85: unhandled mnemonic")
	}
}

func acAdd(a, b, result uint8) uint8 {
	if (a^b^result)&0x10 != 0 {
		return FlagAC
	}
	return 0
}

func acSub(a, b, result uint8) uint8 {
	if (a^b^result)&0x10 != 0 {
		return FlagAC
	}
	return 0
}

func execAdd(s *State, value uint8) {
	a := s.A
	result := uint16(a) + uint16(value)
	s.A = uint8(result)
	s.Flags = szp(s.A) | acAdd(a, value, s.A)
	if result&0x100 != 0 {
		s.Flags |= FlagCY
	}
}

func execSub(s *State, value uint8) {
	a := s.A
	result := uint16(a) - uint16(value)
	s.A = uint8(result)
	s.Flags = szp(s.A) | acSub(a, value, s.A)
	if result&0x100 != 0 {
		s.Flags |= FlagCY
	}
}

func execCmp(s *State, value uint8) {
	a := s.A
	result := uint16(a) - uint16(value)
	r := uint8(result)
	s.Flags = szp(r) | acSub(a, value, r)
	if result&0x100 != 0 {
		s.Flags |= FlagCY
	}
}

// execDAA implements the 8085 decimal-adjust idiom: if the low nibble
// exceeds 9 or AC is set, add 6; if the (possibly adjusted) high nibble
// exceeds 9 or CY is set, add 0x60.
func execDAA(s *State) {
	var add uint8
	carry := s.Flags & FlagCY
	if s.Flags&FlagAC != 0 || s.A&0x0F > 9 {
		add = 0x06
	}
	if carry != 0 || s.A > 0x99 || (s.A&0xF0)>>4 > 9 {
		add |= 0x60
		carry = FlagCY
	}
	old := s.A
	result := uint16(s.A) + uint16(add)
	s.A = uint8(result)
	s.Flags = szp(s.A) | acAdd(old, add, s.A) | carry
}
