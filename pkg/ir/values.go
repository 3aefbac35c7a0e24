package ir

import "github.com/EtchedPixels/Opt85/pkg/opcode"

// For now we do simple constant tracking and nothing fancy: (HL) and
// fixed-address memory aren't tracked, only the seven 8-bit registers.

// RegValue returns the known value of reg in e, erroring if it isn't known.
// opt85.c's reg_value.
func (e *Effect) RegValue(reg opcode.Reg) (uint8, error) {
	if reg > opcode.LastTracked8 {
		return 0, ErrUnknownValue
	}
	rv := e.values[reg]
	if !rv.known {
		return 0, ErrUnknownValue
	}
	return rv.v, nil
}

// ClearRegValue marks reg's value unknown in e. Untracked registers (M and
// above) are a no-op. opt85.c's clear_reg_value.
func (e *Effect) ClearRegValue(reg opcode.Reg) {
	if reg > opcode.LastTracked8 {
		return
	}
	e.values[reg] = regValue{}
}

// SetRegValue records v as reg's known value in e. opt85.c's set_reg_value.
func (e *Effect) SetRegValue(reg opcode.Reg, v int) {
	if reg > opcode.LastTracked8 {
		return
	}
	e.values[reg] = regValue{known: true, v: uint8(v)}
}

// KnowRegValue reports whether reg's value is known in e.
// opt85.c's know_reg_value.
func (e *Effect) KnowRegValue(reg opcode.Reg) bool {
	if reg > opcode.LastTracked8 {
		return false
	}
	return e.values[reg].known
}

// PairValue returns the 16-bit value of the pair whose high half is
// pairHigh, erroring if either half is unknown. opt85.c's pair_value.
func (e *Effect) PairValue(pairHigh opcode.Reg) (uint16, error) {
	hi, err := e.RegValue(pairHigh)
	if err != nil {
		return 0, err
	}
	lo, err := e.RegValue(opcode.PairLow(pairHigh))
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

// SetPairValue records v as the pair's 16-bit value, high half first.
// opt85.c's set_pair_value.
func (e *Effect) SetPairValue(pairHigh opcode.Reg, v int) {
	e.SetRegValue(opcode.PairLow(pairHigh), v&0xFF)
	e.SetRegValue(pairHigh, (v>>8)&0xFF)
}

// KnowPairValue reports whether both halves of the pair are known.
// opt85.c's know_pair_value.
func (e *Effect) KnowPairValue(pairHigh opcode.Reg) bool {
	return e.KnowRegValue(pairHigh) && e.KnowRegValue(opcode.PairLow(pairHigh))
}

// FindRegValue returns a register holding val, or RegNone if none does (or
// val itself is unknown). opt85.c's find_reg_value.
func (e *Effect) FindRegValue(val int) opcode.Reg {
	if val == ConstUnknown {
		return opcode.RegNone
	}
	for r := opcode.FirstTracked8; r <= opcode.LastTracked8; r++ {
		if v, err := e.RegValue(r); err == nil && int(v) == val&0xFF {
			return r
		}
	}
	return opcode.RegNone
}

// InvalidateRegs clears every tracked register's value and marks everything
// live, the conservative stance taken at a label since any caller could
// jump in with any register state. opt85.c's invalidate_regs.
func (e *Effect) InvalidateRegs() {
	for r := opcode.FirstTracked8; r <= opcode.LastTracked8; r++ {
		e.values[r] = regValue{}
	}
	e.Need = opcode.MaskAll
}
