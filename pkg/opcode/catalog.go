package opcode

import "strings"

// Info holds static metadata for one mnemonic's table entry: its operand
// shape (Flags), its implicit read mask (IMask) and implicit write mask
// (OMask). Explicit operand reads/writes are layered on top of these by
// the IR builder once operands are decoded. Ported from opt85.c's
// struct optab.
type Info struct {
	Name  string
	Flags Flag
	IMask RegMask
	OMask RegMask
}

// Table is the static mnemonic catalogue, in opt85.c's ops[] order. Order
// matters: for every AOP mnemonic with an immediate variant, the
// non-immediate entry must appear directly before the immediate one (see
// TestImmediateOrdering in catalog_test.go).
var Table [mnemonicCount]Info

// ImplicitNeeds returns the instruction's implicit read mask, folding in
// ReturnLiveMask for OpRET-flagged mnemonics. Kept out of the static Table
// so that overriding ReturnLiveMask takes effect without rebuilding the
// catalogue.
func (info *Info) ImplicitNeeds() RegMask {
	m := info.IMask
	if info.Flags.Has(OpRET) {
		m |= ReturnLiveMask
	}
	return m
}

// ByteSize estimates the encoded length of a mnemonic in bytes, for
// reporting purposes only (opt85.c never tracked this — the IR has no
// byte-level encoding concept). A 16-bit immediate pair load (LXI) or a
// bare OpADDR address (LDA/STA/LHLD/SHLD) costs two extra bytes, an 8-bit
// immediate (MVI and the OpIMMED accumulator forms) one, everything else
// counts as a single opcode byte — including jumps, calls and IN/OUT,
// whose target address or port operand is not counted. LDAX/STAX/PUSH/POP
// take a register pair operand encoded into the opcode itself, not as
// trailing bytes.
func (info *Info) ByteSize() int {
	switch {
	case info.Flags.Has(OpIMMED) && info.Flags.Any(OpSPAIR|OpDPAIR):
		return 3
	case info.Flags.Has(OpADDR) && !info.Flags.Any(OpSPAIR|OpDPAIR):
		return 3
	case info.Flags.Any(OpIMMED | OpMVI):
		return 2
	default:
		return 1
	}
}

// Lookup finds a mnemonic by name, case-insensitive, via linear scan —
// matching opt85.c's find_operation (strcasecmp over ops[]). Spec requires
// linear scan, not a map, so declaration order is the tie-break.
func Lookup(name string) (Mnemonic, bool) {
	for m := Mnemonic(0); m < mnemonicCount; m++ {
		if strings.EqualFold(Table[m].Name, name) {
			return m, true
		}
	}
	return 0, false
}

func init() {
	set := func(m Mnemonic, name string, flags Flag, imask, omask RegMask) {
		Table[m] = Info{Name: name, Flags: flags, IMask: imask, OMask: omask}
	}

	set(MOV, "MOV", OpMOV, 0, 0)
	set(MVI, "MVI", OpMVI, 0, 0)
	set(LXI, "LXI", OpDPAIR|OpIMMED, 0, 0)
	set(LDA, "LDA", OpADDR, MaskMemory, MaskA)
	set(STA, "STA", OpADDR, MaskA, MaskMemory)
	set(LHLD, "LHLD", OpADDR, MaskMemory, MaskH|MaskL)
	set(SHLD, "SHLD", OpADDR, MaskH|MaskL, MaskMemory)
	set(LDAX, "LDAX", OpADDR|OpSPAIR, MaskMemory, MaskA)
	set(STAX, "STAX", OpADDR|OpDPAIR, MaskA, MaskMemory)
	// TODO: XCHG really swaps DE and HL's tracked values rather than just
	// touching both pairs; value-tracking doesn't do that swap yet, so a
	// known HL/DE value is dropped here instead of carried across the
	// exchange. Conservative, not incorrect.
	set(XCHG, "XCHG", 0, MaskD|MaskE|MaskH|MaskL, MaskD|MaskE|MaskH|MaskL)
	set(INR, "INR", OpREGMOD, 0, 0)
	set(DCR, "DCR", OpREGMOD, 0, 0)
	set(INX, "INX", OpPAIRMOD, 0, 0)
	set(DEX, "DEX", OpPAIRMOD, 0, 0)
	set(DAD, "DAD", OpSPAIR, MaskH|MaskL, MaskH|MaskL|MaskPSW)
	set(DAA, "DAA", 0, MaskA|MaskPSW, MaskA|MaskPSW)
	set(RLC, "RLC", 0, MaskA|MaskPSW, MaskA|MaskPSW)
	set(RRC, "RRC", 0, MaskA|MaskPSW, MaskA|MaskPSW)
	set(RAL, "RAL", 0, MaskA|MaskPSW, MaskA|MaskPSW)
	set(RAR, "RAR", 0, MaskA|MaskPSW, MaskA|MaskPSW)
	set(CMA, "CMA", 0, MaskA|MaskPSW, MaskA|MaskPSW)
	set(CMC, "CMC", 0, MaskPSW, MaskPSW)
	set(STC, "STC", 0, MaskPSW, MaskPSW)

	// The immediate form MUST sit directly after its register form.
	set(ADD, "ADD", OpAOP, MaskA, MaskA|MaskPSW)
	set(ADI, "ADI", OpAOP|OpIMMED, MaskA, MaskA|MaskPSW)
	set(ADC, "ADC", OpAOP|OpC, MaskA|MaskPSW, MaskA|MaskPSW)
	set(ACI, "ACI", OpAOP|OpIMMED, MaskA|MaskPSW, MaskA|MaskPSW)
	set(SUB, "SUB", OpAOP, MaskA, MaskA|MaskPSW)
	set(SUI, "SUI", OpAOP|OpIMMED, MaskA, MaskA|MaskPSW)
	set(SBC, "SBC", OpAOP|OpC, MaskA|MaskPSW, MaskA|MaskPSW)
	set(SBI, "SBI", OpAOP|OpIMMED, MaskA|MaskPSW, MaskA|MaskPSW)
	set(ANA, "ANA", OpAOP, MaskA, MaskA|MaskPSW)
	set(ANI, "ANI", OpAOP|OpIMMED, MaskA, MaskA|MaskPSW)
	set(ORA, "ORA", OpAOP, MaskA, MaskA|MaskPSW)
	set(ORI, "ORI", OpAOP|OpIMMED, MaskA, MaskA|MaskPSW)
	set(XRA, "XRA", OpAOP, MaskA, MaskA|MaskPSW)
	set(XRI, "XRI", OpAOP|OpIMMED, MaskA, MaskA|MaskPSW)
	set(CMP, "CMP", OpAOP, MaskA, MaskA|MaskPSW)
	set(CPI, "CPI", OpAOP|OpIMMED, MaskA, MaskA|MaskPSW)

	// Assume the worst case for branches: a conservative barrier.
	set(JMP, "JMP", OpBRA, MaskAll, 0)
	set(JZ, "JZ", OpBRA, MaskAll, 0)
	set(JNZ, "JNZ", OpBRA, MaskAll, 0)
	set(JC, "JC", OpBRA, MaskAll, 0)
	set(JNC, "JNC", OpBRA, MaskAll, 0)
	set(JP, "JP", OpBRA, MaskAll, 0)
	set(JM, "JM", OpBRA, MaskAll, 0)
	set(JPO, "JPO", OpBRA, MaskAll, 0)
	set(JPE, "JPE", OpBRA, MaskAll, 0)
	set(PCHL, "PCHL", OpBRA, MaskAll, 0)

	// Returns need DEHL and SP right; ReturnLiveMask is folded in at use.
	set(RET, "RET", OpRET, MaskSP, MaskSP)
	set(RZ, "RZ", OpRET, MaskPSW|MaskSP, MaskSP)
	set(RNZ, "RNZ", OpRET, MaskPSW|MaskSP, MaskSP)
	set(RC, "RC", OpRET, MaskPSW|MaskSP, MaskSP)
	set(RNC, "RNC", OpRET, MaskPSW|MaskSP, MaskSP)
	set(RP, "RP", OpRET, MaskPSW|MaskSP, MaskSP)
	set(RM, "RM", OpRET, MaskPSW|MaskSP, MaskSP)
	set(RPO, "RPO", OpRET, MaskPSW|MaskSP, MaskSP)
	set(RPE, "RPE", OpRET, MaskPSW|MaskSP, MaskSP)

	// Calls assume everything: no call-graph/ABI analysis (spec non-goal).
	set(CALL, "CALL", OpCALL, MaskAll, MaskAll)
	set(CZ, "CZ", OpCALL, MaskAll, MaskAll)
	set(CNZ, "CNZ", OpCALL, MaskAll, MaskAll)
	set(CC, "CC", OpCALL, MaskAll, MaskAll)
	set(CNC, "CNC", OpCALL, MaskAll, MaskAll)
	set(CP, "CP", OpCALL, MaskAll, MaskAll)
	set(CM, "CM", OpCALL, MaskAll, MaskAll)
	set(CPO, "CPO", OpCALL, MaskAll, MaskAll)
	set(CPE, "CPE", OpCALL, MaskAll, MaskAll)
	set(RST, "RST", OpCALL, MaskAll, MaskAll)

	set(PUSH, "PUSH", OpSPAIR, MaskSP, MaskSP|MaskMemory)
	set(POP, "POP", OpDPAIR, MaskSP|MaskMemory, MaskSP)
	set(XTHL, "XTHL", 0, MaskMemory|MaskSP|MaskH|MaskL, MaskMemory|MaskH|MaskL)
	set(SPHL, "SPHL", 0, MaskH|MaskL, MaskSP)

	set(IN, "IN", OpKEEP, 0, MaskA)
	set(OUT, "OUT", OpKEEP, MaskA, 0)
	set(EI, "EI", OpKEEP, 0, MaskSideEffect)
	set(DI, "DI", OpKEEP, 0, MaskSideEffect)
	set(HLT, "HLT", OpKEEP, 0, MaskSideEffect)
	set(NOP, "NOP", 0, 0, 0)
}
