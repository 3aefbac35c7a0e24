package ir

import "errors"

var (
	// ErrLabelAlone mirrors opt85.c's parse_instruction: a label with no
	// following instruction on the same line isn't supported.
	ErrLabelAlone = errors.New("label alone not supported")

	ErrUnknownMnemonic = errors.New("unknown operation")
	ErrBadRegister8    = errors.New("bad 8-bit register, expected A-L or M")
	ErrBadRegisterPair = errors.New("bad register pair, expected B, D, H, SP or PSW")
	ErrCommaExpected   = errors.New("comma expected")
	ErrOperandExpected = errors.New("register, m, or constant expected")
	ErrInvalidMove     = errors.New("invalid move")
	ErrUnknownValue    = errors.New("attempt to consume unknown value")
	ErrNegativeSPBias  = errors.New("negative frame bias")
	ErrInvalidPairMask = errors.New("invalid pair to mask")
)
