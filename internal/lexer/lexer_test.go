package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePlainInstruction(t *testing.T) {
	l := Parse("  MOV A,B  ")
	assert.Equal(t, "", l.Label)
	assert.Equal(t, "MOV A,B", l.Text)
}

func TestParseLabeledInstruction(t *testing.T) {
	l := Parse("loop: DCR B")
	assert.Equal(t, "loop", l.Label)
	assert.Equal(t, "DCR B", l.Text)
}

func TestParseStripsComment(t *testing.T) {
	l := Parse("MOV A,B ! copy into accumulator")
	assert.Equal(t, "MOV A,B", l.Text)
}

func TestParseLabelOnlyLine(t *testing.T) {
	l := Parse("done:")
	assert.Equal(t, "done", l.Label)
	assert.Equal(t, "", l.Text)
	assert.False(t, l.Blank())
}

func TestParseBlankLine(t *testing.T) {
	l := Parse("   ")
	assert.True(t, l.Blank())
}

func TestParseIgnoresColonInsideQuotes(t *testing.T) {
	l := Parse(`MVI A,':'`)
	assert.Equal(t, "", l.Label)
	assert.Equal(t, `MVI A,':'`, l.Text)
}
