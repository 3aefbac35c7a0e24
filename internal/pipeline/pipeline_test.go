package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EtchedPixels/Opt85/internal/emit"
)

func TestBuildEliminatesRedundantMVI(t *testing.T) {
	src := "MVI A,5\nMVI A,5\n"
	c, err := Build(strings.NewReader(src))
	require.NoError(t, err)

	var out strings.Builder
	emit.WritePlain(&out, c)
	assert.Equal(t, "MVI A,5\n", out.String())
}

func TestBuildSkipsBlankLinesAndComments(t *testing.T) {
	src := "\n! a comment\nMVI A,5\n   \n"
	c, err := Build(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 1, c.LiveLen())
}

func TestBuildWrapsParseErrorsWithLineNumber(t *testing.T) {
	src := "MVI A,5\nFROBNICATE\n"
	_, err := Build(strings.NewReader(src))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2:")
}

func TestBuildHonorsLabels(t *testing.T) {
	src := "loop: MVI A,5\nJMP loop\n"
	c, err := Build(strings.NewReader(src))
	require.NoError(t, err)

	var out strings.Builder
	emit.WritePlain(&out, c)
	assert.Contains(t, out.String(), "loop:\n")
}

func TestParseThenOptimizeMatchesBuild(t *testing.T) {
	src := "MVI A,5\nMVI A,5\n"

	c1, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	inputCount := c1.Len() - 1
	require.NoError(t, Optimize(c1))

	c2, err := Build(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, 2, inputCount)
	assert.Equal(t, c2.LiveLen(), c1.LiveLen())
}
