// Package pipeline wires the lexer, IR builder, dataflow passes, and
// rewrite passes into the single sequence every opt85 subcommand runs:
// parse, propagate liveness, propagate values, then fold. Grounded on
// opt85.c's main(), which runs the same fixed sequence (parse_file,
// propagate_need, compute_values, then the adjust_* passes) with no
// per-invocation choice of which passes to skip.
package pipeline

import (
	"bufio"
	"fmt"
	"io"

	"github.com/EtchedPixels/Opt85/internal/lexer"
	"github.com/EtchedPixels/Opt85/pkg/dataflow"
	"github.com/EtchedPixels/Opt85/pkg/ir"
	"github.com/EtchedPixels/Opt85/pkg/rewrite"
)

// Parse reads assembly source line by line and builds a chain from it,
// with no analysis or rewriting done yet. Exposed separately from Build
// so callers that need a before/after comparison (opt85 stats) can
// snapshot the chain's shape right after parsing.
func Parse(r io.Reader) (*ir.Chain, error) {
	b := ir.NewBuilder()

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		l := lexer.Parse(scanner.Text())
		if l.Blank() {
			continue
		}
		if _, err := b.Add(l.Label, l.Text); err != nil {
			return nil, fmt.Errorf("%d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}

	return b.Chain, nil
}

// Optimize runs the full analysis and rewrite pipeline over an
// already-parsed chain in place: liveness, then value propagation, then
// the peephole folds. Liveness must run first — it deletes dead
// instructions, and a value snapshot taken before that elimination can
// still reflect a write that liveness was about to prove dead, which would
// let a rewrite fold against a stale fact instead of the write that
// actually survives. The chain's live instructions afterward are the
// optimized program.
func Optimize(c *ir.Chain) error {
	dataflow.PropagateNeed(c)

	if err := dataflow.ComputeValues(c); err != nil {
		return fmt.Errorf("computing values: %w", err)
	}

	rewrite.AdjustImmed8(c)
	rewrite.AdjustImmed16(c)

	return nil
}

// Build parses and optimizes source in one step, for callers that don't
// need the intermediate, pre-rewrite chain shape.
func Build(r io.Reader) (*ir.Chain, error) {
	c, err := Parse(r)
	if err != nil {
		return nil, err
	}
	if err := Optimize(c); err != nil {
		return nil, err
	}
	return c, nil
}
