// Package report collects per-run optimization statistics and
// (de)serializes them, around a single run's counters rather than a
// table of discovered rules.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/EtchedPixels/Opt85/pkg/ir"
	"github.com/EtchedPixels/Opt85/pkg/opcode"
)

// Stats summarizes one optimization run: how many instructions went in
// and came out, and how many times each rewrite kind fired.
type Stats struct {
	InputInstructions  int            `json:"input_instructions"`
	OutputInstructions int            `json:"output_instructions"`
	BytesEliminated    int            `json:"bytes_eliminated"`
	Rewrites           map[string]int `json:"rewrites"`
}

// NewStats returns a zeroed Stats ready for Record calls.
func NewStats() *Stats {
	return &Stats{Rewrites: make(map[string]int)}
}

// Record tallies one application of the named rewrite kind (e.g.
// "eliminate", "dcr", "inr", "mov-substitute", "pair-synthesize").
func (s *Stats) Record(kind string) {
	s.Rewrites[kind]++
}

// Collect builds Stats for one run by comparing a chain snapshotted
// right after parsing (before, still holding exactly the parsed
// instructions) against the same chain after the rewrite passes ran.
// Passing the chain twice at different points rather than threading a
// recorder through the rewrite passes keeps AdjustImmed8/AdjustImmed16
// free of reporting concerns — at the cost of only aggregate, not
// per-rewrite-kind, counts.
func Collect(before *ir.Chain) *Stats {
	s := NewStats()
	s.InputInstructions = before.Len() - 1 // slot 0 is the reserved sentinel
	return s
}

// Finish completes a Stats started by Collect once the same chain has
// been optimized in place: it records the post-optimization instruction
// count and the estimated bytes eliminated.
func (s *Stats) Finish(beforeBytes int, after *ir.Chain) {
	s.OutputInstructions = after.LiveLen()
	s.BytesEliminated = beforeBytes - sumLiveBytes(after)
}

// SumBytes totals the byte-size estimate of every instruction slot a
// chain has allocated, live or dead — valid only before a rewrite pass
// runs, since a later Eliminate doesn't shrink the backing slice.
func SumBytes(c *ir.Chain) int {
	total := 0
	for i := 1; i < c.Len(); i++ {
		total += opcode.Table[c.Instr(ir.InstrID(i)).Mnemonic].ByteSize()
	}
	return total
}

func sumLiveBytes(c *ir.Chain) int {
	total := 0
	for id := c.Head(); id != ir.NoInstr; id = c.Next(id) {
		total += opcode.Table[c.Instr(id).Mnemonic].ByteSize()
	}
	return total
}

// InstructionsEliminated is the count of instructions the run removed.
func (s *Stats) InstructionsEliminated() int {
	return s.InputInstructions - s.OutputInstructions
}

// rewriteCount pairs a rewrite kind with how many times it fired, for
// stable, sorted reporting.
type rewriteCount struct {
	Kind  string
	Count int
}

func (s *Stats) sortedRewrites() []rewriteCount {
	out := make([]rewriteCount, 0, len(s.Rewrites))
	for k, v := range s.Rewrites {
		out = append(out, rewriteCount{k, v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

// WriteReport prints a human-readable summary.
func (s *Stats) WriteReport(w io.Writer) {
	fmt.Fprintf(w, "instructions: %d -> %d (-%d)\n",
		s.InputInstructions, s.OutputInstructions, s.InstructionsEliminated())
	fmt.Fprintf(w, "bytes eliminated (estimate): %d\n", s.BytesEliminated)
	for _, rc := range s.sortedRewrites() {
		fmt.Fprintf(w, "  %-20s %d\n", rc.Kind, rc.Count)
	}
}

// WriteJSON serializes s as JSON, for the --json flag.
func WriteJSON(w io.Writer, s *Stats) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// ReadJSON deserializes a Stats previously written by WriteJSON.
func ReadJSON(r io.Reader) (*Stats, error) {
	var s Stats
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, err
	}
	if s.Rewrites == nil {
		s.Rewrites = make(map[string]int)
	}
	return &s, nil
}
