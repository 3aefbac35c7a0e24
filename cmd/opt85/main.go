package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/EtchedPixels/Opt85/internal/emit"
	"github.com/EtchedPixels/Opt85/internal/pipeline"
	"github.com/EtchedPixels/Opt85/pkg/ir"
	"github.com/EtchedPixels/Opt85/pkg/report"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "opt85",
		Short: "8085 peephole optimizer — fold, eliminate, and rewrite straight-line code",
	}

	runCmd := &cobra.Command{
		Use:   "run [file]",
		Short: "Optimize an assembly file and print the rewritten source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildFromFile(args[0])
			if err != nil {
				return err
			}
			emit.WritePlain(os.Stdout, c)
			return nil
		},
	}

	traceCmd := &cobra.Command{
		Use:   "trace [file]",
		Short: "Optimize an assembly file and print live-register/value annotations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildFromFile(args[0])
			if err != nil {
				return err
			}
			emit.WriteTrace(os.Stdout, c)
			return nil
		},
	}

	var asJSON bool
	statsCmd := &cobra.Command{
		Use:   "stats [file]",
		Short: "Print instruction-count and byte-savings statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := statsFromFile(args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return report.WriteJSON(os.Stdout, s)
			}
			s.WriteReport(os.Stdout)
			return nil
		},
	}
	statsCmd.Flags().BoolVar(&asJSON, "json", false, "emit machine-readable JSON instead of the text report")

	rootCmd.AddCommand(runCmd, traceCmd, statsCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildFromFile opens path and runs the full analysis/rewrite pipeline
// over it, wrapping any error with the file name for context.
func buildFromFile(path string) (*ir.Chain, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := pipeline.Build(f)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", path, err)
	}
	return c, nil
}

// statsFromFile runs the pipeline with a snapshot taken between parsing
// and optimizing, so the before-count reflects the source as written and
// the after-count reflects only what optimization actually eliminated —
// not instructions a rewrite pass synthesized and then immediately kept.
func statsFromFile(path string) (*report.Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := pipeline.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", path, err)
	}

	s := report.Collect(c)
	beforeBytes := report.SumBytes(c)

	if err := pipeline.Optimize(c); err != nil {
		return nil, fmt.Errorf("%s:%w", path, err)
	}

	s.Finish(beforeBytes, c)
	return s, nil
}
