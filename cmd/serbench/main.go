// Package main provides the CLI entry point for serbench, a
// serialization format benchmarking tool for numeric array data.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/weiihann/serbench/dataset"
	"github.com/weiihann/serbench/formats"
	"github.com/weiihann/serbench/harness"
	"github.com/weiihann/serbench/report"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	root := newRootCmd(logger)
	if err := root.Execute(); err != nil {
		logger.Error("command failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:   "serbench",
		Short: "Serialization format benchmarking tool",
		Long: `Serbench measures read/write latency and on-disk footprint of
multiple serialization formats against a fixed set of numeric array inputs,
running a configured number of write/read cycles per (input, format) pair.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd(logger))
	root.AddCommand(newGenCmd(logger))
	root.AddCommand(newFormatsCmd())

	return root
}

func newRunCmd(logger *slog.Logger) *cobra.Command {
	var (
		inputs     []string
		include    []string
		exclude    []string
		cycles     int
		scratchDir string
		outputJSON bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run serialization benchmarks over the configured inputs",
		Long: `Load the configured npy inputs, then for each (input, format) pair run
the configured number of write/read cycles, timing each operation and
measuring the artifact footprint, and print a comparison report.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBenchmark(cmd.Context(), logger, runConfig{
				inputs:     inputs,
				include:    include,
				exclude:    exclude,
				cycles:     cycles,
				scratchDir: scratchDir,
				outputJSON: outputJSON,
			})
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVar(&inputs, "inputs", nil,
		"npy input files to benchmark (required)")
	flags.StringSliceVar(&include, "formats", nil,
		"Formats to benchmark (default: all registered)")
	flags.StringSliceVar(&exclude, "exclude", nil,
		"Formats to leave out")
	flags.IntVar(&cycles, "cycles", harness.DefaultCycles,
		"Write/read cycles per (input, format) pair")
	flags.StringVar(&scratchDir, "scratch-dir", "",
		"Directory for trial artifacts (default: a fresh temp dir)")
	flags.BoolVar(&outputJSON, "json", false,
		"Output results as JSON instead of a table")

	return cmd
}

type runConfig struct {
	inputs     []string
	include    []string
	exclude    []string
	cycles     int
	scratchDir string
	outputJSON bool
}

func runBenchmark(
	ctx context.Context,
	logger *slog.Logger,
	cfg runConfig,
) error {
	if len(cfg.inputs) == 0 {
		return fmt.Errorf("at least one input must be specified via --inputs")
	}

	fmts, err := selectFormats(cfg.include, cfg.exclude)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting benchmark",
		slog.Any("inputs", cfg.inputs),
		slog.Int("formats", len(fmts)),
		slog.Int("cycles", cfg.cycles),
	)

	// Step 1: Load every input up front. A missing or corrupt input
	// aborts the whole run; without it the report is meaningless.
	arrays := make([]*dataset.Array, 0, len(cfg.inputs))

	for _, path := range cfg.inputs {
		a, err := dataset.Load(path)
		if err != nil {
			return fmt.Errorf("load input: %w", err)
		}

		logger.InfoContext(ctx, "input loaded",
			slog.String("name", a.Name),
			slog.String("dtype", string(a.DType)),
			slog.Int("rows", a.Rows),
			slog.Int("cols", a.Cols),
		)

		arrays = append(arrays, a)
	}

	// Step 2: Prepare the scratch directory.
	scratchDir := cfg.scratchDir
	if scratchDir == "" {
		scratchDir, err = os.MkdirTemp("", "serbench-*")
		if err != nil {
			return fmt.Errorf("create scratch dir: %w", err)
		}

		defer os.RemoveAll(scratchDir)
	} else if err := os.MkdirAll(scratchDir, 0o755); err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}

	// Step 3: Run every pair sequentially.
	runner := harness.NewRunner(harness.Config{
		Cycles:     cfg.cycles,
		ScratchDir: scratchDir,
	}, logger)

	results, err := runner.Run(ctx, arrays, fmts)
	if err != nil {
		return fmt.Errorf("run benchmark: %w", err)
	}

	// Step 4: Generate the report.
	if cfg.outputJSON {
		if err := report.GenerateJSON(os.Stdout, results); err != nil {
			return fmt.Errorf("generate JSON report: %w", err)
		}
	} else {
		if err := report.Generate(os.Stdout, results); err != nil {
			return fmt.Errorf("generate report: %w", err)
		}
	}

	logger.InfoContext(ctx, "benchmark complete")

	return nil
}

func selectFormats(include, exclude []string) ([]formats.Format, error) {
	selected := formats.All()

	if len(include) > 0 {
		selected = selected[:0]

		for _, name := range include {
			f, ok := formats.ByName(name)
			if !ok {
				return nil, fmt.Errorf(
					"unknown format %q (known: %v)", name, formats.Names(),
				)
			}

			selected = append(selected, f)
		}
	}

	if len(exclude) > 0 {
		kept := selected[:0]

		for _, f := range selected {
			if !slices.Contains(exclude, f.Name()) {
				kept = append(kept, f)
			}
		}

		selected = kept
	}

	return selected, nil
}

func newGenCmd(logger *slog.Logger) *cobra.Command {
	var (
		out          string
		rows         int
		cols         int
		dtype        string
		distribution string
		seed         int64
	)

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate a deterministic synthetic npy input file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if seed == 0 {
				seed = time.Now().UnixNano()
			}

			gen := dataset.NewGenerator(dataset.Config{
				Rows:         rows,
				Cols:         cols,
				DType:        dataset.DType(dtype),
				Distribution: distribution,
				Seed:         seed,
			})

			a, err := gen.Generate(out)
			if err != nil {
				return fmt.Errorf("generate: %w", err)
			}

			if err := dataset.Save(out, a); err != nil {
				return fmt.Errorf("save: %w", err)
			}

			logger.InfoContext(cmd.Context(), "input generated",
				slog.String("path", out),
				slog.String("dtype", dtype),
				slog.Int("rows", rows),
				slog.Int("cols", cols),
				slog.String("distribution", distribution),
				slog.Int64("seed", seed),
			)

			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&out, "out", "input.npy",
		"Output npy file path")
	flags.IntVar(&rows, "rows", 1000,
		"Number of rows")
	flags.IntVar(&cols, "cols", 1,
		"Number of columns")
	flags.StringVar(&dtype, "dtype", "float64",
		"Element type: float64 or int64")
	flags.StringVar(&distribution, "distribution", "uniform",
		"Element distribution: uniform, normal, ramp")
	flags.Int64Var(&seed, "seed", 0,
		"Random seed (0 = use current time)")

	return cmd
}

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the registered serialization formats",
		RunE: func(*cobra.Command, []string) error {
			fmt.Println("| Format | Artifact | Lossless |")
			fmt.Println("|--------|----------|----------|")

			for _, f := range formats.All() {
				kind := "file"
				if f.Dir() {
					kind = "directory"
				}

				fmt.Printf("| %s | %s (%s) | %v |\n",
					f.Name(), kind, f.Ext(), f.Lossless(),
				)
			}

			return nil
		},
	}
}
