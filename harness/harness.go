package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/weiihann/serbench/dataset"
	"github.com/weiihann/serbench/formats"
)

// DefaultCycles is the number of write/read cycles per pair when the
// configuration does not say otherwise.
const DefaultCycles = 15

// ErrCleanup marks a failure to remove a trial artifact. A stale
// artifact would corrupt the next cycle's write, so the pair cannot
// continue past it.
var ErrCleanup = errors.New("artifact cleanup failed")

// Config holds parameters for one benchmark run.
type Config struct {
	// Cycles is the number of write/read cycles per (input, format)
	// pair. Zero means DefaultCycles.
	Cycles int

	// ScratchDir is where trial artifacts are created. It must exist
	// and is never an ambient default: callers pass it explicitly so
	// parallel runs and CI sandboxes do not collide.
	ScratchDir string
}

// Runner benchmarks inputs against formats, one pair at a time.
type Runner struct {
	cfg    Config
	logger *slog.Logger
}

// NewRunner creates a Runner with the given configuration.
func NewRunner(cfg Config, logger *slog.Logger) *Runner {
	if cfg.Cycles <= 0 {
		cfg.Cycles = DefaultCycles
	}

	return &Runner{cfg: cfg, logger: logger}
}

// Run benchmarks every (input, format) pair strictly sequentially and
// returns one Result per pair in input-then-format iteration order.
// A pair's failure is recorded on its Result and never aborts the
// remaining pairs. Run returns early only on context cancellation.
func (r *Runner) Run(
	ctx context.Context,
	inputs []*dataset.Array,
	fmts []formats.Format,
) ([]Result, error) {
	if len(inputs) == 0 {
		return nil, errors.New("no inputs to benchmark")
	}

	if len(fmts) == 0 {
		return nil, errors.New("no formats to benchmark")
	}

	results := make([]Result, 0, len(inputs)*len(fmts))

	for _, in := range inputs {
		for _, f := range fmts {
			if err := ctx.Err(); err != nil {
				return results, err
			}

			results = append(results, r.runPair(ctx, in, f))
		}
	}

	return results, nil
}

func (r *Runner) runPair(
	ctx context.Context,
	in *dataset.Array,
	f formats.Format,
) Result {
	res := Result{
		Input:           in.Name,
		Format:          f.Name(),
		CyclesRequested: r.cfg.Cycles,
	}

	path := filepath.Join(r.cfg.ScratchDir, in.Name+"-"+f.Name()+f.Ext())

	logger := r.logger.With(
		slog.String("input", in.Name),
		slog.String("format", f.Name()),
	)

	logger.InfoContext(ctx, "benchmarking pair",
		slog.Int("cycles", r.cfg.Cycles),
		slog.Int("elements", in.Len()),
	)

	for cycle := 0; cycle < r.cfg.Cycles; cycle++ {
		if err := r.runCycle(in, f, path, &res); err != nil {
			// One pair's failure must not abort the run; record it
			// and move on. Remaining cycles for this pair are skipped.
			res.Failure = err.Error()

			level := slog.LevelWarn
			if errors.Is(err, ErrCleanup) {
				level = slog.LevelError
			}

			logger.Log(ctx, level, "cycle failed",
				slog.Int("cycle", cycle),
				slog.String("error", err.Error()),
			)

			break
		}

		res.CyclesCompleted++
	}

	if res.Complete() {
		logger.InfoContext(ctx, "pair finished",
			slog.Uint64("size_bytes", res.SizeBytes),
		)
	}

	return res
}

// runCycle performs one write/probe/read iteration. The artifact is
// removed on every exit path, including failures; a removal failure
// poisons the pair via ErrCleanup.
func (r *Runner) runCycle(
	in *dataset.Array,
	f formats.Format,
	path string,
	res *Result,
) (err error) {
	defer func() {
		if rmErr := os.RemoveAll(path); rmErr != nil {
			err = errors.Join(err, fmt.Errorf("%w: %v", ErrCleanup, rmErr))
		}
	}()

	writeDur, err := Timed(func() error { return f.Write(in, path) })
	if err != nil {
		return fmt.Errorf("write: %w", err)
	}

	// Sampled fresh each cycle; the last sample wins.
	size, err := SizeOf(path)
	if err != nil {
		return fmt.Errorf("size probe: %w", err)
	}

	readDur, err := Timed(func() error {
		_, readErr := f.Read(path)

		return readErr
	})
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	res.WriteTimes = append(res.WriteTimes, writeDur.Seconds())
	res.ReadTimes = append(res.ReadTimes, readDur.Seconds())
	res.SizeBytes = size

	return nil
}
