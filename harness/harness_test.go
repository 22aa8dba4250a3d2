package harness

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/weiihann/serbench/dataset"
	"github.com/weiihann/serbench/formats"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testInput(t *testing.T, rows int) *dataset.Array {
	t.Helper()

	a, err := dataset.NewGenerator(dataset.Config{
		Rows:         rows,
		Cols:         1,
		DType:        dataset.Float64,
		Distribution: "uniform",
		Seed:         5,
	}).Generate("input")
	if err != nil {
		t.Fatalf("generate input: %v", err)
	}

	return a
}

// stubFormat is a controllable format for failure-injection tests.
type stubFormat struct {
	name      string
	failWrite bool
	failRead  bool
}

func (s stubFormat) Name() string   { return s.name }
func (s stubFormat) Ext() string    { return "." + s.name }
func (s stubFormat) Dir() bool      { return false }
func (s stubFormat) Lossless() bool { return true }

func (s stubFormat) Write(a *dataset.Array, path string) error {
	if s.failWrite {
		return errors.New("injected write failure")
	}

	return os.WriteFile(path, []byte("stub"), 0o644)
}

func (s stubFormat) Read(path string) (*dataset.Array, error) {
	if s.failRead {
		return nil, errors.New("injected read failure")
	}

	if _, err := os.ReadFile(path); err != nil {
		return nil, err
	}

	return &dataset.Array{}, nil
}

func TestTimed(t *testing.T) {
	dur, err := Timed(func() error {
		time.Sleep(time.Millisecond)

		return nil
	})
	if err != nil {
		t.Fatalf("Timed returned error: %v", err)
	}

	if dur < time.Millisecond {
		t.Errorf("duration %v, want >= 1ms", dur)
	}

	wantErr := errors.New("boom")

	_, err = Timed(func() error { return wantErr })
	if !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want %v", err, wantErr)
	}
}

func TestSizeOfFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	if err := os.WriteFile(path, make([]byte, 100), 0o644); err != nil {
		t.Fatal(err)
	}

	size, err := SizeOf(path)
	if err != nil {
		t.Fatalf("SizeOf failed: %v", err)
	}

	if size != 100 {
		t.Errorf("size = %d, want 100", size)
	}
}

func TestSizeOfDirectory(t *testing.T) {
	dir := t.TempDir()

	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "a"), make([]byte, 10), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "sub", "b"), make([]byte, 20), 0o644); err != nil {
		t.Fatal(err)
	}

	size, err := SizeOf(dir)
	if err != nil {
		t.Fatalf("SizeOf failed: %v", err)
	}

	if size != 30 {
		t.Errorf("size = %d, want 30", size)
	}
}

func TestSizeOfMissing(t *testing.T) {
	_, err := SizeOf(filepath.Join(t.TempDir(), "absent"))
	if err == nil {
		t.Fatal("expected error for missing path")
	}

	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want fs.ErrNotExist", err)
	}
}

func TestRunCycleCounts(t *testing.T) {
	scratch := t.TempDir()
	runner := NewRunner(Config{Cycles: 4, ScratchDir: scratch}, testLogger())

	results, err := runner.Run(
		context.Background(),
		[]*dataset.Array{testInput(t, 10)},
		[]formats.Format{stubFormat{name: "ok"}},
	)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}

	r := results[0]

	if !r.Complete() {
		t.Errorf("pair incomplete: %q", r.Failure)
	}

	if len(r.WriteTimes) != 4 || len(r.ReadTimes) != 4 {
		t.Errorf("got %d write / %d read times, want 4 each",
			len(r.WriteTimes), len(r.ReadTimes))
	}

	if r.SizeBytes == 0 {
		t.Error("size = 0, want > 0")
	}

	for _, s := range r.WriteTimes {
		if s < 0 {
			t.Errorf("negative write duration %v", s)
		}
	}

	for _, s := range r.ReadTimes {
		if s < 0 {
			t.Errorf("negative read duration %v", s)
		}
	}
}

func TestCleanupAfterSuccess(t *testing.T) {
	scratch := t.TempDir()
	runner := NewRunner(Config{Cycles: 2, ScratchDir: scratch}, testLogger())

	_, err := runner.Run(
		context.Background(),
		[]*dataset.Array{testInput(t, 10)},
		[]formats.Format{stubFormat{name: "ok"}},
	)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	assertScratchEmpty(t, scratch)
}

func TestCleanupAfterReadFailure(t *testing.T) {
	scratch := t.TempDir()
	runner := NewRunner(Config{Cycles: 3, ScratchDir: scratch}, testLogger())

	results, err := runner.Run(
		context.Background(),
		[]*dataset.Array{testInput(t, 10)},
		[]formats.Format{stubFormat{name: "badread", failRead: true}},
	)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if results[0].Failure == "" {
		t.Error("expected recorded failure")
	}

	if results[0].CyclesCompleted != 0 {
		t.Errorf("cycles completed = %d, want 0", results[0].CyclesCompleted)
	}

	// The artifact was written before the read failed; cleanup must
	// still have removed it.
	assertScratchEmpty(t, scratch)
}

func TestFailFastIsolation(t *testing.T) {
	scratch := t.TempDir()
	runner := NewRunner(Config{Cycles: 3, ScratchDir: scratch}, testLogger())

	results, err := runner.Run(
		context.Background(),
		[]*dataset.Array{testInput(t, 10)},
		[]formats.Format{
			stubFormat{name: "badwrite", failWrite: true},
			stubFormat{name: "ok"},
		},
	)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	if results[0].Failure == "" {
		t.Error("failing format should record its failure")
	}

	if len(results[0].WriteTimes) != 0 {
		t.Errorf("failing format recorded %d write times, want 0",
			len(results[0].WriteTimes))
	}

	if !results[1].Complete() {
		t.Errorf("healthy format should complete, got failure %q",
			results[1].Failure)
	}
}

func TestRunRequiresInputsAndFormats(t *testing.T) {
	runner := NewRunner(Config{ScratchDir: t.TempDir()}, testLogger())

	if _, err := runner.Run(
		context.Background(), nil, []formats.Format{stubFormat{name: "ok"}},
	); err == nil {
		t.Error("expected error for no inputs")
	}

	if _, err := runner.Run(
		context.Background(), []*dataset.Array{testInput(t, 10)}, nil,
	); err == nil {
		t.Error("expected error for no formats")
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewRunner(Config{ScratchDir: t.TempDir()}, testLogger())

	_, err := runner.Run(
		ctx,
		[]*dataset.Array{testInput(t, 10)},
		[]formats.Format{stubFormat{name: "ok"}},
	)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestDefaultCycles(t *testing.T) {
	runner := NewRunner(Config{ScratchDir: t.TempDir()}, testLogger())

	if runner.cfg.Cycles != DefaultCycles {
		t.Errorf("cycles = %d, want %d", runner.cfg.Cycles, DefaultCycles)
	}
}

// TestEndToEnd runs the full scenario: one 1000-element float array,
// one lossless binary format and one lossy text format, 3 cycles each.
func TestEndToEnd(t *testing.T) {
	scratch := t.TempDir()
	input := testInput(t, 1000)

	gobFmt, ok := formats.ByName("gob")
	if !ok {
		t.Fatal("gob format not registered")
	}

	txtFmt, ok := formats.ByName("txt")
	if !ok {
		t.Fatal("txt format not registered")
	}

	runner := NewRunner(Config{Cycles: 3, ScratchDir: scratch}, testLogger())

	results, err := runner.Run(
		context.Background(),
		[]*dataset.Array{input},
		[]formats.Format{gobFmt, txtFmt},
	)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	for _, r := range results {
		if !r.Complete() {
			t.Errorf("%s: incomplete pair: %q", r.Format, r.Failure)

			continue
		}

		if len(r.WriteTimes) != 3 || len(r.ReadTimes) != 3 {
			t.Errorf("%s: got %d write / %d read times, want 3 each",
				r.Format, len(r.WriteTimes), len(r.ReadTimes))
		}

		if r.SizeBytes == 0 {
			t.Errorf("%s: size = 0, want > 0", r.Format)
		}

		if r.AvgWriteSeconds() < 0 || r.AvgReadSeconds() < 0 {
			t.Errorf("%s: negative average durations", r.Format)
		}
	}

	assertScratchEmpty(t, scratch)
}

// TestSizeStability writes the same input twice per format and expects
// identical footprints: every registered serializer is deterministic.
func TestSizeStability(t *testing.T) {
	input := testInput(t, 500)

	for _, f := range formats.All() {
		t.Run(f.Name(), func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "artifact"+f.Ext())

			sizes := make([]uint64, 2)

			for i := range sizes {
				if err := f.Write(input, path); err != nil {
					t.Fatalf("write: %v", err)
				}

				size, err := SizeOf(path)
				if err != nil {
					t.Fatalf("probe: %v", err)
				}

				if err := os.RemoveAll(path); err != nil {
					t.Fatalf("cleanup: %v", err)
				}

				sizes[i] = size
			}

			if sizes[0] != sizes[1] {
				t.Errorf("sizes differ across writes: %d vs %d",
					sizes[0], sizes[1])
			}
		})
	}
}

// TestWriteTimeGrowsWithInput is a sanity check that timing reflects
// work done: writing a much larger input must take longer.
func TestWriteTimeGrowsWithInput(t *testing.T) {
	gobFmt, ok := formats.ByName("gob")
	if !ok {
		t.Fatal("gob format not registered")
	}

	dir := t.TempDir()
	small := testInput(t, 100)
	large := testInput(t, 2_000_000)

	timeWrite := func(a *dataset.Array, name string) time.Duration {
		t.Helper()

		path := filepath.Join(dir, name)

		best := time.Duration(-1)

		// Take the best of a few runs to smooth out scheduler noise.
		for i := 0; i < 3; i++ {
			dur, err := Timed(func() error { return gobFmt.Write(a, path) })
			if err != nil {
				t.Fatalf("write %s: %v", name, err)
			}

			if err := os.RemoveAll(path); err != nil {
				t.Fatalf("cleanup %s: %v", name, err)
			}

			if best < 0 || dur < best {
				best = dur
			}
		}

		return best
	}

	smallDur := timeWrite(small, "small.gob")
	largeDur := timeWrite(large, "large.gob")

	if largeDur <= smallDur {
		t.Errorf("large write %v not slower than small write %v",
			largeDur, smallDur)
	}
}

func assertScratchEmpty(t *testing.T, scratch string) {
	t.Helper()

	entries, err := os.ReadDir(scratch)
	if err != nil {
		t.Fatalf("read scratch dir: %v", err)
	}

	if len(entries) != 0 {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}

		t.Errorf("artifacts leaked into scratch dir: %v", names)
	}
}
