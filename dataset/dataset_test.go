package dataset

import (
	"path/filepath"
	"testing"

	"github.com/kshedden/gonpy"
)

func TestGenerateDeterministic(t *testing.T) {
	cfg := Config{
		Rows:         20,
		Cols:         3,
		DType:        Float64,
		Distribution: "uniform",
		Seed:         42,
	}

	a1, err := NewGenerator(cfg).Generate("a")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	a2, err := NewGenerator(cfg).Generate("a")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !a1.Equal(a2) {
		t.Error("same config should generate identical arrays")
	}

	cfg.Seed = 43

	a3, err := NewGenerator(cfg).Generate("a")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if a1.Equal(a3) {
		t.Error("different seeds should generate different arrays")
	}
}

func TestGenerateRamp(t *testing.T) {
	a, err := NewGenerator(Config{
		Rows:         10,
		Cols:         1,
		DType:        Int64,
		Distribution: "ramp",
	}).Generate("ramp")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	for i, v := range a.Int64s {
		if v != int64(i) {
			t.Fatalf("ramp element %d = %d, want %d", i, v, i)
		}
	}
}

func TestGenerateUnknownDistributionFallsBack(t *testing.T) {
	a, err := NewGenerator(Config{
		Rows:         5,
		Cols:         2,
		DType:        Float64,
		Distribution: "bogus",
		Seed:         7,
	}).Generate("a")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if err := a.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestGenerateInvalidShape(t *testing.T) {
	_, err := NewGenerator(Config{Rows: 0, Cols: 3, DType: Float64}).Generate("a")
	if err == nil {
		t.Error("expected error for zero rows")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	for _, dtype := range []DType{Float64, Int64} {
		a, err := NewGenerator(Config{
			Rows:         8,
			Cols:         4,
			DType:        dtype,
			Distribution: "uniform",
			Seed:         1,
		}).Generate("roundtrip")
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}

		path := filepath.Join(dir, "roundtrip-"+string(dtype)+".npy")

		if err := Save(path, a); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		got, err := Load(path)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}

		if !got.Equal(a) {
			t.Errorf("%s: loaded array differs from saved array", dtype)
		}
	}
}

func TestLoadNameFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sensors.npy")

	a, err := NewGenerator(Config{
		Rows: 3, Cols: 2, DType: Float64, Seed: 1,
	}).Generate("ignored")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if err := Save(path, a); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got.Name != "sensors" {
		t.Errorf("name = %q, want sensors", got.Name)
	}
}

func TestLoadOneDimensional(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flat.npy")

	w, err := gonpy.NewFileWriter(path)
	if err != nil {
		t.Fatalf("npy writer failed: %v", err)
	}

	w.Shape = []int{5}

	if err := w.WriteFloat64([]float64{1, 2, 3, 4, 5}); err != nil {
		t.Fatalf("npy write failed: %v", err)
	}

	a, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if a.Rows != 5 || a.Cols != 1 {
		t.Errorf("shape = %dx%d, want 5x1", a.Rows, a.Cols)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.npy"))
	if err == nil {
		t.Error("expected error for missing input")
	}
}

func TestValidateMismatchedLength(t *testing.T) {
	a := &Array{DType: Float64, Rows: 2, Cols: 2, Float64s: []float64{1}}
	if err := a.Validate(); err == nil {
		t.Error("expected error for mismatched data length")
	}
}
