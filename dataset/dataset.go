// Package dataset models the numeric array inputs the benchmark
// serializes. Arrays are 2-D row-major matrices of float64 or int64,
// loaded once from npy files and treated as read-only for the
// duration of a run.
package dataset

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kshedden/gonpy"
)

// DType identifies the element type of an Array.
type DType string

const (
	Float64 DType = "float64"
	Int64   DType = "int64"
)

// Array is one named benchmark input.
type Array struct {
	Name  string
	DType DType
	Rows  int
	Cols  int

	// Exactly one backing slice is non-nil, matching DType.
	// Row-major, length Rows*Cols.
	Float64s []float64
	Int64s   []int64
}

// Len returns the element count.
func (a *Array) Len() int { return a.Rows * a.Cols }

// Shape returns the shape as [rows, cols].
func (a *Array) Shape() []int { return []int{a.Rows, a.Cols} }

// Equal reports whether b has the same dtype, shape, and elements.
// Names are not compared; they identify inputs, not contents.
func (a *Array) Equal(b *Array) bool {
	if a.DType != b.DType || a.Rows != b.Rows || a.Cols != b.Cols {
		return false
	}

	switch a.DType {
	case Float64:
		for i, v := range a.Float64s {
			if b.Float64s[i] != v {
				return false
			}
		}
	case Int64:
		for i, v := range a.Int64s {
			if b.Int64s[i] != v {
				return false
			}
		}
	}

	return true
}

// Validate checks that the backing slice matches the declared dtype
// and shape.
func (a *Array) Validate() error {
	if a.Rows <= 0 || a.Cols <= 0 {
		return fmt.Errorf("invalid shape %dx%d", a.Rows, a.Cols)
	}

	want := a.Rows * a.Cols

	switch a.DType {
	case Float64:
		if len(a.Float64s) != want {
			return fmt.Errorf(
				"float64 data length %d does not match shape %dx%d",
				len(a.Float64s), a.Rows, a.Cols,
			)
		}
	case Int64:
		if len(a.Int64s) != want {
			return fmt.Errorf(
				"int64 data length %d does not match shape %dx%d",
				len(a.Int64s), a.Rows, a.Cols,
			)
		}
	default:
		return fmt.Errorf("unsupported dtype %q", a.DType)
	}

	return nil
}

// Load reads a npy file into an Array. 1-D files load as n×1.
// The array name is the file name without its extension.
func Load(path string) (*Array, error) {
	r, err := gonpy.NewFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("open input %s: %w", path, err)
	}

	if r.ColumnMajor {
		return nil, fmt.Errorf(
			"input %s: column-major npy files are not supported", path,
		)
	}

	rows, cols, err := shapeOf(r.Shape)
	if err != nil {
		return nil, fmt.Errorf("input %s: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	a := &Array{Name: name, Rows: rows, Cols: cols}

	switch r.Dtype {
	case "f8":
		a.DType = Float64

		a.Float64s, err = r.GetFloat64()
		if err != nil {
			return nil, fmt.Errorf("read input %s: %w", path, err)
		}
	case "i8":
		a.DType = Int64

		a.Int64s, err = r.GetInt64()
		if err != nil {
			return nil, fmt.Errorf("read input %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf(
			"input %s: unsupported npy dtype %q (want f8 or i8)",
			path, r.Dtype,
		)
	}

	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("input %s: %w", path, err)
	}

	return a, nil
}

// Save writes the array to a npy file at path.
func Save(path string, a *Array) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}

	w, err := gonpy.NewFileWriter(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w.Shape = []int{a.Rows, a.Cols}

	switch a.DType {
	case Float64:
		err = w.WriteFloat64(a.Float64s)
	case Int64:
		err = w.WriteInt64(a.Int64s)
	}

	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}

func shapeOf(shape []int) (rows, cols int, err error) {
	switch len(shape) {
	case 1:
		return shape[0], 1, nil
	case 2:
		return shape[0], shape[1], nil
	default:
		return 0, 0, fmt.Errorf(
			"unsupported npy rank %d (want 1 or 2)", len(shape),
		)
	}
}
