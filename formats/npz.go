package formats

import (
	"archive/zip"
	"fmt"
	"io"
	"os"

	"github.com/kshedden/gonpy"

	"github.com/weiihann/serbench/dataset"
)

// npzEntryName is the npy member name inside the archive. It is
// internal to the adapter and must match between write and read.
const npzEntryName = "data.npy"

// NPZ is the self-describing array-with-metadata binary container: a
// zip archive holding a single npy member whose header records dtype
// and shape.
type NPZ struct{}

func (NPZ) Name() string   { return "npz" }
func (NPZ) Ext() string    { return ".npz" }
func (NPZ) Dir() bool      { return false }
func (NPZ) Lossless() bool { return true }

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func (NPZ) Write(a *dataset.Array, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("npz create %s: %w", path, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	entry, err := zw.Create(npzEntryName)
	if err != nil {
		return fmt.Errorf("npz create entry %s: %w", path, err)
	}

	nw, err := gonpy.NewWriter(nopWriteCloser{entry})
	if err != nil {
		return fmt.Errorf("npz npy writer %s: %w", path, err)
	}

	nw.Shape = []int{a.Rows, a.Cols}

	switch a.DType {
	case dataset.Float64:
		err = nw.WriteFloat64(a.Float64s)
	case dataset.Int64:
		err = nw.WriteInt64(a.Int64s)
	}

	if err != nil {
		return fmt.Errorf("npz write entry %s: %w", path, err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("npz close archive %s: %w", path, err)
	}

	return f.Close()
}

func (NPZ) Read(path string) (*dataset.Array, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("npz open %s: %w", path, err)
	}
	defer zr.Close()

	var member *zip.File

	for _, zf := range zr.File {
		if zf.Name == npzEntryName {
			member = zf

			break
		}
	}

	if member == nil {
		return nil, fmt.Errorf("npz %s: entry %q not found", path, npzEntryName)
	}

	rc, err := member.Open()
	if err != nil {
		return nil, fmt.Errorf("npz open entry %s: %w", path, err)
	}
	defer rc.Close()

	nr, err := gonpy.NewReader(rc)
	if err != nil {
		return nil, fmt.Errorf("npz npy reader %s: %w", path, err)
	}

	rows, cols := 0, 1

	switch len(nr.Shape) {
	case 1:
		rows = nr.Shape[0]
	case 2:
		rows, cols = nr.Shape[0], nr.Shape[1]
	default:
		return nil, fmt.Errorf("npz %s: unsupported rank %d", path, len(nr.Shape))
	}

	a := &dataset.Array{Rows: rows, Cols: cols}

	switch nr.Dtype {
	case "f8":
		a.DType = dataset.Float64

		a.Float64s, err = nr.GetFloat64()
	case "i8":
		a.DType = dataset.Int64

		a.Int64s, err = nr.GetInt64()
	default:
		return nil, fmt.Errorf("npz %s: unsupported npy dtype %q", path, nr.Dtype)
	}

	if err != nil {
		return nil, fmt.Errorf("npz read entry %s: %w", path, err)
	}

	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("npz %s: %w", path, err)
	}

	return a, nil
}
