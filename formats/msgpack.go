package formats

import (
	"fmt"
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/weiihann/serbench/dataset"
)

// Msgpack is a compact binary structured format carrying dtype, shape,
// and the flat element slice.
type Msgpack struct{}

func (Msgpack) Name() string   { return "msgpack" }
func (Msgpack) Ext() string    { return ".msgpack" }
func (Msgpack) Dir() bool      { return false }
func (Msgpack) Lossless() bool { return true }

type msgpackArray struct {
	DType    string    `msgpack:"dtype"`
	Shape    []int     `msgpack:"shape"`
	Float64s []float64 `msgpack:"float64s,omitempty"`
	Int64s   []int64   `msgpack:"int64s,omitempty"`
}

func (Msgpack) Write(a *dataset.Array, path string) error {
	doc, err := msgpack.Marshal(msgpackArray{
		DType:    string(a.DType),
		Shape:    a.Shape(),
		Float64s: a.Float64s,
		Int64s:   a.Int64s,
	})
	if err != nil {
		return fmt.Errorf("msgpack encode: %w", err)
	}

	if err := os.WriteFile(path, doc, 0o644); err != nil {
		return fmt.Errorf("msgpack write %s: %w", path, err)
	}

	return nil
}

func (Msgpack) Read(path string) (*dataset.Array, error) {
	doc, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("msgpack read %s: %w", path, err)
	}

	var ma msgpackArray
	if err := msgpack.Unmarshal(doc, &ma); err != nil {
		return nil, fmt.Errorf("msgpack decode %s: %w", path, err)
	}

	if len(ma.Shape) != 2 {
		return nil, fmt.Errorf("msgpack %s: unsupported rank %d", path, len(ma.Shape))
	}

	a := &dataset.Array{
		DType:    dataset.DType(ma.DType),
		Rows:     ma.Shape[0],
		Cols:     ma.Shape[1],
		Float64s: ma.Float64s,
		Int64s:   ma.Int64s,
	}

	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("msgpack %s: %w", path, err)
	}

	return a, nil
}
