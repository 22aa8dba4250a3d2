package formats

import (
	"fmt"
	"os"

	gojson "github.com/goccy/go-json"

	"github.com/weiihann/serbench/dataset"
)

// JSON is the text-based structured serialization format. The array is
// converted to nested lists of plain numbers before encoding and
// rebuilt, with explicit dtype and shape restoration, after decoding.
type JSON struct{}

func (JSON) Name() string   { return "json" }
func (JSON) Ext() string    { return ".json" }
func (JSON) Dir() bool      { return false }
func (JSON) Lossless() bool { return true }

type jsonArray struct {
	DType string            `json:"dtype"`
	Shape []int             `json:"shape"`
	Data  gojson.RawMessage `json:"data"`
}

func (JSON) Write(a *dataset.Array, path string) error {
	var (
		data []byte
		err  error
	)

	switch a.DType {
	case dataset.Float64:
		data, err = gojson.Marshal(nestRows(a.Float64s, a.Rows, a.Cols))
	case dataset.Int64:
		data, err = gojson.Marshal(nestRows(a.Int64s, a.Rows, a.Cols))
	}

	if err != nil {
		return fmt.Errorf("json encode data: %w", err)
	}

	doc, err := gojson.Marshal(jsonArray{
		DType: string(a.DType),
		Shape: a.Shape(),
		Data:  data,
	})
	if err != nil {
		return fmt.Errorf("json encode: %w", err)
	}

	if err := os.WriteFile(path, doc, 0o644); err != nil {
		return fmt.Errorf("json write %s: %w", path, err)
	}

	return nil
}

func (JSON) Read(path string) (*dataset.Array, error) {
	doc, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("json read %s: %w", path, err)
	}

	var ja jsonArray
	if err := gojson.Unmarshal(doc, &ja); err != nil {
		return nil, fmt.Errorf("json decode %s: %w", path, err)
	}

	if len(ja.Shape) != 2 {
		return nil, fmt.Errorf("json %s: unsupported rank %d", path, len(ja.Shape))
	}

	a := &dataset.Array{
		DType: dataset.DType(ja.DType),
		Rows:  ja.Shape[0],
		Cols:  ja.Shape[1],
	}

	switch a.DType {
	case dataset.Float64:
		var rows [][]float64
		if err := gojson.Unmarshal(ja.Data, &rows); err != nil {
			return nil, fmt.Errorf("json decode data %s: %w", path, err)
		}

		a.Float64s = flatten(rows, a.Len())
	case dataset.Int64:
		var rows [][]int64
		if err := gojson.Unmarshal(ja.Data, &rows); err != nil {
			return nil, fmt.Errorf("json decode data %s: %w", path, err)
		}

		a.Int64s = flatten(rows, a.Len())
	default:
		return nil, fmt.Errorf("json %s: unsupported dtype %q", path, ja.DType)
	}

	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("json %s: %w", path, err)
	}

	return a, nil
}

func nestRows[T float64 | int64](flat []T, rows, cols int) [][]T {
	out := make([][]T, rows)
	for i := range out {
		out[i] = flat[i*cols : (i+1)*cols]
	}

	return out
}

func flatten[T float64 | int64](rows [][]T, n int) []T {
	out := make([]T, 0, n)
	for _, row := range rows {
		out = append(out, row...)
	}

	return out
}
