package formats

import (
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/weiihann/serbench/dataset"
)

// Parquet is the columnar table format. Each array column becomes a
// required parquet leaf column with a stable zero-padded name; dtype
// maps to DOUBLE or INT64 and round-trips.
type Parquet struct{}

func (Parquet) Name() string   { return "parquet" }
func (Parquet) Ext() string    { return ".parquet" }
func (Parquet) Dir() bool      { return false }
func (Parquet) Lossless() bool { return true }

func (Parquet) Write(a *dataset.Array, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("parquet create %s: %w", path, err)
	}
	defer f.Close()

	group := parquet.Group{}

	for j := 0; j < a.Cols; j++ {
		switch a.DType {
		case dataset.Float64:
			group[colName(j)] = parquet.Leaf(parquet.DoubleType)
		case dataset.Int64:
			group[colName(j)] = parquet.Leaf(parquet.Int64Type)
		}
	}

	schema := parquet.NewSchema("serbench", group)
	w := parquet.NewWriter(f, schema)

	row := make(parquet.Row, a.Cols)

	for i := 0; i < a.Rows; i++ {
		for j := 0; j < a.Cols; j++ {
			var v parquet.Value

			switch a.DType {
			case dataset.Float64:
				v = parquet.ValueOf(a.Float64s[i*a.Cols+j])
			case dataset.Int64:
				v = parquet.ValueOf(a.Int64s[i*a.Cols+j])
			}

			row[j] = v.Level(0, 0, j)
		}

		if _, err := w.WriteRows([]parquet.Row{row}); err != nil {
			return fmt.Errorf("parquet write row %d of %s: %w", i, path, err)
		}
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("parquet close %s: %w", path, err)
	}

	return f.Close()
}

func (Parquet) Read(path string) (*dataset.Array, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("parquet open %s: %w", path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("parquet stat %s: %w", path, err)
	}

	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		return nil, fmt.Errorf("parquet open file %s: %w", path, err)
	}

	fields := pf.Schema().Fields()
	if len(fields) == 0 {
		return nil, fmt.Errorf("parquet %s: no columns", path)
	}

	a := &dataset.Array{
		Cols: len(fields),
		Rows: int(pf.NumRows()),
	}

	switch kind := fields[0].Type().Kind(); kind {
	case parquet.Double:
		a.DType = dataset.Float64
		a.Float64s = make([]float64, a.Len())
	case parquet.Int64:
		a.DType = dataset.Int64
		a.Int64s = make([]int64, a.Len())
	default:
		return nil, fmt.Errorf("parquet %s: unsupported column kind %v", path, kind)
	}

	rowIdx := 0
	buf := make([]parquet.Row, 128)

	for _, rg := range pf.RowGroups() {
		rows := rg.Rows()

		for {
			n, err := rows.ReadRows(buf)

			for _, row := range buf[:n] {
				for _, v := range row {
					j := v.Column()

					switch a.DType {
					case dataset.Float64:
						a.Float64s[rowIdx*a.Cols+j] = v.Double()
					case dataset.Int64:
						a.Int64s[rowIdx*a.Cols+j] = v.Int64()
					}
				}

				rowIdx++
			}

			if err == io.EOF {
				break
			}

			if err != nil {
				rows.Close()

				return nil, fmt.Errorf("parquet read rows %s: %w", path, err)
			}
		}

		if err := rows.Close(); err != nil {
			return nil, fmt.Errorf("parquet close rows %s: %w", path, err)
		}
	}

	if rowIdx != a.Rows {
		return nil, fmt.Errorf(
			"parquet %s: read %d rows, metadata says %d", path, rowIdx, a.Rows,
		)
	}

	return a, nil
}
