package formats

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/weiihann/serbench/dataset"
)

// Arrow is the columnar record-batch format, written as a single
// Arrow IPC file holding one record batch.
type Arrow struct{}

func (Arrow) Name() string   { return "arrow" }
func (Arrow) Ext() string    { return ".arrow" }
func (Arrow) Dir() bool      { return false }
func (Arrow) Lossless() bool { return true }

func (Arrow) Write(a *dataset.Array, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("arrow create %s: %w", path, err)
	}
	defer f.Close()

	pool := memory.NewGoAllocator()

	fields := make([]arrow.Field, a.Cols)
	for j := range fields {
		fields[j] = arrow.Field{Name: colName(j), Type: arrowType(a.DType)}
	}

	schema := arrow.NewSchema(fields, nil)

	b := array.NewRecordBuilder(pool, schema)
	defer b.Release()

	for j := 0; j < a.Cols; j++ {
		switch a.DType {
		case dataset.Float64:
			fb := b.Field(j).(*array.Float64Builder)
			fb.Reserve(a.Rows)

			for i := 0; i < a.Rows; i++ {
				fb.Append(a.Float64s[i*a.Cols+j])
			}
		case dataset.Int64:
			fb := b.Field(j).(*array.Int64Builder)
			fb.Reserve(a.Rows)

			for i := 0; i < a.Rows; i++ {
				fb.Append(a.Int64s[i*a.Cols+j])
			}
		}
	}

	rec := b.NewRecord()
	defer rec.Release()

	w, err := ipc.NewFileWriter(f, ipc.WithSchema(schema), ipc.WithAllocator(pool))
	if err != nil {
		return fmt.Errorf("arrow writer %s: %w", path, err)
	}

	if err := w.Write(rec); err != nil {
		w.Close()

		return fmt.Errorf("arrow write %s: %w", path, err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("arrow close %s: %w", path, err)
	}

	return f.Close()
}

func (Arrow) Read(path string) (*dataset.Array, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("arrow open %s: %w", path, err)
	}
	defer f.Close()

	r, err := ipc.NewFileReader(f, ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return nil, fmt.Errorf("arrow reader %s: %w", path, err)
	}
	defer r.Close()

	schema := r.Schema()
	if schema.NumFields() == 0 {
		return nil, fmt.Errorf("arrow %s: no columns", path)
	}

	a := &dataset.Array{Cols: schema.NumFields()}

	switch id := schema.Field(0).Type.ID(); id {
	case arrow.FLOAT64:
		a.DType = dataset.Float64
	case arrow.INT64:
		a.DType = dataset.Int64
	default:
		return nil, fmt.Errorf("arrow %s: unsupported column type %v", path, id)
	}

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("arrow read %s: %w", path, err)
		}

		rows := int(rec.NumRows())
		base := a.Rows * a.Cols

		switch a.DType {
		case dataset.Float64:
			a.Float64s = append(a.Float64s, make([]float64, rows*a.Cols)...)

			for j := 0; j < a.Cols; j++ {
				col := rec.Column(j).(*array.Float64)
				for i := 0; i < rows; i++ {
					a.Float64s[base+i*a.Cols+j] = col.Value(i)
				}
			}
		case dataset.Int64:
			a.Int64s = append(a.Int64s, make([]int64, rows*a.Cols)...)

			for j := 0; j < a.Cols; j++ {
				col := rec.Column(j).(*array.Int64)
				for i := 0; i < rows; i++ {
					a.Int64s[base+i*a.Cols+j] = col.Value(i)
				}
			}
		}

		a.Rows += rows
	}

	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("arrow %s: %w", path, err)
	}

	return a, nil
}

func arrowType(dt dataset.DType) arrow.DataType {
	if dt == dataset.Int64 {
		return arrow.PrimitiveTypes.Int64
	}

	return arrow.PrimitiveTypes.Float64
}
