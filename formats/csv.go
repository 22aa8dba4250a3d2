package formats

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/weiihann/serbench/dataset"
)

// CSV is the comma-delimited tabular text format with a header row.
// The array is flattened into rows of named columns on write and
// rebuilt from them on read. Dtype is not recorded, so everything
// reads back as float64.
type CSV struct{}

func (CSV) Name() string   { return "csv" }
func (CSV) Ext() string    { return ".csv" }
func (CSV) Dir() bool      { return false }
func (CSV) Lossless() bool { return false }

func (CSV) Write(a *dataset.Array, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := make([]string, a.Cols)
	for j := range header {
		header[j] = colName(j)
	}

	if err := w.Write(header); err != nil {
		return fmt.Errorf("csv write header %s: %w", path, err)
	}

	record := make([]string, a.Cols)

	for i := 0; i < a.Rows; i++ {
		for j := 0; j < a.Cols; j++ {
			switch a.DType {
			case dataset.Float64:
				record[j] = strconv.FormatFloat(a.Float64s[i*a.Cols+j], 'g', -1, 64)
			case dataset.Int64:
				record[j] = strconv.FormatInt(a.Int64s[i*a.Cols+j], 10)
			}
		}

		if err := w.Write(record); err != nil {
			return fmt.Errorf("csv write row %s: %w", path, err)
		}
	}

	w.Flush()

	if err := w.Error(); err != nil {
		return fmt.Errorf("csv flush %s: %w", path, err)
	}

	return f.Close()
}

func (CSV) Read(path string) (*dataset.Array, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("csv read header %s: %w", path, err)
	}

	a := &dataset.Array{DType: dataset.Float64, Cols: len(header)}

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("csv read row %s: %w", path, err)
		}

		for _, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("csv parse %s: %w", path, err)
			}

			a.Float64s = append(a.Float64s, v)
		}

		a.Rows++
	}

	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("csv %s: %w", path, err)
	}

	return a, nil
}
