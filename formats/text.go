package formats

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/weiihann/serbench/dataset"
)

// Text is the plain space-delimited text format: one row per line, no
// header. Dtype is not recorded, so everything reads back as float64.
type Text struct{}

func (Text) Name() string   { return "txt" }
func (Text) Ext() string    { return ".txt" }
func (Text) Dir() bool      { return false }
func (Text) Lossless() bool { return false }

func (Text) Write(a *dataset.Array, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("txt create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)

	for i := 0; i < a.Rows; i++ {
		for j := 0; j < a.Cols; j++ {
			if j > 0 {
				if err := w.WriteByte(' '); err != nil {
					return fmt.Errorf("txt write %s: %w", path, err)
				}
			}

			var field string

			switch a.DType {
			case dataset.Float64:
				field = strconv.FormatFloat(a.Float64s[i*a.Cols+j], 'g', -1, 64)
			case dataset.Int64:
				field = strconv.FormatInt(a.Int64s[i*a.Cols+j], 10)
			}

			if _, err := w.WriteString(field); err != nil {
				return fmt.Errorf("txt write %s: %w", path, err)
			}
		}

		if err := w.WriteByte('\n'); err != nil {
			return fmt.Errorf("txt write %s: %w", path, err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("txt flush %s: %w", path, err)
	}

	return f.Close()
}

func (Text) Read(path string) (*dataset.Array, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("txt open %s: %w", path, err)
	}
	defer f.Close()

	a := &dataset.Array{DType: dataset.Float64}

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 1<<20), 1<<26)

	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}

		if a.Cols == 0 {
			a.Cols = len(fields)
		} else if len(fields) != a.Cols {
			return nil, fmt.Errorf(
				"txt %s: row %d has %d fields, want %d",
				path, a.Rows, len(fields), a.Cols,
			)
		}

		for _, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("txt parse %s: %w", path, err)
			}

			a.Float64s = append(a.Float64s, v)
		}

		a.Rows++
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("txt scan %s: %w", path, err)
	}

	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("txt %s: %w", path, err)
	}

	return a, nil
}
