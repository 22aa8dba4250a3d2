package formats

import (
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"

	"github.com/weiihann/serbench/dataset"
)

// cborDatasetName is the dataset key inside the container. It is
// internal to the adapter and must match between write and read.
const cborDatasetName = "data"

// CBOR is the self-describing hierarchical binary container: a CBOR
// document holding named datasets, each carrying its own dtype, shape,
// and raw little-endian element bytes.
type CBOR struct{}

func (CBOR) Name() string   { return "cbor" }
func (CBOR) Ext() string    { return ".cbor" }
func (CBOR) Dir() bool      { return false }
func (CBOR) Lossless() bool { return true }

type cborContainer struct {
	Datasets map[string]cborDataset `cbor:"datasets"`
}

type cborDataset struct {
	DType string `cbor:"dtype"`
	Shape []int  `cbor:"shape"`
	Raw   []byte `cbor:"raw"`
}

func (CBOR) Write(a *dataset.Array, path string) error {
	ds := cborDataset{
		DType: string(a.DType),
		Shape: a.Shape(),
	}

	switch a.DType {
	case dataset.Float64:
		ds.Raw = float64Bytes(a.Float64s)
	case dataset.Int64:
		ds.Raw = int64Bytes(a.Int64s)
	}

	doc, err := cbor.Marshal(cborContainer{
		Datasets: map[string]cborDataset{cborDatasetName: ds},
	})
	if err != nil {
		return fmt.Errorf("cbor encode: %w", err)
	}

	if err := os.WriteFile(path, doc, 0o644); err != nil {
		return fmt.Errorf("cbor write %s: %w", path, err)
	}

	return nil
}

func (CBOR) Read(path string) (*dataset.Array, error) {
	doc, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cbor read %s: %w", path, err)
	}

	var c cborContainer
	if err := cbor.Unmarshal(doc, &c); err != nil {
		return nil, fmt.Errorf("cbor decode %s: %w", path, err)
	}

	ds, ok := c.Datasets[cborDatasetName]
	if !ok {
		return nil, fmt.Errorf("cbor %s: dataset %q not found", path, cborDatasetName)
	}

	if len(ds.Shape) != 2 {
		return nil, fmt.Errorf("cbor %s: unsupported rank %d", path, len(ds.Shape))
	}

	a := &dataset.Array{
		DType: dataset.DType(ds.DType),
		Rows:  ds.Shape[0],
		Cols:  ds.Shape[1],
	}

	switch a.DType {
	case dataset.Float64:
		a.Float64s, err = bytesFloat64(ds.Raw)
	case dataset.Int64:
		a.Int64s, err = bytesInt64(ds.Raw)
	default:
		return nil, fmt.Errorf("cbor %s: unsupported dtype %q", path, ds.DType)
	}

	if err != nil {
		return nil, fmt.Errorf("cbor %s: %w", path, err)
	}

	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("cbor %s: %w", path, err)
	}

	return a, nil
}
