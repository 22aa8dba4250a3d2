package formats

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	gojson "github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"

	"github.com/weiihann/serbench/dataset"
)

// zarrChunkElems is the fixed number of elements per chunk file.
const zarrChunkElems = 16384

// Zarr is the chunked hierarchical array store: a directory holding a
// JSON metadata file plus numbered chunk files, each a zstd-compressed
// run of little-endian elements. Its footprint is measured by a
// recursive directory sum.
type Zarr struct{}

func (Zarr) Name() string   { return "zarr" }
func (Zarr) Ext() string    { return ".zarr" }
func (Zarr) Dir() bool      { return true }
func (Zarr) Lossless() bool { return true }

type zarrMeta struct {
	DType      string `json:"dtype"`
	Shape      []int  `json:"shape"`
	ChunkElems int    `json:"chunk_elems"`
	Chunks     int    `json:"chunks"`
	Compressor string `json:"compressor"`
}

func (Zarr) Write(a *dataset.Array, path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("zarr create store %s: %w", path, err)
	}

	n := a.Len()
	chunks := (n + zarrChunkElems - 1) / zarrChunkElems

	meta := zarrMeta{
		DType:      string(a.DType),
		Shape:      a.Shape(),
		ChunkElems: zarrChunkElems,
		Chunks:     chunks,
		Compressor: "zstd",
	}

	metaBytes, err := gojson.Marshal(meta)
	if err != nil {
		return fmt.Errorf("zarr encode metadata: %w", err)
	}

	metaPath := filepath.Join(path, "meta.json")
	if err := os.WriteFile(metaPath, metaBytes, 0o644); err != nil {
		return fmt.Errorf("zarr write metadata %s: %w", metaPath, err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("zarr compressor: %w", err)
	}
	defer enc.Close()

	for c := 0; c < chunks; c++ {
		lo := c * zarrChunkElems
		hi := min(lo+zarrChunkElems, n)

		var raw []byte

		switch a.DType {
		case dataset.Float64:
			raw = float64Bytes(a.Float64s[lo:hi])
		case dataset.Int64:
			raw = int64Bytes(a.Int64s[lo:hi])
		}

		chunkPath := filepath.Join(path, strconv.Itoa(c))
		if err := os.WriteFile(chunkPath, enc.EncodeAll(raw, nil), 0o644); err != nil {
			return fmt.Errorf("zarr write chunk %s: %w", chunkPath, err)
		}
	}

	return nil
}

func (Zarr) Read(path string) (*dataset.Array, error) {
	metaPath := filepath.Join(path, "meta.json")

	metaBytes, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, fmt.Errorf("zarr read metadata %s: %w", metaPath, err)
	}

	var meta zarrMeta
	if err := gojson.Unmarshal(metaBytes, &meta); err != nil {
		return nil, fmt.Errorf("zarr decode metadata %s: %w", metaPath, err)
	}

	if len(meta.Shape) != 2 {
		return nil, fmt.Errorf("zarr %s: unsupported rank %d", path, len(meta.Shape))
	}

	if meta.Compressor != "zstd" {
		return nil, fmt.Errorf("zarr %s: unsupported compressor %q", path, meta.Compressor)
	}

	a := &dataset.Array{
		DType: dataset.DType(meta.DType),
		Rows:  meta.Shape[0],
		Cols:  meta.Shape[1],
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zarr decompressor: %w", err)
	}
	defer dec.Close()

	for c := 0; c < meta.Chunks; c++ {
		chunkPath := filepath.Join(path, strconv.Itoa(c))

		compressed, err := os.ReadFile(chunkPath)
		if err != nil {
			return nil, fmt.Errorf("zarr read chunk %s: %w", chunkPath, err)
		}

		raw, err := dec.DecodeAll(compressed, nil)
		if err != nil {
			return nil, fmt.Errorf("zarr decompress chunk %s: %w", chunkPath, err)
		}

		switch a.DType {
		case dataset.Float64:
			elems, err := bytesFloat64(raw)
			if err != nil {
				return nil, fmt.Errorf("zarr chunk %s: %w", chunkPath, err)
			}

			a.Float64s = append(a.Float64s, elems...)
		case dataset.Int64:
			elems, err := bytesInt64(raw)
			if err != nil {
				return nil, fmt.Errorf("zarr chunk %s: %w", chunkPath, err)
			}

			a.Int64s = append(a.Int64s, elems...)
		default:
			return nil, fmt.Errorf("zarr %s: unsupported dtype %q", path, meta.DType)
		}
	}

	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("zarr %s: %w", path, err)
	}

	return a, nil
}
