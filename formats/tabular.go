package formats

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// colName returns the header name for column j. Names are zero-padded
// so columnar libraries that order fields lexicographically keep the
// original column order.
func colName(j int) string {
	return fmt.Sprintf("c%03d", j)
}

// colIndex parses a column index back out of a header name.
func colIndex(name string) (int, error) {
	trimmed := strings.TrimPrefix(name, "c")
	if trimmed == name {
		return 0, fmt.Errorf("malformed column name %q", name)
	}

	j, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("malformed column name %q: %w", name, err)
	}

	return j, nil
}

// float64Bytes encodes elements as little-endian raw bytes.
func float64Bytes(data []float64) []byte {
	out := make([]byte, 8*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint64(out[8*i:], math.Float64bits(v))
	}

	return out
}

func bytesFloat64(raw []byte) ([]float64, error) {
	if len(raw)%8 != 0 {
		return nil, fmt.Errorf("raw length %d is not a multiple of 8", len(raw))
	}

	out := make([]float64, len(raw)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[8*i:]))
	}

	return out, nil
}

// int64Bytes encodes elements as little-endian raw bytes.
func int64Bytes(data []int64) []byte {
	out := make([]byte, 8*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint64(out[8*i:], uint64(v))
	}

	return out
}

func bytesInt64(raw []byte) ([]int64, error) {
	if len(raw)%8 != 0 {
		return nil, fmt.Errorf("raw length %d is not a multiple of 8", len(raw))
	}

	out := make([]int64, len(raw)/8)
	for i := range out {
		out[i] = int64(binary.LittleEndian.Uint64(raw[8*i:]))
	}

	return out, nil
}
