package harness

import (
	"fmt"
	"os"
	"path/filepath"
)

// SizeOf returns the on-disk footprint of path: the byte length of a
// single file, or the sum of byte lengths of all files transitively
// contained in a directory. Chunked stores emit directory trees, so
// both must be measured the same way for a fair comparison.
// A missing path returns an error wrapping fs.ErrNotExist.
func SizeOf(path string) (uint64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("probe %s: %w", path, err)
	}

	if !info.IsDir() {
		return uint64(info.Size()), nil
	}

	var size uint64

	err = filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += uint64(info.Size())
		}

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("probe %s: %w", path, err)
	}

	return size, nil
}
