package formats

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/weiihann/serbench/dataset"
)

// Gob is the language-native object serialization format. It encodes
// the array value directly with encoding/gob and makes no cross-format
// or cross-language guarantees.
type Gob struct{}

func (Gob) Name() string   { return "gob" }
func (Gob) Ext() string    { return ".gob" }
func (Gob) Dir() bool      { return false }
func (Gob) Lossless() bool { return true }

func (Gob) Write(a *dataset.Array, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("gob create %s: %w", path, err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(a); err != nil {
		return fmt.Errorf("gob encode %s: %w", path, err)
	}

	return f.Close()
}

func (Gob) Read(path string) (*dataset.Array, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gob open %s: %w", path, err)
	}
	defer f.Close()

	var a dataset.Array
	if err := gob.NewDecoder(f).Decode(&a); err != nil {
		return nil, fmt.Errorf("gob decode %s: %w", path, err)
	}

	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("gob %s: %w", path, err)
	}

	return &a, nil
}
