// Package formats provides the on-disk serialization adapters under
// benchmark. Each format is a stateless {write, read} pair registered
// by name; the harness treats all formats uniformly, so adding a
// format means adding it to the registry, not touching the harness.
package formats

import (
	"slices"

	"github.com/weiihann/serbench/dataset"
)

// Format is one serialization format under benchmark.
// Implementations are stateless and must not retain references to
// arrays across invocations.
type Format interface {
	// Name returns the stable registry name, e.g. "parquet".
	Name() string

	// Ext is the artifact suffix, e.g. ".parquet". Suffixes are
	// unique across formats so artifacts from different formats
	// cannot collide inside one scratch directory.
	Ext() string

	// Dir reports whether the artifact is a directory tree rather
	// than a single file.
	Dir() bool

	// Lossless reports whether dtype, shape, and elements round-trip
	// exactly. Text formats decode everything as float64 and are not
	// lossless.
	Lossless() bool

	// Write serializes the array to path. The caller guarantees path
	// does not exist; overwriting behavior is library-defined.
	Write(a *dataset.Array, path string) error

	// Read deserializes the artifact at path back into an Array.
	Read(path string) (*dataset.Array, error)
}

var registry = []Format{
	Text{},
	CSV{},
	Parquet{},
	Arrow{},
	Zarr{},
	CBOR{},
	NPZ{},
	Gob{},
	JSON{},
	Msgpack{},
}

// All returns the registered formats in benchmark order.
func All() []Format {
	return slices.Clone(registry)
}

// ByName returns a registered format by its stable name.
func ByName(name string) (Format, bool) {
	for _, f := range registry {
		if f.Name() == name {
			return f, true
		}
	}

	return nil, false
}

// Names returns the registered format names in benchmark order.
func Names() []string {
	names := make([]string, len(registry))
	for i, f := range registry {
		names[i] = f.Name()
	}

	return names
}
