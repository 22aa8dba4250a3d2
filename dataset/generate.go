package dataset

import (
	"fmt"
	mrand "math/rand"
)

// Config controls synthetic input generation parameters.
type Config struct {
	Rows         int
	Cols         int
	DType        DType
	Distribution string
	Seed         int64
}

// Generator produces deterministic synthetic arrays from a Config.
type Generator struct {
	cfg Config
	rng *mrand.Rand
}

// NewGenerator creates a Generator from the given Config.
func NewGenerator(cfg Config) *Generator {
	return &Generator{
		cfg: cfg,
		rng: mrand.New(mrand.NewSource(cfg.Seed)),
	}
}

// Generate produces one named array. The same Config always yields
// the same elements.
func (g *Generator) Generate(name string) (*Array, error) {
	if g.cfg.Rows <= 0 || g.cfg.Cols <= 0 {
		return nil, fmt.Errorf(
			"invalid shape %dx%d", g.cfg.Rows, g.cfg.Cols,
		)
	}

	a := &Array{
		Name:  name,
		DType: g.cfg.DType,
		Rows:  g.cfg.Rows,
		Cols:  g.cfg.Cols,
	}

	n := a.Len()

	switch g.cfg.DType {
	case Float64:
		a.Float64s = g.floatElements(n)
	case Int64:
		a.Int64s = g.intElements(n)
	default:
		return nil, fmt.Errorf("unsupported dtype %q", g.cfg.DType)
	}

	return a, nil
}

func (g *Generator) floatElements(n int) []float64 {
	out := make([]float64, n)

	switch g.cfg.Distribution {
	case "normal":
		for i := range out {
			out[i] = g.rng.NormFloat64()
		}

	case "ramp":
		for i := range out {
			out[i] = float64(i) / float64(n)
		}

	case "uniform":
		for i := range out {
			out[i] = g.rng.Float64()
		}

	default:
		// Fall back to uniform if unknown distribution.
		for i := range out {
			out[i] = g.rng.Float64()
		}
	}

	return out
}

func (g *Generator) intElements(n int) []int64 {
	out := make([]int64, n)

	switch g.cfg.Distribution {
	case "normal":
		for i := range out {
			out[i] = int64(g.rng.NormFloat64() * 1000)
		}

	case "ramp":
		for i := range out {
			out[i] = int64(i)
		}

	case "uniform":
		for i := range out {
			out[i] = g.rng.Int63n(1_000_000)
		}

	default:
		for i := range out {
			out[i] = g.rng.Int63n(1_000_000)
		}
	}

	return out
}
