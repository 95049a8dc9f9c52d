// Package noise provides seeded, deterministic 2D gradient noise fields.
package noise

import (
	"fmt"

	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
)

// Field is a deterministic 2D scalar noise function with values in [-1, 1].
// Implementations are immutable once constructed.
type Field interface {
	Eval(x, y float64) float64
}

// Backend selects the gradient noise algorithm.
type Backend string

const (
	BackendSimplex Backend = "simplex"
	BackendPerlin  Backend = "perlin"
)

// Backends lists the supported backends in display order.
var Backends = []Backend{BackendSimplex, BackendPerlin}

// ParseBackend validates a backend name. The empty name selects simplex.
func ParseBackend(s string) (Backend, error) {
	switch Backend(s) {
	case "", BackendSimplex:
		return BackendSimplex, nil
	case BackendPerlin:
		return BackendPerlin, nil
	default:
		return "", fmt.Errorf("unknown noise backend %q (want simplex or perlin)", s)
	}
}

// New builds a field for the given backend and seed. octaves > 1 wraps the
// field in a normalized fractal sum.
func New(backend Backend, seed Seed, octaves int) (Field, error) {
	var base Field
	switch backend {
	case "", BackendSimplex:
		base = NewSimplex(seed)
	case BackendPerlin:
		base = NewPerlin(seed)
	default:
		return nil, fmt.Errorf("unknown noise backend %q", backend)
	}
	if octaves > 1 {
		return NewFractal(base, octaves, 2.0, 0.5), nil
	}
	return base, nil
}

type simplexField struct {
	n opensimplex.Noise
}

// NewSimplex returns an OpenSimplex field.
func NewSimplex(seed Seed) Field {
	return simplexField{n: opensimplex.New(seed.Int64())}
}

func (f simplexField) Eval(x, y float64) float64 {
	return clampUnit(f.n.Eval2(x, y))
}

type perlinField struct {
	p *perlin.Perlin
}

// NewPerlin returns a Perlin field with alpha 2, beta 2 and three octaves.
func NewPerlin(seed Seed) Field {
	return perlinField{p: perlin.NewPerlin(2.0, 2.0, 3, seed.Int64())}
}

func (f perlinField) Eval(x, y float64) float64 {
	return clampUnit(f.p.Noise2D(x, y))
}

func clampUnit(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
