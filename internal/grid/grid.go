// Package grid enumerates fixed-resolution sample grids over a noise field.
package grid

import (
	"fmt"
	"iter"

	"github.com/MeKo-Tech/terrainmap/internal/noise"
)

// Sample is one grid point. Index is the position in row-major order and
// matches the output buffer slot for this point.
type Sample struct {
	Index int
	I, J  int // column, row
	X, Z  float64
	// Value is the primary noise value in [-1, 1].
	Value float64
	// Mask is the secondary noise value; only meaningful when HasMask is set.
	Mask    float64
	HasMask bool
}

// Grid is an immutable description of sample positions.
type Grid struct {
	cols, rows int
	originX    float64
	originZ    float64
	stepX      float64
	stepZ      float64
}

// NewPlane lays out the vertices of a width x height plane split into
// segments x segments quads, centered on the origin. The vertex count is
// (segments+1)^2.
func NewPlane(width, height float64, segments int) (*Grid, error) {
	if segments < 1 {
		return nil, fmt.Errorf("segments must be at least 1, got %d", segments)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("plane size must be positive, got %gx%g", width, height)
	}
	return &Grid{
		cols:    segments + 1,
		rows:    segments + 1,
		originX: -width / 2,
		originZ: -height / 2,
		stepX:   width / float64(segments),
		stepZ:   height / float64(segments),
	}, nil
}

// NewRaster lays out width x height pixel centers starting at (originX,
// originY), each step world units apart.
func NewRaster(width, height int, originX, originY, step float64) (*Grid, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("raster size must be at least 1x1, got %dx%d", width, height)
	}
	if step <= 0 {
		return nil, fmt.Errorf("step must be positive, got %g", step)
	}
	return &Grid{
		cols:    width,
		rows:    height,
		originX: originX,
		originZ: originY,
		stepX:   step,
		stepZ:   step,
	}, nil
}

// Columns returns the number of samples per row.
func (g *Grid) Columns() int { return g.cols }

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Len returns the total number of samples.
func (g *Grid) Len() int { return g.cols * g.rows }

// Position returns the world position of column i, row j.
func (g *Grid) Position(i, j int) (x, z float64) {
	return g.originX + float64(i)*g.stepX, g.originZ + float64(j)*g.stepZ
}

// Samples yields every grid point once in row-major order, evaluating value
// (and mask, when non-nil) at world position / scale. The sequence is lazy
// and can be ranged over any number of times.
func (g *Grid) Samples(value, mask noise.Field, scale float64) iter.Seq[Sample] {
	return func(yield func(Sample) bool) {
		idx := 0
		for j := 0; j < g.rows; j++ {
			for i := 0; i < g.cols; i++ {
				x, z := g.Position(i, j)
				nx, nz := x/scale, z/scale

				s := Sample{Index: idx, I: i, J: j, X: x, Z: z}
				if value != nil {
					s.Value = value.Eval(nx, nz)
				}
				if mask != nil {
					s.Mask = mask.Eval(nx, nz)
					s.HasMask = true
				}
				if !yield(s) {
					return
				}
				idx++
			}
		}
	}
}
