package pipeline

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/MeKo-Tech/terrainmap/internal/classify"
	"github.com/MeKo-Tech/terrainmap/internal/config"
	"github.com/MeKo-Tech/terrainmap/internal/grid"
	"github.com/MeKo-Tech/terrainmap/internal/noise"
)

// TerrainBuffer is the per-vertex output of the terrain variant, laid out
// for direct upload as vertex attributes. Vertex k occupies
// Positions[3k:3k+3], Colors[3k:3k+3] (linear 0..1) and Normals[3k:3k+3].
type TerrainBuffer struct {
	Columns   int              `json:"columns"`
	Rows      int              `json:"rows"`
	Positions []float32        `json:"positions"`
	Colors    []float32        `json:"colors"`
	Normals   []float32        `json:"normals"`
	Indices   []uint32         `json:"indices"`
	Bands     []int            `json:"bands"`
	River     []bool           `json:"river"`
	BandNames []string         `json:"band_names"`
	Labels    []classify.Label `json:"labels"`
}

// VertexCount returns the number of vertices.
func (b *TerrainBuffer) VertexCount() int { return b.Columns * b.Rows }

// Height returns the elevation of vertex k.
func (b *TerrainBuffer) Height(k int) float32 { return b.Positions[3*k+1] }

func buildTerrain(cfg config.Config) (*TerrainBuffer, error) {
	g, err := grid.NewPlane(float64(cfg.Width), float64(cfg.Height), cfg.Resolution)
	if err != nil {
		return nil, fmt.Errorf("failed to lay out terrain grid: %w", err)
	}

	elevation, err := noise.New(cfg.Backend, cfg.Seed, cfg.Octaves)
	if err != nil {
		return nil, fmt.Errorf("failed to create elevation field: %w", err)
	}
	var mask noise.Field
	if cfg.River.Enabled {
		mask, err = noise.New(cfg.Backend, cfg.River.Seed, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to create river field: %w", err)
		}
	}

	bands := classify.DefaultBands
	river := classify.DefaultRiver
	river.Depth = cfg.River.Depth

	n := g.Len()
	buf := &TerrainBuffer{
		Columns:   g.Columns(),
		Rows:      g.Rows(),
		Positions: make([]float32, 3*n),
		Colors:    make([]float32, 3*n),
		Bands:     make([]int, n),
		River:     make([]bool, n),
		BandNames: make([]string, len(bands)),
		Labels:    classify.TerrainLabels(cfg.Amplitude),
	}
	for i, b := range bands {
		buf.BandNames[i] = b.Name
	}

	for s := range g.Samples(elevation, mask, cfg.Scale) {
		y := s.Value * cfg.Amplitude
		inRiver := s.HasMask && river.Applies(s.Mask)
		if inRiver {
			y -= river.Depth
		}

		band := bands.Classify(y, cfg.Amplitude)
		c := bands[band].Color
		if inRiver {
			c = river.Color
		}

		k := 3 * s.Index
		buf.Positions[k] = float32(s.X)
		buf.Positions[k+1] = float32(y)
		buf.Positions[k+2] = float32(s.Z)
		buf.Colors[k] = float32(c.R) / 255
		buf.Colors[k+1] = float32(c.G) / 255
		buf.Colors[k+2] = float32(c.B) / 255
		buf.Bands[s.Index] = band
		buf.River[s.Index] = inRiver
	}

	buf.Indices = planeIndices(cfg.Resolution)
	buf.Normals = vertexNormals(buf.Positions, buf.Indices)
	return buf, nil
}

// planeIndices triangulates a segments x segments plane, two triangles per
// quad, wound so that a flat plane faces +y.
func planeIndices(segments int) []uint32 {
	cols := uint32(segments + 1)
	out := make([]uint32, 0, segments*segments*6)
	for iy := uint32(0); iy < uint32(segments); iy++ {
		for ix := uint32(0); ix < uint32(segments); ix++ {
			a := ix + cols*iy
			b := ix + cols*(iy+1)
			c := ix + 1 + cols*(iy+1)
			d := ix + 1 + cols*iy
			out = append(out, a, b, d, b, c, d)
		}
	}
	return out
}

// vertexNormals accumulates face normals onto each vertex and normalizes.
func vertexNormals(pos []float32, indices []uint32) []float32 {
	normals := make([]float32, len(pos))
	for t := 0; t+2 < len(indices); t += 3 {
		ia, ib, ic := 3*indices[t], 3*indices[t+1], 3*indices[t+2]

		cbx, cby, cbz := pos[ic]-pos[ib], pos[ic+1]-pos[ib+1], pos[ic+2]-pos[ib+2]
		abx, aby, abz := pos[ia]-pos[ib], pos[ia+1]-pos[ib+1], pos[ia+2]-pos[ib+2]

		nx := cby*abz - cbz*aby
		ny := cbz*abx - cbx*abz
		nz := cbx*aby - cby*abx

		for _, v := range [3]uint32{ia, ib, ic} {
			normals[v] += nx
			normals[v+1] += ny
			normals[v+2] += nz
		}
	}

	for k := 0; k+2 < len(normals); k += 3 {
		x, y, z := normals[k], normals[k+1], normals[k+2]
		l := math32.Sqrt(x*x + y*y + z*z)
		if l == 0 {
			normals[k+1] = 1
			continue
		}
		normals[k] = x / l
		normals[k+1] = y / l
		normals[k+2] = z / l
	}
	return normals
}
