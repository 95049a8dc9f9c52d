package pipeline

import (
	"fmt"
	"image"
	"image/color"
	"math/rand"

	"github.com/MeKo-Tech/terrainmap/internal/border"
	"github.com/MeKo-Tech/terrainmap/internal/classify"
	"github.com/MeKo-Tech/terrainmap/internal/config"
	"github.com/MeKo-Tech/terrainmap/internal/grid"
	"github.com/MeKo-Tech/terrainmap/internal/noise"
	"github.com/MeKo-Tech/terrainmap/internal/palette"
)

// BorderColor paints cells on a region boundary.
var BorderColor = color.RGBA{A: 255}

// MapBuffer is the per-pixel output of the map variant. Regions and Border
// are row-major and aligned with Pixels.
type MapBuffer struct {
	Width   int         `json:"width"`
	Height  int         `json:"height"`
	Regions []int       `json:"regions"`
	Border  []bool      `json:"border,omitempty"`
	Palette []string    `json:"palette"`
	Pixels  *image.RGBA `json:"-"`
}

// RegionCounts returns the number of pixels assigned to each region.
func (m *MapBuffer) RegionCounts() []int {
	counts := make([]int, len(m.Palette))
	for _, r := range m.Regions {
		counts[r]++
	}
	return counts
}

func buildMap(cfg config.Config) (*MapBuffer, error) {
	g, err := grid.NewRaster(cfg.Width, cfg.Height, cfg.OriginX, cfg.OriginY, cfg.Step)
	if err != nil {
		return nil, fmt.Errorf("failed to lay out map grid: %w", err)
	}
	field, err := noise.New(cfg.Backend, cfg.Seed, cfg.Octaves)
	if err != nil {
		return nil, fmt.Errorf("failed to create region field: %w", err)
	}

	buckets := classify.NewBuckets(cfg.Regions)
	regions := make([]int, g.Len())
	for s := range g.Samples(field, nil, cfg.Scale) {
		regions[s.Index] = buckets.Classify(s.Value)
	}

	var edges []bool
	if cfg.Borders {
		edges, err = border.Detect(regions, cfg.Width, cfg.Height)
		if err != nil {
			return nil, fmt.Errorf("failed to detect borders: %w", err)
		}
	}

	pal, err := palette.New(cfg.Palette.Space, buckets.Count())
	if err != nil {
		return nil, fmt.Errorf("failed to build palette: %w", err)
	}
	if cfg.Palette.Shuffle {
		pal.Shuffle(rand.New(rand.NewSource(cfg.Palette.ShuffleSeed)))
	}

	img := image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height))
	for i, r := range regions {
		c := pal.At(r)
		if edges != nil && edges[i] {
			c = BorderColor
		}
		o := 4 * i
		img.Pix[o] = c.R
		img.Pix[o+1] = c.G
		img.Pix[o+2] = c.B
		img.Pix[o+3] = c.A
	}

	return &MapBuffer{
		Width:   cfg.Width,
		Height:  cfg.Height,
		Regions: regions,
		Border:  edges,
		Palette: pal.Hex(),
		Pixels:  img,
	}, nil
}
