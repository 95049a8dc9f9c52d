// Package classify maps noise samples to discrete categories: elevation bands
// for terrain meshes and region ids for flat maps.
package classify

import (
	"fmt"
	"image/color"
	"math"
)

// Band is one elevation band. Limit is a fraction of the amplitude; the band
// matches elevations strictly below Limit*amplitude. The last band of a table
// ignores Limit and catches everything above.
type Band struct {
	Name  string     `json:"name"`
	Limit float64    `json:"limit"`
	Color color.RGBA `json:"-"`
}

// Bands is an ordered threshold table, evaluated lowest first.
type Bands []Band

// DefaultBands is the terrain palette: forest, soil, sand, desert, rock, snow.
var DefaultBands = Bands{
	{Name: "forest", Limit: 0.2, Color: hex(0x228b22)},
	{Name: "soil", Limit: 0.4, Color: hex(0x8b4513)},
	{Name: "sand", Limit: 0.5, Color: hex(0xd2b48c)},
	{Name: "desert", Limit: 0.7, Color: hex(0xdeb887)},
	{Name: "rock", Limit: 0.9, Color: hex(0x808080)},
	{Name: "snow", Color: hex(0xffffff)},
}

// Validate checks that the table is non-empty and that limits increase.
func (b Bands) Validate() error {
	if len(b) == 0 {
		return fmt.Errorf("band table is empty")
	}
	for i := 1; i < len(b)-1; i++ {
		if b[i].Limit <= b[i-1].Limit {
			return fmt.Errorf("band %q limit %g must exceed %q limit %g", b[i].Name, b[i].Limit, b[i-1].Name, b[i-1].Limit)
		}
	}
	return nil
}

// Classify returns the index of the first band whose limit exceeds y. It
// always returns a valid index for a non-empty table.
func (b Bands) Classify(y, amplitude float64) int {
	last := len(b) - 1
	for i := 0; i < last; i++ {
		if y < amplitude*b[i].Limit {
			return i
		}
	}
	return last
}

// River forces a categorical override where the mask field is strong enough.
type River struct {
	Threshold float64
	Depth     float64
	Color     color.RGBA
}

// DefaultRiver lowers masked vertices by 10 units and paints them blue.
var DefaultRiver = River{Threshold: 0.5, Depth: 10, Color: hex(0x0000ff)}

// Applies reports whether the mask strength triggers the override. There is
// no blending: a vertex is either river or not.
func (r River) Applies(strength float64) bool {
	return strength > r.Threshold
}

// Buckets splits [-1, 1] into n equal region ids.
type Buckets struct {
	n int
}

// NewBuckets returns a bucket classifier. Counts below 1 are clamped to 1.
func NewBuckets(n int) Buckets {
	if n < 1 {
		n = 1
	}
	return Buckets{n: n}
}

// Count returns the number of regions.
func (b Buckets) Count() int { return b.n }

// Classify maps v to floor((v+1)/2 * n), clamped into [0, n).
func (b Buckets) Classify(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	id := int(math.Floor((v + 1) / 2 * float64(b.n)))
	if id < 0 {
		return 0
	}
	if id >= b.n {
		return b.n - 1
	}
	return id
}

func hex(v uint32) color.RGBA {
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}
