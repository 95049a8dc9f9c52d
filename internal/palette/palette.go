// Package palette builds evenly spaced hue palettes for region maps.
package palette

import (
	"fmt"
	"image/color"
	"math/rand"

	"github.com/hsluv/hsluv-go"
	"github.com/lucasb-eyer/go-colorful"
)

// Space selects the color model used to turn a hue into RGB.
type Space string

const (
	SpaceHSL   Space = "hsl"
	SpaceHSLuv Space = "hsluv"
)

// Fixed saturation and lightness for every palette entry.
const (
	Saturation = 0.7
	Lightness  = 0.5
)

// ParseSpace validates a color space name. The empty name selects HSL.
func ParseSpace(s string) (Space, error) {
	switch Space(s) {
	case "", SpaceHSL:
		return SpaceHSL, nil
	case SpaceHSLuv:
		return SpaceHSLuv, nil
	default:
		return "", fmt.Errorf("unknown palette space %q (want hsl or hsluv)", s)
	}
}

// Palette is an ordered list of region colors. Entry i starts with hue
// i*360/count; Shuffle permutes entries in place.
type Palette struct {
	space  Space
	hues   []float64
	colors []color.RGBA
}

// Generate returns an HSL palette of count colors. Counts below 1 are
// clamped to 1.
func Generate(count int) *Palette {
	p, _ := New(SpaceHSL, count)
	return p
}

// New returns a palette of count colors in the given space.
func New(space Space, count int) (*Palette, error) {
	if count < 1 {
		count = 1
	}
	toRGB, err := converter(space)
	if err != nil {
		return nil, err
	}

	p := &Palette{
		space:  space,
		hues:   make([]float64, count),
		colors: make([]color.RGBA, count),
	}
	for i := 0; i < count; i++ {
		h := float64(i) * 360 / float64(count)
		p.hues[i] = h
		p.colors[i] = toRGB(h)
	}
	return p, nil
}

func converter(space Space) (func(h float64) color.RGBA, error) {
	switch space {
	case "", SpaceHSL:
		return func(h float64) color.RGBA {
			r, g, b := colorful.Hsl(h, Saturation, Lightness).Clamped().RGB255()
			return color.RGBA{R: r, G: g, B: b, A: 255}
		}, nil
	case SpaceHSLuv:
		return func(h float64) color.RGBA {
			r, g, b := hsluv.HsluvToRGB(h, Saturation*100, Lightness*100)
			return color.RGBA{R: to255(r), G: to255(g), B: to255(b), A: 255}
		}, nil
	default:
		return nil, fmt.Errorf("unknown palette space %q", space)
	}
}

func to255(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// Len returns the number of entries.
func (p *Palette) Len() int { return len(p.colors) }

// Space returns the color model the palette was built in.
func (p *Palette) Space() Space { return p.space }

// At returns entry i. Callers guarantee 0 <= i < Len.
func (p *Palette) At(i int) color.RGBA { return p.colors[i] }

// Hue returns the hue in degrees of entry i.
func (p *Palette) Hue(i int) float64 { return p.hues[i] }

// Colors returns a copy of the entries.
func (p *Palette) Colors() []color.RGBA {
	out := make([]color.RGBA, len(p.colors))
	copy(out, p.colors)
	return out
}

// Hex returns the entries as #rrggbb strings.
func (p *Palette) Hex() []string {
	out := make([]string, len(p.colors))
	for i, c := range p.colors {
		out[i] = fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return out
}

// Shuffle permutes the palette in place with a Fisher-Yates shuffle driven
// by rng.
func (p *Palette) Shuffle(rng *rand.Rand) {
	for i := len(p.colors) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		p.colors[i], p.colors[j] = p.colors[j], p.colors[i]
		p.hues[i], p.hues[j] = p.hues[j], p.hues[i]
	}
}
