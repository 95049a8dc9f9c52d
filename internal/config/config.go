// Package config holds the pipeline configuration, its defaults, partial
// updates and validation.
package config

import (
	"errors"
	"fmt"

	"github.com/MeKo-Tech/terrainmap/internal/noise"
	"github.com/MeKo-Tech/terrainmap/internal/palette"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Variant selects the output the pipeline produces.
type Variant string

const (
	VariantTerrain Variant = "terrain"
	VariantMap     Variant = "map"
)

// ParseVariant validates a variant name.
func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case VariantTerrain, VariantMap:
		return Variant(s), nil
	default:
		return "", fmt.Errorf("%w: unknown variant %q (want terrain or map)", ErrInvalid, s)
	}
}

// River configures the secondary mask field used by the terrain variant.
type River struct {
	Enabled bool       `json:"enabled"`
	Seed    noise.Seed `json:"seed"`
	Depth   float64    `json:"depth"`
}

// Palette configures region colors for the map variant.
type Palette struct {
	Space       palette.Space `json:"space"`
	Shuffle     bool          `json:"shuffle"`
	ShuffleSeed int64         `json:"shuffle_seed"`
}

// Config is the full set of pipeline parameters. Width and Height are world
// units for terrain and pixels for maps.
type Config struct {
	Variant    Variant       `json:"variant"`
	Width      int           `json:"width"`
	Height     int           `json:"height"`
	Resolution int           `json:"resolution"`
	Scale      float64       `json:"scale"`
	Amplitude  float64       `json:"amplitude"`
	Octaves    int           `json:"octaves"`
	Backend    noise.Backend `json:"backend"`
	Seed       noise.Seed    `json:"seed"`
	Regions    int           `json:"regions"`
	Borders    bool          `json:"borders"`
	OriginX    float64       `json:"origin_x"`
	OriginY    float64       `json:"origin_y"`
	Step       float64       `json:"step"`
	River      River         `json:"river"`
	Palette    Palette       `json:"palette"`
}

// DefaultTerrain mirrors the demo mesh: 200x200 units, 199 segments,
// noise scale 50, amplitude 25, with a river mask seeded from "river".
func DefaultTerrain() Config {
	return Config{
		Variant:    VariantTerrain,
		Width:      200,
		Height:     200,
		Resolution: 199,
		Scale:      50,
		Amplitude:  25,
		Octaves:    1,
		Backend:    noise.BackendSimplex,
		Seed:       noise.SeedFromInt(0),
		Regions:    1,
		Step:       1,
		River: River{
			Enabled: true,
			Seed:    noise.ParseSeed("river"),
			Depth:   10,
		},
		Palette: Palette{Space: palette.SpaceHSL},
	}
}

// DefaultMap is an 800x600 region map with eight regions and borders.
func DefaultMap() Config {
	return Config{
		Variant:    VariantMap,
		Width:      800,
		Height:     600,
		Resolution: 1,
		Scale:      100,
		Amplitude:  1,
		Octaves:    1,
		Backend:    noise.BackendSimplex,
		Seed:       noise.SeedFromInt(0),
		Regions:    8,
		Borders:    true,
		Step:       1,
		River:      River{Seed: noise.ParseSeed("river")},
		Palette:    Palette{Space: palette.SpaceHSL},
	}
}

// Default returns the defaults for a variant.
func Default(v Variant) Config {
	if v == VariantMap {
		return DefaultMap()
	}
	return DefaultTerrain()
}

// Upper bounds keep a single regenerate within a bounded allocation. With
// MaxResolution segments the vertex indices still fit in uint32.
const (
	MaxDimension  = 4096
	MaxResolution = 4096
	MaxRegions    = 4096
	MaxOctaves    = 16
)

// Validate rejects configurations the pipeline cannot run. All errors wrap
// ErrInvalid.
func (c Config) Validate() error {
	if _, err := ParseVariant(string(c.Variant)); err != nil {
		return err
	}
	if c.Width < 1 || c.Height < 1 {
		return invalid("width and height must be at least 1, got %dx%d", c.Width, c.Height)
	}
	if c.Width > MaxDimension || c.Height > MaxDimension {
		return invalid("width and height must be at most %d, got %dx%d", MaxDimension, c.Width, c.Height)
	}
	if c.Scale <= 0 {
		return invalid("noise scale must be positive, got %g", c.Scale)
	}
	if c.Octaves < 1 {
		return invalid("octaves must be at least 1, got %d", c.Octaves)
	}
	if c.Octaves > MaxOctaves {
		return invalid("octaves must be at most %d, got %d", MaxOctaves, c.Octaves)
	}
	if _, err := noise.ParseBackend(string(c.Backend)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	switch c.Variant {
	case VariantTerrain:
		if c.Resolution < 1 {
			return invalid("resolution must be at least 1, got %d", c.Resolution)
		}
		if c.Resolution > MaxResolution {
			return invalid("resolution must be at most %d, got %d", MaxResolution, c.Resolution)
		}
		if c.Amplitude <= 0 {
			return invalid("noise amplitude must be positive, got %g", c.Amplitude)
		}
		if c.River.Depth < 0 {
			return invalid("river depth must not be negative, got %g", c.River.Depth)
		}
	case VariantMap:
		if c.Regions < 1 {
			return invalid("region count must be at least 1, got %d", c.Regions)
		}
		if c.Regions > MaxRegions {
			return invalid("region count must be at most %d, got %d", MaxRegions, c.Regions)
		}
		if c.Step <= 0 {
			return invalid("step must be positive, got %g", c.Step)
		}
		if _, err := palette.ParseSpace(string(c.Palette.Space)); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}
	return nil
}

// SampleCount returns the number of entries the output buffer will hold.
func (c Config) SampleCount() int {
	if c.Variant == VariantTerrain {
		n := c.Resolution + 1
		return n * n
	}
	return c.Width * c.Height
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}
