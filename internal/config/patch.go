package config

import (
	"github.com/MeKo-Tech/terrainmap/internal/noise"
	"github.com/MeKo-Tech/terrainmap/internal/palette"
)

// Patch is a partial configuration update. Nil fields leave the current
// value untouched. It is the body of the regenerate endpoint and the wasm
// regenerate call.
type Patch struct {
	Variant     *Variant       `json:"variant,omitempty"`
	Width       *int           `json:"width,omitempty"`
	Height      *int           `json:"height,omitempty"`
	Resolution  *int           `json:"resolution,omitempty"`
	Scale       *float64       `json:"scale,omitempty"`
	Amplitude   *float64       `json:"amplitude,omitempty"`
	Octaves     *int           `json:"octaves,omitempty"`
	Backend     *noise.Backend `json:"backend,omitempty"`
	Seed        *noise.Seed    `json:"seed,omitempty"`
	Regions     *int           `json:"regions,omitempty"`
	Borders     *bool          `json:"borders,omitempty"`
	OriginX     *float64       `json:"origin_x,omitempty"`
	OriginY     *float64       `json:"origin_y,omitempty"`
	Step        *float64       `json:"step,omitempty"`
	River       *bool          `json:"river,omitempty"`
	RiverSeed   *noise.Seed    `json:"river_seed,omitempty"`
	RiverDepth  *float64       `json:"river_depth,omitempty"`
	Space       *palette.Space `json:"palette_space,omitempty"`
	Shuffle     *bool          `json:"shuffle,omitempty"`
	ShuffleSeed *int64         `json:"shuffle_seed,omitempty"`
}

// Apply returns cfg with the patch applied and validated. Switching variant
// starts over from that variant's defaults before the remaining fields are
// applied. On error cfg is returned unchanged.
func Apply(cfg Config, p Patch) (Config, error) {
	next := cfg
	if p.Variant != nil && *p.Variant != cfg.Variant {
		if _, err := ParseVariant(string(*p.Variant)); err != nil {
			return cfg, err
		}
		next = Default(*p.Variant)
		next.Seed = cfg.Seed
	}

	set(&next.Width, p.Width)
	set(&next.Height, p.Height)
	set(&next.Resolution, p.Resolution)
	set(&next.Scale, p.Scale)
	set(&next.Amplitude, p.Amplitude)
	set(&next.Octaves, p.Octaves)
	set(&next.Backend, p.Backend)
	set(&next.Seed, p.Seed)
	set(&next.Regions, p.Regions)
	set(&next.Borders, p.Borders)
	set(&next.OriginX, p.OriginX)
	set(&next.OriginY, p.OriginY)
	set(&next.Step, p.Step)
	set(&next.River.Enabled, p.River)
	set(&next.River.Seed, p.RiverSeed)
	set(&next.River.Depth, p.RiverDepth)
	set(&next.Palette.Space, p.Space)
	set(&next.Palette.Shuffle, p.Shuffle)
	set(&next.Palette.ShuffleSeed, p.ShuffleSeed)

	if err := next.Validate(); err != nil {
		return cfg, err
	}
	return next, nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
