package cmd

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/terrainmap/internal/config"
	"github.com/MeKo-Tech/terrainmap/internal/noise"
	"github.com/MeKo-Tech/terrainmap/internal/palette"
)

func TestParseBBox(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    orb.Bound
		wantErr bool
	}{
		{
			name:  "valid bbox",
			input: "0,0,400,300",
			want:  orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{400, 300}},
		},
		{
			name:  "valid bbox with spaces",
			input: "10.5, 20, 30, 40.25",
			want:  orb.Bound{Min: orb.Point{10.5, 20}, Max: orb.Point{30, 40.25}},
		},
		{
			name:  "negative coordinates",
			input: "-100,-50,100,50",
			want:  orb.Bound{Min: orb.Point{-100, -50}, Max: orb.Point{100, 50}},
		},
		{name: "too few values", input: "0,0,10", wantErr: true},
		{name: "too many values", input: "0,0,10,10,10", wantErr: true},
		{name: "invalid number", input: "abc,0,10,10", wantErr: true},
		{name: "minX >= maxX", input: "10,0,10,10", wantErr: true},
		{name: "minY >= maxY", input: "0,20,10,10", wantErr: true},
		{name: "empty string", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseBBox(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseBBox(%q) expected error, got nil", tt.input)
				}
				return
			}
			if err != nil {
				t.Errorf("parseBBox(%q) unexpected error: %v", tt.input, err)
				return
			}
			if got != tt.want {
				t.Errorf("parseBBox(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateZoomRange(t *testing.T) {
	assert.NoError(t, validateZoomRange(0, 0))
	assert.NoError(t, validateZoomRange(2, 5))
	assert.Error(t, validateZoomRange(-1, 3))
	assert.Error(t, validateZoomRange(4, 3))
	assert.Error(t, validateZoomRange(0, 25))
}

func TestClipBound(t *testing.T) {
	b := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{800, 600}}
	assert.Equal(t, b, clipBound(b, orb.Bound{}))

	clip := orb.Bound{Min: orb.Point{-10, 100}, Max: orb.Point{200, 900}}
	assert.Equal(t, orb.Bound{Min: orb.Point{0, 100}, Max: orb.Point{200, 600}}, clipBound(b, clip))
}

func TestPipelineConfigDefaults(t *testing.T) {
	v := viper.New()
	v.Set("seed", "42")

	cfg, err := pipelineConfigFrom(v)
	require.NoError(t, err)

	want := config.DefaultMap()
	want.Seed = noise.SeedFromInt(42)
	assert.Equal(t, want, cfg)
}

func TestPipelineConfigOverrides(t *testing.T) {
	v := viper.New()
	v.Set("variant", "terrain")
	v.Set("seed", "hills")
	v.Set("resolution", 63)
	v.Set("noise.amplitude", 40.0)
	v.Set("noise.backend", "perlin")
	v.Set("river.enabled", false)
	v.Set("river.seed", "creek")

	cfg, err := pipelineConfigFrom(v)
	require.NoError(t, err)

	assert.Equal(t, config.VariantTerrain, cfg.Variant)
	assert.Equal(t, "hills", cfg.Seed.String())
	assert.Equal(t, 63, cfg.Resolution)
	assert.Equal(t, 40.0, cfg.Amplitude)
	assert.Equal(t, noise.BackendPerlin, cfg.Backend)
	assert.False(t, cfg.River.Enabled)
	assert.Equal(t, "creek", cfg.River.Seed.String())
	// Untouched keys keep the terrain defaults.
	assert.Equal(t, config.DefaultTerrain().Scale, cfg.Scale)
}

func TestPipelineConfigMapOptions(t *testing.T) {
	v := viper.New()
	v.Set("regions", 5)
	v.Set("borders", false)
	v.Set("palette.space", "hsluv")
	v.Set("palette.shuffle", true)
	v.Set("palette.shuffle_seed", 7)

	cfg, err := pipelineConfigFrom(v)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Regions)
	assert.False(t, cfg.Borders)
	assert.Equal(t, palette.SpaceHSLuv, cfg.Palette.Space)
	assert.True(t, cfg.Palette.Shuffle)
	assert.Equal(t, int64(7), cfg.Palette.ShuffleSeed)
}

func TestPipelineConfigRandomSeedWhenUnset(t *testing.T) {
	cfg, err := pipelineConfigFrom(viper.New())
	require.NoError(t, err)
	assert.True(t, cfg.Seed.IsNumeric())
}

func TestPipelineConfigRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{name: "unknown variant", key: "variant", value: "voxel"},
		{name: "zero regions", key: "regions", value: 0},
		{name: "negative scale", key: "noise.scale", value: -2.0},
		{name: "unknown backend", key: "noise.backend", value: "worley"},
		{name: "unknown palette space", key: "palette.space", value: "cmyk"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.value)
			_, err := pipelineConfigFrom(v)
			assert.Error(t, err)
		})
	}
}

func TestTilesetExtra(t *testing.T) {
	cfg := config.DefaultMap()
	cfg.Seed = noise.ParseSeed("islands")
	extra := tilesetExtra(cfg, 256)

	assert.Equal(t, "islands", extra["seed"])
	assert.Equal(t, "8", extra["regions"])
	assert.Equal(t, "100", extra["scale"])
	assert.Equal(t, "256", extra["tile_size"])
}

func TestPipelineConfigPreset(t *testing.T) {
	v := viper.New()
	v.Set("preset", "ridges")
	v.Set("noise.octaves", 2)

	cfg, err := pipelineConfigFrom(v)
	require.NoError(t, err)
	assert.Equal(t, config.VariantTerrain, cfg.Variant)
	assert.Equal(t, noise.BackendPerlin, cfg.Backend)
	assert.False(t, cfg.River.Enabled)
	assert.Equal(t, 2, cfg.Octaves)

	v.Set("preset", "volcano")
	_, err = pipelineConfigFrom(v)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestPipelineConfigVariantOverridesPreset(t *testing.T) {
	v := viper.New()
	v.Set("preset", "terrain")
	v.Set("variant", "map")

	cfg, err := pipelineConfigFrom(v)
	require.NoError(t, err)
	assert.Equal(t, config.VariantMap, cfg.Variant)
	assert.Equal(t, config.DefaultMap().Regions, cfg.Regions)

	v = viper.New()
	v.Set("preset", "islands")
	v.Set("variant", "map")
	cfg, err = pipelineConfigFrom(v)
	require.NoError(t, err)
	// Same variant keeps the preset's fields.
	assert.Equal(t, 4, cfg.Regions)
}
