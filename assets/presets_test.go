package assets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/terrainmap/internal/config"
)

func TestPresetsListed(t *testing.T) {
	assert.Equal(t, []string{"islands", "map", "ridges", "terrain"}, Presets())
}

func TestPresetsApplyCleanly(t *testing.T) {
	for _, name := range Presets() {
		t.Run(name, func(t *testing.T) {
			p, err := Preset(name)
			require.NoError(t, err)
			require.NotNil(t, p.Variant)

			cfg, err := config.Apply(config.DefaultMap(), p)
			require.NoError(t, err)
			assert.Equal(t, *p.Variant, cfg.Variant)
		})
	}
}

func TestPresetIslands(t *testing.T) {
	p, err := Preset("islands")
	require.NoError(t, err)
	cfg, err := config.Apply(config.DefaultTerrain(), p)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Regions)
	assert.Equal(t, 3, cfg.Octaves)
}

func TestUnknownPreset(t *testing.T) {
	_, err := Preset("volcano")
	assert.ErrorIs(t, err, config.ErrInvalid)
}
