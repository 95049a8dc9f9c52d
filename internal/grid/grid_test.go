package grid

import (
	"testing"

	"github.com/MeKo-Tech/terrainmap/internal/noise"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type constField float64

func (c constField) Eval(x, y float64) float64 { return float64(c) }

type xField struct{}

func (xField) Eval(x, y float64) float64 { return x }

func TestPlaneLayout(t *testing.T) {
	g, err := NewPlane(200, 100, 4)
	require.NoError(t, err)
	assert.Equal(t, 5, g.Columns())
	assert.Equal(t, 5, g.Rows())
	assert.Equal(t, 25, g.Len())

	x, z := g.Position(0, 0)
	assert.Equal(t, -100.0, x)
	assert.Equal(t, -50.0, z)

	x, z = g.Position(4, 4)
	assert.InDelta(t, 100.0, x, 1e-9)
	assert.InDelta(t, 50.0, z, 1e-9)
}

func TestRasterLayout(t *testing.T) {
	g, err := NewRaster(3, 2, 10, 20, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 6, g.Len())

	x, z := g.Position(2, 1)
	assert.Equal(t, 11.0, x)
	assert.Equal(t, 20.5, z)
}

func TestInvalidGrids(t *testing.T) {
	_, err := NewPlane(100, 100, 0)
	assert.Error(t, err)
	_, err = NewPlane(0, 100, 10)
	assert.Error(t, err)
	_, err = NewRaster(0, 10, 0, 0, 1)
	assert.Error(t, err)
	_, err = NewRaster(10, 10, 0, 0, 0)
	assert.Error(t, err)
}

func TestSamplesRowMajorAndRestartable(t *testing.T) {
	g, err := NewRaster(4, 3, 0, 0, 1)
	require.NoError(t, err)

	collect := func() []Sample {
		var out []Sample
		for s := range g.Samples(constField(0.25), nil, 1) {
			out = append(out, s)
		}
		return out
	}

	first := collect()
	second := collect()
	require.Len(t, first, 12)
	assert.Equal(t, first, second)

	for idx, s := range first {
		assert.Equal(t, idx, s.Index)
		assert.Equal(t, idx%4, s.I)
		assert.Equal(t, idx/4, s.J)
		assert.Equal(t, 0.25, s.Value)
		assert.False(t, s.HasMask)
	}
}

func TestSamplesScaleAndMask(t *testing.T) {
	g, err := NewRaster(2, 1, 10, 0, 1)
	require.NoError(t, err)

	var got []Sample
	for s := range g.Samples(xField{}, constField(0.75), 10) {
		got = append(got, s)
	}
	require.Len(t, got, 2)
	assert.InDelta(t, 1.0, got[0].Value, 1e-12)
	assert.InDelta(t, 1.1, got[1].Value, 1e-12)
	assert.True(t, got[0].HasMask)
	assert.Equal(t, 0.75, got[1].Mask)
}

func TestSamplesEarlyStop(t *testing.T) {
	g, err := NewPlane(10, 10, 9)
	require.NoError(t, err)

	n := 0
	for range g.Samples(noise.NewSimplex(noise.SeedFromInt(1)), nil, 5) {
		n++
		if n == 7 {
			break
		}
	}
	assert.Equal(t, 7, n)
}
