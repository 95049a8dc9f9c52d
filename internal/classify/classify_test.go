package classify

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBandsClassify(t *testing.T) {
	const amp = 25.0
	tests := []struct {
		name string
		y    float64
		want string
	}{
		{name: "deep", y: -30, want: "forest"},
		{name: "just below 0.2A", y: 4.999, want: "forest"},
		{name: "at 0.2A", y: 5, want: "soil"},
		{name: "sand", y: 11, want: "sand"},
		{name: "desert", y: 15, want: "desert"},
		{name: "rock", y: 20, want: "rock"},
		{name: "at 0.9A", y: 22.5, want: "snow"},
		{name: "above amplitude", y: 100, want: "snow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DefaultBands[DefaultBands.Classify(tt.y, amp)].Name
			if got != tt.want {
				t.Errorf("Classify(%g) = %s, want %s", tt.y, got, tt.want)
			}
		})
	}
}

func TestBandsMonotonic(t *testing.T) {
	for _, amp := range []float64{5, 25, 50} {
		prev := -1
		for y := -2 * amp; y <= 2*amp; y += amp / 97 {
			band := DefaultBands.Classify(y, amp)
			assert.GreaterOrEqual(t, band, 0)
			assert.Less(t, band, len(DefaultBands))
			assert.GreaterOrEqual(t, band, prev, "band must not decrease as elevation rises (amp=%g, y=%g)", amp, y)
			prev = band
		}
	}
}

func TestBandsValidate(t *testing.T) {
	assert.NoError(t, DefaultBands.Validate())
	assert.Error(t, Bands{}.Validate())
	assert.Error(t, Bands{{Name: "a", Limit: 0.5}, {Name: "b", Limit: 0.4}, {Name: "c"}}.Validate())
	assert.NoError(t, Bands{{Name: "only"}}.Validate())
}

func TestRiverOverride(t *testing.T) {
	assert.False(t, DefaultRiver.Applies(0.5))
	assert.True(t, DefaultRiver.Applies(0.5000001))
	assert.False(t, DefaultRiver.Applies(-1))
	assert.Equal(t, color.RGBA{B: 255, A: 255}, DefaultRiver.Color)
}

func TestBucketsBoundaries(t *testing.T) {
	tests := []struct {
		n    int
		v    float64
		want int
	}{
		{n: 3, v: -1, want: 0},
		{n: 3, v: 0, want: 1},
		{n: 3, v: math.Nextafter(1, 0), want: 2},
		{n: 3, v: 1, want: 2},
		{n: 2, v: 0, want: 1},
		{n: 2, v: -0.0001, want: 0},
		{n: 1, v: 1, want: 0},
		{n: 8, v: 1.5, want: 7},
		{n: 8, v: -1.5, want: 0},
		{n: 8, v: math.NaN(), want: 0},
	}

	for _, tt := range tests {
		b := NewBuckets(tt.n)
		got := b.Classify(tt.v)
		if got != tt.want {
			t.Errorf("Buckets(%d).Classify(%v) = %d, want %d", tt.n, tt.v, got, tt.want)
		}
	}
}

func TestBucketsNeverOutOfRange(t *testing.T) {
	for n := 1; n <= 16; n++ {
		b := NewBuckets(n)
		for v := -1.0; v <= 1.0; v += 0.001 {
			id := b.Classify(v)
			if id < 0 || id >= n {
				t.Fatalf("Buckets(%d).Classify(%v) = %d out of range", n, v, id)
			}
		}
	}
}

func TestNewBucketsClamps(t *testing.T) {
	assert.Equal(t, 1, NewBuckets(0).Count())
	assert.Equal(t, 1, NewBuckets(-4).Count())
	assert.Equal(t, 0, NewBuckets(0).Classify(0.9))
}

func TestTerrainLabels(t *testing.T) {
	labels := TerrainLabels(25)
	assert.Len(t, labels, 4)
	assert.Equal(t, "River", labels[3].Name)
	assert.Equal(t, -12.5, labels[3].Y)
}
