package tile

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestCoordsString(t *testing.T) {
	tests := []struct {
		coords   Coords
		expected string
	}{
		{Coords{Z: 3, X: 5, Y: 2}, "z3_x5_y2"},
		{Coords{Z: 0, X: 0, Y: 0}, "z0_x0_y0"},
		{Coords{Z: 18, X: 12345, Y: 67890}, "z18_x12345_y67890"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			result := tt.coords.String()
			if result != tt.expected {
				t.Errorf("String() = %s, want %s", result, tt.expected)
			}
		})
	}
}

func TestCoordsPath(t *testing.T) {
	coords := Coords{Z: 3, X: 5, Y: 2}

	tests := []struct {
		ext      string
		expected string
	}{
		{"png", "z3_x5_y2.png"},
		{"json", "z3_x5_y2.json"},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			result := coords.Path(tt.ext)
			if result != tt.expected {
				t.Errorf("Path(%s) = %s, want %s", tt.ext, result, tt.expected)
			}
		})
	}
}

func TestParseCoords(t *testing.T) {
	tests := []struct {
		input    string
		expected Coords
		wantErr  bool
	}{
		{"z3_x5_y2", Coords{Z: 3, X: 5, Y: 2}, false},
		{"z0_x0_y0", Coords{Z: 0, X: 0, Y: 0}, false},
		{"z18_x262143_y262143", Coords{Z: 18, X: 262143, Y: 262143}, false},
		{"z2_x4_y0", Coords{}, true},
		{"invalid", Coords{}, true},
		{"z13_x4297", Coords{}, true},
		{"13_4297_2754", Coords{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ParseCoords(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseCoords(%s) expected error, got nil", tt.input)
				}
				return
			}
			if err != nil {
				t.Errorf("ParseCoords(%s) unexpected error: %v", tt.input, err)
				return
			}
			if result != tt.expected {
				t.Errorf("ParseCoords(%s) = %+v, want %+v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestCoordsBound(t *testing.T) {
	origin := orb.Point{-400, -300}
	span0 := 800.0

	root := NewCoords(0, 0, 0).Bound(origin, span0)
	if root.Min != origin || root.Max != (orb.Point{400, 500}) {
		t.Errorf("root bound = %v, want [%v %v]", root, origin, orb.Point{400, 500})
	}

	b := NewCoords(2, 1, 3).Bound(origin, span0)
	want := orb.Bound{Min: orb.Point{-200, 300}, Max: orb.Point{0, 500}}
	if b != want {
		t.Errorf("Bound() = %v, want %v", b, want)
	}
}

func TestAdjacentWindowsAbut(t *testing.T) {
	origin := orb.Point{0, 0}
	for z := uint32(1); z <= 4; z++ {
		n := uint32(1) << z
		for x := uint32(0); x+1 < n; x++ {
			left := NewCoords(z, x, 0).Bound(origin, 256)
			right := NewCoords(z, x+1, 0).Bound(origin, 256)
			if left.Max[0] != right.Min[0] {
				t.Errorf("z%d: tile %d ends at %g but tile %d starts at %g", z, x, left.Max[0], x+1, right.Min[0])
			}
			below := NewCoords(z, x, 1).Bound(origin, 256)
			if left.Max[1] != below.Min[1] {
				t.Errorf("z%d: row 0 ends at %g but row 1 starts at %g", z, left.Max[1], below.Min[1])
			}
		}
	}
}

func TestWindow(t *testing.T) {
	w := NewCoords(1, 1, 0).Window(orb.Point{0, 0}, 512, 256)
	if w.OriginX != 256 || w.OriginY != 0 {
		t.Errorf("origin = (%g, %g), want (256, 0)", w.OriginX, w.OriginY)
	}
	if w.Step != 1 || w.Size != 256 {
		t.Errorf("step/size = %g/%d, want 1/256", w.Step, w.Size)
	}

	// One zoom level deeper halves the step.
	deeper := NewCoords(2, 2, 0).Window(orb.Point{0, 0}, 512, 256)
	if math.Abs(deeper.Step-0.5) > 1e-12 {
		t.Errorf("z2 step = %g, want 0.5", deeper.Step)
	}
}

func TestParentChildren(t *testing.T) {
	c := NewCoords(3, 5, 2)
	for _, child := range c.Children() {
		if child.Parent() != c {
			t.Errorf("%s parent = %s, want %s", child, child.Parent(), c)
		}
	}
	root := NewCoords(0, 0, 0)
	if root.Parent() != root {
		t.Errorf("root parent = %s", root.Parent())
	}
}

func TestTileRange(t *testing.T) {
	tr := TileRange{
		MinZ: 3, MaxZ: 3,
		MinX: 4, MaxX: 5,
		MinY: 2, MaxY: 3,
	}

	// Should have 4 tiles (2x2)
	expectedCount := 4
	if tr.Count() != expectedCount {
		t.Errorf("Count() = %d, want %d", tr.Count(), expectedCount)
	}

	var visited []string
	tr.ForEach(func(c Coords) {
		visited = append(visited, c.String())
	})

	if len(visited) != expectedCount {
		t.Errorf("ForEach visited %d tiles, want %d", len(visited), expectedCount)
	}
}

func TestPyramid(t *testing.T) {
	tiles := Pyramid(0, 3)
	want := 1 + 4 + 16 + 64
	if len(tiles) != want || PyramidCount(0, 3) != want {
		t.Fatalf("Pyramid(0, 3) = %d tiles (count %d), want %d", len(tiles), PyramidCount(0, 3), want)
	}
	seen := map[Coords]bool{}
	for _, c := range tiles {
		if !c.Valid() {
			t.Errorf("invalid tile %s", c)
		}
		if seen[c] {
			t.Errorf("duplicate tile %s", c)
		}
		seen[c] = true
	}
}

func TestTilesInBound(t *testing.T) {
	origin := orb.Point{0, 0}
	// A window inside the top-left quadrant, touching the second column at z2.
	b := orb.Bound{Min: orb.Point{10, 10}, Max: orb.Point{300, 100}}

	tiles := TilesInBound(b, origin, 1024, 0, 2)
	want := []Coords{
		NewCoords(0, 0, 0),
		NewCoords(1, 0, 0),
		NewCoords(2, 0, 0),
		NewCoords(2, 1, 0),
	}
	if len(tiles) != len(want) {
		t.Fatalf("TilesInBound = %v, want %v", tiles, want)
	}
	for i := range want {
		if tiles[i] != want[i] {
			t.Errorf("tile %d = %s, want %s", i, tiles[i], want[i])
		}
	}

	outside := orb.Bound{Min: orb.Point{2000, 2000}, Max: orb.Point{3000, 3000}}
	if got := TilesInBound(outside, origin, 1024, 0, 3); len(got) != 0 {
		t.Errorf("bound outside the pyramid matched %v", got)
	}
}
