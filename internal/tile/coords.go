package tile

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// Coords represents a tile coordinate in a square quadtree laid over the
// noise plane (z/x/y). Tile 0/0/0 covers the whole base window; each zoom
// level halves the world span of a tile.
type Coords struct {
	Z uint32 // Zoom level
	X uint32 // X coordinate (column)
	Y uint32 // Y coordinate (row, growing with world y)
}

// MaxZoom bounds zoom levels so tile counts stay addressable.
const MaxZoom = 24

// String returns the tile coordinate as a string in format "z{zoom}_x{x}_y{y}"
func (c Coords) String() string {
	return fmt.Sprintf("z%d_x%d_y%d", c.Z, c.X, c.Y)
}

// Path returns the file path for this tile
func (c Coords) Path(extension string) string {
	return fmt.Sprintf("%s.%s", c.String(), extension)
}

// Valid reports whether x and y lie inside the grid of this zoom level.
func (c Coords) Valid() bool {
	if c.Z > MaxZoom {
		return false
	}
	n := uint32(1) << c.Z
	return c.X < n && c.Y < n
}

// Span returns the world size of a tile edge at this zoom, given the span of
// the zoom 0 tile.
func (c Coords) Span(span0 float64) float64 {
	return span0 / math.Exp2(float64(c.Z))
}

// Bound returns the world window covered by this tile. origin is the top-left
// world corner of tile 0/0/0.
func (c Coords) Bound(origin orb.Point, span0 float64) orb.Bound {
	s := c.Span(span0)
	minX := origin[0] + float64(c.X)*s
	minY := origin[1] + float64(c.Y)*s
	return orb.Bound{
		Min: orb.Point{minX, minY},
		Max: orb.Point{minX + s, minY + s},
	}
}

// Window describes the raster grid for one tile: top-left world position and
// world distance between neighbouring pixels.
type Window struct {
	OriginX, OriginY float64
	Step             float64
	Size             int
}

// Window returns the pixel grid that renders this tile at tileSize pixels.
func (c Coords) Window(origin orb.Point, span0 float64, tileSize int) Window {
	b := c.Bound(origin, span0)
	return Window{
		OriginX: b.Min[0],
		OriginY: b.Min[1],
		Step:    (b.Max[0] - b.Min[0]) / float64(tileSize),
		Size:    tileSize,
	}
}

// Parent returns the tile one zoom level up. The root is its own parent.
func (c Coords) Parent() Coords {
	if c.Z == 0 {
		return c
	}
	return NewCoords(c.Z-1, c.X/2, c.Y/2)
}

// Children returns the four tiles one zoom level down, row by row.
func (c Coords) Children() [4]Coords {
	z, x, y := c.Z+1, c.X*2, c.Y*2
	return [4]Coords{
		NewCoords(z, x, y), NewCoords(z, x+1, y),
		NewCoords(z, x, y+1), NewCoords(z, x+1, y+1),
	}
}

// NewCoords creates a new Coords from zoom, x, y values
func NewCoords(z, x, y uint32) Coords {
	return Coords{Z: z, X: x, Y: y}
}

// ParseCoords parses a tile string like "z3_x5_y2" into Coords
func ParseCoords(s string) (Coords, error) {
	var c Coords
	_, err := fmt.Sscanf(s, "z%d_x%d_y%d", &c.Z, &c.X, &c.Y)
	if err != nil {
		return c, fmt.Errorf("invalid tile coordinate format: %s", s)
	}
	if !c.Valid() {
		return c, fmt.Errorf("tile %s is outside its zoom level", s)
	}
	return c, nil
}

// TileRange represents a range of tiles to render
type TileRange struct {
	MinZ, MaxZ uint32 // Zoom range
	MinX, MaxX uint32 // X range
	MinY, MaxY uint32 // Y range
}

// ForEach calls the given function for each tile in the range
func (r TileRange) ForEach(fn func(Coords)) {
	for z := r.MinZ; z <= r.MaxZ; z++ {
		for x := r.MinX; x <= r.MaxX; x++ {
			for y := r.MinY; y <= r.MaxY; y++ {
				fn(NewCoords(z, x, y))
			}
		}
	}
}

// Count returns the total number of tiles in this range
func (r TileRange) Count() int {
	count := 0
	for z := r.MinZ; z <= r.MaxZ; z++ {
		xCount := r.MaxX - r.MinX + 1
		yCount := r.MaxY - r.MinY + 1
		count += int(xCount * yCount)
	}
	return count
}

// Pyramid returns every tile of zoom levels zoomMin..zoomMax, zoom by zoom.
func Pyramid(zoomMin, zoomMax int) []Coords {
	tiles := make([]Coords, 0, PyramidCount(zoomMin, zoomMax))
	for z := zoomMin; z <= zoomMax; z++ {
		n := uint32(1) << uint(z)
		for x := uint32(0); x < n; x++ {
			for y := uint32(0); y < n; y++ {
				tiles = append(tiles, NewCoords(uint32(z), x, y))
			}
		}
	}
	return tiles
}

// PyramidCount returns the number of tiles Pyramid would produce.
func PyramidCount(zoomMin, zoomMax int) int {
	count := 0
	for z := zoomMin; z <= zoomMax; z++ {
		count += 1 << (2 * uint(z))
	}
	return count
}

// TilesInBound returns all tiles across a zoom range whose windows intersect
// the world bound b.
func TilesInBound(b orb.Bound, origin orb.Point, span0 float64, zoomMin, zoomMax int) []Coords {
	var tiles []Coords
	for z := zoomMin; z <= zoomMax; z++ {
		r := rangeAt(b, origin, span0, uint32(z))
		if r.MinX > r.MaxX || r.MinY > r.MaxY {
			continue
		}
		r.ForEach(func(c Coords) { tiles = append(tiles, c) })
	}
	return tiles
}

// rangeAt clips b to the tile grid at zoom z. An empty intersection yields a
// range with Min > Max.
func rangeAt(b orb.Bound, origin orb.Point, span0 float64, z uint32) TileRange {
	n := float64(uint32(1) << z)
	s := span0 / n

	clamp := func(v float64) uint32 {
		return uint32(math.Max(0, math.Min(n-1, v)))
	}
	minX := math.Floor((b.Min[0] - origin[0]) / s)
	maxX := math.Ceil((b.Max[0]-origin[0])/s) - 1
	minY := math.Floor((b.Min[1] - origin[1]) / s)
	maxY := math.Ceil((b.Max[1]-origin[1])/s) - 1

	if maxX < 0 || maxY < 0 || minX >= n || minY >= n || maxX < minX || maxY < minY {
		return TileRange{MinZ: z, MaxZ: z, MinX: 1, MaxX: 0, MinY: 1, MaxY: 0}
	}
	return TileRange{
		MinZ: z, MaxZ: z,
		MinX: clamp(minX), MaxX: clamp(maxX),
		MinY: clamp(minY), MaxY: clamp(maxY),
	}
}
