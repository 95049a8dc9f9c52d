package export

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

var (
	markerFill   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	markerStroke = color.RGBA{A: 255}
)

// marker is a named point in canvas pixel coordinates.
type marker struct {
	name string
	x, y float64
}

// drawMarkers draws a filled disc and a caption for every marker that falls
// on the canvas.
func drawMarkers(dst *image.RGBA, markers []marker, radius float64) {
	b := dst.Bounds()
	for _, m := range markers {
		if m.x < 0 || m.y < 0 || m.x >= float64(b.Dx()) || m.y >= float64(b.Dy()) {
			continue
		}
		fillDisc(dst, m.x, m.y, radius+1, markerStroke)
		fillDisc(dst, m.x, m.y, radius, markerFill)
		drawCaption(dst, m.name, int(m.x+radius+3), int(m.y+4))
	}
}

// fillDisc rasterizes an antialiased disc approximated by a polygon.
func fillDisc(dst *image.RGBA, cx, cy, radius float64, c color.Color) {
	b := dst.Bounds()
	ras := vector.NewRasterizer(b.Dx(), b.Dy())

	const segments = 24
	for i := 0; i <= segments; i++ {
		a := 2 * math.Pi * float64(i) / segments
		x := float32(cx + radius*math.Cos(a))
		y := float32(cy + radius*math.Sin(a))
		if i == 0 {
			ras.MoveTo(x, y)
		} else {
			ras.LineTo(x, y)
		}
	}
	ras.ClosePath()
	ras.Draw(dst, b, image.NewUniform(c), image.Point{})
}

// drawCaption writes text with a one pixel dark outline so it stays legible
// over any band color. (x, y) is the baseline origin.
func drawCaption(dst draw.Image, text string, x, y int) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(markerStroke),
		Face: basicfont.Face7x13,
	}
	for _, off := range [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		d.Dot = fixed.P(x+off[0], y+off[1])
		d.DrawString(text)
	}
	d.Src = image.NewUniform(markerFill)
	d.Dot = fixed.P(x, y)
	d.DrawString(text)
}
