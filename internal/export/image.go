package export

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/gift"

	"github.com/MeKo-Tech/terrainmap/internal/pipeline"
)

// Options controls how an output buffer becomes an image.
type Options struct {
	// Upscale multiplies both dimensions with nearest neighbour sampling.
	// Values below 2 leave the image as is.
	Upscale int
	// Labels draws the biome markers on terrain images.
	Labels bool
	// Shade darkens terrain colors by a lambert term from the vertex normals.
	Shade bool
}

// DefaultOptions renders terrain with labels and shading at 1:1.
func DefaultOptions() Options {
	return Options{Upscale: 1, Labels: true, Shade: true}
}

// light direction for shading, normalized at init.
var light = normalize([3]float64{-1, 2, -1})

// Render converts a pipeline output to an image. Map outputs return their
// pixel buffer; terrain outputs return a top-down color image with one
// pixel per vertex.
func Render(out *pipeline.Output, opts Options) (*image.RGBA, error) {
	if out == nil {
		return nil, errors.New("no output to render")
	}

	var img *image.RGBA
	switch {
	case out.Map != nil:
		img = out.Map.Pixels
	case out.Terrain != nil:
		img = TerrainImage(out.Terrain, opts.Shade)
	default:
		return nil, fmt.Errorf("output for variant %q has no buffer", out.Config.Variant)
	}

	scale := max(opts.Upscale, 1)
	img = Upscale(img, scale)

	if opts.Labels && out.Terrain != nil {
		drawMarkers(img, terrainMarkers(out.Terrain, scale), float64(2+scale))
	}
	return img, nil
}

// TerrainImage paints each vertex color into a columns x rows image. Row j
// of the image is mesh row j, so +z points down.
func TerrainImage(buf *pipeline.TerrainBuffer, shade bool) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, buf.Columns, buf.Rows))
	for k := 0; k < buf.VertexCount(); k++ {
		f := 1.0
		if shade && len(buf.Normals) == len(buf.Colors) {
			n := buf.Normals[3*k : 3*k+3]
			dot := float64(n[0])*light[0] + float64(n[1])*light[1] + float64(n[2])*light[2]
			f = 0.55 + 0.45*math.Max(dot, 0)
		}
		o := 4 * k
		img.Pix[o] = channel(buf.Colors[3*k], f)
		img.Pix[o+1] = channel(buf.Colors[3*k+1], f)
		img.Pix[o+2] = channel(buf.Colors[3*k+2], f)
		img.Pix[o+3] = 255
	}
	return img
}

// Upscale enlarges img by an integer factor without smoothing so region
// edges stay crisp.
func Upscale(img *image.RGBA, factor int) *image.RGBA {
	if factor < 2 {
		return img
	}
	b := img.Bounds()
	g := gift.New(gift.Resize(b.Dx()*factor, b.Dy()*factor, gift.NearestNeighborResampling))
	dst := image.NewRGBA(g.Bounds(b))
	g.Draw(dst, img)
	return dst
}

// terrainMarkers projects the label positions onto image pixels.
func terrainMarkers(buf *pipeline.TerrainBuffer, scale int) []marker {
	if buf.Columns < 2 || buf.Rows < 2 {
		return nil
	}
	last := 3 * (buf.VertexCount() - 1)
	x0, z0 := float64(buf.Positions[0]), float64(buf.Positions[2])
	x1, z1 := float64(buf.Positions[last]), float64(buf.Positions[last+2])

	out := make([]marker, 0, len(buf.Labels))
	for _, l := range buf.Labels {
		px := (l.X - x0) / (x1 - x0) * float64(buf.Columns-1)
		py := (l.Z - z0) / (z1 - z0) * float64(buf.Rows-1)
		out = append(out, marker{
			name: l.Name,
			x:    (px + 0.5) * float64(scale),
			y:    (py + 0.5) * float64(scale),
		})
	}
	return out
}

func channel(v float32, f float64) uint8 {
	c := float64(v) * f * 255
	if c <= 0 {
		return 0
	}
	if c >= 255 {
		return 255
	}
	return uint8(c + 0.5)
}

func normalize(v [3]float64) [3]float64 {
	l := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	return [3]float64{v[0] / l, v[1] / l, v[2] / l}
}
