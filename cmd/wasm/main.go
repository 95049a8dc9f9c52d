//go:build js && wasm

package main

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"syscall/js"

	"github.com/MeKo-Tech/terrainmap/assets"
	"github.com/MeKo-Tech/terrainmap/internal/config"
	"github.com/MeKo-Tech/terrainmap/internal/export"
	"github.com/MeKo-Tech/terrainmap/internal/pipeline"
)

var gen *pipeline.Generator

// ExportRequest selects the PNG export options from JS.
type ExportRequest struct {
	Upscale     int    `json:"upscale"`
	Labels      *bool  `json:"labels"`
	Shade       *bool  `json:"shade"`
	Compression string `json:"compression"`
}

// initGenerator is called on page load with an optional preset name.
func initGenerator(this js.Value, args []js.Value) interface{} {
	cfg := config.DefaultTerrain()
	if len(args) > 0 && args[0].Type() == js.TypeString && args[0].String() != "" {
		p, err := assets.Preset(args[0].String())
		if err != nil {
			return errorResult(err)
		}
		if cfg, err = config.Apply(cfg, p); err != nil {
			return errorResult(err)
		}
	}

	g, err := pipeline.NewGenerator(cfg, nil)
	if err != nil {
		return errorResult(err)
	}
	gen = g
	fmt.Println("terrainmap WASM generator initialized")
	return outputResult(gen.Current())
}

// regenerate applies a JSON config patch and returns the new buffers.
func regenerate(this js.Value, args []js.Value) interface{} {
	if gen == nil {
		return errorResult(fmt.Errorf("terrainmapInit has not been called"))
	}

	var patch config.Patch
	if len(args) > 0 && args[0].Type() == js.TypeString && args[0].String() != "" {
		if err := json.Unmarshal([]byte(args[0].String()), &patch); err != nil {
			return errorResult(fmt.Errorf("failed to parse patch: %w", err))
		}
	}

	out, err := gen.Configure(patch)
	if err != nil {
		return errorResult(err)
	}
	return outputResult(out)
}

// exportPNG renders the current output and returns it as a data URL.
func exportPNG(this js.Value, args []js.Value) interface{} {
	if gen == nil {
		return errorResult(fmt.Errorf("terrainmapInit has not been called"))
	}

	var req ExportRequest
	if len(args) > 0 && args[0].Type() == js.TypeString && args[0].String() != "" {
		if err := json.Unmarshal([]byte(args[0].String()), &req); err != nil {
			return errorResult(fmt.Errorf("failed to parse request: %w", err))
		}
	}

	opts := export.DefaultOptions()
	if req.Upscale > 0 {
		opts.Upscale = req.Upscale
	}
	if req.Labels != nil {
		opts.Labels = *req.Labels
	}
	if req.Shade != nil {
		opts.Shade = *req.Shade
	}
	compression, err := export.ParseCompression(req.Compression)
	if err != nil {
		return errorResult(err)
	}

	img, err := export.Render(gen.Current(), opts)
	if err != nil {
		return errorResult(err)
	}
	data, err := export.EncodePNG(img, compression)
	if err != nil {
		return errorResult(err)
	}
	return map[string]interface{}{
		"url": "data:image/png;base64," + base64.StdEncoding.EncodeToString(data),
	}
}

func presets(this js.Value, args []js.Value) interface{} {
	names := assets.Presets()
	out := make([]interface{}, len(names))
	for i, n := range names {
		out[i] = n
	}
	return out
}

func outputResult(out *pipeline.Output) interface{} {
	summary, err := json.Marshal(out.Summary())
	if err != nil {
		return errorResult(err)
	}
	res := map[string]interface{}{
		"summary": string(summary),
		"variant": string(out.Config.Variant),
	}

	if t := out.Terrain; t != nil {
		res["columns"] = t.Columns
		res["rows"] = t.Rows
		res["positions"] = float32Array(t.Positions)
		res["colors"] = float32Array(t.Colors)
		res["normals"] = float32Array(t.Normals)
		res["indices"] = uint32Array(t.Indices)
	}
	if m := out.Map; m != nil {
		pixels := js.Global().Get("Uint8ClampedArray").New(len(m.Pixels.Pix))
		js.CopyBytesToJS(pixels, m.Pixels.Pix)
		res["width"] = m.Width
		res["height"] = m.Height
		res["pixels"] = pixels
	}
	return res
}

// float32Array copies v into a new JS Float32Array via its little-endian
// bytes.
func float32Array(v []float32) js.Value {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return typedArray("Float32Array", buf)
}

func uint32Array(v []uint32) js.Value {
	buf := make([]byte, 4*len(v))
	for i, u := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], u)
	}
	return typedArray("Uint32Array", buf)
}

func typedArray(kind string, buf []byte) js.Value {
	bytes := js.Global().Get("Uint8Array").New(len(buf))
	js.CopyBytesToJS(bytes, buf)
	return js.Global().Get(kind).New(bytes.Get("buffer"))
}

func errorResult(err error) interface{} {
	return map[string]interface{}{"error": err.Error()}
}

func main() {
	c := make(chan struct{})

	js.Global().Set("terrainmapInit", js.FuncOf(initGenerator))
	js.Global().Set("terrainmapRegenerate", js.FuncOf(regenerate))
	js.Global().Set("terrainmapExportPNG", js.FuncOf(exportPNG))
	js.Global().Set("terrainmapPresets", js.FuncOf(presets))

	fmt.Println("terrainmap WASM module loaded")
	<-c
}
