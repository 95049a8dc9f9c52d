// Package tiler renders region map tiles from a base configuration.
package tiler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/paulmach/orb"

	"github.com/MeKo-Tech/terrainmap/internal/config"
	"github.com/MeKo-Tech/terrainmap/internal/export"
	"github.com/MeKo-Tech/terrainmap/internal/pipeline"
	"github.com/MeKo-Tech/terrainmap/internal/tile"
)

// DefaultTileSize is the edge length of a tile in pixels.
const DefaultTileSize = 256

// Renderer turns tile coordinates into encoded PNG tiles. Tile 0/0/0 covers
// the base map window, a square of max(width, height) pixels at the base
// step. Each tile is an independent regenerate over its own window, so
// region borders are detected per tile.
type Renderer struct {
	base        config.Config
	origin      orb.Point
	span0       float64
	tileSize    int
	compression export.Compression
	logger      *slog.Logger
}

// New validates base and prepares a renderer. Only the map variant can be
// tiled.
func New(base config.Config, tileSize int, compression export.Compression, logger *slog.Logger) (*Renderer, error) {
	if base.Variant != config.VariantMap {
		return nil, fmt.Errorf("%w: tiles require the map variant, got %q", config.ErrInvalid, base.Variant)
	}
	if err := base.Validate(); err != nil {
		return nil, err
	}
	if tileSize <= 0 || tileSize > config.MaxDimension {
		return nil, fmt.Errorf("%w: tile size must be in 1..%d", config.ErrInvalid, config.MaxDimension)
	}

	return &Renderer{
		base:        base,
		origin:      orb.Point{base.OriginX, base.OriginY},
		span0:       float64(max(base.Width, base.Height)) * base.Step,
		tileSize:    tileSize,
		compression: compression,
		logger:      logger,
	}, nil
}

// TileSize returns the tile edge in pixels.
func (r *Renderer) TileSize() int { return r.tileSize }

// Bound returns the world window of the base map.
func (r *Renderer) Bound() orb.Bound {
	return orb.Bound{
		Min: r.origin,
		Max: orb.Point{
			r.origin[0] + float64(r.base.Width)*r.base.Step,
			r.origin[1] + float64(r.base.Height)*r.base.Step,
		},
	}
}

// Tiles lists the tiles between zoomMin and zoomMax whose windows intersect
// b. An empty bound means the whole base map.
func (r *Renderer) Tiles(b orb.Bound, zoomMin, zoomMax int) []tile.Coords {
	if b == (orb.Bound{}) {
		b = r.Bound()
	}
	return tile.TilesInBound(b, r.origin, r.span0, zoomMin, zoomMax)
}

// Config returns the configuration used to render coords.
func (r *Renderer) Config(coords tile.Coords) config.Config {
	w := coords.Window(r.origin, r.span0, r.tileSize)
	cfg := r.base
	cfg.Width = w.Size
	cfg.Height = w.Size
	cfg.OriginX = w.OriginX
	cfg.OriginY = w.OriginY
	cfg.Step = w.Step
	return cfg
}

// Render runs the pipeline for one tile.
func (r *Renderer) Render(ctx context.Context, coords tile.Coords) (*pipeline.Output, error) {
	if !coords.Valid() {
		return nil, fmt.Errorf("tile %s is outside its zoom level", coords)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := pipeline.Regenerate(r.Config(coords))
	if err != nil {
		return nil, fmt.Errorf("failed to render tile %s: %w", coords, err)
	}
	return out, nil
}

// Generate renders and encodes one tile. It implements worker.Generator.
func (r *Renderer) Generate(ctx context.Context, coords tile.Coords) ([]byte, error) {
	out, err := r.Render(ctx, coords)
	if err != nil {
		return nil, err
	}
	data, err := export.EncodePNG(out.Map.Pixels, r.compression)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tile %s: %w", coords, err)
	}
	r.log().Debug("Rendered tile", "coords", coords.String(), "bytes", len(data), "elapsed", out.Elapsed)
	return data, nil
}

func (r *Renderer) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return slog.Default()
}
