package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MeKo-Tech/terrainmap/internal/config"
	"github.com/MeKo-Tech/terrainmap/internal/export"
	"github.com/MeKo-Tech/terrainmap/internal/mbtiles"
	"github.com/MeKo-Tech/terrainmap/internal/tile"
	"github.com/MeKo-Tech/terrainmap/internal/tiler"
)

// TilesConfig configures tile serving.
type TilesConfig struct {
	// MBTilesPath serves pre-rendered tiles when set. Missing tiles are still
	// rendered on demand.
	MBTilesPath              string
	PNGCompression           export.Compression
	CacheControl             string
	BaseTileSize             int
	MaxConcurrentGenerations int
	GenerationTimeout        time.Duration
}

// Tiles serves map tiles, from an MBTiles file or rendered on demand from
// the generator's active configuration.
type Tiles struct {
	source func() config.Config
	reader *mbtiles.Reader
	logger *slog.Logger
	sem    chan struct{}
	cfg    TilesConfig

	activeRenders  atomic.Int32
	totalRendered  atomic.Int64
	totalFailed    atomic.Int64
	totalStored    atomic.Int64
	currentRenders sync.Map // tile key -> start time
}

// TileStatus represents the current status of tile serving.
type TileStatus struct {
	ActiveRenders int      `json:"active_renders"`
	TotalRendered int64    `json:"total_rendered"`
	TotalFailed   int64    `json:"total_failed"`
	TotalStored   int64    `json:"total_stored"`
	CurrentTiles  []string `json:"current_tiles"`
	MaxConcurrent int      `json:"max_concurrent"`
	MBTiles       bool     `json:"mbtiles"`
}

// NewTiles prepares tile serving. source is called per request so tiles
// follow configuration changes.
func NewTiles(source func() config.Config, cfg TilesConfig, logger *slog.Logger) (*Tiles, error) {
	if cfg.BaseTileSize <= 0 {
		cfg.BaseTileSize = tiler.DefaultTileSize
	}
	if cfg.MaxConcurrentGenerations <= 0 {
		cfg.MaxConcurrentGenerations = 1
	}
	if cfg.GenerationTimeout <= 0 {
		cfg.GenerationTimeout = 30 * time.Second
	}
	if cfg.CacheControl == "" {
		cfg.CacheControl = "no-store"
	}
	if cfg.PNGCompression == "" {
		cfg.PNGCompression = export.CompressionDefault
	}

	t := &Tiles{
		source: source,
		cfg:    cfg,
		logger: logger,
		sem:    make(chan struct{}, cfg.MaxConcurrentGenerations),
	}

	if cfg.MBTilesPath != "" {
		reader, err := mbtiles.OpenReader(cfg.MBTilesPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open MBTiles: %w", err)
		}
		t.reader = reader
	}

	return t, nil
}

// Close releases the MBTiles reader, if any.
func (t *Tiles) Close() error {
	if t.reader == nil {
		return nil
	}
	return t.reader.Close()
}

// Status returns the current status of tile serving.
func (t *Tiles) Status() TileStatus {
	var current []string
	t.currentRenders.Range(func(key, _ any) bool {
		current = append(current, key.(string))
		return true
	})
	sort.Strings(current)

	return TileStatus{
		ActiveRenders: int(t.activeRenders.Load()),
		TotalRendered: t.totalRendered.Load(),
		TotalFailed:   t.totalFailed.Load(),
		TotalStored:   t.totalStored.Load(),
		CurrentTiles:  current,
		MaxConcurrent: t.cfg.MaxConcurrentGenerations,
		MBTiles:       t.reader != nil,
	}
}

// ServeHTTP serves /tiles/z{z}_x{x}_y{y}.png and the @2x variant.
func (t *Tiles) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	coords, suffix, ok := parseTilePath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Cache-Control", t.cfg.CacheControl)

	if t.reader != nil && suffix == "" {
		data, err := t.reader.ReadTile(coords)
		switch {
		case err == nil:
			t.totalStored.Add(1)
			writePNG(w, data, t.log())
			return
		case !errors.Is(err, mbtiles.ErrTileNotFound):
			t.log().Error("Failed to read tile", "coords", coords.String(), "error", err)
			http.Error(w, "failed to read tile", http.StatusInternalServerError)
			return
		}
	}

	key := coords.String() + suffix

	select {
	case t.sem <- struct{}{}:
		defer func() { <-t.sem }()
	case <-r.Context().Done():
		return
	}

	t.activeRenders.Add(1)
	t.currentRenders.Store(key, time.Now())
	defer func() {
		t.activeRenders.Add(-1)
		t.currentRenders.Delete(key)
	}()

	ctx, cancel := context.WithTimeout(r.Context(), t.cfg.GenerationTimeout)
	defer cancel()

	data, err := t.render(ctx, coords, tileSizeForSuffix(t.cfg.BaseTileSize, suffix))
	if err != nil {
		t.totalFailed.Add(1)
		status := http.StatusInternalServerError
		if errors.Is(err, config.ErrInvalid) {
			status = http.StatusBadRequest
		}
		t.log().Error("Tile render failed", "coords", key, "error", err)
		http.Error(w, err.Error(), status)
		return
	}

	t.totalRendered.Add(1)
	writePNG(w, data, t.log())
}

func (t *Tiles) render(ctx context.Context, coords tile.Coords, size int) ([]byte, error) {
	cfg := t.source()
	if cfg.Variant != config.VariantMap {
		// Terrain sessions still get map tiles of the same noise field.
		seed := cfg.Seed
		cfg = config.DefaultMap()
		cfg.Seed = seed
	}
	r, err := tiler.New(cfg, size, t.cfg.PNGCompression, t.logger)
	if err != nil {
		return nil, err
	}
	return r.Generate(ctx, coords)
}

func (t *Tiles) log() *slog.Logger {
	if t.logger != nil {
		return t.logger
	}
	return slog.Default()
}

func writePNG(w http.ResponseWriter, data []byte, logger *slog.Logger) {
	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(data); err != nil {
		logger.Error("Failed to write response", "error", err)
	}
}

func parseTilePath(requestPath string) (tile.Coords, string, bool) {
	// Expect: /tiles/z3_x5_y2.png or /tiles/z3_x5_y2@2x.png
	if !strings.HasPrefix(requestPath, "/tiles/") {
		return tile.Coords{}, "", false
	}
	base := path.Base(requestPath)
	if !strings.HasSuffix(base, ".png") {
		return tile.Coords{}, "", false
	}
	name := strings.TrimSuffix(base, ".png")
	suffix := ""
	if strings.HasSuffix(name, "@2x") {
		suffix = "@2x"
		name = strings.TrimSuffix(name, "@2x")
	}

	coords, err := tile.ParseCoords(name)
	if err != nil {
		return tile.Coords{}, "", false
	}
	return coords, suffix, true
}

func tileSizeForSuffix(base int, suffix string) int {
	if suffix == "@2x" {
		return base * 2
	}
	return base
}
