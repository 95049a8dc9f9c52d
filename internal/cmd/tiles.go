package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"

	"github.com/paulmach/orb"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/terrainmap/internal/config"
	"github.com/MeKo-Tech/terrainmap/internal/export"
	"github.com/MeKo-Tech/terrainmap/internal/mbtiles"
	"github.com/MeKo-Tech/terrainmap/internal/tiler"
	"github.com/MeKo-Tech/terrainmap/internal/worker"
)

var tilesCmd = &cobra.Command{
	Use:   "tiles",
	Short: "Render a region map tile pyramid into an MBTiles file",
	Long: `Tiles renders every tile of a zoom range over the configured region map and
stores them in an MBTiles database. Tile 0/0/0 covers the whole map; each
deeper zoom halves the window and samples the noise field more finely.`,
	RunE: runTiles,
}

func init() {
	rootCmd.AddCommand(tilesCmd)

	tilesCmd.Flags().String("mbtiles", "tiles.mbtiles", "Output MBTiles path")
	tilesCmd.Flags().Int("zoom-min", 0, "Minimum zoom level")
	tilesCmd.Flags().Int("zoom-max", 3, "Maximum zoom level")
	tilesCmd.Flags().String("bbox", "", "Limit to a world window: minX,minY,maxX,maxY (default: whole map)")
	tilesCmd.Flags().IntP("workers", "w", 0, "Number of parallel workers (default: number of CPUs)")
	tilesCmd.Flags().Int("tile-size", tiler.DefaultTileSize, "Tile size in pixels")
	tilesCmd.Flags().String("png-compression", "default", "PNG compression (default, speed, best, none)")
	tilesCmd.Flags().Bool("gzip", false, "Gzip tile data inside the MBTiles file")
	tilesCmd.Flags().Int("batch-size", 100, "Tiles per MBTiles transaction")
	tilesCmd.Flags().Bool("progress", true, "Show progress bar")
	tilesCmd.Flags().Bool("allow-failures", false, "Exit successfully even if some tiles fail")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"tiles.mbtiles", "mbtiles"},
		{"tiles.zoom_min", "zoom-min"},
		{"tiles.zoom_max", "zoom-max"},
		{"tiles.bbox", "bbox"},
		{"tiles.workers", "workers"},
		{"tiles.tile_size", "tile-size"},
		{"tiles.png_compression", "png-compression"},
		{"tiles.gzip", "gzip"},
		{"tiles.batch_size", "batch-size"},
		{"tiles.progress", "progress"},
		{"tiles.allow_failures", "allow-failures"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, tilesCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func runTiles(cmd *cobra.Command, args []string) error {
	outputFile := viper.GetString("tiles.mbtiles")
	zoomMin := viper.GetInt("tiles.zoom_min")
	zoomMax := viper.GetInt("tiles.zoom_max")
	bboxStr := viper.GetString("tiles.bbox")
	workers := viper.GetInt("tiles.workers")
	tileSize := viper.GetInt("tiles.tile_size")
	showProgress := viper.GetBool("tiles.progress")
	allowFailures := viper.GetBool("tiles.allow_failures")

	if outputFile == "" {
		return fmt.Errorf("--mbtiles is required")
	}
	if err := validateZoomRange(zoomMin, zoomMax); err != nil {
		return err
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var bbox orb.Bound
	if bboxStr != "" {
		b, err := parseBBox(bboxStr)
		if err != nil {
			return fmt.Errorf("invalid bbox: %w", err)
		}
		bbox = b
	}

	compression, err := export.ParseCompression(viper.GetString("tiles.png_compression"))
	if err != nil {
		return err
	}

	cfg, err := pipelineConfig()
	if err != nil {
		return err
	}

	renderer, err := tiler.New(cfg, tileSize, compression, logger)
	if err != nil {
		return err
	}
	tiles := renderer.Tiles(bbox, zoomMin, zoomMax)
	if len(tiles) == 0 {
		return fmt.Errorf("no tiles intersect bbox %s", bboxStr)
	}

	logger.Info("Starting tile pyramid",
		"zoom_range", fmt.Sprintf("%d-%d", zoomMin, zoomMax),
		"tiles", len(tiles),
		"workers", workers,
		"seed", cfg.Seed.String(),
		"output", outputFile,
	)

	bounds := clipBound(renderer.Bound(), bbox)
	writer, err := mbtiles.New(outputFile, mbtiles.Metadata{
		Name:        "terrainmap",
		Format:      "png",
		Description: fmt.Sprintf("%d-region noise map", cfg.Regions),
		Type:        "baselayer",
		Version:     "1.0",
		Bounds:      bounds,
		MinZoom:     zoomMin,
		MaxZoom:     zoomMax,
		Extra:       tilesetExtra(cfg, tileSize),
	}, mbtiles.Options{
		BatchSize: viper.GetInt("tiles.batch_size"),
		Gzip:      viper.GetBool("tiles.gzip"),
	})
	if err != nil {
		return fmt.Errorf("failed to create MBTiles writer: %w", err)
	}
	defer writer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	progress := worker.NewProgress(os.Stderr, len(tiles), showProgress)
	pool := worker.New(worker.Config{
		Workers:    workers,
		Generator:  renderer,
		OnProgress: progress.Callback(),
		OnResult: func(r worker.Result) error {
			if r.Err != nil {
				return nil
			}
			progress.AddBytes(len(r.Data))
			return writer.WriteTile(r.Task.Coords, r.Data)
		},
	})

	results := pool.Run(ctx, worker.Tasks(tiles))
	progress.Done()

	var failedCount int
	for _, r := range results {
		if r.Err != nil {
			failedCount++
			logger.Error("Tile generation failed", "coords", r.Task.Coords.String(), "error", r.Err)
		}
	}

	logger.Info(progress.Summary())

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush MBTiles: %w", err)
	}
	logger.Info("MBTiles written", "path", outputFile, "tiles", writer.Written())

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("tile generation interrupted: %w", err)
	}
	if failedCount > 0 {
		if !allowFailures {
			return fmt.Errorf("%d tiles failed to generate", failedCount)
		}
		logger.Warn("Some tiles failed to generate, continuing due to --allow-failures", "failed_count", failedCount)
	}
	return nil
}

func validateZoomRange(zoomMin, zoomMax int) error {
	if zoomMin < 0 || zoomMax < 0 {
		return fmt.Errorf("zoom levels must be non-negative")
	}
	if zoomMin > zoomMax {
		return fmt.Errorf("--zoom-min (%d) must be <= --zoom-max (%d)", zoomMin, zoomMax)
	}
	if zoomMax > 24 {
		return fmt.Errorf("--zoom-max (%d) must be <= 24", zoomMax)
	}
	return nil
}

// clipBound intersects b with clip. An empty clip leaves b unchanged.
func clipBound(b, clip orb.Bound) orb.Bound {
	if clip == (orb.Bound{}) {
		return b
	}
	return orb.Bound{
		Min: orb.Point{max(b.Min[0], clip.Min[0]), max(b.Min[1], clip.Min[1])},
		Max: orb.Point{min(b.Max[0], clip.Max[0]), min(b.Max[1], clip.Max[1])},
	}
}

// tilesetExtra records the settings needed to reproduce a tileset.
func tilesetExtra(cfg config.Config, tileSize int) map[string]string {
	return map[string]string{
		"seed":          cfg.Seed.String(),
		"regions":       strconv.Itoa(cfg.Regions),
		"scale":         strconv.FormatFloat(cfg.Scale, 'g', -1, 64),
		"octaves":       strconv.Itoa(cfg.Octaves),
		"backend":       string(cfg.Backend),
		"borders":       strconv.FormatBool(cfg.Borders),
		"palette_space": string(cfg.Palette.Space),
		"tile_size":     strconv.Itoa(tileSize),
	}
}

// parseBBox parses a world window "minX,minY,maxX,maxY".
func parseBBox(s string) (orb.Bound, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return orb.Bound{}, fmt.Errorf("expected 4 comma-separated values, got %d", len(parts))
	}

	var v [4]float64
	for i, part := range parts {
		val, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return orb.Bound{}, fmt.Errorf("invalid number at position %d: %w", i, err)
		}
		v[i] = val
	}

	if v[0] >= v[2] {
		return orb.Bound{}, fmt.Errorf("minX (%.4f) must be < maxX (%.4f)", v[0], v[2])
	}
	if v[1] >= v[3] {
		return orb.Bound{}, fmt.Errorf("minY (%.4f) must be < maxY (%.4f)", v[1], v[3])
	}

	return orb.Bound{Min: orb.Point{v[0], v[1]}, Max: orb.Point{v[2], v[3]}}, nil
}
