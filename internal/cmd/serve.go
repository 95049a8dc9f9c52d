package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/terrainmap/internal/export"
	"github.com/MeKo-Tech/terrainmap/internal/pipeline"
	"github.com/MeKo-Tech/terrainmap/internal/server"
	"github.com/MeKo-Tech/terrainmap/internal/tiler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the generator, PNG export and map tiles over HTTP",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "127.0.0.1:8080", "Listen address (host:port)")
	serveCmd.Flags().String("mbtiles", "", "Serve pre-rendered tiles from this MBTiles file")
	serveCmd.Flags().Int("max-concurrent-generations", runtime.NumCPU(), "Max concurrent tile renders (default: number of CPUs)")
	serveCmd.Flags().Duration("generation-timeout", 30*time.Second, "Timeout per tile render")
	serveCmd.Flags().Duration("request-timeout", time.Minute, "Timeout per API request")
	serveCmd.Flags().String("cache-control", "no-store", "Cache-Control header for served tiles")
	serveCmd.Flags().Int("tile-size", tiler.DefaultTileSize, "Base tile size in pixels (@2x requests render double)")
	serveCmd.Flags().String("png-compression", "default", "PNG compression (default, speed, best, none)")
	serveCmd.Flags().StringSlice("allowed-origins", nil, "CORS allowed origins (default: any)")

	mustBind := func(key string, name string) {
		if err := viper.BindPFlag(key, serveCmd.Flags().Lookup(name)); err != nil {
			panic(fmt.Sprintf("failed to bind flag: %v", err))
		}
	}

	mustBind("serve.addr", "addr")
	mustBind("serve.mbtiles", "mbtiles")
	mustBind("serve.max_concurrent_generations", "max-concurrent-generations")
	mustBind("serve.generation_timeout", "generation-timeout")
	mustBind("serve.request_timeout", "request-timeout")
	mustBind("serve.cache_control", "cache-control")
	mustBind("serve.tile_size", "tile-size")
	mustBind("serve.png_compression", "png-compression")
	mustBind("serve.allowed_origins", "allowed-origins")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := viper.GetString("serve.addr")

	compression, err := export.ParseCompression(viper.GetString("serve.png_compression"))
	if err != nil {
		return err
	}

	cfg, err := pipelineConfig()
	if err != nil {
		return err
	}
	gen, err := pipeline.NewGenerator(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to run initial regenerate: %w", err)
	}

	srvOpts := server.Options{
		Tiles: server.TilesConfig{
			MBTilesPath:              viper.GetString("serve.mbtiles"),
			PNGCompression:           compression,
			CacheControl:             viper.GetString("serve.cache_control"),
			BaseTileSize:             viper.GetInt("serve.tile_size"),
			MaxConcurrentGenerations: viper.GetInt("serve.max_concurrent_generations"),
			GenerationTimeout:        viper.GetDuration("serve.generation_timeout"),
		},
		RequestTimeout: viper.GetDuration("serve.request_timeout"),
		AllowedOrigins: viper.GetStringSlice("serve.allowed_origins"),
	}
	s, err := server.New(gen, srvOpts, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening",
			"addr", addr,
			"variant", cfg.Variant,
			"seed", cfg.Seed.String(),
			"mbtiles", srvOpts.Tiles.MBTilesPath,
			"max_concurrent_generations", srvOpts.Tiles.MaxConcurrentGenerations,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
