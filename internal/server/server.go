// Package server exposes the generator over HTTP.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"

	"github.com/MeKo-Tech/terrainmap/internal/pipeline"
)

// Options configures the HTTP surface.
type Options struct {
	Tiles          TilesConfig
	RequestTimeout time.Duration
	// AllowedOrigins for CORS; empty allows any origin.
	AllowedOrigins []string
}

// Server routes API and tile requests to a shared generator.
type Server struct {
	gen    *pipeline.Generator
	tiles  *Tiles
	logger *slog.Logger
	opts   Options
}

// New wires a server around gen.
func New(gen *pipeline.Generator, opts Options, logger *slog.Logger) (*Server, error) {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = time.Minute
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	tiles, err := NewTiles(gen.Config, opts.Tiles, logger)
	if err != nil {
		return nil, err
	}

	return &Server{gen: gen, tiles: tiles, logger: logger, opts: opts}, nil
}

// Close releases resources held by the tile service.
func (s *Server) Close() error {
	return s.tiles.Close()
}

// Router builds the chi router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log()))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.Timeout(s.opts.RequestTimeout))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/config", s.handleGetConfig)
		r.Post("/regenerate", s.handleRegenerate)
		r.Get("/map.png", s.handleImage)
		r.Get("/terrain", s.handleTerrain)
		r.Get("/map", s.handleMap)
		r.Get("/status", s.handleStatus)
	})

	r.Handle("/tiles/*", s.tiles)

	return r
}

// requestLogger logs one line per request through slog.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"elapsed", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, msg string, err error) {
	body := map[string]string{"error": msg}
	if err != nil {
		body["detail"] = err.Error()
	}
	if status >= http.StatusInternalServerError {
		s.log().Error(msg, "error", err, "path", r.URL.Path)
	}
	render.Status(r, status)
	render.JSON(w, r, body)
}

func (s *Server) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}
