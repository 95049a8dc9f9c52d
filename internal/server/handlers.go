package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/render"

	"github.com/MeKo-Tech/terrainmap/internal/config"
	"github.com/MeKo-Tech/terrainmap/internal/export"
)

const maxPatchBytes = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.gen.Config())
}

func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	var patch config.Patch
	err := render.DecodeJSON(http.MaxBytesReader(w, r.Body, maxPatchBytes), &patch)
	if err != nil && !errors.Is(err, io.EOF) {
		s.renderError(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}

	out, err := s.gen.Configure(patch)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, config.ErrInvalid) {
			status = http.StatusBadRequest
		}
		s.renderError(w, r, status, "regenerate failed", err)
		return
	}

	render.JSON(w, r, out.Summary())
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := export.DefaultOptions()

	if v := q.Get("upscale"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 16 {
			s.renderError(w, r, http.StatusBadRequest, "upscale must be an integer between 1 and 16", err)
			return
		}
		opts.Upscale = n
	}
	for name, dst := range map[string]*bool{"labels": &opts.Labels, "shade": &opts.Shade} {
		if v := q.Get(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				s.renderError(w, r, http.StatusBadRequest, name+" must be a boolean", err)
				return
			}
			*dst = b
		}
	}
	compression, err := export.ParseCompression(q.Get("compression"))
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest, "invalid compression", err)
		return
	}

	img, err := export.Render(s.gen.Current(), opts)
	if err != nil {
		s.renderError(w, r, http.StatusInternalServerError, "render failed", err)
		return
	}
	data, err := export.EncodePNG(img, compression)
	if err != nil {
		s.renderError(w, r, http.StatusInternalServerError, "encode failed", err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	if q.Has("download") {
		w.Header().Set("Content-Disposition", `attachment; filename="terrainmap.png"`)
	}
	writePNG(w, data, s.log())
}

func (s *Server) handleTerrain(w http.ResponseWriter, r *http.Request) {
	out := s.gen.Current()
	if out.Terrain == nil {
		s.renderError(w, r, http.StatusConflict, "active variant is not terrain", nil)
		return
	}
	render.JSON(w, r, out.Terrain)
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	out := s.gen.Current()
	if out.Map == nil {
		s.renderError(w, r, http.StatusConflict, "active variant is not map", nil)
		return
	}
	render.JSON(w, r, out.Map)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"current": s.gen.Current().Summary(),
		"tiles":   s.tiles.Status(),
	})
}
