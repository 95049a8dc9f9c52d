// Package pipeline runs noise sampling, classification, border detection and
// coloring into a single output buffer.
package pipeline

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/MeKo-Tech/terrainmap/internal/config"
)

// Output is one completed regenerate. Exactly one of Terrain and Map is set,
// depending on Config.Variant. Consumers must treat it as read-only.
type Output struct {
	Config  config.Config  `json:"config"`
	Terrain *TerrainBuffer `json:"terrain,omitempty"`
	Map     *MapBuffer     `json:"map,omitempty"`
	Elapsed time.Duration  `json:"elapsed"`
}

// Summary describes a completed regenerate without the bulk buffers.
type Summary struct {
	Config       config.Config `json:"config"`
	Samples      int           `json:"samples"`
	ElapsedMS    float64       `json:"elapsed_ms"`
	Palette      []string      `json:"palette,omitempty"`
	RegionCounts []int         `json:"region_counts,omitempty"`
	BandNames    []string      `json:"band_names,omitempty"`
	RiverCount   int           `json:"river_count,omitempty"`
}

// Summary builds the Summary of o.
func (o *Output) Summary() Summary {
	s := Summary{
		Config:    o.Config,
		Samples:   o.Config.SampleCount(),
		ElapsedMS: float64(o.Elapsed) / float64(time.Millisecond),
	}
	if o.Map != nil {
		s.Palette = o.Map.Palette
		s.RegionCounts = o.Map.RegionCounts()
	}
	if o.Terrain != nil {
		s.BandNames = o.Terrain.BandNames
		for _, r := range o.Terrain.River {
			if r {
				s.RiverCount++
			}
		}
	}
	return s
}

// Regenerate validates cfg and runs the full pipeline. It is pure: the same
// configuration always yields the same buffers.
func Regenerate(cfg config.Config) (*Output, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	out := &Output{Config: cfg}
	switch cfg.Variant {
	case config.VariantTerrain:
		buf, err := buildTerrain(cfg)
		if err != nil {
			return nil, err
		}
		out.Terrain = buf
	case config.VariantMap:
		buf, err := buildMap(cfg)
		if err != nil {
			return nil, err
		}
		out.Map = buf
	default:
		return nil, fmt.Errorf("%w: unknown variant %q", config.ErrInvalid, cfg.Variant)
	}
	out.Elapsed = time.Since(start)
	return out, nil
}

// Generator owns the active configuration and the latest output. Readers may
// call Current while another goroutine regenerates; the last completed
// regenerate wins.
type Generator struct {
	// update serializes read-apply-swap so concurrent patches compose.
	update  sync.Mutex
	mu      sync.RWMutex
	cfg     config.Config
	current *Output
	logger  *slog.Logger
}

// NewGenerator validates cfg and runs an initial regenerate.
func NewGenerator(cfg config.Config, logger *slog.Logger) (*Generator, error) {
	g := &Generator{cfg: cfg, logger: logger}
	if _, err := g.run(cfg); err != nil {
		return nil, err
	}
	return g, nil
}

// Config returns the active configuration.
func (g *Generator) Config() config.Config {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.cfg
}

// Current returns the latest completed output.
func (g *Generator) Current() *Output {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.current
}

// Regenerate reruns the pipeline with the active configuration.
func (g *Generator) Regenerate() (*Output, error) {
	g.update.Lock()
	defer g.update.Unlock()
	return g.run(g.Config())
}

// Configure applies a partial configuration and regenerates. On any error
// the previous configuration and output stay active.
func (g *Generator) Configure(p config.Patch) (*Output, error) {
	g.update.Lock()
	defer g.update.Unlock()

	next, err := config.Apply(g.Config(), p)
	if err != nil {
		g.log().Warn("Rejected configuration change", "error", err)
		return nil, err
	}
	return g.run(next)
}

func (g *Generator) run(cfg config.Config) (*Output, error) {
	g.log().Debug("Regenerating", "variant", cfg.Variant, "width", cfg.Width, "height", cfg.Height, "seed", cfg.Seed.String())

	out, err := Regenerate(cfg)
	if err != nil {
		g.log().Error("Regenerate failed", "variant", cfg.Variant, "error", err)
		return nil, fmt.Errorf("regenerate %s: %w", cfg.Variant, err)
	}

	g.mu.Lock()
	g.cfg = cfg
	g.current = out
	g.mu.Unlock()

	g.log().Info("Regenerated", "variant", cfg.Variant, "samples", cfg.SampleCount(), "elapsed", out.Elapsed)
	return out, nil
}

func (g *Generator) log() *slog.Logger {
	if g.logger != nil {
		return g.logger
	}
	return slog.Default()
}
