package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/terrainmap/assets"
	"github.com/MeKo-Tech/terrainmap/internal/config"
	"github.com/MeKo-Tech/terrainmap/internal/noise"
	"github.com/MeKo-Tech/terrainmap/internal/palette"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "terrainmap",
	Short: "Procedural terrain meshes and region maps from seeded noise",
	Long: `terrainmap samples seeded 2D noise over a grid and turns it into either a
colored terrain mesh (elevation bands with a river overlay) or a region map
(quantized noise, border detection and an evenly spaced palette).

Results can be exported as PNG, rendered into an MBTiles pyramid or served
over HTTP.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogging()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	flags.Bool("verbose", false, "Enable verbose logging")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-file", "", "Also write logs to this file (rotated)")

	flags.String("preset", "", "Start from a named preset ("+strings.Join(assets.Presets(), ", ")+")")
	flags.String("variant", string(config.VariantMap), "Pipeline variant (terrain, map)")
	flags.Int("width", 0, "Width in world units (terrain) or pixels (map)")
	flags.Int("height", 0, "Height in world units (terrain) or pixels (map)")
	flags.Int("resolution", 0, "Terrain mesh segments per side")
	flags.Float64("scale", 0, "Noise scale (sample at coordinate/scale)")
	flags.Float64("amplitude", 0, "Terrain height amplitude")
	flags.Int("octaves", 0, "Noise octaves")
	flags.String("backend", string(noise.BackendSimplex), "Noise backend (simplex, perlin)")
	flags.String("seed", "", "Noise seed, number or text (default: random)")
	flags.Int("regions", 0, "Number of map regions")
	flags.Bool("borders", true, "Draw region borders")
	flags.Float64("origin-x", 0, "World x of the first sample")
	flags.Float64("origin-y", 0, "World y of the first sample")
	flags.Float64("step", 0, "World units between map samples")
	flags.Bool("river", true, "Overlay the river mask on terrain")
	flags.String("river-seed", "", "Seed of the river mask field")
	flags.Float64("river-depth", 0, "How far river vertices are lowered")
	flags.String("palette-space", string(palette.SpaceHSL), "Palette color space (hsl, hsluv)")
	flags.Bool("shuffle", false, "Shuffle the region palette")
	flags.Int64("shuffle-seed", 0, "Seed for the palette shuffle")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"verbose", "verbose"},
		{"log-level", "log-level"},
		{"log-file", "log-file"},
		{"preset", "preset"},
		{"variant", "variant"},
		{"width", "width"},
		{"height", "height"},
		{"resolution", "resolution"},
		{"noise.scale", "scale"},
		{"noise.amplitude", "amplitude"},
		{"noise.octaves", "octaves"},
		{"noise.backend", "backend"},
		{"seed", "seed"},
		{"regions", "regions"},
		{"borders", "borders"},
		{"origin.x", "origin-x"},
		{"origin.y", "origin-y"},
		{"step", "step"},
		{"river.enabled", "river"},
		{"river.seed", "river-seed"},
		{"river.depth", "river-depth"},
		{"palette.space", "palette-space"},
		{"palette.shuffle", "shuffle"},
		{"palette.shuffle_seed", "shuffle-seed"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, flags.Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("TERRAINMAP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

func pipelineConfig() (config.Config, error) {
	return pipelineConfigFrom(viper.GetViper())
}

// pipelineConfigFrom starts from the defaults of the selected variant and
// applies the preset, if any, then every key set by flag, environment or
// config file.
func pipelineConfigFrom(v *viper.Viper) (config.Config, error) {
	name := v.GetString("variant")
	if name == "" {
		name = string(config.VariantMap)
	}
	variant, err := config.ParseVariant(name)
	if err != nil {
		return config.Config{}, err
	}
	cfg := config.Default(variant)

	// A preset may switch variant; explicit keys below still win.
	if name := v.GetString("preset"); name != "" {
		preset, err := assets.Preset(name)
		if err != nil {
			return config.Config{}, err
		}
		if cfg, err = config.Apply(cfg, preset); err != nil {
			return config.Config{}, err
		}
	}

	p := config.Patch{
		Width:       lookup(v, "width", v.GetInt),
		Height:      lookup(v, "height", v.GetInt),
		Resolution:  lookup(v, "resolution", v.GetInt),
		Scale:       lookup(v, "noise.scale", v.GetFloat64),
		Amplitude:   lookup(v, "noise.amplitude", v.GetFloat64),
		Octaves:     lookup(v, "noise.octaves", v.GetInt),
		Regions:     lookup(v, "regions", v.GetInt),
		Borders:     lookup(v, "borders", v.GetBool),
		OriginX:     lookup(v, "origin.x", v.GetFloat64),
		OriginY:     lookup(v, "origin.y", v.GetFloat64),
		Step:        lookup(v, "step", v.GetFloat64),
		River:       lookup(v, "river.enabled", v.GetBool),
		RiverDepth:  lookup(v, "river.depth", v.GetFloat64),
		Shuffle:     lookup(v, "palette.shuffle", v.GetBool),
		ShuffleSeed: lookup(v, "palette.shuffle_seed", v.GetInt64),
	}

	if v.IsSet("variant") {
		p.Variant = &variant
	}
	if v.IsSet("noise.backend") {
		b, err := noise.ParseBackend(v.GetString("noise.backend"))
		if err != nil {
			return config.Config{}, err
		}
		p.Backend = &b
	}
	if v.IsSet("palette.space") {
		s, err := palette.ParseSpace(v.GetString("palette.space"))
		if err != nil {
			return config.Config{}, err
		}
		p.Space = &s
	}
	if v.IsSet("river.seed") {
		s := noise.ParseSeed(v.GetString("river.seed"))
		p.RiverSeed = &s
	}

	seed := noise.SeedFromInt(time.Now().UnixNano())
	if v.IsSet("seed") && v.GetString("seed") != "" {
		seed = noise.ParseSeed(v.GetString("seed"))
	}
	p.Seed = &seed

	return config.Apply(cfg, p)
}

func lookup[T any](v *viper.Viper, key string, get func(string) T) *T {
	if !v.IsSet(key) {
		return nil
	}
	val := get(key)
	return &val
}
