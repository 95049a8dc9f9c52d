// Package assets embeds the named configuration presets shared by the CLI
// and the js/wasm build.
package assets

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/MeKo-Tech/terrainmap/internal/config"
)

// PresetsFS holds one JSON config patch per preset.
//
// NOTE: go:embed patterns must not use ".." and must be relative to this file.
//
//go:embed presets/*.json
var PresetsFS embed.FS

// Presets returns the preset names in sorted order.
func Presets() []string {
	entries, err := fs.ReadDir(PresetsFS, "presets")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	sort.Strings(names)
	return names
}

// Preset loads the named patch.
func Preset(name string) (config.Patch, error) {
	var p config.Patch
	data, err := PresetsFS.ReadFile(path.Join("presets", name+".json"))
	if err != nil {
		return p, fmt.Errorf("%w: unknown preset %q (have %s)", config.ErrInvalid, name, strings.Join(Presets(), ", "))
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("failed to decode preset %q: %w", name, err)
	}
	return p, nil
}
