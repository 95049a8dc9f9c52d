// Package mbtiles stores rendered tile pyramids in MBTiles databases.
package mbtiles

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// Metadata contains MBTiles metadata fields. Bounds and Center are in world
// units of the noise plane, not WGS84.
type Metadata struct {
	Name        string // Human-readable tileset identifier
	Format      string // Tile data type (png)
	Description string // Human-readable description
	Type        string // "baselayer" or "overlay"
	Version     string // Version string
	Bounds      orb.Bound
	Center      orb.Point
	MinZoom     int
	MaxZoom     int
	// Extra holds generator settings such as the seed and region count.
	Extra map[string]string
}

// reserved keys are owned by the typed fields.
var reserved = map[string]bool{
	"name": true, "format": true, "description": true, "type": true, "version": true,
	"bounds": true, "center": true, "minzoom": true, "maxzoom": true,
}

// ToMap converts Metadata to a map for database insertion.
func (m Metadata) ToMap() map[string]string {
	result := make(map[string]string, len(m.Extra)+9)
	for k, v := range m.Extra {
		if !reserved[k] {
			result[k] = v
		}
	}

	if m.Name != "" {
		result["name"] = m.Name
	}
	if m.Format != "" {
		result["format"] = m.Format
	}
	if m.Description != "" {
		result["description"] = m.Description
	}
	if m.Type != "" {
		result["type"] = m.Type
	}
	if m.Version != "" {
		result["version"] = m.Version
	}
	result["minzoom"] = strconv.Itoa(m.MinZoom)
	result["maxzoom"] = strconv.Itoa(m.MaxZoom)
	if m.Bounds != (orb.Bound{}) {
		result["bounds"] = fmt.Sprintf("%.6f,%.6f,%.6f,%.6f",
			m.Bounds.Min[0], m.Bounds.Min[1], m.Bounds.Max[0], m.Bounds.Max[1])
		center := m.Center
		if center == (orb.Point{}) {
			center = m.Bounds.Center()
		}
		result["center"] = fmt.Sprintf("%.6f,%.6f,%d", center[0], center[1], m.MinZoom)
	}

	return result
}

// parseMetadata is the inverse of ToMap. Unknown keys land in Extra.
func parseMetadata(values map[string]string) Metadata {
	meta := Metadata{
		Name:        values["name"],
		Format:      values["format"],
		Description: values["description"],
		Type:        values["type"],
		Version:     values["version"],
	}
	if i, err := strconv.Atoi(values["minzoom"]); err == nil {
		meta.MinZoom = i
	}
	if i, err := strconv.Atoi(values["maxzoom"]); err == nil {
		meta.MaxZoom = i
	}
	if f, ok := parseFloats(values["bounds"], 4); ok {
		meta.Bounds = orb.Bound{Min: orb.Point{f[0], f[1]}, Max: orb.Point{f[2], f[3]}}
	}
	if f, ok := parseFloats(values["center"], 3); ok {
		meta.Center = orb.Point{f[0], f[1]}
	}

	for k, v := range values {
		if reserved[k] {
			continue
		}
		if meta.Extra == nil {
			meta.Extra = make(map[string]string)
		}
		meta.Extra[k] = v
	}
	return meta
}

func parseFloats(s string, n int) ([]float64, bool) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, false
	}
	out := make([]float64, n)
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}
