// Package export turns pipeline output into images and encodes them.
package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// Compression names a PNG compression level.
type Compression string

const (
	CompressionDefault Compression = "default"
	CompressionSpeed   Compression = "speed"
	CompressionBest    Compression = "best"
	CompressionNone    Compression = "none"
)

// ParseCompression validates a compression name. The empty name selects the
// default level.
func ParseCompression(s string) (Compression, error) {
	switch Compression(s) {
	case "", CompressionDefault:
		return CompressionDefault, nil
	case CompressionSpeed, CompressionBest, CompressionNone:
		return Compression(s), nil
	default:
		return "", fmt.Errorf("unknown png compression %q (want default, speed, best or none)", s)
	}
}

func (c Compression) level() png.CompressionLevel {
	switch c {
	case CompressionSpeed:
		return png.BestSpeed
	case CompressionBest:
		return png.BestCompression
	case CompressionNone:
		return png.NoCompression
	default:
		return png.DefaultCompression
	}
}

// EncodePNG encodes img with the given compression level.
func EncodePNG(img image.Image, c Compression) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: c.level()}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// WritePNG encodes img and writes it to path, creating parent directories.
func WritePNG(path string, img image.Image, c Compression) error {
	data, err := EncodePNG(img, c)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
