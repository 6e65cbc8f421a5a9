package encoder

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"
)

// PNGEncoder encodes silhouettes to PNG, the only output format: it is
// lossless and keeps the alpha channel.
type PNGEncoder struct {
	Level png.CompressionLevel
}

// levels maps flag values to compression levels.
var levels = map[string]png.CompressionLevel{
	"default": png.DefaultCompression,
	"best":    png.BestCompression,
	"fast":    png.BestSpeed,
	"none":    png.NoCompression,
}

// ParseLevel resolves a compression level name ("default", "best",
// "fast", "none").
func ParseLevel(name string) (png.CompressionLevel, error) {
	l, ok := levels[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("unknown png compression %q (want default, best, fast or none)", name)
	}
	return l, nil
}

func (e *PNGEncoder) MimeType() string  { return "image/png" }
func (e *PNGEncoder) Extension() string { return "png" }

// Encode returns the PNG bytes of img.
func (e *PNGEncoder) Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	// Silhouettes are mostly flat alpha and compress well.
	buf.Grow(64 * 1024)
	if err := e.EncodeTo(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeTo streams the PNG encoding of img to w.
func (e *PNGEncoder) EncodeTo(w io.Writer, img image.Image) error {
	enc := &png.Encoder{CompressionLevel: e.Level}
	if err := enc.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
