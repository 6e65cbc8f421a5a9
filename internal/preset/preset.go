package preset

import (
	"fmt"
	"sort"

	"github.com/Lokke/imagescale/internal/pipeline"
)

// Preset is a named set of conversion defaults.
type Preset struct {
	Name           string
	Size           int
	Threshold      int
	AlphaThreshold int
	Invert         bool
	FilePrefix     string // output filename prefix
}

const (
	Normal   = "normal"
	Inverted = "inverted"
)

// Built-in presets.
var presets = map[string]Preset{
	Normal: {
		Name:           Normal,
		Size:           pipeline.DefaultSize,
		Threshold:      pipeline.DefaultThreshold,
		AlphaThreshold: pipeline.DefaultAlphaThreshold,
		FilePrefix:     "band_logo",
	},
	Inverted: {
		Name:           Inverted,
		Size:           pipeline.DefaultSize,
		Threshold:      pipeline.DefaultThreshold,
		AlphaThreshold: pipeline.DefaultAlphaThreshold,
		Invert:         true,
		FilePrefix:     "band_logo_inverted",
	},
}

// Get returns a preset by name.
func Get(name string) (Preset, bool) {
	p, ok := presets[name]
	return p, ok
}

// Lookup returns the named preset, falling back to Normal for unknown names.
func Lookup(name string) Preset {
	if p, ok := presets[name]; ok {
		return p
	}
	return presets[Normal]
}

// Names lists the built-in presets in sorted order.
func Names() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Config returns the pipeline configuration of p.
func (p Preset) Config() pipeline.Config {
	return pipeline.Config{
		Size:                p.Size,
		BrightnessThreshold: p.Threshold,
		AlphaThreshold:      p.AlphaThreshold,
		Invert:              p.Invert,
	}
}

// Filename returns the download name for a size×size output,
// e.g. band_logo_inverted_300x300.png.
func (p Preset) Filename(size int) string {
	return fmt.Sprintf("%s_%dx%d.png", p.FilePrefix, size, size)
}
