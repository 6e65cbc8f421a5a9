package report

import (
	"encoding/json"
	"image"
	"os"
	"time"

	"github.com/Lokke/imagescale/internal/pipeline"
)

// New builds a report from a finished conversion.
func New(presetName string, cfg pipeline.Config, res *pipeline.Result) *Report {
	r := &Report{
		Version:     SupportedVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Preset:      presetName,
		Input: InputInfo{
			Width:  res.Source.Width,
			Height: res.Source.Height,
			Mode:   res.Source.Mode,
			Format: res.Source.Format,
		},
		Params: Params{
			Size:           cfg.Size,
			Threshold:      cfg.BrightnessThreshold,
			AlphaThreshold: cfg.AlphaThreshold,
			Invert:         cfg.Invert,
			BBoxBrightness: pipeline.BBoxBrightness(cfg.AlphaThreshold),
			ProcessingSize: res.ProcessingSize,
			Upscaled:       res.Upscaled,
		},
		Output: OutputInfo{
			Width:    res.Image.Bounds().Dx(),
			Height:   res.Image.Bounds().Dy(),
			Fallback: res.Fallback,
		},
		Trace: res.Trace,
	}
	if res.Cropped {
		r.Output.Crop = cropArray(res.Crop)
	}
	return r
}

func cropArray(r image.Rectangle) *[4]int {
	return &[4]int{r.Min.X, r.Min.Y, r.Max.X, r.Max.Y}
}

// WriteJSON serializes the report to an indented JSON file.
func WriteJSON(r *Report, path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}
