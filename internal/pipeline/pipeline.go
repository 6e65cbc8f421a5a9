package pipeline

import (
	"fmt"
	"image"
	"io"
	"runtime"
	"time"

	"github.com/disintegration/imaging"
)

const (
	DefaultSize           = 300
	DefaultThreshold      = 50
	DefaultAlphaThreshold = 30
	// DefaultMaxSize caps the output side when Config.MaxSize is zero.
	DefaultMaxSize = 4096
)

// Config holds every parameter of one conversion.
type Config struct {
	// Size is the side of the square output in pixels.
	Size int
	// BrightnessThreshold separates bright (kept) from dark (faded) pixels.
	BrightnessThreshold int
	// AlphaThreshold: output alpha at or below this becomes fully transparent.
	AlphaThreshold int
	// Invert flips brightness before thresholding.
	Invert bool
	// Workers bounds per-stage parallelism (0 = NumCPU).
	Workers int
	// MaxSize rejects larger Size values (0 = DefaultMaxSize, <0 = no limit).
	MaxSize int
}

// Validate reports the first out-of-range field.
func (c Config) Validate() error {
	limit := c.MaxSize
	if limit == 0 {
		limit = DefaultMaxSize
	}
	switch {
	case c.Size <= 0:
		return fmt.Errorf("%w: size must be positive, got %d", ErrInvalidConfig, c.Size)
	case limit > 0 && c.Size > limit:
		return fmt.Errorf("%w: size %d exceeds limit %d", ErrInvalidConfig, c.Size, limit)
	case c.BrightnessThreshold < 0 || c.BrightnessThreshold > 255:
		return fmt.Errorf("%w: threshold must be 0-255, got %d", ErrInvalidConfig, c.BrightnessThreshold)
	case c.AlphaThreshold < 0 || c.AlphaThreshold > 255:
		return fmt.Errorf("%w: alpha_threshold must be 0-255, got %d", ErrInvalidConfig, c.AlphaThreshold)
	}
	return nil
}

// SourceInfo describes the decoded input.
type SourceInfo struct {
	Width  int
	Height int
	Mode   string
	Format string
}

// Result is the output of one successful conversion.
type Result struct {
	// Image is always Size×Size with pure white RGB.
	Image  *image.NRGBA
	Source SourceInfo
	// ProcessingSize is the working resolution chosen by the planner.
	ProcessingSize int
	Upscaled       bool
	// Crop is the padded crop applied to the provisional canvas; it is
	// empty when no content was detected.
	Crop     image.Rectangle
	Cropped  bool
	Fallback bool
	Trace    []string
}

// Pipeline converts images into square white silhouettes. It holds no
// mutable state, so one Pipeline may serve concurrent callers.
type Pipeline struct {
	cfg Config
}

// New creates a configured pipeline.
func New(cfg Config) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &Pipeline{cfg: cfg}
}

// Config returns the effective configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// Process decodes r and runs the pipeline on it.
func (p *Pipeline) Process(r io.Reader) (*Result, error) {
	img, format, err := Decode(r)
	if err != nil {
		var tr Trace
		tr.Logf("ERROR: %v", err)
		return nil, &Error{Op: "decode", Err: err, Trace: tr.Lines()}
	}
	res, err := p.Run(img)
	if err != nil {
		return nil, err
	}
	res.Source.Format = format
	return res, nil
}

// Run converts a decoded image. On failure the returned *Error carries the
// trace collected up to the fault.
func (p *Pipeline) Run(img image.Image) (res *Result, err error) {
	var tr Trace
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("%w: %v", ErrProcessing, r)
		}
		if err != nil {
			tr.Logf("ERROR: %v", err)
			res, err = nil, &Error{Op: "run", Err: err, Trace: tr.Lines()}
		}
	}()

	if img == nil {
		return nil, ErrInputMissing
	}
	return p.run(img, &tr)
}

func (p *Pipeline) run(img image.Image, tr *Trace) (*Result, error) {
	cfg := p.cfg
	start := time.Now()
	b := img.Bounds()
	res := &Result{Source: SourceInfo{Width: b.Dx(), Height: b.Dy(), Mode: ColorMode(img)}}

	tr.Logf("Original image size: (%d, %d), mode: %s", b.Dx(), b.Dy(), res.Source.Mode)
	tr.Logf("Parameters - size=%d, threshold=%d, alpha_threshold=%d, invert=%t",
		cfg.Size, cfg.BrightnessThreshold, cfg.AlphaThreshold, cfg.Invert)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.Empty() {
		return nil, fmt.Errorf("%w: empty image", ErrDecode)
	}

	pl := planResolution(imaging.Clone(img), cfg.Size)
	res.ProcessingSize = pl.processingSize
	res.Upscaled = pl.upscaled
	if pl.upscaled {
		tr.Logf("Upscaled for processing: %dx%d -> %dx%d (processing_size=%d)",
			b.Dx(), b.Dy(), pl.img.Bounds().Dx(), pl.img.Bounds().Dy(), pl.processingSize)
	}

	white, err := transform(pl.img, newAlphaRule(cfg), cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("transform: %w", err)
	}

	canvas := compose(white, cfg.Size)

	d, err := detect(canvas, cfg.AlphaThreshold, cfg.Workers, tr)
	if err != nil {
		return nil, fmt.Errorf("detect: %w", err)
	}

	out := canvas
	if d.found {
		out = normalize(canvas, d.crop, cfg.Size)
		res.Crop = d.crop
		res.Cropped = true
		res.Fallback = d.fallback
	}

	tr.Logf("Final result size: (%d, %d)", out.Bounds().Dx(), out.Bounds().Dy())
	Logger().Info("converted",
		"width", b.Dx(), "height", b.Dy(), "size", cfg.Size,
		"cropped", res.Cropped, "elapsed", time.Since(start).Round(time.Millisecond))

	res.Image = out
	res.Trace = tr.Lines()
	return res, nil
}
