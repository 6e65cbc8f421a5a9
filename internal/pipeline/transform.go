package pipeline

import (
	"image"
	"math"
)

// Luma returns the ITU-R 601-2 brightness of an RGB triple, computed in
// 16.16 fixed point (the weights sum to exactly 1<<16).
func Luma(r, g, b uint8) uint8 {
	return uint8((uint32(r)*19595 + uint32(g)*38470 + uint32(b)*7471 + 1<<15) >> 16)
}

// alphaRule is the per-pixel decision table for one Config.
type alphaRule struct {
	brightness int
	cutoff     int
	invert     bool
	// dark[v] is the gradient alpha for a pixel of brightness v at or
	// below the brightness threshold.
	dark [256]uint8
}

func newAlphaRule(cfg Config) *alphaRule {
	r := &alphaRule{
		brightness: cfg.BrightnessThreshold,
		cutoff:     cfg.AlphaThreshold,
		invert:     cfg.Invert,
	}
	for v := 0; v <= 255 && v <= r.brightness; v++ {
		r.dark[v] = darkAlpha(v, r.brightness)
	}
	return r
}

// darkAlpha maps a brightness at or below threshold onto 0–255.
func darkAlpha(v, threshold int) uint8 {
	if threshold <= 0 {
		return 0
	}
	a := math.Round(float64(v) / float64(threshold) * 255)
	return uint8(min(max(a, 0), 255))
}

// apply returns the output alpha of one source pixel.
func (r *alphaRule) apply(red, green, blue, alpha uint8) uint8 {
	orig := int(alpha)
	if orig <= r.cutoff {
		return 0
	}

	v := int(Luma(red, green, blue))
	if r.invert {
		v = 255 - v
	}

	candidate := orig
	if v <= r.brightness {
		candidate = min(int(r.dark[v]), orig)
	}
	if candidate <= r.cutoff {
		return 0
	}
	return uint8(candidate)
}

// transform maps every pixel of src to white with an alpha chosen by rule.
// Rows are processed in parallel bands; each band writes disjoint rows.
func transform(src *image.NRGBA, rule *alphaRule, workers int) (*image.NRGBA, error) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))

	err := runBands(rowBands(h, workers), workers, func(_ int, band rowBand) {
		for y := band.y0; y < band.y1; y++ {
			si := src.PixOffset(b.Min.X, b.Min.Y+y)
			di := dst.PixOffset(0, y)
			for x := 0; x < w; x++ {
				s := src.Pix[si : si+4 : si+4]
				d := dst.Pix[di : di+4 : di+4]
				d[0], d[1], d[2] = 0xff, 0xff, 0xff
				d[3] = rule.apply(s[0], s[1], s[2], s[3])
				si += 4
				di += 4
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return dst, nil
}
