package pipeline

import (
	"image"
	"image/color"
)

func solidImg(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// fillRect paints the half-open rectangle r.
func fillRect(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

// noiseImg is a deterministic colourful image with varying alpha.
func noiseImg(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	seed := uint32(2463534242)
	next := func() uint8 {
		seed ^= seed << 13
		seed ^= seed >> 17
		seed ^= seed << 5
		return uint8(seed)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: next(), G: next(), B: next(), A: next()})
		}
	}
	return img
}

// alphaBox returns the bounding box of pixels with alpha > cutoff.
func alphaBox(img *image.NRGBA, cutoff uint8) (Box, bool) {
	var acc bounds
	b := img.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if img.NRGBAAt(b.Min.X+x, b.Min.Y+y).A > cutoff {
				acc.add(x, y)
			}
		}
	}
	return acc.box, acc.found
}

func cfgWith(size, threshold, alpha int, invert bool) Config {
	return Config{
		Size:                size,
		BrightnessThreshold: threshold,
		AlphaThreshold:      alpha,
		Invert:              invert,
		Workers:             4,
	}
}
