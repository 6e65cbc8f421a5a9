package pipeline

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// clearWhite is the fill of every fresh canvas: white at zero opacity, so
// that every pixel of every stage output stays pure white.
var clearWhite = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0}

func newCanvas(w, h int) *image.NRGBA {
	return imaging.New(w, h, clearWhite)
}

// fitSize returns the aspect-preserving dimensions of a w×h image fitted
// inside a size×size square. The longer side is exactly size.
func fitSize(w, h, size int) (int, int) {
	if w >= h {
		return size, max(1, min(size, int(float64(h)*float64(size)/float64(w))))
	}
	return max(1, min(size, int(float64(w)*float64(size)/float64(h)))), size
}

// centerOffset places an inner w×h rectangle centered in an outer ow×oh
// one, rounding toward the top-left.
func centerOffset(ow, oh, w, h int) image.Point {
	return image.Pt((ow-w)/2, (oh-h)/2)
}

// compose fits img onto a transparent size×size canvas, centered.
func compose(img *image.NRGBA, size int) *image.NRGBA {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	nw, nh := fitSize(w, h, size)

	resized := img
	if nw != w || nh != h {
		resized = imaging.Resize(img, nw, nh, imaging.Lanczos)
	}

	canvas := imaging.Paste(newCanvas(size, size), resized, centerOffset(size, size, nw, nh))
	whiten(canvas)
	return canvas
}

// whiten forces RGB to white everywhere, undoing resampler rounding.
func whiten(img *image.NRGBA) {
	for i := 0; i+3 < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2] = 0xff, 0xff, 0xff
	}
}
