package pipeline

import (
	"image"

	"github.com/disintegration/imaging"
)

const (
	// minProcessingSize is the smallest working resolution (longest side).
	minProcessingSize = 1024
	// upscaleRatio: sources whose longest side is below this fraction of
	// the processing size get upscaled before the transform pass.
	upscaleRatio = 0.8
)

// ProcessingSize returns the working resolution for a w×h source rendered
// to a size×size output.
func ProcessingSize(w, h, size int) int {
	return max(2*size, w, h, minProcessingSize)
}

// plan is the outcome of resolution planning.
type plan struct {
	img            *image.NRGBA
	processingSize int
	upscaled       bool
}

// planResolution upscales small sources with Lanczos so large outputs are
// not pixelated. It never downsamples.
func planResolution(img *image.NRGBA, size int) plan {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	longest := max(w, h)
	ps := ProcessingSize(w, h, size)
	if float64(longest) >= upscaleRatio*float64(ps) {
		return plan{img: img, processingSize: ps}
	}

	scale := float64(ps) / float64(longest)
	nw := max(1, int(float64(w)*scale))
	nh := max(1, int(float64(h)*scale))
	return plan{
		img:            imaging.Resize(img, nw, nh, imaging.Lanczos),
		processingSize: ps,
		upscaled:       true,
	}
}
