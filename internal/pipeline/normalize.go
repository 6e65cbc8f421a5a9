package pipeline

import (
	"image"

	"github.com/disintegration/imaging"
)

// normalize crops canvas to crop, pads the result to a centered square
// and resamples it to exactly size×size.
func normalize(canvas *image.NRGBA, crop image.Rectangle, size int) *image.NRGBA {
	cropped := imaging.Crop(canvas, crop)
	cw, ch := cropped.Bounds().Dx(), cropped.Bounds().Dy()

	if cw != ch {
		side := max(cw, ch)
		cropped = imaging.Paste(newCanvas(side, side), cropped, centerOffset(side, side, cw, ch))
	}

	out := imaging.Resize(cropped, size, size, imaging.Lanczos)
	whiten(out)
	return out
}
