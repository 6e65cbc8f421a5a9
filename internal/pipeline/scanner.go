package pipeline

import (
	"fmt"
	"image"
	"math"
)

const (
	// FallbackBrightness is the fixed cutoff of the second detection pass.
	FallbackBrightness = 200
	// opacityCutoff: only pixels more opaque than this count as content.
	opacityCutoff = 100
	// cropPadding is added around the detected content on every side.
	cropPadding = 5
)

// Box is an inclusive pixel bounding box.
type Box struct {
	MinX, MinY, MaxX, MaxY int
}

func (b Box) String() string {
	return fmt.Sprintf("(%d, %d, %d, %d)", b.MinX, b.MinY, b.MaxX, b.MaxY)
}

// Rect returns b as a half-open rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.MinX, b.MinY, b.MaxX+1, b.MaxY+1)
}

// BBoxBrightness maps an alpha threshold in 0–100 onto the 150–240
// brightness cutoff of the first detection pass. Inputs outside 0–100
// are clamped first.
func BBoxBrightness(alphaThreshold int) int {
	a := min(max(alphaThreshold, 0), 100)
	return int(math.Round(150 + float64(a)*0.9))
}

// bounds accumulates min/max coordinates of qualifying pixels. merge is
// commutative and associative, so band order does not matter.
type bounds struct {
	found bool
	box   Box
}

func (b *bounds) add(x, y int) {
	if !b.found {
		b.found = true
		b.box = Box{MinX: x, MinY: y, MaxX: x, MaxY: y}
		return
	}
	b.box.MinX = min(b.box.MinX, x)
	b.box.MinY = min(b.box.MinY, y)
	b.box.MaxX = max(b.box.MaxX, x)
	b.box.MaxY = max(b.box.MaxY, y)
}

func (b bounds) merge(o bounds) bounds {
	switch {
	case !o.found:
		return b
	case !b.found:
		return o
	}
	return bounds{found: true, box: Box{
		MinX: min(b.box.MinX, o.box.MinX),
		MinY: min(b.box.MinY, o.box.MinY),
		MaxX: max(b.box.MaxX, o.box.MaxX),
		MaxY: max(b.box.MaxY, o.box.MaxY),
	}}
}

// scanBright finds the bounding box of pixels brighter than cutoff and
// more opaque than opacityCutoff.
func scanBright(img *image.NRGBA, cutoff, workers int) (Box, bool, error) {
	r := img.Bounds()
	w, h := r.Dx(), r.Dy()
	bands := rowBands(h, workers)
	parts := make([]bounds, len(bands))

	err := runBands(bands, workers, func(i int, band rowBand) {
		var acc bounds
		for y := band.y0; y < band.y1; y++ {
			off := img.PixOffset(r.Min.X, r.Min.Y+y)
			for x := 0; x < w; x++ {
				p := img.Pix[off : off+4 : off+4]
				if int(Luma(p[0], p[1], p[2])) > cutoff && p[3] > opacityCutoff {
					acc.add(x, y)
				}
				off += 4
			}
		}
		parts[i] = acc
	})
	if err != nil {
		return Box{}, false, err
	}

	var total bounds
	for _, p := range parts {
		total = total.merge(p)
	}
	return total.box, total.found, nil
}

// detection is the outcome of the smart bounding-box detector.
type detection struct {
	crop     image.Rectangle
	found    bool
	fallback bool
}

// detect runs the two-pass smart bounding-box search on the provisional
// canvas and returns the padded crop rectangle. found is false when
// neither pass saw content; callers then keep the canvas as is.
func detect(canvas *image.NRGBA, alphaThreshold, workers int, tr *Trace) (detection, error) {
	cutoff := BBoxBrightness(alphaThreshold)
	tr.Logf("Mapped alpha_threshold %d to brightness_threshold %d", alphaThreshold, cutoff)
	tr.Logf("Applying smart bounding box with brightness_threshold=%d", cutoff)

	box, ok, err := scanBright(canvas, cutoff, workers)
	if err != nil {
		return detection{}, err
	}

	var d detection
	if !ok {
		tr.Logf("No pixels found above brightness %d, trying fallback with %d", cutoff, FallbackBrightness)
		// A stricter cutoff cannot find what a looser one missed.
		if FallbackBrightness < cutoff {
			box, ok, err = scanBright(canvas, FallbackBrightness, workers)
			if err != nil {
				return detection{}, err
			}
		}
		if !ok {
			tr.Logf("Even fallback threshold failed, returning original")
			return d, nil
		}
		tr.Logf("Fallback successful with threshold %d", FallbackBrightness)
		d.fallback = true
	}

	d.found = true
	d.crop = box.Rect().Inset(-cropPadding).Intersect(canvas.Bounds())
	tr.Logf("Bright pixel bounds: %s", box)
	tr.Logf("Crop with padding: (%d, %d, %d, %d)", d.crop.Min.X, d.crop.Min.Y, d.crop.Max.X, d.crop.Max.Y)
	return d, nil
}
