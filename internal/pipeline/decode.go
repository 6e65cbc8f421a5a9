package pipeline

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode reads one raster image (png, jpeg, gif, bmp, tiff, webp) and
// returns it with the registered format name.
func Decode(r io.Reader) (image.Image, string, error) {
	if r == nil {
		return nil, "", ErrInputMissing
	}
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, format, nil
}

// ColorMode names the pixel layout of a decoded image, e.g. "RGBA" for
// PNGs with an alpha channel or "L" for 8-bit grayscale.
func ColorMode(img image.Image) string {
	switch img.(type) {
	case *image.NRGBA, *image.RGBA:
		return "RGBA"
	case *image.NRGBA64, *image.RGBA64:
		return "RGBA;16"
	case *image.YCbCr:
		return "RGB"
	case *image.NYCbCrA:
		return "RGBA"
	case *image.Gray:
		return "L"
	case *image.Gray16:
		return "I;16"
	case *image.Paletted:
		return "P"
	case *image.CMYK:
		return "CMYK"
	case *image.Alpha, *image.Alpha16:
		return "A"
	default:
		return fmt.Sprintf("%T", img)
	}
}
