//go:build ignore

// gen_fixtures creates small logo images for the E2E smoke test.
// Usage: go run gen_fixtures.go <output_dir>
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gen_fixtures <output_dir>")
		os.Exit(1)
	}
	dir := os.Args[1]
	os.MkdirAll(dir, 0o755)

	// White block on black (PNG, 300x200)
	writePNG(filepath.Join(dir, "block-on-black.png"), blockOn(300, 200, color.NRGBA{A: 255}))

	// White block on mid gray (JPEG, 240x240)
	writeJPEG(filepath.Join(dir, "block-on-gray.jpg"), blockOn(240, 240, color.NRGBA{128, 128, 128, 255}))

	// Dark ring on white, the inverted preset's input (PNG, 200x200)
	writePNG(filepath.Join(dir, "ring-on-white.png"), ring(200))

	// Logo with its own transparency (PNG, 120x80)
	writePNG(filepath.Join(dir, "alpha-logo.png"), alphaLogo(120, 80))

	// Uniform dark image, no bright content (PNG, 64x64)
	writePNG(filepath.Join(dir, "empty.png"), solid(64, 64, color.NRGBA{10, 10, 10, 255}))

	fmt.Fprintf(os.Stderr, "[gen_fixtures] created 5 fixtures in %s\n", dir)
}

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// blockOn paints a white rectangle over the middle half of a solid bg.
func blockOn(w, h int, bg color.NRGBA) *image.NRGBA {
	img := solid(w, h, bg)
	for y := h / 4; y < h*3/4; y++ {
		for x := w / 4; x < w*3/4; x++ {
			img.SetNRGBA(x, y, color.NRGBA{255, 255, 255, 255})
		}
	}
	return img
}

func ring(side int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, side, side))
	c := side / 2
	outer, inner := side*2/5, side/4
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			dx, dy := x-c, y-c
			d := dx*dx + dy*dy
			px := color.NRGBA{255, 255, 255, 255}
			if d <= outer*outer && d >= inner*inner {
				px = color.NRGBA{20, 20, 20, 255}
			}
			img.SetNRGBA(x, y, px)
		}
	}
	return img
}

func alphaLogo(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var a uint8
			if x > w/5 && x < w*4/5 && y > h/5 && y < h*4/5 {
				a = uint8(128 + x*127/w)
			}
			img.SetNRGBA(x, y, color.NRGBA{240, 240, 240, a})
		}
	}
	return img
}

func writePNG(path string, img image.Image) {
	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create %s: %v\n", path, err)
		os.Exit(1)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		fmt.Fprintf(os.Stderr, "encode %s: %v\n", path, err)
		os.Exit(1)
	}
}

func writeJPEG(path string, img image.Image) {
	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create %s: %v\n", path, err)
		os.Exit(1)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 95}); err != nil {
		fmt.Fprintf(os.Stderr, "encode %s: %v\n", path, err)
		os.Exit(1)
	}
}
