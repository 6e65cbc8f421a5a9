package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"

	"github.com/disintegration/imaging"
)

// centerBlock is a 100x100 image with a 40x40 block at (30,30).
func centerBlock(bg, block color.NRGBA) *image.NRGBA {
	img := solidImg(100, 100, bg)
	fillRect(img, image.Rect(30, 30, 70, 70), block)
	return img
}

func assertSilhouette(t *testing.T, img *image.NRGBA, size int) {
	t.Helper()
	if img.Bounds() != image.Rect(0, 0, size, size) {
		t.Fatalf("bounds: got %v, want %dx%d", img.Bounds(), size, size)
	}
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 255 || img.Pix[i+1] != 255 || img.Pix[i+2] != 255 {
			t.Fatalf("pixel %d RGB %v, want white", i/4, img.Pix[i:i+3])
		}
	}
}

func TestRun_WhiteBlockOnBlack(t *testing.T) {
	src := centerBlock(color.NRGBA{0, 0, 0, 255}, color.NRGBA{255, 255, 255, 255})
	res, err := New(cfgWith(100, 50, 30, false)).Run(src)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	assertSilhouette(t, res.Image, 100)

	if !res.Cropped || res.Fallback {
		t.Fatalf("cropped=%t fallback=%t", res.Cropped, res.Fallback)
	}
	if !res.Upscaled || res.ProcessingSize != 1024 {
		t.Errorf("upscaled=%t processing_size=%d", res.Upscaled, res.ProcessingSize)
	}
	// Block 30..69 plus 5px padding, within a pixel of resampling slack.
	if c := res.Crop; c.Min.X < 23 || c.Min.X > 26 || c.Max.X < 74 || c.Max.X > 77 {
		t.Errorf("crop: %v", c)
	}

	if a := res.Image.NRGBAAt(50, 50).A; a != 255 {
		t.Errorf("center alpha: got %d, want 255", a)
	}
	for _, p := range []image.Point{{0, 0}, {99, 0}, {0, 99}, {99, 99}} {
		if a := res.Image.NRGBAAt(p.X, p.Y).A; a != 0 {
			t.Errorf("alpha at %v: got %d, want 0", p, a)
		}
	}
	if a := res.Image.NRGBAAt(2, 50).A; a > 8 {
		t.Errorf("padding alpha: got %d", a)
	}

	// Content re-centered with padding scaled by 2.
	box, ok := alphaBox(res.Image, opacityCutoff)
	if !ok {
		t.Fatal("no content in output")
	}
	for _, v := range []int{box.MinX, box.MinY} {
		if v < 7 || v > 13 {
			t.Errorf("content starts at %d: box %v", v, box)
		}
	}
	for _, v := range []int{box.MaxX, box.MaxY} {
		if v < 86 || v > 92 {
			t.Errorf("content ends at %d: box %v", v, box)
		}
	}
}

func TestRun_GrayBackgroundIsBright(t *testing.T) {
	// Gray 128 is above a threshold of 50, so it keeps full opacity.
	src := centerBlock(color.NRGBA{128, 128, 128, 255}, color.NRGBA{255, 255, 255, 255})
	res, err := New(cfgWith(100, 50, 30, false)).Run(src)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	assertSilhouette(t, res.Image, 100)
	if res.Crop != image.Rect(0, 0, 100, 100) {
		t.Errorf("crop: %v", res.Crop)
	}
	for i := 3; i < len(res.Image.Pix); i += 4 {
		if res.Image.Pix[i] != 255 {
			t.Fatalf("pixel %d alpha %d, want 255", i/4, res.Image.Pix[i])
		}
	}
}

func TestRun_GrayBackgroundInverted(t *testing.T) {
	src := centerBlock(color.NRGBA{128, 128, 128, 255}, color.NRGBA{255, 255, 255, 255})

	// Decision table on the raw pixels: background 127 stays, block 0 goes.
	white, err := transform(src, newAlphaRule(cfgWith(100, 50, 30, true)), 2)
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if a := white.NRGBAAt(5, 5).A; a != 255 {
		t.Errorf("background alpha: got %d, want 255", a)
	}
	if a := white.NRGBAAt(50, 50).A; a != 0 {
		t.Errorf("block alpha: got %d, want 0", a)
	}

	res, err := New(cfgWith(100, 50, 30, true)).Run(src)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	assertSilhouette(t, res.Image, 100)
	if a := res.Image.NRGBAAt(50, 50).A; a != 0 {
		t.Errorf("hole alpha: got %d, want 0", a)
	}
	if a := res.Image.NRGBAAt(2, 2).A; a != 255 {
		t.Errorf("ring alpha: got %d, want 255", a)
	}
}

func TestRun_OutputShape(t *testing.T) {
	sources := map[string]*image.NRGBA{
		"1x1":   solidImg(1, 1, color.NRGBA{255, 255, 255, 255}),
		"3x500": solidImg(3, 500, color.NRGBA{200, 10, 10, 255}),
		"500x3": solidImg(500, 3, color.NRGBA{10, 200, 10, 255}),
		"noise": noiseImg(64, 64),
	}
	for name, src := range sources {
		for _, size := range []int{1, 7, 64, 300} {
			t.Run(fmt.Sprintf("%s/%d", name, size), func(t *testing.T) {
				res, err := New(cfgWith(size, 50, 30, false)).Run(src)
				if err != nil {
					t.Fatalf("run: %v", err)
				}
				assertSilhouette(t, res.Image, size)
			})
		}
	}
}

func TestRun_NoContentKeepsProvisionalCanvas(t *testing.T) {
	// Gray 40 under threshold 200 maps to alpha 51: visible, not content.
	src := solidImg(100, 60, color.NRGBA{40, 40, 40, 255})
	cfg := cfgWith(80, 200, 30, false)

	res, err := New(cfg).Run(src)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Cropped {
		t.Fatalf("unexpected crop %v", res.Crop)
	}

	pl := planResolution(imaging.Clone(src), cfg.Size)
	white, err := transform(pl.img, newAlphaRule(cfg), cfg.Workers)
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	want := compose(white, cfg.Size)
	if !bytes.Equal(res.Image.Pix, want.Pix) {
		t.Error("output differs from the provisional canvas")
	}
	if a := res.Image.NRGBAAt(40, 40).A; a != 51 {
		t.Errorf("content alpha: got %d, want 51", a)
	}
	if a := res.Image.NRGBAAt(40, 2).A; a != 0 {
		t.Errorf("letterbox alpha: got %d, want 0", a)
	}

	last := res.Trace[len(res.Trace)-1]
	if last != "Final result size: (80, 80)" {
		t.Errorf("last trace line: %q", last)
	}
}

func TestRun_UniformGrayAllTransparent(t *testing.T) {
	src := solidImg(120, 120, color.NRGBA{40, 40, 40, 255})
	res, err := New(cfgWith(50, 200, 60, false)).Run(src)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	assertSilhouette(t, res.Image, 50)
	for i := 3; i < len(res.Image.Pix); i += 4 {
		if res.Image.Pix[i] != 0 {
			t.Fatalf("pixel %d alpha %d, want 0", i/4, res.Image.Pix[i])
		}
	}
}

func TestRun_TraceOrder(t *testing.T) {
	src := centerBlock(color.NRGBA{0, 0, 0, 255}, color.NRGBA{255, 255, 255, 255})
	res, err := New(cfgWith(100, 50, 30, false)).Run(src)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	prefixes := []string{
		"Original image size: (100, 100), mode: RGBA",
		"Parameters - size=100, threshold=50, alpha_threshold=30, invert=false",
		"Upscaled for processing: 100x100 -> 1024x1024 (processing_size=1024)",
		"Mapped alpha_threshold 30 to brightness_threshold 177",
		"Applying smart bounding box with brightness_threshold=177",
		"Bright pixel bounds: (",
		"Crop with padding: (",
		"Final result size: (100, 100)",
	}
	if len(res.Trace) != len(prefixes) {
		t.Fatalf("trace has %d lines:\n%s", len(res.Trace), strings.Join(res.Trace, "\n"))
	}
	for i, p := range prefixes {
		if !strings.HasPrefix(res.Trace[i], p) {
			t.Errorf("trace[%d] = %q, want prefix %q", i, res.Trace[i], p)
		}
	}
}

func TestRun_Errors(t *testing.T) {
	t.Run("nil image", func(t *testing.T) {
		_, err := New(cfgWith(100, 50, 30, false)).Run(nil)
		if !errors.Is(err, ErrInputMissing) {
			t.Fatalf("got %v, want ErrInputMissing", err)
		}
		if tr := TraceOf(err); len(tr) != 1 || !strings.HasPrefix(tr[0], "ERROR: ") {
			t.Errorf("trace: %q", tr)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		for _, cfg := range []Config{
			cfgWith(0, 50, 30, false),
			cfgWith(-1, 50, 30, false),
			cfgWith(DefaultMaxSize+1, 50, 30, false),
			cfgWith(100, 256, 30, false),
			cfgWith(100, 50, -1, false),
		} {
			_, err := New(cfg).Run(solidImg(4, 4, color.NRGBA{A: 255}))
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("%+v: got %v, want ErrInvalidConfig", cfg, err)
				continue
			}
			tr := TraceOf(err)
			if len(tr) != 3 || !strings.HasPrefix(tr[1], "Parameters - ") {
				t.Errorf("%+v: trace %q", cfg, tr)
			}
		}
	})

	t.Run("no size limit", func(t *testing.T) {
		cfg := cfgWith(DefaultMaxSize+1, 50, 30, false)
		cfg.MaxSize = -1
		if err := cfg.Validate(); err != nil {
			t.Errorf("validate: %v", err)
		}
	})
}

func TestProcess(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, noiseImg(30, 20)); err != nil {
		t.Fatalf("encode: %v", err)
	}

	res, err := New(cfgWith(32, 50, 30, false)).Process(&buf)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if res.Source.Format != "png" || res.Source.Width != 30 || res.Source.Height != 20 {
		t.Errorf("source: %+v", res.Source)
	}
	assertSilhouette(t, res.Image, 32)

	_, err = New(cfgWith(32, 50, 30, false)).Process(strings.NewReader("not an image"))
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("got %v, want ErrDecode", err)
	}
	if tr := TraceOf(err); len(tr) != 1 {
		t.Errorf("decode trace: %q", tr)
	}
}

func TestRun_ConcurrentCallsIsolated(t *testing.T) {
	src := noiseImg(50, 50)
	p := New(cfgWith(40, 50, 30, false))
	want, err := p.Run(src)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := p.Run(src)
			if err != nil {
				errs <- err
				return
			}
			if !bytes.Equal(got.Image.Pix, want.Image.Pix) {
				errs <- errors.New("image differs between concurrent runs")
			}
			if strings.Join(got.Trace, "\n") != strings.Join(want.Trace, "\n") {
				errs <- fmt.Errorf("trace differs: %q", got.Trace)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestColorMode(t *testing.T) {
	tests := []struct {
		img  image.Image
		want string
	}{
		{image.NewNRGBA(image.Rect(0, 0, 1, 1)), "RGBA"},
		{image.NewGray(image.Rect(0, 0, 1, 1)), "L"},
		{image.NewYCbCr(image.Rect(0, 0, 2, 2), image.YCbCrSubsampleRatio420), "RGB"},
		{image.NewPaletted(image.Rect(0, 0, 1, 1), color.Palette{color.Black}), "P"},
	}
	for _, tt := range tests {
		if got := ColorMode(tt.img); got != tt.want {
			t.Errorf("ColorMode(%T) = %q, want %q", tt.img, got, tt.want)
		}
	}
}
