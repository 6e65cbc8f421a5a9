package cmd

import (
	"fmt"
	"image"
	"io"
	"os"

	"github.com/Lokke/imagescale/internal/pipeline"
	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"
)

var statsAlphaThreshold int

var statsCmd = &cobra.Command{
	Use:   "stats <image>",
	Short: "Show the alpha distribution and content bounds of an image",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().IntVarP(&statsAlphaThreshold, "alpha-threshold", "a", pipeline.DefaultAlphaThreshold, "alpha above this counts as content")
	rootCmd.AddCommand(statsCmd)
}

// alphaStats summarizes the alpha channel of an image.
type alphaStats struct {
	Width, Height int
	Hist          [256]int
	Transparent   int // alpha == 0
	Partial       int
	Opaque        int // alpha == 255
	Mean, StdDev  float64
	Median        float64
	Threshold     int

	// Content is the box of alpha > Threshold, Visible of alpha > 0.
	Content, Visible       pipeline.Box
	HasContent, HasVisible bool
}

func computeAlphaStats(img *image.NRGBA, threshold int) alphaStats {
	b := img.Bounds()
	s := alphaStats{Width: b.Dx(), Height: b.Dy(), Threshold: threshold}

	var content, visible boxAcc
	for y := 0; y < s.Height; y++ {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < s.Width; x++ {
			a := img.Pix[off+3]
			s.Hist[a]++
			if int(a) > threshold {
				content.add(x, y)
			}
			if a > 0 {
				visible.add(x, y)
			}
			off += 4
		}
	}
	s.Transparent = s.Hist[0]
	s.Opaque = s.Hist[255]
	s.Partial = s.Width*s.Height - s.Transparent - s.Opaque
	s.Content, s.HasContent = content.box, content.found
	s.Visible, s.HasVisible = visible.box, visible.found

	if s.Width*s.Height > 0 {
		values := make([]float64, 256)
		weights := make([]float64, 256)
		for i, n := range s.Hist {
			values[i] = float64(i)
			weights[i] = float64(n)
		}
		s.Mean, s.StdDev = stat.MeanStdDev(values, weights)
		s.Median = stat.Quantile(0.5, stat.Empirical, values, weights)
	}
	return s
}

type boxAcc struct {
	found bool
	box   pipeline.Box
}

func (a *boxAcc) add(x, y int) {
	if !a.found {
		a.found = true
		a.box = pipeline.Box{MinX: x, MinY: y, MaxX: x, MaxY: y}
		return
	}
	a.box.MinX = min(a.box.MinX, x)
	a.box.MinY = min(a.box.MinY, y)
	a.box.MaxX = max(a.box.MaxX, x)
	a.box.MaxY = max(a.box.MaxY, y)
}

func loadNRGBA(path string) (*image.NRGBA, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	img, _, err := pipeline.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	return imaging.Clone(img), pipeline.ColorMode(img), nil
}

func runStats(cmd *cobra.Command, args []string) error {
	img, mode, err := loadNRGBA(args[0])
	if err != nil {
		return err
	}
	printStats(cmd.OutOrStdout(), args[0], mode, computeAlphaStats(img, statsAlphaThreshold))
	return nil
}

func printStats(w io.Writer, path, mode string, s alphaStats) {
	total := s.Width * s.Height
	pct := func(n int) float64 {
		if total == 0 {
			return 0
		}
		return float64(n) / float64(total) * 100
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Image:        %s (%dx%d, %s)\n", path, s.Width, s.Height, mode)
	fmt.Fprintf(w, "  Transparent:  %7d  (%.1f%%)\n", s.Transparent, pct(s.Transparent))
	fmt.Fprintf(w, "  Partial:      %7d  (%.1f%%)\n", s.Partial, pct(s.Partial))
	fmt.Fprintf(w, "  Opaque:       %7d  (%.1f%%)\n", s.Opaque, pct(s.Opaque))
	fmt.Fprintf(w, "  Alpha:        mean %.1f, stddev %.1f, median %.0f\n", s.Mean, s.StdDev, s.Median)
	fmt.Fprintln(w)

	// Few distinct values are listed exactly, otherwise in 32-wide buckets.
	distinct := 0
	for _, n := range s.Hist {
		if n > 0 {
			distinct++
		}
	}
	fmt.Fprintln(w, "  Alpha value distribution:")
	if distinct <= 16 {
		for a, n := range s.Hist {
			if n > 0 {
				fmt.Fprintf(w, "    Alpha %3d: %d pixels\n", a, n)
			}
		}
	} else {
		for lo := 0; lo < 256; lo += 32 {
			n := 0
			for a := lo; a < lo+32; a++ {
				n += s.Hist[a]
			}
			fmt.Fprintf(w, "    Alpha %3d-%3d: %d pixels\n", lo, lo+31, n)
		}
	}
	fmt.Fprintln(w)

	if s.HasContent {
		fmt.Fprintf(w, "  Content box (alpha > %d): %s\n", s.Threshold, s.Content)
	} else {
		fmt.Fprintf(w, "  Content box (alpha > %d): none\n", s.Threshold)
	}
	if s.HasVisible {
		fmt.Fprintf(w, "  Visible box (alpha > 0):  %s\n", s.Visible)
	} else {
		fmt.Fprintln(w, "  Visible box (alpha > 0):  none")
	}
	fmt.Fprintln(w)
}
