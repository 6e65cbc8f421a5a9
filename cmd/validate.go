package cmd

import (
	"fmt"
	"image"

	"github.com/spf13/cobra"
)

var validateSize int

var validateCmd = &cobra.Command{
	Use:   "validate <silhouette.png>",
	Short: "Check that an image is a square white-on-transparent silhouette",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().IntVarP(&validateSize, "size", "s", 0, "required side in pixels (0 = any)")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	img, _, err := loadNRGBA(args[0])
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	errs := validateSilhouette(img, validateSize)
	if len(errs) == 0 {
		fmt.Fprintln(w, "  ✓ Silhouette is valid")
		fmt.Fprintf(w, "  ✓ %dx%d, all pixels white\n", img.Bounds().Dx(), img.Bounds().Dy())
		return nil
	}

	fmt.Fprintf(w, "  ✗ Silhouette has %d error(s):\n", len(errs))
	for _, e := range errs {
		fmt.Fprintf(w, "    • %s\n", e)
	}
	return fmt.Errorf("validation failed with %d errors", len(errs))
}

// maxPixelErrors caps per-pixel messages; the rest are summarized.
const maxPixelErrors = 5

func validateSilhouette(img *image.NRGBA, size int) []string {
	var errs []string
	b := img.Bounds()

	if b.Dx() != b.Dy() {
		errs = append(errs, fmt.Sprintf("not square: %dx%d", b.Dx(), b.Dy()))
	}
	if size > 0 && (b.Dx() != size || b.Dy() != size) {
		errs = append(errs, fmt.Sprintf("size mismatch: got %dx%d, want %dx%d", b.Dx(), b.Dy(), size, size))
	}

	bad := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			if c.R == 0xff && c.G == 0xff && c.B == 0xff {
				continue
			}
			bad++
			if bad <= maxPixelErrors {
				errs = append(errs, fmt.Sprintf("pixel (%d, %d): rgb(%d, %d, %d) is not white", x, y, c.R, c.G, c.B))
			}
		}
	}
	if bad > maxPixelErrors {
		errs = append(errs, fmt.Sprintf("%d more non-white pixels", bad-maxPixelErrors))
	}
	return errs
}
