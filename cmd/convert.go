package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Lokke/imagescale/internal/encoder"
	"github.com/Lokke/imagescale/internal/hasher"
	"github.com/Lokke/imagescale/internal/pipeline"
	"github.com/Lokke/imagescale/internal/preset"
	"github.com/Lokke/imagescale/internal/report"
	"github.com/spf13/cobra"
)

var (
	convertOut            string
	convertPreset         string
	convertSize           int
	convertThreshold      int
	convertAlphaThreshold int
	convertWorkers        int
	convertReport         string
	convertPNGLevel       string
)

var convertCmd = &cobra.Command{
	Use:   "convert <input_image>",
	Short: "Convert one image into a square white silhouette PNG",
	Long: `Decodes the input (png, jpg, gif, bmp, tiff, webp), turns bright pixels
white and dark pixels transparent, crops to the bright content with 5px
padding and writes a size×size PNG.

Without --out the file is named after the preset, e.g. band_logo_300x300.png,
next to the input.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	f := convertCmd.Flags()
	f.StringVarP(&convertOut, "out", "o", "", "output PNG path")
	f.StringVarP(&convertPreset, "preset", "p", preset.Normal, "preset: "+strings.Join(preset.Names(), ", "))
	f.IntVarP(&convertSize, "size", "s", pipeline.DefaultSize, "output side in pixels (overrides preset)")
	f.IntVarP(&convertThreshold, "threshold", "t", pipeline.DefaultThreshold, "brightness threshold 0-255 (overrides preset)")
	f.IntVarP(&convertAlphaThreshold, "alpha-threshold", "a", pipeline.DefaultAlphaThreshold, "alpha cutoff 0-255 (overrides preset)")
	f.IntVarP(&convertWorkers, "workers", "w", 0, "parallel workers (0 = NumCPU)")
	f.StringVar(&convertReport, "report", "", "write a JSON report to this path")
	f.StringVar(&convertPNGLevel, "png-compression", "best", "png compression: default, best, fast, none")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	start := time.Now()

	prof, ok := preset.Get(convertPreset)
	if !ok {
		return fmt.Errorf("unknown preset %q (want %s)", convertPreset, strings.Join(preset.Names(), ", "))
	}
	level, err := encoder.ParseLevel(convertPNGLevel)
	if err != nil {
		return err
	}

	cfg := prof.Config()
	if cmd.Flags().Changed("size") {
		cfg.Size = convertSize
	}
	if cmd.Flags().Changed("threshold") {
		cfg.BrightnessThreshold = convertThreshold
	}
	if cmd.Flags().Changed("alpha-threshold") {
		cfg.AlphaThreshold = convertAlphaThreshold
	}
	cfg.Workers = convertWorkers
	cfg.MaxSize = -1

	outPath := convertOut
	if outPath == "" {
		outPath = filepath.Join(filepath.Dir(inputPath), prof.Filename(cfg.Size))
	}

	logVerbose("input:  %s", inputPath)
	logVerbose("output: %s", outPath)
	logVerbose("preset: %s (size=%d, threshold=%d, alpha_threshold=%d, invert=%t)",
		prof.Name, cfg.Size, cfg.BrightnessThreshold, cfg.AlphaThreshold, cfg.Invert)

	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", inputPath, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", inputPath, err)
	}

	res, err := pipeline.New(cfg).Process(f)
	if err != nil {
		for _, line := range pipeline.TraceOf(err) {
			fmt.Fprintf(os.Stderr, "  %s\n", line)
		}
		return fmt.Errorf("convert %s: %w", inputPath, err)
	}

	data, err := (&encoder.PNGEncoder{Level: level}).Encode(res.Image)
	if err != nil {
		return fmt.Errorf("encode %s: %w", outPath, err)
	}
	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}

	hash := hasher.ContentHash(data, 16)
	if convertReport != "" {
		r := report.New(prof.Name, cfg, res)
		r.Input.Path = filepath.ToSlash(inputPath)
		r.Input.Size = info.Size()
		r.Output.Path = filepath.ToSlash(outPath)
		r.Output.Size = int64(len(data))
		r.Output.Hash = hash
		if err := report.WriteJSON(r, convertReport); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}

	printConvertReport(cmd, inputPath, outPath, info.Size(), int64(len(data)), hash, res, time.Since(start))
	return nil
}

func printConvertReport(cmd *cobra.Command, in, out string, inBytes, outBytes int64, hash string, res *pipeline.Result, elapsed time.Duration) {
	w := cmd.OutOrStdout()
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Input:    %s  (%dx%d %s, %s)\n", in,
		res.Source.Width, res.Source.Height, res.Source.Mode, formatBytes(inBytes))
	fmt.Fprintf(w, "  Output:   %s  (%dx%d, %s, %s)\n", out,
		res.Image.Bounds().Dx(), res.Image.Bounds().Dy(), formatBytes(outBytes), hash[:8])
	if res.Cropped {
		c := res.Crop
		note := ""
		if res.Fallback {
			note = "  (fallback threshold)"
		}
		fmt.Fprintf(w, "  Crop:     (%d, %d, %d, %d)%s\n", c.Min.X, c.Min.Y, c.Max.X, c.Max.Y, note)
	} else {
		fmt.Fprintln(w, "  Crop:     none (no bright content found)")
	}
	if res.Upscaled {
		fmt.Fprintf(w, "  Upscaled: processing at %dpx\n", res.ProcessingSize)
	}
	fmt.Fprintf(w, "  Time:     %s\n", elapsed.Round(time.Millisecond))
	fmt.Fprintln(w)
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
