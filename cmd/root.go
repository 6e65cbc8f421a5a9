package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/Lokke/imagescale/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	version = "0.3.0"
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "imagescale",
	Short: "Turn any logo into a square white silhouette on transparency",
	Long: `imagescale — converts source art of any size, aspect ratio and background
into a normalized white-on-transparent PNG: bright pixels stay opaque, dark
pixels fade out, and the result is cropped to its visible content and
centered on a fixed-size square.

Run it as an HTTP service (serve) or one file at a time (convert).`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		if verbose {
			pipeline.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			})))
		}
	},
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "[imagescale] error: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"imagescale %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

// logVerbose prints a message only when --verbose is set.
func logVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[imagescale] "+format+"\n", args...)
	}
}
