package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Lokke/imagescale/internal/encoder"
	"github.com/Lokke/imagescale/internal/pipeline"
	"github.com/Lokke/imagescale/internal/server"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var (
	serveAddr        string
	serveStaticDir   string
	serveMaxSize     int
	serveMaxUploadMB int
	serveWorkers     int
	servePNGLevel    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP conversion service",
	Long: `Starts the HTTP service:

  POST /upload      multipart "image" + size, threshold, alpha_threshold, version
  GET  /debug-logs  trace of the most recent upload
  GET  /healthz     liveness

With --static-dir, the frontend is served from that directory.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", ":8724", "listen address")
	serveCmd.Flags().StringVar(&serveStaticDir, "static-dir", "", "frontend directory served at / (empty = none)")
	serveCmd.Flags().IntVar(&serveMaxSize, "max-size", pipeline.DefaultMaxSize, "largest accepted output size")
	serveCmd.Flags().IntVar(&serveMaxUploadMB, "max-upload-mb", 32, "request body limit in MiB")
	serveCmd.Flags().IntVarP(&serveWorkers, "workers", "w", 0, "per-request workers (0 = NumCPU)")
	serveCmd.Flags().StringVar(&servePNGLevel, "png-compression", "default", "png compression: default, best, fast, none")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	level, err := encoder.ParseLevel(servePNGLevel)
	if err != nil {
		return err
	}
	if serveMaxUploadMB <= 0 {
		return fmt.Errorf("--max-upload-mb must be positive, got %d", serveMaxUploadMB)
	}
	if serveStaticDir != "" {
		if info, err := os.Stat(serveStaticDir); err != nil || !info.IsDir() {
			return fmt.Errorf("static dir %s: not a directory", serveStaticDir)
		}
	}

	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if verbose {
		logger = pipeline.Logger()
	}

	logVerbose("addr:       %s", serveAddr)
	logVerbose("static dir: %q", serveStaticDir)
	logVerbose("max size:   %d, max upload: %d MiB", serveMaxSize, serveMaxUploadMB)

	s := server.New(server.Config{
		Workers:        serveWorkers,
		MaxSize:        serveMaxSize,
		StaticDir:      serveStaticDir,
		MaxUploadBytes: int64(serveMaxUploadMB) << 20,
		PNGLevel:       level,
		Logger:         logger,
	})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.ListenAndServe(ctx, serveAddr)
}
