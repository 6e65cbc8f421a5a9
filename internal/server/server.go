// Package server is the HTTP boundary of the silhouette pipeline.
package server

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/Lokke/imagescale/internal/encoder"
	"github.com/Lokke/imagescale/internal/pipeline"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
)

// DebugLogsHeader carries the JSON-encoded trace of a successful upload.
const DebugLogsHeader = "X-Debug-Logs"

// Config holds the server settings.
type Config struct {
	// Workers and MaxSize are copied into every per-request pipeline config.
	Workers int
	MaxSize int
	// StaticDir, when set, is served at / (index.html) and for unmatched GETs.
	StaticDir string
	// MaxUploadBytes bounds the request body (0 = 32 MiB).
	MaxUploadBytes int64
	PNGLevel       png.CompressionLevel
	Logger         *slog.Logger
}

// Server routes uploads into the pipeline.
type Server struct {
	cfg    Config
	enc    *encoder.PNGEncoder
	logs   *traceStore
	log    *slog.Logger
	engine *gin.Engine
}

// New creates a server with all routes registered.
func New(cfg Config) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 32 << 20
	}
	if cfg.Logger == nil {
		cfg.Logger = pipeline.Logger()
	}
	s := &Server{
		cfg:    cfg,
		enc:    &encoder.PNGEncoder{Level: cfg.PNGLevel},
		logs:   &traceStore{},
		log:    cfg.Logger,
		engine: gin.New(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	e := s.engine
	e.Use(gin.Recovery(), requestLogger(s.log), cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:   []string{DebugLogsHeader, "Content-Disposition", "ETag"},
		MaxAge:          12 * time.Hour,
	}))

	e.POST("/upload", s.handleUpload)
	e.GET("/debug-logs", s.handleDebugLogs)
	e.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if dir := s.cfg.StaticDir; dir != "" {
		e.GET("/", func(c *gin.Context) {
			c.File(filepath.Join(dir, "index.html"))
		})
		e.NoRoute(func(c *gin.Context) {
			if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.FileFromFS(c.Request.URL.Path, http.Dir(dir))
		})
	}
}

// Handler returns the root handler with response compression.
func (s *Server) Handler() http.Handler {
	return gzhttp.GzipHandler(s.engine)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.log.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// requestLogger logs one line per request on l.
func requestLogger(l *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start).Round(time.Microsecond))
	}
}
