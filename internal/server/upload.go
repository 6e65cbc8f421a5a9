package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/Lokke/imagescale/internal/hasher"
	"github.com/Lokke/imagescale/internal/pipeline"
	"github.com/Lokke/imagescale/internal/preset"
	"github.com/Lokke/imagescale/internal/report"
	"github.com/gin-gonic/gin"
)

// uploadParams are the form fields of POST /upload.
type uploadParams struct {
	preset preset.Preset
	cfg    pipeline.Config
}

func (s *Server) parseParams(c *gin.Context) (uploadParams, error) {
	p := preset.Lookup(c.DefaultPostForm("version", preset.Normal))
	cfg := p.Config()
	cfg.Workers = s.cfg.Workers
	cfg.MaxSize = s.cfg.MaxSize

	for _, f := range []struct {
		name string
		dst  *int
	}{
		{"size", &cfg.Size},
		{"threshold", &cfg.BrightnessThreshold},
		{"alpha_threshold", &cfg.AlphaThreshold},
	} {
		raw := strings.TrimSpace(c.PostForm(f.name))
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return uploadParams{}, fmt.Errorf("invalid %s %q: not an integer", f.name, raw)
		}
		*f.dst = v
	}
	return uploadParams{preset: p, cfg: cfg}, nil
}

func (s *Server) handleUpload(c *gin.Context) {
	if c.Request.ContentLength > s.cfg.MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, report.ErrorBody{
			Error: fmt.Sprintf("Upload exceeds %d bytes", s.cfg.MaxUploadBytes),
		})
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes)

	fh, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, report.ErrorBody{
				Error: fmt.Sprintf("Upload exceeds %d bytes", tooLarge.Limit),
			})
			return
		}
		c.JSON(http.StatusBadRequest, report.ErrorBody{Error: "No image uploaded"})
		return
	}

	params, err := s.parseParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, report.ErrorBody{Error: err.Error()})
		return
	}

	f, err := fh.Open()
	if err != nil {
		s.fail(c, http.StatusInternalServerError, fmt.Errorf("open upload: %w", err), nil)
		return
	}
	defer f.Close()

	res, err := pipeline.New(params.cfg).Process(f)
	if err != nil {
		s.fail(c, statusFor(err), err, pipeline.TraceOf(err))
		return
	}

	data, err := s.enc.Encode(res.Image)
	if err != nil {
		trace := append(res.Trace, "ERROR: "+err.Error())
		s.fail(c, http.StatusInternalServerError, err, trace)
		return
	}
	s.logs.set(res.Trace)

	logs, err := json.Marshal(res.Trace)
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err, res.Trace)
		return
	}

	name := params.preset.Filename(params.cfg.Size)
	c.Header(DebugLogsHeader, string(logs))
	c.Header("ETag", hasher.ETag(data))
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	c.Data(http.StatusOK, s.enc.MimeType(), data)

	s.log.Info("upload converted",
		"file", fh.Filename, "bytes", fh.Size, "size", params.cfg.Size,
		"invert", params.cfg.Invert, "cropped", res.Cropped, "png_bytes", len(data))
}

// fail records trace as the latest debug log and writes the error body.
func (s *Server) fail(c *gin.Context, status int, err error, trace []string) {
	s.logs.set(trace)
	msg := err.Error()
	var perr *pipeline.Error
	if errors.As(err, &perr) {
		msg = perr.Err.Error()
	}
	s.log.Warn("upload failed", "status", status, "error", msg)
	c.JSON(status, report.ErrorBody{
		Error:     "Image processing failed: " + msg,
		DebugLogs: trace,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrInputMissing),
		errors.Is(err, pipeline.ErrInvalidConfig),
		errors.Is(err, pipeline.ErrDecode):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleDebugLogs(c *gin.Context) {
	c.JSON(http.StatusOK, report.LogsBody{Logs: s.logs.get()})
}
