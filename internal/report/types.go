package report

// Report is the JSON sidecar written by `imagescale convert --report`.
type Report struct {
	Version     int        `json:"version"`
	GeneratedAt string     `json:"generated_at"`
	Preset      string     `json:"preset"`
	Input       InputInfo  `json:"input"`
	Params      Params     `json:"params"`
	Output      OutputInfo `json:"output"`
	Trace       []string   `json:"trace"`
}

// InputInfo holds metadata about the source image.
type InputInfo struct {
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Mode   string `json:"mode"`
	Format string `json:"format"`
	Size   int64  `json:"size"`
}

// Params echoes the conversion parameters.
type Params struct {
	Size           int  `json:"size"`
	Threshold      int  `json:"threshold"`
	AlphaThreshold int  `json:"alpha_threshold"`
	Invert         bool `json:"invert"`
	BBoxBrightness int  `json:"bbox_brightness"`
	ProcessingSize int  `json:"processing_size"`
	Upscaled       bool `json:"upscaled"`
}

// OutputInfo describes the written silhouette.
type OutputInfo struct {
	Path     string  `json:"path"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Size     int64   `json:"size"` // bytes on disk
	Hash     string  `json:"hash"` // 16 hex chars of xxhash64
	Crop     *[4]int `json:"crop"` // x1, y1, x2, y2 (exclusive); null when uncropped
	Fallback bool    `json:"fallback,omitempty"`
}

// ErrorBody is the JSON payload of a failed upload.
type ErrorBody struct {
	Error     string   `json:"error"`
	DebugLogs []string `json:"debug_logs,omitempty"`
}

// LogsBody is the JSON payload of the debug-logs endpoint.
type LogsBody struct {
	Logs []string `json:"logs"`
}

// SupportedVersion is the current report schema version.
const SupportedVersion = 1
