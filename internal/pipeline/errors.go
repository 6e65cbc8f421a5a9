package pipeline

import (
	"errors"
)

var (
	// ErrInputMissing means no image payload was supplied.
	ErrInputMissing = errors.New("no image supplied")
	// ErrDecode means the payload is not a decodable raster image.
	ErrDecode = errors.New("decode image")
	// ErrInvalidConfig means a Config field is out of range.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrProcessing marks an unexpected fault inside a pipeline stage.
	ErrProcessing = errors.New("processing fault")
)

// Error is returned by Run and Process on failure. Trace holds every line
// collected up to and including the failure.
type Error struct {
	Op    string
	Err   error
	Trace []string
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// TraceOf returns the partial trace carried by err, or nil.
func TraceOf(err error) []string {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Trace
	}
	return nil
}
