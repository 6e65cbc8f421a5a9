package pipeline

import (
	"fmt"
	"slices"
)

// Trace is the ordered, human-readable log of one pipeline invocation.
// It is owned by a single Run and never shared, so it needs no locking.
type Trace struct {
	lines []string
}

// Logf appends a formatted line and mirrors it to the package logger.
func (t *Trace) Logf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	t.lines = append(t.lines, msg)
	Logger().Debug(msg)
}

// Lines returns a copy of the collected lines.
func (t *Trace) Lines() []string {
	return slices.Clone(t.lines)
}

// Len reports how many lines have been collected.
func (t *Trace) Len() int { return len(t.lines) }
