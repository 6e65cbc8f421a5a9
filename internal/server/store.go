package server

import (
	"slices"
	"sync"
)

// traceStore keeps a copy of the most recent upload trace for the
// debug-logs endpoint. Uploads never write into a shared trace; they
// publish a finished copy here.
type traceStore struct {
	mu    sync.RWMutex
	lines []string
}

func (s *traceStore) set(lines []string) {
	c := slices.Clone(lines)
	s.mu.Lock()
	s.lines = c
	s.mu.Unlock()
}

func (s *traceStore) get() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lines == nil {
		return []string{}
	}
	return slices.Clone(s.lines)
}
