// Package diag rate-limits repeated diagnostics so a malformed frame arriving
// at hundreds of hertz produces one log line per window, not a flood.
package diag

import (
	"fmt"
	"log"
	"sync"
	"time"
)

type Reporter struct {
	logger *log.Logger
	window time.Duration
	now    func() time.Time

	mu         sync.Mutex
	last       map[string]time.Time
	suppressed map[string]int
}

func NewReporter(logger *log.Logger, window time.Duration) *Reporter {
	return &Reporter{
		logger:     logger,
		window:     window,
		now:        time.Now,
		last:       make(map[string]time.Time),
		suppressed: make(map[string]int),
	}
}

// Reportf logs the message unless the same key was logged within the window.
// It returns true when a line was written.
func (r *Reporter) Reportf(key, format string, args ...any) bool {
	if r == nil {
		return false
	}
	r.mu.Lock()
	now := r.now()
	if t, ok := r.last[key]; ok && now.Sub(t) < r.window {
		r.suppressed[key]++
		r.mu.Unlock()
		return false
	}
	n := r.suppressed[key]
	r.last[key] = now
	delete(r.suppressed, key)
	r.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	if n > 0 {
		msg = fmt.Sprintf("%s (%d similar suppressed)", msg, n)
	}
	r.logger.Print(msg)
	return true
}
