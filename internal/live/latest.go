// Package live keeps the most recent value of every field for dashboards:
// a WebSocket broadcast, a JSON snapshot endpoint and an optional Redis
// mirror. Unlike the publish cache it is never cleared.
package live

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lucaslui/telemd/internal/model"
	"github.com/lucaslui/telemd/internal/telemetry"
)

const UpdateType = "telemetry_update"

type reading struct {
	value   model.Value
	slots   []float64
	set     []bool
	updated time.Time
}

// json renders the reading; unset vector slots become null.
func (r *reading) json() interface{} {
	if r.slots != nil {
		out := make([]interface{}, len(r.slots))
		for i, v := range r.slots {
			if r.set[i] {
				out[i] = v
			}
		}
		return out
	}
	switch r.value.Kind() {
	case model.KindInt:
		return r.value.Int()
	case model.KindBool:
		return r.value.Bool()
	case model.KindVector:
		return r.value.Floats()
	default:
		return r.value.Float()
	}
}

func (r *reading) String() string {
	if r.slots == nil {
		return r.value.String()
	}
	parts := make([]string, len(r.slots))
	for i, v := range r.slots {
		if r.set[i] {
			parts[i] = model.FormatFloat(v)
		} else {
			parts[i] = "-"
		}
	}
	return "[" + strings.Join(parts, " ") + "]"
}

type Latest struct {
	mu     sync.RWMutex
	fields map[string]*reading
}

func NewLatest() *Latest {
	return &Latest{fields: make(map[string]*reading)}
}

func (l *Latest) Update(path string, v model.Value, now time.Time) {
	l.mu.Lock()
	l.fields[path] = &reading{value: v, updated: now}
	l.mu.Unlock()
}

// UpdateSlot sets one element of a vector field, allocating size slots on
// first use. An out of range index leaves the field untouched.
func (l *Latest) UpdateSlot(path string, index, size int, v float64, now time.Time) error {
	if index < 0 || index >= size {
		return fmt.Errorf("%s[%d] of %d: %w", path, index, size, telemetry.ErrIndexOutOfRange)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	r, ok := l.fields[path]
	if !ok || r.slots == nil {
		r = &reading{slots: make([]float64, size), set: make([]bool, size)}
		l.fields[path] = r
	}
	if len(r.slots) != size {
		return fmt.Errorf("%s[%d] of %d, cached %d: %w", path, index, size, len(r.slots), telemetry.ErrIndexOutOfRange)
	}
	r.slots[index] = v
	r.set[index] = true
	r.updated = now
	return nil
}

func (l *Latest) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.fields)
}

// Document is the JSON message pushed to dashboards.
type Document struct {
	Timestamp float64                           `json:"timestamp"`
	Type      string                            `json:"type"`
	Data      map[string]map[string]interface{} `json:"data"`
}

// Document groups fields by the segment before the first dot. Paths without
// a dot are left out.
func (l *Latest) Document(now time.Time) Document {
	doc := Document{Timestamp: model.UnixSeconds(now), Type: UpdateType, Data: make(map[string]map[string]interface{})}

	l.mu.RLock()
	defer l.mu.RUnlock()
	for path, r := range l.fields {
		category, sub, ok := strings.Cut(path, ".")
		if !ok {
			continue
		}
		m := doc.Data[category]
		if m == nil {
			m = make(map[string]interface{})
			doc.Data[category] = m
		}
		m[sub] = r.json()
	}
	return doc
}

// Values returns path -> JSON value for every field.
func (l *Latest) Values() map[string]interface{} {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]interface{}, len(l.fields))
	for path, r := range l.fields {
		out[path] = r.json()
	}
	return out
}

// Summary logs every field with its age, sorted by path.
func (l *Latest) Summary(logger *log.Logger, now time.Time) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	paths := make([]string, 0, len(l.fields))
	for p := range l.fields {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var b strings.Builder
	fmt.Fprintf(&b, "=== Latest Telemetry Values (%d fields) ===\n", len(paths))
	for _, p := range paths {
		r := l.fields[p]
		fmt.Fprintf(&b, "%s: %s (age: %.3fs)\n", p, r, now.Sub(r.updated).Seconds())
	}
	b.WriteString(strings.Repeat("=", 60))
	logger.Printf("[live] %s", b.String())
}
