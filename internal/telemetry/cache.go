// Package telemetry holds the latest decoded value per field and publishes
// complete snapshots at a fixed rate.
//
// A field is either a scalar, complete on its first write, or a slotted
// vector that stays partial until every slot has been written. Snapshots only
// ever contain complete fields, so a consumer never sees a vector with holes.
package telemetry

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/lucaslui/telemd/internal/model"
)

var ErrIndexOutOfRange = errors.New("telemetry: vector index out of range")

type slot struct {
	v   float64
	set bool
}

type entry struct {
	value   model.Value
	slots   []slot
	gen     uint64
	updated time.Time
}

func (e *entry) complete() bool {
	if e.slots == nil {
		return true
	}
	for _, s := range e.slots {
		if !s.set {
			return false
		}
	}
	return true
}

func (e *entry) current() model.Value {
	if e.slots == nil {
		return e.value
	}
	vs := make([]float64, len(e.slots))
	for i, s := range e.slots {
		vs[i] = s.v
	}
	return model.Vector(vs)
}

// Cache is safe for concurrent use; one lock guards every entry.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	gen     uint64
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]*entry)}
}

// Update replaces the value of a scalar or whole-vector field.
func (c *Cache) Update(path string, v model.Value, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.entries[path] = &entry{value: v, gen: c.gen, updated: now}
}

// UpdateSlot writes one element of a size-element vector field, allocating an
// all-empty vector on first touch. An index outside size, or a size that
// disagrees with the existing vector, leaves the cache untouched and returns
// ErrIndexOutOfRange.
func (c *Cache) UpdateSlot(path string, index, size int, v float64, now time.Time) error {
	if index < 0 || index >= size {
		return fmt.Errorf("%w: %s[%d] size %d", ErrIndexOutOfRange, path, index, size)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[path]
	if !ok || e.slots == nil {
		e = &entry{slots: make([]slot, size)}
		c.entries[path] = e
	}
	if len(e.slots) != size {
		return fmt.Errorf("%w: %s[%d] size %d, cached vector has %d", ErrIndexOutOfRange, path, index, size, len(e.slots))
	}
	c.gen++
	e.slots[index] = slot{v: v, set: true}
	e.gen = c.gen
	e.updated = now
	return nil
}

// Get returns the current value of a field, complete or not.
func (c *Cache) Get(path string) (model.Value, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[path]
	if !ok {
		return model.Value{}, false
	}
	return e.current(), true
}

// Complete reports whether the field exists and has no empty slot.
func (c *Cache) Complete(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[path]
	return ok && e.complete()
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Paths returns every cached path, sorted.
func (c *Cache) Paths() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.entries))
	for p := range c.entries {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// SnapshotComplete returns every complete field. Partial vectors stay cached.
func (c *Cache) SnapshotComplete() map[string]model.Value {
	fields, _ := c.snapshot()
	return fields
}

// snapshot also returns the generation of each included entry so a later
// removal can tell whether the entry was written again in between.
func (c *Cache) snapshot() (map[string]model.Value, map[string]uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fields := make(map[string]model.Value)
	gens := make(map[string]uint64)
	for p, e := range c.entries {
		if !e.complete() {
			continue
		}
		fields[p] = e.current()
		gens[p] = e.gen
	}
	return fields, gens
}

// removePublished drops entries whose generation still matches the snapshot.
// Entries updated after the snapshot survive for the next cycle.
func (c *Cache) removePublished(gens map[string]uint64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for p, g := range gens {
		if e, ok := c.entries[p]; ok && e.gen == g {
			delete(c.entries, p)
			n++
		}
	}
	return n
}
