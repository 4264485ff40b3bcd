// Package aggregate folds the per-frame readings of a multi-frame sensor group
// (cell voltages, cell temperatures) into one flat vector plus its mean.
package aggregate

import (
	"encoding/binary"
	"fmt"
	"sort"
	"sync"

	"github.com/lucaslui/telemd/internal/model"
)

// Group describes a closed range of frame ids whose payloads each carry up to
// PerFrame little-endian uint16 readings.
type Group struct {
	Name       string
	Low, High  uint32
	PerFrame   int
	Scale      float64
	ValuesPath string
	MeanPath   string
}

func (g Group) contains(id uint32) bool { return id >= g.Low && id <= g.High }

// CellVoltages and CellTemperatures are the two battery-pack groups.
var (
	CellVoltages = Group{
		Name: "cell_voltage", Low: 0x370, High: 0x392, PerFrame: 4, Scale: 0.001,
		ValuesPath: "diagnostics_low.cells_v", MeanPath: "pack.avg_cell_v",
	}
	CellTemperatures = Group{
		Name: "cell_temp", Low: 0x470, High: 0x486, PerFrame: 4, Scale: 0.01,
		ValuesPath: "thermal.cells_temp", MeanPath: "pack.avg_cell_temp",
	}
)

func DefaultGroups() []Group { return []Group{CellVoltages, CellTemperatures} }

// Result is what one ingest produces for the cache.
type Result struct {
	Group  Group
	Values []float64
	Mean   float64
}

type state struct {
	group  Group
	frames map[uint32][]uint16
}

// Aggregator holds per-group state for the lifetime of the process.
type Aggregator struct {
	mu     sync.Mutex
	states []*state
}

func New(groups ...Group) (*Aggregator, error) {
	a := &Aggregator{}
	for i, g := range groups {
		if g.High < g.Low || g.PerFrame <= 0 || g.Scale == 0 {
			return nil, fmt.Errorf("aggregate: group %q is malformed", g.Name)
		}
		for _, o := range groups[:i] {
			if g.Low <= o.High && o.Low <= g.High {
				return nil, fmt.Errorf("aggregate: groups %q and %q overlap", o.Name, g.Name)
			}
		}
		a.states = append(a.states, &state{group: g, frames: make(map[uint32][]uint16)})
	}
	return a, nil
}

func (a *Aggregator) route(id uint32) *state {
	for _, s := range a.states {
		if s.group.contains(id) {
			return s
		}
	}
	return nil
}

// Handles reports whether a frame id belongs to any group.
func (a *Aggregator) Handles(id uint32) bool { return a.route(id) != nil }

// Ingest stores the readings of one member frame (last write wins per frame
// id) and recomputes the group from every frame currently held. ok is false
// when the id belongs to no group.
func (a *Aggregator) Ingest(id uint32, payload []byte) (Result, bool) {
	s := a.route(id)
	if s == nil {
		return Result{}, false
	}

	n := len(payload) / 2
	if n > s.group.PerFrame {
		n = s.group.PerFrame
	}
	raw := make([]uint16, n)
	for i := range raw {
		raw[i] = binary.LittleEndian.Uint16(payload[i*2:])
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	s.frames[id] = raw
	return s.result(), true
}

// Snapshot returns the current result for every group, including empty ones.
func (a *Aggregator) Snapshot() []Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Result, 0, len(a.states))
	for _, s := range a.states {
		out = append(out, s.result())
	}
	return out
}

// Fields lists the cache paths written by the groups and their kinds.
func (a *Aggregator) Fields() map[string]model.Kind {
	out := make(map[string]model.Kind, 2*len(a.states))
	for _, s := range a.states {
		out[s.group.ValuesPath] = model.KindVector
		out[s.group.MeanPath] = model.KindFloat
	}
	return out
}

// result must be called with a.mu held. Frames are concatenated in id order
// so the flat vector is stable across calls.
func (s *state) result() Result {
	ids := make([]uint32, 0, len(s.frames))
	for id := range s.frames {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	values := make([]float64, 0, len(ids)*s.group.PerFrame)
	var sum float64
	for _, id := range ids {
		for _, r := range s.frames[id] {
			sum += float64(r)
			values = append(values, float64(r)*s.group.Scale)
		}
	}
	res := Result{Group: s.group, Values: values}
	if len(values) > 0 {
		res.Mean = sum / float64(len(values)) * s.group.Scale
	}
	return res
}
