package publisher

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/lucaslui/telemd/internal/model"
)

var ErrUnknownPath = errors.New("publisher: path not in wire schema")

type field struct {
	path string
	kind model.Kind
	set  func(*SensorData, model.Value)
}

func setFloat(dst **float64, v model.Value) { f := v.Float(); *dst = &f }
func setInt(dst **int64, v model.Value)     { i := v.Int(); *dst = &i }
func setBool(dst **bool, v model.Value)     { b := v.Bool(); *dst = &b }
func setVector(dst *[]float64, v model.Value) {
	*dst = v.Floats()
}

func (m *SensorData) dynamics() *Dynamics {
	if m.Dynamics == nil {
		m.Dynamics = &Dynamics{}
	}
	return m.Dynamics
}

func (m *SensorData) controls() *Controls {
	if m.Controls == nil {
		m.Controls = &Controls{}
	}
	return m.Controls
}

func (m *SensorData) pack() *Pack {
	if m.Pack == nil {
		m.Pack = &Pack{}
	}
	return m.Pack
}

func (m *SensorData) diagHigh() *DiagnosticsHigh {
	if m.DiagnosticsHigh == nil {
		m.DiagnosticsHigh = &DiagnosticsHigh{}
	}
	return m.DiagnosticsHigh
}

func (m *SensorData) diagLow() *DiagnosticsLow {
	if m.DiagnosticsLow == nil {
		m.DiagnosticsLow = &DiagnosticsLow{}
	}
	return m.DiagnosticsLow
}

func (m *SensorData) thermal() *Thermal {
	if m.Thermal == nil {
		m.Thermal = &Thermal{}
	}
	return m.Thermal
}

var encMode cbor.EncMode

func init() {
	opts := cbor.CoreDetEncOptions()
	opts.ShortestFloat = cbor.ShortestFloat16
	var err error
	encMode, err = opts.EncMode()
	if err != nil {
		panic("publisher: CBOR encoder initialization failed: " + err.Error())
	}
}

// Schema indexes the wire field table by path.
type Schema struct {
	byPath map[string]field
}

func NewSchema() *Schema {
	s := &Schema{byPath: make(map[string]field, len(fields))}
	for _, f := range fields {
		s.byPath[f.path] = f
	}
	return s
}

func (s *Schema) Has(path string) bool {
	_, ok := s.byPath[path]
	return ok
}

func (s *Schema) Kind(path string) (model.Kind, bool) {
	f, ok := s.byPath[path]
	return f.kind, ok
}

func (s *Schema) Paths() []string {
	out := make([]string, 0, len(s.byPath))
	for p := range s.byPath {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func accepts(dst, src model.Kind) bool {
	return dst == src || (dst == model.KindFloat && src == model.KindInt)
}

// Check verifies that every produced path has a wire destination of a
// compatible kind. All mismatches are reported together.
func (s *Schema) Check(produced map[string]model.Kind) error {
	paths := make([]string, 0, len(produced))
	for p := range produced {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var problems []string
	for _, p := range paths {
		f, ok := s.byPath[p]
		switch {
		case !ok:
			problems = append(problems, fmt.Sprintf("%s: %v", p, ErrUnknownPath))
		case !accepts(f.kind, produced[p]):
			problems = append(problems, fmt.Sprintf("%s: produces %s, wire expects %s", p, produced[p], f.kind))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("wire schema mismatch (%d): %s", len(problems), strings.Join(problems, "; "))
	}
	return nil
}

// Build places every field of the packet into a wire message. Paths without a
// destination, or values of the wrong kind, are returned as skipped.
func (s *Schema) Build(p model.Packet) (*SensorData, []string) {
	msg := &SensorData{Time: model.ToMillis(p.Timestamp), PacketID: p.PacketID}
	var skipped []string
	for path, v := range p.Fields {
		f, ok := s.byPath[path]
		if !ok || !accepts(f.kind, v.Kind()) {
			skipped = append(skipped, path)
			continue
		}
		f.set(msg, v)
	}
	sort.Strings(skipped)
	return msg, skipped
}

func (s *Schema) Encode(p model.Packet) ([]byte, []string, error) {
	msg, skipped := s.Build(p)
	b, err := encMode.Marshal(msg)
	if err != nil {
		return nil, skipped, fmt.Errorf("encode packet %d: %w", p.PacketID, err)
	}
	return b, skipped, nil
}

// Decode is the inverse of Encode for consumers and tests.
func Decode(b []byte) (*SensorData, error) {
	var msg SensorData
	if err := cbor.Unmarshal(b, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (m *SensorData) Timestamp() time.Time { return time.UnixMilli(m.Time) }
