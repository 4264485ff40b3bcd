package decode

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lucaslui/telemd/internal/model"
)

var ErrDuplicateBinding = errors.New("decode: duplicate binding")

// Binding maps one frame id to one field path. When Size > 0 the decoded
// scalar fills slot Index of a Size-element vector field.
type Binding struct {
	FrameID     uint32
	Path        string
	Spec        Spec
	Index       int
	Size        int
	Specificity int
}

func (b Binding) Slotted() bool { return b.Size > 0 }

// FieldKind is the kind of the cache field the binding writes.
func (b Binding) FieldKind() model.Kind {
	if b.Slotted() {
		return model.KindVector
	}
	return b.Spec.Output()
}

func (b Binding) key() bindingKey {
	idx := -1
	if b.Slotted() {
		idx = b.Index
	}
	return bindingKey{id: b.FrameID, path: b.Path, index: idx}
}

func (b Binding) String() string {
	if b.Slotted() {
		return fmt.Sprintf("0x%03X %s[%d/%d]", b.FrameID, b.Path, b.Index, b.Size)
	}
	return fmt.Sprintf("0x%03X %s", b.FrameID, b.Path)
}

type bindingKey struct {
	id    uint32
	path  string
	index int
}

// ValidationError lists every problem found while building a table.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("decode table invalid (%d problems): %s", len(e.Problems), strings.Join(e.Problems, "; "))
}

type errList []string

func (e *errList) addf(format string, a ...any) { *e = append(*e, fmt.Sprintf(format, a...)) }

// Table is the immutable frame id -> bindings index.
type Table struct {
	byID   map[uint32][]Binding
	fields map[string]model.Kind
	sizes  map[string]int
}

// NewTable validates bindings and resolves overlapping ones: for each
// (frame id, path, slot) the most specific binding wins; equally specific
// duplicates are rejected.
func NewTable(bindings []Binding) (*Table, error) {
	var errs errList

	best := make(map[bindingKey]Binding)
	ties := make(map[bindingKey]bool)
	var order []bindingKey

	for _, b := range bindings {
		if strings.TrimSpace(b.Path) == "" {
			errs.addf("0x%03X: empty path", b.FrameID)
			continue
		}
		if err := b.Spec.Validate(); err != nil {
			errs.addf("%s: %v", b, err)
			continue
		}
		if b.Slotted() {
			if b.Index < 0 || b.Index >= b.Size {
				errs.addf("%s: index out of range", b)
				continue
			}
			if b.Spec.Output() == model.KindVector {
				errs.addf("%s: slot binding must decode a scalar", b)
				continue
			}
		}

		k := b.key()
		cur, seen := best[k]
		switch {
		case !seen:
			best[k] = b
			order = append(order, k)
		case b.Specificity > cur.Specificity:
			best[k] = b
			delete(ties, k)
		case b.Specificity == cur.Specificity:
			ties[k] = true
		}
	}
	for _, k := range order {
		if ties[k] {
			errs.addf("%s: %v", best[k], ErrDuplicateBinding)
		}
	}

	t := &Table{
		byID:   make(map[uint32][]Binding),
		fields: make(map[string]model.Kind),
		sizes:  make(map[string]int),
	}
	for _, k := range order {
		b := best[k]
		kind := b.FieldKind()
		if prev, ok := t.fields[b.Path]; ok && prev != kind && !numericCompatible(prev, kind) {
			errs.addf("%s: kind %s conflicts with %s bound elsewhere", b, kind, prev)
			continue
		}
		if b.Slotted() {
			if prev, ok := t.sizes[b.Path]; ok && prev != b.Size {
				errs.addf("%s: size %d conflicts with size %d bound elsewhere", b, b.Size, prev)
				continue
			}
			t.sizes[b.Path] = b.Size
		}
		if _, ok := t.fields[b.Path]; !ok || kind == model.KindFloat {
			t.fields[b.Path] = kind
		}
		t.byID[b.FrameID] = append(t.byID[b.FrameID], b)
	}

	if len(errs) > 0 {
		return nil, &ValidationError{Problems: errs}
	}
	return t, nil
}

func numericCompatible(a, b model.Kind) bool {
	num := func(k model.Kind) bool { return k == model.KindFloat || k == model.KindInt }
	return num(a) && num(b)
}

// Lookup returns the bindings for a frame id; nil for unknown ids.
func (t *Table) Lookup(id uint32) []Binding { return t.byID[id] }

func (t *Table) Has(id uint32) bool {
	_, ok := t.byID[id]
	return ok
}

// Fields returns every path the table writes and its field kind.
func (t *Table) Fields() map[string]model.Kind {
	out := make(map[string]model.Kind, len(t.fields))
	for k, v := range t.fields {
		out[k] = v
	}
	return out
}

func (t *Table) FrameIDs() []uint32 {
	ids := make([]uint32, 0, len(t.byID))
	for id := range t.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (t *Table) Len() int {
	n := 0
	for _, bs := range t.byID {
		n += len(bs)
	}
	return n
}
