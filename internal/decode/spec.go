// Package decode turns CAN payloads into engineering values.
//
// A Spec is an immutable description of one extraction (byte range, width,
// signedness, scale, optional reduction). All specs run through the same
// Decode routine, which never fails: a payload that is too short yields the
// zero value of the spec's output kind together with ErrShortPayload so the
// caller can emit a diagnostic.
package decode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/lucaslui/telemd/internal/model"
)

type Kind uint8

const (
	KindInt    Kind = iota // little-endian integer of 1, 2 or 4 bytes, scaled
	KindBit                // one bit of one byte
	KindFlag               // byte is non-zero
	KindReduce             // mean/max/min over equal chunks of a byte range
	KindVector             // several integer extractions packed into a vector
	KindZero               // constant zero vector
)

var kindNames = map[Kind]string{
	KindInt:    "int",
	KindBit:    "bit",
	KindFlag:   "flag",
	KindReduce: "reduce",
	KindVector: "vector",
	KindZero:   "zero",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

func ParseKind(s string) (Kind, bool) {
	for k, n := range kindNames {
		if n == s {
			return k, true
		}
	}
	return 0, false
}

type Reduction uint8

const (
	ReduceMean Reduction = iota
	ReduceMax
	ReduceMin
)

func ParseReduction(s string) (Reduction, bool) {
	switch s {
	case "", "mean":
		return ReduceMean, true
	case "max":
		return ReduceMax, true
	case "min":
		return ReduceMin, true
	}
	return 0, false
}

var (
	ErrShortPayload = errors.New("decode: payload shorter than field")
	ErrInvalidSpec  = errors.New("decode: invalid spec")
)

// Spec describes one extraction over the byte range [Start, End).
type Spec struct {
	Kind   Kind
	Start  int
	End    int
	Signed bool
	Scale  float64
	// Raw makes KindInt emit the unscaled integer.
	Raw    bool
	Bit    uint8
	Chunk  int
	Reduce Reduction
	Elems  []Spec
	Len    int
}

func SInt(start, end int, scale float64) Spec {
	return Spec{Kind: KindInt, Start: start, End: end, Signed: true, Scale: scale}
}

func UInt(start, end int, scale float64) Spec {
	return Spec{Kind: KindInt, Start: start, End: end, Scale: scale}
}

// Byte is the raw unsigned integer at index i.
func Byte(i int) Spec {
	return Spec{Kind: KindInt, Start: i, End: i + 1, Scale: 1, Raw: true}
}

func Bit(byteIndex int, bit uint8) Spec {
	return Spec{Kind: KindBit, Start: byteIndex, End: byteIndex + 1, Bit: bit}
}

func Flag(byteIndex int) Spec {
	return Spec{Kind: KindFlag, Start: byteIndex, End: byteIndex + 1}
}

func Reduce(start, end, chunk int, signed bool, r Reduction, scale float64) Spec {
	return Spec{Kind: KindReduce, Start: start, End: end, Chunk: chunk, Signed: signed, Reduce: r, Scale: scale}
}

func Vec(elems ...Spec) Spec {
	return Spec{Kind: KindVector, Elems: elems}
}

func Zeros(n int) Spec {
	return Spec{Kind: KindZero, Len: n}
}

// Output reports the kind of value Decode produces.
func (s Spec) Output() model.Kind {
	switch s.Kind {
	case KindBit, KindFlag:
		return model.KindBool
	case KindVector, KindZero:
		return model.KindVector
	case KindInt:
		if s.Raw {
			return model.KindInt
		}
		return model.KindFloat
	default:
		return model.KindFloat
	}
}

func validWidth(w int) bool { return w == 1 || w == 2 || w == 4 }

func (s Spec) Validate() error {
	if s.Start < 0 || s.End > model.MaxPayload || s.End < s.Start {
		if s.Kind != KindVector && s.Kind != KindZero {
			return fmt.Errorf("%w: byte range [%d:%d]", ErrInvalidSpec, s.Start, s.End)
		}
	}
	switch s.Kind {
	case KindInt:
		if !validWidth(s.End - s.Start) {
			return fmt.Errorf("%w: integer width %d (want 1, 2 or 4)", ErrInvalidSpec, s.End-s.Start)
		}
		if !s.Raw && (s.Scale == 0 || math.IsNaN(s.Scale) || math.IsInf(s.Scale, 0)) {
			return fmt.Errorf("%w: scale %v", ErrInvalidSpec, s.Scale)
		}
	case KindBit:
		if s.End-s.Start != 1 || s.Bit > 7 {
			return fmt.Errorf("%w: bit %d of byte %d", ErrInvalidSpec, s.Bit, s.Start)
		}
	case KindFlag:
		if s.End-s.Start != 1 {
			return fmt.Errorf("%w: flag must cover one byte", ErrInvalidSpec)
		}
	case KindReduce:
		chunk := s.chunk()
		if !validWidth(chunk) {
			return fmt.Errorf("%w: chunk width %d", ErrInvalidSpec, chunk)
		}
		w := s.End - s.Start
		if w <= 0 || w%chunk != 0 {
			return fmt.Errorf("%w: range width %d not a multiple of chunk %d", ErrInvalidSpec, w, chunk)
		}
		if s.Reduce > ReduceMin {
			return fmt.Errorf("%w: reduction %d", ErrInvalidSpec, s.Reduce)
		}
		if s.Scale == 0 || math.IsNaN(s.Scale) || math.IsInf(s.Scale, 0) {
			return fmt.Errorf("%w: scale %v", ErrInvalidSpec, s.Scale)
		}
	case KindVector:
		if len(s.Elems) == 0 {
			return fmt.Errorf("%w: empty vector", ErrInvalidSpec)
		}
		for i, e := range s.Elems {
			if e.Kind != KindInt || e.Raw {
				return fmt.Errorf("%w: vector element %d must be a scaled integer", ErrInvalidSpec, i)
			}
			if err := e.Validate(); err != nil {
				return fmt.Errorf("vector element %d: %w", i, err)
			}
		}
	case KindZero:
		if s.Len <= 0 {
			return fmt.Errorf("%w: zero vector length %d", ErrInvalidSpec, s.Len)
		}
	default:
		return fmt.Errorf("%w: kind %d", ErrInvalidSpec, s.Kind)
	}
	return nil
}

func (s Spec) chunk() int {
	if s.Chunk <= 0 {
		return 1
	}
	return s.Chunk
}

// Decode extracts the value from payload. The returned value is always
// usable; a non-nil error means the fallback was substituted.
func (s Spec) Decode(payload []byte) (model.Value, error) {
	switch s.Kind {
	case KindInt:
		n, err := readInt(payload, s.Start, s.End, s.Signed)
		if s.Raw {
			return model.Int(n), err
		}
		return model.Float(float64(n) * s.Scale), err
	case KindBit:
		if s.Start >= len(payload) {
			return model.Bool(false), ErrShortPayload
		}
		return model.Bool(payload[s.Start]&(1<<s.Bit) != 0), nil
	case KindFlag:
		if s.Start >= len(payload) {
			return model.Bool(false), ErrShortPayload
		}
		return model.Bool(payload[s.Start] != 0), nil
	case KindReduce:
		return s.reduce(payload)
	case KindVector:
		out := make([]float64, len(s.Elems))
		var firstErr error
		for i, e := range s.Elems {
			v, err := e.Decode(payload)
			if err != nil && firstErr == nil {
				firstErr = err
			}
			out[i] = v.Float()
		}
		if firstErr != nil {
			return model.Vector(make([]float64, len(s.Elems))), firstErr
		}
		return model.Vector(out), nil
	case KindZero:
		return model.Vector(make([]float64, s.Len)), nil
	default:
		return model.Float(0), ErrInvalidSpec
	}
}

func (s Spec) reduce(payload []byte) (model.Value, error) {
	chunk := s.chunk()
	if s.End > len(payload) || s.End <= s.Start {
		return model.Float(0), ErrShortPayload
	}
	var (
		acc   float64
		count int
	)
	for off := s.Start; off+chunk <= s.End; off += chunk {
		n, err := readInt(payload, off, off+chunk, s.Signed)
		if err != nil {
			return model.Float(0), err
		}
		x := float64(n)
		switch {
		case count == 0:
			acc = x
		case s.Reduce == ReduceMean:
			acc += x
		case s.Reduce == ReduceMax && x > acc:
			acc = x
		case s.Reduce == ReduceMin && x < acc:
			acc = x
		}
		count++
	}
	if count == 0 {
		return model.Float(0), ErrShortPayload
	}
	if s.Reduce == ReduceMean {
		acc /= float64(count)
	}
	return model.Float(acc * s.Scale), nil
}

func readInt(p []byte, start, end int, signed bool) (int64, error) {
	if start < 0 || end > len(p) || end <= start {
		return 0, ErrShortPayload
	}
	b := p[start:end]
	switch len(b) {
	case 1:
		if signed {
			return int64(int8(b[0])), nil
		}
		return int64(b[0]), nil
	case 2:
		u := binary.LittleEndian.Uint16(b)
		if signed {
			return int64(int16(u)), nil
		}
		return int64(u), nil
	case 4:
		u := binary.LittleEndian.Uint32(b)
		if signed {
			return int64(int32(u)), nil
		}
		return int64(u), nil
	default:
		return 0, ErrInvalidSpec
	}
}
