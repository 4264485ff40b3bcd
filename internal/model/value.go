package model

import (
	"strconv"
	"strings"
)

type Kind uint8

const (
	KindFloat Kind = iota
	KindInt
	KindBool
	KindVector
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindVector:
		return "vector"
	default:
		return "unknown"
	}
}

// Value is an immutable decoded signal: a float, an integer, a boolean or a
// float vector. The zero Value is Float(0).
type Value struct {
	kind Kind
	f    float64
	i    int64
	b    bool
	vec  []float64
}

func Float(f float64) Value { return Value{kind: KindFloat, f: f} }
func Int(i int64) Value     { return Value{kind: KindInt, i: i} }
func Bool(b bool) Value     { return Value{kind: KindBool, b: b} }

// Vector copies v so later changes by the caller are not observed.
func Vector(v []float64) Value {
	cp := make([]float64, len(v))
	copy(cp, v)
	return Value{kind: KindVector, vec: cp}
}

func (v Value) Kind() Kind { return v.kind }

// Float returns the numeric reading. Booleans map to 0/1; vectors to 0.
func (v Value) Float() float64 {
	switch v.kind {
	case KindFloat:
		return v.f
	case KindInt:
		return float64(v.i)
	case KindBool:
		if v.b {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func (v Value) Int() int64 {
	switch v.kind {
	case KindInt:
		return v.i
	case KindFloat:
		return int64(v.f)
	case KindBool:
		if v.b {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func (v Value) Bool() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i != 0
	case KindFloat:
		return v.f != 0
	default:
		return false
	}
}

// Floats returns a copy of the vector elements, or a single element slice for
// scalars.
func (v Value) Floats() []float64 {
	if v.kind != KindVector {
		return []float64{v.Float()}
	}
	cp := make([]float64, len(v.vec))
	copy(cp, v.vec)
	return cp
}

func (v Value) Len() int {
	if v.kind == KindVector {
		return len(v.vec)
	}
	return 1
}

func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindFloat:
		return v.f == o.f
	case KindInt:
		return v.i == o.i
	case KindBool:
		return v.b == o.b
	default:
		if len(v.vec) != len(o.vec) {
			return false
		}
		for i := range v.vec {
			if v.vec[i] != o.vec[i] {
				return false
			}
		}
		return true
	}
}

// Interface returns the value as a plain Go value for JSON encoding.
func (v Value) Interface() any {
	switch v.kind {
	case KindInt:
		return v.i
	case KindBool:
		return v.b
	case KindVector:
		return v.Floats()
	default:
		return v.f
	}
}

// String renders the value as a history cell: booleans as true/false,
// numbers in shortest form, vectors comma-joined.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindVector:
		parts := make([]string, len(v.vec))
		for i, x := range v.vec {
			parts[i] = FormatFloat(x)
		}
		return strings.Join(parts, ",")
	default:
		return FormatFloat(v.f)
	}
}

func FormatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
