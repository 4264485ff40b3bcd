package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValueString(t *testing.T) {
	assert.Equal(t, "10", Float(10).String())
	assert.Equal(t, "0.25", Float(0.25).String())
	assert.Equal(t, "-3", Int(-3).String())
	assert.Equal(t, "true", Bool(true).String())
	assert.Equal(t, "1,2.5,-0.001", Vector([]float64{1, 2.5, -0.001}).String())
}

func TestValueConversions(t *testing.T) {
	assert.Equal(t, 1.0, Bool(true).Float())
	assert.Equal(t, int64(7), Float(7.9).Int())
	assert.True(t, Int(2).Bool())
	assert.False(t, Float(0).Bool())
	assert.Equal(t, 0.0, Vector([]float64{1, 2}).Float())
	assert.Equal(t, []float64{4}, Float(4).Floats())
}

func TestVectorIsCopied(t *testing.T) {
	src := []float64{1, 2, 3}
	v := Vector(src)
	src[0] = 99

	out := v.Floats()
	out[1] = 42

	assert.Equal(t, []float64{1, 2, 3}, v.Floats())
	assert.Equal(t, 3, v.Len())
}

func TestValueEqual(t *testing.T) {
	assert.True(t, Vector([]float64{1, 2}).Equal(Vector([]float64{1, 2})))
	assert.False(t, Vector([]float64{1, 2}).Equal(Vector([]float64{1})))
	assert.False(t, Float(1).Equal(Int(1)))
	assert.True(t, Bool(false).Equal(Bool(false)))
}

func TestUnixSecondsRoundTrip(t *testing.T) {
	ts := time.Date(2025, 3, 14, 15, 9, 26, 535_000_000, time.UTC)
	back := FromUnixSeconds(UnixSeconds(ts))
	assert.WithinDuration(t, ts, back, time.Microsecond)
}
