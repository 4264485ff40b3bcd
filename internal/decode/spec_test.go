package decode

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucaslui/telemd/internal/model"
)

func TestSignedLittleEndianScaled(t *testing.T) {
	v, err := SInt(0, 2, 0.01).Decode([]byte{0xE8, 0x03})
	require.NoError(t, err)
	assert.Equal(t, model.KindFloat, v.Kind())
	assert.InDelta(t, 10.0, v.Float(), 1e-9)
}

func TestIntegerWidthsAndSignedness(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		data []byte
		want float64
	}{
		{"u8", UInt(0, 1, 1), []byte{0xFF}, 255},
		{"s8", SInt(0, 1, 1), []byte{0xFF}, -1},
		{"u16", UInt(0, 2, 1), []byte{0x18, 0xFC}, 64536},
		{"s16", SInt(0, 2, 1), []byte{0x18, 0xFC}, -1000},
		{"u32", UInt(0, 4, 1), []byte{0x00, 0x00, 0x00, 0x80}, 2147483648},
		{"s32", SInt(0, 4, 1), []byte{0x00, 0x00, 0x00, 0x80}, -2147483648},
		{"offset", UInt(6, 8, 0.002), []byte{0, 0, 0, 0, 0, 0, 0xF4, 0x01}, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := tt.spec.Decode(tt.data)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, v.Float(), 1e-9)
		})
	}
}

func TestBitfield(t *testing.T) {
	payload := []byte{0b00000101}

	for bit, want := range map[uint8]bool{0: true, 1: false, 2: true} {
		v, err := Bit(0, bit).Decode(payload)
		require.NoError(t, err)
		assert.Equal(t, model.KindBool, v.Kind())
		assert.Equal(t, want, v.Bool(), "bit %d", bit)
	}
}

func TestFlagAndRawByte(t *testing.T) {
	v, err := Flag(1).Decode([]byte{0, 7})
	require.NoError(t, err)
	assert.True(t, v.Bool())

	v, err = Byte(1).Decode([]byte{0, 7})
	require.NoError(t, err)
	assert.Equal(t, model.KindInt, v.Kind())
	assert.Equal(t, int64(7), v.Int())
}

func TestReductions(t *testing.T) {
	payload := []byte{10, 0, 30, 0, 20, 0, 0xFF, 0xFF}

	mean, err := Reduce(0, 6, 2, false, ReduceMean, 0.1).Decode(payload)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, mean.Float(), 1e-9)

	max, err := Reduce(0, 6, 2, false, ReduceMax, 1).Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, 30.0, max.Float())

	min, err := Reduce(0, 8, 2, true, ReduceMin, 1).Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, -1.0, min.Float())

	bytewise, err := Reduce(0, 4, 0, false, ReduceMax, 1).Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, 30.0, bytewise.Float())
}

func TestVectorAssembly(t *testing.T) {
	payload := []byte{0xE8, 0x03, 0x18, 0xFC, 0x00, 0x00}
	v, err := Vec(SInt(0, 2, 0.001), SInt(2, 4, 0.001), SInt(4, 6, 0.001)).Decode(payload)
	require.NoError(t, err)
	require.Equal(t, model.KindVector, v.Kind())
	got := v.Floats()
	assert.InDelta(t, 1.0, got[0], 1e-9)
	assert.InDelta(t, -1.0, got[1], 1e-9)
	assert.InDelta(t, 0.0, got[2], 1e-9)
}

func TestShortPayloadFallsBack(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		want model.Value
	}{
		{"int", UInt(6, 8, 0.001), model.Float(0)},
		{"raw", Byte(4), model.Int(0)},
		{"bit", Bit(7, 0), model.Bool(false)},
		{"flag", Flag(3), model.Bool(false)},
		{"reduce", Reduce(0, 8, 2, false, ReduceMean, 1), model.Float(0)},
		{"vector", Vec(SInt(0, 2, 1), SInt(2, 4, 1)), model.Vector([]float64{0, 0})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := tt.spec.Decode([]byte{0x01, 0x02, 0x03})
			assert.ErrorIs(t, err, ErrShortPayload)
			assert.True(t, tt.want.Equal(v), "got %v", v)
		})
	}
}

func TestZerosNeverFail(t *testing.T) {
	v, err := Zeros(3).Decode(nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0}, v.Floats())
}

func TestValidateRejectsBadSpecs(t *testing.T) {
	bad := map[string]Spec{
		"width3":        UInt(0, 3, 1),
		"zero scale":    UInt(0, 2, 0),
		"bit 8":         Bit(0, 8),
		"past payload":  UInt(63, 65, 1),
		"ragged reduce": Reduce(0, 5, 2, false, ReduceMean, 1),
		"reduce NaN":    Reduce(0, 4, 2, false, ReduceMean, math.NaN()),
		"reduce +Inf":   Reduce(0, 4, 2, false, ReduceMax, math.Inf(1)),
		"int -Inf":      SInt(0, 2, math.Inf(-1)),
		"empty vector":  Vec(),
		"vector of bit": Vec(Bit(0, 1)),
		"zero len":      Zeros(0),
	}
	for name, s := range bad {
		assert.ErrorIs(t, s.Validate(), ErrInvalidSpec, name)
	}
	assert.NoError(t, Byte(3).Validate())
}
