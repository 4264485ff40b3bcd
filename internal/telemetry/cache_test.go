package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucaslui/telemd/internal/model"
)

var t0 = time.Unix(1700000000, 0)

func TestScalarWriteReplaces(t *testing.T) {
	c := NewCache()
	c.Update("pack.hv_soc", model.Float(50), t0)
	c.Update("pack.hv_soc", model.Float(49.5), t0)

	v, ok := c.Get("pack.hv_soc")
	require.True(t, ok)
	assert.Equal(t, 49.5, v.Float())
	assert.True(t, c.Complete("pack.hv_soc"))
	assert.Equal(t, 1, c.Len())
}

func TestPartialVectorIsExcluded(t *testing.T) {
	c := NewCache()
	require.NoError(t, c.UpdateSlot("dynamics.fl_sprung_accel", 0, 3, 0.1, t0))
	require.NoError(t, c.UpdateSlot("dynamics.fl_sprung_accel", 2, 3, 0.3, t0))
	c.Update("pack.hv_c", model.Float(1), t0)

	snap := c.SnapshotComplete()
	assert.NotContains(t, snap, "dynamics.fl_sprung_accel")
	assert.Contains(t, snap, "pack.hv_c")
	assert.False(t, c.Complete("dynamics.fl_sprung_accel"))

	require.NoError(t, c.UpdateSlot("dynamics.fl_sprung_accel", 1, 3, 0.2, t0))
	snap = c.SnapshotComplete()
	require.Contains(t, snap, "dynamics.fl_sprung_accel")
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, snap["dynamics.fl_sprung_accel"].Floats())
}

func TestSnapshotNeverHasHoles(t *testing.T) {
	c := NewCache()
	for i := 0; i < 5; i++ {
		require.NoError(t, c.UpdateSlot("a.v", i%4, 5, float64(i), t0))
	}
	for _, v := range c.SnapshotComplete() {
		assert.NotEqual(t, model.KindVector, v.Kind())
	}
}

func TestSlotIndexOutOfRange(t *testing.T) {
	c := NewCache()
	assert.ErrorIs(t, c.UpdateSlot("a.v", 3, 3, 1, t0), ErrIndexOutOfRange)
	assert.Equal(t, 0, c.Len())

	require.NoError(t, c.UpdateSlot("a.v", 0, 2, 1, t0))
	// a larger declared size never grows an existing vector
	assert.ErrorIs(t, c.UpdateSlot("a.v", 2, 4, 1, t0), ErrIndexOutOfRange)
	v, _ := c.Get("a.v")
	assert.Equal(t, 2, v.Len())
}

func TestSlotSizeMismatchIsRejected(t *testing.T) {
	c := NewCache()
	for i := 0; i < 4; i++ {
		require.NoError(t, c.UpdateSlot("a.v", i, 4, 1, t0))
	}

	assert.ErrorIs(t, c.UpdateSlot("a.v", 3, 3, 9, t0), ErrIndexOutOfRange)
	assert.ErrorIs(t, c.UpdateSlot("a.v", 1, 3, 9, t0), ErrIndexOutOfRange)
	v, _ := c.Get("a.v")
	assert.Equal(t, []float64{1, 1, 1, 1}, v.Floats())
}

func TestPathsSorted(t *testing.T) {
	c := NewCache()
	c.Update("b.x", model.Bool(true), t0)
	c.Update("a.x", model.Int(1), t0)
	assert.Equal(t, []string{"a.x", "b.x"}, c.Paths())
}
