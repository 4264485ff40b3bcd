package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucaslui/telemd/internal/model"
)

func u16s(vs ...uint16) []byte {
	out := make([]byte, 0, len(vs)*2)
	for _, v := range vs {
		out = append(out, byte(v), byte(v>>8))
	}
	return out
}

var testGroup = Group{Name: "t", Low: 0x10, High: 0x1F, PerFrame: 4, Scale: 1, ValuesPath: "g.values", MeanPath: "g.mean"}

func TestMeanIsRecomputedFromAllFrames(t *testing.T) {
	a, err := New(testGroup)
	require.NoError(t, err)

	_, ok := a.Ingest(0x10, u16s(10, 20))
	require.True(t, ok)
	res, ok := a.Ingest(0x11, u16s(30, 40))
	require.True(t, ok)
	assert.Equal(t, 25.0, res.Mean)
	assert.Equal(t, []float64{10, 20, 30, 40}, res.Values)

	res, _ = a.Ingest(0x10, u16s(12, 20))
	assert.Equal(t, 25.5, res.Mean)
	assert.Equal(t, []float64{12, 20, 30, 40}, res.Values)
}

func TestEmptyGroupIsValid(t *testing.T) {
	a, err := New(testGroup)
	require.NoError(t, err)

	snap := a.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, 0.0, snap[0].Mean)
	assert.Empty(t, snap[0].Values)
}

func TestUnknownIDIsNotRouted(t *testing.T) {
	a, err := New(DefaultGroups()...)
	require.NoError(t, err)

	_, ok := a.Ingest(0x400, u16s(1, 2, 3, 4))
	assert.False(t, ok)
	assert.False(t, a.Handles(0x393))
	assert.True(t, a.Handles(0x392))
	assert.True(t, a.Handles(0x470))
}

func TestScaleAndPerFrameLimit(t *testing.T) {
	a, err := New(CellVoltages)
	require.NoError(t, err)

	res, ok := a.Ingest(0x370, u16s(3600, 3700, 3800, 3900, 9999))
	require.True(t, ok)
	assert.Len(t, res.Values, 4)
	assert.InDelta(t, 3.75, res.Mean, 1e-9)
	assert.InDelta(t, 3.6, res.Values[0], 1e-9)

	// odd trailing byte is ignored
	res, _ = a.Ingest(0x371, []byte{0x10, 0x0E, 0x01})
	assert.Len(t, res.Values, 5)
}

func TestFields(t *testing.T) {
	a, err := New(DefaultGroups()...)
	require.NoError(t, err)
	f := a.Fields()
	assert.Equal(t, model.KindVector, f["diagnostics_low.cells_v"])
	assert.Equal(t, model.KindFloat, f["pack.avg_cell_temp"])
}

func TestOverlappingGroupsRejected(t *testing.T) {
	other := testGroup
	other.Name = "u"
	other.Low, other.High = 0x18, 0x20
	_, err := New(testGroup, other)
	assert.Error(t, err)
}
