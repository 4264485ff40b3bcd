package source

import (
	"context"
	"encoding/binary"
	"io"
	"log"
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucaslui/telemd/internal/metrics"
	"github.com/lucaslui/telemd/internal/model"
)

func quiet() *log.Logger { return log.New(io.Discard, "", 0) }

func TestSteeringFrameEncoding(t *testing.T) {
	ts := time.Now()
	f := SteeringFrame(0, ts)
	assert.Equal(t, uint32(0x400), f.ID)
	require.Len(t, f.Data, 8)
	assert.Equal(t, make([]byte, 6), f.Data[2:])

	raw := int16(binary.LittleEndian.Uint16(f.Data))
	want := int16(int64(8 * math.Sin(0.1) / 0.001))
	assert.Equal(t, want, raw)

	// negative half of the wave stays signed
	f = SteeringFrame(2*math.Pi, ts)
	assert.Less(t, int16(binary.LittleEndian.Uint16(f.Data)), int16(0))
}

func TestSimulatorEmitsDueFramesInBatches(t *testing.T) {
	s := NewSimulator(100)
	clock := s.start
	s.now = func() time.Time { return clock }

	clock = clock.Add(10 * SimInterval)
	frames, err := s.Recv(context.Background(), time.Millisecond)
	require.NoError(t, err)
	require.Len(t, frames, 10)
	assert.Equal(t, s.start.Add(SimInterval), frames[0].Timestamp)
	assert.Equal(t, int64(10), s.Emitted())

	clock = clock.Add(500 * SimInterval)
	frames, err = s.Recv(context.Background(), time.Millisecond)
	require.NoError(t, err)
	assert.Len(t, frames, 100)
}

func TestSimulatorTimesOutWithNothing(t *testing.T) {
	s := NewSimulator(10)
	clock := s.start
	s.now = func() time.Time { return clock }

	frames, err := s.Recv(context.Background(), time.Millisecond)
	assert.NoError(t, err)
	assert.Nil(t, frames)
}

func TestSimulatorClose(t *testing.T) {
	s := NewSimulator(10)
	require.NoError(t, s.Close())
	clock := s.start
	s.now = func() time.Time { return clock }
	_, err := s.Recv(context.Background(), time.Second)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestBufferDrainsAndDrops(t *testing.T) {
	m := metrics.New()
	b := newBuffer(2, quiet(), m)
	b.push(model.Frame{ID: 1})
	b.push(model.Frame{ID: 2})
	b.push(model.Frame{ID: 3})

	frames, err := b.recv(context.Background(), time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, []model.Frame{{ID: 1}, {ID: 2}}, frames)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FramesDropped))

	frames, err = b.recv(context.Background(), time.Millisecond)
	assert.NoError(t, err)
	assert.Nil(t, frames)
}

func TestBufferStopsOnCancelAndClose(t *testing.T) {
	b := newBuffer(2, quiet(), metrics.New())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := b.recv(ctx, time.Second)
	assert.ErrorIs(t, err, context.Canceled)

	b.close()
	b.close()
	_, err = b.recv(context.Background(), time.Second)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestOpenSelectsSource(t *testing.T) {
	m := metrics.New()
	s, err := Open("sim", "", 8, quiet(), m)
	require.NoError(t, err)
	assert.Equal(t, "sim", s.Name())

	s, err = Open("auto", "telemd-missing0", 8, quiet(), m)
	require.NoError(t, err)
	assert.Equal(t, "sim", s.Name())

	_, err = Open("socketcan", "telemd-missing0", 8, quiet(), m)
	assert.Error(t, err)

	_, err = Open("serial", "", 8, quiet(), m)
	assert.Error(t, err)
}
