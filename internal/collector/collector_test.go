package collector

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucaslui/telemd/internal/aggregate"
	"github.com/lucaslui/telemd/internal/decode"
	"github.com/lucaslui/telemd/internal/diag"
	"github.com/lucaslui/telemd/internal/live"
	"github.com/lucaslui/telemd/internal/metrics"
	"github.com/lucaslui/telemd/internal/model"
	"github.com/lucaslui/telemd/internal/source"
	"github.com/lucaslui/telemd/internal/telemetry"
)

type scriptSource struct {
	mu      sync.Mutex
	batches [][]model.Frame
	closeAt bool
}

func (s *scriptSource) Name() string { return "script" }

func (s *scriptSource) Recv(ctx context.Context, timeout time.Duration) ([]model.Frame, error) {
	s.mu.Lock()
	if len(s.batches) > 0 {
		b := s.batches[0]
		s.batches = s.batches[1:]
		s.mu.Unlock()
		return b, nil
	}
	closeNow := s.closeAt
	s.mu.Unlock()
	if closeNow {
		return nil, source.ErrClosed
	}
	select {
	case <-time.After(timeout):
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *scriptSource) Close() error { return nil }

// steadySource yields one 0x100 frame per millisecond, forever.
type steadySource struct{}

func (steadySource) Name() string { return "steady" }

func (steadySource) Recv(ctx context.Context, _ time.Duration) ([]model.Frame, error) {
	select {
	case <-time.After(time.Millisecond):
		return []model.Frame{{ID: 0x100, Data: []byte{0xE8, 0x03}}}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (steadySource) Close() error { return nil }

type fakePublisher struct {
	mu      sync.Mutex
	next    uint64
	fail    bool
	packets []model.Packet
}

func (f *fakePublisher) PacketID() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.next
}

func (f *fakePublisher) Publish(_ context.Context, p model.Packet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broker down")
	}
	f.packets = append(f.packets, p)
	f.next++
	return nil
}

func (f *fakePublisher) sent() []model.Packet {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Packet(nil), f.packets...)
}

type recorder struct {
	mu     sync.Mutex
	fields []string
}

func (r *recorder) Log(field string, _ model.Value, _ time.Time) {
	r.mu.Lock()
	r.fields = append(r.fields, field)
	r.mu.Unlock()
}

type rig struct {
	c       *Collector
	cache   *telemetry.Cache
	latest  *live.Latest
	history *recorder
	pub     *fakePublisher
	m       *metrics.Metrics
}

func newRig(t *testing.T, src source.Source) *rig {
	t.Helper()
	table, err := decode.NewTable([]decode.Binding{
		{FrameID: 0x100, Path: "dynamics.x", Spec: decode.SInt(0, 2, 0.01)},
		{FrameID: 0x101, Path: "dynamics.v", Spec: decode.UInt(0, 1, 1), Index: 0, Size: 2},
		{FrameID: 0x102, Path: "dynamics.v", Spec: decode.UInt(0, 1, 1), Index: 1, Size: 2},
	})
	require.NoError(t, err)
	agg, err := aggregate.New(aggregate.DefaultGroups()...)
	require.NoError(t, err)

	logger := log.New(io.Discard, "", 0)
	m := metrics.New()
	cache := telemetry.NewCache()
	pub := &fakePublisher{}
	r := &rig{cache: cache, latest: live.NewLatest(), history: &recorder{}, pub: pub, m: m}
	r.c = New(Options{
		Source:                 src,
		Table:                  table,
		Aggregator:             agg,
		Cache:                  cache,
		Scheduler:              telemetry.NewScheduler(cache, pub, 10*time.Millisecond, logger, m),
		Latest:                 r.latest,
		History:                r.history,
		RecvTimeout:            time.Millisecond,
		PublishTick:            2 * time.Millisecond,
		ShutdownPublishTimeout: time.Second,
		SummaryInterval:        time.Hour,
		Logger:                 logger,
		Metrics:                m,
	})
	return r
}

func TestUnknownFrameLeavesCachesUnchanged(t *testing.T) {
	r := newRig(t, &scriptSource{})
	r.c.Handle(model.Frame{ID: 0x7FF, Data: []byte{1, 2}})

	assert.Zero(t, r.cache.Len())
	assert.Zero(t, r.latest.Len())
	assert.Empty(t, r.history.fields)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.m.FramesUnknown))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.m.FramesReceived))
}

func TestHandleDecodesIntoEveryConsumer(t *testing.T) {
	r := newRig(t, &scriptSource{})
	r.c.Handle(model.Frame{ID: 0x100, Data: []byte{0xE8, 0x03}, Timestamp: time.Unix(5, 0)})

	v, ok := r.cache.Get("dynamics.x")
	require.True(t, ok)
	assert.InDelta(t, 10.0, v.Float(), 1e-9)
	assert.Equal(t, 1, r.latest.Len())
	assert.Equal(t, []string{"dynamics.x"}, r.history.fields)
}

func TestShortPayloadUsesFallback(t *testing.T) {
	r := newRig(t, &scriptSource{})
	r.c.Handle(model.Frame{ID: 0x100, Data: []byte{0xE8}})

	v, ok := r.cache.Get("dynamics.x")
	require.True(t, ok)
	assert.Equal(t, 0.0, v.Float())
	assert.Equal(t, 1.0, testutil.ToFloat64(r.m.DecodeFallbacks))
}

func TestSlottedFieldCompletesAcrossFrames(t *testing.T) {
	r := newRig(t, &scriptSource{})
	r.c.Handle(model.Frame{ID: 0x101, Data: []byte{7}})
	assert.Empty(t, r.cache.SnapshotComplete())

	r.c.Handle(model.Frame{ID: 0x102, Data: []byte{9}})
	snap := r.cache.SnapshotComplete()
	require.Contains(t, snap, "dynamics.v")
	assert.Equal(t, []float64{7, 9}, snap["dynamics.v"].Floats())
	assert.Equal(t, []string{"dynamics.v[0]", "dynamics.v[1]"}, r.history.fields)
}

func TestLiveSlotRejectionIsReported(t *testing.T) {
	r := newRig(t, &scriptSource{})
	var buf bytes.Buffer
	r.c.o.Diag = diag.NewReporter(log.New(&buf, "", 0), time.Minute)
	// the live cache outlives publishes, so it can hold an older layout
	require.NoError(t, r.latest.UpdateSlot("dynamics.v", 0, 3, 1, time.Now()))

	r.c.Handle(model.Frame{ID: 0x101, Data: []byte{7}})

	v, ok := r.cache.Get("dynamics.v")
	require.True(t, ok)
	assert.Equal(t, 2, v.Len())
	assert.Contains(t, buf.String(), "[live] ")
	assert.Contains(t, buf.String(), "dynamics.v")
}

func TestGroupFramesGoThroughAggregator(t *testing.T) {
	r := newRig(t, &scriptSource{})
	// two cells of 3.000 V and 4.000 V in millivolts
	r.c.Handle(model.Frame{ID: 0x370, Data: []byte{0xB8, 0x0B, 0xA0, 0x0F}})

	cells, ok := r.cache.Get(aggregate.CellVoltages.ValuesPath)
	require.True(t, ok)
	assert.InDeltaSlice(t, []float64{3, 4}, cells.Floats(), 1e-9)
	mean, ok := r.cache.Get(aggregate.CellVoltages.MeanPath)
	require.True(t, ok)
	assert.InDelta(t, 3.5, mean.Float(), 1e-9)
	assert.Zero(t, testutil.ToFloat64(r.m.FramesUnknown))
}

func TestRunPublishesAndStopsOnCancel(t *testing.T) {
	src := &scriptSource{batches: [][]model.Frame{
		{{ID: 0x100, Data: []byte{0xE8, 0x03}}},
	}}
	r := newRig(t, src)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.c.Run(ctx) }()

	assert.Eventually(t, func() bool { return len(r.pub.sent()) == 1 }, time.Second, 2*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	sent := r.pub.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, uint64(0), sent[0].PacketID)
	assert.Contains(t, sent[0].Fields, "dynamics.x")
	assert.Zero(t, r.cache.Len())
}

func TestRunMakesFinalPublishWhenSourceCloses(t *testing.T) {
	src := &scriptSource{
		batches: [][]model.Frame{{{ID: 0x101, Data: []byte{1}}, {ID: 0x102, Data: []byte{2}}}},
		closeAt: true,
	}
	r := newRig(t, src)
	r.c.o.PublishTick = time.Hour

	err := r.c.Run(context.Background())
	assert.ErrorIs(t, err, source.ErrClosed)

	sent := r.pub.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []float64{1, 2}, sent[0].Fields["dynamics.v"].Floats())
}

func TestFailedPublishKeepsCache(t *testing.T) {
	src := &scriptSource{batches: [][]model.Frame{{{ID: 0x100, Data: []byte{1, 0}}}}}
	r := newRig(t, src)
	r.pub.fail = true

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.c.Run(ctx) }()

	assert.Eventually(t, func() bool { return testutil.ToFloat64(r.m.PublishFailures) >= 2 }, time.Second, 2*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, 1, r.cache.Len())
	assert.Equal(t, uint64(0), r.pub.PacketID())
}

func TestRunHoldsConfiguredPublishRate(t *testing.T) {
	const interval = 20 * time.Millisecond
	r := newRig(t, steadySource{})
	r.c.o.Scheduler = telemetry.NewScheduler(r.cache, r.pub, interval, log.New(io.Discard, "", 0), r.m)
	r.c.o.PublishTick = interval / 2

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.c.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	n0, start := len(r.pub.sent()), time.Now()
	time.Sleep(time.Second)
	n1, elapsed := len(r.pub.sent()), time.Since(start)
	cancel()
	require.NoError(t, <-done)

	rate := float64(n1-n0) / elapsed.Seconds()
	want := float64(time.Second / interval)
	assert.GreaterOrEqual(t, rate, 0.9*want)
	assert.LessOrEqual(t, rate, 1.1*want)
}
