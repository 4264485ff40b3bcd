package broker

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucaslui/telemd/internal/metrics"
	"github.com/lucaslui/telemd/internal/model"
)

type recordingWriter struct {
	mu      sync.Mutex
	err     error
	batches [][]kafka.Message
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	cp := make([]kafka.Message, len(msgs))
	copy(cp, msgs)
	w.batches = append(w.batches, cp)
	return w.err
}

func (w *recordingWriter) total() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, b := range w.batches {
		n += len(b)
	}
	return n
}

func quiet() *log.Logger { return log.New(io.Discard, "", 0) }

func TestDispatcherFlushesFullBatches(t *testing.T) {
	w := &recordingWriter{}
	d := NewKafkaDispatcher(w, 10, 2, time.Hour, quiet(), metrics.New())

	for i := 0; i < 5; i++ {
		require.True(t, d.Enqueue(kafka.Message{Value: []byte{byte(i)}}))
	}
	d.Stop()

	assert.Equal(t, 5, w.total())
	for _, b := range w.batches {
		assert.LessOrEqual(t, len(b), 2)
	}
}

func TestDispatcherFlushesOnTick(t *testing.T) {
	w := &recordingWriter{}
	d := NewKafkaDispatcher(w, 10, 100, 5*time.Millisecond, quiet(), metrics.New())
	defer d.Stop()

	d.Enqueue(kafka.Message{Value: []byte("x")})
	assert.Eventually(t, func() bool { return w.total() == 1 }, time.Second, 5*time.Millisecond)
}

func TestDispatcherCountsWriteErrors(t *testing.T) {
	w := &recordingWriter{err: errors.New("leader not available")}
	m := metrics.New()
	d := NewKafkaDispatcher(w, 10, 1, time.Hour, quiet(), m)
	d.Enqueue(kafka.Message{})
	d.Stop()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SinkErrors.WithLabelValues("kafka")))
}

func TestSinkBuildsKeyedMessage(t *testing.T) {
	w := &recordingWriter{}
	d := NewKafkaDispatcher(w, 10, 100, time.Hour, quiet(), metrics.New())
	s := NewSink(d, "lhr")

	ts := time.UnixMilli(1700000000000)
	require.NoError(t, s.Write(context.Background(), model.Packet{Timestamp: ts, PacketID: 99}, []byte{0xA1}))
	d.Stop()

	require.Len(t, w.batches, 1)
	msg := w.batches[0][0]
	assert.Equal(t, "lhr", string(msg.Key))
	assert.Equal(t, []byte{0xA1}, msg.Value)
	assert.Equal(t, "packet_id", msg.Headers[0].Key)
	assert.Equal(t, "99", string(msg.Headers[0].Value))
	assert.Equal(t, "kafka", s.Name())
}

func TestSinkReportsFullBuffer(t *testing.T) {
	// a writer that blocks keeps the loop busy so the one-slot buffer fills
	block := make(chan struct{})
	w := &blockingWriter{release: block}
	d := NewKafkaDispatcher(w, 1, 1, time.Hour, quiet(), metrics.New())
	s := NewSink(d, "lhr")

	var fullSeen bool
	for i := 0; i < 10 && !fullSeen; i++ {
		fullSeen = errors.Is(s.Write(context.Background(), model.Packet{}, nil), ErrDispatcherFull)
	}
	close(block)
	d.Stop()

	assert.True(t, fullSeen)
	assert.NotZero(t, d.Dropped())
}

type blockingWriter struct{ release chan struct{} }

func (w *blockingWriter) WriteMessages(ctx context.Context, _ ...kafka.Message) error {
	select {
	case <-w.release:
	case <-ctx.Done():
	}
	return nil
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, kafka.Zstd, parseCompression("zstd"))
	assert.Equal(t, kafka.Compression(0), parseCompression("none"))
	assert.Equal(t, kafka.Snappy, parseCompression("unknown"))
	assert.Equal(t, kafka.RequireAll, parseAcks("all"))
	assert.Equal(t, kafka.RequireOne, parseAcks(""))
}
