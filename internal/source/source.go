// Package source yields raw CAN frames to the collector, either from a
// SocketCAN interface or from a built-in simulator.
package source

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/lucaslui/telemd/internal/metrics"
	"github.com/lucaslui/telemd/internal/model"
)

var (
	ErrClosed      = errors.New("source closed")
	ErrUnsupported = errors.New("socketcan is only available on linux")
)

// Source returns the frames that arrived within timeout. A timeout with no
// frames is (nil, nil), not an error.
type Source interface {
	Name() string
	Recv(ctx context.Context, timeout time.Duration) ([]model.Frame, error)
	Close() error
}

// Open builds the source named by kind: "socketcan", "sim" or "auto", which
// tries socketcan and falls back to the simulator.
func Open(kind, iface string, capacity int, logger *log.Logger, m *metrics.Metrics) (Source, error) {
	switch kind {
	case "sim":
		logger.Printf("[can] using simulator")
		return NewSimulator(capacity), nil
	case "socketcan":
		return openSocketCAN(iface, capacity, logger, m)
	case "auto":
		s, err := openSocketCAN(iface, capacity, logger, m)
		if err == nil {
			return s, nil
		}
		logger.Printf("[can] socketcan %s unavailable (%v), using simulator", iface, err)
		return NewSimulator(capacity), nil
	default:
		return nil, fmt.Errorf("unknown CAN source %q", kind)
	}
}

// buffer decouples a push-style bus subscriber from Recv. Pushes never block;
// a full buffer drops the frame and counts it.
type buffer struct {
	ch      chan model.Frame
	closed  chan struct{}
	dropped atomic.Uint64
	logger  *log.Logger
	metrics *metrics.Metrics
}

func newBuffer(capacity int, logger *log.Logger, m *metrics.Metrics) *buffer {
	return &buffer{
		ch:      make(chan model.Frame, capacity),
		closed:  make(chan struct{}),
		logger:  logger,
		metrics: m,
	}
}

func (b *buffer) push(f model.Frame) {
	select {
	case b.ch <- f:
	default:
		m := b.dropped.Add(1)
		b.metrics.FramesDropped.Inc()
		if m == 1 || m%1000 == 0 {
			b.logger.Printf("[can] receive buffer full, %d frames dropped so far", m)
		}
	}
}

// recv waits up to timeout for the first frame and then drains whatever else
// is already buffered.
func (b *buffer) recv(ctx context.Context, timeout time.Duration) ([]model.Frame, error) {
	t := time.NewTimer(timeout)
	defer t.Stop()

	var first model.Frame
	select {
	case first = <-b.ch:
	case <-t.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-b.closed:
		return nil, ErrClosed
	}

	out := []model.Frame{first}
	for len(out) < cap(b.ch) {
		select {
		case f := <-b.ch:
			out = append(out, f)
		default:
			return out, nil
		}
	}
	return out, nil
}

func (b *buffer) close() {
	select {
	case <-b.closed:
	default:
		close(b.closed)
	}
}
