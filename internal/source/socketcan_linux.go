//go:build linux

package source

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/brutella/can"

	"github.com/lucaslui/telemd/internal/metrics"
	"github.com/lucaslui/telemd/internal/model"
)

const (
	effFlag = 0x80000000
	effMask = 0x1FFFFFFF
	sffMask = 0x000007FF
)

type SocketCAN struct {
	iface string
	bus   *can.Bus
	buf   *buffer
}

func openSocketCAN(iface string, capacity int, logger *log.Logger, m *metrics.Metrics) (Source, error) {
	bus, err := can.NewBusForInterfaceWithName(iface)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", iface, err)
	}
	s := &SocketCAN{iface: iface, bus: bus, buf: newBuffer(capacity, logger, m)}
	bus.SubscribeFunc(s.handle)

	go func() {
		if err := bus.ConnectAndPublish(); err != nil {
			select {
			case <-s.buf.closed:
			default:
				logger.Printf("[can] %s read loop stopped: %v", iface, err)
			}
		}
		s.buf.close()
	}()
	logger.Printf("[can] listening on %s", iface)
	return s, nil
}

func (s *SocketCAN) handle(f can.Frame) {
	n := int(f.Length)
	if n > len(f.Data) {
		n = len(f.Data)
	}
	data := make([]byte, n)
	copy(data, f.Data[:n])
	s.buf.push(model.Frame{ID: frameID(f.ID), Data: data, Timestamp: time.Now()})
}

func frameID(raw uint32) uint32 {
	if raw&effFlag != 0 {
		return raw & effMask
	}
	return raw & sffMask
}

func (s *SocketCAN) Name() string { return "socketcan:" + s.iface }

func (s *SocketCAN) Recv(ctx context.Context, timeout time.Duration) ([]model.Frame, error) {
	return s.buf.recv(ctx, timeout)
}

func (s *SocketCAN) Close() error {
	s.buf.close()
	return s.bus.Disconnect()
}
