// Package publisher turns cache snapshots into wire packets and owns the
// packet-id counter. The counter only advances after the transport confirms
// a publish, so a failed packet is retried under the same id.
package publisher

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/lucaslui/telemd/internal/metrics"
	"github.com/lucaslui/telemd/internal/model"
)

// Transport delivers one encoded payload to the broker.
type Transport interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// Sink receives packets after the broker confirmed them. Sink errors never
// change the outcome of a publish.
type Sink interface {
	Name() string
	Write(ctx context.Context, p model.Packet, payload []byte) error
}

type Publisher struct {
	schema    *Schema
	transport Transport
	topic     string
	sinks     []Sink
	logger    *log.Logger
	metrics   *metrics.Metrics

	mu      sync.Mutex
	next    uint64
	skipped map[string]bool
}

func New(schema *Schema, transport Transport, topic string, logger *log.Logger, m *metrics.Metrics, sinks ...Sink) *Publisher {
	return &Publisher{
		schema:    schema,
		transport: transport,
		topic:     topic,
		sinks:     sinks,
		logger:    logger,
		metrics:   m,
		skipped:   make(map[string]bool),
	}
}

// Seed sets the id of the next packet, normally from the handshake.
func (p *Publisher) Seed(next uint64) {
	p.mu.Lock()
	p.next = next
	p.mu.Unlock()
	p.metrics.PacketID.Set(float64(next))
}

func (p *Publisher) PacketID() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.next
}

func (p *Publisher) Publish(ctx context.Context, pkt model.Packet) error {
	payload, skipped, err := p.schema.Encode(pkt)
	p.logSkipped(skipped)
	if err != nil {
		return err
	}

	if err := p.transport.Publish(ctx, p.topic, payload); err != nil {
		return fmt.Errorf("publish packet %d: %w", pkt.PacketID, err)
	}

	p.mu.Lock()
	p.next = pkt.PacketID + 1
	p.mu.Unlock()

	for _, s := range p.sinks {
		if err := s.Write(ctx, pkt, payload); err != nil {
			p.metrics.SinkErrors.WithLabelValues(s.Name()).Inc()
			p.logger.Printf("[publish] sink %s packet %d: %v", s.Name(), pkt.PacketID, err)
		}
	}
	return nil
}

// logSkipped reports each unknown path once per process.
func (p *Publisher) logSkipped(paths []string) {
	if len(paths) == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, path := range paths {
		if p.skipped[path] {
			continue
		}
		p.skipped[path] = true
		p.logger.Printf("[publish] %s has no wire destination, skipped", path)
	}
}
