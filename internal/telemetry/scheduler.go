package telemetry

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lucaslui/telemd/internal/metrics"
	"github.com/lucaslui/telemd/internal/model"
)

var ErrPublishInFlight = errors.New("telemetry: publish already in flight")

// Publisher owns the packet counter. PacketID is the id the next packet will
// carry; Publish advances it only when the transport confirms.
type Publisher interface {
	PacketID() uint64
	Publish(ctx context.Context, p model.Packet) error
}

// Scheduler rate-limits publishes of the cache and implements the retry
// contract: a failed publish leaves the cache as it was.
type Scheduler struct {
	cache    *Cache
	pub      Publisher
	interval time.Duration
	logger   *log.Logger
	metrics  *metrics.Metrics

	inFlight atomic.Bool

	mu          sync.Mutex
	lastPublish time.Time
	due         time.Time
}

func NewScheduler(cache *Cache, pub Publisher, interval time.Duration, logger *log.Logger, m *metrics.Metrics) *Scheduler {
	return &Scheduler{cache: cache, pub: pub, interval: interval, logger: logger, metrics: m}
}

// ShouldPublish is true once the next publish slot has been reached. Slots
// are spaced one interval apart from the previous slot, not from the moment
// the previous publish happened, so a late tick does not lower the rate. It
// is always true before the first publish.
func (s *Scheduler) ShouldPublish(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.due.IsZero() || !now.Before(s.due)
}

func (s *Scheduler) LastPublish() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPublish
}

// InFlight reports whether a publish attempt is running.
func (s *Scheduler) InFlight() bool { return s.inFlight.Load() }

// Publish sends the complete fields as one packet. It returns false with a
// nil error when there was nothing complete to send, and ErrPublishInFlight
// when another attempt is running.
func (s *Scheduler) Publish(ctx context.Context, now time.Time) (bool, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return false, ErrPublishInFlight
	}
	defer s.inFlight.Store(false)

	fields, gens := s.cache.snapshot()
	if len(fields) == 0 {
		return false, nil
	}

	pkt := model.Packet{Timestamp: now, PacketID: s.pub.PacketID(), Fields: fields}
	s.metrics.PublishAttempts.Inc()

	start := time.Now()
	if err := s.pub.Publish(ctx, pkt); err != nil {
		s.metrics.PublishFailures.Inc()
		s.logger.Printf("[publish] packet %d with %d fields failed, kept for retry: %v", pkt.PacketID, len(fields), err)
		return false, err
	}
	s.metrics.PublishLatency.Observe(time.Since(start).Seconds())
	s.metrics.PublishSuccess.Inc()

	removed := s.cache.removePublished(gens)
	s.metrics.PacketID.Set(float64(s.pub.PacketID()))
	s.metrics.CachedFields.Set(float64(s.cache.Len()))

	s.mu.Lock()
	s.lastPublish = now
	s.advance(now)
	s.mu.Unlock()

	if removed < len(gens) {
		s.logger.Printf("[publish] packet %d sent, %d fields updated during publish deferred", pkt.PacketID, len(gens)-removed)
	}
	return true, nil
}

// advance moves the slot forward by one interval. A scheduler that fell a
// whole interval behind restarts from now instead of bursting to catch up.
func (s *Scheduler) advance(now time.Time) {
	if s.due.IsZero() || now.Sub(s.due) >= s.interval {
		s.due = now.Add(s.interval)
		return
	}
	s.due = s.due.Add(s.interval)
}
