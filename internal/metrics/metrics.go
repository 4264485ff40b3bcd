package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its registry so tests and multiple collectors in one process
// never collide on the default registerer.
type Metrics struct {
	Registry *prometheus.Registry

	FramesReceived  prometheus.Counter
	FramesUnknown   prometheus.Counter
	FramesDropped   prometheus.Counter
	DecodeFallbacks prometheus.Counter
	SlotRejections  prometheus.Counter

	PublishAttempts prometheus.Counter
	PublishSuccess  prometheus.Counter
	PublishFailures prometheus.Counter
	PublishLatency  prometheus.Histogram
	PacketID        prometheus.Gauge
	CachedFields    prometheus.Gauge
	BrokerConnected prometheus.Gauge

	HistoryFlushes  prometheus.Counter
	HistoryFailures prometheus.Counter
	HistoryDropped  prometheus.Counter
	SinkErrors      *prometheus.CounterVec
}

func New() *Metrics {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Namespace: "telemd", Name: name, Help: help})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "telemd", Name: name, Help: help})
	}

	m := &Metrics{
		Registry: prometheus.NewRegistry(),

		FramesReceived:  counter("frames_received_total", "Frames read from the bus."),
		FramesUnknown:   counter("frames_unknown_total", "Frames whose id is neither bound nor grouped."),
		FramesDropped:   counter("frames_dropped_total", "Frames dropped because the source buffer was full."),
		DecodeFallbacks: counter("decode_fallbacks_total", "Decodes that substituted a fallback value."),
		SlotRejections:  counter("slot_rejections_total", "Vector slot writes rejected for an out of range index."),

		PublishAttempts: counter("publish_attempts_total", "Publish attempts with a non-empty snapshot."),
		PublishSuccess:  counter("publish_success_total", "Publishes confirmed by the transport."),
		PublishFailures: counter("publish_failures_total", "Publishes that failed and were kept for retry."),
		PublishLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "telemd",
			Name:      "publish_latency_seconds",
			Help:      "Time from snapshot to transport confirmation.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		PacketID:        gauge("packet_id", "Id the next published packet will carry."),
		CachedFields:    gauge("cached_fields", "Fields currently held in the publish cache."),
		BrokerConnected: gauge("broker_connected", "1 while the broker transport is connected."),

		HistoryFlushes:  counter("history_flushes_total", "Successful history log flushes."),
		HistoryFailures: counter("history_failures_total", "History log flushes that failed."),
		HistoryDropped:  counter("history_dropped_total", "Buffered history values discarded while the file could not be written."),
		SinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "telemd",
			Name:      "sink_errors_total",
			Help:      "Mirror sink errors by sink.",
		}, []string{"sink"}),
	}

	m.Registry.MustRegister(
		m.FramesReceived, m.FramesUnknown, m.FramesDropped, m.DecodeFallbacks, m.SlotRejections,
		m.PublishAttempts, m.PublishSuccess, m.PublishFailures, m.PublishLatency,
		m.PacketID, m.CachedFields, m.BrokerConnected,
		m.HistoryFlushes, m.HistoryFailures, m.HistoryDropped, m.SinkErrors,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
