// Package broker mirrors confirmed packets onto a Kafka topic. Packets go
// through a batching dispatcher so the publish path never waits on Kafka.
package broker

import (
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/lucaslui/telemd/internal/config"
)

func NewKafkaWriter(cfg *config.Config) *kafka.Writer {
	return &kafka.Writer{
		Addr:     kafka.TCP(cfg.KafkaBrokers...),
		Topic:    cfg.KafkaTopic,
		Balancer: &kafka.Hash{},

		BatchSize:    cfg.KafkaBatchSize,
		BatchTimeout: 10 * time.Millisecond,

		RequiredAcks: parseAcks(cfg.KafkaRequiredAcks),
		MaxAttempts:  5,
		Compression:  parseCompression(cfg.KafkaCompression),
	}
}

func parseCompression(s string) kafka.Compression {
	switch strings.ToLower(s) {
	case "", "none":
		return kafka.Compression(0)
	case "gzip":
		return kafka.Gzip
	case "lz4":
		return kafka.Lz4
	case "zstd":
		return kafka.Zstd
	default:
		return kafka.Snappy
	}
}

func parseAcks(s string) kafka.RequiredAcks {
	switch strings.ToLower(s) {
	case "none":
		return kafka.RequireNone
	case "all":
		return kafka.RequireAll
	default:
		return kafka.RequireOne
	}
}
