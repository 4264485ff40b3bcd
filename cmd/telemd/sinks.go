package main

import (
	"context"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/lucaslui/telemd/internal/archive"
	"github.com/lucaslui/telemd/internal/broker"
	"github.com/lucaslui/telemd/internal/config"
	"github.com/lucaslui/telemd/internal/database"
	"github.com/lucaslui/telemd/internal/metrics"
	"github.com/lucaslui/telemd/internal/publisher"
)

type sinkSet struct {
	list   []publisher.Sink
	closer []func()
}

// close runs the closers in reverse so dispatchers drain before their
// writers close.
func (s *sinkSet) close() {
	for i := len(s.closer) - 1; i >= 0; i-- {
		s.closer[i]()
	}
}

// openSinks starts the enabled packet mirrors. A mirror that cannot start is
// logged and skipped; mirrors never block the collector from running.
func openSinks(ctx context.Context, cfg *config.Config, session string, logger *log.Logger, m *metrics.Metrics) *sinkSet {
	s := &sinkSet{}

	if cfg.KafkaEnabled {
		ensureCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := broker.EnsureKafkaTopics(ensureCtx, cfg, logger); err != nil {
			logger.Printf("[kafka] ensure topic %s failed, writing anyway: %v", cfg.KafkaTopic, err)
		}
		cancel()

		writer := broker.NewKafkaWriter(cfg)
		dispatcher := broker.NewKafkaDispatcher(writer, cfg.DispatcherCapacity, cfg.DispatcherMaxBatch, cfg.DispatcherTick, logger, m)
		s.closer = append(s.closer, func() { closeKafka(writer, logger) })
		s.closer = append(s.closer, func() {
			dispatcher.Stop()
			if n := dispatcher.Dropped(); n > 0 {
				logger.Printf("[kafka] %d packets dropped this session", n)
			}
		})
		s.list = append(s.list, broker.NewSink(dispatcher, cfg.VehicleID))
		logger.Printf("[kafka] mirroring packets to %s", cfg.KafkaTopic)
	}

	if cfg.InfluxEnabled {
		db := database.NewInfluxDB(cfg, session, logger, m)
		s.closer = append(s.closer, db.Close)
		s.list = append(s.list, db)
		logger.Printf("[influx] mirroring packets to %s/%s", cfg.InfluxOrg, cfg.InfluxBucket)
	}
	return s
}

func closeKafka(w *kafka.Writer, logger *log.Logger) {
	if err := w.Close(); err != nil {
		logger.Printf("[kafka] close writer: %v", err)
	}
}

// archiveHistory uploads the finished session file. Failures are logged; the
// CSV stays on disk either way.
func archiveHistory(cfg *config.Config, session, csvPath string, logger *log.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	store, err := archive.NewStore(archive.StoreOpts{
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		UseTLS:    cfg.S3UseTLS,
		Bucket:    cfg.S3Bucket,
		Session:   session,
	})
	if err != nil {
		logger.Printf("[archive] %v", err)
		return
	}
	if err := store.EnsureBucket(ctx); err != nil {
		logger.Printf("[archive] %v", err)
		return
	}
	a := archive.New(store, cfg.S3BasePath, cfg.ParquetCompression, session, logger)
	if _, _, err := a.Archive(ctx, csvPath, time.Now()); err != nil {
		logger.Printf("[archive] %s not archived: %v", csvPath, err)
	}
}
