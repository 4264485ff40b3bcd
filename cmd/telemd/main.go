package main

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lucaslui/telemd/internal/aggregate"
	"github.com/lucaslui/telemd/internal/collector"
	"github.com/lucaslui/telemd/internal/config"
	"github.com/lucaslui/telemd/internal/decode"
	"github.com/lucaslui/telemd/internal/diag"
	"github.com/lucaslui/telemd/internal/handshake"
	"github.com/lucaslui/telemd/internal/live"
	"github.com/lucaslui/telemd/internal/metrics"
	"github.com/lucaslui/telemd/internal/mqtt"
	"github.com/lucaslui/telemd/internal/publisher"
	"github.com/lucaslui/telemd/internal/runtime"
	"github.com/lucaslui/telemd/internal/server"
	"github.com/lucaslui/telemd/internal/source"
	"github.com/lucaslui/telemd/internal/telemetry"
	"github.com/lucaslui/telemd/internal/tslog"
)

func main() {
	logger := config.GetLogger()

	cfg, err := config.LoadConfig(logger)
	if err != nil {
		logger.Fatalf("[boot] invalid configuration: %v", err)
	}
	logger.Printf("[boot] telemd configs loaded:%s", cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runtime.SetupGracefulShutdown(cancel, logger)

	session := uuid.NewString()
	start := time.Now()
	m := metrics.New()

	table, agg := loadDecoding(cfg, logger)

	// publish path
	client := mqtt.BuildMQTTClient(cfg, logger, m)
	if err := mqtt.Connect(client, cfg.MQTTConnectTimeout); err != nil {
		if cfg.RequireBroker {
			logger.Fatalf("[boot] broker %s unreachable: %v", cfg.MQTTBrokerURL, err)
		}
		logger.Printf("[boot] broker %s unreachable, continuing in degraded mode: %v", cfg.MQTTBrokerURL, err)
	}
	transport := mqtt.NewTransport(client, cfg.MQTTQoS, cfg.MQTTPublishTimeout, logger)
	defer transport.Close()

	sinks := openSinks(ctx, cfg, session, logger, m)
	defer sinks.close()

	pub := publisher.New(publisher.NewSchema(), transport, cfg.MQTTTopic, logger, m, sinks.list...)
	if cfg.HandshakeURL != "" {
		pub.Seed(handshake.New(cfg.HandshakeURL, cfg.HandshakeTimeout, logger).NextPacketID(ctx))
	}

	cache := telemetry.NewCache()
	scheduler := telemetry.NewScheduler(cache, pub, cfg.PublishInterval, logger, m)

	src, err := source.Open(cfg.CANSource, cfg.CANInterface, cfg.CANBuffer, logger, m)
	if err != nil {
		logger.Fatalf("[boot] frame source: %v", err)
	}
	defer src.Close()

	// background consumers stop on their own context so the collector's
	// final publish happens while they are still up
	bgCtx, stopBg := context.WithCancel(context.Background())
	var bg sync.WaitGroup
	goBg := func(fn func(context.Context)) {
		bg.Add(1)
		go func() {
			defer bg.Done()
			fn(bgCtx)
		}()
	}

	var history *tslog.Logger
	if cfg.HistoryEnabled {
		history, err = tslog.New(cfg.HistoryDir, cfg.HistoryBasename, start, cfg.HistoryBufferSize, cfg.HistoryFlushInterval, logger, m)
		if err != nil {
			logger.Printf("[tslog] ERROR history disabled: %v", err)
			history = nil
		} else {
			goBg(history.Run)
		}
	}

	latest := live.NewLatest()
	hub := live.NewHub(latest, cfg.LiveBroadcast, logger)
	goBg(hub.Run)

	if cfg.RedisEnabled {
		mirror := live.NewRedisMirror(live.RedisOpts{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Key:      cfg.RedisKey,
			TTL:      cfg.RedisTTL,
			Interval: cfg.RedisSyncInterval,
		}, latest, logger, m)
		defer mirror.Close()
		goBg(mirror.Run)
	}

	opts := server.Options{
		Addr:    cfg.HTTPAddr,
		Status:  status{transport, pub},
		Latest:  latest,
		Hub:     hub,
		Metrics: m.Handler(),
		Logger:  logger,
	}
	if history != nil {
		opts.History = history
	}
	srv := server.New(opts)
	goBg(func(ctx context.Context) {
		if err := srv.Run(ctx); err != nil {
			logger.Printf("[http] server stopped: %v", err)
		}
	})

	c := collector.New(collector.Options{
		Source:                 src,
		Table:                  table,
		Aggregator:             agg,
		Cache:                  cache,
		Scheduler:              scheduler,
		Latest:                 latest,
		History:                recorder(history),
		RecvTimeout:            cfg.CANRecvTimeout,
		PublishTick:            cfg.PublishTick,
		ShutdownPublishTimeout: cfg.ShutdownPublishTimeout,
		SummaryInterval:        cfg.SummaryInterval,
		Logger:                 logger,
		Metrics:                m,
		Diag:                   diag.NewReporter(logger, 5*time.Second),
	})

	logger.Printf("[boot] session %s started, source %s, %d bindings over %d frame ids",
		session, src.Name(), table.Len(), len(table.FrameIDs()))
	if err := c.Run(ctx); err != nil && !errors.Is(err, source.ErrClosed) {
		logger.Printf("[can] collector stopped: %v", err)
	}

	stopBg()
	bg.Wait()

	if history != nil && cfg.ArchiveEnabled {
		archiveHistory(cfg, session, history.Path(), logger)
	}
	logger.Printf("[shutdown] telemd stopped after %s, next packet id %d", time.Since(start).Round(time.Second), pub.PacketID())
}

// loadDecoding builds the decode table from the built-in bindings plus the
// optional overlay and checks every produced path against the wire schema.
func loadDecoding(cfg *config.Config, logger *log.Logger) (*decode.Table, *aggregate.Aggregator) {
	bindings := decode.Builtin()
	if cfg.CANMapFile != "" {
		overlay, err := decode.LoadOverlay(cfg.CANMapFile)
		if err != nil {
			logger.Fatalf("[boot] mapping overlay %s: %v", cfg.CANMapFile, err)
		}
		logger.Printf("[boot] mapping overlay %s: %d bindings", cfg.CANMapFile, len(overlay))
		bindings = append(bindings, overlay...)
	}
	table, err := decode.NewTable(bindings)
	if err != nil {
		logger.Fatalf("[boot] decode table: %v", err)
	}
	agg, err := aggregate.New(aggregate.DefaultGroups()...)
	if err != nil {
		logger.Fatalf("[boot] aggregate groups: %v", err)
	}

	produced := table.Fields()
	for path, kind := range agg.Fields() {
		produced[path] = kind
	}
	if err := publisher.NewSchema().Check(produced); err != nil {
		logger.Fatalf("[boot] %v", err)
	}
	return table, agg
}

type status struct {
	transport *mqtt.Transport
	pub       *publisher.Publisher
}

func (s status) Connected() bool  { return s.transport.Connected() }
func (s status) PacketID() uint64 { return s.pub.PacketID() }

// recorder avoids handing the collector a typed nil.
func recorder(h *tslog.Logger) collector.Recorder {
	if h == nil {
		return nil
	}
	return h
}
