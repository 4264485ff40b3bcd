package live

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lucaslui/telemd/internal/metrics"
)

type RedisOpts struct {
	Addr, Password, Key string
	DB                  int
	TTL                 time.Duration
	Interval            time.Duration
	Timeout             time.Duration
}

// RedisMirror copies the latest values into one hash, path -> JSON value,
// and refreshes the key's TTL on every sync so a stopped collector's data
// expires on its own.
type RedisMirror struct {
	rdb      *redis.Client
	latest   *Latest
	key      string
	ttl      time.Duration
	interval time.Duration
	logger   *log.Logger
	metrics  *metrics.Metrics
	failing  bool
}

func NewRedisMirror(o RedisOpts, latest *Latest, logger *log.Logger, m *metrics.Metrics) *RedisMirror {
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = time.Second
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         o.Addr,
		Password:     o.Password,
		DB:           o.DB,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})
	return &RedisMirror{
		rdb:      rdb,
		latest:   latest,
		key:      o.Key,
		ttl:      o.TTL,
		interval: o.Interval,
		logger:   logger,
		metrics:  m,
	}
}

// Sync writes the current snapshot in one transaction.
func (r *RedisMirror) Sync(ctx context.Context) error {
	fields, err := hashFields(r.latest.Values())
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}
	_, err = r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, r.key, fields)
		p.Expire(ctx, r.key, r.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis sync %s: %w", r.key, err)
	}
	return nil
}

// Run syncs every interval until ctx is cancelled. Failures are logged once
// per outage.
func (r *RedisMirror) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		err := r.Sync(ctx)
		switch {
		case err != nil && ctx.Err() == nil:
			r.metrics.SinkErrors.WithLabelValues("redis").Inc()
			if !r.failing {
				r.logger.Printf("[redis] %v", err)
			}
			r.failing = true
		case err == nil && r.failing:
			r.logger.Printf("[redis] sync recovered")
			r.failing = false
		}
	}
}

func (r *RedisMirror) Close() error { return r.rdb.Close() }

func hashFields(values map[string]interface{}) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(values))
	for path, v := range values {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", path, err)
		}
		out[path] = string(b)
	}
	return out, nil
}
