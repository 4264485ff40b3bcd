// Package collector runs the frame pipeline: read frames on a dedicated
// goroutine, decode or aggregate them into the caches on the main loop, and
// publish complete snapshots on a fixed tick.
package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/lucaslui/telemd/internal/aggregate"
	"github.com/lucaslui/telemd/internal/decode"
	"github.com/lucaslui/telemd/internal/diag"
	"github.com/lucaslui/telemd/internal/live"
	"github.com/lucaslui/telemd/internal/metrics"
	"github.com/lucaslui/telemd/internal/model"
	"github.com/lucaslui/telemd/internal/source"
	"github.com/lucaslui/telemd/internal/telemetry"
)

const idleNotice = 10 * time.Second

// Recorder receives every applied value; the history log implements it.
type Recorder interface {
	Log(field string, v model.Value, ts time.Time)
}

type Options struct {
	Source     source.Source
	Table      *decode.Table
	Aggregator *aggregate.Aggregator
	Cache      *telemetry.Cache
	Scheduler  *telemetry.Scheduler

	// Latest and History are optional.
	Latest  *live.Latest
	History Recorder

	RecvTimeout            time.Duration
	PublishTick            time.Duration
	ShutdownPublishTimeout time.Duration
	SummaryInterval        time.Duration

	Logger  *log.Logger
	Metrics *metrics.Metrics
	Diag    *diag.Reporter
}

type Collector struct {
	o Options

	publishing sync.WaitGroup
	lastFrame  time.Time
	lastIdle   time.Time
}

func New(o Options) *Collector {
	if o.Diag == nil {
		o.Diag = diag.NewReporter(o.Logger, 5*time.Second)
	}
	return &Collector{o: o}
}

// Run blocks until ctx is cancelled or the source closes. On the way out it
// waits for an in-flight publish and makes one last bounded attempt.
func (c *Collector) Run(ctx context.Context) error {
	readCtx, stopRead := context.WithCancel(ctx)
	defer stopRead()

	batches := make(chan []model.Frame, 64)
	readErr := make(chan error, 1)
	go func() {
		defer close(batches)
		readErr <- c.read(readCtx, batches)
	}()

	tick := time.NewTicker(c.o.PublishTick)
	defer tick.Stop()

	var summary <-chan time.Time
	if c.o.Latest != nil && c.o.SummaryInterval > 0 {
		t := time.NewTicker(c.o.SummaryInterval)
		defer t.Stop()
		summary = t.C
	}

	c.lastFrame = time.Now()
	var runErr error
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case batch, ok := <-batches:
			if !ok {
				runErr = <-readErr
				break loop
			}
			for _, f := range batch {
				c.Handle(f)
			}
			c.o.Metrics.CachedFields.Set(float64(c.o.Cache.Len()))
		case now := <-tick.C:
			c.maybePublish(now)
			c.idle(now)
		case now := <-summary:
			c.o.Latest.Summary(c.o.Logger, now)
		}
	}

	stopRead()
	c.publishing.Wait()
	c.finalPublish()
	return runErr
}

func (c *Collector) read(ctx context.Context, out chan<- []model.Frame) error {
	for {
		frames, err := c.o.Source.Recv(ctx, c.o.RecvTimeout)
		switch {
		case errors.Is(err, context.Canceled) || ctx.Err() != nil:
			return nil
		case errors.Is(err, source.ErrClosed):
			c.o.Logger.Printf("[can] %s closed", c.o.Source.Name())
			return err
		case err != nil:
			c.o.Diag.Reportf("recv", "[can] receive from %s failed: %v", c.o.Source.Name(), err)
			select {
			case <-time.After(50 * time.Millisecond):
			case <-ctx.Done():
				return nil
			}
			continue
		}
		if len(frames) == 0 {
			continue
		}
		select {
		case out <- frames:
		case <-ctx.Done():
			return nil
		}
	}
}

// maybePublish starts a publish on its own goroutine when the interval has
// elapsed and no other attempt is running, so the loop keeps draining frames.
func (c *Collector) maybePublish(now time.Time) {
	s := c.o.Scheduler
	if s.InFlight() || !s.ShouldPublish(now) {
		return
	}
	c.publishing.Add(1)
	go func() {
		defer c.publishing.Done()
		// the transport bounds the attempt; shutdown lets it finish
		_, _ = s.Publish(context.Background(), now)
	}()
}

func (c *Collector) finalPublish() {
	ctx, cancel := context.WithTimeout(context.Background(), c.o.ShutdownPublishTimeout)
	defer cancel()
	sent, err := c.o.Scheduler.Publish(ctx, time.Now())
	switch {
	case err != nil:
		c.o.Logger.Printf("[shutdown] final publish failed, %d fields unsent: %v", c.o.Cache.Len(), err)
	case sent:
		c.o.Logger.Printf("[shutdown] final publish sent")
	}
}

func (c *Collector) idle(now time.Time) {
	if now.Sub(c.lastFrame) < idleNotice || now.Sub(c.lastIdle) < idleNotice {
		return
	}
	c.lastIdle = now
	c.o.Logger.Printf("[can] waiting for frames from %s", c.o.Source.Name())
}

// Handle applies one frame to the caches. Unknown ids leave them unchanged.
func (c *Collector) Handle(f model.Frame) {
	m := c.o.Metrics
	m.FramesReceived.Inc()
	now := f.Timestamp
	if now.IsZero() {
		now = time.Now()
	}
	c.lastFrame = time.Now()

	if res, ok := c.o.Aggregator.Ingest(f.ID, f.Data); ok {
		c.apply(res.Group.ValuesPath, model.Vector(res.Values), now)
		c.apply(res.Group.MeanPath, model.Float(res.Mean), now)
		return
	}

	bindings := c.o.Table.Lookup(f.ID)
	if len(bindings) == 0 {
		m.FramesUnknown.Inc()
		return
	}
	for _, b := range bindings {
		v, err := b.Spec.Decode(f.Data)
		if err != nil {
			m.DecodeFallbacks.Inc()
			c.o.Diag.Reportf(fmt.Sprintf("decode/%X/%s", f.ID, b.Path),
				"[decode] %s: %v, using fallback (data [% X])", b, err, f.Data)
		}
		if !b.Slotted() {
			c.apply(b.Path, v, now)
			continue
		}
		if err := c.o.Cache.UpdateSlot(b.Path, b.Index, b.Size, v.Float(), now); err != nil {
			m.SlotRejections.Inc()
			c.o.Diag.Reportf(fmt.Sprintf("slot/%X/%s", f.ID, b.Path), "[cache] %s dropped: %v", b, err)
			continue
		}
		if c.o.Latest != nil {
			if err := c.o.Latest.UpdateSlot(b.Path, b.Index, b.Size, v.Float(), now); err != nil {
				c.o.Diag.Reportf(fmt.Sprintf("live/%X/%s", f.ID, b.Path), "[live] %s dropped: %v", b, err)
			}
		}
		if c.o.History != nil {
			c.o.History.Log(fmt.Sprintf("%s[%d]", b.Path, b.Index), v, now)
		}
	}
}

func (c *Collector) apply(path string, v model.Value, now time.Time) {
	c.o.Cache.Update(path, v, now)
	if c.o.Latest != nil {
		c.o.Latest.Update(path, v, now)
	}
	if c.o.History != nil {
		c.o.History.Log(path, v, now)
	}
}
