package broker

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/lucaslui/telemd/internal/metrics"
)

// MessageWriter is the part of *kafka.Writer the dispatcher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaDispatcher batches messages and flushes them when the batch is full or
// on every tick. Enqueue never blocks: when the buffer is full the message is
// dropped and counted.
type KafkaDispatcher struct {
	writer       MessageWriter
	inputChannel chan kafka.Message
	stopChannel  chan struct{}
	done         chan struct{}
	maxBatch     int
	tick         time.Duration
	writeTimeout time.Duration
	logger       *log.Logger
	metrics      *metrics.Metrics
	dropped      atomic.Uint64
}

func NewKafkaDispatcher(w MessageWriter, capacity, maxBatch int, tick time.Duration, logger *log.Logger, m *metrics.Metrics) *KafkaDispatcher {
	d := &KafkaDispatcher{
		writer:       w,
		inputChannel: make(chan kafka.Message, capacity),
		stopChannel:  make(chan struct{}),
		done:         make(chan struct{}),
		maxBatch:     maxBatch,
		tick:         tick,
		writeTimeout: 5 * time.Second,
		logger:       logger,
		metrics:      m,
	}
	go d.loop()
	return d
}

func (d *KafkaDispatcher) loop() {
	defer close(d.done)
	batch := make([]kafka.Message, 0, d.maxBatch)
	t := time.NewTicker(d.tick)
	defer t.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), d.writeTimeout)
		err := d.writer.WriteMessages(ctx, batch...)
		cancel()
		if err != nil {
			d.metrics.SinkErrors.WithLabelValues("kafka").Inc()
			d.logger.Printf("[kafka] write of %d messages failed: %v", len(batch), err)
		}
		batch = batch[:0]
	}

	for {
		select {
		case m := <-d.inputChannel:
			batch = append(batch, m)
			if len(batch) >= d.maxBatch {
				flush()
			}
		case <-t.C:
			flush()
		case <-d.stopChannel:
			for {
				select {
				case m := <-d.inputChannel:
					batch = append(batch, m)
					if len(batch) >= d.maxBatch {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

func (d *KafkaDispatcher) Enqueue(message kafka.Message) bool {
	select {
	case d.inputChannel <- message:
		return true
	default:
		if n := d.dropped.Add(1); n == 1 || n%1000 == 0 {
			d.logger.Printf("[kafka] dispatcher buffer full, %d messages dropped so far", n)
		}
		return false
	}
}

func (d *KafkaDispatcher) Dropped() uint64 { return d.dropped.Load() }

// Stop flushes what is buffered and waits for the loop to exit.
func (d *KafkaDispatcher) Stop() {
	close(d.stopChannel)
	<-d.done
}
