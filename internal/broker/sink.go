package broker

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/lucaslui/telemd/internal/model"
)

var ErrDispatcherFull = errors.New("kafka: dispatcher buffer full")

// Sink hands confirmed packets to the dispatcher, keyed by vehicle.
type Sink struct {
	dispatcher *KafkaDispatcher
	key        []byte
}

func NewSink(d *KafkaDispatcher, vehicleID string) *Sink {
	return &Sink{dispatcher: d, key: []byte(vehicleID)}
}

func (s *Sink) Name() string { return "kafka" }

func (s *Sink) Write(_ context.Context, p model.Packet, payload []byte) error {
	msg := kafka.Message{
		Key:   s.key,
		Value: payload,
		Time:  p.Timestamp,
		Headers: []kafka.Header{
			{Key: "packet_id", Value: []byte(strconv.FormatUint(p.PacketID, 10))},
			{Key: "sentAt", Value: []byte(p.Timestamp.UTC().Format(time.RFC3339Nano))},
		},
	}
	if !s.dispatcher.Enqueue(msg) {
		return ErrDispatcherFull
	}
	return nil
}
