package broker

import (
	"context"
	"errors"
	"log"
	"net"
	"strconv"

	"github.com/segmentio/kafka-go"

	"github.com/lucaslui/telemd/internal/config"
)

// EnsureKafkaTopics creates the packet topic through the controller when it
// does not exist yet.
func EnsureKafkaTopics(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	if len(cfg.KafkaBrokers) == 0 {
		return errors.New("kafka: no brokers configured")
	}
	bootstrap := cfg.KafkaBrokers[0]
	logger.Printf("[kafka] ensuring topic %s on bootstrap %s", cfg.KafkaTopic, bootstrap)

	conn, err := kafka.DialContext(ctx, "tcp", bootstrap)
	if err != nil {
		return err
	}
	defer conn.Close()

	if parts, err := conn.ReadPartitions(cfg.KafkaTopic); err == nil && len(parts) > 0 {
		logger.Printf("[kafka] topic %s already exists (%d partitions)", cfg.KafkaTopic, len(parts))
		return nil
	}

	controller, err := conn.Controller()
	if err != nil {
		return err
	}
	ctrlAddr := net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port))
	ctrlConn, err := kafka.DialContext(ctx, "tcp", ctrlAddr)
	if err != nil {
		return err
	}
	defer ctrlConn.Close()

	logger.Printf("[kafka] creating topic %s (partitions=%d rf=%d)", cfg.KafkaTopic, cfg.KafkaTopicPartitions, cfg.KafkaReplicationFactor)
	return ctrlConn.CreateTopics(kafka.TopicConfig{
		Topic:             cfg.KafkaTopic,
		NumPartitions:     cfg.KafkaTopicPartitions,
		ReplicationFactor: cfg.KafkaReplicationFactor,
		ConfigEntries: []kafka.ConfigEntry{
			{ConfigName: "compression.type", ConfigValue: cfg.KafkaCompression},
			{ConfigName: "retention.ms", ConfigValue: strconv.FormatInt(cfg.KafkaRetentionMs, 10)},
		},
	})
}
