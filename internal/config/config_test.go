package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := LoadConfig(NewLogger(&bytes.Buffer{}))
	require.NoError(t, err)

	assert.Equal(t, "auto", cfg.CANSource)
	assert.Equal(t, 10*time.Millisecond, cfg.CANRecvTimeout)
	assert.Equal(t, 100*time.Millisecond, cfg.PublishInterval)
	assert.Equal(t, 50*time.Millisecond, cfg.PublishTick)
	assert.Equal(t, "data", cfg.MQTTTopic)
	assert.Equal(t, byte(0), cfg.MQTTQoS)
	assert.Equal(t, 333, cfg.HistoryBufferSize)
	assert.Equal(t, time.Second, cfg.HistoryFlushInterval)
	assert.Equal(t, 33*time.Millisecond, cfg.LiveBroadcast)
	assert.False(t, cfg.KafkaEnabled)
	assert.Contains(t, cfg.String(), "BrokerURL:     tcp://192.168.1.109:1883")
}

func TestHighRateDerivesOneMillisecondTick(t *testing.T) {
	t.Setenv("PUBLISH_RATE_HZ", "2000")
	cfg, err := LoadConfig(NewLogger(&bytes.Buffer{}))
	require.NoError(t, err)
	assert.Equal(t, time.Millisecond, cfg.PublishTick)
	assert.Equal(t, 500*time.Microsecond, cfg.PublishInterval)
}

func TestTickIsShorterThanInterval(t *testing.T) {
	for _, hz := range []string{"10", "100", "333"} {
		t.Setenv("PUBLISH_RATE_HZ", hz)
		cfg, err := LoadConfig(NewLogger(&bytes.Buffer{}))
		require.NoError(t, err)
		assert.LessOrEqual(t, 2*cfg.PublishTick, cfg.PublishInterval, hz)
	}
}

func TestProblemsAreReportedTogether(t *testing.T) {
	t.Setenv("CAN_SOURCE", "usb")
	t.Setenv("PUBLISH_RATE_HZ", "0")
	t.Setenv("MQTT_QOS", "3")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_COMPRESSION", "brotli")
	t.Setenv("INFLUX_ENABLED", "yes please")

	var buf bytes.Buffer
	_, err := LoadConfig(NewLogger(&buf))
	require.ErrorIs(t, err, ErrInvalidConfig)

	out := buf.String()
	for _, want := range []string{"CAN_SOURCE", "PUBLISH_RATE_HZ", "MQTT_QOS", "KAFKA_BROKERS", "KAFKA_COMPRESSION", "INFLUX_ENABLED"} {
		assert.Contains(t, out, want)
	}
}

func TestEnabledSinksNeedEndpoints(t *testing.T) {
	t.Setenv("ARCHIVE_ENABLED", "true")
	t.Setenv("HISTORY_ENABLED", "false")
	t.Setenv("REDIS_ENABLED", "true")

	var buf bytes.Buffer
	_, err := LoadConfig(NewLogger(&buf))
	require.Error(t, err)
	assert.Contains(t, buf.String(), "missing S3_ENDPOINT")
	assert.Contains(t, buf.String(), "ARCHIVE_ENABLED requires HISTORY_ENABLED")
	assert.Contains(t, buf.String(), "missing REDIS_ADDR")
}

func TestRedactedSecrets(t *testing.T) {
	t.Setenv("INFLUX_ENABLED", "true")
	t.Setenv("INFLUX_URL", "http://influx:8086")
	t.Setenv("INFLUX_TOKEN", "s3cret")
	t.Setenv("INFLUX_ORG", "lhr")
	t.Setenv("INFLUX_BUCKET", "telemetry")

	cfg, err := LoadConfig(NewLogger(&bytes.Buffer{}))
	require.NoError(t, err)
	assert.NotContains(t, cfg.String(), "s3cret")
}
