package config

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"
)

type Config struct {
	// CAN
	CANSource      string
	CANInterface   string
	CANRecvTimeout time.Duration
	CANBuffer      int
	CANMapFile     string

	// Publish
	PublishRateHz          float64
	PublishInterval        time.Duration
	PublishTick            time.Duration
	VehicleID              string
	RequireBroker          bool
	ShutdownPublishTimeout time.Duration

	// MQTT
	MQTTBrokerURL      string
	MQTTClientID       string
	MQTTUsername       string
	MQTTPassword       string
	MQTTTopic          string
	MQTTQoS            byte
	MQTTConnectTimeout time.Duration
	MQTTPublishTimeout time.Duration

	// Handshake
	HandshakeURL     string
	HandshakeTimeout time.Duration

	// History log
	HistoryEnabled       bool
	HistoryDir           string
	HistoryBasename      string
	HistoryBufferSize    int
	HistoryFlushInterval time.Duration

	// Kafka mirror
	KafkaEnabled           bool
	KafkaBrokers           []string
	KafkaTopic             string
	KafkaTopicPartitions   int
	KafkaReplicationFactor int
	KafkaRetentionMs       int64
	KafkaCompression       string
	KafkaRequiredAcks      string
	KafkaBatchSize         int
	DispatcherCapacity     int
	DispatcherMaxBatch     int
	DispatcherTick         time.Duration

	// InfluxDB mirror
	InfluxEnabled     bool
	InfluxURL         string
	InfluxToken       string
	InfluxOrg         string
	InfluxBucket      string
	InfluxMeasurement string

	// Archive
	ArchiveEnabled     bool
	S3Endpoint         string
	S3AccessKey        string
	S3SecretKey        string
	S3UseTLS           bool
	S3Bucket           string
	S3BasePath         string
	ParquetCompression string

	// Live view
	HTTPAddr          string
	LiveBroadcast     time.Duration
	SummaryInterval   time.Duration
	RedisEnabled      bool
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	RedisKey          string
	RedisTTL          time.Duration
	RedisSyncInterval time.Duration
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}

func (c *Config) String() string {
	return fmt.Sprintf(`
CAN:
  Source:        %s
  Interface:     %s
  RecvTimeout:   %s
  Buffer:        %d
  MapFile:       %s

Publish:
  RateHz:        %g
  Interval:      %s
  Tick:          %s
  VehicleID:     %s
  RequireBroker: %v

MQTT:
  BrokerURL:     %s
  ClientID:      %s
  Username:      %s
  Topic:         %s
  QoS:           %d

Handshake:
  URL:           %s

History:
  Enabled:       %v
  Dir:           %s
  Buffer:        %d
  FlushInterval: %s

Kafka:
  Enabled:       %v
  Brokers:       %v
  Topic:         %s
  Compression:   %s
  RequiredAcks:  %s

Influx:
  Enabled:       %v
  URL:           %s
  Bucket:        %s
  Token:         %s

Archive:
  Enabled:       %v
  Endpoint:      %s
  Bucket:        %s
  BasePath:      %s
  Compression:   %s

Live:
  HTTPAddr:      %s
  Broadcast:     %s
  Summary:       %s
  Redis:         %v (%s key=%s)
`, c.CANSource, c.CANInterface, c.CANRecvTimeout, c.CANBuffer, c.CANMapFile,
		c.PublishRateHz, c.PublishInterval, c.PublishTick, c.VehicleID, c.RequireBroker,
		c.MQTTBrokerURL, c.MQTTClientID, c.MQTTUsername, c.MQTTTopic, c.MQTTQoS,
		c.HandshakeURL,
		c.HistoryEnabled, c.HistoryDir, c.HistoryBufferSize, c.HistoryFlushInterval,
		c.KafkaEnabled, c.KafkaBrokers, c.KafkaTopic, c.KafkaCompression, c.KafkaRequiredAcks,
		c.InfluxEnabled, c.InfluxURL, c.InfluxBucket, redact(c.InfluxToken),
		c.ArchiveEnabled, c.S3Endpoint, c.S3Bucket, c.S3BasePath, c.ParquetCompression,
		c.HTTPAddr, c.LiveBroadcast, c.SummaryInterval, c.RedisEnabled, c.RedisAddr, c.RedisKey)
}

func loadCAN(c *Config, errs *errList) {
	c.CANSource = getenv("CAN_SOURCE", "auto")
	ensureOneOf("CAN_SOURCE", c.CANSource, []string{"auto", "socketcan", "sim"}, errs)
	c.CANInterface = getenv("CAN_INTERFACE", "can0")
	c.CANRecvTimeout = getenvMillis("CAN_RECV_TIMEOUT_MS", 10, errs)
	c.CANBuffer = getenvInt("CAN_BUFFER", 4096, errs)
	c.CANMapFile = getenv("CAN_MAP_FILE", "")

	ensurePositive("CAN_RECV_TIMEOUT_MS", int64(c.CANRecvTimeout), errs)
	ensurePositive("CAN_BUFFER", int64(c.CANBuffer), errs)
}

func loadPublish(c *Config, errs *errList) {
	c.PublishRateHz = getenvFloat("PUBLISH_RATE_HZ", 10, errs)
	if c.PublishRateHz <= 0 || math.IsNaN(c.PublishRateHz) || math.IsInf(c.PublishRateHz, 0) {
		errs.addf("PUBLISH_RATE_HZ must be > 0: %v", c.PublishRateHz)
		c.PublishRateHz = 10
	}
	c.PublishInterval = time.Duration(float64(time.Second) / c.PublishRateHz)

	// tick at least twice per interval; the scheduler keeps the rate
	tick := int(500 / c.PublishRateHz)
	if tick < 1 {
		tick = 1
	}
	c.PublishTick = getenvMillis("PUBLISH_TICK_MS", tick, errs)
	ensurePositive("PUBLISH_TICK_MS", int64(c.PublishTick), errs)

	c.VehicleID = getenv("VEHICLE_ID", "lhr")
	c.RequireBroker = getenvBool("REQUIRE_BROKER", false, errs)
	c.ShutdownPublishTimeout = getenvMillis("SHUTDOWN_PUBLISH_TIMEOUT_MS", 2000, errs)
}

func loadMQTT(c *Config, errs *errList) {
	c.MQTTBrokerURL = getenv("MQTT_BROKER_URL", "tcp://192.168.1.109:1883")
	c.MQTTClientID = getenv("MQTT_CLIENT_ID", "telemd")
	c.MQTTUsername = getenv("MQTT_USERNAME", "")
	c.MQTTPassword = getenv("MQTT_PASSWORD", "")
	c.MQTTTopic = getenv("MQTT_TOPIC", "data")
	c.MQTTQoS = getenvQoS("MQTT_QOS", 0, errs)
	c.MQTTConnectTimeout = getenvMillis("MQTT_CONNECT_TIMEOUT_MS", 3000, errs)
	c.MQTTPublishTimeout = getenvMillis("MQTT_PUBLISH_TIMEOUT_MS", 1000, errs)

	ensurePositive("MQTT_CONNECT_TIMEOUT_MS", int64(c.MQTTConnectTimeout), errs)
	ensurePositive("MQTT_PUBLISH_TIMEOUT_MS", int64(c.MQTTPublishTimeout), errs)
}

func loadHistory(c *Config, errs *errList) {
	c.HandshakeURL = getenv("HANDSHAKE_URL", "https://lhrelectric.org/webtool/handshake/")
	c.HandshakeTimeout = getenvMillis("HANDSHAKE_TIMEOUT_MS", 3000, errs)

	c.HistoryEnabled = getenvBool("HISTORY_ENABLED", true, errs)
	c.HistoryDir = getenv("HISTORY_DIR", "logs")
	c.HistoryBasename = getenv("HISTORY_BASENAME", "telemetry_history")
	c.HistoryBufferSize = getenvInt("HISTORY_BUFFER_SIZE", 333, errs)
	c.HistoryFlushInterval = getenvMillis("HISTORY_FLUSH_INTERVAL_MS", 1000, errs)
	if c.HistoryEnabled {
		ensurePositive("HISTORY_BUFFER_SIZE", int64(c.HistoryBufferSize), errs)
		ensurePositive("HISTORY_FLUSH_INTERVAL_MS", int64(c.HistoryFlushInterval), errs)
	}
}

func loadKafka(c *Config, errs *errList) {
	c.KafkaEnabled = getenvBool("KAFKA_ENABLED", false, errs)
	c.KafkaTopic = getenv("KAFKA_TOPIC", "telemetry-packets")
	c.KafkaTopicPartitions = getenvInt("KAFKA_TOPIC_PARTITIONS", 1, errs)
	c.KafkaReplicationFactor = getenvInt("KAFKA_REPLICATION_FACTOR", 1, errs)
	c.KafkaRetentionMs = getenvInt64("KAFKA_RETENTION_MS", 604800000, errs)
	c.KafkaCompression = getenv("KAFKA_COMPRESSION", "snappy")
	c.KafkaRequiredAcks = getenv("KAFKA_REQUIRED_ACKS", "one")
	c.KafkaBatchSize = getenvInt("KAFKA_BATCH_SIZE", 100, errs)
	c.DispatcherCapacity = getenvInt("DISPATCHER_CAPACITY", 10000, errs)
	c.DispatcherMaxBatch = getenvInt("DISPATCHER_MAX_BATCH", 500, errs)
	c.DispatcherTick = getenvMillis("DISPATCHER_TICK_MS", 50, errs)
	if !c.KafkaEnabled {
		return
	}

	c.KafkaBrokers = parseBrokers(getRequired("KAFKA_BROKERS", errs))
	ensureOneOf("KAFKA_COMPRESSION", c.KafkaCompression, []string{"none", "gzip", "snappy", "lz4", "zstd"}, errs)
	ensureOneOf("KAFKA_REQUIRED_ACKS", c.KafkaRequiredAcks, []string{"none", "one", "all"}, errs)
	ensurePositive("KAFKA_TOPIC_PARTITIONS", int64(c.KafkaTopicPartitions), errs)
	ensurePositive("KAFKA_REPLICATION_FACTOR", int64(c.KafkaReplicationFactor), errs)
	ensurePositive("KAFKA_BATCH_SIZE", int64(c.KafkaBatchSize), errs)
	ensurePositive("DISPATCHER_CAPACITY", int64(c.DispatcherCapacity), errs)
	ensurePositive("DISPATCHER_MAX_BATCH", int64(c.DispatcherMaxBatch), errs)
	ensurePositive("DISPATCHER_TICK_MS", int64(c.DispatcherTick), errs)
	if len(c.KafkaBrokers) > 0 && c.KafkaReplicationFactor > len(c.KafkaBrokers) {
		errs.add("KAFKA_REPLICATION_FACTOR cannot exceed the number of KAFKA_BROKERS")
	}
}

func loadInflux(c *Config, errs *errList) {
	c.InfluxEnabled = getenvBool("INFLUX_ENABLED", false, errs)
	c.InfluxMeasurement = getenv("INFLUX_MEASUREMENT", "telemetry")
	if !c.InfluxEnabled {
		return
	}
	c.InfluxURL = getRequired("INFLUX_URL", errs)
	c.InfluxToken = getRequired("INFLUX_TOKEN", errs)
	c.InfluxOrg = getRequired("INFLUX_ORG", errs)
	c.InfluxBucket = getRequired("INFLUX_BUCKET", errs)
}

func loadArchive(c *Config, errs *errList) {
	c.ArchiveEnabled = getenvBool("ARCHIVE_ENABLED", false, errs)
	c.S3UseTLS = getenvBool("S3_USE_TLS", false, errs)
	c.S3Bucket = getenv("S3_BUCKET", "telemetry")
	c.S3BasePath = getenv("S3_BASE_PATH", "history")
	c.ParquetCompression = getenv("PARQUET_COMPRESSION", "SNAPPY")
	if !c.ArchiveEnabled {
		return
	}
	c.S3Endpoint = getRequired("S3_ENDPOINT", errs)
	c.S3AccessKey = getRequired("S3_ACCESS_KEY", errs)
	c.S3SecretKey = getRequired("S3_SECRET_KEY", errs)
	ensureOneOf("PARQUET_COMPRESSION", c.ParquetCompression, []string{"SNAPPY", "GZIP", "ZSTD"}, errs)
	if !c.HistoryEnabled {
		errs.add("ARCHIVE_ENABLED requires HISTORY_ENABLED")
	}
}

func loadLive(c *Config, errs *errList) {
	c.HTTPAddr = getenv("HTTP_ADDR", ":8001")
	c.LiveBroadcast = getenvMillis("LIVE_BROADCAST_MS", 33, errs)
	c.SummaryInterval = getenvMillis("SUMMARY_INTERVAL_MS", 5000, errs)
	ensurePositive("LIVE_BROADCAST_MS", int64(c.LiveBroadcast), errs)
	ensurePositive("SUMMARY_INTERVAL_MS", int64(c.SummaryInterval), errs)

	c.RedisEnabled = getenvBool("REDIS_ENABLED", false, errs)
	c.RedisPassword = getenv("REDIS_PASSWORD", "")
	c.RedisDB = getenvInt("REDIS_DB", 0, errs)
	c.RedisKey = getenv("REDIS_KEY", "telemd:latest")
	c.RedisTTL = time.Duration(getenvInt("REDIS_TTL_S", 30, errs)) * time.Second
	c.RedisSyncInterval = getenvMillis("REDIS_SYNC_MS", 500, errs)
	if !c.RedisEnabled {
		return
	}
	c.RedisAddr = getRequired("REDIS_ADDR", errs)
	ensurePositive("REDIS_TTL_S", int64(c.RedisTTL), errs)
	ensurePositive("REDIS_SYNC_MS", int64(c.RedisSyncInterval), errs)
}

// LoadConfig reads every setting from the environment. All problems are
// logged and reported together.
func LoadConfig(logger *log.Logger) (*Config, error) {
	var errs errList
	c := &Config{}

	loadCAN(c, &errs)
	loadPublish(c, &errs)
	loadMQTT(c, &errs)
	loadHistory(c, &errs)
	loadKafka(c, &errs)
	loadInflux(c, &errs)
	loadArchive(c, &errs)
	loadLive(c, &errs)

	if errs.has() {
		for _, e := range errs {
			logger.Printf("[config] %s", e)
		}
		return nil, fmt.Errorf("%d invalid or missing environment variables, see log above: %w", len(errs), ErrInvalidConfig)
	}
	return c, nil
}

var ErrInvalidConfig = errors.New("invalid configuration")
