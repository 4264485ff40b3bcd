package mqtt

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/lucaslui/telemd/internal/config"
	"github.com/lucaslui/telemd/internal/metrics"
)

var (
	ErrNotConnected   = errors.New("mqtt: not connected")
	ErrPublishTimeout = errors.New("mqtt: publish timed out")
	ErrConnectTimeout = errors.New("mqtt: connect timed out")
)

// Transport publishes encoded packets on the broker. It implements the
// publisher's transport contract; every call is bounded by PublishTimeout.
type Transport struct {
	client         mqtt.Client
	qos            byte
	publishTimeout time.Duration
	logger         *log.Logger
}

func BuildMQTTClient(cfg *config.Config, logger *log.Logger, m *metrics.Metrics) mqtt.Client {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBrokerURL).
		SetClientID(cfg.MQTTClientID).
		SetOrderMatters(false).
		SetCleanSession(true).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(10 * time.Second).
		SetWriteTimeout(cfg.MQTTPublishTimeout).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	if cfg.MQTTUsername != "" {
		opts.SetUsername(cfg.MQTTUsername)
	}
	if cfg.MQTTPassword != "" {
		opts.SetPassword(cfg.MQTTPassword)
	}

	opts.OnConnect = func(c mqtt.Client) {
		m.BrokerConnected.Set(1)
		logger.Printf("[mqtt] connected to %s", cfg.MQTTBrokerURL)
	}
	opts.OnConnectionLost = func(c mqtt.Client, err error) {
		m.BrokerConnected.Set(0)
		logger.Printf("[mqtt] connection lost: %v", err)
	}
	opts.OnReconnecting = func(mqtt.Client, *mqtt.ClientOptions) {
		logger.Printf("[mqtt] reconnecting to %s", cfg.MQTTBrokerURL)
	}

	return mqtt.NewClient(opts)
}

// Connect starts the connection and waits at most timeout for it. With
// connect-retry enabled the client keeps trying in the background after a
// timeout, so the caller may continue in degraded mode.
func Connect(client mqtt.Client, timeout time.Duration) error {
	token := client.Connect()
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("%w after %s", ErrConnectTimeout, timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	return nil
}

func NewTransport(client mqtt.Client, qos byte, publishTimeout time.Duration, logger *log.Logger) *Transport {
	return &Transport{client: client, qos: qos, publishTimeout: publishTimeout, logger: logger}
}

func (t *Transport) Publish(ctx context.Context, topic string, payload []byte) error {
	if !t.client.IsConnectionOpen() {
		return ErrNotConnected
	}

	timeout := t.publishTimeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		return ErrPublishTimeout
	}

	token := t.client.Publish(topic, t.qos, false, payload)
	if !token.WaitTimeout(timeout) {
		return ErrPublishTimeout
	}
	return token.Error()
}

func (t *Transport) Connected() bool { return t.client.IsConnectionOpen() }

func (t *Transport) Close() {
	t.client.Disconnect(250)
	t.logger.Println("[mqtt] disconnected")
}
