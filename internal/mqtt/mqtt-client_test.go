package mqtt

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeToken struct {
	done bool
	err  error
}

func (t *fakeToken) Wait() bool                     { return t.done }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return t.done }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	if t.done {
		close(ch)
	}
	return ch
}
func (t *fakeToken) Error() error { return t.err }

// fakeClient overrides only what the transport touches.
type fakeClient struct {
	mqtt.Client
	open      bool
	token     *fakeToken
	published []string
}

func (c *fakeClient) IsConnectionOpen() bool { return c.open }
func (c *fakeClient) Connect() mqtt.Token    { return c.token }
func (c *fakeClient) Publish(topic string, _ byte, _ bool, _ interface{}) mqtt.Token {
	c.published = append(c.published, topic)
	return c.token
}

func newTransport(c *fakeClient) *Transport {
	return NewTransport(c, 0, time.Second, log.New(io.Discard, "", 0))
}

func TestPublishRequiresConnection(t *testing.T) {
	c := &fakeClient{token: &fakeToken{done: true}}
	err := newTransport(c).Publish(context.Background(), "data", []byte{1})
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.Empty(t, c.published)
}

func TestPublishSuccess(t *testing.T) {
	c := &fakeClient{open: true, token: &fakeToken{done: true}}
	require.NoError(t, newTransport(c).Publish(context.Background(), "data", []byte{1}))
	assert.Equal(t, []string{"data"}, c.published)
}

func TestPublishTimeoutAndError(t *testing.T) {
	c := &fakeClient{open: true, token: &fakeToken{}}
	assert.ErrorIs(t, newTransport(c).Publish(context.Background(), "data", nil), ErrPublishTimeout)

	c.token = &fakeToken{done: true, err: errors.New("refused")}
	assert.EqualError(t, newTransport(c).Publish(context.Background(), "data", nil), "refused")
}

func TestPublishHonoursExpiredContext(t *testing.T) {
	c := &fakeClient{open: true, token: &fakeToken{done: true}}
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	assert.ErrorIs(t, newTransport(c).Publish(ctx, "data", nil), ErrPublishTimeout)
}

func TestConnectBounded(t *testing.T) {
	assert.ErrorIs(t, Connect(&fakeClient{token: &fakeToken{}}, time.Millisecond), ErrConnectTimeout)
	assert.Error(t, Connect(&fakeClient{token: &fakeToken{done: true, err: errors.New("auth")}}, time.Millisecond))
	assert.NoError(t, Connect(&fakeClient{token: &fakeToken{done: true}}, time.Millisecond))
}
