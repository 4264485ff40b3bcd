package live

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucaslui/telemd/internal/model"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubBroadcastsDocument(t *testing.T) {
	l := NewLatest()
	l.Update("pack.hv_c", model.Float(12.5), time.Now())
	h := NewHub(l, 5*time.Millisecond, log.New(io.Discard, "", 0))
	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	conn := dial(t, srv)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var doc Document
	require.NoError(t, json.Unmarshal(msg, &doc))
	assert.Equal(t, UpdateType, doc.Type)
	assert.Equal(t, 12.5, doc.Data["pack"]["hv_c"])
}

func TestHubSkipsEmptyCacheAndTracksClients(t *testing.T) {
	h := NewHub(NewLatest(), time.Hour, log.New(io.Discard, "", 0))
	srv := httptest.NewServer(h)
	defer srv.Close()

	conn := dial(t, srv)
	assert.Eventually(t, func() bool { return h.Clients() == 1 }, time.Second, 5*time.Millisecond)

	h.Broadcast(time.Now())
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(50*time.Millisecond)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)

	conn.Close()
	assert.Eventually(t, func() bool { return h.Clients() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHubClosesClientsOnShutdown(t *testing.T) {
	h := NewHub(NewLatest(), time.Hour, log.New(io.Discard, "", 0))
	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { h.Run(ctx); close(done) }()

	conn := dial(t, srv)
	assert.Eventually(t, func() bool { return h.Clients() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway))
}
