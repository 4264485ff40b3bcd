package live

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucaslui/telemd/internal/metrics"
	"github.com/lucaslui/telemd/internal/model"
)

func TestHashFieldsEncodesJSON(t *testing.T) {
	l := NewLatest()
	now := time.Now()
	l.Update("pack.hv_c", model.Float(12.5), now)
	l.Update("pack.shutdown", model.Bool(false), now)
	require.NoError(t, l.UpdateSlot("thermal.cells_temp", 0, 2, 30, now))

	f, err := hashFields(l.Values())
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"pack.hv_c":          "12.5",
		"pack.shutdown":      "false",
		"thermal.cells_temp": "[30,null]",
	}, f)
}

func TestRedisSyncReportsUnreachableServer(t *testing.T) {
	l := NewLatest()
	l.Update("pack.hv_c", model.Float(1), time.Now())
	r := NewRedisMirror(RedisOpts{Addr: "127.0.0.1:1", Key: "k", TTL: time.Second, Interval: time.Second, Timeout: 100 * time.Millisecond},
		l, log.New(io.Discard, "", 0), metrics.New())
	defer r.Close()

	assert.Error(t, r.Sync(context.Background()))
}

func TestRedisSyncSkipsEmptyCache(t *testing.T) {
	r := NewRedisMirror(RedisOpts{Addr: "127.0.0.1:1", Key: "k"}, NewLatest(), log.New(io.Discard, "", 0), metrics.New())
	defer r.Close()
	assert.NoError(t, r.Sync(context.Background()))
}
