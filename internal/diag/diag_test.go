package diag

import (
	"bytes"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReporterSuppressesWithinWindow(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(log.New(&buf, "", 0), time.Second)
	now := time.Unix(100, 0)
	r.now = func() time.Time { return now }

	assert.True(t, r.Reportf("a", "bad frame %d", 1))
	assert.False(t, r.Reportf("a", "bad frame %d", 2))
	assert.False(t, r.Reportf("a", "bad frame %d", 3))
	assert.True(t, r.Reportf("b", "other"))

	now = now.Add(2 * time.Second)
	assert.True(t, r.Reportf("a", "bad frame %d", 4))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "bad frame 4 (2 similar suppressed)", lines[2])
}

func TestNilReporterIsSilent(t *testing.T) {
	var r *Reporter
	assert.False(t, r.Reportf("k", "x"))
}
