// Package tslog keeps the session history as a CSV file with one row per
// timestamp and one column per field.
//
// The column set grows as new fields appear, so every flush rewrites the
// whole file: existing rows are read back, buffered values are merged in by
// timestamp, and the file is written again sorted with the widened header.
package tslog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/lucaslui/telemd/internal/diag"
	"github.com/lucaslui/telemd/internal/metrics"
	"github.com/lucaslui/telemd/internal/model"
)

const (
	DatetimeLayout = "2006-01-02 15:04:05.000"
	fileTimeLayout = "20060102_150405"

	// while the file cannot be written, at most this many buffers are held
	retainBuffers = 100
	errorWindow   = 10 * time.Second
)

type point struct {
	ts    float64
	field string
	value string
}

type Logger struct {
	path          string
	bufferSize    int
	flushInterval time.Duration
	logger        *log.Logger
	metrics       *metrics.Metrics
	diag          *diag.Reporter
	now           func() time.Time

	mu          sync.Mutex
	buf         []point
	fields      map[string]struct{}
	maxBuffered int
	retryAfter  time.Time

	// fileMu serializes every read and rewrite of the file.
	fileMu sync.Mutex
	kick   chan struct{}
}

// New creates dir if needed and starts a fresh file named after the session
// start time.
func New(dir, basename string, start time.Time, bufferSize int, flushInterval time.Duration, logger *log.Logger, m *metrics.Metrics) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("history dir: %w", err)
	}
	l := &Logger{
		path:          filepath.Join(dir, fmt.Sprintf("%s_%s.csv", basename, start.Format(fileTimeLayout))),
		bufferSize:    bufferSize,
		flushInterval: flushInterval,
		logger:        logger,
		metrics:       m,
		diag:          diag.NewReporter(logger, errorWindow),
		now:           time.Now,
		buf:           make([]point, 0, bufferSize),
		fields:        make(map[string]struct{}),
		maxBuffered:   bufferSize * retainBuffers,
		kick:          make(chan struct{}, 1),
	}
	if err := l.writeFile(nil, nil); err != nil {
		return nil, err
	}
	logger.Printf("[tslog] session history file %s", l.path)
	return l, nil
}

func (l *Logger) Path() string { return l.path }

// Log buffers one value. It never touches the disk; the buffer filling up
// wakes Run once.
func (l *Logger) Log(field string, v model.Value, ts time.Time) {
	p := point{ts: model.UnixSeconds(ts), field: field, value: v.String()}

	l.mu.Lock()
	l.buf = append(l.buf, p)
	l.fields[field] = struct{}{}
	full := len(l.buf) == l.bufferSize
	l.trimLocked()
	l.mu.Unlock()

	if full {
		select {
		case l.kick <- struct{}{}:
		default:
		}
	}
}

// trimLocked drops the oldest values once the buffer passes its cap. It cuts
// a whole buffer's worth at a time so a stuck file does not copy on every Log.
func (l *Logger) trimLocked() {
	over := len(l.buf) - l.maxBuffered
	if over <= 0 {
		return
	}
	n := over + l.bufferSize
	if n > len(l.buf) {
		n = len(l.buf)
	}
	l.buf = append(make([]point, 0, len(l.buf)-n+l.bufferSize), l.buf[n:]...)
	l.metrics.HistoryDropped.Add(float64(n))
}

func (l *Logger) Buffered() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buf)
}

// Run flushes on every interval and whenever the buffer fills, and once more
// when ctx is cancelled. After a failed flush only the interval retries.
func (l *Logger) Run(ctx context.Context) {
	t := time.NewTicker(l.flushInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			if err := l.Flush(); err != nil {
				l.logger.Printf("[tslog] ERROR final flush failed, %d values not written: %v", l.Buffered(), err)
			}
			return
		case <-t.C:
		case <-l.kick:
			if l.backingOff() {
				continue
			}
		}
		_ = l.Flush()
	}
}

func (l *Logger) backingOff() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.now().Before(l.retryAfter)
}

// Flush merges the buffer into the file. On failure the buffered values are
// kept, up to the retention cap, for the next attempt.
func (l *Logger) Flush() error {
	l.fileMu.Lock()
	defer l.fileMu.Unlock()

	l.mu.Lock()
	pending := l.buf
	l.buf = make([]point, 0, l.bufferSize)
	fields := make([]string, 0, len(l.fields))
	for f := range l.fields {
		fields = append(fields, f)
	}
	l.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}

	err := l.merge(pending, fields)
	if err != nil {
		l.mu.Lock()
		l.buf = append(pending, l.buf...)
		l.trimLocked()
		kept := len(l.buf)
		l.retryAfter = l.now().Add(l.flushInterval)
		l.mu.Unlock()
		l.metrics.HistoryFailures.Inc()
		l.diag.Reportf("flush", "[tslog] ERROR history flush failed, %d values kept in memory: %v", kept, err)
		return err
	}
	l.mu.Lock()
	l.retryAfter = time.Time{}
	l.mu.Unlock()
	l.metrics.HistoryFlushes.Inc()
	return nil
}

func (l *Logger) merge(pending []point, fields []string) error {
	header, rows, err := l.readFile()
	if err != nil {
		return err
	}
	for _, p := range pending {
		row, ok := rows[p.ts]
		if !ok {
			row = make(map[string]string)
			rows[p.ts] = row
		}
		row[p.field] = p.value
	}

	cols := make(map[string]struct{}, len(header)+len(fields))
	for _, c := range header {
		cols[c] = struct{}{}
	}
	for _, f := range fields {
		cols[f] = struct{}{}
	}
	all := make([]string, 0, len(cols))
	for c := range cols {
		all = append(all, c)
	}
	sort.Strings(all)

	return l.writeFile(all, rows)
}

// readFile returns the field columns of the header and the rows keyed by
// timestamp.
func (l *Logger) readFile() ([]string, map[float64]map[string]string, error) {
	rows := make(map[float64]map[string]string)
	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, rows, nil
	}
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	head, err := r.Read()
	if err == io.EOF {
		return nil, rows, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	if len(head) < 2 || head[0] != "timestamp" {
		return nil, nil, fmt.Errorf("unexpected header %v", head)
	}
	fields := head[2:]

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read row: %w", err)
		}
		ts, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("row timestamp %q: %w", rec[0], err)
		}
		row := make(map[string]string)
		for i, name := range fields {
			if i+2 < len(rec) && rec[i+2] != "" {
				row[name] = rec[i+2]
			}
		}
		rows[ts] = row
	}
	return fields, rows, nil
}

// writeFile replaces the file through a rename so a crash mid-write leaves
// the previous version intact.
func (l *Logger) writeFile(fields []string, rows map[float64]map[string]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(l.path), ".tslog-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(append([]string{"timestamp", "datetime"}, fields...)); err != nil {
		tmp.Close()
		return err
	}

	keys := make([]float64, 0, len(rows))
	for ts := range rows {
		keys = append(keys, ts)
	}
	sort.Float64s(keys)

	rec := make([]string, len(fields)+2)
	for _, ts := range keys {
		rec[0] = strconv.FormatFloat(ts, 'f', -1, 64)
		rec[1] = model.FromUnixSeconds(ts).Format(DatetimeLayout)
		for i, f := range fields {
			rec[i+2] = rows[ts][f]
		}
		if err := w.Write(rec); err != nil {
			tmp.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), l.path)
}
