// Package archive converts the session history CSV into parquet and uploads
// it to object storage when the collector stops.
package archive

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lucaslui/telemd/internal/model"
)

var ErrEmptyHistory = errors.New("history has no rows")

type Uploader interface {
	Upload(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) error
}

type Archiver struct {
	store       Uploader
	basePath    string
	compression string
	session     string
	logger      *log.Logger
}

func New(store Uploader, basePath, compression, session string, logger *log.Logger) *Archiver {
	return &Archiver{store: store, basePath: basePath, compression: compression, session: session, logger: logger}
}

// Archive converts csvPath and uploads the result. It returns the object
// name and the number of rows written.
func (a *Archiver) Archive(ctx context.Context, csvPath string, now time.Time) (string, int, error) {
	fn := fmt.Sprintf("part-%s-%s.parquet", now.UTC().Format("2006-01-02T15-04-05Z"), uuid.NewString())
	tmp := filepath.Join(os.TempDir(), fn)
	defer os.Remove(tmp)

	n, err := ConvertCSV(csvPath, tmp, a.session, a.compression)
	if err != nil {
		return "", 0, err
	}

	f, err := os.Open(tmp)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return "", 0, err
	}

	obj := ObjectPath(a.basePath, now, fn)
	if err := a.store.Upload(ctx, obj, f, fi.Size(), "application/octet-stream"); err != nil {
		return "", 0, fmt.Errorf("upload %s: %w", obj, err)
	}
	a.logger.Printf("[archive] uploaded %d rows to %s", n, obj)
	return obj, n, nil
}

// ConvertCSV reads a wide history file and writes one parquet row per
// non-empty cell.
func ConvertCSV(csvPath, parquetPath, session, compression string) (int, error) {
	in, err := os.Open(csvPath)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	r := csv.NewReader(in)
	r.FieldsPerRecord = -1
	head, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	if len(head) < 2 || head[0] != "timestamp" {
		return 0, fmt.Errorf("unexpected header %v", head)
	}

	out, err := createRowFile(parquetPath, compression)
	if err != nil {
		return 0, err
	}

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			_ = out.close()
			return 0, fmt.Errorf("read row: %w", err)
		}
		ts, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			_ = out.close()
			return 0, fmt.Errorf("row timestamp %q: %w", rec[0], err)
		}
		ms := model.ToMillis(model.FromUnixSeconds(ts))
		for i := 2; i < len(rec) && i < len(head); i++ {
			if rec[i] == "" {
				continue
			}
			row := Row{TimestampMs: ms, Field: head[i], Value: rec[i], Session: session}
			if f, ok := numeric(rec[i]); ok {
				row.Numeric = &f
			}
			if err := out.write(row); err != nil {
				_ = out.close()
				return 0, err
			}
		}
	}

	if err := out.close(); err != nil {
		return 0, err
	}
	if out.rows == 0 {
		return 0, ErrEmptyHistory
	}
	return out.rows, nil
}

func numeric(s string) (float64, bool) {
	if strings.Contains(s, ",") {
		return 0, false
	}
	switch s {
	case "true":
		return 1, true
	case "false":
		return 0, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
