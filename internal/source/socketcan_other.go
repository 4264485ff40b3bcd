//go:build !linux

package source

import (
	"log"

	"github.com/lucaslui/telemd/internal/metrics"
)

func openSocketCAN(string, int, *log.Logger, *metrics.Metrics) (Source, error) {
	return nil, ErrUnsupported
}
