package config

import (
	"io"
	"log"
	"os"
	"sync"
)

const logFlags = log.LstdFlags | log.Lmicroseconds

var (
	logger     *log.Logger
	initLogger sync.Once
)

// GetLogger returns the process logger. Components tag their lines with a
// bracketed prefix such as "[can]" or "[publish]".
func GetLogger() *log.Logger {
	initLogger.Do(func() {
		logger = NewLogger(os.Stdout)
	})
	return logger
}

func NewLogger(w io.Writer) *log.Logger { return log.New(w, "", logFlags) }
