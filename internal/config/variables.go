package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type errList []string

func (e *errList) addf(format string, a ...any) {
	*e = append(*e, fmt.Sprintf(format, a...))
}
func (e *errList) add(msg string) { *e = append(*e, msg) }
func (e *errList) has() bool      { return len(*e) > 0 }

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getRequired(key string, errs *errList) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		errs.addf("missing %s", key)
	}
	return v
}

func getenvInt(key string, fallback int, errs *errList) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		errs.addf("%s invalid (expected int): %q", key, v)
		return fallback
	}
	return n
}

func getenvInt64(key string, fallback int64, errs *errList) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		errs.addf("%s invalid (expected int64): %q", key, v)
		return fallback
	}
	return n
}

func getenvFloat(key string, fallback float64, errs *errList) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		errs.addf("%s invalid (expected number): %q", key, v)
		return fallback
	}
	return f
}

func getenvBool(key string, fallback bool, errs *errList) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		errs.addf("%s invalid (expected bool): %q", key, v)
		return fallback
	}
	return b
}

func getenvMillis(key string, fallback int, errs *errList) time.Duration {
	return time.Duration(getenvInt(key, fallback, errs)) * time.Millisecond
}

func getenvQoS(key string, fallback byte, errs *errList) byte {
	n := getenvInt(key, int(fallback), errs)
	if n < 0 || n > 2 {
		errs.addf("%s invalid (0..2): %d", key, n)
		return fallback
	}
	return byte(n)
}

func ensureOneOf(key, val string, allowed []string, errs *errList) {
	for _, a := range allowed {
		if val == a {
			return
		}
	}
	errs.addf("%s invalid (allowed: %s): %q", key, strings.Join(allowed, ", "), val)
}

func ensurePositive(key string, v int64, errs *errList) {
	if v <= 0 {
		errs.addf("%s must be > 0", key)
	}
}

func parseBrokers(list string) []string {
	var out []string
	for _, b := range strings.Split(list, ",") {
		if s := strings.TrimSpace(b); s != "" {
			out = append(out, s)
		}
	}
	return out
}
