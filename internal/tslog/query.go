package tslog

import (
	"errors"
	"math"
	"sort"
	"strconv"
)

var ErrUnknownField = errors.New("field not in history")

type Sample struct {
	Timestamp float64 `json:"timestamp"`
	Value     string  `json:"value"`
}

type Stats struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Avg   float64 `json:"avg"`
}

// History returns the flushed samples of one field with from <= ts <= to,
// oldest first. A zero bound is open. limit <= 0 means no limit; otherwise
// the newest limit samples are kept.
func (l *Logger) History(field string, from, to float64, limit int) ([]Sample, error) {
	l.fileMu.Lock()
	header, rows, err := l.readFile()
	l.fileMu.Unlock()
	if err != nil {
		return nil, err
	}
	if !contains(header, field) {
		return nil, ErrUnknownField
	}

	out := make([]Sample, 0)
	for ts, row := range rows {
		if (from != 0 && ts < from) || (to != 0 && ts > to) {
			continue
		}
		if v, ok := row[field]; ok {
			out = append(out, Sample{Timestamp: ts, Value: v})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// Statistics summarizes the numeric samples of a field. Values that do not
// parse as a number (vectors, booleans) are skipped.
func (l *Logger) Statistics(field string, from, to float64) (Stats, error) {
	samples, err := l.History(field, from, to, 0)
	if err != nil {
		return Stats{}, err
	}
	st := Stats{Min: math.Inf(1), Max: math.Inf(-1)}
	var sum float64
	for _, s := range samples {
		f, err := strconv.ParseFloat(s.Value, 64)
		if err != nil {
			continue
		}
		st.Count++
		sum += f
		st.Min = math.Min(st.Min, f)
		st.Max = math.Max(st.Max, f)
	}
	if st.Count == 0 {
		return Stats{}, nil
	}
	st.Avg = sum / float64(st.Count)
	return st, nil
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
