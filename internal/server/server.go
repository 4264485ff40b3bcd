// Package server exposes the collector's HTTP surface: health, metrics, the
// live WebSocket feed and read-only history queries.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/lucaslui/telemd/internal/live"
	"github.com/lucaslui/telemd/internal/tslog"
)

// Status is what /healthz reports about the publish path.
type Status interface {
	Connected() bool
	PacketID() uint64
}

// History answers /history and /stats. It may be nil when the history log
// is disabled.
type History interface {
	History(field string, from, to float64, limit int) ([]tslog.Sample, error)
	Statistics(field string, from, to float64) (tslog.Stats, error)
}

type Options struct {
	Addr    string
	Status  Status
	Latest  *live.Latest
	Hub     *live.Hub
	History History
	Metrics http.Handler
	Logger  *log.Logger
}

type Server struct {
	opts  Options
	start time.Time
	srv   *http.Server
}

func New(o Options) *Server {
	s := &Server{opts: o, start: time.Now()}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.health)
	mux.HandleFunc("GET /latest", s.latest)
	mux.HandleFunc("GET /history", s.history)
	mux.HandleFunc("GET /stats", s.stats)
	if o.Hub != nil {
		mux.Handle("/ws", o.Hub)
	}
	if o.Metrics != nil {
		mux.Handle("GET /metrics", o.Metrics)
	}

	s.srv = &http.Server{
		Addr:              o.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.opts.Logger.Printf("[http] listening on %s", s.opts.Addr)
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type healthResponse struct {
	Status          string  `json:"status"`
	BrokerConnected bool    `json:"broker_connected"`
	PacketID        uint64  `json:"packet_id"`
	UptimeSeconds   float64 `json:"uptime_s"`
	LiveFields      int     `json:"live_fields"`
	WSClients       int     `json:"ws_clients"`
}

// health always answers 200; a disconnected broker is reported as degraded
// since the collector keeps running without it.
func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{
		Status:        "ok",
		UptimeSeconds: time.Since(s.start).Seconds(),
	}
	if s.opts.Status != nil {
		resp.BrokerConnected = s.opts.Status.Connected()
		resp.PacketID = s.opts.Status.PacketID()
	}
	if !resp.BrokerConnected {
		resp.Status = "degraded"
	}
	if s.opts.Latest != nil {
		resp.LiveFields = s.opts.Latest.Len()
	}
	if s.opts.Hub != nil {
		resp.WSClients = s.opts.Hub.Clients()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) latest(w http.ResponseWriter, _ *http.Request) {
	if s.opts.Latest == nil {
		writeError(w, http.StatusServiceUnavailable, "live view disabled")
		return
	}
	writeJSON(w, http.StatusOK, s.opts.Latest.Document(time.Now()))
}

type rangeQuery struct {
	field    string
	from, to float64
	limit    int
}

func parseRange(r *http.Request) (rangeQuery, error) {
	q := r.URL.Query()
	rq := rangeQuery{field: q.Get("field")}
	if rq.field == "" {
		return rq, errors.New("field is required")
	}
	var err error
	if v := q.Get("from"); v != "" {
		if rq.from, err = strconv.ParseFloat(v, 64); err != nil {
			return rq, errors.New("from must be unix seconds")
		}
	}
	if v := q.Get("to"); v != "" {
		if rq.to, err = strconv.ParseFloat(v, 64); err != nil {
			return rq, errors.New("to must be unix seconds")
		}
	}
	if v := q.Get("limit"); v != "" {
		if rq.limit, err = strconv.Atoi(v); err != nil || rq.limit < 0 {
			return rq, errors.New("limit must be a non-negative integer")
		}
	}
	return rq, nil
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	if s.opts.History == nil {
		writeError(w, http.StatusServiceUnavailable, "history disabled")
		return
	}
	rq, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	samples, err := s.opts.History.History(rq.field, rq.from, rq.to, rq.limit)
	if err != nil {
		s.queryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"field": rq.field, "samples": samples})
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	if s.opts.History == nil {
		writeError(w, http.StatusServiceUnavailable, "history disabled")
		return
	}
	rq, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	st, err := s.opts.History.Statistics(rq.field, rq.from, rq.to)
	if err != nil {
		s.queryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"field": rq.field, "stats": st})
}

func (s *Server) queryError(w http.ResponseWriter, err error) {
	if errors.Is(err, tslog.ErrUnknownField) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.opts.Logger.Printf("[http] history query: %v", err)
	writeError(w, http.StatusInternalServerError, "history unavailable")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
