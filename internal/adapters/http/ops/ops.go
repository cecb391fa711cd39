// Package ops exposes operational HTTP endpoints: health, service
// stats and the Prometheus scrape. The business query surface
// (reports, charts, summaries) is a Go API on the service, consumed by
// an external transport layer.
package ops

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cylvision/dockwatch/pkg/metrics"
)

// StatsProvider exposes service statistics for monitoring.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// Server wires the operational routes.
type Server struct {
	stats StatsProvider
}

// NewServer creates an ops server backed by the given stats provider.
func NewServer(stats StatsProvider) *Server {
	return &Server{stats: stats}
}

// Register attaches the ops routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", Middleware(s.handleHealth, "healthz"))
	mux.HandleFunc("/stats", Middleware(s.handleStats, "stats"))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(s.stats.GetStats())
}
