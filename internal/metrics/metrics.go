// Package metrics defines bounded-cardinality Prometheus metrics for the
// simulation, input validation and room dispatcher, and serves them plus
// pprof profiling on a debug listener. Only the entity-count gauge (fed
// by cmd/roomserver), the HTTP request latency and the connection
// rejection counter (fed by internal/apiserver) are written anywhere in
// the module; the other collectors are registered but never updated.
// Grounded on the
// teacher's internal/api/observability.go: promauto-registered
// histograms/gauges/counters, label sets drawn from a small fixed
// vocabulary (never raw session IDs or IPs), and a debug server forced
// to localhost unless explicitly opted out of.
package metrics

import (
	"log"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arenacore_tick_duration_seconds",
		Help:    "Time spent executing one simulation tick",
		Buckets: []float64{0.001, 0.005, 0.01, 0.02, 0.05, 0.1},
	})

	entityCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arenacore_entity_count",
		Help: "Currently active entities across all stores",
	})

	foodCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arenacore_food_count",
		Help: "Currently live food entities",
	})

	inputDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arenacore_input_dropped_total",
		Help: "Input messages dropped by the validator",
	}, []string{"reason"}) // bounded: too_large, rate_limited, seq_not_ahead, seq_jump

	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arenacore_connection_rejected_total",
		Help: "Connections rejected before a session was established",
	}, []string{"reason"}) // bounded: rate_limit, unknown_room, room_full

	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arenacore_sessions_active",
		Help: "Currently connected sessions across all rooms",
	})

	snapshotsBroadcast = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arenacore_snapshots_broadcast_total",
		Help: "Total snapshot frames broadcast to sessions",
	})

	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "arenacore_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// RecordTick observes one tick's wall-clock duration.
func RecordTick(d time.Duration) { tickDuration.Observe(d.Seconds()) }

// SetEntityCount updates the active-entity gauge.
func SetEntityCount(n int) { entityCount.Set(float64(n)) }

// SetFoodCount updates the live-food gauge.
func SetFoodCount(n int) { foodCount.Set(float64(n)) }

// RecordInputDropped increments the drop counter for a bounded reason.
func RecordInputDropped(reason string) { inputDropped.WithLabelValues(reason).Inc() }

// RecordConnectionRejected increments the rejection counter for a
// bounded reason.
func RecordConnectionRejected(reason string) { connectionRejected.WithLabelValues(reason).Inc() }

// SetSessionsActive updates the active-session gauge.
func SetSessionsActive(n int) { sessionsActive.Set(float64(n)) }

// RecordSnapshotBroadcast increments the broadcast counter.
func RecordSnapshotBroadcast() { snapshotsBroadcast.Inc() }

// RecordRequest observes one HTTP request's latency under a bounded
// route label (the chi route pattern, never the raw path).
func RecordRequest(method, route string, d time.Duration) {
	requestLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

// ServerConfig configures the debug listener.
type ServerConfig struct {
	Enabled    bool
	ListenAddr string
}

// StartDebugServer serves /metrics, /debug/pprof/* and /health on its
// own listener. CRITICAL: ListenAddr must stay on localhost in
// production; callers get this from internal/config's
// ObservabilityFromEnv, which already enforces that.
func StartDebugServer(cfg ServerConfig) {
	if !cfg.Enabled {
		log.Println("[metrics] debug server disabled")
		return
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	go func() {
		log.Printf("[metrics] debug server listening on %s", cfg.ListenAddr)
		if err := http.ListenAndServe(cfg.ListenAddr, mux); err != nil && err != http.ErrServerClosed {
			log.Printf("[metrics] debug server error: %v", err)
		}
	}()
}
