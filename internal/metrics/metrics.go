// Package metrics exposes the optional Prometheus endpoint the CLI starts
// behind --metrics-addr, generalizing the inline promhttp.Handler() wiring
// the teacher's cmd/cie/index.go sets up for its own --metrics-addr flag
// into a small reusable helper shared by both the validate and package
// commands.
package metrics

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RunsTotal counts validate/package invocations by command and outcome
// status (spec.md §4.4's three statuses, plus "error" for a hard failure
// that never reached a Result).
var RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "bioimageio_runs_total",
	Help: "Total bioimageio CLI invocations by command and outcome status.",
}, []string{"command", "status"})

// RunDuration records how long a validate/package invocation took.
var RunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "bioimageio_run_duration_seconds",
	Help:    "Duration of a bioimageio CLI invocation.",
	Buckets: prometheus.DefBuckets,
}, []string{"command"})

// Serve starts the /metrics HTTP endpoint in the background if addr is
// non-empty; it never blocks the caller.
func Serve(addr string, logger *slog.Logger) {
	if addr == "" {
		return
	}
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		logger.Info("metrics.http.start", "addr", addr, "path", "/metrics")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn("metrics.http.error", "err", err)
		}
	}()
}
