// Package metrics exports window lifecycle metrics to Prometheus.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jmylchreest/labwin/internal/window"
)

const namespace = "labwin"

// Failure reasons.
const (
	ReasonTimeout   = "timeout"
	ReasonError     = "error"
	ReasonCancelled = "cancelled"
)

// Recorder implements window.Observer by updating Prometheus collectors.
type Recorder struct {
	registry *prometheus.Registry

	opened     *prometheus.CounterVec
	failures   *prometheus.CounterVec
	deliveries *prometheus.CounterVec
	open       prometheus.Gauge
	creation   prometheus.Histogram
}

// NewRecorder registers the collectors on a fresh registry, together with the
// Go and process collectors.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return newRecorder(reg)
}

func newRecorder(reg *prometheus.Registry) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		opened: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "windows_opened_total",
			Help:      "Windows constructed, by multiplicity mode.",
		}, []string{"mode"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "window_creation_failures_total",
			Help:      "Window constructions that failed, by reason.",
		}, []string{"reason"}),
		deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payload_deliveries_total",
			Help:      "Payload handshakes that finished, by outcome.",
		}, []string{"outcome"}),
		open: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "windows_open",
			Help:      "Windows currently open.",
		}),
		creation: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "window_creation_seconds",
			Help:      "Time from construction request to the created signal.",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
	}
}

// Registry returns the registry the collectors live on.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func mode(h *window.Handle) string {
	if h.Singleton {
		return "singleton"
	}
	return "multi"
}

// WindowOpened implements window.Observer.
func (r *Recorder) WindowOpened(h *window.Handle, took time.Duration) {
	r.opened.WithLabelValues(mode(h)).Inc()
	r.open.Inc()
	r.creation.Observe(took.Seconds())
}

// CreationFailed implements window.Observer.
func (r *Recorder) CreationFailed(_ string, err error) {
	r.failures.WithLabelValues(Reason(err)).Inc()
}

// WindowClosed implements window.Observer.
func (r *Recorder) WindowClosed(*window.Handle) {
	r.open.Dec()
}

// PayloadDelivered implements window.Observer.
func (r *Recorder) PayloadDelivered(*window.Handle) {
	r.deliveries.WithLabelValues("delivered").Inc()
}

// PayloadAbandoned implements window.Observer.
func (r *Recorder) PayloadAbandoned(*window.Handle) {
	r.deliveries.WithLabelValues("abandoned").Inc()
}

// Reason classifies a creation failure.
func Reason(err error) string {
	switch {
	case errors.Is(err, window.ErrCreationTimeout):
		return ReasonTimeout
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ReasonCancelled
	default:
		return ReasonError
	}
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, r *Recorder, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Debug("metrics server shutdown", "error", err)
		}
	}()

	logger.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
