// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/diogo/gatewaychat/internal/models"
)

// OtherModel labels series for model ids outside the catalog.
const OtherModel = "other"

// Send outcomes
const (
	OutcomeCompleted = "completed"
	OutcomeAborted   = "aborted"
	OutcomeFailed    = "failed"
	OutcomeEmpty     = "empty"
)

var (
	// SendsTotal counts finished sends by outcome.
	SendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatewaychat_sends_total",
			Help: "Total chat sends by outcome",
		},
		[]string{"model", "outcome"},
	)

	// StreamDuration tracks the time from send to terminal state.
	StreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gatewaychat_stream_duration_seconds",
			Help:    "Streaming response duration",
			Buckets: []float64{.25, .5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"model", "outcome"},
	)

	// FragmentsTotal counts stream fragments received.
	FragmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatewaychat_fragments_total",
			Help: "Total stream fragments received",
		},
		[]string{"model"},
	)

	// TemperatureRetries counts sends retried without temperature.
	TemperatureRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatewaychat_temperature_retries_total",
			Help: "Sends retried without temperature after a provider rejection",
		},
		[]string{"model"},
	)

	// StoreErrors counts swallowed persistence failures.
	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatewaychat_store_errors_total",
			Help: "Persistence failures that were logged and ignored",
		},
		[]string{"op"},
	)
)

// ModelLabel maps a model id to its label value. Ids come from stored
// settings and the command line, so anything outside the catalog collapses
// into one series.
func ModelLabel(id string) string {
	if _, ok := models.ModelByID(id); ok {
		return id
	}
	return OtherModel
}

// ObserveSend records the outcome of one send.
func ObserveSend(model, outcome string, d time.Duration) {
	label := ModelLabel(model)
	SendsTotal.WithLabelValues(label, outcome).Inc()
	StreamDuration.WithLabelValues(label, outcome).Observe(d.Seconds())
}

// ObserveFragment counts one stream fragment.
func ObserveFragment(model string) {
	FragmentsTotal.WithLabelValues(ModelLabel(model)).Inc()
}

// ObserveTemperatureRetry counts one retry without temperature.
func ObserveTemperatureRetry(model string) {
	TemperatureRetries.WithLabelValues(ModelLabel(model)).Inc()
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
