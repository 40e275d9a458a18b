// Package telemetry provides Prometheus metrics and correlation-id aware
// logging helpers.
package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	LinesWritten   prometheus.Counter
	WritesSkipped  prometheus.Counter
	WriteFailures  prometheus.Counter
	RequestsServed prometheus.Counter
	NotFoundServed prometheus.Counter

	// Histograms (seconds)
	RenderDuration prometheus.Observer
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		LinesWritten = promauto.NewCounter(prometheus.CounterOpts{Name: "lazybot_log_lines_written_total", Help: "Number of chat lines appended to transcripts"})
		WritesSkipped = promauto.NewCounter(prometheus.CounterOpts{Name: "lazybot_log_writes_skipped_total", Help: "Number of chat events skipped (channel not configured for logging)"})
		WriteFailures = promauto.NewCounter(prometheus.CounterOpts{Name: "lazybot_log_write_failures_total", Help: "Number of transcript append failures"})
		RequestsServed = promauto.NewCounter(prometheus.CounterOpts{Name: "lazybot_log_http_requests_total", Help: "Number of transcript HTTP requests served"})
		NotFoundServed = promauto.NewCounter(prometheus.CounterOpts{Name: "lazybot_log_http_not_found_total", Help: "Number of transcript HTTP requests answered with the not-found fallback"})
		RenderDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "lazybot_log_render_duration_seconds", Help: "Transcript page render duration seconds", Buckets: prometheus.DefBuckets})
	})
}

// CountLineWritten increments the written-lines counter if metrics are up.
func CountLineWritten() {
	if LinesWritten != nil {
		LinesWritten.Inc()
	}
}

// CountWriteSkipped increments the skipped-writes counter.
func CountWriteSkipped() {
	if WritesSkipped != nil {
		WritesSkipped.Inc()
	}
}

// CountWriteFailure increments the write-failure counter.
func CountWriteFailure() {
	if WriteFailures != nil {
		WriteFailures.Inc()
	}
}

// CountRequest increments the served-requests counter.
func CountRequest() {
	if RequestsServed != nil {
		RequestsServed.Inc()
	}
}

// CountNotFound increments the not-found counter.
func CountNotFound() {
	if NotFoundServed != nil {
		NotFoundServed.Inc()
	}
}

// TimeFunc measures the duration of fn and records in observer if non-nil.
func TimeFunc(obs prometheus.Observer, fn func()) time.Duration {
	start := time.Now()
	fn()
	d := time.Since(start)
	if obs != nil {
		obs.Observe(d.Seconds())
	}
	return d
}

// Correlation ID helpers ----------------------------------------------------
type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context embedding correlation id (if absent) and the id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// GetCorrelation returns correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	v := ctx.Value(corrKey)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns a logger with corr attribute if present.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if id := GetCorrelation(ctx); id != "" {
		return slog.Default().With(slog.String("corr", id))
	}
	return slog.Default()
}
