package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"FxPull/internal/domain/models"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	pagesTotal   *prometheus.CounterVec
	seriesTotal  *prometheus.CounterVec
	candlesGauge *prometheus.GaugeVec
	errorsTotal  *prometheus.CounterVec
	latency      *prometheus.HistogramVec
}

// New registers the recorder on the default registry, which /metrics serves.
func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the recorder's collectors on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		pagesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxpull_pages_total",
				Help: "Kline page requests by symbol and outcome",
			},
			[]string{"symbol", "status"},
		),
		seriesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxpull_series_total",
				Help: "Finished series by currency and completion status",
			},
			[]string{"currency", "status"},
		),
		candlesGauge: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fxpull_series_candles",
				Help: "Candles in the last series of a currency",
			},
			[]string{"currency"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxpull_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fxpull_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordPage counts one page request.
func (r *Recorder) RecordPage(symbol string, status models.PageStatus) {
	r.pagesTotal.WithLabelValues(symbol, status.String()).Inc()
}

// RecordSeries counts a finished series and keeps its size.
func (r *Recorder) RecordSeries(currency string, status models.CompletionStatus, candles int) {
	r.seriesTotal.WithLabelValues(currency, string(status)).Inc()
	r.candlesGauge.WithLabelValues(currency).Set(float64(candles))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
