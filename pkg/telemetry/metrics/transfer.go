package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kallysto/kallysto/pkg/config"
)

// TransferMetrics tracks transfers into a publication.
//
// Metrics:
//   - kallysto_transfers_total: transfers by kind and result
//   - kallysto_transfer_duration_seconds: transfer duration histogram
type TransferMetrics struct {
	transfersTotal   *prometheus.CounterVec
	transferDuration *prometheus.HistogramVec
}

// NewTransferMetrics creates and registers transfer metrics.
func NewTransferMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *TransferMetrics {
	tm := &TransferMetrics{
		transfersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "transfers_total",
				Help:      "Total number of export transfers",
			},
			[]string{"kind", "result"},
		),

		transferDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "transfer_duration_seconds",
				Help:      "Duration of export transfers in seconds",
				Buckets:   cfg.TransferDurationBuckets,
			},
			[]string{"kind"},
		),
	}

	registry.MustRegister(
		tm.transfersTotal,
		tm.transferDuration,
	)

	return tm
}

// Record records a transfer.
func (tm *TransferMetrics) Record(kind, result string, duration time.Duration) {
	tm.transfersTotal.WithLabelValues(kind, result).Inc()
	tm.transferDuration.WithLabelValues(kind).Observe(duration.Seconds())
}
