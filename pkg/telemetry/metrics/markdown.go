package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kallysto/kallysto/pkg/config"
)

// MarkdownMetrics tracks reference expansion.
type MarkdownMetrics struct {
	expansionsTotal *prometheus.CounterVec
	unresolvedTotal prometheus.Counter
}

// NewMarkdownMetrics creates and registers markdown metrics.
func NewMarkdownMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *MarkdownMetrics {
	mm := &MarkdownMetrics{
		expansionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "markdown_expansions_total",
				Help:      "Markdown expansions by result",
			},
			[]string{"result"},
		),

		unresolvedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "markdown_unresolved_references_total",
				Help:      "References left unresolved by markdown expansion",
			},
		),
	}

	registry.MustRegister(
		mm.expansionsTotal,
		mm.unresolvedTotal,
	)

	return mm
}

// Record records one expansion.
func (mm *MarkdownMetrics) Record(unresolved int) {
	result := ResultSuccess
	if unresolved > 0 {
		result = ResultUnresolved
		mm.unresolvedTotal.Add(float64(unresolved))
	}
	mm.expansionsTotal.WithLabelValues(result).Inc()
}
