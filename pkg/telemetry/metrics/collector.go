package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kallysto/kallysto/pkg/config"
)

// Result labels.
const (
	ResultSuccess    = "success"
	ResultDuplicate  = "duplicate"
	ResultError      = "error"
	ResultUnresolved = "unresolved"
)

// Collector records kallysto metrics.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	transferMetrics  *TransferMetrics
	datastoreMetrics *DatastoreMetrics
	markdownMetrics  *MarkdownMetrics
}

// NewCollector creates a collector registered with registry. A nil registry
// gets a fresh one; a nil cfg means defaults with metrics enabled.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if cfg == nil {
		cfg = &config.MetricsConfig{Enabled: true}
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if len(cfg.TransferDurationBuckets) == 0 {
		cfg.TransferDurationBuckets = append([]float64(nil), config.DefaultTransferDurationBuckets...)
	}

	return &Collector{
		config:           cfg,
		registry:         registry,
		transferMetrics:  NewTransferMetrics(cfg, registry),
		datastoreMetrics: NewDatastoreMetrics(cfg, registry),
		markdownMetrics:  NewMarkdownMetrics(cfg, registry),
	}
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// Registry returns the registry the collector's metrics live in.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// RecordTransfer records one transfer attempt.
//
// Parameters:
//   - kind: export kind ("Value", "Table", "Figure")
//   - result: ResultSuccess, ResultDuplicate or ResultError
//   - duration: time spent in the transfer
func (c *Collector) RecordTransfer(kind, result string, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.transferMetrics.Record(kind, result, duration)
}

// RecordBytesWritten records bytes written to a datastore file class
// ("data", "image", "definitions", "include", "log").
func (c *Collector) RecordBytesWritten(file string, n int) {
	if !c.enabled() {
		return
	}
	c.datastoreMetrics.bytesWritten.WithLabelValues(file).Add(float64(n))
}

// RecordFragmentReplaced records a fragment replaced in place.
func (c *Collector) RecordFragmentReplaced() {
	if !c.enabled() {
		return
	}
	c.datastoreMetrics.fragmentsReplaced.Inc()
}

// RecordIncludeAdded records a new include directive.
func (c *Collector) RecordIncludeAdded() {
	if !c.enabled() {
		return
	}
	c.datastoreMetrics.includesAdded.Inc()
}

// RecordPruned records side files removed from dir ("data" or "figs").
func (c *Collector) RecordPruned(dir string, n int) {
	if !c.enabled() || n == 0 {
		return
	}
	c.datastoreMetrics.pruned.WithLabelValues(dir).Add(float64(n))
}

// RecordExpansion records one markdown expansion and the number of
// unresolved references it left.
func (c *Collector) RecordExpansion(unresolved int) {
	if !c.enabled() {
		return
	}
	c.markdownMetrics.Record(unresolved)
}

// WriteTextfile writes the registry to path in the Prometheus text format.
// An empty path or a disabled collector is a no-op.
func (c *Collector) WriteTextfile(path string) error {
	if !c.enabled() || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
