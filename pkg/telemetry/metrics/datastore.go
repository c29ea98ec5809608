package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kallysto/kallysto/pkg/config"
)

// DatastoreMetrics tracks writes to the publication store.
type DatastoreMetrics struct {
	bytesWritten      *prometheus.CounterVec
	fragmentsReplaced prometheus.Counter
	includesAdded     prometheus.Counter
	pruned            *prometheus.CounterVec
}

// NewDatastoreMetrics creates and registers datastore metrics.
func NewDatastoreMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *DatastoreMetrics {
	dm := &DatastoreMetrics{
		bytesWritten: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "datastore_bytes_written_total",
				Help:      "Bytes written to the datastore by file class",
			},
			[]string{"file"},
		),

		fragmentsReplaced: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "fragments_replaced_total",
				Help:      "Fragments replaced in place in a definitions file",
			},
		),

		includesAdded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "include_directives_added_total",
				Help:      "Directives appended to a master include file",
			},
		),

		pruned: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "prune_files_removed_total",
				Help:      "Orphaned side files removed by pruning",
			},
			[]string{"dir"},
		),
	}

	registry.MustRegister(
		dm.bytesWritten,
		dm.fragmentsReplaced,
		dm.includesAdded,
		dm.pruned,
	)

	return dm
}
