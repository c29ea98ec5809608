// Package telemetry groups the observability packages used by kallysto.
//
// # Components
//
//   - logging: structured logging on log/slog, with publication, source and
//     export fields carried through context.Context
//   - metrics: Prometheus counters and histograms for transfers, datastore
//     writes, markdown expansion and pruning
//
// kallysto is a command-line tool rather than a server, so metrics are not
// scraped over HTTP. When telemetry.metrics.textfile is set, the CLI writes
// the registry in the Prometheus text format after each command, for pickup
// by a node exporter textfile collector.
//
// # Usage
//
//	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging, os.Stderr))
//	if err != nil {
//		return err
//	}
//	slog.SetDefault(logger.Slog())
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordTransfer("Table", metrics.ResultSuccess, elapsed)
//	defer collector.WriteTextfile(cfg.Telemetry.Metrics.Textfile)
package telemetry
