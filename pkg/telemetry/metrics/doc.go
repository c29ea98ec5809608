// Package metrics provides Prometheus metrics for kallysto.
//
// A Collector owns its own registry so that tests and repeated CLI
// invocations never collide on the global default registry. Every Record
// method is safe to call on a nil *Collector and on a disabled one, so
// library code can accept an optional collector without nil checks.
//
// Metrics (namespace defaults to "kallysto"):
//
//   - transfers_total{kind,result}
//   - transfer_duration_seconds{kind}
//   - datastore_bytes_written_total{file}
//   - fragments_replaced_total
//   - include_directives_added_total
//   - markdown_expansions_total{result}
//   - markdown_unresolved_references_total
//   - prune_files_removed_total{dir}
package metrics
