// Package audit records transfers.
//
// Every successful transfer appends exactly one Entry to the publication's
// audit log, a plain text file with one logfmt line per transfer:
//
//	uid=1508922309.123456789 id=5f0c... kind=Table name=SalesByRepTable source=sales ...
//
// Lines are produced with log/slog's text handler, so they stay greppable
// and append-safe. FileLog reads them back with ParseLine and answers the
// same Query as the stores.
//
// A Store is an optional queryable mirror of the log. SQLiteStore keeps
// entries in SQLite using either the pure-Go modernc.org/sqlite driver
// ("sqlite") or mattn/go-sqlite3 ("sqlite3"); MemoryStore keeps them in
// memory for tests. JSONExporter and CSVExporter write entries out for
// review.
package audit
