package audit

// SchemaVersion is the current ledger schema version.
const SchemaVersion = 1

// Schema contains the SQL statements that create the ledger schema.
const Schema = `
CREATE TABLE IF NOT EXISTS transfers (
    uid INTEGER PRIMARY KEY,
    id TEXT NOT NULL,
    kind TEXT NOT NULL,
    name TEXT NOT NULL,
    source TEXT NOT NULL,
    title TEXT NOT NULL,
    created_at TEXT NOT NULL,
    exported_at TEXT NOT NULL,
    exported_unix INTEGER NOT NULL,
    data_file TEXT,
    image_file TEXT,
    definitions_file TEXT
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transfers_name ON transfers(name);
CREATE INDEX IF NOT EXISTS idx_transfers_source ON transfers(source);
CREATE INDEX IF NOT EXISTS idx_transfers_exported ON transfers(exported_unix);
`

// InsertSchemaVersion records the schema version.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

const insertTransfer = `
INSERT INTO transfers (
    uid, id, kind, name, source, title,
    created_at, exported_at, exported_unix,
    data_file, image_file, definitions_file
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const selectColumns = `uid, id, kind, name, source, title, created_at, exported_at, data_file, image_file, definitions_file`
