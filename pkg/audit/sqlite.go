package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // "sqlite3" driver
	_ "modernc.org/sqlite"          // "sqlite" driver

	"github.com/kallysto/kallysto/pkg/clock"
)

// Supported database/sql driver names.
const (
	DriverModernc = "sqlite"
	DriverMattn   = "sqlite3"
)

// SQLiteConfig contains configuration for the SQLite ledger.
type SQLiteConfig struct {
	// Driver is the database/sql driver, DriverModernc or DriverMattn.
	// Default: "sqlite"
	Driver string

	// Path is the database file path.
	Path string

	// BusyTimeout is how long to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Driver:      DriverModernc,
		Path:        "kallysto.db",
		BusyTimeout: 5 * time.Second,
	}
}

// SQLiteStore implements Store on SQLite.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStore opens the ledger database and creates its schema.
func NewSQLiteStore(config *SQLiteConfig) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.Driver == "" {
		config.Driver = DriverModernc
	}
	if config.Driver != DriverModernc && config.Driver != DriverMattn {
		return nil, NewStoreError("sqlite", "open",
			fmt.Errorf("unsupported driver %q (want %s or %s)", config.Driver, DriverModernc, DriverMattn))
	}

	logger := slog.Default().With("component", "audit.sqlite", "driver", config.Driver)

	db, err := sql.Open(config.Driver, config.Path)
	if err != nil {
		return nil, NewStoreError("sqlite", "open", err)
	}
	// One writer per publication; a single connection also keeps
	// in-memory databases consistent.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{
		db:     db,
		config: config,
		logger: logger,
	}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("audit ledger opened", "path", config.Path)
	return s, nil
}

func (s *SQLiteStore) initialize() error {
	if s.config.BusyTimeout > 0 {
		pragma := fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())
		if _, err := s.db.Exec(pragma); err != nil {
			return NewStoreError("sqlite", "set_busy_timeout", err)
		}
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return NewStoreError("sqlite", "create_schema", err)
	}
	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return NewStoreError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return NewStoreError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return NewStoreError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}
	return nil
}

// Store implements Store.
func (s *SQLiteStore) Store(ctx context.Context, e *Entry) error {
	_, err := s.db.ExecContext(ctx, insertTransfer,
		int64(e.UID), e.ID, e.Kind, e.Name, e.Source, e.Title,
		e.CreatedAt.Format(time.RFC3339Nano),
		e.ExportedAt.Format(time.RFC3339Nano),
		e.ExportedAt.UnixNano(),
		nullable(e.DataFile), nullable(e.ImageFile), nullable(e.DefinitionsFile),
	)
	if err != nil {
		return NewStoreError("sqlite", "store", err)
	}
	return nil
}

// Query implements Store.
func (s *SQLiteStore) Query(ctx context.Context, q *Query) ([]*Entry, error) {
	if q == nil {
		q = &Query{}
	}
	where, args := buildWhereClause(q)

	stmt := "SELECT " + selectColumns + " FROM transfers" + where
	if q.Descending {
		stmt += " ORDER BY uid DESC"
	} else {
		stmt += " ORDER BY uid ASC"
	}
	if q.Limit > 0 || q.Offset > 0 {
		limit := q.Limit
		if limit <= 0 {
			limit = -1
		}
		stmt += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, q.Offset)
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, NewStoreError("sqlite", "query", err)
	}
	defer rows.Close()

	entries := []*Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, NewStoreError("sqlite", "scan", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStoreError("sqlite", "query", err)
	}
	return entries, nil
}

// Count implements Store.
func (s *SQLiteStore) Count(ctx context.Context, q *Query) (int64, error) {
	if q == nil {
		q = &Query{}
	}
	where, args := buildWhereClause(q)

	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transfers"+where, args...).Scan(&count); err != nil {
		return 0, NewStoreError("sqlite", "count", err)
	}
	return count, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return NewStoreError("sqlite", "close", err)
	}
	s.logger.Debug("audit ledger closed")
	return nil
}

// buildWhereClause returns " WHERE ..." (or "") and its arguments.
func buildWhereClause(q *Query) (string, []any) {
	var conditions []string
	var args []any

	add := func(cond string, arg any) {
		conditions = append(conditions, cond)
		args = append(args, arg)
	}
	if q.Kind != "" {
		add("kind = ?", q.Kind)
	}
	if q.Name != "" {
		add("name = ?", q.Name)
	}
	if q.Source != "" {
		add("source = ?", q.Source)
	}
	if q.Title != "" {
		add("title = ?", q.Title)
	}
	if q.Since != nil {
		add("exported_unix >= ?", q.Since.UnixNano())
	}
	if q.Until != nil {
		add("exported_unix <= ?", q.Until.UnixNano())
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func scanEntry(rows *sql.Rows) (*Entry, error) {
	var (
		e                     Entry
		uid                   int64
		created, exported     string
		data, image, defsFile sql.NullString
	)
	if err := rows.Scan(&uid, &e.ID, &e.Kind, &e.Name, &e.Source, &e.Title,
		&created, &exported, &data, &image, &defsFile); err != nil {
		return nil, err
	}

	var err error
	if e.CreatedAt, err = parseTime(created); err != nil {
		return nil, fmt.Errorf("created_at: %w", err)
	}
	if e.ExportedAt, err = parseTime(exported); err != nil {
		return nil, fmt.Errorf("exported_at: %w", err)
	}
	e.UID = clock.UID(uid)
	e.DataFile = data.String
	e.ImageFile = image.String
	e.DefinitionsFile = defsFile.String
	return &e, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
