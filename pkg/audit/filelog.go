package audit

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-logfmt/logfmt"
	"github.com/spf13/afero"
)

// Log line keys.
const (
	KeyUID        = "uid"
	KeyID         = "id"
	KeyKind       = "kind"
	KeyName       = "name"
	KeySource     = "source"
	KeyTitle      = "title"
	KeyCreated    = "created"
	KeyExported   = "exported"
	KeyData       = "data"
	KeyImage      = "image"
	KeyDefinition = "defs"
)

// FileLog is the append-only audit log of a publication.
type FileLog struct {
	fs   afero.Fs
	path string
}

// OpenFileLog returns the audit log at path. The file is created on the
// first Append.
func OpenFileLog(fsys afero.Fs, path string) *FileLog {
	return &FileLog{
		fs:   fsys,
		path: path,
	}
}

// Path returns the log file path.
func (l *FileLog) Path() string {
	return l.path
}

// FormatLine renders e as a single logfmt line, without the newline.
func FormatLine(e *Entry) string {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 {
				switch a.Key {
				case slog.TimeKey, slog.LevelKey, slog.MessageKey:
					return slog.Attr{}
				}
			}
			return a
		},
	})

	slog.New(handler).LogAttrs(context.Background(), slog.LevelInfo, "",
		slog.String(KeyUID, e.UID.String()),
		slog.String(KeyID, e.ID),
		slog.String(KeyKind, e.Kind),
		slog.String(KeyName, e.Name),
		slog.String(KeySource, e.Source),
		slog.String(KeyTitle, e.Title),
		slog.String(KeyCreated, e.CreatedAt.Format(time.RFC3339Nano)),
		slog.String(KeyExported, e.ExportedAt.Format(time.RFC3339Nano)),
		slog.String(KeyData, e.DataFile),
		slog.String(KeyImage, e.ImageFile),
		slog.String(KeyDefinition, e.DefinitionsFile),
	)
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}

// Append writes one line for e. The file is opened in append mode for every
// line, so earlier lines are never rewritten.
func (l *FileLog) Append(e *Entry) error {
	if err := l.fs.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return NewStoreError("file", "append", err)
	}

	f, err := l.fs.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return NewStoreError("file", "append", err)
	}
	if _, err := f.WriteString(FormatLine(e) + "\n"); err != nil {
		f.Close()
		return NewStoreError("file", "append", err)
	}
	if err := f.Close(); err != nil {
		return NewStoreError("file", "append", err)
	}
	return nil
}

// Read returns every entry in file order. A missing log has no entries.
func (l *FileLog) Read() ([]*Entry, error) {
	f, err := l.fs.Open(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []*Entry{}, nil
	}
	if err != nil {
		return nil, NewStoreError("file", "read", err)
	}
	defer f.Close()

	entries := []*Entry{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for scanner.Scan() {
		n++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		e, err := ParseLine(line)
		if err != nil {
			var perr *ParseError
			if errors.As(err, &perr) {
				perr.Line = n
			}
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, NewStoreError("file", "read", err)
	}
	return entries, nil
}

// Query returns the entries matching q.
func (l *FileLog) Query(_ context.Context, q *Query) ([]*Entry, error) {
	entries, err := l.Read()
	if err != nil {
		return nil, err
	}
	return q.apply(entries), nil
}

// Count returns the number of entries matching q, ignoring pagination.
func (l *FileLog) Count(_ context.Context, q *Query) (int64, error) {
	entries, err := l.Read()
	if err != nil {
		return 0, err
	}
	var n int64
	for _, e := range entries {
		if q.Matches(e) {
			n++
		}
	}
	return n, nil
}

// ParseLine parses a line produced by FormatLine. Unknown keys are ignored
// so that older readers accept newer logs.
func ParseLine(line string) (*Entry, error) {
	dec := logfmt.NewDecoder(strings.NewReader(line))
	if !dec.ScanRecord() {
		if err := dec.Err(); err != nil {
			return nil, NewParseError(0, line, err)
		}
		return nil, NewParseError(0, line, errors.New("empty line"))
	}

	e := &Entry{}
	for dec.ScanKeyval() {
		key, value := string(dec.Key()), string(dec.Value())
		var err error
		switch key {
		case KeyUID:
			err = e.UID.UnmarshalText([]byte(value))
		case KeyID:
			e.ID = value
		case KeyKind:
			e.Kind = value
		case KeyName:
			e.Name = value
		case KeySource:
			e.Source = value
		case KeyTitle:
			e.Title = value
		case KeyCreated:
			e.CreatedAt, err = parseTime(value)
		case KeyExported:
			e.ExportedAt, err = parseTime(value)
		case KeyData:
			e.DataFile = value
		case KeyImage:
			e.ImageFile = value
		case KeyDefinition:
			e.DefinitionsFile = value
		}
		if err != nil {
			return nil, NewParseError(0, line, fmt.Errorf("field %s: %w", key, err))
		}
	}
	if err := dec.Err(); err != nil {
		return nil, NewParseError(0, line, err)
	}

	if e.UID == 0 || e.Name == "" {
		return nil, NewParseError(0, line, errors.New("missing uid or name"))
	}
	return e, nil
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
