package audit

import (
	"context"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/kallysto/kallysto/pkg/clock"
)

// Entry is the record of one transfer.
type Entry struct {
	UID             clock.UID `json:"uid"`              // Transfer identity, strictly increasing
	ID              string    `json:"id"`               // Random record identifier
	Kind            string    `json:"kind"`             // Value, Table or Figure
	Name            string    `json:"name"`             // Export name
	Source          string    `json:"source"`           // Exporting notebook or script
	Title           string    `json:"title"`            // Publication title
	CreatedAt       time.Time `json:"created_at"`       // Export construction time
	ExportedAt      time.Time `json:"exported_at"`      // Transfer time
	DataFile        string    `json:"data_file"`        // Side file, if any
	ImageFile       string    `json:"image_file"`       // Image file, if any
	DefinitionsFile string    `json:"definitions_file"` // Definitions file written
}

// NewEntryID returns a fresh random record identifier.
func NewEntryID() string {
	return uuid.New().String()
}

// Query defines filter parameters for audit entries. Zero values match
// everything.
type Query struct {
	Kind   string `json:"kind,omitempty"`
	Name   string `json:"name,omitempty"`
	Source string `json:"source,omitempty"`
	Title  string `json:"title,omitempty"`

	// Since and Until bound ExportedAt, both inclusive.
	Since *time.Time `json:"since,omitempty"`
	Until *time.Time `json:"until,omitempty"`

	// Pagination
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`

	// Descending returns the newest entries first.
	Descending bool `json:"descending,omitempty"`
}

// Matches reports whether e satisfies the filters of q.
func (q *Query) Matches(e *Entry) bool {
	if q == nil {
		return true
	}
	switch {
	case q.Kind != "" && q.Kind != e.Kind:
		return false
	case q.Name != "" && q.Name != e.Name:
		return false
	case q.Source != "" && q.Source != e.Source:
		return false
	case q.Title != "" && q.Title != e.Title:
		return false
	case q.Since != nil && e.ExportedAt.Before(*q.Since):
		return false
	case q.Until != nil && e.ExportedAt.After(*q.Until):
		return false
	}
	return true
}

// apply filters, orders by UID and paginates entries in memory.
func (q *Query) apply(entries []*Entry) []*Entry {
	if q == nil {
		q = &Query{}
	}

	out := make([]*Entry, 0, len(entries))
	for _, e := range entries {
		if q.Matches(e) {
			out = append(out, e)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if q.Descending {
			return out[i].UID > out[j].UID
		}
		return out[i].UID < out[j].UID
	})

	if q.Offset > 0 {
		if q.Offset >= len(out) {
			return []*Entry{}
		}
		out = out[q.Offset:]
	}
	if q.Limit > 0 && q.Limit < len(out) {
		out = out[:q.Limit]
	}
	return out
}

// Store is a queryable mirror of the audit log.
type Store interface {
	// Store persists an entry.
	Store(ctx context.Context, entry *Entry) error

	// Query returns the entries matching q, oldest first unless
	// q.Descending is set. It returns an empty slice when nothing matches.
	Query(ctx context.Context, q *Query) ([]*Entry, error)

	// Count returns the number of entries matching q, ignoring pagination.
	Count(ctx context.Context, q *Query) (int64, error)

	// Close releases any resources held by the store.
	Close() error
}

// Exporter writes audit entries in some format.
type Exporter interface {
	Export(ctx context.Context, entries []*Entry, w io.Writer) error
}
