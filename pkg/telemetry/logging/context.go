package logging

import (
	"context"
	"log/slog"
)

// Context keys for common log fields.
type contextKey string

const (
	// PublicationKey is the context key for the publication title.
	PublicationKey contextKey = "publication"

	// SourceKey is the context key for the source identifier.
	SourceKey contextKey = "source"

	// ExportKey is the context key for the export name.
	ExportKey contextKey = "export"
)

// contextKeys lists the keys copied onto log records, in output order.
var contextKeys = []contextKey{PublicationKey, SourceKey, ExportKey}

// WithPublication adds a publication title to the context.
func WithPublication(ctx context.Context, title string) context.Context {
	return context.WithValue(ctx, PublicationKey, title)
}

// GetPublication retrieves the publication title from the context.
func GetPublication(ctx context.Context) string {
	return getString(ctx, PublicationKey)
}

// WithSource adds a source identifier to the context.
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, SourceKey, source)
}

// GetSource retrieves the source identifier from the context.
func GetSource(ctx context.Context) string {
	return getString(ctx, SourceKey)
}

// WithExport adds an export name to the context.
func WithExport(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ExportKey, name)
}

// GetExport retrieves the export name from the context.
func GetExport(ctx context.Context) string {
	return getString(ctx, ExportKey)
}

func getString(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// extractContextFields returns the context fields as slog attributes.
func extractContextFields(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr
	for _, key := range contextKeys {
		if v := getString(ctx, key); v != "" {
			attrs = append(attrs, slog.String(string(key), v))
		}
	}
	return attrs
}

// contextHandler adds the context fields to every record.
type contextHandler struct {
	slog.Handler
}

// Handle implements slog.Handler.
func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs := extractContextFields(ctx); len(attrs) > 0 {
		r = r.Clone()
		r.AddAttrs(attrs...)
	}
	return h.Handler.Handle(ctx, r)
}

// WithAttrs implements slog.Handler.
func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

// WithGroup implements slog.Handler.
func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name)}
}
