package audit

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"time"
)

// JSONExporter exports audit entries as a JSON array.
type JSONExporter struct {
	// Pretty enables indentation.
	Pretty bool
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{Pretty: pretty}
}

// Export implements Exporter.
func (x *JSONExporter) Export(_ context.Context, entries []*Entry, w io.Writer) error {
	if entries == nil {
		entries = []*Entry{}
	}

	enc := json.NewEncoder(w)
	if x.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(entries); err != nil {
		return NewExportError("json", len(entries), err)
	}
	return nil
}

// CSVExporter exports audit entries as CSV.
type CSVExporter struct {
	// IncludeHeader writes a header row with column names.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{IncludeHeader: includeHeader}
}

var csvHeader = []string{
	KeyUID, KeyID, KeyKind, KeyName, KeySource, KeyTitle,
	KeyCreated, KeyExported, KeyData, KeyImage, KeyDefinition,
}

// Export implements Exporter.
func (x *CSVExporter) Export(_ context.Context, entries []*Entry, w io.Writer) error {
	writer := csv.NewWriter(w)

	if x.IncludeHeader {
		if err := writer.Write(csvHeader); err != nil {
			return NewExportError("csv", len(entries), err)
		}
	}
	for _, e := range entries {
		row := []string{
			e.UID.String(), e.ID, e.Kind, e.Name, e.Source, e.Title,
			e.CreatedAt.Format(time.RFC3339Nano),
			e.ExportedAt.Format(time.RFC3339Nano),
			e.DataFile, e.ImageFile, e.DefinitionsFile,
		}
		if err := writer.Write(row); err != nil {
			return NewExportError("csv", len(entries), err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return NewExportError("csv", len(entries), err)
	}
	return nil
}

// LookupExporter returns the exporter for a format name, "json" or "csv".
func LookupExporter(format string) (Exporter, bool) {
	switch format {
	case "json":
		return NewJSONExporter(true), true
	case "csv":
		return NewCSVExporter(true), true
	default:
		return nil, false
	}
}
