package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"reflect"
)

// Tabular is a two-dimensional labelled table: rows are identified by an
// index label and columns by name. Cells may hold any value; they are
// rendered with FormatCell.
type Tabular interface {
	Columns() []string
	Len() int
	Label(row int) string
	Cell(row, col int) any
}

// IndexNamer is implemented by tables whose index column has a name. The
// name heads the first CSV column.
type IndexNamer interface {
	IndexName() string
}

// Validator is implemented by tables that can report structural problems
// (for example ragged rows) before they are serialised.
type Validator interface {
	Validate() error
}

// Frame is a simple in-memory Tabular.
type Frame struct {
	indexName string
	columns   []string
	labels    []string
	rows      [][]any
}

// NewFrame creates an empty frame with a named index and the given columns.
func NewFrame(indexName string, columns ...string) *Frame {
	return &Frame{
		indexName: indexName,
		columns:   append([]string(nil), columns...),
	}
}

// AddRow appends a row. Rows whose width differs from the column count are
// accepted here and rejected by Validate.
func (f *Frame) AddRow(label string, values ...any) *Frame {
	f.labels = append(f.labels, label)
	f.rows = append(f.rows, append([]any(nil), values...))
	return f
}

// Columns returns the column names.
func (f *Frame) Columns() []string { return f.columns }

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.rows) }

// Label returns the index label of a row.
func (f *Frame) Label(row int) string { return f.labels[row] }

// IndexName returns the name of the index column.
func (f *Frame) IndexName() string { return f.indexName }

// Cell returns the value at row, col, or nil when the row is short.
func (f *Frame) Cell(row, col int) any {
	if col >= len(f.rows[row]) {
		return nil
	}
	return f.rows[row][col]
}

// Validate reports ragged rows.
func (f *Frame) Validate() error {
	for i, row := range f.rows {
		if len(row) != len(f.columns) {
			return fmt.Errorf("row %d (%q) has %d values, want %d", i, f.labels[i], len(row), len(f.columns))
		}
	}
	return nil
}

// ReadCSV reads a frame from CSV. The first row is the header; its first
// cell names the index. Every following row starts with the index label.
func ReadCSV(r io.Reader) (*Frame, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("csv input is empty")
	}

	header := records[0]
	if len(header) < 2 {
		return nil, errors.New("csv header needs an index column and at least one data column")
	}

	frame := NewFrame(header[0], header[1:]...)
	for _, record := range records[1:] {
		values := make([]any, 0, len(record)-1)
		for _, cell := range record[1:] {
			values = append(values, cell)
		}
		frame.AddRow(record[0], values...)
	}
	return frame, nil
}

// Grid is the immutable, stringified snapshot of a Tabular taken when an
// export is constructed.
type Grid struct {
	IndexName string
	Columns   []string
	Labels    []string
	Cells     [][]string
}

// Records returns the grid as CSV records: a header row followed by one
// row per label.
func (g *Grid) Records() [][]string {
	records := make([][]string, 0, len(g.Labels)+1)
	records = append(records, append([]string{g.IndexName}, g.Columns...))
	for i, label := range g.Labels {
		records = append(records, append([]string{label}, g.Cells[i]...))
	}
	return records
}

// clone returns a deep copy so callers cannot reach into an Export.
func (g *Grid) clone() *Grid {
	c := &Grid{
		IndexName: g.IndexName,
		Columns:   append([]string(nil), g.Columns...),
		Labels:    append([]string(nil), g.Labels...),
		Cells:     make([][]string, len(g.Cells)),
	}
	for i, row := range g.Cells {
		c.Cells[i] = append([]string(nil), row...)
	}
	return c
}

// FormatCell renders a cell or value as text. Nil renders as the empty
// string; everything else uses its default format.
func FormatCell(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// snapshot validates data and converts it to a Grid plus its CSV encoding.
func snapshot(data Tabular) (*Grid, []byte, error) {
	if isNil(data) {
		return nil, nil, errors.New("no tabular data")
	}

	if v, ok := data.(Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, nil, err
		}
	}

	columns := data.Columns()
	if len(columns) == 0 {
		return nil, nil, errors.New("table has no columns")
	}

	grid := &Grid{
		Columns: append([]string(nil), columns...),
	}
	if n, ok := data.(IndexNamer); ok {
		grid.IndexName = n.IndexName()
	}

	rows := data.Len()
	if rows < 0 {
		return nil, nil, fmt.Errorf("table reports negative length %d", rows)
	}
	for i := 0; i < rows; i++ {
		cells := make([]string, len(columns))
		for j := range columns {
			cells[j] = FormatCell(data.Cell(i, j))
		}
		grid.Labels = append(grid.Labels, data.Label(i))
		grid.Cells = append(grid.Cells, cells)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.WriteAll(grid.Records()); err != nil {
		return nil, nil, fmt.Errorf("failed to encode csv: %w", err)
	}

	return grid, buf.Bytes(), nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
