package transfer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/afero"

	"github.com/kallysto/kallysto/pkg/audit"
	"github.com/kallysto/kallysto/pkg/clock"
	"github.com/kallysto/kallysto/pkg/config"
	"github.com/kallysto/kallysto/pkg/definitions"
	"github.com/kallysto/kallysto/pkg/export"
	"github.com/kallysto/kallysto/pkg/publication"
	"github.com/kallysto/kallysto/pkg/telemetry/metrics"
)

var frozen = time.Date(2017, 10, 26, 9, 30, 0, 0, time.UTC)

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	clk, err := clock.New(nil, clock.WithSource(func() time.Time { return frozen }))
	if err != nil {
		t.Fatalf("clock.New() failed: %v", err)
	}
	e, err := New(append([]Option{WithClock(clk)}, opts...)...)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return e
}

func newPublication(t *testing.T, fs afero.Fs, source, formatName string, overwrite bool) *publication.Publication {
	t.Helper()
	p, err := publication.New(fs, publication.Options{
		Title:     "Report",
		Source:    source,
		Root:      "/pubs",
		Format:    formatName,
		Overwrite: overwrite,
	})
	if err != nil {
		t.Fatalf("publication.New() failed: %v", err)
	}
	return p
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func logEntries(t *testing.T, pub *publication.Publication) []*audit.Entry {
	t.Helper()
	entries, err := audit.OpenFileLog(pub.FS(), pub.Layout().LogFile).Read()
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	return entries
}

func salesByRep(t *testing.T, rows map[string]int) *export.Export {
	t.Helper()
	frame := export.NewFrame("Rep", "Units")
	for _, rep := range []string{"Jones", "Kivell", "Jardine"} {
		if n, ok := rows[rep]; ok {
			frame.AddRow(rep, n)
		}
	}
	x, err := export.NewTable("SalesByRepTable", frame, "Sales by rep")
	if err != nil {
		t.Fatalf("NewTable() failed: %v", err)
	}
	return x
}

func TestTransfer_ValueLatex(t *testing.T) {
	fs := afero.NewMemMapFs()
	pub := newPublication(t, fs, "sales", "latex", true)
	engine := newEngine(t)

	x, err := export.NewValue("TotalSales", 5876.84)
	if err != nil {
		t.Fatalf("NewValue() failed: %v", err)
	}
	if err := engine.Transfer(context.Background(), x, pub); err != nil {
		t.Fatalf("Transfer() failed: %v", err)
	}

	frag, ok, err := pub.Definitions().Lookup("TotalSales")
	if err != nil || !ok {
		t.Fatalf("Lookup() = %v, %v", ok, err)
	}
	want := "\\providecommand{\\TotalSales}{dummy}\n\\renewcommand{\\TotalSales}{5876.84}"
	if diff := cmp.Diff(want, frag.Body()); diff != "" {
		t.Errorf("fragment body mismatch (-want +got):\n%s", diff)
	}
	if got := frag.Header(definitions.KeyDataFile); got != "../.kallysto/data/sales/TotalSales.txt" {
		t.Errorf("data file header = %q", got)
	}
	if got := frag.Header(definitions.KeyExported); got != "09:30:00 10/26/17 UTC" {
		t.Errorf("exported header = %q", got)
	}
	if got := readFile(t, fs, pub.Layout().DataFile("TotalSales", "txt")); got != "5876.84" {
		t.Errorf("side file = %q", got)
	}

	include := readFile(t, fs, pub.Layout().IncludeFile)
	if !strings.Contains(include, `\input{../.kallysto/defs/sales/_definitions.tex}`) {
		t.Errorf("include file missing directive:\n%s", include)
	}
}

func TestTransfer_ValueMarkdown(t *testing.T) {
	fs := afero.NewMemMapFs()
	pub := newPublication(t, fs, "sales", "markdown", true)
	engine := newEngine(t)

	x, _ := export.NewValue("TotalSales", 5876.84)
	if err := engine.Transfer(context.Background(), x, pub); err != nil {
		t.Fatalf("Transfer() failed: %v", err)
	}

	frag, _, err := pub.Definitions().Lookup("TotalSales")
	if err != nil {
		t.Fatalf("Lookup() failed: %v", err)
	}
	if got := frag.Body(); got != "{TotalSales:5876.84}" {
		t.Errorf("body = %q", got)
	}
}

func TestTransfer_TwiceKeepsOneFragment(t *testing.T) {
	fs := afero.NewMemMapFs()
	pub := newPublication(t, fs, "sales", "latex", true)
	engine := newEngine(t)
	ctx := context.Background()

	first := salesByRep(t, map[string]int{"Jones": 95, "Kivell": 50})
	second := salesByRep(t, map[string]int{"Jones": 60, "Kivell": 90, "Jardine": 29})

	for _, x := range []*export.Export{first, second} {
		if err := engine.Transfer(ctx, x, pub); err != nil {
			t.Fatalf("Transfer() failed: %v", err)
		}
	}

	frags, err := pub.Definitions().Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if len(frags) != 1 {
		t.Fatalf("got %d fragments, want 1", len(frags))
	}
	if !strings.Contains(frags[0].Text, "Jardine") {
		t.Errorf("fragment does not reflect the second dataset:\n%s", frags[0].Text)
	}

	csv := readFile(t, fs, pub.Layout().DataFile("SalesByRepTable", "csv"))
	if diff := cmp.Diff("Rep,Units\nJones,60\nKivell,90\nJardine,29\n", csv); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}

	entries := logEntries(t, pub)
	if len(entries) != 2 {
		t.Fatalf("got %d log lines, want 2", len(entries))
	}
	if entries[1].UID <= entries[0].UID {
		t.Errorf("uids not increasing: %s then %s", entries[0].UID, entries[1].UID)
	}
	if frags[0].Header(definitions.KeyUID) != entries[1].UID.String() {
		t.Errorf("fragment uid %q, want %s", frags[0].Header(definitions.KeyUID), entries[1].UID)
	}
}

func TestTransfer_OverwriteDisabled(t *testing.T) {
	fs := afero.NewMemMapFs()
	pub := newPublication(t, fs, "sales", "latex", false)
	engine := newEngine(t)
	ctx := context.Background()

	first, _ := export.NewValue("TotalSales", 100)
	if err := engine.Transfer(ctx, first, pub); err != nil {
		t.Fatalf("Transfer() failed: %v", err)
	}
	defsBefore := readFile(t, fs, pub.Layout().DefinitionsFile)

	second, _ := export.NewValue("TotalSales", 200)
	err := engine.Transfer(ctx, second, pub)
	var dup *definitions.DuplicateNameError
	if !errors.As(err, &dup) {
		t.Fatalf("Transfer() error = %v, want DuplicateNameError", err)
	}

	if got := readFile(t, fs, pub.Layout().DataFile("TotalSales", "txt")); got != "100" {
		t.Errorf("side file rewritten: %q", got)
	}
	if got := readFile(t, fs, pub.Layout().DefinitionsFile); got != defsBefore {
		t.Errorf("definitions file changed:\n%s", got)
	}
	if n := len(logEntries(t, pub)); n != 1 {
		t.Errorf("got %d log lines, want 1", n)
	}
}

func TestTransfer_KindMismatch(t *testing.T) {
	fs := afero.NewMemMapFs()
	pub := newPublication(t, fs, "sales", "latex", true)
	engine := newEngine(t)
	ctx := context.Background()

	value, _ := export.NewValue("SalesByRepTable", 1)
	if err := engine.Transfer(ctx, value, pub); err != nil {
		t.Fatalf("Transfer() failed: %v", err)
	}

	err := engine.Transfer(ctx, salesByRep(t, map[string]int{"Jones": 1}), pub)
	var dup *definitions.DuplicateNameError
	if !errors.As(err, &dup) {
		t.Fatalf("Transfer() error = %v, want DuplicateNameError", err)
	}
	if dup.ExistingKind != "Value" || dup.Kind != "Table" {
		t.Errorf("kinds = %s/%s", dup.ExistingKind, dup.Kind)
	}
	if ok, _ := afero.Exists(fs, pub.Layout().DataFile("SalesByRepTable", "csv")); ok {
		t.Error("csv side file written for rejected transfer")
	}
}

func TestTransfer_SourcesShareIncludeFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	engine := newEngine(t)
	ctx := context.Background()

	sources := []string{"sales", "costs", "forecast"}
	for i := 0; i < 3; i++ {
		for _, source := range sources {
			pub := newPublication(t, fs, source, "latex", true)
			x, _ := export.NewValue("Total", i)
			if err := engine.Transfer(ctx, x, pub); err != nil {
				t.Fatalf("Transfer(%s) failed: %v", source, err)
			}
		}
	}

	pub := newPublication(t, fs, "sales", "latex", true)
	entries, err := pub.Includes().Entries()
	if err != nil {
		t.Fatalf("Entries() failed: %v", err)
	}
	want := []string{
		"../.kallysto/defs/sales/_definitions.tex",
		"../.kallysto/defs/costs/_definitions.tex",
		"../.kallysto/defs/forecast/_definitions.tex",
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("include entries mismatch (-want +got):\n%s", diff)
	}
	if n := len(logEntries(t, pub)); n != 9 {
		t.Errorf("got %d log lines, want 9", n)
	}
}

func TestTransfer_Figure(t *testing.T) {
	fs := afero.NewMemMapFs()
	pub := newPublication(t, fs, "sales", "latex", true)
	engine := newEngine(t)

	frame := export.NewFrame("Month", "Units").AddRow("Jan", 10).AddRow("Feb", 12)
	img := export.Encoded{Format: "pdf", Data: []byte("%PDF-1.4 fake")}
	x, err := export.NewFigure("SalesChart", img, frame, "Monthly sales", "pdf")
	if err != nil {
		t.Fatalf("NewFigure() failed: %v", err)
	}

	entry, err := engine.Record(context.Background(), x, pub)
	if err != nil {
		t.Fatalf("Record() failed: %v", err)
	}

	layout := pub.Layout()
	if got := readFile(t, fs, layout.ImageFile("SalesChart", "pdf")); got != "%PDF-1.4 fake" {
		t.Errorf("image = %q", got)
	}
	if ok, _ := afero.Exists(fs, layout.DataFile("SalesChart", "csv")); !ok {
		t.Error("figure data csv not written")
	}
	if entry.ImageFile != "../.kallysto/figs/sales/SalesChart.pdf" {
		t.Errorf("entry image file = %q", entry.ImageFile)
	}

	frag, _, _ := pub.Definitions().Lookup("SalesChart")
	if !strings.Contains(frag.Body(), `\includegraphics[width=0.8\textwidth]{../.kallysto/figs/sales/SalesChart.pdf}`) {
		t.Errorf("figure body:\n%s", frag.Body())
	}
}

func TestTransfer_LedgerAndMetrics(t *testing.T) {
	fs := afero.NewMemMapFs()
	pub := newPublication(t, fs, "sales", "latex", false)
	ledger := audit.NewMemoryStore()
	collector := metrics.NewCollector(&config.MetricsConfig{Enabled: true}, nil)
	engine := newEngine(t, WithLedger(ledger), WithMetrics(collector))
	ctx := context.Background()

	x, _ := export.NewValue("TotalSales", 1)
	if err := engine.Transfer(ctx, x, pub); err != nil {
		t.Fatalf("Transfer() failed: %v", err)
	}
	_ = engine.Transfer(ctx, x, pub)

	count, err := ledger.Count(ctx, &audit.Query{Name: "TotalSales"})
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if count != 1 {
		t.Errorf("ledger count = %d, want 1", count)
	}

	expected := `
# HELP kallysto_transfers_total Total number of export transfers
# TYPE kallysto_transfers_total counter
kallysto_transfers_total{kind="Value",result="duplicate"} 1
kallysto_transfers_total{kind="Value",result="success"} 1
`
	if err := testutil.GatherAndCompare(collector.Registry(), strings.NewReader(expected), "kallysto_transfers_total"); err != nil {
		t.Error(err)
	}
}

func TestTransfer_NilArguments(t *testing.T) {
	engine := newEngine(t)
	if err := engine.Transfer(context.Background(), nil, nil); err == nil {
		t.Error("expected error for nil export")
	}
}

func TestTransfer_LatexNameRejectedBeforeWrite(t *testing.T) {
	fs := afero.NewMemMapFs()
	pub := newPublication(t, fs, "sales", "latex", true)

	x, err := export.NewValue("Q1Sales", 42)
	if err != nil {
		t.Fatalf("NewValue() failed: %v", err)
	}
	err = newEngine(t).Transfer(context.Background(), x, pub)
	var nameErr *export.InvalidNameError
	if !errors.As(err, &nameErr) {
		t.Fatalf("Transfer() error = %v, want InvalidNameError", err)
	}

	if ok, _ := afero.Exists(fs, pub.Layout().DataFile("Q1Sales", "txt")); ok {
		t.Error("side file written for a rejected export")
	}
	if got := readFile(t, fs, pub.Layout().DefinitionsFile); got != "" {
		t.Errorf("definitions file changed:\n%s", got)
	}
	if n := len(logEntries(t, pub)); n != 0 {
		t.Errorf("got %d log lines, want 0", n)
	}
}

func TestTransfer_ValueWithMarkerLine(t *testing.T) {
	fs := afero.NewMemMapFs()
	pub := newPublication(t, fs, "sales", "latex", true)
	engine := newEngine(t)
	ctx := context.Background()

	note, _ := export.NewValue("Note", "line one\n% Export: Other")
	if err := engine.Transfer(ctx, note, pub); err != nil {
		t.Fatalf("Transfer() failed: %v", err)
	}
	total, _ := export.NewValue("TotalSales", 1)
	if err := engine.Transfer(ctx, total, pub); err != nil {
		t.Fatalf("Transfer() failed: %v", err)
	}

	frags, err := pub.Definitions().Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	var got []string
	for _, f := range frags {
		got = append(got, f.Name)
	}
	if diff := cmp.Diff([]string{"Note", "TotalSales"}, got); diff != "" {
		t.Errorf("fragments mismatch (-want +got):\n%s", diff)
	}
	if data := readFile(t, fs, pub.Layout().DataFile("Note", "txt")); data != "line one\n% Export: Other" {
		t.Errorf("side file = %q", data)
	}
}

// failingStore rejects every write.
type failingStore struct {
	*audit.MemoryStore
}

func (failingStore) Store(context.Context, *audit.Entry) error {
	return errors.New("database is locked")
}

func TestTransfer_LedgerFailureKeepsTransfer(t *testing.T) {
	fs := afero.NewMemMapFs()
	pub := newPublication(t, fs, "sales", "latex", true)
	engine := newEngine(t, WithLedger(failingStore{audit.NewMemoryStore()}))

	x, _ := export.NewValue("TotalSales", 1)
	if err := engine.Transfer(context.Background(), x, pub); err != nil {
		t.Fatalf("Transfer() failed: %v", err)
	}

	if n := len(logEntries(t, pub)); n != 1 {
		t.Errorf("got %d log lines, want 1", n)
	}
	entries, err := pub.Includes().Entries()
	if err != nil {
		t.Fatalf("Entries() failed: %v", err)
	}
	if diff := cmp.Diff([]string{"../.kallysto/defs/sales/_definitions.tex"}, entries); diff != "" {
		t.Errorf("include entries mismatch (-want +got):\n%s", diff)
	}
}
