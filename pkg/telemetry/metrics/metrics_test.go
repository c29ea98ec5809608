package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kallysto/kallysto/pkg/config"
)

func newTestCollector(t *testing.T) *Collector {
	t.Helper()
	return NewCollector(&config.MetricsConfig{Enabled: true}, nil)
}

func TestCollector_RecordTransfer(t *testing.T) {
	collector := newTestCollector(t)

	tests := []struct {
		kind   string
		result string
		calls  int
	}{
		{"Value", ResultSuccess, 3},
		{"Table", ResultDuplicate, 1},
		{"Figure", ResultError, 2},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			for i := 0; i < tt.calls; i++ {
				collector.RecordTransfer(tt.kind, tt.result, 5*time.Millisecond)
			}
			count := testutil.ToFloat64(collector.transferMetrics.transfersTotal.WithLabelValues(tt.kind, tt.result))
			if count != float64(tt.calls) {
				t.Errorf("transfers_total{%s,%s} = %v, want %d", tt.kind, tt.result, count, tt.calls)
			}
		})
	}

	if n := testutil.CollectAndCount(collector.transferMetrics.transferDuration); n != 3 {
		t.Errorf("duration series = %d, want 3", n)
	}
}

func TestCollector_Datastore(t *testing.T) {
	collector := newTestCollector(t)

	collector.RecordBytesWritten("data", 100)
	collector.RecordBytesWritten("data", 20)
	collector.RecordFragmentReplaced()
	collector.RecordIncludeAdded()
	collector.RecordIncludeAdded()
	collector.RecordPruned("figs", 4)
	collector.RecordPruned("data", 0)

	dm := collector.datastoreMetrics
	if got := testutil.ToFloat64(dm.bytesWritten.WithLabelValues("data")); got != 120 {
		t.Errorf("bytes written = %v, want 120", got)
	}
	if got := testutil.ToFloat64(dm.fragmentsReplaced); got != 1 {
		t.Errorf("fragments replaced = %v, want 1", got)
	}
	if got := testutil.ToFloat64(dm.includesAdded); got != 2 {
		t.Errorf("includes added = %v, want 2", got)
	}
	if got := testutil.ToFloat64(dm.pruned.WithLabelValues("figs")); got != 4 {
		t.Errorf("pruned figs = %v, want 4", got)
	}
	if n := testutil.CollectAndCount(dm.pruned); n != 1 {
		t.Errorf("pruned series = %d, want 1", n)
	}
}

func TestCollector_Expansion(t *testing.T) {
	collector := newTestCollector(t)

	collector.RecordExpansion(0)
	collector.RecordExpansion(2)

	mm := collector.markdownMetrics
	if got := testutil.ToFloat64(mm.expansionsTotal.WithLabelValues(ResultSuccess)); got != 1 {
		t.Errorf("successful expansions = %v", got)
	}
	if got := testutil.ToFloat64(mm.expansionsTotal.WithLabelValues(ResultUnresolved)); got != 1 {
		t.Errorf("unresolved expansions = %v", got)
	}
	if got := testutil.ToFloat64(mm.unresolvedTotal); got != 2 {
		t.Errorf("unresolved references = %v", got)
	}
}

func TestCollector_DisabledAndNil(t *testing.T) {
	disabled := NewCollector(&config.MetricsConfig{Enabled: false}, nil)
	disabled.RecordTransfer("Value", ResultSuccess, time.Millisecond)
	if got := testutil.ToFloat64(disabled.transferMetrics.transfersTotal.WithLabelValues("Value", ResultSuccess)); got != 0 {
		t.Errorf("disabled collector recorded %v", got)
	}

	var c *Collector
	c.RecordTransfer("Value", ResultSuccess, time.Millisecond)
	c.RecordExpansion(1)
	if c.Registry() != nil {
		t.Error("nil collector should have no registry")
	}
	if err := c.WriteTextfile("ignored.prom"); err != nil {
		t.Errorf("WriteTextfile() on nil collector = %v", err)
	}
}

func TestCollector_WriteTextfile(t *testing.T) {
	collector := newTestCollector(t)
	collector.RecordTransfer("Table", ResultSuccess, 2*time.Millisecond)

	path := filepath.Join(t.TempDir(), "kallysto.prom")
	if err := collector.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(data), `kallysto_transfers_total{kind="Table",result="success"} 1`) {
		t.Errorf("textfile missing transfer counter:\n%s", data)
	}
}
