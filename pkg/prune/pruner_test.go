package prune

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"

	"github.com/kallysto/kallysto/pkg/export"
	"github.com/kallysto/kallysto/pkg/publication"
	"github.com/kallysto/kallysto/pkg/transfer"
)

func setup(t *testing.T) (afero.Fs, *publication.Publication, []string) {
	t.Helper()
	fs := afero.NewMemMapFs()
	engine, err := transfer.New()
	if err != nil {
		t.Fatalf("transfer.New() failed: %v", err)
	}

	var pubs []*publication.Publication
	for _, source := range []string{"sales", "costs"} {
		pub, err := publication.New(fs, publication.Options{
			Title: "Report", Source: source, Root: "/pubs", Overwrite: true,
		})
		if err != nil {
			t.Fatalf("publication.New() failed: %v", err)
		}
		x, err := export.NewValue("Total", 1)
		if err != nil {
			t.Fatal(err)
		}
		if err := engine.Transfer(context.Background(), x, pub); err != nil {
			t.Fatalf("Transfer() failed: %v", err)
		}
		pubs = append(pubs, pub)
	}

	orphans := []string{
		pubs[0].Layout().DataFile("Renamed", "txt"),
		pubs[1].Layout().ImageFile("Gone", "png"),
	}
	for _, path := range orphans {
		if err := afero.WriteFile(fs, path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return fs, pubs[0], orphans
}

func TestPrune_DryRun(t *testing.T) {
	fs, pub, orphans := setup(t)

	result, err := NewPruner(fs, pub.Layout(), &Config{DryRun: true}, nil).Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}

	want := []string{
		"/pubs/Report/.kallysto/data/sales/Renamed.txt",
		"/pubs/Report/.kallysto/figs/costs/Gone.png",
	}
	if diff := cmp.Diff(want, result.Orphans); diff != "" {
		t.Errorf("orphans mismatch (-want +got):\n%s", diff)
	}
	if result.Removed != 0 || result.Live != 2 {
		t.Errorf("removed=%d live=%d, want 0 and 2", result.Removed, result.Live)
	}
	for _, path := range orphans {
		if ok, _ := afero.Exists(fs, path); !ok {
			t.Errorf("dry run removed %s", path)
		}
	}
}

func TestPrune_Removes(t *testing.T) {
	fs, pub, orphans := setup(t)

	result, err := NewPruner(fs, pub.Layout(), nil, nil).Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	if result.Removed != 2 {
		t.Errorf("removed %d, want 2", result.Removed)
	}
	for _, path := range orphans {
		if ok, _ := afero.Exists(fs, path); ok {
			t.Errorf("%s still exists", path)
		}
	}
	for _, source := range []string{"sales", "costs"} {
		live := publication.NewLayout("/pubs", "Report", source, pub.Dialect()).DataFile("Total", "txt")
		if ok, _ := afero.Exists(fs, live); !ok {
			t.Errorf("live file %s removed", live)
		}
	}
}

func TestPrune_EmptyPublication(t *testing.T) {
	fs := afero.NewMemMapFs()
	pub, err := publication.New(fs, publication.Options{Title: "Empty", Source: "nb", Root: "/pubs"})
	if err != nil {
		t.Fatalf("publication.New() failed: %v", err)
	}
	result, err := NewPruner(fs, pub.Layout(), nil, nil).Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	if len(result.Orphans) != 0 || result.Live != 0 {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestPrune_CancelledContext(t *testing.T) {
	fs, pub, _ := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewPruner(fs, pub.Layout(), nil, nil).Prune(ctx); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestPrune_MixedFormats(t *testing.T) {
	fs := afero.NewMemMapFs()
	engine, err := transfer.New()
	if err != nil {
		t.Fatalf("transfer.New() failed: %v", err)
	}

	sources := []struct{ source, format, name string }{
		{"notes", "markdown", "TotalSales"},
		{"sales", "latex", "Units"},
	}
	var live []string
	var latex *publication.Publication
	for _, s := range sources {
		pub, err := publication.New(fs, publication.Options{
			Title: "Report", Source: s.source, Root: "/pubs", Format: s.format, Overwrite: true,
		})
		if err != nil {
			t.Fatalf("publication.New() failed: %v", err)
		}
		x, _ := export.NewValue(s.name, 1)
		if err := engine.Transfer(context.Background(), x, pub); err != nil {
			t.Fatalf("Transfer() failed: %v", err)
		}
		live = append(live, pub.Layout().DataFile(s.name, "txt"))
		if s.format == "latex" {
			latex = pub
		}
	}

	result, err := NewPruner(fs, latex.Layout(), nil, nil).Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	if len(result.Orphans) != 0 || result.Live != 2 {
		t.Errorf("orphans=%v live=%d, want none and 2", result.Orphans, result.Live)
	}
	for _, path := range live {
		if ok, _ := afero.Exists(fs, path); !ok {
			t.Errorf("live side file %s removed", path)
		}
	}
}
