package includes

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"

	"github.com/kallysto/kallysto/pkg/format"
)

const (
	includePath = "/pubs/Report/tex/kallysto.tex"
	defsRoot    = "/pubs/Report/.kallysto/defs"
)

func defsFile(source string) string {
	return defsRoot + "/" + source + "/_definitions.tex"
}

func TestEnsure_OneDirectivePerSource(t *testing.T) {
	fs := afero.NewMemMapFs()
	file := Open(fs, includePath, format.LatexDialect())

	transfers := []string{"sales", "sales", "costs", "sales", "costs", "hr"}
	for _, source := range transfers {
		if _, err := file.Ensure(defsFile(source)); err != nil {
			t.Fatalf("Ensure(%s) failed: %v", source, err)
		}
	}

	entries, err := file.Entries()
	if err != nil {
		t.Fatalf("Entries() failed: %v", err)
	}
	want := []string{
		"../.kallysto/defs/sales/_definitions.tex",
		"../.kallysto/defs/costs/_definitions.tex",
		"../.kallysto/defs/hr/_definitions.tex",
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}

	data, _ := afero.ReadFile(fs, includePath)
	wantText := "\\input{../.kallysto/defs/sales/_definitions.tex}\n" +
		"\\input{../.kallysto/defs/costs/_definitions.tex}\n" +
		"\\input{../.kallysto/defs/hr/_definitions.tex}\n"
	if string(data) != wantText {
		t.Errorf("include file =\n%s\nwant\n%s", data, wantText)
	}
}

func TestEnsure_ReportsAddition(t *testing.T) {
	file := Open(afero.NewMemMapFs(), "/pubs/Report/md/kallysto.kmd", format.MarkdownDialect())
	defs := "/pubs/Report/.kallysto/defs/nb/_definitions.kmd"

	added, err := file.Ensure(defs)
	if err != nil || !added {
		t.Fatalf("first Ensure() = %v, %v", added, err)
	}
	added, err = file.Ensure(defs)
	if err != nil || added {
		t.Fatalf("second Ensure() = %v, %v", added, err)
	}
	if got := file.Resolve("../.kallysto/defs/nb/_definitions.kmd"); got != defs {
		t.Errorf("Resolve() = %q, want %q", got, defs)
	}
}

func TestRebuild(t *testing.T) {
	fs := afero.NewMemMapFs()
	file := Open(fs, includePath, format.LatexDialect())

	for _, source := range []string{"zeta", "alpha"} {
		if _, err := file.Ensure(defsFile(source)); err != nil {
			t.Fatalf("Ensure(%s) failed: %v", source, err)
		}
	}

	// zeta and beta exist on disk, alpha was deleted, gamma has no file.
	for _, source := range []string{"zeta", "beta"} {
		_ = afero.WriteFile(fs, defsFile(source), []byte(""), 0o644)
	}
	_ = fs.MkdirAll(defsRoot+"/gamma", 0o755)

	entries, err := file.Rebuild(defsRoot)
	if err != nil {
		t.Fatalf("Rebuild() failed: %v", err)
	}
	want := []string{
		"../.kallysto/defs/zeta/_definitions.tex",
		"../.kallysto/defs/beta/_definitions.tex",
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}

	reread, _ := file.Entries()
	if diff := cmp.Diff(want, reread); diff != "" {
		t.Errorf("file not rewritten (-want +got):\n%s", diff)
	}
}

func TestRebuild_NoDefinitions(t *testing.T) {
	fs := afero.NewMemMapFs()
	file := Open(fs, includePath, format.LatexDialect())

	entries, err := file.Rebuild(defsRoot)
	if err != nil {
		t.Fatalf("Rebuild() failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %v", entries)
	}
	if ok, _ := afero.Exists(fs, includePath); !ok {
		t.Error("include file not created")
	}
}
