package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kallysto/kallysto/pkg/cli"
)

// execute runs the root command with args and returns its output. Flag
// values persist between runs, so every call passes the flags it relies on.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommands_LatexWorkflow(t *testing.T) {
	root := t.TempDir()
	pub := []string{"--root", root, "--title", "Report", "--source", "sales", "--format", "latex"}
	run := func(t *testing.T, args ...string) string {
		t.Helper()
		out, err := execute(t, append(append([]string{}, pub...), args...)...)
		if err != nil {
			t.Fatalf("%v failed: %v\n%s", args, err, out)
		}
		return out
	}

	t.Run("init", func(t *testing.T) {
		out := run(t, "init")
		include := filepath.Join(root, "Report", "tex", "kallysto.tex")
		if !strings.Contains(out, include) {
			t.Errorf("init output does not list %s:\n%s", include, out)
		}
		if _, err := os.Stat(include); err != nil {
			t.Errorf("include file not created: %v", err)
		}
	})

	t.Run("export value", func(t *testing.T) {
		out := run(t, "export", "value", "TotalSales", "5876.84")
		if !strings.HasPrefix(out, "Value(TotalSales) uid=") {
			t.Errorf("unexpected output %q", out)
		}
		defs, err := os.ReadFile(filepath.Join(root, "Report", ".kallysto", "defs", "sales", "_definitions.tex"))
		if err != nil {
			t.Fatalf("read definitions: %v", err)
		}
		if !strings.Contains(string(defs), `\renewcommand{\TotalSales}{5876.84}`) {
			t.Errorf("definitions missing value:\n%s", defs)
		}
	})

	t.Run("export table", func(t *testing.T) {
		csvPath := filepath.Join(t.TempDir(), "units.csv")
		if err := os.WriteFile(csvPath, []byte("Rep,Units\nJones,60\nKivell,90\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		out := run(t, "export", "table", "Units", "--csv", csvPath, "--caption", "Units by rep")
		if !strings.HasPrefix(out, "Table(Units) uid=") {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("log query", func(t *testing.T) {
		out := run(t, "log", "query", "--count")
		if strings.TrimSpace(out) != "2" {
			t.Errorf("count = %q, want 2", out)
		}
		out = run(t, "log", "query", "--count=false", "--name", "Units", "--output", "csv")
		if !strings.Contains(out, "Units") || strings.Contains(out, "TotalSales") {
			t.Errorf("filtered csv output:\n%s", out)
		}
	})

	t.Run("includes list", func(t *testing.T) {
		out := run(t, "includes", "list")
		if strings.TrimSpace(out) != "../.kallysto/defs/sales/_definitions.tex" {
			t.Errorf("includes list = %q", out)
		}
	})

	t.Run("prune", func(t *testing.T) {
		stale := filepath.Join(root, "Report", ".kallysto", "data", "sales", "Old.csv")
		if err := os.WriteFile(stale, []byte("x\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		out := run(t, "prune", "--dry-run")
		if !strings.Contains(out, stale) {
			t.Errorf("dry run did not report %s:\n%s", stale, out)
		}
		if _, err := os.Stat(stale); err != nil {
			t.Errorf("dry run removed the file: %v", err)
		}

		run(t, "prune", "--dry-run=false")
		if _, err := os.Stat(stale); !os.IsNotExist(err) {
			t.Errorf("stale file still present: %v", err)
		}
	})

	t.Run("export remove", func(t *testing.T) {
		out := run(t, "export", "remove", "TotalSales")
		if !strings.HasPrefix(out, "removed TotalSales") {
			t.Errorf("unexpected output %q", out)
		}
		defs, err := os.ReadFile(filepath.Join(root, "Report", ".kallysto", "defs", "sales", "_definitions.tex"))
		if err != nil {
			t.Fatalf("read definitions: %v", err)
		}
		if strings.Contains(string(defs), "TotalSales") || !strings.Contains(string(defs), "% Export: Units") {
			t.Errorf("definitions after remove:\n%s", defs)
		}

		if _, err := execute(t, append(append([]string{}, pub...), "export", "remove", "TotalSales")...); err == nil {
			t.Error("removing a missing export should fail")
		}

		out = run(t, "prune", "--dry-run=false")
		if !strings.Contains(out, "TotalSales.txt") {
			t.Errorf("prune did not remove the removed export's side file:\n%s", out)
		}
		if _, err := os.Stat(filepath.Join(root, "Report", ".kallysto", "data", "sales", "Units.csv")); err != nil {
			t.Errorf("live file removed: %v", err)
		}
	})
}

func TestCommands_MarkdownExpand(t *testing.T) {
	root := t.TempDir()
	pub := []string{"--root", root, "--title", "Notes", "--source", "nb", "--format", "markdown"}

	if out, err := execute(t, append(pub, "export", "value", "Answer", "42")...); err != nil {
		t.Fatalf("export failed: %v\n%s", err, out)
	}

	doc := filepath.Join(root, "Notes", "md", "notes.kmd")
	if err := os.WriteFile(doc, []byte("The answer is {Answer}.\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := execute(t, append(pub, "md", "expand", doc)...)
	if err != nil {
		t.Fatalf("md expand failed: %v\n%s", err, out)
	}

	got, err := os.ReadFile(filepath.Join(root, "Notes", "md", "notes.md"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(got) != "The answer is 42.\n" {
		t.Errorf("expanded = %q", got)
	}
}

func TestCommands_MissingTitle(t *testing.T) {
	_, err := execute(t, "--title", "", "--root", t.TempDir(), "includes", "list")
	var cfgErr *cli.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if cli.ExitCode(err) != cli.ExitConfig {
		t.Errorf("exit code = %d, want %d", cli.ExitCode(err), cli.ExitConfig)
	}
}
