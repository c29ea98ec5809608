package publication

import (
	"path/filepath"

	"github.com/kallysto/kallysto/pkg/format"
)

const (
	// StoreDir is the datastore directory under the publication root.
	StoreDir = ".kallysto"

	// LogFileName is the audit log file name.
	LogFileName = "kallysto.log"
)

// Layout is the set of paths of one source within a publication.
type Layout struct {
	Root            string // <root>/<title>
	Store           string // <root>/<title>/.kallysto
	DataDir         string // per-source side files
	FigsDir         string // per-source images
	DefsDir         string // per-source definitions directory
	DefsRoot        string // parent of every source's DefsDir
	LogDir          string
	LogFile         string
	DocDir          string // author-owned document directory
	IncludeFile     string
	DefinitionsFile string
}

// NewLayout computes the layout for source in publication title under root.
func NewLayout(root, title, source string, dialect format.Dialect) Layout {
	pubRoot := filepath.Join(root, title)
	store := filepath.Join(pubRoot, StoreDir)
	defsRoot := filepath.Join(store, "defs")
	docDir := filepath.Join(pubRoot, dialect.SourceDir)

	return Layout{
		Root:            pubRoot,
		Store:           store,
		DataDir:         filepath.Join(store, "data", source),
		FigsDir:         filepath.Join(store, "figs", source),
		DefsDir:         filepath.Join(defsRoot, source),
		DefsRoot:        defsRoot,
		LogDir:          filepath.Join(store, "logs"),
		LogFile:         filepath.Join(store, "logs", LogFileName),
		DocDir:          docDir,
		IncludeFile:     filepath.Join(docDir, dialect.IncludeFile),
		DefinitionsFile: filepath.Join(defsRoot, source, dialect.DefinitionsFile),
	}
}

// DataFile returns the side file path for name with the given extension.
func (l Layout) DataFile(name, ext string) string {
	return filepath.Join(l.DataDir, name+"."+ext)
}

// ImageFile returns the image path for name in the given format.
func (l Layout) ImageFile(name, format string) string {
	return filepath.Join(l.FigsDir, name+"."+format)
}

// Rel returns path relative to the document directory, slash-separated, as
// fragments and include directives reference it.
func (l Layout) Rel(path string) string {
	if path == "" {
		return ""
	}
	rel, err := filepath.Rel(l.DocDir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// dirs returns the directories Ensure creates.
func (l Layout) dirs() []string {
	return []string{l.DataDir, l.FigsDir, l.DefsDir, l.LogDir, l.DocDir}
}
