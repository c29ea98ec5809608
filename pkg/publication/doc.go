// Package publication describes a target document project and its
// on-disk datastore.
//
// A publication is rooted at <root>/<title>/ and shared by every source
// (notebook or script) that exports to it:
//
//	<root>/<title>/
//	    .kallysto/data/<source>/     side files: <name>.csv, <name>.txt
//	    .kallysto/figs/<source>/     images: <name>.<format>
//	    .kallysto/defs/<source>/     _definitions.tex or _definitions.kmd
//	    .kallysto/logs/kallysto.log  append-only audit log
//	    tex/ or md/                  author-owned; holds the master include file
//
// New verifies that the root is writable, applies a fresh start once when
// requested and creates the layout. Ensure is idempotent and may be called
// before every transfer.
package publication
