// Package markdown expands {Name} references in markdown documents.
//
// Definitions come from the _definitions.kmd files listed in a master
// include file (kallysto.kmd). Each fragment body has the form
// {Name:value}; Expand replaces every {Name} token in the document with
// value. Tokens inside code spans and code blocks are left alone, and
// substituted values are not scanned again, so expansion is a single pass.
//
// Convert reads an .kmd document, expands it and writes the .md file next
// to it. Watcher re-runs Convert whenever the document or a definitions
// file changes.
package markdown
