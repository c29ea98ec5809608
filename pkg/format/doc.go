// Package format turns exports into document fragments.
//
// A Formatter has a single method, Render, which receives an export and the
// provenance metadata of one transfer and returns the fragment text that is
// stored in the definitions file. Every fragment starts with the same
// provenance header (see Header); what follows is document specific:
//
//   - Latex wraps the body in a \providecommand / \renewcommand pair so the
//     same name can be defined any number of times without LaTeX complaining.
//   - Markdown emits a {Name:body} block that the markdown preprocessor
//     substitutes for {Name} references.
//
// A Dialect carries the remaining document-language facts that the datastore
// needs: the author directory, the master include file, the definitions file
// name and the include directive syntax.
package format
