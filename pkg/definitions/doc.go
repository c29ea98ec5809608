// Package definitions reads and rewrites per-source definitions files.
//
// A definitions file is an ordered sequence of fragments. Each fragment is
// the rendered text for one export and starts with a provenance header of
// "% Key: value" comment lines, the first of which is always
//
//	% Export: <name>
//
// That marker line delimits fragments, so the package never needs to know
// whether the body is LaTeX, Markdown or anything else. A file holds at most
// one live fragment per name: Upsert replaces an existing fragment in place,
// keeping its position, or appends a new one at the end.
package definitions
