// Package includes maintains the master include file of a publication.
//
// The master include file lives in the author's document directory and
// holds one include directive per source that has ever transferred an
// export to the publication, in the order the sources first appeared. The
// directive syntax comes from the publication's format.Dialect: \input{...}
// lines for LaTeX, bare relative paths for Markdown.
//
// The file is fully derived data. Ensure appends a directive for a newly
// seen definitions file and is a no-op otherwise; Rebuild re-derives the
// whole file from the definitions files present on disk.
package includes
