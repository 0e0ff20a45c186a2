// Package batch walks a repository and sends every eligible source file
// through the review relay, one file at a time.
//
// Eligibility is decided by an immutable [Rules] value: a directory whose name
// is in the exclusion set is pruned, a file with any excluded path segment is
// skipped, and a file whose extension is not in the allow-list is skipped.
// The walk visits entries in lexical order, so the report order is the same
// on every run.
//
// Per-file failures never stop the walk. Each one is printed as a single
// diagnostic line and the file is left out of the report.
package batch
