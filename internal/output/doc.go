// Package output renders batch review reports.
//
// Two formats are supported:
//   - markdown: one section per reviewed file, the model's text fenced and
//     escaped (default)
//   - json: the full structured report, including run metadata
//
// Use [GetWriter] to obtain a [Writer] for a given format string, then call
// [Writer.Write] with an [io.Writer] and a [*review.Report]. [WriteReport]
// writes to a file path, creating parent directories, and refuses to write an
// empty report.
package output
