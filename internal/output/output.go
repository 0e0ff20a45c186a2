package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dshills/codelens/internal/review"
)

// ErrEmptyReport is returned by WriteReport when no file was reviewed successfully.
var ErrEmptyReport = errors.New("report has no reviews")

// Writer writes a report in a specific format.
type Writer interface {
	Write(w io.Writer, report *review.Report) error
}

// GetWriter returns a writer for the specified format.
func GetWriter(format string) (Writer, error) {
	switch format {
	case "markdown", "md", "":
		return &MarkdownWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteReport writes the report to outPath, or to stdout when outPath is "-".
// An empty report leaves the filesystem untouched.
func WriteReport(report *review.Report, format, outPath string) error {
	if report.Empty() {
		return ErrEmptyReport
	}
	writer, err := GetWriter(format)
	if err != nil {
		return err
	}

	if outPath == "-" || outPath == "" {
		return writer.Write(os.Stdout, report)
	}

	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	if err := writer.Write(f, report); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing output file: %w", err)
	}
	return nil
}
