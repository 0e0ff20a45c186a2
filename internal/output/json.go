package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dshills/codelens/internal/review"
)

// JSONWriter renders the report as indented JSON. Review text is written
// as-is; characters like < and & are not HTML-escaped.
type JSONWriter struct{}

func (j *JSONWriter) Write(w io.Writer, report *review.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encoding JSON report: %w", err)
	}
	return nil
}
