package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/dshills/codelens/internal/review"
)

func TestJSONWriter(t *testing.T) {
	report := &review.Report{
		Tool:        "codelens",
		Version:     "1.0",
		RunID:       "test-run",
		Model:       "llama3.2:latest",
		GeneratedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Repo:        review.RepoInfo{Root: "/tmp/repo", Head: "abc123", Branch: "main"},
	}
	report.Add(review.NewResult("main.go", "Looks fine."))

	var buf bytes.Buffer
	w := &JSONWriter{}
	if err := w.Write(&buf, report); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	var parsed map[string]any
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if parsed["runId"] != "test-run" {
		t.Errorf("runId = %v", parsed["runId"])
	}
	reviews, ok := parsed["reviews"].([]any)
	if !ok || len(reviews) != 1 {
		t.Fatalf("reviews = %v", parsed["reviews"])
	}
	first := reviews[0].(map[string]any)
	if first["fileName"] != "main.go" {
		t.Errorf("fileName = %v", first["fileName"])
	}
	rr := first["reviewResults"].(map[string]any)
	if rr["comprehensive_review"] != "Looks fine." {
		t.Errorf("comprehensive_review = %v", rr["comprehensive_review"])
	}
	summary := parsed["summary"].(map[string]any)
	if summary["reviewed"] != float64(1) {
		t.Errorf("summary.reviewed = %v", summary["reviewed"])
	}
}

func TestJSONWriter_NoHTMLEscape(t *testing.T) {
	report := &review.Report{Tool: "codelens"}
	report.Add(review.NewResult("a.go", "if a < b && c > d {"))

	var buf bytes.Buffer
	if err := (&JSONWriter{}).Write(&buf, report); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("if a < b && c > d {")) {
		t.Errorf("review text was escaped:\n%s", buf.String())
	}
	if !bytes.HasSuffix(buf.Bytes(), []byte("}\n")) {
		t.Error("output should end with a newline")
	}
}
