package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/dshills/codelens/internal/review"
)

// ReportTitle is the H1 heading of a markdown report.
const ReportTitle = "Code Review Report"

// MarkdownWriter outputs one section per reviewed file.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, report *review.Report) error {
	md := markdown.NewMarkdown(w)

	md.H1(ReportTitle)
	md.PlainText("")
	md.PlainTextf("Files reviewed: %d", len(report.Reviews))
	if report.Model != "" {
		md.PlainText("")
		md.PlainTextf("Model: `%s`", report.Model)
	}
	md.PlainText("")

	for _, r := range report.Reviews {
		md.H2(r.FileName)
		md.PlainText("")
		writeFenced(md, Escape(r.Text()))
		md.PlainText("")
	}

	if err := md.Build(); err != nil {
		return fmt.Errorf("writing markdown: %w", err)
	}
	return nil
}

// writeFenced emits text in a code block. The fence grows when the text
// itself contains a run of backticks.
func writeFenced(md *markdown.Markdown, text string) {
	n := longestRun(text, '`')
	if n < 3 {
		md.CodeBlocks(markdown.SyntaxHighlightText, text)
		return
	}
	fence := strings.Repeat("`", n+1)
	md.PlainText(fence + string(markdown.SyntaxHighlightText))
	md.PlainText(text)
	md.PlainText(fence)
}

func longestRun(s string, c byte) int {
	best, cur := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			cur++
			if cur > best {
				best = cur
			}
			continue
		}
		cur = 0
	}
	return best
}

const escapable = "|*_"

// Escape backslash-escapes |, * and _. Characters already preceded by a
// backslash are left alone, so Escape(Escape(s)) == Escape(s).
func Escape(s string) string {
	if !strings.ContainsAny(s, escapable) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + len(s)/8)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if strings.IndexByte(escapable, c) >= 0 && (i == 0 || s[i-1] != '\\') {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}
