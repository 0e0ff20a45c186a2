package review

import (
	"strings"
)

// DefaultCategories is used when no review categories are configured.
const DefaultCategories = `- Complexity: long or deeply nested functions, duplicated blocks
- Variables and resources: unused values, leaks, missing cleanup
- Control flow: unreachable code, unbounded loops, error paths
- Data flow: nil or null references, type mismatches, thread safety
- Security: input validation, output encoding, authentication and authorization
- Performance: algorithmic cost, hot paths, I/O patterns
- Style: naming, formatting, documentation, error handling`

const promptTemplate = `# Code Review Request

You are an experienced software engineer performing a thorough review of a single source file.

File: {{fileName}}

## Review Categories
{{categories}}

## Output Format
1. Executive summary with an overall quality score (0-100) and the number of critical issues
2. Issues grouped by category, each with a severity level and its root cause
3. Concrete, implementable recommendations, quantified where possible

Use clear, professional technical language.

## Source
` + "```" + `
{{code}}
` + "```" + `
`

// BuildPrompt substitutes the file name, category text and code into the
// review template. The code is inserted last so that template markers inside
// it are left alone.
func BuildPrompt(fileName, categories, code string) string {
	if strings.TrimSpace(categories) == "" {
		categories = DefaultCategories
	}
	r := strings.NewReplacer(
		"{{fileName}}", fileName,
		"{{categories}}", strings.TrimRight(categories, "\n"),
	)
	head, tail, _ := strings.Cut(r.Replace(promptTemplate), "{{code}}")
	return head + code + tail
}
