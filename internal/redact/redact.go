package redact

import (
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

const placeholder = "[REDACTED]"

// pathNotice replaces the whole content of a file matched by the path policy.
const pathNotice = placeholder + " (file content redacted by path policy)\n"

type rule struct {
	name string
	re   *regexp.Regexp
}

// rules are regex heuristics for secrets that commonly end up in source code.
// Order matters: specific token shapes run before the generic assignments.
var rules = []rule{
	{"private-key", regexp.MustCompile(`-----BEGIN\s+(RSA\s+|EC\s+|OPENSSH\s+)?PRIVATE KEY-----`)},
	{"aws-access-key", regexp.MustCompile(`AKIA[0-9A-Z]{16}`)},
	{"aws-secret-key", regexp.MustCompile(`(?i)(aws[_-]?secret[_-]?access[_-]?key)\s*[:=]\s*["']?([A-Za-z0-9/+=]{40})["']?`)},
	{"github-token", regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`)},
	{"slack-token", regexp.MustCompile(`xox[bporas]-[A-Za-z0-9-]{10,}`)},
	{"llm-api-key", regexp.MustCompile(`sk-(ant-)?[A-Za-z0-9_-]{20,}`)},
	{"jwt", regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`)},
	{"bearer", regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`)},
	{"connection-string", regexp.MustCompile(`(?i)\b(postgres(ql)?|mysql|mongodb(\+srv)?|redis|amqp)://[^:/\s]+:[^@\s]+@`)},
	{"api-key", regexp.MustCompile(`(?i)(api[_-]?key|apikey|api[_-]?secret)\s*[:=]\s*["']?([A-Za-z0-9/+=_-]{20,})["']?`)},
	{"hex-secret", regexp.MustCompile(`(?i)(key|secret|token)\s*[:=]\s*["']?[0-9a-f]{32,}["']?`)},
	{"assignment", regexp.MustCompile(`(?i)(secret|token|password|passwd|credential)\s*[:=]\s*["']([^"']{8,})["']`)},
}

// Scan replaces detected secrets in text and returns the names of the rules
// that fired, in rule order.
func Scan(text string) (string, []string) {
	var fired []string
	for _, r := range rules {
		if !r.re.MatchString(text) {
			continue
		}
		text = r.re.ReplaceAllLiteralString(text, placeholder)
		fired = append(fired, r.name)
	}
	return text, fired
}

// Secrets replaces detected secrets in text with [REDACTED].
func Secrets(text string) string {
	out, _ := Scan(text)
	return out
}

// MatchPath reports whether p matches any of patterns. Paths are compared
// in slash form; a leading "**/" matches at any depth.
func MatchPath(p string, patterns []string) bool {
	p = filepath.ToSlash(p)
	for _, pattern := range patterns {
		if matchGlob(pattern, p) {
			return true
		}
	}
	return false
}

func matchGlob(pattern, p string) bool {
	if ok, err := path.Match(pattern, p); err == nil && ok {
		return true
	}
	rest, deep := strings.CutPrefix(pattern, "**/")
	if !deep {
		return false
	}
	segs := strings.Split(p, "/")
	for i := range segs {
		if ok, err := path.Match(rest, strings.Join(segs[i:], "/")); err == nil && ok {
			return true
		}
	}
	return false
}

// Redactor applies secret and path redaction with a fixed path policy.
type Redactor struct {
	paths []string
}

// New creates a Redactor. Files matching any of paths are blanked entirely.
func New(paths []string) *Redactor {
	return &Redactor{paths: append([]string(nil), paths...)}
}

// Content redacts a single file. p is the path the file is reported under.
func (r *Redactor) Content(content, p string) string {
	if MatchPath(p, r.paths) {
		return pathNotice
	}
	return Secrets(content)
}
