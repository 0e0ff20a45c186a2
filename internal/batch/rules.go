package batch

import (
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExcludeDirs are path segments that are never reviewed: version
// control, dependencies, build output, virtual environments, caches, logs and
// the report directory itself.
var DefaultExcludeDirs = []string{
	".git", ".svn", ".hg",
	"node_modules", "bower_components", "vendor",
	"dist", "build", "out", "target",
	"venv", ".venv", "env", ".env",
	"__pycache__", ".pytest_cache", ".mypy_cache", ".tox", ".cache",
	".idea", ".vscode",
	"logs", "log", "coverage", ".next",
	"reports",
}

// DefaultExtensions is the source-extension allow-list.
var DefaultExtensions = []string{
	".py", ".js", ".jsx", ".ts", ".tsx", ".go", ".java", ".kt",
	".c", ".h", ".cpp", ".hpp", ".cc", ".cs", ".rb", ".php",
	".rs", ".swift", ".scala", ".sh", ".sql",
}

// Rules is an immutable exclusion set plus extension allow-list.
type Rules struct {
	excludeDirs map[string]struct{}
	extensions  map[string]struct{}
}

// DefaultRules returns the built-in rules.
func DefaultRules() *Rules {
	return NewRules(nil, nil)
}

// NewRules returns the built-in rules extended with extra directory names
// and extensions. Extensions are matched case-insensitively and may be given
// with or without the leading dot.
func NewRules(extraDirs, extraExts []string) *Rules {
	r := &Rules{
		excludeDirs: make(map[string]struct{}, len(DefaultExcludeDirs)+len(extraDirs)),
		extensions:  make(map[string]struct{}, len(DefaultExtensions)+len(extraExts)),
	}
	for _, d := range append(append([]string(nil), DefaultExcludeDirs...), extraDirs...) {
		d = strings.Trim(strings.TrimSpace(d), `/\`)
		if d != "" {
			r.excludeDirs[d] = struct{}{}
		}
	}
	for _, e := range append(append([]string(nil), DefaultExtensions...), extraExts...) {
		if e = normalizeExt(e); e != "" {
			r.extensions[e] = struct{}{}
		}
	}
	return r
}

func normalizeExt(e string) string {
	e = strings.ToLower(strings.TrimSpace(e))
	if e == "" || e == "." {
		return ""
	}
	if !strings.HasPrefix(e, ".") {
		e = "." + e
	}
	return e
}

// ExcludedDir reports whether a directory with this name is pruned.
func (r *Rules) ExcludedDir(name string) bool {
	_, ok := r.excludeDirs[name]
	return ok
}

// ExcludedPath reports whether any segment of a root-relative path is excluded.
func (r *Rules) ExcludedPath(rel string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(rel), "/") {
		if r.ExcludedDir(seg) {
			return true
		}
	}
	return false
}

// Allowed reports whether the file's extension is in the allow-list.
func (r *Rules) Allowed(path string) bool {
	_, ok := r.extensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// ExcludeDirs returns the exclusion set, sorted.
func (r *Rules) ExcludeDirs() []string {
	return sortedKeys(r.excludeDirs)
}

// Extensions returns the allow-list, sorted.
func (r *Rules) Extensions() []string {
	return sortedKeys(r.extensions)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
