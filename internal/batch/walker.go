package batch

import (
	"context"
	"io/fs"
	"path/filepath"
)

// VisitFunc is called for each eligible file with its slash-separated
// root-relative path and its filesystem path.
type VisitFunc func(rel, path string) error

// WalkStats counts what a walk saw.
type WalkStats struct {
	Visited int
	Skipped int
}

// Walk visits every eligible file under root in lexical order. Unreadable
// directories are reported through onErr and skipped. The walk stops early
// when ctx is cancelled or visit returns an error.
func Walk(ctx context.Context, root string, rules *Rules, visit VisitFunc, onErr func(path string, err error)) (WalkStats, error) {
	var stats WalkStats
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == root {
				return err
			}
			if onErr != nil {
				onErr(path, err)
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root && rules.ExcludedDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if !d.Type().IsRegular() || rules.ExcludedPath(rel) || !rules.Allowed(rel) {
			stats.Skipped++
			return nil
		}
		stats.Visited++
		return visit(rel, path)
	})
	return stats, err
}
