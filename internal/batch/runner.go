package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dshills/codelens/internal/gitctx"
	"github.com/dshills/codelens/internal/review"
)

// Reviewer is the relay contract. Both the in-process relay and the HTTP
// client satisfy it.
type Reviewer interface {
	Review(ctx context.Context, req review.Request) (review.Result, error)
}

// ErrNotText is reported for files that are not valid UTF-8.
var ErrNotText = errors.New("file is not valid UTF-8 text")

// Options configures a Runner.
type Options struct {
	// Diagnostics receives one line per failed file. Defaults to stdout.
	Diagnostics io.Writer
	Logger      *slog.Logger
	Model       string
	Version     string
}

// Runner performs a sequential batch review.
type Runner struct {
	reviewer Reviewer
	rules    *Rules
	opts     Options
	log      *slog.Logger
}

// NewRunner creates a Runner. A nil rules value selects DefaultRules.
func NewRunner(reviewer Reviewer, rules *Rules, opts Options) *Runner {
	if rules == nil {
		rules = DefaultRules()
	}
	if opts.Diagnostics == nil {
		opts.Diagnostics = os.Stdout
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{reviewer: reviewer, rules: rules, opts: opts, log: log}
}

// Run walks root and returns the report of successful reviews. Per-file
// failures are printed and dropped; only a failure to walk root itself or a
// cancelled context is returned as an error.
func (r *Runner) Run(ctx context.Context, root string) (*review.Report, error) {
	start := time.Now()

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("reading root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", root)
	}

	report := &review.Report{
		Tool:        "codelens",
		Version:     r.opts.Version,
		RunID:       uuid.NewString(),
		Model:       r.opts.Model,
		GeneratedAt: start.UTC(),
		Repo:        review.RepoInfo{Root: abs},
	}
	if meta, err := gitctx.GetRepoMeta(ctx, abs); err == nil {
		report.Repo.Head = meta.Head
		report.Repo.Branch = meta.Branch
	}

	var llm time.Duration
	visit := func(rel, path string) error {
		data, err := os.ReadFile(path)
		if err != nil {
			r.fail(report, rel, err)
			return nil
		}
		if !utf8.Valid(data) {
			r.fail(report, rel, ErrNotText)
			return nil
		}

		t := time.Now()
		res, err := r.reviewer.Review(ctx, review.Request{Code: string(data), FileName: rel})
		llm += time.Since(t)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.fail(report, rel, err)
			return nil
		}
		report.Add(res)
		r.log.Info("reviewed", "file", rel, "elapsed", time.Since(t).Round(time.Millisecond))
		return nil
	}
	onErr := func(path string, err error) {
		r.fail(report, path, err)
	}

	stats, err := Walk(ctx, abs, r.rules, visit, onErr)
	report.Summary.Visited = stats.Visited
	report.Summary.Skipped = stats.Skipped
	report.Timing = review.Timing{LLMMs: llm.Milliseconds(), TotalMs: time.Since(start).Milliseconds()}
	if err != nil {
		return report, fmt.Errorf("walking %s: %w", root, err)
	}
	return report, nil
}

func (r *Runner) fail(report *review.Report, rel string, err error) {
	report.Summary.Failed++
	fmt.Fprintf(r.opts.Diagnostics, "Error reviewing %s: %v\n", rel, err)
	r.log.Debug("review failed", "file", rel, "kind", review.KindOf(err).String(), "error", err)
}
