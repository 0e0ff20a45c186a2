package review

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/dshills/codelens/internal/cache"
	"github.com/dshills/codelens/internal/providers"
)

// ResponseCache stores model output by key.
type ResponseCache interface {
	Get(key string) (string, bool)
	Put(key, value string) error
}

// Redactor scrubs code before it leaves the process.
type Redactor interface {
	Content(content, path string) string
}

// Options configures a Relay. The zero value is usable.
type Options struct {
	Categories  string
	Temperature float64
	MaxTokens   int
	Cache       ResponseCache
	Redactor    Redactor
	Logger      *slog.Logger
}

// Relay forwards a single file to the generation service.
type Relay struct {
	gen  providers.Generator
	opts Options
	log  *slog.Logger
}

// NewRelay creates a Relay around gen.
func NewRelay(gen providers.Generator, opts Options) *Relay {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Relay{gen: gen, opts: opts, log: log}
}

// Model returns the name of the model reviews are sent to.
func (r *Relay) Model() string {
	return r.gen.Model()
}

// Review builds the prompt for req and makes one outbound call.
func (r *Relay) Review(ctx context.Context, req Request) (res Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = Internal(fmt.Errorf("panic: %v", p), debug.Stack())
			res = Result{}
		}
	}()

	if strings.TrimSpace(req.FileName) == "" {
		return Result{}, InvalidInput("fileName is required")
	}
	if req.Code == "" {
		return Result{}, InvalidInput("code is required")
	}

	code := req.Code
	if r.opts.Redactor != nil {
		code = r.opts.Redactor.Content(code, req.FileName)
	}
	prompt := BuildPrompt(req.FileName, r.opts.Categories, code)

	key := cache.BuildKey(r.gen.Model(), prompt)
	if r.opts.Cache != nil {
		if text, ok := r.opts.Cache.Get(key); ok {
			r.log.Debug("cache hit", "file", req.FileName)
			return NewResult(req.FileName, text), nil
		}
	}

	start := time.Now()
	resp, err := r.gen.Generate(ctx, providers.GenerateRequest{
		Prompt:      prompt,
		Temperature: r.opts.Temperature,
		MaxTokens:   r.opts.MaxTokens,
	})
	if err != nil {
		return Result{}, Upstream(err)
	}
	r.log.Debug("review generated",
		"file", req.FileName,
		"model", r.gen.Model(),
		"prompt_eval_count", resp.PromptTokens,
		"eval_count", resp.EvalTokens,
		"elapsed", time.Since(start),
	)

	if r.opts.Cache != nil {
		if err := r.opts.Cache.Put(key, resp.Text); err != nil {
			r.log.Warn("cache write failed", "error", err)
		}
	}

	return NewResult(req.FileName, resp.Text), nil
}
