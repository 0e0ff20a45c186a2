package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dshills/codelens/internal/cache"
	"github.com/dshills/codelens/internal/config"
	"github.com/dshills/codelens/internal/logging"
	"github.com/dshills/codelens/internal/providers"
	"github.com/dshills/codelens/internal/redact"
	"github.com/dshills/codelens/internal/review"
)

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagURL != "" {
		m["generateURL"] = flagURL
	}
	if flagCategoriesFile != "" {
		m["categoriesFile"] = flagCategoriesFile
	}
	if flagLogLevel != "" {
		m["log.level"] = flagLogLevel
	}
	if flagLogFormat != "" {
		m["log.format"] = flagLogFormat
	}
	if flagCache {
		m["cache.enabled"] = "true"
	}
	if flagRedact {
		m["privacy.redactSecrets"] = "true"
	}
	if flagAddr != "" {
		m["server.addr"] = flagAddr
	}
	if flagOut != "" {
		m["batch.output"] = flagOut
	}
	if flagFormat != "" {
		m["batch.format"] = flagFormat
	}
	return m
}

// loadConfig merges every configuration source and validates the result.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(buildOverrides())
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg config.Config) (*slog.Logger, error) {
	return logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
}

func newGenerator(cfg config.Config) *providers.Ollama {
	return providers.NewOllama(cfg.GenerateURL, cfg.Model, providers.WithTimeout(cfg.Timeout()))
}

// newRelay builds the in-process relay with the optional cache and redactor.
func newRelay(cfg config.Config, gen providers.Generator, log *slog.Logger) (*review.Relay, error) {
	cats, err := review.LoadCategories(cfg.CategoriesFile)
	if err != nil {
		return nil, err
	}

	opts := review.Options{
		Categories:  review.CategoryText(cfg.ReviewCategories, cats),
		Temperature: cfg.SamplingTemperature(),
		MaxTokens:   cfg.MaxTokens,
		Logger:      log,
	}
	c, err := cache.FromConfig(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	if c.Enabled() {
		opts.Cache = c
		log.Debug("response cache enabled", "dir", c.Dir())
	}
	if cfg.Privacy.RedactSecrets {
		opts.Redactor = redact.New(cfg.Privacy.RedactPaths)
	}
	return review.NewRelay(gen, opts), nil
}

func splitComma(s string) []string {
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
