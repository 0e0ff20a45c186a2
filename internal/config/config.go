package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AppName is the directory name used under the XDG base directories.
const AppName = "codelens"

// Config represents the codelens configuration.
type Config struct {
	GenerateURL      string        `yaml:"generateURL,omitempty" json:"generateURL"`
	Model            string        `yaml:"model,omitempty" json:"model"`
	ReviewCategories string        `yaml:"reviewCategories,omitempty" json:"reviewCategories,omitempty"`
	CategoriesFile   string        `yaml:"categoriesFile,omitempty" json:"categoriesFile,omitempty"`
	Temperature      *float64      `yaml:"temperature,omitempty" json:"temperature,omitempty"`
	MaxTokens        int           `yaml:"maxTokens,omitempty" json:"maxTokens"`
	TimeoutSeconds   int           `yaml:"timeoutSeconds,omitempty" json:"timeoutSeconds"`
	Server           ServerConfig  `yaml:"server,omitempty" json:"server"`
	Batch            BatchConfig   `yaml:"batch,omitempty" json:"batch"`
	Cache            CacheConfig   `yaml:"cache,omitempty" json:"cache"`
	Privacy          PrivacyConfig `yaml:"privacy,omitempty" json:"privacy"`
	Log              LogConfig     `yaml:"log,omitempty" json:"log"`
}

// DefaultTemperature is the sampling temperature used when none is configured.
const DefaultTemperature = 0.7

// ServerConfig controls the interactive relay service.
type ServerConfig struct {
	Addr           string   `yaml:"addr,omitempty" json:"addr"`
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty" json:"allowedOrigins,omitempty"`
}

// BatchConfig controls the repository walk and the report it produces.
type BatchConfig struct {
	Output      string   `yaml:"output,omitempty" json:"output"`
	Format      string   `yaml:"format,omitempty" json:"format"`
	ExcludeDirs []string `yaml:"excludeDirs,omitempty" json:"excludeDirs,omitempty"`
	Extensions  []string `yaml:"extensions,omitempty" json:"extensions,omitempty"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled       bool   `yaml:"enabled,omitempty" json:"enabled"`
	Dir           string `yaml:"dir,omitempty" json:"dir,omitempty"`
	TTLSeconds    int    `yaml:"ttlSeconds,omitempty" json:"ttlSeconds"`
	MemoryEntries int    `yaml:"memoryEntries,omitempty" json:"memoryEntries"`
}

// PrivacyConfig controls privacy/redaction behavior.
type PrivacyConfig struct {
	RedactSecrets bool     `yaml:"redactSecrets,omitempty" json:"redactSecrets"`
	RedactPaths   []string `yaml:"redactPaths,omitempty" json:"redactPaths,omitempty"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `yaml:"level,omitempty" json:"level"`
	Format string `yaml:"format,omitempty" json:"format"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		GenerateURL:    "http://localhost:11434/api/generate",
		Model:          "llama3.2:latest",
		Temperature:    float64Ptr(DefaultTemperature),
		MaxTokens:      4000,
		TimeoutSeconds: 300,
		Server: ServerConfig{
			Addr:           ":5000",
			AllowedOrigins: []string{"*"},
		},
		Batch: BatchConfig{
			Output: filepath.Join("reports", "code_review.md"),
			Format: "markdown",
		},
		Cache: CacheConfig{
			TTLSeconds:    86400,
			MemoryEntries: 256,
		},
		Privacy: PrivacyConfig{
			RedactPaths: []string{"**/.env", "**/*secrets*"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// SamplingTemperature returns the configured temperature, which may be zero.
func (c Config) SamplingTemperature() float64 {
	if c.Temperature == nil {
		return DefaultTemperature
	}
	return *c.Temperature
}

func float64Ptr(f float64) *float64 { return &f }

// Timeout returns the outbound request timeout.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate reports configuration values the rest of the program cannot work with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.GenerateURL) == "" {
		errs = append(errs, errors.New("generateURL must not be empty"))
	}
	if strings.TrimSpace(c.Model) == "" {
		errs = append(errs, errors.New("model must not be empty"))
	}
	if c.TimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("timeoutSeconds must be positive, got %d", c.TimeoutSeconds))
	}
	switch c.Batch.Format {
	case "markdown", "json":
	default:
		errs = append(errs, fmt.Errorf("unsupported batch format: %q", c.Batch.Format))
	}
	return errors.Join(errs...)
}

// ConfigDir returns the platform-appropriate config directory for codelens.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// CacheDir returns the platform-appropriate cache directory for codelens.
func CacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// LoadFile loads only the values present in the config file. A missing file
// yields an error matching os.ErrNotExist.
func LoadFile() (Config, error) {
	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path := ConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// DotenvFile is the environment file loaded before the process environment is read.
var DotenvFile = ".env"

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags (only non-zero values should be set).
// Variables from DotenvFile never replace ones already present in the environment.
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()

	fileCfg, err := LoadFile()
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, err
	default:
		mergeFile(&cfg, fileCfg)
	}

	if err := godotenv.Load(DotenvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("loading %s: %w", DotenvFile, err)
	}
	if err := mergeEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := mergeOverrides(&cfg, overrides); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func mergeFile(dst *Config, src Config) {
	if src.GenerateURL != "" {
		dst.GenerateURL = src.GenerateURL
	}
	if src.Model != "" {
		dst.Model = src.Model
	}
	if src.ReviewCategories != "" {
		dst.ReviewCategories = src.ReviewCategories
	}
	if src.CategoriesFile != "" {
		dst.CategoriesFile = src.CategoriesFile
	}
	if src.Temperature != nil {
		dst.Temperature = float64Ptr(*src.Temperature)
	}
	if src.MaxTokens > 0 {
		dst.MaxTokens = src.MaxTokens
	}
	if src.TimeoutSeconds > 0 {
		dst.TimeoutSeconds = src.TimeoutSeconds
	}
	if src.Server.Addr != "" {
		dst.Server.Addr = src.Server.Addr
	}
	if len(src.Server.AllowedOrigins) > 0 {
		dst.Server.AllowedOrigins = src.Server.AllowedOrigins
	}
	if src.Batch.Output != "" {
		dst.Batch.Output = src.Batch.Output
	}
	if src.Batch.Format != "" {
		dst.Batch.Format = src.Batch.Format
	}
	if len(src.Batch.ExcludeDirs) > 0 {
		dst.Batch.ExcludeDirs = src.Batch.ExcludeDirs
	}
	if len(src.Batch.Extensions) > 0 {
		dst.Batch.Extensions = src.Batch.Extensions
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}
	if src.Cache.TTLSeconds > 0 {
		dst.Cache.TTLSeconds = src.Cache.TTLSeconds
	}
	if src.Cache.MemoryEntries > 0 {
		dst.Cache.MemoryEntries = src.Cache.MemoryEntries
	}
	// A zero bool in the file is indistinguishable from an unset one, so the
	// file can only switch these on.
	dst.Cache.Enabled = src.Cache.Enabled || dst.Cache.Enabled
	dst.Privacy.RedactSecrets = src.Privacy.RedactSecrets || dst.Privacy.RedactSecrets
	if len(src.Privacy.RedactPaths) > 0 {
		dst.Privacy.RedactPaths = src.Privacy.RedactPaths
	}
	if src.Log.Level != "" {
		dst.Log.Level = src.Log.Level
	}
	if src.Log.Format != "" {
		dst.Log.Format = src.Log.Format
	}
}

func mergeEnv(cfg *Config) error {
	if v := os.Getenv("OLLAMA_API_BASE_URL"); v != "" {
		cfg.GenerateURL = v
	}
	if v := os.Getenv("REVIEW_CATEGORIES"); v != "" {
		cfg.ReviewCategories = v
	}
	if v := os.Getenv("CODELENS_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("CODELENS_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("CODELENS_OUTPUT"); v != "" {
		cfg.Batch.Output = v
	}
	if v := os.Getenv("CODELENS_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("CODELENS_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("CODELENS_TIMEOUT_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CODELENS_TIMEOUT_SECONDS must be an integer: %w", err)
		}
		cfg.TimeoutSeconds = n
	}
	if v := os.Getenv("CODELENS_CACHE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CODELENS_CACHE must be a boolean: %w", err)
		}
		cfg.Cache.Enabled = b
	}
	return nil
}

func mergeOverrides(cfg *Config, overrides map[string]string) error {
	for key, value := range overrides {
		if value == "" {
			continue
		}
		if err := SetField(cfg, key, value); err != nil {
			return err
		}
	}
	return nil
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "generateURL":
		cfg.GenerateURL = value
	case "model":
		cfg.Model = value
	case "reviewCategories":
		cfg.ReviewCategories = value
	case "categoriesFile":
		cfg.CategoriesFile = value
	case "temperature":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("temperature must be a number: %w", err)
		}
		cfg.Temperature = &f
	case "maxTokens":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxTokens must be an integer: %w", err)
		}
		cfg.MaxTokens = n
	case "timeoutSeconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("timeoutSeconds must be an integer: %w", err)
		}
		cfg.TimeoutSeconds = n
	case "server.addr":
		cfg.Server.Addr = value
	case "batch.output":
		cfg.Batch.Output = value
	case "batch.format":
		cfg.Batch.Format = value
	case "cache.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("cache.enabled must be a boolean: %w", err)
		}
		cfg.Cache.Enabled = b
	case "privacy.redactSecrets":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("privacy.redactSecrets must be a boolean: %w", err)
		}
		cfg.Privacy.RedactSecrets = b
	case "log.level":
		cfg.Log.Level = value
	case "log.format":
		cfg.Log.Format = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
