// Package config loads and merges codelens configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (OLLAMA_API_BASE_URL, REVIEW_CATEGORIES, CODELENS_MODEL, etc.),
//     including those loaded from a .env file in the working directory
//  3. Config file ($XDG_CONFIG_HOME/codelens/config.yaml)
//  4. Built-in defaults
//
// Use [Load] to obtain a merged [Config], [Save] to write a config file, and
// [SetField] to update a single key by name.
package config
