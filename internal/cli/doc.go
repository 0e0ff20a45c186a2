// Package cli wires together the Cobra command tree for the codelens binary.
//
// It defines the root command and all subcommands (serve, batch, review,
// config, cache, models, version), binds flags, reads configuration, builds
// the review relay and returns deterministic exit codes.
package cli
