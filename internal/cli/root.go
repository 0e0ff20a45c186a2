package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

// Exit codes
const (
	ExitSuccess       = 0
	ExitUsageError    = 2
	ExitUpstreamError = 3
	ExitRuntimeError  = 4
)

// Global flags
var (
	flagModel          string
	flagURL            string
	flagCategoriesFile string
	flagLogLevel       string
	flagLogFormat      string
	flagCache          bool
	flagRedact         bool
)

var rootCmd = &cobra.Command{
	Use:   "codelens",
	Short: "Send source code to a local LLM for review",
	Long: "codelens relays source files to a locally hosted Ollama model for a free-text review, " +
		"either interactively over HTTP (serve) or for a whole repository at once (batch).",
	SilenceUsage: true,
}

// Run executes the root command and returns an exit code.
func Run() int {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}

	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print codelens version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "codelens version %s\n", version)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagModel, "model", "", "Model name (default llama3.2:latest)")
	pf.StringVar(&flagURL, "url", "", "Generation endpoint, base or full /api/generate URL")
	pf.StringVar(&flagCategoriesFile, "categories", "", "YAML file with extra review categories")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&flagLogFormat, "log-format", "", "Log format (text, json)")
	pf.BoolVar(&flagCache, "cache", false, "Cache model responses on disk")
	pf.BoolVar(&flagRedact, "redact", false, "Redact secrets before sending code to the model")
}
