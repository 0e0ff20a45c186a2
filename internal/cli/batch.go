package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/codelens/internal/batch"
	"github.com/dshills/codelens/internal/gitctx"
	"github.com/dshills/codelens/internal/output"
	"github.com/dshills/codelens/internal/review"
	"github.com/dshills/codelens/internal/server"
)

// Batch flags
var (
	flagOut           string
	flagFormat        string
	flagRelayURL      string
	flagCommit        bool
	flagCommitMessage string
	flagExcludeDirs   string
	flagExtensions    string
)

const (
	defaultCommitMessage = "Update code review report"
	relayCheckTimeout    = 5 * time.Second
)

var batchCmd = &cobra.Command{
	Use:   "batch [root]",
	Short: "Review every source file under a directory",
	Long: "Walk root (default the current directory), review each allowed source file " +
		"and write a single report. Files that fail are reported and skipped.",
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

func init() {
	f := batchCmd.Flags()
	f.StringVarP(&flagOut, "out", "o", "", "Report path, - for stdout (default reports/code_review.md)")
	f.StringVar(&flagFormat, "format", "", "Report format: markdown, json")
	f.StringVar(&flagRelayURL, "relay-url", "", "Send reviews to a running codelens serve instead of calling the model directly")
	f.BoolVar(&flagCommit, "commit", false, "Commit the report with git after writing it")
	f.StringVar(&flagCommitMessage, "commit-message", defaultCommitMessage, "Commit message used with --commit")
	f.StringVar(&flagExcludeDirs, "exclude-dir", "", "Additional directory names to skip (comma-separated)")
	f.StringVar(&flagExtensions, "ext", "", "Additional file extensions to review (comma-separated)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	if flagCommit && !gitctx.Available() {
		return errors.New("--commit needs git on PATH")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var reviewer batch.Reviewer
	if flagRelayURL != "" {
		client := server.NewClient(flagRelayURL, cfg.Timeout())
		checkRelay(ctx, client, os.Stderr)
		reviewer = client
	} else {
		relay, err := newRelay(cfg, newGenerator(cfg), log)
		if err != nil {
			return err
		}
		reviewer = relay
	}

	rules := batch.NewRules(
		append(cfg.Batch.ExcludeDirs, splitComma(flagExcludeDirs)...),
		append(cfg.Batch.Extensions, splitComma(flagExtensions)...),
	)

	log.Debug("batch rules",
		"exclude_dirs", rules.ExcludeDirs(),
		"extensions", rules.Extensions(),
	)

	runner := batch.NewRunner(reviewer, rules, batch.Options{
		Diagnostics: os.Stdout,
		Logger:      log,
		Model:       cfg.Model,
		Version:     version,
	})
	report, err := runner.Run(ctx, root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return nil
	}

	var commitMsg string
	if flagCommit {
		commitMsg = flagCommitMessage
	}
	exitCode = writeBatchReport(ctx, report, cfg.Batch.Format, cfg.Batch.Output, commitMsg, os.Stdout, os.Stderr)
	return nil
}

// checkRelay warns when the relay at the other end of c is not ready. The
// batch still runs; each failing file is reported on its own.
func checkRelay(ctx context.Context, c *server.Client, stderr io.Writer) {
	ctx, cancel := context.WithTimeout(ctx, relayCheckTimeout)
	defer cancel()

	h, err := c.Health(ctx)
	switch {
	case err != nil:
		fmt.Fprintf(stderr, "Warning: relay health check failed: %v\n", err)
	case h.Services.OllamaIntegration == "unreachable":
		fmt.Fprintln(stderr, "Warning: relay cannot reach its generation service")
	}
}

// writeBatchReport writes report and optionally commits it. An empty commit
// message disables the commit step. It returns the process exit code.
func writeBatchReport(ctx context.Context, report *review.Report, format, out, commitMsg string, stdout, stderr io.Writer) int {
	err := output.WriteReport(report, format, out)
	if errors.Is(err, output.ErrEmptyReport) {
		fmt.Fprintln(stdout, "No files were reviewed successfully; report not written.")
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error writing report: %v\n", err)
		return ExitRuntimeError
	}
	if out == "-" || out == "" {
		return ExitSuccess
	}
	fmt.Fprintf(stdout, "Code review report generated: %s (%d files)\n", out, len(report.Reviews))

	if commitMsg == "" {
		return ExitSuccess
	}
	abs, err := filepath.Abs(out)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitRuntimeError
	}
	committed, err := gitctx.CommitFile(ctx, filepath.Dir(abs), filepath.Base(abs), commitMsg)
	if err != nil {
		fmt.Fprintf(stderr, "Error committing report: %v\n", err)
		return ExitRuntimeError
	}
	if committed {
		fmt.Fprintf(stdout, "Committed %s\n", out)
	} else {
		fmt.Fprintf(stdout, "Report unchanged, nothing to commit\n")
	}
	return ExitSuccess
}
