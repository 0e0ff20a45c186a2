package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dshills/codelens/internal/batch"
	"github.com/dshills/codelens/internal/review"
	"github.com/dshills/codelens/internal/server"
)

// Review flags
var (
	flagFileName string
	flagJSON     bool
)

var reviewCmd = &cobra.Command{
	Use:   "review [file]",
	Short: "Review a single file, or stdin when no file is given",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReview,
}

func init() {
	f := reviewCmd.Flags()
	f.StringVar(&flagFileName, "name", "", "File name sent with the code (default: the path, or stdin)")
	f.BoolVar(&flagJSON, "json", false, "Print the response body as JSON")
	f.StringVar(&flagRelayURL, "relay-url", "", "Send the review to a running codelens serve")
}

func runReview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	var (
		data []byte
		name = "stdin"
	)
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
		name = filepath.ToSlash(args[0])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: reading input: %v\n", err)
		exitCode = ExitRuntimeError
		return nil
	}
	if flagFileName != "" {
		name = flagFileName
	}

	var reviewer batch.Reviewer
	if flagRelayURL != "" {
		reviewer = server.NewClient(flagRelayURL, cfg.Timeout())
	} else {
		relay, err := newRelay(cfg, newGenerator(cfg), log)
		if err != nil {
			return err
		}
		reviewer = relay
	}

	req := review.Request{Code: string(data), FileName: name}
	exitCode = reviewOne(cmd.Context(), reviewer, req, flagJSON, os.Stdout, os.Stderr)
	return nil
}

// reviewOne sends a single request and prints the result. Error kinds map to
// exit codes: invalid input is a usage error, upstream failures get their own
// code and everything else is a runtime error.
func reviewOne(ctx context.Context, r batch.Reviewer, req review.Request, asJSON bool, stdout, stderr io.Writer) int {
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := r.Review(ctx, req)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		switch review.KindOf(err) {
		case review.KindInvalidInput:
			return ExitUsageError
		case review.KindUpstream:
			return ExitUpstreamError
		default:
			return ExitRuntimeError
		}
	}

	if asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return ExitRuntimeError
		}
		return ExitSuccess
	}
	fmt.Fprintln(stdout, res.Text())
	return ExitSuccess
}
