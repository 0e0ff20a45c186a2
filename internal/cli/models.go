package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/codelens/internal/providers"
)

const doctorTimeout = 30 * time.Second

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Inspect the generation service",
}

// modelService is what the models commands need from the generation client.
type modelService interface {
	providers.Generator
	ListModels(ctx context.Context) ([]string, error)
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List models installed on the generation service",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), doctorTimeout)
		defer cancel()
		exitCode = listModels(ctx, newGenerator(cfg), os.Stdout, os.Stderr)
		return nil
	},
}

var modelsDoctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the configured model is installed and responding",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		gen := newGenerator(cfg)
		fmt.Fprintf(os.Stdout, "Checking %s at %s...\n", gen.Model(), gen.GenerateURL())

		ctx, cancel := context.WithTimeout(context.Background(), doctorTimeout)
		defer cancel()
		exitCode = doctor(ctx, gen, os.Stdout, os.Stderr)
		return nil
	},
}

func listModels(ctx context.Context, svc modelService, stdout, stderr io.Writer) int {
	names, err := svc.ListModels(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "FAIL: %v\n", err)
		return ExitUpstreamError
	}
	for _, n := range names {
		marker := " "
		if sameModel(n, svc.Model()) {
			marker = "*"
		}
		fmt.Fprintf(stdout, "%s %s\n", marker, n)
	}
	return ExitSuccess
}

func doctor(ctx context.Context, svc modelService, stdout, stderr io.Writer) int {
	names, err := svc.ListModels(ctx)
	if providers.IsStatusError(err) {
		fmt.Fprintf(stderr, "FAIL: generation service answered with an error, check generateURL: %v\n", err)
		return ExitUpstreamError
	}
	if err != nil {
		fmt.Fprintf(stderr, "FAIL: generation service unreachable: %v\n", err)
		return ExitUpstreamError
	}
	if !slices.ContainsFunc(names, func(n string) bool { return sameModel(n, svc.Model()) }) {
		fmt.Fprintf(stderr, "FAIL: model %s is not installed (try: ollama pull %s)\n", svc.Model(), svc.Model())
		return ExitUpstreamError
	}

	_, err = svc.Generate(ctx, providers.GenerateRequest{
		Prompt:    "Respond with exactly: ok",
		MaxTokens: 10,
	})
	if err != nil {
		fmt.Fprintf(stderr, "FAIL: %v\n", err)
		return ExitUpstreamError
	}

	fmt.Fprintf(stdout, "OK: %s is installed and responding\n", svc.Model())
	return ExitSuccess
}

// sameModel compares model names, treating a missing tag as ":latest".
func sameModel(a, b string) bool {
	return withTag(a) == withTag(b)
}

func withTag(name string) string {
	if strings.Contains(name, ":") {
		return name
	}
	return name + ":latest"
}

func init() {
	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsDoctorCmd)
}
