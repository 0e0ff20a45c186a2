package cli

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/codelens/internal/server"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP review relay",
	Long:  "Serve POST /api/review and GET /health, relaying each review request to the generation service.",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (default :5000)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	gen := newGenerator(cfg)
	relay, err := newRelay(cfg, gen, log)
	if err != nil {
		return err
	}

	handler := server.NewHandler(relay, gen, log)
	router := server.NewRouter(handler, server.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         log,
	})

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: listening on %s: %v\n", cfg.Server.Addr, err)
		exitCode = ExitRuntimeError
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("relay configured",
		"model", relay.Model(),
		"upstream", gen.GenerateURL(),
		"cache", cfg.Cache.Enabled,
		"redact", cfg.Privacy.RedactSecrets,
	)

	srv := server.New(cfg.Server.Addr, router, log)
	if err := srv.Run(ctx, ln); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return nil
	}
	log.Info("codelens relay stopped")
	return nil
}
