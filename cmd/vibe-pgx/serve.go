package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/vibe-pgx/internal/server"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analyzer over HTTP",
		Long: `Start an HTTP server with these routes:

  POST /v1/analyze       score an uploaded file (multipart "file" field or raw body)
  GET  /v1/drugs         drug rule table
  GET  /v1/drugs/{name}  one drug rule
  GET  /v1/genes         gene rule table
  GET  /health           health check
  GET  /metrics          Prometheus metrics`,
		Example: `  vibe-pgx serve
  vibe-pgx serve --addr :8080
  curl -F file=@genome.txt http://127.0.0.1:8080/v1/analyze`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = viper.GetString("server.addr")
			}

			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			cfg := server.DefaultConfig()
			cfg.Addr = addr
			if n := viper.GetInt64("server.max_upload_bytes"); n > 0 {
				cfg.MaxUploadBytes = n
			}
			if d := viper.GetDuration("server.read_timeout"); d > 0 {
				cfg.ReadTimeout = d
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a := newAnalyzer(logger, viper.GetInt("preview.limit"))
			return server.New(cfg, a, logger).ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "Listen address")
	return cmd
}
