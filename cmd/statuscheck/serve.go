package main

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/amartya2002/status-checker/internal/config"
	"github.com/amartya2002/status-checker/internal/publish"
	"github.com/amartya2002/status-checker/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run checks on demand over an HTTP API",
	Long: `Serve starts an HTTP API:

  POST /checks      run a batch: {"urls": [...], "workers": 4, "timeout_seconds": 5, "max_retries": 1}
  GET  /checks      list stored runs, newest first
  GET  /checks/:id  fetch one stored run
  GET  /health      liveness

Workers, timeout and retries left out of a request fall back to the
configured values. A request may ask for at most 1024 workers, a 3600 second
timeout and 100 retries.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.String("addr", ":8080", "listen address")
	f.Int("history", 100, "number of past runs kept in memory")

	mustBind(v.BindPFlag("server.addr", f.Lookup("addr")))
	mustBind(v.BindPFlag("server.history", f.Lookup("history")))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(v, nil)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	opts, err := checkerOptions(cfg, logger)
	if err != nil {
		return err
	}

	var pub server.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		p := publish.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		defer p.Close()
		pub = p
	}

	if !cfg.Log.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := server.New(logger, cfg.Server.History, pub, opts...)
	return srv.Run(cfg.Server.Addr)
}
