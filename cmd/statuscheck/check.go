package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/amartya2002/status-checker/internal/config"
	"github.com/amartya2002/status-checker/internal/publish"
	"github.com/amartya2002/status-checker/report"
	"github.com/amartya2002/status-checker/statuscheck"
)

// fs is where reports are written; tests swap in a memory filesystem.
var fs = afero.NewOsFs()

var checkCmd = &cobra.Command{
	Use:   "check [urls...]",
	Short: "Check a list of URLs and write the JSON report",
	Long: `Check probes every URL once with a pool of workers and writes the report
after all checks are done.

URLs come from arguments, from --file (one per line, blank lines and # comments
skipped), or from the urls list in statuscheck.yaml.

Exit codes:
  0 - report written (and no failures, with --fail-on-failures)
  1 - invalid input, report could not be written, or failures with --fail-on-failures`,
	Args: cobra.ArbitraryArgs,
	RunE: runCheck,
}

func init() {
	f := checkCmd.Flags()
	f.StringP("file", "f", "", "read newline-delimited URLs from this file")
	f.StringP("output", "o", "status.json", "path of the JSON report")
	f.String("md-out", "", "also write a Markdown summary to this path")
	f.Bool("fail-on-failures", false, "exit non-zero if any URL failed")

	mustBind(v.BindPFlag("file", f.Lookup("file")))
	mustBind(v.BindPFlag("output", f.Lookup("output")))
	mustBind(v.BindPFlag("markdown", f.Lookup("md-out")))
	mustBind(v.BindPFlag("fail_on_failures", f.Lookup("fail-on-failures")))

	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(v, args)
	if err != nil {
		return err
	}
	if err := cfg.ValidateCheck(); err != nil {
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
	checker := statuscheck.New(opts...)
	defer checker.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Starting to process %d URLs with %d workers...\n", len(cfg.URLs), checker.Workers())
	startedAt := time.Now()

	results, err := checker.Run(ctx, cfg.URLs)
	if err != nil {
		return err
	}
	finishedAt := time.Now()

	w := report.NewWriter(fs)
	if err := w.Write(cfg.Output, results); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	logger.Info("Report written", zap.String("path", cfg.Output), zap.Int("records", len(results)))

	if cfg.Markdown != "" {
		err := w.WriteMarkdown(cfg.Markdown, results, report.Summary{
			StartedAt:  startedAt,
			FinishedAt: finishedAt,
			Workers:    checker.Workers(),
			MaxRetries: cfg.Retries,
			JSONPath:   cfg.Output,
		})
		if err != nil {
			return fmt.Errorf("failed to write markdown report: %w", err)
		}
	}

	if len(cfg.Kafka.Brokers) > 0 {
		publishResults(ctx, cfg.Kafka, results, logger)
	}

	sum := statuscheck.Summarize(results)
	printSummary(cmd, sum, finishedAt.Sub(startedAt))

	if cfg.FailOnFailures && sum.Failed > 0 {
		return fmt.Errorf("%d URLs failed", sum.Failed)
	}
	return nil
}

// publishResults is best effort; the report on disk is the contract.
func publishResults(ctx context.Context, kc config.KafkaConfig, results []statuscheck.CheckResult, logger *zap.Logger) {
	p := publish.NewPublisher(kc.Brokers, kc.Topic, logger)
	defer p.Close()

	runID := uuid.NewString()
	if err := p.Publish(ctx, runID, report.FromResults(results)); err != nil {
		logger.Warn("Publishing results failed", zap.String("run_id", runID), zap.Error(err))
	}
}

func printSummary(cmd *cobra.Command, sum statuscheck.Summary, elapsed time.Duration) {
	out := cmd.OutOrStdout()
	ok := color.New(color.FgGreen).SprintfFunc()
	bad := color.New(color.FgRed).SprintfFunc()

	failed := fmt.Sprintf("%d failed", sum.Failed)
	if sum.Failed > 0 {
		failed = bad("%d failed", sum.Failed)
	}
	fmt.Fprintf(out, "Checked %d URLs: %s, %s\n", sum.Total, ok("%d OK", sum.OK), failed)
	fmt.Fprintf(out, "Processing completed in %s\n", elapsed.Round(time.Millisecond))
}
