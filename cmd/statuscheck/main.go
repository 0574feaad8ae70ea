// Package main is the entry point for the statuscheck CLI.
//
// Usage:
//
//	statuscheck check --file urls.txt --workers 8 --timeout 5 --retries 2
//	statuscheck check https://example.com https://example.org
//	statuscheck serve --addr :8080
//	statuscheck version
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/amartya2002/status-checker/internal/config"
)

// Version information, set at build time via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// v holds settings shared by all subcommands. Flags are bound onto it.
var v = config.New()

var rootCmd = &cobra.Command{
	Use:   "statuscheck",
	Short: "Concurrent website availability checker",
	Long: `statuscheck probes a list of URLs over HTTP with a fixed pool of workers,
retries transport failures with a one second pause, and writes one JSON record
per URL to the output file once every check has finished.

Settings come from flags, STATUSCHECK_* environment variables, an optional
statuscheck.yaml in . or ./config, and a .env file if present.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		os.Exit(1)
	}
}

func main() {
	// .env is optional
	_ = godotenv.Load()
	Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "statuscheck %s\n", version)
		fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", commit)
		fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", date)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.IntP("workers", "w", v.GetInt("workers"), "number of concurrent workers (default: number of CPUs)")
	pf.IntP("timeout", "t", 5, "per-attempt HTTP timeout in seconds")
	pf.IntP("retries", "r", 0, "retries after a transport error (non-2xx responses are never retried)")
	pf.String("log-level", "info", "per-URL log level: none, error, info, debug")
	pf.StringSlice("log-file", nil, "additional log file sink (repeatable)")
	pf.Bool("internal-logs", false, "log worker lifecycle and retry details")
	pf.Bool("verbose", false, "human-readable development logging")
	pf.StringSlice("kafka-brokers", nil, "publish every record to these Kafka brokers")
	pf.String("kafka-topic", "status-results", "Kafka topic for published records")

	mustBind(v.BindPFlag("workers", pf.Lookup("workers")))
	mustBind(v.BindPFlag("timeout", pf.Lookup("timeout")))
	mustBind(v.BindPFlag("retries", pf.Lookup("retries")))
	mustBind(v.BindPFlag("log.level", pf.Lookup("log-level")))
	mustBind(v.BindPFlag("log.files", pf.Lookup("log-file")))
	mustBind(v.BindPFlag("log.internal", pf.Lookup("internal-logs")))
	mustBind(v.BindPFlag("log.verbose", pf.Lookup("verbose")))
	mustBind(v.BindPFlag("kafka.brokers", pf.Lookup("kafka-brokers")))
	mustBind(v.BindPFlag("kafka.topic", pf.Lookup("kafka-topic")))

	rootCmd.AddCommand(versionCmd)
}

func mustBind(err error) {
	if err != nil {
		panic(err)
	}
}
