// Package statuscheck implements the high-level Checker public API.
package statuscheck

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ErrNoURLs is returned by Run when there is nothing to check.
var ErrNoURLs = errors.New("statuscheck: no URLs to check")

const DefaultTimeout = 5 * time.Second

type Checker struct {
	httpClient *http.Client
	prober     Prober
	numWorkers int
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
	logLevel   LogLevel

	enableInternalLogs bool
	logger             *zap.Logger
	loggerExplicit     bool // set when WithLogger used

	// logging configuration accumulated by options
	logConsoleOpt *bool
	logFilesOpt   []string
	logDisableOpt bool
}

// ===== Constructor =====
func New(opts ...Option) *Checker {
	c := &Checker{
		numWorkers: runtime.NumCPU(),
		timeout:    DefaultTimeout,
		retryDelay: DefaultRetryDelay,
		logLevel:   LogInfo,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.prober == nil {
		c.prober = NewHTTPProber(c.httpClient)
	}
	// Build logger after options applied unless explicitly provided
	if !c.loggerExplicit {
		c.logger = c.buildLoggerFromConfig()
	}
	if c.logger == nil {
		c.logger = defaultConsoleLogger()
	}
	return c
}

func defaultConsoleLogger() *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// ZapLevel is the minimum level a zap logger needs to emit what l logs.
// Only LogDebug goes below zap's production default.
func (l LogLevel) ZapLevel() zapcore.Level {
	if l == LogDebug {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

func (c *Checker) buildLoggerFromConfig() *zap.Logger {
	if c.logDisableOpt {
		return zap.NewNop()
	}

	console := true
	if c.logConsoleOpt != nil {
		console = *c.logConsoleOpt
	}

	var paths []string
	seen := map[string]struct{}{}
	if console {
		paths = append(paths, "stdout")
		seen["stdout"] = struct{}{}
	}
	for _, f := range c.logFilesOpt {
		if f == "" {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		paths = append(paths, f)
	}

	if len(paths) == 0 {
		return defaultConsoleLogger()
	}

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = paths
	cfg.Level = zap.NewAtomicLevelAt(c.logLevel.ZapLevel())
	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// ===== Public API =====

// Run checks every URL once and returns one result per input entry,
// duplicates included, in completion order. It blocks until all workers have
// joined. Per-URL failures are part of the results, never an error.
func (c *Checker) Run(ctx context.Context, urls []string) ([]CheckResult, error) {
	if len(urls) == 0 {
		return nil, ErrNoURLs
	}
	queue := NewWorkQueue(urls)
	collector := NewCollector(len(urls))

	c.ilog("Starting %d workers for %d URLs", c.numWorkers, len(urls))
	c.runWorkers(ctx, queue, collector)
	c.ilog("All workers joined")

	return collector.Drain(), nil
}

// Workers reports the configured pool size.
func (c *Checker) Workers() int { return c.numWorkers }

// Logger exposes the logger the checker writes to.
func (c *Checker) Logger() *zap.Logger { return c.logger }

// Close flushes the logger and drops idle connections.
func (c *Checker) Close() {
	if hp, ok := c.prober.(*HTTPProber); ok {
		hp.Close()
	}
	_ = c.logger.Sync()
}

func (c *Checker) policy() RetryPolicy {
	return RetryPolicy{
		Prober:     c.prober,
		Timeout:    c.timeout,
		MaxRetries: c.maxRetries,
		Delay:      c.retryDelay,
		OnRetry: func(url string, attempt int, err error) {
			c.ilog("Retrying %s after attempt %d: %v", url, attempt, err)
		},
	}
}
