// Package statuscheck exposes configuration options for the Checker via a
// functional options API.
package statuscheck

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ===== Options Pattern =====
type Option func(*Checker)

// WithWorkers sets the pool size. Non-positive values keep the default of
// one worker per CPU.
func WithWorkers(n int) Option {
	return func(c *Checker) {
		if n > 0 {
			c.numWorkers = n
		}
	}
}

// WithTimeout bounds each individual attempt.
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithMaxRetries(n int) Option {
	return func(c *Checker) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithRetryDelay overrides the one second pause between attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Checker) { c.retryDelay = d }
}

// WithHTTPClient replaces the pooled client used by the default prober.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Checker) { c.httpClient = hc }
}

// WithProber swaps the probe implementation (useful in tests).
func WithProber(p Prober) Option {
	return func(c *Checker) { c.prober = p }
}

func WithLogLevel(level LogLevel) Option {
	return func(c *Checker) { c.logLevel = level }
}

// enable/disable internal logs
func WithInternalLogs(enabled bool) Option {
	return func(c *Checker) { c.enableInternalLogs = enabled }
}

// WithLogger allows injecting a custom zap logger (useful in tests).
func WithLogger(l *zap.Logger) Option {
	return func(c *Checker) {
		c.logger = l
		c.loggerExplicit = l != nil
	}
}

// LogConsole turns the stdout sink on or off.
func LogConsole(enabled bool) Option {
	return func(c *Checker) { c.logConsoleOpt = &enabled }
}

// LogFile adds a file sink. Repeatable.
func LogFile(path string) Option {
	return func(c *Checker) { c.logFilesOpt = append(c.logFilesOpt, path) }
}

// DisableLogs discards all log output.
func DisableLogs() Option {
	return func(c *Checker) { c.logDisableOpt = true }
}
