// Package statuscheck defines core types for the website status checker.
package statuscheck

import (
	"fmt"
	"strings"
	"time"
)

type LogLevel int

const (
	LogNone  LogLevel = iota // no logs
	LogError                 // only failures
	LogInfo                  // successes + failures
	LogDebug                 // verbose
)

// ParseLogLevel maps a config string onto a LogLevel.
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "off":
		return LogNone, nil
	case "error":
		return LogError, nil
	case "", "info":
		return LogInfo, nil
	case "debug":
		return LogDebug, nil
	}
	return LogInfo, fmt.Errorf("unknown log level %q", s)
}

// Outcome is the terminal state of one URL: either a 2xx status code or a
// failure message. StatusCode is also kept for non-2xx failures.
type Outcome struct {
	Success    bool
	StatusCode int
	Message    string
}

func Succeeded(code int) Outcome {
	return Outcome{Success: true, StatusCode: code}
}

func Failed(msg string) Outcome {
	return Outcome{Message: msg}
}

// statusFailure records a response outside the 2xx range.
func statusFailure(code int) Outcome {
	return Outcome{StatusCode: code, Message: fmt.Sprintf("status %d", code)}
}

// transportFailure records the last transport error after retries ran out.
func transportFailure(url string, err error) Outcome {
	return Outcome{Message: fmt.Sprintf("Failed to process %s: Error: %v", url, err)}
}

// CheckResult represents the outcome of checking a single URL. It is created
// once by the worker that took the URL and never mutated afterwards.
type CheckResult struct {
	URL         string
	Outcome     Outcome
	Elapsed     time.Duration // first attempt start to final attempt end, delays included
	CompletedAt time.Time
	Attempts    int
}

// Summary counts the outcomes of a run.
type Summary struct {
	Total  int
	OK     int
	Failed int
}

func Summarize(results []CheckResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Outcome.Success {
			s.OK++
		} else {
			s.Failed++
		}
	}
	return s
}
