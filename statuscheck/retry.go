package statuscheck

import (
	"context"
	"time"
)

// DefaultRetryDelay is the constant pause before each retry. There is no
// backoff.
const DefaultRetryDelay = time.Second

// RetryPolicy turns repeated probes of one URL into a single CheckResult.
//
// Only transport errors are retried. A received response outside 2xx ends
// the loop at once, since the server has already answered.
type RetryPolicy struct {
	Prober     Prober
	Timeout    time.Duration // per attempt
	MaxRetries int           // retries after the first attempt
	Delay      time.Duration

	// OnRetry, when set, is called before each pause.
	OnRetry func(url string, attempt int, err error)
}

// Resolve probes url until it gets a response or runs out of attempts.
// Cancelling ctx cuts a pending pause short; the URL still gets a failure
// result carrying the last transport error.
func (p RetryPolicy) Resolve(ctx context.Context, url string) CheckResult {
	start := time.Now()
	attempts := 0
	var outcome Outcome

	for {
		attempts++
		code, err := p.Prober.Probe(ctx, url, p.Timeout)
		if err == nil {
			if code >= 200 && code <= 299 {
				outcome = Succeeded(code)
			} else {
				outcome = statusFailure(code)
			}
			break
		}
		if attempts >= p.MaxRetries+1 {
			outcome = transportFailure(url, err)
			break
		}
		if p.OnRetry != nil {
			p.OnRetry(url, attempts, err)
		}
		if !sleep(ctx, p.Delay) {
			outcome = transportFailure(url, err)
			break
		}
	}

	now := time.Now()
	return CheckResult{
		URL:         url,
		Outcome:     outcome,
		Elapsed:     now.Sub(start),
		CompletedAt: now,
		Attempts:    attempts,
	}
}

// sleep waits for d on a timer and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
