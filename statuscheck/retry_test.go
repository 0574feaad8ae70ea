package statuscheck

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedProber answers each call from fn and counts attempts per URL.
type scriptedProber struct {
	mu    sync.Mutex
	calls map[string]int
	fn    func(url string, attempt int) (int, error)
}

func newScriptedProber(fn func(url string, attempt int) (int, error)) *scriptedProber {
	return &scriptedProber{calls: map[string]int{}, fn: fn}
}

func (p *scriptedProber) Probe(_ context.Context, url string, _ time.Duration) (int, error) {
	p.mu.Lock()
	p.calls[url]++
	n := p.calls[url]
	p.mu.Unlock()
	return p.fn(url, n)
}

func (p *scriptedProber) attempts(url string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[url]
}

var errRefused = &ProbeError{Kind: KindRefused, Err: errors.New("dial tcp 127.0.0.1:1: connect: connection refused")}

func TestResolve_SuccessFirstAttempt(t *testing.T) {
	p := newScriptedProber(func(string, int) (int, error) { return 200, nil })
	policy := RetryPolicy{Prober: p, MaxRetries: 3, Delay: time.Hour}

	res := policy.Resolve(context.Background(), "http://ok")

	assert.True(t, res.Outcome.Success)
	assert.Equal(t, 200, res.Outcome.StatusCode)
	assert.Equal(t, 1, res.Attempts)
	assert.Less(t, res.Elapsed, time.Second)
	assert.False(t, res.CompletedAt.IsZero())
}

func TestResolve_NonSuccessStatusIsNotRetried(t *testing.T) {
	p := newScriptedProber(func(string, int) (int, error) { return 500, nil })
	policy := RetryPolicy{Prober: p, MaxRetries: 5, Delay: time.Hour}

	res := policy.Resolve(context.Background(), "http://broken")

	assert.False(t, res.Outcome.Success)
	assert.Equal(t, "status 500", res.Outcome.Message)
	assert.Equal(t, 500, res.Outcome.StatusCode)
	assert.Equal(t, 1, p.attempts("http://broken"))
	assert.Less(t, res.Elapsed, time.Second)
}

func TestResolve_RedirectRangeCountsAsFailure(t *testing.T) {
	p := newScriptedProber(func(string, int) (int, error) { return 304, nil })
	res := RetryPolicy{Prober: p}.Resolve(context.Background(), "http://cached")
	assert.Equal(t, "status 304", res.Outcome.Message)
}

func TestResolve_ExhaustsRetries(t *testing.T) {
	p := newScriptedProber(func(string, int) (int, error) { return 0, errRefused })
	var retried []int
	policy := RetryPolicy{
		Prober:     p,
		MaxRetries: 2,
		Delay:      20 * time.Millisecond,
		OnRetry:    func(_ string, attempt int, _ error) { retried = append(retried, attempt) },
	}

	res := policy.Resolve(context.Background(), "http://down")

	require.False(t, res.Outcome.Success)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, 3, p.attempts("http://down"))
	assert.Equal(t, []int{1, 2}, retried)
	assert.GreaterOrEqual(t, res.Elapsed, 40*time.Millisecond)
	assert.Equal(t, "Failed to process http://down: Error: "+errRefused.Error(), res.Outcome.Message)
}

func TestResolve_ZeroRetriesMeansSingleAttemptWithoutDelay(t *testing.T) {
	p := newScriptedProber(func(string, int) (int, error) { return 0, errRefused })
	policy := RetryPolicy{Prober: p, MaxRetries: 0, Delay: time.Hour}

	res := policy.Resolve(context.Background(), "http://down")

	assert.Equal(t, 1, res.Attempts)
	assert.Less(t, res.Elapsed, time.Second)
}

func TestResolve_RecoversAfterTransientError(t *testing.T) {
	p := newScriptedProber(func(_ string, attempt int) (int, error) {
		if attempt < 3 {
			return 0, errRefused
		}
		return 204, nil
	})
	policy := RetryPolicy{Prober: p, MaxRetries: 4, Delay: time.Millisecond}

	res := policy.Resolve(context.Background(), "http://flaky")

	assert.True(t, res.Outcome.Success)
	assert.Equal(t, 204, res.Outcome.StatusCode)
	assert.Equal(t, 3, res.Attempts)
}

func TestResolve_DefaultDelayIsOneSecondBetweenAttempts(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for two real retry delays")
	}
	p := newScriptedProber(func(string, int) (int, error) { return 0, errRefused })
	policy := RetryPolicy{Prober: p, MaxRetries: 2, Delay: DefaultRetryDelay}

	res := policy.Resolve(context.Background(), "http://down")

	assert.Equal(t, 3, res.Attempts)
	assert.GreaterOrEqual(t, res.Elapsed, 2*time.Second)
	assert.Less(t, res.Elapsed, 3*time.Second)
}

func TestResolve_CancelStopsPendingDelay(t *testing.T) {
	p := newScriptedProber(func(string, int) (int, error) { return 0, errRefused })
	policy := RetryPolicy{Prober: p, MaxRetries: 10, Delay: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	res := policy.Resolve(ctx, "http://down")

	assert.False(t, res.Outcome.Success)
	assert.Equal(t, 1, res.Attempts)
	assert.Contains(t, res.Outcome.Message, "connection refused")
	assert.Less(t, res.Elapsed, time.Minute)
}
