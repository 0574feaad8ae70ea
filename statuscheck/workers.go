package statuscheck

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

// ===== Workers and Internals =====

// runWorkers starts exactly numWorkers workers and waits for all of them.
// A worker only stops after it sees an empty queue.
func (c *Checker) runWorkers(ctx context.Context, queue *WorkQueue, collector *Collector) {
	policy := c.policy()
	var wg conc.WaitGroup
	for i := 0; i < c.numWorkers; i++ {
		id := i
		wg.Go(func() { c.worker(ctx, id, policy, queue, collector) })
	}
	wg.Wait()
}

func (c *Checker) worker(ctx context.Context, id int, policy RetryPolicy, queue *WorkQueue, collector *Collector) {
	c.ilog("Started worker %d", id)
	for {
		url, ok := queue.Take()
		if !ok {
			c.ilog("Worker %d found the queue empty", id)
			return
		}
		c.ilog("Worker %d picked %s", id, url)
		result := policy.Resolve(ctx, url)
		collector.Append(result)
		c.log(result)
	}
}

func (c *Checker) log(res CheckResult) {
	switch c.logLevel {
	case LogNone:
		return
	case LogError:
		if !res.Outcome.Success {
			c.logger.Error("URL DOWN", zap.String("url", res.URL), zap.String("error", res.Outcome.Message),
				zap.Int("attempts", res.Attempts))
		}
	case LogInfo:
		if res.Outcome.Success {
			c.logger.Info("URL UP", zap.String("url", res.URL), zap.Int("status_code", res.Outcome.StatusCode),
				zap.Duration("elapsed", res.Elapsed))
		} else {
			c.logger.Warn("URL DOWN", zap.String("url", res.URL), zap.String("error", res.Outcome.Message),
				zap.Int("attempts", res.Attempts))
		}
	case LogDebug:
		c.logger.Debug("URL check", zap.String("url", res.URL), zap.Bool("success", res.Outcome.Success),
			zap.Int("status_code", res.Outcome.StatusCode), zap.Duration("elapsed", res.Elapsed),
			zap.Int("attempts", res.Attempts), zap.String("error", res.Outcome.Message))
	}
}

// ===== Internal Logging Helper =====
func (c *Checker) ilog(format string, args ...interface{}) {
	if c.enableInternalLogs {
		c.logger.Info(fmt.Sprintf("[INTERNAL] "+format, args...))
	}
}
