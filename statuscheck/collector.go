package statuscheck

import "sync"

// Collector is an append-only log of results shared by the workers.
//
// Entries keep completion order, not URL input order, so two runs over the
// same input usually differ in order. Callers that need input order must sort
// the drained slice themselves.
type Collector struct {
	mu      sync.Mutex
	results []CheckResult
}

func NewCollector(capacity int) *Collector {
	return &Collector{results: make([]CheckResult, 0, capacity)}
}

func (c *Collector) Append(r CheckResult) {
	c.mu.Lock()
	c.results = append(c.results, r)
	c.mu.Unlock()
}

// Drain returns a copy of everything appended so far. Call it only after
// the pool has joined.
func (c *Collector) Drain() []CheckResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]CheckResult(nil), c.results...)
}

func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.results)
}
