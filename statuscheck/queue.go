package statuscheck

import "sync"

// WorkQueue is the shared pool of URLs not yet taken by a worker. Each URL is
// handed out exactly once. Order is last-in first-out and carries no meaning.
type WorkQueue struct {
	mu    sync.Mutex
	items []string
}

// NewWorkQueue preloads a queue with a copy of urls.
func NewWorkQueue(urls []string) *WorkQueue {
	return &WorkQueue{items: append([]string(nil), urls...)}
}

// Take removes one URL. ok is false once the queue is empty, and stays false.
func (q *WorkQueue) Take() (url string, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.items)
	if n == 0 {
		return "", false
	}
	url = q.items[n-1]
	q.items = q.items[:n-1]
	return url, true
}

func (q *WorkQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
