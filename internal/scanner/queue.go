// internal/scanner/queue.go
package scanner

import "sync"

// workQueue holds directories waiting to be classified and tracks how many
// dequeued directories are still being resolved. The scan is complete when
// both the pending list and the in-flight count reach zero; the two are
// guarded by one mutex so that a worker finishing its last task can never
// miss children a sibling is about to push.
type workQueue struct {
	mu       sync.Mutex
	cond     *sync.Cond
	pending  []string
	inFlight int
	closed   bool
	complete bool
}

func newWorkQueue(roots []string) *workQueue {
	q := &workQueue{pending: append([]string(nil), roots...)}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push adds directories discovered while resolving an in-flight task.
func (q *workQueue) push(paths ...string) {
	if len(paths) == 0 {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.pending = append(q.pending, paths...)
	q.cond.Broadcast()
}

// pop blocks until a directory is available and marks it in flight. It
// returns false once the queue is closed, either because all work is done
// or because the run was aborted.
func (q *workQueue) pop() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.pending) == 0 && !q.closed {
		if q.inFlight == 0 {
			q.finishLocked()
			break
		}
		q.cond.Wait()
	}
	if q.closed {
		return "", false
	}

	// LIFO keeps the frontier close to a depth-first walk.
	last := len(q.pending) - 1
	path := q.pending[last]
	q.pending[last] = ""
	q.pending = q.pending[:last]
	q.inFlight++
	return path, true
}

// done resolves one in-flight task. Any children must already be pushed.
func (q *workQueue) done() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.inFlight--
	if q.inFlight == 0 && len(q.pending) == 0 && !q.closed {
		q.finishLocked()
	}
}

// close stops the queue without completing it. Pending entries are dropped.
func (q *workQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	q.pending = nil
	q.cond.Broadcast()
}

func (q *workQueue) finishLocked() {
	q.closed = true
	q.complete = true
	q.cond.Broadcast()
}

// completed reports whether the queue drained naturally.
func (q *workQueue) completed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.complete
}
