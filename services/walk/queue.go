package walk

import "sync"

type job struct {
	path    string
	depth   int
	root    bool
	ignores []ignoreRule
}

// queue is an unbounded LIFO of pending directories shared by all workers.
// It closes itself once every pushed job has been marked done, or when
// stopped.
type queue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	jobs    []job
	pending int
	closed  bool
}

func newQueue() *queue {
	q := &queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *queue) push(j job) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.jobs = append(q.jobs, j)
	q.pending++
	q.cond.Signal()
}

// pop blocks until a job is available or the queue is closed.
func (q *queue) pop() (job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.jobs) == 0 && !q.closed {
		q.cond.Wait()
	}
	if q.closed {
		return job{}, false
	}

	last := len(q.jobs) - 1
	j := q.jobs[last]
	q.jobs[last] = job{}
	q.jobs = q.jobs[:last]

	return j, true
}

func (q *queue) done() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.pending--
	if q.pending <= 0 {
		q.closeLocked()
	}
}

func (q *queue) stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closeLocked()
}

func (q *queue) closeLocked() {
	q.closed = true
	q.jobs = nil
	q.cond.Broadcast()
}
