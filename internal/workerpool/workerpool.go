// Package workerpool runs blocking functions on a bounded set of worker
// goroutines, ordering queued work by priority.
//
// The pool is the executor behind the blocking-pool backend: each platform
// call (open, pread, fstat) is one job. Jobs whose context is already
// cancelled when a worker picks them up are skipped, so abandoned work that
// never started costs nothing.
package workerpool

import (
	"container/heap"
	"context"
	"errors"
	"sync"

	"github.com/marmos91/afile/pkg/priority"
)

// ErrClosed is returned by Submit after Close.
var ErrClosed = errors.New("worker pool is closed")

const (
	defaultWorkers   = 16
	defaultQueueSize = 1024
)

// Pool is a fixed-size worker pool with a bounded priority queue.
//
// Thread safety:
// All methods are safe for concurrent use.
type Pool struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  jobQueue
	seq    uint64
	closed bool

	// slots bounds the number of queued (not yet running) jobs. Submit
	// blocks on it, honouring its context, when the queue is full.
	slots chan struct{}

	wg sync.WaitGroup
}

type job struct {
	prio priority.Priority
	seq  uint64
	ctx  context.Context
	run  func()
}

// New starts a pool with the given number of workers and queue capacity.
// Non-positive values select the defaults (16 workers, 1024 queued jobs).
func New(workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	p := &Pool{
		slots: make(chan struct{}, queueSize),
	}
	p.cond = sync.NewCond(&p.mu)

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

// Submit queues run for execution. It blocks while the queue is full.
//
// Returns:
//   - nil once the job is queued
//   - ctx.Err() if the context ends while waiting for queue space
//   - ErrClosed if the pool has been closed
func (p *Pool) Submit(ctx context.Context, prio priority.Priority, run func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		<-p.slots
		return ErrClosed
	}
	p.seq++
	heap.Push(&p.queue, &job{prio: prio, seq: p.seq, ctx: ctx, run: run})
	p.cond.Signal()
	p.mu.Unlock()

	return nil
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		p.mu.Lock()
		for p.queue.Len() == 0 && !p.closed {
			p.cond.Wait()
		}
		if p.queue.Len() == 0 {
			p.mu.Unlock()
			return
		}
		j := heap.Pop(&p.queue).(*job)
		p.mu.Unlock()
		<-p.slots

		if j.ctx.Err() != nil {
			continue
		}
		j.run()
	}
}

// Len returns the number of queued jobs that have not started.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.Len()
}

// Close stops accepting jobs, lets the workers drain the queue, and waits
// for them to exit. It is safe to call more than once.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.cond.Broadcast()
	p.mu.Unlock()

	p.wg.Wait()
}

// jobQueue orders jobs by descending priority, then by submission order.
// Implements container/heap.Interface.
type jobQueue []*job

func (q jobQueue) Len() int { return len(q) }
func (q jobQueue) Less(i, j int) bool {
	if q[i].prio != q[j].prio {
		return q[j].prio.Less(q[i].prio)
	}
	return q[i].seq < q[j].seq
}
func (q jobQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *jobQueue) Push(x any)   { *q = append(*q, x.(*job)) }
func (q *jobQueue) Pop() any {
	old := *q
	j := old[len(old)-1]
	old[len(old)-1] = nil
	*q = old[:len(old)-1]
	return j
}
