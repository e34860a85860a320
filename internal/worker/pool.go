// Package worker provides a bounded goroutine pool so the server can
// dispatch one job per inbound datagram without letting a burst of
// queries spawn an unbounded number of goroutines.
package worker

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrPoolClosed indicates the pool has been shut down.
	ErrPoolClosed = errors.New("worker pool closed")

	// ErrJobTimeout indicates a job timed out waiting for a free slot.
	ErrJobTimeout = errors.New("job timed out waiting in queue")

	// ErrQueueFull indicates the job queue is full.
	ErrQueueFull = errors.New("job queue is full")
)

// Job is a unit of work dispatched to the pool. A resolved datagram
// handler satisfies this via JobFunc.
type Job interface {
	Execute(ctx context.Context) error
}

// JobFunc adapts a plain function to the Job interface.
type JobFunc func(ctx context.Context) error

func (f JobFunc) Execute(ctx context.Context) error {
	return f(ctx)
}

// Config controls pool sizing.
type Config struct {
	// Workers is the number of goroutines draining the queue.
	// Default: runtime.NumCPU() * 4.
	Workers int

	// QueueSize bounds how many jobs can be pending at once.
	// Default: Workers * 100.
	QueueSize int

	// QueueTimeout bounds how long SubmitAsync waits for a free queue
	// slot before giving up. 0 means try once, non-blocking.
	QueueTimeout time.Duration

	// PanicHandler, if set, is called with the recovered value when a
	// job panics instead of taking the whole worker down.
	PanicHandler func(interface{})
}

// Pool is a fixed-size worker pool draining a bounded job queue. The
// server submits one job per datagram and never blocks on resolution
// itself; workers are the only goroutines that run resolver code.
type Pool struct {
	workers      int
	queue        chan Job
	wg           sync.WaitGroup
	ctx          context.Context
	cancel       context.CancelFunc
	closed       atomic.Bool
	queueSize    int
	queueTimeout time.Duration

	panicHandler func(interface{})

	jobsSubmitted atomic.Uint64
	jobsCompleted atomic.Uint64
	jobsRejected  atomic.Uint64
	jobsFailed    atomic.Uint64
	jobsTimedOut  atomic.Uint64
}

// NewPool starts cfg.Workers goroutines draining a queue of size
// cfg.QueueSize.
func NewPool(cfg Config) *Pool {
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU() * 4
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = cfg.Workers * 100
	}

	ctx, cancel := context.WithCancel(context.Background())

	p := &Pool{
		workers:      cfg.Workers,
		queue:        make(chan Job, cfg.QueueSize),
		ctx:          ctx,
		cancel:       cancel,
		queueSize:    cfg.QueueSize,
		queueTimeout: cfg.QueueTimeout,
		panicHandler: cfg.PanicHandler,
	}

	p.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go p.worker()
	}

	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.queue:
			if !ok {
				return
			}
			p.executeJob(job)
		}
	}
}

func (p *Pool) executeJob(job Job) {
	defer func() {
		if r := recover(); r != nil {
			if p.panicHandler != nil {
				p.panicHandler(r)
			}
			p.jobsFailed.Add(1)
		}
	}()

	if err := job.Execute(p.ctx); err != nil {
		p.jobsFailed.Add(1)
		return
	}
	p.jobsCompleted.Add(1)
}

// SubmitAsync enqueues a job without waiting for it to run. It returns
// ErrQueueFull if the queue is full and no QueueTimeout is configured,
// or ErrJobTimeout if QueueTimeout elapses before a slot frees up.
func (p *Pool) SubmitAsync(ctx context.Context, job Job) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}

	p.jobsSubmitted.Add(1)

	if p.queueTimeout > 0 {
		timeoutCtx, cancel := context.WithTimeout(ctx, p.queueTimeout)
		defer cancel()

		select {
		case p.queue <- job:
			return nil
		case <-timeoutCtx.Done():
			p.jobsTimedOut.Add(1)
			return ErrJobTimeout
		case <-p.ctx.Done():
			return ErrPoolClosed
		}
	}

	select {
	case p.queue <- job:
		return nil
	default:
		p.jobsRejected.Add(1)
		return ErrQueueFull
	}
}

// Close stops accepting new jobs and blocks until in-flight jobs drain.
func (p *Pool) Close() error {
	if p.closed.Swap(true) {
		return ErrPoolClosed
	}

	close(p.queue)
	p.wg.Wait()
	p.cancel()

	return nil
}

// Stats reports pool-level counters for observability.
type Stats struct {
	Workers    int
	QueueSize  int
	QueueDepth int
	Submitted  uint64
	Completed  uint64
	Rejected   uint64
	Failed     uint64
	TimedOut   uint64
}

// GetStats returns current pool statistics.
func (p *Pool) GetStats() Stats {
	return Stats{
		Workers:    p.workers,
		QueueSize:  p.queueSize,
		QueueDepth: len(p.queue),
		Submitted:  p.jobsSubmitted.Load(),
		Completed:  p.jobsCompleted.Load(),
		Rejected:   p.jobsRejected.Load(),
		Failed:     p.jobsFailed.Load(),
		TimedOut:   p.jobsTimedOut.Load(),
	}
}

// QueueDepth returns the number of jobs currently queued.
func (p *Pool) QueueDepth() int {
	return len(p.queue)
}
