package task

import (
	"sync"
	"time"

	"github.com/testimonialhq/testimonials-backend/pkg/logger"
)

// Executor runs side-effect jobs (notifications, cache warm-ups) on a
// bounded worker pool. When asynchronous execution is unavailable, jobs
// degrade to running synchronously on the caller's goroutine so work is
// never silently dropped.
type Executor struct {
	jobs chan job
	wg   sync.WaitGroup

	mu      sync.Mutex
	stopped bool
}

type job struct {
	name string
	fn   func()
}

// NewExecutor starts workers goroutines draining a queue of queueSize.
// workers < 1 disables the pool entirely; everything runs synchronously.
func NewExecutor(workers, queueSize int) *Executor {
	e := &Executor{}

	if workers < 1 {
		e.stopped = true
		return e
	}
	if queueSize < 1 {
		queueSize = workers * 8
	}

	e.jobs = make(chan job, queueSize)
	for i := 0; i < workers; i++ {
		e.wg.Add(1)
		go e.worker()
	}

	logger.Info("Task executor started", map[string]interface{}{
		"workers":    workers,
		"queue_size": queueSize,
	})
	return e
}

func (e *Executor) worker() {
	defer e.wg.Done()
	for j := range e.jobs {
		e.run(j)
	}
}

func (e *Executor) run(j job) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Task panicked", nil, map[string]interface{}{
				"task":  j.name,
				"panic": r,
			})
		}
	}()
	j.fn()
}

// Execute runs fn. With useAsync it is queued onto the pool; when the
// queue is full or the pool is stopped it falls back to a synchronous
// run with a warning. Returns true if the job was queued asynchronously.
func (e *Executor) Execute(name string, fn func(), useAsync bool) bool {
	if useAsync && e.tryEnqueue(name, fn) {
		return true
	}

	if useAsync {
		logger.Warn("Async execution unavailable, running task synchronously", map[string]interface{}{
			"task": name,
		})
	}
	e.run(job{name: name, fn: fn})
	return false
}

// ExecuteDelayed runs fn after delay. Without a usable pool the delay is
// skipped and the job runs immediately and synchronously.
func (e *Executor) ExecuteDelayed(name string, fn func(), delay time.Duration, useAsync bool) bool {
	if !useAsync || !e.acceptingJobs() {
		if useAsync {
			logger.Warn("Async execution unavailable, running delayed task immediately", map[string]interface{}{
				"task":  name,
				"delay": delay.String(),
			})
		}
		e.run(job{name: name, fn: fn})
		return false
	}

	time.AfterFunc(delay, func() {
		if !e.tryEnqueue(name, fn) {
			e.run(job{name: name, fn: fn})
		}
	})
	return true
}

func (e *Executor) acceptingJobs() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.stopped
}

func (e *Executor) tryEnqueue(name string, fn func()) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return false
	}
	select {
	case e.jobs <- job{name: name, fn: fn}:
		return true
	default:
		// queue full
		return false
	}
}

// Stop drains the queue and waits for in-flight jobs to finish.
func (e *Executor) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	e.mu.Unlock()

	if e.jobs != nil {
		close(e.jobs)
	}
	e.wg.Wait()
	logger.Info("Task executor stopped")
}
