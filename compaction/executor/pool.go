package executor

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/raftlog/compactor/compaction"
	"github.com/raftlog/compactor/internal/logger"
	"github.com/raftlog/compactor/internal/metrics"
)

// Pool runs rewrite tasks concurrently across a bounded set of workers.
// Since BuildTasks partitions the cleanable segment set into
// index-disjoint groups by construction, the pool never needs to
// coordinate between workers beyond fanning tasks out and collecting
// results.
type Pool struct {
	exec    *Executor
	workers int

	tasks   chan compaction.Task
	results chan Result

	wg     sync.WaitGroup
	closed atomic.Bool

	succeeded int64
	failed    int64
}

// NewPool creates a worker pool of the given size backed by exec. A
// pool size of zero or less defaults to one worker.
func NewPool(workers int, exec *Executor) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{
		exec:    exec,
		workers: workers,
		tasks:   make(chan compaction.Task, workers*4),
		results: make(chan Result, workers*4),
	}
}

// Start launches the pool's worker goroutines. Results become available
// on the channel returned by Results until Stop is called.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
	go func() {
		p.wg.Wait()
		close(p.results)
	}()
}

func (p *Pool) run() {
	defer p.wg.Done()
	for task := range p.tasks {
		result, err := p.exec.Execute(task)
		if err != nil {
			atomic.AddInt64(&p.failed, 1)
			metrics.TaskOutcomes.WithLabelValues(outcomeLabel(err)).Inc()
			logger.Log.Warn("rewrite task for segment {id} failed: {error}", task.TargetID(), err)
			continue
		}
		atomic.AddInt64(&p.succeeded, 1)
		metrics.TaskOutcomes.WithLabelValues("success").Inc()
		metrics.BytesReclaimed.Set(float64(result.BytesReclaimed))
		p.results <- result
	}
}

// Submit enqueues a task for execution. It blocks if the pool's
// internal backlog is full.
func (p *Pool) Submit(task compaction.Task) {
	p.tasks <- task
}

// Results returns the channel rewrite results are published on.
func (p *Pool) Results() <-chan Result { return p.results }

// Stop closes the task channel and waits for in-flight tasks to drain.
func (p *Pool) Stop() {
	if p.closed.CompareAndSwap(false, true) {
		close(p.tasks)
	}
	p.wg.Wait()
}

// Stats reports how many tasks have completed, successfully or not.
func (p *Pool) Stats() (succeeded, failed int64) {
	return atomic.LoadInt64(&p.succeeded), atomic.LoadInt64(&p.failed)
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrInsufficientSpace):
		return "insufficient_space"
	case errors.Is(err, ErrIOError):
		return "io_error"
	default:
		return "corrupt"
	}
}
