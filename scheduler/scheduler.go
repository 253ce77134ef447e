// Package scheduler drives the minor compaction planner periodically: a
// single-threaded ticker invokes compaction.BuildTasks to completion on
// a snapshot of the segment list, then hands the resulting,
// index-disjoint tasks to a bounded executor worker pool that may run
// them concurrently and out of order.
package scheduler

import (
	"sync"
	"time"

	"github.com/raftlog/compactor/compaction"
	"github.com/raftlog/compactor/compaction/executor"
	"github.com/raftlog/compactor/internal/logger"
	"github.com/raftlog/compactor/internal/metrics"
)

// DefaultInterval is the default period between planning ticks.
const DefaultInterval = 5 * time.Minute

// Scheduler ticks the compaction planner at Interval and dispatches the
// tasks it produces to Pool.
type Scheduler struct {
	Storage  compaction.StorageConfig
	Manager  compaction.SegmentManager
	Pool     *executor.Pool
	Interval time.Duration

	backlog  *ringBuffer
	stopChan chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool
}

// New creates a Scheduler. A zero Interval defaults to DefaultInterval.
func New(storage compaction.StorageConfig, mgr compaction.SegmentManager, pool *executor.Pool) *Scheduler {
	return &Scheduler{
		Storage:  storage,
		Manager:  mgr,
		Pool:     pool,
		Interval: DefaultInterval,
		backlog:  newRingBuffer(256),
		stopChan: make(chan struct{}),
	}
}

// Start begins the background ticking loop.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true

	s.wg.Add(1)
	go s.loop()
}

// Stop halts the ticking loop and waits for it to exit. It does not
// stop the executor pool, which the caller owns independently.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopChan)
	s.wg.Wait()
}

func (s *Scheduler) loop() {
	defer s.wg.Done()

	interval := s.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			s.drain()
			return
		case <-ticker.C:
			s.tick()
			s.drain()
		}
	}
}

// tick runs exactly one planning pass and enqueues its tasks onto the
// backlog ring buffer. Planning itself never suspends; only the drain
// step below may block on a full executor pool.
func (s *Scheduler) tick() {
	start := time.Now()
	tasks := compaction.BuildTasks(s.Storage, s.Manager)
	metrics.PlanningTicks.Inc()
	metrics.PlanningDuration.Observe(time.Since(start).Seconds())

	singleton, merged := 0, 0
	for i := range tasks {
		if len(tasks[i].Segments) == 1 {
			singleton++
		} else {
			merged++
		}
		if !s.backlog.write(&tasks[i]) {
			logger.Log.Warn("compaction backlog full, dropping task for segment {id}; it will reappear next tick", tasks[i].TargetID())
		}
	}
	metrics.GroupsFormed.WithLabelValues("singleton").Add(float64(singleton))
	metrics.GroupsFormed.WithLabelValues("merged").Add(float64(merged))

	logger.Log.Info("planning tick produced {count} tasks ({singleton} singleton, {merged} merged)", len(tasks), singleton, merged)
}

// drain hands every currently backlogged task to the executor pool.
func (s *Scheduler) drain() {
	for {
		task := s.backlog.read()
		if task == nil {
			return
		}
		s.Pool.Submit(*task)
	}
}
