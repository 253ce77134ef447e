package scheduler

import (
	"testing"
	"time"

	"github.com/raftlog/compactor/compaction"
	"github.com/raftlog/compactor/compaction/executor"
	"github.com/raftlog/compactor/manager"
	"github.com/raftlog/compactor/segment"
)

func TestScheduler_TickEnqueuesTasksForCleanableSegments(t *testing.T) {
	seg := &segment.Static{
		Desc:       segment.Descriptor{ID: "1", Version: 1, Index: 1},
		First:      1,
		Last:       100,
		SlotLength: 100,
		Present:    40,
		Full:       true,
	}
	mgr := manager.New(1000, seg)
	pool := executor.NewPool(1, &executor.Executor{})
	s := New(compaction.FixedThreshold(0.5), mgr, pool)

	s.tick()

	if s.backlog.len() != 1 {
		t.Fatalf("backlog.len() = %d, want 1 after a tick over one sparse segment", s.backlog.len())
	}
}

func TestScheduler_StartStopIsIdempotent(t *testing.T) {
	mgr := manager.New(0)
	pool := executor.NewPool(1, &executor.Executor{})
	pool.Start()
	defer pool.Stop()

	s := New(compaction.FixedThreshold(0.5), mgr, pool)
	s.Interval = 5 * time.Millisecond

	s.Start()
	s.Start() // second Start should be a no-op while already running
	time.Sleep(20 * time.Millisecond)
	s.Stop()
	s.Stop() // second Stop should be a no-op while already stopped
}
