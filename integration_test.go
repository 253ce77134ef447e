//go:build integration

package raftlog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/raftlog/compactor/compaction/executor"
	"github.com/raftlog/compactor/manager"
	"github.com/raftlog/compactor/segment"
)

// TestPlanAndExecuteEndToEnd drives a full cycle: plan a rewrite over a
// sparse/hot segment pair, hand the resulting tasks to a worker pool, and
// confirm the segment manager reflects the merged, rewritten result.
func TestPlanAndExecuteEndToEnd(t *testing.T) {
	segs := []segment.Segment{
		executor.NewMemorySegment(
			segment.Descriptor{ID: "seg-0001", Version: 1, Index: 1}, 1, 100, 100, true, nil,
		),
		executor.NewMemorySegment(
			segment.Descriptor{ID: "seg-0002", Version: 1, Index: 101}, 101, 200, 100, true, nil,
		),
	}
	mgr := manager.New(1000, segs...)

	planner, err := New(WithThreshold(0.5), WithManager(mgr))
	require.NoError(t, err)

	tasks := planner.Plan()
	require.Len(t, tasks, 1, "both zero-count segments are trivially cleanable and physically adjacent")

	pool := executor.NewPool(2, &executor.Executor{})
	pool.Start()
	defer pool.Stop()

	for _, task := range tasks {
		pool.Submit(task)
	}

	select {
	case result := <-pool.Results():
		require.NotNil(t, result.NewSegment)
		require.Equal(t, uint64(2), result.NewSegment.Descriptor().Version)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the pool to rewrite the planned task")
	}

	require.Len(t, mgr.Segments(), 1, "the manager should reflect the merged segment after the swap")
}
