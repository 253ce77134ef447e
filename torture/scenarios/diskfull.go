package scenarios

import (
	"errors"

	"github.com/raftlog/compactor/compaction"
	"github.com/raftlog/compactor/compaction/executor"
	"github.com/raftlog/compactor/format"
	"github.com/raftlog/compactor/segment"
)

// DiskFull submits a task whose rewritten image necessarily exceeds the
// executor's MaxImageBytes budget, the condition that produces
// ErrInsufficientSpace — a recoverable failure that counts against the
// circuit breaker.
type DiskFull struct{}

// NewDiskFull creates the disk-full scenario.
func NewDiskFull() *DiskFull { return &DiskFull{} }

// Name returns the scenario name.
func (d *DiskFull) Name() string { return "DiskFull" }

// Execute runs the scenario against exec.
func (d *DiskFull) Execute(exec *executor.Executor) error {
	exec.MaxImageBytes = 1

	src := executor.NewMemorySegment(
		segment.Descriptor{ID: "full-1", Version: 1, Index: 1}, 1, 10, 10, true,
		[]format.Entry{{Index: 1, Data: []byte("payload far larger than the one-byte budget")}},
	)
	_, err := exec.Execute(compaction.Task{Segments: []segment.Segment{src}})
	return err
}

// Wanted reports whether err is the expected recoverable space error.
func (d *DiskFull) Wanted(err error) bool {
	return errors.Is(err, executor.ErrInsufficientSpace)
}

// BreakerTrips drives the same disk-full condition past the circuit
// breaker's failure threshold and expects the breaker to reject further
// task submissions outright, rather than attempt and fail each one.
type BreakerTrips struct {
	MaxFailures int32
}

// NewBreakerTrips creates the breaker-trip scenario.
func NewBreakerTrips() *BreakerTrips {
	return &BreakerTrips{MaxFailures: 2}
}

// Name returns the scenario name.
func (b *BreakerTrips) Name() string { return "BreakerTrips" }

// Execute runs the scenario against exec, overriding its breaker with a
// low failure threshold so the scenario completes quickly.
func (b *BreakerTrips) Execute(exec *executor.Executor) error {
	exec.Breaker = executor.NewCircuitBreaker(executor.CircuitBreakerConfig{MaxFailures: b.MaxFailures})
	exec.MaxImageBytes = 1

	src := executor.NewMemorySegment(
		segment.Descriptor{ID: "full-2", Version: 1, Index: 1}, 1, 10, 10, true,
		[]format.Entry{{Index: 1, Data: []byte("payload far larger than the one-byte budget")}},
	)

	var lastErr error
	for i := int32(0); i < b.MaxFailures+1; i++ {
		_, lastErr = exec.Execute(compaction.Task{Segments: []segment.Segment{src}})
	}
	return lastErr
}

// Wanted reports whether the breaker rejected the final call outright:
// once open, Execute no longer returns ErrInsufficientSpace, it returns
// the breaker's own "is open" error instead.
func (b *BreakerTrips) Wanted(err error) bool {
	return err != nil && !errors.Is(err, executor.ErrInsufficientSpace)
}
