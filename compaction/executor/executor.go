// Package executor implements the rewrite task contract an external
// executor must honor when processing a compaction planner's Task:
// allocate a new segment version, copy live entries in index order,
// atomically swap it into the segment manager, and release the old
// segments. It is guarded by a CircuitBreaker so a backend that has
// started failing stops accepting new work until it recovers.
package executor

import (
	"errors"
	"fmt"

	"github.com/raftlog/compactor/compaction"
	"github.com/raftlog/compactor/format"
	"github.com/raftlog/compactor/internal/logger"
	"github.com/raftlog/compactor/internal/metrics"
	"github.com/raftlog/compactor/segment"
)

// Recoverable task-execution failure kinds: both are transient, so the
// scheduler simply reconsiders the segments on the next tick.
var (
	// ErrIOError indicates a transient I/O failure while rewriting.
	ErrIOError = errors.New("executor: io error")
	// ErrInsufficientSpace indicates the target volume lacked room for
	// the rewritten segment.
	ErrInsufficientSpace = errors.New("executor: insufficient space")
	// ErrCorruptSegment is the fatal kind: a source segment's live
	// entries could not be read back. It is not retried.
	ErrCorruptSegment = errors.New("executor: corrupt segment")
)

// EntrySource is the capability a real, file-backed segment exposes
// beyond the read-only segment.Segment contract: the entries (live and
// tombstoned) needed to actually rewrite it. The planner never needs
// this; only the executor does.
type EntrySource interface {
	Entries() []format.Entry
}

// Replacer is the capability a segment manager exposes to let the
// executor perform the atomic swap of step 3 of the rewrite contract.
type Replacer interface {
	Replace(oldGroup []segment.Segment, newSeg segment.Segment)
}

// Result reports the outcome of rewriting a single task.
type Result struct {
	Task           compaction.Task
	NewSegment     *MemorySegment
	BytesBefore    int
	BytesAfter     int
	BytesReclaimed int
}

// Executor rewrites compaction tasks according to the rewrite task
// contract. A Pool runs all of its workers against one shared Executor,
// since disjoint groups may run concurrently.
type Executor struct {
	// Breaker guards writes against a failing backend. A zero value
	// Executor constructs its own default breaker lazily.
	Breaker *CircuitBreaker
	// MaxImageBytes simulates the target volume's free space; a
	// rewrite whose serialized image would exceed it fails with
	// ErrInsufficientSpace. Zero means unlimited.
	MaxImageBytes int
}

func (e *Executor) breaker() *CircuitBreaker {
	if e.Breaker == nil {
		e.Breaker = NewCircuitBreaker(CircuitBreakerConfig{Name: "compaction-executor"})
	}
	return e.Breaker
}

// Execute performs the four rewrite-task-contract steps against task.
// Failures before step 3 leave the old group intact: Execute never
// mutates the manager on a non-nil error.
func (e *Executor) Execute(task compaction.Task) (Result, error) {
	if len(task.Segments) == 0 {
		return Result{}, fmt.Errorf("executor: empty task")
	}

	var live []format.Entry
	bytesBefore := 0

	for _, s := range task.Segments {
		src, ok := s.(EntrySource)
		if !ok {
			return Result{}, fmt.Errorf("%w: segment %s has no entry source", ErrCorruptSegment, s.Descriptor().ID)
		}
		for _, entry := range src.Entries() {
			bytesBefore += len(entry.Data)
			if entry.Cleaned() {
				continue
			}
			live = append(live, entry)
		}
	}

	footer := format.Footer{
		ID:         task.TargetID(),
		Version:    task.TargetVersion(),
		FirstIndex: task.Segments[0].FirstIndex(),
		LastIndex:  task.Segments[len(task.Segments)-1].LastIndex(),
		EntryCount: uint32(len(live)),
	}

	var image []byte
	err := e.breaker().Execute(func() error {
		var writeErr error
		image, writeErr = format.WriteImage(live, footer)
		if writeErr != nil {
			return fmt.Errorf("%w: %v", ErrIOError, writeErr)
		}
		if e.MaxImageBytes > 0 && len(image) > e.MaxImageBytes {
			return fmt.Errorf("%w: image %d bytes exceeds budget %d", ErrInsufficientSpace, len(image), e.MaxImageBytes)
		}
		return nil
	}, isTransient)
	metrics.CircuitBreakerState.Set(float64(e.breaker().GetState()))
	if err != nil {
		return Result{}, err
	}

	newSeg := &MemorySegment{
		Static: segment.Static{
			Desc: segment.Descriptor{
				ID:      footer.ID,
				Version: footer.Version,
				Index:   footer.FirstIndex,
			},
			First:      footer.FirstIndex,
			Last:       footer.LastIndex,
			SlotLength: task.TargetCapacity(),
			Present:    len(live),
			Cleaned:    0,
			Full:       true,
			Compacted:  true,
		},
	}
	newSeg.entries = make([]format.Entry, len(live))
	copy(newSeg.entries, live)

	if replacer, ok := task.Manager.(Replacer); ok {
		replacer.Replace(task.Segments, newSeg)
	}

	logger.Log.Info("rewrote segment group into {id} v{version}: {before} -> {after} bytes",
		footer.ID, footer.Version, bytesBefore, len(image))

	return Result{
		Task:           task,
		NewSegment:     newSeg,
		BytesBefore:    bytesBefore,
		BytesAfter:     len(image),
		BytesReclaimed: bytesBefore - len(image),
	}, nil
}

// isTransient reports whether err is one of the recoverable kinds that
// should count against the circuit breaker.
func isTransient(err error) bool {
	return errors.Is(err, ErrIOError) || errors.Is(err, ErrInsufficientSpace)
}

// MemorySegment is an in-memory, entry-bearing Segment used by the
// scheduler's worker pool, the CLI's dry-run mode, and tests: it
// satisfies both segment.Segment and EntrySource without requiring a
// real filesystem.
type MemorySegment struct {
	segment.Static
	entries []format.Entry
}

var _ segment.Segment = (*MemorySegment)(nil)
var _ EntrySource = (*MemorySegment)(nil)

// NewMemorySegment builds a MemorySegment whose Count/CleanCount are
// derived from entries, keeping the two in sync by construction.
func NewMemorySegment(desc segment.Descriptor, first, last uint64, length int, full bool, entries []format.Entry) *MemorySegment {
	cleaned := 0
	for _, e := range entries {
		if e.Cleaned() {
			cleaned++
		}
	}
	return &MemorySegment{
		Static: segment.Static{
			Desc:       desc,
			First:      first,
			Last:       last,
			SlotLength: length,
			Present:    len(entries),
			Cleaned:    cleaned,
			Full:       full,
			Compacted:  desc.Version > 1,
		},
		entries: entries,
	}
}

// Entries implements EntrySource.
func (m *MemorySegment) Entries() []format.Entry { return m.entries }
