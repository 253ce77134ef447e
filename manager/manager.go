// Package manager defines the segment-manager view the minor compaction
// planner consumes: an ordered enumeration of segments and the current
// Raft commit index. The real implementation lives in the surrounding
// storage engine (directory index, mmap'd descriptors, etc.); this
// package also ships an in-memory implementation used by tests and by
// the raftlogctl CLI's dry-run mode.
package manager

import (
	"sort"
	"sync"

	"github.com/raftlog/compactor/segment"
)

// SegmentManager is the capability the planner depends on. Both
// operations must return a consistent snapshot for the duration of one
// planning pass; callers guarantee no concurrent log truncation or
// segment sealing runs against the segments returned while a pass is in
// flight (see the module's concurrency model).
type SegmentManager interface {
	// Segments returns a finite, ordered sequence of all extant
	// segments, sorted by ascending FirstIndex.
	Segments() []segment.Segment
	// CommitIndex returns the highest Raft-committed log index known
	// locally.
	CommitIndex() uint64
}

// InMemory is a SegmentManager backed by a plain slice, the shape tests
// and the CLI's dry-run mode drive the planner with. It keeps segments
// sorted by FirstIndex on every mutation, mirroring the way a directory
// index would maintain its sorted listing.
type InMemory struct {
	mu          sync.RWMutex
	segments    []segment.Segment
	commitIndex uint64
}

var _ SegmentManager = (*InMemory)(nil)

// New creates an InMemory segment manager seeded with the given commit
// index and segments. Segments are sorted by FirstIndex immediately.
func New(commitIndex uint64, segments ...segment.Segment) *InMemory {
	m := &InMemory{commitIndex: commitIndex}
	m.segments = append(m.segments, segments...)
	m.sort()
	return m
}

func (m *InMemory) sort() {
	sort.Slice(m.segments, func(i, j int) bool {
		return m.segments[i].FirstIndex() < m.segments[j].FirstIndex()
	})
}

// Segments implements SegmentManager.
func (m *InMemory) Segments() []segment.Segment {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]segment.Segment, len(m.segments))
	copy(out, m.segments)
	return out
}

// CommitIndex implements SegmentManager.
func (m *InMemory) CommitIndex() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.commitIndex
}

// SetCommitIndex advances the known commit index. It never moves
// backwards, matching Raft's monotonic commit guarantee.
func (m *InMemory) SetCommitIndex(idx uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if idx > m.commitIndex {
		m.commitIndex = idx
	}
}

// Add inserts a segment and keeps the manager's listing sorted.
func (m *InMemory) Add(s segment.Segment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.segments = append(m.segments, s)
	m.sort()
}

// Replace swaps the segments in oldGroup for newSeg, the atomic
// rewrite-result swap an executor performs at task-contract step 3. It
// is a no-op for any member of oldGroup that is not currently present.
func (m *InMemory) Replace(oldGroup []segment.Segment, newSeg segment.Segment) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stale := make(map[segment.Segment]bool, len(oldGroup))
	for _, s := range oldGroup {
		stale[s] = true
	}

	kept := m.segments[:0:0]
	for _, s := range m.segments {
		if !stale[s] {
			kept = append(kept, s)
		}
	}
	m.segments = append(kept, newSeg)
	m.sort()
}
