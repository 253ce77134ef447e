package compaction

import (
	"github.com/raftlog/compactor/internal/metrics"
	"github.com/raftlog/compactor/segment"
)

// Group is an adjacent run of cleanable segments that share a version
// and may be rewritten together into a single new segment. A Group of
// one segment is rewritten in place; no merge occurs.
type Group struct {
	Segments []segment.Segment
}

func (g *Group) last() segment.Segment {
	return g.Segments[len(g.Segments)-1]
}

func (g *Group) totalCount() int {
	total := 0
	for _, s := range g.Segments {
		total += s.Count()
	}
	return total
}

func (g *Group) maxLength() int {
	max := 0
	for _, s := range g.Segments {
		if l := s.Length(); l > max {
			max = l
		}
	}
	return max
}

// canAccept reports whether s may be appended to g under the merge
// feasibility test: the combined live entry count (g's current total
// plus s's) must strictly fit within the largest slot capacity already
// represented in g — s's own length does not widen that ceiling.
func (g *Group) canAccept(s segment.Segment) bool {
	if len(g.Segments) == 0 {
		return false
	}
	return mergeFeasible(g.totalCount(), g.maxLength(), g.last(), s)
}

// BuildTasks is the planner's sole external operation. It enumerates
// segments via segmentManager, filters by eligibility and cleanability,
// folds the resulting stream into adjacent merge groups, and wraps each
// group into a rewrite task descriptor. It is a pure function of its
// inputs: the planner retains no state across invocations.
//
// If segmentManager returns a non-monotonic sequence (segments not
// sorted by ascending FirstIndex), the planner still produces correct,
// if conservative, output: every adjacency check simply fails and every
// cleanable segment becomes its own singleton group.
func BuildTasks(storage StorageConfig, segmentManager SegmentManager) []Task {
	commitIndex := segmentManager.CommitIndex()
	threshold := storage.CompactionThreshold()

	var groups []*Group
	var current *Group
	var prev segment.Segment

	flush := func() {
		if current != nil && len(current.Segments) > 0 {
			groups = append(groups, current)
		}
		current = nil
	}

	for _, s := range segmentManager.Segments() {
		if !eligible(s, commitIndex) {
			metrics.SegmentsConsidered.WithLabelValues("ineligible").Inc()
			continue
		}
		if !cleanable(s, commitIndex, threshold) {
			metrics.SegmentsConsidered.WithLabelValues("kept").Inc()
			continue
		}
		metrics.SegmentsConsidered.WithLabelValues("cleanable").Inc()

		switch {
		case current == nil:
			current = &Group{Segments: []segment.Segment{s}}
		case prev != nil && neighborChainBroken(prev, s):
			flush()
			current = &Group{Segments: []segment.Segment{s}}
		case current.canAccept(s):
			current.Segments = append(current.Segments, s)
		default:
			flush()
			current = &Group{Segments: []segment.Segment{s}}
		}

		prev = s
	}
	flush()

	tasks := make([]Task, 0, len(groups))
	for _, g := range groups {
		tasks = append(tasks, newTask(segmentManager, g.Segments))
	}
	return tasks
}

// SegmentManager is re-exported here (rather than imported from package
// manager) so that compaction has no dependency on the manager package's
// InMemory test double — only on the capability shape the planner
// actually consumes, per the polymorphism boundary in the design notes.
type SegmentManager interface {
	Segments() []segment.Segment
	CommitIndex() uint64
}
