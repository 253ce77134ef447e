package compaction

import "github.com/raftlog/compactor/segment"

// Task is the opaque rewrite task descriptor the planner emits for each
// group: a reference to the segment manager the group was drawn from,
// plus the ordered list of segments to rewrite. It carries no behavior;
// an external executor (package compaction/executor) interprets it
// according to the rewrite task contract.
type Task struct {
	Manager  SegmentManager
	Segments []segment.Segment
}

func newTask(sm SegmentManager, segments []segment.Segment) Task {
	cp := make([]segment.Segment, len(segments))
	copy(cp, segments)
	return Task{Manager: sm, Segments: cp}
}

// FirstIndex returns the base index of the task's group, the key tasks
// are ordered by (ascending) when BuildTasks emits them.
func (t Task) FirstIndex() uint64 {
	if len(t.Segments) == 0 {
		return 0
	}
	return t.Segments[0].FirstIndex()
}

// TargetVersion returns the version the rewritten segment will carry:
// one past the version shared by every member of the group.
func (t Task) TargetVersion() uint64 {
	if len(t.Segments) == 0 {
		return 0
	}
	return t.Segments[0].Descriptor().Version + 1
}

// TargetID returns the stable identifier the rewritten segment will
// carry: the first group member's ID, per the rewrite task contract.
func (t Task) TargetID() string {
	if len(t.Segments) == 0 {
		return ""
	}
	return t.Segments[0].Descriptor().ID
}

// TargetCapacity returns the slot capacity the rewrite must allocate:
// large enough to hold the sum of live entries across the group, but
// never smaller than the largest length tier already represented in it.
func (t Task) TargetCapacity() int {
	total := 0
	maxLength := 0
	for _, s := range t.Segments {
		total += s.Count()
		if l := s.Length(); l > maxLength {
			maxLength = l
		}
	}
	if total > maxLength {
		return total
	}
	return maxLength
}
