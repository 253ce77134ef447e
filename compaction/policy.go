// Package compaction implements the minor compaction planner: the
// eligibility/cleanability policy (this file), the adjacent-segment
// grouping planner, and the rewrite task factory (planner.go, task.go).
package compaction

import "github.com/raftlog/compactor/segment"

// StorageConfig is the configuration capability the policy depends on.
type StorageConfig interface {
	// CompactionThreshold returns the positive real threshold a
	// segment's generational clean ratio must cross to be considered
	// hot. Typical default is 0.5.
	CompactionThreshold() float64
}

// FixedThreshold is the simplest StorageConfig: a constant threshold,
// the shape unit tests and the CLI's --threshold flag use.
type FixedThreshold float64

// CompactionThreshold implements StorageConfig.
func (f FixedThreshold) CompactionThreshold() float64 { return float64(f) }

// eligible reports whether a segment may be considered for compaction
// at all: it must either have already been compacted once, or be full
// and entirely within the committed prefix of the log.
func eligible(s segment.Segment, commitIndex uint64) bool {
	if s.IsCompacted() {
		return true
	}
	return s.IsFull() && s.LastIndex() <= commitIndex
}

// sparse reports whether a segment is nearly empty regardless of
// version, the fast path that lets merges proceed even when cleaning
// was minimal but few entries were ever appended.
func sparse(s segment.Segment) bool {
	return s.Count() < s.Length()/2
}

// ratio returns the fraction of a segment's present entries that have
// been cleaned. A segment with zero present entries is defined as
// trivially cleanable (ratio is never evaluated in that case — see
// cleanable below).
func ratio(s segment.Segment) float64 {
	return float64(s.CleanCount()) / float64(s.Count())
}

// hot applies the generational heuristic: a segment's effective
// threshold is the configured threshold divided by its version, so
// segments that have survived several compaction cycles without being
// reclaimed become easier to pick again.
func hot(s segment.Segment, threshold float64) bool {
	return ratio(s)*float64(s.Descriptor().Version) >= threshold
}

// cleanable reports whether an eligible segment is worth rewriting now.
// A segment with Count() == 0 carries no live data and is always
// cleanable, sidestepping the zero-denominator ratio computation.
func cleanable(s segment.Segment, commitIndex uint64, threshold float64) bool {
	if !eligible(s, commitIndex) {
		return false
	}
	if s.Count() == 0 {
		return true
	}
	return sparse(s) || hot(s, threshold)
}

// mergeFeasible reports whether candidate s may join the non-empty
// group whose most recently accepted member is last. Version and
// physical-adjacency compatibility are the caller's responsibility
// (checked before this function is consulted, see planner.go); this
// function only tests clause 4 of the merge-feasibility test: that the
// combined live entries strictly fit within the largest slot capacity
// already represented in the group — the candidate's own length does
// not widen that ceiling.
func mergeFeasible(groupCount, groupMaxLength int, last, s segment.Segment) bool {
	return groupCount+s.Count() < groupMaxLength
}

// neighborChainBroken reports whether s cannot be a physical neighbor of
// last: either they belong to different segment versions (crossing a
// version boundary would corrupt the generational heuristic), or their
// index ranges are not adjacent (crossing a gap would fabricate an
// incorrect physical neighbor relationship).
func neighborChainBroken(last, s segment.Segment) bool {
	if last.Descriptor().Version != s.Descriptor().Version {
		return true
	}
	return last.LastIndex()+1 != s.FirstIndex()
}
