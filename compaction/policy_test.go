package compaction

import (
	"testing"

	"github.com/raftlog/compactor/segment"
)

func mk(version uint64, first, last uint64, count, cleanCount int, full bool) *segment.Static {
	return &segment.Static{
		Desc:       segment.Descriptor{ID: "s", Version: version, Index: first},
		First:      first,
		Last:       last,
		SlotLength: 100,
		Present:    count,
		Cleaned:    cleanCount,
		Full:       full,
	}
}

func TestEligible(t *testing.T) {
	tests := []struct {
		name        string
		s           segment.Segment
		commitIndex uint64
		want        bool
	}{
		{"full and committed", mk(1, 1, 100, 100, 0, true), 1000, true},
		{"full but not yet committed", mk(1, 1, 100, 100, 0, true), 50, false},
		{"not full, not compacted", mk(1, 1, 100, 50, 0, false), 1000, false},
		{"compacted overrides fullness", &segment.Static{Compacted: true, Last: 9999}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := eligible(tt.s, tt.commitIndex); got != tt.want {
				t.Errorf("eligible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHot_GenerationalHeuristic(t *testing.T) {
	// version 1: ratio must reach threshold outright.
	v1 := mk(1, 1, 100, 100, 49, true)
	if hot(v1, 0.5) {
		t.Error("version-1 segment at ratio 0.49 should not be hot at threshold 0.5")
	}
	v1ok := mk(1, 1, 100, 100, 50, true)
	if !hot(v1ok, 0.5) {
		t.Error("version-1 segment at ratio 0.5 should be hot at threshold 0.5")
	}

	// version 4: effective bar is threshold/4.
	v4 := mk(4, 1, 100, 100, 13, true)
	if !hot(v4, 0.5) {
		t.Error("version-4 segment at ratio 0.13 (0.13*4=0.52) should be hot at threshold 0.5")
	}
}

func TestCleanable_ZeroCountAlwaysCleanable(t *testing.T) {
	s := mk(1, 1, 100, 0, 0, true)
	if !cleanable(s, 1000, 0.5) {
		t.Error("zero-count segment should always be cleanable once eligible")
	}
}

func TestCleanable_Sparse(t *testing.T) {
	s := mk(1, 1, 100, 40, 0, true) // 40 < 100/2
	if !cleanable(s, 1000, 0.9) {
		t.Error("sparse segment should be cleanable regardless of threshold")
	}
}

func TestMergeFeasible(t *testing.T) {
	a := mk(1, 1, 100, 40, 0, true)
	b := mk(1, 101, 200, 30, 0, true)
	if !mergeFeasible(a.Count(), a.Length(), a, b) {
		t.Error("40+30=70 should fit within max length 100")
	}

	c := mk(1, 1, 100, 60, 0, true)
	d := mk(1, 101, 200, 60, 0, true)
	if mergeFeasible(c.Count(), c.Length(), c, d) {
		t.Error("60+60=120 should not fit within max length 100")
	}

	// A candidate with a larger length tier than the group must not
	// widen the ceiling: the test is against the group's own max length.
	e := &segment.Static{Desc: segment.Descriptor{ID: "s", Version: 1, Index: 1}, First: 1, Last: 100, SlotLength: 100, Present: 10, Full: true}
	f := &segment.Static{Desc: segment.Descriptor{ID: "s", Version: 1, Index: 101}, First: 101, Last: 1100, SlotLength: 1000, Present: 95, Full: true}
	if mergeFeasible(e.Count(), e.Length(), e, f) {
		t.Error("10+95=105 should not fit within the group's own max length 100, regardless of candidate's larger length")
	}
}

func TestNeighborChainBroken(t *testing.T) {
	a := mk(1, 1, 100, 40, 0, true)
	bSameVersion := mk(1, 101, 200, 30, 0, true)
	if neighborChainBroken(a, bSameVersion) {
		t.Error("adjacent same-version segments should not break the chain")
	}

	bDiffVersion := mk(2, 101, 200, 30, 0, true)
	if !neighborChainBroken(a, bDiffVersion) {
		t.Error("version mismatch should break the chain")
	}

	bGap := mk(1, 200, 300, 30, 0, true)
	if !neighborChainBroken(a, bGap) {
		t.Error("index gap should break the chain")
	}
}
