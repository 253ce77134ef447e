package raftlog

import (
	"testing"

	"github.com/raftlog/compactor/manager"
	"github.com/raftlog/compactor/segment"
)

func TestPlanner_PlanIsStatelessAcrossCalls(t *testing.T) {
	seg := &segment.Static{
		Desc:       segment.Descriptor{ID: "1", Version: 1, Index: 1},
		First:      1,
		Last:       100,
		SlotLength: 100,
		Present:    40,
		Full:       true,
	}
	mgr := manager.New(1000, seg)
	p, err := New(WithThreshold(0.5), WithManager(mgr))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	first := p.Plan()
	second := p.Plan()
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("Plan() = %d then %d tasks, want 1 then 1", len(first), len(second))
	}
}
