// Package scenarios implements concrete torture.Scenario fault
// injections against the compaction executor.
package scenarios

import (
	"errors"

	"github.com/raftlog/compactor/compaction"
	"github.com/raftlog/compactor/compaction/executor"
	"github.com/raftlog/compactor/format"
	"github.com/raftlog/compactor/segment"
)

// Corruption submits a task whose source segment cannot supply entries
// (no EntrySource), the condition that produces ErrCorruptSegment — a
// fatal failure the executor never retries.
type Corruption struct{}

// NewCorruption creates the corruption scenario.
func NewCorruption() *Corruption { return &Corruption{} }

// Name returns the scenario name.
func (c *Corruption) Name() string { return "Corruption" }

// Execute runs the scenario against exec.
func (c *Corruption) Execute(exec *executor.Executor) error {
	plain := &segment.Static{
		Desc: segment.Descriptor{ID: "corrupt-1", Version: 1},
		Full: true,
	}
	_, err := exec.Execute(compaction.Task{Segments: []segment.Segment{plain}})
	return err
}

// Wanted reports whether err is the expected fatal, unretried error.
func (c *Corruption) Wanted(err error) bool {
	return errors.Is(err, executor.ErrCorruptSegment)
}

// CleanRewrite submits an ordinary, fault-free task and expects it to
// succeed, the control scenario every torture run should pass trivially.
type CleanRewrite struct{}

// NewCleanRewrite creates the clean-rewrite control scenario.
func NewCleanRewrite() *CleanRewrite { return &CleanRewrite{} }

// Name returns the scenario name.
func (c *CleanRewrite) Name() string { return "CleanRewrite" }

// Execute runs the scenario against exec.
func (c *CleanRewrite) Execute(exec *executor.Executor) error {
	src := executor.NewMemorySegment(
		segment.Descriptor{ID: "clean-1", Version: 1, Index: 1}, 1, 10, 10, true,
		[]format.Entry{{Index: 1, Data: []byte("live")}},
	)
	_, err := exec.Execute(compaction.Task{Segments: []segment.Segment{src}})
	return err
}

// Wanted reports whether err is nil, as a fault-free rewrite should be.
func (c *CleanRewrite) Wanted(err error) bool { return err == nil }
