package raftlog

import (
	"github.com/raftlog/compactor/compaction"
	"github.com/raftlog/compactor/internal/logger"
)

// Planner is the public facade over the minor compaction planning
// algorithm. It is stateless across calls to Plan: each call runs
// BuildTasks fresh against the current segment manager and storage
// configuration, retaining nothing between invocations.
type Planner struct {
	storage compaction.StorageConfig
	manager compaction.SegmentManager
}

// New builds a Planner from the given options. Both WithStorage (or
// WithThreshold) and WithManager are required.
func New(opts ...Option) (*Planner, error) {
	var cfg config
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if cfg.storage == nil {
		return nil, ErrNoStorage
	}
	if cfg.manager == nil {
		return nil, ErrNoManager
	}
	return &Planner{storage: cfg.storage, manager: cfg.manager}, nil
}

// Plan runs one planning pass over the current segment manager and
// storage configuration, returning the rewrite tasks it produced.
func (p *Planner) Plan() []compaction.Task {
	tasks := compaction.BuildTasks(p.storage, p.manager)
	logger.Log.Debug("plan produced {count} rewrite tasks", len(tasks))
	return tasks
}
