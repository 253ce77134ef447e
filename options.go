package raftlog

import "github.com/raftlog/compactor/compaction"

// Option configures a Planner.
type Option func(*config) error

type config struct {
	storage compaction.StorageConfig
	manager compaction.SegmentManager
}

// WithStorage sets the storage configuration a Planner reads
// CompactionThreshold from.
func WithStorage(storage compaction.StorageConfig) Option {
	return func(c *config) error {
		c.storage = storage
		return nil
	}
}

// WithThreshold is a convenience over WithStorage for the common case of
// a fixed compaction threshold.
func WithThreshold(threshold float64) Option {
	return func(c *config) error {
		c.storage = compaction.FixedThreshold(threshold)
		return nil
	}
}

// WithManager sets the segment manager a Planner enumerates segments
// and the commit index from.
func WithManager(manager compaction.SegmentManager) Option {
	return func(c *config) error {
		c.manager = manager
		return nil
	}
}
