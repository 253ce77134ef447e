// Package raftlog provides the minor log compaction planner for a
// Raft-based replicated log store: given a segment manager view and a
// storage configuration, it selects which sealed, committed segments
// are worth rewriting and groups adjacent ones for merging, without
// ever mutating the log itself. The planning algorithm lives in package
// compaction; the rewrite task contract lives in package
// compaction/executor.
package raftlog
