// Package segment defines the read-only view of a log segment that the
// minor compaction planner consumes. The planner never mutates a segment
// directly; all rewriting is performed by an external executor against
// the descriptor this package exposes.
package segment

// Descriptor is the immutable identity of a logical segment. It is
// attached to every segment and carries the bookkeeping a rewrite needs
// to produce the next version of the same logical segment.
type Descriptor struct {
	// ID is the stable identifier of the logical segment; it never
	// changes across rewrites.
	ID string
	// Version is incremented each time the segment is rewritten by
	// minor compaction. Freshly created segments start at version 1.
	Version uint64
	// Index is the base (first intended) index of the segment.
	Index uint64
}

// Segment is the consumed contract for a single on-disk segment. All
// accessors are O(1); no mutation method is exposed because the planner
// only ever reads segment state.
type Segment interface {
	// Descriptor returns the segment's stable identity and version.
	Descriptor() Descriptor
	// FirstIndex returns the inclusive lower bound of indices ever
	// written to this segment (live or cleaned).
	FirstIndex() uint64
	// LastIndex returns the inclusive upper bound of indices ever
	// written to this segment (live or cleaned).
	LastIndex() uint64
	// Length returns the segment's slot capacity: the maximum number
	// of entries it can hold. This is a configuration-derived constant
	// shared by freshly created segments of the same tier.
	Length() int
	// Count returns the number of physically present entries. After a
	// successful rewrite, cleaned entries are gone and Count drops.
	Count() int
	// CleanCount returns the number of entries marked cleaned but not
	// yet physically removed.
	CleanCount() int
	// IsFull reports whether the segment has reached its slot capacity
	// and is sealed for appends.
	IsFull() bool
	// IsCompacted reports whether the segment has already been
	// rewritten at least once at its current version.
	IsCompacted() bool
}

// Static is a plain-data Segment implementation. It is the concrete type
// the segment manager and the planner's test doubles build; a real
// directory-backed segment (file format, mmap, etc.) is an external
// collaborator that need only satisfy the Segment interface above.
type Static struct {
	Desc        Descriptor
	First, Last uint64
	SlotLength  int
	Present     int
	Cleaned     int
	Full        bool
	Compacted   bool
}

var _ Segment = (*Static)(nil)

// Descriptor implements Segment.
func (s *Static) Descriptor() Descriptor { return s.Desc }

// FirstIndex implements Segment.
func (s *Static) FirstIndex() uint64 { return s.First }

// LastIndex implements Segment.
func (s *Static) LastIndex() uint64 { return s.Last }

// Length implements Segment.
func (s *Static) Length() int { return s.SlotLength }

// Count implements Segment.
func (s *Static) Count() int { return s.Present }

// CleanCount implements Segment.
func (s *Static) CleanCount() int { return s.Cleaned }

// IsFull implements Segment.
func (s *Static) IsFull() bool { return s.Full }

// IsCompacted implements Segment.
func (s *Static) IsCompacted() bool { return s.Compacted }
