// Package format implements the on-disk wire shape a rewritten segment
// is made of: a magic-prefixed, checksummed entry record per live index
// and a descriptor footer that marks the write complete. It exists to
// let compaction/executor exercise the rewrite task contract
// concretely; the full segment file format (compression, mmap indices,
// etc.) remains an external collaborator.
package format

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// MagicEntry identifies the start of an entry record.
	MagicEntry uint32 = 0x52414654 // "RAFT"
	// MagicFooter identifies a complete descriptor footer.
	MagicFooter uint32 = 0x464F4F54 // "FOOT"

	entryHeaderSize = 4 + 8 + 2 + 4 // magic + index + flags + length
	entryTrailerSize = 8            // checksum
)

// FlagCleaned marks an entry as tombstoned: present in the index range
// but physically omitted from the segment's payload.
const FlagCleaned uint16 = 1 << 0

// ErrTombstone is returned by Image.Read when the requested index falls
// within the segment's bounds but was omitted on rewrite: readers
// requesting an omitted index receive a tombstone sentinel, never an
// error that looks like corruption.
var ErrTombstone = errors.New("format: index is a cleaned tombstone")

// ErrIncompleteSegment is returned when a segment file ends without a
// valid descriptor footer. A partial write of a rewritten segment is
// discarded on recovery by detecting exactly this condition.
var ErrIncompleteSegment = errors.New("format: incomplete descriptor footer")

// Entry is a single live log entry as rewritten into a new segment.
type Entry struct {
	Index uint64
	Flags uint16
	Data  []byte
}

// Cleaned reports whether this entry is a tombstone marker rather than
// live payload.
func (e Entry) Cleaned() bool { return e.Flags&FlagCleaned != 0 }

// checksummer is the default checksum algorithm for freshly rewritten
// segments; xxHash64, chosen over CRC32 for rewrite throughput.
var checksummer Checksum = NewChecksum(ChecksumXXHash3)

// Marshal serializes an entry to bytes with a checksum trailer.
func (e Entry) Marshal() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, MagicEntry); err != nil {
		return nil, err
	}
	if err := binary.Write(buf, binary.LittleEndian, e.Index); err != nil {
		return nil, err
	}
	if err := binary.Write(buf, binary.LittleEndian, e.Flags); err != nil {
		return nil, err
	}
	// #nosec G115 - entry payloads are bounded well under 4GiB by the segment format
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(e.Data))); err != nil {
		return nil, err
	}
	if _, err := buf.Write(e.Data); err != nil {
		return nil, err
	}

	checksum := checksummer.Calculate(buf.Bytes())
	if err := binary.Write(buf, binary.LittleEndian, checksum); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalEntry reads one entry from the front of data, returning the
// entry and the number of bytes consumed.
func UnmarshalEntry(data []byte) (Entry, int, error) {
	if len(data) < entryHeaderSize+entryTrailerSize {
		return Entry{}, 0, fmt.Errorf("format: insufficient data for entry header")
	}

	magic := binary.LittleEndian.Uint32(data)
	if magic != MagicEntry {
		return Entry{}, 0, fmt.Errorf("format: invalid entry magic: %x", magic)
	}

	index := binary.LittleEndian.Uint64(data[4:12])
	flags := binary.LittleEndian.Uint16(data[12:14])
	length := binary.LittleEndian.Uint32(data[14:18])

	total := entryHeaderSize + int(length) + entryTrailerSize
	if len(data) < total {
		return Entry{}, 0, fmt.Errorf("format: truncated entry")
	}

	payload := data[18 : 18+length]
	expected := binary.LittleEndian.Uint64(data[18+length : total])
	if !checksummer.Verify(data[:18+length], expected) {
		return Entry{}, 0, &ChecksumError{
			Type:     ChecksumXXHash3,
			Expected: expected,
			Actual:   checksummer.Calculate(data[:18+length]),
		}
	}

	entryData := make([]byte, length)
	copy(entryData, payload)

	return Entry{Index: index, Flags: flags, Data: entryData}, total, nil
}

// Footer is the descriptor written once a rewrite has copied every
// live entry of its group. Its presence is what distinguishes a
// completed rewrite from a torn write.
type Footer struct {
	ID         string
	Version    uint64
	FirstIndex uint64
	LastIndex  uint64
	EntryCount uint32
}

// Marshal serializes the footer, ending with MagicFooter so a reader
// scanning from the end of the file can confirm completeness in O(1).
func (f Footer) Marshal() ([]byte, error) {
	buf := new(bytes.Buffer)
	idBytes := []byte(f.ID)
	// #nosec G115 - segment ids are short, bounded strings
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(idBytes))); err != nil {
		return nil, err
	}
	if _, err := buf.Write(idBytes); err != nil {
		return nil, err
	}
	for _, v := range []uint64{f.Version, f.FirstIndex, f.LastIndex} {
		if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
			return nil, err
		}
	}
	if err := binary.Write(buf, binary.LittleEndian, f.EntryCount); err != nil {
		return nil, err
	}
	if err := binary.Write(buf, binary.LittleEndian, MagicFooter); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalFooter reads a footer from the tail of data. It returns
// ErrIncompleteSegment if the trailing magic is missing or malformed,
// the condition recovery uses to discard a torn rewrite.
func UnmarshalFooter(data []byte) (Footer, error) {
	const fixedSize = 4 + 3*8 + 4 + 4 // id length + version/first/last + entry count + magic
	if len(data) < fixedSize {
		return Footer{}, ErrIncompleteSegment
	}
	if binary.LittleEndian.Uint32(data[len(data)-4:]) != MagicFooter {
		return Footer{}, ErrIncompleteSegment
	}

	// The id is variable-length, so the footer starts at the first offset
	// (scanning back from the tail) whose id-length prefix matches the
	// number of bytes left for the id.
	start := -1
	for idLen := 0; idLen <= len(data)-fixedSize; idLen++ {
		p := len(data) - fixedSize - idLen
		if uint64(binary.LittleEndian.Uint32(data[p:])) == uint64(idLen) {
			start = p
			break
		}
	}
	if start < 0 {
		return Footer{}, ErrIncompleteSegment
	}

	r := bytes.NewReader(data[start:])
	var idLen uint32
	if err := binary.Read(r, binary.LittleEndian, &idLen); err != nil {
		return Footer{}, ErrIncompleteSegment
	}
	idBytes := make([]byte, idLen)
	if _, err := r.Read(idBytes); err != nil {
		return Footer{}, ErrIncompleteSegment
	}

	var f Footer
	f.ID = string(idBytes)
	for _, dst := range []*uint64{&f.Version, &f.FirstIndex, &f.LastIndex} {
		if err := binary.Read(r, binary.LittleEndian, dst); err != nil {
			return Footer{}, ErrIncompleteSegment
		}
	}
	if err := binary.Read(r, binary.LittleEndian, &f.EntryCount); err != nil {
		return Footer{}, ErrIncompleteSegment
	}
	return f, nil
}
