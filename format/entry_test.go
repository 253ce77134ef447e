package format

import (
	"bytes"
	"testing"
)

func TestEntry_MarshalUnmarshalRoundTrip(t *testing.T) {
	e := Entry{Index: 42, Flags: 0, Data: []byte("payload")}

	b, err := e.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	got, n, err := UnmarshalEntry(b)
	if err != nil {
		t.Fatalf("UnmarshalEntry() error = %v", err)
	}
	if n != len(b) {
		t.Errorf("UnmarshalEntry() consumed %d bytes, want %d", n, len(b))
	}
	if got.Index != e.Index || !bytes.Equal(got.Data, e.Data) {
		t.Errorf("UnmarshalEntry() = %+v, want %+v", got, e)
	}
}

func TestEntry_Cleaned(t *testing.T) {
	live := Entry{Flags: 0}
	if live.Cleaned() {
		t.Error("Cleaned() = true for an entry without FlagCleaned")
	}
	tombstone := Entry{Flags: FlagCleaned}
	if !tombstone.Cleaned() {
		t.Error("Cleaned() = false for an entry with FlagCleaned set")
	}
}

func TestUnmarshalEntry_ChecksumMismatch(t *testing.T) {
	e := Entry{Index: 1, Data: []byte("abc")}
	b, err := e.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	b[len(b)-1] ^= 0xFF // corrupt the checksum trailer

	_, _, err = UnmarshalEntry(b)
	if err == nil {
		t.Fatal("expected checksum error for corrupted entry, got nil")
	}
	if _, ok := err.(*ChecksumError); !ok {
		t.Errorf("expected *ChecksumError, got %T", err)
	}
}

func TestFooter_MarshalUnmarshalRoundTrip(t *testing.T) {
	f := Footer{ID: "seg-1", Version: 3, FirstIndex: 1, LastIndex: 100, EntryCount: 70}

	b, err := f.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	got, err := UnmarshalFooter(b)
	if err != nil {
		t.Fatalf("UnmarshalFooter() error = %v", err)
	}
	if got != f {
		t.Errorf("UnmarshalFooter() = %+v, want %+v", got, f)
	}
}

func TestUnmarshalFooter_IncompleteSegment(t *testing.T) {
	f := Footer{ID: "seg-1", Version: 1, FirstIndex: 1, LastIndex: 100, EntryCount: 1}
	b, err := f.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	torn := b[:len(b)-2] // truncate before the trailing magic completes

	_, err = UnmarshalFooter(torn)
	if err != ErrIncompleteSegment {
		t.Errorf("UnmarshalFooter() error = %v, want ErrIncompleteSegment", err)
	}
}

func TestImage_ReadLiveTombstoneAndOutOfBounds(t *testing.T) {
	entries := []Entry{
		{Index: 1, Data: []byte("a")},
		{Index: 3, Data: []byte("c")},
	}
	footer := Footer{ID: "seg-1", Version: 1, FirstIndex: 1, LastIndex: 3, EntryCount: uint32(len(entries))}

	data, err := WriteImage(entries, footer)
	if err != nil {
		t.Fatalf("WriteImage() error = %v", err)
	}

	img, err := ReadImage(data)
	if err != nil {
		t.Fatalf("ReadImage() error = %v", err)
	}

	if e, err := img.Read(1); err != nil || string(e.Data) != "a" {
		t.Errorf("Read(1) = %+v, %v; want live entry 'a'", e, err)
	}
	if _, err := img.Read(2); err != ErrTombstone {
		t.Errorf("Read(2) error = %v, want ErrTombstone", err)
	}
	if _, err := img.Read(99); err == nil {
		t.Error("Read(99) expected an out-of-bounds error, got nil")
	}

	if got := len(img.Entries()); got != 2 {
		t.Errorf("Entries() len = %d, want 2", got)
	}
}

func TestReadImage_IncompleteSegmentIsDiscarded(t *testing.T) {
	entries := []Entry{{Index: 1, Data: []byte("a")}}
	footer := Footer{ID: "seg-1", Version: 1, FirstIndex: 1, LastIndex: 1, EntryCount: 1}
	data, err := WriteImage(entries, footer)
	if err != nil {
		t.Fatalf("WriteImage() error = %v", err)
	}

	torn := data[:len(data)-1]
	if _, err := ReadImage(torn); err != ErrIncompleteSegment {
		t.Errorf("ReadImage() error = %v, want ErrIncompleteSegment", err)
	}
}

func TestWriteImage_SkipsNoEntries(t *testing.T) {
	footer := Footer{ID: "empty", Version: 1, EntryCount: 0}
	data, err := WriteImage(nil, footer)
	if err != nil {
		t.Fatalf("WriteImage() error = %v", err)
	}

	img, err := ReadImage(data)
	if err != nil {
		t.Fatalf("ReadImage() error = %v", err)
	}
	if len(img.Entries()) != 0 {
		t.Errorf("Entries() len = %d, want 0", len(img.Entries()))
	}
}
