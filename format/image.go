package format

import "fmt"

// WriteImage serializes a sequence of entries followed by a completing
// footer: the bytes an executor writes as the new version of a segment.
func WriteImage(entries []Entry, footer Footer) ([]byte, error) {
	var out []byte
	for _, e := range entries {
		b, err := e.Marshal()
		if err != nil {
			return nil, fmt.Errorf("format: marshal entry %d: %w", e.Index, err)
		}
		out = append(out, b...)
	}
	footerBytes, err := footer.Marshal()
	if err != nil {
		return nil, fmt.Errorf("format: marshal footer: %w", err)
	}
	return append(out, footerBytes...), nil
}

// Image is a parsed segment image: every live entry keyed by index, plus
// the footer that confirmed the write completed.
type Image struct {
	Footer  Footer
	entries map[uint64]Entry
}

// Entries returns every live entry in the image, in no particular
// order. Cleaned indices are omitted, as they are physically absent
// from the image.
func (img *Image) Entries() []Entry {
	out := make([]Entry, 0, len(img.entries))
	for _, e := range img.entries {
		out = append(out, e)
	}
	return out
}

// Read returns the live entry at index, or ErrTombstone if index falls
// within [Footer.FirstIndex, Footer.LastIndex] but was omitted on
// rewrite, or a not-found error if index is outside the segment's
// bounds entirely.
func (img *Image) Read(index uint64) (Entry, error) {
	if e, ok := img.entries[index]; ok {
		return e, nil
	}
	if index >= img.Footer.FirstIndex && index <= img.Footer.LastIndex {
		return Entry{}, ErrTombstone
	}
	return Entry{}, fmt.Errorf("format: index %d out of segment bounds", index)
}

// ReadImage parses a full segment image written by WriteImage. It
// returns ErrIncompleteSegment if no valid footer terminates the data,
// the signal recovery uses to discard a torn rewrite rather than
// surface its partial contents.
func ReadImage(data []byte) (*Image, error) {
	footer, err := UnmarshalFooter(data)
	if err != nil {
		return nil, err
	}

	entries := make(map[uint64]Entry, footer.EntryCount)
	offset := 0
	// The footer occupies the tail of data; entries occupy everything
	// before it, so scan until we've consumed exactly that prefix.
	footerBytes, err := footer.Marshal()
	if err != nil {
		return nil, err
	}
	entryRegion := data[:len(data)-len(footerBytes)]

	for offset < len(entryRegion) {
		e, n, err := UnmarshalEntry(entryRegion[offset:])
		if err != nil {
			return nil, fmt.Errorf("format: %w", err)
		}
		if !e.Cleaned() {
			entries[e.Index] = e
		}
		offset += n
	}

	return &Image{Footer: footer, entries: entries}, nil
}
