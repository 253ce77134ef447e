package format

import (
	"fmt"
	"hash"
	"hash/crc32"
	"hash/crc64"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Checksum provides multiple checksum algorithms for entry integrity.
type Checksum interface {
	// Calculate returns the checksum of data.
	Calculate(data []byte) uint64
	// Verify checks if data matches the expected checksum.
	Verify(data []byte, expected uint64) bool
	// Name returns the algorithm name.
	Name() string
}

// ChecksumType represents different checksum algorithms.
type ChecksumType int

const (
	// ChecksumCRC32 is the CRC32 (IEEE) checksum algorithm.
	ChecksumCRC32 ChecksumType = iota
	// ChecksumCRC32C is the CRC32C (Castagnoli) checksum algorithm — hardware accelerated.
	ChecksumCRC32C
	// ChecksumCRC64 is the CRC64 (ISO) checksum algorithm.
	ChecksumCRC64
	// ChecksumXXHash3 is the XXHash64 non-cryptographic hash algorithm.
	ChecksumXXHash3
)

// checksumPool provides object pooling for hash instances.
var checksumPool = sync.Pool{
	New: func() interface{} {
		return &checksumState{
			crc32:  crc32.New(crc32.IEEETable),
			crc32c: crc32.New(crc32.MakeTable(crc32.Castagnoli)),
			crc64:  crc64.New(crc64.MakeTable(crc64.ISO)),
		}
	},
}

// checksumState holds reusable hash instances.
type checksumState struct {
	crc32  hash.Hash32
	crc32c hash.Hash32
	crc64  hash.Hash64
}

// CRC32Checksum implements CRC32 (IEEE) checksum.
type CRC32Checksum struct{}

// Calculate computes the CRC32 checksum of the given data.
func (c *CRC32Checksum) Calculate(data []byte) uint64 {
	state, ok := checksumPool.Get().(*checksumState)
	if !ok {
		panic("checksum pool returned invalid type")
	}
	defer checksumPool.Put(state)

	state.crc32.Reset()
	_, _ = state.crc32.Write(data)
	return uint64(state.crc32.Sum32())
}

// Verify checks if the data matches the expected CRC32 checksum.
func (c *CRC32Checksum) Verify(data []byte, expected uint64) bool {
	return c.Calculate(data) == expected
}

// Name returns the checksum algorithm name.
func (c *CRC32Checksum) Name() string { return "CRC32-IEEE" }

// CRC32CChecksum implements CRC32C (Castagnoli) checksum, hardware
// accelerated on modern CPUs.
type CRC32CChecksum struct{}

// Calculate computes the CRC32C checksum of the given data.
func (c *CRC32CChecksum) Calculate(data []byte) uint64 {
	state, ok := checksumPool.Get().(*checksumState)
	if !ok {
		panic("checksum pool returned invalid type")
	}
	defer checksumPool.Put(state)

	state.crc32c.Reset()
	_, _ = state.crc32c.Write(data)
	return uint64(state.crc32c.Sum32())
}

// Verify checks if the data matches the expected CRC32C checksum.
func (c *CRC32CChecksum) Verify(data []byte, expected uint64) bool {
	return c.Calculate(data) == expected
}

// Name returns the checksum algorithm name.
func (c *CRC32CChecksum) Name() string { return "CRC32C" }

// CRC64Checksum implements CRC64 (ISO) checksum.
type CRC64Checksum struct{}

// Calculate computes the CRC64 checksum of the given data.
func (c *CRC64Checksum) Calculate(data []byte) uint64 {
	state, ok := checksumPool.Get().(*checksumState)
	if !ok {
		panic("checksum pool returned invalid type")
	}
	defer checksumPool.Put(state)

	state.crc64.Reset()
	_, _ = state.crc64.Write(data)
	return state.crc64.Sum64()
}

// Verify checks if the data matches the expected CRC64 checksum.
func (c *CRC64Checksum) Verify(data []byte, expected uint64) bool {
	return c.Calculate(data) == expected
}

// Name returns the checksum algorithm name.
func (c *CRC64Checksum) Name() string { return "CRC64-ISO" }

// XXHash3Checksum implements xxHash, an extremely fast non-cryptographic
// hash, the default checksum for freshly rewritten segments.
type XXHash3Checksum struct{}

// Calculate computes the xxHash checksum of the given data.
func (c *XXHash3Checksum) Calculate(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Verify checks if the data matches the expected xxHash checksum.
func (c *XXHash3Checksum) Verify(data []byte, expected uint64) bool {
	return c.Calculate(data) == expected
}

// Name returns the checksum algorithm name.
func (c *XXHash3Checksum) Name() string { return "XXHash64" }

// NewChecksum creates a checksum calculator for the specified type.
func NewChecksum(typ ChecksumType) Checksum {
	switch typ {
	case ChecksumCRC32:
		return &CRC32Checksum{}
	case ChecksumCRC32C:
		return &CRC32CChecksum{}
	case ChecksumCRC64:
		return &CRC64Checksum{}
	case ChecksumXXHash3:
		return &XXHash3Checksum{}
	default:
		return &XXHash3Checksum{}
	}
}

// ChecksumError represents a checksum mismatch error.
type ChecksumError struct {
	Type     ChecksumType
	Expected uint64
	Actual   uint64
}

func (e *ChecksumError) Error() string {
	calculator := NewChecksum(e.Type)
	return fmt.Sprintf("checksum mismatch (%s): expected %x, got %x",
		calculator.Name(), e.Expected, e.Actual)
}
