package scheduler

import (
	"runtime"
	"sync/atomic"
	"unsafe"

	"github.com/raftlog/compactor/compaction"
)

// ringBuffer is a lock-free ring buffer holding pending rewrite tasks
// between planning ticks and the executor pool draining them, so a
// planning pass that outpaces the pool never blocks.
type ringBuffer struct {
	buffer   []*compaction.Task
	size     uint64
	mask     uint64
	padding1 [128]byte
	writePos uint64
	padding2 [128]byte
	readPos  uint64
	padding3 [128]byte
}

// newRingBuffer creates a ring buffer of the given size, rounded up to
// the next power of two.
func newRingBuffer(size int) *ringBuffer {
	actualSize := uint64(1)
	for actualSize < uint64(size) {
		actualSize <<= 1
	}

	return &ringBuffer{
		buffer: make([]*compaction.Task, actualSize),
		size:   actualSize,
		mask:   actualSize - 1,
	}
}

// write enqueues a task, returning false if the buffer is full.
func (rb *ringBuffer) write(task *compaction.Task) bool {
	for {
		writePos := atomic.LoadUint64(&rb.writePos)
		readPos := atomic.LoadUint64(&rb.readPos)

		if writePos-readPos >= rb.size {
			return false
		}

		if atomic.CompareAndSwapUint64(&rb.writePos, writePos, writePos+1) {
			index := writePos & rb.mask
			atomic.StorePointer(
				(*unsafe.Pointer)(unsafe.Pointer(&rb.buffer[index])),
				unsafe.Pointer(task),
			)
			return true
		}

		runtime.Gosched()
	}
}

// read dequeues the next pending task, or nil if the buffer is empty.
func (rb *ringBuffer) read() *compaction.Task {
	for {
		readPos := atomic.LoadUint64(&rb.readPos)
		writePos := atomic.LoadUint64(&rb.writePos)

		if readPos >= writePos {
			return nil
		}

		if atomic.CompareAndSwapUint64(&rb.readPos, readPos, readPos+1) {
			index := readPos & rb.mask
			task := (*compaction.Task)(atomic.LoadPointer(
				(*unsafe.Pointer)(unsafe.Pointer(&rb.buffer[index])),
			))
			atomic.StorePointer((*unsafe.Pointer)(unsafe.Pointer(&rb.buffer[index])), nil)
			return task
		}

		runtime.Gosched()
	}
}

// len reports the number of tasks currently queued.
func (rb *ringBuffer) len() int {
	writePos := atomic.LoadUint64(&rb.writePos)
	readPos := atomic.LoadUint64(&rb.readPos)
	return int(writePos - readPos)
}
