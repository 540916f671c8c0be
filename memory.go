package regionbuf

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
)

// Memory provides the raw blocks a Store grows into. Blocks must be at least
// 8 byte aligned. A Store only ever frees blocks it allocated from the same
// Memory.
type Memory interface {
	Alloc(size int) ([]byte, error)
	Free(block []byte)
}

// HeapMemory allocates blocks on the Go heap.
type HeapMemory struct{}

// Alloc returns a zeroed block of size bytes. Blocks are backed by uint64s so
// they are 8 byte aligned whatever the size.
func (HeapMemory) Alloc(size int) ([]byte, error) {
	if size <= 0 {
		return nil, nil
	}
	words := make([]uint64, (size+7)/8)
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(words))), size), nil
}

// Free is a no-op; the garbage collector reclaims heap blocks.
func (HeapMemory) Free([]byte) {}

// limitMemory refuses allocations that would take the total allocated from the
// underlying Memory above max bytes.
type limitMemory struct {
	mem   Memory
	max   int
	inUse int
}

// LimitMemory wraps mem so that at most maxBytes are allocated at any one
// time. Allocations beyond the budget fail with ErrOutOfMemory. maxBytes <= 0
// means no limit and returns mem unchanged.
func LimitMemory(mem Memory, maxBytes int) Memory {
	if maxBytes <= 0 {
		return mem
	}
	return &limitMemory{mem: mem, max: maxBytes}
}

func (l *limitMemory) Alloc(size int) ([]byte, error) {
	if l.inUse+size > l.max {
		return nil, errors.Wrapf(ErrOutOfMemory, "allocating %s would exceed limit of %s (%s in use)",
			humanize.IBytes(uint64(size)), humanize.IBytes(uint64(l.max)), humanize.IBytes(uint64(l.inUse)))
	}
	block, err := l.mem.Alloc(size)
	if err != nil {
		return nil, err
	}
	l.inUse += len(block)
	return block, nil
}

func (l *limitMemory) Free(block []byte) {
	l.inUse -= len(block)
	l.mem.Free(block)
}
