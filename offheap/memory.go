// Package offheap provides a regionbuf.Memory that keeps store blocks outside
// the Go heap.
//
// A store holding millions of vertices is a single large block. Off the heap
// it costs the garbage collector nothing, and its address is stable for as long
// as the block lives, which suits consumers that hand the memory to a device
// API.
package offheap

import (
	"reflect"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/philpearl/mmap"

	"github.com/philpearl/regionbuf"
)

// Memory allocates blocks with anonymous mmap. Blocks must be freed with
// Free; Store does so when it grows and on Clear, and Table on Close.
type Memory struct{}

var _ regionbuf.Memory = Memory{}

// Alloc maps a zeroed block of size bytes
func (Memory) Alloc(size int) ([]byte, error) {
	if size <= 0 {
		return nil, nil
	}
	slice, err := mmap.Alloc(1, size)
	if err != nil {
		return nil, errors.WithSecondaryError(errors.Wrapf(regionbuf.ErrOutOfMemory, "mapping %d bytes", size), err)
	}
	slice.Len = size
	return *(*[]byte)(unsafe.Pointer(&slice)), nil
}

// Free unmaps a block returned by Alloc
func (Memory) Free(block []byte) {
	if len(block) == 0 {
		return
	}
	block = block[:cap(block)]
	mmap.Free(*(*reflect.SliceHeader)(unsafe.Pointer(&block)), 1)
}
