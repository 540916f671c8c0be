package regionbuf

import (
	"math"
	"math/bits"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
)

// Store is a growable contiguous block of fixed-size elements: the linear
// store that regions share. It knows nothing about regions.
//
// T must be a fixed-size type that contains no pointers. Elements are moved by
// raw copy and may live in memory the garbage collector never scans.
//
// Any mutating call may move the backing memory, so slices from Bytes and
// offsets computed before the call must not be used after it.
type Store[T any] struct {
	mem      Memory
	block    []byte
	elems    []T // view over block; len(elems) is the capacity
	length   int
	elemSize int
	metrics  *Metrics
}

// NewStore creates an empty store that takes its memory from mem. A nil mem
// means HeapMemory.
func NewStore[T any](mem Memory) *Store[T] {
	var zero T
	elemSize := int(unsafe.Sizeof(zero))
	if elemSize == 0 {
		panic("regionbuf: zero-size element type")
	}
	if mem == nil {
		mem = HeapMemory{}
	}
	return &Store[T]{mem: mem, elemSize: elemSize}
}

// Len returns the number of elements in use
func (s *Store[T]) Len() int { return s.length }

// Cap returns the number of elements the store can hold without growing
func (s *Store[T]) Cap() int { return len(s.elems) }

// ElemSize returns the size of one element in bytes
func (s *Store[T]) ElemSize() int { return s.elemSize }

// CapBytes returns the size of the backing block in bytes. It is always zero
// or a power of two.
func (s *Store[T]) CapBytes() int { return len(s.block) }

// Bytes returns the bytes of the elements in use. The slice aliases the store
// and is invalidated by the next mutating call.
func (s *Store[T]) Bytes() []byte {
	return s.block[:s.length*s.elemSize]
}

// Reserve makes sure the store can hold at least n elements. When it has to
// grow, the new block is the smallest power of two bytes that fits n elements.
// If the memory cannot be allocated the store is unchanged and the error
// matches ErrOutOfMemory.
func (s *Store[T]) Reserve(n int) error {
	if n <= len(s.elems) {
		return nil
	}
	if n > math.MaxInt/2/s.elemSize {
		return errors.Wrapf(ErrOutOfMemory, "%d elements of %d bytes", n, s.elemSize)
	}
	size := nextPowerOfTwo(n * s.elemSize)

	block, err := s.mem.Alloc(size)
	if err != nil {
		Logger().Warn("regionbuf: store allocation failed", "size", humanize.IBytes(uint64(size)), "err", err)
		if errors.Is(err, ErrOutOfMemory) {
			return errors.Wrapf(err, "growing store to %s", humanize.IBytes(uint64(size)))
		}
		return errors.WithSecondaryError(
			errors.Wrapf(ErrOutOfMemory, "growing store to %s", humanize.IBytes(uint64(size))), err)
	}
	if len(block) < size {
		s.mem.Free(block)
		return errors.Wrapf(ErrOutOfMemory, "memory returned %d bytes, asked for %d", len(block), size)
	}
	block = block[:size]

	elems := viewOf[T](block, s.elemSize)
	copy(elems, s.elems[:s.length])

	oldSize := len(s.block)
	if s.block != nil {
		s.mem.Free(s.block)
	}
	s.block, s.elems = block, elems

	Logger().Debug("regionbuf: store grown",
		"from", humanize.IBytes(uint64(oldSize)),
		"to", humanize.IBytes(uint64(size)),
		"elements", s.length)
	s.metrics.grown(size)
	return nil
}

// InsertAt inserts v at offset, moving the elements at and after offset up by
// one. offset must be in [0, Len()].
func (s *Store[T]) InsertAt(offset int, v T) error {
	vs := [1]T{v}
	return s.InsertSliceAt(offset, vs[:])
}

// InsertSliceAt inserts vs at offset, moving the elements at and after offset
// up by len(vs). Inserting at Len() appends without moving anything.
func (s *Store[T]) InsertSliceAt(offset int, vs []T) error {
	if offset < 0 || offset > s.length {
		return errors.Wrapf(ErrIndexOutOfRange, "insert at %d, length %d", offset, s.length)
	}
	k := len(vs)
	if k == 0 {
		return nil
	}
	if err := s.Reserve(s.length + k); err != nil {
		return err
	}
	if offset < s.length {
		copy(s.elems[offset+k:s.length+k], s.elems[offset:s.length])
	}
	copy(s.elems[offset:offset+k], vs)
	s.length += k
	s.metrics.setLength(s.length)
	return nil
}

// Push appends v
func (s *Store[T]) Push(v T) error {
	return s.InsertAt(s.length, v)
}

// Pop removes and returns the last element. ok is false if the store is empty.
func (s *Store[T]) Pop() (v T, ok bool) {
	if s.length == 0 {
		return v, false
	}
	s.length--
	v = s.elems[s.length]
	clear(s.elems[s.length : s.length+1])
	s.metrics.setLength(s.length)
	return v, true
}

// EraseAt removes count elements starting at offset and moves the following
// elements down. offset must be in [0, Len()]. count is clamped to the number
// of elements after offset, and a count of zero or less does nothing.
func (s *Store[T]) EraseAt(offset, count int) error {
	if offset < 0 || offset > s.length {
		return errors.Wrapf(ErrIndexOutOfRange, "erase at %d, length %d", offset, s.length)
	}
	if count > s.length-offset {
		count = s.length - offset
	}
	if count <= 0 {
		return nil
	}
	copy(s.elems[offset:], s.elems[offset+count:s.length])
	// Keep the unused tail zeroed so consumers that read the whole block see
	// nothing stale.
	clear(s.elems[s.length-count : s.length])
	s.length -= count
	s.metrics.setLength(s.length)
	return nil
}

// ValueAt returns the element at absolute index i
func (s *Store[T]) ValueAt(i int) (v T, err error) {
	if i < 0 || i >= s.length {
		return v, errors.Wrapf(ErrIndexOutOfRange, "index %d, length %d", i, s.length)
	}
	return s.elems[i], nil
}

// SetValueAt overwrites the element at absolute index i
func (s *Store[T]) SetValueAt(i int, v T) error {
	if i < 0 || i >= s.length {
		return errors.Wrapf(ErrIndexOutOfRange, "index %d, length %d", i, s.length)
	}
	s.elems[i] = v
	return nil
}

// ReadAll returns a copy of the elements in use
func (s *Store[T]) ReadAll() []T {
	out := make([]T, s.length)
	copy(out, s.elems[:s.length])
	return out
}

// Clear removes every element and gives the backing block back to the Memory.
// The store can be used again afterwards.
func (s *Store[T]) Clear() {
	if s.block != nil {
		s.mem.Free(s.block)
	}
	s.block, s.elems, s.length = nil, nil, 0
	s.metrics.cleared()
}

// slice returns the live elements in [begin, end). It aliases the store.
func (s *Store[T]) slice(begin, end int) []T {
	return s.elems[begin:end]
}

func viewOf[T any](block []byte, elemSize int) []T {
	if len(block) == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(block))), len(block)/elemSize)
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
