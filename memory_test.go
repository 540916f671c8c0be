package regionbuf

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeapMemory(t *testing.T) {
	var mem HeapMemory
	for _, size := range []int{1, 7, 8, 12, 64, 1000} {
		block, err := mem.Alloc(size)
		require.NoError(t, err)
		assert.Len(t, block, size)
		assert.Zero(t, uintptr(unsafe.Pointer(&block[0]))%8, "block of %d bytes not aligned", size)
		mem.Free(block)
	}

	block, err := mem.Alloc(0)
	assert.NoError(t, err)
	assert.Empty(t, block)
}

func TestLimitMemory(t *testing.T) {
	mem := LimitMemory(HeapMemory{}, 100)

	a, err := mem.Alloc(64)
	require.NoError(t, err)

	_, err = mem.Alloc(64)
	assert.ErrorIs(t, err, ErrOutOfMemory)

	b, err := mem.Alloc(32)
	require.NoError(t, err)

	mem.Free(a)
	c, err := mem.Alloc(64)
	require.NoError(t, err)

	mem.Free(b)
	mem.Free(c)
	_, err = mem.Alloc(100)
	assert.NoError(t, err)
}

func TestLimitMemoryNoLimit(t *testing.T) {
	assert.Equal(t, HeapMemory{}, LimitMemory(HeapMemory{}, 0))
}

func TestFileMemory(t *testing.T) {
	base := filepath.Join(t.TempDir(), "store")
	mem := NewFileMemory(base)

	tab := New[int32](WithMemory(mem))
	a := tab.Allocate()
	b := tab.Allocate()
	require.NoError(t, tab.PushBack(a, 1))
	require.NoError(t, tab.InsertSlice(a, 1, []int32{2, 3}))
	require.NoError(t, tab.PushBack(b, 4))

	// The second growth (4 to 16 bytes) removed the first file
	path := mem.Path(tab.Store().block)
	require.NotEmpty(t, path)
	assert.Equal(t, base+".2.buf", path)
	_, err := os.Stat(base + ".1.buf")
	assert.ErrorIs(t, err, os.ErrNotExist)

	// Another process mapping the file sees the live bytes
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, data, tab.Store().CapBytes())
	assert.Equal(t, tab.Store().Bytes(), data[:len(tab.Store().Bytes())])

	assert.Empty(t, mem.Path(make([]byte, 4)))
	assert.Empty(t, mem.Path(nil))

	tab.Close()
	_, err = os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileMemoryBadPath(t *testing.T) {
	mem := NewFileMemory(filepath.Join(t.TempDir(), "missing", "store"))
	s := NewStore[int32](mem)
	err := s.Push(1)
	assert.ErrorIs(t, err, ErrOutOfMemory)
	assert.True(t, stderrors.Is(err, ErrOutOfMemory))
	assert.Contains(t, err.Error(), "growing store to 4 B")
	assert.Contains(t, fmt.Sprintf("%+v", err), "no such file or directory")
	assert.Zero(t, s.Len())

	tab := New[int32](WithMemory(mem))
	err = tab.PushBack(tab.Allocate(), 1)
	assert.True(t, stderrors.Is(err, ErrOutOfMemory))
	require.NoError(t, tab.Validate())
}
