package regionbuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandle(t *testing.T) {
	tab := New[vec2]()
	h := tab.NewHandle()
	defer h.Release()

	require.NoError(t, h.PushBack(vec2{1, 1}))
	require.NoError(t, h.PushBack(vec2{3, 3}))
	require.NoError(t, h.Insert(1, vec2{2, 2}))
	require.NoError(t, h.InsertSlice(0, []vec2{{0, 0}}))
	assert.Equal(t, 4, h.Len())
	assert.Equal(t, []vec2{{0, 0}, {1, 1}, {2, 2}, {3, 3}}, h.Values())

	v, err := h.At(2)
	require.NoError(t, err)
	assert.Equal(t, vec2{2, 2}, v)

	require.NoError(t, h.Set(2, vec2{5, 5}))
	v, ok := h.PopBack()
	assert.True(t, ok)
	assert.Equal(t, vec2{3, 3}, v)

	require.NoError(t, h.EraseAt(0, 1))
	assert.Equal(t, []vec2{{1, 1}, {5, 5}}, h.Values())

	_, err = h.At(2)
	assert.ErrorIs(t, err, ErrInvalidOffset)

	h.Clear()
	assert.Zero(t, h.Len())
	assert.True(t, tab.Contains(h.ID()))
}

func TestHandleReleaseOnce(t *testing.T) {
	tab := New[int32]()
	first := tab.NewHandle()
	second := tab.NewHandle()
	require.NoError(t, first.InsertSlice(0, []int32{1, 2}))
	require.NoError(t, second.InsertSlice(0, []int32{3}))

	// other code holds only the id
	id := first.ID()
	assert.Equal(t, 2, second.ByteOffset()/tab.Store().ElemSize())

	first.Release()
	assert.Zero(t, first.ID())
	assert.False(t, tab.Contains(id))
	assert.Zero(t, second.ByteOffset())

	// releasing again and using the stale id are both harmless
	first.Release()
	assert.NoError(t, tab.PushBack(id, 9))
	assert.NoError(t, first.PushBack(9))
	assert.Zero(t, first.Len())
	assert.Equal(t, []int32{3}, tab.Store().ReadAll())
	assert.Equal(t, []RegionID{second.ID()}, tab.Regions())

	second.Release()
	assert.Zero(t, tab.Len())
	assert.Zero(t, tab.Store().Len())
	require.NoError(t, tab.Validate())
}

func TestLabeledHandle(t *testing.T) {
	tab := New[int32]()
	h := tab.NewLabeledHandle("trace-17/vertices")
	assert.Equal(t, "trace-17/vertices", h.Label())

	id, ok := tab.Lookup("trace-17/vertices")
	assert.True(t, ok)
	assert.Equal(t, h.ID(), id)

	h.Release()
	_, ok = tab.Lookup("trace-17/vertices")
	assert.False(t, ok)
	assert.Empty(t, h.Label())
}
