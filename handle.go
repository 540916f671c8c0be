package regionbuf

// Handle owns one region of a Table. It is the only thing that releases the
// region; anything else that needs to refer to the region should hold the
// RegionID from ID, which can be copied freely and simply stops naming a live
// region once the handle is released.
//
// Handles come only from Table.NewHandle and Table.NewLabeledHandle. Call
// Release when done with the region, typically with defer.
type Handle[T any] struct {
	table *Table[T]
	id    RegionID
}

// NewHandle allocates a region and returns the handle that owns it
func (t *Table[T]) NewHandle() *Handle[T] {
	return &Handle[T]{table: t, id: t.Allocate()}
}

// NewLabeledHandle allocates a labelled region and returns the handle that
// owns it
func (t *Table[T]) NewLabeledHandle(label string) *Handle[T] {
	return &Handle[T]{table: t, id: t.AllocateLabeled(label)}
}

// ID returns the id of the region. It is 0 once the handle is released.
func (h *Handle[T]) ID() RegionID { return h.id }

// Release releases the region. Only the first call has any effect.
func (h *Handle[T]) Release() {
	if h.id == 0 {
		return
	}
	h.table.Release(h.id)
	h.id = 0
}

// Len returns the number of elements in the region
func (h *Handle[T]) Len() int { return h.table.SizeOf(h.id) }

// ByteOffset returns the region's current offset in bytes within the store
func (h *Handle[T]) ByteOffset() int { return h.table.ByteOffsetOf(h.id) }

// Label returns the region's label
func (h *Handle[T]) Label() string { return h.table.Label(h.id) }

// Insert inserts v at offset i within the region
func (h *Handle[T]) Insert(i int, v T) error { return h.table.Insert(h.id, i, v) }

// InsertSlice inserts vs at offset i within the region
func (h *Handle[T]) InsertSlice(i int, vs []T) error { return h.table.InsertSlice(h.id, i, vs) }

// PushBack appends v to the region
func (h *Handle[T]) PushBack(v T) error { return h.table.PushBack(h.id, v) }

// PopBack removes and returns the region's last element
func (h *Handle[T]) PopBack() (T, bool) { return h.table.PopBack(h.id) }

// EraseAt removes count elements starting at offset i within the region
func (h *Handle[T]) EraseAt(i, count int) error { return h.table.EraseAt(h.id, i, count) }

// Clear erases all the region's elements, keeping the region
func (h *Handle[T]) Clear() { h.table.Clear(h.id) }

// At returns the element at offset i within the region
func (h *Handle[T]) At(i int) (T, error) { return h.table.ValueAt(h.id, i) }

// Set overwrites the element at offset i within the region
func (h *Handle[T]) Set(i int, v T) error { return h.table.SetValueAt(h.id, i, v) }

// Values returns a copy of the region's elements
func (h *Handle[T]) Values() []T { return h.table.Values(h.id) }
