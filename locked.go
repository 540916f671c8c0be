package regionbuf

import "sync"

// Locked is a Table guarded by a single mutex, for tables shared between
// goroutines. Every method holds the lock for its whole duration and never
// calls out to user code while holding it.
//
// Locked hands out RegionIDs rather than Handles; whoever allocated a region
// is responsible for releasing it.
type Locked[T any] struct {
	mu    sync.Mutex
	table *Table[T]
}

// NewLocked wraps t. t must not be used directly afterwards.
func NewLocked[T any](t *Table[T]) *Locked[T] {
	return &Locked[T]{table: t}
}

// Allocate creates an empty region at the end of the store
func (l *Locked[T]) Allocate() RegionID {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.table.Allocate()
}

// AllocateLabeled creates an empty region bound to label
func (l *Locked[T]) AllocateLabeled(label string) RegionID {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.table.AllocateLabeled(label)
}

// Release erases and forgets the region. Unknown ids are ignored.
func (l *Locked[T]) Release(id RegionID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.table.Release(id)
}

// Insert inserts v at local offset local within the region
func (l *Locked[T]) Insert(id RegionID, local int, v T) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.table.Insert(id, local, v)
}

// InsertSlice inserts vs at local offset local within the region
func (l *Locked[T]) InsertSlice(id RegionID, local int, vs []T) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.table.InsertSlice(id, local, vs)
}

// PushBack appends v to the region
func (l *Locked[T]) PushBack(id RegionID, v T) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.table.PushBack(id, v)
}

// PopBack removes and returns the last element of the region
func (l *Locked[T]) PopBack(id RegionID) (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.table.PopBack(id)
}

// EraseAt removes up to count elements of the region starting at local
func (l *Locked[T]) EraseAt(id RegionID, local, count int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.table.EraseAt(id, local, count)
}

// Clear erases every element of the region
func (l *Locked[T]) Clear(id RegionID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.table.Clear(id)
}

// SizeOf returns the number of elements in the region
func (l *Locked[T]) SizeOf(id RegionID) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.table.SizeOf(id)
}

// ByteOffsetOf returns the region's offset in bytes. It is stale as soon
// as the lock is dropped and another goroutine resizes an earlier region.
func (l *Locked[T]) ByteOffsetOf(id RegionID) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.table.ByteOffsetOf(id)
}

// ValueAt returns the element at local offset local of the region
func (l *Locked[T]) ValueAt(id RegionID, local int) (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.table.ValueAt(id, local)
}

// SetValueAt overwrites the element at local offset local of the region
func (l *Locked[T]) SetValueAt(id RegionID, local int, v T) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.table.SetValueAt(id, local, v)
}

// Values returns a copy of the region's elements
func (l *Locked[T]) Values(id RegionID) []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.table.Values(id)
}

// Lookup returns the live region label is bound to
func (l *Locked[T]) Lookup(label string) (RegionID, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.table.Lookup(label)
}

// Snapshot returns a copy of the live bytes of the store together with the
// byte offset of every live region, taken under one lock so offsets and bytes
// agree. This is what a renderer uploading the store to a device needs.
func (l *Locked[T]) Snapshot() (data []byte, offsets map[RegionID]int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	data = append([]byte(nil), l.table.store.Bytes()...)
	offsets = make(map[RegionID]int, len(l.table.regions))
	for _, r := range l.table.regions {
		offsets[r.id] = r.begin * l.table.store.ElemSize()
	}
	return data, offsets
}

// Validate checks the table's invariants
func (l *Locked[T]) Validate() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.table.Validate()
}

// Close releases every region and the backing memory
func (l *Locked[T]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.table.Close()
}
