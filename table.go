// Package regionbuf lets many independent, variable-length sequences share one
// contiguous backing store.
//
// Each sequence is a region. Regions can be inserted into, erased from and
// grown independently, while the Table keeps the store packed and the
// position of every other region up to date. Code outside the table never
// tracks raw offsets; it holds a RegionID (or the single owning Handle) and
// asks the table for ByteOffsetOf when it needs to bind a sub-range of the
// store, for example as vertex data.
//
// Regions are laid out in creation order. When region R changes size by d
// elements, every region created after R moves by d. That costs O(live
// regions) per size change, which is fine while regions map to a modest number
// of application objects and the elements per region are many.
//
// Nothing here is safe for concurrent use; see Locked.
package regionbuf

import (
	"cmp"
	"slices"

	"github.com/cockroachdb/errors"
)

// RegionID identifies a region in a Table. IDs start at 1 and are never
// reused, so a stale ID can never name a newer region. The zero RegionID names
// no region.
type RegionID uint64

// region is the bookkeeping record for one region: the half-open range
// [begin, end) of store indices it occupies.
type region struct {
	id    RegionID
	begin int
	end   int
	label int32 // label sequence, 0 if unlabelled
}

func (r *region) size() int { return r.end - r.begin }

// Table partitions a Store into regions. Create it with New.
type Table[T any] struct {
	store   *Store[T]
	regions []*region // ordered by id, which is also the order of begin
	byID    map[RegionID]*region
	lastID  RegionID
	labels  labelIndex
	metrics *Metrics
}

// New creates an empty Table
func New[T any](opts ...Option) *Table[T] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	store := NewStore[T](o.memory)
	store.metrics = o.metrics
	if o.initialCapacity > 0 {
		// A failed reservation is not fatal: the store grows on demand later.
		if err := store.Reserve(o.initialCapacity); err != nil {
			Logger().Warn("regionbuf: initial reservation failed", "elements", o.initialCapacity, "err", err)
		}
	}

	return &Table[T]{
		store:   store,
		byID:    make(map[RegionID]*region),
		metrics: o.metrics,
	}
}

// Store returns the backing store. Callers may read it (Bytes, ElemSize, Cap)
// but must not mutate it directly.
func (t *Table[T]) Store() *Store[T] {
	return t.store
}

// Len returns the number of live regions
func (t *Table[T]) Len() int {
	return len(t.regions)
}

// Regions returns the ids of the live regions in layout order
func (t *Table[T]) Regions() []RegionID {
	ids := make([]RegionID, len(t.regions))
	for i, r := range t.regions {
		ids[i] = r.id
	}
	return ids
}

// Allocate creates an empty region at the end of the store and returns its id
func (t *Table[T]) Allocate() RegionID {
	t.lastID++
	r := &region{id: t.lastID, begin: t.store.Len(), end: t.store.Len()}
	t.regions = append(t.regions, r)
	t.byID[r.id] = r
	t.metrics.setRegions(len(t.regions))
	return r.id
}

// AllocateLabeled creates an empty region and binds label to it, so Lookup
// finds it. If label named another region, it now names the new one.
func (t *Table[T]) AllocateLabeled(label string) RegionID {
	id := t.Allocate()
	seq, _ := t.labels.sequence(label, true)
	t.byID[id].label = seq
	t.labels.bind(seq, id)
	return id
}

// Release erases every element of the region and forgets it. Releasing an id
// that is not live does nothing, so releasing twice is safe.
func (t *Table[T]) Release(id RegionID) {
	r, ok := t.byID[id]
	if !ok {
		Logger().Debug("regionbuf: release of unknown region", "region", uint64(id))
		return
	}
	// Erasing first moves every later region down, so removing the record
	// afterwards needs no further fix-up.
	_ = t.EraseAt(id, 0, r.size())

	i := t.position(id)
	t.regions = slices.Delete(t.regions, i, i+1)
	delete(t.byID, id)

	if r.label != 0 && t.labels.boundTo(r.label) == id {
		t.labels.bind(r.label, 0)
	}
	t.metrics.setRegions(len(t.regions))
}

// Contains reports whether id names a live region
func (t *Table[T]) Contains(id RegionID) bool {
	_, ok := t.byID[id]
	return ok
}

// SizeOf returns the number of elements in the region, or 0 if id is unknown
func (t *Table[T]) SizeOf(id RegionID) int {
	if r, ok := t.byID[id]; ok {
		return r.size()
	}
	return 0
}

// BeginOf returns the store index of the region's first element, or 0 if id is
// unknown
func (t *Table[T]) BeginOf(id RegionID) int {
	if r, ok := t.byID[id]; ok {
		return r.begin
	}
	return 0
}

// ByteOffsetOf returns the offset in bytes of the region within the store.
// Element k of the region starts at ByteOffsetOf(id) + k*Store().ElemSize().
// The offset changes whenever an earlier region changes size, so re-query it
// after any mutation of the table.
func (t *Table[T]) ByteOffsetOf(id RegionID) int {
	return t.BeginOf(id) * t.store.ElemSize()
}

// Insert inserts v at local offset local within the region. local must be in
// [0, SizeOf(id)]. Inserting into an unknown region does nothing.
func (t *Table[T]) Insert(id RegionID, local int, v T) error {
	vs := [1]T{v}
	return t.InsertSlice(id, local, vs[:])
}

// InsertSlice inserts vs at local offset local within the region
func (t *Table[T]) InsertSlice(id RegionID, local int, vs []T) error {
	r, ok := t.byID[id]
	if !ok {
		return nil
	}
	if local < 0 || local > r.size() {
		return errors.Wrapf(ErrInvalidOffset, "region %d: insert at %d, size %d", id, local, r.size())
	}
	if err := t.store.InsertSliceAt(r.begin+local, vs); err != nil {
		return err
	}
	t.resize(r, len(vs))
	return nil
}

// PushBack appends v to the region
func (t *Table[T]) PushBack(id RegionID, v T) error {
	r, ok := t.byID[id]
	if !ok {
		return nil
	}
	return t.Insert(id, r.size(), v)
}

// PopBack removes and returns the last element of the region. ok is false if
// the region is empty or unknown.
func (t *Table[T]) PopBack(id RegionID) (v T, ok bool) {
	r, found := t.byID[id]
	if !found || r.size() == 0 {
		return v, false
	}
	v = t.store.elems[r.end-1]
	if err := t.EraseAt(id, r.size()-1, 1); err != nil {
		return v, false
	}
	return v, true
}

// EraseAt removes count elements of the region starting at local offset local.
// local must be in [0, SizeOf(id)]; count is clamped to the elements that
// follow local and a clamped count of zero or less does nothing.
func (t *Table[T]) EraseAt(id RegionID, local, count int) error {
	r, ok := t.byID[id]
	if !ok {
		return nil
	}
	if local < 0 || local > r.size() {
		return errors.Wrapf(ErrInvalidOffset, "region %d: erase at %d, size %d", id, local, r.size())
	}
	if count > r.size()-local {
		count = r.size() - local
	}
	if count <= 0 {
		return nil
	}
	if err := t.store.EraseAt(r.begin+local, count); err != nil {
		return err
	}
	t.resize(r, -count)
	return nil
}

// Clear erases every element of the region. The region stays allocated.
func (t *Table[T]) Clear(id RegionID) {
	_ = t.EraseAt(id, 0, t.SizeOf(id))
}

// ValueAt returns the element at local offset local of the region
func (t *Table[T]) ValueAt(id RegionID, local int) (v T, err error) {
	r, ok := t.byID[id]
	if !ok {
		return v, errors.Wrapf(ErrUnknownRegion, "region %d", id)
	}
	if local < 0 || local >= r.size() {
		return v, errors.Wrapf(ErrInvalidOffset, "region %d: index %d, size %d", id, local, r.size())
	}
	return t.store.elems[r.begin+local], nil
}

// SetValueAt overwrites the element at local offset local of the region
func (t *Table[T]) SetValueAt(id RegionID, local int, v T) error {
	r, ok := t.byID[id]
	if !ok {
		return errors.Wrapf(ErrUnknownRegion, "region %d", id)
	}
	if local < 0 || local >= r.size() {
		return errors.Wrapf(ErrInvalidOffset, "region %d: index %d, size %d", id, local, r.size())
	}
	t.store.elems[r.begin+local] = v
	return nil
}

// Values returns a copy of the region's elements, or nil if id is unknown
func (t *Table[T]) Values(id RegionID) []T {
	r, ok := t.byID[id]
	if !ok {
		return nil
	}
	out := make([]T, r.size())
	copy(out, t.store.slice(r.begin, r.end))
	return out
}

// Label returns the label the region was allocated with, or ""
func (t *Table[T]) Label(id RegionID) string {
	r, ok := t.byID[id]
	if !ok {
		return ""
	}
	return t.labels.label(r.label)
}

// Lookup returns the live region label is bound to
func (t *Table[T]) Lookup(label string) (RegionID, bool) {
	seq, found := t.labels.sequence(label, false)
	if !found {
		return 0, false
	}
	id := t.labels.boundTo(seq)
	if !t.Contains(id) {
		return 0, false
	}
	return id, true
}

// Validate checks the table's invariants: regions are in id order, contiguous,
// disjoint and together cover exactly the elements in use in the store.
func (t *Table[T]) Validate() error {
	if len(t.byID) != len(t.regions) {
		return errors.Newf("%d regions in layout but %d indexed by id", len(t.regions), len(t.byID))
	}
	expected := 0
	for i, r := range t.regions {
		if i > 0 && r.id <= t.regions[i-1].id {
			return errors.Newf("region %d at position %d follows region %d", r.id, i, t.regions[i-1].id)
		}
		if t.byID[r.id] != r {
			return errors.Newf("region %d at position %d is not the indexed record", r.id, i)
		}
		if r.begin != expected {
			return errors.Newf("region %d begins at %d, expected %d", r.id, r.begin, expected)
		}
		if r.end < r.begin {
			return errors.Newf("region %d ends at %d before it begins at %d", r.id, r.end, r.begin)
		}
		expected = r.end
	}
	if expected != t.store.Len() {
		return errors.Newf("regions cover %d elements but the store holds %d", expected, t.store.Len())
	}
	return nil
}

// Close releases every region and gives the backing memory back. Region ids
// are not reused afterwards.
func (t *Table[T]) Close() {
	t.regions = nil
	clear(t.byID)
	t.labels = labelIndex{}
	t.store.Clear()
	t.metrics.setRegions(0)
}

// resize grows (or shrinks, for negative delta) region r by delta elements and
// moves every later region by the same amount.
func (t *Table[T]) resize(r *region, delta int) {
	r.end += delta
	i := t.position(r.id)
	later := t.regions[i+1:]
	for _, l := range later {
		l.begin += delta
		l.end += delta
	}
	t.metrics.addRebased(len(later))
}

// position returns the index of the live region id in t.regions
func (t *Table[T]) position(id RegionID) int {
	i, _ := slices.BinarySearchFunc(t.regions, id, func(r *region, id RegionID) int {
		return cmp.Compare(r.id, id)
	})
	return i
}
