package regionbuf

import "github.com/cockroachdb/errors"

// Naive implementation of the same region operations, with one Go slice per
// region and no shared store. Really just intended to compare against.
type Naive[T any] struct {
	regions map[RegionID][]T
	order   []RegionID
	lastID  RegionID
}

// NewNaive creates a new, basic implementation of the region table
func NewNaive[T any]() *Naive[T] {
	return &Naive[T]{regions: make(map[RegionID][]T)}
}

// Allocate creates an empty region
func (n *Naive[T]) Allocate() RegionID {
	n.lastID++
	n.regions[n.lastID] = []T{}
	n.order = append(n.order, n.lastID)
	return n.lastID
}

// Release forgets the region
func (n *Naive[T]) Release(id RegionID) {
	if _, ok := n.regions[id]; !ok {
		return
	}
	delete(n.regions, id)
	for i, o := range n.order {
		if o == id {
			n.order = append(n.order[:i], n.order[i+1:]...)
			break
		}
	}
}

// InsertSlice inserts vs at local offset local
func (n *Naive[T]) InsertSlice(id RegionID, local int, vs []T) error {
	r, ok := n.regions[id]
	if !ok {
		return nil
	}
	if local < 0 || local > len(r) {
		return errors.Wrapf(ErrInvalidOffset, "region %d: insert at %d, size %d", id, local, len(r))
	}
	out := make([]T, 0, len(r)+len(vs))
	out = append(out, r[:local]...)
	out = append(out, vs...)
	out = append(out, r[local:]...)
	n.regions[id] = out
	return nil
}

// EraseAt removes up to count elements from local offset local
func (n *Naive[T]) EraseAt(id RegionID, local, count int) error {
	r, ok := n.regions[id]
	if !ok {
		return nil
	}
	if local < 0 || local > len(r) {
		return errors.Wrapf(ErrInvalidOffset, "region %d: erase at %d, size %d", id, local, len(r))
	}
	if count > len(r)-local {
		count = len(r) - local
	}
	if count <= 0 {
		return nil
	}
	n.regions[id] = append(r[:local:local], r[local+count:]...)
	return nil
}

// SizeOf returns the number of elements in the region
func (n *Naive[T]) SizeOf(id RegionID) int {
	return len(n.regions[id])
}

// BeginOf returns where the region would start if all regions were laid out
// one after another in creation order
func (n *Naive[T]) BeginOf(id RegionID) int {
	begin := 0
	for _, o := range n.order {
		if o == id {
			return begin
		}
		begin += len(n.regions[o])
	}
	return 0
}

// Values returns a copy of the region's elements
func (n *Naive[T]) Values(id RegionID) []T {
	r, ok := n.regions[id]
	if !ok {
		return nil
	}
	return append([]T{}, r...)
}

// Regions returns the live regions in creation order
func (n *Naive[T]) Regions() []RegionID {
	return append([]RegionID{}, n.order...)
}
