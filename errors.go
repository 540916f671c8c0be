package regionbuf

import "github.com/cockroachdb/errors"

var (
	// ErrOutOfMemory is returned when the backing store cannot grow to the
	// capacity an operation needs. The store is left unchanged.
	ErrOutOfMemory = errors.New("regionbuf: out of memory")

	// ErrInvalidOffset is returned when a region-local offset lies outside the
	// region.
	ErrInvalidOffset = errors.New("regionbuf: invalid region offset")

	// ErrIndexOutOfRange is returned when an absolute store index lies outside
	// the store.
	ErrIndexOutOfRange = errors.New("regionbuf: index out of range")

	// ErrUnknownRegion is returned by value queries on a region id that is not
	// live. Mutations on unknown ids are no-ops instead.
	ErrUnknownRegion = errors.New("regionbuf: unknown region")
)
