package regionbuf

// Option configures a Table during creation.
//
// Example:
//
//	// Heap-backed table
//	t := regionbuf.New[Vec2]()
//
//	// Off-heap table with room for a million vertices up front
//	t := regionbuf.New[Vec2](
//		regionbuf.WithMemory(offheap.Memory{}),
//		regionbuf.WithInitialCapacity(1<<20),
//	)
type Option func(*options)

type options struct {
	memory          Memory
	metrics         *Metrics
	initialCapacity int
}

func defaultOptions() options {
	return options{
		memory: HeapMemory{},
	}
}

// WithMemory sets where the backing store takes its memory from
func WithMemory(mem Memory) Option {
	return func(o *options) {
		if mem != nil {
			o.memory = mem
		}
	}
}

// WithMetrics records table state in m
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithInitialCapacity reserves room for n elements when the table is created
func WithInitialCapacity(n int) Option {
	return func(o *options) {
		o.initialCapacity = n
	}
}
