package regionbuf

import (
	"flag"
	"math"

	"github.com/c2h5oh/datasize"
	"github.com/cockroachdb/errors"
)

// Config holds the settings for a Table that come from flags or a config file
type Config struct {
	// InitialCapacity is the number of elements reserved up front
	InitialCapacity int `yaml:"initial_capacity" json:"initial_capacity"`
	// MaxBytes caps the backing memory. Growth past it fails with
	// ErrOutOfMemory. 0 means no limit.
	MaxBytes datasize.ByteSize `yaml:"max_bytes" json:"max_bytes"`
}

// RegisterFlags registers the config flags with no prefix
func (cfg *Config) RegisterFlags(f *flag.FlagSet) {
	cfg.RegisterFlagsWithPrefix("", f)
}

// RegisterFlagsWithPrefix registers the config flags, each name prefixed with
// prefix
func (cfg *Config) RegisterFlagsWithPrefix(prefix string, f *flag.FlagSet) {
	f.IntVar(&cfg.InitialCapacity, prefix+"regionbuf.initial-capacity", 0, "Number of elements to reserve in the region store up front.")
	f.TextVar(&cfg.MaxBytes, prefix+"regionbuf.max-bytes", datasize.ByteSize(0), "Maximum size of the region store's backing memory. Example: 64MB, 1GB. 0 to disable.")
}

// Validate checks the config
func (cfg *Config) Validate() error {
	if cfg.InitialCapacity < 0 {
		return errors.Newf("initial capacity must not be negative, got %d", cfg.InitialCapacity)
	}
	if cfg.MaxBytes > 0 && cfg.MaxBytes.Bytes() > uint64(math.MaxInt) {
		return errors.Newf("max bytes %s is too large", cfg.MaxBytes.HumanReadable())
	}
	return nil
}

// NewFromConfig creates a Table from cfg. The memory limit wraps whatever
// Memory the options select (HeapMemory by default).
func NewFromConfig[T any](cfg Config, opts ...Option) (*Table[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid regionbuf config")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	all := append([]Option{}, opts...)
	all = append(all,
		WithMemory(LimitMemory(o.memory, int(cfg.MaxBytes.Bytes()))),
		WithInitialCapacity(cfg.InitialCapacity),
	)
	return New[T](all...), nil
}
