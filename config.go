package fixedseq

import (
	"io"

	"go.llib.dev/fixedseq/memkit"
	"go.llib.dev/frameless/pkg/env"
	"go.llib.dev/frameless/pkg/logging"
	"go.llib.dev/frameless/port/option"
)

// Config holds the settings of a Sequence.
// A Config is an Option itself, it replaces every setting applied before it.
type Config struct {
	// Logger receives the lifecycle events of a Sequence.
	// When nil, nothing is logged.
	Logger *logging.Logger
	// MemoryLimit is the maximum number of bytes the storage of a Sequence may claim.
	MemoryLimit int `env:"FIXEDSEQ_MEMORY_LIMIT" default:"1073741824"`
	// StrictIteration makes Iterator.Current fail with ErrConcurrentModification
	// when the Sequence was mutated since the last Iterator.First.
	StrictIteration bool `env:"FIXEDSEQ_STRICT_ITERATION" default:"false"`
}

func (c *Config) Init() {
	c.MemoryLimit = memkit.DefaultLimit
}

func (c Config) Configure(t *Config) { *t = c }

// Option configures a Sequence in New.
type Option option.Option[Config]

// WithLogger sets the Logger that receives the lifecycle events of the Sequence.
func WithLogger(l *logging.Logger) Option {
	return option.Func[Config](func(c *Config) {
		c.Logger = l
	})
}

// WithMemoryLimit caps the storage of the Sequence at n bytes.
func WithMemoryLimit(n int) Option {
	return option.Func[Config](func(c *Config) {
		c.MemoryLimit = n
	})
}

// WithStrictIteration makes iterators fail with ErrConcurrentModification
// when the Sequence is mutated during a traversal.
func WithStrictIteration() Option {
	return option.Func[Config](func(c *Config) {
		c.StrictIteration = true
	})
}

// LoadConfig reads the Config from the environment.
//
//	FIXEDSEQ_MEMORY_LIMIT      storage limit in bytes (default 1GiB)
//	FIXEDSEQ_STRICT_ITERATION  fail iterators on concurrent modification (default false)
func LoadConfig() (Config, error) {
	var c Config
	c.Init()
	if err := env.Load(&c); err != nil {
		return Config{}, err
	}
	return c, nil
}

var discardLogger = &logging.Logger{Out: io.Discard}

func (c Config) logger() *logging.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return discardLogger
}
