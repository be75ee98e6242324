package unit

// Default processing settings.
const (
	DefaultSampleRate = 44100.0
	DefaultBlockSize  = 512
)

// Config holds the output format a unit renders at.
type Config struct {
	SampleRate float64
	BlockSize  int
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the default output format.
func DefaultConfig() Config {
	return Config{
		SampleRate: DefaultSampleRate,
		BlockSize:  DefaultBlockSize,
	}
}

// WithSampleRate sets the output sample rate. Non-positive values are ignored.
func WithSampleRate(sampleRate float64) Option {
	return func(cfg *Config) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the output block size. Non-positive values are ignored.
func WithBlockSize(blockSize int) Option {
	return func(cfg *Config) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
