package audiograph

import (
	"errors"
	"fmt"
	"log"

	"github.com/tphakala/go-audio-graph/internal/interp"
	"github.com/tphakala/go-audio-graph/internal/unit"
)

// Interpolation selects how a rate converter reads between input samples.
type Interpolation = interp.Kind

// Interpolation kinds.
const (
	// InterpNone reads the sample below the position. Cheapest, aliased.
	InterpNone = interp.None
	// InterpLinear blends the two neighbouring samples.
	InterpLinear = interp.Linear
	// InterpLagrange3 fits a cubic through four neighbours.
	InterpLagrange3 = interp.Lagrange3
)

// ParseInterpolation maps "none", "linear", "lagrange3" (or "cubic") to an
// Interpolation.
func ParseInterpolation(s string) (Interpolation, error) {
	k, err := interp.ParseKind(s)
	if err != nil {
		return InterpNone, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return k, nil
}

// Common errors returned by graph construction.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid graph configuration")

	// ErrNilUnit indicates a required unit argument was nil.
	ErrNilUnit = errors.New("nil unit")
)

// Config is the output format of a graph and the defaults its builders use.
type Config struct {
	// SampleRate is the graph output rate in Hz.
	SampleRate float64

	// BlockSize is the number of frames rendered per pull.
	BlockSize int

	// Interpolation is used by rate converters the builders insert.
	Interpolation Interpolation

	// Logger receives background task and reader diagnostics. Nil
	// discards them.
	Logger *log.Logger
}

// DefaultConfig returns 44.1 kHz, 512-frame blocks and linear
// interpolation.
func DefaultConfig() Config {
	return Config{
		SampleRate:    unit.DefaultSampleRate,
		BlockSize:     unit.DefaultBlockSize,
		Interpolation: InterpLinear,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !(c.SampleRate >= minSampleRate && c.SampleRate <= maxSampleRate) {
		return fmt.Errorf("%w: sample rate must be in [%v, %v], got %v",
			ErrInvalidConfig, minSampleRate, maxSampleRate, c.SampleRate)
	}

	if c.BlockSize < 1 || c.BlockSize > maxBlockSize {
		return fmt.Errorf("%w: block size must be in [1, %d], got %d", ErrInvalidConfig, maxBlockSize, c.BlockSize)
	}

	switch c.Interpolation {
	case InterpNone, InterpLinear, InterpLagrange3:
	default:
		return fmt.Errorf("%w: unknown interpolation %d", ErrInvalidConfig, int(c.Interpolation))
	}

	return nil
}

// unitOptions returns the output format as unit options.
func (c *Config) unitOptions() []unit.Option {
	return []unit.Option{
		unit.WithSampleRate(c.SampleRate),
		unit.WithBlockSize(c.BlockSize),
	}
}

// validated returns a copy of cfg, or DefaultConfig when cfg is nil, after
// validation.
func validated(cfg *Config) (Config, error) {
	if cfg == nil {
		return DefaultConfig(), nil
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return *cfg, nil
}
