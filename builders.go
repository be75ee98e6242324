package audiograph

import (
	"context"
	"fmt"
	"math"

	"github.com/tphakala/go-audio-graph/internal/delay"
	"github.com/tphakala/go-audio-graph/internal/fileplay"
	"github.com/tphakala/go-audio-graph/internal/resample"
	"github.com/tphakala/go-audio-graph/internal/task"
	"github.com/tphakala/go-audio-graph/internal/unit"
	"github.com/tphakala/go-audio-graph/internal/variable"
)

// Var is a value shared between control code and the graph.
type Var[T comparable] = variable.Var[T]

// NewVar returns a Var holding v.
func NewVar[T comparable](v T) *Var[T] {
	return variable.New(v)
}

// Constant returns a DC unit with one channel per value.
func Constant[F Float](values ...F) Unit[F] {
	return unit.NewConstant(values...)
}

// Control returns a mono DC unit that follows v, read once per block.
func Control[F Float](v *Var[float64]) Unit[F] {
	return unit.FromVariable[F](v)
}

// Sine returns a mono sine oscillator at the graph format.
func Sine[F Float](frequency, amplitude float64, cfg *Config) (Unit[F], error) {
	c, err := validated(cfg)
	if err != nil {
		return nil, err
	}
	return unit.NewSine[F](frequency, amplitude, c.unitOptions()...), nil
}

// Mixer returns a mixer summing its inputs at the graph format. With
// deleteWhenEmpty set it asks to be removed after its last input finishes.
func Mixer[F Float](numChannels int, deleteWhenEmpty bool, cfg *Config) (*unit.Mixer[F], error) {
	c, err := validated(cfg)
	if err != nil {
		return nil, err
	}
	return unit.NewMixer[F](numChannels, deleteWhenEmpty, c.unitOptions()...), nil
}

// Resample converts input to the graph rate and block size, scaling its
// playback speed by rate (nil plays at normal speed). An input already at
// the graph rate and block size with no rate control is returned as is.
func Resample[F Float](input, rate Unit[F], cfg *Config) (Unit[F], error) {
	if input == nil {
		return nil, fmt.Errorf("%w: resample input", ErrNilUnit)
	}
	c, err := validated(cfg)
	if err != nil {
		return nil, err
	}
	if !resample.Needed(input, rate, c.SampleRate) && input.BlockSize(0) == c.BlockSize {
		return input, nil
	}
	conv, err := resample.New(input, rate, c.Interpolation, c.unitOptions()...)
	if err != nil {
		return nil, fmt.Errorf("resample: %w", err)
	}
	return conv, nil
}

// Delay delays input by duration seconds, up to maxDuration. A nil duration
// means no delay until changed; it can be a Control for smooth sweeps.
func Delay[F Float](input, duration Unit[F], maxDuration float64, cfg *Config) (Unit[F], error) {
	c, err := validated(cfg)
	if err != nil {
		return nil, err
	}
	u, err := delay.NewUnit(input, duration, maxDuration, c.unitOptions()...)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// FilePlayer is a playing file: the player unit, optionally behind a
// multiply-add stage.
type FilePlayer[F Float] struct {
	Unit[F]
	player *fileplay.Player[F]
}

// Done returns the end-of-file flag, which turns true when a non-looping
// file has played out.
func (p *FilePlayer[F]) Done() *Var[bool] {
	return p.player.Done()
}

// Reader returns the file being played.
func (p *FilePlayer[F]) Reader() *Reader {
	return p.player.Reader()
}

// Close releases the file lease.
func (p *FilePlayer[F]) Close() error {
	return p.player.Close()
}

// FilePlay streams r at its own rate with cfg.BlockSize frames per block.
// loop >= 0.5 loops (nil loops forever). mul and add scale and offset the
// output; nil means 1 and 0. It fails if r is already being played.
func FilePlay[F Float](r *Reader, loop, mul, add Unit[F], cfg *Config) (*FilePlayer[F], error) {
	c, err := validated(cfg)
	if err != nil {
		return nil, err
	}
	return newFilePlayer(r, loop, mul, add, c, c.BlockSize)
}

func newFilePlayer[F Float](r *Reader, loop, mul, add Unit[F], c Config, blockSize int) (*FilePlayer[F], error) {
	player, err := fileplay.New(r, loop,
		fileplay.WithBlockSize(blockSize),
		fileplay.WithLogger(c.Logger),
	)
	if err != nil {
		return nil, err
	}

	p := &FilePlayer[F]{Unit: player, player: player}
	if (mul != nil && !unit.IsConstant(mul, 1)) || (add != nil && !unit.IsConstant(add, 0)) {
		p.Unit = unit.NewMulAdd[F](player, mul, add)
	}
	return p, nil
}

// Player is a file played through a background task and a rate converter,
// ready to mix into a graph.
type Player[F Float] struct {
	Unit[F]
	file *FilePlayer[F]
	task *task.Task[F]
}

// Done returns the end-of-file flag.
func (p *Player[F]) Done() *Var[bool] {
	return p.file.Done()
}

// Underruns returns how many blocks the background task failed to deliver
// in time.
func (p *Player[F]) Underruns() int64 {
	return p.task.Underruns()
}

// Close stops the background task and releases the file lease.
func (p *Player[F]) Close() error {
	err := p.task.Close()
	if cerr := p.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// SimplePlayer plays r at the graph format with linear interpolation. File
// reads happen on a background task that stops when ctx is done. rate
// scales playback speed (nil is normal speed); loop follows FilePlay.
func SimplePlayer[F Float](ctx context.Context, r *Reader, rate, loop Unit[F], cfg *Config) (*Player[F], error) {
	return simplePlayer(ctx, r, rate, loop, cfg, InterpLinear)
}

// SimplePlayerHQ is SimplePlayer with Lagrange interpolation.
func SimplePlayerHQ[F Float](ctx context.Context, r *Reader, rate, loop Unit[F], cfg *Config) (*Player[F], error) {
	return simplePlayer(ctx, r, rate, loop, cfg, InterpLagrange3)
}

func simplePlayer[F Float](ctx context.Context, r *Reader, rate, loop Unit[F], cfg *Config, kind Interpolation) (*Player[F], error) {
	if r == nil {
		return nil, fmt.Errorf("%w: simple player reader", ErrNilUnit)
	}
	c, err := validated(cfg)
	if err != nil {
		return nil, err
	}
	c.Interpolation = kind

	multiplier := int(math.Ceil(r.SampleRate()/c.SampleRate)) * simplePlayerBlockFactor
	file, err := newFilePlayer(r, loop, nil, nil, c, c.BlockSize*max(multiplier, 1))
	if err != nil {
		return nil, err
	}

	tk, err := task.New[F](ctx, file,
		task.WithNumBuffers(simplePlayerBuffers),
		task.WithLogger(c.Logger),
	)
	if err != nil {
		_ = file.Close()
		return nil, err
	}

	out, err := Resample[F](tk, rate, &c)
	if err != nil {
		_ = tk.Close()
		_ = file.Close()
		return nil, err
	}
	return &Player[F]{Unit: out, file: file, task: tk}, nil
}
