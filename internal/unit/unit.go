// Package unit defines the pull contract every graph node implements and the
// small set of generic nodes the rest of the graph is built from.
//
// A graph is pulled from its root once per output block. Each unit pulls
// its own inputs through the same Process call, recursively. Units render
// all of their channels at once and cache the result for the block's
// timestamp, so pulling channel 0 and then channel 1 costs one render.
package unit

import (
	"github.com/tphakala/go-audio-graph/internal/buffer"
	"github.com/tphakala/go-audio-graph/internal/simdops"
)

// Info is the per-pull processing context passed down the graph.
type Info struct {
	// TimeStamp is the logical time in seconds of the first sample of the
	// block being pulled.
	TimeStamp float64

	// ShouldDelete is set by a unit that has finished and asks its
	// consumer to drop it after the current block.
	ShouldDelete bool
}

// Unit is a multi-channel block producer.
type Unit[F simdops.Float] interface {
	// Process returns the block for channel at info.TimeStamp. The slice is
	// owned by the unit and valid until its next render.
	Process(info *Info, channel int) []F

	// NumChannels returns the number of output channels.
	NumChannels() int

	// BlockSize returns the output block length for channel.
	BlockSize(channel int) int

	// SampleRate returns the output sample rate for channel. A rate <= 0
	// marks a DC source whose block holds a single held value.
	SampleRate(channel int) float64

	// NextTimeStamp returns the timestamp following the last rendered block.
	NextTimeStamp(channel int) float64

	// Value returns the channel's initial or static value.
	Value(channel int) F
}

// Base implements the channel bookkeeping shared by concrete units: output
// buffers, block size, sample rate and per-timestamp render caching.
// Concrete units embed Base and call Init with their render function.
type Base[F simdops.Float] struct {
	outputs    []*buffer.Buffer[F]
	values     []F
	blockSize  int
	sampleRate float64

	render    func(info *Info)
	rendered  bool
	lastStamp float64
	nextStamp float64
}

// Init sizes the output buffers and installs render, which must fill every
// output buffer for info.TimeStamp.
func (b *Base[F]) Init(numChannels, blockSize int, sampleRate float64, render func(info *Info)) {
	if numChannels < 1 {
		numChannels = 1
	}
	if blockSize < 1 {
		blockSize = 1
	}
	b.outputs = make([]*buffer.Buffer[F], numChannels)
	for ch := range b.outputs {
		b.outputs[ch] = buffer.New[F](blockSize)
	}
	b.values = make([]F, numChannels)
	b.blockSize = blockSize
	b.sampleRate = sampleRate
	b.render = render
}

// Process renders on the first pull of a new timestamp and returns the
// cached channel block. Channels wrap modulo NumChannels.
func (b *Base[F]) Process(info *Info, channel int) []F {
	if !b.rendered || info.TimeStamp != b.lastStamp {
		b.rendered = true
		b.lastStamp = info.TimeStamp
		b.render(info)
		b.nextStamp = info.TimeStamp + b.BlockDuration()
	}
	return b.outputs[b.wrap(channel)].Data()
}

// NumChannels returns the number of output channels.
func (b *Base[F]) NumChannels() int {
	return len(b.outputs)
}

// BlockSize returns the output block length.
func (b *Base[F]) BlockSize(int) int {
	return b.blockSize
}

// SampleRate returns the output sample rate.
func (b *Base[F]) SampleRate(int) float64 {
	return b.sampleRate
}

// SetSampleRate changes the output sample rate. Units call it during
// construction when the rate is decided by a collaborator.
func (b *Base[F]) SetSampleRate(sampleRate float64) {
	b.sampleRate = sampleRate
}

// NextTimeStamp returns the timestamp after the last rendered block.
func (b *Base[F]) NextTimeStamp(int) float64 {
	return b.nextStamp
}

// Value returns the channel's initial value.
func (b *Base[F]) Value(channel int) F {
	return b.values[b.wrap(channel)]
}

// SetValue sets the channel's initial value.
func (b *Base[F]) SetValue(channel int, v F) {
	b.values[b.wrap(channel)] = v
}

// Output returns the output buffer for channel.
func (b *Base[F]) Output(channel int) []F {
	return b.outputs[b.wrap(channel)].Data()
}

// BlockDuration returns the length of one block in seconds, or 0 for DC
// units.
func (b *Base[F]) BlockDuration() float64 {
	if b.sampleRate <= 0 {
		return 0
	}
	return float64(b.blockSize) / b.sampleRate
}

// SampleDuration returns the length of one output sample in seconds, or 0
// for DC units.
func (b *Base[F]) SampleDuration() float64 {
	if b.sampleRate <= 0 {
		return 0
	}
	return 1 / b.sampleRate
}

func (b *Base[F]) wrap(channel int) int {
	if channel < 0 {
		channel = -channel
	}
	return channel % len(b.outputs)
}
