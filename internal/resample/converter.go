// Package resample implements the streaming rate converter that decouples a
// unit's native sample rate and block size from the graph consuming it.
//
// The converter keeps one temp buffer per channel holding the latest
// upstream block behind a few samples carried over from the previous block,
// the interpolation extension. A fractional read position walks the buffer
// at a rate set by the rate-control unit; when it passes the end of the
// usable region the next upstream block is pulled.
package resample

import (
	"errors"
	"fmt"

	"github.com/tphakala/go-audio-graph/internal/buffer"
	"github.com/tphakala/go-audio-graph/internal/interp"
	"github.com/tphakala/go-audio-graph/internal/simdops"
	"github.com/tphakala/go-audio-graph/internal/unit"
)

// Errors returned by New.
var (
	ErrNilInput       = errors.New("resample: nil input unit")
	ErrRateChannels   = errors.New("resample: rate unit must be mono")
	ErrInvalidInterp  = errors.New("resample: unknown interpolation kind")
	ErrEmptyInputSize = errors.New("resample: input block size must be positive")
	ErrSampleRate     = errors.New("resample: output sample rate must be positive")
)

// Converter resamples an upstream unit to its own block size and sample
// rate, optionally varispeed through a rate-control unit.
type Converter[F simdops.Float] struct {
	unit.Base[F]

	input unit.Unit[F]
	rate  unit.Unit[F]
	kind  interp.Kind

	temp   []*buffer.Buffer[F]
	carry  [][]F
	pos    float64
	posMax float64
	usable float64

	nextInputTimeStamp float64
	ratePositions      []float64

	// End of stream: the upstream asked for deletion with its last block
	// (inputDone), the buffer after that block is loaded (tailLoaded), and
	// every sample of the last block has been emitted (ended).
	inputDone  bool
	tailLoaded bool
	ended      bool
}

// New returns a converter pulling from input. A nil rate plays at the
// natural ratio of input rate to output rate.
func New[F simdops.Float](input, rate unit.Unit[F], kind interp.Kind, opts ...unit.Option) (*Converter[F], error) {
	if input == nil {
		return nil, ErrNilInput
	}
	if rate == nil {
		rate = unit.NewConstant[F](1)
	}
	if rate.NumChannels() != 1 {
		return nil, fmt.Errorf("%w: got %d channels", ErrRateChannels, rate.NumChannels())
	}
	switch kind {
	case interp.None, interp.Linear, interp.Lagrange3:
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidInterp, int(kind))
	}

	cfg := unit.ApplyOptions(opts...)
	if !(cfg.SampleRate > 0) {
		return nil, fmt.Errorf("%w: got %v", ErrSampleRate, cfg.SampleRate)
	}
	numChannels := input.NumChannels()
	ext := kind.Extension()

	c := &Converter[F]{
		input:         input,
		rate:          rate,
		kind:          kind,
		temp:          make([]*buffer.Buffer[F], numChannels),
		carry:         make([][]F, numChannels),
		ratePositions: make([]float64, numChannels),
	}
	c.Init(numChannels, cfg.BlockSize, cfg.SampleRate, c.render)

	inputSize := input.BlockSize(0)
	if input.SampleRate(0) > 0 && inputSize < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrEmptyInputSize, inputSize)
	}
	for ch := range numChannels {
		c.temp[ch] = buffer.New[F](0)
		c.carry[ch] = make([]F, ext)
	}
	c.resizeTemp(max(inputSize, 1) + ext)

	// Seed with the initial value so reads before the first block land on
	// defined samples. The read position starts at the end, forcing a pull
	// on the first render.
	for ch := range numChannels {
		v := input.Value(ch)
		c.temp[ch].Fill(v)
		c.SetValue(ch, v)
	}
	c.pos = c.posMax

	return c, nil
}

// Needed reports whether input must be converted to play at sampleRate with
// the given rate control. A unit already at the target rate with a constant
// rate of 1 can be used directly.
func Needed[F simdops.Float](input, rate unit.Unit[F], sampleRate float64) bool {
	if rate != nil && !unit.IsConstant(rate, 1) {
		return true
	}
	for ch := range input.NumChannels() {
		if input.SampleRate(ch) != sampleRate {
			return true
		}
	}
	return false
}

// Interpolation returns the converter's interpolation kind.
func (c *Converter[F]) Interpolation() interp.Kind {
	return c.kind
}

func (c *Converter[F]) resizeTemp(length int) {
	if len(c.temp) > 0 && length == c.temp[0].Len() {
		return
	}
	for _, t := range c.temp {
		t.Resize(length)
	}
	c.usable = float64(length - c.kind.Extension())
	c.posMax = c.usable + float64(c.kind.Offset())
}

// refill pulls the next upstream block into every temp buffer, keeping the
// trailing extension samples of the previous block at the head. An upstream
// deletion request is held back until that block has been played out.
func (c *Converter[F]) refill(info *unit.Info) {
	ext := c.kind.Extension()

	if c.inputDone {
		c.tailLoaded = true
	}
	shouldDelete := info.ShouldDelete
	info.ShouldDelete = false
	info.TimeStamp = c.nextInputTimeStamp
	c.pos -= c.usable

	// Save every channel's tail before any buffer is resized.
	for ch, t := range c.temp {
		data := t.Data()
		copy(c.carry[ch], data[len(data)-ext:])
	}

	for ch, t := range c.temp {
		in := c.input.Process(info, ch)
		if ch == 0 {
			c.resizeTemp(len(in) + ext)
		}
		data := t.Data()
		copy(data, c.carry[ch])
		copy(data[ext:], in)
	}

	c.nextInputTimeStamp = c.input.NextTimeStamp(0)
	if info.ShouldDelete {
		c.inputDone = true
	}
	info.ShouldDelete = shouldDelete
}

// finished reports whether the last upstream block has been fully emitted,
// including the samples carried into the buffer after it.
func (c *Converter[F]) finished() bool {
	if !c.ended && c.tailLoaded && c.pos >= float64(c.kind.Extension()) {
		c.ended = true
	}
	return c.ended
}

func (c *Converter[F]) render(info *unit.Info) {
	inputRate := c.input.SampleRate(0)

	if inputRate <= 0 {
		for ch := range c.NumChannels() {
			simdops.Fill(c.Output(ch), c.input.Process(info, ch)[0])
		}
		return
	}

	stamp := info.TimeStamp
	rateBuf := c.rate.Process(info, 0)
	scale := inputRate * c.SampleDuration()

	switch len(rateBuf) {
	case 0:
		c.produceScalar(info, scale)
	case 1:
		c.produceScalar(info, scale*rateValue(rateBuf[0]))
	case c.BlockSize(0):
		c.producePerSample(info, scale, rateBuf)
	default:
		c.produceSubRate(info, scale, rateBuf)
	}

	// Siblings pulled after us must see the caller's time.
	info.TimeStamp = stamp
	if c.finished() {
		info.ShouldDelete = true
	}
}

// produceScalar renders with one increment for the whole block. A zero
// increment holds the interpolated value at the current position.
func (c *Converter[F]) produceScalar(info *unit.Info, increment float64) {
	outLen := c.BlockSize(0)

	if increment == 0 {
		if c.pos >= c.posMax {
			c.refill(info)
		}
		for ch, t := range c.temp {
			simdops.Fill(c.Output(ch), interp.Lookup(c.kind, t.Data(), c.pos))
		}
		return
	}

	out := 0
	for out < outLen {
		if c.pos >= c.posMax {
			c.refill(info)
		}

		chPos, bufPos := out, c.pos
		for ch, t := range c.temp {
			samples := t.Data()
			dst := c.Output(ch)
			chPos, bufPos = out, c.pos

			for chPos < outLen && bufPos < c.posMax {
				dst[chPos] = interp.Lookup(c.kind, samples, bufPos)
				bufPos += increment
				chPos++
			}
		}
		out, c.pos = chPos, bufPos
	}
}

// producePerSample renders with a fresh increment for every output sample.
func (c *Converter[F]) producePerSample(info *unit.Info, scale float64, rateBuf []F) {
	outLen := c.BlockSize(0)

	out := 0
	for out < outLen {
		if c.pos >= c.posMax {
			c.refill(info)
		}

		chPos, bufPos := out, c.pos
		for ch, t := range c.temp {
			samples := t.Data()
			dst := c.Output(ch)
			chPos, bufPos = out, c.pos

			for chPos < outLen && bufPos < c.posMax {
				dst[chPos] = interp.Lookup(c.kind, samples, bufPos)
				bufPos += scale * rateValue(rateBuf[chPos])
				chPos++
			}
		}
		out, c.pos = chPos, bufPos
	}
}

// produceSubRate renders from a rate block shorter or longer than the
// output block. Each channel walks the rate block with its own fractional
// position, reading the sample below it.
func (c *Converter[F]) produceSubRate(info *unit.Info, scale float64, rateBuf []F) {
	outLen := c.BlockSize(0)
	lastRate := len(rateBuf) - 1
	clear(c.ratePositions)

	out := 0
	for out < outLen {
		if c.pos >= c.posMax {
			c.refill(info)
		}

		chPos, bufPos := out, c.pos
		for ch, t := range c.temp {
			samples := t.Data()
			dst := c.Output(ch)
			chPos, bufPos = out, c.pos

			for chPos < outLen && bufPos < c.posMax {
				rateIncrement := float64(len(rateBuf)) / float64(outLen)
				dst[chPos] = interp.Lookup(c.kind, samples, bufPos)
				bufPos += scale * rateValue(rateBuf[min(int(c.ratePositions[ch]), lastRate)])
				c.ratePositions[ch] += rateIncrement
				chPos++
			}
		}
		out, c.pos = chPos, bufPos
	}
}

// rateValue clamps negative rates to zero; the read position never moves
// backwards.
func rateValue[F simdops.Float](v F) float64 {
	return max(float64(v), 0)
}
