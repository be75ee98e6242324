// Package host connects a graph to an audio output.
//
// A Renderer adapts the graph's fixed block size to whatever frame count
// the output asks for, producing interleaved float32. A Device drives a
// Renderer from a miniaudio playback callback.
package host

import (
	"errors"
	"sync/atomic"

	"github.com/tphakala/go-audio-graph/internal/pipeline"
	"github.com/tphakala/go-audio-graph/internal/simdops"
	"github.com/tphakala/go-audio-graph/internal/unit"
)

// ErrNilGraph is returned when a renderer is built without a root unit.
var ErrNilGraph = errors.New("host: nil graph")

// Renderer pulls blocks from a root unit and hands them out as interleaved
// float32 frames of any count. It is not safe for concurrent use; the
// output callback is its only caller.
type Renderer[F simdops.Float] struct {
	root     unit.Unit[F]
	channels int
	info     unit.Info
	finished atomic.Bool

	fifos   []*pipeline.FIFO[float32]
	convert []float32
	silence []float32
	planar  [][]float32
}

// NewRenderer returns a renderer producing channels interleaved channels
// from root. Root channels wrap when channels exceeds them.
func NewRenderer[F simdops.Float](root unit.Unit[F], channels int) (*Renderer[F], error) {
	if root == nil {
		return nil, ErrNilGraph
	}
	channels = max(channels, 1)
	blockSize := max(root.BlockSize(0), 1)

	r := &Renderer[F]{
		root:     root,
		channels: channels,
		fifos:    make([]*pipeline.FIFO[float32], channels),
		convert:  make([]float32, blockSize),
		silence:  make([]float32, blockSize),
		planar:   make([][]float32, channels),
	}
	for ch := range r.fifos {
		r.fifos[ch] = pipeline.NewFIFO[float32](2 * blockSize)
	}
	return r, nil
}

// NumChannels returns the interleaved channel count.
func (r *Renderer[F]) NumChannels() int {
	return r.channels
}

// SampleRate returns the root unit's sample rate.
func (r *Renderer[F]) SampleRate() float64 {
	return r.root.SampleRate(0)
}

// Finished reports whether the root has asked to be removed. Output after
// that point is silence. It may be called from any goroutine.
func (r *Renderer[F]) Finished() bool {
	return r.finished.Load()
}

// Render fills out with len(out)/NumChannels interleaved frames.
func (r *Renderer[F]) Render(out []float32) {
	frames := len(out) / r.channels
	for r.fifos[0].Len() < frames {
		r.pull()
	}

	for ch, fifo := range r.fifos {
		if cap(r.planar[ch]) < frames {
			r.planar[ch] = make([]float32, frames)
		}
		r.planar[ch] = r.planar[ch][:frames]
		fifo.Read(r.planar[ch])
	}

	if r.channels == 2 {
		simdops.For[float32]().Interleave2(out[:2*frames], r.planar[0], r.planar[1])
		return
	}
	for i := range frames {
		for ch := range r.channels {
			out[i*r.channels+ch] = r.planar[ch][i]
		}
	}
}

// pull renders one root block into the channel FIFOs. After the root
// finishes, or if it returns an empty block, silence is written instead.
func (r *Renderer[F]) pull() {
	if r.finished.Load() {
		for _, fifo := range r.fifos {
			fifo.Write(r.silence)
		}
		return
	}

	for ch, fifo := range r.fifos {
		block := r.root.Process(&r.info, ch)
		if len(block) == 0 {
			fifo.Write(r.silence)
			continue
		}
		if cap(r.convert) < len(block) {
			r.convert = make([]float32, len(block))
		}
		buf := r.convert[:len(block)]
		for i, v := range block {
			buf[i] = float32(v)
		}
		fifo.Write(buf)
	}
	r.finished.Store(r.info.ShouldDelete)
	r.info.TimeStamp = r.root.NextTimeStamp(0)
}
