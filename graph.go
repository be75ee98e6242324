package audiograph

import (
	"fmt"

	"github.com/tphakala/go-audio-graph/internal/resample"
	"github.com/tphakala/go-audio-graph/internal/simdops"
	"github.com/tphakala/go-audio-graph/internal/unit"
)

// Float is the sample type constraint: float32 or float64.
type Float = simdops.Float

// Unit is a node of the graph. See [Graph] for how units are pulled.
type Unit[F Float] = unit.Unit[F]

// Graph pulls a root unit block by block at the configured format.
//
// A Graph is not safe for concurrent use. Drive it from one goroutine,
// typically the audio callback or a render loop.
type Graph[F Float] struct {
	root Unit[F]
	cfg  Config

	info     unit.Info
	blocks   int64
	finished bool
	planar   [][]F
	silence  []F
}

// NewGraph wraps root. A root whose rate or block size differs from cfg is
// put behind a rate converter using cfg.Interpolation. A nil cfg means
// DefaultConfig.
func NewGraph[F Float](root Unit[F], cfg *Config) (*Graph[F], error) {
	if root == nil {
		return nil, fmt.Errorf("%w: graph root", ErrNilUnit)
	}
	c, err := validated(cfg)
	if err != nil {
		return nil, err
	}

	if resample.Needed(root, nil, c.SampleRate) || root.BlockSize(0) != c.BlockSize {
		conv, err := resample.New(root, nil, c.Interpolation, c.unitOptions()...)
		if err != nil {
			return nil, fmt.Errorf("graph root: %w", err)
		}
		root = conv
	}

	return &Graph[F]{
		root:    root,
		cfg:     c,
		planar:  make([][]F, root.NumChannels()),
		silence: make([]F, c.BlockSize),
	}, nil
}

// Config returns the graph's output format.
func (g *Graph[F]) Config() Config {
	return g.cfg
}

// NumChannels returns the root's channel count.
func (g *Graph[F]) NumChannels() int {
	return g.root.NumChannels()
}

// TimeStamp returns the time in seconds of the next block.
func (g *Graph[F]) TimeStamp() float64 {
	return g.info.TimeStamp
}

// Finished reports whether the root has asked to be removed. A finished
// graph renders silence.
func (g *Graph[F]) Finished() bool {
	return g.finished
}

// Next renders one block of every channel and advances time by one block.
// The returned slices are owned by the graph and valid until the next call.
func (g *Graph[F]) Next() [][]F {
	for ch := range g.planar {
		if g.finished {
			g.planar[ch] = g.silence
			continue
		}
		g.planar[ch] = g.root.Process(&g.info, ch)
	}

	if g.info.ShouldDelete {
		g.finished = true
	}
	g.blocks++
	g.info = unit.Info{TimeStamp: float64(g.blocks) * float64(g.cfg.BlockSize) / g.cfg.SampleRate}
	return g.planar
}

// Render returns the next frames frames of every channel as new planar
// slices. Blocks are pulled whole; samples past frames are discarded.
func (g *Graph[F]) Render(frames int) [][]F {
	out := make([][]F, g.NumChannels())
	for ch := range out {
		out[ch] = make([]F, 0, frames+g.cfg.BlockSize)
	}
	for len(out[0]) < frames {
		for ch, block := range g.Next() {
			out[ch] = append(out[ch], block...)
		}
	}
	for ch := range out {
		out[ch] = out[ch][:frames]
	}
	return out
}
