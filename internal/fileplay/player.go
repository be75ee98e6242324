// Package fileplay turns a leased audio file reader into a graph unit.
//
// A Player reads one block of frames per render straight from the reader,
// so it belongs behind a background task when the reader does disk I/O.
// Its sample rate is the file's; a resample stage adapts it to the graph.
package fileplay

import (
	"errors"
	"fmt"
	"log"

	"github.com/tphakala/go-audio-graph/internal/audiofile"
	"github.com/tphakala/go-audio-graph/internal/simdops"
	"github.com/tphakala/go-audio-graph/internal/unit"
	"github.com/tphakala/go-audio-graph/internal/variable"
)

// ErrNilReader is returned by New for a nil reader.
var ErrNilReader = errors.New("fileplay: nil reader")

// loopThreshold is the loop-control value at or above which playback loops.
const loopThreshold = 0.5

// Option configures a Player.
type Option func(*settings)

type settings struct {
	blockSize      int
	numChannels    int
	deleteWhenDone bool
	logger         *log.Logger
}

// WithBlockSize sets the number of frames read per render.
func WithBlockSize(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.blockSize = n
		}
	}
}

// WithNumChannels sets the output channel count. File channels are fanned
// out modulo the file's channel count; surplus file channels are dropped.
func WithNumChannels(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.numChannels = n
		}
	}
}

// WithDeleteWhenDone makes the player ask its consumer to drop it once the
// file has ended. It is on by default.
func WithDeleteWhenDone(on bool) Option {
	return func(s *settings) {
		s.deleteWhenDone = on
	}
}

// WithLogger sets the logger for read errors. A nil logger discards.
func WithLogger(l *log.Logger) Option {
	return func(s *settings) {
		s.logger = l
	}
}

// Player streams a file into the graph.
type Player[F simdops.Float] struct {
	unit.Base[F]

	lease          *audiofile.Lease
	loop           unit.Unit[F]
	fileChannels   int
	deleteWhenDone bool
	logger         *log.Logger

	scratch []float32
	done    *variable.Var[bool]
}

// New leases r and returns a player. A nil loop unit means loop forever.
// It fails with audiofile.ErrReaderOwned if r is already leased.
func New[F simdops.Float](r *audiofile.Reader, loop unit.Unit[F], opts ...Option) (*Player[F], error) {
	if r == nil {
		return nil, ErrNilReader
	}

	s := settings{
		blockSize:      unit.DefaultBlockSize,
		numChannels:    r.NumChannels(),
		deleteWhenDone: true,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if loop == nil {
		loop = unit.NewConstant[F](1)
	}

	lease, err := r.Acquire()
	if err != nil {
		return nil, fmt.Errorf("fileplay: %w", err)
	}

	p := &Player[F]{
		lease:          lease,
		loop:           loop,
		fileChannels:   r.NumChannels(),
		deleteWhenDone: s.deleteWhenDone,
		logger:         s.logger,
		scratch:        make([]float32, s.blockSize*r.NumChannels()),
		done:           variable.New(false),
	}
	p.Init(s.numChannels, s.blockSize, r.SampleRate(), p.render)
	return p, nil
}

// Done returns the end-of-file flag. It turns true once, in the render that
// reaches the end of a non-looping file; subscribe to it for notification.
func (p *Player[F]) Done() *variable.Var[bool] {
	return p.done
}

// Reader returns the file being played.
func (p *Player[F]) Reader() *audiofile.Reader {
	return p.lease.Reader()
}

// Close releases the reader's lease. The reader itself stays open.
func (p *Player[F]) Close() error {
	p.lease.Release()
	return nil
}

func (p *Player[F]) render(info *unit.Info) {
	if p.done.Get() {
		p.silence()
		p.requestDelete(info)
		return
	}

	loop := p.loop.Process(info, 0)
	looping := len(loop) > 0 && float64(loop[0]) >= loopThreshold

	frames, eof, err := p.lease.ReadFrames(p.scratch, looping)
	if err != nil {
		// A broken stream ends like a finished one.
		p.logf("fileplay: %s: %v", p.Reader().Name(), err)
		eof = true
	}

	for ch := range p.NumChannels() {
		out := p.Output(ch)
		n := min(frames, len(out))
		src := p.scratch[ch%p.fileChannels:]
		for i := range n {
			out[i] = F(src[i*p.fileChannels])
		}
		clear(out[n:])
	}

	if eof {
		p.done.Set(true)
	}
	p.requestDelete(info)
}

func (p *Player[F]) silence() {
	for ch := range p.NumChannels() {
		clear(p.Output(ch))
	}
}

func (p *Player[F]) requestDelete(info *unit.Info) {
	if p.deleteWhenDone && p.done.Get() {
		info.ShouldDelete = true
	}
}

func (p *Player[F]) logf(format string, args ...any) {
	if p.logger != nil {
		p.logger.Printf(format, args...)
	}
}
