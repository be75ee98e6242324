// Package task renders a subgraph ahead of time on a background thread.
//
// A Task pulls its input on its own goroutine into a ring of blocks and
// hands finished blocks to the graph through a lock-free queue, so slow
// upstream work such as file decoding never runs on the audio thread. When
// the consumer finds the queue empty it outputs silence and counts an
// underrun.
package task

import (
	"context"
	"errors"
	"log"
	"sync/atomic"
	"time"

	"github.com/tphakala/go-audio-graph/internal/pipeline"
	"github.com/tphakala/go-audio-graph/internal/simdops"
	"github.com/tphakala/go-audio-graph/internal/thread"
	"github.com/tphakala/go-audio-graph/internal/unit"
)

// DefaultNumBuffers is the number of blocks rendered ahead.
const DefaultNumBuffers = 8

// idlePoll bounds how long the producer sleeps when every block is full and
// no resume arrives.
const idlePoll = 10 * time.Millisecond

// ErrNilInput is returned by New for a nil input.
var ErrNilInput = errors.New("task: nil input")

// Option configures a Task.
type Option func(*settings)

type settings struct {
	numBuffers int
	logger     *log.Logger
}

// WithNumBuffers sets how many blocks are rendered ahead. Values below 2
// are raised to 2.
func WithNumBuffers(n int) Option {
	return func(s *settings) {
		s.numBuffers = max(n, 2)
	}
}

// WithLogger sets the logger for underruns. A nil logger discards.
func WithLogger(l *log.Logger) Option {
	return func(s *settings) {
		s.logger = l
	}
}

type block[F simdops.Float] struct {
	channels     [][]F
	shouldDelete bool
}

// Task is a unit whose input runs on a background thread.
type Task[F simdops.Float] struct {
	unit.Base[F]

	input  unit.Unit[F]
	filled *pipeline.Queue[*block[F]]
	free   *pipeline.Queue[*block[F]]
	thread *thread.Thread
	logger *log.Logger

	// producer state
	stamp     float64
	inputDone bool

	// consumer state
	finished  bool
	underrun  bool
	underruns atomic.Int64
}

// New builds a task over input, renders the first blocks synchronously and
// starts the background thread. The thread stops when ctx is done, when
// Close is called, or after the input requests deletion.
func New[F simdops.Float](ctx context.Context, input unit.Unit[F], opts ...Option) (*Task[F], error) {
	if input == nil {
		return nil, ErrNilInput
	}
	s := settings{numBuffers: DefaultNumBuffers}
	for _, opt := range opts {
		opt(&s)
	}

	numCh := input.NumChannels()
	blockSize := input.BlockSize(0)
	t := &Task[F]{
		input:  input,
		filled: pipeline.NewQueue[*block[F]](s.numBuffers),
		free:   pipeline.NewQueue[*block[F]](s.numBuffers),
		logger: s.logger,
	}
	t.Init(numCh, blockSize, input.SampleRate(0), t.render)
	for ch := range numCh {
		t.SetValue(ch, input.Value(ch))
	}

	for range s.numBuffers {
		b := &block[F]{channels: make([][]F, numCh)}
		for ch := range b.channels {
			b.channels[ch] = make([]F, blockSize)
		}
		t.free.Push(b)
	}

	// Prefill before the thread exists so the first pulls never underrun.
	for range s.numBuffers {
		if !t.produce() {
			break
		}
	}

	t.thread = thread.New("task", t.run)
	if err := t.thread.Start(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

// Underruns returns the number of blocks output as silence because the
// background thread had not caught up.
func (t *Task[F]) Underruns() int64 {
	return t.underruns.Load()
}

// Buffered returns the number of rendered blocks waiting to be pulled.
func (t *Task[F]) Buffered() int {
	return t.filled.Len()
}

// Close stops the background thread and waits for it.
func (t *Task[F]) Close() error {
	t.thread.Cancel()
	if err := t.thread.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (t *Task[F]) run(_ context.Context, self *thread.Self) error {
	for !self.ShouldExit() && !t.inputDone {
		if t.produce() {
			continue
		}
		if err := self.Pause(idlePoll); err != nil {
			return err
		}
	}
	return nil
}

// produce renders one block into a free slot and reports whether there was
// one.
func (t *Task[F]) produce() bool {
	if t.inputDone {
		return false
	}
	b, ok := t.free.Pop()
	if !ok {
		return false
	}

	info := unit.Info{TimeStamp: t.stamp}
	for ch, dst := range b.channels {
		n := copy(dst, t.input.Process(&info, ch))
		clear(dst[n:])
	}
	b.shouldDelete = info.ShouldDelete
	t.inputDone = info.ShouldDelete
	t.stamp = t.input.NextTimeStamp(0)
	t.filled.Push(b)
	return true
}

func (t *Task[F]) render(info *unit.Info) {
	if t.finished {
		t.silence()
		info.ShouldDelete = true
		return
	}

	b, ok := t.filled.Pop()
	if !ok {
		t.silence()
		t.underruns.Add(1)
		if !t.underrun && t.logger != nil {
			t.logger.Printf("task: underrun at %.3fs", info.TimeStamp)
		}
		t.underrun = true
		return
	}
	t.underrun = false

	for ch := range t.NumChannels() {
		copy(t.Output(ch), b.channels[ch])
	}
	if b.shouldDelete {
		t.finished = true
		info.ShouldDelete = true
	}
	t.free.Push(b)
	t.thread.Resume()
}

func (t *Task[F]) silence() {
	for ch := range t.NumChannels() {
		clear(t.Output(ch))
	}
}
