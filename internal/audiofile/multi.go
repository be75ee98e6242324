package audiofile

import (
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
)

// Mode selects how a Multi reader picks its next file.
type Mode int

const (
	// SequenceOnce plays the files in order and then ends.
	SequenceOnce Mode = iota
	// SequenceLoop plays the files in order, starting over after the last.
	SequenceLoop
	// Random picks a file uniformly at random each time, forever.
	Random
	// RandomNoRepeat is Random without playing the same file twice in a
	// row. With fewer than two files it behaves as Random.
	RandomNoRepeat
	// Queue plays files handed to Enqueue, in order, ending whenever the
	// queue runs dry.
	Queue
	// Callback asks a user function for the next index.
	Callback
)

// defaultQueueCapacity bounds the number of pending files in Queue mode.
const defaultQueueCapacity = 16

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case SequenceOnce:
		return "sequence"
	case SequenceLoop:
		return "loop"
	case Random:
		return "random"
	case RandomNoRepeat:
		return "shuffle"
	case Queue:
		return "queue"
	case Callback:
		return "callback"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode maps a mode name to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sequence", "once", "":
		return SequenceOnce, nil
	case "loop":
		return SequenceLoop, nil
	case "random":
		return Random, nil
	case "shuffle", "random-no-repeat":
		return RandomNoRepeat, nil
	case "queue":
		return Queue, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// NextFunc returns the index of the next file given the previous index
// (-1 at the start) and the number of files. An out-of-range result ends
// the stream.
type NextFunc func(prev, n int) int

// MultiOption configures a Multi reader.
type MultiOption func(*Multi)

// WithRand sets the random source for the random modes.
func WithRand(rng *rand.Rand) MultiOption {
	return func(m *Multi) {
		if rng != nil {
			m.rng = rng
		}
	}
}

// WithNext sets the selector used by Callback mode.
func WithNext(next NextFunc) MultiOption {
	return func(m *Multi) {
		m.next = next
	}
}

// WithQueueCapacity sets how many files Queue mode holds pending.
func WithQueueCapacity(n int) MultiOption {
	return func(m *Multi) {
		if n > 0 {
			m.queueCap = n
		}
	}
}

// Multi reads a series of files as one continuous stream. Every file must
// share the channel count and sample rate of the first. Multi holds the
// lease of each file it plays.
type Multi struct {
	mode     Mode
	rng      *rand.Rand
	next     NextFunc
	queueCap int

	leases  []*Lease
	queue   chan *Lease
	current *Lease
	index   int

	channels   int
	sampleRate float64
	reader     *Reader
}

// NewMulti returns a multi-file reader over readers in an array mode
// (every mode except Queue). It takes the lease of every reader.
func NewMulti(mode Mode, readers []*Reader, opts ...MultiOption) (*Multi, error) {
	if mode == Queue || mode < SequenceOnce || mode > Callback {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMode, mode)
	}
	if len(readers) == 0 {
		return nil, ErrNoFiles
	}

	m := newMulti(mode, readers[0].NumChannels(), readers[0].SampleRate(), opts...)
	if mode == Callback && m.next == nil {
		return nil, fmt.Errorf("%w: callback mode needs WithNext", ErrInvalidMode)
	}

	for _, r := range readers {
		l, err := m.lease(r)
		if err != nil {
			m.releaseAll()
			return nil, err
		}
		m.leases = append(m.leases, l)
	}

	var err error
	m.reader, err = newReader("multi:"+mode.String(), m, m.channels, m.sampleRate, -1)
	if err != nil {
		m.releaseAll()
		return nil, err
	}
	return m, nil
}

// NewQueue returns a Queue-mode reader for files of the given format. Files
// are supplied with Enqueue.
func NewQueue(channels int, sampleRate float64, opts ...MultiOption) (*Multi, error) {
	m := newMulti(Queue, channels, sampleRate, opts...)
	m.queue = make(chan *Lease, m.queueCap)

	var err error
	m.reader, err = newReader("multi:queue", m, channels, sampleRate, -1)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func newMulti(mode Mode, channels int, sampleRate float64, opts ...MultiOption) *Multi {
	m := &Multi{
		mode:       mode,
		queueCap:   defaultQueueCapacity,
		index:      -1,
		channels:   channels,
		sampleRate: sampleRate,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return m
}

// Reader returns the combined stream. Lease it to read.
func (m *Multi) Reader() *Reader {
	return m.reader
}

// Mode returns the selection mode.
func (m *Multi) Mode() Mode {
	return m.mode
}

// Index returns the last index selected in an array mode; -1 before the
// first file.
func (m *Multi) Index() int {
	return m.index
}

// Enqueue appends r to a Queue-mode reader, taking its lease. It may be
// called from any goroutine while the stream plays. The queue owns r from
// here on and closes it once played.
func (m *Multi) Enqueue(r *Reader) error {
	if m.mode != Queue {
		return fmt.Errorf("%w: enqueue in %v mode", ErrInvalidMode, m.mode)
	}
	l, err := m.lease(r)
	if err != nil {
		return err
	}
	select {
	case m.queue <- l:
		return nil
	default:
		l.Release()
		return ErrQueueFull
	}
}

func (m *Multi) lease(r *Reader) (*Lease, error) {
	if r.NumChannels() != m.channels || r.SampleRate() != m.sampleRate {
		return nil, fmt.Errorf("%w: %s has %d channels at %v Hz, want %d at %v Hz",
			ErrFormatMismatch, r.Name(), r.NumChannels(), r.SampleRate(), m.channels, m.sampleRate)
	}
	return r.Acquire()
}

// advance selects the next file. It reports false when the stream ends.
func (m *Multi) advance() (bool, error) {
	if m.mode == Queue {
		select {
		case l := <-m.queue:
			m.current = l
			return true, nil
		default:
			return false, nil
		}
	}

	n := len(m.leases)
	switch m.mode {
	case SequenceOnce:
		m.index++
	case SequenceLoop:
		m.index++
		if m.index >= n {
			m.index = 0
		}
	case Random:
		m.index = m.rng.IntN(n)
	case RandomNoRepeat:
		if n < 2 {
			m.index = m.rng.IntN(n)
			break
		}
		prev := m.index
		for m.index == prev {
			m.index = m.rng.IntN(n)
		}
	case Callback:
		m.index = m.next(m.index, n)
	}
	if m.index < 0 || m.index >= n {
		m.current = nil
		return false, nil
	}

	m.current = m.leases[m.index]
	if err := m.current.Reader().dec.rewind(); err != nil {
		return false, fmt.Errorf("rewind %s: %w", m.current.Reader().Name(), err)
	}
	return true, nil
}

// finishQueued closes the queue file that just ended.
func (m *Multi) finishQueued() {
	if m.current == nil {
		return
	}
	m.current.Release()
	_ = m.current.Reader().Close()
	m.current = nil
}

func (m *Multi) read(dst []float32) (int, error) {
	// Every file may be empty; give up after a full pass of misses.
	for range len(m.leases) + 2 {
		if m.current == nil {
			ok, err := m.advance()
			if err != nil {
				return 0, err
			}
			if !ok {
				return 0, io.EOF
			}
		}

		frames, eof, err := m.current.ReadFrames(dst, false)
		switch {
		case err != nil:
			return frames, err
		case frames > 0:
			return frames, nil
		case !eof:
			return 0, nil
		}

		if m.mode == Queue {
			m.finishQueued()
		} else {
			m.current = nil
		}
	}
	return 0, io.EOF
}

func (m *Multi) rewind() error {
	if m.mode != Queue {
		m.index = -1
		m.current = nil
	}
	return nil
}

func (m *Multi) close() error {
	m.releaseAll()
	var first error
	for _, l := range m.leases {
		if err := l.Reader().Close(); err != nil && first == nil {
			first = err
		}
	}
	if m.queue != nil {
		m.finishQueued()
		for {
			select {
			case l := <-m.queue:
				l.Release()
				if err := l.Reader().Close(); err != nil && first == nil {
					first = err
				}
			default:
				return first
			}
		}
	}
	return first
}

func (m *Multi) releaseAll() {
	for _, l := range m.leases {
		l.Release()
	}
}
