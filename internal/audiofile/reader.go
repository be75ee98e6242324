// Package audiofile reads and writes audio files as interleaved float32
// frames.
//
// A [Reader] wraps one format decoder (WAV, AIFF, Ogg Vorbis, MP3, or an
// in-memory clip) or a [Multi] sequence of other readers. Reading requires a
// [Lease]: a reader has at most one lease holder at a time, so two players
// can never interleave reads from the same stream.
package audiofile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
)

// decoder is a format backend.
type decoder interface {
	// read fills dst with interleaved samples in [-1, 1] and returns the
	// number of whole frames written. It returns io.EOF only with zero
	// frames.
	read(dst []float32) (int, error)

	// rewind moves back to the first frame.
	rewind() error

	close() error
}

// Reader is an open audio stream.
type Reader struct {
	name       string
	dec        decoder
	channels   int
	sampleRate float64
	frames     int64

	leased    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

func newReader(name string, dec decoder, channels int, sampleRate float64, frames int64) (*Reader, error) {
	if channels < 1 {
		_ = dec.close()
		return nil, fmt.Errorf("%w: %s: %d channels", ErrInvalidFile, name, channels)
	}
	if !(sampleRate > 0) {
		_ = dec.close()
		return nil, fmt.Errorf("%w: %s: sample rate %v", ErrInvalidFile, name, sampleRate)
	}
	return &Reader{
		name:       name,
		dec:        dec,
		channels:   channels,
		sampleRate: sampleRate,
		frames:     frames,
	}, nil
}

// Name returns the path or label the reader was opened with.
func (r *Reader) Name() string {
	return r.name
}

// NumChannels returns the number of interleaved channels per frame.
func (r *Reader) NumChannels() int {
	return r.channels
}

// SampleRate returns the file's sample rate in Hz.
func (r *Reader) SampleRate() float64 {
	return r.sampleRate
}

// Frames returns the stream length in frames, or -1 when the format does
// not report it.
func (r *Reader) Frames() int64 {
	return r.frames
}

// Acquire takes the reader's lease. It fails with ErrReaderOwned while
// another lease is held.
func (r *Reader) Acquire() (*Lease, error) {
	if !r.leased.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("%w: %s", ErrReaderOwned, r.name)
	}
	return &Lease{r: r}, nil
}

// Leased reports whether a lease is currently held.
func (r *Reader) Leased() bool {
	return r.leased.Load()
}

// Close releases the underlying file. It is safe to call more than once.
func (r *Reader) Close() error {
	r.closeOnce.Do(func() {
		r.closeErr = r.dec.close()
	})
	return r.closeErr
}

// Lease is exclusive read access to a Reader.
type Lease struct {
	r        *Reader
	released atomic.Bool
	scratch  []float32
}

// Reader returns the leased reader.
func (l *Lease) Reader() *Reader {
	return l.r
}

// Release gives the lease back. Further reads fail with ErrLeaseReleased.
// Releasing twice is a no-op.
func (l *Lease) Release() {
	if l.released.CompareAndSwap(false, true) {
		l.r.leased.Store(false)
	}
}

// ReadFrames fills dst with up to len(dst)/NumChannels interleaved frames.
// With loop set the stream rewinds at its end and keeps filling; eof is then
// reported only for a stream with no frames at all. Without loop a short
// read returns eof true with the frames that were available.
func (l *Lease) ReadFrames(dst []float32, loop bool) (frames int, eof bool, err error) {
	if l.released.Load() {
		return 0, false, ErrLeaseReleased
	}

	ch := l.r.channels
	want := len(dst) / ch
	progressed := true

	for frames < want {
		n, err := l.r.dec.read(dst[frames*ch : want*ch])
		frames += n
		if n > 0 {
			progressed = true
		}

		switch {
		case errors.Is(err, io.EOF):
			if !loop || !progressed {
				return frames, true, nil
			}
			if err := l.r.dec.rewind(); err != nil {
				return frames, false, fmt.Errorf("rewind %s: %w", l.r.name, err)
			}
			progressed = false
		case err != nil:
			return frames, false, fmt.Errorf("read %s: %w", l.r.name, err)
		}
	}
	return frames, false, nil
}

// Skip discards up to n frames and returns how many were skipped.
func (l *Lease) Skip(n int) (int, error) {
	const chunk = 4096
	if len(l.scratch) < chunk*l.r.channels {
		l.scratch = make([]float32, chunk*l.r.channels)
	}
	skipped := 0
	for skipped < n {
		want := min(n-skipped, chunk)
		got, eof, err := l.ReadFrames(l.scratch[:want*l.r.channels], false)
		skipped += got
		if err != nil || eof {
			return skipped, err
		}
	}
	return skipped, nil
}

// opener builds a decoder from an open file.
type opener func(f *os.File) (dec decoder, channels int, sampleRate float64, frames int64, err error)

// openers maps lower-case file extensions to format backends.
var openers = map[string]opener{
	".wav":  openWAV,
	".wave": openWAV,
	".aif":  openAIFF,
	".aiff": openAIFF,
	".aifc": openAIFF,
	".ogg":  openOgg,
	".oga":  openOgg,
	".mp3":  openMP3,
}

// Extensions returns the supported file extensions.
func Extensions() []string {
	out := make([]string, 0, len(openers))
	for ext := range openers {
		out = append(out, ext)
	}
	return out
}

// Supported reports whether path has a known audio extension.
func Supported(path string) bool {
	_, ok := openers[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Open opens path, choosing the decoder by file extension.
func Open(path string) (*Reader, error) {
	ext := strings.ToLower(filepath.Ext(path))
	open, ok := openers[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	dec, channels, sampleRate, frames, err := open(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return newReader(path, dec, channels, sampleRate, frames)
}
