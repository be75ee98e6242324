package audiograph

import (
	"math/rand/v2"

	"github.com/tphakala/go-audio-graph/internal/audiofile"
)

// ErrReaderOwned is returned when a reader is already being played.
var ErrReaderOwned = audiofile.ErrReaderOwned

// Reader is an open audio stream that one player at a time may read.
type Reader = audiofile.Reader

// OpenFile opens a WAV, AIFF, Ogg Vorbis or MP3 file, choosing the decoder
// by extension.
func OpenFile(path string) (*Reader, error) {
	return audiofile.Open(path)
}

// ReaderFromSamples wraps interleaved samples as a Reader.
func ReaderFromSamples(name string, interleaved []float32, channels int, sampleRate float64) (*Reader, error) {
	return audiofile.FromSamples(name, interleaved, channels, sampleRate)
}

// SequenceMode selects how a multi-file reader moves between files.
type SequenceMode = audiofile.Mode

// Sequence modes.
const (
	SequenceOnce   = audiofile.SequenceOnce
	SequenceLoop   = audiofile.SequenceLoop
	Random         = audiofile.Random
	RandomNoRepeat = audiofile.RandomNoRepeat
)

// MultiOption configures MultiReader.
type MultiOption = audiofile.MultiOption

// WithRand makes the random modes draw from rng, for reproducible order.
func WithRand(rng *rand.Rand) MultiOption {
	return audiofile.WithRand(rng)
}

// MultiReader presents several files of one format as a single stream. The
// readers are leased for the life of the returned reader.
func MultiReader(mode SequenceMode, readers []*Reader, opts ...MultiOption) (*Reader, error) {
	m, err := audiofile.NewMulti(mode, readers, opts...)
	if err != nil {
		return nil, err
	}
	return m.Reader(), nil
}
