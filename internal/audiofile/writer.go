package audiofile

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/tphakala/go-audio-graph/internal/simdops"
)

// wavFormatTag is the PCM format tag passed to the WAV encoder.
const wavFormatTag = 1

// Writer writes integer PCM WAV files from float samples in [-1, 1].
// Out-of-range samples are clipped.
type Writer struct {
	file     *os.File
	enc      *wav.Encoder
	channels int
	bitDepth int
	maxVal   float64
	bias     int
	buf      *audio.IntBuffer
	frames   int64
	closed   bool
}

// Create creates path and returns a writer for channels channels of
// bitDepth-bit PCM (8, 16, 24 or 32) at sampleRate.
func Create(path string, sampleRate, bitDepth, channels int) (*Writer, error) {
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrBitDepth, bitDepth)
	}
	if channels < 1 || sampleRate < 1 {
		return nil, fmt.Errorf("%w: %d channels at %d Hz", ErrUnsupportedFormat, channels, sampleRate)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	w := &Writer{
		file:     f,
		enc:      wav.NewEncoder(f, sampleRate, bitDepth, channels, wavFormatTag),
		channels: channels,
		bitDepth: bitDepth,
		maxVal:   float64(audio.IntMaxSignedValue(bitDepth)),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
	}
	// 8-bit WAV is unsigned.
	if bitDepth == 8 {
		w.bias = 128
	}
	return w, nil
}

// NumChannels returns the channel count.
func (w *Writer) NumChannels() int {
	return w.channels
}

// Frames returns the number of frames written so far.
func (w *Writer) Frames() int64 {
	return w.frames
}

// WriteInterleaved writes interleaved float32 frames. A trailing partial
// frame is ignored.
func (w *Writer) WriteInterleaved(samples []float32) error {
	if w.closed {
		return ErrWriterClosed
	}
	n := len(samples) / w.channels * w.channels
	data := w.intData(n)
	for i, s := range samples[:n] {
		data[i] = w.quantize(float64(s))
	}
	return w.flush(n / w.channels)
}

// WritePlanar writes one slice per channel; every channel is cut to the
// shortest. Channels beyond the writer's count are ignored and missing
// channels are written as silence.
func WritePlanar[F simdops.Float](w *Writer, planar [][]F) error {
	if w.closed {
		return ErrWriterClosed
	}
	frames := -1
	for _, c := range planar[:min(len(planar), w.channels)] {
		if frames < 0 || len(c) < frames {
			frames = len(c)
		}
	}
	if frames <= 0 {
		return nil
	}

	data := w.intData(frames * w.channels)
	for ch := range w.channels {
		if ch >= len(planar) {
			for i := range frames {
				data[i*w.channels+ch] = w.bias
			}
			continue
		}
		for i, s := range planar[ch][:frames] {
			data[i*w.channels+ch] = w.quantize(float64(s))
		}
	}
	return w.flush(frames)
}

func (w *Writer) intData(n int) []int {
	if cap(w.buf.Data) < n {
		w.buf.Data = make([]int, n)
	}
	w.buf.Data = w.buf.Data[:n]
	return w.buf.Data
}

func (w *Writer) quantize(s float64) int {
	s = max(-1, min(1, s))
	return int(s*w.maxVal) + w.bias
}

func (w *Writer) flush(frames int) error {
	if frames == 0 {
		return nil
	}
	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("failed to write audio data: %w", err)
	}
	w.frames += int64(frames)
	return nil
}

// Close finalises the WAV header and closes the file.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.enc.Close(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("failed to finalise WAV header: %w", err)
	}
	return w.file.Close()
}
