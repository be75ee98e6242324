package audiofile

import (
	"io"
	"sync"
)

// memoryDecoder plays an interleaved clip held in memory.
type memoryDecoder struct {
	mu       sync.Mutex
	samples  []float32
	channels int
	pos      int
}

// FromSamples returns a reader over interleaved samples. A trailing partial
// frame is dropped.
func FromSamples(name string, samples []float32, channels int, sampleRate float64) (*Reader, error) {
	if channels > 0 {
		samples = samples[:len(samples)/channels*channels]
	}
	dec := &memoryDecoder{samples: samples, channels: channels}
	frames := int64(0)
	if channels > 0 {
		frames = int64(len(samples) / channels)
	}
	return newReader(name, dec, channels, sampleRate, frames)
}

// FromPlanar returns a reader over one slice per channel. Every channel is
// cut to the shortest.
func FromPlanar(name string, channels [][]float32, sampleRate float64) (*Reader, error) {
	n := 0
	for i, c := range channels {
		if i == 0 || len(c) < n {
			n = len(c)
		}
	}
	samples := make([]float32, 0, n*len(channels))
	for i := range n {
		for _, c := range channels {
			samples = append(samples, c[i])
		}
	}
	return FromSamples(name, samples, len(channels), sampleRate)
}

func (m *memoryDecoder) read(dst []float32) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pos >= len(m.samples) {
		return 0, io.EOF
	}
	n := copy(dst[:len(dst)/m.channels*m.channels], m.samples[m.pos:])
	m.pos += n
	return n / m.channels, nil
}

func (m *memoryDecoder) rewind() error {
	m.mu.Lock()
	m.pos = 0
	m.mu.Unlock()
	return nil
}

func (m *memoryDecoder) close() error {
	return nil
}
