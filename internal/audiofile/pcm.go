package audiofile

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
)

// pcmSource is the part of the go-audio WAV and AIFF decoders the PCM
// backends use.
type pcmSource interface {
	PCMBuffer(buf *audio.IntBuffer) (int, error)
}

// pcmDecoder converts integer PCM from a go-audio decoder to float32.
type pcmDecoder struct {
	file     *os.File
	src      pcmSource
	format   *audio.Format
	channels int
	scale    float32
	bias     int
	buf      *audio.IntBuffer

	// reset rebuilds src positioned at the first frame.
	reset func() (pcmSource, error)
}

func newPCMDecoder(f *os.File, src pcmSource, format *audio.Format, bitDepth int, unsigned8 bool, reset func() (pcmSource, error)) (*pcmDecoder, error) {
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrBitDepth, bitDepth)
	}
	d := &pcmDecoder{
		file:     f,
		src:      src,
		format:   format,
		channels: format.NumChannels,
		scale:    1 / float32(int64(1)<<(bitDepth-1)),
		buf:      &audio.IntBuffer{Format: format},
		reset:    reset,
	}
	if bitDepth == 8 && unsigned8 {
		d.bias = 128
	}
	return d, nil
}

func (d *pcmDecoder) read(dst []float32) (int, error) {
	want := len(dst) / d.channels * d.channels
	if cap(d.buf.Data) < want {
		d.buf.Data = make([]int, want)
	}
	d.buf.Data = d.buf.Data[:want]

	n, err := d.src.PCMBuffer(d.buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, err
	}
	frames := n / d.channels
	if frames == 0 {
		return 0, io.EOF
	}
	for i, v := range d.buf.Data[:frames*d.channels] {
		dst[i] = float32(v-d.bias) * d.scale
	}
	return frames, nil
}

func (d *pcmDecoder) rewind() error {
	src, err := d.reset()
	if err != nil {
		return err
	}
	d.src = src
	return nil
}

func (d *pcmDecoder) close() error {
	return d.file.Close()
}
