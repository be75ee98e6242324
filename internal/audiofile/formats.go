package audiofile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/aiff"
	"github.com/go-audio/wav"
	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

// WAV audio format tags accepted by the PCM backend.
const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

// go-mp3 always decodes to 16-bit little-endian stereo.
const (
	mp3Channels      = 2
	mp3BytesPerFrame = 4
	mp3SampleScale   = 1.0 / 32768
)

func openWAV(f *os.File) (decoder, int, float64, int64, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, 0, 0, fmt.Errorf("%w: not a WAV file", ErrInvalidFile)
	}
	if dec.WavAudioFormat != wavFormatPCM && dec.WavAudioFormat != wavFormatExtensible {
		return nil, 0, 0, 0, fmt.Errorf("%w: WAV audio format %d", ErrUnsupportedFormat, dec.WavAudioFormat)
	}

	format := dec.Format()
	reset := func() (pcmSource, error) {
		if err := dec.Rewind(); err != nil {
			return nil, err
		}
		return dec, nil
	}
	pcm, err := newPCMDecoder(f, dec, format, int(dec.BitDepth), true, reset)
	if err != nil {
		return nil, 0, 0, 0, err
	}

	if err := dec.FwdToPCM(); err != nil {
		return nil, 0, 0, 0, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	frameBytes := int64(dec.BitDepth) / 8 * int64(format.NumChannels)
	return pcm, format.NumChannels, float64(format.SampleRate), dec.PCMLen() / frameBytes, nil
}

func openAIFF(f *os.File) (decoder, int, float64, int64, error) {
	dec := aiff.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, 0, 0, fmt.Errorf("%w: not an AIFF file", ErrInvalidFile)
	}
	dec.ReadInfo()
	format := dec.Format()
	if format == nil {
		return nil, 0, 0, 0, fmt.Errorf("%w: AIFF header", ErrInvalidFile)
	}

	// The AIFF decoder cannot rewind; a fresh decoder over the same file
	// starts again from the header.
	reset := func() (pcmSource, error) {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		fresh := aiff.NewDecoder(f)
		if !fresh.IsValidFile() {
			return nil, fmt.Errorf("%w: AIFF header on rewind", ErrInvalidFile)
		}
		fresh.ReadInfo()
		return fresh, nil
	}
	pcm, err := newPCMDecoder(f, dec, format, int(dec.BitDepth), false, reset)
	if err != nil {
		return nil, 0, 0, 0, err
	}
	return pcm, format.NumChannels, float64(format.SampleRate), -1, nil
}

// oggDecoder reads Ogg Vorbis through jfreymuth/oggvorbis, which already
// produces interleaved float32.
type oggDecoder struct {
	file     *os.File
	r        *oggvorbis.Reader
	channels int
}

func openOgg(f *os.File) (decoder, int, float64, int64, error) {
	r, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, 0, 0, 0, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	frames := r.Length()
	if frames == 0 {
		frames = -1
	}
	return &oggDecoder{file: f, r: r, channels: r.Channels()}, r.Channels(), float64(r.SampleRate()), frames, nil
}

func (d *oggDecoder) read(dst []float32) (int, error) {
	want := len(dst) / d.channels * d.channels
	n, err := d.r.Read(dst[:want])
	frames := n / d.channels
	if frames > 0 {
		return frames, nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return 0, io.EOF
	}
	return 0, err
}

func (d *oggDecoder) rewind() error {
	return d.r.SetPosition(0)
}

func (d *oggDecoder) close() error {
	return d.file.Close()
}

// mp3Decoder reads MP3 through hajimehoshi/go-mp3.
type mp3Decoder struct {
	file *os.File
	dec  *gomp3.Decoder
	buf  []byte
}

func openMP3(f *os.File) (decoder, int, float64, int64, error) {
	dec, err := gomp3.NewDecoder(f)
	if err != nil {
		return nil, 0, 0, 0, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	frames := int64(-1)
	if n := dec.Length(); n >= 0 {
		frames = n / mp3BytesPerFrame
	}
	return &mp3Decoder{file: f, dec: dec}, mp3Channels, float64(dec.SampleRate()), frames, nil
}

func (d *mp3Decoder) read(dst []float32) (int, error) {
	want := len(dst) / mp3Channels
	if cap(d.buf) < want*mp3BytesPerFrame {
		d.buf = make([]byte, want*mp3BytesPerFrame)
	}
	buf := d.buf[:want*mp3BytesPerFrame]

	n, err := io.ReadFull(d.dec, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return 0, err
	}
	frames := n / mp3BytesPerFrame
	if frames == 0 {
		return 0, io.EOF
	}
	for i := range frames * mp3Channels {
		dst[i] = float32(int16(binary.LittleEndian.Uint16(buf[2*i:]))) * mp3SampleScale
	}
	return frames, nil
}

func (d *mp3Decoder) rewind() error {
	_, err := d.dec.Seek(0, io.SeekStart)
	return err
}

func (d *mp3Decoder) close() error {
	return d.file.Close()
}
