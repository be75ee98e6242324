package host

import (
	"encoding/binary"
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/gen2brain/malgo"
)

const bytesPerSample = 4 // float32

// Source is what a Device plays: a Renderer of either sample type.
type Source interface {
	NumChannels() int
	SampleRate() float64
	Render(out []float32)
}

// Device plays a Source on the default miniaudio playback device.
type Device struct {
	mctx   *malgo.AllocatedContext
	device *malgo.Device
	src    Source
	logger *log.Logger

	// frames is written by the audio callback only.
	frames []float32

	closeOnce sync.Once
}

// OpenDevice initialises the default playback device for src. The device is
// created stopped; call Start.
func OpenDevice(src Source, logger *log.Logger) (*Device, error) {
	d := &Device{src: src, logger: logger}

	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(msg string) {
		d.logf("malgo: %s", msg)
	})
	if err != nil {
		return nil, fmt.Errorf("host: init audio context: %w", err)
	}
	d.mctx = mctx

	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatF32
	cfg.Playback.Channels = uint32(src.NumChannels())
	cfg.SampleRate = uint32(math.Round(src.SampleRate()))
	cfg.Alsa.NoMMap = 1

	device, err := malgo.InitDevice(mctx.Context, cfg, malgo.DeviceCallbacks{
		Data: d.callback,
	})
	if err != nil {
		d.freeContext()
		return nil, fmt.Errorf("host: init playback device: %w", err)
	}
	d.device = device
	return d, nil
}

// Start begins playback.
func (d *Device) Start() error {
	if err := d.device.Start(); err != nil {
		return fmt.Errorf("host: start device: %w", err)
	}
	return nil
}

// Stop pauses playback. The device can be started again.
func (d *Device) Stop() error {
	if err := d.device.Stop(); err != nil {
		return fmt.Errorf("host: stop device: %w", err)
	}
	return nil
}

// Close stops playback and releases the device and context.
func (d *Device) Close() error {
	d.closeOnce.Do(func() {
		d.device.Uninit()
		d.freeContext()
	})
	return nil
}

func (d *Device) callback(out, _ []byte, framecount uint32) {
	if framecount == 0 {
		return
	}
	n := int(framecount) * d.src.NumChannels()
	if cap(d.frames) < n {
		d.frames = make([]float32, n)
	}
	frames := d.frames[:n]
	d.src.Render(frames)
	encodeFloat32(out, frames)
}

// encodeFloat32 writes samples to dst as little-endian float32.
func encodeFloat32(dst []byte, samples []float32) {
	for i, s := range samples {
		if (i+1)*bytesPerSample > len(dst) {
			return
		}
		binary.LittleEndian.PutUint32(dst[i*bytesPerSample:], math.Float32bits(s))
	}
}

func (d *Device) freeContext() {
	if err := d.mctx.Uninit(); err != nil {
		d.logf("host: uninit audio context: %v", err)
	}
	d.mctx.Free()
}

func (d *Device) logf(format string, args ...any) {
	if d.logger != nil {
		d.logger.Printf(format, args...)
	}
}
