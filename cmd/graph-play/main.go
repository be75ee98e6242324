// Command graph-play plays audio files on the default output device.
//
// Usage:
//
//	graph-play song.ogg
//	graph-play -speed 0.8 -hq song.wav                  # Slower, cubic interpolation
//	graph-play -mode shuffle -seed 7 a.wav b.wav c.wav  # Reproducible shuffle
//	graph-play -mode queue intro.wav verse.wav          # Play once, in order
//
// Several files must share channel count and sample rate. Files are read
// on a background goroutine and converted to the device rate.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	audiograph "github.com/tphakala/go-audio-graph"
	"github.com/tphakala/go-audio-graph/internal/host"
)

const (
	// CLI defaults
	defaultDeviceRate = 48000
	defaultChannels   = 2

	// How often the main goroutine checks for the end of playback
	pollInterval = 100 * time.Millisecond
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	rate := flag.Float64("rate", defaultDeviceRate, "Device sample rate in Hz")
	block := flag.Int("block", audiograph.DefaultConfig().BlockSize, "Graph block size in frames")
	channels := flag.Int("channels", defaultChannels, "Device channel count")
	speed := flag.Float64("speed", 1, "Playback speed")
	hq := flag.Bool("hq", false, "Use Lagrange interpolation")
	loop := flag.Bool("loop", false, "Loop the stream until interrupted")
	mode := flag.String("mode", "sequence", "Multi-file mode: sequence, loop, random, shuffle, queue")
	seed := flag.Uint64("seed", 0, "Seed for the random modes (0 is unseeded)")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] file...\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		return fmt.Errorf("no input files")
	}

	logger := log.New(io.Discard, "", 0)
	if *verbose {
		logger = log.Default()
	}

	cfg := audiograph.DefaultConfig()
	cfg.SampleRate = *rate
	cfg.BlockSize = *block
	cfg.Logger = logger
	if err := cfg.Validate(); err != nil {
		return err
	}

	src, err := openSource(flag.Args(), *mode, *seed)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()
	logger.Printf("Playing %s: %.0f Hz, %d channels", src.reader.Name(), src.reader.SampleRate(), src.reader.NumChannels())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	player, err := newPlayer(ctx, src.reader, *speed, *loop, *hq, &cfg)
	if err != nil {
		return err
	}
	defer func() { _ = player.Close() }()

	mix, err := audiograph.Mixer[float32](*channels, true, &cfg)
	if err != nil {
		return err
	}
	mix.Add(player)

	renderer, err := host.NewRenderer[float32](mix, *channels)
	if err != nil {
		return err
	}
	device, err := host.OpenDevice(renderer, logger)
	if err != nil {
		return err
	}
	defer func() { _ = device.Close() }()
	if err := device.Start(); err != nil {
		return err
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for !renderer.Finished() {
		select {
		case <-ctx.Done():
			logger.Printf("Interrupted")
			return nil
		case <-ticker.C:
		}
	}

	if n := player.Underruns(); n > 0 {
		fmt.Printf("%d blocks were late\n", n)
	}
	return nil
}

// newPlayer builds the background-read, rate-converted player for r.
func newPlayer(ctx context.Context, r *audiograph.Reader, speed float64, loop, hq bool, cfg *audiograph.Config) (*audiograph.Player[float32], error) {
	loopUnit := audiograph.Constant[float32](0)
	if loop {
		loopUnit = audiograph.Constant[float32](1)
	}
	var rateUnit audiograph.Unit[float32]
	if speed != 1 {
		rateUnit = audiograph.Constant(float32(speed))
	}

	if hq {
		return audiograph.SimplePlayerHQ(ctx, r, rateUnit, loopUnit, cfg)
	}
	return audiograph.SimplePlayer(ctx, r, rateUnit, loopUnit, cfg)
}
