// Command graph-render plays an audio file through a graph and writes the
// result to a WAV file.
//
// Usage:
//
//	graph-render -rate 48 input.wav output.wav                # Convert to 48 kHz
//	graph-render -speed 0.5 -interp lagrange3 in.ogg slow.wav # Half speed, cubic interpolation
//	graph-render -delay 0.25 -loop-seconds 10 loop.aiff out.wav
//	graph-render -fast input.mp3 output.wav                   # float32 graph
//
// The input may be WAV, AIFF, Ogg Vorbis or MP3. Rendering and encoding run
// on separate goroutines.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"time"

	audiograph "github.com/tphakala/go-audio-graph"
)

const (
	// CLI defaults
	defaultBitDepth = 16
	minRequiredArgs = 2
	kHzToHz         = 1000
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	rateKHz := flag.Float64("rate", 0, "Output sample rate in kHz (0 keeps the input rate)")
	speed := flag.Float64("speed", 1, "Playback speed; 0.5 is half speed and an octave down")
	interpName := flag.String("interp", "linear", "Interpolation: none, linear, lagrange3")
	delaySec := flag.Float64("delay", 0, "Delay the output by this many seconds")
	loopSec := flag.Float64("loop-seconds", 0, "Loop the input and render this many seconds (0 plays it once)")
	bits := flag.Int("bits", defaultBitDepth, "Output bit depth: 8, 16, 24, 32")
	blockSize := flag.Int("block", audiograph.DefaultConfig().BlockSize, "Graph block size in frames")
	fast := flag.Bool("fast", false, "Use a float32 graph instead of float64")
	verbose := flag.Bool("v", false, "Verbose output")
	cpuprofile := flag.String("cpuprofile", "", "Write CPU profile to file")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input output.wav\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -rate 48 input.wav output.wav     # Convert to 48kHz\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -speed 2 speech.ogg fast.wav      # Double speed\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -delay 0.5 drums.wav delayed.wav  # Half a second late\n", os.Args[0])
		return fmt.Errorf("insufficient arguments")
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	kind, err := audiograph.ParseInterpolation(*interpName)
	if err != nil {
		return err
	}

	opts := renderOptions{
		outputRate:  *rateKHz * kHzToHz,
		speed:       *speed,
		interp:      kind,
		delay:       *delaySec,
		loopSeconds: *loopSec,
		bitDepth:    *bits,
		blockSize:   *blockSize,
	}
	if *verbose {
		opts.logger = log.Default()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	inputPath, outputPath := args[0], args[1]
	start := time.Now()
	var stats *renderStats
	if *fast {
		stats, err = renderFile[float32](ctx, inputPath, outputPath, opts)
	} else {
		stats, err = renderFile[float64](ctx, inputPath, outputPath, opts)
	}
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("Rendered %s -> %s\n", filepath.Base(inputPath), filepath.Base(outputPath))
	fmt.Printf("  %.0f Hz -> %.0f Hz (%d channels, %d-bit, %s interpolation)\n",
		stats.inputRate, stats.outputRate, stats.channels, opts.bitDepth, kind)
	fmt.Printf("  %d frames written, %.2fs of audio\n", stats.outputFrames, float64(stats.outputFrames)/stats.outputRate)
	fmt.Printf("  Duration: %.2fs, Speed: %.1fx realtime\n",
		elapsed.Seconds(), float64(stats.outputFrames)/stats.outputRate/elapsed.Seconds())

	return nil
}
