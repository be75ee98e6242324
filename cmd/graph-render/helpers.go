package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"golang.org/x/sync/errgroup"

	audiograph "github.com/tphakala/go-audio-graph"
	"github.com/tphakala/go-audio-graph/internal/audiofile"
)

const (
	// Rendered blocks waiting for the encoder
	renderQueueDepth = 16

	progressInterval = 10 // Print progress every N%
	percentScale     = 100
)

var errNonPositiveSpeed = errors.New("speed must be positive")

// renderOptions holds the command-line settings for one render.
type renderOptions struct {
	outputRate  float64 // 0 keeps the input rate
	speed       float64
	interp      audiograph.Interpolation
	delay       float64
	loopSeconds float64
	bitDepth    int
	blockSize   int
	logger      *log.Logger
}

type renderStats struct {
	inputRate    float64
	outputRate   float64
	channels     int
	outputFrames int64
}

// renderGraph is a built graph plus the file's end-of-stream flag.
type renderGraph[F audiograph.Float] struct {
	graph *audiograph.Graph[F]
	file  *audiograph.FilePlayer[F]
}

func renderFile[F audiograph.Float](ctx context.Context, inputPath, outputPath string, opts renderOptions) (stats *renderStats, err error) {
	if !(opts.speed > 0) {
		return nil, fmt.Errorf("%w: %v", errNonPositiveSpeed, opts.speed)
	}

	r, err := audiograph.OpenFile(inputPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	cfg := configFor(r, opts)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.logger != nil {
		opts.logger.Printf("Input: %s, %.0f Hz, %d channels, %d frames", inputPath, r.SampleRate(), r.NumChannels(), r.Frames())
		opts.logger.Printf("Output: %s, %.0f Hz, %d-bit", outputPath, cfg.SampleRate, opts.bitDepth)
	}

	rg, err := buildGraph[F](r, opts, &cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rg.file.Close() }()

	w, err := audiofile.Create(outputPath, int(cfg.SampleRate), opts.bitDepth, r.NumChannels())
	if err != nil {
		return nil, err
	}
	// Close errors matter: the WAV header is written on close.
	defer func() {
		if closeErr := w.Close(); err == nil {
			err = closeErr
		}
	}()

	frames := outputFrames(r.Frames(), r.SampleRate(), cfg.SampleRate, opts)
	progress := newProgressTracker(frames, opts.logger)
	if err := renderTo(ctx, rg, w, frames, int64(math.Round(opts.delay*cfg.SampleRate)), progress); err != nil {
		return nil, err
	}

	return &renderStats{
		inputRate:    r.SampleRate(),
		outputRate:   cfg.SampleRate,
		channels:     r.NumChannels(),
		outputFrames: w.Frames(),
	}, nil
}

// configFor returns the graph configuration for rendering r.
func configFor(r *audiograph.Reader, opts renderOptions) audiograph.Config {
	cfg := audiograph.DefaultConfig()
	cfg.SampleRate = r.SampleRate()
	if opts.outputRate > 0 {
		cfg.SampleRate = opts.outputRate
	}
	if opts.blockSize > 0 {
		cfg.BlockSize = opts.blockSize
	}
	cfg.Interpolation = opts.interp
	cfg.Logger = opts.logger
	return cfg
}

// buildGraph wires file -> rate converter -> delay. With a delay the
// converted signal goes through a mixer that outlives the file, so the
// delay tail is rendered after the file ends.
func buildGraph[F audiograph.Float](r *audiograph.Reader, opts renderOptions, cfg *audiograph.Config) (*renderGraph[F], error) {
	loop := audiograph.Constant[F](0)
	if opts.loopSeconds > 0 {
		loop = audiograph.Constant[F](1)
	}
	file, err := audiograph.FilePlay(r, loop, nil, nil, cfg)
	if err != nil {
		return nil, err
	}

	var rate audiograph.Unit[F]
	if opts.speed != 1 {
		rate = audiograph.Constant(F(opts.speed))
	}
	root, err := audiograph.Resample[F](file, rate, cfg)
	if err != nil {
		_ = file.Close()
		return nil, err
	}

	if opts.delay > 0 {
		mix, err := audiograph.Mixer[F](r.NumChannels(), false, cfg)
		if err != nil {
			_ = file.Close()
			return nil, err
		}
		mix.Add(root)
		root, err = audiograph.Delay[F](mix, audiograph.Constant(F(opts.delay)), opts.delay, cfg)
		if err != nil {
			_ = file.Close()
			return nil, err
		}
	}

	g, err := audiograph.NewGraph(root, cfg)
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	return &renderGraph[F]{graph: g, file: file}, nil
}

// outputFrames returns how many frames to render, or -1 when the input
// length is unknown and rendering runs until the file ends.
func outputFrames(inputFrames int64, inputRate, outputRate float64, opts renderOptions) int64 {
	if opts.loopSeconds > 0 {
		return int64(math.Round(opts.loopSeconds * outputRate))
	}
	if inputFrames < 0 {
		return -1
	}
	played := math.Ceil(float64(inputFrames) / inputRate / opts.speed * outputRate)
	return int64(played) + int64(math.Round(opts.delay*outputRate))
}

// renderTo pulls blocks from the graph on one goroutine and encodes them on
// another. A negative frames renders until the file is done, then tail
// more frames.
func renderTo[F audiograph.Float](ctx context.Context, rg *renderGraph[F], w *audiofile.Writer, frames, tail int64, progress *progressTracker) error {
	blocks := make(chan [][]F, renderQueueDepth)
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		defer close(blocks)
		var rendered int64
		for frames < 0 || rendered < frames {
			if frames < 0 && rg.file.Done().Get() {
				frames = rendered + tail
				continue
			}

			next := rg.graph.Next()
			n := len(next[0])
			if frames >= 0 {
				n = int(min(int64(n), frames-rendered))
			}
			block := make([][]F, len(next))
			for ch := range next {
				block[ch] = append([]F(nil), next[ch][:n]...)
			}
			rendered += int64(n)

			select {
			case blocks <- block:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	eg.Go(func() error {
		for block := range blocks {
			if err := audiofile.WritePlanar(w, block); err != nil {
				return err
			}
			progress.reportIfNeeded(w.Frames())
		}
		return nil
	})

	return eg.Wait()
}

// progressTracker handles progress reporting.
type progressTracker struct {
	totalFrames  int64
	lastProgress int
	logger       *log.Logger
}

func newProgressTracker(totalFrames int64, logger *log.Logger) *progressTracker {
	return &progressTracker{totalFrames: totalFrames, logger: logger}
}

// reportIfNeeded reports progress if threshold crossed.
func (p *progressTracker) reportIfNeeded(currentFrames int64) {
	if p.logger == nil || p.totalFrames <= 0 {
		return
	}

	progress := int(float64(currentFrames) / float64(p.totalFrames) * percentScale)
	if progress >= p.lastProgress+progressInterval {
		p.logger.Printf("Progress: %d%%", progress)
		p.lastProgress = progress
	}
}
