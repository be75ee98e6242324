// Package audiograph builds pull-based audio synthesis graphs in pure Go.
//
// A graph is a tree of units. The root is pulled once per output block and
// every unit pulls its own inputs, so each unit renders at its own sample
// rate and block size. Rate converters sit at the seams where formats
// differ.
//
// # Features
//
//   - Streaming rate conversion with none, linear or Lagrange interpolation
//     and varispeed playback through a rate-control unit
//   - Fractional delay lines with per-sample duration modulation
//   - File playback from WAV, AIFF, Ogg Vorbis and MP3 with looping,
//     sequenced and random multi-file playlists
//   - Background file reading so disk I/O stays off the audio thread
//   - float32 and float64 graphs with SIMD block operations via
//     github.com/tphakala/simd
//
// # Quick Start
//
// Play a file at half speed, delayed by 100 ms:
//
//	cfg := audiograph.DefaultConfig()
//	r, err := audiograph.OpenFile("loop.wav")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	file, err := audiograph.FilePlay[float32](r, nil, nil, nil, &cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	slow, err := audiograph.Resample(file, audiograph.Constant[float32](0.5), &cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	delayed, err := audiograph.Delay(slow, audiograph.Constant[float32](0.1), 1, &cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	g, err := audiograph.NewGraph(delayed, &cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	planar := g.Render(44100) // one second
//
// # Control
//
// Parameters that change while the graph runs are [Var] values wrapped by
// [Control]. Control goroutines call Set; the graph reads the value once
// per block.
//
// # Thread Safety
//
// A [Graph] and its units are driven from one goroutine. [SimplePlayer]
// moves file reading to a background goroutine and hands blocks over a
// lock-free queue; the player itself is still pulled from the graph's
// goroutine.
package audiograph
