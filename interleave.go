package audiograph

import "github.com/tphakala/go-audio-graph/internal/simdops"

// Interleave converts planar channels to interleaved frames. All channels
// are cut to the shortest. Stereo uses the SIMD interleaver.
func Interleave[F Float](planar [][]F) []F {
	if len(planar) == 0 {
		return nil
	}
	frames := len(planar[0])
	for _, ch := range planar[1:] {
		frames = min(frames, len(ch))
	}

	channels := len(planar)
	result := make([]F, frames*channels)
	if channels == stereoChannels {
		simdops.For[F]().Interleave2(result, planar[0][:frames], planar[1][:frames])
		return result
	}
	for i := range frames {
		for ch := range channels {
			result[i*channels+ch] = planar[ch][i]
		}
	}
	return result
}

// Deinterleave splits interleaved frames into planar channels. A trailing
// partial frame is dropped.
func Deinterleave[F Float](interleaved []F, channels int) [][]F {
	if channels < 1 {
		return nil
	}
	frames := len(interleaved) / channels
	planar := make([][]F, channels)
	for ch := range planar {
		planar[ch] = make([]F, frames)
		for i := range frames {
			planar[ch][i] = interleaved[i*channels+ch]
		}
	}
	return planar
}
