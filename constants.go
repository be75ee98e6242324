package audiograph

// Channel constants
const (
	stereoChannels = 2 // Stereo channel count (used by interleave functions)
)

// Config limits
const (
	minSampleRate = 1.0      // Lowest graph rate in Hz
	maxSampleRate = 768000.0 // Highest graph rate in Hz
	maxBlockSize  = 1 << 16  // Largest block in frames
)

// Simple player settings
const (
	simplePlayerBuffers = 8 // Blocks the background task renders ahead

	// The file block is a multiple of the graph block so one file read feeds
	// at least two converter refills at the highest expected speed.
	simplePlayerBlockFactor = 2
)
