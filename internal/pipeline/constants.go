package pipeline

// Buffer sizing
const (
	minFIFOCapacity    = 16 // Smallest sample FIFO allocation
	fifoGrowthFactor   = 2  // Factor for FIFO growth
	minQueueCapacity   = 2  // Smallest SPSC queue ring
	cacheLinePadding   = 64 // Bytes between producer and consumer cursors
	cursorSize         = 8  // Size of a uint64 cursor
	cursorPaddingBytes = cacheLinePadding - cursorSize
)
