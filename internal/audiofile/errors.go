package audiofile

import "errors"

// Sentinel errors. Callers match them with errors.Is.
var (
	ErrReaderOwned       = errors.New("audiofile: reader is already leased")
	ErrLeaseReleased     = errors.New("audiofile: lease has been released")
	ErrUnsupportedFormat = errors.New("audiofile: unsupported format")
	ErrInvalidFile       = errors.New("audiofile: invalid file")
	ErrNoFiles           = errors.New("audiofile: no files")
	ErrFormatMismatch    = errors.New("audiofile: channel count or sample rate mismatch")
	ErrQueueFull         = errors.New("audiofile: queue is full")
	ErrInvalidMode       = errors.New("audiofile: invalid multi-file mode")
	ErrBitDepth          = errors.New("audiofile: unsupported bit depth")
	ErrWriterClosed      = errors.New("audiofile: writer is closed")
)
