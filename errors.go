package reverseaudio

import "github.com/Lundis/go-reverseaudio/pcm"

// Open errors. Both are recoverable: the caller can pick another file.
var (
	ErrUnreadable        = pcm.ErrUnreadable
	ErrUnsupportedFormat = pcm.ErrUnsupportedFormat
)

type (
	Format  = pcm.Format
	Decoded = pcm.Decoded
)
