// Package pcm holds the decoded representation shared by the loaders and the engine.
package pcm

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnreadable reports a file that could not be opened or read.
	ErrUnreadable = errors.New("unreadable")
	// ErrUnsupportedFormat reports a file that was read but could not be decoded to linear PCM.
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// Format describes decoded audio.
type Format struct {
	ChannelCount int
	SampleRate   int
	// BitDepth is the resolution of the source file, not of the decoded samples (always float32).
	BitDepth    int
	TotalFrames int64
}

// Duration returns the playing time of TotalFrames at SampleRate.
func (f Format) Duration() time.Duration {
	if f.SampleRate <= 0 {
		return 0
	}
	return time.Duration(f.TotalFrames) * time.Second / time.Duration(f.SampleRate)
}

// FrameDuration converts a frame index to a time offset.
func (f Format) FrameDuration(frame int64) time.Duration {
	if f.SampleRate <= 0 {
		return 0
	}
	return time.Duration(frame) * time.Second / time.Duration(f.SampleRate)
}

func (f Format) String() string {
	return fmt.Sprintf("%dch %dHz %dbit %d frames", f.ChannelCount, f.SampleRate, f.BitDepth, f.TotalFrames)
}

// Decoded is a fully decoded file.
//
//	[Samples]  = [frame 0] [frame 1] [frame 2] ...
//	[frame *]  = [channel 0] [channel 1] ...
//	[channel *] = [float32] in [-1, 1]
type Decoded struct {
	Format  Format
	Samples []float32
}

// NewDecoded builds a Decoded from interleaved samples, deriving TotalFrames.
func NewDecoded(samples []float32, channelCount, sampleRate, bitDepth int) Decoded {
	frames := int64(0)
	if channelCount > 0 {
		frames = int64(len(samples) / channelCount)
	}
	return Decoded{
		Format: Format{
			ChannelCount: channelCount,
			SampleRate:   sampleRate,
			BitDepth:     bitDepth,
			TotalFrames:  frames,
		},
		Samples: samples[:frames*int64(max(channelCount, 0))],
	}
}

// Validate checks that the format is usable and agrees with the sample data.
func (d Decoded) Validate() error {
	f := d.Format
	if f.ChannelCount <= 0 {
		return fmt.Errorf("%w: channel count must be positive but was %d", ErrUnsupportedFormat, f.ChannelCount)
	}
	if f.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive but was %d", ErrUnsupportedFormat, f.SampleRate)
	}
	if f.TotalFrames < 0 || int64(len(d.Samples)) != f.TotalFrames*int64(f.ChannelCount) {
		return fmt.Errorf("%w: %d samples do not hold %d frames of %d channels",
			ErrUnsupportedFormat, len(d.Samples), f.TotalFrames, f.ChannelCount)
	}
	return nil
}
