// Package oggvorbis decodes Ogg Vorbis files to PCM.
package oggvorbis

import (
	"bytes"
	"fmt"

	"github.com/Lundis/go-reverseaudio/pcm"
	"github.com/jfreymuth/oggvorbis"
)

// Vorbis decodes to float samples, there is no integer bit depth to report.
const decodedBitDepth = 32

// Load decodes a whole Ogg Vorbis stream held in memory.
// If expectedSampleRate is not 0, streams with another sample rate are rejected.
func Load(oggData []byte, expectedSampleRate int) (pcm.Decoded, error) {
	data, format, err := oggvorbis.ReadAll(bytes.NewReader(oggData))
	if err != nil {
		return pcm.Decoded{}, fmt.Errorf("oggvorbis: %w: %w", pcm.ErrUnsupportedFormat, err)
	}
	if format.Channels <= 0 {
		return pcm.Decoded{}, fmt.Errorf("oggvorbis: number of channels must be positive but was %d: %w", format.Channels, pcm.ErrUnsupportedFormat)
	}
	if expectedSampleRate != 0 && format.SampleRate != expectedSampleRate {
		return pcm.Decoded{}, fmt.Errorf("oggvorbis: sample rate must be %d but was %d: %w", expectedSampleRate, format.SampleRate, pcm.ErrUnsupportedFormat)
	}
	return pcm.NewDecoded(data, format.Channels, format.SampleRate, decodedBitDepth), nil
}
