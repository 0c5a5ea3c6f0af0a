// Package mp3 decodes MPEG-1/2 layer III files to PCM.
package mp3

import (
	"bytes"
	"fmt"
	"io"

	"github.com/Lundis/go-reverseaudio/pcm"
	"github.com/hajimehoshi/go-mp3"
)

// go-mp3 always decodes to 16 bit little endian stereo.
const (
	channelCount = 2
	bitDepth     = 16
)

// Load decodes a whole MP3 stream held in memory.
// If expectedSampleRate is not 0, streams with another sample rate are rejected.
func Load(mp3Data []byte, expectedSampleRate int) (pcm.Decoded, error) {
	d, err := mp3.NewDecoder(bytes.NewReader(mp3Data))
	if err != nil {
		return pcm.Decoded{}, fmt.Errorf("mp3: %w: %w", pcm.ErrUnsupportedFormat, err)
	}
	if expectedSampleRate != 0 && d.SampleRate() != expectedSampleRate {
		return pcm.Decoded{}, fmt.Errorf("mp3: sample rate must be %d but was %d: %w", expectedSampleRate, d.SampleRate(), pcm.ErrUnsupportedFormat)
	}
	raw := make([]byte, 0, max(d.Length(), 0))
	raw, err = readAll(d, raw)
	if err != nil {
		return pcm.Decoded{}, fmt.Errorf("mp3: %w: %w", pcm.ErrUnreadable, err)
	}
	return pcm.NewDecoded(convertInt16ToFloat32(raw), channelCount, d.SampleRate(), bitDepth), nil
}

func readAll(r io.Reader, b []byte) ([]byte, error) {
	for {
		if len(b) == cap(b) {
			b = append(b, 0)[:len(b)]
		}
		n, err := r.Read(b[len(b):cap(b)])
		b = b[:len(b)+n]
		if err == io.EOF {
			return b, nil
		}
		if err != nil {
			return b, err
		}
	}
}

func convertInt16ToFloat32(i16Buf []byte) []float32 {
	f32 := make([]float32, len(i16Buf)/2)
	for i := 0; i+1 < len(i16Buf); i += 2 {
		f32[i/2] = float32(int16(i16Buf[i])|int16(i16Buf[i+1])<<8) / (1 << 15)
	}
	return f32
}
