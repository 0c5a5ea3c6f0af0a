package wav

import (
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Writer streams 16 bit linear PCM to a WAV file.
// Channels are passed as separate slices, the way render callbacks deliver them.
type Writer struct {
	enc    *wav.Encoder
	buf    *audio.IntBuffer
	frames int64
}

func NewWriter(w io.WriteSeeker, sampleRate, channelCount int) *Writer {
	return &Writer{
		enc: wav.NewEncoder(w, sampleRate, 16, channelCount, formatLinearPCM),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: channelCount, SampleRate: sampleRate},
			SourceBitDepth: 16,
		},
	}
}

// WriteFrames appends the first n frames of channels.
func (w *Writer) WriteFrames(channels [][]float32, n int) error {
	numChannels := w.buf.Format.NumChannels
	if len(channels) != numChannels {
		return fmt.Errorf("wav: expected %d channels but got %d", numChannels, len(channels))
	}
	if cap(w.buf.Data) < n*numChannels {
		w.buf.Data = make([]int, n*numChannels)
	}
	w.buf.Data = w.buf.Data[:n*numChannels]
	for i := 0; i < n; i++ {
		for ch, samples := range channels {
			w.buf.Data[i*numChannels+ch] = floatToInt16(samples[i])
		}
	}
	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("wav: write: %w", err)
	}
	w.frames += int64(n)
	return nil
}

// Frames returns the number of frames written so far.
func (w *Writer) Frames() int64 {
	return w.frames
}

// Close finalizes the RIFF header. It does not close the underlying writer.
func (w *Writer) Close() error {
	return w.enc.Close()
}

func floatToInt16(v float32) int {
	switch {
	case v >= 1:
		return 1<<15 - 1
	case v <= -1:
		return -(1 << 15)
	}
	return int(v * (1 << 15))
}
