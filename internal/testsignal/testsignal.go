// Package testsignal generates deterministic PCM for tests and demos.
package testsignal

import (
	"math"
	"time"

	"github.com/Lundis/go-reverseaudio/pcm"
)

// Value is the sample Ramp stores for a frame and channel.
// It is never 0, so silence can be told apart from audio.
func Value(frame int64, ch int) float32 {
	return float32(frame+1) + float32(ch)*0.25
}

// Ramp returns a file whose samples identify their own frame and channel, see Value.
func Ramp(frames int64, channelCount, sampleRate int) pcm.Decoded {
	samples := make([]float32, frames*int64(channelCount))
	for f := int64(0); f < frames; f++ {
		for ch := 0; ch < channelCount; ch++ {
			samples[f*int64(channelCount)+int64(ch)] = Value(f, ch)
		}
	}
	return pcm.NewDecoded(samples, channelCount, sampleRate, 32)
}

// Sweep returns a rising tone, which makes the playing direction audible.
func Sweep(from, to float64, duration time.Duration, channelCount, sampleRate int) pcm.Decoded {
	frames := int(float64(sampleRate) * duration.Seconds())
	samples := make([]float32, frames*channelCount)
	phase := 0.0
	for i := 0; i < frames; i++ {
		freq := from + (to-from)*float64(i)/float64(max(frames, 1))
		phase += 2 * math.Pi * freq / float64(sampleRate)
		value := float32(math.Sin(phase)) * 0.3
		for ch := 0; ch < channelCount; ch++ {
			samples[i*channelCount+ch] = value
		}
	}
	return pcm.NewDecoded(samples, channelCount, sampleRate, 32)
}
