// Copyright 2016 Hajime Hoshi
// Copyright 2025 Lundis
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package wav provides a WAV (RIFF) decoder and a streaming WAV writer.
package wav

import (
	"bytes"
	"fmt"

	"github.com/Lundis/go-reverseaudio/pcm"
	"github.com/go-audio/wav"
)

const formatLinearPCM = 1

// Load decodes a linear PCM WAV file held in memory.
// If wantedSampleRate is not 0, files with another sample rate are rejected.
func Load(data []byte, wantedSampleRate int) (pcm.Decoded, error) {
	d := wav.NewDecoder(bytes.NewReader(data))
	if !d.IsValidFile() {
		return pcm.Decoded{}, fmt.Errorf("wav: invalid header: %w", pcm.ErrUnsupportedFormat)
	}
	if d.WavAudioFormat != formatLinearPCM {
		return pcm.Decoded{}, fmt.Errorf("wav: format must be linear PCM but was %d: %w", d.WavAudioFormat, pcm.ErrUnsupportedFormat)
	}
	channelCount := int(d.NumChans)
	if channelCount == 0 {
		return pcm.Decoded{}, fmt.Errorf("wav: no channels: %w", pcm.ErrUnsupportedFormat)
	}
	bitDepth := int(d.BitDepth)
	switch bitDepth {
	case 8, 16, 24, 32:
		// OK
	default:
		return pcm.Decoded{}, fmt.Errorf("wav: bits per sample must be 8, 16, 24 or 32 but was %d: %w", bitDepth, pcm.ErrUnsupportedFormat)
	}
	sampleRate := int(d.SampleRate)
	if wantedSampleRate != 0 && sampleRate != wantedSampleRate {
		return pcm.Decoded{}, fmt.Errorf("wav: sample rate must be %d but was %d: %w", wantedSampleRate, sampleRate, pcm.ErrUnsupportedFormat)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return pcm.Decoded{}, fmt.Errorf("wav: reading samples: %w: %w", pcm.ErrUnreadable, err)
	}
	return pcm.NewDecoded(convertIntToFloat32(buf.Data, bitDepth), channelCount, sampleRate, bitDepth), nil
}

// convertIntToFloat32 scales integer samples into [-1, 1).
// 8 bit WAV data is unsigned and centered on 128.
func convertIntToFloat32(data []int, bitDepth int) []float32 {
	f32 := make([]float32, len(data))
	scale := 1 / float32(int64(1)<<(bitDepth-1))
	offset := 0
	if bitDepth == 8 {
		offset = 128
	}
	for i, v := range data {
		f32[i] = float32(v-offset) * scale
	}
	return f32
}
