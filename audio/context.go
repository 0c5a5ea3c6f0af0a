// Copyright 2021 The Oto Authors
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

package audio

import (
	"fmt"
	"strings"
	"time"

	"github.com/Lundis/go-reverseaudio/internal/logging"
	"github.com/sirupsen/logrus"
)

const (
	DefaultSampleRate   = 44100
	DefaultChannelCount = 2

	// defaultBufferFrames is used when no BufferSize is given and the backend needs one.
	defaultBufferFrames = 2048
)

// BackendKind selects what drives the render callback.
type BackendKind int

const (
	// BackendOto plays through the system audio device.
	BackendOto BackendKind = iota
	// BackendNull runs a software clock and discards the output. Useful without an audio device.
	BackendNull
	// BackendManual has no clock at all: the caller invokes Driver.Render itself.
	BackendManual
)

func (k BackendKind) String() string {
	switch k {
	case BackendNull:
		return "null"
	case BackendManual:
		return "manual"
	}
	return "oto"
}

func ParseBackend(s string) (BackendKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "oto", "":
		return BackendOto, nil
	case "null":
		return BackendNull, nil
	case "manual":
		return BackendManual, nil
	}
	return BackendOto, fmt.Errorf("audio: unknown backend %q", s)
}

// Options represents options for NewDriver.
type Options struct {
	// SampleRate specifies the number of frames that should be played during one second.
	// Usual numbers are 44100 or 48000. The oto backend can only use one sample rate per process.
	SampleRate int

	// ChannelCount is the number of output channels.
	ChannelCount int

	// BufferSize specifies a buffer size in the underlying device.
	//
	// If 0 is specified, the driver's default buffer size is used.
	// Set BufferSize to adjust the buffer size if you want to adjust latency or reduce noises.
	// Too big buffer size can increase the latency time.
	// On the other hand, too small buffer size can cause glitch noises due to buffer shortage.
	BufferSize time.Duration

	Backend BackendKind

	Logger *logrus.Entry
}

func (o *Options) withDefaults() Options {
	r := Options{}
	if o != nil {
		r = *o
	}
	if r.SampleRate <= 0 {
		r.SampleRate = DefaultSampleRate
	}
	if r.ChannelCount <= 0 {
		r.ChannelCount = DefaultChannelCount
	}
	if r.Logger == nil {
		r.Logger = logging.For("audio")
	}
	return r
}

// bufferFrames converts BufferSize to frames.
func (o Options) bufferFrames() int {
	if o.BufferSize <= 0 {
		return defaultBufferFrames
	}
	return max(int(int64(o.BufferSize)*int64(o.SampleRate)/int64(time.Second)), 1)
}
