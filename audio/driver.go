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

// Package audio owns the render callback: it starts and stops the output device
// and forwards every buffer request to the registered data source.
package audio

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	reverseaudio "github.com/Lundis/go-reverseaudio"
	"github.com/sirupsen/logrus"
)

var ErrClosed = errors.New("audio: driver is closed")

type backend interface {
	play()
	pause()
	close() error
}

// Stats counts what happened on the render thread.
type Stats struct {
	// Callbacks is the number of renders that happened while the driver was running.
	Callbacks uint64
	// Silent counts renders with no data source registered.
	Silent uint64
	// Underruns counts renders whose data source took longer than the buffer lasts.
	Underruns uint64
	// Faults counts renders whose data source panicked.
	Faults uint64
}

// producerRef boxes the interface so it can be swapped atomically.
type producerRef struct {
	p reverseaudio.FrameProducer
}

// Driver dispatches render callbacks to a FrameProducer.
//
// Render never takes a lock: the data source, the running flag and the gain are all atomics.
// The mutex only serializes Start, Stop and Close.
type Driver struct {
	source   atomic.Pointer[producerRef]
	running  atomic.Bool
	inflight atomic.Int32
	gain     atomic.Uint32
	muted    atomic.Bool

	callbacks atomic.Uint64
	silent    atomic.Uint64
	underruns atomic.Uint64
	faults    atomic.Uint64
	err       atomicError

	sampleRate   int
	channelCount int
	bufferFrames int
	backendKind  BackendKind

	backend backend
	m       sync.Mutex
	closed  bool
	log     *logrus.Entry
}

// NewDriver creates a stopped driver. options may be nil.
func NewDriver(options *Options) (*Driver, error) {
	o := options.withDefaults()
	d := &Driver{
		sampleRate:   o.SampleRate,
		channelCount: o.ChannelCount,
		bufferFrames: o.bufferFrames(),
		backendKind:  o.Backend,
		log:          o.Logger,
	}
	d.gain.Store(math.Float32bits(1))

	switch o.Backend {
	case BackendOto:
		b, err := newOtoBackend(d, o)
		if err != nil {
			return nil, err
		}
		d.backend = b
	case BackendNull:
		d.backend = newNullBackend(d, o)
	case BackendManual:
		d.backend = manualBackend{}
	default:
		return nil, fmt.Errorf("audio: unknown backend %d", o.Backend)
	}

	d.log.WithFields(logrus.Fields{
		"backend":  o.Backend.String(),
		"rate":     d.sampleRate,
		"channels": d.channelCount,
		"frames":   d.bufferFrames,
	}).Info("audio output ready")
	return d, nil
}

func (d *Driver) SampleRate() int   { return d.sampleRate }
func (d *Driver) ChannelCount() int { return d.channelCount }

// BufferFrames is the size of the buffers the backend's clock requests.
func (d *Driver) BufferFrames() int { return d.bufferFrames }

// RegisterDataSource makes p the source of the next render. nil unregisters the current source.
func (d *Driver) RegisterDataSource(p reverseaudio.FrameProducer) {
	if p == nil {
		d.source.Store(nil)
		return
	}
	d.source.Store(&producerRef{p: p})
}

// Start begins invoking the render callback. Starting a running driver does nothing.
func (d *Driver) Start() error {
	d.m.Lock()
	defer d.m.Unlock()

	if d.closed {
		return ErrClosed
	}
	if d.running.Load() {
		return nil
	}
	d.running.Store(true)
	d.backend.play()
	d.log.Debug("started")
	return nil
}

// Stop halts the render callback. When Stop returns, no render reaches the data source
// until the next Start. Stopping a stopped driver does nothing.
//
// Stop must not be called from the data source itself.
func (d *Driver) Stop() {
	d.m.Lock()
	defer d.m.Unlock()

	if !d.running.Load() {
		return
	}
	d.running.Store(false)
	d.backend.pause()
	// a render that saw running before the store is still allowed to finish
	for d.inflight.Load() != 0 {
		runtime.Gosched()
	}
	d.log.Debug("stopped")
}

func (d *Driver) IsRunning() bool {
	return d.running.Load()
}

// Close stops the driver and releases the backend.
func (d *Driver) Close() error {
	d.Stop()

	d.m.Lock()
	defer d.m.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return d.backend.close()
}

// Stats returns the render counters.
func (d *Driver) Stats() Stats {
	return Stats{
		Callbacks: d.callbacks.Load(),
		Silent:    d.silent.Load(),
		Underruns: d.underruns.Load(),
		Faults:    d.faults.Load(),
	}
}

// Err returns the first fault of a data source, if any.
func (d *Driver) Err() error {
	return d.err.Load()
}

// Render fills dst from the data source and returns the number of frames that carry audio.
// It is the render callback: backends call it on their clock, and with BackendManual the caller does.
// Render never fails; whatever goes wrong becomes silence and is counted in Stats.
func (d *Driver) Render(dst reverseaudio.Buffer) uint32 {
	d.inflight.Add(1)
	defer d.inflight.Add(-1)

	if !d.running.Load() {
		dst.Silence(0)
		return 0
	}
	d.callbacks.Add(1)

	ref := d.source.Load()
	if ref == nil {
		d.silent.Add(1)
		dst.Silence(0)
		return 0
	}

	frames := dst.Frames()
	start := time.Now()
	n := d.dispatch(ref.p, frames, dst)
	if time.Since(start) > d.period(frames) {
		d.underruns.Add(1)
	}
	d.applyGain(dst)
	return min(n, uint32(frames))
}

func (d *Driver) dispatch(p reverseaudio.FrameProducer, frames int, dst reverseaudio.Buffer) (n uint32) {
	defer func() {
		if r := recover(); r != nil {
			d.faults.Add(1)
			d.err.TryStore(fmt.Errorf("audio: data source panicked: %v", r))
			dst.Silence(0)
			n = 0
		}
	}()
	return p.ReadFrames(uint32(frames), dst)
}

// period is how long frames last at the driver's sample rate.
func (d *Driver) period(frames int) time.Duration {
	return time.Duration(frames) * time.Second / time.Duration(d.sampleRate)
}

type manualBackend struct{}

func (manualBackend) play()        {}
func (manualBackend) pause()       {}
func (manualBackend) close() error { return nil }
