// Copyright 2022 The Oto Authors
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
	"sync"
	"sync/atomic"
	"time"

	reverseaudio "github.com/Lundis/go-reverseaudio"
)

// nullBackend renders one buffer per buffer period and throws it away.
type nullBackend struct {
	driver    *Driver
	buf       reverseaudio.Buffer
	period    time.Duration
	suspended atomic.Bool
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func newNullBackend(d *Driver, o Options) *nullBackend {
	b := &nullBackend{
		driver: d,
		buf:    reverseaudio.NewBuffer(o.ChannelCount, d.bufferFrames),
		period: d.period(d.bufferFrames),
		done:   make(chan struct{}),
	}
	b.suspended.Store(true)
	b.wg.Add(1)
	go b.loop()
	return b
}

func (b *nullBackend) loop() {
	defer b.wg.Done()
	ticker := time.NewTicker(b.period)
	defer ticker.Stop()
	for {
		select {
		case <-b.done:
			return
		case <-ticker.C:
		}
		if b.suspended.Load() {
			continue
		}
		b.driver.Render(b.buf)
	}
}

func (b *nullBackend) play() {
	b.suspended.Store(false)
}

func (b *nullBackend) pause() {
	b.suspended.Store(true)
}

func (b *nullBackend) close() error {
	b.closeOnce.Do(func() {
		close(b.done)
	})
	b.wg.Wait()
	return nil
}
