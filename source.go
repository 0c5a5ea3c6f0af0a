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

// Package reverseaudio streams decoded audio files forwards or backwards into a real-time render callback.
package reverseaudio

import (
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Lundis/go-reverseaudio/internal/logging"
	"github.com/Lundis/go-reverseaudio/loaders"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"golang.org/x/tools/godoc/vfs"
)

// snapshotRetries bounds how often a read retries when it catches Open between its two stores.
const snapshotRetries = 3

// FrameSourceOptions represents options for NewFrameSource.
type FrameSourceOptions struct {
	// FileSystem is used by Open. If nil, paths are resolved against the OS file system.
	FileSystem vfs.Opener

	// SampleRate rejects files with another sample rate. 0 accepts any rate.
	SampleRate int

	// EndPolicy decides what a read does at the end (or, in reverse, the start) of the file.
	EndPolicy EndPolicy

	// MemoryLock pins decoded samples in physical memory. Failing to lock is logged, not fatal.
	MemoryLock bool

	// Notifier receives positions and end-of-stream signals. If nil, an unlimited notifier is created.
	Notifier *PositionNotifier

	Logger *logrus.Entry
}

// FrameSource owns an opened file and its read cursor.
//
// ReadFrames belongs to the render thread; every other method belongs to the control side.
// The render thread never takes a lock: it sees the cursor, the direction and the file
// through one atomic word and one atomic pointer.
type FrameSource struct {
	cursor  atomic.Uint64
	current atomic.Pointer[track]
	// active counts reads in progress, observed is the generation the last finished read used.
	active    atomic.Int32
	observed  atomic.Uint32
	endPolicy atomic.Int32
	// wraps counts committed loop wraps, misses reads that gave up on a changing snapshot.
	wraps  atomic.Uint32
	misses atomic.Uint64

	notifier *PositionNotifier

	m          sync.Mutex
	generation uint16
	retired    []*track
	fs         vfs.Opener
	sampleRate int
	memoryLock bool
	log        *logrus.Entry
}

// NewFrameSource creates a FrameSource with no file open. options may be nil.
func NewFrameSource(options *FrameSourceOptions) *FrameSource {
	if options == nil {
		options = &FrameSourceOptions{}
	}
	s := &FrameSource{
		notifier:   options.Notifier,
		fs:         options.FileSystem,
		sampleRate: options.SampleRate,
		memoryLock: options.MemoryLock,
		log:        options.Logger,
	}
	if s.notifier == nil {
		s.notifier = NewPositionNotifier(0)
	}
	if s.log == nil {
		s.log = logging.For("framesource")
	}
	s.endPolicy.Store(int32(options.EndPolicy))
	return s
}

// Notifier returns the notifier positions are published to.
func (s *FrameSource) Notifier() *PositionNotifier {
	return s.notifier
}

// Open decodes path and makes it the current file, with the cursor at frame 0.
// The selected direction is kept. The previous file is released once no read can reference it.
func (s *FrameSource) Open(path string) (Format, error) {
	start := time.Now()
	fs, name := s.opener(path)
	d, err := loaders.LoadFile(fs, name, s.sampleRate)
	if err != nil {
		return Format{}, err
	}
	format, err := s.OpenDecoded(path, d)
	if err != nil {
		return Format{}, err
	}
	s.log.WithFields(logrus.Fields{
		"file":     path,
		"format":   format.String(),
		"duration": format.Duration(),
	}).Infof("opened in %.2fs", time.Since(start).Seconds())
	return format, nil
}

func (s *FrameSource) opener(path string) (vfs.Opener, string) {
	if s.fs != nil {
		return s.fs, path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return vfs.OS(filepath.Dir(abs)), "/" + filepath.Base(abs)
}

// OpenDecoded makes already decoded samples the current file. name is used in logs and errors.
func (s *FrameSource) OpenDecoded(name string, d Decoded) (Format, error) {
	if err := d.Validate(); err != nil {
		return Format{}, fmt.Errorf("%s: %w", name, err)
	}
	if d.Format.TotalFrames > MaxFrames {
		return Format{}, fmt.Errorf("%s: %w: %d frames is too long", name, ErrUnsupportedFormat, d.Format.TotalFrames)
	}
	if s.sampleRate != 0 && d.Format.SampleRate != s.sampleRate {
		return Format{}, fmt.Errorf("%s: %w: sample rate must be %d but was %d", name, ErrUnsupportedFormat, s.sampleRate, d.Format.SampleRate)
	}

	s.m.Lock()
	defer s.m.Unlock()

	s.generation = (s.generation + 1) & generationMask
	t := newTrack(name, d, s.generation)
	if s.memoryLock {
		if err := t.lock(); err != nil {
			s.log.WithError(err).WithField("file", name).Warn("could not lock samples in memory")
		}
	}

	// A read that loads the cursor before this store and the track after the swap
	// sees mismatching generations and retries.
	prev := s.current.Swap(t)
	dir := cursor(s.cursor.Load()).direction()
	s.cursor.Store(uint64(makeCursor(0, dir, t.generation)))
	s.notifier.Publish(0)

	if prev != nil {
		s.retired = append(s.retired, prev)
	}
	s.reclaimLocked()
	return t.format, nil
}

// Close releases every file. After Close the source behaves as if nothing was ever opened.
// It waits for a read in progress to finish.
func (s *FrameSource) Close() error {
	s.m.Lock()
	defer s.m.Unlock()

	if prev := s.current.Swap(nil); prev != nil {
		s.retired = append(s.retired, prev)
	}
	for s.active.Load() != 0 {
		runtime.Gosched()
	}
	var firstErr error
	for _, t := range s.retired {
		if err := t.release(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	clear(s.retired)
	s.retired = s.retired[:0]
	return firstErr
}

// Reclaim releases replaced files that the render thread can no longer reach.
func (s *FrameSource) Reclaim() {
	s.m.Lock()
	s.reclaimLocked()
	s.m.Unlock()
}

func (s *FrameSource) reclaimLocked() {
	if len(s.retired) == 0 {
		return
	}
	// Reads run one at a time, so once a read has finished with the current generation,
	// no read of an older one is left. With no read in progress, any new read loads the current file.
	cur := s.current.Load()
	if s.active.Load() != 0 && (cur == nil || s.observed.Load() != uint32(cur.generation)) {
		return
	}
	for _, t := range s.retired {
		if err := t.release(); err != nil {
			s.log.WithError(err).WithField("file", t.name).Warn("could not unlock samples")
		}
		s.log.WithField("file", t.name).Debug("released")
	}
	clear(s.retired)
	s.retired = s.retired[:0]
}

// SetDirection selects the direction of the next read. A read in progress finishes in the old direction.
// The direction survives Open, so it can be chosen before a file is loaded.
func (s *FrameSource) SetDirection(dir Direction) {
	s.m.Lock()
	defer s.m.Unlock()
	s.update(func(c cursor) cursor {
		return c.withDirection(dir)
	})
}

func (s *FrameSource) Direction() Direction {
	return cursor(s.cursor.Load()).direction()
}

// Seek moves the cursor, clamped to [0, TotalFrames]. Without an open file it does nothing.
func (s *FrameSource) Seek(frame int64) {
	s.m.Lock()
	defer s.m.Unlock()
	t := s.current.Load()
	if t == nil {
		return
	}
	frame = lo.Clamp(frame, 0, t.format.TotalFrames)
	s.update(func(c cursor) cursor {
		return c.withFrame(frame)
	})
}

// SeekFraction seeks to a fraction of the file, 0 being the start and 1 the end.
func (s *FrameSource) SeekFraction(f float64) {
	s.Seek(int64(f * float64(s.TotalFrames())))
}

func (s *FrameSource) update(f func(cursor) cursor) {
	for {
		old := s.cursor.Load()
		if s.cursor.CompareAndSwap(old, uint64(f(cursor(old)))) {
			return
		}
	}
}

// Position returns the cursor. It is 0 without an open file.
func (s *FrameSource) Position() int64 {
	if s.current.Load() == nil {
		return 0
	}
	return cursor(s.cursor.Load()).frame()
}

// Format returns the format of the open file.
func (s *FrameSource) Format() (Format, bool) {
	t := s.current.Load()
	if t == nil {
		return Format{}, false
	}
	return t.format, true
}

func (s *FrameSource) TotalFrames() int64 {
	f, _ := s.Format()
	return f.TotalFrames
}

func (s *FrameSource) SetEndPolicy(p EndPolicy) {
	s.endPolicy.Store(int32(p))
}

func (s *FrameSource) EndPolicy() EndPolicy {
	return EndPolicy(s.endPolicy.Load())
}

// ReadFrames fills dst with up to count frames in the current direction and advances the cursor.
// It implements FrameProducer and must not be called concurrently with itself.
func (s *FrameSource) ReadFrames(count uint32, dst Buffer) uint32 {
	s.active.Add(1)
	defer s.active.Add(-1)

	c, t, ok := s.snapshot()
	if t == nil {
		if !ok {
			s.misses.Add(1)
		}
		dst.Silence(0)
		return 0
	}
	n := min(int(count), dst.Frames())
	frame, written, wrapped := t.read(c.frame(), c.direction(), dst, n, s.EndPolicy() == EndLoop)
	dst.Silence(written)
	s.observed.Store(uint32(t.generation))

	if written > 0 && s.commit(c, frame) {
		// counted before the publish, so whoever reads the position also sees the wrap
		if wrapped {
			s.wraps.Add(1)
		}
		s.notifier.Publish(frame)
	}
	if written < n {
		s.notifier.SignalEnd()
	}
	return uint32(written)
}

// snapshot loads the cursor and the file it belongs to.
// ok is false when every retry caught an Open between its two loads.
func (s *FrameSource) snapshot() (c cursor, t *track, ok bool) {
	for range snapshotRetries {
		c = cursor(s.cursor.Load())
		t = s.current.Load()
		if t == nil || t.generation == c.generation() {
			return c, t, true
		}
	}
	return 0, nil, false
}

// commit writes the advanced cursor back and reports whether it did. A seek or open that happened
// during the read wins; a direction change alone keeps the advance.
func (s *FrameSource) commit(seen cursor, frame int64) bool {
	if s.cursor.CompareAndSwap(uint64(seen), uint64(seen.withFrame(frame))) {
		return true
	}
	now := cursor(s.cursor.Load())
	if now.generation() == seen.generation() && now.frame() == seen.frame() &&
		s.cursor.CompareAndSwap(uint64(now), uint64(now.withFrame(frame))) {
		return true
	}
	return false
}

// Wraps counts the loop wraps of every read so far. A position published after
// the counter moved lies past the wrap.
func (s *FrameSource) Wraps() uint32 {
	return s.wraps.Load()
}

// Misses counts reads that returned silence because the file kept changing under them.
func (s *FrameSource) Misses() uint64 {
	return s.misses.Load()
}
