// Package player is the control layer on top of a FrameSource and a Driver:
// transport, direction, seeking and end-of-stream handling for one output.
package player

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"time"

	reverseaudio "github.com/Lundis/go-reverseaudio"
	"github.com/Lundis/go-reverseaudio/audio"
	"github.com/Lundis/go-reverseaudio/config"
	"github.com/Lundis/go-reverseaudio/cue"
	"github.com/Lundis/go-reverseaudio/internal/logging"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/godoc/vfs"
)

// statsInterval is how often Run checks the driver counters.
const statsInterval = time.Second

// Options represents options for New.
type Options struct {
	config.Config

	// FileSystem is passed to the FrameSource. If nil, Open takes OS paths.
	FileSystem vfs.Opener

	// Sink receives positions on the goroutine calling Run. May be nil.
	Sink reverseaudio.PositionSink
}

type Player struct {
	source   *reverseaudio.FrameSource
	driver   *audio.Driver
	notifier *reverseaudio.PositionNotifier
	sink     reverseaudio.PositionSink
	onEnd    atomic.Pointer[func()]
	onCue    atomic.Pointer[func(cue.Id)]

	scrubbing atomic.Bool

	m          sync.Mutex
	name       string
	cues       *cue.Scheduler
	wraps      uint32
	lastStats  audio.Stats
	lastMisses uint64
	log        *logrus.Entry
}

// New creates a paused player with no file loaded.
func New(options Options) (*Player, error) {
	c := options.Config
	notifier := reverseaudio.NewPositionNotifier(c.NotifierRate)
	source := reverseaudio.NewFrameSource(&reverseaudio.FrameSourceOptions{
		FileSystem: options.FileSystem,
		SampleRate: c.SampleRate,
		EndPolicy:  c.EndPolicy,
		MemoryLock: c.MemoryLock,
		Notifier:   notifier,
		Logger:     logging.For("framesource"),
	})
	driver, err := audio.NewDriver(&audio.Options{
		SampleRate:   c.SampleRate,
		ChannelCount: c.Channels,
		BufferSize:   c.BufferSize,
		Backend:      c.Backend,
		Logger:       logging.For("driver"),
	})
	if err != nil {
		return nil, err
	}
	driver.RegisterDataSource(source)
	driver.SetVolume(float32(c.Volume))
	if c.Reverse {
		source.SetDirection(reverseaudio.Reverse)
	}
	return &Player{
		source:   source,
		driver:   driver,
		notifier: notifier,
		sink:     options.Sink,
		cues:     cue.NewScheduler(int64(driver.SampleRate()) * 3),
		log:      logging.For("player"),
	}, nil
}

func (p *Player) Source() *reverseaudio.FrameSource { return p.source }
func (p *Player) Driver() *audio.Driver             { return p.driver }

// OnEnd sets a function called from Run whenever a read ran past the end of the file.
// With EndStop the player is already paused when it is called. Signals a seek has overtaken are dropped.
func (p *Player) OnEnd(f func()) {
	if f == nil {
		p.onEnd.Store(nil)
		return
	}
	p.onEnd.Store(&f)
}

// OnCue sets a function called from Run when the position passes a cue.
func (p *Player) OnCue(f func(cue.Id)) {
	if f == nil {
		p.onCue.Store(nil)
		return
	}
	p.onCue.Store(&f)
}

// AddCue marks frame of the current file. The cue fires once, in whichever direction it is reached.
func (p *Player) AddCue(id cue.Id, frame int64) {
	p.m.Lock()
	p.cues.Add(id, frame)
	p.m.Unlock()
}

// Cues is the number of cues that have not fired.
func (p *Player) Cues() int {
	p.m.Lock()
	defer p.m.Unlock()
	return p.cues.Len()
}

// Open loads path and replaces the current file, also while playing.
func (p *Player) Open(path string) (reverseaudio.Format, error) {
	f, err := p.source.Open(path)
	if err != nil {
		return f, err
	}
	p.setName(path)
	return f, nil
}

// OpenDecoded replaces the current file with already decoded samples.
func (p *Player) OpenDecoded(name string, d reverseaudio.Decoded) (reverseaudio.Format, error) {
	f, err := p.source.OpenDecoded(name, d)
	if err != nil {
		return f, err
	}
	p.setName(name)
	return f, nil
}

// setName also drops the cues of the previous file.
func (p *Player) setName(name string) {
	p.m.Lock()
	p.name = name
	p.cues.Clear()
	p.cues.Reset()
	p.wraps = p.source.Wraps()
	p.m.Unlock()
}

// Name is the path or name of the current file.
func (p *Player) Name() string {
	p.m.Lock()
	defer p.m.Unlock()
	return p.name
}

func (p *Player) Play() error {
	return p.driver.Start()
}

// Pause stops the output. No read happens after it returns.
func (p *Player) Pause() {
	p.driver.Stop()
}

// TogglePlay switches between playing and paused and reports whether it is now playing.
func (p *Player) TogglePlay() (bool, error) {
	if p.driver.IsRunning() {
		p.Pause()
		return false, nil
	}
	if err := p.Play(); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Player) IsPlaying() bool {
	return p.driver.IsRunning()
}

func (p *Player) SetReverse(reverse bool) {
	dir := reverseaudio.Forward
	if reverse {
		dir = reverseaudio.Reverse
	}
	p.source.SetDirection(dir)
}

func (p *Player) Reverse() bool {
	return p.source.Direction() == reverseaudio.Reverse
}

// ToggleReverse flips the direction and reports whether it is now reverse.
func (p *Player) ToggleReverse() bool {
	reverse := !p.Reverse()
	p.SetReverse(reverse)
	return reverse
}

func (p *Player) Seek(frame int64) {
	p.source.Seek(frame)
}

func (p *Player) SeekFraction(f float64) {
	p.source.SeekFraction(f)
}

// SeekBy moves the cursor by d, backwards for negative d.
func (p *Player) SeekBy(d time.Duration) {
	f, ok := p.source.Format()
	if !ok {
		return
	}
	p.source.Seek(p.source.Position() + int64(math.Round(d.Seconds()*float64(f.SampleRate))))
}

// BeginScrub silences position updates while the user drags a seek control,
// so that the control does not jump back to the playing position.
func (p *Player) BeginScrub() {
	p.scrubbing.Store(true)
	p.notifier.SetMuted(true)
}

// ScrubTo seeks during a scrub.
func (p *Player) ScrubTo(f float64) {
	p.source.SeekFraction(f)
}

// EndScrub seeks to f and resumes position updates.
func (p *Player) EndScrub(f float64) {
	p.source.SeekFraction(f)
	p.scrubbing.Store(false)
	p.notifier.SetMuted(false)
}

func (p *Player) Scrubbing() bool {
	return p.scrubbing.Load()
}

func (p *Player) Position() int64 {
	return p.source.Position()
}

// Progress is the position as a fraction of the file, 0 without a file.
func (p *Player) Progress() float64 {
	total := p.source.TotalFrames()
	if total == 0 {
		return 0
	}
	return float64(p.source.Position()) / float64(total)
}

func (p *Player) Format() (reverseaudio.Format, bool) {
	return p.source.Format()
}

func (p *Player) SetEndPolicy(policy reverseaudio.EndPolicy) {
	p.source.SetEndPolicy(policy)
}

func (p *Player) EndPolicy() reverseaudio.EndPolicy {
	return p.source.EndPolicy()
}

func (p *Player) SetVolume(volume float32) {
	p.driver.SetVolume(volume)
}

func (p *Player) Volume() float32 {
	return p.driver.Volume()
}

func (p *Player) Stats() audio.Stats {
	return p.driver.Stats()
}

// Run delivers positions, cues and end-of-stream events until ctx is done.
// It also releases replaced files and logs new underruns and faults.
func (p *Player) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return p.notifier.Run(ctx, reverseaudio.PositionSinkFunc(p.deliver), p.handleEnd)
	})
	g.Go(func() error {
		return p.watch(ctx)
	})
	err := g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

func (p *Player) deliver(frame int64) {
	p.source.Reclaim()
	p.m.Lock()
	fired := p.processCues(frame)
	p.m.Unlock()
	if p.sink != nil {
		p.sink.OnPositionUpdated(frame)
	}
	if f := p.onCue.Load(); f != nil {
		for _, id := range fired {
			(*f)(id)
		}
	}
}

// processCues moves the cue scheduler to frame. A loop wrap shows up as a move against
// the playing direction after the source counted a wrap.
func (p *Player) processCues(frame int64) []cue.Id {
	wraps := p.source.Wraps()
	if wraps == p.wraps {
		return p.cues.Process(frame)
	}
	last := p.cues.Last()
	forward := p.source.Direction() == reverseaudio.Forward
	if (forward && frame < last) || (!forward && frame > last) {
		p.wraps = wraps
		return p.cues.Wrap(frame, p.source.TotalFrames(), forward)
	}
	// the wrap is still ahead of this position
	return p.cues.Process(frame)
}

// atBoundary reports whether the cursor sits where a read in the current direction runs out.
func (p *Player) atBoundary() bool {
	total := p.source.TotalFrames()
	if total == 0 {
		return false
	}
	if p.source.Direction() == reverseaudio.Reverse {
		return p.source.Position() == 0
	}
	return p.source.Position() == total
}

// handleEnd ignores an end signal that a seek has overtaken.
func (p *Player) handleEnd() {
	if !p.atBoundary() {
		return
	}
	if p.source.EndPolicy() == reverseaudio.EndStop && p.driver.IsRunning() {
		p.Pause()
		p.log.WithField("file", p.Name()).Debug("stopped at end of stream")
	}
	if f := p.onEnd.Load(); f != nil {
		(*f)()
	}
}

func (p *Player) watch(ctx context.Context) error {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.source.Reclaim()
			p.reportStats()
		}
	}
}

func (p *Player) reportStats() {
	s := p.driver.Stats()
	misses := p.source.Misses()
	p.m.Lock()
	last, lastMisses := p.lastStats, p.lastMisses
	p.lastStats, p.lastMisses = s, misses
	p.m.Unlock()

	if misses > lastMisses {
		p.log.WithField("count", misses-lastMisses).Warn("reads returned silence while a file was being replaced")
	}
	if s.Underruns > last.Underruns {
		p.log.WithField("count", s.Underruns-last.Underruns).Warn("render callback was too slow")
	}
	if s.Faults > last.Faults {
		p.log.WithError(p.driver.Err()).WithField("count", s.Faults-last.Faults).Error("render callback failed")
	}
}

// Close stops the output and releases every file.
func (p *Player) Close() error {
	return errors.Join(p.driver.Close(), p.source.Close())
}
