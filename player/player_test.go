package player_test

import (
	"context"
	"sync"
	"testing"
	"time"

	reverseaudio "github.com/Lundis/go-reverseaudio"
	"github.com/Lundis/go-reverseaudio/audio"
	"github.com/Lundis/go-reverseaudio/config"
	"github.com/Lundis/go-reverseaudio/cue"
	"github.com/Lundis/go-reverseaudio/internal/testsignal"
	"github.com/Lundis/go-reverseaudio/player"
)

type recorder struct {
	m         sync.Mutex
	positions []int64
}

func (r *recorder) OnPositionUpdated(frame int64) {
	r.m.Lock()
	r.positions = append(r.positions, frame)
	r.m.Unlock()
}

func (r *recorder) last() (int64, bool) {
	r.m.Lock()
	defer r.m.Unlock()
	if len(r.positions) == 0 {
		return 0, false
	}
	return r.positions[len(r.positions)-1], true
}

func testConfig(policy reverseaudio.EndPolicy) config.Config {
	return config.Config{
		SampleRate: 44100,
		Channels:   2,
		Backend:    audio.BackendManual,
		EndPolicy:  policy,
		Volume:     1,
	}
}

func newPlayer(t *testing.T, policy reverseaudio.EndPolicy, sink reverseaudio.PositionSink) *player.Player {
	t.Helper()
	p, err := player.New(player.Options{Config: testConfig(policy), Sink: sink})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func run(t *testing.T, p *player.Player) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run returned %v", err)
		}
	})
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestPlayPauseToggle(t *testing.T) {
	p := newPlayer(t, reverseaudio.EndSilence, nil)
	if p.IsPlaying() {
		t.Fatalf("a new player should be paused")
	}
	playing, err := p.TogglePlay()
	if err != nil || !playing || !p.IsPlaying() {
		t.Fatalf("TogglePlay = %v, %v", playing, err)
	}
	playing, _ = p.TogglePlay()
	if playing || p.IsPlaying() {
		t.Fatalf("second TogglePlay should pause")
	}
}

func TestReverseFromConfig(t *testing.T) {
	c := testConfig(reverseaudio.EndSilence)
	c.Reverse = true
	p, err := player.New(player.Options{Config: c})
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()
	if !p.Reverse() {
		t.Fatalf("player should start in reverse")
	}
	if p.ToggleReverse() || p.Reverse() {
		t.Fatalf("ToggleReverse should switch to forward")
	}
}

func TestPlaysReverseThroughDriver(t *testing.T) {
	p := newPlayer(t, reverseaudio.EndSilence, nil)
	if _, err := p.OpenDecoded("ramp", testsignal.Ramp(100, 2, 44100)); err != nil {
		t.Fatal(err)
	}
	p.Seek(60)
	p.SetReverse(true)
	_ = p.Play()

	buf := reverseaudio.NewBuffer(2, 20)
	p.Driver().Render(buf)
	for i := range 20 {
		if want := testsignal.Value(int64(60-i), 1); buf[1][i] != want {
			t.Fatalf("frame %d is %v, want %v", i, buf[1][i], want)
		}
	}
	if p.Position() != 40 || p.Progress() != 0.4 {
		t.Fatalf("position %d, progress %v", p.Position(), p.Progress())
	}
	if p.Name() != "ramp" {
		t.Fatalf("name is %q", p.Name())
	}
}

func TestSeekBy(t *testing.T) {
	p := newPlayer(t, reverseaudio.EndSilence, nil)
	p.SeekBy(time.Second)
	if p.Position() != 0 {
		t.Fatalf("seeking without a file should do nothing")
	}
	if _, err := p.OpenDecoded("ramp", testsignal.Ramp(44100, 2, 44100)); err != nil {
		t.Fatal(err)
	}
	p.SeekBy(500 * time.Millisecond)
	if p.Position() != 22050 {
		t.Fatalf("position is %d", p.Position())
	}
	p.SeekBy(-time.Second)
	if p.Position() != 0 {
		t.Fatalf("seek should clamp at 0, got %d", p.Position())
	}
}

func TestStopPolicyPausesAtEnd(t *testing.T) {
	p := newPlayer(t, reverseaudio.EndStop, nil)
	ended := make(chan struct{}, 8)
	p.OnEnd(func() { ended <- struct{}{} })
	if _, err := p.OpenDecoded("ramp", testsignal.Ramp(10, 2, 44100)); err != nil {
		t.Fatal(err)
	}
	run(t, p)
	_ = p.Play()

	buf := reverseaudio.NewBuffer(2, 16)
	if n := p.Driver().Render(buf); n != 10 {
		t.Fatalf("rendered %d frames", n)
	}
	eventually(t, "pause at end", func() bool { return !p.IsPlaying() })
	select {
	case <-ended:
	case <-time.After(2 * time.Second):
		t.Fatalf("end handler was not called")
	}
}

func TestSilencePolicyKeepsPlaying(t *testing.T) {
	p := newPlayer(t, reverseaudio.EndSilence, nil)
	ended := make(chan struct{}, 8)
	p.OnEnd(func() { ended <- struct{}{} })
	if _, err := p.OpenDecoded("ramp", testsignal.Ramp(10, 2, 44100)); err != nil {
		t.Fatal(err)
	}
	run(t, p)
	_ = p.Play()
	p.Driver().Render(reverseaudio.NewBuffer(2, 16))
	select {
	case <-ended:
	case <-time.After(2 * time.Second):
		t.Fatalf("end handler was not called")
	}
	if !p.IsPlaying() {
		t.Fatalf("silence policy should not pause")
	}
}

func TestPositionsReachSink(t *testing.T) {
	rec := &recorder{}
	p := newPlayer(t, reverseaudio.EndSilence, rec)
	if _, err := p.OpenDecoded("ramp", testsignal.Ramp(1000, 2, 44100)); err != nil {
		t.Fatal(err)
	}
	run(t, p)
	_ = p.Play()
	p.Driver().Render(reverseaudio.NewBuffer(2, 128))
	eventually(t, "position 128", func() bool {
		f, ok := rec.last()
		return ok && f == 128
	})
}

func TestScrubMutesPositions(t *testing.T) {
	rec := &recorder{}
	p := newPlayer(t, reverseaudio.EndSilence, rec)
	if _, err := p.OpenDecoded("ramp", testsignal.Ramp(1000, 2, 44100)); err != nil {
		t.Fatal(err)
	}
	run(t, p)
	_ = p.Play()
	eventually(t, "open position", func() bool {
		_, ok := rec.last()
		return ok
	})

	p.BeginScrub()
	if !p.Scrubbing() {
		t.Fatalf("should be scrubbing")
	}
	p.ScrubTo(0.5)
	p.Driver().Render(reverseaudio.NewBuffer(2, 10))
	time.Sleep(20 * time.Millisecond)
	if f, _ := rec.last(); f == 510 {
		t.Fatalf("positions should not be delivered while scrubbing")
	}

	p.EndScrub(0.25)
	if p.Position() != 250 {
		t.Fatalf("EndScrub should seek, position is %d", p.Position())
	}
	p.Driver().Render(reverseaudio.NewBuffer(2, 10))
	eventually(t, "position after scrub", func() bool {
		f, _ := rec.last()
		return f == 260
	})
}

func TestOpenReplacesWhilePlaying(t *testing.T) {
	p := newPlayer(t, reverseaudio.EndSilence, nil)
	if _, err := p.OpenDecoded("first", testsignal.Ramp(100, 2, 44100)); err != nil {
		t.Fatal(err)
	}
	_ = p.Play()
	p.Driver().Render(reverseaudio.NewBuffer(2, 30))
	if _, err := p.OpenDecoded("second", testsignal.Ramp(50, 2, 44100)); err != nil {
		t.Fatal(err)
	}
	buf := reverseaudio.NewBuffer(2, 5)
	p.Driver().Render(buf)
	if buf[0][0] != testsignal.Value(0, 0) || p.Position() != 5 {
		t.Fatalf("the new file should start at frame 0")
	}
	if f, _ := p.Format(); f.TotalFrames != 50 {
		t.Fatalf("format was not replaced: %v", f)
	}
}

func TestRejectsOtherSampleRate(t *testing.T) {
	p := newPlayer(t, reverseaudio.EndSilence, nil)
	if _, err := p.OpenDecoded("ramp", testsignal.Ramp(10, 2, 22050)); err == nil {
		t.Fatalf("a file with another sample rate should be rejected")
	}
	if p.Name() != "" {
		t.Fatalf("a failed open should not change the name")
	}
}

func TestCuesFireInBothDirections(t *testing.T) {
	rec := &recorder{}
	p := newPlayer(t, reverseaudio.EndSilence, rec)
	fired := make(chan cue.Id, 8)
	p.OnCue(func(id cue.Id) { fired <- id })
	if _, err := p.OpenDecoded("ramp", testsignal.Ramp(1000, 2, 44100)); err != nil {
		t.Fatal(err)
	}
	p.AddCue("forward", 50)
	p.AddCue("backward", 20)
	run(t, p)
	_ = p.Play()

	expect := func(want cue.Id) {
		t.Helper()
		select {
		case id := <-fired:
			if id != want {
				t.Fatalf("fired %q, want %q", id, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("cue %q did not fire", want)
		}
	}

	eventually(t, "open position", func() bool {
		_, ok := rec.last()
		return ok
	})
	p.Driver().Render(reverseaudio.NewBuffer(2, 60))
	// 20 and 50 are both passed
	got := map[cue.Id]bool{}
	for range 2 {
		select {
		case id := <-fired:
			got[id] = true
		case <-time.After(2 * time.Second):
			t.Fatalf("cues did not fire, got %v", got)
		}
	}
	if !got["forward"] || !got["backward"] {
		t.Fatalf("fired %v", got)
	}

	p.AddCue("again", 30)
	p.SetReverse(true)
	p.Driver().Render(reverseaudio.NewBuffer(2, 40))
	expect("again")
	if p.Cues() != 0 {
		t.Fatalf("%d cues left", p.Cues())
	}
}

func TestOpenClearsCues(t *testing.T) {
	p := newPlayer(t, reverseaudio.EndSilence, nil)
	if _, err := p.OpenDecoded("first", testsignal.Ramp(100, 2, 44100)); err != nil {
		t.Fatal(err)
	}
	p.AddCue("mark", 10)
	if _, err := p.OpenDecoded("second", testsignal.Ramp(100, 2, 44100)); err != nil {
		t.Fatal(err)
	}
	if p.Cues() != 0 {
		t.Fatalf("opening a file should drop the cues of the previous one")
	}
}

func TestLoopWrapFiresOnlyPassedCues(t *testing.T) {
	rec := &recorder{}
	p := newPlayer(t, reverseaudio.EndLoop, rec)
	fired := make(chan cue.Id, 8)
	p.OnCue(func(id cue.Id) { fired <- id })
	if _, err := p.OpenDecoded("ramp", testsignal.Ramp(1000, 2, 44100)); err != nil {
		t.Fatal(err)
	}
	run(t, p)
	_ = p.Play()
	eventually(t, "open position", func() bool {
		_, ok := rec.last()
		return ok
	})

	p.Seek(800)
	p.Driver().Render(reverseaudio.NewBuffer(2, 100))
	eventually(t, "position 900", func() bool {
		f, _ := rec.last()
		return f == 900
	})

	p.AddCue("behind", 400)
	p.AddCue("after wrap", 20)
	// 900 -> 1000, then 0 -> 50
	p.Driver().Render(reverseaudio.NewBuffer(2, 150))
	eventually(t, "position 50", func() bool {
		f, _ := rec.last()
		return f == 50
	})
	select {
	case id := <-fired:
		if id != "after wrap" {
			t.Fatalf("fired %q on the wrap", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("the cue after the wrap did not fire")
	}
	if p.Cues() != 1 {
		t.Fatalf("the cue behind the playhead should wait for the next pass, %d cues left", p.Cues())
	}

	p.Driver().Render(reverseaudio.NewBuffer(2, 400))
	select {
	case id := <-fired:
		if id != "behind" {
			t.Fatalf("fired %q", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("the cue did not fire on the next pass")
	}
}

func TestStaleEndDoesNotPauseAfterSeek(t *testing.T) {
	rec := &recorder{}
	p := newPlayer(t, reverseaudio.EndStop, rec)
	ended := make(chan struct{}, 8)
	p.OnEnd(func() { ended <- struct{}{} })
	if _, err := p.OpenDecoded("ramp", testsignal.Ramp(10, 2, 44100)); err != nil {
		t.Fatal(err)
	}
	_ = p.Play()
	p.Driver().Render(reverseaudio.NewBuffer(2, 16))

	// the end signal is still pending when playback restarts from the top
	p.Seek(0)
	_ = p.Play()
	run(t, p)
	p.Driver().Render(reverseaudio.NewBuffer(2, 4))
	eventually(t, "position 4", func() bool {
		f, _ := rec.last()
		return f == 4
	})
	if !p.IsPlaying() {
		t.Fatalf("an end signal from before the seek paused playback")
	}
	select {
	case <-ended:
		t.Fatalf("an end signal from before the seek was delivered")
	default:
	}

	p.Driver().Render(reverseaudio.NewBuffer(2, 16))
	eventually(t, "pause at end", func() bool { return !p.IsPlaying() })
}
