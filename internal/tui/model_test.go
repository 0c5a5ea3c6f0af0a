package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	reverseaudio "github.com/Lundis/go-reverseaudio"
	"github.com/Lundis/go-reverseaudio/audio"
	"github.com/Lundis/go-reverseaudio/config"
	"github.com/Lundis/go-reverseaudio/internal/testsignal"
	"github.com/Lundis/go-reverseaudio/player"
)

func newTestModel(t *testing.T) (model, *player.Player) {
	t.Helper()
	p, err := player.New(player.Options{Config: config.Config{
		SampleRate: 44100,
		Channels:   2,
		Backend:    audio.BackendManual,
		Volume:     1,
	}})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = p.Close() })
	if _, err := p.OpenDecoded("tone", testsignal.Ramp(44100*20, 2, 44100)); err != nil {
		t.Fatal(err)
	}
	return newModel(p, Options{Title: "tone"}), p
}

func press(t *testing.T, m model, keys ...string) model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(model)
	}
	return m
}

func TestPlayPauseAndReverse(t *testing.T) {
	m, p := newTestModel(t)
	m = press(t, m, " ")
	if !p.IsPlaying() {
		t.Fatalf("space should start playback")
	}
	m = press(t, m, "r")
	if !p.Reverse() {
		t.Fatalf("r should switch to reverse")
	}
	m = press(t, m, " ", "r")
	if p.IsPlaying() || p.Reverse() {
		t.Fatalf("space and r again should pause and go forward")
	}
	if !strings.Contains(m.View(), "tone") {
		t.Fatalf("the view should show the title")
	}
}

func TestSeekKeys(t *testing.T) {
	m, p := newTestModel(t)
	m = press(t, m, "right", "right")
	if p.Position() != 10*44100 || m.position != p.Position() {
		t.Fatalf("position is %d", p.Position())
	}
	m = press(t, m, "left")
	if p.Position() != 5*44100 {
		t.Fatalf("position is %d", p.Position())
	}
}

func TestScrubKeys(t *testing.T) {
	m, p := newTestModel(t)
	m = press(t, m, "]")
	if p.Position() != 0 {
		t.Fatalf("scrub steps should be ignored outside a scrub")
	}
	m = press(t, m, "s")
	if !m.scrubbing || !p.Scrubbing() {
		t.Fatalf("s should begin a scrub")
	}
	m = press(t, m, "]", "]", "]", "[")
	if m.fraction() < 0.039 || m.fraction() > 0.041 {
		t.Fatalf("scrub position is %v", m.fraction())
	}
	m = press(t, m, "s")
	if m.scrubbing || p.Scrubbing() {
		t.Fatalf("s again should end the scrub")
	}
	if p.Position() != m.position || p.Progress() < 0.039 || p.Progress() > 0.041 {
		t.Fatalf("ending a scrub should seek, progress is %v", p.Progress())
	}
}

func TestPositionMessages(t *testing.T) {
	m, _ := newTestModel(t)
	next, _ := m.Update(positionMsg(44100 * 10))
	m = next.(model)
	if m.fraction() != 0.5 {
		t.Fatalf("fraction is %v", m.fraction())
	}
	if !strings.Contains(m.status(), "0:10 / 0:20") {
		t.Fatalf("status is %q", m.status())
	}
}

func TestEndPolicyVolumeAndMute(t *testing.T) {
	m, p := newTestModel(t)
	m = press(t, m, "e")
	if p.EndPolicy() != reverseaudio.EndStop {
		t.Fatalf("end policy is %s", p.EndPolicy())
	}
	m = press(t, m, "e", "e")
	if p.EndPolicy() != reverseaudio.EndSilence {
		t.Fatalf("end policy should cycle back, got %s", p.EndPolicy())
	}
	m = press(t, m, "-", "-")
	if v := p.Volume(); v < 0.79 || v > 0.81 {
		t.Fatalf("volume is %v", v)
	}
	m = press(t, m, "m")
	if !p.Driver().Muted() || !strings.Contains(m.status(), "muted") {
		t.Fatalf("m should mute")
	}
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatalf("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("q should quit")
	}
}

func TestFormatDuration(t *testing.T) {
	for d, want := range map[string]string{"0s": "0:00", "1m5s": "1:05", "61m": "61:00"} {
		parsed, _ := time.ParseDuration(d)
		if got := formatDuration(parsed); got != want {
			t.Errorf("formatDuration(%s) = %s, want %s", d, got, want)
		}
	}
}

func TestMarkCue(t *testing.T) {
	m, p := newTestModel(t)
	m = press(t, m, "right", "c")
	if p.Cues() != 1 {
		t.Fatalf("c should add a cue")
	}
	next, _ := m.Update(cueMsg("mark 1"))
	m = next.(model)
	if !strings.Contains(m.status(), "cue: mark 1") {
		t.Fatalf("status is %q", m.status())
	}
}

func TestEndOfTrackAdvancesPlaylistOnlyWhenStopping(t *testing.T) {
	m, p := newTestModel(t)
	m.options.Playlist = true

	if _, cmd := m.Update(endMsg{}); cmd != nil {
		t.Fatalf("with the silence policy the end of a track should do nothing")
	}
	p.SetEndPolicy(reverseaudio.EndStop)
	_, cmd := m.Update(endMsg{})
	if cmd == nil {
		t.Fatalf("with the stop policy the playlist should move on")
	}
	// no playlist is current, so moving on only refreshes the view
	if _, ok := cmd().(trackMsg); !ok {
		t.Fatalf("expected a track message")
	}
}
