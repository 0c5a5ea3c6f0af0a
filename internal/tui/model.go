package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"

	reverseaudio "github.com/Lundis/go-reverseaudio"
	"github.com/Lundis/go-reverseaudio/cue"
	"github.com/Lundis/go-reverseaudio/player"
	"github.com/Lundis/go-reverseaudio/playlist"
)

const (
	seekStep   = 5 * time.Second
	scrubStep  = 0.02
	volumeStep = 0.1
	maxVolume  = 2
)

type (
	positionMsg int64
	endMsg      struct{}
	trackMsg    struct{}
	cueMsg      cue.Id
	errMsg      struct{ err error }
)

type model struct {
	player   *player.Player
	keys     keymap
	help     help.Model
	progress progress.Model
	options  Options

	position  int64
	scrubbing bool
	scrubAt   float64
	muted     bool
	marks     int
	lastCue   cue.Id
	err       error
	width     int
}

func newModel(p *player.Player, options Options) model {
	return model{
		player:   p,
		keys:     newKeymap(),
		help:     help.New(),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		options:  options,
		position: p.Position(),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = max(msg.Width-4, 10)
		m.help.Width = msg.Width
		return m, nil
	case positionMsg:
		m.position = int64(msg)
		return m, nil
	case endMsg:
		if m.options.Playlist && m.player.EndPolicy() == reverseaudio.EndStop {
			return m, m.trackEnded()
		}
		return m, nil
	case cueMsg:
		m.lastCue = cue.Id(msg)
		return m, nil
	case trackMsg:
		m.position = m.player.Position()
		m.err = nil
		return m, nil
	case errMsg:
		m.err = msg.err
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.player
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.playPause):
		if _, err := p.TogglePlay(); err != nil {
			m.err = err
		}
	case key.Matches(msg, m.keys.reverse):
		p.ToggleReverse()
	case key.Matches(msg, m.keys.seekBack):
		p.SeekBy(-seekStep)
		m.position = p.Position()
	case key.Matches(msg, m.keys.seekForward):
		p.SeekBy(seekStep)
		m.position = p.Position()
	case key.Matches(msg, m.keys.scrub):
		if m.scrubbing {
			p.EndScrub(m.scrubAt)
			m.scrubbing = false
			m.position = p.Position()
		} else {
			m.scrubAt = p.Progress()
			m.scrubbing = true
			p.BeginScrub()
		}
	case key.Matches(msg, m.keys.scrubBack, m.keys.scrubForward):
		if !m.scrubbing {
			break
		}
		step := scrubStep
		if key.Matches(msg, m.keys.scrubBack) {
			step = -step
		}
		m.scrubAt = lo.Clamp(m.scrubAt+step, 0, 1)
		p.ScrubTo(m.scrubAt)
	case key.Matches(msg, m.keys.mark):
		m.marks++
		p.AddCue(cue.Id(fmt.Sprintf("mark %d", m.marks)), p.Position())
	case key.Matches(msg, m.keys.nextTrack):
		if m.options.Playlist {
			return m, m.skip(1)
		}
	case key.Matches(msg, m.keys.prevTrack):
		if m.options.Playlist {
			return m, m.skip(-1)
		}
	case key.Matches(msg, m.keys.endPolicy):
		p.SetEndPolicy((p.EndPolicy() + 1) % 3)
	case key.Matches(msg, m.keys.mute):
		m.muted = !m.muted
		p.Driver().SetMuted(m.muted)
	case key.Matches(msg, m.keys.volumeUp, m.keys.volumeDown):
		step := float32(volumeStep)
		if key.Matches(msg, m.keys.volumeDown) {
			step = -step
		}
		p.SetVolume(lo.Clamp(p.Volume()+step, 0, maxVolume))
	}
	return m, nil
}

// skip switches to another track of the current playlist off the UI goroutine.
func (m model) skip(delta int) tea.Cmd {
	p := m.player
	return func() tea.Msg {
		pl := playlist.Current()
		if pl == nil {
			return nil
		}
		var err error
		if delta < 0 {
			err = pl.Previous(p)
		} else {
			err = pl.Next(p)
		}
		if err != nil {
			return errMsg{err}
		}
		return trackMsg{}
	}
}

// trackEnded moves the current playlist on after its track played to the end.
func (m model) trackEnded() tea.Cmd {
	p := m.player
	return func() tea.Msg {
		if err := playlist.TrackEnded(p); err != nil {
			return errMsg{err}
		}
		return trackMsg{}
	}
}

func (m model) title() string {
	if m.options.Playlist {
		if pl := playlist.Current(); pl != nil {
			return string(pl.Id) + ": " + pl.Track().Title()
		}
	}
	if m.options.Title != "" {
		return m.options.Title
	}
	return m.player.Name()
}

func (m model) fraction() float64 {
	if m.scrubbing {
		return m.scrubAt
	}
	f, ok := m.player.Format()
	if !ok || f.TotalFrames == 0 {
		return 0
	}
	return float64(m.position) / float64(f.TotalFrames)
}
