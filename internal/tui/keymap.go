package tui

import "github.com/charmbracelet/bubbles/key"

type keymap struct {
	quit, playPause, reverse,
	seekBack, seekForward,
	scrub, scrubBack, scrubForward, mark,
	nextTrack, prevTrack,
	endPolicy, mute, volumeUp, volumeDown key.Binding
}

func newKeymap() keymap {
	return keymap{
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		playPause: key.NewBinding(
			key.WithKeys(" ", "space"),
			key.WithHelp("space", "play/pause"),
		),
		reverse: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reverse"),
		),
		seekBack: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "-5s"),
		),
		seekForward: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "+5s"),
		),
		scrub: key.NewBinding(
			key.WithKeys("s", "enter"),
			key.WithHelp("s", "scrub"),
		),
		scrubBack: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "scrub back"),
		),
		scrubForward: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "scrub forward"),
		),
		mark: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "cue here"),
		),
		nextTrack: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next"),
		),
		prevTrack: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "previous"),
		),
		endPolicy: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "end policy"),
		),
		mute: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mute"),
		),
		volumeUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "louder"),
		),
		volumeDown: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "quieter"),
		),
	}
}

func (k keymap) ShortHelp() []key.Binding {
	return []key.Binding{k.playPause, k.reverse, k.seekBack, k.seekForward, k.scrub, k.quit}
}

func (k keymap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.playPause, k.reverse, k.seekBack, k.seekForward},
		{k.scrub, k.scrubBack, k.scrubForward, k.mark},
		{k.nextTrack, k.prevTrack, k.endPolicy},
		{k.mute, k.volumeUp, k.volumeDown, k.quit},
	}
}
