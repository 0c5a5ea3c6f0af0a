// Package tui is the terminal front-end of reverseplay.
package tui

import (
	"context"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Lundis/go-reverseaudio/cue"
	"github.com/Lundis/go-reverseaudio/player"
)

// Relay forwards positions from the player to a running program.
// It is created before the program so it can be handed to player.New.
type Relay struct {
	program atomic.Pointer[tea.Program]
}

func NewRelay() *Relay {
	return &Relay{}
}

func (r *Relay) OnPositionUpdated(frame int64) {
	r.send(positionMsg(frame))
}

func (r *Relay) send(msg tea.Msg) {
	if p := r.program.Load(); p != nil {
		p.Send(msg)
	}
}

// Options configure Run.
type Options struct {
	// Title is shown above the progress bar when no playlist is used.
	Title string
	// Playlist makes next and previous switch tracks, and tracks advance at their end.
	Playlist bool
}

// Run shows the player until the user quits. The player should be created with relay as its sink.
func Run(p *player.Player, relay *Relay, options Options) error {
	program := tea.NewProgram(newModel(p, options), tea.WithAltScreen())
	relay.program.Store(program)
	p.OnEnd(func() { relay.send(endMsg{}) })
	p.OnCue(func(id cue.Id) { relay.send(cueMsg(id)) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	_, err := program.Run()
	cancel()
	if runErr := <-done; err == nil {
		err = runErr
	}
	return err
}
