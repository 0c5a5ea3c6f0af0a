package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	reverseaudio "github.com/Lundis/go-reverseaudio"
	"github.com/Lundis/go-reverseaudio/internal/testsignal"
	"github.com/Lundis/go-reverseaudio/internal/tui"
	"github.com/Lundis/go-reverseaudio/player"
	"github.com/Lundis/go-reverseaudio/playlist"
)

const (
	sweepFrom = 220.0
	sweepTo   = 880.0
)

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().Duration("tone", 0, "Play a rising test sweep of this length instead of a file")
	playCmd.Flags().String("playlists", "", "Folder with a playlist.json")
	playCmd.Flags().String("playlist", "", "Playlist to start with (default: the first one)")
}

var playCmd = &cobra.Command{
	Use:   "play [file]",
	Short: "Play a file, a playlist or a test tone in the terminal",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tone := lo.Must(cmd.Flags().GetDuration("tone"))
		folder := lo.Must(cmd.Flags().GetString("playlists"))
		id := lo.Must(cmd.Flags().GetString("playlist"))

		// the terminal belongs to the UI
		if settings.LogFile == "" {
			logrus.SetOutput(io.Discard)
		}

		relay := tui.NewRelay()
		p, err := player.New(player.Options{Config: settings, Sink: relay})
		if err != nil {
			return err
		}
		defer p.Close()

		options := tui.Options{}
		switch {
		case folder != "":
			if err := startPlaylist(p, folder, id); err != nil {
				return err
			}
			options.Playlist = true
		case tone > 0:
			if _, err := p.OpenDecoded("sweep", testsignal.Sweep(sweepFrom, sweepTo, tone, settings.Channels, settings.SampleRate)); err != nil {
				return err
			}
			if settings.Reverse {
				p.SeekFraction(1)
			}
			options.Title = fmt.Sprintf("sweep %.0f-%.0f Hz, %s", sweepFrom, sweepTo, tone.Round(time.Millisecond))
			if err := p.Play(); err != nil {
				return err
			}
		case len(args) == 1:
			if _, err := p.Open(args[0]); err != nil {
				return err
			}
			if settings.Reverse {
				p.SeekFraction(1)
			}
			if err := p.Play(); err != nil {
				return err
			}
		default:
			return errors.New("nothing to play: pass a file, --tone or --playlists")
		}
		return tui.Run(p, relay, options)
	},
}

func startPlaylist(p *player.Player, folder, id string) error {
	if err := playlist.LoadFolder(folder); err != nil {
		return err
	}
	if id == "" {
		ids := playlist.Ids()
		if len(ids) == 0 {
			return fmt.Errorf("%s: no playable playlists", folder)
		}
		id = string(ids[0])
	}
	if _, ok := playlist.Get(playlist.Id(id)); !ok {
		return fmt.Errorf("%s: no playlist %q", folder, id)
	}
	// tracks advance when the previous one stops
	p.SetEndPolicy(reverseaudio.EndStop)
	return playlist.Id(id).Play(p)
}
