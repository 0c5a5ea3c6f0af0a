package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	reverseaudio "github.com/Lundis/go-reverseaudio"
	"github.com/Lundis/go-reverseaudio/audio"
	"github.com/Lundis/go-reverseaudio/loaders/wav"
	"github.com/Lundis/go-reverseaudio/player"
)

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().Duration("from", -1, "Start position (default: the start, or the end with --reverse)")
	renderCmd.Flags().Duration("length", 0, "Stop after this much output (default: until the end of the file)")
}

var renderCmd = &cobra.Command{
	Use:   "render <input> <output.wav>",
	Short: "Render a file forwards or backwards to a WAV file, without an audio device",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from := lo.Must(cmd.Flags().GetDuration("from"))
		length := lo.Must(cmd.Flags().GetDuration("length"))
		return render(args[0], args[1], from, length, cmd)
	},
}

func render(input, output string, from, length time.Duration, cmd *cobra.Command) error {
	c := settings
	c.Backend = audio.BackendManual
	// keep the file's own rate
	c.SampleRate = 0
	if c.EndPolicy == reverseaudio.EndLoop && length <= 0 {
		return errors.New("looping never ends: pass --length")
	}
	if c.EndPolicy == reverseaudio.EndStop {
		c.EndPolicy = reverseaudio.EndSilence
	}

	p, err := player.New(player.Options{Config: c})
	if err != nil {
		return err
	}
	defer p.Close()
	format, err := p.Open(input)
	if err != nil {
		return err
	}
	switch {
	case from >= 0:
		p.Seek(int64(math.Round(from.Seconds() * float64(format.SampleRate))))
	case c.Reverse:
		p.SeekFraction(1)
	}

	limit := int64(-1)
	if length > 0 {
		limit = int64(math.Round(length.Seconds() * float64(format.SampleRate)))
	}

	out, err := os.Create(output)
	if err != nil {
		return err
	}
	defer out.Close()
	w := wav.NewWriter(out, format.SampleRate, c.Channels)

	start := time.Now()
	if err := p.Play(); err != nil {
		return err
	}
	buf := reverseaudio.NewBuffer(c.Channels, p.Driver().BufferFrames())
	var written int64
	for limit < 0 || written < limit {
		n := int64(p.Driver().Render(buf))
		if limit >= 0 {
			n = min(n, limit-written)
		}
		if n > 0 {
			if err := w.WriteFrames(buf, int(n)); err != nil {
				return err
			}
		}
		written += n
		if n < int64(buf.Frames()) {
			break
		}
	}
	p.Pause()
	if err := w.Close(); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"input":     input,
		"output":    output,
		"direction": p.Source().Direction().String(),
		"frames":    written,
	}).Infof("rendered in %.2fs", time.Since(start).Seconds())
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d frames) to %s\n", format.FrameDuration(written), written, output)
	return nil
}
