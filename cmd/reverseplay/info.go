package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/tools/godoc/vfs"

	"github.com/Lundis/go-reverseaudio/loaders"
)

var (
	labelStyle = lipgloss.NewStyle().Faint(true).Width(10)
	valueStyle = lipgloss.NewStyle().Bold(true)
	nameStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
)

func init() {
	rootCmd.AddCommand(infoCmd)
}

var infoCmd = &cobra.Command{
	Use:   "info <file>...",
	Short: "Decode files and print their format",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, path := range args {
			if err := info(cmd, path); err != nil {
				return err
			}
		}
		return nil
	},
}

func info(cmd *cobra.Command, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	fs := vfs.OS(filepath.Dir(abs))
	name := "/" + filepath.Base(abs)
	data, err := loaders.ReadFile(fs, name)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	kind := loaders.Sniff(path, data)
	d, err := loaders.Decode(path, data, 0)
	if err != nil {
		return err
	}
	f := d.Format
	row := func(label, value string) {
		fmt.Fprintln(cmd.OutOrStdout(), "  "+labelStyle.Render(label)+valueStyle.Render(value))
	}
	fmt.Fprintln(cmd.OutOrStdout(), nameStyle.Render(path))
	row("format", kind.String())
	row("channels", fmt.Sprint(f.ChannelCount))
	row("rate", fmt.Sprintf("%d Hz", f.SampleRate))
	row("bits", fmt.Sprint(f.BitDepth))
	row("frames", fmt.Sprint(f.TotalFrames))
	row("duration", f.Duration().String())
	if stat, err := os.Stat(abs); err == nil {
		row("size", fmt.Sprintf("%d bytes", stat.Size()))
	}
	return nil
}
