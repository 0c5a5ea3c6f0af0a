package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Lundis/go-reverseaudio/config"
	"github.com/Lundis/go-reverseaudio/internal/logging"
)

var (
	configFile string
	settings   config.Config
	logOutput  io.Writer = os.Stderr
)

var rootCmd = &cobra.Command{
	Use:          "reverseplay",
	Short:        "Play audio files forwards and backwards",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "Config file (default: reverseaudio.toml in the working or user config directory)")

	flags.StringP("backend", "b", "", "Output backend: oto, null or manual")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("backend", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"oto", "null", "manual"}, cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(config.AudioBackend, flags.Lookup("backend")))

	flags.IntP("rate", "r", 0, "Output sample rate")
	lo.Must0(viper.BindPFlag(config.AudioSampleRate, flags.Lookup("rate")))

	flags.Duration("buffer", 0, "Device buffer length, e.g. 20ms")
	lo.Must0(viper.BindPFlag(config.AudioBufferSize, flags.Lookup("buffer")))

	flags.StringP("end", "e", "", "At the end of the file: silence, stop or loop")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("end", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"silence", "stop", "loop"}, cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(config.PlaybackEndOfStream, flags.Lookup("end")))

	flags.BoolP("reverse", "R", false, "Start in reverse")
	lo.Must0(viper.BindPFlag(config.PlaybackReverse, flags.Lookup("reverse")))

	flags.Float64("volume", 0, "Output gain, 1 is unity")
	lo.Must0(viper.BindPFlag(config.PlaybackVolume, flags.Lookup("volume")))

	flags.String("log-level", "", "Log level")
	lo.Must0(viper.BindPFlag(config.LogsLevel, flags.Lookup("log-level")))

	flags.Bool("log-json", false, "Log as JSON")
	lo.Must0(viper.BindPFlag(config.LogsJSON, flags.Lookup("log-json")))

	flags.String("log-file", "", "Write logs to this file")
	lo.Must0(viper.BindPFlag(config.LogsFile, flags.Lookup("log-file")))
}

func setup() error {
	paths := []string{"."}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, config.Name))
	}
	if err := config.Setup(viper.GetViper(), configFile, paths...); err != nil {
		return err
	}
	c, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	settings = c

	if c.LogFile != "" {
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("log file: %w", err)
		}
		logOutput = f
	}
	logging.Setup(logOutput, c.LogLevel, c.LogJSON)
	return nil
}
