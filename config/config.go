// Package config provides the viper-backed settings of the engine and its front-ends.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	reverseaudio "github.com/Lundis/go-reverseaudio"
	"github.com/Lundis/go-reverseaudio/audio"
	"github.com/spf13/viper"
)

const (
	// Name is the config file name (without extension) and the environment prefix.
	Name = "reverseaudio"

	AudioSampleRate     = "audio.sample_rate"
	AudioChannels       = "audio.channels"
	AudioBufferSize     = "audio.buffer_size"
	AudioBackend        = "audio.backend"
	PlaybackEndOfStream = "playback.end_of_stream"
	PlaybackReverse     = "playback.reverse"
	PlaybackMemoryLock  = "playback.memory_lock"
	PlaybackVolume      = "playback.volume"
	NotifierRate        = "notifier.rate"
	LogsLevel           = "logs.level"
	LogsJSON            = "logs.json"
	LogsFile            = "logs.file"
)

// Field is a configuration key with its default value.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Default lists every key with its factory value.
var Default = map[string]Field{
	AudioSampleRate:     {AudioSampleRate, audio.DefaultSampleRate, "Output sample rate. Files with another rate are rejected"},
	AudioChannels:       {AudioChannels, audio.DefaultChannelCount, "Number of output channels"},
	AudioBufferSize:     {AudioBufferSize, 50 * time.Millisecond, "Device buffer length. Shorter is more responsive, longer is safer"},
	AudioBackend:        {AudioBackend, "oto", "Output backend: oto, null or manual"},
	PlaybackEndOfStream: {PlaybackEndOfStream, "silence", "What to do at either end of the file: silence, stop or loop"},
	PlaybackReverse:     {PlaybackReverse, false, "Start in reverse"},
	PlaybackMemoryLock:  {PlaybackMemoryLock, true, "Lock decoded audio in memory"},
	PlaybackVolume:      {PlaybackVolume, 1.0, "Output gain, 1 is unity"},
	NotifierRate:        {NotifierRate, 30.0, "Maximum position updates per second"},
	LogsLevel:           {LogsLevel, "info", "Log level"},
	LogsJSON:            {LogsJSON, false, "Log as JSON"},
	LogsFile:            {LogsFile, "", "Write logs to this file instead of stderr"},
}

// EnvKeyReplacer maps keys to environment variable names, e.g. audio.sample_rate to REVERSEAUDIO_AUDIO_SAMPLE_RATE.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Setup installs defaults and environment bindings in v and reads the config file, if any.
// configFile may be empty, in which case reverseaudio.toml is looked up in the given paths.
func Setup(v *viper.Viper, configFile string, searchPaths ...string) error {
	v.SetEnvPrefix(Name)
	v.SetEnvKeyReplacer(EnvKeyReplacer)
	v.AutomaticEnv()

	v.SetTypeByDefaultValue(true)
	for name, field := range Default {
		v.SetDefault(name, field.Value)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(Name)
		v.SetConfigType("toml")
		for _, p := range searchPaths {
			v.AddConfigPath(p)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Config is the validated view of the settings.
type Config struct {
	SampleRate   int
	Channels     int
	BufferSize   time.Duration
	Backend      audio.BackendKind
	EndPolicy    reverseaudio.EndPolicy
	Reverse      bool
	MemoryLock   bool
	Volume       float64
	NotifierRate float64
	LogLevel     string
	LogJSON      bool
	LogFile      string
}

// Load reads and validates the settings from v.
func Load(v *viper.Viper) (Config, error) {
	c := Config{
		SampleRate:   v.GetInt(AudioSampleRate),
		Channels:     v.GetInt(AudioChannels),
		BufferSize:   v.GetDuration(AudioBufferSize),
		Reverse:      v.GetBool(PlaybackReverse),
		MemoryLock:   v.GetBool(PlaybackMemoryLock),
		Volume:       v.GetFloat64(PlaybackVolume),
		NotifierRate: v.GetFloat64(NotifierRate),
		LogLevel:     v.GetString(LogsLevel),
		LogJSON:      v.GetBool(LogsJSON),
		LogFile:      v.GetString(LogsFile),
	}
	var err error
	if c.Backend, err = audio.ParseBackend(v.GetString(AudioBackend)); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", AudioBackend, err)
	}
	if c.EndPolicy, err = reverseaudio.ParseEndPolicy(v.GetString(PlaybackEndOfStream)); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", PlaybackEndOfStream, err)
	}
	if c.SampleRate <= 0 {
		return Config{}, fmt.Errorf("config: %s must be positive but was %d", AudioSampleRate, c.SampleRate)
	}
	if c.Channels <= 0 {
		return Config{}, fmt.Errorf("config: %s must be positive but was %d", AudioChannels, c.Channels)
	}
	if c.BufferSize < 0 {
		return Config{}, fmt.Errorf("config: %s must not be negative", AudioBufferSize)
	}
	if c.Volume < 0 {
		return Config{}, fmt.Errorf("config: %s must not be negative", PlaybackVolume)
	}
	return c, nil
}
