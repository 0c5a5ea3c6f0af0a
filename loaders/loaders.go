// Package loaders reads audio files through a virtual file system and decodes them to PCM.
package loaders

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/Lundis/go-reverseaudio/loaders/mp3"
	"github.com/Lundis/go-reverseaudio/loaders/oggvorbis"
	"github.com/Lundis/go-reverseaudio/loaders/wav"
	"github.com/Lundis/go-reverseaudio/pcm"
	"golang.org/x/tools/godoc/vfs"
)

// Kind identifies a container format.
type Kind int

const (
	KindUnknown Kind = iota
	KindWav
	KindOggVorbis
	KindMP3
)

func (k Kind) String() string {
	switch k {
	case KindWav:
		return "wav"
	case KindOggVorbis:
		return "ogg/vorbis"
	case KindMP3:
		return "mp3"
	}
	return "unknown"
}

// Sniff guesses the format from the first bytes of a file, falling back to the file extension.
func Sniff(name string, header []byte) Kind {
	switch {
	case len(header) >= 12 && bytes.Equal(header[0:4], []byte("RIFF")) && bytes.Equal(header[8:12], []byte("WAVE")):
		return KindWav
	case bytes.HasPrefix(header, []byte("OggS")):
		return KindOggVorbis
	case bytes.HasPrefix(header, []byte("ID3")):
		return KindMP3
	case len(header) >= 2 && header[0] == 0xff && header[1]&0xe0 == 0xe0:
		return KindMP3
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".wav", ".wave":
		return KindWav
	case ".ogg", ".oga":
		return KindOggVorbis
	case ".mp3":
		return KindMP3
	}
	return KindUnknown
}

// Decode decodes a file held in memory. name is only used to sniff the format and in errors.
// If sampleRate is not 0, files with another sample rate are rejected.
func Decode(name string, data []byte, sampleRate int) (pcm.Decoded, error) {
	var (
		d   pcm.Decoded
		err error
	)
	switch kind := Sniff(name, data); kind {
	case KindWav:
		d, err = wav.Load(data, sampleRate)
	case KindOggVorbis:
		d, err = oggvorbis.Load(data, sampleRate)
	case KindMP3:
		d, err = mp3.Load(data, sampleRate)
	default:
		return pcm.Decoded{}, fmt.Errorf("%s: %w: not a wav, ogg or mp3 file", name, pcm.ErrUnsupportedFormat)
	}
	if err != nil {
		return pcm.Decoded{}, fmt.Errorf("%s: %w", name, err)
	}
	if err := d.Validate(); err != nil {
		return pcm.Decoded{}, fmt.Errorf("%s: %w", name, err)
	}
	return d, nil
}

// LoadFile reads and decodes path from fs.
func LoadFile(fs vfs.Opener, path string, sampleRate int) (pcm.Decoded, error) {
	raw, err := ReadFile(fs, path)
	if err != nil {
		return pcm.Decoded{}, fmt.Errorf("%s: %w: %w", path, pcm.ErrUnreadable, err)
	}
	return Decode(path, raw, sampleRate)
}

// ReadFile reads a whole file from fs.
func ReadFile(fs vfs.Opener, path string) (data []byte, err error) {
	file, err := fs.Open(path)
	if err != nil {
		return
	}
	data, err = io.ReadAll(file)
	_ = file.Close()
	return
}
