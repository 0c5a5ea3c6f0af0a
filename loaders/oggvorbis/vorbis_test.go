package oggvorbis_test

import (
	"errors"
	"testing"

	"github.com/Lundis/go-reverseaudio/loaders/oggvorbis"
	"github.com/Lundis/go-reverseaudio/pcm"
)

func TestLoadNotOgg(t *testing.T) {
	_, err := oggvorbis.Load([]byte("RIFF0000WAVEfmt "), 44100)
	if !errors.Is(err, pcm.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestLoadTruncatedCapture(t *testing.T) {
	// a capture pattern with nothing behind it
	_, err := oggvorbis.Load([]byte("OggS"), 0)
	if err == nil {
		t.Fatalf("truncated stream should not decode")
	}
}
