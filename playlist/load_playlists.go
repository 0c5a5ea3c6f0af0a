package playlist

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/Lundis/go-reverseaudio/internal/logging"
	"github.com/Lundis/go-reverseaudio/loaders"
	"golang.org/x/tools/godoc/vfs"
)

// RegistryFile is the file at the root of a playlist folder that lists the playlists.
const RegistryFile = "playlist.json"

// sniffBytes is enough to recognise every supported container.
const sniffBytes = 12

var log = logging.For("playlist")

// LoadFolder loads playlists from a regular folder.
// See Load for more information.
func LoadFolder(folder string) error {
	fs := vfs.OS(folder)
	return Load(fs)
}

// Load loads playlists from a virtual filesystem.
// At the root of the filesystem there must be a "playlist.json" file, which references any files to be loaded.
// Tracks are decoded when they are played; a playlist with a missing or unrecognised track is skipped.
func Load(fileSystem vfs.Opener) error {
	lock.Lock()
	defer lock.Unlock()
	start := time.Now()
	playlists, err := loadRegistry(fileSystem, RegistryFile)
	if err != nil {
		return err
	}
	loaded := make(map[Id]*PlayList, len(playlists))
playlistLoop:
	for _, pl := range playlists {
		if len(pl.Tracks) == 0 {
			log.WithField("playlist", pl.Id).Warn("skipping empty playlist")
			continue
		}
		for _, track := range pl.Tracks {
			kind, err := sniff(fileSystem, track.Path)
			if err != nil {
				log.WithError(err).WithField("file", track.Path).Warn("failed to read track")
				continue playlistLoop
			}
			if kind == loaders.KindUnknown {
				log.WithField("file", track.Path).Warn("not a wav, ogg or mp3 file")
				continue playlistLoop
			}
			if track.Volume == 0 {
				track.Volume = 1
			}
		}
		pl.fs = fileSystem
		loaded[pl.Id] = pl
	}
	playLists = loaded
	currentPlayList = nil

	log.Infof("loaded %d playlists in %.2fs", len(playLists), time.Since(start).Seconds())
	return nil
}

func sniff(fs vfs.Opener, path string) (loaders.Kind, error) {
	file, err := fs.Open(path)
	if err != nil {
		return loaders.KindUnknown, err
	}
	defer file.Close()
	header := make([]byte, sniffBytes)
	n, err := io.ReadFull(file, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return loaders.KindUnknown, err
	}
	return loaders.Sniff(path, header[:n]), nil
}

func loadRegistry(fs vfs.Opener, path string) (registry []*PlayList, err error) {
	data, err := loaders.ReadFile(fs, path)
	if err != nil {
		err = fmt.Errorf("failed to open %s: %w", path, err)
		return
	}
	err = json.Unmarshal(data, &registry)
	if err != nil {
		err = fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return
}
