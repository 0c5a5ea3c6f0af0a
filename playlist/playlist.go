// Package playlist plays named lists of tracks through a Controller, one track after the other.
package playlist

import (
	"slices"
	"sync"

	"github.com/Lundis/go-reverseaudio/loaders"
	"github.com/Lundis/go-reverseaudio/pcm"
	"github.com/samber/lo"
	"golang.org/x/tools/godoc/vfs"
)

var lock sync.RWMutex
var playLists map[Id]*PlayList
var currentPlayList *PlayList

type Id string

// Controller is the output a playlist opens its tracks in. *player.Player implements it.
type Controller interface {
	OpenDecoded(name string, d pcm.Decoded) (pcm.Format, error)
	Play() error
	SetVolume(volume float32)
}

type PlayList struct {
	Id           Id
	Tracks       []*Track
	currentTrack int
	fs           vfs.Opener
}

type Track struct {
	Path   string
	Name   string
	Author string
	Volume float32
}

// Title is the name of the track, or its path if it has none.
func (t *Track) Title() string {
	if t.Name == "" {
		return t.Path
	}
	if t.Author == "" {
		return t.Name
	}
	return t.Author + " - " + t.Name
}

// Get returns a loaded playlist.
func Get(id Id) (*PlayList, bool) {
	lock.RLock()
	defer lock.RUnlock()
	pl, ok := playLists[id]
	return pl, ok
}

// Ids lists the loaded playlists in order.
func Ids() []Id {
	lock.RLock()
	defer lock.RUnlock()
	ids := lo.Keys(playLists)
	slices.Sort(ids)
	return ids
}

// Current returns the playlist that was played last, or nil.
func Current() *PlayList {
	lock.RLock()
	defer lock.RUnlock()
	return currentPlayList
}

// Play makes the playlist current and starts its current track.
// Playing the playlist that is already current only resumes the output.
func (playListId Id) Play(c Controller) error {
	lock.RLock()
	pl, ok := playLists[playListId]
	current := currentPlayList
	lock.RUnlock()
	if current != nil && current.Id == playListId {
		return c.Play()
	}
	if !ok {
		return nil
	}
	return pl.switchTo(c, 0)
}

// Track returns the current track.
func (pl *PlayList) Track() *Track {
	lock.RLock()
	defer lock.RUnlock()
	return pl.Tracks[pl.currentTrack]
}

// Next opens and plays the following track, wrapping around at the end.
func (pl *PlayList) Next(c Controller) error {
	return pl.switchTo(c, 1)
}

// Previous opens and plays the preceding track, wrapping around at the start.
func (pl *PlayList) Previous(c Controller) error {
	return pl.switchTo(c, -1)
}

// switchTo decodes the track delta steps away from the current one and plays it.
// The lock is only held to pick the track and to commit it, never while decoding.
func (pl *PlayList) switchTo(c Controller, delta int) error {
	lock.RLock()
	n := len(pl.Tracks)
	index := ((pl.currentTrack+delta)%n + n) % n
	track := pl.Tracks[index]
	lock.RUnlock()

	d, err := loaders.LoadFile(pl.fs, track.Path, 0)
	if err != nil {
		return err
	}
	if _, err := c.OpenDecoded(track.Path, d); err != nil {
		return err
	}

	lock.Lock()
	pl.currentTrack = index
	currentPlayList = pl
	lock.Unlock()

	c.SetVolume(track.Volume)
	return c.Play()
}

// TrackEnded advances the current playlist. Call it when the output reached the end of a track.
func TrackEnded(c Controller) error {
	pl := Current()
	if pl == nil {
		return nil
	}
	return pl.Next(c)
}
