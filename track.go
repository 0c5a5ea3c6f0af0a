package reverseaudio

import (
	"github.com/Lundis/go-reverseaudio/pcm"
)

// track is an opened file: its decoded samples plus the generation that ties it to a cursor.
// Samples are never written after newTrack returns.
type track struct {
	name       string
	format     pcm.Format
	samples    []float32
	generation uint16
	locked     bool
}

func newTrack(name string, d pcm.Decoded, generation uint16) *track {
	return &track{
		name:       name,
		format:     d.Format,
		samples:    d.Samples,
		generation: generation,
	}
}

// lock pins the samples in physical memory so the render thread never takes a page fault.
func (t *track) lock() error {
	if err := lockSamples(t.samples); err != nil {
		return err
	}
	t.locked = true
	return nil
}

// release undoes lock. It must only be called once no reader can reach t.
func (t *track) release() error {
	if !t.locked {
		return nil
	}
	t.locked = false
	return unlockSamples(t.samples)
}

// sourceChannel maps an output channel to a channel of the file, or -1 for silence.
// Mono files are spread over every output channel.
func (t *track) sourceChannel(ch int) int {
	switch {
	case t.format.ChannelCount == 1:
		return 0
	case ch < t.format.ChannelCount:
		return ch
	}
	return -1
}

// read copies up to n frames into dst starting at offset 0, walking from frame in the given direction.
// It returns the cursor after the copy, the number of frames written and whether the read wrapped around.
func (t *track) read(frame int64, dir Direction, dst Buffer, n int, loop bool) (int64, int, bool) {
	total := t.format.TotalFrames
	written := 0
	wrapped := false
	for written < n && total > 0 {
		var k int
		if dir == Forward {
			k = int(min(int64(n-written), total-frame))
			t.copyForward(frame, dst, written, k)
			frame += int64(k)
		} else {
			// a cursor parked at the end has no frame beneath it
			start := min(frame, total-1)
			k = int(min(int64(n-written), start))
			t.copyReverse(start, dst, written, k)
			frame = start - int64(k)
		}
		written += k
		if written == n || !loop || (k == 0 && wrapped) {
			break
		}
		wrapped = true
		if dir == Forward {
			frame = 0
		} else {
			frame = total
		}
	}
	return frame, written, wrapped
}

func (t *track) copyForward(frame int64, dst Buffer, offset, k int) {
	if k <= 0 {
		return
	}
	channelCount := t.format.ChannelCount
	base := int(frame) * channelCount
	for ch, out := range dst {
		out = out[offset : offset+k]
		src := t.sourceChannel(ch)
		if src < 0 {
			clear(out)
			continue
		}
		for i := range out {
			out[i] = t.samples[base+i*channelCount+src]
		}
	}
}

// copyReverse writes frames start, start-1, ..., start-k+1.
func (t *track) copyReverse(start int64, dst Buffer, offset, k int) {
	if k <= 0 {
		return
	}
	channelCount := t.format.ChannelCount
	base := int(start) * channelCount
	for ch, out := range dst {
		out = out[offset : offset+k]
		src := t.sourceChannel(ch)
		if src < 0 {
			clear(out)
			continue
		}
		for i := range out {
			out[i] = t.samples[base-i*channelCount+src]
		}
	}
}
