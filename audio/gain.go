package audio

import (
	"math"

	reverseaudio "github.com/Lundis/go-reverseaudio"
)

// SetVolume scales everything the driver outputs. 1 is unity gain.
func (d *Driver) SetVolume(volume float32) {
	d.gain.Store(math.Float32bits(max(volume, 0)))
}

func (d *Driver) Volume() float32 {
	return math.Float32frombits(d.gain.Load())
}

// SetMuted silences the output without stopping the callback, so the data source keeps advancing.
func (d *Driver) SetMuted(muted bool) {
	d.muted.Store(muted)
}

func (d *Driver) Muted() bool {
	return d.muted.Load()
}

func (d *Driver) applyGain(buf reverseaudio.Buffer) {
	if d.muted.Load() {
		buf.Silence(0)
		return
	}
	volume := d.Volume()
	if volume == 1 {
		return
	}
	for _, samples := range buf {
		for i := range samples {
			samples[i] *= volume
		}
	}
}
