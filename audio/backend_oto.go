//go:build !headless

package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	reverseaudio "github.com/Lundis/go-reverseaudio"
	"github.com/ebitengine/oto/v3"
)

// oto supports a single context per process.
var (
	contextCreationMutex sync.Mutex
	otoContext           *oto.Context
	otoContextOptions    oto.NewContextOptions
)

func sharedOtoContext(o Options) (*oto.Context, error) {
	contextCreationMutex.Lock()
	defer contextCreationMutex.Unlock()

	if otoContext != nil {
		if otoContextOptions.SampleRate != o.SampleRate || otoContextOptions.ChannelCount != o.ChannelCount {
			return nil, fmt.Errorf("audio: context was already created with %dHz %dch",
				otoContextOptions.SampleRate, otoContextOptions.ChannelCount)
		}
		return otoContext, nil
	}

	op := oto.NewContextOptions{
		SampleRate:   o.SampleRate,
		ChannelCount: o.ChannelCount,
		Format:       oto.FormatFloat32LE,
		BufferSize:   o.BufferSize,
	}
	ctx, ready, err := oto.NewContext(&op)
	if err != nil {
		return nil, fmt.Errorf("audio: initialization failed: %w", err)
	}
	<-ready
	otoContext = ctx
	otoContextOptions = op
	return ctx, nil
}

// otoBackend is the io.Reader an oto.Player pulls from. oto calls Read on its own goroutine,
// which makes Read the render callback.
type otoBackend struct {
	driver       *Driver
	player       *oto.Player
	channelCount int
	scratch      reverseaudio.Buffer
	// view re-slices scratch to the requested size without allocating
	view reverseaudio.Buffer
}

func newOtoBackend(d *Driver, o Options) (*otoBackend, error) {
	ctx, err := sharedOtoContext(o)
	if err != nil {
		return nil, err
	}
	b := &otoBackend{
		driver:       d,
		channelCount: o.ChannelCount,
		scratch:      reverseaudio.NewBuffer(o.ChannelCount, d.bufferFrames),
		view:         make(reverseaudio.Buffer, o.ChannelCount),
	}
	b.player = ctx.NewPlayer(b)
	b.player.SetBufferSize(d.bufferFrames * o.ChannelCount * 4)
	return b, nil
}

// Read renders into scratch and encodes it as float32LE. Requests larger than scratch
// are rendered in several passes, so the render path never allocates.
func (b *otoBackend) Read(p []byte) (int, error) {
	bytesPerFrame := 4 * b.channelCount
	frames := len(p) / bytesPerFrame
	for offset := 0; offset < frames; {
		n := min(frames-offset, b.scratch.Frames())
		for ch := range b.view {
			b.view[ch] = b.scratch[ch][:n]
		}
		b.driver.Render(b.view)
		out := p[offset*bytesPerFrame:]
		for i := 0; i < n; i++ {
			for ch, samples := range b.view {
				binary.LittleEndian.PutUint32(out[i*bytesPerFrame+ch*4:], math.Float32bits(samples[i]))
			}
		}
		offset += n
	}
	clear(p[frames*bytesPerFrame:])
	return len(p), nil
}

func (b *otoBackend) play() {
	b.player.Play()
}

func (b *otoBackend) pause() {
	b.player.Pause()
}

func (b *otoBackend) close() error {
	return b.player.Close()
}
