package reverseaudio

// Buffer is the destination of a render request: one slice of samples per output channel.
// The frame capacity is the length of the shortest channel slice.
type Buffer [][]float32

// NewBuffer allocates a silent buffer.
func NewBuffer(channelCount, frames int) Buffer {
	b := make(Buffer, channelCount)
	for ch := range b {
		b[ch] = make([]float32, frames)
	}
	return b
}

// Frames returns the frame capacity of b.
func (b Buffer) Frames() int {
	if len(b) == 0 {
		return 0
	}
	n := len(b[0])
	for _, samples := range b[1:] {
		n = min(n, len(samples))
	}
	return n
}

// Silence zeroes every frame from the given offset to the end of the buffer.
func (b Buffer) Silence(from int) {
	for _, samples := range b {
		if from < len(samples) {
			clear(samples[max(from, 0):])
		}
	}
}

// FrameProducer fills render buffers. It is what a Driver pulls from on every callback.
type FrameProducer interface {
	// ReadFrames is executed directly in the render thread, therefore it must be fast.
	// It must not block, allocate or do any I/O.
	// It writes up to count frames to dst, pads the rest of dst with silence,
	// and returns the number of frames that carry audio.
	ReadFrames(count uint32, dst Buffer) uint32
}

// PositionSink receives cursor positions on the control goroutine.
type PositionSink interface {
	OnPositionUpdated(frame int64)
}

// PositionSinkFunc adapts a function to PositionSink.
type PositionSinkFunc func(frame int64)

func (f PositionSinkFunc) OnPositionUpdated(frame int64) {
	f(frame)
}
