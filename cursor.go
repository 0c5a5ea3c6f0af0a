package reverseaudio

// cursor packs the read position, the play direction and the generation of the track it belongs to
// into one word, so that both threads can exchange it with a single atomic operation.
//
//	bits  0..47  frame index
//	bit   48     direction
//	bits 49..63  track generation
type cursor uint64

const (
	frameBits       = 48
	frameMask       = 1<<frameBits - 1
	directionBit    = 1 << frameBits
	generationShift = frameBits + 1
	generationMask  = 1<<(64-generationShift) - 1

	// MaxFrames is the longest file a FrameSource can address.
	MaxFrames = frameMask
)

func makeCursor(frame int64, dir Direction, generation uint16) cursor {
	c := cursor(uint64(frame) & frameMask)
	if dir == Reverse {
		c |= directionBit
	}
	return c | cursor(uint64(generation)&generationMask)<<generationShift
}

func (c cursor) frame() int64 {
	return int64(c & frameMask)
}

func (c cursor) direction() Direction {
	if c&directionBit != 0 {
		return Reverse
	}
	return Forward
}

func (c cursor) generation() uint16 {
	return uint16(c >> generationShift & generationMask)
}

func (c cursor) withFrame(frame int64) cursor {
	return c&^frameMask | cursor(uint64(frame)&frameMask)
}

func (c cursor) withDirection(dir Direction) cursor {
	return makeCursor(c.frame(), dir, c.generation())
}
