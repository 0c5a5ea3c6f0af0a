package reverseaudio

import (
	"fmt"
	"strings"
)

// Direction is the temporal order in which frames are delivered.
type Direction uint8

const (
	Forward Direction = iota
	Reverse
)

func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}
	return "forward"
}

// EndPolicy decides what happens when a read runs into the end (or, in reverse, the start) of the file.
type EndPolicy int32

const (
	// EndSilence keeps the cursor parked at the boundary and fills silence.
	EndSilence EndPolicy = iota
	// EndStop fills silence and asks the control layer to stop the driver.
	EndStop
	// EndLoop wraps to the opposite end and keeps reading.
	EndLoop
)

func (p EndPolicy) String() string {
	switch p {
	case EndStop:
		return "stop"
	case EndLoop:
		return "loop"
	}
	return "silence"
}

func ParseEndPolicy(s string) (EndPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "silence", "":
		return EndSilence, nil
	case "stop":
		return EndStop, nil
	case "loop":
		return EndLoop, nil
	}
	return EndSilence, fmt.Errorf("unknown end of stream policy %q", s)
}
