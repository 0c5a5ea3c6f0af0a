// Package cue fires markers when the playing position passes them, in either direction.
package cue

// Id names a cue.
type Id string

// DefaultMaxJump is the largest position change that still fires the cues it passes over.
// Bigger changes are seeks, and the cues they jump over are dropped without firing.
const DefaultMaxJump = 44100 * 3

// Scheduler lets you register cues that fire when the position reaches them.
//
// Call Process with every new position. A cue fires once, whether it is reached
// playing forwards or backwards, and is then removed.
type Scheduler struct {
	cues    []queuedCue
	last    int64
	started bool
	maxJump int64
}

type queuedCue struct {
	id Id
	at int64
}

// NewScheduler creates a Scheduler. maxJump 0 or less uses DefaultMaxJump.
func NewScheduler(maxJump int64) *Scheduler {
	if maxJump <= 0 {
		maxJump = DefaultMaxJump
	}
	return &Scheduler{
		cues:    make([]queuedCue, 0, 16),
		maxJump: maxJump,
	}
}

// Add registers a cue at frame at.
func (s *Scheduler) Add(id Id, at int64) {
	s.cues = append(s.cues, queuedCue{id: id, at: at})
}

func (s *Scheduler) Clear() {
	s.cues = s.cues[:0]
}

// Len is the number of cues that have not fired.
func (s *Scheduler) Len() int {
	return len(s.cues)
}

// Reset forgets the last position, e.g. after a new file was opened.
// The next Process only records its position.
func (s *Scheduler) Reset() {
	s.started = false
}

// Process moves to position and returns the cues passed since the last call, in no particular order.
// Going forwards a cue is passed when last < at <= position, going backwards when position <= at < last.
func (s *Scheduler) Process(position int64) []Id {
	last := s.last
	s.last = position
	if !s.started {
		s.started = true
		return nil
	}
	if position == last {
		return nil
	}
	lo, hi := last, position
	forward := position > last
	if !forward {
		lo, hi = position, last
	}
	stale := hi-lo > s.maxJump

	var fired []Id
	i := 0
	for i < len(s.cues) {
		at := s.cues[i].at
		passed := (forward && at > lo && at <= hi) || (!forward && at >= lo && at < hi)
		if !passed {
			i++
			continue
		}
		if !stale {
			fired = append(fired, s.cues[i].id)
		}
		// clean array by moving the last element to the now free position
		s.cues[i] = s.cues[len(s.cues)-1]
		s.cues = s.cues[:len(s.cues)-1]
	}
	return fired
}

// Last is the position of the previous Process or Wrap.
func (s *Scheduler) Last() int64 {
	return s.last
}

// Wrap moves to position across a loop wrap of a file with total frames: forwards from the last
// position to the end and on from the start, or backwards to the start and on from the end.
// Each part counts as its own move, so only the cues the playback actually passed fire.
func (s *Scheduler) Wrap(position, total int64, forward bool) []Id {
	if !s.started {
		return s.Process(position)
	}
	var fired []Id
	if forward {
		fired = s.Process(total)
		s.last = -1
	} else {
		fired = s.Process(0)
		s.last = total
	}
	return append(fired, s.Process(position)...)
}
