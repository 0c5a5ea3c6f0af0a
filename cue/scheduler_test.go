package cue

import (
	"slices"
	"testing"
)

func sorted(ids []Id) []Id {
	slices.Sort(ids)
	return ids
}

func TestForward(t *testing.T) {
	s := NewScheduler(0)
	s.Add("a", 100)
	s.Add("b", 200)
	s.Add("c", 300)

	if got := s.Process(0); got != nil {
		t.Fatalf("the first position should only be recorded, got %v", got)
	}
	if got := s.Process(100); !slices.Equal(got, []Id{"a"}) {
		t.Fatalf("got %v", got)
	}
	if got := s.Process(100); got != nil {
		t.Fatalf("standing still should fire nothing, got %v", got)
	}
	if got := sorted(s.Process(300)); !slices.Equal(got, []Id{"b", "c"}) {
		t.Fatalf("got %v", got)
	}
	if s.Len() != 0 {
		t.Fatalf("fired cues should be removed")
	}
}

func TestReverse(t *testing.T) {
	s := NewScheduler(0)
	s.Add("a", 100)
	s.Add("b", 200)
	s.Process(250)
	if got := s.Process(200); !slices.Equal(got, []Id{"b"}) {
		t.Fatalf("got %v", got)
	}
	if got := s.Process(101); got != nil {
		t.Fatalf("got %v", got)
	}
	if got := s.Process(50); !slices.Equal(got, []Id{"a"}) {
		t.Fatalf("got %v", got)
	}
}

func TestCueAtStartingPositionDoesNotFire(t *testing.T) {
	s := NewScheduler(0)
	s.Add("here", 100)
	s.Process(100)
	if got := s.Process(150); got != nil {
		t.Fatalf("a cue behind the start should not fire, got %v", got)
	}
	if got := s.Process(99); !slices.Equal(got, []Id{"here"}) {
		t.Fatalf("going back over it should fire, got %v", got)
	}
}

func TestSeekDropsSkippedCues(t *testing.T) {
	s := NewScheduler(1000)
	s.Add("skipped", 500)
	s.Add("later", 5000)
	s.Process(0)
	if got := s.Process(4000); got != nil {
		t.Fatalf("a seek should not fire, got %v", got)
	}
	if s.Len() != 1 {
		t.Fatalf("the skipped cue should be dropped, %d left", s.Len())
	}
	if got := s.Process(5000); !slices.Equal(got, []Id{"later"}) {
		t.Fatalf("got %v", got)
	}
}

func TestResetAndClear(t *testing.T) {
	s := NewScheduler(0)
	s.Add("a", 100)
	s.Process(0)
	s.Reset()
	if got := s.Process(200); got != nil {
		t.Fatalf("after Reset the next position should only be recorded, got %v", got)
	}
	s.Clear()
	if s.Len() != 0 {
		t.Fatalf("Clear should remove every cue")
	}
}

func TestForwardWrapOnShortFile(t *testing.T) {
	s := NewScheduler(0)
	s.Add("behind", 400)
	s.Add("end", 950)
	s.Add("start", 20)
	s.Process(900)

	if got := sorted(s.Wrap(50, 1000, true)); !slices.Equal(got, []Id{"end", "start"}) {
		t.Fatalf("got %v", got)
	}
	if s.Len() != 1 || s.Last() != 50 {
		t.Fatalf("%d cues left, last %d", s.Len(), s.Last())
	}
	if got := s.Process(400); !slices.Equal(got, []Id{"behind"}) {
		t.Fatalf("the cue behind the wrap should fire on the next pass, got %v", got)
	}
}

func TestForwardWrapOnLongFileKeepsCues(t *testing.T) {
	s := NewScheduler(0)
	s.Add("middle", 2_000_000)
	s.Process(9_990_000)

	if got := s.Wrap(1_000, 10_000_000, true); got != nil {
		t.Fatalf("got %v", got)
	}
	if s.Len() != 1 {
		t.Fatalf("a wrap is not a seek, the cue should stay")
	}
}

func TestReverseWrap(t *testing.T) {
	s := NewScheduler(0)
	s.Add("start", 0)
	s.Add("end", 990)
	s.Add("middle", 500)
	s.Process(30)

	if got := sorted(s.Wrap(980, 1000, false)); !slices.Equal(got, []Id{"end", "start"}) {
		t.Fatalf("got %v", got)
	}
	if s.Len() != 1 {
		t.Fatalf("%d cues left", s.Len())
	}
}

func TestWrapBeforeFirstPositionOnlyRecords(t *testing.T) {
	s := NewScheduler(0)
	s.Add("a", 10)
	if got := s.Wrap(50, 100, true); got != nil {
		t.Fatalf("got %v", got)
	}
	if s.Last() != 50 {
		t.Fatalf("last is %d", s.Last())
	}
}
