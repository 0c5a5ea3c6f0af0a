package reverseaudio

import (
	"context"
	"sync/atomic"

	"golang.org/x/time/rate"
)

// PositionNotifier carries cursor positions from the render thread to the control goroutine.
//
// It is a single slot: a newer position overwrites an unread one, and the producer never waits.
// The end-of-stream signal uses a second slot with the same semantics.
type PositionNotifier struct {
	position atomic.Int64
	pending  atomic.Bool
	ended    atomic.Bool
	muted    atomic.Bool
	wake     chan struct{}
	limiter  *rate.Limiter
}

// NewPositionNotifier creates a notifier that delivers at most ratePerSecond updates per second from Run.
// A rate of 0 or less disables the limit.
func NewPositionNotifier(ratePerSecond float64) *PositionNotifier {
	limit := rate.Inf
	if ratePerSecond > 0 {
		limit = rate.Limit(ratePerSecond)
	}
	return &PositionNotifier{
		wake:    make(chan struct{}, 1),
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Publish stores frame as the latest position. Safe to call from the render thread.
func (n *PositionNotifier) Publish(frame int64) {
	n.position.Store(frame)
	n.pending.Store(true)
	n.poke()
}

// SignalEnd records that a read ran into the end of the stream. Safe to call from the render thread.
func (n *PositionNotifier) SignalEnd() {
	if n.ended.Swap(true) {
		return
	}
	n.poke()
}

func (n *PositionNotifier) poke() {
	select {
	case n.wake <- struct{}{}:
	default:
	}
}

// Latest takes the newest unread position, if any.
func (n *PositionNotifier) Latest() (int64, bool) {
	if !n.pending.Swap(false) {
		return 0, false
	}
	return n.position.Load(), true
}

// Ended takes the end-of-stream signal.
func (n *PositionNotifier) Ended() bool {
	return n.ended.Swap(false)
}

// SetMuted makes Run drop positions, e.g. while the user is dragging a seek bar.
func (n *PositionNotifier) SetMuted(muted bool) {
	n.muted.Store(muted)
}

func (n *PositionNotifier) Muted() bool {
	return n.muted.Load()
}

// Run delivers positions to sink and end-of-stream signals to onEnd on the calling goroutine
// until ctx is done. Either callback may be nil.
func (n *PositionNotifier) Run(ctx context.Context, sink PositionSink, onEnd func()) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-n.wake:
		}
		if n.Ended() && onEnd != nil {
			onEnd()
		}
		// waiting here lets newer positions overwrite the slot before we read it
		if err := n.limiter.Wait(ctx); err != nil {
			return err
		}
		frame, ok := n.Latest()
		if !ok || n.muted.Load() || sink == nil {
			continue
		}
		sink.OnPositionUpdated(frame)
	}
}
