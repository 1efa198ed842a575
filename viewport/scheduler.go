package viewport

import (
	"context"
	"errors"
	"time"
)

var ErrInvalidRate = errors.New("viewport: frame rate must be positive")

// StepScheduler holds at most one pending frame callback and runs it when
// Step is called. It lets callers drive the frame loop manually.
type StepScheduler struct {
	pending FrameCallback
}

// Create a new step scheduler.
func NewStepScheduler() *StepScheduler {
	return &StepScheduler{}
}

// ScheduleNextFrame implements Scheduler. Scheduling while a callback is
// already pending replaces it.
func (s *StepScheduler) ScheduleNextFrame(cb FrameCallback) {
	s.pending = cb
}

// Returns true if a callback is waiting to be run.
func (s *StepScheduler) Pending() bool {
	return s.pending != nil
}

// Run the pending callback with the supplied timestamp. Returns false if no
// callback was pending.
func (s *StepScheduler) Step(ts time.Duration) bool {
	cb := s.pending
	if cb == nil {
		return false
	}
	s.pending = nil
	cb(ts)
	return true
}

// TickerScheduler runs frame callbacks at a fixed rate without a display.
type TickerScheduler struct {
	interval  time.Duration
	maxFrames uint64

	pending FrameCallback
	frames  uint64
}

// Create a ticker scheduler running at fps frames per second. If maxFrames is
// non-zero, Run returns after that many frames.
func NewTickerScheduler(fps int, maxFrames uint64) (*TickerScheduler, error) {
	if fps <= 0 {
		return nil, ErrInvalidRate
	}
	return &TickerScheduler{
		interval:  time.Second / time.Duration(fps),
		maxFrames: maxFrames,
	}, nil
}

// ScheduleNextFrame implements Scheduler.
func (s *TickerScheduler) ScheduleNextFrame(cb FrameCallback) {
	s.pending = cb
}

// Number of callbacks run so far.
func (s *TickerScheduler) Frames() uint64 {
	return s.frames
}

// Run pending callbacks on each tick. Run returns nil once the frame limit is
// reached or no callback is pending after a tick, and ctx.Err() if the
// context is cancelled first. Callbacks run on the calling goroutine.
func (s *TickerScheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	origin := time.Now()
	for s.pending != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			cb := s.pending
			s.pending = nil
			cb(now.Sub(origin))

			s.frames++
			if s.maxFrames > 0 && s.frames >= s.maxFrames {
				return nil
			}
		}
	}
	return nil
}
