package viewport

import "time"

type Stats struct {
	// Number of rendered frames.
	Frames uint64

	// Number of reconciliations that resized the backbuffer.
	Resizes uint64

	// Backbuffer size after the last rendered frame.
	BackbufferW int
	BackbufferH int

	// Timestamps of the first and last rendered frame.
	FirstFrame time.Duration
	LastFrame  time.Duration
}

// Average frames per second between the first and last frame. Returns 0 when
// fewer than two frames were rendered.
func (s Stats) FPS() float64 {
	elapsed := s.LastFrame - s.FirstFrame
	if s.Frames < 2 || elapsed <= 0 {
		return 0
	}
	return float64(s.Frames-1) / elapsed.Seconds()
}
