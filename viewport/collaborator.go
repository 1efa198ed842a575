package viewport

import "time"

// A FrameCallback is invoked by a Scheduler with a monotonically increasing
// timestamp. The timestamp origin is arbitrary.
type FrameCallback func(ts time.Duration)

// A FrameFunc is an optional per-frame hook supplied to Driver.Start.
type FrameFunc func(ts time.Duration)

// The Target interface is implemented by rendering backends whose drawing
// surface is managed by a Driver.
type Target interface {
	// Get the pixel size allocated to the render target by the host.
	DisplaySize() (width, height int)

	// Get the current drawing surface size in pixels.
	BackbufferSize() (width, height int)

	// Resize the drawing surface. Implementations must not alter the
	// display size.
	SetBackbufferSize(width, height int)

	// Recompute and apply the camera projection for the given aspect ratio.
	UpdateProjection(aspect float32)

	// Submit one frame using the current scene and camera state.
	RenderFrame()
}

// The Scheduler interface is implemented by frame sources. ScheduleNextFrame
// must invoke cb exactly once, at the next drawable opportunity.
type Scheduler interface {
	ScheduleNextFrame(cb FrameCallback)
}
