package renderer

import "github.com/achilleasa/vista/viewport"

// The size of an unsized backbuffer. Backends start with this size so
// the first frame reconciles it with the display.
const (
	DefaultBackbufferW = 300
	DefaultBackbufferH = 150
)

// A Backend is a render target that can be driven by a viewport.Driver.
type Backend interface {
	viewport.Target

	// Get render statistics.
	Stats() FrameStats

	// Release any resources held by the backend.
	Close()
}
