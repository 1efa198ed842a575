package renderer

import (
	"fmt"

	"github.com/achilleasa/vista/scene"
)

type Options struct {
	// Initial display dims.
	Width  int
	Height int

	// Window title.
	Title string

	// Color used for clearing frames when the scene defines no skybox.
	ClearColor scene.Color

	// Frame rate limit; 0 renders as fast as the scheduler allows.
	FPS int

	// Stop after rendering this many frames; 0 renders until interrupted.
	MaxFrames uint64
}

// Check options for errors.
func (opts Options) Validate() error {
	if opts.Width < 0 || opts.Height < 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidFrameSize, opts.Width, opts.Height)
	}
	if opts.FPS < 0 {
		return fmt.Errorf("renderer: invalid fps limit %d", opts.FPS)
	}
	return nil
}
