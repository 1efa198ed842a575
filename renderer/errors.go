package renderer

import "errors"

var (
	ErrNoScene          = errors.New("renderer: no scene defined")
	ErrInvalidFrameSize = errors.New("renderer: invalid frame size")
)
