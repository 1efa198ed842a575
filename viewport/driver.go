// Package viewport drives a render loop and keeps the backbuffer of a render
// target in sync with the size the host allocated for it.
package viewport

import (
	"sync/atomic"
	"time"

	"github.com/achilleasa/vista/log"
)

// The Driver owns the frame loop of a render target. All Target calls are
// made from the goroutine that runs the scheduler callbacks.
type Driver struct {
	logger log.Logger

	target    Target
	scheduler Scheduler
	onFrame   FrameFunc

	stopped atomic.Bool
	stats   Stats
}

// Create a new driver for target using sched as the frame source.
func NewDriver(target Target, sched Scheduler) *Driver {
	return &Driver{
		logger:    log.New("viewport driver"),
		target:    target,
		scheduler: sched,
	}
}

// Start the frame loop. The optional onFrame hook receives the timestamp of
// each frame before it is rendered. Frames keep being scheduled until Stop is
// called or the scheduler stops delivering callbacks.
func (d *Driver) Start(onFrame FrameFunc) {
	d.onFrame = onFrame
	d.stopped.Store(false)
	d.scheduler.ScheduleNextFrame(d.frame)
}

// Stop the frame loop. The frame in progress, if any, completes but no
// further frame is scheduled. Stop may be called from any goroutine.
func (d *Driver) Stop() {
	d.stopped.Store(true)
}

// Returns true if Stop has been called since the last Start.
func (d *Driver) Stopped() bool {
	return d.stopped.Load()
}

// Get a copy of the loop statistics. Must be called from the loop goroutine
// or after the loop has finished.
func (d *Driver) Stats() Stats {
	return d.stats
}

// Match the backbuffer size to the display size. Returns true if the
// backbuffer was resized. A zero display size is propagated as-is.
func (d *Driver) ReconcileSize() bool {
	dispW, dispH := d.target.DisplaySize()
	bufW, bufH := d.target.BackbufferSize()
	if dispW == bufW && dispH == bufH {
		return false
	}

	d.logger.Debugf("resizing backbuffer from %dx%d to %dx%d", bufW, bufH, dispW, dispH)
	d.target.SetBackbufferSize(dispW, dispH)
	d.stats.Resizes++
	return true
}

func (d *Driver) frame(ts time.Duration) {
	if d.ReconcileSize() {
		w, h := d.target.BackbufferSize()
		d.target.UpdateProjection(float32(w) / float32(h))
	}

	if d.onFrame != nil {
		d.onFrame(ts)
	}
	d.target.RenderFrame()

	if d.stats.Frames == 0 {
		d.stats.FirstFrame = ts
	}
	d.stats.Frames++
	d.stats.LastFrame = ts
	d.stats.BackbufferW, d.stats.BackbufferH = d.target.BackbufferSize()

	if d.stopped.Load() {
		d.logger.Infof("frame loop stopped after %d frames", d.stats.Frames)
		return
	}
	d.scheduler.ScheduleNextFrame(d.frame)
}
