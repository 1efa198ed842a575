// Package window implements a render backend that draws a scene into a
// desktop window using the g3n engine.
package window

import (
	"context"
	"fmt"
	"time"

	"github.com/achilleasa/vista/asset"
	"github.com/achilleasa/vista/log"
	"github.com/achilleasa/vista/renderer"
	"github.com/achilleasa/vista/scene"
	"github.com/achilleasa/vista/viewport"
	"github.com/g3n/engine/camera"
	"github.com/g3n/engine/core"
	"github.com/g3n/engine/gls"
	"github.com/g3n/engine/gui"
	g3nrenderer "github.com/g3n/engine/renderer"
	g3nwindow "github.com/g3n/engine/window"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// Renderer draws the scene into a window. It also acts as the frame
// scheduler for the driver: callbacks run once per iteration of the window
// event loop.
type Renderer struct {
	logger log.Logger

	win   *g3nwindow.GlfwWindow
	gs    *gls.GLS
	g3n   *g3nrenderer.Renderer
	scene *core.Node
	cam   *camera.Camera
	orbit *camera.OrbitControl
	drag  *DragControl

	clearColor scene.Color

	backbufferW int
	backbufferH int

	frameInterval time.Duration
	lastFrame     time.Time
	pending       viewport.FrameCallback

	stats renderer.FrameStats
}

// Create a window and build the scene graph for cfg. Relative asset paths
// are resolved against sceneRes; the stager makes remote assets available to
// the g3n loaders.
func New(cfg *scene.Config, sceneRes *asset.Resource, stager *asset.Stager, opts renderer.Options) (*Renderer, error) {
	if cfg == nil {
		return nil, renderer.ErrNoScene
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.Width == 0 || opts.Height == 0 {
		return nil, fmt.Errorf("%w: window size must not be zero", renderer.ErrInvalidFrameSize)
	}

	if err := g3nwindow.Init(opts.Width, opts.Height, opts.Title); err != nil {
		return nil, fmt.Errorf("window: could not create window: %w", err)
	}

	win, ok := g3nwindow.Get().(*g3nwindow.GlfwWindow)
	if !ok {
		return nil, fmt.Errorf("window: unsupported window implementation %T", g3nwindow.Get())
	}

	r := &Renderer{
		logger:      log.New("window renderer"),
		win:         win,
		gs:          win.Gls(),
		scene:       core.NewNode(),
		clearColor:  opts.ClearColor,
		backbufferW: renderer.DefaultBackbufferW,
		backbufferH: renderer.DefaultBackbufferH,
	}
	if r.clearColor == (scene.Color{}) {
		r.clearColor = cfg.Background.Color
	}
	if opts.FPS > 0 {
		r.frameInterval = time.Second / time.Duration(opts.FPS)
	}

	r.g3n = g3nrenderer.NewRenderer(r.gs)
	if err := r.g3n.AddDefaultShaders(); err != nil {
		r.Close()
		return nil, fmt.Errorf("window: could not compile shaders: %w", err)
	}
	r.gs.Viewport(0, 0, int32(r.backbufferW), int32(r.backbufferH))
	glfw.SwapInterval(1)

	gui.Manager().Set(r.scene)

	b := &builder{
		logger:   r.logger,
		stager:   stager,
		sceneRes: sceneRes,
		root:     r.scene,
	}
	if err := b.build(cfg); err != nil {
		r.Close()
		return nil, err
	}
	r.cam, r.orbit = b.cam, b.orbit

	if !cfg.Drag.Disabled && len(b.draggables) > 0 {
		r.drag = NewDragControl(r.cam, r.orbit, r.win.GetFramebufferSize)
		for _, d := range b.draggables {
			r.drag.Add(d)
		}
		r.drag.Subscribe(HighlightObserver(cfg.Drag.Highlight))
		r.win.Subscribe(g3nwindow.OnMouseDown, r.drag.onMouseDown)
		r.win.Subscribe(g3nwindow.OnMouseUp, r.drag.onMouseUp)
		r.win.Subscribe(g3nwindow.OnCursor, r.drag.onCursor)
	}

	r.win.Subscribe(g3nwindow.OnKeyDown, func(_ string, ev interface{}) {
		if kev, ok := ev.(*g3nwindow.KeyEvent); ok && kev.Key == g3nwindow.KeyEscape {
			r.win.SetShouldClose(true)
		}
	})

	r.logger.Noticef("created %dx%d window", opts.Width, opts.Height)
	return r, nil
}

// Get the drag control or nil if dragging is disabled.
func (r *Renderer) DragControl() *DragControl {
	return r.drag
}

// DisplaySize implements viewport.Target. The display size is the size of
// the window framebuffer in pixels.
func (r *Renderer) DisplaySize() (int, int) {
	return r.win.GetFramebufferSize()
}

// BackbufferSize implements viewport.Target.
func (r *Renderer) BackbufferSize() (int, int) {
	return r.backbufferW, r.backbufferH
}

// SetBackbufferSize implements viewport.Target.
func (r *Renderer) SetBackbufferSize(width, height int) {
	r.backbufferW, r.backbufferH = width, height
	r.gs.Viewport(0, 0, int32(width), int32(height))
}

// UpdateProjection implements viewport.Target.
func (r *Renderer) UpdateProjection(aspect float32) {
	r.cam.SetAspect(aspect)
}

// RenderFrame implements viewport.Target. Render errors are logged and do
// not interrupt the frame loop.
func (r *Renderer) RenderFrame() {
	start := time.Now()

	r.gs.ClearColor(r.clearColor[0], r.clearColor[1], r.clearColor[2], 1.0)
	r.gs.Clear(gls.DEPTH_BUFFER_BIT | gls.STENCIL_BUFFER_BIT | gls.COLOR_BUFFER_BIT)
	if err := r.g3n.Render(r.scene, r.cam); err != nil {
		r.stats.Failures++
		r.logger.Errorf("could not render frame: %s", err.Error())
	}

	r.stats.Frames++
	r.stats.RenderTime += time.Since(start)
}

// ScheduleNextFrame implements viewport.Scheduler.
func (r *Renderer) ScheduleNextFrame(cb viewport.FrameCallback) {
	r.pending = cb
}

// Run the window event loop. Each iteration polls window events, runs the
// pending frame callback and presents the frame. Run returns when the window
// is closed, no frame is pending or ctx is cancelled. It must be called from
// the main thread.
func (r *Renderer) Run(ctx context.Context) error {
	for !r.win.ShouldClose() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		glfw.PollEvents()

		cb := r.pending
		if cb == nil {
			return nil
		}
		r.pending = nil

		if r.frameInterval > 0 {
			if wait := r.frameInterval - time.Since(r.lastFrame); wait > 0 {
				time.Sleep(wait)
			}
			r.lastFrame = time.Now()
		}

		cb(time.Duration(glfw.GetTime() * float64(time.Second)))
		r.win.SwapBuffers()
	}
	return nil
}

// Stats implements renderer.Backend.
func (r *Renderer) Stats() renderer.FrameStats {
	return r.stats
}

// Close implements renderer.Backend.
func (r *Renderer) Close() {
	if r.win != nil {
		r.win.Destroy()
		r.win = nil
	}
}
