package cmd

import (
	"context"
	"errors"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/achilleasa/vista/asset"
	"github.com/achilleasa/vista/renderer"
	"github.com/achilleasa/vista/renderer/offscreen"
	"github.com/achilleasa/vista/renderer/window"
	"github.com/achilleasa/vista/scene"
	"github.com/achilleasa/vista/viewport"
	"github.com/urfave/cli"
)

func renderOptions(ctx *cli.Context) renderer.Options {
	return renderer.Options{
		Width:     ctx.Int("width"),
		Height:    ctx.Int("height"),
		Title:     ctx.App.Name,
		FPS:       ctx.Int("fps"),
		MaxFrames: uint64(ctx.Int("frames")),
	}
}

// Render the scene in a window.
func RunWindow(ctx *cli.Context) error {
	setupLogging(ctx)

	cfg, sceneRes, err := loadScene(ctx)
	if err != nil {
		return err
	}

	stager := asset.NewStager()
	defer stager.Close()

	opts := renderOptions(ctx)
	r, err := window.New(cfg, sceneRes, stager, opts)
	if err != nil {
		return err
	}
	defer r.Close()

	if dc := r.DragControl(); dc != nil {
		dc.Subscribe(func(evType window.DragEventType, target *window.Draggable) {
			logger.Infof("%s: %s", evType, target.Name)
		})
	}

	driver := viewport.NewDriver(r, r)
	driver.Start(frameLimit(driver, opts.MaxFrames))

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = r.Run(runCtx)
	displayFrameStats("window", driver.Stats(), r.Stats())
	if errors.Is(err, context.Canceled) {
		logger.Notice("interrupted")
		return nil
	}
	return err
}

// Render the scene without a display at a fixed frame rate.
func RunHeadless(ctx *cli.Context) error {
	setupLogging(ctx)

	cfg, _, err := loadScene(ctx)
	if err != nil {
		return err
	}

	opts := renderOptions(ctx)
	r, err := offscreen.New(cfg, opts)
	if err != nil {
		return err
	}
	defer r.Close()

	sched, err := viewport.NewTickerScheduler(opts.FPS, opts.MaxFrames)
	if err != nil {
		return err
	}

	driver := viewport.NewDriver(r, sched)
	driver.Start(chainFrameFuncs(
		turntable(r.Camera(), float32(ctx.Float64("orbit"))),
		frameLimit(driver, opts.MaxFrames),
	))

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Noticef("rendering %dx%d frames at %d fps", opts.Width, opts.Height, opts.FPS)
	err = sched.Run(runCtx)
	displayFrameStats("offscreen", driver.Stats(), r.Stats())
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if out := ctx.String("out"); out != "" {
		return r.WritePNG(out)
	}
	return nil
}

// Render a fixed number of frames as fast as possible and save the last one.
func RenderSnapshot(ctx *cli.Context) error {
	setupLogging(ctx)

	cfg, _, err := loadScene(ctx)
	if err != nil {
		return err
	}

	opts := renderOptions(ctx)
	r, err := offscreen.New(cfg, opts)
	if err != nil {
		return err
	}
	defer r.Close()

	frameCount := opts.MaxFrames
	if frameCount == 0 {
		frameCount = 1
	}
	frameStep := time.Second / 60
	if opts.FPS > 0 {
		frameStep = time.Second / time.Duration(opts.FPS)
	}

	sched := viewport.NewStepScheduler()
	driver := viewport.NewDriver(r, sched)
	driver.Start(turntable(r.Camera(), float32(ctx.Float64("orbit"))))
	for frame := uint64(0); frame < frameCount && sched.Step(time.Duration(frame)*frameStep); frame++ {
	}
	driver.Stop()

	displayFrameStats("offscreen", driver.Stats(), r.Stats())
	return r.WritePNG(ctx.String("out"))
}

// Combine frame hooks into a single hook. Nil hooks are skipped.
func chainFrameFuncs(fns ...viewport.FrameFunc) viewport.FrameFunc {
	active := make([]viewport.FrameFunc, 0, len(fns))
	for _, fn := range fns {
		if fn != nil {
			active = append(active, fn)
		}
	}

	switch len(active) {
	case 0:
		return nil
	case 1:
		return active[0]
	}

	return func(ts time.Duration) {
		for _, fn := range active {
			fn(ts)
		}
	}
}

// Create a frame hook that stops the driver after maxFrames frames.
func frameLimit(driver *viewport.Driver, maxFrames uint64) viewport.FrameFunc {
	if maxFrames == 0 {
		return nil
	}

	var frames uint64
	return func(time.Duration) {
		frames++
		if frames >= maxFrames {
			driver.Stop()
		}
	}
}

// Create a frame hook that orbits the camera around its target at the given
// speed in degrees per second.
func turntable(cam *scene.Camera, degPerSec float32) viewport.FrameFunc {
	if cam == nil || degPerSec == 0 {
		return nil
	}

	var lastTs time.Duration
	first := true
	return func(ts time.Duration) {
		if first {
			first = false
			lastTs = ts
			return
		}
		dt := float32((ts - lastTs).Seconds())
		lastTs = ts
		cam.Orbit(degPerSec*dt*math.Pi/180.0, 0)
	}
}

func displayFrameStats(backendName string, driverStats viewport.Stats, frameStats renderer.FrameStats) {
	logger.Noticef("frame statistics\n%s", renderer.StatsTable(backendName, driverStats, frameStats))
}
