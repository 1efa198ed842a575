// Package offscreen implements a render backend that draws a flat preview of
// a scene into an in-memory image. It needs no GPU or display and is used for
// headless runs and snapshots.
package offscreen

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/achilleasa/vista/log"
	"github.com/achilleasa/vista/renderer"
	"github.com/achilleasa/vista/scene"
	"github.com/achilleasa/vista/types"
	"golang.org/x/image/vector"
)

// Control point distance for approximating a quarter circle with a cubic bezier.
const bezierCircleK = 0.5522847

type splat struct {
	x, y   float32
	radius float32
	depth  float32
	color  scene.Color
}

// Renderer draws each scene object as a shaded disc at its projected
// position.
type Renderer struct {
	logger log.Logger

	camera  *scene.Camera
	objects []scene.Object
	ground  *scene.GroundConfig

	clearColor color.RGBA

	// Guards the display size which may be updated by the host while
	// the frame loop is running.
	mutex    sync.Mutex
	displayW int
	displayH int

	frame      *image.RGBA
	rasterizer *vector.Rasterizer
	splats     []splat

	stats renderer.FrameStats
}

// Create a new offscreen renderer for the scene. The display size is set to
// the width and height from opts while the backbuffer starts with the
// default unsized dimensions.
func New(cfg *scene.Config, opts renderer.Options) (*Renderer, error) {
	if cfg == nil {
		return nil, renderer.ErrNoScene
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	clearColor := opts.ClearColor
	if clearColor == (scene.Color{}) {
		clearColor = cfg.Background.Color
	}

	r := &Renderer{
		logger:     log.New("offscreen renderer"),
		camera:     scene.NewCamera(cfg.Camera),
		objects:    cfg.Objects(),
		ground:     cfg.Ground,
		clearColor: toRGBA(clearColor),
		displayW:   opts.Width,
		displayH:   opts.Height,
		rasterizer: vector.NewRasterizer(0, 0),
	}
	r.SetBackbufferSize(renderer.DefaultBackbufferW, renderer.DefaultBackbufferH)
	return r, nil
}

// Get the scene camera.
func (r *Renderer) Camera() *scene.Camera {
	return r.camera
}

// Resize the display. The backbuffer is updated on the next reconciliation.
func (r *Renderer) Resize(width, height int) {
	r.mutex.Lock()
	r.displayW, r.displayH = width, height
	r.mutex.Unlock()
}

// DisplaySize implements viewport.Target.
func (r *Renderer) DisplaySize() (int, int) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.displayW, r.displayH
}

// BackbufferSize implements viewport.Target.
func (r *Renderer) BackbufferSize() (int, int) {
	bounds := r.frame.Bounds()
	return bounds.Dx(), bounds.Dy()
}

// SetBackbufferSize implements viewport.Target.
func (r *Renderer) SetBackbufferSize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	r.frame = image.NewRGBA(image.Rect(0, 0, width, height))
}

// UpdateProjection implements viewport.Target.
func (r *Renderer) UpdateProjection(aspect float32) {
	r.camera.SetupProjection(aspect)
	r.logger.Debugf("updated projection; aspect ratio %3.3f", aspect)
}

// RenderFrame implements viewport.Target.
func (r *Renderer) RenderFrame() {
	start := time.Now()
	defer func() {
		r.stats.Frames++
		r.stats.RenderTime += time.Since(start)
	}()

	draw.Draw(r.frame, r.frame.Bounds(), image.NewUniform(r.clearColor), image.Point{}, draw.Src)

	w, h := r.BackbufferSize()
	if w == 0 || h == 0 {
		return
	}

	r.drawGround(w, h)

	r.splats = r.splats[:0]
	for _, obj := range r.objects {
		if s, visible := r.project(obj, w, h); visible {
			r.splats = append(r.splats, s)
		}
	}

	// Draw back to front
	sort.Slice(r.splats, func(i, j int) bool {
		return r.splats[i].depth > r.splats[j].depth
	})
	for _, s := range r.splats {
		r.drawSplat(s, w, h)
	}
}

// Get a copy of the last rendered frame.
func (r *Renderer) Snapshot() *image.RGBA {
	out := image.NewRGBA(r.frame.Bounds())
	copy(out.Pix, r.frame.Pix)
	return out
}

// Write the last rendered frame to a png file.
func (r *Renderer) WritePNG(path string) error {
	w, h := r.BackbufferSize()
	if w == 0 || h == 0 {
		return fmt.Errorf("%w: cannot encode a %dx%d frame", renderer.ErrInvalidFrameSize, w, h)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	start := time.Now()
	err = png.Encode(f, r.frame)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("offscreen: could not write frame to %s: %w", path, err)
	}

	r.logger.Noticef("wrote frame to %s in %d ms", path, time.Since(start).Nanoseconds()/1e6)
	return nil
}

// Stats implements renderer.Backend.
func (r *Renderer) Stats() renderer.FrameStats {
	return r.stats
}

// Close implements renderer.Backend.
func (r *Renderer) Close() {
	r.splats = nil
}

// Project an object to screen space.
func (r *Renderer) project(obj scene.Object, w, h int) (splat, bool) {
	ndc, inFront := r.camera.Project(obj.Position)
	if !inFront || !isFinite(ndc) || ndc[2] < -1 || ndc[2] > 1 {
		return splat{}, false
	}

	viewPos := r.camera.ViewMat.Mul4x1(obj.Position.Vec4(1))
	depth := -viewPos[2]
	if depth <= 0 {
		return splat{}, false
	}

	// Scale world radius by the projection focal length
	radius := obj.Radius * r.camera.ProjMat.At(1, 1) * float32(h) * 0.5 / depth
	if radius < 0.5 || math.IsNaN(float64(radius)) || math.IsInf(float64(radius), 0) {
		return splat{}, false
	}

	return splat{
		x:      (ndc[0] + 1) * 0.5 * float32(w),
		y:      (1 - ndc[1]) * 0.5 * float32(h),
		radius: radius,
		depth:  depth,
		color:  obj.Color,
	}, true
}

// Draw a shaded disc with a highlight towards the top-left.
func (r *Renderer) drawSplat(s splat, w, h int) {
	base := s.color
	shadow := scene.Color{base[0] * 0.55, base[1] * 0.55, base[2] * 0.55}
	highlight := scene.Color{
		base[0] + (1-base[0])*0.35,
		base[1] + (1-base[1])*0.35,
		base[2] + (1-base[2])*0.35,
	}

	r.fillCircle(s.x, s.y, s.radius, shadow, w, h)
	r.fillCircle(s.x-s.radius*0.08, s.y-s.radius*0.08, s.radius*0.88, base, w, h)
	r.fillCircle(s.x-s.radius*0.35, s.y-s.radius*0.35, s.radius*0.3, highlight, w, h)
}

func (r *Renderer) fillCircle(cx, cy, radius float32, c scene.Color, w, h int) {
	k := radius * bezierCircleK

	r.rasterizer.Reset(w, h)
	r.rasterizer.MoveTo(cx+radius, cy)
	r.rasterizer.CubeTo(cx+radius, cy+k, cx+k, cy+radius, cx, cy+radius)
	r.rasterizer.CubeTo(cx-k, cy+radius, cx-radius, cy+k, cx-radius, cy)
	r.rasterizer.CubeTo(cx-radius, cy-k, cx-k, cy-radius, cx, cy-radius)
	r.rasterizer.CubeTo(cx+k, cy-radius, cx+radius, cy-k, cx+radius, cy)
	r.rasterizer.ClosePath()
	r.rasterizer.Draw(r.frame, r.frame.Bounds(), image.NewUniform(toRGBA(c)), image.Point{})
}

// Draw the ground plane as a flat quad if all its corners are visible.
func (r *Renderer) drawGround(w, h int) {
	if r.ground == nil {
		return
	}

	half := r.ground.Size * 0.5
	rot := r.ground.Rotation.Quat()
	corners := [4]types.Vec3{{-half, -half, 0}, {half, -half, 0}, {half, half, 0}, {-half, half, 0}}

	var screen [4][2]float32
	for index, corner := range corners {
		ndc, inFront := r.camera.Project(rot.Rotate(corner).Add(r.ground.Position))
		if !inFront || !isFinite(ndc) {
			return
		}
		screen[index] = [2]float32{(ndc[0] + 1) * 0.5 * float32(w), (1 - ndc[1]) * 0.5 * float32(h)}
	}

	c := r.ground.Color
	r.rasterizer.Reset(w, h)
	r.rasterizer.MoveTo(screen[0][0], screen[0][1])
	for index := 1; index < 4; index++ {
		r.rasterizer.LineTo(screen[index][0], screen[index][1])
	}
	r.rasterizer.ClosePath()
	r.rasterizer.Draw(r.frame, r.frame.Bounds(), image.NewUniform(toRGBA(scene.Color{c[0] * 0.4, c[1] * 0.4, c[2] * 0.4})), image.Point{})
}

func isFinite(v types.Vec3) bool {
	for _, comp := range v {
		if math.IsNaN(float64(comp)) || math.IsInf(float64(comp), 0) {
			return false
		}
	}
	return true
}

func toRGBA(c scene.Color) color.RGBA {
	hex := c.Hex()
	return color.RGBA{R: uint8(hex >> 16), G: uint8(hex >> 8), B: uint8(hex), A: 0xff}
}
