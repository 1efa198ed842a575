package window

import (
	"github.com/achilleasa/vista/log"
	"github.com/achilleasa/vista/scene"
	"github.com/g3n/engine/camera"
	"github.com/g3n/engine/core"
	"github.com/g3n/engine/experimental/collision"
	"github.com/g3n/engine/graphic"
	"github.com/g3n/engine/gui"
	"github.com/g3n/engine/material"
	"github.com/g3n/engine/math32"
	g3nwindow "github.com/g3n/engine/window"
)

type DragEventType string

const (
	DragStart DragEventType = "dragstart"
	DragEnd   DragEventType = "dragend"
)

// A Draggable is a mesh that can be moved with the mouse.
type Draggable struct {
	Name     string
	Mesh     *graphic.Mesh
	Material *material.Standard
}

// A DragObserver is notified when a drag operation starts or ends.
type DragObserver func(evType DragEventType, target *Draggable)

// The subset of camera.OrbitControl used while dragging.
type orbiter interface {
	SetEnabled(camera.OrbitEnabled)
	Target() math32.Vector3
}

// DragControl moves draggable meshes on the plane facing the camera that
// passes through the point where the mesh was picked. Orbiting is paused
// while a mesh is being dragged.
type DragControl struct {
	logger log.Logger

	cam    *camera.Camera
	orbit  orbiter
	sizeFn func() (int, int)
	rc     *collision.Raycaster

	// Drops the cursor focus held by the orbit control.
	releaseCursor func()

	nodes     []core.INode
	byNode    map[core.INode]*Draggable
	observers []DragObserver

	active *Draggable
	plane  math32.Plane
	offset math32.Vector3
}

// Create a drag control. The sizeFn returns the size of the surface that
// mouse coordinates refer to.
func NewDragControl(cam *camera.Camera, orbit *camera.OrbitControl, sizeFn func() (int, int)) *DragControl {
	dc := &DragControl{
		logger: log.New("drag control"),
		cam:    cam,
		sizeFn: sizeFn,
		rc:     collision.NewRaycaster(&math32.Vector3{}, &math32.Vector3{}),
		byNode: make(map[core.INode]*Draggable),
		releaseCursor: func() {
			gui.Manager().SetCursorFocus(nil)
		},
	}
	if orbit != nil {
		dc.orbit = orbit
	}
	return dc
}

// Register a draggable mesh.
func (dc *DragControl) Add(d *Draggable) {
	dc.nodes = append(dc.nodes, d.Mesh)
	dc.byNode[d.Mesh] = d
}

// Register an observer for drag events.
func (dc *DragControl) Subscribe(obs DragObserver) {
	dc.observers = append(dc.observers, obs)
}

// Get the draggable currently being dragged or nil.
func (dc *DragControl) Active() *Draggable {
	return dc.active
}

func (dc *DragControl) emit(evType DragEventType, target *Draggable) {
	for _, obs := range dc.observers {
		obs(evType, target)
	}
}

// Begin dragging target. Returns false if a drag is already in progress.
func (dc *DragControl) begin(target *Draggable) bool {
	if dc.active != nil || target == nil {
		return false
	}
	dc.active = target
	if dc.orbit != nil {
		dc.orbit.SetEnabled(camera.OrbitNone)
	}
	dc.emit(DragStart, target)
	return true
}

// End the current drag. Returns false if no drag is in progress.
func (dc *DragControl) end() bool {
	if dc.active == nil {
		return false
	}
	target := dc.active
	dc.active = nil
	if dc.orbit != nil {
		dc.orbit.SetEnabled(camera.OrbitAll)
	}

	// The disabled orbit control ignored the mouse up that ended the drag
	// and still holds the cursor focus it took on mouse down.
	if dc.releaseCursor != nil {
		dc.releaseCursor()
	}
	dc.emit(DragEnd, target)
	return true
}

// Point the raycaster through the given surface coordinates.
func (dc *DragControl) setRay(x, y float32) bool {
	w, h := dc.sizeFn()
	sx, sy, ok := toNDC(x, y, w, h)
	if !ok {
		return false
	}
	if err := dc.rc.SetFromCamera(dc.cam, sx, sy); err != nil {
		dc.logger.Warningf("could not setup raycaster: %s", err.Error())
		return false
	}
	return true
}

func (dc *DragControl) onMouseDown(_ string, ev interface{}) {
	mev, ok := ev.(*g3nwindow.MouseEvent)
	if !ok || mev.Button != g3nwindow.MouseButtonLeft || !dc.setRay(mev.Xpos, mev.Ypos) {
		return
	}

	hits := dc.rc.IntersectObjects(dc.nodes, false)
	if len(hits) == 0 {
		return
	}
	target := dc.byNode[hits[0].Object]
	if target == nil {
		return
	}

	// Drag along the plane facing the camera through the picked point
	camPos := dc.cam.Position()
	orbitTarget := dc.orbit.Target()
	normal := orbitTarget.Sub(&camPos).Normalize()
	dc.plane.SetFromNormalAndCoplanarPoint(normal, &hits[0].Point)

	meshPos := target.Mesh.Position()
	dc.offset = *meshPos.Sub(&hits[0].Point)

	dc.begin(target)
}

func (dc *DragControl) onMouseUp(_ string, ev interface{}) {
	if mev, ok := ev.(*g3nwindow.MouseEvent); ok && mev.Button == g3nwindow.MouseButtonLeft {
		dc.end()
	}
}

func (dc *DragControl) onCursor(_ string, ev interface{}) {
	cev, ok := ev.(*g3nwindow.CursorEvent)
	if !ok || dc.active == nil || !dc.setRay(cev.Xpos, cev.Ypos) {
		return
	}

	var point math32.Vector3
	if dc.rc.IntersectPlane(&dc.plane, &point) == nil {
		return
	}
	dc.active.Mesh.SetPositionVec(point.Add(&dc.offset))
}

// Create an observer that sets the emissive color of a dragged mesh to
// highlight and resets it to black when the drag ends.
func HighlightObserver(highlight scene.Color) DragObserver {
	return func(evType DragEventType, target *Draggable) {
		if target.Material == nil {
			return
		}

		emissive := math32.Color{}
		if evType == DragStart {
			emissive = toColor(highlight)
		}
		target.Material.SetEmissiveColor(&emissive)
	}
}

// Convert surface coordinates (origin at the top-left corner) to
// normalized device coordinates.
func toNDC(x, y float32, width, height int) (float32, float32, bool) {
	if width <= 0 || height <= 0 {
		return 0, 0, false
	}
	return 2*x/float32(width) - 1, 1 - 2*y/float32(height), true
}
