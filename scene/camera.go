package scene

import (
	"fmt"
	"math"

	"github.com/achilleasa/vista/types"
)

// Orbiting stops this close (in radians) to the up axis.
const minPolarAngle = 0.01

// The camera type controls the scene camera. The camera always looks at a
// target point which also serves as the pivot for orbiting.
type Camera struct {
	Position types.Vec3
	LookAt   types.Vec3
	Up       types.Vec3

	// Vertical field of view in degrees.
	FOV    float32
	Aspect float32
	Near   float32
	Far    float32

	ViewMat types.Mat4
	ProjMat types.Mat4
}

// Create a camera from a scene camera definition.
func NewCamera(cfg CameraConfig) *Camera {
	c := &Camera{
		Position: cfg.Position,
		LookAt:   cfg.Target,
		Up:       types.Vec3{0, 1, 0},
		FOV:      cfg.FOV,
		Near:     cfg.Near,
		Far:      cfg.Far,
		ViewMat:  types.Ident4(),
		ProjMat:  types.Ident4(),
	}
	c.SetupProjection(cfg.Aspect)
	return c
}

// Setup camera projection matrix.
func (c *Camera) SetupProjection(aspect float32) {
	c.Aspect = aspect
	c.ProjMat = types.Perspective4(c.FOV, aspect, c.Near, c.Far)
	c.Update()
}

// Update camera view matrix.
func (c *Camera) Update() {
	c.ViewMat = types.LookAtV(c.Position, c.LookAt, c.Up)
}

// Get the combined view-projection matrix.
func (c *Camera) ViewProjMat() types.Mat4 {
	return c.ProjMat.Mul4(c.ViewMat)
}

// Rotate the camera around its target. Yaw rotates around the up axis and
// pitch around the camera's right axis; both angles are in radians. Pitch
// is ignored if it would move the camera over one of the poles.
func (c *Camera) Orbit(yaw, pitch float32) {
	up := c.Up.Normalize()
	offset := c.Position.Sub(c.LookAt)

	offset = types.QuatFromAxisAngle(up, yaw).Rotate(offset)

	rightAxis := offset.Cross(up)
	if rightAxis.Len() > 0 {
		polar := math.Acos(math.Max(-1, math.Min(1, float64(offset.Normalize().Dot(up))))) - float64(pitch)
		if polar > minPolarAngle && polar < math.Pi-minPolarAngle {
			offset = types.QuatFromAxisAngle(rightAxis, pitch).Rotate(offset)
		}
	}

	c.Position = c.LookAt.Add(offset)
	c.Update()
}

// Move the camera towards (scale < 1) or away from (scale > 1) its target.
func (c *Camera) Dolly(scale float32) {
	if scale <= 0 {
		return
	}

	offset := c.Position.Sub(c.LookAt).Mul(scale)
	if offset.Len() < c.Near {
		return
	}
	c.Position = c.LookAt.Add(offset)
	c.Update()
}

// Project a world space point to normalized device coordinates. Returns
// false if the point lies behind the camera.
func (c *Camera) Project(p types.Vec3) (types.Vec3, bool) {
	return c.ViewProjMat().Mul4x1(p.Vec4(1)).PerspectiveDivide()
}

func (c *Camera) String() string {
	return fmt.Sprintf(
		"Camera:\neye    : (%3.3f, %3.3f, %3.3f)\ntarget : (%3.3f, %3.3f, %3.3f)\nfov    : %3.1f, aspect: %3.3f",
		c.Position[0], c.Position[1], c.Position[2],
		c.LookAt[0], c.LookAt[1], c.LookAt[2],
		c.FOV, c.Aspect,
	)
}
