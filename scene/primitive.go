package scene

import (
	"fmt"
	"math"

	"github.com/achilleasa/vista/types"
)

type Shape string

const (
	ShapeBox         Shape = "box"
	ShapeTorus       Shape = "torus"
	ShapeCylinder    Shape = "cylinder"
	ShapeTetrahedron Shape = "tetrahedron"
	ShapeSphere      Shape = "sphere"
	ShapePlane       Shape = "plane"
)

type BoxShape struct {
	Width  float32 `yaml:"width"`
	Height float32 `yaml:"height"`
	Depth  float32 `yaml:"depth"`
}

type TorusShape struct {
	Radius          float32 `yaml:"radius"`
	Tube            float32 `yaml:"tube"`
	RadialSegments  int     `yaml:"radial_segments"`
	TubularSegments int     `yaml:"tubular_segments"`
}

type CylinderShape struct {
	RadiusTop      float32 `yaml:"radius_top"`
	RadiusBottom   float32 `yaml:"radius_bottom"`
	Height         float32 `yaml:"height"`
	RadialSegments int     `yaml:"radial_segments"`
}

type TetrahedronShape struct {
	Radius float32 `yaml:"radius"`
}

type SphereShape struct {
	Radius         float32 `yaml:"radius"`
	WidthSegments  int     `yaml:"width_segments"`
	HeightSegments int     `yaml:"height_segments"`
}

type PlaneShape struct {
	Width  float32 `yaml:"width"`
	Height float32 `yaml:"height"`
}

// A primitive mesh. Exactly one of the shape blocks must be defined.
type PrimitiveConfig struct {
	Name      string     `yaml:"name"`
	Color     Color      `yaml:"color"`
	Position  types.Vec3 `yaml:"position,flow"`
	Rotation  *Rotation  `yaml:"rotation,omitempty"`
	Draggable bool       `yaml:"draggable"`

	Box         *BoxShape         `yaml:"box,omitempty"`
	Torus       *TorusShape       `yaml:"torus,omitempty"`
	Cylinder    *CylinderShape    `yaml:"cylinder,omitempty"`
	Tetrahedron *TetrahedronShape `yaml:"tetrahedron,omitempty"`
	Sphere      *SphereShape      `yaml:"sphere,omitempty"`
	Plane       *PlaneShape       `yaml:"plane,omitempty"`
}

// Get the shape defined by this primitive or an empty string if the
// primitive defines no shape.
func (p *PrimitiveConfig) Shape() Shape {
	shapes := p.definedShapes()
	if len(shapes) != 1 {
		return ""
	}
	return shapes[0]
}

func (p *PrimitiveConfig) definedShapes() []Shape {
	shapes := make([]Shape, 0, 1)
	if p.Box != nil {
		shapes = append(shapes, ShapeBox)
	}
	if p.Torus != nil {
		shapes = append(shapes, ShapeTorus)
	}
	if p.Cylinder != nil {
		shapes = append(shapes, ShapeCylinder)
	}
	if p.Tetrahedron != nil {
		shapes = append(shapes, ShapeTetrahedron)
	}
	if p.Sphere != nil {
		shapes = append(shapes, ShapeSphere)
	}
	if p.Plane != nil {
		shapes = append(shapes, ShapePlane)
	}
	return shapes
}

// Get the radius of a sphere centered at the primitive position that
// encloses the primitive.
func (p *PrimitiveConfig) BoundingRadius() float32 {
	switch p.Shape() {
	case ShapeBox:
		return types.XYZ(p.Box.Width, p.Box.Height, p.Box.Depth).Len() * 0.5
	case ShapeTorus:
		return p.Torus.Radius + p.Torus.Tube
	case ShapeCylinder:
		r := math.Max(float64(p.Cylinder.RadiusTop), float64(p.Cylinder.RadiusBottom))
		return float32(math.Hypot(r, float64(p.Cylinder.Height)*0.5))
	case ShapeTetrahedron:
		return p.Tetrahedron.Radius
	case ShapeSphere:
		return p.Sphere.Radius
	case ShapePlane:
		return types.XYZ(p.Plane.Width, p.Plane.Height, 0).Len() * 0.5
	}
	return 0
}

func (p *PrimitiveConfig) validate() error {
	shapes := p.definedShapes()
	switch len(shapes) {
	case 0:
		return ErrMissingShape
	case 1:
	default:
		return fmt.Errorf("%w: %v", ErrMultipleShapes, shapes)
	}

	var dims []float32
	var segments []int
	switch shapes[0] {
	case ShapeBox:
		dims = []float32{p.Box.Width, p.Box.Height, p.Box.Depth}
	case ShapeTorus:
		dims = []float32{p.Torus.Radius, p.Torus.Tube}
		segments = []int{p.Torus.RadialSegments, p.Torus.TubularSegments}
	case ShapeCylinder:
		// One of the cylinder radii may be zero (cone)
		dims = []float32{p.Cylinder.RadiusTop + p.Cylinder.RadiusBottom, p.Cylinder.Height}
		if p.Cylinder.RadiusTop < 0 || p.Cylinder.RadiusBottom < 0 {
			return fmt.Errorf("cylinder radii must not be negative")
		}
		segments = []int{p.Cylinder.RadialSegments}
	case ShapeTetrahedron:
		dims = []float32{p.Tetrahedron.Radius}
	case ShapeSphere:
		dims = []float32{p.Sphere.Radius}
		segments = []int{p.Sphere.WidthSegments, p.Sphere.HeightSegments}
	case ShapePlane:
		dims = []float32{p.Plane.Width, p.Plane.Height}
	}

	for _, dim := range dims {
		if dim <= 0 {
			return fmt.Errorf("%s dimensions must be positive", shapes[0])
		}
	}
	for _, seg := range segments {
		if seg < 3 {
			return fmt.Errorf("%s requires at least 3 segments", shapes[0])
		}
	}

	return p.Rotation.validate()
}
