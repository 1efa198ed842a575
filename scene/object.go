package scene

import "github.com/achilleasa/vista/types"

type ObjectKind uint8

const (
	PrimitiveObject ObjectKind = iota
	ModelObject
)

// An Object is a named scene item reduced to what the preview renderer needs.
type Object struct {
	Name      string
	Kind      ObjectKind
	Shape     Shape
	Color     Color
	Position  types.Vec3
	Radius    float32
	Draggable bool
}

// Enumerate the primitives and models defined by the scene.
func (cfg *Config) Objects() []Object {
	objects := make([]Object, 0, len(cfg.Primitives)+len(cfg.Models))
	for index := range cfg.Primitives {
		prim := &cfg.Primitives[index]
		objects = append(objects, Object{
			Name:      prim.Name,
			Kind:      PrimitiveObject,
			Shape:     prim.Shape(),
			Color:     prim.Color,
			Position:  prim.Position,
			Radius:    prim.BoundingRadius(),
			Draggable: prim.Draggable,
		})
	}
	for _, model := range cfg.Models {
		objects = append(objects, Object{
			Name:     model.Name,
			Kind:     ModelObject,
			Color:    Color{0.7, 0.7, 0.7},
			Position: model.Position,
			Radius:   model.Radius * model.Scale,
		})
	}
	return objects
}
