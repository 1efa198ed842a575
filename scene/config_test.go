package scene

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/achilleasa/vista/asset"
)

func TestDefaultScene(t *testing.T) {
	cfg := Default()

	if cfg.Camera.FOV != 45 || cfg.Camera.Aspect != 2 || cfg.Camera.Near != 0.1 || cfg.Camera.Far != 10000 {
		t.Fatalf("unexpected camera settings: %+v", cfg.Camera)
	}

	if len(cfg.Primitives) != 5 {
		t.Fatalf("expected 5 primitives; got %d", len(cfg.Primitives))
	}

	expShapes := []Shape{ShapeBox, ShapeTorus, ShapeCylinder, ShapeTetrahedron, ShapeSphere}
	for specIndex, expShape := range expShapes {
		prim := cfg.Primitives[specIndex]
		if prim.Shape() != expShape {
			t.Fatalf("[spec %d] expected shape %q; got %q", specIndex, expShape, prim.Shape())
		}
		if !prim.Draggable {
			t.Fatalf("[spec %d] expected primitive to be draggable", specIndex)
		}
	}

	if cfg.Primitives[0].Color.Hex() != 0x88aacc {
		t.Fatalf("expected box color to be #88aacc; got %s", cfg.Primitives[0].Color)
	}
	if cfg.Drag.Highlight.Hex() != 0xaaaaaa {
		t.Fatalf("expected drag highlight to be #aaaaaa; got %s", cfg.Drag.Highlight)
	}

	paths := cfg.Background.Skybox.Paths()
	if paths[0] != "skybox/BrightMorning01_RT.png" || paths[5] != "skybox/BrightMorning01_BK.png" {
		t.Fatalf("unexpected skybox paths %v", paths)
	}

	if len(cfg.Models) != 1 || cfg.Models[0].Scale != 1 {
		t.Fatalf("expected a single model with default scale; got %+v", cfg.Models)
	}
}

func TestSceneRoundTripThroughYaml(t *testing.T) {
	data, err := Default().Marshal()
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("could not parse marshaled scene: %v\n%s", err, string(data))
	}
	if len(cfg.Primitives) != 5 || cfg.Primitives[4].Color.Hex() != 0xccaa88 {
		t.Fatalf("scene did not survive round-trip:\n%s", string(data))
	}
}

func TestLoadScene(t *testing.T) {
	doc := `
camera: {fov: 60, near: 1, far: 100, position: [0, 0, 10], target: [0, 0, 0]}
primitives:
  - name: ball
    color: 16711680
    sphere: {radius: 2, width_segments: 8, height_segments: 8}
`
	cfg, err := Load(asset.NewResourceFromStream("scene.yaml", strings.NewReader(doc)))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Camera.Aspect != 1 {
		t.Fatalf("expected default aspect to be 1; got %v", cfg.Camera.Aspect)
	}
	if cfg.Primitives[0].Color.Hex() != 0xff0000 {
		t.Fatalf("expected integer color to be parsed; got %s", cfg.Primitives[0].Color)
	}

	_, err = Load(asset.NewResourceFromStream("scene.yaml", strings.NewReader("camera: {fov: 60, bogus: 1}")))
	if err == nil || !strings.Contains(err.Error(), `could not load "scene.yaml"`) {
		t.Fatalf("expected unknown fields to be rejected; got %v", err)
	}
}

func TestSceneValidation(t *testing.T) {
	camera := "camera: {fov: 45, near: 1, far: 100, position: [0, 0, 10], target: [0, 0, 0]}\n"

	specs := []struct {
		doc    string
		expErr string
	}{
		{
			"camera: {fov: 0, near: 1, far: 100, position: [0, 0, 10]}",
			"fov must be in the (0, 180) range",
		},
		{
			"camera: {fov: 45, near: 10, far: 1, position: [0, 0, 10]}",
			"expected 0 < near < far",
		},
		{
			"camera: {fov: 45, near: 1, far: 10}",
			"position and target must not coincide",
		},
		{
			camera + "primitives: [{name: a}]",
			ErrMissingShape.Error(),
		},
		{
			camera + "primitives: [{name: a, box: {width: 1, height: 1, depth: 1}, sphere: {radius: 1}}]",
			ErrMultipleShapes.Error(),
		},
		{
			camera + "primitives: [{name: a, box: {width: 1, height: 0, depth: 1}}]",
			"box dimensions must be positive",
		},
		{
			camera + "primitives: [{name: a, sphere: {radius: 1, width_segments: 2, height_segments: 8}}]",
			"sphere requires at least 3 segments",
		},
		{
			camera + "primitives: [{name: a, tetrahedron: {radius: 1}}, {name: a, tetrahedron: {radius: 1}}]",
			`duplicate object name "a"`,
		},
		{
			camera + "models: [{name: m}]",
			"obj path is required",
		},
		{
			camera + "models: [{name: m, obj: m.obj, rotation: {axis: [0, 0, 0], angle: 90}}]",
			"rotation axis must not be zero",
		},
		{
			camera + "background: {skybox: {prefix: sky_, extension: png, faces: [RT, LF, UP, DN, FR, '']}}",
			"skybox face 5 is not defined",
		},
		{
			camera + "ground: {size: 10, mag_filter: cubic}",
			`unknown mag filter "cubic"`,
		},
		{
			camera + "lights: [{kind: spot}]",
			`unknown kind "spot"`,
		},
		{
			camera + "drag: {highlight: '#12345'}",
			`invalid color "#12345"`,
		},
	}

	for specIndex, spec := range specs {
		_, err := Parse([]byte(spec.doc))
		if err == nil || !strings.Contains(err.Error(), spec.expErr) {
			t.Fatalf("[spec %d] expected error containing %q; got %v", specIndex, spec.expErr, err)
		}
	}

	_, err := Parse([]byte("camera: {fov: 45, near: 1, far: 10}"))
	if !errors.Is(err, ErrInvalidCamera) {
		t.Fatalf("expected error to wrap ErrInvalidCamera; got %v", err)
	}
}

func TestParseColor(t *testing.T) {
	specs := []struct {
		in     string
		exp    uint32
		expErr bool
	}{
		{"#8AC", 0x88aacc, false},
		{"#ccaa88", 0xccaa88, false},
		{"0xAAAAAA", 0xaaaaaa, false},
		{"255", 0x0000ff, false},
		{"#ggg", 0, true},
		{"0x1234567", 0, true},
		{"16777216", 0, true},
		{"red", 0, true},
	}

	for specIndex, spec := range specs {
		c, err := ParseColor(spec.in)
		if spec.expErr {
			if err == nil {
				t.Fatalf("[spec %d] expected an error", specIndex)
			}
			continue
		}
		if err != nil {
			t.Fatalf("[spec %d] unexpected error: %v", specIndex, err)
		}
		if c.Hex() != spec.exp {
			t.Fatalf("[spec %d] expected color 0x%06x; got 0x%06x", specIndex, spec.exp, c.Hex())
		}
	}
}

func TestBoundingRadius(t *testing.T) {
	specs := []struct {
		prim PrimitiveConfig
		exp  float32
	}{
		{PrimitiveConfig{Box: &BoxShape{Width: 2, Height: 2, Depth: 2}}, float32(math.Sqrt(3))},
		{PrimitiveConfig{Torus: &TorusShape{Radius: 3, Tube: 1.5}}, 4.5},
		{PrimitiveConfig{Cylinder: &CylinderShape{RadiusTop: 3, RadiusBottom: 1, Height: 8}}, 5},
		{PrimitiveConfig{Tetrahedron: &TetrahedronShape{Radius: 7}}, 7},
		{PrimitiveConfig{Sphere: &SphereShape{Radius: 3}}, 3},
		{PrimitiveConfig{Plane: &PlaneShape{Width: 6, Height: 8}}, 5},
		{PrimitiveConfig{}, 0},
	}

	for specIndex, spec := range specs {
		if got := spec.prim.BoundingRadius(); math.Abs(float64(got-spec.exp)) > 1e-5 {
			t.Fatalf("[spec %d] expected bounding radius %v; got %v", specIndex, spec.exp, got)
		}
	}
}

func TestObjects(t *testing.T) {
	objects := Default().Objects()
	if len(objects) != 6 {
		t.Fatalf("expected 6 objects; got %d", len(objects))
	}

	last := objects[len(objects)-1]
	if last.Kind != ModelObject || last.Name != "tinker" || last.Radius != 10 {
		t.Fatalf("expected last object to be the tinker model; got %+v", last)
	}
}
