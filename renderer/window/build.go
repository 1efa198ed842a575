package window

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/achilleasa/vista/asset"
	"github.com/achilleasa/vista/asset/wavefront"
	"github.com/achilleasa/vista/log"
	"github.com/achilleasa/vista/scene"
	"github.com/achilleasa/vista/types"
	"github.com/g3n/engine/camera"
	"github.com/g3n/engine/core"
	"github.com/g3n/engine/geometry"
	"github.com/g3n/engine/gls"
	"github.com/g3n/engine/graphic"
	"github.com/g3n/engine/light"
	"github.com/g3n/engine/loader/gltf"
	"github.com/g3n/engine/loader/obj"
	"github.com/g3n/engine/material"
	"github.com/g3n/engine/math32"
	"github.com/g3n/engine/texture"
)

type transformable interface {
	SetPosition(x, y, z float32)
	SetQuaternion(x, y, z, w float32)
	SetScale(x, y, z float32)
}

// The builder populates a g3n scene graph from a scene config.
type builder struct {
	logger   log.Logger
	stager   *asset.Stager
	sceneRes *asset.Resource

	root       *core.Node
	cam        *camera.Camera
	orbit      *camera.OrbitControl
	draggables []*Draggable
}

func (b *builder) build(cfg *scene.Config) error {
	b.buildCamera(cfg.Camera)
	b.buildLights(cfg.Lights)

	if cfg.Background.Skybox != nil {
		if err := b.buildSkybox(cfg.Background.Skybox); err != nil {
			return err
		}
	}

	if cfg.Ground != nil {
		if err := b.buildGround(cfg.Ground); err != nil {
			return err
		}
	}

	for index := range cfg.Primitives {
		if err := b.buildPrimitive(&cfg.Primitives[index]); err != nil {
			return err
		}
	}

	for _, model := range cfg.Models {
		if err := b.buildModel(model); err != nil {
			return err
		}
	}

	return nil
}

func (b *builder) buildCamera(cfg scene.CameraConfig) {
	b.cam = camera.New(cfg.Aspect)
	b.cam.SetFov(cfg.FOV)
	b.cam.SetNear(cfg.Near)
	b.cam.SetFar(cfg.Far)
	b.cam.SetPosition(cfg.Position[0], cfg.Position[1], cfg.Position[2])

	target := toVector3(cfg.Target)
	b.cam.LookAt(&target, &math32.Vector3{X: 0, Y: 1, Z: 0})
	b.root.Add(b.cam)

	b.orbit = camera.NewOrbitControl(b.cam)
	b.orbit.SetTarget(target)
}

func (b *builder) buildLights(lights []scene.LightConfig) {
	for _, cfg := range lights {
		color := toColor(cfg.Color)

		var node core.INode
		switch cfg.Kind {
		case scene.AmbientLight:
			node = light.NewAmbient(&color, cfg.Intensity)
		case scene.PointLight:
			l := light.NewPoint(&color, cfg.Intensity)
			l.SetPosition(cfg.Position[0], cfg.Position[1], cfg.Position[2])
			node = l
		default:
			l := light.NewDirectional(&color, cfg.Intensity)
			l.SetPosition(cfg.Position[0], cfg.Position[1], cfg.Position[2])
			node = l
		}
		b.root.Add(node)
	}
}

func (b *builder) buildSkybox(cfg *scene.SkyboxConfig) error {
	var localPaths [6]string
	for index, path := range cfg.Paths() {
		localPath, err := b.stager.Stage(path, b.sceneRes)
		if err != nil {
			return fmt.Errorf("window: could not stage skybox face: %w", err)
		}
		localPaths[index] = localPath
	}

	skybox, err := graphic.NewSkybox(graphic.SkyboxData{
		DirAndPrefix: skyboxDirAndPrefix(localPaths[0], cfg),
		Extension:    cfg.Extension,
		Suffixes:     cfg.Faces,
	})
	if err != nil {
		return fmt.Errorf("window: could not create skybox: %w", err)
	}
	b.root.Add(skybox)
	return nil
}

func (b *builder) buildGround(cfg *scene.GroundConfig) error {
	color := toColor(cfg.Color)
	mat := material.NewStandard(&color)
	if cfg.DoubleSided {
		mat.SetSide(material.SideDouble)
	}

	if cfg.Texture != "" {
		texPath, err := b.stager.Stage(cfg.Texture, b.sceneRes)
		if err != nil {
			return fmt.Errorf("window: could not stage ground texture: %w", err)
		}
		tex, err := texture.NewTexture2DFromImage(texPath)
		if err != nil {
			return fmt.Errorf("window: could not load ground texture: %w", err)
		}

		wrap, magFilter := groundTextureParams(cfg)
		tex.SetWrapS(wrap)
		tex.SetWrapT(wrap)
		tex.SetMagFilter(magFilter)
		tex.SetRepeat(cfg.Repeat, cfg.Repeat)
		mat.AddTexture(tex)
	}

	mesh := graphic.NewMesh(geometry.NewPlane(cfg.Size, cfg.Size), mat)
	place(mesh, cfg.Position, cfg.Rotation, 1)
	b.root.Add(mesh)
	return nil
}

func (b *builder) buildPrimitive(cfg *scene.PrimitiveConfig) error {
	var geom *geometry.Geometry
	switch cfg.Shape() {
	case scene.ShapeBox:
		geom = geometry.NewBox(cfg.Box.Width, cfg.Box.Height, cfg.Box.Depth)
	case scene.ShapeTorus:
		geom = geometry.NewTorus(float64(cfg.Torus.Radius), float64(cfg.Torus.Tube), cfg.Torus.RadialSegments, cfg.Torus.TubularSegments, 2*math.Pi)
	case scene.ShapeCylinder:
		geom = geometry.NewTruncatedCone(float64(cfg.Cylinder.RadiusTop), float64(cfg.Cylinder.RadiusBottom), float64(cfg.Cylinder.Height), cfg.Cylinder.RadialSegments, 1, true, true)
	case scene.ShapeTetrahedron:
		geom = newTetrahedron(cfg.Tetrahedron.Radius)
	case scene.ShapeSphere:
		geom = geometry.NewSphere(float64(cfg.Sphere.Radius), cfg.Sphere.WidthSegments, cfg.Sphere.HeightSegments)
	case scene.ShapePlane:
		geom = geometry.NewPlane(cfg.Plane.Width, cfg.Plane.Height)
	default:
		return fmt.Errorf("window: primitive %q has no shape", cfg.Name)
	}

	color := toColor(cfg.Color)
	mat := material.NewStandard(&color)
	mesh := graphic.NewMesh(geom, mat)
	mesh.SetName(cfg.Name)
	place(mesh, cfg.Position, cfg.Rotation, 1)
	b.root.Add(mesh)

	if cfg.Draggable {
		b.draggables = append(b.draggables, &Draggable{Name: cfg.Name, Mesh: mesh, Material: mat})
	}
	return nil
}

func (b *builder) buildModel(cfg scene.ModelConfig) error {
	var (
		node core.INode
		err  error
	)

	switch strings.ToLower(filepath.Ext(cfg.Obj)) {
	case ".gltf", ".glb":
		node, err = b.loadGLTF(cfg.Obj)
	default:
		node, err = b.loadOBJ(cfg.Obj, cfg.Mtl)
	}
	if err != nil {
		return fmt.Errorf("window: could not load model %q: %w", cfg.Name, err)
	}

	if t, ok := node.(transformable); ok {
		place(t, cfg.Position, cfg.Rotation, cfg.Scale)
	}
	b.root.Add(node)
	return nil
}

func (b *builder) loadOBJ(objRef, mtlRef string) (core.INode, error) {
	model, err := wavefront.StageModel(b.stager, objRef, mtlRef, b.sceneRes)
	if err != nil {
		return nil, err
	}
	b.logger.Infof("model %s: %d vertices, %d triangles", objRef, model.Summary.Vertices, model.Summary.Triangles)

	dec, err := obj.Decode(model.ObjPath, model.MtlPath)
	if err != nil {
		return nil, err
	}
	return dec.NewGroup()
}

func (b *builder) loadGLTF(ref string) (core.INode, error) {
	localPath, err := b.stager.Stage(ref, b.sceneRes)
	if err != nil {
		return nil, err
	}

	var g *gltf.GLTF
	if strings.ToLower(filepath.Ext(localPath)) == ".glb" {
		g, err = gltf.ParseBin(localPath)
	} else {
		g, err = gltf.ParseJSON(localPath)
	}
	if err != nil {
		return nil, err
	}
	return g.LoadScene(0)
}

// All skybox faces are staged to the same dir and share the prefix that
// precedes the face suffix of the first face.
func skyboxDirAndPrefix(firstFacePath string, cfg *scene.SkyboxConfig) string {
	return strings.TrimSuffix(firstFacePath, cfg.Faces[0]+"."+cfg.Extension)
}

// Map the ground texture settings to gls wrap and magnification modes.
func groundTextureParams(cfg *scene.GroundConfig) (wrap, magFilter uint32) {
	switch cfg.Wrap {
	case "clamp":
		wrap = gls.CLAMP_TO_EDGE
	case "mirror":
		wrap = gls.MIRRORED_REPEAT
	default:
		wrap = gls.REPEAT
	}

	if cfg.MagFilter == "nearest" {
		return wrap, gls.NEAREST
	}
	return wrap, gls.LINEAR
}

// Build a regular tetrahedron with flat shaded faces inscribed in a sphere
// with the given radius.
func newTetrahedron(radius float32) *geometry.Geometry {
	s := radius / math32.Sqrt(3)
	corners := [4]types.Vec3{{s, s, s}, {-s, -s, s}, {-s, s, -s}, {s, -s, -s}}
	faces := [4][3]int{{2, 1, 0}, {0, 3, 2}, {1, 3, 0}, {2, 3, 1}}

	positions := math32.NewArrayF32(0, 36)
	normals := math32.NewArrayF32(0, 36)
	indices := math32.NewArrayU32(0, 12)
	for faceIndex, face := range faces {
		v0, v1, v2 := corners[face[0]], corners[face[1]], corners[face[2]]
		n := v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()
		for vIndex, v := range [3]types.Vec3{v0, v1, v2} {
			positions.Append(v[0], v[1], v[2])
			normals.Append(n[0], n[1], n[2])
			indices.Append(uint32(faceIndex*3 + vIndex))
		}
	}

	geom := geometry.NewGeometry()
	geom.AddVBO(gls.NewVBO(positions).AddAttrib(gls.VertexPosition))
	geom.AddVBO(gls.NewVBO(normals).AddAttrib(gls.VertexNormal))
	geom.SetIndices(indices)
	return geom
}

func place(node transformable, pos types.Vec3, rot *scene.Rotation, scale float32) {
	node.SetPosition(pos[0], pos[1], pos[2])
	q := rot.Quat()
	node.SetQuaternion(q.V[0], q.V[1], q.V[2], q.W)
	node.SetScale(scale, scale, scale)
}

func toColor(c scene.Color) math32.Color {
	return math32.Color{R: c[0], G: c[1], B: c[2]}
}

func toVector3(v types.Vec3) math32.Vector3 {
	return math32.Vector3{X: v[0], Y: v[1], Z: v[2]}
}
