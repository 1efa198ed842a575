package scene

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"math"

	"github.com/achilleasa/vista/asset"
	"github.com/achilleasa/vista/types"
	"gopkg.in/yaml.v3"
)

var (
	ErrMissingShape   = errors.New("scene: primitive does not define a shape")
	ErrMultipleShapes = errors.New("scene: primitive defines more than one shape")
	ErrInvalidCamera  = errors.New("scene: invalid camera")
)

//go:embed default.yaml
var defaultScene []byte

// The name used for resolving assets referenced by the embedded scene.
const DefaultSceneName = "default.yaml"

// Config describes the contents of a scene.
type Config struct {
	Camera     CameraConfig      `yaml:"camera"`
	Lights     []LightConfig     `yaml:"lights"`
	Background BackgroundConfig  `yaml:"background"`
	Ground     *GroundConfig     `yaml:"ground,omitempty"`
	Primitives []PrimitiveConfig `yaml:"primitives"`
	Models     []ModelConfig     `yaml:"models"`
	Drag       DragConfig        `yaml:"drag"`
}

// Perspective camera settings. The aspect ratio is only used until the
// first viewport reconciliation.
type CameraConfig struct {
	FOV      float32    `yaml:"fov"`
	Aspect   float32    `yaml:"aspect"`
	Near     float32    `yaml:"near"`
	Far      float32    `yaml:"far"`
	Position types.Vec3 `yaml:"position,flow"`
	Target   types.Vec3 `yaml:"target,flow"`
}

type LightKind string

const (
	DirectionalLight LightKind = "directional"
	AmbientLight     LightKind = "ambient"
	PointLight       LightKind = "point"
)

type LightConfig struct {
	Kind      LightKind  `yaml:"kind"`
	Color     Color      `yaml:"color"`
	Intensity float32    `yaml:"intensity"`
	Position  types.Vec3 `yaml:"position,flow"`
}

type BackgroundConfig struct {
	Color  Color         `yaml:"color"`
	Skybox *SkyboxConfig `yaml:"skybox,omitempty"`
}

// A cube map skybox. Face images are located at prefix + face + "." + extension.
type SkyboxConfig struct {
	Prefix    string    `yaml:"prefix"`
	Extension string    `yaml:"extension"`
	Faces     [6]string `yaml:"faces,flow"`
}

// Get the relative paths to the six skybox faces.
func (sb *SkyboxConfig) Paths() [6]string {
	var paths [6]string
	for index, face := range sb.Faces {
		paths[index] = sb.Prefix + face + "." + sb.Extension
	}
	return paths
}

type GroundConfig struct {
	Size        float32    `yaml:"size"`
	Color       Color      `yaml:"color"`
	Texture     string     `yaml:"texture,omitempty"`
	Repeat      float32    `yaml:"repeat,omitempty"`
	Wrap        string     `yaml:"wrap,omitempty"`
	MagFilter   string     `yaml:"mag_filter,omitempty"`
	DoubleSided bool       `yaml:"double_sided"`
	Position    types.Vec3 `yaml:"position,flow"`
	Rotation    *Rotation  `yaml:"rotation,omitempty"`
}

// A rotation by an angle (in degrees) around an axis.
type Rotation struct {
	Axis  types.Vec3 `yaml:"axis,flow"`
	Angle float32    `yaml:"angle"`
}

// Get the rotation angle in radians.
func (r *Rotation) Radians() float32 {
	if r == nil {
		return 0
	}
	return r.Angle * math.Pi / 180.0
}

// Convert rotation to a quaternion. A nil rotation yields the identity.
func (r *Rotation) Quat() types.Quat {
	if r == nil {
		return types.QuatIdent()
	}
	return types.QuatFromAxisAngle(r.Axis, r.Radians())
}

type ModelConfig struct {
	Name     string     `yaml:"name"`
	Obj      string     `yaml:"obj"`
	Mtl      string     `yaml:"mtl,omitempty"`
	Position types.Vec3 `yaml:"position,flow"`
	Rotation *Rotation  `yaml:"rotation,omitempty"`
	Scale    float32    `yaml:"scale,omitempty"`

	// Bounding radius used by the preview renderer.
	Radius float32 `yaml:"radius,omitempty"`
}

type DragConfig struct {
	Disabled  bool  `yaml:"disabled,omitempty"`
	Highlight Color `yaml:"highlight"`
}

// Get the embedded default scene.
func Default() *Config {
	cfg, err := Parse(defaultScene)
	if err != nil {
		panic(fmt.Sprintf("scene: embedded default scene is invalid: %s", err))
	}
	return cfg
}

// Get the raw embedded default scene document.
func DefaultDocument() []byte {
	return append([]byte(nil), defaultScene...)
}

// Load a scene document from a resource.
func Load(res *asset.Resource) (*Config, error) {
	cfg, err := decode(yaml.NewDecoder(res))
	if err != nil {
		return nil, fmt.Errorf("scene: could not load %q: %w", res.Path(), err)
	}
	return cfg, nil
}

// Parse a scene document.
func Parse(data []byte) (*Config, error) {
	return decode(yaml.NewDecoder(bytes.NewReader(data)))
}

func decode(dec *yaml.Decoder) (*Config, error) {
	dec.KnownFields(true)

	cfg := &Config{}
	if err := dec.Decode(cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Serialize scene to a yaml document.
func (cfg *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Camera.Aspect == 0 {
		cfg.Camera.Aspect = 1
	}
	for index := range cfg.Lights {
		if cfg.Lights[index].Kind == "" {
			cfg.Lights[index].Kind = DirectionalLight
		}
		if cfg.Lights[index].Intensity == 0 {
			cfg.Lights[index].Intensity = 1
		}
	}
	if cfg.Ground != nil {
		if cfg.Ground.Repeat == 0 {
			cfg.Ground.Repeat = 1
		}
		if cfg.Ground.Wrap == "" {
			cfg.Ground.Wrap = "repeat"
		}
		if cfg.Ground.MagFilter == "" {
			cfg.Ground.MagFilter = "linear"
		}
	}
	for index := range cfg.Models {
		if cfg.Models[index].Scale == 0 {
			cfg.Models[index].Scale = 1
		}
		if cfg.Models[index].Radius == 0 {
			cfg.Models[index].Radius = 5
		}
	}
}

// Validate scene contents.
func (cfg *Config) Validate() error {
	cam := cfg.Camera
	if cam.FOV <= 0 || cam.FOV >= 180 {
		return fmt.Errorf("%w: fov must be in the (0, 180) range; got %v", ErrInvalidCamera, cam.FOV)
	}
	if cam.Near <= 0 || cam.Far <= cam.Near {
		return fmt.Errorf("%w: expected 0 < near < far; got near %v, far %v", ErrInvalidCamera, cam.Near, cam.Far)
	}
	if cam.Position == cam.Target {
		return fmt.Errorf("%w: position and target must not coincide", ErrInvalidCamera)
	}

	for index, light := range cfg.Lights {
		switch light.Kind {
		case DirectionalLight, AmbientLight, PointLight:
		default:
			return fmt.Errorf("scene: light %d: unknown kind %q", index, light.Kind)
		}
	}

	if sb := cfg.Background.Skybox; sb != nil {
		for index, face := range sb.Faces {
			if face == "" {
				return fmt.Errorf("scene: skybox face %d is not defined", index)
			}
		}
	}

	if g := cfg.Ground; g != nil {
		if g.Size <= 0 {
			return fmt.Errorf("scene: ground size must be positive; got %v", g.Size)
		}
		switch g.Wrap {
		case "repeat", "clamp", "mirror":
		default:
			return fmt.Errorf("scene: ground: unknown wrap mode %q", g.Wrap)
		}
		switch g.MagFilter {
		case "linear", "nearest":
		default:
			return fmt.Errorf("scene: ground: unknown mag filter %q", g.MagFilter)
		}
		if err := g.Rotation.validate(); err != nil {
			return fmt.Errorf("scene: ground: %w", err)
		}
	}

	names := make(map[string]bool)
	checkName := func(name string) error {
		if name == "" {
			return errors.New("scene: objects must have a name")
		}
		if names[name] {
			return fmt.Errorf("scene: duplicate object name %q", name)
		}
		names[name] = true
		return nil
	}

	for _, prim := range cfg.Primitives {
		if err := checkName(prim.Name); err != nil {
			return err
		}
		if err := prim.validate(); err != nil {
			return fmt.Errorf("scene: primitive %q: %w", prim.Name, err)
		}
	}

	for _, model := range cfg.Models {
		if err := checkName(model.Name); err != nil {
			return err
		}
		if model.Obj == "" {
			return fmt.Errorf("scene: model %q: obj path is required", model.Name)
		}
		if model.Scale < 0 {
			return fmt.Errorf("scene: model %q: scale must be positive", model.Name)
		}
		if err := model.Rotation.validate(); err != nil {
			return fmt.Errorf("scene: model %q: %w", model.Name, err)
		}
	}

	return nil
}

func (r *Rotation) validate() error {
	if r != nil && r.Axis.Len() == 0 {
		return errors.New("rotation axis must not be zero")
	}
	return nil
}
