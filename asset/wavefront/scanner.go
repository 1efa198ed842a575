package wavefront

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/achilleasa/vista/asset"
	"github.com/achilleasa/vista/log"
	"github.com/achilleasa/vista/types"
)

type scanner struct {
	logger log.Logger

	summary *Summary

	// A map of material names to parsed materials.
	matNameToIndex map[string]int

	// Material names selected by usemtl in the order they were encountered.
	usedMaterials []string

	// The number of material libraries that were scanned.
	libCount int

	// Currently selected material and object.
	curMaterial string
	curObject   *Object

	// Visited includes, used for detecting include cycles.
	visiting map[string]bool

	// An error stack that provides additional error information when
	// model files include other files (models, mat libs e.t.c)
	errStack []string
}

func newScanner(path string) *scanner {
	return &scanner{
		logger:         log.New("wavefront scanner"),
		summary:        &Summary{Path: path},
		matNameToIndex: make(map[string]int),
		visiting:       make(map[string]bool),
		errStack:       make([]string, 0),
	}
}

// Scan a wavefront object file and any material libraries or object files
// it references. Referenced files are resolved relative to the file that
// references them.
func Scan(res *asset.Resource) (*Summary, error) {
	s := newScanner(res.Path())
	s.logger.Infof(`scanning model "%s"`, res.Path())
	start := time.Now()

	err := s.scanObject(res)
	if err != nil {
		return nil, err
	}

	if err = s.resolveMaterials(); err != nil {
		return nil, err
	}

	s.logger.Infof("scanned model in %d ms", time.Since(start).Nanoseconds()/1e6)
	return s.summary, nil
}

// Scan a standalone wavefront material library.
func ScanMaterials(res *asset.Resource) (*Summary, error) {
	s := newScanner(res.Path())
	err := s.scanMaterials(res)
	if err != nil {
		return nil, err
	}
	return s.summary, nil
}

// Flag used materials and report any material references that could not be
// resolved. Models that reference at least one material library must define
// every material they use; models without libraries expect the caller to
// supply one and only get their references listed.
func (s *scanner) resolveMaterials() error {
	seen := make(map[string]bool)
	for _, matName := range s.usedMaterials {
		if matIndex, exists := s.matNameToIndex[matName]; exists {
			s.summary.Materials[matIndex].Used = true
			continue
		}

		if s.libCount > 0 {
			return s.emitError("", 0, `undefined material with name "%s"`, matName)
		}

		if !seen[matName] {
			seen[matName] = true
			s.summary.Unresolved = append(s.summary.Unresolved, matName)
		}
	}

	if len(s.summary.Unresolved) > 0 {
		s.logger.Warningf("model references materials without defining a material library: %v", s.summary.Unresolved)
	}
	return nil
}

// Generate an error message that also includes any data in the error stack.
func (s *scanner) emitError(file string, line int, msgFormat string, args ...interface{}) error {
	msg := fmt.Sprintf(msgFormat, args...)

	var errMsg string
	if file != "" {
		errMsg = fmt.Sprintf("[%s: %d] error: %s\n%s", file, line, msg, strings.Join(s.errStack, "\n"))
	} else {
		errMsg = fmt.Sprintf("error: %s\n%s", msg, strings.Join(s.errStack, "\n"))
	}

	return fmt.Errorf("%s", strings.Trim(errMsg, "\n"))
}

// Push a frame to the error stack.
func (s *scanner) pushFrame(msg string) {
	s.errStack = append([]string{msg}, s.errStack...)
}

// Pop a frame from the error stack.
func (s *scanner) popFrame() {
	s.errStack = s.errStack[1:]
}

// Record a dependency and open it.
func (s *scanner) openDependency(kind DependencyKind, ref string, relTo *asset.Resource) (*asset.Resource, error) {
	loc, err := asset.Resolve(ref, relTo)
	if err != nil {
		return nil, err
	}
	s.summary.Dependencies = append(s.summary.Dependencies, Dependency{Kind: kind, Ref: ref, Path: loc.String()})

	if kind == Texture {
		return nil, nil
	}

	if s.visiting[loc.String()] {
		return nil, fmt.Errorf(`include cycle detected for "%s"`, loc.String())
	}
	return asset.NewResource(loc.String(), nil)
}

func (s *scanner) scanObject(res *asset.Resource) error {
	var lineNum int = 0

	s.visiting[res.Path()] = true
	defer delete(s.visiting, res.Path())

	// Included object files use 1-based indices relative to the
	// coordinates they define themselves.
	relVertexOffset := s.summary.Vertices
	relUvOffset := s.summary.UVs
	relNormalOffset := s.summary.Normals

	lineScanner := bufio.NewScanner(res)
	for lineScanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(lineScanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "call", "mtllib":
			if len(lineTokens) != 2 {
				return s.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument; got %d`, lineTokens[0], len(lineTokens)-1)
			}

			s.pushFrame(fmt.Sprintf("referenced from %s:%d [%s]", res.Path(), lineNum, lineTokens[0]))

			kind := MaterialLibrary
			if lineTokens[0] == "call" {
				kind = ObjectInclude
			}

			incRes, err := s.openDependency(kind, lineTokens[1], res)
			if err != nil {
				return s.emitError(res.Path(), lineNum, "%s", err.Error())
			}

			if kind == ObjectInclude {
				err = s.scanObject(incRes)
			} else {
				err = s.scanMaterials(incRes)
			}
			incRes.Close()

			if err != nil {
				return err
			}
			s.popFrame()
		case "usemtl":
			if len(lineTokens) != 2 {
				return s.emitError(res.Path(), lineNum, `unsupported syntax for 'usemtl'; expected 1 argument; got %d`, len(lineTokens)-1)
			}
			s.curMaterial = lineTokens[1]
			s.usedMaterials = append(s.usedMaterials, s.curMaterial)
		case "v":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return s.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			if s.summary.Vertices == 0 {
				s.summary.BBox = [2]types.Vec3{v, v}
			} else {
				s.summary.BBox[0] = types.MinVec3(s.summary.BBox[0], v)
				s.summary.BBox[1] = types.MaxVec3(s.summary.BBox[1], v)
			}
			s.summary.Vertices++
		case "vn":
			if _, err := parseVec3(lineTokens); err != nil {
				return s.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			s.summary.Normals++
		case "vt":
			if _, err := parseVec2(lineTokens); err != nil {
				return s.emitError(res.Path(), lineNum, "%s", err.Error())
			}
			s.summary.UVs++
		case "g", "o":
			if len(lineTokens) < 2 {
				return s.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument for object name; got %d`, lineTokens[0], len(lineTokens)-1)
			}

			s.verifyLastObject()
			s.curObject = &Object{Name: lineTokens[1]}
			s.summary.Objects = append(s.summary.Objects, s.curObject)
		case "f":
			triangles, err := s.scanFace(lineTokens, relVertexOffset, relUvOffset, relNormalOffset)
			if err != nil {
				return s.emitError(res.Path(), lineNum, "%s", err.Error())
			}

			// If no object has been defined create a default one
			if s.curObject == nil {
				s.curObject = &Object{Name: "default"}
				s.summary.Objects = append(s.summary.Objects, s.curObject)
			}

			s.curObject.Triangles += triangles
			if n := len(s.curObject.Materials); n == 0 || s.curObject.Materials[n-1] != s.curMaterial {
				s.curObject.Materials = append(s.curObject.Materials, s.curMaterial)
			}
			s.summary.Faces++
			s.summary.Triangles += triangles
		}
	}

	if err := lineScanner.Err(); err != nil {
		return s.emitError(res.Path(), lineNum, "%s", err.Error())
	}

	s.verifyLastObject()
	return nil
}

// Drop the last scanned object if it contains no faces.
func (s *scanner) verifyLastObject() {
	lastIndex := len(s.summary.Objects) - 1
	if lastIndex >= 0 && s.summary.Objects[lastIndex].Triangles == 0 {
		s.logger.Warningf(`dropping object "%s" as it contains no polygons`, s.summary.Objects[lastIndex].Name)
		s.summary.Objects = s.summary.Objects[:lastIndex]
		s.curObject = nil
	}
}

// Validate a face definition and return the number of triangles it
// generates when fan-triangulated. Each face argument uses one of the
// following formats:
// - vertexIndex
// - vertexIndex/uvIndex
// - vertexIndex//normalIndex
// - vertexIndex/uvIndex/normalIndex
//
// Indices start from 1 and may be negative to indicate
// an offset off the end of the vertex/uv list.
func (s *scanner) scanFace(lineTokens []string, relVertexOffset, relUvOffset, relNormalOffset int) (int, error) {
	if len(lineTokens) < 4 {
		return 0, fmt.Errorf(`unsupported syntax for "f"; expected at least 3 arguments; got %d`, len(lineTokens)-1)
	}

	expIndices := 0
	for arg := 0; arg < len(lineTokens)-1; arg++ {
		vTokens := strings.Split(lineTokens[arg+1], "/")

		// The first arg defines the format for the following args
		if arg == 0 {
			expIndices = len(vTokens)
		} else if len(vTokens) != expIndices {
			return 0, fmt.Errorf("expected each face argument to contain %d indices; arg %d contains %d indices", expIndices, arg, len(vTokens))
		}

		// Faces must at least define a vertex coord
		if vTokens[0] == "" {
			return 0, fmt.Errorf("face argument %d does not include a vertex index", arg)
		}

		if _, err := selectFaceCoordIndex(vTokens[0], s.summary.Vertices, relVertexOffset); err != nil {
			return 0, fmt.Errorf("could not parse vertex coord for face argument %d: %s", arg, err.Error())
		}

		if expIndices > 1 && vTokens[1] != "" {
			if _, err := selectFaceCoordIndex(vTokens[1], s.summary.UVs, relUvOffset); err != nil {
				return 0, fmt.Errorf("could not parse tex coord for face argument %d: %s", arg, err.Error())
			}
		}

		if expIndices > 2 && vTokens[2] != "" {
			if _, err := selectFaceCoordIndex(vTokens[2], s.summary.Normals, relNormalOffset); err != nil {
				return 0, fmt.Errorf("could not parse normal coord for face argument %d: %s", arg, err.Error())
			}
		}
	}

	return len(lineTokens) - 3, nil
}

// Scan a wavefront material library.
func (s *scanner) scanMaterials(res *asset.Resource) error {
	var lineNum int = 0
	var err error

	s.logger.Infof(`scanning material library "%s"`, res.Path())
	s.libCount++

	lineScanner := bufio.NewScanner(res)

	var curMaterial *Material = nil

	for lineScanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(lineScanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "newmtl":
			if len(lineTokens) != 2 {
				return s.emitError(res.Path(), lineNum, `unsupported syntax for "newmtl"; expected 1 argument; got %d`, len(lineTokens)-1)
			}

			matName := lineTokens[1]
			if _, exists := s.matNameToIndex[matName]; exists {
				return s.emitError(res.Path(), lineNum, `material "%s" already defined`, matName)
			}

			curMaterial = &Material{
				Name:     matName,
				Library:  res.Path(),
				Textures: make(map[string]string),
			}
			s.summary.Materials = append(s.summary.Materials, curMaterial)
			s.matNameToIndex[matName] = len(s.summary.Materials) - 1
		default:
			if curMaterial == nil {
				return s.emitError(res.Path(), lineNum, `got "%s" without a "newmtl"`, lineTokens[0])
			}

			switch lineTokens[0] {
			case "Kd":
				curMaterial.Kd, err = parseVec3(lineTokens)
			case "Ks":
				curMaterial.Ks, err = parseVec3(lineTokens)
			case "Ke":
				curMaterial.Ke, err = parseVec3(lineTokens)
			case "map_Kd", "map_Ks", "map_Ke", "map_d", "map_bump", "bump", "map_normal", "norm":
				if len(lineTokens) < 2 {
					return s.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected at least 1 argument; got %d`, lineTokens[0], len(lineTokens)-1)
				}

				// Map options (-s 1 1 1, -bm 0.5 e.t.c) precede the file name
				texRef := lineTokens[len(lineTokens)-1]
				curMaterial.Textures[lineTokens[0]] = texRef
				_, err = s.openDependency(Texture, texRef, res)
			}

			// Report any errors
			if err != nil {
				return s.emitError(res.Path(), lineNum, "%s", err.Error())
			}
		}
	}

	if err = lineScanner.Err(); err != nil {
		return s.emitError(res.Path(), lineNum, "%s", err.Error())
	}

	return nil
}

// Given an index for a face coord type (vertex, normal, tex) calculate the
// proper offset into the coord list. Wavefront format can also use negative
// indices to reference elements from the end of the coord list.
func selectFaceCoordIndex(indexToken string, coordListLen int, relOffset int) (int, error) {
	index, err := strconv.ParseInt(indexToken, 10, 32)
	if err != nil {
		return -1, err
	}

	var vOffset int = 0
	if index < 0 {
		vOffset = coordListLen + int(index)
	} else {
		vOffset = relOffset + int(index-1)
	}
	if vOffset < 0 || vOffset >= coordListLen {
		return -1, fmt.Errorf("index out of bounds")
	}
	return vOffset, nil
}

// Parse a Vec3 row.
func parseVec3(lineTokens []string) (types.Vec3, error) {
	if len(lineTokens) < 4 {
		return types.Vec3{}, fmt.Errorf(`unsupported syntax for "%s"; expected 3 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec3{}
	for tokIdx := 1; tokIdx <= 3; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}

// Parse a Vec2 row.
func parseVec2(lineTokens []string) (types.Vec2, error) {
	if len(lineTokens) < 3 {
		return types.Vec2{}, fmt.Errorf(`unsupported syntax for "%s"; expected 2 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec2{}
	for tokIdx := 1; tokIdx <= 2; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}
