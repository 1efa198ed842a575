package wavefront

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/achilleasa/vista/types"
	"github.com/olekukonko/tablewriter"
)

// The kind of a file referenced by a wavefront model or material library.
type DependencyKind uint8

const (
	MaterialLibrary DependencyKind = iota
	ObjectInclude
	Texture
)

func (k DependencyKind) String() string {
	switch k {
	case MaterialLibrary:
		return "mtllib"
	case ObjectInclude:
		return "call"
	case Texture:
		return "texture"
	}
	return "unknown"
}

// A file referenced by a model.
type Dependency struct {
	Kind DependencyKind

	// The reference as it appears in the file.
	Ref string

	// The reference resolved against the referencing file.
	Path string
}

// A material defined by a material library.
type Material struct {
	Name string

	// Diffuse, specular and emissive colors.
	Kd types.Vec3
	Ks types.Vec3
	Ke types.Vec3

	// Texture maps keyed by the mtl directive (map_Kd, map_bump e.t.c).
	Textures map[string]string

	// The library that defined this material.
	Library string

	// True if at least one face uses this material.
	Used bool
}

// A named object or group and the faces it contains.
type Object struct {
	Name      string
	Triangles int
	Materials []string
}

// Statistics and references collected while scanning a model.
type Summary struct {
	Path string

	Vertices  int
	Normals   int
	UVs       int
	Faces     int
	Triangles int

	Objects      []*Object
	Materials    []*Material
	Dependencies []Dependency

	// Materials selected via usemtl that no scanned library defines.
	Unresolved []string

	// Model space bounding box.
	BBox [2]types.Vec3
}

// Get the radius of a sphere centered at the bbox center that encloses the model.
func (s *Summary) Radius() float32 {
	if s.Vertices == 0 {
		return 0
	}
	return s.BBox[1].Sub(s.BBox[0]).Len() * 0.5
}

// Get the list of dependencies with the given kind.
func (s *Summary) DependenciesOf(kind DependencyKind) []Dependency {
	out := make([]Dependency, 0)
	for _, dep := range s.Dependencies {
		if dep.Kind == kind {
			out = append(out, dep)
		}
	}
	return out
}

// Render the summary as a set of text tables.
func (s *Summary) Table() string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Model: %s\n", s.Path)
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Vertices", "Normals", "UVs", "Faces", "Triangles", "Radius"})
	table.Append([]string{
		strconv.Itoa(s.Vertices),
		strconv.Itoa(s.Normals),
		strconv.Itoa(s.UVs),
		strconv.Itoa(s.Faces),
		strconv.Itoa(s.Triangles),
		fmt.Sprintf("%3.3f", s.Radius()),
	})
	table.Render()

	if len(s.Objects) > 0 {
		buf.WriteString("\nObjects:\n")
		table = tablewriter.NewWriter(&buf)
		table.SetHeader([]string{"Name", "Triangles", "Materials"})
		table.SetAutoWrapText(false)
		total := 0
		for _, obj := range s.Objects {
			total += obj.Triangles
			table.Append([]string{obj.Name, strconv.Itoa(obj.Triangles), fmt.Sprint(obj.Materials)})
		}
		table.SetFooter([]string{"", strconv.Itoa(total), ""})
		table.Render()
	}

	if len(s.Materials) > 0 {
		buf.WriteString("\nMaterials:\n")
		table = tablewriter.NewWriter(&buf)
		table.SetHeader([]string{"Name", "Kd", "Textures", "Used"})
		table.SetAutoWrapText(false)
		for _, mat := range s.Materials {
			table.Append([]string{mat.Name, fmt.Sprintf("%v", mat.Kd), strconv.Itoa(len(mat.Textures)), strconv.FormatBool(mat.Used)})
		}
		table.Render()
	}

	if len(s.Dependencies) > 0 {
		buf.WriteString("\nDependencies:\n")
		table = tablewriter.NewWriter(&buf)
		table.SetHeader([]string{"Kind", "Reference", "Resolved path"})
		table.SetAutoWrapText(false)
		for _, dep := range s.Dependencies {
			table.Append([]string{dep.Kind.String(), dep.Ref, dep.Path})
		}
		table.Render()
	}

	if len(s.Unresolved) > 0 {
		fmt.Fprintf(&buf, "\nUnresolved materials: %v\n", s.Unresolved)
	}

	return buf.String()
}
