package wavefront

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/achilleasa/vista/asset"
)

func mockResource(t *testing.T, dir string, files map[string]string, name string) *asset.Resource {
	for fname, payload := range files {
		fpath := filepath.Join(dir, fname)
		if err := os.MkdirAll(filepath.Dir(fpath), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(fpath, []byte(payload), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	res, err := asset.NewResource(filepath.Join(dir, name), nil)
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestScanModel(t *testing.T) {
	files := map[string]string{
		"tinker.obj": `
# comment
mtllib obj.mtl
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 -2
vt 0 0
vn 0 0 1
o body
usemtl red
f 1 2 3
f 1 2 3 4
g empty
g ngon
usemtl blue
f -4 -3 -2 -1 1
`,
		"obj.mtl": `
newmtl red
Kd 1 0 0
map_Kd -s 1 1 1 textures/red.png
newmtl blue
Kd 0 0 1
bump blue_bump.png
newmtl unused
`,
	}

	res := mockResource(t, t.TempDir(), files, "tinker.obj")
	defer res.Close()

	summary, err := Scan(res)
	if err != nil {
		t.Fatal(err)
	}

	if summary.Vertices != 4 || summary.UVs != 1 || summary.Normals != 1 {
		t.Fatalf("expected 4 vertices, 1 uv and 1 normal; got %d, %d, %d", summary.Vertices, summary.UVs, summary.Normals)
	}
	if summary.Faces != 3 {
		t.Fatalf("expected 3 faces; got %d", summary.Faces)
	}
	if summary.Triangles != 6 {
		t.Fatalf("expected 6 triangles; got %d", summary.Triangles)
	}

	if len(summary.Objects) != 2 {
		t.Fatalf("expected empty objects to be dropped; got %d objects", len(summary.Objects))
	}
	expObjects := []struct {
		name      string
		triangles int
	}{
		{"body", 3},
		{"ngon", 3},
	}
	for specIndex, spec := range expObjects {
		obj := summary.Objects[specIndex]
		if obj.Name != spec.name || obj.Triangles != spec.triangles {
			t.Fatalf("[spec %d] expected object %q with %d triangles; got %q with %d", specIndex, spec.name, spec.triangles, obj.Name, obj.Triangles)
		}
	}

	if len(summary.Materials) != 3 {
		t.Fatalf("expected 3 materials; got %d", len(summary.Materials))
	}
	expUsed := map[string]bool{"red": true, "blue": true, "unused": false}
	for _, mat := range summary.Materials {
		if mat.Used != expUsed[mat.Name] {
			t.Fatalf("expected material %q used flag to be %t", mat.Name, expUsed[mat.Name])
		}
	}
	if tex := summary.Materials[0].Textures["map_Kd"]; tex != "textures/red.png" {
		t.Fatalf("expected map options to be skipped; got texture %q", tex)
	}

	textures := summary.DependenciesOf(Texture)
	if len(textures) != 2 {
		t.Fatalf("expected 2 texture dependencies; got %d", len(textures))
	}
	expPath := filepath.ToSlash(filepath.Join(filepath.Dir(res.Path()), "textures/red.png"))
	if textures[0].Path != expPath {
		t.Fatalf("expected texture to resolve to %q; got %q", expPath, textures[0].Path)
	}
	if libs := summary.DependenciesOf(MaterialLibrary); len(libs) != 1 || libs[0].Ref != "obj.mtl" {
		t.Fatalf("expected a single material library dependency; got %v", libs)
	}

	expBBox := [2][3]float32{{0, 0, -2}, {1, 1, 0}}
	if [3]float32(summary.BBox[0]) != expBBox[0] || [3]float32(summary.BBox[1]) != expBBox[1] {
		t.Fatalf("expected bbox %v; got %v", expBBox, summary.BBox)
	}

	table := summary.Table()
	for _, exp := range []string{"VERTICES", "body", "ngon", "textures/red.png"} {
		if !strings.Contains(table, exp) {
			t.Fatalf("expected summary table to contain %q; got:\n%s", exp, table)
		}
	}
}

func TestScanIncludes(t *testing.T) {
	files := map[string]string{
		"scene.obj": `
v 0 0 0
v 1 0 0
v 1 1 0
f 1 2 3
call parts/part.obj
f 1 2 3
`,
		"parts/part.obj": `
v 0 0 0
v 2 0 0
v 2 2 0
o part
f 1 2 3
`,
	}

	res := mockResource(t, t.TempDir(), files, "scene.obj")
	defer res.Close()

	summary, err := Scan(res)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Vertices != 6 || summary.Triangles != 3 {
		t.Fatalf("expected 6 vertices and 3 triangles; got %d and %d", summary.Vertices, summary.Triangles)
	}
	if includes := summary.DependenciesOf(ObjectInclude); len(includes) != 1 {
		t.Fatalf("expected 1 include dependency; got %d", len(includes))
	}
}

func TestScanErrors(t *testing.T) {
	specs := []struct {
		obj    string
		mtl    string
		expErr string
	}{
		{
			obj:    "mtllib a.mtl b.mtl",
			expErr: `unsupported syntax for "mtllib"; expected 1 argument; got 2`,
		},
		{
			obj:    "mtllib missing%d.mtl",
			expErr: `parse "missing%d.mtl": invalid URL escape "%d."`,
		},
		{
			obj:    "v 1 2",
			expErr: `unsupported syntax for "v"; expected 3 arguments; got 2`,
		},
		{
			obj:    "v 0 0 0\nv 1 0 0\nf 1 2",
			expErr: `unsupported syntax for "f"; expected at least 3 arguments; got 2`,
		},
		{
			obj:    "v 0 0 0\nv 1 0 0\nv 1 1 0\nf 1 2 4",
			expErr: "could not parse vertex coord for face argument 2: index out of bounds",
		},
		{
			obj:    "v 0 0 0\nv 1 0 0\nv 1 1 0\nf 1 2/2 3",
			expErr: "expected each face argument to contain 1 indices; arg 1 contains 2 indices",
		},
		{
			obj:    "mtllib lib.mtl\nusemtl missing",
			mtl:    "newmtl present",
			expErr: `error: undefined material with name "missing"`,
		},
		{
			obj:    "mtllib lib.mtl",
			mtl:    "Kd 1 1 1",
			expErr: `got "Kd" without a "newmtl"`,
		},
		{
			obj:    "mtllib lib.mtl",
			mtl:    "newmtl a\nnewmtl a",
			expErr: `material "a" already defined`,
		},
		{
			obj:    "mtllib lib.mtl",
			mtl:    "newmtl a\nKd 1 x 1",
			expErr: "invalid syntax",
		},
	}

	for specIndex, spec := range specs {
		files := map[string]string{"model.obj": spec.obj}
		if spec.mtl != "" {
			files["lib.mtl"] = spec.mtl
		}
		res := mockResource(t, t.TempDir(), files, "model.obj")
		_, err := Scan(res)
		res.Close()
		if err == nil || !strings.Contains(err.Error(), spec.expErr) {
			t.Fatalf("[spec %d] expected error containing %q; got %v", specIndex, spec.expErr, err)
		}
	}
}

func TestScanErrorIncludesReferenceStack(t *testing.T) {
	files := map[string]string{
		"model.obj": "mtllib lib.mtl",
		"lib.mtl":   "newmtl a\nKe 1",
	}
	dir := t.TempDir()
	res := mockResource(t, dir, files, "model.obj")
	defer res.Close()

	_, err := Scan(res)
	if err == nil {
		t.Fatal("expected an error")
	}

	lines := strings.Split(err.Error(), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected error to include the reference stack; got %q", err.Error())
	}
	if !strings.HasPrefix(lines[1], "referenced from "+res.Path()+":1 [mtllib]") {
		t.Fatalf("unexpected reference frame %q", lines[1])
	}
}

func TestScanUnresolvedMaterials(t *testing.T) {
	files := map[string]string{
		"model.obj": "v 0 0 0\nv 1 0 0\nv 1 1 0\nusemtl skin\nf 1 2 3\nusemtl skin\nf 1 2 3",
	}
	res := mockResource(t, t.TempDir(), files, "model.obj")
	defer res.Close()

	summary, err := Scan(res)
	if err != nil {
		t.Fatal(err)
	}
	if len(summary.Unresolved) != 1 || summary.Unresolved[0] != "skin" {
		t.Fatalf("expected unresolved material list to be [skin]; got %v", summary.Unresolved)
	}
}

func TestScanMaterialLibrary(t *testing.T) {
	files := map[string]string{
		"obj.mtl": "newmtl a\nKd 0.5 0.5 0.5\nmap_Kd a.png\nnewmtl b\nnorm b_normal.png",
	}
	res := mockResource(t, t.TempDir(), files, "obj.mtl")
	defer res.Close()

	summary, err := ScanMaterials(res)
	if err != nil {
		t.Fatal(err)
	}
	if len(summary.Materials) != 2 {
		t.Fatalf("expected 2 materials; got %d", len(summary.Materials))
	}
	if len(summary.DependenciesOf(Texture)) != 2 {
		t.Fatalf("expected 2 texture dependencies; got %v", summary.Dependencies)
	}
}

func TestStageRemoteModel(t *testing.T) {
	files := map[string]string{
		"/demo/tinker.obj":        "v 0 0 0\nv 1 0 0\nv 1 1 0\nusemtl skin\nf 1 2 3",
		"/demo/obj.mtl":           "newmtl skin\nmap_Kd textures/skin.png\nmap_bump textures/missing.png",
		"/demo/textures/skin.png": "png",
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, exists := files[r.URL.Path]
		if !exists {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(payload))
	}))
	defer server.Close()

	stager := asset.NewStager()
	defer stager.Close()

	sceneRes := asset.NewResourceFromStream(server.URL+"/demo/scene.yaml", strings.NewReader(""))
	model, err := StageModel(stager, "tinker.obj", "obj.mtl", sceneRes)
	if err != nil {
		t.Fatal(err)
	}

	if filepath.Dir(model.ObjPath) != filepath.Dir(model.MtlPath) {
		t.Fatalf("expected obj and mtl to be staged side by side; got %q and %q", model.ObjPath, model.MtlPath)
	}
	if len(model.Summary.Unresolved) != 0 {
		t.Fatalf("expected the external library to resolve all materials; got %v", model.Summary.Unresolved)
	}
	if !model.Summary.Materials[0].Used {
		t.Fatal("expected material to be flagged as used")
	}

	data, err := os.ReadFile(filepath.Join(filepath.Dir(model.MtlPath), "textures", "skin.png"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "png" {
		t.Fatalf("unexpected staged texture contents %q", string(data))
	}
}
