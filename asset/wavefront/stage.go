package wavefront

import (
	"os"

	"github.com/achilleasa/vista/asset"
	"github.com/achilleasa/vista/log"
)

// A model whose files are available on the local filesystem.
type StagedModel struct {
	ObjPath string

	// Empty if the model only uses the libraries it references via mtllib.
	MtlPath string

	Summary *Summary
}

// Stage an object file, its material libraries and every texture they
// reference so they can be read by loaders that only work with local
// files. If mtlRef is not empty, it is staged as an additional material
// library for the model. Missing textures are logged and skipped.
func StageModel(stager *asset.Stager, objRef, mtlRef string, relTo *asset.Resource) (*StagedModel, error) {
	logger := log.New("wavefront scanner")

	objRes, objPath, err := stageAndOpen(stager, objRef, relTo)
	if err != nil {
		return nil, err
	}
	summary, err := Scan(objRes)
	objRes.Close()
	if err != nil {
		return nil, err
	}

	model := &StagedModel{
		ObjPath: objPath,
		Summary: summary,
	}

	if mtlRef != "" {
		mtlRes, mtlPath, err := stageAndOpen(stager, mtlRef, relTo)
		if err != nil {
			return nil, err
		}
		lib, err := ScanMaterials(mtlRes)
		mtlRes.Close()
		if err != nil {
			return nil, err
		}
		model.MtlPath = mtlPath
		summary.merge(lib)
	}

	for _, dep := range summary.Dependencies {
		if _, err = stager.Stage(dep.Path, nil); err != nil {
			if dep.Kind != Texture {
				return nil, err
			}
			logger.Warningf(`could not stage texture "%s": %s`, dep.Ref, err.Error())
		}
	}

	return model, nil
}

// Stage a resource and open the local copy. The returned resource keeps the
// original location so references inside it resolve against the source
// rather than the cache.
func stageAndOpen(stager *asset.Stager, ref string, relTo *asset.Resource) (*asset.Resource, string, error) {
	loc, err := asset.Resolve(ref, relTo)
	if err != nil {
		return nil, "", err
	}

	localPath, err := stager.Stage(loc.String(), nil)
	if err != nil {
		return nil, "", err
	}

	f, err := os.Open(localPath)
	if err != nil {
		return nil, "", err
	}
	return asset.NewResourceFromStream(loc.String(), f), localPath, nil
}

// Merge the materials and dependencies of an external material library and
// resolve any material references it defines.
func (s *Summary) merge(lib *Summary) {
	defined := make(map[string]*Material)
	for _, mat := range s.Materials {
		defined[mat.Name] = mat
	}
	for _, mat := range lib.Materials {
		if _, exists := defined[mat.Name]; exists {
			continue
		}
		defined[mat.Name] = mat
		s.Materials = append(s.Materials, mat)
	}

	s.Dependencies = append(s.Dependencies, Dependency{Kind: MaterialLibrary, Ref: lib.Path, Path: lib.Path})
	s.Dependencies = append(s.Dependencies, lib.Dependencies...)

	unresolved := s.Unresolved[:0]
	for _, matName := range s.Unresolved {
		if mat, exists := defined[matName]; exists {
			mat.Used = true
			continue
		}
		unresolved = append(unresolved, matName)
	}
	s.Unresolved = unresolved
}
