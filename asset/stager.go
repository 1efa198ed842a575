package asset

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/achilleasa/vista/log"
)

// The Stager makes resources available as local files for loaders that can
// only read from the filesystem. Remote resources are downloaded once into a
// cache directory that mirrors their URL path so that files referencing their
// siblings by relative path keep working.
type Stager struct {
	logger log.Logger

	cacheDir string
	staged   map[string]string
}

// Create a new stager. The cache directory is created on first download.
func NewStager() *Stager {
	return &Stager{
		logger: log.New("asset stager"),
		staged: make(map[string]string),
	}
}

// Stage a resource and return the local path to it. Relative paths are
// resolved against relTo.
func (s *Stager) Stage(pathToResource string, relTo *Resource) (string, error) {
	loc, err := Resolve(pathToResource, relTo)
	if err != nil {
		return "", err
	}

	if loc.Scheme == "" {
		localPath, err := filepath.Abs(filepath.FromSlash(loc.Path))
		if err != nil {
			return "", err
		}
		if _, err = os.Stat(localPath); err != nil {
			return "", err
		}
		return localPath, nil
	}

	key := loc.String()
	if localPath, exists := s.staged[key]; exists {
		return localPath, nil
	}

	if s.cacheDir == "" {
		if s.cacheDir, err = os.MkdirTemp("", "vista-assets-"); err != nil {
			return "", fmt.Errorf("stager: could not create cache dir: %w", err)
		}
	}

	localPath := filepath.Join(s.cacheDir, loc.Host, filepath.FromSlash(path.Clean("/"+loc.Path)))
	if err = os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return "", err
	}

	res, err := open(loc)
	if err != nil {
		return "", err
	}
	defer res.Close()

	f, err := os.Create(localPath)
	if err != nil {
		return "", err
	}
	_, err = io.Copy(f, res)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(localPath)
		return "", fmt.Errorf("stager: could not download '%s': %w", key, err)
	}

	s.logger.Infof(`staged "%s" as "%s"`, key, localPath)
	s.staged[key] = localPath
	return localPath, nil
}

// Remove any downloaded files.
func (s *Stager) Close() error {
	if s.cacheDir == "" {
		return nil
	}
	err := os.RemoveAll(s.cacheDir)
	s.cacheDir = ""
	s.staged = make(map[string]string)
	return err
}
