package asset

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// The http client used for fetching remote resources.
var httpClient = &http.Client{Timeout: 60 * time.Second}

// The Resource class wraps a streamable file or remote Resource.
type Resource struct {
	io.ReadCloser
	url *url.URL
}

// Returns the path to this resource.
func (r *Resource) Path() string {
	return r.url.String()
}

// Return the remote path to this resource. If this is a remote resource then
// this method returns the base path (without leading /) of the remote URL.
// Otherwise, this method returns the same value as Path().
func (r *Resource) RemotePath() string {
	if r.IsRemote() {
		return filepath.Base(r.url.Path)
	}
	return r.Path()
}

// Returns true if the Resource is streamed over http/https.
func (r *Resource) IsRemote() bool {
	return r.url.Scheme != ""
}

// Resolve the location of a resource without opening it. If relTo is
// specified and pathToResource is neither absolute nor defines a scheme, the
// location is generated by concatenating the base path of relTo and
// pathToResource.
func Resolve(pathToResource string, relTo *Resource) (*url.URL, error) {
	// Replace backslashes with forward slashes and try parsing as a URL
	loc, err := url.Parse(strings.Replace(pathToResource, `\`, `/`, -1))
	if err != nil {
		return nil, err
	}

	// If this is a relative url, clone parent url and adjust its path
	if loc.Scheme == "" && relTo != nil && !strings.HasPrefix(loc.Path, "/") {
		relPath := loc.Path
		loc, _ = url.Parse(relTo.url.String())
		prefix := loc.Path
		if loc.Scheme == "" {
			prefix, err = filepath.Abs(relTo.url.Path)
			if err != nil {
				return nil, fmt.Errorf("resource: could not detect abs path for %s; %s", relTo.url.String(), err.Error())
			}
		}
		loc.Path = filepath.ToSlash(filepath.Dir(prefix)) + "/" + relPath
	}

	switch loc.Scheme {
	case "", "http", "https":
	default:
		return nil, fmt.Errorf("resource: unsupported scheme '%s'", loc.Scheme)
	}

	return loc, nil
}

// Create a new Resource data stream. Relative paths are resolved against
// relTo using the same rules as Resolve.
//
// This function can handle http/https URLs by delegating to the net/http package.
// The caller must make sure to close the returned io.ReadCloser to prevent mem leaks.
func NewResource(pathToResource string, relTo *Resource) (*Resource, error) {
	loc, err := Resolve(pathToResource, relTo)
	if err != nil {
		return nil, err
	}
	return open(loc)
}

func open(loc *url.URL) (*Resource, error) {
	var reader io.ReadCloser
	switch loc.Scheme {
	case "":
		f, err := os.Open(filepath.Clean(filepath.FromSlash(loc.Path)))
		if err != nil {
			return nil, err
		}
		reader = f
	default:
		resp, err := httpClient.Get(loc.String())
		if err != nil {
			return nil, fmt.Errorf("resource: could not fetch '%s': %s", loc.String(), err)
		}
		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return nil, fmt.Errorf("resource: could not fetch '%s': status %d", loc.String(), resp.StatusCode)
		}
		reader = resp.Body
	}

	return &Resource{
		ReadCloser: reader,
		url:        loc,
	}, nil
}

// Create a resource from a reader. The name is used as the resource location
// when resolving relative resources. If source is also an io.Closer it will
// be closed together with the resource.
func NewResourceFromStream(name string, source io.Reader) *Resource {
	loc, err := url.Parse(strings.Replace(name, `\`, `/`, -1))
	if err != nil {
		loc = &url.URL{Path: name}
	}

	reader, isCloser := source.(io.ReadCloser)
	if !isCloser {
		reader = io.NopCloser(source)
	}
	return &Resource{
		ReadCloser: reader,
		url:        loc,
	}
}
