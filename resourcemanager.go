package minecart

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
)

// ErrResourceNotFound is returned by ResourceManager.Load when no loader
// could provide a resource.
var ErrResourceNotFound = errors.New("resource not found")

// ResourceLoader resolves slash separated resource names to their contents.
type ResourceLoader interface {
	Load(name string) ([]byte, error)
}

// FSLoader loads resources from a file system, typically an embed.FS.
type FSLoader struct {
	FS fs.FS
	// Root is prepended to every name.
	Root string
}

func (l FSLoader) Load(name string) ([]byte, error) {
	p := name
	if l.Root != "" {
		p = path.Join(l.Root, name)
	}
	return fs.ReadFile(l.FS, p)
}

// DirLoader loads resources from a directory on disk.
func DirLoader(dir string) FSLoader {
	return FSLoader{FS: os.DirFS(dir)}
}

// ResourceManager asks each loader in turn and returns the first hit.
type ResourceManager struct {
	loaders []ResourceLoader
}

func NewResourceManager(loaders ...ResourceLoader) *ResourceManager {
	return &ResourceManager{loaders: loaders}
}

// AddLoader appends a loader; it is consulted after the existing ones.
func (m *ResourceManager) AddLoader(l ResourceLoader) {
	m.loaders = append(m.loaders, l)
}

// Load returns the contents of name. When every loader fails the error wraps
// ErrResourceNotFound and the last loader's error.
func (m *ResourceManager) Load(name string) ([]byte, error) {
	var cause error
	for _, l := range m.loaders {
		data, err := l.Load(name)
		if err == nil {
			return data, nil
		}
		cause = err
	}
	if cause != nil {
		return nil, fmt.Errorf("could not load %q: %w: %w", name, ErrResourceNotFound, cause)
	}
	return nil, fmt.Errorf("could not load %q: %w", name, ErrResourceNotFound)
}
