package minecart

import (
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"
)

func TestResourceManagerOrder(t *testing.T) {
	first := FSLoader{FS: fstest.MapFS{
		"shaders/a.wgsl": {Data: []byte("first")},
	}}
	second := FSLoader{FS: fstest.MapFS{
		"shaders/a.wgsl": {Data: []byte("second")},
		"shaders/b.wgsl": {Data: []byte("only second")},
	}}

	m := NewResourceManager(first, second)

	data, err := m.Load("shaders/a.wgsl")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "first" {
		t.Errorf("got %q, want the first loader's copy", data)
	}

	data, err = m.Load("shaders/b.wgsl")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "only second" {
		t.Errorf("got %q", data)
	}
}

func TestResourceManagerNotFound(t *testing.T) {
	m := NewResourceManager(FSLoader{FS: fstest.MapFS{}})

	_, err := m.Load("missing.wgsl")
	if !errors.Is(err, ErrResourceNotFound) {
		t.Errorf("err = %v, want ErrResourceNotFound", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("err = %v, want the loader's cause to be kept", err)
	}

	_, err = NewResourceManager().Load("x")
	if !errors.Is(err, ErrResourceNotFound) {
		t.Errorf("err = %v, want ErrResourceNotFound with no loaders", err)
	}
}

func TestFSLoaderRoot(t *testing.T) {
	l := FSLoader{
		FS:   fstest.MapFS{"assets/shaders/cube.wgsl": {Data: []byte("x")}},
		Root: "assets",
	}
	m := NewResourceManager()
	m.AddLoader(l)

	if _, err := m.Load("shaders/cube.wgsl"); err != nil {
		t.Error(err)
	}
}
