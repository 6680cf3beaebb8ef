// Package assets defines how portrait images are resolved for the editor
// preview and for playback.
//
// Loading never fails loudly: a missing or unsupported file yields a nil
// [Texture] and the caller shows no portrait.
package assets

import (
	"os"
	"path/filepath"
	"strings"
)

// Texture is an opaque, host-specific image handle.
type Texture any

// Loader resolves an asset path to a texture, returning nil on a miss.
type Loader interface {
	LoadTexture(path string) Texture
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(path string) Texture

// LoadTexture calls f(path).
func (f LoaderFunc) LoadTexture(path string) Texture { return f(path) }

// Nop never resolves anything.
var Nop Loader = LoaderFunc(func(string) Texture { return nil })

// File is the texture returned by [FileLoader]: the resolved path on disk.
type File struct {
	Path string
	Name string
}

// FileLoader resolves portrait paths against a root directory.
type FileLoader struct {
	Root string
}

// supported lists the image extensions the editor's file picker offers.
var supported = map[string]bool{".png": true, ".svg": true, ".jpg": true, ".jpeg": true}

// LoadTexture returns a File when path names an existing image, nil otherwise.
func (l FileLoader) LoadTexture(path string) Texture {
	if path == "" || !supported[strings.ToLower(filepath.Ext(path))] {
		return nil
	}
	full := path
	if !filepath.IsAbs(path) && l.Root != "" {
		full = filepath.Join(l.Root, path)
	}
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		return nil
	}
	return File{Path: full, Name: filepath.Base(full)}
}
