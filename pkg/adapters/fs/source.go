// Package fs connects documents on disk to the converter: it loads sources
// with their images, writes results atomically and watches folders for edits.
package fs

import (
	"fmt"
	iofs "io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/qtex/pkg/adapters/archive"
	"github.com/aretw0/qtex/pkg/core"
)

// skipPattern excludes documents and configuration from image lookup.
const skipPattern = "**/*.{tex,json,yaml,yml,xml,zip}"

// DirResolver serves the images of a document folder on demand. A lookup
// lists only the folder named by the include and reads the matching file.
type DirResolver struct {
	fsys iofs.FS
}

// NewDirResolver returns a resolver rooted at dir.
func NewDirResolver(dir string) *DirResolver {
	return &DirResolver{fsys: os.DirFS(dir)}
}

// Resolve finds the file whose base name equals the include name, ignoring
// case, or extends it with an extension. Hidden folders are never served.
func (r *DirResolver) Resolve(name string) (core.Image, bool) {
	name = strings.TrimPrefix(strings.TrimSpace(filepath.ToSlash(name)), "./")
	if name == "" || !iofs.ValidPath(name) || hidden(name) {
		return core.Image{}, false
	}

	folder, base := path.Split(name)
	folder = strings.TrimSuffix(folder, "/")
	if folder == "" {
		folder = "."
	}
	entries, err := iofs.ReadDir(r.fsys, folder)
	if err != nil {
		return core.Image{}, false
	}

	for _, e := range entries {
		n := e.Name()
		if e.IsDir() || len(n) < len(base) || !strings.EqualFold(n[:len(base)], base) {
			continue
		}
		if len(n) > len(base) && n[len(base)] != '.' {
			continue
		}
		p := path.Join(folder, n)
		if skip, _ := doublestar.Match(skipPattern, strings.ToLower(p)); skip {
			continue
		}
		data, err := iofs.ReadFile(r.fsys, p)
		if err != nil {
			continue
		}
		return core.Image{
			Name: n,
			Type: strings.ToLower(strings.TrimPrefix(path.Ext(n), ".")),
			Data: data,
		}, true
	}
	return core.Image{}, false
}

var _ core.ImageResolver = (*DirResolver)(nil)

func hidden(p string) bool {
	for _, part := range strings.Split(p, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// Load reads a source document. A .zip file is unpacked; a .tex file is
// returned with the images found next to it.
func Load(filename string, opts ...archive.Option) (*archive.Bundle, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if strings.EqualFold(filepath.Ext(filename), ".zip") {
		return archive.Unpack(data, opts...)
	}

	return &archive.Bundle{
		DocumentName: filepath.Base(filename),
		Document:     string(data),
		Images:       NewDirResolver(filepath.Dir(filename)),
	}, nil
}

// WriteBundle writes a document and its image payloads below dir. Payload
// names are relative slash paths.
func WriteBundle(dir, name, doc string, payloads map[string][]byte) error {
	if err := WriteFile(filepath.Join(dir, name), []byte(doc)); err != nil {
		return err
	}
	for p, data := range payloads {
		clean := path.Clean("/" + p)[1:]
		if clean == "" {
			continue
		}
		if err := WriteFile(filepath.Join(dir, filepath.FromSlash(clean)), data); err != nil {
			return err
		}
	}
	return nil
}
