package platform

import (
	"errors"
	"os"
	"path/filepath"
)

// ErrNoRoot is returned by FindRoot when no marker exists above the start path.
var ErrNoRoot = errors.New("no qtex project root found")

// rootMarkers identify a project directory, in lookup order.
var rootMarkers = []string{ConfigName + ".yaml", ConfigName + ".yml", ".qtex"}

// FindRoot walks upwards from start until a directory holds one of the
// project markers (qtex.yaml, qtex.yml or a .qtex directory) and returns its
// absolute path. start may name a document; its directory is used then.
func FindRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}

	for {
		if marker(dir) != "" {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoRoot
		}
		dir = parent
	}
}

// marker returns the first project marker present in dir, or "".
func marker(dir string) string {
	for _, name := range rootMarkers {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return name
		}
	}
	return ""
}
