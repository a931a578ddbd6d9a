package archive

import (
	"path"
	"sort"
	"strings"

	"github.com/aretw0/qtex/pkg/core"
)

// Resolver serves images from in-memory files keyed by relative path.
type Resolver map[string][]byte

// Resolve finds the file whose path equals name, ignoring case, or starts
// with name followed by an extension. TeX includes usually omit it.
func (r Resolver) Resolve(name string) (core.Image, bool) {
	name = strings.TrimPrefix(strings.TrimSpace(name), "./")
	if name == "" {
		return core.Image{}, false
	}

	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if len(k) < len(name) || !strings.EqualFold(k[:len(name)], name) {
			continue
		}
		if len(k) > len(name) && k[len(name)] != '.' {
			continue
		}
		return core.Image{
			Name: path.Base(k),
			Type: strings.ToLower(strings.TrimPrefix(path.Ext(k), ".")),
			Data: r[k],
		}, true
	}
	return core.Image{}, false
}

var _ core.ImageResolver = Resolver(nil)
