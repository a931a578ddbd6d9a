package tex

import (
	"encoding/base64"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/aretw0/qtex/pkg/core"
)

// PluginFile prefixes image sources that refer to files attached to a question.
const PluginFile = "@@PLUGINFILE@@/"

type fileSet struct {
	list []core.File
}

func (s *fileSet) add(f core.File) {
	for _, existing := range s.list {
		if existing.Name == f.Name {
			return
		}
	}
	s.list = append(s.list, f)
}

// collectImages resolves every image named in text once.
func (st *parse) collectImages(text string) map[string]core.Image {
	matches := st.image.FindAll(text)
	if len(matches) == 0 {
		return nil
	}
	if st.resolver == nil {
		st.log.Warn(core.Warning{Code: core.WarnAllImagesMissing, Detail: "document references images but none were provided"})
		return nil
	}

	images := make(map[string]core.Image)
	for _, m := range matches {
		name := m.Arg(1)
		if _, seen := images[name]; seen {
			continue
		}
		img, ok := st.resolver.Resolve(name)
		if !ok {
			st.log.Warn(core.Warning{Code: core.WarnImageMissing, Detail: name})
			continue
		}
		if !st.supportedImage(img.Type) {
			st.log.Warn(core.Warning{Code: core.WarnUnsupportedImage, Detail: img.Name})
		}
		images[name] = img
	}
	return images
}

func (st *parse) supportedImage(ext string) bool {
	for _, f := range st.settings.ImageFormats {
		if strings.EqualFold(f, ext) {
			return true
		}
	}
	return false
}

// embedImages replaces resolved image macros with <img> tags and records the payloads.
func (st *parse) embedImages(text string, files *fileSet) string {
	if len(st.images) == 0 {
		return text
	}
	matches := st.image.FindAll(text)
	var resolved []Match
	for _, m := range matches {
		if _, ok := st.images[m.Arg(1)]; ok {
			resolved = append(resolved, m)
		}
	}
	return replaceMatches(text, resolved, func(m Match) string {
		name := m.Arg(1)
		img := st.images[name]
		fileName := strings.ReplaceAll(name, "/", "_")
		files.add(core.File{Name: fileName, Type: img.Type, Data: img.Data})
		return fmt.Sprintf("\n<img src=\"%s%s\" alt=\"%s\" align=\"center\" width=\"100%%\">", PluginFile, fileName, name)
	})
}

var (
	reImgTag  = regexp.MustCompile(`(?is)<img(.*?)>`)
	reImgSrc  = regexp.MustCompile(`(?is)src=(?:'|")([^>]*?)(?:'|")`)
	reImgAlt  = regexp.MustCompile(`(?is)alt=(?:'|")([^>]*?)(?:'|")`)
	reDataURI = regexp.MustCompile(`(?is)^data:image/(.*?);(.*?),(.*)$`)
)

// extraction collects the payloads of one Serialize call.
type extraction struct {
	folder   string
	files    map[string]core.File // by attached file name
	payloads map[string][]byte
	count    int
	log      *core.WarningLog
}

// extractImages replaces <img> tags by include macros. Embedded base64 data
// is numbered, attached files keep their include name.
func (s *Serializer) extractImages(content string, ex *extraction) string {
	return reImgTag.ReplaceAllStringFunc(content, func(tag string) string {
		src := reImgSrc.FindStringSubmatch(tag)
		if src == nil {
			return tag
		}
		source := strings.TrimSpace(src[1])

		var include string
		if m := reDataURI.FindStringSubmatch(source); m != nil {
			if !strings.Contains(strings.ToLower(m[2]), "base64") {
				ex.log.Warn(core.Warning{Code: core.WarnEmbedError, Detail: "only base64 encoded images can be extracted"})
				return tag
			}
			data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(m[3]))
			if err != nil {
				ex.log.Warn(core.Warning{Code: core.WarnEmbedError, Detail: err.Error()})
				return tag
			}
			ex.count++
			include = fmt.Sprintf("%s%d.%s", ex.folder, ex.count, strings.TrimSpace(m[1]))
			ex.payloads[include] = data
		} else {
			include = ex.folder + path.Base(source)
			if alt := reImgAlt.FindStringSubmatch(tag); alt != nil && strings.TrimSpace(alt[1]) != "" {
				include = strings.TrimSpace(alt[1])
			}
			if f, ok := ex.files[strings.TrimPrefix(source, PluginFile)]; ok {
				key := include
				if path.Ext(key) == "" && f.Type != "" {
					key += "." + f.Type
				}
				ex.payloads[key] = f.Data
			}
		}
		return s.macro(core.IDImage, "", include)
	})
}
