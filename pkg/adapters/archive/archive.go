// Package archive reads and writes zip bundles holding one QuestionTeX
// document together with its images and an optional parameter file.
package archive

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/qtex/pkg/core"
	"github.com/aretw0/qtex/pkg/grading"
)

var (
	ErrNoDocument    = errors.New("archive contains no .tex document")
	ErrManyDocuments = errors.New("archive contains more than one .tex document")
)

// Params is the optional JSON parameter file of a bundle.
type Params struct {
	RenderEngine  string `json:"renderengine"`
	GradingScheme string `json:"gradingscheme"`
}

// RenderTarget resolves the render engine. An empty value yields the default.
func (p Params) RenderTarget() (core.RenderTarget, error) {
	return core.ParseRenderTarget(p.RenderEngine)
}

// Grader resolves the grading scheme. An empty value yields the default.
func (p Params) Grader() (core.Grader, error) {
	return grading.Lookup(p.GradingScheme)
}

// Bundle is the content of an unpacked archive.
type Bundle struct {
	// DocumentName is the archive path of the document.
	DocumentName string
	Document     string
	Params       Params
	HasParams    bool
	// Files holds the remaining entries keyed by their path relative to the
	// document's folder.
	Files map[string][]byte
	// Images, when set, resolves images instead of Files.
	Images core.ImageResolver
}

// Resolver looks up bundle images by the name used in the document.
func (b *Bundle) Resolver() core.ImageResolver {
	if b.Images != nil {
		return b.Images
	}
	return Resolver(b.Files)
}

type options struct {
	settings core.Settings
	logger   *slog.Logger
}

// Option configures Unpack and Pack.
type Option func(*options)

// WithSettings sets the reserved file names.
func WithSettings(s core.Settings) Option {
	return func(o *options) { o.settings = s }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func newOptions(opts []Option) *options {
	o := &options{settings: core.DefaultSettings()}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

// ignored reports entries that never take part in an import.
func (o *options) ignored(name string) bool {
	for _, pattern := range []string{
		"__MACOSX/**",
		"**/__MACOSX/**",
		"**/" + o.settings.MacroFile,
		"**/" + o.settings.CorporateFile,
	} {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

func matchFold(pattern, name string) bool {
	ok, _ := doublestar.Match(pattern, strings.ToLower(name))
	return ok
}

// Unpack reads a zip archive. Exactly one .tex entry besides the reserved
// ones must be present. When the document sits in a folder, that folder is
// stripped from every entry name.
func Unpack(data []byte, opts ...Option) (*Bundle, error) {
	o := newOptions(opts)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	entries := make(map[string][]byte)
	var docs, params []string
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || o.ignored(f.Name) {
			continue
		}
		content, err := readEntry(f)
		if err != nil {
			return nil, err
		}
		entries[f.Name] = content
		switch {
		case matchFold("**/*.tex", f.Name):
			docs = append(docs, f.Name)
		case matchFold("**/*.json", f.Name):
			params = append(params, f.Name)
		}
	}

	switch len(docs) {
	case 0:
		return nil, ErrNoDocument
	case 1:
	default:
		sort.Strings(docs)
		return nil, fmt.Errorf("%w: %s", ErrManyDocuments, strings.Join(docs, ", "))
	}

	b := &Bundle{
		DocumentName: docs[0],
		Document:     string(entries[docs[0]]),
		Files:        make(map[string][]byte),
	}
	if len(params) > 0 {
		sort.Strings(params)
		if err := json.Unmarshal(entries[params[0]], &b.Params); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", params[0], err)
		}
		b.HasParams = true
	}

	prefix := ""
	if dir := path.Dir(b.DocumentName); dir != "." {
		prefix = dir + "/"
	}
	for name, content := range entries {
		if name == b.DocumentName {
			continue
		}
		b.Files[strings.TrimPrefix(name, prefix)] = content
	}

	o.logger.Debug("archive unpacked", "document", b.DocumentName, "files", len(b.Files), "params", b.HasParams)
	return b, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer rc.Close()
	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
	}
	return content, nil
}

// Pack writes the document under the quiz file name plus every payload.
func Pack(w io.Writer, doc string, payloads map[string][]byte, opts ...Option) error {
	o := newOptions(opts)
	zw := zip.NewWriter(w)

	if err := writeEntry(zw, o.settings.QuizFile, []byte(doc)); err != nil {
		return err
	}
	names := make([]string, 0, len(payloads))
	for name := range payloads {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writeEntry(zw, name, payloads[name]); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish archive: %w", err)
	}

	o.logger.Debug("archive packed", "files", len(names)+1)
	return nil
}

func writeEntry(zw *zip.Writer, name string, content []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("failed to add %s: %w", name, err)
	}
	if _, err := w.Write(content); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
