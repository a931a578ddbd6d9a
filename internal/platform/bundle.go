package platform

import (
	"io"

	"github.com/aretw0/qtex/pkg/adapters/archive"
	"github.com/aretw0/qtex/pkg/adapters/moodlexml"
	"github.com/aretw0/qtex/pkg/adapters/tex"
	"github.com/aretw0/qtex/pkg/core"
)

// BundleOptions turns the images and parameter file of a bundle into parser
// options. Bundle parameters take precedence over the runtime configuration.
func BundleOptions(b *archive.Bundle) ([]tex.Option, error) {
	opts := []tex.Option{tex.WithResolver(b.Resolver())}
	if !b.HasParams {
		return opts, nil
	}
	if b.Params.RenderEngine != "" {
		target, err := b.Params.RenderTarget()
		if err != nil {
			return nil, err
		}
		opts = append(opts, tex.WithRenderTarget(target))
	}
	if b.Params.GradingScheme != "" {
		grader, err := b.Params.Grader()
		if err != nil {
			return nil, err
		}
		opts = append(opts, tex.WithGrader(grader))
	}
	return opts, nil
}

// ImportBundle parses the document of b. extra options are applied last.
func (r *Runtime) ImportBundle(b *archive.Bundle, extra ...tex.Option) ([]core.Question, []core.Warning, error) {
	opts, err := BundleOptions(b)
	if err != nil {
		return nil, nil, err
	}
	return r.Service.Import(r.Parser(append(opts, extra...)...), b.Document)
}

// XMLFor returns a Moodle XML codec whose default grades follow the grading
// scheme of b, falling back to the runtime scheme.
func (r *Runtime) XMLFor(b *archive.Bundle) (*moodlexml.Codec, error) {
	if !b.HasParams || b.Params.GradingScheme == "" {
		return r.XML(), nil
	}
	grader, err := b.Params.Grader()
	if err != nil {
		return nil, err
	}
	return r.XML(moodlexml.WithGrader(grader)), nil
}

// ExportArchive writes questions as a zip holding the document and its images.
func (r *Runtime) ExportArchive(w io.Writer, qs []core.Question) error {
	doc, payloads, err := r.Service.Export(r.Serializer(), qs)
	if err != nil {
		return err
	}
	return archive.Pack(w, doc, payloads, archive.WithSettings(r.o.settings), archive.WithLogger(r.Logger))
}

// Unpack reads a zip upload with the runtime settings.
func (r *Runtime) Unpack(data []byte) (*archive.Bundle, error) {
	return archive.Unpack(data, archive.WithSettings(r.o.settings), archive.WithLogger(r.Logger))
}
