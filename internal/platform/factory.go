package platform

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/qtex/pkg/adapters/moodlexml"
	"github.com/aretw0/qtex/pkg/adapters/sqlstore"
	"github.com/aretw0/qtex/pkg/adapters/tex"
	"github.com/aretw0/qtex/pkg/core"
	"github.com/aretw0/qtex/pkg/grading"
)

// Runtime is a wired qtex instance: the domain service, its optional question
// bank and factories for the format adapters sharing one configuration.
//
//	rt, err := platform.New(ctx, platform.WithGradingScheme("akveld"))
type Runtime struct {
	Service *core.Service
	Logger  *slog.Logger

	o      *options
	grader core.Grader
	store  *sqlstore.Store
}

// New builds a Runtime. When a store driver is configured the database is
// opened and its schema ensured.
func New(ctx context.Context, opts ...Option) (*Runtime, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if !o.target.Valid() {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownRenderTarget, o.target)
	}

	grader, err := grading.Lookup(o.scheme)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{Logger: o.logger, o: o, grader: grader}

	bank := o.bank
	if bank == nil && o.driver != "" {
		store, err := sqlstore.Open(ctx, o.driver, o.dsn, sqlstore.WithLogger(o.logger))
		if err != nil {
			return nil, fmt.Errorf("failed to open question bank: %w", err)
		}
		o.logger.Debug("question bank opened", "driver", o.driver)
		rt.store = store
		bank = store
	}

	rt.Service = core.NewService(bank)
	return rt, nil
}

// Grader returns the configured grading scheme.
func (r *Runtime) Grader() core.Grader {
	return r.grader
}

// Store returns the SQL bank opened by New, or nil.
func (r *Runtime) Store() *sqlstore.Store {
	return r.store
}

func (r *Runtime) sink() core.WarningSink {
	if r.o.sink != nil {
		return r.o.sink
	}
	return core.LogSink(r.Logger)
}

func (r *Runtime) texOptions(extra []tex.Option) []tex.Option {
	base := []tex.Option{
		tex.WithAliases(r.o.aliases),
		tex.WithSettings(r.o.settings),
		tex.WithRenderTarget(r.o.target),
		tex.WithGrader(r.grader),
		tex.WithWarningSink(r.sink()),
		tex.WithLogger(r.Logger),
	}
	return append(base, extra...)
}

// Parser returns a TeX parser. Per-document options such as an image
// resolver are passed as extra and override the runtime defaults.
func (r *Runtime) Parser(extra ...tex.Option) *tex.Parser {
	return tex.NewParser(r.texOptions(extra)...)
}

// Serializer returns a TeX serializer.
func (r *Runtime) Serializer(extra ...tex.Option) *tex.Serializer {
	return tex.NewSerializer(r.texOptions(extra)...)
}

// XML returns a Moodle XML codec.
func (r *Runtime) XML(extra ...moodlexml.Option) *moodlexml.Codec {
	base := []moodlexml.Option{
		moodlexml.WithGrader(r.grader),
		moodlexml.WithWarningSink(r.sink()),
		moodlexml.WithLogger(r.Logger),
	}
	return moodlexml.New(append(base, extra...)...)
}

// Settings returns the format settings in use.
func (r *Runtime) Settings() core.Settings {
	return r.o.settings
}

// Close releases the question bank if New opened one.
func (r *Runtime) Close() error {
	if r.store != nil {
		return r.store.Close()
	}
	return nil
}
