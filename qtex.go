package qtex

import (
	"context"
	"log/slog"

	"github.com/aretw0/qtex/internal/platform"
	"github.com/aretw0/qtex/pkg/adapters/tex"
	"github.com/aretw0/qtex/pkg/core"
)

// --- Types ---

// Question is a public alias for the question record interface.
type Question = core.Question

// Warning is a public alias for a recorded soft failure.
type Warning = core.Warning

// Runtime is a public alias for a wired qtex instance.
type Runtime = platform.Runtime

// --- Configuration ---

// Option defines a functional option for configuring qtex.
type Option = platform.Option

// WithLogger sets the logger for every component.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithAliases replaces the macro vocabulary.
func WithAliases(t *core.AliasTable) Option {
	return platform.WithAliases(t)
}

// WithSettings overrides the format settings.
func WithSettings(s core.Settings) Option {
	return platform.WithSettings(s)
}

// WithRenderTarget selects the formula dialect used on import.
func WithRenderTarget(t core.RenderTarget) Option {
	return platform.WithRenderTarget(t)
}

// WithGradingScheme selects the grading scheme by name.
func WithGradingScheme(name string) Option {
	return platform.WithGradingScheme(name)
}

// WithWarningSink receives every warning as it is recorded.
func WithWarningSink(s core.WarningSink) Option {
	return platform.WithWarningSink(s)
}

// WithBank injects a question bank.
func WithBank(bank core.Bank) Option {
	return platform.WithBank(bank)
}

// WithStore opens an SQL question bank ("sqlite" or "postgres").
func WithStore(driver, dsn string) Option {
	return platform.WithStore(driver, dsn)
}

// --- Factory ---

// New creates a qtex Runtime.
func New(ctx context.Context, opts ...Option) (*Runtime, error) {
	return platform.New(ctx, opts...)
}

// --- Operations ---

// Parse converts a QuestionTeX document into question records.
// resolver may be nil when the document includes no images.
func Parse(doc string, resolver core.ImageResolver, opts ...Option) ([]Question, []Warning, error) {
	rt, err := New(context.Background(), opts...)
	if err != nil {
		return nil, nil, err
	}
	defer rt.Close()
	return rt.Service.Import(rt.Parser(tex.WithResolver(resolver)), doc)
}

// Serialize renders question records as a QuestionTeX document and returns
// the image payloads keyed by include name.
func Serialize(qs []Question, opts ...Option) (string, map[string][]byte, error) {
	rt, err := New(context.Background(), opts...)
	if err != nil {
		return "", nil, err
	}
	defer rt.Close()
	return rt.Service.Export(rt.Serializer(), qs)
}

// FindRoot recursively looks upwards for a qtex.yaml file or .qtex directory.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}
