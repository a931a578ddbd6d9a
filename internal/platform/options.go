package platform

import (
	"log/slog"

	"github.com/aretw0/qtex/pkg/adapters/sqlstore"
	"github.com/aretw0/qtex/pkg/core"
)

// options holds the internal configuration for the qtex runtime.
type options struct {
	logger   *slog.Logger
	aliases  *core.AliasTable
	settings core.Settings
	target   core.RenderTarget
	scheme   string
	sink     core.WarningSink
	bank     core.Bank
	driver   sqlstore.Driver
	dsn      string
}

// Option defines a functional option for configuring qtex.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		aliases:  core.DefaultAliases(),
		settings: core.DefaultSettings(),
		target:   core.DefaultRenderTarget,
	}
}

// WithLogger sets the logger for every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithAliases replaces the macro vocabulary.
func WithAliases(t *core.AliasTable) Option {
	return func(o *options) {
		if t != nil {
			o.aliases = t
		}
	}
}

// WithSettings overrides the format settings.
func WithSettings(s core.Settings) Option {
	return func(o *options) {
		o.settings = s
	}
}

// WithRenderTarget selects the formula dialect used on import.
func WithRenderTarget(t core.RenderTarget) Option {
	return func(o *options) {
		o.target = t
	}
}

// WithGradingScheme selects the grading scheme by name (see grading.Lookup).
// An unknown name makes New fail.
func WithGradingScheme(name string) Option {
	return func(o *options) {
		o.scheme = name
	}
}

// WithWarningSink receives every warning as it is recorded.
func WithWarningSink(s core.WarningSink) Option {
	return func(o *options) {
		o.sink = s
	}
}

// WithBank injects a question bank (e.g. a mock).
// If provided, WithStore is ignored.
func WithBank(bank core.Bank) Option {
	return func(o *options) {
		o.bank = bank
	}
}

// WithStore opens an SQL question bank. An empty driver disables the bank.
func WithStore(driver, dsn string) Option {
	return func(o *options) {
		o.driver = sqlstore.Driver(driver)
		o.dsn = dsn
	}
}
