package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aretw0/qtex/internal/platform"
)

var (
	renderEngine  string
	gradingScheme string
	storeDriver   string
	storeDSN      string
)

// loadConfig reads qtex.yaml from --config or the nearest project root and
// applies the command line overrides.
func loadConfig() (*platform.Config, error) {
	dir := configDir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		dir = cwd
		if root, err := platform.FindRoot(cwd); err == nil {
			dir = root
		}
	}

	cfg, err := platform.LoadConfig(dir)
	if err != nil {
		return nil, err
	}
	if renderEngine != "" {
		cfg.RenderEngine = renderEngine
	}
	if gradingScheme != "" {
		cfg.GradingScheme = gradingScheme
	}
	if storeDriver != "" {
		cfg.Store.Driver = storeDriver
	}
	if storeDSN != "" {
		cfg.Store.DSN = storeDSN
	}
	return cfg, nil
}

// newRuntime wires a runtime from the configuration. withStore=false skips
// opening the question bank for commands that never touch it.
func newRuntime(ctx context.Context, withStore bool) (*platform.Runtime, *platform.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if !withStore {
		cfg.Store.Driver = ""
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, nil, err
	}
	opts = append(opts, platform.WithLogger(slog.Default()))

	rt, err := platform.New(ctx, opts...)
	if err != nil {
		return nil, nil, err
	}
	return rt, cfg, nil
}
