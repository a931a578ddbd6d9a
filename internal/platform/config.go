package platform

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/aretw0/qtex/pkg/core"
)

// ConfigName is the base name of the configuration file (qtex.yaml).
const ConfigName = "qtex"

// Config holds settings loaded from qtex.yaml and QTEX_* environment variables.
type Config struct {
	RenderEngine      string       `mapstructure:"render_engine"`       // tex, mathjax or jsmath
	GradingScheme     string       `mapstructure:"grading_scheme"`      // default, akveld or akveld-exam
	CategoryFromTitle bool         `mapstructure:"category_from_title"` // use \quiztitle as category
	Newline           string       `mapstructure:"newline"`             // line ending of exported documents
	AliasFile         string       `mapstructure:"alias_file"`          // optional YAML vocabulary override
	Store             StoreConfig  `mapstructure:"store"`
	Server            ServerConfig `mapstructure:"server"`

	dir string
}

// StoreConfig selects the question bank database.
type StoreConfig struct {
	Driver string `mapstructure:"driver"` // sqlite, postgres or empty for none
	DSN    string `mapstructure:"dsn"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LoadConfig reads qtex.yaml from dir when present. Environment variables
// such as QTEX_RENDER_ENGINE or QTEX_STORE_DSN take precedence.
func LoadConfig(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(ConfigName)
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	}

	v.SetDefault("render_engine", string(core.DefaultRenderTarget))
	v.SetDefault("grading_scheme", "default")
	v.SetDefault("category_from_title", false)
	v.SetDefault("newline", "\r\n")
	v.SetDefault("alias_file", "")
	v.SetDefault("store.driver", "")
	v.SetDefault("store.dsn", "")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetEnvPrefix("QTEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if dir != "" {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error loading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	cfg.dir = dir
	return &cfg, nil
}

// Options converts the configuration into runtime options.
func (c *Config) Options() ([]Option, error) {
	target, err := core.ParseRenderTarget(c.RenderEngine)
	if err != nil {
		return nil, err
	}

	settings := core.DefaultSettings()
	settings.CategoryFromTitle = c.CategoryFromTitle
	if c.Newline != "" {
		settings.Newline = c.Newline
	}

	opts := []Option{
		WithRenderTarget(target),
		WithGradingScheme(c.GradingScheme),
		WithSettings(settings),
	}

	if c.AliasFile != "" {
		path := c.AliasFile
		if !filepath.IsAbs(path) && c.dir != "" {
			path = filepath.Join(c.dir, path)
		}
		table, err := LoadAliases(path)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithAliases(table))
	}

	if c.Store.Driver != "" {
		opts = append(opts, WithStore(c.Store.Driver, c.Store.DSN))
	}
	return opts, nil
}
