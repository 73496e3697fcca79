// Package config provides configuration management for the starsql CLI.
//
// Settings are layered: built-in defaults, then a starsql.yaml config file,
// then STARSQL_* environment variables, then command-line flags.
package config

import "context"

// Defaults.
const (
	DefaultDatabase    = ":memory:"
	DefaultOutput      = "table"
	DefaultHistoryFile = ".starsql_history"
)

// Config holds all CLI configuration options.
type Config struct {
	Database    string `koanf:"database"`
	Output      string `koanf:"output"`
	HistoryFile string `koanf:"history_file"`
	Verbose     bool   `koanf:"verbose"`
}

type configKey struct{}

// WithConfig stores the config in the context.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from the context, falling back to
// defaults when none was stored.
func FromContext(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	return &Config{
		Database:    DefaultDatabase,
		Output:      DefaultOutput,
		HistoryFile: DefaultHistoryFile,
	}
}
