package commands

import (
	"context"

	"github.com/grovekit/grove/internal/cli/config"
)

// configKey is used to store the CLI config in the command context.
type configKey struct{}

// WithConfig stores the CLI config in the context for command handlers.
func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	// Default config when none was loaded (e.g. in tests)
	return &config.Config{
		OutputFormat: config.DefaultOutput,
		ServePort:    config.DefaultServePort,
	}
}
