package commands

import (
	"context"
	"log/slog"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/xovigen/internal/cli/config"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
	Fs     afero.Fs
}

// NewCommandContext collects the dependencies stored on the command's context.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	ctx := cmd.Context()
	return &CommandContext{
		Cfg:    getConfig(),
		Logger: config.GetLogger(ctx),
		Fs:     GetFs(ctx),
	}
}

// fsKey is used to store the filesystem in context.
type fsKey struct{}

// WithFs returns a context carrying fs for commands to read and write through.
func WithFs(ctx context.Context, fs afero.Fs) context.Context {
	return context.WithValue(ctx, fsKey{}, fs)
}

// GetFs retrieves the filesystem from the context, defaulting to the OS.
func GetFs(ctx context.Context) afero.Fs {
	if ctx != nil {
		if fs, ok := ctx.Value(fsKey{}).(afero.Fs); ok {
			return fs
		}
	}
	return afero.NewOsFs()
}

// getConfig returns the current configuration, or the defaults when none
// was loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{}
}
