package commands

import (
	"log/slog"

	"github.com/leapstack-labs/pbconsole/internal/backend"
	"github.com/leapstack-labs/pbconsole/internal/cli/config"
	"github.com/leapstack-labs/pbconsole/internal/cli/output"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext collects the config, logger and renderer of a command.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := config.FromContext(cmd.Context())
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Output)),
	}
}

// Backend creates a client for the configured backend.
func (c *CommandContext) Backend() (*backend.Client, error) {
	return backend.NewClient(c.Cfg.BackendURL, backend.WithLogger(c.Logger))
}
