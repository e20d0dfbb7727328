package commands

import (
	"fmt"

	"github.com/leapstack-labs/pbconsole/internal/catalog"
	"github.com/leapstack-labs/pbconsole/internal/cli/config"
	"github.com/leapstack-labs/pbconsole/internal/feed"
	"github.com/leapstack-labs/pbconsole/internal/ui"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web console",
		Long: `Start the web console: a login page, the systems overview and a live
dashboard per playbook, kept current by polling the backend.`,
		Example: `  # Serve on the default port against a local backend
  pbconsole serve --backend-url http://localhost:3000

  # Custom port and systems catalog
  pbconsole serve --port 9000 --systems ./systems.yaml`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().Int("port", 0, "Port to serve on (default: 8080)")
	cmd.Flags().String("systems", "", "Systems catalog file (default: systems.yaml)")
	cmd.Flags().Duration("poll-interval", 0, "Dashboard poll interval (default: 10s)")
	config.BindFlag(cmd.Flags(), "port", "ui.port")
	config.BindFlag(cmd.Flags(), "systems", "systems_file")
	config.BindFlag(cmd.Flags(), "poll-interval", "poll.interval")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cc := NewCommandContext(cmd)
	cfg := cc.Cfg

	if err := cfg.ValidateUI(); err != nil {
		return err
	}
	if cfg.UI.SessionSecret == config.DefaultSessionSecret {
		cc.Renderer.Warning("using the built-in session secret; set ui.session_secret for shared deployments")
	}

	client, err := cc.Backend()
	if err != nil {
		return err
	}
	systems, err := catalog.Open(cfg.SystemsFile)
	if err != nil {
		return err
	}

	server := ui.NewServer(ui.Config{
		Backend:       client,
		Systems:       systems,
		Port:          cfg.UI.Port,
		SessionSecret: cfg.UI.SessionSecret,
		Username:      cfg.UI.Username,
		Password:      cfg.UI.Password,
		Poll: feed.Options{
			Interval:    cfg.Poll.Interval,
			SettleDelay: cfg.Poll.SettleDelay,
		},
		Highlight: cfg.Highlight.Duration,
		Logger:    cc.Logger,
	})

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Starting console on http://localhost:%d (backend %s)\n", cfg.UI.Port, client.BaseURL())
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")

	return server.Serve(cmd.Context())
}
