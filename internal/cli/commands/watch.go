package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/leapstack-labs/pbconsole/internal/cli/config"
	"github.com/leapstack-labs/pbconsole/internal/feed"
	"github.com/leapstack-labs/pbconsole/internal/tui"
	"github.com/spf13/cobra"
)

// WatchOptions holds options for the watch command.
type WatchOptions struct {
	LogFile  string
	LogLines int
}

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	opts := &WatchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <playbook-id>",
		Short: "Follow a playbook in the terminal",
		Long: `Follow one playbook in the terminal: its state, the execution flow with
changed steps highlighted, and the latest console lines.

Press r to refresh now and q to quit. The terminal owns the screen while
watching, so logs go to --log-file when one is given and are dropped otherwise.`,
		Example: `  pbconsole watch pb-001
  pbconsole watch pb-001 --log-file watch.log -v`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.LogFile, "log-file", "", "Write logs to this file while watching")
	cmd.Flags().IntVar(&opts.LogLines, "log-lines", tui.DefaultLogLines, "Number of console lines to show")

	return cmd
}

func runWatch(cmd *cobra.Command, playbookID string, opts *WatchOptions) error {
	cc := NewCommandContext(cmd)
	cfg := cc.Cfg

	logger := slog.New(slog.DiscardHandler)
	if opts.LogFile != "" {
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer func() { _ = f.Close() }()
		logger = config.NewLogger(f, cfg.LogFormat, cfg.Verbose)
	}
	cc.Logger = logger

	client, err := cc.Backend()
	if err != nil {
		return err
	}

	session := feed.NewSession(client, playbookID, feed.Options{
		Interval:    cfg.Poll.Interval,
		SettleDelay: cfg.Poll.SettleDelay,
		Logger:      logger,
	})
	session.Start(cmd.Context())

	styles := tui.NewStyles(cc.Renderer.Lipgloss())
	return tui.Run(cmd.Context(), session, tui.Options{
		Highlight: cfg.Highlight.Duration,
		LogLines:  opts.LogLines,
		Styles:    &styles,
	}, cmd.InOrStdin(), cmd.OutOrStdout())
}
