package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/pbconsole/internal/cli/output"
	"github.com/leapstack-labs/pbconsole/internal/ui/features/common"
	"github.com/leapstack-labs/pbconsole/pkg/core"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// PlaybooksOptions holds options for the playbooks command.
type PlaybooksOptions struct {
	State string
}

// NewPlaybooksCommand creates the playbooks command.
func NewPlaybooksCommand() *cobra.Command {
	opts := &PlaybooksOptions{}

	cmd := &cobra.Command{
		Use:     "playbooks",
		Aliases: []string{"ls"},
		Short:   "List playbooks reported by the backend",
		Long: `List every playbook the backend reports, with its type, state and start time.

Output is a table on a terminal and JSON otherwise; use -o to choose.`,
		Example: `  # Table of all playbooks
  pbconsole playbooks

  # Running playbooks as JSON
  pbconsole playbooks --state RUNNING -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlaybooks(cmd, opts)
		},
	}

	cmd.Flags().StringP("output", "o", "", "Output format (auto|text|json)")
	cmd.Flags().StringVar(&opts.State, "state", "", "Only show playbooks in this state (e.g. RUNNING, END)")

	_ = cmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "text", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runPlaybooks(cmd *cobra.Command, opts *PlaybooksOptions) error {
	cc := NewCommandContext(cmd)

	client, err := cc.Backend()
	if err != nil {
		return err
	}
	playbooks, err := client.Playbooks(cmd.Context())
	if err != nil {
		return err
	}

	if opts.State != "" {
		filtered := playbooks[:0:0]
		for _, pb := range playbooks {
			if strings.EqualFold(string(pb.State), opts.State) {
				filtered = append(filtered, pb)
			}
		}
		playbooks = filtered
	}

	r := cc.Renderer
	if r.Mode() == output.ModeJSON {
		if playbooks == nil {
			playbooks = []core.Playbook{}
		}
		return r.JSON(playbooks)
	}

	if len(playbooks) == 0 {
		r.Muted("No playbooks.")
		return nil
	}

	title := cases.Title(language.English)
	styles := r.Styles()
	rows := make([]table.Row, 0, len(playbooks))
	for _, pb := range playbooks {
		state := common.OrDash(string(pb.State))
		switch pb.State {
		case core.PlaybookRunning:
			state = styles.Success.Render(state)
		case core.PlaybookEnded:
			state = styles.Error.Render(state)
		}
		rows = append(rows, table.Row{
			pb.ID,
			pb.Name,
			common.OrDash(title.String(pb.Type)),
			state,
			common.OrDash(pb.CreatedBy),
			common.FormatDate(pb.Started),
		})
	}

	r.Table(table.Row{"ID", "Name", "Type", "State", "Created by", "Started"}, rows)
	_, _ = fmt.Fprintf(r.Out(), "%d playbook(s)\n", len(playbooks))
	return nil
}
