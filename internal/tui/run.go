package tui

import (
	"context"
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the watcher until the user quits or ctx is cancelled.
// The session is closed on return.
func Run(ctx context.Context, s Session, opts Options, in io.Reader, out io.Writer) error {
	defer s.Close()

	p := tea.NewProgram(NewModel(s, opts),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
