// Package output renders command results for terminals and pipes.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Mode selects how results are written.
type Mode string

// Output modes.
const (
	ModeAuto Mode = "auto" // TTY=text, non-TTY=json
	ModeText Mode = "text"
	ModeJSON Mode = "json"
)

// Styles holds the styles used for text output.
type Styles struct {
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Muted   lipgloss.Style
	Header  lipgloss.Style
}

// Renderer writes command output in the selected mode.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	lip    *lipgloss.Renderer
	styles Styles
}

// NewRenderer creates a renderer. In auto mode a terminal gets styled text and
// anything else gets JSON. Colours follow the terminal profile and NO_COLOR.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	tty := IsTerminal(out)
	if mode == "" || mode == ModeAuto {
		mode = ModeJSON
		if tty {
			mode = ModeText
		}
	}

	profile := termenv.Ascii
	if tty {
		profile = termenv.NewOutput(out).EnvColorProfile()
	}
	lip := lipgloss.NewRenderer(out, termenv.WithProfile(profile))

	return &Renderer{
		out:    out,
		errOut: errOut,
		mode:   mode,
		lip:    lip,
		styles: Styles{
			Success: lip.NewStyle().Foreground(lipgloss.Color("10")),
			Error:   lip.NewStyle().Foreground(lipgloss.Color("9")),
			Warning: lip.NewStyle().Foreground(lipgloss.Color("11")),
			Muted:   lip.NewStyle().Foreground(lipgloss.Color("8")),
			Header:  lip.NewStyle().Bold(true),
		},
	}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Mode returns the effective output mode.
func (r *Renderer) Mode() Mode {
	return r.mode
}

// Out returns the output writer.
func (r *Renderer) Out() io.Writer {
	return r.out
}

// Lipgloss returns the lipgloss renderer bound to the output.
func (r *Renderer) Lipgloss() *lipgloss.Renderer {
	return r.lip
}

// Styles returns the text styles.
func (r *Renderer) Styles() Styles {
	return r.styles
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Table writes rows under header as a light box-drawn table.
func (r *Renderer) Table(header table.Row, rows []table.Row) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	t.AppendRows(rows)
	t.Render()
}

// Success prints a success line.
func (r *Renderer) Success(msg string) {
	_, _ = fmt.Fprintln(r.out, r.styles.Success.Render("✓ "+msg))
}

// Warning prints a warning line on the error stream.
func (r *Renderer) Warning(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.Warning.Render("! "+msg))
}

// Muted prints a de-emphasised line.
func (r *Renderer) Muted(msg string) {
	_, _ = fmt.Fprintln(r.out, r.styles.Muted.Render(msg))
}
