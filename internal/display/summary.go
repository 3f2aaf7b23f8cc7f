// Package display prints run summaries for people at a terminal.
package display

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/standardbeagle/contextweaver/internal/types"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#20B9B4"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	valueStyle   = lipgloss.NewStyle().Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F4D03F"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#2CD7C7")).Bold(true)
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#16858E")).Padding(0, 1)
)

// Summary is what the CLI reports at the end of a run
type Summary struct {
	Files       int
	Modules     int
	Cycles      int
	Diagnostics []types.Diagnostic
	OutputPath  string
	Duration    time.Duration
}

// Printer writes summaries, styled when the destination is a terminal
type Printer struct {
	w      io.Writer
	styled bool
}

// NewPrinter creates a printer for w. Styling is enabled only when w is a terminal.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, styled: IsTerminal(w)}
}

// NewPlainPrinter creates a printer that never styles its output
func NewPlainPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// IsTerminal reports whether w is a terminal file descriptor
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *Printer) render(style lipgloss.Style, s string) string {
	if !p.styled {
		return s
	}
	return style.Render(s)
}

// PrintSummary writes the end-of-run summary
func (p *Printer) PrintSummary(s Summary) {
	lines := []string{
		p.render(titleStyle, "contextweaver analysis complete"),
		p.row("Files analyzed", fmt.Sprint(s.Files)),
		p.row("Modules", fmt.Sprint(s.Modules)),
	}
	if s.Cycles > 0 {
		lines = append(lines, p.render(warningStyle, fmt.Sprintf("Dependency cycles: %d", s.Cycles)))
	}
	if n := len(s.Diagnostics); n > 0 {
		lines = append(lines, p.render(warningStyle, fmt.Sprintf("Warnings: %d", n)))
	} else {
		lines = append(lines, p.row("Warnings", "0"))
	}
	if s.OutputPath != "" {
		lines = append(lines, p.row("Report", s.OutputPath))
	}
	if s.Duration > 0 {
		lines = append(lines, p.row("Duration", s.Duration.Round(time.Millisecond).String()))
	}

	if p.styled {
		fmt.Fprintln(p.w, boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
		return
	}
	for _, l := range lines {
		fmt.Fprintln(p.w, l)
	}
}

func (p *Printer) row(label, value string) string {
	return p.render(labelStyle, label+": ") + p.render(valueStyle, value)
}

// PrintDiagnostics writes one line per diagnostic
func (p *Printer) PrintDiagnostics(diags []types.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(p.w, p.render(warningStyle, "⚠ "+d.String()))
	}
}

// Success writes a one-line confirmation
func (p *Printer) Success(msg string) {
	fmt.Fprintln(p.w, p.render(successStyle, "✓ "+msg))
}

// Info writes a plain status line
func (p *Printer) Info(msg string) {
	fmt.Fprintln(p.w, p.render(labelStyle, msg))
}
