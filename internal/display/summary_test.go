package display

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/standardbeagle/contextweaver/internal/types"
)

func TestPrinter_PlainWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	assert.False(t, IsTerminal(&buf))

	p.PrintSummary(Summary{
		Files:      12,
		Modules:    3,
		OutputPath: "analysis_report.md",
		Duration:   1500 * time.Millisecond,
	})

	want := "contextweaver analysis complete\n" +
		"Files analyzed: 12\n" +
		"Modules: 3\n" +
		"Warnings: 0\n" +
		"Report: analysis_report.md\n" +
		"Duration: 1.5s\n"
	assert.Equal(t, want, buf.String())
}

func TestPrinter_WarningsAndCycles(t *testing.T) {
	var buf bytes.Buffer
	p := NewPlainPrinter(&buf)

	diags := []types.Diagnostic{
		{Severity: types.SeverityWarning, Kind: types.DiagParseError, Path: "Bad.cs", Message: "unexpected token"},
	}
	p.PrintSummary(Summary{Files: 1, Cycles: 2, Diagnostics: diags})
	assert.Contains(t, buf.String(), "Dependency cycles: 2\n")
	assert.Contains(t, buf.String(), "Warnings: 1\n")
	assert.NotContains(t, buf.String(), "Report:")

	buf.Reset()
	p.PrintDiagnostics(diags)
	assert.Equal(t, "⚠ warning ParseError Bad.cs: unexpected token\n", buf.String())
}

func TestPrinter_Messages(t *testing.T) {
	var buf bytes.Buffer
	p := NewPlainPrinter(&buf)
	p.Success("wrote settings")
	p.Info("watching for changes")
	assert.Equal(t, "✓ wrote settings\nwatching for changes\n", buf.String())
}
