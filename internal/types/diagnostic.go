package types

import "fmt"

// Severity of a diagnostic
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// DiagnosticKind names the failure class a diagnostic reports
type DiagnosticKind string

const (
	DiagParseError      DiagnosticKind = "ParseError"
	DiagAnalysisError   DiagnosticKind = "AnalysisError"
	DiagConfigReadError DiagnosticKind = "ConfigReadError"
	DiagFileSkipped     DiagnosticKind = "FileSkipped"
)

// Diagnostic is returned next to results instead of being printed, so the
// caller decides whether to log, fail or ignore it.
type Diagnostic struct {
	Severity Severity       `json:"severity" yaml:"severity"`
	Kind     DiagnosticKind `json:"kind" yaml:"kind"`
	Path     string         `json:"path,omitempty" yaml:"path,omitempty"`
	Message  string         `json:"message" yaml:"message"`
}

// Warning builds a warning diagnostic from err
func Warning(kind DiagnosticKind, path string, err error) Diagnostic {
	return Diagnostic{Severity: SeverityWarning, Kind: kind, Path: path, Message: err.Error()}
}

// String formats the diagnostic for a log line
func (d Diagnostic) String() string {
	if d.Path != "" {
		return fmt.Sprintf("%s %s %s: %s", d.Severity, d.Kind, d.Path, d.Message)
	}
	return fmt.Sprintf("%s %s: %s", d.Severity, d.Kind, d.Message)
}
