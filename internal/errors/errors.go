package errors

import (
	"fmt"
	"time"
)

// ErrorType classifies failures raised while analyzing a source tree
type ErrorType string

const (
	ErrorTypeParse ErrorType = "parse"

	// File errors
	ErrorTypeFileNotFound ErrorType = "file_not_found"
	ErrorTypeFileTooLarge ErrorType = "file_too_large"
	ErrorTypePermission   ErrorType = "permission"

	ErrorTypeConfig            ErrorType = "config"
	ErrorTypeUnsupportedFormat ErrorType = "unsupported_format"

	ErrorTypeAnalysis ErrorType = "analysis"
	ErrorTypeInternal ErrorType = "internal"
)

// ParseError is returned by the parser front end when a file cannot be
// turned into a syntax tree. The pipeline skips the file and keeps going.
type ParseError struct {
	Type       ErrorType
	FilePath   string
	Language   string
	Line       int
	Column     int
	Underlying error
	Timestamp  time.Time
}

// NewParseError creates a new parse error
func NewParseError(path, language string, err error) *ParseError {
	return &ParseError{
		Type:       ErrorTypeParse,
		FilePath:   path,
		Language:   language,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// WithPosition records the first position the grammar could not parse
func (e *ParseError) WithPosition(line, column int) *ParseError {
	e.Line = line
	e.Column = column
	return e
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s (%s) at %d:%d: %v",
			e.FilePath, e.Language, e.Line, e.Column, e.Underlying)
	}
	return fmt.Sprintf("parse error in %s (%s): %v", e.FilePath, e.Language, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ParseError) Unwrap() error {
	return e.Underlying
}

// AnalysisError wraps a failure of a per-file analyzer
type AnalysisError struct {
	Type        ErrorType
	FilePath    string
	Analyzer    string
	Underlying  error
	Timestamp   time.Time
	Recoverable bool
}

// NewAnalysisError creates a new analysis error with context
func NewAnalysisError(analyzer string, err error) *AnalysisError {
	return &AnalysisError{
		Type:        ErrorTypeAnalysis,
		Analyzer:    analyzer,
		Underlying:  err,
		Timestamp:   time.Now(),
		Recoverable: true,
	}
}

// WithFile adds file information to the error
func (e *AnalysisError) WithFile(path string) *AnalysisError {
	e.FilePath = path
	return e
}

// WithRecoverable marks whether the run may continue without this file
func (e *AnalysisError) WithRecoverable(recoverable bool) *AnalysisError {
	e.Recoverable = recoverable
	return e
}

// Error implements the error interface
func (e *AnalysisError) Error() string {
	if e.FilePath != "" {
		return fmt.Sprintf("%s analyzer failed for %s: %v", e.Analyzer, e.FilePath, e.Underlying)
	}
	return fmt.Sprintf("%s analyzer failed: %v", e.Analyzer, e.Underlying)
}

// Unwrap returns the underlying error for errors.Is/As
func (e *AnalysisError) Unwrap() error {
	return e.Underlying
}

// IsRecoverable reports whether the file can be dropped and the run continued
func (e *AnalysisError) IsRecoverable() bool {
	return e.Recoverable
}

// FileError represents a file-related error
type FileError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewFileError creates a new file error
func NewFileError(op, path string, err error) *FileError {
	errorType := ErrorTypeFileNotFound
	if isPermissionError(err) {
		errorType = ErrorTypePermission
	}

	return &FileError{
		Type:       errorType,
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// NewFileTooLargeError reports a file skipped because of its size
func NewFileTooLargeError(path string, size, limit int64) *FileError {
	return &FileError{
		Type:       ErrorTypeFileTooLarge,
		Path:       path,
		Operation:  "read",
		Underlying: fmt.Errorf("%d bytes exceeds limit of %d", size, limit),
		Timestamp:  time.Now(),
	}
}

func isPermissionError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return errStr == "permission denied" || errStr == "access denied"
}

// Error implements the error interface
func (e *FileError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *FileError) Unwrap() error {
	return e.Underlying
}

// ConfigError is raised when a settings document is unreadable or invalid.
// Callers recover by falling back to the built-in defaults.
type ConfigError struct {
	Path       string
	Field      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(path, field string, err error) *ConfigError {
	return &ConfigError{
		Path:       path,
		Field:      field,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in %s (field %s): %v", e.Path, e.Field, e.Underlying)
	}
	return fmt.Sprintf("config error in %s: %v", e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// UnsupportedFormatError is returned when no renderer is registered for the
// requested output format. It is fatal for the run.
type UnsupportedFormatError struct {
	Format     string
	Suggestion string
	Available  []string
}

// NewUnsupportedFormatError creates a new unsupported format error
func NewUnsupportedFormatError(format, suggestion string, available []string) *UnsupportedFormatError {
	return &UnsupportedFormatError{
		Format:     format,
		Suggestion: suggestion,
		Available:  available,
	}
}

// Error implements the error interface
func (e *UnsupportedFormatError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unsupported output format %q (did you mean %q?)", e.Format, e.Suggestion)
	}
	return fmt.Sprintf("unsupported output format %q (available: %v)", e.Format, e.Available)
}
