package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/contextweaver/internal/types"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestSettingsProvider_WritesGlobalDefault(t *testing.T) {
	globalPath := filepath.Join(t.TempDir(), "contextweaver", GlobalSettingsFile)
	provider := NewSettingsProvider(globalPath)

	settings, diags := provider.Load(t.TempDir())
	assert.Empty(t, diags)
	assert.Equal(t, DefaultSettings(), settings)

	written, err := ReadSettingsFile(globalPath)
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), written)
}

func TestSettingsProvider_UnwritableGlobalDefaultIsReported(t *testing.T) {
	// A path that does not exist yet but names a directory cannot be written as a file
	globalPath := filepath.Join(t.TempDir(), "contextweaver") + string(filepath.Separator)

	settings, diags := NewSettingsProvider(globalPath).Load(t.TempDir())
	assert.Equal(t, DefaultSettings(), settings)
	require.Len(t, diags, 1)
	assert.Equal(t, types.DiagConfigReadError, diags[0].Kind)
	assert.Equal(t, types.SeverityWarning, diags[0].Severity)
	assert.Equal(t, globalPath, diags[0].Path)
	assert.Contains(t, diags[0].Message, "config error in "+globalPath)
}

func TestSettingsProvider_GlobalDocumentUsed(t *testing.T) {
	globalPath := filepath.Join(t.TempDir(), GlobalSettingsFile)
	writeFile(t, globalPath, `{"AnalysisSettings": {"IncludedExtensions": [".cs"], "ExcludePatterns": ["bin"]}}`)

	settings, diags := NewSettingsProvider(globalPath).Load(t.TempDir())
	assert.Empty(t, diags)
	assert.Equal(t, AnalysisSettings{IncludedExtensions: []string{".cs"}, ExcludePatterns: []string{"bin"}}, settings)
}

func TestSettingsProvider_LocalOverride(t *testing.T) {
	globalPath := filepath.Join(t.TempDir(), GlobalSettingsFile)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, LocalSettingsFile),
		`{"AnalysisSettings": {"IncludedExtensions": [".cs", ".razor"], "ExcludePatterns": ["Legacy"]}}`)

	settings, diags := NewSettingsProvider(globalPath).Load(dir)
	assert.Empty(t, diags)
	assert.Equal(t, []string{".cs", ".razor"}, settings.IncludedExtensions)
	assert.Equal(t, []string{"Legacy"}, settings.ExcludePatterns)
}

func TestSettingsProvider_LocalPartialFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, LocalSettingsFile), `{"AnalysisSettings": {"IncludedExtensions": [".cs"]}}`)

	settings, diags := NewSettingsProvider(filepath.Join(t.TempDir(), GlobalSettingsFile)).Load(dir)
	assert.Empty(t, diags)
	assert.Equal(t, []string{".cs"}, settings.IncludedExtensions)
	assert.Equal(t, DefaultSettings().ExcludePatterns, settings.ExcludePatterns)
}

func TestSettingsProvider_FallbacksReportDiagnostics(t *testing.T) {
	tests := map[string]string{
		"malformed json":    `{"AnalysisSettings": [`,
		"missing section":   `{"Other": {}}`,
		"empty lists":       `{"AnalysisSettings": {"IncludedExtensions": [], "ExcludePatterns": []}}`,
		"extension no dot":  `{"AnalysisSettings": {"IncludedExtensions": ["cs"]}}`,
		"blank exclude":     `{"AnalysisSettings": {"ExcludePatterns": [""]}}`,
		"wrong value types": `{"AnalysisSettings": {"IncludedExtensions": ".cs"}}`,
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			localPath := filepath.Join(dir, LocalSettingsFile)
			writeFile(t, localPath, content)

			settings, diags := NewSettingsProvider(filepath.Join(t.TempDir(), GlobalSettingsFile)).Load(dir)
			assert.Equal(t, DefaultSettings(), settings)
			require.Len(t, diags, 1)
			assert.Equal(t, types.DiagConfigReadError, diags[0].Kind)
			assert.Equal(t, types.SeverityWarning, diags[0].Severity)
			assert.Equal(t, localPath, diags[0].Path)
		})
	}
}

func TestSettingsProvider_BrokenGlobalFallsBack(t *testing.T) {
	globalPath := filepath.Join(t.TempDir(), GlobalSettingsFile)
	writeFile(t, globalPath, `not json`)

	settings, diags := NewSettingsProvider(globalPath).Load(t.TempDir())
	assert.Equal(t, DefaultSettings(), settings)
	require.Len(t, diags, 1)
	assert.Equal(t, globalPath, diags[0].Path)
}

func TestAnalysisSettings_Includes(t *testing.T) {
	s := DefaultSettings()
	assert.True(t, s.Includes("src/Program.cs"))
	assert.True(t, s.Includes("src/PROGRAM.CS"))
	assert.True(t, s.Includes("Shop.csproj"))
	assert.False(t, s.Includes("app.js"))
	assert.False(t, s.Includes("Makefile"))
}

func TestValidateSettings(t *testing.T) {
	assert.NoError(t, ValidateSettings(DefaultSettings()))
	assert.Error(t, ValidateSettings(AnalysisSettings{IncludedExtensions: []string{"."}}))
	assert.Error(t, ValidateSettings(AnalysisSettings{IncludedExtensions: []string{"md"}}))
}
