package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	cwerrors "github.com/standardbeagle/contextweaver/internal/errors"
	"github.com/standardbeagle/contextweaver/internal/types"
)

const (
	// LocalSettingsFile is the per-directory override looked up in the analysed root
	LocalSettingsFile = ".contextweaver.json"
	// GlobalSettingsFile is the user-level document under the config directory
	GlobalSettingsFile = "appsettings.json"
	// SettingsSection is the top-level key both documents store their settings under
	SettingsSection = "AnalysisSettings"
)

// AnalysisSettings selects which files of a tree are analysed
type AnalysisSettings struct {
	IncludedExtensions []string `json:"IncludedExtensions" validate:"dive,startswith=.,min=2"`
	ExcludePatterns    []string `json:"ExcludePatterns" validate:"dive,required"`
}

// DefaultSettings returns the built-in settings used when no valid document is found
func DefaultSettings() AnalysisSettings {
	return AnalysisSettings{
		IncludedExtensions: []string{
			".cs", ".csproj", ".sln", ".json", ".ts", ".html", ".scss", ".css", ".md",
		},
		ExcludePatterns: []string{
			"bin", "obj", "node_modules", ".angular", ".vs", "dist", "wwwroot",
			"Publish", "packages", "Scripts", "Content",
		},
	}
}

// Clone returns a deep copy so callers can modify the lists freely
func (s AnalysisSettings) Clone() AnalysisSettings {
	return AnalysisSettings{
		IncludedExtensions: append([]string(nil), s.IncludedExtensions...),
		ExcludePatterns:    append([]string(nil), s.ExcludePatterns...),
	}
}

// IsEmpty reports whether neither list carries an entry
func (s AnalysisSettings) IsEmpty() bool {
	return len(s.IncludedExtensions) == 0 && len(s.ExcludePatterns) == 0
}

// Includes reports whether a path's extension is selected. Comparison is
// case-insensitive.
func (s AnalysisSettings) Includes(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	for _, e := range s.IncludedExtensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

type settingsDocument struct {
	AnalysisSettings *AnalysisSettings `json:"AnalysisSettings"`
}

var settingsValidate = validator.New()

// ValidateSettings checks every extension starts with a dot and no exclude
// pattern is blank
func ValidateSettings(s AnalysisSettings) error {
	return settingsValidate.Struct(s)
}

// SettingsProvider resolves the settings for an analysed directory.
//
// The base comes from the global document, which is created with the
// built-in defaults when it does not exist yet. A local .contextweaver.json
// replaces the base entirely when it is valid. Problems never abort a run:
// they fall back to the previous layer and are reported as diagnostics.
type SettingsProvider struct {
	GlobalPath string
}

// NewSettingsProvider returns a provider reading the global document at
// globalPath, or at DefaultGlobalSettingsPath when globalPath is empty
func NewSettingsProvider(globalPath string) *SettingsProvider {
	if globalPath == "" {
		globalPath = DefaultGlobalSettingsPath()
	}
	return &SettingsProvider{GlobalPath: globalPath}
}

// DefaultGlobalSettingsPath returns <user config dir>/contextweaver/appsettings.json
func DefaultGlobalSettingsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "contextweaver", GlobalSettingsFile)
}

// Load returns the settings for dir and any diagnostics produced while reading them
func (p *SettingsProvider) Load(dir string) (AnalysisSettings, []types.Diagnostic) {
	var diags []types.Diagnostic

	base, err := p.loadGlobal()
	if err != nil {
		diags = append(diags, types.Warning(types.DiagConfigReadError, p.GlobalPath, err))
		base = DefaultSettings()
	}

	localPath := filepath.Join(dir, LocalSettingsFile)
	if _, statErr := os.Stat(localPath); statErr != nil {
		return base, diags
	}

	local, err := ReadSettingsFile(localPath)
	if err != nil {
		diags = append(diags, types.Warning(types.DiagConfigReadError, localPath, err))
		return base, diags
	}
	return local, diags
}

func (p *SettingsProvider) loadGlobal() (AnalysisSettings, error) {
	if p.GlobalPath == "" {
		return DefaultSettings(), nil
	}
	if _, err := os.Stat(p.GlobalPath); errors.Is(err, os.ErrNotExist) {
		if err := WriteSettingsFile(p.GlobalPath, DefaultSettings()); err != nil {
			return DefaultSettings(), err
		}
		return DefaultSettings(), nil
	}
	return ReadSettingsFile(p.GlobalPath)
}

// ReadSettingsFile parses and validates a settings document. A list missing
// from the document is taken from the defaults; a document with both lists
// empty is rejected.
func ReadSettingsFile(path string) (AnalysisSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return AnalysisSettings{}, cwerrors.NewConfigError(path, "", err)
	}

	var doc settingsDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return AnalysisSettings{}, cwerrors.NewConfigError(path, "", err)
	}
	if doc.AnalysisSettings == nil {
		return AnalysisSettings{}, cwerrors.NewConfigError(path, SettingsSection,
			fmt.Errorf("section %q is missing", SettingsSection))
	}

	settings := *doc.AnalysisSettings
	if settings.IsEmpty() {
		return AnalysisSettings{}, cwerrors.NewConfigError(path, SettingsSection,
			errors.New("settings are empty"))
	}
	defaults := DefaultSettings()
	if len(settings.IncludedExtensions) == 0 {
		settings.IncludedExtensions = defaults.IncludedExtensions
	}
	if len(settings.ExcludePatterns) == 0 {
		settings.ExcludePatterns = defaults.ExcludePatterns
	}

	if err := ValidateSettings(settings); err != nil {
		return AnalysisSettings{}, cwerrors.NewConfigError(path, fieldOf(err), err)
	}
	return settings, nil
}

// WriteSettingsFile stores settings under the AnalysisSettings section,
// creating parent directories as needed
func WriteSettingsFile(path string, settings AnalysisSettings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return cwerrors.NewConfigError(path, "", err)
	}
	data, err := json.MarshalIndent(settingsDocument{AnalysisSettings: &settings}, "", "  ")
	if err != nil {
		return cwerrors.NewConfigError(path, "", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return cwerrors.NewConfigError(path, "", err)
	}
	return nil
}

func fieldOf(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Namespace()
	}
	return ""
}
