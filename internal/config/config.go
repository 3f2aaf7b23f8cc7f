package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/go-playground/validator/v10"

	cwerrors "github.com/standardbeagle/contextweaver/internal/errors"
)

const (
	// ConfigFile is the tool configuration looked up in the analysed root and the home directory
	ConfigFile = ".contextweaver.kdl"

	DefaultOutputFormat = "markdown"
	DefaultOutputPath   = "analysis_report.md"
	DefaultMaxFileSize  = 10 * 1024 * 1024
	DefaultDebounceMs   = 300
)

// Config drives one contextweaver run. AnalysisSettings select the files;
// Config controls how they are processed and where the report goes.
type Config struct {
	Project     Project
	Output      Output
	Performance Performance
	Index       Index
	// Include lists extra extensions added to the included set
	Include []string
	// Exclude lists extra directory names or doublestar globs
	Exclude []string
}

type Project struct {
	Root string `validate:"required"`
	Name string
}

type Output struct {
	Format string `validate:"required"`
	Path   string `validate:"required"`
}

type Performance struct {
	Workers    int `validate:"gte=0"` // 0 = runtime.NumCPU()
	DebounceMs int `validate:"gte=0"` // watch mode event coalescing
}

type Index struct {
	MaxFileSize      int64 `validate:"gt=0"`
	RespectGitignore bool
	StrictParse      bool // syntax errors fail a file instead of being tolerated
}

// Default returns the configuration used when no .contextweaver.kdl exists
func Default(root string) *Config {
	return &Config{
		Project: Project{Root: root, Name: filepath.Base(root)},
		Output:  Output{Format: DefaultOutputFormat, Path: DefaultOutputPath},
		Performance: Performance{
			Workers:    runtime.NumCPU(),
			DebounceMs: DefaultDebounceMs,
		},
		Index: Index{
			MaxFileSize:      DefaultMaxFileSize,
			RespectGitignore: true,
		},
		Include: []string{},
		Exclude: []string{},
	}
}

// Load reads the tool configuration for root. A global ~/.contextweaver.kdl
// provides the base; path (resolved against root when relative) overrides it.
// Missing files are not an error.
func Load(path, root string) (*Config, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		absRoot = root
	}
	if path == "" {
		path = ConfigFile
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(absRoot, path)
	}

	var base *Config
	if home, err := os.UserHomeDir(); err == nil {
		globalPath := filepath.Join(home, ConfigFile)
		if globalPath != path {
			if cfg, err := LoadKDL(globalPath, absRoot); err == nil && cfg != nil {
				base = cfg
			}
		}
	}

	project, err := LoadKDL(path, absRoot)
	if err != nil {
		return nil, err
	}

	var cfg *Config
	switch {
	case base != nil && project != nil:
		cfg = mergeConfigs(base, project)
	case project != nil:
		cfg = project
	case base != nil:
		cfg = base
	default:
		cfg = Default(absRoot)
	}
	cfg.Project.Root = absRoot
	if cfg.Project.Name == "" {
		cfg.Project.Name = filepath.Base(absRoot)
	}

	if err := cfg.Validate(); err != nil {
		return nil, cwerrors.NewConfigError(path, fieldOf(err), err)
	}
	return cfg, nil
}

var configValidate = validator.New()

// Validate checks the configuration and fills the worker count when unset
func (c *Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return err
	}
	if c.Performance.Workers == 0 {
		c.Performance.Workers = runtime.NumCPU()
	}
	return nil
}

// mergeConfigs layers a project config over a global one. Exclusions
// accumulate; includes from the project replace the global ones.
func mergeConfigs(base, project *Config) *Config {
	merged := *project
	merged.Exclude = DeduplicatePatterns(append(append([]string{}, base.Exclude...), project.Exclude...))
	if len(project.Include) == 0 && len(base.Include) > 0 {
		merged.Include = base.Include
	}
	return &merged
}

// Apply returns settings extended with this config's include and exclude
// entries and with build output directories detected under the root
func (c *Config) Apply(s AnalysisSettings) AnalysisSettings {
	out := s.Clone()
	out.IncludedExtensions = DeduplicatePatterns(append(out.IncludedExtensions, c.Include...))

	excludes := append(out.ExcludePatterns, c.Exclude...)
	if c.Project.Root != "" {
		excludes = append(excludes, NewBuildArtifactDetector(c.Project.Root).DetectOutputDirectories()...)
	}
	out.ExcludePatterns = DeduplicatePatterns(excludes)
	return out
}

// DeduplicatePatterns removes repeated entries, keeping first occurrences in order
func DeduplicatePatterns(patterns []string) []string {
	seen := make(map[string]bool, len(patterns))
	result := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		result = append(result, p)
	}
	return result
}
