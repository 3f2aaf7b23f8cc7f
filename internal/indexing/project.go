package indexing

import (
	"context"
	"path/filepath"
	"time"

	"github.com/standardbeagle/contextweaver/internal/analysis"
	"github.com/standardbeagle/contextweaver/internal/config"
	"github.com/standardbeagle/contextweaver/internal/debug"
	"github.com/standardbeagle/contextweaver/internal/parser"
	"github.com/standardbeagle/contextweaver/internal/types"
)

// ProjectOptions are the per-invocation overrides layered over the
// configuration files of a project
type ProjectOptions struct {
	ConfigPath   string // tool config, default .contextweaver.kdl under the root
	SettingsPath string // global settings document, default under the user config dir
	Workers      int    // 0 keeps the configured value
	Include      []string
	Exclude      []string
	Strict       bool
	SkipFiles    []string // relative to the root
	Cache        *ResultCache
}

// Project bundles everything needed to analyze one root directory: the
// resolved configuration, the effective settings, the scanner and the pipeline
type Project struct {
	Config   *config.Config
	Settings config.AnalysisSettings
	Scanner  *FileScanner
	Pipeline *Pipeline

	// settingsDiags are reported with every analysis of the project
	settingsDiags []types.Diagnostic
}

// OpenProject loads the configuration of root. Settings problems fall back
// to defaults and surface as diagnostics; an invalid tool config is an error.
func OpenProject(root string, opts ProjectOptions) (*Project, error) {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}

	cfg, err := config.Load(opts.ConfigPath, root)
	if err != nil {
		return nil, err
	}
	if opts.Workers > 0 {
		cfg.Performance.Workers = opts.Workers
	}
	if opts.Strict {
		cfg.Index.StrictParse = true
	}
	cfg.Include = config.DeduplicatePatterns(append(cfg.Include, opts.Include...))
	cfg.Exclude = config.DeduplicatePatterns(append(cfg.Exclude, opts.Exclude...))

	settings, diags := config.NewSettingsProvider(opts.SettingsPath).Load(root)
	settings = cfg.Apply(settings)
	debug.LogPipeline("project %s: %d extensions, %d exclusions", root,
		len(settings.IncludedExtensions), len(settings.ExcludePatterns))

	scanner := NewFileScanner(root, settings, ScanOptions{
		MaxFileSize:      cfg.Index.MaxFileSize,
		RespectGitignore: cfg.Index.RespectGitignore,
		SkipFiles:        opts.SkipFiles,
	})
	aggregator := analysis.NewAggregator(parser.NewTreeSitterParser(parser.WithStrict(cfg.Index.StrictParse)), nil)
	pipelineOpts := []Option{WithWorkers(cfg.Performance.Workers)}
	if opts.Cache != nil {
		pipelineOpts = append(pipelineOpts, WithCache(opts.Cache))
	}

	return &Project{
		Config:        cfg,
		Settings:      settings,
		Scanner:       scanner,
		Pipeline:      NewPipeline(aggregator, pipelineOpts...),
		settingsDiags: diags,
	}, nil
}

// Root returns the absolute analysis root
func (p *Project) Root() string {
	return p.Scanner.Root()
}

// DebounceInterval is the quiet period watch mode waits for
func (p *Project) DebounceInterval() time.Duration {
	return time.Duration(p.Config.Performance.DebounceMs) * time.Millisecond
}

// Analyze scans and analyzes the project. Settings diagnostics come first in the report.
func (p *Project) Analyze(ctx context.Context) (*Report, error) {
	report, err := p.Pipeline.AnalyzeDirectory(ctx, p.Scanner)
	if err != nil {
		return nil, err
	}
	if len(p.settingsDiags) > 0 {
		report.Diagnostics = append(append([]types.Diagnostic{}, p.settingsDiags...), report.Diagnostics...)
	}
	return report, nil
}

// Watch analyzes the project whenever selected files change, until ctx is
// cancelled. onReport receives every new report or the error of a failed run.
func (p *Project) Watch(ctx context.Context, onReport func(*Report, error)) error {
	w, err := NewFileWatcher(p.Scanner, p.DebounceInterval(), func(ctx context.Context, changed []string) {
		if cache := p.Pipeline.Cache(); cache != nil {
			for _, rel := range changed {
				if _, err := p.Scanner.LoadFile(rel); err != nil {
					cache.Remove(rel)
				}
			}
		}
		report, err := p.Analyze(ctx)
		if ctx.Err() != nil {
			return
		}
		onReport(report, err)
	})
	if err != nil {
		return err
	}
	return w.Run(ctx)
}
