package indexing

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/contextweaver/internal/analysis"
	"github.com/standardbeagle/contextweaver/internal/debug"
	"github.com/standardbeagle/contextweaver/internal/errors"
	"github.com/standardbeagle/contextweaver/internal/modules"
	"github.com/standardbeagle/contextweaver/internal/syntax"
	"github.com/standardbeagle/contextweaver/internal/types"
	"github.com/standardbeagle/contextweaver/internal/version"
)

// Report is everything one run produced. Files are sorted by relative path.
type Report struct {
	Root        string                         `json:"root" yaml:"root"`
	RootName    string                         `json:"root_name" yaml:"root_name"`
	Files       []*types.FileAnalysisResult    `json:"files" yaml:"files"`
	Modules     map[string]types.ModuleMetrics `json:"modules" yaml:"modules"`
	Cycles      [][]string                     `json:"cycles" yaml:"cycles"`
	Diagnostics []types.Diagnostic             `json:"diagnostics" yaml:"diagnostics"`
	RunID       string                         `json:"run_id" yaml:"run_id"`
	BuildID     string                         `json:"build_id" yaml:"build_id"`
	GeneratedAt time.Time                      `json:"generated_at" yaml:"generated_at"`
}

// File returns the result for a relative path
func (r *Report) File(relPath string) (*types.FileAnalysisResult, bool) {
	for _, f := range r.Files {
		if f.RelativePath == relPath {
			return f, true
		}
	}
	return nil, false
}

// Graph rebuilds the module dependency graph of the report
func (r *Report) Graph() *modules.Graph {
	return modules.BuildGraph(r.RootName, r.Files)
}

// Pipeline runs the analysis of a set of files in three phases: parse every
// file, build the project-wide symbol table, then analyze every file. Each
// phase fans out over a bounded worker pool and completes before the next
// one starts.
type Pipeline struct {
	aggregator *analysis.Aggregator
	workers    int
	cache      *ResultCache
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithWorkers bounds the number of files processed at once. n <= 0 uses runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithCache reuses parse trees and results across runs
func WithCache(c *ResultCache) Option {
	return func(p *Pipeline) {
		p.cache = c
	}
}

// NewPipeline creates a pipeline around an aggregator
func NewPipeline(aggregator *analysis.Aggregator, opts ...Option) *Pipeline {
	p := &Pipeline{aggregator: aggregator, workers: runtime.NumCPU()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Cache returns the result cache, nil when the pipeline has none
func (p *Pipeline) Cache() *ResultCache {
	return p.cache
}

// AnalyzeDirectory scans with scanner and runs the pipeline over the files found.
// Scan diagnostics come first in the report.
func (p *Pipeline) AnalyzeDirectory(ctx context.Context, scanner *FileScanner) (*Report, error) {
	files, scanDiags, err := scanner.Scan(ctx)
	if err != nil {
		return nil, err
	}
	report, err := p.Run(ctx, scanner.Root(), files)
	if err != nil {
		return nil, err
	}
	report.Diagnostics = append(scanDiags, report.Diagnostics...)
	return report, nil
}

// Run analyzes files found under root. A file that fails to parse or
// analyze is left out and reported as a diagnostic. Cancelling ctx stops
// outstanding work and Run returns ctx.Err() with no report.
func (p *Pipeline) Run(ctx context.Context, root string, files []types.SourceFile) (*Report, error) {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	start := time.Now()
	fileDiags := make([]*types.Diagnostic, len(files))

	trees, err := p.parseAll(ctx, files, fileDiags)
	if err != nil {
		return nil, err
	}

	table := analysis.NewSymbolTable()
	for _, tree := range trees {
		if tree != nil && !tree.IsEmpty() {
			table.AddTree(tree)
		}
	}
	universe := UniverseFingerprint(table.DeclaredTypeNames())
	debug.LogPipeline("symbol table holds %d type names", table.Len())

	results, err := p.analyzeAll(ctx, files, trees, table, universe, fileDiags)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Root:        root,
		RootName:    filepath.Base(root),
		Files:       make([]*types.FileAnalysisResult, 0, len(results)),
		Diagnostics: []types.Diagnostic{},
		RunID:       uuid.NewString(),
		BuildID:     version.BuildID(),
		GeneratedAt: time.Now().UTC(),
	}
	for i, r := range results {
		if r != nil {
			report.Files = append(report.Files, r)
		}
		if d := fileDiags[i]; d != nil {
			report.Diagnostics = append(report.Diagnostics, *d)
		}
	}
	types.SortResults(report.Files)

	graph := modules.BuildGraph(report.RootName, report.Files)
	report.Modules = modules.Metrics(graph)
	if report.Cycles = modules.Cycles(graph); report.Cycles == nil {
		report.Cycles = [][]string{}
	}

	debug.LogPipeline("run %s analyzed %d/%d files in %v", report.RunID, len(report.Files), len(files), time.Since(start))
	return report, nil
}

func (p *Pipeline) parseAll(ctx context.Context, files []types.SourceFile, diags []*types.Diagnostic) ([]*syntax.Tree, error) {
	trees := make([]*syntax.Tree, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			file := files[i]
			if p.cache != nil {
				if tree, ok := p.cache.Tree(file); ok {
					trees[i] = tree
					return nil
				}
			}

			tree, err := p.aggregator.Parse(gctx, file)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				d := types.Warning(types.DiagParseError, file.RelativePath, err)
				diags[i] = &d
				return nil
			}
			trees[i] = tree
			if p.cache != nil {
				p.cache.StoreTree(file, tree)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return trees, ctx.Err()
}

func (p *Pipeline) analyzeAll(ctx context.Context, files []types.SourceFile, trees []*syntax.Tree, table *analysis.SymbolTable, universe uint64, diags []*types.Diagnostic) ([]*types.FileAnalysisResult, error) {
	results := make([]*types.FileAnalysisResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i := range files {
		if diags[i] != nil {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			file := files[i]
			if p.cache != nil {
				if r, ok := p.cache.Result(file, universe); ok {
					results[i] = r
					return nil
				}
			}

			r, err := p.aggregator.Analyze(gctx, file, trees[i], analysis.ResolverFor(trees[i], table))
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				d := types.Warning(diagnosticKind(err), file.RelativePath, err)
				diags[i] = &d
				return nil
			}
			results[i] = r
			if p.cache != nil {
				p.cache.StoreResult(file, universe, r)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, ctx.Err()
}

func diagnosticKind(err error) types.DiagnosticKind {
	var perr *errors.ParseError
	if stderrors.As(err, &perr) {
		return types.DiagParseError
	}
	return types.DiagAnalysisError
}
