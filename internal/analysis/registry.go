package analysis

import (
	"context"
	"strings"

	"github.com/standardbeagle/contextweaver/internal/syntax"
	"github.com/standardbeagle/contextweaver/internal/types"
)

// Input is everything a strategy needs to analyze one file
type Input struct {
	File     types.SourceFile
	Tree     *syntax.Tree // nil when the language has no grammar or the file is blank
	Resolver TypeResolver // nil outside C#
}

// Predicate decides whether a strategy handles a file
type Predicate func(types.SourceFile) bool

// AnalyzeFunc produces the complete result for one file
type AnalyzeFunc func(ctx context.Context, in Input) (*types.FileAnalysisResult, error)

// Strategy pairs a predicate with the analyzer it selects
type Strategy struct {
	Name    string
	Match   Predicate
	Analyze AnalyzeFunc
}

// Registry is an ordered list of strategies. The first matching one wins.
type Registry struct {
	strategies []Strategy
}

// NewRegistry creates a registry evaluated in the given order
func NewRegistry(strategies ...Strategy) *Registry {
	return &Registry{strategies: append([]Strategy(nil), strategies...)}
}

// DefaultRegistry handles C#, then TypeScript/JavaScript, then everything else
func DefaultRegistry() *Registry {
	return NewRegistry(
		Strategy{Name: "csharp", Match: LanguageIs("csharp"), Analyze: AnalyzeCSharp},
		Strategy{Name: "script", Match: LanguageIs("typescript", "tsx", "javascript"), Analyze: AnalyzeScript},
		Strategy{Name: "generic", Match: Always, Analyze: AnalyzeGeneric},
	)
}

// Select returns the first strategy whose predicate matches file
func (r *Registry) Select(file types.SourceFile) (Strategy, bool) {
	for _, s := range r.strategies {
		if s.Match(file) {
			return s, true
		}
	}
	return Strategy{}, false
}

// Names lists the strategies in evaluation order
func (r *Registry) Names() []string {
	names := make([]string, len(r.strategies))
	for i, s := range r.strategies {
		names[i] = s.Name
	}
	return names
}

// LanguageIs matches files tagged with any of languages, ignoring case
func LanguageIs(languages ...string) Predicate {
	return func(f types.SourceFile) bool {
		for _, l := range languages {
			if strings.EqualFold(f.Language, l) {
				return true
			}
		}
		return false
	}
}

// Always matches every file
func Always(types.SourceFile) bool { return true }

// AnalyzeCSharp runs the full structural analysis
func AnalyzeCSharp(ctx context.Context, in Input) (*types.FileAnalysisResult, error) {
	result := types.NewFileAnalysisResult(in.File)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tree := in.Tree
	if tree == nil {
		tree = &syntax.Tree{Language: in.File.Language, Source: in.File.Source}
	}

	result.Imports = ExtractImports(tree)
	result.PublicAPISignatures = ExtractAPISurface(tree)
	result.DependencyEdges = ExtractDependencies(tree, in.Resolver)

	result.Metrics[types.MetricCyclomaticComplexity] = ComputeComplexity(tree)
	result.Metrics[types.MetricPublicAPISignatures] = len(result.PublicAPISignatures)
	result.Metrics[types.MetricImportCount] = len(result.Imports)
	result.Metrics[types.MetricDependencyEdgeCount] = len(result.DependencyEdges)
	return result, nil
}

// AnalyzeGeneric records line count, source and language only
func AnalyzeGeneric(ctx context.Context, in Input) (*types.FileAnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return types.NewFileAnalysisResult(in.File), nil
}
