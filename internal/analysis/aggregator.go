package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/standardbeagle/contextweaver/internal/errors"
	"github.com/standardbeagle/contextweaver/internal/syntax"
	"github.com/standardbeagle/contextweaver/internal/types"
)

// Parser is the front end turning source text into syntax trees
type Parser interface {
	Supports(language string) bool
	Parse(ctx context.Context, path, language, source string) (*syntax.Tree, error)
}

// Aggregator combines the per-file extractors into one FileAnalysisResult.
// It holds no per-file state and is safe for concurrent use.
type Aggregator struct {
	parser   Parser
	registry *Registry
}

// NewAggregator creates an aggregator. A nil registry uses DefaultRegistry.
func NewAggregator(parser Parser, registry *Registry) *Aggregator {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Aggregator{parser: parser, registry: registry}
}

// Registry returns the strategy list in use
func (a *Aggregator) Registry() *Registry {
	return a.registry
}

// Parse returns the syntax tree of file, or nil when its language has no
// grammar or the text is blank. Parse failures are *errors.ParseError.
func (a *Aggregator) Parse(ctx context.Context, file types.SourceFile) (*syntax.Tree, error) {
	if a.parser == nil || !a.parser.Supports(file.Language) {
		return nil, nil
	}
	if strings.TrimSpace(file.Source) == "" {
		return nil, nil
	}
	return a.parser.Parse(ctx, file.RelativePath, file.Language, file.Source)
}

// Analyze runs the strategy selected for file over an already parsed tree.
// A failing or panicking strategy yields an *errors.AnalysisError and no result.
func (a *Aggregator) Analyze(ctx context.Context, file types.SourceFile, tree *syntax.Tree, resolver TypeResolver) (result *types.FileAnalysisResult, err error) {
	strategy, ok := a.registry.Select(file)
	if !ok {
		return nil, errors.NewAnalysisError("registry", fmt.Errorf("no analyzer for language %q", file.Language)).
			WithFile(file.RelativePath)
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = errors.NewAnalysisError(strategy.Name, fmt.Errorf("panic: %v", r)).WithFile(file.RelativePath)
		}
	}()

	result, err = strategy.Analyze(ctx, Input{File: file, Tree: tree, Resolver: resolver})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.NewAnalysisError(strategy.Name, err).WithFile(file.RelativePath)
	}
	return result, nil
}

// AnalyzeFile parses and analyzes a single file. table supplies the types
// declared elsewhere in the run; nil limits resolution to the file itself.
func (a *Aggregator) AnalyzeFile(ctx context.Context, file types.SourceFile, table *SymbolTable) (*types.FileAnalysisResult, error) {
	tree, err := a.Parse(ctx, file)
	if err != nil {
		return nil, err
	}
	return a.Analyze(ctx, file, tree, ResolverFor(tree, table))
}

// ResolverFor returns the resolver for tree, or nil when tree is not C#
func ResolverFor(tree *syntax.Tree, table *SymbolTable) TypeResolver {
	if tree.IsEmpty() || tree.Language != "csharp" {
		return nil
	}
	if table == nil {
		return NewFileResolver(tree, nil)
	}
	return table.ResolverFor(tree)
}
