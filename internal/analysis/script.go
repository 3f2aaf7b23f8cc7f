package analysis

import (
	"context"
	"strings"

	"github.com/standardbeagle/contextweaver/internal/syntax"
	"github.com/standardbeagle/contextweaver/internal/types"
)

// AnalyzeScript handles TypeScript and JavaScript: complexity and module
// imports. Script files have no public API surface or type edges.
func AnalyzeScript(ctx context.Context, in Input) (*types.FileAnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result := types.NewFileAnalysisResult(in.File)

	tree := in.Tree
	if tree == nil {
		tree = &syntax.Tree{Language: in.File.Language, Source: in.File.Source}
	}
	result.Imports = ExtractScriptImports(tree)
	result.Metrics[types.MetricCyclomaticComplexity] = ComputeComplexity(tree)
	result.Metrics[types.MetricImportCount] = len(result.Imports)
	return result, nil
}

// ExtractScriptImports returns the module specifiers of import and export
// statements, require() calls and dynamic import(), deduplicated and sorted.
func ExtractScriptImports(tree *syntax.Tree) []string {
	if tree.IsEmpty() {
		return []string{}
	}
	seen := map[string]struct{}{}
	add := func(n *syntax.Node) {
		if spec := unquote(tree.Text(n)); spec != "" {
			seen[spec] = struct{}{}
		}
	}

	syntax.Walk(tree.Root, func(n *syntax.Node) bool {
		switch n.Kind {
		case "import_statement", "export_statement":
			if src := n.ChildByField("source"); src != nil {
				add(src)
			}
		case "call_expression":
			fn := n.ChildByField("function")
			if fn == nil {
				return true
			}
			if fn.Kind == "import" || (fn.Kind == "identifier" && tree.Text(fn) == "require") {
				if args := n.ChildByField("arguments"); args != nil {
					if first := args.ChildOfKind("string"); first != nil {
						add(first)
					}
				}
			}
		}
		return true
	})
	return sortedKeys(seen)
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		switch s[0] {
		case '"', '\'', '`':
			if s[len(s)-1] == s[0] {
				return s[1 : len(s)-1]
			}
		}
	}
	return s
}
