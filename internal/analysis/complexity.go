package analysis

import (
	"strings"

	"github.com/standardbeagle/contextweaver/internal/syntax"
)

// BaseComplexity is the score of code with a single execution path
const BaseComplexity = 1

// ComputeComplexity returns the cyclomatic complexity of a parsed file:
// one plus the number of decision points. Branches, loops, case labels,
// conditional expressions and short-circuit && / || each add one; else
// branches, default labels and non-short-circuit operators add nothing.
func ComputeComplexity(tree *syntax.Tree) int {
	if tree.IsEmpty() || strings.TrimSpace(tree.Source) == "" {
		return BaseComplexity
	}
	return BaseComplexity + decisionPoints(tree.Language, tree.Root, "")
}

// ComplexityOfSource is ComputeComplexity for callers holding raw text.
// Blank input scores BaseComplexity without invoking parse.
func ComplexityOfSource(source string, parse func(string) (*syntax.Tree, error)) (int, error) {
	if strings.TrimSpace(source) == "" {
		return BaseComplexity, nil
	}
	tree, err := parse(source)
	if err != nil {
		return 0, err
	}
	return ComputeComplexity(tree), nil
}

func decisionPoints(language string, n *syntax.Node, parent syntax.Kind) int {
	count := 0
	if isDecisionPoint(language, n, parent) {
		count++
	}
	for _, c := range n.Children {
		count += decisionPoints(language, c, n.Kind)
	}
	return count
}

func isDecisionPoint(language string, n *syntax.Node, parent syntax.Kind) bool {
	switch language {
	case "typescript", "tsx", "javascript":
		return isScriptDecisionPoint(n, parent)
	default:
		return isCSharpDecisionPoint(n, parent)
	}
}

func isCSharpDecisionPoint(n *syntax.Node, parent syntax.Kind) bool {
	switch n.Kind {
	case "if_statement",
		"for_statement", "foreach_statement", "for_each_statement",
		"while_statement", "do_statement",
		"conditional_expression",
		"case_switch_label", "case_pattern_switch_label":
		return n.Named
	case "case":
		// Newer grammars inline case labels as bare tokens in the section
		return !n.Named && parent == "switch_section"
	case "&&", "||":
		return !n.Named && parent == "binary_expression"
	}
	return false
}

func isScriptDecisionPoint(n *syntax.Node, parent syntax.Kind) bool {
	switch n.Kind {
	case "if_statement",
		"for_statement", "for_in_statement", "while_statement", "do_statement",
		"ternary_expression",
		"switch_case":
		return n.Named
	case "&&", "||":
		return !n.Named && parent == "binary_expression"
	}
	return false
}
