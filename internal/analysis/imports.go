package analysis

import (
	"sort"

	"github.com/standardbeagle/contextweaver/internal/syntax"
)

// ExtractImports returns every namespace named by a using directive,
// deduplicated and in ascending order. Aliases and static usings report the
// target namespace or type: `using IO = System.IO;` yields "System.IO".
func ExtractImports(tree *syntax.Tree) []string {
	if tree.IsEmpty() {
		return []string{}
	}

	seen := map[string]struct{}{}
	syntax.Walk(tree.Root, func(n *syntax.Node) bool {
		if n.Kind != kindUsingDirective {
			return true
		}
		if name := usingTarget(tree, n); name != "" {
			seen[name] = struct{}{}
		}
		return false
	})
	return sortedKeys(seen)
}

// usingTarget is the last name in the directive; an alias comes first
func usingTarget(t *syntax.Tree, using *syntax.Node) string {
	var target *syntax.Node
	for _, c := range using.Children {
		switch c.Kind {
		case kindIdentifier, kindQualifiedName, kindGenericName, kindAliasQualifiedName:
			target = c
		}
	}
	return strippedText(t, target)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
