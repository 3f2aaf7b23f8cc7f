// Package modules groups analyzed files into top-level modules and measures
// how they depend on each other.
package modules

import (
	"sort"
	"strings"

	"github.com/standardbeagle/contextweaver/internal/types"
	"github.com/standardbeagle/contextweaver/pkg/pathutil"
)

// ModuleOf returns the module of a file: its first path segment, or
// rootName for files directly under the analysis root.
func ModuleOf(rootName, relPath string) string {
	segments := pathutil.Segments(relPath)
	if len(segments) > 1 {
		return segments[0]
	}
	return rootName
}

// Graph is the module dependency graph of one run
type Graph struct {
	// Modules that report metrics, sorted
	Modules []string
	// Efferent[m] is the set of modules m imports from
	Efferent map[string]map[string]struct{}
}

// Dependencies returns the sorted efferent modules of m
func (g *Graph) Dependencies(m string) []string {
	return sortedSet(g.Efferent[m])
}

// Dependents returns the sorted modules importing from m
func (g *Graph) Dependents(m string) []string {
	set := map[string]struct{}{}
	for from, deps := range g.Efferent {
		if _, ok := deps[m]; ok {
			set[from] = struct{}{}
		}
	}
	return sortedSet(set)
}

// EdgeCount returns the number of module-to-module dependencies
func (g *Graph) EdgeCount() int {
	total := 0
	for _, deps := range g.Efferent {
		total += len(deps)
	}
	return total
}

// BuildGraph groups results into modules and links them through imports.
//
// Every file names a module that imports can resolve to. Only files with at
// least one import contribute outgoing dependencies. A module reports metrics
// when it has such a file or when another module depends on it.
func BuildGraph(rootName string, results []*types.FileAnalysisResult) *Graph {
	knownSet := map[string]struct{}{}
	for _, r := range results {
		knownSet[ModuleOf(rootName, r.RelativePath)] = struct{}{}
	}
	known := sortedSet(knownSet)

	g := &Graph{Efferent: map[string]map[string]struct{}{}}
	reporting := map[string]struct{}{}
	for _, r := range results {
		if len(r.Imports) == 0 {
			continue
		}
		module := ModuleOf(rootName, r.RelativePath)
		reporting[module] = struct{}{}
		deps, ok := g.Efferent[module]
		if !ok {
			deps = map[string]struct{}{}
			g.Efferent[module] = deps
		}
		for _, imp := range r.Imports {
			if target, ok := ResolveImport(imp, known); ok && target != module {
				deps[target] = struct{}{}
			}
		}
	}
	for _, deps := range g.Efferent {
		for target := range deps {
			reporting[target] = struct{}{}
		}
	}
	g.Modules = sortedSet(reporting)
	return g
}

// ResolveImport maps an imported namespace to one of the known modules,
// trying each rule against every module before moving to the next rule:
//
//  1. the import, or its first segment, equals the module name
//  2. the import starts with "<module>."
//  3. the import contains ".<module>."
//
// All comparisons ignore case. known must be sorted so the first match is
// deterministic. This is a naming heuristic: unrelated modules sharing a
// name fragment can be matched by mistake.
func ResolveImport(imp string, known []string) (string, bool) {
	lower := strings.ToLower(imp)
	first := lower
	if idx := strings.IndexByte(lower, '.'); idx >= 0 {
		first = lower[:idx]
	}

	rules := []func(m string) bool{
		func(m string) bool { return lower == m || first == m },
		func(m string) bool { return strings.HasPrefix(lower, m+".") },
		func(m string) bool { return strings.Contains(lower, "."+m+".") },
	}
	for _, rule := range rules {
		for _, m := range known {
			if rule(strings.ToLower(m)) {
				return m, true
			}
		}
	}
	return "", false
}

// Compute returns the coupling metrics of every reporting module. When no
// module depends on another the map is empty, so "nothing to report" is not
// mistaken for "perfectly decoupled".
func Compute(rootName string, results []*types.FileAnalysisResult) map[string]types.ModuleMetrics {
	return Metrics(BuildGraph(rootName, results))
}

// Metrics derives Ca, Ce and instability from a graph
func Metrics(g *Graph) map[string]types.ModuleMetrics {
	out := map[string]types.ModuleMetrics{}
	if g.EdgeCount() == 0 {
		return out
	}

	afferent := map[string]int{}
	for _, deps := range g.Efferent {
		for target := range deps {
			afferent[target]++
		}
	}
	for _, m := range g.Modules {
		out[m] = types.NewModuleMetrics(afferent[m], len(g.Efferent[m]))
	}
	return out
}

// Describe interprets an instability score for readers of a report
func Describe(instability float64) string {
	switch {
	case instability <= 0.2:
		return "very stable (core)"
	case instability >= 0.8:
		return "very unstable (concrete)"
	default:
		return "intermediate"
	}
}

// SortedNames returns the module names of a metrics map in order
func SortedNames(metrics map[string]types.ModuleMetrics) []string {
	names := make([]string, 0, len(metrics))
	for m := range metrics {
		names = append(names, m)
	}
	sort.Strings(names)
	return names
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
