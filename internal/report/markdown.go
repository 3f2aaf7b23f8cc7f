package report

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/standardbeagle/contextweaver/internal/indexing"
	"github.com/standardbeagle/contextweaver/internal/modules"
	"github.com/standardbeagle/contextweaver/internal/types"
	"github.com/standardbeagle/contextweaver/pkg/pathutil"
)

// hotspotCount is how many files each hotspot list shows
const hotspotCount = 5

var (
	interfaceName   = regexp.MustCompile(`^I[A-Z]`)
	mermaidIDUnsafe = regexp.MustCompile(`[^A-Za-z0-9_]`)
)

// MarkdownRenderer writes the single-document context report: a summary,
// hotspots, module instability, dependency cycles, a class dependency graph,
// the directory tree and then every file with its repo map and source.
type MarkdownRenderer struct {
	// OmitSource leaves the source code blocks out of the file sections
	OmitSource bool
}

// NewMarkdownRenderer creates a markdown renderer that includes source code
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// Format returns "markdown"
func (*MarkdownRenderer) Format() string { return "markdown" }

// Render writes r to w
func (m *MarkdownRenderer) Render(w io.Writer, r *indexing.Report) error {
	files := make([]*types.FileAnalysisResult, len(r.Files))
	copy(files, r.Files)
	types.SortResults(files)

	var sb strings.Builder
	writeHeader(&sb, r.RootName)
	writeHotspots(&sb, files)
	writeInstability(&sb, r.Modules)
	writeCycles(&sb, r.Cycles)
	writeDependencyGraph(&sb, r.RootName, files)
	writeDirectoryTree(&sb, r.RootName, files)
	writeDiagnostics(&sb, r.Diagnostics)
	m.writeFiles(&sb, files)

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("write markdown report: %w", err)
	}
	return nil
}

func writeHeader(sb *strings.Builder, rootName string) {
	fmt.Fprintf(sb, "This file is a merged representation of the source code of '%s', combined into a single document by contextweaver.\n", rootName)
	sb.WriteString(`The content has been processed to create a complete context for analysis.

# File Summary

## Purpose
This file contains a packed representation of the repository's contents.
It is designed to be easily consumable by AI systems for analysis, code review,
or other automated processes.

## File Format
The content is organized as follows:
1. This summary section.
2. A "Hotspot Analysis" section that identifies key files by metrics.
3. An "Instability Analysis" section that provides architectural insight.
4. A directory structure tree with clickable links to each file.
5. Multiple file entries, each consisting of:
   - A header with the file path (## File: path/to/file)
   - The "Repo Map" summary (public API and imports).
   - The full contents of the file in a code block.

## Usage Guidelines
- Treat this file as read-only. Make any changes in the original repository
  files, not in this packed version.
- When processing this file, use the file path to distinguish between the
  different files of the repository.
- This file may contain sensitive information. Handle it with the same level
  of security as the original repository.

## Notes
- Some files may have been excluded by the contextweaver settings (appsettings.json or .contextweaver.json).
- Binary files are not included in this packed representation.
- Files are sorted alphabetically by their full path for consistent ordering.

`)
}

func writeHotspots(sb *strings.Builder, files []*types.FileAnalysisResult) {
	sb.WriteString("# 🔥 Hotspot Analysis\n\n")

	sb.WriteString("## Top 5 Files by Lines of Code (LOC)\n")
	byLOC := make([]*types.FileAnalysisResult, len(files))
	copy(byLOC, files)
	sort.SliceStable(byLOC, func(i, j int) bool { return byLOC[i].LinesOfCode > byLOC[j].LinesOfCode })
	for _, f := range head(byLOC, hotspotCount) {
		fmt.Fprintf(sb, "* **(%d LOC)** - [`%s`](#%s)\n", f.LinesOfCode, f.RelativePath, CreateAnchor(fileHeading(f.RelativePath)))
	}
	sb.WriteString("\n")

	sb.WriteString("## Top 5 Files by Number of Imports\n")
	var byImports []*types.FileAnalysisResult
	for _, f := range files {
		if len(f.Imports) > 0 {
			byImports = append(byImports, f)
		}
	}
	sort.SliceStable(byImports, func(i, j int) bool { return len(byImports[i].Imports) > len(byImports[j].Imports) })
	for _, f := range head(byImports, hotspotCount) {
		fmt.Fprintf(sb, "* **(%d Imports)** - [`%s`](#%s)\n", len(f.Imports), f.RelativePath, CreateAnchor(fileHeading(f.RelativePath)))
	}
	sb.WriteString("\n")
}

func head(files []*types.FileAnalysisResult, n int) []*types.FileAnalysisResult {
	if len(files) > n {
		return files[:n]
	}
	return files
}

func writeInstability(sb *strings.Builder, metrics map[string]types.ModuleMetrics) {
	sb.WriteString("# 📊 Instability Analysis\n\n")
	sb.WriteString("This section estimates the Instability (I) metric for each top-level module (folder/project) based on its dependencies (imports).\n")
	sb.WriteString("`I = Ce / (Ca + Ce)`\n")
	sb.WriteString("- `Ce` (Efferent): how many other modules this module uses (points outward).\n")
	sb.WriteString("- `Ca` (Afferent): how many other modules depend on this module (points inward).\n\n")

	sb.WriteString("## Module Instability Summary:\n\n")
	if len(metrics) == 0 {
		sb.WriteString("No dependencies between modules were found.\n\n")
	} else {
		sb.WriteString("| Module | Ca (Afferent) | Ce (Efferent) | Instability (I) | Description |\n")
		sb.WriteString("|---|---|---|---|---|\n")
		for _, name := range modules.SortedNames(metrics) {
			m := metrics[name]
			fmt.Fprintf(sb, "| `%s` | %d | %d | %.2f | %s |\n",
				name, m.AfferentCoupling, m.EfferentCoupling, m.Instability, modules.Describe(m.Instability))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Interpretation Guide:\n")
	sb.WriteString("- `I ≈ 0`: Very stable (many depend on it; it depends on few others). Often core contracts or interfaces.\n")
	sb.WriteString("- `I ≈ 1`: Very unstable (depends on many; few or none depend on it). Often concrete implementations such as UI or adapters.\n")
	sb.WriteString("- `I ≈ 0.5`: Intermediate stability.\n")
	sb.WriteString("Ideally, stable modules are abstract and unstable modules are concrete. Avoid very unstable abstract modules or very stable concrete ones.\n\n")
}

func writeCycles(sb *strings.Builder, cycles [][]string) {
	if len(cycles) == 0 {
		return
	}
	sb.WriteString("# 🔁 Dependency Cycles\n\n")
	sb.WriteString("These modules depend on each other, directly or through other modules:\n\n")
	for _, c := range cycles {
		quoted := make([]string, len(c))
		for i, m := range c {
			quoted[i] = "`" + m + "`"
		}
		fmt.Fprintf(sb, "- %s\n", strings.Join(quoted, " ⇄ "))
	}
	sb.WriteString("\n")
}

// writeDependencyGraph draws the class dependency edges as a Mermaid graph,
// grouping source types by the directory of the file declaring them
func writeDependencyGraph(sb *strings.Builder, rootName string, files []*types.FileAnalysisResult) {
	groups := map[string]map[string]struct{}{}
	links := map[string]struct{}{}
	interfaces := map[string]struct{}{}

	for _, f := range files {
		if len(f.DependencyEdges) == 0 {
			continue
		}
		group := rootName
		if dir := pathutil.Dir(f.RelativePath); dir != "" {
			segments := pathutil.Segments(dir)
			group = segments[len(segments)-1]
		}
		if groups[group] == nil {
			groups[group] = map[string]struct{}{}
		}
		for _, e := range f.DependencyEdges {
			arrow := "-->"
			if e.Kind == types.EdgeInherits {
				arrow = "-.->"
			}
			links[fmt.Sprintf("%s %s %s", e.SourceType, arrow, e.TargetType)] = struct{}{}
			groups[group][e.SourceType] = struct{}{}
			if interfaceName.MatchString(e.TargetType) {
				interfaces[e.TargetType] = struct{}{}
			}
		}
	}
	if len(links) == 0 {
		return
	}

	sb.WriteString("# 📈 Class Dependency Graph\n\n")
	sb.WriteString("This graph shows the hierarchical (dotted line) and collaboration (solid line) relationships between the project's classes. Rendered with Mermaid.js.\n\n")
	sb.WriteString("```mermaid\ngraph TD;\n\n")

	for _, group := range sortedKeys(groups) {
		fmt.Fprintf(sb, "  subgraph %s[\"%s\"]\n", mermaidID("dir_"+group), group)
		for _, class := range sortedKeys(groups[group]) {
			fmt.Fprintf(sb, "    %s\n", class)
		}
		sb.WriteString("  end\n\n")
	}
	for _, link := range sortedKeys(links) {
		fmt.Fprintf(sb, "  %s\n", link)
	}
	sb.WriteString("\n")

	if len(interfaces) > 0 {
		sb.WriteString("  %% Styles\n")
		sb.WriteString("  classDef interface fill:#ccf,stroke:#333,stroke-width:2px\n")
		fmt.Fprintf(sb, "  class %s interface\n", strings.Join(sortedKeys(interfaces), ","))
	}
	sb.WriteString("```\n\n")
}

func mermaidID(name string) string {
	return mermaidIDUnsafe.ReplaceAllString(name, "_")
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type treeNode struct {
	name     string
	path     string // set for files
	children map[string]*treeNode
}

func writeDirectoryTree(sb *strings.Builder, rootName string, files []*types.FileAnalysisResult) {
	root := &treeNode{children: map[string]*treeNode{}}
	for _, f := range files {
		node := root
		segments := pathutil.Segments(f.RelativePath)
		for i, part := range segments {
			child, ok := node.children[part]
			if !ok {
				child = &treeNode{name: part, children: map[string]*treeNode{}}
				node.children[part] = child
			}
			node = child
			if i == len(segments)-1 {
				node.path = f.RelativePath
			}
		}
	}

	sb.WriteString("# Directory Structure\n\n")
	fmt.Fprintf(sb, "- %s/\n", rootName)
	writeTreeLevel(sb, root, 1)
	sb.WriteString("\n")
}

// writeTreeLevel lists directories first, then files, each sorted by name
func writeTreeLevel(sb *strings.Builder, node *treeNode, level int) {
	indent := strings.Repeat(" ", level*4)
	var dirs, files []*treeNode
	for _, name := range sortedKeys(node.children) {
		child := node.children[name]
		if child.path == "" {
			dirs = append(dirs, child)
		} else {
			files = append(files, child)
		}
	}
	for _, d := range dirs {
		fmt.Fprintf(sb, "%s- %s/\n", indent, d.name)
		writeTreeLevel(sb, d, level+1)
	}
	for _, f := range files {
		fmt.Fprintf(sb, "%s- [%s](#%s)\n", indent, f.name, CreateAnchor(fileHeading(f.path)))
	}
}

func writeDiagnostics(sb *strings.Builder, diags []types.Diagnostic) {
	if len(diags) == 0 {
		return
	}
	sb.WriteString("# ⚠️ Diagnostics\n\n")
	sb.WriteString("These files were skipped or only partially analyzed:\n\n")
	for _, d := range diags {
		if d.Path != "" {
			fmt.Fprintf(sb, "- **%s** `%s`: %s\n", d.Kind, d.Path, d.Message)
		} else {
			fmt.Fprintf(sb, "- **%s**: %s\n", d.Kind, d.Message)
		}
	}
	sb.WriteString("\n")
}

func (m *MarkdownRenderer) writeFiles(sb *strings.Builder, files []*types.FileAnalysisResult) {
	sb.WriteString("# Files\n\n")
	for _, f := range files {
		fmt.Fprintf(sb, "## %s\n\n", fileHeading(f.RelativePath))

		sb.WriteString("### Repo Map: public signatures and imports of the file\n")
		if len(f.PublicAPISignatures) > 0 {
			sb.WriteString("#### Public API:\n")
			for _, sig := range f.PublicAPISignatures {
				sb.WriteString(sig + "\n")
			}
			sb.WriteString("\n")
		}
		if len(f.Imports) > 0 {
			sb.WriteString("#### Imports:\n")
			for _, imp := range f.Imports {
				fmt.Fprintf(sb, "- %s\n", imp)
			}
			sb.WriteString("\n")
		}
		if len(f.DependencyEdges) > 0 {
			sb.WriteString("#### Dependencies:\n")
			for _, e := range f.DependencyEdges {
				fmt.Fprintf(sb, "- %s %s %s\n", e.SourceType, e.Kind, e.TargetType)
			}
			sb.WriteString("\n")
		}

		sb.WriteString("#### Metrics\n")
		fmt.Fprintf(sb, "* **Lines of Code (LOC):** %d\n", f.LinesOfCode)
		for _, name := range sortedKeys(f.Metrics) {
			fmt.Fprintf(sb, "* **%s:** %v\n", name, f.Metrics[name])
		}
		sb.WriteString("\n")

		if m.OmitSource {
			continue
		}
		fence := codeFence(f.SourceText)
		sb.WriteString("#### Source Code\n")
		fmt.Fprintf(sb, "%s%s\n%s\n%s\n\n", fence, f.Language, strings.TrimSpace(f.SourceText), fence)
	}
}

// codeFence returns a backtick fence longer than any run of backticks in text
func codeFence(text string) string {
	longest, run := 0, 0
	for _, c := range text {
		if c == '`' {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	return strings.Repeat("`", max(3, longest+1))
}
