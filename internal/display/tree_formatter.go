package display

import (
	"fmt"
	"strings"

	"github.com/standardbeagle/contextweaver/internal/modules"
	"github.com/standardbeagle/contextweaver/internal/types"
)

// TreeFormatter formats the module dependency graph for the terminal
type TreeFormatter struct {
	options FormatterOptions
}

// FormatterOptions controls tree formatting
type FormatterOptions struct {
	Format      string // "text" or "compact"
	ShowMetrics bool   // Show Ca, Ce and instability next to each module
	MaxDepth    int    // Maximum dependency depth to display, 0 = unlimited
}

// NewTreeFormatter creates a new tree formatter
func NewTreeFormatter(options FormatterOptions) *TreeFormatter {
	return &TreeFormatter{options: options}
}

// Format renders every reporting module with the modules it depends on
func (tf *TreeFormatter) Format(g *modules.Graph, metrics map[string]types.ModuleMetrics) string {
	if g == nil || len(g.Modules) == 0 || g.EdgeCount() == 0 {
		return "No module dependencies"
	}

	if tf.options.Format == "compact" {
		return tf.formatCompact(g)
	}

	var sb strings.Builder
	for _, m := range g.Modules {
		tf.formatNode(&sb, g, metrics, m, "", true, true, map[string]bool{}, 0)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// formatNode writes m and recursively its dependencies. path holds the
// modules on the way from the root so cycles are cut.
func (tf *TreeFormatter) formatNode(sb *strings.Builder, g *modules.Graph, metrics map[string]types.ModuleMetrics,
	m, prefix string, isLast, isRoot bool, path map[string]bool, depth int) {
	var branch string
	switch {
	case isRoot:
		branch = "→ "
	case isLast:
		branch = "└─→ "
	default:
		branch = "├─→ "
	}

	sb.WriteString(prefix)
	sb.WriteString(branch)
	sb.WriteString(m)
	if path[m] {
		sb.WriteString(" 🔄\n")
		return
	}
	if isRoot && tf.options.ShowMetrics {
		if mm, ok := metrics[m]; ok {
			fmt.Fprintf(sb, " (Ca=%d Ce=%d I=%.2f)", mm.AfferentCoupling, mm.EfferentCoupling, mm.Instability)
		}
	}
	sb.WriteString("\n")

	if tf.options.MaxDepth > 0 && depth >= tf.options.MaxDepth {
		return
	}

	path[m] = true
	defer delete(path, m)

	deps := g.Dependencies(m)
	for i, dep := range deps {
		childPrefix := prefix + "  "
		if !isRoot && !isLast {
			childPrefix = prefix + "│ "
		}
		tf.formatNode(sb, g, metrics, dep, childPrefix, i == len(deps)-1, false, path, depth+1)
	}
}

// formatCompact writes one "module → dep, dep" line per module with dependencies
func (tf *TreeFormatter) formatCompact(g *modules.Graph) string {
	var lines []string
	for _, m := range g.Modules {
		deps := g.Dependencies(m)
		if len(deps) == 0 {
			continue
		}
		lines = append(lines, m+" → "+strings.Join(deps, ", "))
	}
	return strings.Join(lines, "\n")
}
