package types

import (
	"fmt"
	"sort"
)

// Metric names stored in FileAnalysisResult.Metrics
const (
	MetricCyclomaticComplexity = "CyclomaticComplexity"
	MetricPublicAPISignatures  = "PublicApiSignatures"
	MetricImportCount          = "ImportCount"
	MetricDependencyEdgeCount  = "DependencyEdgeCount"
)

// LanguagePlaintext is the language tag used when nothing more specific is known
const LanguagePlaintext = "plaintext"

// SourceFile is one input to the analyzers. Paths are slash-normalized and
// relative to the analysis root with no leading slash.
type SourceFile struct {
	RelativePath string `json:"relative_path" yaml:"relative_path"`
	Source       string `json:"-" yaml:"-"`
	Language     string `json:"language" yaml:"language"`
}

// FileAnalysisResult is the complete, immutable analysis of one file
type FileAnalysisResult struct {
	RelativePath        string           `json:"relative_path" yaml:"relative_path"`
	LinesOfCode         int              `json:"lines_of_code" yaml:"lines_of_code"`
	SourceText          string           `json:"source_text,omitempty" yaml:"source_text,omitempty"`
	Language            string           `json:"language" yaml:"language"`
	Imports             []string         `json:"imports" yaml:"imports"`
	PublicAPISignatures []string         `json:"public_api_signatures" yaml:"public_api_signatures"`
	DependencyEdges     []DependencyEdge `json:"dependency_edges" yaml:"dependency_edges"`
	Metrics             map[string]any   `json:"metrics" yaml:"metrics"`
}

// NewFileAnalysisResult returns a result with non-nil collections
func NewFileAnalysisResult(file SourceFile) *FileAnalysisResult {
	lang := file.Language
	if lang == "" {
		lang = LanguagePlaintext
	}
	return &FileAnalysisResult{
		RelativePath:        file.RelativePath,
		LinesOfCode:         CountLines(file.Source),
		SourceText:          file.Source,
		Language:            lang,
		Imports:             []string{},
		PublicAPISignatures: []string{},
		DependencyEdges:     []DependencyEdge{},
		Metrics:             map[string]any{},
	}
}

// IntMetric returns an integer metric, or def when absent or not an integer
func (r *FileAnalysisResult) IntMetric(name string, def int) int {
	switch v := r.Metrics[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

// WithoutSource returns a shallow copy with the source text removed
func (r *FileAnalysisResult) WithoutSource() *FileAnalysisResult {
	c := *r
	c.SourceText = ""
	return &c
}

// CountLines counts '\n'-separated segments, so "a\nb" and "a\nb\n" are 2 and 3.
// Empty text has no lines.
func CountLines(text string) int {
	if text == "" {
		return 0
	}
	n := 1
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			n++
		}
	}
	return n
}

// SortResults orders results by relative path
func SortResults(results []*FileAnalysisResult) {
	sort.Slice(results, func(i, j int) bool {
		return results[i].RelativePath < results[j].RelativePath
	})
}

// EdgeKind distinguishes inheritance from usage
type EdgeKind int

const (
	EdgeInherits EdgeKind = iota
	EdgeUses
)

// String returns the edge kind name
func (k EdgeKind) String() string {
	switch k {
	case EdgeInherits:
		return "Inherits"
	case EdgeUses:
		return "Uses"
	}
	return fmt.Sprintf("EdgeKind(%d)", int(k))
}

// MarshalText encodes the kind by name for JSON and YAML
func (k EdgeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name
func (k *EdgeKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Inherits":
		*k = EdgeInherits
	case "Uses":
		*k = EdgeUses
	default:
		return fmt.Errorf("unknown edge kind %q", text)
	}
	return nil
}

// DependencyEdge is a directed relation between two project-local types
type DependencyEdge struct {
	SourceType string   `json:"source_type" yaml:"source_type"`
	TargetType string   `json:"target_type" yaml:"target_type"`
	Kind       EdgeKind `json:"kind" yaml:"kind"`
}

// EdgeSet collects edges with set semantics
type EdgeSet map[DependencyEdge]struct{}

// Add inserts an edge. Self edges are dropped.
func (s EdgeSet) Add(e DependencyEdge) {
	if e.SourceType == "" || e.TargetType == "" || e.SourceType == e.TargetType {
		return
	}
	s[e] = struct{}{}
}

// Sorted returns the edges ordered by source, target, then kind
func (s EdgeSet) Sorted() []DependencyEdge {
	out := make([]DependencyEdge, 0, len(s))
	for e := range s {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.SourceType != b.SourceType {
			return a.SourceType < b.SourceType
		}
		if a.TargetType != b.TargetType {
			return a.TargetType < b.TargetType
		}
		return a.Kind < b.Kind
	})
	return out
}

// TypeIdentity is what symbol resolution yields for a type reference
type TypeIdentity struct {
	Name      string `json:"name" yaml:"name"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

// FullName returns Namespace.Name, or Name when there is no namespace
func (t TypeIdentity) FullName() string {
	if t.Namespace == "" {
		return t.Name
	}
	return t.Namespace + "." + t.Name
}

// IsUniversalRoot reports whether t is the platform root type (System.Object)
func (t TypeIdentity) IsUniversalRoot() bool {
	if t.Name != "object" && t.Name != "Object" {
		return false
	}
	return t.Namespace == "" || t.Namespace == "System"
}

// ModuleMetrics holds the coupling figures of one module
type ModuleMetrics struct {
	AfferentCoupling int     `json:"afferent_coupling" yaml:"afferent_coupling"`
	EfferentCoupling int     `json:"efferent_coupling" yaml:"efferent_coupling"`
	Instability      float64 `json:"instability" yaml:"instability"`
}

// NewModuleMetrics computes instability as Ce / (Ca + Ce), 0 when both are 0
func NewModuleMetrics(ca, ce int) ModuleMetrics {
	m := ModuleMetrics{AfferentCoupling: ca, EfferentCoupling: ce}
	if ca+ce > 0 {
		m.Instability = float64(ce) / float64(ca+ce)
	}
	return m
}
