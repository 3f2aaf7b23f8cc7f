package report

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/standardbeagle/contextweaver/internal/indexing"
	"github.com/standardbeagle/contextweaver/internal/types"
)

// JSONRenderer writes the report as indented JSON
type JSONRenderer struct {
	// IncludeSource keeps each file's source text in the document
	IncludeSource bool
}

// NewJSONRenderer creates a JSON renderer without source text
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

// Format returns "json"
func (*JSONRenderer) Format() string { return "json" }

// Render encodes r
func (j *JSONRenderer) Render(w io.Writer, r *indexing.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(document(r, j.IncludeSource)); err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}
	return nil
}

// YAMLRenderer writes the report as YAML
type YAMLRenderer struct {
	IncludeSource bool
}

// NewYAMLRenderer creates a YAML renderer without source text
func NewYAMLRenderer() *YAMLRenderer {
	return &YAMLRenderer{}
}

// Format returns "yaml"
func (*YAMLRenderer) Format() string { return "yaml" }

// Render encodes r
func (y *YAMLRenderer) Render(w io.Writer, r *indexing.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(document(r, y.IncludeSource)); err != nil {
		return fmt.Errorf("encode yaml report: %w", err)
	}
	return enc.Close()
}

// document returns the report as encoded, with empty collections instead of nil
func document(r *indexing.Report, includeSource bool) *indexing.Report {
	doc := *r
	doc.Files = make([]*types.FileAnalysisResult, len(r.Files))
	for i, f := range r.Files {
		if includeSource {
			doc.Files[i] = f
		} else {
			doc.Files[i] = f.WithoutSource()
		}
	}
	if doc.Modules == nil {
		doc.Modules = map[string]types.ModuleMetrics{}
	}
	if doc.Cycles == nil {
		doc.Cycles = [][]string{}
	}
	if doc.Diagnostics == nil {
		doc.Diagnostics = []types.Diagnostic{}
	}
	return &doc
}
