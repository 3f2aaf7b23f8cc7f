// Package report renders analysis reports in the supported output formats.
package report

import (
	"io"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/standardbeagle/contextweaver/internal/errors"
	"github.com/standardbeagle/contextweaver/internal/indexing"
)

// maxSuggestionDistance is the largest edit distance still offered as a "did you mean"
const maxSuggestionDistance = 3

// Renderer writes a report in one output format
type Renderer interface {
	Format() string
	Render(w io.Writer, r *indexing.Report) error
}

// Registry holds renderers in registration order
type Registry struct {
	renderers []Renderer
}

// NewRegistry creates a registry. Later renderers with an already registered format are ignored.
func NewRegistry(renderers ...Renderer) *Registry {
	reg := &Registry{}
	for _, r := range renderers {
		reg.Register(r)
	}
	return reg
}

// DefaultRegistry knows markdown, json and yaml
func DefaultRegistry() *Registry {
	return NewRegistry(NewMarkdownRenderer(), NewJSONRenderer(), NewYAMLRenderer())
}

// Register adds r unless its format is taken
func (reg *Registry) Register(r Renderer) {
	if _, ok := reg.find(r.Format()); ok {
		return
	}
	reg.renderers = append(reg.renderers, r)
}

// Formats returns the registered format names in registration order
func (reg *Registry) Formats() []string {
	out := make([]string, len(reg.renderers))
	for i, r := range reg.renderers {
		out[i] = r.Format()
	}
	return out
}

// Lookup returns the renderer for format, ignoring case. An unknown format
// yields an *errors.UnsupportedFormatError naming the closest registered
// format when one is close enough.
func (reg *Registry) Lookup(format string) (Renderer, error) {
	if r, ok := reg.find(format); ok {
		return r, nil
	}
	return nil, errors.NewUnsupportedFormatError(format, reg.suggest(format), reg.Formats())
}

func (reg *Registry) find(format string) (Renderer, bool) {
	for _, r := range reg.renderers {
		if strings.EqualFold(r.Format(), format) {
			return r, true
		}
	}
	return nil, false
}

func (reg *Registry) suggest(format string) string {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		return ""
	}
	best, bestDist := "", maxSuggestionDistance+1
	for _, name := range reg.Formats() {
		d := edlib.LevenshteinDistance(format, strings.ToLower(name))
		if d < bestDist {
			best, bestDist = name, d
		}
	}
	return best
}
