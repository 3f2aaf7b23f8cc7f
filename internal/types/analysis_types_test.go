package types

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountLines(t *testing.T) {
	assert.Equal(t, 0, CountLines(""))
	assert.Equal(t, 1, CountLines("class A {}"))
	assert.Equal(t, 2, CountLines("a\nb"))
	assert.Equal(t, 3, CountLines("a\nb\n"))
}

func TestNewFileAnalysisResult(t *testing.T) {
	r := NewFileAnalysisResult(SourceFile{RelativePath: "A/Foo.cs", Source: "x\ny"})
	assert.Equal(t, LanguagePlaintext, r.Language)
	assert.Equal(t, 2, r.LinesOfCode)
	assert.NotNil(t, r.Imports)
	assert.NotNil(t, r.PublicAPISignatures)
	assert.NotNil(t, r.DependencyEdges)
	assert.NotNil(t, r.Metrics)

	r.Metrics[MetricCyclomaticComplexity] = 4
	assert.Equal(t, 4, r.IntMetric(MetricCyclomaticComplexity, 1))
	assert.Equal(t, 7, r.IntMetric("missing", 7))

	stripped := r.WithoutSource()
	assert.Empty(t, stripped.SourceText)
	assert.Equal(t, "x\ny", r.SourceText)
}

func TestEdgeSet(t *testing.T) {
	s := EdgeSet{}
	s.Add(DependencyEdge{SourceType: "Dog", TargetType: "Animal", Kind: EdgeInherits})
	s.Add(DependencyEdge{SourceType: "Dog", TargetType: "Animal", Kind: EdgeInherits})
	s.Add(DependencyEdge{SourceType: "Dog", TargetType: "Dog", Kind: EdgeUses})
	s.Add(DependencyEdge{SourceType: "Dog", TargetType: "Bone", Kind: EdgeUses})
	s.Add(DependencyEdge{SourceType: "Dog", TargetType: "", Kind: EdgeUses})

	assert.Equal(t, []DependencyEdge{
		{SourceType: "Dog", TargetType: "Animal", Kind: EdgeInherits},
		{SourceType: "Dog", TargetType: "Bone", Kind: EdgeUses},
	}, s.Sorted())
}

func TestEdgeKindJSON(t *testing.T) {
	data, err := json.Marshal(DependencyEdge{SourceType: "A", TargetType: "B", Kind: EdgeUses})
	require.NoError(t, err)
	assert.JSONEq(t, `{"source_type":"A","target_type":"B","kind":"Uses"}`, string(data))

	var e DependencyEdge
	require.NoError(t, json.Unmarshal([]byte(`{"source_type":"A","target_type":"B","kind":"Inherits"}`), &e))
	assert.Equal(t, EdgeInherits, e.Kind)

	assert.Error(t, json.Unmarshal([]byte(`{"kind":"Calls"}`), &e))
}

func TestTypeIdentity(t *testing.T) {
	assert.True(t, TypeIdentity{Name: "object", Namespace: "System"}.IsUniversalRoot())
	assert.True(t, TypeIdentity{Name: "Object"}.IsUniversalRoot())
	assert.False(t, TypeIdentity{Name: "Object", Namespace: "MyApp.Models"}.IsUniversalRoot())
	assert.False(t, TypeIdentity{Name: "Animal"}.IsUniversalRoot())
	assert.Equal(t, "System.String", TypeIdentity{Name: "String", Namespace: "System"}.FullName())
}

func TestNewModuleMetrics(t *testing.T) {
	assert.Equal(t, ModuleMetrics{}, NewModuleMetrics(0, 0))
	assert.Equal(t, 1.0, NewModuleMetrics(0, 1).Instability)
	assert.Equal(t, 0.0, NewModuleMetrics(1, 0).Instability)
	assert.InDelta(t, 0.25, NewModuleMetrics(3, 1).Instability, 1e-9)
}

func TestDiagnosticString(t *testing.T) {
	d := Warning(DiagParseError, "A/Foo.cs", errors.New("bad token"))
	assert.Equal(t, "warning ParseError A/Foo.cs: bad token", d.String())
	d.Path = ""
	assert.Equal(t, "warning ParseError: bad token", d.String())
}
