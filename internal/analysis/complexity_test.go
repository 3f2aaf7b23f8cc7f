package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/contextweaver/internal/parser"
	"github.com/standardbeagle/contextweaver/internal/syntax"
)

// parseCSharp parses C# source with the production front end
func parseCSharp(t *testing.T, code string) *syntax.Tree {
	t.Helper()
	return parseAs(t, "csharp", code)
}

func parseAs(t *testing.T, language, code string) *syntax.Tree {
	t.Helper()
	tree, err := parser.NewTreeSitterParser().Parse(context.Background(), "test", language, code)
	require.NoError(t, err)
	return tree
}

func wrapMethod(body string) string {
	return `class C {
    int M(int a, int b, int[] xs) {
` + body + `
        return 0;
    }
}`
}

func TestCyclomaticComplexity_NoBranches(t *testing.T) {
	tree := parseCSharp(t, wrapMethod(`        var x = a + b;`))
	if cc := ComputeComplexity(tree); cc != 1 {
		t.Errorf("straight-line code CC: expected 1, got %d", cc)
	}
}

func TestCyclomaticComplexity_EmptyInput(t *testing.T) {
	for _, src := range []string{"", "   ", "\n\t\n"} {
		tree := parseCSharp(t, src)
		if cc := ComputeComplexity(tree); cc != 1 {
			t.Errorf("blank input %q CC: expected 1, got %d", src, cc)
		}
	}
}

func TestCyclomaticComplexity_BlankSourceSkipsParser(t *testing.T) {
	called := false
	cc, err := ComplexityOfSource("  \n ", func(string) (*syntax.Tree, error) {
		called = true
		return nil, nil
	})
	require.NoError(t, err)
	if cc != 1 || called {
		t.Errorf("expected CC 1 without parsing, got %d (parser called: %v)", cc, called)
	}
}

func TestCyclomaticComplexity_Constructs(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected int
	}{
		{
			name:     "single if",
			body:     `        if (a > 0) { a++; }`,
			expected: 2,
		},
		{
			name: "if else-if else counts each condition",
			body: `        if (a > 0) { a++; }
        else if (a < 0) { a--; }
        else { a = 0; }`,
			expected: 3,
		},
		{
			name: "loops",
			body: `        for (int i = 0; i < a; i++) { }
        foreach (var x in xs) { }
        while (a > 0) { a--; }
        do { b--; } while (b > 0);`,
			expected: 5,
		},
		{
			name: "nested loops count once each",
			body: `        for (int i = 0; i < a; i++) {
            for (int j = 0; j < b; j++) { }
        }`,
			expected: 3,
		},
		{
			name: "case labels but not default",
			body: `        switch (a) {
            case 1: b = 1; break;
            case 2:
            case 3: b = 2; break;
            default: b = 0; break;
        }`,
			expected: 4,
		},
		{
			name:     "ternary",
			body:     `        var c = a > b ? a : b;`,
			expected: 2,
		},
		{
			name:     "short-circuit operators",
			body:     `        var ok = a > 0 && b > 0 || a == b;`,
			expected: 3,
		},
		{
			name:     "non short-circuit operators",
			body:     `        var bits = (a & b) | (a ^ b);`,
			expected: 1,
		},
		{
			name:     "condition with && inside if",
			body:     `        if (a > 0 && b > 0) { }`,
			expected: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := parseCSharp(t, wrapMethod(tt.body))
			if cc := ComputeComplexity(tree); cc != tt.expected {
				t.Errorf("expected CC %d, got %d", tt.expected, cc)
			}
		})
	}
}

func TestCyclomaticComplexity_Script(t *testing.T) {
	code := `function f(a, b) {
  if (a) { return 1; }
  for (const x of b) { }
  switch (a) {
    case 1: break;
    default: break;
  }
  return a && b ? 1 : 0;
}`
	tree := parseAs(t, "javascript", code)
	// if, for-of, case, &&, ternary
	if cc := ComputeComplexity(tree); cc != 6 {
		t.Errorf("expected CC 6, got %d", cc)
	}
}

func TestCyclomaticComplexity_AtLeastOne(t *testing.T) {
	inputs := []string{
		"namespace A { }",
		"using System;",
		wrapMethod(`        if (a > 0) { }`),
	}
	for _, src := range inputs {
		if cc := ComputeComplexity(parseCSharp(t, src)); cc < 1 {
			t.Errorf("complexity below 1 for %q: %d", src, cc)
		}
	}
}
