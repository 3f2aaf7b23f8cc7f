package parser

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cwerrors "github.com/standardbeagle/contextweaver/internal/errors"
	"github.com/standardbeagle/contextweaver/internal/syntax"
)

const calculatorSource = `using System;
using System.Collections.Generic;

namespace MyApp
{
    public class Calculator
    {
        private int result;

        public int Result { get; set; }

        public Calculator()
        {
            result = 0;
        }

        public int Add(int a, int b)
        {
            return a + b;
        }
    }
}`

func findAll(root *syntax.Node, kind syntax.Kind) []*syntax.Node {
	var out []*syntax.Node
	syntax.Walk(root, func(n *syntax.Node) bool {
		if n.Kind == kind {
			out = append(out, n)
		}
		return true
	})
	return out
}

func TestCSharpParser(t *testing.T) {
	p := NewTreeSitterParser()

	tree, err := p.Parse(context.Background(), "Calculator.cs", "csharp", calculatorSource)
	require.NoError(t, err)
	require.NotNil(t, tree.Root)
	assert.Equal(t, syntax.Kind("compilation_unit"), tree.Root.Kind)
	assert.False(t, tree.HasErrors)

	t.Run("using directives", func(t *testing.T) {
		usings := findAll(tree.Root, "using_directive")
		assert.Len(t, usings, 2)
	})

	t.Run("class name field", func(t *testing.T) {
		classes := findAll(tree.Root, "class_declaration")
		require.Len(t, classes, 1)
		assert.Equal(t, "Calculator", tree.Text(classes[0].ChildByField("name")))
	})

	t.Run("member kinds", func(t *testing.T) {
		classes := findAll(tree.Root, "class_declaration")
		require.Len(t, classes, 1)
		body := classes[0].ChildByField("body")
		require.NotNil(t, body)

		var kinds []syntax.MemberKind
		for _, c := range body.Children {
			if c.Member != syntax.MemberNone {
				kinds = append(kinds, c.Member)
			}
		}
		assert.Equal(t, []syntax.MemberKind{
			syntax.MemberOther, // field
			syntax.MemberProperty,
			syntax.MemberConstructor,
			syntax.MemberMethod,
		}, kinds)
	})

	t.Run("positions are 1-based", func(t *testing.T) {
		assert.Equal(t, 1, tree.Root.Line)
		usings := findAll(tree.Root, "using_directive")
		require.NotEmpty(t, usings)
		assert.Equal(t, 2, usings[1].Line)
		assert.Equal(t, 1, usings[1].Column)
	})
}

func TestParseEmptySource(t *testing.T) {
	p := NewTreeSitterParser()
	for _, src := range []string{"", "   \n\t  "} {
		tree, err := p.Parse(context.Background(), "Empty.cs", "csharp", src)
		require.NoError(t, err)
		assert.True(t, tree.IsEmpty())
	}
}

func TestParseUnsupportedLanguage(t *testing.T) {
	p := NewTreeSitterParser()
	_, err := p.Parse(context.Background(), "main.go", "go", "package main")
	require.Error(t, err)

	var perr *cwerrors.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "main.go", perr.FilePath)
	assert.False(t, p.Supports("go"))
	assert.True(t, p.Supports("csharp"))
}

func TestParseStrictMode(t *testing.T) {
	broken := "public class { void ( }"

	lenient := NewTreeSitterParser()
	tree, err := lenient.Parse(context.Background(), "Broken.cs", "csharp", broken)
	require.NoError(t, err)
	assert.True(t, tree.HasErrors)

	strict := NewTreeSitterParser(WithStrict(true))
	_, err = strict.Parse(context.Background(), "Broken.cs", "csharp", broken)
	require.Error(t, err)

	var perr *cwerrors.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Greater(t, perr.Line, 0)
}

func TestParseCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewTreeSitterParser().Parse(ctx, "A.cs", "csharp", calculatorSource)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParserPoolConcurrent(t *testing.T) {
	p := NewTreeSitterParser()
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.Parse(context.Background(), "Calculator.cs", "csharp", calculatorSource)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestTypeScriptParser(t *testing.T) {
	src := `import { a } from "./a";
export function f(x: number): number { return x > 0 ? x : -x; }`
	tree, err := NewTreeSitterParser().Parse(context.Background(), "f.ts", "typescript", src)
	require.NoError(t, err)
	assert.NotEmpty(t, findAll(tree.Root, "import_statement"))
	assert.NotEmpty(t, findAll(tree.Root, "ternary_expression"))
}

func TestLanguageForPath(t *testing.T) {
	tests := map[string]string{
		"src/Foo.cs":         "csharp",
		"app/main.TS":        "typescript",
		"app/view.tsx":       "tsx",
		"web/site.js":        "javascript",
		"index.html":         "html",
		"style.scss":         "scss",
		"README.md":          "markdown",
		"App/App.csproj":     "xml",
		"Solution.sln":       "plaintext",
		"LICENSE":            "plaintext",
		"appsettings.json":   "json",
		"wwwroot/styles.css": "css",
	}
	for path, want := range tests {
		t.Run(path, func(t *testing.T) {
			assert.Equal(t, want, LanguageForPath(path))
		})
	}
}
