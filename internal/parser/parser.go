package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/contextweaver/internal/debug"
	"github.com/standardbeagle/contextweaver/internal/errors"
	"github.com/standardbeagle/contextweaver/internal/syntax"
	"github.com/standardbeagle/contextweaver/internal/types"
)

// Language tags understood by the front end
type Language string

const (
	LanguageCSharp     Language = "csharp"
	LanguageTypeScript Language = "typescript"
	LanguageTSX        Language = "tsx"
	LanguageJavaScript Language = "javascript"
)

// parserPoolData holds the pooled tree-sitter parsers of one language
type parserPoolData struct {
	pool     sync.Pool
	once     sync.Once
	language func() *tree_sitter.Language
}

// Each language has its own pool so multi-language trees parse in parallel
// without contention.
var parserPools = map[Language]*parserPoolData{
	LanguageCSharp:     {language: csharpLanguage},
	LanguageTypeScript: {language: typescriptLanguage},
	LanguageTSX:        {language: tsxLanguage},
	LanguageJavaScript: {language: javascriptLanguage},
}

func getParser(language Language) (*tree_sitter.Parser, error) {
	data, ok := parserPools[language]
	if !ok {
		return nil, fmt.Errorf("no grammar registered for %q", language)
	}

	data.once.Do(func() {
		lang := data.language()
		data.pool.New = func() any {
			p := tree_sitter.NewParser()
			if err := p.SetLanguage(lang); err != nil {
				debug.LogParse("failed to set %s grammar: %v\n", language, err)
				p.Close()
				return nil
			}
			return p
		}
	})

	p, _ := data.pool.Get().(*tree_sitter.Parser)
	if p == nil {
		return nil, fmt.Errorf("grammar for %q could not be loaded", language)
	}
	return p, nil
}

func releaseParser(language Language, p *tree_sitter.Parser) {
	if data, ok := parserPools[language]; ok && p != nil {
		data.pool.Put(p)
	}
}

// TreeSitterParser turns source text into syntax trees. It is safe for
// concurrent use; parsers are borrowed from per-language pools.
type TreeSitterParser struct {
	strict bool
}

// Option configures a TreeSitterParser
type Option func(*TreeSitterParser)

// WithStrict makes Parse fail when the grammar reports any error node.
// By default partially invalid files are analyzed as far as they parse.
func WithStrict(strict bool) Option {
	return func(p *TreeSitterParser) {
		p.strict = strict
	}
}

// NewTreeSitterParser creates a parser front end
func NewTreeSitterParser(opts ...Option) *TreeSitterParser {
	p := &TreeSitterParser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Supports reports whether language has a grammar
func (p *TreeSitterParser) Supports(language string) bool {
	_, ok := parserPools[Language(language)]
	return ok
}

// Parse parses source written in language. path is only used for error context.
// Empty input produces a tree with a nil root without touching the grammar.
func (p *TreeSitterParser) Parse(ctx context.Context, path, language, source string) (*syntax.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tree := &syntax.Tree{Language: language, Source: source}
	if strings.TrimSpace(source) == "" {
		return tree, nil
	}

	lang := Language(language)
	tsParser, err := getParser(lang)
	if err != nil {
		return nil, errors.NewParseError(path, language, err)
	}
	defer releaseParser(lang, tsParser)

	tsTree := tsParser.Parse([]byte(source), nil)
	if tsTree == nil {
		return nil, errors.NewParseError(path, language, fmt.Errorf("parser returned no tree"))
	}
	defer tsTree.Close()

	root := tsTree.RootNode()
	if root == nil {
		return nil, errors.NewParseError(path, language, fmt.Errorf("parser returned no root node"))
	}

	tree.HasErrors = root.HasError()
	if tree.HasErrors && p.strict {
		perr := errors.NewParseError(path, language, fmt.Errorf("source contains syntax errors"))
		if first := firstErrorNode(root); first != nil {
			pos := first.StartPosition()
			perr.WithPosition(int(pos.Row)+1, int(pos.Column)+1)
		}
		return nil, perr
	}

	cursor := root.Walk()
	defer cursor.Close()
	tree.Root = convert(cursor, lang)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	debug.LogParse("parsed %s (%s)\n", path, language)
	return tree, nil
}

// convert copies the node under the cursor and its subtree into syntax.Nodes
func convert(cursor *tree_sitter.TreeCursor, lang Language) *syntax.Node {
	n := cursor.Node()
	pos := n.StartPosition()
	out := &syntax.Node{
		Kind:    syntax.Kind(n.Kind()),
		Field:   cursor.FieldName(),
		Named:   n.IsNamed(),
		IsError: n.IsError() || n.IsMissing(),
		Start:   uint32(n.StartByte()),
		End:     uint32(n.EndByte()),
		Line:    int(pos.Row) + 1,
		Column:  int(pos.Column) + 1,
	}
	if lang == LanguageCSharp {
		out.Member = csharpMemberKind(out.Kind)
	}

	if cursor.GotoFirstChild() {
		for {
			out.Children = append(out.Children, convert(cursor, lang))
			if !cursor.GotoNextSibling() {
				break
			}
		}
		cursor.GotoParent()
	}
	return out
}

func firstErrorNode(n *tree_sitter.Node) *tree_sitter.Node {
	if n == nil {
		return nil
	}
	if n.IsError() || n.IsMissing() {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		if found := firstErrorNode(n.Child(i)); found != nil {
			return found
		}
	}
	return nil
}

// extensionLanguages maps lower-cased extensions to language tags. Only the
// csharp, typescript, tsx and javascript tags have grammars; the rest are
// labels for the report.
var extensionLanguages = map[string]string{
	".cs":     string(LanguageCSharp),
	".ts":     string(LanguageTypeScript),
	".tsx":    string(LanguageTSX),
	".js":     string(LanguageJavaScript),
	".jsx":    string(LanguageJavaScript),
	".mjs":    string(LanguageJavaScript),
	".cjs":    string(LanguageJavaScript),
	".html":   "html",
	".css":    "css",
	".scss":   "scss",
	".json":   "json",
	".md":     "markdown",
	".csproj": "xml",
	".props":  "xml",
	".sln":    types.LanguagePlaintext,
}

// LanguageForPath returns the language tag for a file path, "plaintext" when unknown
func LanguageForPath(path string) string {
	if lang, ok := extensionLanguages[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	return types.LanguagePlaintext
}
