package parser

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/standardbeagle/contextweaver/internal/syntax"
)

func csharpLanguage() *tree_sitter.Language {
	return tree_sitter.NewLanguage(tree_sitter_csharp.Language())
}

func typescriptLanguage() *tree_sitter.Language {
	return tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
}

func tsxLanguage() *tree_sitter.Language {
	return tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())
}

func javascriptLanguage() *tree_sitter.Language {
	return tree_sitter.NewLanguage(tree_sitter_javascript.Language())
}

// csharpMemberKind classifies C# member declarations. Type declarations
// nested in a type body count as MemberOther.
func csharpMemberKind(kind syntax.Kind) syntax.MemberKind {
	switch kind {
	case "method_declaration":
		return syntax.MemberMethod
	case "property_declaration":
		return syntax.MemberProperty
	case "constructor_declaration":
		return syntax.MemberConstructor
	case "field_declaration", "event_field_declaration", "event_declaration",
		"indexer_declaration", "operator_declaration", "conversion_operator_declaration",
		"destructor_declaration", "delegate_declaration",
		"class_declaration", "interface_declaration", "struct_declaration",
		"record_declaration", "record_struct_declaration", "enum_declaration":
		return syntax.MemberOther
	}
	return syntax.MemberNone
}
