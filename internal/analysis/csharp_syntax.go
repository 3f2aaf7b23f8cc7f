package analysis

import (
	"strings"
	"unicode"

	"github.com/standardbeagle/contextweaver/internal/syntax"
)

// C# node kinds the analyzers dispatch on
const (
	kindCompilationUnit      syntax.Kind = "compilation_unit"
	kindNamespace            syntax.Kind = "namespace_declaration"
	kindFileScopedNamespace  syntax.Kind = "file_scoped_namespace_declaration"
	kindUsingDirective       syntax.Kind = "using_directive"
	kindClass                syntax.Kind = "class_declaration"
	kindInterface            syntax.Kind = "interface_declaration"
	kindStruct               syntax.Kind = "struct_declaration"
	kindRecord               syntax.Kind = "record_declaration"
	kindRecordStruct         syntax.Kind = "record_struct_declaration"
	kindEnum                 syntax.Kind = "enum_declaration"
	kindDelegate             syntax.Kind = "delegate_declaration"
	kindBaseList             syntax.Kind = "base_list"
	kindPrimaryCtorBase      syntax.Kind = "primary_constructor_base_type"
	kindDeclarationList      syntax.Kind = "declaration_list"
	kindModifier             syntax.Kind = "modifier"
	kindAttributeList        syntax.Kind = "attribute_list"
	kindTypeParameterList    syntax.Kind = "type_parameter_list"
	kindTypeConstraintClause syntax.Kind = "type_parameter_constraints_clause"
	kindParameterList        syntax.Kind = "parameter_list"
	kindAccessorList         syntax.Kind = "accessor_list"
	kindArrowExpression      syntax.Kind = "arrow_expression_clause"
	kindIdentifier           syntax.Kind = "identifier"
	kindGenericName          syntax.Kind = "generic_name"
	kindQualifiedName        syntax.Kind = "qualified_name"
	kindAliasQualifiedName   syntax.Kind = "alias_qualified_name"
	kindTypeArgumentList     syntax.Kind = "type_argument_list"
	kindPredefinedType       syntax.Kind = "predefined_type"
	kindImplicitType         syntax.Kind = "implicit_type"
	kindNullableType         syntax.Kind = "nullable_type"
	kindArrayType            syntax.Kind = "array_type"
	kindPointerType          syntax.Kind = "pointer_type"
	kindRefType              syntax.Kind = "ref_type"
	kindArrayRankSpecifier   syntax.Kind = "array_rank_specifier"
	kindMemberAccess         syntax.Kind = "member_access_expression"
	kindTypeofExpression     syntax.Kind = "typeof_expression"
	kindDefaultExpression    syntax.Kind = "default_expression"
	kindSizeofExpression     syntax.Kind = "sizeof_expression"
	kindAsExpression         syntax.Kind = "as_expression"
	kindIsExpression         syntax.Kind = "is_expression"
	kindIsPatternExpression  syntax.Kind = "is_pattern_expression"
	kindConstantPattern      syntax.Kind = "constant_pattern"
	kindTypePattern          syntax.Kind = "type_pattern"
)

// typeKeywords maps declarations that carry members to the keyword printed in
// API headers. Enums and delegates are types but have no member surface.
var typeKeywords = map[syntax.Kind]string{
	kindClass:        "class",
	kindInterface:    "interface",
	kindStruct:       "struct",
	kindRecord:       "record",
	kindRecordStruct: "record struct",
}

func isTypeDeclaration(kind syntax.Kind) bool {
	_, ok := typeKeywords[kind]
	return ok
}

// declaresType covers every declaration that introduces a type name
func declaresType(kind syntax.Kind) bool {
	return isTypeDeclaration(kind) || kind == kindEnum || kind == kindDelegate
}

var modifierTokens = map[syntax.Kind]bool{
	"public": true, "private": true, "protected": true, "internal": true,
	"static": true, "abstract": true, "virtual": true, "override": true,
	"sealed": true, "partial": true, "async": true, "readonly": true,
	"const": true, "extern": true, "new": true, "unsafe": true,
	"volatile": true, "required": true, "file": true,
}

// modifiers returns the modifier keywords of a declaration. Grammar versions
// differ: some wrap each keyword in a modifier node, older ones emit the
// keyword token directly.
func modifiers(t *syntax.Tree, decl *syntax.Node) []string {
	var out []string
	for _, c := range decl.Children {
		switch {
		case c.Kind == kindModifier:
			out = append(out, strings.TrimSpace(t.Text(c)))
		case !c.Named && modifierTokens[c.Kind]:
			out = append(out, string(c.Kind))
		}
	}
	return out
}

func isPublic(t *syntax.Tree, decl *syntax.Node) bool {
	for _, m := range modifiers(t, decl) {
		if m == "public" {
			return true
		}
	}
	return false
}

// declarationName returns the identifier node naming decl
func declarationName(decl *syntax.Node) *syntax.Node {
	if name := decl.ChildByField("name"); name != nil {
		return name
	}
	return decl.ChildOfKind(kindIdentifier)
}

// declarationBody returns the member list of a type declaration
func declarationBody(decl *syntax.Node) *syntax.Node {
	if body := decl.ChildByField("body"); body != nil {
		return body
	}
	return decl.ChildOfKind(kindDeclarationList)
}

// memberType returns the return or value type of a method or property.
// Grammar versions name the field "returns" or "type"; failing both, the
// type is the named node just before the member name.
func memberType(decl *syntax.Node) *syntax.Node {
	if n := decl.ChildByField("returns"); n != nil {
		return n
	}
	if n := decl.ChildByField("type"); n != nil {
		return n
	}
	name := declarationName(decl)
	var prev *syntax.Node
	for _, c := range decl.Children {
		if c == name {
			return prev
		}
		if c.Named && c.Kind != kindModifier && c.Kind != kindAttributeList {
			prev = c
		}
	}
	return nil
}

func parameterList(decl *syntax.Node) *syntax.Node {
	if n := decl.ChildByField("parameters"); n != nil {
		return n
	}
	return decl.ChildOfKind(kindParameterList)
}

// compactText returns the text of n with runs of whitespace collapsed to one space
func compactText(t *syntax.Tree, n *syntax.Node) string {
	if n == nil {
		return ""
	}
	return strings.Join(strings.Fields(t.Text(n)), " ")
}

// strippedText returns the text of n with all whitespace removed
func strippedText(t *syntax.Tree, n *syntax.Node) string {
	if n == nil {
		return ""
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, t.Text(n))
}
