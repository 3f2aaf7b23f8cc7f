package analysis

import (
	"strings"

	"github.com/standardbeagle/contextweaver/internal/syntax"
)

// MemberIndent prefixes member lines so they nest under their type header
const MemberIndent = "  "

// ExtractAPISurface returns the public API of a file in declaration order.
// Each public class, interface, struct or record yields a header line
//
//	class Repository<T> : IRepository<T>, IDisposable
//
// followed by one indented line per public method, property or constructor
// declared directly in its body. Nested public types get their own header
// after the members of the enclosing type.
func ExtractAPISurface(tree *syntax.Tree) []string {
	signatures := []string{}
	if tree.IsEmpty() {
		return signatures
	}

	for _, decl := range typeDeclarationsInOrder(tree.Root) {
		if !isPublic(tree, decl) {
			continue
		}
		signatures = append(signatures, typeHeader(tree, decl))

		body := declarationBody(decl)
		if body == nil {
			continue
		}
		for _, member := range body.Children {
			sig, ok := memberSignature(tree, member)
			if !ok {
				continue
			}
			signatures = append(signatures, MemberIndent+sig)
		}
	}
	return signatures
}

// typeDeclarationsInOrder lists class-like declarations in pre-order
func typeDeclarationsInOrder(root *syntax.Node) []*syntax.Node {
	var out []*syntax.Node
	syntax.Walk(root, func(n *syntax.Node) bool {
		if isTypeDeclaration(n.Kind) {
			out = append(out, n)
		}
		return true
	})
	return out
}

func typeHeader(t *syntax.Tree, decl *syntax.Node) string {
	var b strings.Builder
	b.WriteString(typeKeywords[decl.Kind])
	if decl.Kind == kindRecord && decl.HasToken("struct") {
		b.WriteString(" struct")
	}
	b.WriteByte(' ')
	b.WriteString(t.Text(declarationName(decl)))
	b.WriteString(compactText(t, decl.ChildOfKind(kindTypeParameterList)))

	if bases := baseTypes(decl); len(bases) > 0 {
		names := make([]string, 0, len(bases))
		for _, base := range bases {
			names = append(names, compactText(t, base))
		}
		b.WriteString(" : ")
		b.WriteString(strings.Join(names, ", "))
	}
	return b.String()
}

// baseTypes returns the entries of a declaration's base list
func baseTypes(decl *syntax.Node) []*syntax.Node {
	list := decl.ChildOfKind(kindBaseList)
	if list == nil {
		return nil
	}
	var out []*syntax.Node
	for _, c := range list.NamedChildren() {
		if c.Kind == "comment" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// memberSignature renders a public method, property or constructor.
// Every other member kind, and non-public members, report false.
func memberSignature(t *syntax.Tree, member *syntax.Node) (string, bool) {
	switch member.Member {
	case syntax.MemberMethod, syntax.MemberProperty, syntax.MemberConstructor:
	default:
		return "", false
	}
	if !isPublic(t, member) {
		return "", false
	}

	name := t.Text(declarationName(member))
	switch member.Member {
	case syntax.MemberMethod:
		return compactText(t, memberType(member)) + " " +
			name +
			compactText(t, member.ChildOfKind(kindTypeParameterList)) +
			compactText(t, parameterList(member)), true

	case syntax.MemberProperty:
		return compactText(t, memberType(member)) + " " + name + " " + accessorSummary(t, member), true

	case syntax.MemberConstructor:
		return name + compactText(t, parameterList(member)), true
	}
	return "", false
}

// accessorSummary renders accessors without whitespace, e.g. "{get;privateset;}".
// Expression-bodied properties are read-only and render as "{get;}".
func accessorSummary(t *syntax.Tree, prop *syntax.Node) string {
	accessors := prop.ChildByField("accessors")
	if accessors == nil {
		accessors = prop.ChildOfKind(kindAccessorList)
	}
	if accessors != nil {
		return strippedText(t, accessors)
	}
	if prop.ChildOfKind(kindArrowExpression) != nil {
		return "{get;}"
	}
	return ""
}
