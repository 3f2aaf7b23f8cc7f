package analysis

import (
	"github.com/standardbeagle/contextweaver/internal/syntax"
	"github.com/standardbeagle/contextweaver/internal/types"
)

// ExtractDependencies returns the inheritance and usage edges of the types
// declared in tree.
//
// Every base type or interface other than System.Object produces an Inherits
// edge. A type reference inside a declaration produces a Uses edge only when
// the referenced name is declared in the analyzed file set and differs from
// the referencing type. Membership is checked by simple name, so same-named
// types in unrelated namespaces are not told apart.
//
// When resolver is nil the file is resolved on its own. When it implements
// TypeUniverse its names widen the set of project-local types.
func ExtractDependencies(tree *syntax.Tree, resolver TypeResolver) []types.DependencyEdge {
	if tree.IsEmpty() {
		return []types.DependencyEdge{}
	}
	if resolver == nil {
		resolver = NewFileResolver(tree, nil)
	}

	declared := map[string]struct{}{}
	for _, d := range CollectDeclarations(tree) {
		declared[d.Name] = struct{}{}
	}
	if universe, ok := resolver.(TypeUniverse); ok {
		for name := range universe.DeclaredTypeNames() {
			declared[name] = struct{}{}
		}
	}

	edges := types.EdgeSet{}
	for _, decl := range typeDeclarationsInOrder(tree.Root) {
		source := tree.Text(declarationName(decl))
		if source == "" {
			continue
		}
		addInheritance(decl, source, resolver, edges)
		addUsages(decl, source, declared, resolver, edges)
	}
	return edges.Sorted()
}

func addInheritance(decl *syntax.Node, source string, resolver TypeResolver, edges types.EdgeSet) {
	for _, base := range baseTypes(decl) {
		ref := base
		if base.Kind == kindPrimaryCtorBase {
			// record R(int X) : Base(X)
			if ref = base.ChildByField("type"); ref == nil {
				ref = base.ChildOfKind(kindIdentifier, kindGenericName, kindQualifiedName)
			}
		}
		target, ok := resolver.Resolve(ref)
		if !ok || target.Name == "" || target.IsUniversalRoot() {
			continue
		}
		edges.Add(types.DependencyEdge{SourceType: source, TargetType: target.Name, Kind: types.EdgeInherits})
	}
}

// headerKinds are parts of a type declaration that are not its body
var headerKinds = map[syntax.Kind]bool{
	kindBaseList:             true,
	kindAttributeList:        true,
	kindModifier:             true,
	kindTypeParameterList:    true,
	kindTypeConstraintClause: true,
}

// typeFields name the children that hold a type: variable, field, property
// and parameter types, return types, object creation, casts and patterns
var typeFields = map[string]bool{"type": true, "returns": true}

// typeOperandKinds are expressions whose operands are all types
var typeOperandKinds = map[syntax.Kind]bool{
	kindTypeArgumentList:  true,
	kindTypeofExpression:  true,
	kindDefaultExpression: true,
	kindSizeofExpression:  true,
}

// addUsages records a Uses edge for every type reference in the body of
// decl. Names are only resolved in type positions; method names, invocation
// targets and value identifiers are never type references.
func addUsages(decl *syntax.Node, source string, declared map[string]struct{}, resolver TypeResolver, edges types.EdgeSet) {
	use := func(ref *syntax.Node) {
		target, ok := resolver.Resolve(ref)
		if !ok || target.Name == source {
			return
		}
		if _, local := declared[target.Name]; !local {
			return
		}
		edges.Add(types.DependencyEdge{SourceType: source, TargetType: target.Name, Kind: types.EdgeUses})
	}

	var visitType, visitExpr func(n *syntax.Node)

	typeArguments := func(n *syntax.Node) {
		if args := n.ChildOfKind(kindTypeArgumentList); args != nil {
			for _, a := range args.NamedChildren() {
				visitType(a)
			}
		}
	}

	visitType = func(n *syntax.Node) {
		switch n.Kind {
		case kindIdentifier, kindAliasQualifiedName:
			use(n)
			return
		case kindQualifiedName:
			// Qualifier segments are namespaces, not types
			use(n)
			syntax.Walk(n, func(c *syntax.Node) bool {
				if c.Kind == kindGenericName {
					typeArguments(c)
					return false
				}
				return true
			})
			return
		case kindGenericName:
			use(n)
			typeArguments(n)
			return
		case kindPredefinedType, kindImplicitType:
			return
		case kindArrayRankSpecifier:
			visitExpr(n)
			return
		}
		for _, c := range n.NamedChildren() {
			if c.Field == "name" {
				// tuple element names
				continue
			}
			visitType(c)
		}
	}

	// qualifier handles the left side of a member access, which names a
	// type for static members and a value otherwise
	qualifier := func(n *syntax.Node) {
		switch n.Kind {
		case kindIdentifier, kindGenericName, kindQualifiedName, kindAliasQualifiedName, kindPredefinedType:
			visitType(n)
		default:
			visitExpr(n)
		}
	}

	visitExpr = func(n *syntax.Node) {
		if declaresType(n.Kind) {
			// Nested types report their own edges
			return
		}
		switch n.Kind {
		case kindIdentifier, kindQualifiedName, kindAliasQualifiedName, kindPredefinedType, kindImplicitType:
			return
		case kindGenericName:
			// a generic method name; only its type arguments are types
			typeArguments(n)
			return
		case kindMemberAccess:
			if left := n.ChildByField("expression"); left != nil {
				qualifier(left)
			}
			if name := n.ChildByField("name"); name != nil {
				visitExpr(name)
			}
			return
		case kindAsExpression, kindIsExpression:
			operands := n.NamedChildren()
			if len(operands) < 2 {
				break
			}
			left, right := n.ChildByField("left"), n.ChildByField("right")
			if left == nil || right == nil {
				left, right = operands[0], operands[len(operands)-1]
			}
			visitExpr(left)
			visitType(right)
			return
		case kindIsPatternExpression:
			operands := n.NamedChildren()
			if len(operands) < 2 {
				break
			}
			operand, pattern := n.ChildByField("expression"), n.ChildByField("pattern")
			if operand == nil || pattern == nil {
				operand, pattern = operands[0], operands[len(operands)-1]
			}
			visitExpr(operand)
			visitPattern(pattern, visitType, visitExpr)
			return
		}
		if typeOperandKinds[n.Kind] {
			for _, c := range n.NamedChildren() {
				visitType(c)
			}
			return
		}
		for _, c := range n.Children {
			if typeFields[c.Field] {
				visitType(c)
				continue
			}
			visitExpr(c)
		}
	}

	for _, c := range decl.Children {
		if c.Field == "name" || headerKinds[c.Kind] {
			continue
		}
		visitExpr(c)
	}
}

// visitPattern handles the right side of `x is P`. A bare name there is a
// type test; richer patterns carry their types in type fields.
func visitPattern(p *syntax.Node, visitType, visitExpr func(*syntax.Node)) {
	switch p.Kind {
	case kindIdentifier, kindGenericName, kindQualifiedName, kindAliasQualifiedName:
		visitType(p)
		return
	case kindTypePattern:
		for _, c := range p.NamedChildren() {
			visitType(c)
		}
		return
	case kindConstantPattern:
		if inner := p.NamedChildren(); len(inner) == 1 {
			switch inner[0].Kind {
			case kindIdentifier, kindGenericName, kindQualifiedName:
				visitType(inner[0])
				return
			}
		}
	}
	visitExpr(p)
}
