package analysis

import (
	"strings"
	"sync"

	"github.com/standardbeagle/contextweaver/internal/syntax"
	"github.com/standardbeagle/contextweaver/internal/types"
)

// TypeResolver maps a type reference node to the type it names.
// Returning false is a resolution miss: the reference cannot be classified
// and is left out of dependency edges.
type TypeResolver interface {
	Resolve(n *syntax.Node) (types.TypeIdentity, bool)
}

// TypeUniverse is implemented by resolvers that know the types declared
// across the whole analyzed file set, not just the current file.
type TypeUniverse interface {
	DeclaredTypeNames() map[string]struct{}
}

// SymbolTable records the types declared by every C# file in a run.
// It is filled in a first pass and read concurrently afterwards.
type SymbolTable struct {
	mu         sync.RWMutex
	namespaces map[string]map[string]struct{} // type name -> declaring namespaces
}

// NewSymbolTable creates an empty table
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{namespaces: map[string]map[string]struct{}{}}
}

// AddTree records the type declarations of one parsed file
func (s *SymbolTable) AddTree(tree *syntax.Tree) {
	decls := CollectDeclarations(tree)
	if len(decls) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range decls {
		ns, ok := s.namespaces[d.Name]
		if !ok {
			ns = map[string]struct{}{}
			s.namespaces[d.Name] = ns
		}
		ns[d.Namespace] = struct{}{}
	}
}

// DeclaredTypeNames returns a snapshot of every declared type name
func (s *SymbolTable) DeclaredTypeNames() map[string]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]struct{}, len(s.namespaces))
	for name := range s.namespaces {
		out[name] = struct{}{}
	}
	return out
}

// Len returns the number of distinct declared type names
func (s *SymbolTable) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.namespaces)
}

// namespacesOf returns the sorted namespaces declaring name
func (s *SymbolTable) namespacesOf(name string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := s.namespaces[name]
	if len(set) == 0 {
		return nil
	}
	return sortedKeys(set)
}

// ResolverFor returns a resolver for references inside tree
func (s *SymbolTable) ResolverFor(tree *syntax.Tree) *FileResolver {
	return NewFileResolver(tree, s)
}

// CollectDeclarations lists the types declared in a file with their namespaces
func CollectDeclarations(tree *syntax.Tree) []types.TypeIdentity {
	if tree.IsEmpty() {
		return nil
	}
	var out []types.TypeIdentity
	collectDeclarations(tree, tree.Root, "", &out)
	return out
}

func collectDeclarations(t *syntax.Tree, n *syntax.Node, ns string, out *[]types.TypeIdentity) {
	for _, c := range n.Children {
		switch {
		case c.Kind == kindNamespace:
			inner := joinNamespace(ns, strippedText(t, declarationName(c)))
			if body := declarationBody(c); body != nil {
				collectDeclarations(t, body, inner, out)
			}
		case c.Kind == kindFileScopedNamespace:
			// Applies to the rest of the file whether the grammar nests the
			// following declarations under it or leaves them as siblings.
			ns = joinNamespace(ns, strippedText(t, declarationName(c)))
			collectDeclarations(t, c, ns, out)
		case declaresType(c.Kind):
			if name := t.Text(declarationName(c)); name != "" {
				*out = append(*out, types.TypeIdentity{Name: name, Namespace: ns})
			}
			if body := declarationBody(c); body != nil {
				collectDeclarations(t, body, ns, out)
			}
		default:
			if c.Named {
				collectDeclarations(t, c, ns, out)
			}
		}
	}
}

func joinNamespace(outer, inner string) string {
	switch {
	case outer == "":
		return inner
	case inner == "":
		return outer
	}
	return outer + "." + inner
}

// FileResolver resolves references in one file syntactically, using the
// file's usings and enclosing namespaces to pick among same-named project
// types. It never consults compiled assemblies.
type FileResolver struct {
	tree       *syntax.Tree
	table      *SymbolTable
	namespaces map[string]struct{} // declared in this file
	usings     map[string]struct{}
}

// NewFileResolver creates a resolver for tree. table may be nil, in which
// case only the file itself is known.
func NewFileResolver(tree *syntax.Tree, table *SymbolTable) *FileResolver {
	r := &FileResolver{
		tree:       tree,
		table:      table,
		namespaces: map[string]struct{}{},
		usings:     map[string]struct{}{},
	}
	if table == nil {
		r.table = NewSymbolTable()
		r.table.AddTree(tree)
	}
	for _, d := range CollectDeclarations(tree) {
		r.namespaces[d.Namespace] = struct{}{}
	}
	for _, u := range ExtractImports(tree) {
		r.usings[u] = struct{}{}
	}
	return r
}

// DeclaredTypeNames implements TypeUniverse
func (r *FileResolver) DeclaredTypeNames() map[string]struct{} {
	return r.table.DeclaredTypeNames()
}

// Resolve implements TypeResolver
func (r *FileResolver) Resolve(n *syntax.Node) (types.TypeIdentity, bool) {
	if n == nil {
		return types.TypeIdentity{}, false
	}
	switch n.Kind {
	case kindPredefinedType:
		return types.TypeIdentity{Name: r.tree.Text(n), Namespace: "System"}, true

	case kindIdentifier:
		return r.qualify(r.tree.Text(n))

	case kindGenericName:
		return r.qualify(r.tree.Text(declarationName(n)))

	case kindQualifiedName, kindAliasQualifiedName:
		name := n.ChildByField("name")
		qualifier := n.ChildByField("qualifier")
		if name == nil {
			named := n.NamedChildren()
			if len(named) == 0 {
				return types.TypeIdentity{}, false
			}
			name = named[len(named)-1]
			if len(named) > 1 {
				qualifier = named[0]
			}
		}
		id, ok := r.Resolve(name)
		if !ok {
			return id, false
		}
		if ns := strippedText(r.tree, qualifier); ns != "" && ns != "global" {
			id.Namespace = ns
		}
		return id, true

	case kindNullableType, kindArrayType, kindPointerType, kindRefType:
		elem := n.ChildByField("type")
		if elem == nil {
			named := n.NamedChildren()
			if len(named) == 0 {
				return types.TypeIdentity{}, false
			}
			elem = named[0]
		}
		return r.Resolve(elem)
	}
	return types.TypeIdentity{}, false
}

// qualify attaches a namespace to a simple type name. A name declared in
// several namespaces prefers the file's own namespaces, then its usings.
// Names the project does not declare resolve without a namespace.
func (r *FileResolver) qualify(name string) (types.TypeIdentity, bool) {
	name = strings.TrimSpace(name)
	if name == "" || name == "var" {
		return types.TypeIdentity{}, false
	}
	candidates := r.table.namespacesOf(name)
	switch len(candidates) {
	case 0:
		return types.TypeIdentity{Name: name}, true
	case 1:
		return types.TypeIdentity{Name: name, Namespace: candidates[0]}, true
	}
	for _, ns := range candidates {
		if _, ok := r.namespaces[ns]; ok {
			return types.TypeIdentity{Name: name, Namespace: ns}, true
		}
	}
	for _, ns := range candidates {
		if _, ok := r.usings[ns]; ok {
			return types.TypeIdentity{Name: name, Namespace: ns}, true
		}
	}
	return types.TypeIdentity{Name: name, Namespace: candidates[0]}, true
}
