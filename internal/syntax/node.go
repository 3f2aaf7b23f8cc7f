// Package syntax holds the language-neutral tree the analyzers walk.
//
// The parser front end converts each concrete syntax tree into Nodes once.
// Analyzers dispatch on Node.Kind with a switch and recurse into Children
// themselves; member declarations are pre-classified into MemberKind so no
// analyzer needs to inspect declaration kinds to tell members apart.
package syntax

// Kind tags a node with its grammar production. Anonymous tokens use the
// token text itself ("public", "&&", "case").
type Kind string

// MemberKind classifies declarations that appear directly inside a type body
type MemberKind uint8

const (
	// MemberNone marks nodes that are not member declarations
	MemberNone MemberKind = iota
	MemberMethod
	MemberProperty
	MemberConstructor
	MemberOther
)

// String returns the member kind name
func (m MemberKind) String() string {
	switch m {
	case MemberMethod:
		return "method"
	case MemberProperty:
		return "property"
	case MemberConstructor:
		return "constructor"
	case MemberOther:
		return "other"
	}
	return "none"
}

// Node is one syntax tree node. Trees are immutable once built.
type Node struct {
	Kind     Kind
	Field    string // grammar field name under the parent, "" if none
	Named    bool
	Member   MemberKind
	IsError  bool
	Start    uint32
	End      uint32
	Line     int // 1-based
	Column   int // 1-based
	Children []*Node
}

// ChildByField returns the first child stored under field
func (n *Node) ChildByField(field string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Field == field {
			return c
		}
	}
	return nil
}

// ChildOfKind returns the first direct child whose kind is one of kinds
func (n *Node) ChildOfKind(kinds ...Kind) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		for _, k := range kinds {
			if c.Kind == k {
				return c
			}
		}
	}
	return nil
}

// NamedChildren returns the named direct children
func (n *Node) NamedChildren() []*Node {
	if n == nil {
		return nil
	}
	out := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		if c.Named {
			out = append(out, c)
		}
	}
	return out
}

// HasToken reports whether an anonymous child token with the given text exists
func (n *Node) HasToken(token Kind) bool {
	if n == nil {
		return false
	}
	for _, c := range n.Children {
		if !c.Named && c.Kind == token {
			return true
		}
	}
	return false
}

// Tree is a parsed file
type Tree struct {
	Language  string
	Source    string
	Root      *Node
	HasErrors bool
}

// Text returns the source text covered by n
func (t *Tree) Text(n *Node) string {
	if t == nil || n == nil {
		return ""
	}
	if int(n.End) > len(t.Source) || n.Start > n.End {
		return ""
	}
	return t.Source[n.Start:n.End]
}

// IsEmpty reports whether the tree has no content to analyze
func (t *Tree) IsEmpty() bool {
	return t == nil || t.Root == nil
}

// Walk visits n and its descendants depth-first, parents before children.
// Returning false from fn skips the node's children.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// Count returns the number of nodes in the subtree rooted at n
func Count(n *Node) int {
	total := 0
	Walk(n, func(*Node) bool {
		total++
		return true
	})
	return total
}
