package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// buildTree hand-assembles `public class A { }` without a parser
func buildTree() *Tree {
	src := "public class A { }"
	mod := &Node{Kind: "modifier", Named: true, Start: 0, End: 6, Children: []*Node{
		{Kind: "public", Start: 0, End: 6},
	}}
	name := &Node{Kind: "identifier", Field: "name", Named: true, Start: 13, End: 14}
	body := &Node{Kind: "declaration_list", Field: "body", Named: true, Start: 15, End: 18, Children: []*Node{
		{Kind: "{", Start: 15, End: 16},
		{Kind: "}", Start: 17, End: 18},
	}}
	class := &Node{Kind: "class_declaration", Named: true, Start: 0, End: 18, Children: []*Node{
		mod,
		{Kind: "class", Start: 7, End: 12},
		name,
		body,
	}}
	root := &Node{Kind: "compilation_unit", Named: true, Start: 0, End: 18, Children: []*Node{class}}
	return &Tree{Language: "csharp", Source: src, Root: root}
}

func TestNodeHelpers(t *testing.T) {
	tree := buildTree()
	class := tree.Root.Children[0]

	assert.Equal(t, "A", tree.Text(class.ChildByField("name")))
	assert.Nil(t, class.ChildByField("bases"))
	assert.Equal(t, Kind("declaration_list"), class.ChildOfKind("base_list", "declaration_list").Kind)
	assert.Len(t, class.NamedChildren(), 3)
	assert.True(t, class.HasToken("class"))
	assert.False(t, class.HasToken("struct"))
	assert.True(t, class.Children[0].HasToken("public"))
}

func TestNilSafety(t *testing.T) {
	var n *Node
	assert.Nil(t, n.ChildByField("name"))
	assert.Nil(t, n.ChildOfKind("identifier"))
	assert.Nil(t, n.NamedChildren())
	assert.False(t, n.HasToken("public"))

	var tree *Tree
	assert.True(t, tree.IsEmpty())
	assert.Equal(t, "", tree.Text(nil))
}

func TestTextOutOfRange(t *testing.T) {
	tree := &Tree{Source: "abc"}
	assert.Equal(t, "", tree.Text(&Node{Start: 1, End: 10}))
	assert.Equal(t, "bc", tree.Text(&Node{Start: 1, End: 3}))
}

func TestWalkVisitsEveryNodeOnce(t *testing.T) {
	tree := buildTree()
	seen := map[*Node]int{}
	Walk(tree.Root, func(n *Node) bool {
		seen[n]++
		return true
	})
	assert.Equal(t, 9, len(seen))
	for _, count := range seen {
		assert.Equal(t, 1, count)
	}
	assert.Equal(t, 9, Count(tree.Root))
}

func TestWalkSkipsChildren(t *testing.T) {
	tree := buildTree()
	var kinds []Kind
	Walk(tree.Root, func(n *Node) bool {
		kinds = append(kinds, n.Kind)
		return n.Kind != "class_declaration"
	})
	assert.Equal(t, []Kind{"compilation_unit", "class_declaration"}, kinds)
}

func TestMemberKindString(t *testing.T) {
	assert.Equal(t, "method", MemberMethod.String())
	assert.Equal(t, "property", MemberProperty.String())
	assert.Equal(t, "constructor", MemberConstructor.String())
	assert.Equal(t, "other", MemberOther.String())
	assert.Equal(t, "none", MemberNone.String())
}
