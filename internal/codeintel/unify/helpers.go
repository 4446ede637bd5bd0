package unify

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codewatch-dev/codeintel/internal/codeintel/types"
)

func findChildByType(node *sitter.Node, nodeType string) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == nodeType {
			return child
		}
	}
	return nil
}

func findChildrenByType(node *sitter.Node, nodeType string) []*sitter.Node {
	if node == nil {
		return nil
	}
	var out []*sitter.Node
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == nodeType {
			out = append(out, child)
		}
	}
	return out
}

func nodeText(node *sitter.Node, content []byte) string {
	if node == nil {
		return ""
	}
	return string(content[node.StartByte():node.EndByte()])
}

func location(node *sitter.Node) types.SourceLocation {
	start := node.StartPoint()
	end := node.EndPoint()
	return types.SourceLocation{
		StartLine:   int(start.Row) + 1,
		StartColumn: int(start.Column) + 1,
		EndLine:     int(end.Row) + 1,
		EndColumn:   int(end.Column),
	}
}

// stripQuotes removes a single layer of matching quote characters.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'' || first == '`') && first == last {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// errorRatioOverTree is shared between adapters: counts ERROR/missing
// nodes over the whole tree.
func errorRatioOverTree(tree *sitter.Tree) float64 {
	if tree == nil {
		return 0
	}
	root := tree.RootNode()
	if root == nil {
		return 0
	}
	var total, errs int
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		total++
		if n.IsError() || n.IsMissing() {
			errs++
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	if total == 0 {
		return 0
	}
	return float64(errs) / float64(total)
}
