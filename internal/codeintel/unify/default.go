package unify

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codewatch-dev/codeintel/internal/codeintel/types"
)

// DefaultAdapter handles unsupported languages: an empty unified view and
// zero error ratio, per §4.2.
type DefaultAdapter struct{}

func (DefaultAdapter) ToUnifiedNodes(tree *sitter.Tree, content []byte, path string) *types.UnifiedNode {
	return &types.UnifiedNode{Kind: types.NodeModule, Name: path}
}

func (DefaultAdapter) ConvertNode(raw *sitter.Node, content []byte, parent *types.UnifiedNode) (*types.UnifiedNode, bool) {
	return nil, false
}

func (DefaultAdapter) ErrorRatio(tree *sitter.Tree) float64 {
	return 0
}
