// Package unify implements the unified node adapters (C2): converting a
// language-specific tree-sitter parse tree into the language-neutral
// UnifiedNode model.
package unify

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codewatch-dev/codeintel/internal/codeintel/parse"
	"github.com/codewatch-dev/codeintel/internal/codeintel/types"
)

// Adapter is the capability set every language adapter implements: one
// per language, registered by language tag.
type Adapter interface {
	// ToUnifiedNodes converts a parsed tree into a single Module root plus
	// its descendants.
	ToUnifiedNodes(tree *sitter.Tree, content []byte, path string) *types.UnifiedNode

	// ConvertNode converts a single raw node into a UnifiedNode, or
	// reports ok=false if the node is not one of the tracked kinds — the
	// caller then recurses into its children instead.
	ConvertNode(raw *sitter.Node, content []byte, parent *types.UnifiedNode) (node *types.UnifiedNode, ok bool)

	// ErrorRatio reports the syntactic error ratio for tree.
	ErrorRatio(tree *sitter.Tree) float64
}

// registry maps a C1 language tag to its adapter.
var registry = map[parse.Language]Adapter{
	parse.LanguageTypeScript: NewJSAdapter(),
	parse.LanguageJavaScript: NewJSAdapter(),
	parse.LanguagePython:     NewPythonAdapter(),
}

// For returns the adapter registered for lang, or the default (empty)
// adapter for unsupported languages.
func For(lang parse.Language) Adapter {
	if a, ok := registry[lang]; ok {
		return a
	}
	return DefaultAdapter{}
}
