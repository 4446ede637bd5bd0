package unify

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codewatch-dev/codeintel/internal/codeintel/types"
)

// PythonAdapter converts Python trees into UnifiedNode trees, following
// the same tracked-kind policy as the JS/TS adapter, adapted to the
// python grammar's node type names.
type PythonAdapter struct{}

// NewPythonAdapter constructs a PythonAdapter.
func NewPythonAdapter() *PythonAdapter { return &PythonAdapter{} }

func (a *PythonAdapter) ErrorRatio(tree *sitter.Tree) float64 {
	return errorRatioOverTree(tree)
}

func (a *PythonAdapter) ToUnifiedNodes(tree *sitter.Tree, content []byte, path string) *types.UnifiedNode {
	module := &types.UnifiedNode{Kind: types.NodeModule, Name: path}
	if tree == nil || tree.RootNode() == nil {
		return module
	}
	root := tree.RootNode()
	module.Location = location(root)
	a.walk(root, content, module)
	return module
}

func (a *PythonAdapter) walk(raw *sitter.Node, content []byte, unifiedParent *types.UnifiedNode) {
	if raw == nil {
		return
	}
	for i := 0; i < int(raw.ChildCount()); i++ {
		child := raw.Child(i)
		next := unifiedParent
		if converted, ok := a.ConvertNode(child, content, unifiedParent); ok {
			unifiedParent.AddChild(converted)
			next = converted
		}
		a.walk(child, content, next)
	}
}

func (a *PythonAdapter) ConvertNode(raw *sitter.Node, content []byte, parent *types.UnifiedNode) (*types.UnifiedNode, bool) {
	if raw == nil {
		return nil, false
	}
	switch raw.Type() {
	case "function_definition":
		return a.convertFunction(raw, content, parent), true
	case "class_definition":
		return a.convertClass(raw, content), true
	case "import_statement", "import_from_statement":
		return a.convertImport(raw, content), true
	case "call":
		return a.convertCall(raw, content), true
	case "assignment":
		return a.convertAssignment(raw, content), true
	default:
		return nil, false
	}
}

func (a *PythonAdapter) convertFunction(raw *sitter.Node, content []byte, parent *types.UnifiedNode) *types.UnifiedNode {
	kind := types.NodeFunction
	if parent != nil && parent.Kind == types.NodeClass {
		kind = types.NodeMethod
	}
	n := &types.UnifiedNode{Kind: kind, Location: location(raw)}

	if name := findChildByType(raw, "identifier"); name != nil {
		n.Name = nodeText(name, content)
	}
	if n.Name == "" {
		n.Name = "anonymous"
	}

	// python's grammar exposes the "async" of `async def` as a direct
	// child token of function_definition.
	if findChildByType(raw, "async") != nil {
		n.IsAsync = true
	}
	if params := findChildByType(raw, "parameters"); params != nil {
		n.Parameters = pythonParameterNames(params, content)
	}
	if ret := findChildByType(raw, "type"); ret != nil {
		n.ReturnType = nodeText(ret, content)
	}
	return n
}

func pythonParameterNames(params *sitter.Node, content []byte) []string {
	var names []string
	for i := 0; i < int(params.ChildCount()); i++ {
		child := params.Child(i)
		switch child.Type() {
		case "identifier":
			names = append(names, nodeText(child, content))
		case "default_parameter", "typed_parameter", "typed_default_parameter", "list_splat_pattern", "dictionary_splat_pattern":
			if id := findChildByType(child, "identifier"); id != nil {
				names = append(names, nodeText(id, content))
			} else {
				names = append(names, nodeText(child, content))
			}
		}
	}
	return names
}

func (a *PythonAdapter) convertClass(raw *sitter.Node, content []byte) *types.UnifiedNode {
	n := &types.UnifiedNode{Kind: types.NodeClass, Location: location(raw)}
	if name := findChildByType(raw, "identifier"); name != nil {
		n.Name = nodeText(name, content)
	}
	if n.Name == "" {
		n.Name = "anonymous"
	}
	if arglist := findChildByType(raw, "argument_list"); arglist != nil {
		if id := findChildByType(arglist, "identifier"); id != nil {
			n.SuperClass = nodeText(id, content)
		}
	}
	for _, dec := range findChildrenByType(raw.Parent(), "decorator") {
		n.Decorators = append(n.Decorators, nodeText(dec, content))
	}
	return n
}

func (a *PythonAdapter) convertImport(raw *sitter.Node, content []byte) *types.UnifiedNode {
	n := &types.UnifiedNode{Kind: types.NodeImport, Location: location(raw)}

	if raw.Type() == "import_from_statement" {
		if mod := findChildByType(raw, "dotted_name"); mod != nil {
			n.Source = nodeText(mod, content)
		}
		for _, id := range findChildrenByType(raw, "identifier") {
			n.Specifiers = append(n.Specifiers, nodeText(id, content))
		}
	} else {
		if mod := findChildByType(raw, "dotted_name"); mod != nil {
			n.Source = nodeText(mod, content)
		} else if aliased := findChildByType(raw, "aliased_import"); aliased != nil {
			if mod := findChildByType(aliased, "dotted_name"); mod != nil {
				n.Source = nodeText(mod, content)
			}
		}
	}
	n.Name = n.Source
	return n
}

func (a *PythonAdapter) convertCall(raw *sitter.Node, content []byte) *types.UnifiedNode {
	n := &types.UnifiedNode{Kind: types.NodeCall, Location: location(raw)}
	if raw.ChildCount() > 0 {
		callee := raw.Child(0)
		n.Callee = nodeText(callee, content)
		n.Name = n.Callee
	}
	if args := findChildByType(raw, "argument_list"); args != nil {
		for i := 0; i < int(args.ChildCount()); i++ {
			arg := args.Child(i)
			switch arg.Type() {
			case "(", ")", ",":
				continue
			default:
				n.Arguments = append(n.Arguments, nodeText(arg, content))
			}
		}
	}
	return n
}

func (a *PythonAdapter) convertAssignment(raw *sitter.Node, content []byte) *types.UnifiedNode {
	n := &types.UnifiedNode{Kind: types.NodeVariable, Location: location(raw)}
	if raw.ChildCount() > 0 {
		target := raw.Child(0)
		if target.Type() == "identifier" {
			n.Name = nodeText(target, content)
		}
	}
	if n.Name == "" {
		n.Name = "anonymous"
	}
	if raw.ChildCount() > 2 {
		value := raw.Child(int(raw.ChildCount()) - 1)
		text := nodeText(value, content)
		if text != n.Name {
			n.Initializer = text
		}
	}
	return n
}
