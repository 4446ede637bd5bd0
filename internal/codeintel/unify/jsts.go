package unify

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codewatch-dev/codeintel/internal/codeintel/types"
)

// JSAdapter converts JavaScript/TypeScript/TSX trees into UnifiedNode
// trees, per the exhaustive tracked-kind table.
type JSAdapter struct{}

// NewJSAdapter constructs a JSAdapter.
func NewJSAdapter() *JSAdapter { return &JSAdapter{} }

func (a *JSAdapter) ErrorRatio(tree *sitter.Tree) float64 {
	return errorRatioOverTree(tree)
}

func (a *JSAdapter) ToUnifiedNodes(tree *sitter.Tree, content []byte, path string) *types.UnifiedNode {
	module := &types.UnifiedNode{
		Kind: types.NodeModule,
		Name: path,
	}
	if tree == nil || tree.RootNode() == nil {
		return module
	}
	root := tree.RootNode()
	module.Location = location(root)
	a.walk(root, content, module)
	return module
}

// walk performs the DFS pre-order conversion: when a raw node converts,
// it's attached to unifiedParent and becomes the unifiedParent for its
// own children; otherwise unifiedParent is passed through unchanged.
func (a *JSAdapter) walk(raw *sitter.Node, content []byte, unifiedParent *types.UnifiedNode) {
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

func (a *JSAdapter) ConvertNode(raw *sitter.Node, content []byte, parent *types.UnifiedNode) (*types.UnifiedNode, bool) {
	if raw == nil {
		return nil, false
	}
	switch raw.Type() {
	case "function_declaration", "function_expression", "arrow_function", "method_definition":
		return a.convertFunction(raw, content), true
	case "class_declaration":
		return a.convertClass(raw, content), true
	case "import_statement":
		return a.convertImport(raw, content), true
	case "call_expression":
		return a.convertCall(raw, content), true
	case "interface_declaration":
		return a.convertInterface(raw, content), true
	case "type_alias_declaration":
		return a.convertTypeAlias(raw, content), true
	case "enum_declaration":
		return a.convertEnum(raw, content), true
	case "variable_declarator":
		return a.convertVariable(raw, content), true
	default:
		return nil, false
	}
}

func isExported(raw *sitter.Node) bool {
	parent := raw.Parent()
	if parent == nil {
		return false
	}
	return parent.Type() == "export_statement" || parent.Type() == "export_declaration"
}

func (a *JSAdapter) convertFunction(raw *sitter.Node, content []byte) *types.UnifiedNode {
	n := &types.UnifiedNode{Kind: types.NodeFunction, Location: location(raw)}

	if name := findChildByType(raw, "identifier"); name != nil {
		n.Name = nodeText(name, content)
	} else if name := findChildByType(raw, "property_identifier"); name != nil {
		n.Name = nodeText(name, content)
	} else if parent := raw.Parent(); parent != nil && parent.Type() == "variable_declarator" {
		if name := findChildByType(parent, "identifier"); name != nil {
			n.Name = nodeText(name, content)
		}
	}
	if n.Name == "" {
		n.Name = "anonymous"
	}

	if findChildByType(raw, "async") != nil {
		n.IsAsync = true
	}
	if raw.Type() == "method_definition" {
		n.Kind = types.NodeMethod
		if findChildByType(raw, "static") != nil {
			n.IsStatic = true
		}
		if name := findChildByType(raw, "property_identifier"); name != nil {
			txt := nodeText(name, content)
			if len(txt) > 0 && txt[0] == '#' {
				n.IsPrivate = true
			}
		}
	}

	if params := findChildByType(raw, "formal_parameters"); params != nil {
		n.Parameters = parameterNames(params, content)
	}
	if ret := findChildByType(raw, "type_annotation"); ret != nil {
		n.ReturnType = nodeText(ret, content)
	}
	if n.Attrs == nil {
		n.Attrs = map[string]string{}
	}
	if isExported(raw) {
		n.Attrs["exported"] = "true"
	}
	return n
}

// parameterNames extracts one entry per identifier/required_parameter/
// optional_parameter/rest_parameter child, per §4.4's counting rule.
func parameterNames(params *sitter.Node, content []byte) []string {
	var names []string
	for i := 0; i < int(params.ChildCount()); i++ {
		child := params.Child(i)
		switch child.Type() {
		case "identifier", "required_parameter", "optional_parameter", "rest_parameter":
			if id := findChildByType(child, "identifier"); id != nil {
				names = append(names, nodeText(id, content))
			} else {
				names = append(names, nodeText(child, content))
			}
		}
	}
	return names
}

func (a *JSAdapter) convertClass(raw *sitter.Node, content []byte) *types.UnifiedNode {
	n := &types.UnifiedNode{Kind: types.NodeClass, Location: location(raw)}

	if name := findChildByType(raw, "identifier"); name != nil {
		n.Name = nodeText(name, content)
	} else if name := findChildByType(raw, "type_identifier"); name != nil {
		n.Name = nodeText(name, content)
	}
	if n.Name == "" {
		n.Name = "anonymous"
	}

	if heritage := findChildByType(raw, "class_heritage"); heritage != nil {
		// The typescript grammar nests the extends target in an
		// extends_clause; the javascript grammar does not.
		if ext := findChildByType(heritage, "extends_clause"); ext != nil {
			heritage = ext
		}
		if id := findChildByType(heritage, "identifier"); id != nil {
			n.SuperClass = nodeText(id, content)
		} else if member := findChildByType(heritage, "member_expression"); member != nil {
			n.SuperClass = nodeText(member, content)
		}
	}
	for _, impl := range findChildrenByType(raw, "implements_clause") {
		if id := findChildByType(impl, "identifier"); id != nil {
			n.Implements = append(n.Implements, nodeText(id, content))
		}
	}
	for _, dec := range findChildrenByType(raw, "decorator") {
		n.Decorators = append(n.Decorators, nodeText(dec, content))
	}
	if n.Attrs == nil {
		n.Attrs = map[string]string{}
	}
	if isExported(raw) {
		n.Attrs["exported"] = "true"
	}
	return n
}

func (a *JSAdapter) convertImport(raw *sitter.Node, content []byte) *types.UnifiedNode {
	n := &types.UnifiedNode{Kind: types.NodeImport, Location: location(raw)}

	if src := findChildByType(raw, "string"); src != nil {
		n.Source = stripQuotes(nodeText(src, content))
	}

	if clause := findChildByType(raw, "import_clause"); clause != nil {
		if id := findChildByType(clause, "identifier"); id != nil {
			n.IsDefault = true
			n.Specifiers = append(n.Specifiers, nodeText(id, content))
		}
		if ns := findChildByType(clause, "namespace_import"); ns != nil {
			n.IsNamespace = true
			if id := findChildByType(ns, "identifier"); id != nil {
				n.Specifiers = append(n.Specifiers, nodeText(id, content))
			}
		}
		if named := findChildByType(clause, "named_imports"); named != nil {
			for _, spec := range findChildrenByType(named, "import_specifier") {
				// bound-name side: last identifier (handles `a as b`)
				ids := findChildrenByType(spec, "identifier")
				if len(ids) > 0 {
					n.Specifiers = append(n.Specifiers, nodeText(ids[len(ids)-1], content))
				}
			}
		}
	}

	n.Name = n.Source
	return n
}

func (a *JSAdapter) convertCall(raw *sitter.Node, content []byte) *types.UnifiedNode {
	n := &types.UnifiedNode{Kind: types.NodeCall, Location: location(raw)}

	if raw.ChildCount() > 0 {
		callee := raw.Child(0)
		n.Callee = nodeText(callee, content)
		n.Name = n.Callee
	}
	if args := findChildByType(raw, "arguments"); args != nil {
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

func (a *JSAdapter) convertInterface(raw *sitter.Node, content []byte) *types.UnifiedNode {
	n := &types.UnifiedNode{Kind: types.NodeInterface, Location: location(raw)}
	if name := findChildByType(raw, "type_identifier"); name != nil {
		n.Name = nodeText(name, content)
	}
	if ext := findChildByType(raw, "extends_type_clause"); ext != nil {
		if id := findChildByType(ext, "type_identifier"); id != nil {
			n.Extends = append(n.Extends, nodeText(id, content))
		}
	}
	return n
}

func (a *JSAdapter) convertTypeAlias(raw *sitter.Node, content []byte) *types.UnifiedNode {
	n := &types.UnifiedNode{Kind: types.NodeTypeAlias, Location: location(raw)}
	if name := findChildByType(raw, "type_identifier"); name != nil {
		n.Name = nodeText(name, content)
	}
	return n
}

func (a *JSAdapter) convertEnum(raw *sitter.Node, content []byte) *types.UnifiedNode {
	n := &types.UnifiedNode{Kind: types.NodeEnum, Location: location(raw)}
	if name := findChildByType(raw, "identifier"); name != nil {
		n.Name = nodeText(name, content)
	}
	if body := findChildByType(raw, "enum_body"); body != nil {
		for _, member := range findChildrenByType(body, "property_identifier") {
			n.Members = append(n.Members, nodeText(member, content))
		}
	}
	return n
}

func (a *JSAdapter) convertVariable(raw *sitter.Node, content []byte) *types.UnifiedNode {
	n := &types.UnifiedNode{Kind: types.NodeVariable, Location: location(raw)}

	if name := findChildByType(raw, "identifier"); name != nil {
		n.Name = nodeText(name, content)
	}
	if n.Name == "" {
		n.Name = "anonymous"
	}
	if typeAnn := findChildByType(raw, "type_annotation"); typeAnn != nil {
		n.TypeAnnotation = nodeText(typeAnn, content)
	}

	// Initializer is the last non-identifier, non-type-annotation,
	// non-"=" child.
	for i := 0; i < int(raw.ChildCount()); i++ {
		child := raw.Child(i)
		switch child.Type() {
		case "identifier", "type_annotation", "=":
			continue
		default:
			text := nodeText(child, content)
			if text != n.Name {
				n.Initializer = text
			}
		}
	}
	return n
}
