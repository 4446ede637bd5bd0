package structure

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codewatch-dev/codeintel/internal/codeintel/parse"
)

// AnalyzeModuleDependencies collects the raw, unresolved source specifier
// from every import_statement / import_declaration, require(...) call
// (literal "require" callee only), and dynamic import(...) expression.
// Python uses import_statement / import_from_statement instead.
func AnalyzeModuleDependencies(root *sitter.Node, content []byte, lang parse.Language) []string {
	var deps []string
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		switch n.Type() {
		case "import_statement", "import_declaration":
			if lang == parse.LanguagePython {
				if src := pythonImportSource(n, content); src != "" {
					deps = append(deps, src)
				}
			} else if src := findChildByType(n, "string"); src != nil {
				deps = append(deps, stripQuotes(nodeText(src, content)))
			}
		case "import_from_statement":
			if src := findChildByType(n, "dotted_name"); src != nil {
				deps = append(deps, nodeText(src, content))
			}
		case "call_expression":
			if spec := requireOrDynamicImportSpecifier(n, content); spec != "" {
				deps = append(deps, spec)
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return deps
}

func pythonImportSource(n *sitter.Node, content []byte) string {
	if mod := findChildByType(n, "dotted_name"); mod != nil {
		return nodeText(mod, content)
	}
	if aliased := findChildByType(n, "aliased_import"); aliased != nil {
		if mod := findChildByType(aliased, "dotted_name"); mod != nil {
			return nodeText(mod, content)
		}
	}
	return ""
}

// requireOrDynamicImportSpecifier recognizes `require("x")` (callee
// identifier literally "require") and `import("x")` dynamic-import calls,
// returning the literal source argument.
func requireOrDynamicImportSpecifier(n *sitter.Node, content []byte) string {
	if n.ChildCount() == 0 {
		return ""
	}
	callee := n.Child(0)
	calleeText := nodeText(callee, content)
	if calleeText != "require" && callee.Type() != "import" {
		return ""
	}
	args := findChildByType(n, "arguments")
	if args == nil {
		return ""
	}
	for i := 0; i < int(args.ChildCount()); i++ {
		child := args.Child(i)
		if child.Type() == "string" {
			return stripQuotes(nodeText(child, content))
		}
	}
	return ""
}

func stripQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'' || first == '`') && first == last {
			return s[1 : len(s)-1]
		}
	}
	return s
}
