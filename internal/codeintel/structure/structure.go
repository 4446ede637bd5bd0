// Package structure implements the structure analyzers (C4): per-file
// function list, class list (with methods), and raw import list, derived
// directly from the parse tree.
package structure

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codewatch-dev/codeintel/internal/codeintel/metrics"
	"github.com/codewatch-dev/codeintel/internal/codeintel/parse"
	"github.com/codewatch-dev/codeintel/internal/codeintel/types"
)

var jsFunctionTypes = map[string]bool{
	"function_declaration": true,
	"function_expression":  true,
	"arrow_function":       true,
	"method_definition":    true,
}

var pyFunctionTypes = map[string]bool{
	"function_definition": true,
}

// AnalyzeFunctions recursively visits root, recognizing the function-like
// node kinds for lang, and returns one FunctionInfo per match.
func AnalyzeFunctions(root *sitter.Node, content []byte, lang parse.Language) []types.FunctionInfo {
	funcTypes := jsFunctionTypes
	if lang == parse.LanguagePython {
		funcTypes = pyFunctionTypes
	}

	var out []types.FunctionInfo
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if funcTypes[n.Type()] {
			out = append(out, buildFunctionInfo(n, content, lang))
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return out
}

func buildFunctionInfo(n *sitter.Node, content []byte, lang parse.Language) types.FunctionInfo {
	body := functionBody(n, lang)
	params := functionParams(n, lang)

	info := types.FunctionInfo{
		Name:                 functionName(n, content, lang),
		Location:             nodeLocation(n),
		CyclomaticComplexity: metrics.CyclomaticComplexity(body, lang),
		CognitiveComplexity:  metrics.CognitiveComplexity(body, lang),
		ParameterCount:       parameterCount(params, lang),
		IsAsync:              findChildByType(n, "async") != nil,
	}
	if n.Type() == "method_definition" {
		info.IsStatic = findChildByType(n, "static") != nil
	}
	return info
}

func functionName(n *sitter.Node, content []byte, lang parse.Language) string {
	if name := findChildByType(n, "identifier"); name != nil {
		return nodeText(name, content)
	}
	if name := findChildByType(n, "property_identifier"); name != nil {
		return nodeText(name, content)
	}
	// Anonymous function assigned to a variable: fall back to the
	// enclosing variable_declarator's name, else "anonymous".
	if parent := n.Parent(); parent != nil && parent.Type() == "variable_declarator" {
		if name := findChildByType(parent, "identifier"); name != nil {
			return nodeText(name, content)
		}
	}
	return "anonymous"
}

func functionBody(n *sitter.Node, lang parse.Language) *sitter.Node {
	bodyType := "statement_block"
	if lang == parse.LanguagePython {
		bodyType = "block"
	}
	if body := findChildByType(n, bodyType); body != nil {
		return body
	}
	// Arrow functions with an expression body (no braces) have no block;
	// complexity is computed over the whole node, params list included.
	return n
}

func functionParams(n *sitter.Node, lang parse.Language) *sitter.Node {
	paramsType := "formal_parameters"
	if lang == parse.LanguagePython {
		paramsType = "parameters"
	}
	return findChildByType(n, paramsType)
}

func parameterCount(params *sitter.Node, lang parse.Language) int {
	if params == nil {
		return 0
	}
	count := 0
	for i := 0; i < int(params.ChildCount()); i++ {
		child := params.Child(i)
		switch child.Type() {
		case "identifier", "required_parameter", "optional_parameter", "rest_parameter",
			"default_parameter", "typed_parameter", "typed_default_parameter",
			"list_splat_pattern", "dictionary_splat_pattern":
			count++
		}
	}
	return count
}

// AnalyzeClasses recursively visits root for class-like node kinds and
// returns one ClassInfo per match, with its method list and member
// counts.
func AnalyzeClasses(root *sitter.Node, content []byte, lang parse.Language) []types.ClassInfo {
	classType := "class_declaration"
	if lang == parse.LanguagePython {
		classType = "class_definition"
	}

	var out []types.ClassInfo
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Type() == classType {
			out = append(out, buildClassInfo(n, content, lang))
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return out
}

func buildClassInfo(n *sitter.Node, content []byte, lang parse.Language) types.ClassInfo {
	info := types.ClassInfo{
		Location: nodeLocation(n),
	}

	if lang == parse.LanguagePython {
		buildPythonClassInfo(n, content, &info)
	} else {
		buildJSClassInfo(n, content, &info)
	}
	return info
}

func buildJSClassInfo(n *sitter.Node, content []byte, info *types.ClassInfo) {
	if name := findChildByType(n, "identifier"); name != nil {
		info.Name = nodeText(name, content)
	} else if name := findChildByType(n, "type_identifier"); name != nil {
		info.Name = nodeText(name, content)
	}
	if info.Name == "" {
		info.Name = "anonymous"
	}

	if heritage := findChildByType(n, "class_heritage"); heritage != nil {
		// The typescript grammar nests the extends target in an
		// extends_clause; the javascript grammar does not.
		if ext := findChildByType(heritage, "extends_clause"); ext != nil {
			heritage = ext
		}
		if id := findChildByType(heritage, "identifier"); id != nil {
			info.SuperClass = nodeText(id, content)
		} else if member := findChildByType(heritage, "member_expression"); member != nil {
			info.SuperClass = nodeText(member, content)
		}
	}

	body := findChildByType(n, "class_body")
	if body == nil {
		return
	}
	for i := 0; i < int(body.ChildCount()); i++ {
		member := body.Child(i)
		switch member.Type() {
		case "method_definition":
			m := buildFunctionInfo(member, content, parse.LanguageJavaScript)
			if name := findChildByType(member, "property_identifier"); name != nil {
				m.Name = nodeText(name, content)
				if len(m.Name) > 0 && m.Name[0] == '#' {
					m.IsPrivate = true
				}
			}
			info.Methods = append(info.Methods, m)
			if m.IsStatic {
				info.StaticMemberCount++
			}
		case "field_definition", "public_field_definition":
			info.PropertyCount++
			if findChildByType(member, "static") != nil {
				info.StaticMemberCount++
			}
		}
	}
}

func buildPythonClassInfo(n *sitter.Node, content []byte, info *types.ClassInfo) {
	if name := findChildByType(n, "identifier"); name != nil {
		info.Name = nodeText(name, content)
	}
	if info.Name == "" {
		info.Name = "anonymous"
	}
	if arglist := findChildByType(n, "argument_list"); arglist != nil {
		if id := findChildByType(arglist, "identifier"); id != nil {
			info.SuperClass = nodeText(id, content)
		}
	}

	body := findChildByType(n, "block")
	if body == nil {
		return
	}
	for i := 0; i < int(body.ChildCount()); i++ {
		member := body.Child(i)
		switch member.Type() {
		case "function_definition":
			m := buildFunctionInfo(member, content, parse.LanguagePython)
			info.Methods = append(info.Methods, m)
		case "expression_statement":
			if findChildByType(member, "assignment") != nil {
				info.PropertyCount++
			}
		}
	}
}

func nodeLocation(n *sitter.Node) types.SourceLocation {
	start := n.StartPoint()
	end := n.EndPoint()
	return types.SourceLocation{
		StartLine:   int(start.Row) + 1,
		StartColumn: int(start.Column) + 1,
		EndLine:     int(end.Row) + 1,
		EndColumn:   int(end.Column),
	}
}

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

func nodeText(node *sitter.Node, content []byte) string {
	if node == nil {
		return ""
	}
	return string(content[node.StartByte():node.EndByte()])
}
