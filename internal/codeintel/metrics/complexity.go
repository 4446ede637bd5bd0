// Package metrics implements the metric calculators (C3): cyclomatic and
// cognitive complexity, maintainability index, Halstead volume, and line
// counts.
package metrics

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codewatch-dev/codeintel/internal/codeintel/parse"
)

// nodeSet groups the control-flow node types relevant to complexity
// calculation for one language family.
type nodeSet struct {
	// decisionTypes increments cyclomatic complexity by one each.
	decisionTypes map[string]bool
	// shortCircuitOperators are binary_expression/boolean_operator
	// operators that also increment cyclomatic complexity.
	shortCircuitOperators map[string]bool
	// functionTypes mark a boundary complexity recursion must not cross.
	functionTypes map[string]bool
}

var jsNodeSet = nodeSet{
	decisionTypes: map[string]bool{
		"if_statement":      true,
		"switch_case":       true,
		"for_statement":     true,
		"for_in_statement":  true,
		"while_statement":   true,
		"do_statement":      true,
		"catch_clause":      true,
		"ternary_expression": true,
	},
	shortCircuitOperators: map[string]bool{"&&": true, "||": true},
	functionTypes: map[string]bool{
		"function_declaration": true,
		"function_expression":  true,
		"arrow_function":       true,
		"method_definition":    true,
	},
}

var pyNodeSet = nodeSet{
	decisionTypes: map[string]bool{
		"if_statement":          true,
		"for_statement":         true,
		"while_statement":       true,
		"except_clause":         true,
		"conditional_expression": true,
		"case_clause":           true,
	},
	shortCircuitOperators: map[string]bool{"and": true, "or": true},
	functionTypes: map[string]bool{
		"function_definition": true,
	},
}

func setFor(lang parse.Language) nodeSet {
	if lang == parse.LanguagePython {
		return pyNodeSet
	}
	return jsNodeSet
}

// CyclomaticComplexity computes McCabe complexity over a function's body,
// recursively, without descending into nested function bodies. Base is 1.
func CyclomaticComplexity(body *sitter.Node, lang parse.Language) int {
	set := setFor(lang)
	complexity := 1
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		t := n.Type()
		if set.decisionTypes[t] {
			complexity++
		}
		if isShortCircuit(n, t, set) {
			complexity++
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			child := n.Child(i)
			if set.functionTypes[child.Type()] {
				continue
			}
			walk(child)
		}
	}
	walk(body)
	return complexity
}

func isShortCircuit(n *sitter.Node, nodeType string, set nodeSet) bool {
	if nodeType != "binary_expression" && nodeType != "boolean_operator" {
		return false
	}
	op := operatorText(n)
	return set.shortCircuitOperators[op]
}

// operatorText returns the operator child's literal type/text for a
// binary-like node (smacker's Node lacks ChildByFieldName for this
// grammar build, so we scan children positionally by type).
func operatorText(n *sitter.Node) string {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "&&", "||", "and", "or":
			return child.Type()
		}
	}
	return ""
}
