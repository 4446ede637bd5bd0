package metrics

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codewatch-dev/codeintel/internal/codeintel/parse"
)

type cognitiveSet struct {
	incrementTypes map[string]bool
	nestingTypes   map[string]bool
	flowBreakTypes map[string]bool
}

var jsCognitiveSet = cognitiveSet{
	incrementTypes: map[string]bool{
		"if_statement":       true,
		"ternary_expression": true,
		"switch_statement":   true,
		"for_statement":      true,
		"for_in_statement":   true,
		"while_statement":    true,
		"do_statement":       true,
		"catch_clause":       true,
	},
	nestingTypes: map[string]bool{
		"if_statement":         true,
		"ternary_expression":   true,
		"switch_statement":     true,
		"for_statement":        true,
		"for_in_statement":     true,
		"while_statement":      true,
		"do_statement":         true,
		"catch_clause":         true,
		"function_declaration": true,
		"function_expression":  true,
		"arrow_function":       true,
		"method_definition":    true,
	},
	flowBreakTypes: map[string]bool{
		"return_statement":   true,
		"throw_statement":    true,
		"break_statement":    true,
		"continue_statement": true,
	},
}

var pyCognitiveSet = cognitiveSet{
	incrementTypes: map[string]bool{
		"if_statement":           true,
		"conditional_expression": true,
		"for_statement":          true,
		"while_statement":        true,
		"except_clause":          true,
		"match_statement":        true,
	},
	nestingTypes: map[string]bool{
		"if_statement":           true,
		"conditional_expression": true,
		"for_statement":          true,
		"while_statement":        true,
		"except_clause":          true,
		"match_statement":        true,
		"function_definition":    true,
	},
	flowBreakTypes: map[string]bool{
		"return_statement":   true,
		"raise_statement":    true,
		"break_statement":    true,
		"continue_statement": true,
	},
}

func cognitiveSetFor(lang parse.Language) cognitiveSet {
	if lang == parse.LanguagePython {
		return pyCognitiveSet
	}
	return jsCognitiveSet
}

// CognitiveComplexity computes a SonarSource-style, nesting-weighted
// complexity score over a function's body, in DFS pre-order. The bonus
// for a nested increment structure uses the nesting level observed at
// entry (before this node's own nesting increment is applied).
func CognitiveComplexity(body *sitter.Node, lang parse.Language) int {
	set := cognitiveSetFor(lang)
	complexity := 0

	var walk func(n *sitter.Node, nestingLevel int)
	walk = func(n *sitter.Node, nestingLevel int) {
		if n == nil {
			return
		}
		t := n.Type()

		childNesting := nestingLevel
		if set.incrementTypes[t] {
			complexity++
			if nestingLevel > 0 {
				complexity += nestingLevel
			}
		}
		if set.flowBreakTypes[t] {
			complexity++
		}
		if set.nestingTypes[t] {
			childNesting = nestingLevel + 1
		}

		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i), childNesting)
		}
	}
	walk(body, 0)
	return complexity
}
