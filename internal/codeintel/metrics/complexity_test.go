package metrics

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codewatch-dev/codeintel/internal/codeintel/parse"
)

func findFirstFunctionBody(t *testing.T, root *sitter.Node) *sitter.Node {
	t.Helper()
	var found *sitter.Node
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil || found != nil {
			return
		}
		switch n.Type() {
		case "function_declaration", "function_expression", "arrow_function", "method_definition":
			for i := 0; i < int(n.ChildCount()); i++ {
				child := n.Child(i)
				if child.Type() == "statement_block" {
					found = child
					return
				}
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	require.NotNil(t, found, "expected to find a function body")
	return found
}

func parseJS(t *testing.T, src string) *sitter.Node {
	t.Helper()
	p := parse.New()
	defer p.Close()
	res, err := p.Parse(context.Background(), "sample.ts", []byte(src))
	require.NoError(t, err)
	return res.Tree.RootNode()
}

func TestCyclomaticComplexity_IfAndShortCircuit(t *testing.T) {
	src := `
function check(a, b) {
  if (a && b) {
    return 1;
  }
  return 0;
}
`
	root := parseJS(t, src)
	body := findFirstFunctionBody(t, root)
	// base(1) + if(1) + &&(1) = 3, matching spec §8 scenario 2.
	assert.Equal(t, 3, CyclomaticComplexity(body, parse.LanguageTypeScript))
}

func TestCyclomaticComplexity_BaseCaseIsOne(t *testing.T) {
	src := `function f() { return 1; }`
	root := parseJS(t, src)
	body := findFirstFunctionBody(t, root)
	assert.Equal(t, 1, CyclomaticComplexity(body, parse.LanguageTypeScript))
}

func TestCyclomaticComplexity_DoesNotCrossNestedFunctionBoundary(t *testing.T) {
	src := `
function outer() {
  const inner = function() {
    if (true) { return 1; }
  };
  return inner;
}
`
	root := parseJS(t, src)
	body := findFirstFunctionBody(t, root)
	assert.Equal(t, 1, CyclomaticComplexity(body, parse.LanguageTypeScript))
}

func TestCyclomaticComplexity_SwitchCasesCountIndividually(t *testing.T) {
	src := `
function classify(x) {
  switch (x) {
    case 1:
      return "one";
    case 2:
      return "two";
    default:
      return "other";
  }
}
`
	root := parseJS(t, src)
	body := findFirstFunctionBody(t, root)
	// base(1) + case(1) + case(1) = 3; default does not add.
	assert.Equal(t, 3, CyclomaticComplexity(body, parse.LanguageTypeScript))
}

func TestCyclomaticComplexity_ForWhileCatchTernary(t *testing.T) {
	src := `
function work(items) {
  let total = 0;
  for (const item of items) {
    total += item;
  }
  while (total > 100) {
    total -= 1;
  }
  try {
    risky();
  } catch (e) {
    total = 0;
  }
  return total > 0 ? total : 0;
}
`
	root := parseJS(t, src)
	body := findFirstFunctionBody(t, root)
	// base(1) + for-of(1) + while(1) + catch(1) + ternary(1) = 5
	assert.Equal(t, 5, CyclomaticComplexity(body, parse.LanguageTypeScript))
}
