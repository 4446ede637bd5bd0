package unify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codewatch-dev/codeintel/internal/codeintel/parse"
	"github.com/codewatch-dev/codeintel/internal/codeintel/types"
)

func parseAndConvert(t *testing.T, lang parse.Language, path, src string) *types.UnifiedNode {
	t.Helper()
	p := parse.New()
	defer p.Close()

	result, err := p.Parse(context.Background(), path, []byte(src))
	require.NoError(t, err)
	defer result.Close()

	adapter := For(lang)
	return adapter.ToUnifiedNodes(result.Tree, []byte(src), path)
}

func findFirst(root *types.UnifiedNode, kind types.NodeKind) *types.UnifiedNode {
	if root.Kind == kind {
		return root
	}
	for _, c := range root.Children {
		if found := findFirst(c, kind); found != nil {
			return found
		}
	}
	return nil
}

func TestFor_ReturnsJSAdapterForTypeScriptAndJavaScript(t *testing.T) {
	assert.IsType(t, &JSAdapter{}, For(parse.LanguageTypeScript))
	assert.IsType(t, &JSAdapter{}, For(parse.LanguageJavaScript))
	assert.IsType(t, &PythonAdapter{}, For(parse.LanguagePython))
}

func TestFor_UnregisteredLanguageReturnsDefaultAdapter(t *testing.T) {
	adapter := For(parse.Language("unknown"))
	assert.IsType(t, DefaultAdapter{}, adapter)
	assert.Equal(t, 0.0, adapter.ErrorRatio(nil))
}

func TestToUnifiedNodes_ModuleRootHasFunctionChild(t *testing.T) {
	module := parseAndConvert(t, parse.LanguageTypeScript, "a.ts", `
function greet(name) {
	return "hi " + name;
}
`)
	assert.Equal(t, types.NodeModule, module.Kind)

	fn := findFirst(module, types.NodeFunction)
	require.NotNil(t, fn)
	assert.Equal(t, "greet", fn.Name)
	assert.Equal(t, []string{"name"}, fn.Parameters)
}

func TestToUnifiedNodes_AnonymousFunctionFallsBackToDeclaratorName(t *testing.T) {
	module := parseAndConvert(t, parse.LanguageTypeScript, "a.ts", `
const handler = () => {};
`)
	fn := findFirst(module, types.NodeFunction)
	require.NotNil(t, fn)
	assert.Equal(t, "handler", fn.Name)
}

func TestToUnifiedNodes_ImportCapturesSourceAndSpecifiers(t *testing.T) {
	module := parseAndConvert(t, parse.LanguageTypeScript, "a.ts", `
import { helper as h } from "./helper";
`)
	imp := findFirst(module, types.NodeImport)
	require.NotNil(t, imp)
	assert.Equal(t, "./helper", imp.Source)
	assert.Equal(t, []string{"h"}, imp.Specifiers)
}

func TestToUnifiedNodes_ClassWithSuperClassAndMethod(t *testing.T) {
	module := parseAndConvert(t, parse.LanguageTypeScript, "a.ts", `
class Dog extends Animal {
	bark() { return "woof"; }
}
`)
	class := findFirst(module, types.NodeClass)
	require.NotNil(t, class)
	assert.Equal(t, "Dog", class.Name)
	assert.Equal(t, "Animal", class.SuperClass)

	method := findFirst(module, types.NodeMethod)
	require.NotNil(t, method)
	assert.Equal(t, "bark", method.Name)
}

func TestToUnifiedNodes_Python(t *testing.T) {
	module := parseAndConvert(t, parse.LanguagePython, "a.py", `
def greet(name):
    return "hi " + name
`)
	fn := findFirst(module, types.NodeFunction)
	require.NotNil(t, fn)
	assert.Equal(t, "greet", fn.Name)
}

func TestAddChild_SetsParentBackReference(t *testing.T) {
	parent := &types.UnifiedNode{Kind: types.NodeModule}
	child := &types.UnifiedNode{Kind: types.NodeFunction, Name: "f"}
	parent.AddChild(child)

	assert.Same(t, parent, child.Parent)
	require.Len(t, parent.Children, 1)
	assert.Same(t, child, parent.Children[0])
}
