package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codewatch-dev/codeintel/internal/codeintel/types"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	cfg := types.DefaultConfiguration()
	a, err := New(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func TestAnalyzeFile_ComputesMetricsAndFindsDependencies(t *testing.T) {
	a := newTestAnalyzer(t)
	content := []byte(`
import { helper } from "./helper";

function check(a, b) {
	if (a && b) {
		return helper(a);
	}
	return null;
}
`)
	result, err := a.AnalyzeFile(context.Background(), "check.ts", content)
	require.NoError(t, err)

	assert.Equal(t, []string{"./helper"}, result.Dependencies)
	require.Len(t, result.Functions, 1)
	assert.Equal(t, "check", result.Functions[0].Name)
	assert.GreaterOrEqual(t, result.Functions[0].CyclomaticComplexity, 2)
	assert.Contains(t, result.Metrics, "maintainabilityIndex")
	assert.Contains(t, result.Metrics, "halsteadVolume")
}

func TestAnalyzeProject_BuildsGraphAndDetectsCycle(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.ts", `import { b } from "./b"; export function a() { return b(); }`)
	writeFile(t, root, "b.ts", `import { a } from "./a"; export function b() { return a(); }`)

	cfg := types.DefaultConfiguration()
	cfg.Rules = map[string]types.RuleConfig{
		"module.circularDependency": {Enabled: true, Severity: types.SeverityError},
	}
	a, err := New(cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	result, err := a.AnalyzeProject(context.Background(), root)
	require.NoError(t, err)

	require.Len(t, result.Files, 2)
	require.NotNil(t, result.Graph)
	assert.Contains(t, result.Graph.Nodes, "a.ts")

	var foundCycleFinding bool
	for _, f := range result.Findings {
		if f.ID == "module.circularDependency" {
			foundCycleFinding = true
		}
	}
	assert.True(t, foundCycleFinding, "expected a circular dependency finding")
}

func TestAnalyzeFiles_IncrementalRetainsUnaffectedResults(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.ts", `import { b } from "./b"; export function a() { return b(); }`)
	writeFile(t, root, "b.ts", `export function b() { return 1; }`)
	writeFile(t, root, "c.ts", `export function c() { return 2; }`)

	cfg := types.DefaultConfiguration()
	a, err := New(cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	full, err := a.AnalyzeProject(context.Background(), root)
	require.NoError(t, err)

	var originalC *types.FileAnalysisResult
	for i := range full.Files {
		if full.Files[i].FilePath == "c.ts" {
			originalC = &full.Files[i]
		}
	}
	require.NotNil(t, originalC)

	writeFile(t, root, "b.ts", `export function b() { return 2; }`)
	updated, err := a.AnalyzeFiles(context.Background(), root, full, []string{"b.ts"})
	require.NoError(t, err)

	for _, f := range updated.Files {
		if f.FilePath == "c.ts" {
			assert.Equal(t, originalC.Metrics, f.Metrics)
		}
	}
}

func TestAnalyzeFiles_ReanalyzesOneHopImportsNeighbor(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.ts", `import { b } from "./b"; export function a() { return b(); }`)
	writeFile(t, root, "b.ts", `export function b() { return 1; }`)

	cfg := types.DefaultConfiguration()
	a, err := New(cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	full, err := a.AnalyzeProject(context.Background(), root)
	require.NoError(t, err)

	// b.ts is reachable only via a.ts's Imports edge, not ImportedBy;
	// mutating it without listing it in changedPaths must still surface
	// the change because the impacted set is imports UNION importedBy.
	writeFile(t, root, "b.ts", `export function b() { return 1; } export function extra() { return 2; }`)

	updated, err := a.AnalyzeFiles(context.Background(), root, full, []string{"a.ts"})
	require.NoError(t, err)

	var bResult *types.FileAnalysisResult
	for i := range updated.Files {
		if updated.Files[i].FilePath == "b.ts" {
			bResult = &updated.Files[i]
		}
	}
	require.NotNil(t, bResult)
	assert.Len(t, bResult.Functions, 2)
}

func TestAnalyzeFiles_DropsDeletedImpactedFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.ts", `import { b } from "./b"; export function a() { return b(); }`)
	writeFile(t, root, "b.ts", `export function b() { return 1; }`)

	cfg := types.DefaultConfiguration()
	a, err := New(cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	full, err := a.AnalyzeProject(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, full.Files, 2)

	require.NoError(t, os.Remove(filepath.Join(root, "b.ts")))

	updated, err := a.AnalyzeFiles(context.Background(), root, full, []string{"b.ts"})
	require.NoError(t, err)

	for _, f := range updated.Files {
		assert.NotEqual(t, "b.ts", f.FilePath)
	}
}

type spyLogger struct {
	errors []string
}

func (s *spyLogger) Debug(string, map[string]interface{}) {}
func (s *spyLogger) Info(string, map[string]interface{})  {}
func (s *spyLogger) Warn(string, map[string]interface{})  {}
func (s *spyLogger) Error(msg string, _ map[string]interface{}) {
	s.errors = append(s.errors, msg)
}

func TestAnalyzeFiles_InternalFailureFallsBackToFullReanalysis(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("permission bits aren't enforced for root")
	}
	root := t.TempDir()
	writeFile(t, root, "a.ts", `export function a() { return 1; }`)
	writeFile(t, root, "d.ts", `export function d() { return 1; }`)

	logger := &spyLogger{}
	a, err := New(types.DefaultConfiguration(), logger)
	require.NoError(t, err)
	defer a.Close()

	full, err := a.AnalyzeProject(context.Background(), root)
	require.NoError(t, err)

	dPath := filepath.Join(root, "d.ts")
	require.NoError(t, os.Chmod(dPath, 0o000))
	t.Cleanup(func() { _ = os.Chmod(dPath, 0o644) })

	updated, err := a.AnalyzeFiles(context.Background(), root, full, []string{"d.ts"})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.NotEmpty(t, logger.errors)
}

func TestDiscoverFiles_ExcludesConfiguredPatterns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/app.ts", `export const x = 1;`)
	writeFile(t, root, "node_modules/lib/index.ts", `export const y = 1;`)

	cfg := types.DefaultConfiguration()
	a, err := New(cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	files, err := a.DiscoverFiles(root)
	require.NoError(t, err)

	assert.Contains(t, files, "src/app.ts")
	assert.NotContains(t, files, "node_modules/lib/index.ts")
}
