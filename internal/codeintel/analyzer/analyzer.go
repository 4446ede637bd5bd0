// Package analyzer wires the parser, unified adapters, metric
// calculators, structure analyzers, dependency graph builder, impact
// analyzer, and rule engine into a single project-level entry point
// (C8): AnalyzeProject, AnalyzeFile, and incremental re-analysis.
package analyzer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/codewatch-dev/codeintel/internal/codeintel/depgraph"
	"github.com/codewatch-dev/codeintel/internal/codeintel/impact"
	"github.com/codewatch-dev/codeintel/internal/codeintel/metrics"
	"github.com/codewatch-dev/codeintel/internal/codeintel/parse"
	"github.com/codewatch-dev/codeintel/internal/codeintel/rules"
	"github.com/codewatch-dev/codeintel/internal/codeintel/structure"
	"github.com/codewatch-dev/codeintel/internal/codeintel/types"
	"github.com/codewatch-dev/codeintel/internal/codeintel/unify"
)

// Analyzer is the project-level orchestrator. It owns no process-global
// state: the parser, rule engine, and configuration are all constructed
// once and reused across AnalyzeProject/AnalyzeFiles calls.
type Analyzer struct {
	parser *parse.Parser
	cfg    types.Configuration
	logger types.Logger
	engine *rules.Engine
}

// New constructs an Analyzer from a resolved Configuration.
func New(cfg types.Configuration, logger types.Logger) (*Analyzer, error) {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Analyzer{
		parser: parse.New(),
		cfg:    cfg,
		logger: logger,
		engine: rules.NewEngineFromConfig(cfg, logger),
	}, nil
}

// Close releases the underlying parser's grammar resources.
func (a *Analyzer) Close() {
	a.parser.Close()
}

// DiscoverFiles expands cfg.AnalyzePaths against root, excluding any
// match of cfg.ExcludePaths, and returns the resulting sorted, deduped
// file list.
func (a *Analyzer) DiscoverFiles(root string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string

	for _, pattern := range a.cfg.AnalyzePaths {
		matches, err := doublestar.Glob(os.DirFS(root), pattern)
		if err != nil {
			return nil, fmt.Errorf("analyzer: invalid analyze pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] || a.isExcluded(m) {
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (a *Analyzer) isExcluded(path string) bool {
	for _, pattern := range a.cfg.ExcludePaths {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
	}
	return false
}

// AnalyzeFile runs the full per-file pipeline (parse, metrics, structure,
// findings) and returns its FileAnalysisResult. It does not consult or
// mutate the project dependency graph; callers needing project-wide
// findings (e.g. circular dependency detection) run AnalyzeProject.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string, content []byte) (types.FileAnalysisResult, error) {
	lang := parse.DetectLanguage(path)
	parsed, err := a.parser.Parse(ctx, path, content)
	if err != nil {
		return types.FileAnalysisResult{}, fmt.Errorf("analyzer: parsing %s: %w", path, err)
	}
	defer parsed.Close()

	root := parsed.Tree.RootNode()

	result := types.FileAnalysisResult{
		FilePath:     path,
		Language:     string(lang),
		Metrics:      map[string]float64{},
		Dependencies: structure.AnalyzeModuleDependencies(root, content, lang),
		Functions:    structure.AnalyzeFunctions(root, content, lang),
		Classes:      structure.AnalyzeClasses(root, content, lang),
	}

	result.Metrics["syntaxErrorRatio"] = parsed.ErrorRatio
	result.Metrics["linesOfCode"] = float64(metrics.LOC(content))

	halstead := metrics.ComputeHalstead(content, lang)
	result.Metrics["halsteadVolume"] = halstead.Volume

	if cc, ok := aggregateComplexity(result.Functions); ok {
		result.Metrics["cyclomaticComplexity"] = cc
	}
	if cog, ok := aggregateCognitive(result.Functions); ok {
		result.Metrics["cognitiveComplexity"] = cog
	}
	result.Metrics["maintainabilityIndex"] = float64(metrics.MaintainabilityIndex(
		halstead.Volume, int(result.Metrics["cyclomaticComplexity"]), metrics.LOC(content),
	))

	_ = unify.For(lang) // adapters exercised separately; kept available for callers building a symbol tree

	result.Findings = a.engine.EvaluateFile(result)
	return result, nil
}

// AnalyzeProject discovers files under root, analyzes each, builds the
// dependency graph, computes stability/risk, and evaluates project-level
// rules. It never aborts because one file failed to parse; a failing
// file is logged and skipped.
func (a *Analyzer) AnalyzeProject(ctx context.Context, root string) (*types.AnalysisResult, error) {
	paths, err := a.DiscoverFiles(root)
	if err != nil {
		return nil, err
	}

	files := make([]types.FileAnalysisResult, 0, len(paths))
	for _, rel := range paths {
		content, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			a.logger.Warn("skipping unreadable file", map[string]interface{}{"path": rel, "error": err.Error()})
			continue
		}
		result, err := a.AnalyzeFile(ctx, rel, content)
		if err != nil {
			a.logger.Warn("skipping unparseable file", map[string]interface{}{"path": rel, "error": err.Error()})
			continue
		}
		files = append(files, result)
	}

	stats := a.parser.Stats()
	a.logger.Info("parse statistics", map[string]interface{}{
		"filesParsed":       stats.FilesParsed,
		"filesFailed":       stats.FilesFailed,
		"averageErrorRatio": stats.AverageErrorRatio(),
	})

	return a.assemble(files), nil
}

// AnalyzeFiles implements one-hop incremental re-analysis (§4.8): the
// impacted set is changedPaths plus every file one import-edge away from
// them in either direction (Imports and ImportedBy), each impacted path
// is reread from rootPath and reanalyzed, and files that no longer exist
// on disk are silently dropped from the result. Results for files
// outside the impacted set are retained by reference from previous. If
// anything goes wrong while doing this — a read failure other than the
// file being gone, or a parse failure — AnalyzeFiles logs the failure and
// falls back to a full AnalyzeProject, per §4.8 step 5 and §7.
func (a *Analyzer) AnalyzeFiles(ctx context.Context, rootPath string, previous *types.AnalysisResult, changedPaths []string) (*types.AnalysisResult, error) {
	if previous == nil || previous.Graph == nil {
		return nil, fmt.Errorf("analyzer: incremental analysis requires a previous full result")
	}

	result, err := a.reanalyzeImpacted(ctx, rootPath, previous, changedPaths)
	if err != nil {
		a.logger.Error("incremental analysis failed, falling back to full re-analysis", map[string]interface{}{
			"error": err.Error(),
		})
		return a.AnalyzeProject(ctx, rootPath)
	}
	return result, nil
}

// reanalyzeImpacted computes the impacted set and reanalyzes it. Any
// error here is treated as an internal failure by the caller and turned
// into a full AnalyzeProject fallback.
func (a *Analyzer) reanalyzeImpacted(ctx context.Context, rootPath string, previous *types.AnalysisResult, changedPaths []string) (*types.AnalysisResult, error) {
	impacted := map[string]bool{}
	for _, path := range changedPaths {
		impacted[path] = true
		if node, ok := previous.Graph.Nodes[path]; ok {
			for _, dep := range node.Imports {
				impacted[dep] = true
			}
			for _, dependent := range node.ImportedBy {
				impacted[dependent] = true
			}
		}
	}

	byPath := make(map[string]types.FileAnalysisResult, len(previous.Files))
	for _, f := range previous.Files {
		byPath[f.FilePath] = f
	}

	for path := range impacted {
		content, err := os.ReadFile(filepath.Join(rootPath, path))
		if err != nil {
			if os.IsNotExist(err) {
				delete(byPath, path)
				continue
			}
			return nil, fmt.Errorf("reading impacted file %s: %w", path, err)
		}
		result, err := a.AnalyzeFile(ctx, path, content)
		if err != nil {
			return nil, fmt.Errorf("analyzing impacted file %s: %w", path, err)
		}
		byPath[path] = result
	}

	files := make([]types.FileAnalysisResult, 0, len(byPath))
	for _, f := range byPath {
		files = append(files, f)
	}

	return a.assemble(files), nil
}

// assemble builds the dependency graph, stability/risk maps, and
// project-level findings from a fully analyzed file set.
func (a *Analyzer) assemble(files []types.FileAnalysisResult) *types.AnalysisResult {
	graph := depgraph.Build(files, a.logger)
	stability := impact.ComputeStability(graph)
	risk := impact.ComputeRiskScores(graph, stability)

	var findings []types.Finding
	for _, f := range files {
		findings = append(findings, f.Findings...)
	}
	findings = append(findings, a.engine.EvaluateProject(files, graph)...)

	return &types.AnalysisResult{
		Files:            files,
		Findings:         findings,
		Graph:            graph,
		StabilityMetrics: stability,
		RiskScores:       risk,
	}
}

func aggregateComplexity(functions []types.FunctionInfo) (float64, bool) {
	if len(functions) == 0 {
		return 0, false
	}
	max := 0
	for _, f := range functions {
		if f.CyclomaticComplexity > max {
			max = f.CyclomaticComplexity
		}
	}
	return float64(max), true
}

func aggregateCognitive(functions []types.FunctionInfo) (float64, bool) {
	if len(functions) == 0 {
		return 0, false
	}
	max := 0
	for _, f := range functions {
		if f.CognitiveComplexity > max {
			max = f.CognitiveComplexity
		}
	}
	return float64(max), true
}

type noopLogger struct{}

func (noopLogger) Debug(string, map[string]interface{}) {}
func (noopLogger) Info(string, map[string]interface{})  {}
func (noopLogger) Warn(string, map[string]interface{})  {}
func (noopLogger) Error(string, map[string]interface{}) {}
