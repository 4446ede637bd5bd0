// Package rules implements the rule engine (C7): a pluggable set of
// file-level and project-level rules, built from configuration by a
// factory, dispatched by an Engine.
package rules

import (
	"fmt"
	"sort"

	"github.com/codewatch-dev/codeintel/internal/codeintel/depgraph"
	"github.com/codewatch-dev/codeintel/internal/codeintel/types"
)

// Level discriminates where a rule is evaluated.
type Level string

const (
	LevelFile    Level = "file"
	LevelProject Level = "project"
)

// Rule is any object exposing an id, a level, and the matching evaluate
// method. New rules extend the factory's dispatch, not this interface.
type Rule interface {
	ID() string
	Level() Level
}

// FileRule evaluates a single file's result.
type FileRule interface {
	Rule
	EvaluateFile(result types.FileAnalysisResult) []types.Finding
}

// ProjectRule evaluates the whole result set, optionally given a
// pre-built dependency graph.
type ProjectRule interface {
	Rule
	EvaluateProject(results []types.FileAnalysisResult, graph *types.DependencyGraph) []types.Finding
}

// MetricThresholdRule fires when fileResult.Metrics[Metric] > Threshold.
type MetricThresholdRule struct {
	ruleID    string
	Metric    string
	Threshold float64
	Severity  types.Severity
}

func (r *MetricThresholdRule) ID() string  { return r.ruleID }
func (r *MetricThresholdRule) Level() Level { return LevelFile }

func (r *MetricThresholdRule) EvaluateFile(result types.FileAnalysisResult) []types.Finding {
	value, ok := result.Metrics[r.Metric]
	if !ok || value <= r.Threshold {
		return nil
	}
	return []types.Finding{{
		ID:       r.ruleID + ".exceeded",
		Kind:     types.FindingKindMetric,
		Message:  fmt.Sprintf("%s exceeded threshold: %.2f > %.2f", r.Metric, value, r.Threshold),
		Severity: r.Severity,
		Details: map[string]interface{}{
			"metricName": r.Metric,
			"value":      value,
			"threshold":  r.Threshold,
			"filePath":   result.FilePath,
		},
	}}
}

// CircularDependencyRule emits one finding per detected cycle.
type CircularDependencyRule struct {
	Severity types.Severity
}

func (r *CircularDependencyRule) ID() string  { return "module.circularDependency" }
func (r *CircularDependencyRule) Level() Level { return LevelProject }

func (r *CircularDependencyRule) EvaluateProject(results []types.FileAnalysisResult, graph *types.DependencyGraph) []types.Finding {
	if graph == nil {
		graph = reconstructGraph(results)
	}
	var findings []types.Finding
	for _, cycle := range depgraph.GetCircularDependencies(graph) {
		findings = append(findings, types.Finding{
			ID:       "module.circularDependency",
			Kind:     types.FindingKindArchitecture,
			Message:  "found cycle: " + joinCycle(cycle),
			Severity: r.Severity,
			Details: map[string]interface{}{
				"cycle": cycle,
			},
		})
	}
	return findings
}

func joinCycle(cycle []string) string {
	out := ""
	for i, p := range cycle {
		if i > 0 {
			out += " -> "
		}
		out += p
	}
	return out
}

func reconstructGraph(results []types.FileAnalysisResult) *types.DependencyGraph {
	return depgraph.Build(results, nil)
}

// SyntaxErrorRule emits a syntax.error finding when a file's
// syntaxErrorRatio metric exceeds the configured threshold.
type SyntaxErrorRule struct {
	Threshold float64
	Severity  types.Severity
}

func (r *SyntaxErrorRule) ID() string  { return "syntax.error" }
func (r *SyntaxErrorRule) Level() Level { return LevelFile }

func (r *SyntaxErrorRule) EvaluateFile(result types.FileAnalysisResult) []types.Finding {
	ratio, ok := result.Metrics["syntaxErrorRatio"]
	if !ok || ratio <= r.Threshold {
		return nil
	}
	return []types.Finding{{
		ID:       "syntax.error",
		Kind:     types.FindingKindSyntaxError,
		Message:  fmt.Sprintf("syntax error ratio %.2f exceeds threshold %.2f", ratio, r.Threshold),
		Severity: r.Severity,
		Details: map[string]interface{}{
			"metricName": "syntaxErrorRatio",
			"value":      ratio,
			"threshold":  r.Threshold,
			"filePath":   result.FilePath,
		},
	}}
}

// Engine dispatches file- and project-level rules in registration order,
// logging and skipping a rule that panics rather than aborting the batch.
type Engine struct {
	fileRules    []FileRule
	projectRules []ProjectRule
	logger       types.Logger
}

// NewEngine constructs an Engine over the given rules, in registration
// order.
func NewEngine(fileRules []FileRule, projectRules []ProjectRule, logger types.Logger) *Engine {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Engine{fileRules: fileRules, projectRules: projectRules, logger: logger}
}

// EvaluateFile runs every file rule against result, in registration
// order, accumulating findings.
func (e *Engine) EvaluateFile(result types.FileAnalysisResult) (findings []types.Finding) {
	for _, rule := range e.fileRules {
		findings = append(findings, e.safeEvaluateFile(rule, result)...)
	}
	return findings
}

func (e *Engine) safeEvaluateFile(rule FileRule, result types.FileAnalysisResult) (findings []types.Finding) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("rule evaluation failed", map[string]interface{}{
				"rule": rule.ID(), "panic": fmt.Sprint(r),
			})
			findings = nil
		}
	}()
	return rule.EvaluateFile(result)
}

// EvaluateProject runs every project rule against the full result set.
func (e *Engine) EvaluateProject(results []types.FileAnalysisResult, graph *types.DependencyGraph) (findings []types.Finding) {
	for _, rule := range e.projectRules {
		findings = append(findings, e.safeEvaluateProject(rule, results, graph)...)
	}
	return findings
}

func (e *Engine) safeEvaluateProject(rule ProjectRule, results []types.FileAnalysisResult, graph *types.DependencyGraph) (findings []types.Finding) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("rule evaluation failed", map[string]interface{}{
				"rule": rule.ID(), "panic": fmt.Sprint(r),
			})
			findings = nil
		}
	}()
	return rule.EvaluateProject(results, graph)
}

type noopLogger struct{}

func (noopLogger) Debug(string, map[string]interface{}) {}
func (noopLogger) Info(string, map[string]interface{})  {}
func (noopLogger) Warn(string, map[string]interface{})  {}
func (noopLogger) Error(string, map[string]interface{}) {}

// sortedRuleIDs is a small helper used by the factory to produce
// deterministic construction order from a configuration map.
func sortedRuleIDs(rules map[string]types.RuleConfig) []string {
	ids := make([]string, 0, len(rules))
	for id := range rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
