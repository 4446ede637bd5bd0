package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codewatch-dev/codeintel/internal/codeintel/types"
)

func threshold(v float64) *float64 { return &v }

func TestMetricThresholdRule_FiresOnlyAboveThreshold(t *testing.T) {
	rule := &MetricThresholdRule{
		ruleID:    "function.complexity",
		Metric:    "cyclomaticComplexity",
		Threshold: 10,
		Severity:  types.SeverityWarning,
	}

	below := types.FileAnalysisResult{FilePath: "a.ts", Metrics: map[string]float64{"cyclomaticComplexity": 10}}
	assert.Empty(t, rule.EvaluateFile(below), "value equal to threshold must not fire")

	above := types.FileAnalysisResult{FilePath: "a.ts", Metrics: map[string]float64{"cyclomaticComplexity": 15}}
	findings := rule.EvaluateFile(above)
	require.Len(t, findings, 1)

	f := findings[0]
	assert.Equal(t, "function.complexity.exceeded", f.ID)
	assert.Equal(t, types.FindingKindMetric, f.Kind)
	assert.Equal(t, types.SeverityWarning, f.Severity)
	assert.Equal(t, "cyclomaticComplexity", f.Details["metricName"])
	assert.Equal(t, 15.0, f.Details["value"])
	assert.Equal(t, 10.0, f.Details["threshold"])
}

func TestMetricThresholdRule_MissingMetricDoesNotFire(t *testing.T) {
	rule := &MetricThresholdRule{ruleID: "function.complexity", Metric: "cyclomaticComplexity", Threshold: 10}
	result := types.FileAnalysisResult{FilePath: "a.ts", Metrics: map[string]float64{}}
	assert.Empty(t, rule.EvaluateFile(result))
}

func TestBuildRules_FromConfiguration(t *testing.T) {
	cfg := types.Configuration{
		Rules: map[string]types.RuleConfig{
			"function.complexity": {
				Enabled: true, Severity: types.SeverityWarning,
				Threshold: threshold(10), Metric: "cyclomaticComplexity",
			},
			"module.circularDependency": {
				Enabled: true, Severity: types.SeverityError,
			},
			"disabled.rule": {
				Enabled: false, Threshold: threshold(5), Metric: "x",
			},
			"unknown.rule": {
				Enabled: true,
			},
		},
	}

	fileRules, projectRules := BuildRules(cfg, nil)
	require.Len(t, fileRules, 1)
	require.Len(t, projectRules, 1)
	assert.Equal(t, "function.complexity", fileRules[0].ID())
	assert.Equal(t, "module.circularDependency", projectRules[0].ID())
}

func TestEngine_EvaluateFile_AccumulatesAcrossRules(t *testing.T) {
	engine := NewEngine([]FileRule{
		&MetricThresholdRule{ruleID: "function.complexity", Metric: "cyclomaticComplexity", Threshold: 10, Severity: types.SeverityWarning},
		&MetricThresholdRule{ruleID: "function.cognitive", Metric: "cognitiveComplexity", Threshold: 15, Severity: types.SeverityWarning},
	}, nil, nil)

	result := types.FileAnalysisResult{
		FilePath: "a.ts",
		Metrics: map[string]float64{
			"cyclomaticComplexity": 15,
			"cognitiveComplexity":  20,
		},
	}

	findings := engine.EvaluateFile(result)
	require.Len(t, findings, 2)
}

func TestCircularDependencyRule_EmitsOneFindingPerCycle(t *testing.T) {
	rule := &CircularDependencyRule{Severity: types.SeverityError}
	results := []types.FileAnalysisResult{
		{FilePath: "a.ts", Language: "typescript", Dependencies: []string{"./b"}},
		{FilePath: "b.ts", Language: "typescript", Dependencies: []string{"./a"}},
	}

	findings := rule.EvaluateProject(results, nil)
	require.Len(t, findings, 1)
	assert.Equal(t, "module.circularDependency", findings[0].ID)
	assert.Equal(t, types.FindingKindArchitecture, findings[0].Kind)
	assert.Contains(t, findings[0].Message, "found cycle:")
}

func TestEngine_RulePanicIsCaughtAndLogged(t *testing.T) {
	engine := NewEngine([]FileRule{&panickingRule{}}, nil, nil)
	findings := engine.EvaluateFile(types.FileAnalysisResult{FilePath: "a.ts"})
	assert.Empty(t, findings)
}

type panickingRule struct{}

func (panickingRule) ID() string                                            { return "panics" }
func (panickingRule) Level() Level                                          { return LevelFile }
func (panickingRule) EvaluateFile(types.FileAnalysisResult) []types.Finding { panic("boom") }
