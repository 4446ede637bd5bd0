package rules

import "github.com/codewatch-dev/codeintel/internal/codeintel/types"

// BuildRules turns a Configuration's Rules map into concrete file- and
// project-level rules. An entry with Enabled=false is skipped. An entry
// naming the reserved id module.circularDependency becomes a
// CircularDependencyRule regardless of Metric/Threshold. An entry named
// syntax.error with a Threshold becomes a SyntaxErrorRule. An entry with
// both Metric and Threshold set becomes a MetricThresholdRule. Anything
// else is logged as unknown and skipped, never aborting construction.
func BuildRules(cfg types.Configuration, logger types.Logger) (fileRules []FileRule, projectRules []ProjectRule) {
	if logger == nil {
		logger = noopLogger{}
	}
	for _, id := range sortedRuleIDs(cfg.Rules) {
		rule := cfg.Rules[id]
		if !rule.Enabled {
			continue
		}
		switch {
		case id == "module.circularDependency":
			projectRules = append(projectRules, &CircularDependencyRule{Severity: severityOrDefault(rule.Severity)})
		case id == "syntax.error" && rule.Threshold != nil:
			fileRules = append(fileRules, &SyntaxErrorRule{
				Threshold: *rule.Threshold,
				Severity:  severityOrDefault(rule.Severity),
			})
		case rule.Metric != "" && rule.Threshold != nil:
			fileRules = append(fileRules, &MetricThresholdRule{
				ruleID:    id,
				Metric:    rule.Metric,
				Threshold: *rule.Threshold,
				Severity:  severityOrDefault(rule.Severity),
			})
		default:
			logger.Warn("unknown rule type", map[string]interface{}{"ruleId": id})
		}
	}
	return fileRules, projectRules
}

// NewEngineFromConfig is a convenience wrapper combining BuildRules and
// NewEngine for the analyzer orchestrator's common path.
func NewEngineFromConfig(cfg types.Configuration, logger types.Logger) *Engine {
	fileRules, projectRules := BuildRules(cfg, logger)
	return NewEngine(fileRules, projectRules, logger)
}

func severityOrDefault(s types.Severity) types.Severity {
	if s == "" {
		return types.SeverityWarning
	}
	return s
}
