// Package config provides the external collaborator that loads the
// analysis core's Configuration record from a YAML file. The core itself
// never parses a file; this package exists only to support the ambient
// CLI front end.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/codewatch-dev/codeintel/internal/codeintel/types"
)

// Load reads configFile (if non-empty) and deep-merges it over
// types.DefaultConfiguration(). An empty configFile returns the defaults.
func Load(configFile string) (*types.Configuration, error) {
	cfg := types.DefaultConfiguration()

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}

		var overlay types.Configuration
		if err := yaml.Unmarshal(data, &overlay); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
		}

		mergeConfiguration(&cfg, overlay)
	}

	cfg.LogLevel = cfg.ResolvedLogLevel()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv loads configs/<env>.yaml, mirroring the teacher's
// environment-keyed config file convention.
func LoadFromEnv(env string) (*types.Configuration, error) {
	configFile := filepath.Join("configs", fmt.Sprintf("%s.yaml", env))
	return Load(configFile)
}

// mergeConfiguration overlays any field explicitly set in overlay onto
// base, field by field (yaml.Unmarshal leaves unset fields at their zero
// value, so zero values are treated as "not set" for slices/maps; a
// present-but-empty override must be spelled out as an empty YAML list).
func mergeConfiguration(base *types.Configuration, overlay types.Configuration) {
	if overlay.AnalyzePaths != nil {
		base.AnalyzePaths = overlay.AnalyzePaths
	}
	if overlay.ExcludePaths != nil {
		base.ExcludePaths = overlay.ExcludePaths
	}
	if len(overlay.Rules) > 0 {
		if base.Rules == nil {
			base.Rules = make(map[string]types.RuleConfig, len(overlay.Rules))
		}
		for id, rule := range overlay.Rules {
			base.Rules[id] = rule
		}
	}
	if overlay.Incremental != (types.IncrementalConfig{}) {
		base.Incremental = overlay.Incremental
	}
	if overlay.LogLevel != "" {
		base.LogLevel = overlay.LogLevel
	}
	if overlay.DebugMode {
		base.DebugMode = true
		if overlay.LogLevel == "" {
			base.LogLevel = types.LogLevelDebug
		}
	}
}

// Validate checks the loaded configuration is internally consistent.
func Validate(cfg types.Configuration) error {
	if len(cfg.AnalyzePaths) == 0 {
		return fmt.Errorf("analyzePaths cannot be empty")
	}

	validLevels := map[types.LogLevel]bool{
		types.LogLevelSilent: true, types.LogLevelInfo: true,
		types.LogLevelWarn: true, types.LogLevelDebug: true, "": true,
	}
	if !validLevels[cfg.LogLevel] {
		return fmt.Errorf("invalid logLevel: %s", cfg.LogLevel)
	}

	for id, rule := range cfg.Rules {
		if rule.Threshold != nil && rule.Metric == "" {
			return fmt.Errorf("rule %s: threshold set without metric", id)
		}
	}

	return nil
}
