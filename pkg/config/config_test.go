package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codewatch-dev/codeintel/internal/codeintel/types"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name         string
		configData   string
		expectError  bool
		validateFunc func(*testing.T, *types.Configuration)
	}{
		{
			name:        "load with empty file path",
			configData:  "",
			expectError: false,
			validateFunc: func(t *testing.T, c *types.Configuration) {
				assert.Contains(t, c.AnalyzePaths, "**/*.ts")
				assert.Equal(t, types.LogLevelInfo, c.LogLevel)
				assert.True(t, c.Incremental.Enabled)
			},
		},
		{
			name: "load valid config overlays analyzePaths and rules",
			configData: `
analyzePaths:
  - "src/**/*.ts"
excludePaths:
  - "**/*.spec.ts"
rules:
  function.complexity:
    enabled: true
    severity: warning
    threshold: 10
    metric: cyclomaticComplexity
logLevel: debug
`,
			expectError: false,
			validateFunc: func(t *testing.T, c *types.Configuration) {
				assert.Equal(t, []string{"src/**/*.ts"}, c.AnalyzePaths)
				assert.Equal(t, []string{"**/*.spec.ts"}, c.ExcludePaths)
				assert.Equal(t, types.LogLevelDebug, c.LogLevel)
				rule := c.Rules["function.complexity"]
				assert.True(t, rule.Enabled)
				require.NotNil(t, rule.Threshold)
				assert.Equal(t, 10.0, *rule.Threshold)
			},
		},
		{
			name: "debugMode alias sets debug level when logLevel unset",
			configData: `
debugMode: true
`,
			expectError: false,
			validateFunc: func(t *testing.T, c *types.Configuration) {
				assert.Equal(t, types.LogLevelDebug, c.LogLevel)
			},
		},
		{
			name: "invalid yaml",
			configData: `
analyzePaths: ["a.ts"
  bad indent
`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var configFile string

			if tt.configData != "" {
				tmpDir := t.TempDir()
				configFile = filepath.Join(tmpDir, "test-config.yaml")
				err := os.WriteFile(configFile, []byte(tt.configData), 0644)
				require.NoError(t, err)
			}

			cfg, err := Load(configFile)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
			} else {
				require.NoError(t, err)
				require.NotNil(t, cfg)
				if tt.validateFunc != nil {
					tt.validateFunc(t, cfg)
				}
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*types.Configuration)
		expectError bool
	}{
		{name: "defaults are valid", mutate: func(c *types.Configuration) {}},
		{
			name:        "empty analyzePaths",
			mutate:      func(c *types.Configuration) { c.AnalyzePaths = nil },
			expectError: true,
		},
		{
			name:        "invalid log level",
			mutate:      func(c *types.Configuration) { c.LogLevel = "invalid" },
			expectError: true,
		},
		{
			name: "threshold without metric",
			mutate: func(c *types.Configuration) {
				th := 10.0
				c.Rules = map[string]types.RuleConfig{
					"x": {Enabled: true, Threshold: &th},
				}
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := types.DefaultConfiguration()
			tt.mutate(&cfg)
			err := Validate(cfg)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
