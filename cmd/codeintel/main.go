package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codewatch-dev/codeintel/internal/codeintel/analyzer"
	"github.com/codewatch-dev/codeintel/pkg/config"
	"github.com/codewatch-dev/codeintel/pkg/logger"
)

var (
	// Version will be set during build
	Version = "dev"
	// BuildDate will be set during build
	BuildDate = "unknown"

	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "codeintel",
	Short: "Static code intelligence core",
	Long: `codeintel parses TypeScript, JavaScript, and Python source into a
unified model, computes complexity and maintainability metrics, builds a
project dependency graph, and reports rule-engine findings.`,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <path>",
	Short: "Analyze a project directory and print findings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}

		log := logger.FromConfigLevel(cfg.LogLevel)

		a, err := analyzer.New(*cfg, log)
		if err != nil {
			return fmt.Errorf("constructing analyzer: %w", err)
		}
		defer a.Close()

		result, err := a.AnalyzeProject(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("analyzing project: %w", err)
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a YAML configuration file")
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("codeintel %s (built %s)\n", Version, BuildDate)
		},
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
