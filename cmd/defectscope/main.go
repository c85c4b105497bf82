package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"defectscope/internal/config"
	"defectscope/internal/logging"
)

// Version is stamped at build time.
var Version = "0.3.0"

var (
	// Global flags
	verbose   bool
	workspace string
	cfgPath   string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "defectscope",
	Short: "defectscope - defect classification and AI wiki generation",
	Long: `defectscope trains and evaluates defect classifiers on tabular
manufacturing data, and generates an AI-written wiki for a repository by
feeding its files through prompt templates to the Gemini API.

Typical usage:
  defectscope train --data defects.csv
  defectscope wiki generate
  defectscope wiki publish`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if workspace == "" {
			workspace, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to resolve working directory: %w", err)
			}
		}

		cfg := loadConfig()
		return logging.Initialize(workspace, logging.Settings{
			DebugMode:  cfg.Logging.DebugMode || verbose,
			Level:      cfg.Logging.Level,
			Categories: cfg.Logging.Categories,
		})
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Close()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// versionCmd prints the build version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the defectscope version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("defectscope %s\n", Version)
	},
}

// loadConfig reads the workspace config, falling back to defaults when the
// file does not exist yet.
func loadConfig() *config.Config {
	cfg, err := config.LoadOrDefault(configPath())
	if err != nil {
		if logger != nil {
			logger.Warn("Falling back to default config", zap.Error(err))
		}
		return config.DefaultConfig()
	}
	return cfg
}

func configPath() string {
	if cfgPath != "" {
		return cfgPath
	}
	return filepath.Join(workspace, config.DefaultPath)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Config file path (default: .ai-docs/config.yaml)")

	wikiCmd.AddCommand(wikiGenerateCmd)
	wikiCmd.AddCommand(wikiDiscoverCmd)
	wikiCmd.AddCommand(wikiPublishCmd)
	wikiCmd.AddCommand(wikiPreviewCmd)

	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(wikiCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
