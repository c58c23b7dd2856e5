// internal/cli/root.go

// Package gauntlet implements the command-line interface: cobra commands,
// flag-over-config merging through viper, and the wiring from configuration
// to the benchmark runner.
package gauntlet

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mwiater/gauntlet/internal/appconfig"
)

var (
	cfgFile       string
	currentConfig *appconfig.Config
	configLoadErr error
)

var rootCmd = &cobra.Command{
	Use:   "gauntlet",
	Short: "gauntlet — benchmark fine-tuned models against answer datasets",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 1) Load and resolve the config file (env placeholders expanded).
		//    A missing or invalid config only fails the commands that need
		//    one; validate and report work without it.
		cfg, err := appconfig.Load(cfgFile)
		if err != nil {
			configLoadErr = err
			return nil
		}

		// 2) Point viper at the same file so bound flags and config keys
		//    share one merged view, flags winning over the file.
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
				return fmt.Errorf("failed to load config: %w", err)
			}
		}

		// 3) Materialize the merged values into the snapshot the commands use.
		cfg.Debug = viper.GetBool("debug")
		if timeout := viper.GetInt("timeoutMs"); timeout > 0 {
			cfg.TimeoutMs = timeout
		}
		if tokens := viper.GetInt("maxTokens"); tokens > 0 {
			cfg.MaxTokens = tokens
		}
		if dir := viper.GetString("outputDir"); dir != "" {
			cfg.OutputDir = dir
		}
		currentConfig = &cfg

		return nil
	},
}

// Execute runs the root command and exits nonzero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", appconfig.DefaultConfigPath, "config file (e.g., config/config.json)")

	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging of provider traffic")
	rootCmd.PersistentFlags().Int("timeoutMs", 0, "per-test timeout in milliseconds (overrides config)")
	rootCmd.PersistentFlags().Int("maxTokens", 0, "generation token budget per test (overrides config)")
	rootCmd.PersistentFlags().StringP("outputDir", "o", "", "directory for run artifacts (overrides config)")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("timeoutMs", rootCmd.PersistentFlags().Lookup("timeoutMs"))
	_ = viper.BindPFlag("maxTokens", rootCmd.PersistentFlags().Lookup("maxTokens"))
	_ = viper.BindPFlag("outputDir", rootCmd.PersistentFlags().Lookup("outputDir"))
}

// requireConfig returns the merged application configuration, surfacing the
// load error recorded during pre-run for commands that cannot proceed
// without one.
func requireConfig() (*appconfig.Config, error) {
	if currentConfig == nil {
		if configLoadErr != nil {
			return nil, configLoadErr
		}
		return nil, fmt.Errorf("no configuration loaded")
	}
	return currentConfig, nil
}
