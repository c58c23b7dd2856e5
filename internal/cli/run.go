// internal/cli/run.go
package gauntlet

import "github.com/spf13/cobra"

// runCmd executes a dataset against the configured model.
var runCmd = &cobra.Command{
	Use:   "run <dataset>",
	Short: "Run a benchmark dataset against the configured model",
	Long:  "The 'run' command loads a JSON or YAML dataset, sends every test prompt to the configured serving endpoint, grades the responses, and writes the run artifacts.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBenchmark(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("model", "m", "", "model name to benchmark (overrides config host.model)")
}
