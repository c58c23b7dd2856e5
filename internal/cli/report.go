// internal/cli/report.go
package gauntlet

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mwiater/gauntlet/benchmark"
	"github.com/mwiater/gauntlet/report"
)

// reportCmd re-renders the narrative report from a saved run artifact.
var reportCmd = &cobra.Command{
	Use:   "report <run.json>",
	Short: "Render the narrative report for a saved run",
	Long:  "The 'report' command reads a run artifact produced by 'gauntlet run' and prints its narrative report, so reports can be regenerated without re-running the benchmark.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return renderReport(args[0])
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func renderReport(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read run artifact %s: %w", path, err)
	}
	var run benchmark.Run
	if err := json.Unmarshal(data, &run); err != nil {
		return fmt.Errorf("decode run artifact %s: %w", path, err)
	}

	narrative, err := report.Build(&run)
	if err != nil {
		return err
	}
	fmt.Print(narrative)
	return nil
}
