// internal/cli/validate.go
package gauntlet

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mwiater/gauntlet/evaluate"
	"github.com/mwiater/gauntlet/internal/dataset"
)

// validateCmd checks a dataset without contacting any model.
var validateCmd = &cobra.Command{
	Use:   "validate <dataset>",
	Short: "Validate a dataset file without running it",
	Long:  "The 'validate' command parses a JSON or YAML dataset, checks it against the schema and the semantic rules, and prints what a run would cover.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return validateDataset(args[0])
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateDataset(path string) error {
	suite, err := dataset.Load(path)
	if err != nil {
		return err
	}

	categories := make(map[string]int)
	judged := 0
	for _, test := range suite.Tests {
		categories[test.Category]++
		if test.MatchMode == evaluate.ModeJudge {
			judged++
		}
	}

	fmt.Printf("%s: %d tests, %d judge-scored\n", path, len(suite.Tests), judged)
	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %d\n", name, categories[name])
	}
	return nil
}
