// internal/cli/run_entry.go
package gauntlet

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"

	"github.com/mwiater/gauntlet/benchmark"
	"github.com/mwiater/gauntlet/internal/dataset"
	"github.com/mwiater/gauntlet/internal/logging"
	"github.com/mwiater/gauntlet/internal/providerfactory"
	"github.com/mwiater/gauntlet/internal/util"
	"github.com/mwiater/gauntlet/judge"
	"github.com/mwiater/gauntlet/report"
)

var (
	passMark = color.New(color.FgGreen).SprintFunc()
	failMark = color.New(color.FgRed).SprintFunc()
)

// runBenchmark wires configuration, dataset, provider, and judge into one
// benchmark run and writes its artifacts.
func runBenchmark(cmd *cobra.Command, datasetPath string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	if err := logging.Init(cfg.LogFilePath()); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer logging.Close()

	if cfg.Debug {
		pp.Println(cfg)
	}

	suite, err := dataset.Load(datasetPath)
	if err != nil {
		return err
	}

	provider, err := providerfactory.NewChatProvider(cfg)
	if err != nil {
		return err
	}
	defer provider.Close()

	model := cfg.Host.Model
	if flagModel, _ := cmd.Flags().GetString("model"); flagModel != "" {
		model = flagModel
	}

	var judgeCaller judge.Caller
	judgeModel := ""
	if cfg.Judge.Model != "" {
		client := judge.NewClient(cfg.Judge)
		judgeCaller = client
		judgeModel = client.Model()
		if cfg.Debug {
			judgeCaller = loggedJudge{caller: client, host: cfg.Judge.URL, model: judgeModel}
		}
	}

	runner := benchmark.NewRunner(provider, judgeCaller, benchmark.Config{
		Host:         cfg.Host,
		Model:        model,
		SystemPrompt: suite.SystemPrompt,
		Timeout:      cfg.TestTimeout(),
		MaxTokens:    cfg.MaxTokenBudget(),
		JudgeModel:   judgeModel,
	})
	runner.OnResult(printProgress)

	logging.LogEvent("starting benchmark: model=%s dataset=%s tests=%d", model, datasetPath, len(suite.Tests))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	run := runner.Run(ctx, suite.Tests)

	writeErr := writeArtifacts(cfg.OutputDirPath(), run)
	printSummary(run)
	if writeErr != nil {
		return writeErr
	}
	if ctx.Err() != nil {
		return fmt.Errorf("benchmark interrupted: %d of %d tests ran", len(run.Results), len(suite.Tests))
	}
	return nil
}

// loggedJudge records judge traffic through the request log when debug
// logging is on.
type loggedJudge struct {
	caller judge.Caller
	host   string
	model  string
}

func (l loggedJudge) Complete(ctx context.Context, prompt string) (string, error) {
	logging.LogRequest("GAUNTLET->JUDGE", l.host, l.model, prompt)
	reply, err := l.caller.Complete(ctx, prompt)
	if err != nil {
		logging.LogRequest("JUDGE->GAUNTLET", l.host, l.model, fmt.Sprintf("error: %v", err))
		return "", err
	}
	logging.LogRequest("JUDGE->GAUNTLET", l.host, l.model, reply)
	return reply, nil
}

// printProgress emits one line per finished test, in input order.
func printProgress(result benchmark.TestResult) {
	mark := passMark("PASS")
	if !result.Passed {
		mark = failMark("FAIL")
	}
	latency := "-"
	if result.LatencyMs != nil {
		latency = fmt.Sprintf("%.0f ms", *result.LatencyMs)
	}
	fmt.Printf("[%s] %s (%s) %s\n", mark, result.ID, result.Category, latency)
}

// writeArtifacts persists the machine-readable run and the narrative report
// next to each other under the output directory.
func writeArtifacts(dir string, run *benchmark.Run) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory %s: %w", dir, err)
	}
	stamp := run.Timestamp.Format("20060102-150405")

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("encode run: %w", err)
	}
	runPath := filepath.Join(dir, fmt.Sprintf("run-%s.json", stamp))
	if err := util.WriteFile(runPath, data); err != nil {
		return fmt.Errorf("write %s: %w", runPath, err)
	}

	narrative, err := report.Build(run)
	if err != nil {
		return err
	}
	reportPath := filepath.Join(dir, fmt.Sprintf("report-%s.md", stamp))
	if err := util.WriteFile(reportPath, []byte(narrative)); err != nil {
		return fmt.Errorf("write %s: %w", reportPath, err)
	}

	logging.LogEvent("wrote artifacts: %s, %s", runPath, reportPath)
	return nil
}

// printSummary renders the closing scoreboard. It runs even when writing the
// artifacts failed, so an operator still sees how the model did.
func printSummary(run *benchmark.Run) {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Padding(0, 2)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))

	body := fmt.Sprintf("%s\n\nTests:  %d passed, %d failed (%d total)\nRate:   %.0f%%",
		titleStyle.Render("Benchmark: "+run.Model),
		run.Summary.Passed, run.Summary.Failed, run.Summary.Total,
		run.Summary.PassRate*100)
	if run.Summary.AvgLatencyMs != nil {
		body += fmt.Sprintf("\nAvg:    %.0f ms", *run.Summary.AvgLatencyMs)
	}
	if run.Summary.AvgJudgeScore != nil {
		body += fmt.Sprintf("\nJudge:  %.1f/10 (%s)", *run.Summary.AvgJudgeScore, run.Summary.JudgeModel)
	}
	fmt.Println(boxStyle.Render(body))
}
