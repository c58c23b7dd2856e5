// benchmark/runner.go
package benchmark

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mwiater/gauntlet/evaluate"
	"github.com/mwiater/gauntlet/internal/appconfig"
	"github.com/mwiater/gauntlet/internal/providers"
	"github.com/mwiater/gauntlet/judge"
)

// defaultTimeout bounds a single test when the config carries no deadline.
const defaultTimeout = 30 * time.Second

// Config carries run-level settings. Generation parameters inside Host are
// opaque to the runner and forwarded verbatim to the provider.
type Config struct {
	Host         appconfig.Host
	Model        string
	SystemPrompt string
	Timeout      time.Duration
	MaxTokens    int
	JudgeModel   string
}

// Runner executes a suite of test cases sequentially against one provider.
// Sequential execution is deliberate: the model under test is typically a
// single local process with no safe concurrent-request story, and parallel
// dispatch would corrupt the timing measurements.
type Runner struct {
	provider providers.ChatProvider
	judge    judge.Caller
	cfg      Config
	onResult func(TestResult)
}

// NewRunner builds a Runner. judgeCaller may be nil when the dataset
// contains no judge-scored tests; a judge-scored test hitting a nil judge
// records a failing verdict rather than aborting the run.
func NewRunner(provider providers.ChatProvider, judgeCaller judge.Caller, cfg Config) *Runner {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Runner{provider: provider, judge: judgeCaller, cfg: cfg}
}

// OnResult registers a callback invoked after each test is recorded, in
// input order. The CLI uses it for incremental progress output.
func (r *Runner) OnResult(fn func(TestResult)) {
	r.onResult = fn
}

// Run executes every test in input order and returns the fully populated
// Run. Per-test failures of any kind degrade to recorded failing results;
// only cancellation of ctx stops the loop early, and it stops between tests,
// never mid-test.
func (r *Runner) Run(ctx context.Context, tests []TestCase) *Run {
	run := &Run{
		Model:        r.cfg.Model,
		Timestamp:    time.Now(),
		SystemPrompt: r.cfg.SystemPrompt,
		Categories:   make(map[string]*CategoryStats),
	}

	var latencies []float64
	var judgeScores []float64

	for _, tc := range tests {
		if ctx.Err() != nil {
			break
		}
		tc = tc.Normalized()

		bucket := run.Categories[tc.Category]
		if bucket == nil {
			bucket = &CategoryStats{}
			run.Categories[tc.Category] = bucket
		}
		bucket.Total++

		result := TestResult{
			ID:              tc.ID,
			Prompt:          tc.Prompt,
			ExpectedAnswers: tc.AcceptableAnswers,
			Category:        tc.Category,
		}

		started := time.Now()
		resp, err := r.dispatch(ctx, tc)
		if err != nil {
			// Timeouts and transport errors look identical from here on:
			// the diagnostic text becomes the visible response and the test
			// fails without consulting any match strategy.
			result.ActualResponse = err.Error()
		} else {
			latencyMs := float64(time.Since(started).Milliseconds())
			result.ActualResponse = strings.TrimSpace(resp.Text)
			result.LatencyMs = &latencyMs
			latencies = append(latencies, latencyMs)
			attachTimings(&result, resp)

			if tc.MatchMode == evaluate.ModeJudge {
				verdict := r.grade(ctx, tc, result.ActualResponse)
				result.Passed = verdict.Pass
				result.JudgeScore = &verdict.Score
				result.JudgeReasoning = verdict.Reasoning
				result.JudgeCriteriaScores = verdict.CriteriaScores
				judgeScores = append(judgeScores, verdict.Score)
			} else if strategy, ok := evaluate.ForMode(tc.MatchMode); ok {
				outcome := strategy.Evaluate(tc.AcceptableAnswers, result.ActualResponse, tc.CaseSensitive)
				result.Passed = outcome.Passed
				result.MatchKind = outcome.MatchKind
			}
		}

		if result.Passed {
			bucket.Passed++
		} else {
			run.Failures = append(run.Failures, Failure{
				ID:       tc.ID,
				Prompt:   tc.Prompt,
				Expected: tc.AcceptableAnswers,
				Actual:   result.ActualResponse,
			})
		}
		run.Results = append(run.Results, result)
		if r.onResult != nil {
			r.onResult(result)
		}
	}

	run.Summary = r.summarize(run, latencies, judgeScores)
	return run
}

// dispatch races the provider call against the per-test deadline. When the
// deadline wins, the underlying call is not cancelled beyond the HTTP
// context: the goroutine keeps draining in the background and its result is
// discarded. That leaked work is accepted; llama.cpp offers no cheaper
// cancellation path.
func (r *Runner) dispatch(ctx context.Context, tc TestCase) (providers.GenerateResponse, error) {
	type outcome struct {
		resp providers.GenerateResponse
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		resp, err := r.provider.Generate(ctx, providers.GenerateRequest{
			Host:         r.cfg.Host,
			Model:        r.cfg.Model,
			SystemPrompt: r.cfg.SystemPrompt,
			Prompt:       tc.Prompt,
			MaxTokens:    r.cfg.MaxTokens,
			Parameters:   r.cfg.Host.Parameters,
		})
		done <- outcome{resp: resp, err: err}
	}()

	timer := time.NewTimer(r.cfg.Timeout)
	defer timer.Stop()

	select {
	case out := <-done:
		if out.err != nil {
			return providers.GenerateResponse{}, fmt.Errorf("inference error: %v", out.err)
		}
		return out.resp, nil
	case <-timer.C:
		return providers.GenerateResponse{}, fmt.Errorf("inference timed out after %s with no response", r.cfg.Timeout)
	case <-ctx.Done():
		return providers.GenerateResponse{}, fmt.Errorf("inference error: %v", ctx.Err())
	}
}

// grade runs the judge path under the same per-test deadline the inference
// call gets.
func (r *Runner) grade(ctx context.Context, tc TestCase, response string) judge.Result {
	judgeCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()
	return judge.Grade(judgeCtx, r.judge, judge.Input{
		Prompt:        tc.Prompt,
		Response:      response,
		CriteriaNames: tc.JudgeCriteria,
		PassThreshold: *tc.PassThreshold,
		References:    tc.AcceptableAnswers,
	})
}

func (r *Runner) summarize(run *Run, latencies, judgeScores []float64) Summary {
	summary := Summary{}
	for _, bucket := range run.Categories {
		summary.Total += bucket.Total
		summary.Passed += bucket.Passed
	}
	summary.Failed = summary.Total - summary.Passed
	if summary.Total > 0 {
		summary.PassRate = float64(summary.Passed) / float64(summary.Total)
	}
	if avg, ok := mean(latencies); ok {
		summary.AvgLatencyMs = &avg
	}
	if avg, ok := mean(judgeScores); ok {
		summary.AvgJudgeScore = &avg
		summary.JudgeModel = r.cfg.JudgeModel
	}
	return summary
}

func attachTimings(result *TestResult, resp providers.GenerateResponse) {
	if resp.TTFTMs > 0 {
		v := resp.TTFTMs
		result.TTFTMs = &v
	}
	if resp.GenerationTimeMs > 0 {
		v := resp.GenerationTimeMs
		result.GenerationTimeMs = &v
	}
	if resp.TokensGenerated > 0 {
		v := resp.TokensGenerated
		result.TokensGenerated = &v
	}
	if resp.TokensPerSecond > 0 {
		v := resp.TokensPerSecond
		result.TokensPerSecond = &v
	}
}

func mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}
