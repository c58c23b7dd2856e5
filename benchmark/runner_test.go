// benchmark/runner_test.go
package benchmark

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mwiater/gauntlet/evaluate"
	"github.com/mwiater/gauntlet/internal/providers"
)

// fakeProvider scripts per-prompt behavior so runner paths can be exercised
// without a serving backend.
type fakeProvider struct {
	responses map[string]providers.GenerateResponse
	errors    map[string]error
	delay     time.Duration
}

func (f *fakeProvider) Generate(ctx context.Context, req providers.GenerateRequest) (providers.GenerateResponse, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return providers.GenerateResponse{}, ctx.Err()
		}
	}
	if err, ok := f.errors[req.Prompt]; ok {
		return providers.GenerateResponse{}, err
	}
	if resp, ok := f.responses[req.Prompt]; ok {
		return resp, nil
	}
	return providers.GenerateResponse{Text: "unexpected prompt"}, nil
}

func (f *fakeProvider) Close() error { return nil }

// fakeJudge returns a canned reply or error for every grading prompt.
type fakeJudge struct {
	reply string
	err   error
}

func (f *fakeJudge) Complete(ctx context.Context, prompt string) (string, error) {
	return f.reply, f.err
}

func TestRunSemanticPass(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{responses: map[string]providers.GenerateResponse{
		"list files": {Text: "ls -la\n", TTFTMs: 10, GenerationTimeMs: 40, TokensGenerated: 4, TokensPerSecond: 100},
	}}
	runner := NewRunner(provider, nil, Config{Model: "tuned-q4", SystemPrompt: "translate to shell"})

	tests := []TestCase{{
		ID:                "1",
		Prompt:            "list files",
		AcceptableAnswers: []string{"ls", "ls -la"},
		Category:          "basic",
		MatchMode:         evaluate.ModeSemantic,
	}}
	run := runner.Run(context.Background(), tests)

	if got := run.Summary; got.Total != 1 || got.Passed != 1 || got.Failed != 0 || got.PassRate != 1 {
		t.Fatalf("summary = %+v", got)
	}
	result := run.Results[0]
	if !result.Passed || result.Category != "basic" || result.ActualResponse != "ls -la" {
		t.Fatalf("result = %+v", result)
	}
	if result.MatchKind != "startsWith" {
		t.Fatalf("MatchKind = %q, want startsWith", result.MatchKind)
	}
	if result.LatencyMs == nil || result.TTFTMs == nil || *result.TTFTMs != 10 {
		t.Fatalf("timing fields not captured: %+v", result)
	}
	if len(run.Failures) != 0 {
		t.Fatalf("failures = %+v, want none", run.Failures)
	}
	if run.Summary.AvgLatencyMs == nil {
		t.Fatal("AvgLatencyMs missing for completed run")
	}
}

func TestRunAllTimeouts(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{delay: 200 * time.Millisecond}
	runner := NewRunner(provider, nil, Config{Model: "tuned-q4", Timeout: 20 * time.Millisecond})

	tests := []TestCase{
		{ID: "1", Prompt: "list files", AcceptableAnswers: []string{"ls"}, Category: "basic"},
		{ID: "2", Prompt: "show date", AcceptableAnswers: []string{"date"}, Category: "basic"},
	}
	run := runner.Run(context.Background(), tests)

	if got := run.Summary; got.Total != 2 || got.Passed != 0 || got.Failed != 2 || got.PassRate != 0 {
		t.Fatalf("summary = %+v", got)
	}
	if run.Summary.AvgLatencyMs != nil {
		t.Fatalf("AvgLatencyMs = %v, want absent when every test timed out", *run.Summary.AvgLatencyMs)
	}
	if len(run.Failures) != 2 || run.Failures[0].ID != "1" {
		t.Fatalf("failures = %+v", run.Failures)
	}
	for _, result := range run.Results {
		if result.Passed {
			t.Fatalf("timed-out test recorded as pass: %+v", result)
		}
		if result.LatencyMs != nil {
			t.Fatalf("timed-out test has latency: %+v", result)
		}
	}
}

func TestRunTransportErrorRecordedAsFailure(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{errors: map[string]error{
		"list files": errors.New("connection refused"),
	}}
	runner := NewRunner(provider, nil, Config{Model: "tuned-q4"})

	run := runner.Run(context.Background(), []TestCase{
		{ID: "1", Prompt: "list files", AcceptableAnswers: []string{"ls"}},
	})

	result := run.Results[0]
	if result.Passed {
		t.Fatal("errored test must fail")
	}
	if result.ActualResponse == "" || result.ActualResponse == "ls" {
		t.Fatalf("ActualResponse = %q, want error diagnostic", result.ActualResponse)
	}
	if result.Category != "uncategorized" {
		t.Fatalf("Category = %q, want default", result.Category)
	}
	if run.Summary.Total != 1 || run.Summary.Failed != 1 {
		t.Fatalf("summary = %+v", run.Summary)
	}
}

func TestRunCategoryAggregation(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{responses: map[string]providers.GenerateResponse{
		"a": {Text: "alpha"},
		"b": {Text: "wrong"},
		"c": {Text: "gamma"},
	}}
	runner := NewRunner(provider, nil, Config{Model: "tuned-q4"})

	tests := []TestCase{
		{ID: "1", Prompt: "a", AcceptableAnswers: []string{"alpha"}, Category: "greek"},
		{ID: "2", Prompt: "b", AcceptableAnswers: []string{"beta"}, Category: "greek"},
		{ID: "3", Prompt: "c", AcceptableAnswers: []string{"gamma"}},
	}
	run := runner.Run(context.Background(), tests)

	greek := run.Categories["greek"]
	if greek == nil || greek.Total != 2 || greek.Passed != 1 {
		t.Fatalf("greek bucket = %+v", greek)
	}
	other := run.Categories["uncategorized"]
	if other == nil || other.Total != 1 || other.Passed != 1 {
		t.Fatalf("uncategorized bucket = %+v", other)
	}
	for name, bucket := range run.Categories {
		if bucket.Passed > bucket.Total {
			t.Fatalf("category %q passed %d > total %d", name, bucket.Passed, bucket.Total)
		}
	}
	if len(run.Results) != 3 || run.Results[0].ID != "1" || run.Results[2].ID != "3" {
		t.Fatalf("results out of input order: %+v", run.Results)
	}
}

func TestRunJudgeScored(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{responses: map[string]providers.GenerateResponse{
		"summarize": {Text: "a fine summary"},
	}}
	judgeCaller := &fakeJudge{reply: `{"scores": {"helpful": 8, "accurate": 9, "concise": 7}, "overall": 8, "reasoning": "clear and correct", "pass": true}`}
	runner := NewRunner(provider, judgeCaller, Config{Model: "tuned-q4", JudgeModel: "gpt-4o-mini"})

	run := runner.Run(context.Background(), []TestCase{
		{ID: "1", Prompt: "summarize", MatchMode: evaluate.ModeJudge, Category: "openended"},
	})

	result := run.Results[0]
	if !result.Passed {
		t.Fatalf("judge-passed test recorded as fail: %+v", result)
	}
	if result.JudgeScore == nil || *result.JudgeScore != 8 {
		t.Fatalf("JudgeScore = %v, want 8", result.JudgeScore)
	}
	if result.JudgeReasoning != "clear and correct" {
		t.Fatalf("JudgeReasoning = %q", result.JudgeReasoning)
	}
	if result.JudgeCriteriaScores["accurate"] != 9 {
		t.Fatalf("criteria scores = %+v", result.JudgeCriteriaScores)
	}
	if run.Summary.AvgJudgeScore == nil || *run.Summary.AvgJudgeScore != 8 {
		t.Fatalf("AvgJudgeScore = %v", run.Summary.AvgJudgeScore)
	}
	if run.Summary.JudgeModel != "gpt-4o-mini" {
		t.Fatalf("JudgeModel = %q", run.Summary.JudgeModel)
	}
}

func TestRunJudgeHonorsExplicitZeroThreshold(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{responses: map[string]providers.GenerateResponse{
		"say anything": {Text: "barely an answer"},
	}}
	// Verdict carries no pass boolean, so pass derives from the threshold.
	judgeCaller := &fakeJudge{reply: `{"scores": {"helpful": 2}, "overall": 2, "reasoning": "weak"}`}
	runner := NewRunner(provider, judgeCaller, Config{Model: "tuned-q4", JudgeModel: "gpt-4o-mini"})

	zero := 0.0
	run := runner.Run(context.Background(), []TestCase{
		{ID: "1", Prompt: "say anything", MatchMode: evaluate.ModeJudge, PassThreshold: &zero},
	})

	result := run.Results[0]
	if !result.Passed {
		t.Fatalf("result = %+v, want a zero threshold to pass any scored verdict", result)
	}
	if result.JudgeScore == nil || *result.JudgeScore != 2 {
		t.Fatalf("JudgeScore = %v, want 2", result.JudgeScore)
	}
}

func TestRunJudgeFailureDegrades(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{responses: map[string]providers.GenerateResponse{
		"summarize": {Text: "a summary"},
		"translate": {Text: "une traduction"},
	}}
	judgeCaller := &fakeJudge{err: errors.New("401 unauthorized")}
	runner := NewRunner(provider, judgeCaller, Config{Model: "tuned-q4", JudgeModel: "gpt-4o-mini"})

	run := runner.Run(context.Background(), []TestCase{
		{ID: "1", Prompt: "summarize", MatchMode: evaluate.ModeJudge},
		{ID: "2", Prompt: "translate", MatchMode: evaluate.ModeJudge},
	})

	if run.Summary.Total != 2 || run.Summary.Passed != 0 {
		t.Fatalf("summary = %+v, want both tests recorded and failed", run.Summary)
	}
	for _, result := range run.Results {
		if result.JudgeScore == nil || *result.JudgeScore != 0 {
			t.Fatalf("JudgeScore = %v, want zero fallback", result.JudgeScore)
		}
		if result.JudgeReasoning == "" {
			t.Fatal("fallback verdict must carry a diagnostic reasoning")
		}
	}
}

func TestRunNilJudgeRecordsFailingVerdict(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{responses: map[string]providers.GenerateResponse{
		"summarize": {Text: "a summary"},
	}}
	runner := NewRunner(provider, nil, Config{Model: "tuned-q4"})

	run := runner.Run(context.Background(), []TestCase{
		{ID: "1", Prompt: "summarize", MatchMode: evaluate.ModeJudge},
	})

	result := run.Results[0]
	if result.Passed {
		t.Fatal("judge-scored test without a judge must fail")
	}
	if result.JudgeReasoning == "" {
		t.Fatal("expected a diagnostic about the missing judge")
	}
}

func TestRunStopsBetweenTestsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	provider := &fakeProvider{responses: map[string]providers.GenerateResponse{
		"a": {Text: "alpha"},
	}}
	runner := NewRunner(provider, nil, Config{Model: "tuned-q4"})
	runner.OnResult(func(TestResult) { cancel() })

	tests := []TestCase{
		{ID: "1", Prompt: "a", AcceptableAnswers: []string{"alpha"}},
		{ID: "2", Prompt: "a", AcceptableAnswers: []string{"alpha"}},
		{ID: "3", Prompt: "a", AcceptableAnswers: []string{"alpha"}},
	}
	run := runner.Run(ctx, tests)

	if len(run.Results) != 1 {
		t.Fatalf("results = %d, want cancellation to stop before the second test", len(run.Results))
	}
	if run.Summary.Total != 1 {
		t.Fatalf("summary.Total = %d, want only attempted tests counted", run.Summary.Total)
	}
}

func TestRunProgressCallbackOrder(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{responses: map[string]providers.GenerateResponse{
		"a": {Text: "alpha"},
		"b": {Text: "beta"},
	}}
	runner := NewRunner(provider, nil, Config{Model: "tuned-q4"})

	var seen []ID
	runner.OnResult(func(result TestResult) { seen = append(seen, result.ID) })

	runner.Run(context.Background(), []TestCase{
		{ID: "1", Prompt: "a", AcceptableAnswers: []string{"alpha"}},
		{ID: "2", Prompt: "b", AcceptableAnswers: []string{"beta"}},
	})

	if len(seen) != 2 || seen[0] != "1" || seen[1] != "2" {
		t.Fatalf("callback order = %v", seen)
	}
}
