// benchmark/types.go

// Package benchmark drives a dataset of test cases against the model under
// test, one test at a time, and aggregates the verdicts into a single Run.
package benchmark

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mwiater/gauntlet/evaluate"
)

// ID is a test case identifier. Datasets may use numbers or strings; both
// decode to the string form. IDs must be unique within one dataset, which
// the dataset loader enforces.
type ID string

// UnmarshalJSON accepts either a JSON string or a JSON number.
func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("test id must be a string or number, got %s", data)
	}
	*id = ID(n.String())
	return nil
}

// defaultPassThreshold is the judge floor applied when a dataset omits one.
const defaultPassThreshold = 7

// TestCase is one evaluation unit from a dataset. AcceptableAnswers is
// required for every match mode except judge, where it only provides
// calibration reference text. CaseSensitive is ignored by judge-scored
// tests. PassThreshold is a pointer because 0 is a valid threshold; only an
// absent value takes the default.
type TestCase struct {
	ID                ID                 `json:"id"`
	Prompt            string             `json:"prompt"`
	AcceptableAnswers []string           `json:"acceptableAnswers,omitempty"`
	Category          string             `json:"category,omitempty"`
	MatchMode         evaluate.MatchMode `json:"matchMode,omitempty"`
	CaseSensitive     bool               `json:"caseSensitive,omitempty"`
	JudgeCriteria     []string           `json:"judgeCriteria,omitempty"`
	PassThreshold     *float64           `json:"passThreshold,omitempty"`
}

// Normalized returns a copy with the data-model defaults filled in:
// category "uncategorized", semantic match mode, and a pass threshold of 7
// when the dataset set none. An explicit threshold, including 0, is kept.
func (t TestCase) Normalized() TestCase {
	if t.Category == "" {
		t.Category = "uncategorized"
	}
	if t.MatchMode == "" {
		t.MatchMode = evaluate.ModeSemantic
	}
	if t.PassThreshold == nil {
		threshold := float64(defaultPassThreshold)
		t.PassThreshold = &threshold
	}
	return t
}

// TestResult is the immutable per-test outcome. Results are appended in
// dataset input order so reporting stays deterministic.
type TestResult struct {
	ID                  ID                 `json:"id"`
	Prompt              string             `json:"prompt"`
	ExpectedAnswers     []string           `json:"expectedAnswers,omitempty"`
	ActualResponse      string             `json:"actualResponse"`
	Passed              bool               `json:"passed"`
	Category            string             `json:"category"`
	MatchKind           string             `json:"matchKind,omitempty"`
	LatencyMs           *float64           `json:"latencyMs,omitempty"`
	TTFTMs              *float64           `json:"ttftMs,omitempty"`
	GenerationTimeMs    *float64           `json:"generationTimeMs,omitempty"`
	TokensGenerated     *int               `json:"tokensGenerated,omitempty"`
	TokensPerSecond     *float64           `json:"tokensPerSecond,omitempty"`
	JudgeScore          *float64           `json:"judgeScore,omitempty"`
	JudgeReasoning      string             `json:"judgeReasoning,omitempty"`
	JudgeCriteriaScores map[string]float64 `json:"judgeCriteriaScores,omitempty"`
}

// Failure is the compact record kept alongside the full TestResult so failed
// tests can be scanned quickly at the end of a report.
type Failure struct {
	ID       ID       `json:"id"`
	Prompt   string   `json:"prompt"`
	Expected []string `json:"expected"`
	Actual   string   `json:"actual"`
}

// CategoryStats counts outcomes for one category bucket.
type CategoryStats struct {
	Passed int `json:"passed"`
	Total  int `json:"total"`
}

// Summary holds the aggregate statistics for one run. AvgLatencyMs averages
// only tests that produced a real response; timed-out and errored tests are
// excluded so outliers do not pollute the metric. AvgJudgeScore and
// JudgeModel are present only when judge-scored tests ran.
type Summary struct {
	Total         int      `json:"total"`
	Passed        int      `json:"passed"`
	Failed        int      `json:"failed"`
	PassRate      float64  `json:"passRate"`
	AvgLatencyMs  *float64 `json:"avgLatencyMs,omitempty"`
	AvgJudgeScore *float64 `json:"avgJudgeScore,omitempty"`
	JudgeModel    string   `json:"judgeModel,omitempty"`
}

// Run is one complete benchmark of a dataset against a model. It is built
// fresh per invocation, fully populated by the runner, and then handed to
// the report builder and the artifact writer.
type Run struct {
	Model        string                    `json:"model"`
	Timestamp    time.Time                 `json:"timestamp"`
	SystemPrompt string                    `json:"systemPrompt,omitempty"`
	Summary      Summary                   `json:"summary"`
	Categories   map[string]*CategoryStats `json:"categories"`
	Results      []TestResult              `json:"results"`
	Failures     []Failure                 `json:"failures"`
}
