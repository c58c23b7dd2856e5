// judge/parse.go
package judge

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Result is the judge's verdict for a single test. Score and every entry in
// CriteriaScores are clamped to [0,10] regardless of what the judge said.
type Result struct {
	Pass           bool               `json:"pass"`
	Score          float64            `json:"score"`
	Reasoning      string             `json:"reasoning"`
	CriteriaScores map[string]float64 `json:"criteriaScores"`
}

// ParseResponse decodes the judge's raw reply into a Result. A fenced code
// block around the JSON is tolerated and stripped before parsing. Anything
// that is still not valid JSON is a hard error here; converting that into a
// safe failing verdict is the caller's job, never this function's.
//
// On a successful parse every score is clamped to [0,10], a missing or
// non-numeric criterion score is dropped rather than defaulted to zero, a
// boolean pass field is honored as-is, and otherwise pass is derived from
// overall >= passThreshold.
func ParseResponse(raw string, criteria []Criterion, passThreshold float64) (Result, error) {
	var payload struct {
		Scores    map[string]any `json:"scores"`
		Overall   any            `json:"overall"`
		Reasoning any            `json:"reasoning"`
		Pass      any            `json:"pass"`
	}
	if err := json.Unmarshal([]byte(stripFence(raw)), &payload); err != nil {
		return Result{}, fmt.Errorf("judge reply is not valid JSON: %w", err)
	}

	result := Result{CriteriaScores: make(map[string]float64, len(criteria))}
	for _, criterion := range criteria {
		if value, ok := payload.Scores[criterion.Name].(float64); ok {
			result.CriteriaScores[criterion.Name] = clampScore(value)
		}
	}
	if value, ok := payload.Overall.(float64); ok {
		result.Score = clampScore(value)
	}
	if reasoning, ok := payload.Reasoning.(string); ok {
		result.Reasoning = reasoning
	}
	if pass, ok := payload.Pass.(bool); ok {
		result.Pass = pass
	} else {
		result.Pass = result.Score >= passThreshold
	}
	return result, nil
}

// stripFence removes a markdown code fence wrapping the reply, including an
// optional language tag on the opening line.
func stripFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if idx := strings.IndexByte(text, '\n'); idx >= 0 && !strings.Contains(text[:idx], "{") {
		text = text[idx+1:]
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func clampScore(value float64) float64 {
	return math.Min(10, math.Max(0, value))
}
