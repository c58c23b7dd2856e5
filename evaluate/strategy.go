// evaluate/strategy.go
package evaluate

import (
	"fmt"
	"strings"
)

// MatchMode selects the comparison algorithm used to grade a response.
type MatchMode string

const (
	// ModeExact requires a case-folded, character-for-character match.
	ModeExact MatchMode = "exact"
	// ModeContains passes when an acceptable answer appears anywhere in the response.
	ModeContains MatchMode = "contains"
	// ModeStartsWith passes when the response begins with an acceptable answer.
	ModeStartsWith MatchMode = "startsWith"
	// ModeSemantic is the default: exact, prefix, and partial heuristics after normalization.
	ModeSemantic MatchMode = "semantic"
	// ModeJudge hands grading to an external judge model instead of string comparison.
	ModeJudge MatchMode = "judge"
)

// ParseMode maps a dataset string onto a MatchMode. The empty string means
// semantic, the default. A handful of spelling variants are accepted because
// datasets come from multiple export pipelines.
func ParseMode(s string) (MatchMode, error) {
	switch strings.TrimSpace(s) {
	case "", "semantic":
		return ModeSemantic, nil
	case "exact":
		return ModeExact, nil
	case "contains":
		return ModeContains, nil
	case "startsWith", "starts_with", "startswith":
		return ModeStartsWith, nil
	case "judge", "judgeScored", "judge_scored":
		return ModeJudge, nil
	}
	return "", fmt.Errorf("unknown match mode %q", s)
}

// MatchOutcome reports whether a response passed, which acceptable answer
// matched, and which heuristic fired. MatchedAnswer and MatchKind are empty
// when nothing matched.
type MatchOutcome struct {
	Passed        bool   `json:"passed"`
	MatchedAnswer string `json:"matchedAnswer,omitempty"`
	MatchKind     string `json:"matchKind,omitempty"`
}

// Strategy decides pass/fail for an actual response against the acceptable
// answers. Answers are tried in list order and the first one satisfying the
// strategy's rule wins, so answer order acts as a priority.
type Strategy interface {
	Evaluate(acceptable []string, actual string, caseSensitive bool) MatchOutcome
}

// ForMode returns the strategy implementing the given match mode. Judge-scored
// tests are graded by the judge package rather than a string strategy, so
// ForMode reports false for ModeJudge and any unknown mode.
func ForMode(mode MatchMode) (Strategy, bool) {
	switch mode {
	case ModeExact:
		return exactStrategy{}, true
	case ModeContains:
		return containsStrategy{}, true
	case ModeStartsWith:
		return startsWithStrategy{}, true
	case ModeSemantic:
		return semanticStrategy{}, true
	}
	return nil, false
}

func fold(s string, caseSensitive bool) string {
	if caseSensitive {
		return s
	}
	return strings.ToLower(s)
}

type exactStrategy struct{}

// Evaluate requires the case-folded response to equal a case-folded answer
// exactly. No whitespace normalization is applied in this mode.
func (exactStrategy) Evaluate(acceptable []string, actual string, caseSensitive bool) MatchOutcome {
	got := fold(actual, caseSensitive)
	for _, answer := range acceptable {
		if fold(answer, caseSensitive) == got {
			return MatchOutcome{Passed: true, MatchedAnswer: answer, MatchKind: "exact"}
		}
	}
	return MatchOutcome{}
}

type containsStrategy struct{}

func (containsStrategy) Evaluate(acceptable []string, actual string, caseSensitive bool) MatchOutcome {
	got := Normalize(fold(actual, caseSensitive))
	for _, answer := range acceptable {
		if strings.Contains(got, Normalize(fold(answer, caseSensitive))) {
			return MatchOutcome{Passed: true, MatchedAnswer: answer, MatchKind: "contains"}
		}
	}
	return MatchOutcome{}
}

type startsWithStrategy struct{}

func (startsWithStrategy) Evaluate(acceptable []string, actual string, caseSensitive bool) MatchOutcome {
	got := Normalize(fold(actual, caseSensitive))
	for _, answer := range acceptable {
		if strings.HasPrefix(got, Normalize(fold(answer, caseSensitive))) {
			return MatchOutcome{Passed: true, MatchedAnswer: answer, MatchKind: "startsWith"}
		}
	}
	return MatchOutcome{}
}

type semanticStrategy struct{}

// Evaluate tries three heuristics per answer, in order: normalized equality,
// answer-as-clean-prefix of the response (followed by a separator), and
// response-as-truncated-form of the answer. The first listed answer whose
// heuristics fire wins even when a later answer would also match.
func (semanticStrategy) Evaluate(acceptable []string, actual string, caseSensitive bool) MatchOutcome {
	got := Normalize(fold(actual, caseSensitive))
	for _, answer := range acceptable {
		want := Normalize(fold(answer, caseSensitive))
		if got == want {
			return MatchOutcome{Passed: true, MatchedAnswer: answer, MatchKind: "exact"}
		}
		// Normalization has already collapsed newlines to spaces, so the
		// space and colon separators cover every clean-prefix case.
		if strings.HasPrefix(got, want+" ") || strings.HasPrefix(got, want+":") {
			return MatchOutcome{Passed: true, MatchedAnswer: answer, MatchKind: "startsWith"}
		}
		if got != "" && (strings.HasPrefix(want, got+" ") || strings.HasPrefix(want, got)) {
			return MatchOutcome{Passed: true, MatchedAnswer: answer, MatchKind: "partial"}
		}
	}
	return MatchOutcome{}
}
