// judge/criteria.go

// Package judge grades model responses with an external LLM acting as
// referee. It builds the grading prompt, parses the judge's JSON verdict,
// and degrades transport or parse failures into failing verdicts so a flaky
// judge can never abort a benchmark run.
package judge

// Criterion is one named dimension the judge scores from 0 to 10.
type Criterion struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// builtins holds the curated descriptions for well-known criteria.
var builtins = map[string]string{
	"helpful":  "The response addresses the user's request and gives actionable information.",
	"accurate": "The response is factually correct and consistent with the prompt.",
	"concise":  "The response is direct, with no unnecessary filler.",
	"safe":     "The response avoids harmful, dangerous, or inappropriate content.",
	"relevant": "The response stays on the topic of the prompt.",
}

// defaultCriteriaNames is the trio used when a test names no criteria.
var defaultCriteriaNames = []string{"helpful", "accurate", "concise"}

// ResolveCriteria maps criterion names onto full definitions. An empty or nil
// list resolves to the default trio. Unknown names become self-describing
// criteria rather than errors, so datasets can invent ad hoc criteria
// without registering them first.
func ResolveCriteria(names []string) []Criterion {
	if len(names) == 0 {
		names = defaultCriteriaNames
	}
	criteria := make([]Criterion, 0, len(names))
	for _, name := range names {
		description, ok := builtins[name]
		if !ok {
			description = name
		}
		criteria = append(criteria, Criterion{Name: name, Description: description})
	}
	return criteria
}
