// report/report.go

// Package report renders a completed benchmark run as a human-readable
// narrative. It performs no aggregation of its own; every number comes
// straight from the Run the benchmark runner produced. The machine-readable
// artifact is the JSON serialization of the Run itself.
package report

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/mwiater/gauntlet/benchmark"
	"github.com/mwiater/gauntlet/internal/util"
)

// actualPreviewRunes bounds the response preview in the failed-tests table.
const actualPreviewRunes = 120

type categoryRow struct {
	Name    string
	Passed  int
	Total   int
	Percent int
}

type reportData struct {
	Run        *benchmark.Run
	Categories []categoryRow
}

// Build renders the narrative report for a fully populated run.
func Build(run *benchmark.Run) (string, error) {
	data := reportData{Run: run, Categories: categoryRows(run)}
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return buf.String(), nil
}

// categoryRows sorts the category buckets by name so the breakdown is
// stable across renders of the same run.
func categoryRows(run *benchmark.Run) []categoryRow {
	rows := make([]categoryRow, 0, len(run.Categories))
	for name, bucket := range run.Categories {
		percent := 0
		if bucket.Total > 0 {
			percent = int(math.Round(float64(bucket.Passed) / float64(bucket.Total) * 100))
		}
		rows = append(rows, categoryRow{Name: name, Passed: bucket.Passed, Total: bucket.Total, Percent: percent})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows
}

var reportTemplate = template.Must(template.New("benchmark-report").Funcs(template.FuncMap{
	"mark": func(passed bool) string {
		if passed {
			return "PASS"
		}
		return "FAIL"
	},
	"pct": func(rate float64) int {
		return int(math.Round(rate * 100))
	},
	"ms": func(v *float64) string {
		if v == nil {
			return "n/a"
		}
		return fmt.Sprintf("%.0f ms", *v)
	},
	"score": func(v *float64) string {
		if v == nil {
			return "n/a"
		}
		return fmt.Sprintf("%.1f/10", *v)
	},
	"rfc3339": func(ts time.Time) string {
		return ts.Format(time.RFC3339)
	},
	"joinAnswers": func(answers []string) string {
		return strings.Join(answers, " ; ")
	},
	"cell": func(text string) string {
		return util.SingleLine(text)
	},
	"preview": func(text string) string {
		return util.TruncateRunes(util.SingleLine(text), actualPreviewRunes)
	},
}).Parse(reportTemplateText))

const reportTemplateText = `# Benchmark Report: {{ .Run.Model }}

Generated: {{ rfc3339 .Run.Timestamp }}

## Summary

- Total tests: {{ .Run.Summary.Total }}
- Passed: {{ .Run.Summary.Passed }}
- Failed: {{ .Run.Summary.Failed }}
- Pass rate: {{ pct .Run.Summary.PassRate }}%
{{- if .Run.Summary.AvgLatencyMs }}
- Avg latency: {{ ms .Run.Summary.AvgLatencyMs }}
{{- end }}
{{- if .Run.Summary.AvgJudgeScore }}
- Avg judge score: {{ score .Run.Summary.AvgJudgeScore }} (judge: {{ .Run.Summary.JudgeModel }})
{{- end }}

## Categories
{{ range .Categories }}
- {{ .Name }}: {{ .Passed }}/{{ .Total }} ({{ .Percent }}%)
{{- end }}

## System Prompt

` + "```" + `
{{ .Run.SystemPrompt }}
` + "```" + `

## Test Details
{{ range .Run.Results }}
### [{{ mark .Passed }}] Test {{ .ID }} ({{ .Category }})

- Prompt: {{ cell .Prompt }}
{{- if .LatencyMs }}
- Latency: {{ ms .LatencyMs }}
{{- end }}
{{- if .JudgeScore }}
- Judge score: {{ score .JudgeScore }}
{{- range $name, $value := .JudgeCriteriaScores }}
  - {{ $name }}: {{ printf "%.1f" $value }}
{{- end }}
- Judge reasoning: {{ cell .JudgeReasoning }}
{{- else if .ExpectedAnswers }}
- Acceptable answers:
{{- range .ExpectedAnswers }}
  - {{ . }}
{{- end }}
{{- end }}
{{- if .MatchKind }}
- Matched via: {{ .MatchKind }}
{{- end }}

Response:

` + "```" + `
{{ .ActualResponse }}
` + "```" + `
{{ end }}
{{- if .Run.Failures }}
## Failed Tests

| ID | Prompt | Expected | Actual |
|----|--------|----------|--------|
{{- range .Run.Failures }}
| {{ .ID }} | {{ cell .Prompt }} | {{ cell (joinAnswers .Expected) }} | {{ preview .Actual }} |
{{- end }}
{{ end -}}
`
