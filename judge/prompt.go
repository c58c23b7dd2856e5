// judge/prompt.go
package judge

import (
	"strconv"
	"strings"
)

// BuildPrompt constructs the single instruction block sent to the judge. It
// lists every criterion with its description, embeds the original prompt and
// the model's response verbatim, optionally includes reference answers as
// calibration context, and mandates a strict single-line JSON reply.
func BuildPrompt(prompt, response string, criteria []Criterion, passThreshold float64, references []string) string {
	threshold := strconv.FormatFloat(passThreshold, 'f', -1, 64)

	var b strings.Builder
	b.WriteString("You are an impartial judge grading a language model's response.\n\n")
	b.WriteString("Score the response on each criterion from 0 to 10:\n")
	for _, criterion := range criteria {
		b.WriteString("- ")
		b.WriteString(criterion.Name)
		b.WriteString(": ")
		b.WriteString(criterion.Description)
		b.WriteString("\n")
	}
	b.WriteString("\nOriginal prompt:\n")
	b.WriteString(prompt)
	b.WriteString("\n\nModel response:\n")
	b.WriteString(response)
	b.WriteString("\n")
	if len(references) > 0 {
		b.WriteString("\nReference answers (calibration context only, the response need not match them verbatim):\n")
		for _, reference := range references {
			b.WriteString("- ")
			b.WriteString(reference)
			b.WriteString("\n")
		}
	}
	b.WriteString("\nScore each criterion from 0 to 10, give an overall score from 0 to 10, ")
	b.WriteString("a short reasoning, and set pass to true only if the overall score is at least ")
	b.WriteString(threshold)
	b.WriteString(".\n")
	b.WriteString("Reply with a single line of JSON and nothing else, no code fences, no surrounding prose, in exactly this shape:\n")
	b.WriteString(`{"scores": {`)
	for i, criterion := range criteria {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(`"`)
		b.WriteString(criterion.Name)
		b.WriteString(`": 0`)
	}
	b.WriteString(`}, "overall": 0, "reasoning": "<short rationale>", "pass": false}`)
	return b.String()
}
