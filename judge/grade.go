// judge/grade.go
package judge

import (
	"context"
	"fmt"

	"github.com/mwiater/gauntlet/internal/util"
)

// rawReplyPreview bounds how much of an unparseable judge reply is embedded
// in the diagnostic reasoning.
const rawReplyPreview = 300

// Input carries everything needed to grade one response.
type Input struct {
	Prompt        string
	Response      string
	CriteriaNames []string
	PassThreshold float64
	References    []string
}

// Grade runs the full judge path for one test: resolve criteria, build the
// grading prompt, call the judge, and parse the verdict. It never returns an
// error. A missing judge, a transport failure, or an unparseable reply all
// degrade to a failing Result whose reasoning embeds the raw cause, so the
// enclosing benchmark run continues to the next test.
func Grade(ctx context.Context, caller Caller, in Input) Result {
	if caller == nil {
		return failedResult("no judge configured: judge-scored tests require a judge model in the configuration")
	}
	criteria := ResolveCriteria(in.CriteriaNames)
	prompt := BuildPrompt(in.Prompt, in.Response, criteria, in.PassThreshold, in.References)

	reply, err := caller.Complete(ctx, prompt)
	if err != nil {
		return failedResult(fmt.Sprintf("judge call failed: %v", err))
	}
	result, err := ParseResponse(reply, criteria, in.PassThreshold)
	if err != nil {
		return failedResult(fmt.Sprintf("judge reply unparseable: %v (raw reply: %s)", err, util.TruncateRunes(reply, rawReplyPreview)))
	}
	return result
}

func failedResult(reason string) Result {
	return Result{Pass: false, Score: 0, Reasoning: reason, CriteriaScores: map[string]float64{}}
}
