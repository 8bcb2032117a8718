// Package evaluator owns the boundary contract with the evaluation
// provider: it builds the structured qualification request, renders it into
// a prompt, and validates the structured evaluation that comes back. It
// never computes scores or verdicts itself.
package evaluator

import (
	"fmt"
	"strings"

	"github.com/sells-group/bant-qualifier/internal/model"
)

// CategoryRequest pairs one category with its maximum permissible score and
// the user's narrative for it.
type CategoryRequest struct {
	Category  model.Category `json:"category"`
	MaxScore  int            `json:"maxScore"`
	Narrative string         `json:"narrative"`
}

// EvaluationRequest is the exact payload sent to the evaluation provider.
// Categories follows the canonical order so responses can be paired back by
// position.
type EvaluationRequest struct {
	ProjectName  string            `json:"projectName"`
	CustomerName string            `json:"customerName"`
	DealSize     string            `json:"dealSize"`
	AnchorDate   string            `json:"anchorDate"`
	Categories   []CategoryRequest `json:"categories"`
}

// criteria is the evaluation criterion communicated to the provider per
// category.
var criteria = map[model.Category]string{
	model.CategoryBudget:      "whether a concrete budget has been allocated",
	model.CategoryAuthority:   "whether a line to the decision maker (key man) is secured",
	model.CategoryNeed:        "whether a clear pain point exists",
	model.CategoryTimeline:    "how concrete the adoption timeline is (within six months of the anchor date)",
	model.CategoryCompetition: "the realistic chance of winning the deal (or being a stalking horse)",
}

// BuildRequest assembles the provider payload from a submitted input and
// the weights active at evaluation time. Pure; every category is included
// even when its weight is zero.
func BuildRequest(input model.QualificationInput, weights model.BantWeights, anchorDate string) EvaluationRequest {
	req := EvaluationRequest{
		ProjectName:  input.ProjectName,
		CustomerName: input.CustomerName,
		DealSize:     input.DealSize,
		AnchorDate:   anchorDate,
		Categories:   make([]CategoryRequest, 0, len(model.Categories)),
	}
	for _, c := range model.Categories {
		req.Categories = append(req.Categories, CategoryRequest{
			Category:  c,
			MaxScore:  weights.Weight(c),
			Narrative: input.Narrative(c),
		})
	}
	return req
}

const systemPrompt = `You are an expert B2B sales strategist. Evaluate sales opportunities dispassionately as of the stated anchor date. Apply the requested score bands and the user-assigned per-category maximum scores strictly when deciding between 'GO', 'NURTURE', and 'NO-GO'. Write concrete reasoning and analysis for every category. Respond with a single JSON object and nothing else.`

// SystemPrompt returns the system instruction for the provider call.
func SystemPrompt() string {
	return systemPrompt
}

// RenderPrompt produces the deterministic prompt text for a request. The
// required JSON output shape, the per-category maximum scores, and the
// verdict bands are all spelled out so the response can be validated
// mechanically.
func RenderPrompt(req EvaluationRequest) string {
	var b strings.Builder

	b.WriteString("Evaluate the following B2B sales opportunity and produce a qualification report.\n")
	fmt.Fprintf(&b, "Anchor date for all timeline judgments: %s\n\n", req.AnchorDate)

	b.WriteString("[Opportunity]\n")
	fmt.Fprintf(&b, "- Project: %s\n", req.ProjectName)
	fmt.Fprintf(&b, "- Customer: %s\n", req.CustomerName)
	fmt.Fprintf(&b, "- Estimated deal size: %s\n\n", req.DealSize)

	b.WriteString("[Evaluation criteria and user-assigned maximum scores]\n")
	b.WriteString("The user-assigned maximum score per category is (total 100):\n")
	for i, cr := range req.Categories {
		fmt.Fprintf(&b, "%d. %s: [max %d points] %s\n", i+1, cr.Category, cr.MaxScore, criteria[cr.Category])
	}

	b.WriteString("\n[Current status per category]\n")
	for _, cr := range req.Categories {
		fmt.Fprintf(&b, "- %s: %s\n", cr.Category, cr.Narrative)
	}

	b.WriteString(`
[Verdict bands by total score - follow strictly]
1. 80 or above: set verdict to 'GO' (full support; winning the deal is very likely).
2. 60 to 79: set verdict to 'NURTURE' (limited support; one online meeting or one standard demo).
3. Below 60: set verdict to 'NO-GO' (no support; provide materials only and monitor for future opportunities).

[Report generation rules]
1. summaryEvaluation: include the heading "[Overall Evaluation and Proposal]" and reflect urgency relative to the anchor date.
2. detailedScores: exactly five entries, one per category in the exact order listed above.
   - score: score objectively within the category's assigned maximum.
   - reasoning: the concrete basis for the score.
   - analysis: an in-depth analysis of the category.
3. futureActions: a list of concrete action items under "[Recommended Next Actions]".
4. milestoneTip: a conditional phrase naming the key point that would improve the score.

Return a single JSON object with exactly these keys:
{"overallScore": number, "verdict": "GO"|"NURTURE"|"NO-GO", "detailedScores": [{"item": string, "criteria": string, "inputSummary": string, "score": number, "progress": string, "reasoning": string, "analysis": string} x5], "summaryEvaluation": string, "futureActions": [string], "milestoneTip": string, "strategy": string, "riskFactors": [string]}`)

	return b.String()
}
