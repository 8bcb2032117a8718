package evaluator

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/xeipuuv/gojsonschema"

	"github.com/sells-group/bant-qualifier/internal/model"
)

// ErrMalformedResponse marks any provider response that fails shape
// validation. The raw payload travels in the wrap chain for diagnostics.
var ErrMalformedResponse = eris.New("malformed evaluation response")

// evaluationSchema is the contract the provider response must satisfy:
// every field present, the verdict drawn from the closed set, and exactly
// five detailed scores. Unknown keys are rejected rather than dropped.
const evaluationSchema = `{
	"type": "object",
	"additionalProperties": false,
	"required": ["overallScore", "verdict", "detailedScores", "summaryEvaluation", "futureActions", "milestoneTip", "strategy", "riskFactors"],
	"properties": {
		"overallScore": {"type": "number"},
		"verdict": {"type": "string", "enum": ["GO", "NURTURE", "NO-GO"]},
		"detailedScores": {
			"type": "array",
			"minItems": 5,
			"maxItems": 5,
			"items": {
				"type": "object",
				"additionalProperties": false,
				"required": ["item", "criteria", "inputSummary", "score", "progress", "reasoning", "analysis"],
				"properties": {
					"item": {"type": "string"},
					"criteria": {"type": "string"},
					"inputSummary": {"type": "string"},
					"score": {"type": "number"},
					"progress": {"type": "string"},
					"reasoning": {"type": "string"},
					"analysis": {"type": "string"}
				}
			}
		},
		"summaryEvaluation": {"type": "string"},
		"futureActions": {"type": "array", "items": {"type": "string"}},
		"milestoneTip": {"type": "string"},
		"strategy": {"type": "string"},
		"riskFactors": {"type": "array", "items": {"type": "string"}}
	}
}`

var compiledSchema = gojsonschema.NewStringLoader(evaluationSchema)

// ParseResponse validates the provider's raw response text against the
// evaluation contract and unmarshals it. The parsed detailed scores are
// paired with the canonical category order by position, mirroring the order
// the request was built in.
func ParseResponse(raw string) (*model.Evaluation, error) {
	cleaned := cleanJSON(raw)
	if cleaned == "" {
		return nil, eris.Wrapf(ErrMalformedResponse, "empty response: %q", raw)
	}

	result, err := gojsonschema.Validate(compiledSchema, gojsonschema.NewStringLoader(cleaned))
	if err != nil {
		return nil, eris.Wrapf(ErrMalformedResponse, "not valid JSON: %s: %q", err, raw)
	}
	if !result.Valid() {
		var violations []string
		for _, e := range result.Errors() {
			violations = append(violations, e.String())
		}
		return nil, eris.Wrapf(ErrMalformedResponse, "%s: %q", strings.Join(violations, "; "), raw)
	}

	var ev model.Evaluation
	if err := json.Unmarshal([]byte(cleaned), &ev); err != nil {
		return nil, eris.Wrapf(ErrMalformedResponse, "unmarshal: %s: %q", err, raw)
	}
	if _, err := model.ParseVerdict(string(ev.Verdict)); err != nil {
		return nil, eris.Wrapf(ErrMalformedResponse, "verdict: %q", ev.Verdict)
	}

	for i := range ev.DetailedScores {
		ev.DetailedScores[i].Category = model.Categories[i]
	}
	return &ev, nil
}

// cleanJSON strips markdown code fences and surrounding prose from a model
// response, keeping the outermost JSON object.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
