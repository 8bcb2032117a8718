package model

import (
	"time"

	"github.com/rotisserie/eris"
)

// Verdict is the provider's tri-state classification of an opportunity.
type Verdict string

const (
	VerdictGo      Verdict = "GO"      // full support, score >= 80
	VerdictNurture Verdict = "NURTURE" // limited support, 60 <= score < 80
	VerdictNoGo    Verdict = "NO-GO"   // no support, score < 60
)

// ParseVerdict rejects anything outside the closed verdict set.
func ParseVerdict(s string) (Verdict, error) {
	switch Verdict(s) {
	case VerdictGo, VerdictNurture, VerdictNoGo:
		return Verdict(s), nil
	default:
		return "", eris.Errorf("model: unknown verdict: %q", s)
	}
}

// Label returns the human-readable support level for a verdict.
func (v Verdict) Label() string {
	switch v {
	case VerdictGo:
		return "full support"
	case VerdictNurture:
		return "limited support"
	case VerdictNoGo:
		return "no support"
	default:
		return "unknown"
	}
}

// DetailedScore is the provider's assessment of one BANT category.
// Category is attached locally when the response is parsed, by pairing the
// score's position against the canonical category order; it is not part of
// the wire format.
type DetailedScore struct {
	Category     Category `json:"category,omitempty"`
	Item         string   `json:"item"`
	Criteria     string   `json:"criteria"`
	InputSummary string   `json:"inputSummary"`
	Score        float64  `json:"score"`
	Progress     string   `json:"progress"`
	Reasoning    string   `json:"reasoning"`
	Analysis     string   `json:"analysis"`
}

// Evaluation is the full result of one qualification attempt. It is
// immutable once received from the provider and never recomputed locally.
type Evaluation struct {
	OverallScore      float64         `json:"overallScore"`
	Verdict           Verdict         `json:"verdict"`
	DetailedScores    []DetailedScore `json:"detailedScores"`
	SummaryEvaluation string          `json:"summaryEvaluation"`
	FutureActions     []string        `json:"futureActions"`
	MilestoneTip      string          `json:"milestoneTip"`
	Strategy          string          `json:"strategy"`
	RiskFactors       []string        `json:"riskFactors"`
}

// EvaluationRecord pairs one submitted input with the evaluation it
// produced. Records are append-only.
type EvaluationRecord struct {
	Timestamp time.Time          `json:"timestamp"`
	Input     QualificationInput `json:"input"`
	Result    Evaluation         `json:"result"`
}

// Opportunity is a tracked sales deal with an accumulating history of
// qualification attempts. Records is the immutable ordered log (newest
// last, never empty); Name and CustomerName are the mutable projection of
// the most recent submission.
type Opportunity struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	CustomerName string             `json:"customerName"`
	CreatedAt    time.Time          `json:"createdAt"`
	Records      []EvaluationRecord `json:"records"`
}

// Latest returns the most recent evaluation record.
func (o *Opportunity) Latest() EvaluationRecord {
	return o.Records[len(o.Records)-1]
}

// Clone returns a deep copy so callers cannot mutate store state through a
// returned snapshot.
func (o *Opportunity) Clone() Opportunity {
	out := *o
	out.Records = make([]EvaluationRecord, len(o.Records))
	copy(out.Records, o.Records)
	for i := range out.Records {
		r := &out.Records[i]
		r.Result.DetailedScores = append([]DetailedScore(nil), r.Result.DetailedScores...)
		r.Result.FutureActions = append([]string(nil), r.Result.FutureActions...)
		r.Result.RiskFactors = append([]string(nil), r.Result.RiskFactors...)
	}
	return out
}
