package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Category identifies one axis of the BANT rubric. The classic rubric is
// Budget, Authority, Need, Timeline; Competition is a fifth axis covering
// the realistic chance of winning the deal.
type Category string

const (
	CategoryBudget      Category = "budget"
	CategoryAuthority   Category = "authority"
	CategoryNeed        Category = "need"
	CategoryTimeline    Category = "timeline"
	CategoryCompetition Category = "competition"
)

// Categories is the canonical category order. Evaluation requests emit
// categories in this order and responses are paired back to it by position.
var Categories = []Category{
	CategoryBudget,
	CategoryAuthority,
	CategoryNeed,
	CategoryTimeline,
	CategoryCompetition,
}

// ParseCategory matches a category name case-insensitively.
func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryBudget:
		return CategoryBudget, nil
	case CategoryAuthority:
		return CategoryAuthority, nil
	case CategoryNeed:
		return CategoryNeed, nil
	case CategoryTimeline:
		return CategoryTimeline, nil
	case CategoryCompetition:
		return CategoryCompetition, nil
	default:
		return "", eris.Errorf("model: unknown category: %q", s)
	}
}

// Weight bounds: no single category may carry more than 30 of the 100
// available points, and the five weights must account for all of them.
const (
	MaxCategoryWeight = 30
	WeightTotal       = 100
)

// BantWeights assigns the maximum achievable score to each category.
type BantWeights struct {
	Budget      int `json:"budget" yaml:"budget"`
	Authority   int `json:"authority" yaml:"authority"`
	Need        int `json:"need" yaml:"need"`
	Timeline    int `json:"timeline" yaml:"timeline"`
	Competition int `json:"competition" yaml:"competition"`
}

// DefaultWeights returns the even 20/20/20/20/20 split.
func DefaultWeights() BantWeights {
	return BantWeights{
		Budget:      20,
		Authority:   20,
		Need:        20,
		Timeline:    20,
		Competition: 20,
	}
}

// Weight returns the weight assigned to a category.
func (w BantWeights) Weight(c Category) int {
	switch c {
	case CategoryBudget:
		return w.Budget
	case CategoryAuthority:
		return w.Authority
	case CategoryNeed:
		return w.Need
	case CategoryTimeline:
		return w.Timeline
	case CategoryCompetition:
		return w.Competition
	default:
		return 0
	}
}

// WithWeight returns a copy with the given category set to value.
func (w BantWeights) WithWeight(c Category, value int) BantWeights {
	switch c {
	case CategoryBudget:
		w.Budget = value
	case CategoryAuthority:
		w.Authority = value
	case CategoryNeed:
		w.Need = value
	case CategoryTimeline:
		w.Timeline = value
	case CategoryCompetition:
		w.Competition = value
	}
	return w
}

// Sum returns the total of all five weights.
func (w BantWeights) Sum() int {
	return w.Budget + w.Authority + w.Need + w.Timeline + w.Competition
}

// Validate checks that every weight is within [0, 30] and the five weights
// sum to exactly 100.
func (w BantWeights) Validate() error {
	for _, c := range Categories {
		v := w.Weight(c)
		if v < 0 || v > MaxCategoryWeight {
			return eris.Errorf("model: weight %s = %d out of range [0, %d]", c, v, MaxCategoryWeight)
		}
	}
	if s := w.Sum(); s != WeightTotal {
		return eris.Errorf("model: weights sum to %d, must sum to %d", s, WeightTotal)
	}
	return nil
}

// QualificationInput is the raw form content for one qualification attempt.
// It is stored verbatim inside the opportunity's history once submitted.
type QualificationInput struct {
	ProjectName  string `json:"projectName"`
	CustomerName string `json:"customerName"`
	DealSize     string `json:"dealSize"`
	Budget       string `json:"budget"`
	Authority    string `json:"authority"`
	Need         string `json:"need"`
	Timeline     string `json:"timeline"`
	Competition  string `json:"competition"`
}

// Narrative returns the free-text status for a category.
func (in QualificationInput) Narrative(c Category) string {
	switch c {
	case CategoryBudget:
		return in.Budget
	case CategoryAuthority:
		return in.Authority
	case CategoryNeed:
		return in.Need
	case CategoryTimeline:
		return in.Timeline
	case CategoryCompetition:
		return in.Competition
	default:
		return ""
	}
}

// Validate requires every field to be non-empty before submission.
func (in QualificationInput) Validate() error {
	if strings.TrimSpace(in.ProjectName) == "" {
		return eris.New("model: project name is required")
	}
	if strings.TrimSpace(in.CustomerName) == "" {
		return eris.New("model: customer name is required")
	}
	if strings.TrimSpace(in.DealSize) == "" {
		return eris.New("model: deal size is required")
	}
	for _, c := range Categories {
		if strings.TrimSpace(in.Narrative(c)) == "" {
			return eris.Errorf("model: %s narrative is required", c)
		}
	}
	return nil
}
