package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultWeights(t *testing.T) {
	w := DefaultWeights()
	require.NoError(t, w.Validate())
	assert.Equal(t, 100, w.Sum())
	for _, c := range Categories {
		assert.Equal(t, 20, w.Weight(c))
	}
}

func TestBantWeightsValidate(t *testing.T) {
	tests := []struct {
		name    string
		weights BantWeights
		wantErr bool
	}{
		{
			name:    "even split",
			weights: DefaultWeights(),
		},
		{
			name:    "uneven but valid",
			weights: BantWeights{Budget: 30, Authority: 25, Need: 25, Timeline: 10, Competition: 10},
		},
		{
			name:    "zero weight allowed",
			weights: BantWeights{Budget: 30, Authority: 30, Need: 30, Timeline: 10, Competition: 0},
		},
		{
			name:    "single weight above cap",
			weights: BantWeights{Budget: 40, Authority: 15, Need: 15, Timeline: 15, Competition: 15},
			wantErr: true,
		},
		{
			name:    "negative weight",
			weights: BantWeights{Budget: -5, Authority: 30, Need: 30, Timeline: 30, Competition: 15},
			wantErr: true,
		},
		{
			name:    "sum below total",
			weights: BantWeights{Budget: 20, Authority: 20, Need: 20, Timeline: 20, Competition: 15},
			wantErr: true,
		},
		{
			name:    "sum above total",
			weights: BantWeights{Budget: 25, Authority: 20, Need: 20, Timeline: 20, Competition: 20},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.weights.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWithWeight(t *testing.T) {
	w := DefaultWeights()
	modified := w.WithWeight(CategoryBudget, 30)

	assert.Equal(t, 30, modified.Budget)
	assert.Equal(t, 20, w.Budget, "original should be unchanged")
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in      string
		want    Category
		wantErr bool
	}{
		{in: "budget", want: CategoryBudget},
		{in: "Authority", want: CategoryAuthority},
		{in: "  NEED  ", want: CategoryNeed},
		{in: "timeline", want: CategoryTimeline},
		{in: "competition", want: CategoryCompetition},
		{in: "pricing", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCategory(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func validInput() QualificationInput {
	return QualificationInput{
		ProjectName:  "Cloud Migration",
		CustomerName: "Acme Corp",
		DealSize:     "$250,000",
		Budget:       "budget approved for this fiscal year",
		Authority:    "direct line to the CTO",
		Need:         "legacy platform is end of life",
		Timeline:     "go-live planned within three months",
		Competition:  "sole vendor under consideration",
	}
}

func TestQualificationInputValidate(t *testing.T) {
	require.NoError(t, validInput().Validate())

	mutations := map[string]func(*QualificationInput){
		"project name": func(in *QualificationInput) { in.ProjectName = "" },
		"customer":     func(in *QualificationInput) { in.CustomerName = "  " },
		"deal size":    func(in *QualificationInput) { in.DealSize = "" },
		"budget":       func(in *QualificationInput) { in.Budget = "" },
		"authority":    func(in *QualificationInput) { in.Authority = "\t" },
		"need":         func(in *QualificationInput) { in.Need = "" },
		"timeline":     func(in *QualificationInput) { in.Timeline = "" },
		"competition":  func(in *QualificationInput) { in.Competition = "" },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			mutate(&in)
			assert.Error(t, in.Validate())
		})
	}
}
