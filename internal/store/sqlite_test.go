package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/bant-qualifier/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func sampleOpportunity(id string) model.Opportunity {
	return model.Opportunity{
		ID:           id,
		Name:         "Cloud Migration",
		CustomerName: "Acme Corp",
		CreatedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Records: []model.EvaluationRecord{{
			Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			Input: model.QualificationInput{
				ProjectName:  "Cloud Migration",
				CustomerName: "Acme Corp",
				DealSize:     "$250,000",
				Budget:       "approved",
				Authority:    "CTO engaged",
				Need:         "platform EOL",
				Timeline:     "Q2 go-live",
				Competition:  "sole vendor",
			},
			Result: model.Evaluation{
				OverallScore:      85,
				Verdict:           model.VerdictGo,
				DetailedScores:    []model.DetailedScore{{Item: "Budget", Score: 18}},
				SummaryEvaluation: "[Overall Evaluation and Proposal] strong",
				FutureActions:     []string{"schedule demo"},
				MilestoneTip:      "confirm signing authority",
				Strategy:          "lead with migration plan",
				RiskFactors:       []string{"aggressive timeline"},
			},
		}},
	}
}

func TestSQLite_Opportunities_RoundTrip(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	want := []model.Opportunity{sampleOpportunity("op-1"), sampleOpportunity("op-2")}
	require.NoError(t, st.SaveOpportunities(ctx, want))

	got, err := st.LoadOpportunities(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSQLite_Opportunities_NeverSaved(t *testing.T) {
	st := newTestSQLiteStore(t)

	got, err := st.LoadOpportunities(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLite_Opportunities_Overwrite(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveOpportunities(ctx, []model.Opportunity{sampleOpportunity("op-1"), sampleOpportunity("op-2")}))
	require.NoError(t, st.SaveOpportunities(ctx, []model.Opportunity{sampleOpportunity("op-3")}))

	got, err := st.LoadOpportunities(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "op-3", got[0].ID)
}

func TestSQLite_Opportunities_SaveEmpty(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveOpportunities(ctx, []model.Opportunity{sampleOpportunity("op-1")}))
	require.NoError(t, st.SaveOpportunities(ctx, nil))

	got, err := st.LoadOpportunities(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLite_Weights_RoundTrip(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	want := model.BantWeights{Budget: 30, Authority: 25, Need: 25, Timeline: 10, Competition: 10}
	require.NoError(t, st.SaveWeights(ctx, want))

	got, err := st.LoadWeights(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)
}

func TestSQLite_Weights_NeverSaved(t *testing.T) {
	st := newTestSQLiteStore(t)

	got, err := st.LoadWeights(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLite_Migrate_Idempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveWeights(ctx, model.DefaultWeights()))
	require.NoError(t, st.Migrate(ctx))

	got, err := st.LoadWeights(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.DefaultWeights(), *got)
}
