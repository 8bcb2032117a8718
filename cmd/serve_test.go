package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/bant-qualifier/internal/model"
	"github.com/sells-group/bant-qualifier/internal/qualify"
)

type memStore struct {
	opps    []model.Opportunity
	weights *model.BantWeights
}

func (m *memStore) LoadOpportunities(context.Context) ([]model.Opportunity, error) {
	return m.opps, nil
}

func (m *memStore) SaveOpportunities(_ context.Context, opps []model.Opportunity) error {
	m.opps = append([]model.Opportunity(nil), opps...)
	return nil
}

func (m *memStore) LoadWeights(context.Context) (*model.BantWeights, error) {
	return m.weights, nil
}

func (m *memStore) SaveWeights(_ context.Context, w model.BantWeights) error {
	m.weights = &w
	return nil
}

func (m *memStore) Migrate(context.Context) error { return nil }
func (m *memStore) Close() error                  { return nil }

type stubProvider struct {
	ev  *model.Evaluation
	err error
}

func (p *stubProvider) Evaluate(context.Context, model.QualificationInput, model.BantWeights) (*model.Evaluation, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.ev, nil
}

func apiEvaluation() *model.Evaluation {
	scores := make([]model.DetailedScore, 0, len(model.Categories))
	for _, c := range model.Categories {
		scores = append(scores, model.DetailedScore{Category: c, Item: string(c), Score: 17})
	}
	return &model.Evaluation{
		OverallScore:      85,
		Verdict:           model.VerdictGo,
		DetailedScores:    scores,
		SummaryEvaluation: "[Overall Evaluation and Proposal] strong opportunity",
		FutureActions:     []string{"schedule demo"},
		MilestoneTip:      "confirm signing authority",
		Strategy:          "lead with migration plan",
		RiskFactors:       []string{"aggressive timeline"},
	}
}

func apiInput() model.QualificationInput {
	return model.QualificationInput{
		ProjectName:  "Cloud Migration",
		CustomerName: "Acme Corp",
		DealSize:     "$250,000",
		Budget:       "approved",
		Authority:    "CTO engaged",
		Need:         "platform EOL",
		Timeline:     "Q2 go-live",
		Competition:  "sole vendor",
	}
}

func newTestAPI(t *testing.T, provider apiProvider) (http.Handler, *qualify.RecordStore, *qualify.WeightConfig) {
	t.Helper()
	ctx := context.Background()
	records, err := qualify.LoadRecordStore(ctx, &memStore{})
	require.NoError(t, err)
	weights, err := qualify.LoadWeightConfig(ctx, &memStore{})
	require.NoError(t, err)
	return newRouter(records, weights, provider), records, weights
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(data))
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAPI_Health(t *testing.T) {
	h, _, _ := newTestAPI(t, &stubProvider{ev: apiEvaluation()})
	rec := doJSON(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPI_QualifyAndList(t *testing.T) {
	h, records, _ := newTestAPI(t, &stubProvider{ev: apiEvaluation()})

	rec := doJSON(t, h, http.MethodPost, "/qualify", map[string]any{"input": apiInput()})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		ID         string           `json:"id"`
		Evaluation model.Evaluation `json:"evaluation"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, model.VerdictGo, created.Evaluation.Verdict)
	assert.Equal(t, 1, records.Len())

	rec = doJSON(t, h, http.MethodGet, "/opportunities", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var opps []model.Opportunity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opps))
	require.Len(t, opps, 1)
	assert.Equal(t, "Cloud Migration", opps[0].Name)

	rec = doJSON(t, h, http.MethodGet, "/opportunities/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/opportunities/no-such-id", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_RequalifyByID(t *testing.T) {
	h, records, _ := newTestAPI(t, &stubProvider{ev: apiEvaluation()})

	rec := doJSON(t, h, http.MethodPost, "/qualify", map[string]any{"input": apiInput()})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	in := apiInput()
	in.ProjectName = "Cloud Migration Phase 2"
	rec = doJSON(t, h, http.MethodPost, "/qualify", map[string]any{"id": created.ID, "input": in})
	require.Equal(t, http.StatusCreated, rec.Code)

	assert.Equal(t, 1, records.Len())
	opp, ok := records.Get(created.ID)
	require.True(t, ok)
	assert.Equal(t, "Cloud Migration Phase 2", opp.Name)
	assert.Len(t, opp.Records, 2)

	rec = doJSON(t, h, http.MethodPost, "/qualify", map[string]any{"id": "no-such-id", "input": apiInput()})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_QualifyRejectsIncompleteInput(t *testing.T) {
	h, records, _ := newTestAPI(t, &stubProvider{ev: apiEvaluation()})

	in := apiInput()
	in.Need = ""
	rec := doJSON(t, h, http.MethodPost, "/qualify", map[string]any{"input": in})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, records.Len())
}

func TestAPI_QualifyProviderFailure(t *testing.T) {
	h, records, _ := newTestAPI(t, &stubProvider{err: eris.New("rate limited")})

	rec := doJSON(t, h, http.MethodPost, "/qualify", map[string]any{"input": apiInput()})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "evaluation failed, please retry")
	assert.Equal(t, 0, records.Len())
}

func TestAPI_DeleteRequiresConfirmation(t *testing.T) {
	h, records, _ := newTestAPI(t, &stubProvider{ev: apiEvaluation()})

	rec := doJSON(t, h, http.MethodPost, "/qualify", map[string]any{"input": apiInput()})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, h, http.MethodDelete, "/opportunities/"+created.ID, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1, records.Len())

	rec = doJSON(t, h, http.MethodDelete, "/opportunities/"+created.ID+"?confirm=true", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, records.Len())

	// Deleting an unknown id with confirmation is a quiet no-op.
	rec = doJSON(t, h, http.MethodDelete, "/opportunities/no-such-id?confirm=true", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAPI_Weights(t *testing.T) {
	h, _, weights := newTestAPI(t, &stubProvider{ev: apiEvaluation()})

	rec := doJSON(t, h, http.MethodGet, "/weights", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got model.BantWeights
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, model.DefaultWeights(), got)

	valid := model.BantWeights{Budget: 30, Authority: 25, Need: 25, Timeline: 10, Competition: 10}
	rec = doJSON(t, h, http.MethodPut, "/weights", valid)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, valid, weights.Get())

	invalid := model.BantWeights{Budget: 40, Authority: 15, Need: 15, Timeline: 15, Competition: 15}
	rec = doJSON(t, h, http.MethodPut, "/weights", invalid)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, valid, weights.Get(), "failed update leaves committed weights intact")
}
