package evaluator

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/bant-qualifier/internal/config"
	"github.com/sells-group/bant-qualifier/internal/cost"
	"github.com/sells-group/bant-qualifier/internal/model"
	"github.com/sells-group/bant-qualifier/pkg/anthropic"
)

// Evaluator drives one provider call per qualification attempt: build the
// request, render it, send it, validate the response. There is exactly one
// outstanding request at a time and no retry or client-side timeout; the
// call resolves to success or failure once.
type Evaluator struct {
	client anthropic.Client
	cfg    config.EvaluationConfig
	costs  *cost.Calculator
}

// New creates an Evaluator backed by the given provider client.
func New(client anthropic.Client, cfg config.EvaluationConfig) *Evaluator {
	return &Evaluator{
		client: client,
		cfg:    cfg,
		costs:  cost.NewCalculator(cost.DefaultRates()),
	}
}

// Evaluate submits input with the active weights to the provider and
// returns the validated evaluation. The provider's scores and verdict are
// treated as authoritative; nothing is recomputed locally.
func (e *Evaluator) Evaluate(ctx context.Context, input model.QualificationInput, weights model.BantWeights) (*model.Evaluation, error) {
	req := BuildRequest(input, weights, e.cfg.AnchorDate)

	resp, err := e.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     e.cfg.Model,
		MaxTokens: e.cfg.MaxTokens,
		System:    SystemPrompt(),
		Messages: []anthropic.Message{
			{Role: "user", Content: RenderPrompt(req)},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "evaluator: provider call")
	}
	resp.Usage.LogUsage(e.cfg.Model, "qualify")

	ev, err := ParseResponse(resp.Text())
	if err != nil {
		return nil, err
	}

	zap.L().Info("evaluation received",
		zap.String("project", input.ProjectName),
		zap.Float64("overall_score", ev.OverallScore),
		zap.String("verdict", string(ev.Verdict)),
		zap.Float64("estimated_cost_usd", e.costs.Message(e.cfg.Model, resp.Usage.InputTokens, resp.Usage.OutputTokens)),
	)
	return ev, nil
}
