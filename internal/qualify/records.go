package qualify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/bant-qualifier/internal/model"
	"github.com/sells-group/bant-qualifier/internal/store"
)

// RecordStore owns the collection of opportunities and their evaluation
// history. The ordered list (newest-created first) lives in memory; every
// mutation rewrites the persisted snapshot before it becomes visible, and a
// failed save rolls the in-memory state back so memory and disk never
// diverge.
type RecordStore struct {
	mu   sync.Mutex
	st   store.Store
	opps []model.Opportunity
}

// LoadRecordStore reads the persisted opportunity snapshot.
func LoadRecordStore(ctx context.Context, st store.Store) (*RecordStore, error) {
	opps, err := st.LoadOpportunities(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "qualify: load opportunities")
	}
	return &RecordStore{st: st, opps: opps}, nil
}

// List returns a deep-copied snapshot of all opportunities, newest-created
// first.
func (rs *RecordStore) List() []model.Opportunity {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	out := make([]model.Opportunity, len(rs.opps))
	for i := range rs.opps {
		out[i] = rs.opps[i].Clone()
	}
	return out
}

// Get returns a copy of the opportunity with the given id. A missing id is
// a normal outcome, reported by ok=false rather than an error.
func (rs *RecordStore) Get(id string) (model.Opportunity, bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	for i := range rs.opps {
		if rs.opps[i].ID == id {
			return rs.opps[i].Clone(), true
		}
	}
	return model.Opportunity{}, false
}

// RecordEvaluation is the sole mutation path that adds history. When
// existingID resolves to a known opportunity it appends a record and
// refreshes the name/customer projection; otherwise it creates a new
// opportunity at the front of the list. Returns the id of the opportunity
// that received the record.
func (rs *RecordStore) RecordEvaluation(ctx context.Context, existingID string, input model.QualificationInput, result model.Evaluation) (string, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	rec := model.EvaluationRecord{
		Timestamp: time.Now().UTC(),
		Input:     input,
		Result:    result,
	}

	if existingID != "" {
		for i := range rs.opps {
			if rs.opps[i].ID != existingID {
				continue
			}
			prev := rs.opps[i].Clone()
			rs.opps[i].Name = input.ProjectName
			rs.opps[i].CustomerName = input.CustomerName
			rs.opps[i].Records = append(rs.opps[i].Records, rec)

			if err := rs.st.SaveOpportunities(ctx, rs.opps); err != nil {
				rs.opps[i] = prev
				return "", eris.Wrap(err, "qualify: save opportunities")
			}

			zap.L().Info("evaluation recorded",
				zap.String("id", existingID),
				zap.String("verdict", string(result.Verdict)),
				zap.Int("history", len(rs.opps[i].Records)),
			)
			return existingID, nil
		}
		// Unknown id falls through to creation: the caller's selection no
		// longer exists, so the submission starts a fresh opportunity.
	}

	opp := model.Opportunity{
		ID:           uuid.New().String(),
		Name:         input.ProjectName,
		CustomerName: input.CustomerName,
		CreatedAt:    time.Now().UTC(),
		Records:      []model.EvaluationRecord{rec},
	}
	rs.opps = append([]model.Opportunity{opp}, rs.opps...)

	if err := rs.st.SaveOpportunities(ctx, rs.opps); err != nil {
		rs.opps = rs.opps[1:]
		return "", eris.Wrap(err, "qualify: save opportunities")
	}

	zap.L().Info("opportunity created",
		zap.String("id", opp.ID),
		zap.String("name", opp.Name),
		zap.String("verdict", string(result.Verdict)),
	)
	return opp.ID, nil
}

// Delete removes the opportunity and its entire history. Deleting an
// unknown id is a no-op. Confirmation is the caller's responsibility; the
// store is unconditionally destructive once invoked.
func (rs *RecordStore) Delete(ctx context.Context, id string) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	for i := range rs.opps {
		if rs.opps[i].ID != id {
			continue
		}
		removed := rs.opps[i]
		rs.opps = append(rs.opps[:i], rs.opps[i+1:]...)

		if err := rs.st.SaveOpportunities(ctx, rs.opps); err != nil {
			rs.opps = append(rs.opps[:i], append([]model.Opportunity{removed}, rs.opps[i:]...)...)
			return eris.Wrap(err, "qualify: save opportunities")
		}

		zap.L().Info("opportunity deleted", zap.String("id", id))
		return nil
	}
	return nil
}

// Len returns the number of opportunities.
func (rs *RecordStore) Len() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return len(rs.opps)
}
