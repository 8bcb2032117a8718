// Package qualify owns the qualification record store and the weight
// configuration: the in-memory aggregates behind the workflow, loaded from
// persistence at startup and written back on every mutation.
package qualify

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/bant-qualifier/internal/model"
	"github.com/sells-group/bant-qualifier/internal/store"
)

// Validation sentinels. Callers match with eris.Is to tell the two
// constraint failures apart.
var (
	ErrWeightOutOfRange = eris.New("weight out of range")
	ErrWeightSumInvalid = eris.New("weight sum invalid")
)

// WeightConfig holds the committed category weights. Drafts produced by
// Propose are plain values; only Commit touches committed state or the
// backing store.
type WeightConfig struct {
	mu        sync.Mutex
	st        store.Store
	committed model.BantWeights
}

// LoadWeightConfig reads the persisted weights, applying the default even
// split when none have been saved yet.
func LoadWeightConfig(ctx context.Context, st store.Store) (*WeightConfig, error) {
	w, err := st.LoadWeights(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "qualify: load weights")
	}
	committed := model.DefaultWeights()
	if w != nil {
		committed = *w
	}
	return &WeightConfig{st: st, committed: committed}, nil
}

// Get returns the committed weights.
func (wc *WeightConfig) Get() model.BantWeights {
	wc.mu.Lock()
	defer wc.mu.Unlock()
	return wc.committed
}

// Propose returns a draft with one category changed. Only the per-field
// range is checked here; the sum constraint applies at Commit so a user can
// move points between categories through transiently invalid drafts.
func (wc *WeightConfig) Propose(draft model.BantWeights, c model.Category, value int) (model.BantWeights, error) {
	if value < 0 || value > model.MaxCategoryWeight {
		return draft, eris.Wrapf(ErrWeightOutOfRange, "%s = %d, allowed [0, %d]", c, value, model.MaxCategoryWeight)
	}
	return draft.WithWeight(c, value), nil
}

// Commit validates the draft and, on success, persists it and replaces the
// committed configuration. On any failure the committed state is unchanged.
func (wc *WeightConfig) Commit(ctx context.Context, draft model.BantWeights) error {
	for _, c := range model.Categories {
		if v := draft.Weight(c); v < 0 || v > model.MaxCategoryWeight {
			return eris.Wrapf(ErrWeightOutOfRange, "%s = %d, allowed [0, %d]", c, v, model.MaxCategoryWeight)
		}
	}
	if s := draft.Sum(); s != model.WeightTotal {
		return eris.Wrapf(ErrWeightSumInvalid, "sum = %d, required %d", s, model.WeightTotal)
	}

	wc.mu.Lock()
	defer wc.mu.Unlock()

	if err := wc.st.SaveWeights(ctx, draft); err != nil {
		return eris.Wrap(err, "qualify: save weights")
	}
	wc.committed = draft

	zap.L().Info("weights committed",
		zap.Int("budget", draft.Budget),
		zap.Int("authority", draft.Authority),
		zap.Int("need", draft.Need),
		zap.Int("timeline", draft.Timeline),
		zap.Int("competition", draft.Competition),
	)
	return nil
}
