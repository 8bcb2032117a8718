package store

import (
	"context"

	"github.com/sells-group/bant-qualifier/internal/model"
)

// Snapshot keys. Each holds one independently persisted JSON blob that is
// fully rewritten on every save.
const (
	keyOpportunities = "opportunities"
	keyWeights       = "weights"
)

// Store defines the snapshot persistence interface for the qualifier. Load
// methods return (nil, nil) when nothing has been saved yet; callers apply
// their own defaults.
type Store interface {
	LoadOpportunities(ctx context.Context) ([]model.Opportunity, error)
	SaveOpportunities(ctx context.Context, opps []model.Opportunity) error

	LoadWeights(ctx context.Context) (*model.BantWeights, error)
	SaveWeights(ctx context.Context, w model.BantWeights) error

	Migrate(ctx context.Context) error
	Close() error
}
