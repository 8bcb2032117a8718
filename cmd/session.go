package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/bant-qualifier/internal/evaluator"
	"github.com/sells-group/bant-qualifier/internal/qualify"
	"github.com/sells-group/bant-qualifier/internal/store"
	"github.com/sells-group/bant-qualifier/internal/workflow"
	"github.com/sells-group/bant-qualifier/pkg/anthropic"
)

// env bundles the session and its collaborators for one command invocation.
type env struct {
	st      store.Store
	records *qualify.RecordStore
	weights *qualify.WeightConfig
	session *workflow.Session
}

func (e *env) Close() {
	_ = e.st.Close()
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "bantq.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initSession loads the record store and weight configuration from
// persistence and wires them to a fresh workflow session.
func initSession(ctx context.Context) (*env, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	records, err := qualify.LoadRecordStore(ctx, st)
	if err != nil {
		st.Close()
		return nil, err
	}
	weights, err := qualify.LoadWeightConfig(ctx, st)
	if err != nil {
		st.Close()
		return nil, err
	}

	eval := evaluator.New(anthropic.NewClient(cfg.Anthropic.Key), cfg.Evaluation)
	session := workflow.NewSession(records, weights, eval)

	return &env{st: st, records: records, weights: weights, session: session}, nil
}
