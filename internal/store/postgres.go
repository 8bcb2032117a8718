package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/bant-qualifier/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. It lets tests swap in
// a pgxmock pool.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS snapshots (
	key        TEXT PRIMARY KEY,
	data       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) LoadOpportunities(ctx context.Context) ([]model.Opportunity, error) {
	data, err := s.load(ctx, keyOpportunities)
	if err != nil || data == nil {
		return nil, err
	}
	var opps []model.Opportunity
	if err := json.Unmarshal(data, &opps); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal opportunities")
	}
	return opps, nil
}

func (s *PostgresStore) SaveOpportunities(ctx context.Context, opps []model.Opportunity) error {
	if opps == nil {
		opps = []model.Opportunity{}
	}
	data, err := json.Marshal(opps)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal opportunities")
	}
	return s.save(ctx, keyOpportunities, data)
}

func (s *PostgresStore) LoadWeights(ctx context.Context) (*model.BantWeights, error) {
	data, err := s.load(ctx, keyWeights)
	if err != nil || data == nil {
		return nil, err
	}
	var w model.BantWeights
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal weights")
	}
	return &w, nil
}

func (s *PostgresStore) SaveWeights(ctx context.Context, w model.BantWeights) error {
	data, err := json.Marshal(w)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal weights")
	}
	return s.save(ctx, keyWeights, data)
}

func (s *PostgresStore) load(ctx context.Context, key string) ([]byte, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT data FROM snapshots WHERE key = $1`, key,
	)
	var data []byte
	err := row.Scan(&data)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: load snapshot %s", key)
	}
	return data, nil
}

func (s *PostgresStore) save(ctx context.Context, key string, data []byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO snapshots (key, data, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		key, data, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: save snapshot %s", key)
}
