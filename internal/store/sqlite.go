package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/bant-qualifier/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS snapshots (
	key        TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) LoadOpportunities(ctx context.Context) ([]model.Opportunity, error) {
	data, err := s.load(ctx, keyOpportunities)
	if err != nil || data == nil {
		return nil, err
	}
	var opps []model.Opportunity
	if err := json.Unmarshal(data, &opps); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal opportunities")
	}
	return opps, nil
}

func (s *SQLiteStore) SaveOpportunities(ctx context.Context, opps []model.Opportunity) error {
	if opps == nil {
		opps = []model.Opportunity{}
	}
	data, err := json.Marshal(opps)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal opportunities")
	}
	return s.save(ctx, keyOpportunities, data)
}

func (s *SQLiteStore) LoadWeights(ctx context.Context) (*model.BantWeights, error) {
	data, err := s.load(ctx, keyWeights)
	if err != nil || data == nil {
		return nil, err
	}
	var w model.BantWeights
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal weights")
	}
	return &w, nil
}

func (s *SQLiteStore) SaveWeights(ctx context.Context, w model.BantWeights) error {
	data, err := json.Marshal(w)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal weights")
	}
	return s.save(ctx, keyWeights, data)
}

func (s *SQLiteStore) load(ctx context.Context, key string) ([]byte, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT data FROM snapshots WHERE key = ?`, key,
	)
	var data string
	err := row.Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: load snapshot %s", key)
	}
	return []byte(data), nil
}

func (s *SQLiteStore) save(ctx context.Context, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (key, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		key, string(data), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: save snapshot %s", key)
}
