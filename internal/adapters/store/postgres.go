package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// PostgresStore keeps blobs as jsonb rows keyed by name.
type PostgresStore struct {
	db     *sql.DB
	upsert string
	get    string
	del    string
}

// NewPostgres creates the table when missing. The store owns db and closes it.
func NewPostgres(ctx context.Context, db *sql.DB, opts ...Option) (*PostgresStore, error) {
	o := buildOptions(opts)
	table := pq.QuoteIdentifier(o.table)
	s := &PostgresStore{
		db: db,
		upsert: fmt.Sprintf(`INSERT INTO %s (key, data, updated_at) VALUES ($1, $2, now())
			ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`, table),
		get: fmt.Sprintf(`SELECT data FROM %s WHERE key = $1`, table),
		del: fmt.Sprintf(`DELETE FROM %s WHERE key = $1`, table),
	}
	schema := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		key        text PRIMARY KEY,
		data       jsonb NOT NULL,
		updated_at timestamptz NOT NULL DEFAULT now()
	)`, table)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("create %s: %w", table, describe(err))
	}
	return s, nil
}

func (s *PostgresStore) Save(ctx context.Context, key string, data []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, s.upsert, key, string(data)); err != nil {
		return fmt.Errorf("upsert %s: %w", key, describe(err))
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	var data []byte
	err := s.db.QueryRowContext(ctx, s.get, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", key, describe(err))
	}
	return data, nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, s.del, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, describe(err))
	}
	return nil
}

func (s *PostgresStore) Close() error { return s.db.Close() }

// describe adds the SQLSTATE to driver errors.
func describe(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Errorf("%w (sqlstate %s)", err, pqErr.Code)
	}
	return err
}
