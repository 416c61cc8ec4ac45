package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps entries in the kv_entries table.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgres builds a Postgres-backed store and ensures its table exists.
func NewPostgres(ctx context.Context, db *pgxpool.Pool) (*PostgresStore, error) {
	_, err := db.Exec(ctx, `CREATE TABLE IF NOT EXISTS kv_entries (
        k TEXT PRIMARY KEY,
        v TEXT NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`)
	if err != nil {
		return nil, fmt.Errorf("migrate kv_entries: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Get returns the value stored under key.
func (s *PostgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRow(ctx, `SELECT v FROM kv_entries WHERE k = $1`, key).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("postgres get %s: %w", key, err)
	}
	return v, true, nil
}

// Set upserts value under key.
func (s *PostgresStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.Exec(ctx, `INSERT INTO kv_entries (k, v, updated_at) VALUES ($1, $2, now())
        ON CONFLICT (k) DO UPDATE SET v = EXCLUDED.v, updated_at = now()`, key, value)
	if err != nil {
		return fmt.Errorf("postgres set %s: %w", key, err)
	}
	return nil
}

// Remove deletes key.
func (s *PostgresStore) Remove(ctx context.Context, key string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM kv_entries WHERE k = $1`, key); err != nil {
		return fmt.Errorf("postgres remove %s: %w", key, err)
	}
	return nil
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	s.db.Close()
	return nil
}
