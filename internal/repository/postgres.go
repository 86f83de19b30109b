package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv_store (
	key        TEXT PRIMARY KEY,
	value      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore keeps values in the kv_store table.
type PostgresStore struct {
	DB *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{DB: db}
}

func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := p.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create kv_store: %w", err)
	}
	return nil
}

func (p *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	q := `SELECT value FROM kv_store WHERE key = $1`
	var v []byte
	if err := p.DB.QueryRowContext(ctx, q, key).Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

// Update locks the row for the duration of fn so concurrent writers
// serialize, including the first writes of a key that does not exist yet.
func (p *PostgresStore) Update(ctx context.Context, key string, fn func(old []byte) ([]byte, error)) (err error) {
	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// A missing row cannot be locked. Seed a JSON null placeholder first;
	// concurrent seeders block on the key until this transaction ends.
	seed := `INSERT INTO kv_store (key, value) VALUES ($1, 'null') ON CONFLICT (key) DO NOTHING`
	if _, err = tx.ExecContext(ctx, seed, key); err != nil {
		return fmt.Errorf("seed %s: %w", key, err)
	}

	var old []byte
	q := `SELECT value FROM kv_store WHERE key = $1 FOR UPDATE`
	if err = tx.QueryRowContext(ctx, q, key).Scan(&old); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("select %s: %w", key, err)
	}
	if string(old) == "null" {
		old = nil
	}

	next, err := fn(old)
	if err != nil {
		return err
	}

	upsert := `
		INSERT INTO kv_store (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`
	if _, err = tx.ExecContext(ctx, upsert, key, string(next)); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
