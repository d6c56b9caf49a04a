package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SystemConfigStore struct {
	pool *pgxpool.Pool
}

func NewSystemConfigStore(pool *pgxpool.Pool) *SystemConfigStore {
	return &SystemConfigStore{pool: pool}
}

func (s *SystemConfigStore) GetAll(ctx context.Context) (map[string]string, error) {
	const q = `SELECT key, value FROM system_config ORDER BY key`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("get config: %w", err)
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan config: %w", err)
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get config: %w", err)
	}
	return out, nil
}

func (s *SystemConfigStore) Get(ctx context.Context, key string) (string, bool, error) {
	const q = `SELECT value FROM system_config WHERE key = $1`

	var v string
	err := s.pool.QueryRow(ctx, q, key).Scan(&v)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get config %q: %w", key, err)
	}
	return v, true, nil
}

func (s *SystemConfigStore) Set(ctx context.Context, key, value string) error {
	const q = `
		INSERT INTO system_config (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`
	if _, err := s.pool.Exec(ctx, q, key, value); err != nil {
		return fmt.Errorf("set config %q: %w", key, err)
	}
	return nil
}
