package kv

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nextagencyio/decoupled-commerce/internal/domain"
)

// Postgres is a Store backed by the storefront_kv table, namespaced by a
// session scope so carts survive process restarts.
type Postgres struct {
	pool  *pgxpool.Pool
	scope string
}

func NewPostgres(pool *pgxpool.Pool, scope string) *Postgres {
	return &Postgres{pool: pool, scope: scope}
}

func (p *Postgres) Get(ctx context.Context, key string) (string, error) {
	const q = `
SELECT value
FROM storefront_kv
WHERE scope = $1 AND key = $2
`
	var value string
	if err := p.pool.QueryRow(ctx, q, p.scope, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return value, nil
}

func (p *Postgres) Set(ctx context.Context, key, value string) error {
	const q = `
INSERT INTO storefront_kv (scope, key, value)
VALUES ($1, $2, $3)
ON CONFLICT (scope, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
`
	_, err := p.pool.Exec(ctx, q, p.scope, key, value)
	return err
}

func (p *Postgres) Delete(ctx context.Context, key string) error {
	const q = `
DELETE FROM storefront_kv
WHERE scope = $1 AND key = $2
`
	_, err := p.pool.Exec(ctx, q, p.scope, key)
	return err
}
