package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alexchristophe/hotel-ratings-backend/internal/domain"
)

// RateLimitsRepository persists the per-key window markers. Rows are upsert
// targets keyed by (identifier, kind); they are advanced, never deleted.
type RateLimitsRepository struct {
	pool *pgxpool.Pool
}

// FindEntry retrieves the window marker for one abuse-control key.
func (r *RateLimitsRepository) FindEntry(ctx context.Context, key domain.RateLimitKey) (domain.RateLimitEntry, error) {
	const query = `
        SELECT identifier, kind, window_start
        FROM rate_limit_entries
        WHERE identifier = $1 AND kind = $2
    `
	var entry domain.RateLimitEntry
	err := r.pool.QueryRow(ctx, query, key.Identifier, string(key.Kind)).Scan(
		&entry.Identifier,
		&entry.Kind,
		&entry.WindowStart,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.RateLimitEntry{}, ErrNotFound
		}
		return domain.RateLimitEntry{}, fmt.Errorf("find rate limit entry: %w", err)
	}
	return entry, nil
}

// ClaimWindows advances every key's window to now in one transaction, but
// only if the key is outside its window (window_start <= cutoff, or no row
// yet). The conditional upsert returns no row when another submission already
// holds the window, in which case the whole claim rolls back and the kind of
// the losing key is returned. Keys are claimed in slice order, so concurrent
// claims on the same key set serialize on the first row lock and exactly one
// caller wins. An empty kind means the claim succeeded.
func (r *RateLimitsRepository) ClaimWindows(ctx context.Context, keys []domain.RateLimitKey, now, cutoff time.Time) (domain.RateLimitKind, error) {
	const query = `
        INSERT INTO rate_limit_entries (identifier, kind, window_start)
        VALUES ($1,$2,$3)
        ON CONFLICT (identifier, kind)
        DO UPDATE SET window_start = EXCLUDED.window_start
        WHERE rate_limit_entries.window_start <= $4
        RETURNING window_start
    `

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin claim: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, key := range keys {
		var claimed time.Time
		err := tx.QueryRow(ctx, query, key.Identifier, string(key.Kind), now.UTC(), cutoff.UTC()).Scan(&claimed)
		if err != nil {
			if err == pgx.ErrNoRows {
				// Another submission advanced this window first.
				return key.Kind, nil
			}
			return "", fmt.Errorf("claim %s window: %w", key.Kind, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit claim: %w", err)
	}
	return "", nil
}
