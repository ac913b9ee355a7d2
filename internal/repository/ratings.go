package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alexchristophe/hotel-ratings-backend/internal/domain"
)

// RatingsRepository persists and lists rating records.
type RatingsRepository struct {
	pool *pgxpool.Pool
}

const ratingColumns = `
    id,
    location_key,
    attributes,
    multi_attributes,
    identity,
    source_address,
    submitted_at
`

// Insert stores a validated draft and returns the persisted rating with its
// server-assigned id and timestamp.
func (r *RatingsRepository) Insert(ctx context.Context, draft domain.Draft, submittedAt time.Time) (domain.Rating, error) {
	attrs, err := json.Marshal(nonNilAttrs(draft.Attributes))
	if err != nil {
		return domain.Rating{}, fmt.Errorf("marshal attributes: %w", err)
	}
	multi, err := json.Marshal(nonNilMulti(draft.MultiAttributes))
	if err != nil {
		return domain.Rating{}, fmt.Errorf("marshal multi attributes: %w", err)
	}

	query := fmt.Sprintf(`
        INSERT INTO ratings (location_key, attributes, multi_attributes, identity, source_address, submitted_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING %s
    `, ratingColumns)

	row := r.pool.QueryRow(ctx, query,
		draft.LocationKey, attrs, multi, draft.Identity, draft.SourceAddress, submittedAt.UTC())
	rating, err := scanRating(row)
	if err != nil {
		return domain.Rating{}, fmt.Errorf("insert rating: %w", err)
	}
	return rating, nil
}

// ListByLocation returns every rating for a location, newest first. The id is
// a secondary sort key so ratings sharing a timestamp order stably.
func (r *RatingsRepository) ListByLocation(ctx context.Context, locationKey string) ([]domain.Rating, error) {
	query := fmt.Sprintf(`
        SELECT %s
        FROM ratings
        WHERE location_key = $1
        ORDER BY submitted_at DESC, id DESC
    `, ratingColumns)

	rows, err := r.pool.Query(ctx, query, locationKey)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	defer rows.Close()

	ratings := make([]domain.Rating, 0)
	for rows.Next() {
		rating, err := scanRating(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, rating)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	return ratings, nil
}

func scanRating(row pgx.Row) (domain.Rating, error) {
	var rating domain.Rating
	var attrs, multi []byte
	if err := row.Scan(
		&rating.ID,
		&rating.LocationKey,
		&attrs,
		&multi,
		&rating.Identity,
		&rating.SourceAddress,
		&rating.SubmittedAt,
	); err != nil {
		return domain.Rating{}, err
	}
	if err := json.Unmarshal(attrs, &rating.Attributes); err != nil {
		return domain.Rating{}, fmt.Errorf("decode attributes: %w", err)
	}
	if err := json.Unmarshal(multi, &rating.MultiAttributes); err != nil {
		return domain.Rating{}, fmt.Errorf("decode multi attributes: %w", err)
	}
	return rating, nil
}

func nonNilAttrs(m map[domain.Category]string) map[domain.Category]string {
	if m == nil {
		return map[domain.Category]string{}
	}
	return m
}

func nonNilMulti(m map[domain.Category][]string) map[domain.Category][]string {
	if m == nil {
		return map[domain.Category][]string{}
	}
	return m
}
