package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alexchristophe/hotel-ratings-backend/internal/store"
)

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("repository: not found")

// Repository aggregates the record store's two record kinds.
type Repository struct {
	Ratings    *RatingsRepository
	RateLimits *RateLimitsRepository
}

// New constructs a Repository backed by the provided store.
func New(st *store.Store) *Repository {
	return NewWithPool(st.Pool())
}

// NewWithPool allows constructing repositories directly from a pgx pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{
		Ratings:    &RatingsRepository{pool: pool},
		RateLimits: &RateLimitsRepository{pool: pool},
	}
}
