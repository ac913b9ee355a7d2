// Package submission sequences validation, admission, persistence, and the
// rate-limit commit for one rating submission. It owns no state; every
// terminal outcome is reported to the caller and nothing is retried here.
package submission

import (
	"context"
	"time"

	"github.com/alexchristophe/hotel-ratings-backend/internal/domain"
	"github.com/alexchristophe/hotel-ratings-backend/internal/ratelimit"
	"github.com/alexchristophe/hotel-ratings-backend/internal/validate"
)

// Status is the terminal outcome of one submission attempt.
type Status int

const (
	// Persisted means the rating was stored and both windows committed.
	Persisted Status = iota
	// Rejected means validation failed; nothing was stored.
	Rejected
	// Throttled means a rate-limit key denied the submission.
	Throttled
	// PersistFailed means the store was unavailable; admission state was not
	// mutated.
	PersistFailed
)

// Result is the tagged outcome of Submit. Exactly one of Rating, Validation,
// Throttle, or Err is meaningful, selected by Status.
type Result struct {
	Status     Status
	Rating     domain.Rating
	Validation *validate.Error
	Throttle   ratelimit.Decision
	Err        error
}

// Ratings is the slice of the record store the orchestrator writes through.
type Ratings interface {
	Insert(ctx context.Context, draft domain.Draft, submittedAt time.Time) (domain.Rating, error)
}

// Limiter is the admission contract the orchestrator sequences around the
// persistence step.
type Limiter interface {
	Admit(ctx context.Context, identity, locationKey, sourceAddress string, now time.Time) (ratelimit.Decision, error)
	Commit(ctx context.Context, identity, locationKey, sourceAddress string, now time.Time) (ratelimit.Decision, error)
}

// Service composes Validator, Rate Limiter, and Record Store for the write
// path.
type Service struct {
	ratings Ratings
	limiter Limiter
	clock   func() time.Time
}

// New constructs the orchestrator. A nil clock defaults to time.Now.
func New(ratings Ratings, limiter Limiter, clock func() time.Time) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{ratings: ratings, limiter: limiter, clock: clock}
}

// Submit runs the linear sequence: validate, admit, persist, commit windows.
// The commit only follows a confirmed write, so a store failure never
// advances admission state. A commit lost to a concurrent submission on the
// same key reports Throttled, keeping double-admission impossible under
// races.
func (s *Service) Submit(ctx context.Context, draft domain.Draft) Result {
	normalized, verr := validate.Draft(draft)
	if verr != nil {
		return Result{Status: Rejected, Validation: verr}
	}

	now := s.clock().UTC()

	decision, err := s.limiter.Admit(ctx, normalized.Identity, normalized.LocationKey, normalized.SourceAddress, now)
	if err != nil {
		return Result{Status: PersistFailed, Err: err}
	}
	if !decision.Allowed {
		return Result{Status: Throttled, Throttle: decision}
	}

	rating, err := s.ratings.Insert(ctx, normalized, now)
	if err != nil {
		return Result{Status: PersistFailed, Err: err}
	}

	committed, err := s.limiter.Commit(ctx, normalized.Identity, normalized.LocationKey, normalized.SourceAddress, now)
	if err != nil {
		return Result{Status: PersistFailed, Err: err}
	}
	if !committed.Allowed {
		return Result{Status: Throttled, Throttle: committed}
	}

	return Result{Status: Persisted, Rating: rating}
}
