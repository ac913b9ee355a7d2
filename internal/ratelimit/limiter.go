// Package ratelimit bounds submission frequency per client identity and per
// network origin, both scoped to a single location. The backing store, not
// this package, is the synchronization point: Commit claims both windows in
// one atomic store operation, so racing submissions on the same key resolve
// to exactly one winner even across service replicas.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexchristophe/hotel-ratings-backend/internal/domain"
	"github.com/alexchristophe/hotel-ratings-backend/internal/repository"
)

// RetryHint is the fixed retry advice returned on denial. It is the whole
// window length rather than a precise remaining-time computation, which keeps
// the contract simple and avoids clock-skew-sensitive precision.
const RetryHint = "1 week"

// Store is the slice of the record store the limiter needs.
type Store interface {
	FindEntry(ctx context.Context, key domain.RateLimitKey) (domain.RateLimitEntry, error)
	ClaimWindows(ctx context.Context, keys []domain.RateLimitKey, now, cutoff time.Time) (domain.RateLimitKind, error)
}

// Decision is the outcome of an admission check.
type Decision struct {
	Allowed bool
	// Exceeded names the key kind that denied admission.
	Exceeded domain.RateLimitKind
	// RetryAfter is the fixed retry hint, set only when denied.
	RetryAfter string
}

// Limiter decides admission for (identity, location) pairs against two
// independent keys. Both must pass: a shared origin covering many identities
// is still bounded per location, and one identity hopping origins is too.
type Limiter struct {
	store  Store
	window time.Duration
}

// New constructs a Limiter with the given window. A zero window falls back to
// the domain default of one week.
func New(store Store, window time.Duration) *Limiter {
	if window <= 0 {
		window = domain.RateLimitWindow
	}
	return &Limiter{store: store, window: window}
}

// Admit checks both abuse-control keys. A key denies when its recorded window
// start is newer than now minus the window length; a missing entry passes.
func (l *Limiter) Admit(ctx context.Context, identity, locationKey, sourceAddress string, now time.Time) (Decision, error) {
	keys := []domain.RateLimitKey{
		domain.OriginKey(sourceAddress, locationKey),
		domain.IdentityKey(identity, locationKey),
	}
	cutoff := now.Add(-l.window)

	for _, key := range keys {
		entry, err := l.store.FindEntry(ctx, key)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return Decision{}, fmt.Errorf("ratelimit: find %s entry: %w", key.Kind, err)
		}
		if entry.WindowStart.After(cutoff) {
			return Decision{Allowed: false, Exceeded: key.Kind, RetryAfter: RetryHint}, nil
		}
	}
	return Decision{Allowed: true}, nil
}

// Commit claims both keys' windows with windowStart = now. It must only be
// called after the rating's persistence is confirmed; a crash before Commit
// under-enforces (one extra rating slips through) rather than dropping a
// persisted rating, the safer failure direction. The claim is atomic across
// both keys: when a concurrent submission already advanced either window,
// Commit returns a denied Decision naming the lost key and the caller treats
// the submission as throttled.
func (l *Limiter) Commit(ctx context.Context, identity, locationKey, sourceAddress string, now time.Time) (Decision, error) {
	keys := []domain.RateLimitKey{
		domain.OriginKey(sourceAddress, locationKey),
		domain.IdentityKey(identity, locationKey),
	}
	lost, err := l.store.ClaimWindows(ctx, keys, now, now.Add(-l.window))
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit: claim windows: %w", err)
	}
	if lost != "" {
		return Decision{Allowed: false, Exceeded: lost, RetryAfter: RetryHint}, nil
	}
	return Decision{Allowed: true}, nil
}
