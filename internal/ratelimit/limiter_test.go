package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alexchristophe/hotel-ratings-backend/internal/domain"
	"github.com/alexchristophe/hotel-ratings-backend/internal/repository"
)

// memStore mimics the record store's rate-limit semantics in memory: point
// lookups plus an all-or-nothing conditional claim over a key set.
type memStore struct {
	mu      sync.Mutex
	entries map[domain.RateLimitKey]time.Time
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[domain.RateLimitKey]time.Time)}
}

func (m *memStore) FindEntry(_ context.Context, key domain.RateLimitKey) (domain.RateLimitEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	start, ok := m.entries[key]
	if !ok {
		return domain.RateLimitEntry{}, repository.ErrNotFound
	}
	return domain.RateLimitEntry{Identifier: key.Identifier, Kind: key.Kind, WindowStart: start}, nil
}

func (m *memStore) ClaimWindows(_ context.Context, keys []domain.RateLimitKey, now, cutoff time.Time) (domain.RateLimitKind, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		if start, ok := m.entries[key]; ok && start.After(cutoff) {
			return key.Kind, nil
		}
	}
	for _, key := range keys {
		m.entries[key] = now
	}
	return "", nil
}

func (m *memStore) set(key domain.RateLimitKey, start time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = start
}

func TestAdmit_FreshKeysAllowed(t *testing.T) {
	limiter := New(newMemStore(), 0)
	decision, err := limiter.Admit(context.Background(), "fp-1", "loc-1", "203.0.113.7", time.Now())
	if err != nil {
		t.Fatalf("admit: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("fresh keys should be admitted: %+v", decision)
	}
}

func TestAdmit_DeniesWithinWindowPerKey(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		key  domain.RateLimitKey
		want domain.RateLimitKind
	}{
		{"origin key hot", domain.OriginKey("203.0.113.7", "loc-1"), domain.KindOrigin},
		{"identity key hot", domain.IdentityKey("fp-1", "loc-1"), domain.KindIdentity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			store.set(tt.key, now.Add(-time.Hour))
			limiter := New(store, 0)

			decision, err := limiter.Admit(context.Background(), "fp-1", "loc-1", "203.0.113.7", now)
			if err != nil {
				t.Fatalf("admit: %v", err)
			}
			if decision.Allowed {
				t.Fatalf("expected denial, got %+v", decision)
			}
			if decision.Exceeded != tt.want {
				t.Fatalf("exceeded = %s, want %s", decision.Exceeded, tt.want)
			}
			if decision.RetryAfter != RetryHint {
				t.Fatalf("retryAfter = %q, want %q", decision.RetryAfter, RetryHint)
			}
		})
	}
}

func TestAdmit_AllowsAfterWindowExpires(t *testing.T) {
	now := time.Now()
	store := newMemStore()
	store.set(domain.IdentityKey("fp-1", "loc-1"), now.Add(-domain.RateLimitWindow-time.Minute))
	store.set(domain.OriginKey("203.0.113.7", "loc-1"), now.Add(-domain.RateLimitWindow-time.Minute))
	limiter := New(store, 0)

	decision, err := limiter.Admit(context.Background(), "fp-1", "loc-1", "203.0.113.7", now)
	if err != nil {
		t.Fatalf("admit: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("stale windows should admit: %+v", decision)
	}
}

func TestAdmit_KeysAreIndependent(t *testing.T) {
	now := time.Now()
	store := newMemStore()
	// Another identity from the same origin already rated this location.
	store.set(domain.OriginKey("203.0.113.7", "loc-1"), now.Add(-time.Hour))
	limiter := New(store, 0)

	decision, err := limiter.Admit(context.Background(), "fp-other", "loc-1", "203.0.113.7", now)
	if err != nil {
		t.Fatalf("admit: %v", err)
	}
	if decision.Allowed {
		t.Fatalf("shared origin must still be bounded per location")
	}
	if decision.Exceeded != domain.KindOrigin {
		t.Fatalf("exceeded = %s, want %s", decision.Exceeded, domain.KindOrigin)
	}

	// Same identity switching origins is bounded by the identity key.
	store2 := newMemStore()
	store2.set(domain.IdentityKey("fp-1", "loc-1"), now.Add(-time.Hour))
	limiter2 := New(store2, 0)

	decision2, err := limiter2.Admit(context.Background(), "fp-1", "loc-1", "198.51.100.9", now)
	if err != nil {
		t.Fatalf("admit: %v", err)
	}
	if decision2.Allowed {
		t.Fatalf("origin-hopping identity must still be bounded per location")
	}
	if decision2.Exceeded != domain.KindIdentity {
		t.Fatalf("exceeded = %s, want %s", decision2.Exceeded, domain.KindIdentity)
	}
}

func TestAdmit_DifferentLocationsIndependent(t *testing.T) {
	now := time.Now()
	store := newMemStore()
	store.set(domain.IdentityKey("fp-1", "loc-1"), now.Add(-time.Hour))
	store.set(domain.OriginKey("203.0.113.7", "loc-1"), now.Add(-time.Hour))
	limiter := New(store, 0)

	decision, err := limiter.Admit(context.Background(), "fp-1", "loc-2", "203.0.113.7", now)
	if err != nil {
		t.Fatalf("admit: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("other locations must not be affected: %+v", decision)
	}
}

func TestCommit_ThenAdmitDenies(t *testing.T) {
	now := time.Now()
	store := newMemStore()
	limiter := New(store, 0)

	committed, err := limiter.Commit(context.Background(), "fp-1", "loc-1", "203.0.113.7", now)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if !committed.Allowed {
		t.Fatalf("first commit should win: %+v", committed)
	}

	decision, err := limiter.Admit(context.Background(), "fp-1", "loc-1", "203.0.113.7", now.Add(time.Minute))
	if err != nil {
		t.Fatalf("admit: %v", err)
	}
	if decision.Allowed {
		t.Fatalf("window just committed, admission must be denied")
	}
}

func TestCommit_ConcurrentSameKeyExactlyOneWins(t *testing.T) {
	now := time.Now()
	store := newMemStore()
	limiter := New(store, 0)

	const racers = 16
	var wg sync.WaitGroup
	results := make(chan bool, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			decision, err := limiter.Commit(context.Background(), "fp-1", "loc-1", "203.0.113.7", now)
			if err != nil {
				t.Errorf("commit: %v", err)
				return
			}
			results <- decision.Allowed
		}()
	}
	wg.Wait()
	close(results)

	winners := 0
	for won := range results {
		if won {
			winners++
		}
	}
	if winners != 1 {
		t.Fatalf("winners = %d, want exactly 1", winners)
	}
}
