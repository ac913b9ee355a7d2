package domain

import "time"

// RateLimitWindow is how long a rate-limit key stays hot after an admitted
// submission. Both abuse-control keys share the same window.
const RateLimitWindow = 7 * 24 * time.Hour

// RateLimitKind discriminates the two composite key forms.
type RateLimitKind string

const (
	// KindOrigin keys by (sourceAddress, locationKey).
	KindOrigin RateLimitKind = "origin"
	// KindIdentity keys by (identity, locationKey).
	KindIdentity RateLimitKind = "identity"
)

// RateLimitEntry is the window marker for one abuse-control key. At most one
// entry exists per (identifier, kind) pair; it is an upsert target, never an
// append log, and is never deleted — staleness is judged at read time by
// comparing WindowStart against now minus RateLimitWindow.
type RateLimitEntry struct {
	Identifier  string
	Kind        RateLimitKind
	WindowStart time.Time
}

// RateLimitKey pairs a composite identifier with its kind.
type RateLimitKey struct {
	Identifier string
	Kind       RateLimitKind
}

// OriginKey builds the (sourceAddress, locationKey) composite key.
func OriginKey(sourceAddress, locationKey string) RateLimitKey {
	return RateLimitKey{Identifier: sourceAddress + "|" + locationKey, Kind: KindOrigin}
}

// IdentityKey builds the (identity, locationKey) composite key.
func IdentityKey(identity, locationKey string) RateLimitKey {
	return RateLimitKey{Identifier: identity + "|" + locationKey, Kind: KindIdentity}
}
