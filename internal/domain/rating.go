package domain

import "time"

// Rating represents one submitted opinion about one location's sleeping
// conditions. Once persisted a Rating is immutable; it is never updated or
// deleted by this service.
type Rating struct {
	ID              string
	LocationKey     string
	Attributes      map[Category]string
	MultiAttributes map[Category][]string
	Identity        string
	SourceAddress   string
	SubmittedAt     time.Time
}

// Draft is a candidate Rating before acceptance. SubmittedAt is assigned by
// the server at persistence time, never by the client.
type Draft struct {
	LocationKey     string
	Attributes      map[Category]string
	MultiAttributes map[Category][]string
	Identity        string
	SourceAddress   string
}

// HasSignal reports whether the draft carries at least one rated value.
func (d Draft) HasSignal() bool {
	if len(d.Attributes) > 0 {
		return true
	}
	for _, values := range d.MultiAttributes {
		if len(values) > 0 {
			return true
		}
	}
	return false
}
