package validate

import (
	"testing"

	"github.com/alexchristophe/hotel-ratings-backend/internal/domain"
)

func validDraft() domain.Draft {
	return domain.Draft{
		LocationKey:   "airbnb:12345",
		Identity:      "fp-abc",
		SourceAddress: "203.0.113.7",
		Attributes: map[domain.Category]string{
			domain.BedComfort: "soft",
		},
		MultiAttributes: map[domain.Category][]string{
			domain.NoiseIssues: {"traffic"},
		},
	}
}

func TestDraft_Valid(t *testing.T) {
	normalized, verr := Draft(validDraft())
	if verr != nil {
		t.Fatalf("unexpected rejection: %v", verr)
	}
	if normalized.Attributes[domain.BedComfort] != "soft" {
		t.Fatalf("bedComfort = %q, want soft", normalized.Attributes[domain.BedComfort])
	}
	if len(normalized.MultiAttributes[domain.NoiseIssues]) != 1 {
		t.Fatalf("noiseIssues = %v, want one value", normalized.MultiAttributes[domain.NoiseIssues])
	}
}

func TestDraft_MissingLocation(t *testing.T) {
	draft := validDraft()
	draft.LocationKey = "   "
	_, verr := Draft(draft)
	if verr == nil || verr.Code != MissingLocation {
		t.Fatalf("verr = %v, want %s", verr, MissingLocation)
	}
}

func TestDraft_MissingIdentity(t *testing.T) {
	draft := validDraft()
	draft.Identity = ""
	_, verr := Draft(draft)
	if verr == nil || verr.Code != MissingIdentity {
		t.Fatalf("verr = %v, want %s", verr, MissingIdentity)
	}
}

func TestDraft_InvalidValuesRejectWholeSubmission(t *testing.T) {
	draft := validDraft()
	draft.Attributes[domain.BedSize] = "enormous"
	draft.MultiAttributes[domain.LightAnnoyances] = []string{"street lamps", "disco ball", "laser show"}

	_, verr := Draft(draft)
	if verr == nil || verr.Code != InvalidCategoryValue {
		t.Fatalf("verr = %v, want %s", verr, InvalidCategoryValue)
	}
	if len(verr.Invalid) != 3 {
		t.Fatalf("invalid list = %+v, want every offending value (3)", verr.Invalid)
	}
	for _, item := range verr.Invalid {
		if len(item.Allowed) == 0 {
			t.Fatalf("entry %+v missing accepted vocabulary", item)
		}
	}
	// Deterministic report order: category, then value.
	if verr.Invalid[0].Value != "enormous" {
		t.Fatalf("first invalid = %+v, want bedSize/enormous", verr.Invalid[0])
	}
	if verr.Invalid[1].Value != "disco ball" || verr.Invalid[2].Value != "laser show" {
		t.Fatalf("light invalids out of order: %+v", verr.Invalid[1:])
	}
}

func TestDraft_EmptySubmission(t *testing.T) {
	draft := validDraft()
	draft.Attributes = nil
	draft.MultiAttributes = map[domain.Category][]string{
		domain.NoiseIssues: {},
	}
	_, verr := Draft(draft)
	if verr == nil || verr.Code != EmptySubmission {
		t.Fatalf("verr = %v, want %s", verr, EmptySubmission)
	}
}

func TestDraft_WhitespaceOnlyValuesAreEmpty(t *testing.T) {
	draft := validDraft()
	draft.Attributes = map[domain.Category]string{domain.BedComfort: "   "}
	draft.MultiAttributes = map[domain.Category][]string{domain.NoiseIssues: {" ", ""}}
	_, verr := Draft(draft)
	if verr == nil || verr.Code != EmptySubmission {
		t.Fatalf("verr = %v, want %s", verr, EmptySubmission)
	}
}

func TestDraft_NormalizesValues(t *testing.T) {
	draft := validDraft()
	draft.LocationKey = "  airbnb:12345  "
	draft.Identity = " fp-abc "
	draft.Attributes = map[domain.Category]string{domain.BedComfort: "  soft  "}
	draft.MultiAttributes = map[domain.Category][]string{
		domain.NoiseIssues: {"traffic", "traffic", " plumbing "},
	}

	normalized, verr := Draft(draft)
	if verr != nil {
		t.Fatalf("unexpected rejection: %v", verr)
	}
	if normalized.LocationKey != "airbnb:12345" || normalized.Identity != "fp-abc" {
		t.Fatalf("trim failed: key=%q identity=%q", normalized.LocationKey, normalized.Identity)
	}
	if normalized.Attributes[domain.BedComfort] != "soft" {
		t.Fatalf("value not trimmed: %q", normalized.Attributes[domain.BedComfort])
	}
	noise := normalized.MultiAttributes[domain.NoiseIssues]
	if len(noise) != 2 {
		t.Fatalf("noiseIssues = %v, want de-duplicated pair", noise)
	}
}

func TestDraft_Deterministic(t *testing.T) {
	draft := validDraft()
	first, verr1 := Draft(draft)
	second, verr2 := Draft(draft)
	if verr1 != nil || verr2 != nil {
		t.Fatalf("unexpected rejections: %v / %v", verr1, verr2)
	}
	if first.Attributes[domain.BedComfort] != second.Attributes[domain.BedComfort] {
		t.Fatalf("repeated validation diverged")
	}
}
