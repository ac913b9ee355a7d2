// Package validate checks candidate rating drafts against the structural and
// vocabulary rules before anything touches the store.
package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alexchristophe/hotel-ratings-backend/internal/domain"
)

// Code is a stable machine-readable rejection reason.
type Code string

const (
	MissingLocation      Code = "MISSING_LOCATION"
	MissingIdentity      Code = "MISSING_IDENTITY"
	InvalidCategoryValue Code = "INVALID_CATEGORY_VALUE"
	EmptySubmission      Code = "EMPTY_SUBMISSION"
)

// ValueError records one out-of-vocabulary value for one category, together
// with the vocabulary the client should have used.
type ValueError struct {
	Category domain.Category `json:"category"`
	Value    string          `json:"value"`
	Allowed  []string        `json:"allowed"`
}

// Error is a rejected submission. Invalid lists every offending value when
// Code is InvalidCategoryValue; the whole submission is rejected, there is no
// partial acceptance.
type Error struct {
	Code    Code         `json:"code"`
	Message string       `json:"message"`
	Invalid []ValueError `json:"invalid,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("validate: %s: %s", e.Code, e.Message)
}

// Draft validates and normalizes a candidate rating. It is pure and
// deterministic: values are trimmed, empty entries dropped, multi-value sets
// de-duplicated, and every value (single- and multi-valued alike) must belong
// to its category's vocabulary. Returns the normalized draft or an *Error.
func Draft(draft domain.Draft) (domain.Draft, *Error) {
	draft.LocationKey = strings.TrimSpace(draft.LocationKey)
	if draft.LocationKey == "" {
		return domain.Draft{}, &Error{Code: MissingLocation, Message: "location key is required"}
	}

	draft.Identity = strings.TrimSpace(draft.Identity)
	if draft.Identity == "" {
		return domain.Draft{}, &Error{Code: MissingIdentity, Message: "identity is required"}
	}

	var invalid []ValueError

	attrs := make(map[domain.Category]string, len(draft.Attributes))
	for category, value := range draft.Attributes {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if !domain.InVocabulary(category, value) {
			invalid = append(invalid, ValueError{
				Category: category,
				Value:    value,
				Allowed:  domain.Vocabulary[category],
			})
			continue
		}
		attrs[category] = value
	}

	multi := make(map[domain.Category][]string, len(draft.MultiAttributes))
	for category, values := range draft.MultiAttributes {
		seen := make(map[string]struct{}, len(values))
		var kept []string
		for _, value := range values {
			value = strings.TrimSpace(value)
			if value == "" {
				continue
			}
			if !domain.InVocabulary(category, value) {
				invalid = append(invalid, ValueError{
					Category: category,
					Value:    value,
					Allowed:  domain.Vocabulary[category],
				})
				continue
			}
			if _, dup := seen[value]; dup {
				continue
			}
			seen[value] = struct{}{}
			kept = append(kept, value)
		}
		if len(kept) > 0 {
			multi[category] = kept
		}
	}

	if len(invalid) > 0 {
		sort.Slice(invalid, func(i, j int) bool {
			if invalid[i].Category != invalid[j].Category {
				return invalid[i].Category < invalid[j].Category
			}
			return invalid[i].Value < invalid[j].Value
		})
		return domain.Draft{}, &Error{
			Code:    InvalidCategoryValue,
			Message: "one or more values are outside the category vocabulary",
			Invalid: invalid,
		}
	}

	draft.Attributes = attrs
	draft.MultiAttributes = multi
	if !draft.HasSignal() {
		return domain.Draft{}, &Error{Code: EmptySubmission, Message: "a rating must carry at least one value"}
	}
	return draft, nil
}
