package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/alexchristophe/hotel-ratings-backend/internal/domain"
	"github.com/alexchristophe/hotel-ratings-backend/internal/locator"
	"github.com/alexchristophe/hotel-ratings-backend/internal/submission"
	"github.com/alexchristophe/hotel-ratings-backend/internal/summary"
)

const maxRequestBody = 1 << 20 // 1 MiB

type errorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type ratingSubmitRequest struct {
	Identity        string   `json:"identity"`
	BedSize         *string  `json:"bedSize"`
	BedComfort      *string  `json:"bedComfort"`
	CoverSize       *string  `json:"coverSize"`
	CoverComfort    *string  `json:"coverComfort"`
	PillowSize      *string  `json:"pillowSize"`
	PillowComfort   *string  `json:"pillowComfort"`
	LightAnnoyances []string `json:"lightAnnoyances"`
	NoiseIssues     []string `json:"noiseIssues"`
}

// ratingResponse echoes a stored rating. Identity and source address exist
// only for abuse control and are never exposed.
type ratingResponse struct {
	ID              string    `json:"id"`
	LocationKey     string    `json:"locationKey"`
	BedSize         *string   `json:"bedSize,omitempty"`
	BedComfort      *string   `json:"bedComfort,omitempty"`
	CoverSize       *string   `json:"coverSize,omitempty"`
	CoverComfort    *string   `json:"coverComfort,omitempty"`
	PillowSize      *string   `json:"pillowSize,omitempty"`
	PillowComfort   *string   `json:"pillowComfort,omitempty"`
	LightAnnoyances []string  `json:"lightAnnoyances,omitempty"`
	NoiseIssues     []string  `json:"noiseIssues,omitempty"`
	SubmittedAt     time.Time `json:"submittedAt"`
}

type categorySummaryResponse struct {
	Total int                  `json:"total"`
	Top2  []summary.ValueCount `json:"top2"`
}

type placeResponse struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// summaryResponse has every static category as a fixed field, so the shape is
// stable even when a category has no data yet.
type summaryResponse struct {
	LocationKey     string                  `json:"locationKey"`
	TotalRatings    int                     `json:"totalRatings"`
	Place           *placeResponse          `json:"place,omitempty"`
	BedSize         categorySummaryResponse `json:"bedSize"`
	BedComfort      categorySummaryResponse `json:"bedComfort"`
	CoverSize       categorySummaryResponse `json:"coverSize"`
	CoverComfort    categorySummaryResponse `json:"coverComfort"`
	PillowSize      categorySummaryResponse `json:"pillowSize"`
	PillowComfort   categorySummaryResponse `json:"pillowComfort"`
	LightAnnoyances categorySummaryResponse `json:"lightAnnoyances"`
	NoiseIssues     categorySummaryResponse `json:"noiseIssues"`
}

func (s *Server) handleSubmitRating(w http.ResponseWriter, r *http.Request) {
	locationKey, err := decodeLocationKey(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "MISSING_LOCATION", err.Error())
		return
	}

	var req ratingSubmitRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	draft := buildDraft(locationKey, clientAddress(r), req)
	result := s.submit.Submit(r.Context(), draft)

	switch result.Status {
	case submission.Rejected:
		resp := errorResponse{
			Code:    string(result.Validation.Code),
			Message: result.Validation.Message,
		}
		if len(result.Validation.Invalid) > 0 {
			resp.Details = result.Validation.Invalid
		}
		s.respondJSON(w, http.StatusBadRequest, resp)
	case submission.Throttled:
		s.respondJSON(w, http.StatusTooManyRequests, errorResponse{
			Code:    "RATE_LIMITED",
			Message: fmt.Sprintf("submission limit reached for the %s key", result.Throttle.Exceeded),
			Details: map[string]string{
				"reason":     string(result.Throttle.Exceeded),
				"retryAfter": result.Throttle.RetryAfter,
			},
		})
	case submission.PersistFailed:
		s.logger.Printf("submit rating error: %v", result.Err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to store rating")
	case submission.Persisted:
		s.respondJSON(w, http.StatusCreated, toRatingResponse(result.Rating))
	}
}

func (s *Server) handleListRatings(w http.ResponseWriter, r *http.Request) {
	locationKey, err := decodeLocationKey(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "MISSING_LOCATION", err.Error())
		return
	}

	ratings, err := s.repo.Ratings.ListByLocation(r.Context(), locationKey)
	if err != nil {
		s.logger.Printf("list ratings error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list ratings")
		return
	}

	items := make([]ratingResponse, 0, len(ratings))
	for _, rating := range ratings {
		items = append(items, toRatingResponse(rating))
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	locationKey, err := decodeLocationKey(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "MISSING_LOCATION", err.Error())
		return
	}

	ratings, err := s.repo.Ratings.ListByLocation(r.Context(), locationKey)
	if err != nil {
		s.logger.Printf("load ratings for summary error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to build summary")
		return
	}

	built := summary.Build(locationKey, ratings)
	resp := toSummaryResponse(built)
	resp.Place = s.resolvePlace(r, locationKey)
	s.respondJSON(w, http.StatusOK, resp)
}

// resolvePlace decorates a summary with upstream place metadata, best effort.
func (s *Server) resolvePlace(r *http.Request, locationKey string) *placeResponse {
	if s.resolver == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(s.cfg.LocatorTimeoutSecs)*time.Second)
	defer cancel()

	place, err := s.resolver.Resolve(ctx, locationKey)
	if err != nil {
		if !errors.Is(err, locator.ErrNotFound) {
			s.logger.Printf("locator resolve failed for %s: %v", locationKey, err)
		}
		return nil
	}
	return &placeResponse{Name: place.Name, Address: place.Address}
}

func buildDraft(locationKey, sourceAddress string, req ratingSubmitRequest) domain.Draft {
	attrs := make(map[domain.Category]string)
	for category, value := range map[domain.Category]*string{
		domain.BedSize:       req.BedSize,
		domain.BedComfort:    req.BedComfort,
		domain.CoverSize:     req.CoverSize,
		domain.CoverComfort:  req.CoverComfort,
		domain.PillowSize:    req.PillowSize,
		domain.PillowComfort: req.PillowComfort,
	} {
		if value != nil {
			attrs[category] = *value
		}
	}

	multi := make(map[domain.Category][]string)
	if len(req.LightAnnoyances) > 0 {
		multi[domain.LightAnnoyances] = req.LightAnnoyances
	}
	if len(req.NoiseIssues) > 0 {
		multi[domain.NoiseIssues] = req.NoiseIssues
	}

	return domain.Draft{
		LocationKey:     locationKey,
		Attributes:      attrs,
		MultiAttributes: multi,
		Identity:        req.Identity,
		SourceAddress:   sourceAddress,
	}
}

func toRatingResponse(rating domain.Rating) ratingResponse {
	return ratingResponse{
		ID:              rating.ID,
		LocationKey:     rating.LocationKey,
		BedSize:         attrPtr(rating, domain.BedSize),
		BedComfort:      attrPtr(rating, domain.BedComfort),
		CoverSize:       attrPtr(rating, domain.CoverSize),
		CoverComfort:    attrPtr(rating, domain.CoverComfort),
		PillowSize:      attrPtr(rating, domain.PillowSize),
		PillowComfort:   attrPtr(rating, domain.PillowComfort),
		LightAnnoyances: rating.MultiAttributes[domain.LightAnnoyances],
		NoiseIssues:     rating.MultiAttributes[domain.NoiseIssues],
		SubmittedAt:     rating.SubmittedAt,
	}
}

func toSummaryResponse(built summary.LocationSummary) summaryResponse {
	category := func(name domain.Category) categorySummaryResponse {
		cs := built.Categories[name]
		return categorySummaryResponse{Total: cs.Total, Top2: cs.Top2}
	}
	return summaryResponse{
		LocationKey:     built.LocationKey,
		TotalRatings:    built.TotalRatings,
		BedSize:         category(domain.BedSize),
		BedComfort:      category(domain.BedComfort),
		CoverSize:       category(domain.CoverSize),
		CoverComfort:    category(domain.CoverComfort),
		PillowSize:      category(domain.PillowSize),
		PillowComfort:   category(domain.PillowComfort),
		LightAnnoyances: category(domain.LightAnnoyances),
		NoiseIssues:     category(domain.NoiseIssues),
	}
}

func attrPtr(rating domain.Rating, category domain.Category) *string {
	if value, ok := rating.Attributes[category]; ok && value != "" {
		return &value
	}
	return nil
}

func decodeLocationKey(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "key")
	if raw == "" {
		return "", fmt.Errorf("missing location key")
	}
	key, err := url.PathUnescape(raw)
	if err != nil || key == "" {
		return "", fmt.Errorf("invalid location key")
	}
	return key, nil
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Printf("failed to encode response: %v", err)
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

func (s *Server) respondDecodeError(w http.ResponseWriter, err error) {
	var syntaxError *json.SyntaxError
	var typeError *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxError):
		s.respondError(w, http.StatusBadRequest, "MALFORMED_BODY", "Malformed JSON payload")
	case errors.As(err, &typeError):
		s.respondError(w, http.StatusBadRequest, "MALFORMED_BODY", fmt.Sprintf("Invalid value for field %s", typeError.Field))
	case errors.Is(err, io.EOF):
		s.respondError(w, http.StatusBadRequest, "MALFORMED_BODY", "Request body cannot be empty")
	default:
		s.respondError(w, http.StatusBadRequest, "MALFORMED_BODY", "Unable to parse request body")
	}
}
