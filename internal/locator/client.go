// Package locator talks to the external location-metadata service that
// resolves an opaque location key to a human-readable place. The resolver is
// best effort: summary responses work without it.
package locator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNotFound is returned when the resolver does not know the location key.
var ErrNotFound = errors.New("locator: not found")

// Place is the display metadata for a resolved location.
type Place struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// Client defines the contract for resolving location keys upstream.
type Client interface {
	Resolve(ctx context.Context, locationKey string) (*Place, error)
}

// HTTPClient implements Client over HTTP.
type HTTPClient struct {
	baseURL *url.URL
	apiKey  string
	client  *http.Client
	logger  *log.Logger
}

// NewHTTPClient constructs a new HTTP-backed resolver client.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, logger *log.Logger) (*HTTPClient, error) {
	if logger == nil {
		logger = log.Default()
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse locator url: %w", err)
	}
	return &HTTPClient{
		baseURL: parsed,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		logger: logger,
	}, nil
}

// Resolve fetches place metadata by location key.
func (c *HTTPClient) Resolve(ctx context.Context, locationKey string) (*Place, error) {
	rel := &url.URL{Path: "/locations"}
	q := rel.Query()
	q.Set("key", locationKey)
	rel.RawQuery = q.Encode()
	endpoint := c.baseURL.ResolveReference(rel)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var payload apiResponse
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, fmt.Errorf("decode locator response: %w", err)
		}
		return convertToPlace(payload)
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		c.logger.Printf("locator: unexpected status %d for key %q", resp.StatusCode, locationKey)
		return nil, fmt.Errorf("locator: upstream returned %d", resp.StatusCode)
	}
}

type apiResponse struct {
	Key     *string `json:"key"`
	Name    *string `json:"name"`
	Address *string `json:"address"`
}

func convertToPlace(payload apiResponse) (*Place, error) {
	if payload.Name == nil || strings.TrimSpace(*payload.Name) == "" {
		return nil, fmt.Errorf("locator: response missing name")
	}
	place := &Place{Name: strings.TrimSpace(*payload.Name)}
	if payload.Address != nil {
		place.Address = strings.TrimSpace(*payload.Address)
	}
	return place, nil
}
