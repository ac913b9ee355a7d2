package locator

import (
	"context"
	"io"
	"log"
	"os"
	"testing"
	"time"
)

// TestHTTPClientSmoke checks the client against a running resolver, typically
// cmd/locator-mock. Skipped unless LOCATOR_URL is provided.
func TestHTTPClientSmoke(t *testing.T) {
	baseURL := os.Getenv("LOCATOR_URL")
	if baseURL == "" {
		t.Skip("LOCATOR_URL not provided")
	}
	apiKey := os.Getenv("LOCATOR_API_KEY")
	client, err := NewHTTPClient(baseURL, apiKey, 3*time.Second, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("create http client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	place, err := client.Resolve(ctx, "loc-sample")
	if err != nil {
		t.Fatalf("resolve mock data: %v", err)
	}
	if place == nil || place.Name == "" {
		t.Fatalf("unexpected place payload: %+v", place)
	}
}
