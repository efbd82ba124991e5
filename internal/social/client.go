// Package social posts published content to an external scheduling
// service over its bearer-token HTTP API.
package social

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// Environment variables configuring the integration. Both are required;
// if either is missing the feature is disabled entirely.
const (
	EnvAPIKey = "STANZA_SOCIAL_API_KEY"
	EnvAPIURL = "STANZA_SOCIAL_API_URL"
)

// Client talks to the scheduler API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewFromEnv builds a Client from the environment. It returns nil when
// either variable is unset, which callers treat as "integration
// disabled" rather than an error.
func NewFromEnv() *Client {
	key := os.Getenv(EnvAPIKey)
	url := os.Getenv(EnvAPIURL)
	if key == "" || url == "" {
		return nil
	}
	return New(url, key)
}

// New creates a Client against the given API base URL.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// DraftResponse is the scheduler's representation of a created draft.
type DraftResponse struct {
	ID string `json:"id"`
}

// CreateDraft creates a draft (or scheduled post when scheduleAt is
// non-nil) on the scheduler. Failures are the caller's to report; the
// publish that triggered the post is never rolled back.
func (c *Client) CreateDraft(ctx context.Context, text string, scheduleAt *time.Time) (string, error) {
	payload := map[string]any{
		"content": text,
	}
	if scheduleAt != nil {
		payload["schedule-date"] = scheduleAt.UTC().Format(time.RFC3339)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("social: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/drafts", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("social: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("social: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("social: unexpected status %d", resp.StatusCode)
	}

	var dr DraftResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return "", fmt.Errorf("social: decode response: %w", err)
	}
	return dr.ID, nil
}
