package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/EmpoweredVote/election-results/internal/results"
)

// apiClient talks to a running server's /results routes.
type apiClient struct {
	base string
	http *http.Client
}

func newAPIClient(base string, timeout time.Duration) *apiClient {
	return &apiClient{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

// RateLimitedError is returned when the server refuses a manual refresh.
type RateLimitedError struct {
	RetryAfter string
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter == "" {
		return "refresh rate limited"
	}
	return fmt.Sprintf("refresh rate limited, retry in %ss", e.RetryAfter)
}

func (c *apiClient) State(ctx context.Context) (results.StateResponse, error) {
	return c.do(ctx, http.MethodGet, "/results/")
}

func (c *apiClient) Refresh(ctx context.Context) (results.StateResponse, error) {
	return c.do(ctx, http.MethodPost, "/results/refresh")
}

func (c *apiClient) do(ctx context.Context, method, path string) (results.StateResponse, error) {
	var out results.StateResponse

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, nil)
	if err != nil {
		return out, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusBadGateway:
		// 502 still carries the state envelope
	case http.StatusTooManyRequests:
		return out, &RateLimitedError{RetryAfter: resp.Header.Get("Retry-After")}
	default:
		return out, fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("decode %s: %w", path, err)
	}
	return out, nil
}
