// Package client is the HTTP SDK for the Ski HUD API, used by the hudctl
// tool and by device firmware bridges. A registered identity lives in a
// Session value rather than package state, so one process can drive any
// number of riders.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Record mirrors the server's rider record JSON.
type Record struct {
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	Active     bool      `json:"active"`
	LastUpdate time.Time `json:"last_update"`

	Lat   *float64 `json:"lat,omitempty"`
	Lon   *float64 `json:"lon,omitempty"`
	Alt   *float64 `json:"alt,omitempty"`
	Trail *string  `json:"trail,omitempty"`

	Speed     *float64 `json:"speed,omitempty"`
	GForce    *float64 `json:"g_force,omitempty"`
	MaxSpeed  *float64 `json:"max_speed,omitempty"`
	MaxGForce *float64 `json:"max_g_force,omitempty"`
}

// LeaderboardEntry is one row of GET /records.
type LeaderboardEntry struct {
	UserID    string   `json:"user_id"`
	Name      string   `json:"name"`
	MaxSpeed  *float64 `json:"max_speed"`
	MaxGForce *float64 `json:"max_g_force"`
}

// UpdateRequest carries one sparse telemetry report. Nil fields are omitted
// from the wire and leave the stored values untouched.
type UpdateRequest struct {
	Active *bool    `json:"active,omitempty"`
	Lat    *float64 `json:"lat,omitempty"`
	Lon    *float64 `json:"lon,omitempty"`
	Alt    *float64 `json:"alt,omitempty"`
	Speed  *float64 `json:"speed,omitempty"`
	GForce *float64 `json:"g,omitempty"`
	Trail  *string  `json:"trail,omitempty"`
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Client talks to one Ski HUD API server. Transient failures (network
// errors, 5xx) are retried with exponential backoff; 4xx responses are
// returned immediately.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session is one registered rider identity bound to a client.
type Session struct {
	client *Client
	UserID string
	Name   string
}

// Register creates a new rider on the server and returns a session holding
// its identity.
func (c *Client) Register(ctx context.Context, name string) (*Session, error) {
	var resp struct {
		UserID string `json:"user_id"`
		Name   string `json:"name"`
	}
	if err := c.post(ctx, "/register", map[string]string{"name": name}, &resp); err != nil {
		return nil, err
	}
	return &Session{client: c, UserID: resp.UserID, Name: resp.Name}, nil
}

// Resume rebuilds a session for an already-registered rider id, e.g. one
// persisted by a previous process.
func (c *Client) Resume(userID string) *Session {
	return &Session{client: c, UserID: userID}
}

// Update posts one telemetry report for this session's rider and returns the
// full merged record.
func (s *Session) Update(ctx context.Context, req UpdateRequest) (*Record, error) {
	body := struct {
		UserID string `json:"user_id"`
		UpdateRequest
	}{UserID: s.UserID, UpdateRequest: req}

	var rec Record
	if err := s.client.post(ctx, "/update", body, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Active fetches the riders currently inside the liveness window.
func (c *Client) Active(ctx context.Context) ([]Record, error) {
	var recs []Record
	if err := c.get(ctx, "/active", &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// All fetches every rider record.
func (c *Client) All(ctx context.Context) ([]Record, error) {
	var recs []Record
	if err := c.get(ctx, "/all", &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// Records fetches the leaderboard. limit <= 0 uses the server default.
func (c *Client) Records(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	path := "/records"
	if limit > 0 {
		path = fmt.Sprintf("/records?limit=%d", limit)
	}
	var entries []LeaderboardEntry
	if err := c.get(ctx, path, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Reset clears the entire store. Only works against servers with the reset
// capability enabled.
func (c *Client) Reset(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	return c.get(ctx, "/reset", &resp)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	return c.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}, out)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	}, out)
}

func (c *Client) do(ctx context.Context, build func() (*http.Request, error), out interface{}) error {
	operation := func() error {
		req, err := build()
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return err // network errors retry
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		if resp.StatusCode >= 500 {
			return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
		}
		if resp.StatusCode >= 400 {
			return backoff.Permanent(&APIError{StatusCode: resp.StatusCode, Message: errorMessage(data)})
		}

		if out != nil {
			if err := json.Unmarshal(data, out); err != nil {
				return backoff.Permanent(fmt.Errorf("failed to decode response: %w", err))
			}
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second
	return backoff.Retry(operation, backoff.WithContext(bo, ctx))
}

func errorMessage(data []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return string(data)
}
