// Package remote implements the Activity Service over the tracker's HTTP API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/julianstephens/weeklit/internal/auth"
	"github.com/julianstephens/weeklit/internal/constants"
	apperrors "github.com/julianstephens/weeklit/internal/errors"
	"github.com/julianstephens/weeklit/internal/logger"
	"github.com/julianstephens/weeklit/internal/models"
)

// Client talks to /activities with a bearer token.
type Client struct {
	baseURL    string
	tokens     auth.Source
	httpClient *http.Client
	now        func() time.Time
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithClock overrides the clock used for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New constructs a client with sane defaults.
func New(baseURL string, tokens auth.Source, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: constants.DefaultRequestTimeout,
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// wireActivity accepts both "id" and the Mongo-style "_id".
type wireActivity struct {
	models.Activity
	MongoID string `json:"_id,omitempty"`
}

func (w wireActivity) model() models.Activity {
	a := w.Activity
	if a.ID == "" {
		a.ID = w.MongoID
	}
	return a
}

// ListActivities fetches every activity owned by the caller.
func (c *Client) ListActivities(ctx context.Context) ([]models.Activity, error) {
	var payload []wireActivity
	if err := c.do(ctx, http.MethodGet, "/activities", nil, &payload); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	out := make([]models.Activity, 0, len(payload))
	for _, w := range payload {
		out = append(out, w.model())
	}
	return out, nil
}

// CreateActivity posts a new activity and returns the stored entity.
func (c *Client) CreateActivity(ctx context.Context, draft models.ActivityDraft) (models.Activity, error) {
	if draft.History == nil {
		draft.History = models.History{}
	}
	var payload wireActivity
	if err := c.do(ctx, http.MethodPost, "/activities", draft, &payload); err != nil {
		return models.Activity{}, fmt.Errorf("create activity: %w", err)
	}
	return payload.model(), nil
}

// UpdateActivity sends a partial update; the server merges unset fields.
func (c *Client) UpdateActivity(ctx context.Context, id string, patch models.ActivityPatch) (models.Activity, error) {
	var payload wireActivity
	if err := c.do(ctx, http.MethodPut, "/activities/"+url.PathEscape(id), patch, &payload); err != nil {
		return models.Activity{}, fmt.Errorf("update activity %s: %w", id, err)
	}
	return payload.model(), nil
}

// DeleteActivity removes an activity.
func (c *Client) DeleteActivity(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/activities/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("delete activity %s: %w", id, err)
	}
	return nil
}

// Health pings the server's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Transient(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return statusError(resp)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	token, err := c.tokens.Token()
	if err != nil {
		return err
	}
	if _, err := auth.Check(token, c.now()); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return apperrors.Transient(err)
	}
	defer resp.Body.Close()

	logger.Debug("api request", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode >= 300 {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.Transient(fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func statusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(data))
	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &payload) == nil && payload.Message != "" {
		msg = payload.Message
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", apperrors.ErrAuth, msg)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", apperrors.ErrNotFound, msg)
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return apperrors.Validation("", "%s", msg)
	case resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return apperrors.Transient(fmt.Errorf("server returned %d: %s", resp.StatusCode, msg))
	default:
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, msg)
	}
}
