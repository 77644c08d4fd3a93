// Package geoquery talks to a gridded earth-observation archive service.
//
// The provider surface is deliberately small — session initialization, image
// filtering by point and date range, mean spatial reduction, and synchronous
// result retrieval — so swapping archives means re-implementing exactly these
// four calls.
package geoquery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client implements the archive's HTTP/JSON query protocol.
type Client struct {
	baseURL    string
	token      string
	sessionID  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates an archive client. StartSession must be called before any
// query method.
func NewClient(baseURL, token string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// StartSession authenticates against the archive and stores the session
// identifier sent back on every subsequent request.
func (c *Client) StartSession(ctx context.Context) error {
	body, err := json.Marshal(sessionRequest{Token: c.token})
	if err != nil {
		return fmt.Errorf("encode session request: %w", err)
	}

	var resp sessionResponse
	if err := c.post(ctx, "/v1/sessions", body, &resp); err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	if resp.SessionID == "" {
		return fmt.Errorf("start session: empty session id")
	}

	c.sessionID = resp.SessionID
	c.logger.Info("archive session started", "expires_at", resp.ExpiresAt)
	return nil
}

// FilterImages restricts a collection to a point and date range and returns
// the matching image count plus a filter handle for reduction. A zero count is
// a valid result, not an error.
func (c *Client) FilterImages(ctx context.Context, collection string, lat, lon float64, start, end time.Time) (FilterResult, error) {
	params := url.Values{
		"collection": {collection},
		"lat":        {strconv.FormatFloat(lat, 'f', 6, 64)},
		"lon":        {strconv.FormatFloat(lon, 'f', 6, 64)},
		"start":      {start.UTC().Format(time.RFC3339)},
		"end":        {end.UTC().Format(time.RFC3339)},
	}

	var resp filterResponse
	if err := c.get(ctx, "/v1/images:filter?"+params.Encode(), &resp); err != nil {
		return FilterResult{}, fmt.Errorf("filter %s: %w", collection, err)
	}
	return FilterResult{FilterID: resp.FilterID, Count: resp.Count}, nil
}

// ReduceMean submits a mean reduction of the filtered images' named bands at
// the given spatial scale and returns a query handle.
func (c *Client) ReduceMean(ctx context.Context, filterID string, bands []string, scaleM float64) (string, error) {
	body, err := json.Marshal(reduceRequest{
		FilterID: filterID,
		Bands:    bands,
		Reducer:  "mean",
		ScaleM:   scaleM,
	})
	if err != nil {
		return "", fmt.Errorf("encode reduce request: %w", err)
	}

	var resp reduceResponse
	if err := c.post(ctx, "/v1/reductions", body, &resp); err != nil {
		return "", fmt.Errorf("reduce %s: %w", filterID, err)
	}
	return resp.QueryID, nil
}

// FetchResult blocks until the reduction completes and returns the per-band
// mean pixel values at the query point.
func (c *Client) FetchResult(ctx context.Context, queryID string) (map[string]float64, error) {
	var resp resultResponse
	if err := c.get(ctx, "/v1/reductions/"+url.PathEscape(queryID)+"?wait=true", &resp); err != nil {
		return nil, fmt.Errorf("fetch result %s: %w", queryID, err)
	}
	return resp.Bands, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body []byte, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.sessionID != "" {
		req.Header.Set("X-Session-ID", c.sessionID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("archive API error: status %d: %s", resp.StatusCode, msg)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// FilterResult is the outcome of an image-collection filter call.
type FilterResult struct {
	FilterID string
	Count    int
}

// Archive API wire types.

type sessionRequest struct {
	Token string `json:"token"`
}

type sessionResponse struct {
	SessionID string `json:"session_id"`
	ExpiresAt string `json:"expires_at"`
}

type filterResponse struct {
	FilterID string `json:"filter_id"`
	Count    int    `json:"count"`
}

type reduceRequest struct {
	FilterID string   `json:"filter_id"`
	Bands    []string `json:"bands"`
	Reducer  string   `json:"reducer"`
	ScaleM   float64  `json:"scale_m"`
}

type reduceResponse struct {
	QueryID string `json:"query_id"`
}

type resultResponse struct {
	QueryID string             `json:"query_id"`
	Bands   map[string]float64 `json:"bands"`
}
