// ABOUTME: REST implementation of the Backend contract
// ABOUTME: PostgREST-style endpoints with API-key and bearer-token headers
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client talks to the hosted backend over its REST surface.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a REST client for the given base URL and API key.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) Insert(ctx context.Context, table string, data json.RawMessage) error {
	endpoint := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, url.PathEscape(table))
	return c.do(ctx, http.MethodPost, endpoint, data)
}

func (c *Client) Update(ctx context.Context, table, id string, data json.RawMessage) error {
	endpoint := fmt.Sprintf("%s/rest/v1/%s?id=eq.%s", c.baseURL, url.PathEscape(table), url.QueryEscape(id))
	return c.do(ctx, http.MethodPatch, endpoint, data)
}

func (c *Client) Delete(ctx context.Context, table, id string) error {
	endpoint := fmt.Sprintf("%s/rest/v1/%s?id=eq.%s", c.baseURL, url.PathEscape(table), url.QueryEscape(id))
	return c.do(ctx, http.MethodDelete, endpoint, nil)
}

// Ping hits the health endpoint to probe connectivity.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/rest/v1/", nil)
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOffline, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: backend returned %d", ErrOffline, resp.StatusCode)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body json.RawMessage) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}
	c.setHeaders(req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("backend rejected %s %s: %d %s", method, endpoint, resp.StatusCode, detail)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
}
