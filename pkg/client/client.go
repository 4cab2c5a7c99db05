// Package client provides a typed HTTP client for the LivePaste API.
//
// All content fields carry ciphertext; the client never sees plaintext
// and never needs the room key. Password-protected rooms take either a
// password digest (sent as the X-Room-Password header) or a bearer room
// token minted by VerifyPassword.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"
)

// PasswordHeader carries the client-side password digest.
const PasswordHeader = "X-Room-Password"

// Client is a LivePaste API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	password   string
	token      string
}

// Option customizes a Client.
type Option func(*Client)

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithPassword returns a copy of the client that sends the given
// password digest on every request.
func (c *Client) WithPassword(digest string) *Client {
	clone := *c
	clone.password = digest
	return &clone
}

// WithToken returns a copy of the client that presents the given room
// token instead of a password digest.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}

// roomPath builds an API path scoped to a room.
func roomPath(roomID, suffix string) string {
	return "/api/room/" + roomID + suffix
}

// do performs a request and decodes a 2xx response into result. Error
// responses come back as *APIError carrying the raw body, so callers
// can recover structured payloads like operation conflicts.
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.password != "" {
		req.Header.Set(PasswordHeader, c.password)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// decodeAPIError shapes an error response into an *APIError. Problem
// bodies (RFC 7807) carry title and detail; the password gate's 401
// carries a password_required marker instead.
func decodeAPIError(resp *http.Response, body []byte) error {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Body:       json.RawMessage(body),
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType == "application/problem+json" {
		var problem struct {
			Title  string `json:"title"`
			Detail string `json:"detail"`
		}
		if json.Unmarshal(body, &problem) == nil {
			apiErr.Title = problem.Title
			apiErr.Detail = problem.Detail
		}
		return apiErr
	}

	var gate struct {
		Error            string `json:"error"`
		PasswordRequired bool   `json:"password_required"`
	}
	if json.Unmarshal(body, &gate) == nil && gate.Error != "" {
		apiErr.Detail = gate.Error
		apiErr.PasswordRequired = gate.PasswordRequired
	}
	return apiErr
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

func (c *Client) post(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

func (c *Client) delete(ctx context.Context, path string, result any) error {
	return c.do(ctx, http.MethodDelete, path, nil, result)
}
