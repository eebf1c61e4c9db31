package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// FallbackMessage is used when the backend returns a failure whose body cannot
// be parsed as {"detail": ...}.
const FallbackMessage = "Erreur serveur"

// Error is a failure reported by the commerce backend. Message carries the
// backend's detail field, or FallbackMessage when none was parseable.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend: %d %s", e.Status, e.Message)
}

// NotFound reports whether err is a backend 404.
func NotFound(err error) bool {
	var ge *Error
	return errors.As(err, &ge) && ge.Status == http.StatusNotFound
}

// Client talks to the commerce backend. The zero value is not usable; build
// one with NewClient. Tokens are passed per call and never cached, so a single
// Client is safe to share across requests.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Request performs one backend call. body (when non-nil) is serialized as
// JSON; token (when non-empty) is attached as a bearer authorization header.
// Non-2xx statuses come back as *Error. The call is never retried.
func (c *Client) Request(ctx context.Context, method, path string, body any, token string) (json.RawMessage, error) {
	return c.Do(ctx, method, path, body, token, nil)
}

// Do is Request plus extra headers, merged without displacing the JSON
// content type or the authorization header.
func (c *Client) Do(ctx context.Context, method, path string, body any, token string, extra http.Header) (json.RawMessage, error) {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, vs := range extra {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newError(resp.StatusCode, raw)
	}
	return raw, nil
}

func newError(status int, body []byte) *Error {
	var detail struct {
		Detail string `json:"detail"`
	}
	msg := FallbackMessage
	if err := json.Unmarshal(body, &detail); err == nil && detail.Detail != "" {
		msg = detail.Detail
	}
	return &Error{Status: status, Message: msg}
}

func (c *Client) Get(ctx context.Context, path, token string) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodGet, path, nil, token)
}

func (c *Client) Post(ctx context.Context, path string, body any, token string) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodPost, path, body, token)
}

func (c *Client) Patch(ctx context.Context, path string, body any, token string) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodPatch, path, body, token)
}

func (c *Client) Delete(ctx context.Context, path, token string) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodDelete, path, nil, token)
}

// GetAs is Get plus decoding into T. The shape is trusted: anything that is
// valid JSON for T passes, schema checks stay with the caller.
func GetAs[T any](ctx context.Context, c *Client, path, token string) (T, error) {
	var out T
	raw, err := c.Get(ctx, path, token)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}

func PostAs[T any](ctx context.Context, c *Client, path string, body any, token string) (T, error) {
	var out T
	raw, err := c.Post(ctx, path, body, token)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}

// Forward streams an inbound request body (multipart uploads) to the backend
// unchanged and relays status plus body back. No JSON handling on purpose.
func (c *Client) Forward(ctx context.Context, method, path string, contentType string, body io.Reader, token string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, raw, nil
}
