package gateway

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/vasymarket/webfront/internal/localstore"
)

const tokenKey = "token"

// CachedClient is the long-lived variant of Client: it keeps the bearer token
// in durable storage and attaches it to every call, so callers never pass one.
// Server-side request handling uses the bare Client instead, with the token
// taken from the request cookie.
type CachedClient struct {
	client *Client
	state  *localstore.Store

	mu     sync.Mutex
	token  string
	loaded bool
}

func NewCachedClient(client *Client, state *localstore.Store) *CachedClient {
	return &CachedClient{client: client, state: state}
}

// SetToken replaces the cached token and writes it through to durable
// storage; an empty token clears both.
func (c *CachedClient) SetToken(token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.loaded = true
	if token == "" {
		return c.state.Delete(tokenKey)
	}
	return c.state.Put(tokenKey, []byte(token))
}

// GetToken reads the cached token, lazily restoring it from durable storage
// the first time after process start so memory and storage never diverge.
func (c *CachedClient) GetToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		if v, ok, err := c.state.Get(tokenKey); err == nil && ok {
			c.token = string(v)
		}
		c.loaded = true
	}
	return c.token
}

func (c *CachedClient) Request(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	return c.client.Request(ctx, method, path, body, c.GetToken())
}

func (c *CachedClient) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.client.Get(ctx, path, c.GetToken())
}

func (c *CachedClient) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.client.Post(ctx, path, body, c.GetToken())
}

func (c *CachedClient) Patch(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.client.Patch(ctx, path, body, c.GetToken())
}

func (c *CachedClient) Delete(ctx context.Context, path string) (json.RawMessage, error) {
	return c.client.Delete(ctx, path, c.GetToken())
}
