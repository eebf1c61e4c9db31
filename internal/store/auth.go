package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vasymarket/webfront/internal/gateway"
	"github.com/vasymarket/webfront/internal/models"
)

// Auth tracks the signed-in user for long-lived client code. The token lives
// in the cached gateway client; this store only mirrors the user resolved
// from it. A backend rejection logs the session out, it is never retried.
type Auth struct {
	api *gateway.CachedClient
	log *slog.Logger

	mu   sync.Mutex
	user *models.User
	subs []func(u *models.User)
}

func NewAuth(api *gateway.CachedClient, log *slog.Logger) *Auth {
	return &Auth{api: api, log: log}
}

func (a *Auth) Login(ctx context.Context, email, password string) error {
	return a.authenticate(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

func (a *Auth) Register(ctx context.Context, email, password string) error {
	return a.authenticate(ctx, "/auth/register", map[string]string{
		"email":    email,
		"password": password,
	})
}

func (a *Auth) RegisterCreator(ctx context.Context, inviteToken, password, displayName, siret string) error {
	return a.authenticate(ctx, "/auth/register/creator", map[string]string{
		"token":        inviteToken,
		"password":     password,
		"display_name": displayName,
		"siret":        siret,
	})
}

func (a *Auth) authenticate(ctx context.Context, path string, body any) error {
	raw, err := a.api.Post(ctx, path, body)
	if err != nil {
		return err
	}
	var tok models.TokenResponse
	if err := json.Unmarshal(raw, &tok); err != nil {
		return fmt.Errorf("decode token response: %w", err)
	}
	if err := a.api.SetToken(tok.AccessToken); err != nil {
		a.log.Error("auth: token persist failed", "error", err)
	}
	return a.FetchUser(ctx)
}

// FetchUser resolves the current user from the backend. Any failure is
// treated as an invalid session: token and user are cleared.
func (a *Auth) FetchUser(ctx context.Context) error {
	raw, err := a.api.Get(ctx, "/users/me")
	if err != nil {
		a.Logout()
		return err
	}
	var u models.User
	if err := json.Unmarshal(raw, &u); err != nil {
		a.Logout()
		return fmt.Errorf("decode user: %w", err)
	}
	a.set(&u)
	return nil
}

func (a *Auth) Logout() {
	if err := a.api.SetToken(""); err != nil {
		a.log.Error("auth: token clear failed", "error", err)
	}
	a.set(nil)
}

// Init restores the session after process start: when a token survives in
// durable storage the user is re-resolved from it.
func (a *Auth) Init(ctx context.Context) {
	if a.api.GetToken() == "" {
		return
	}
	if err := a.FetchUser(ctx); err != nil {
		a.log.Warn("auth: stored session invalid", "error", err)
	}
}

// User returns the current user, or nil while unauthenticated.
func (a *Auth) User() *models.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.user
}

func (a *Auth) Subscribe(fn func(u *models.User)) {
	a.mu.Lock()
	a.subs = append(a.subs, fn)
	a.mu.Unlock()
}

func (a *Auth) set(u *models.User) {
	a.mu.Lock()
	a.user = u
	subs := a.subs
	a.mu.Unlock()
	for _, fn := range subs {
		fn(u)
	}
}
