// Package backendtest runs an in-process stand-in for the commerce backend.
// It issues real HS256 tokens over bcrypt-checked credentials so the frontend
// under test exercises the same bearer flow as production.
package backendtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vasymarket/webfront/internal/models"
)

type account struct {
	user         models.User
	passwordHash []byte
}

type Backend struct {
	Server *httptest.Server
	Secret []byte

	mu        sync.Mutex
	accounts  map[string]*account // by email
	byID      map[string]*account
	creators  map[string]models.Creator // by user id
	favorites map[string][]string       // by user id
	Stats     models.Stats

	// Overrides maps "METHOD /path" to a replacement handler, letting tests
	// force error responses on individual routes.
	Overrides map[string]http.HandlerFunc
}

func New(t *testing.T) *Backend {
	t.Helper()

	b := &Backend{
		Secret:    []byte("backendtest-secret"),
		accounts:  map[string]*account{},
		byID:      map[string]*account{},
		creators:  map[string]models.Creator{},
		favorites: map[string][]string{},
		Overrides: map[string]http.HandlerFunc{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", b.login)
	mux.HandleFunc("POST /auth/register", b.register)
	mux.HandleFunc("GET /users/me", b.me)
	mux.HandleFunc("GET /creators/me", b.creatorMe)
	mux.HandleFunc("GET /admin/stats", b.adminStats)
	mux.HandleFunc("GET /favorites/", b.listFavorites)
	mux.HandleFunc("POST /favorites/{id}", b.addFavorite)
	mux.HandleFunc("DELETE /favorites/{id}", b.removeFavorite)
	mux.HandleFunc("POST /orders/checkout", b.checkout)
	mux.HandleFunc("POST /reports", b.report)

	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		override := b.Overrides[r.Method+" "+r.URL.Path]
		b.mu.Unlock()
		if override != nil {
			override(w, r)
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(b.Server.Close)
	return b
}

func (b *Backend) URL() string {
	return b.Server.URL
}

// Override replaces the handler for one "METHOD /path" route.
func (b *Backend) Override(route string, h http.HandlerFunc) {
	b.mu.Lock()
	b.Overrides[route] = h
	b.mu.Unlock()
}

// AddUser seeds an account and returns its id.
func (b *Backend) AddUser(t *testing.T, email, password, role string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	acc := &account{
		user:         models.User{ID: uuid.NewString(), Email: email, Role: role, IsActive: true},
		passwordHash: hash,
	}
	b.mu.Lock()
	b.accounts[email] = acc
	b.byID[acc.user.ID] = acc
	b.mu.Unlock()
	return acc.user.ID
}

// AddCreator seeds the creator profile behind /creators/me.
func (b *Backend) AddCreator(userID string, approved bool) {
	b.mu.Lock()
	b.creators[userID] = models.Creator{
		ID:          uuid.NewString(),
		UserID:      userID,
		DisplayName: "Atelier Test",
		IsApproved:  approved,
	}
	b.mu.Unlock()
}

// TokenFor mints a bearer token for a seeded user.
func (b *Backend) TokenFor(t *testing.T, userID string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.Secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

// ExpiredTokenFor mints a token the backend will reject.
func (b *Backend) ExpiredTokenFor(t *testing.T, userID string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(-time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.Secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func (b *Backend) authenticate(r *http.Request) (*account, bool) {
	auth := r.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || raw == "" {
		return nil, false
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return b.Secret, nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, false
	}
	sub, _ := claims["sub"].(string)

	b.mu.Lock()
	defer b.mu.Unlock()
	acc, ok := b.byID[sub]
	return acc, ok
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Requête invalide")
		return
	}

	b.mu.Lock()
	acc := b.accounts[req.Email]
	b.mu.Unlock()
	if acc == nil || bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(req.Password)) != nil {
		writeDetail(w, http.StatusUnauthorized, "Identifiants invalides")
		return
	}

	claims := jwt.MapClaims{
		"sub": acc.user.ID,
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.Secret)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Erreur serveur")
		return
	}
	writeJSON(w, http.StatusOK, models.TokenResponse{AccessToken: token})
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Requête invalide")
		return
	}

	b.mu.Lock()
	_, exists := b.accounts[req.Email]
	b.mu.Unlock()
	if exists {
		writeDetail(w, http.StatusConflict, "Un compte existe déjà avec cet email")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Erreur serveur")
		return
	}
	acc := &account{
		user:         models.User{ID: uuid.NewString(), Email: req.Email, Role: models.RoleClient, IsActive: true},
		passwordHash: hash,
	}
	b.mu.Lock()
	b.accounts[req.Email] = acc
	b.byID[acc.user.ID] = acc
	b.mu.Unlock()

	claims := jwt.MapClaims{
		"sub": acc.user.ID,
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.Secret)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Erreur serveur")
		return
	}
	writeJSON(w, http.StatusOK, models.TokenResponse{AccessToken: token})
}

func (b *Backend) me(w http.ResponseWriter, r *http.Request) {
	acc, ok := b.authenticate(r)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Token invalide")
		return
	}
	writeJSON(w, http.StatusOK, acc.user)
}

func (b *Backend) creatorMe(w http.ResponseWriter, r *http.Request) {
	acc, ok := b.authenticate(r)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Token invalide")
		return
	}
	b.mu.Lock()
	creator, ok := b.creators[acc.user.ID]
	b.mu.Unlock()
	if !ok {
		writeDetail(w, http.StatusNotFound, "Profil créateur introuvable")
		return
	}
	writeJSON(w, http.StatusOK, creator)
}

func (b *Backend) adminStats(w http.ResponseWriter, r *http.Request) {
	acc, ok := b.authenticate(r)
	if !ok || acc.user.Role != models.RoleAdmin {
		writeDetail(w, http.StatusForbidden, "Accès refusé")
		return
	}
	b.mu.Lock()
	stats := b.Stats
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, stats)
}

func (b *Backend) listFavorites(w http.ResponseWriter, r *http.Request) {
	acc, ok := b.authenticate(r)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Token invalide")
		return
	}
	b.mu.Lock()
	ids := b.favorites[acc.user.ID]
	b.mu.Unlock()

	out := make([]models.Favorite, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.Favorite{ProductID: id})
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) addFavorite(w http.ResponseWriter, r *http.Request) {
	acc, ok := b.authenticate(r)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Token invalide")
		return
	}
	id := r.PathValue("id")
	b.mu.Lock()
	b.favorites[acc.user.ID] = append(b.favorites[acc.user.ID], id)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, models.Favorite{ProductID: id})
}

func (b *Backend) removeFavorite(w http.ResponseWriter, r *http.Request) {
	acc, ok := b.authenticate(r)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Token invalide")
		return
	}
	id := r.PathValue("id")
	b.mu.Lock()
	kept := b.favorites[acc.user.ID][:0]
	for _, fid := range b.favorites[acc.user.ID] {
		if fid != id {
			kept = append(kept, fid)
		}
	}
	b.favorites[acc.user.ID] = kept
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, models.Favorite{ProductID: id})
}

// FavoritesOf exposes the backend-truth favorite set for assertions.
func (b *Backend) FavoritesOf(userID string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.favorites[userID]))
	copy(out, b.favorites[userID])
	return out
}

func (b *Backend) checkout(w http.ResponseWriter, r *http.Request) {
	acc, ok := b.authenticate(r)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Token invalide")
		return
	}
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeDetail(w, http.StatusBadRequest, "Panier invalide")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"order_id":     uuid.NewString(),
		"user_id":      acc.user.ID,
		"checkout_url": "https://stripe.test/session",
	})
}

func (b *Backend) report(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeDetail(w, http.StatusBadRequest, "Signalement invalide")
		return
	}
	payload["id"] = uuid.NewString()
	writeJSON(w, http.StatusCreated, payload)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
