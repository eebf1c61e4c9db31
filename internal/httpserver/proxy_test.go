package httpserver

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/vasymarket/webfront/internal/models"
	"github.com/vasymarket/webfront/internal/session"
)

const (
	waitFor = 2 * time.Second
	tick    = 10 * time.Millisecond
)

func TestProxyFavorites_Unauthenticated(t *testing.T) {
	env := newTestEnv(t)

	for _, probe := range []struct{ method, path string }{
		{http.MethodGet, "/api/favorites"},
		{http.MethodPost, "/api/favorites"},
		{http.MethodDelete, "/api/favorites/p1"},
		{http.MethodPost, "/api/checkout"},
		{http.MethodPost, "/api/stripe/connect"},
		{http.MethodPost, "/api/stripe/setup-payout"},
		{http.MethodPost, "/api/upload/avatar"},
	} {
		rec := env.do(probe.method, probe.path, nil, "")
		require.Equal(t, http.StatusUnauthorized, rec.Code, probe.path)
		require.Equal(t, "Non authentifié", decodeBody(t, rec)["detail"], probe.path)
	}
}

func TestProxyFavorites_AddSyncsToBackend(t *testing.T) {
	env := newTestEnv(t)
	uid := env.Backend.AddUser(t, "claire@vasy.fr", "Secret123", models.RoleClient)
	token := env.Backend.TokenFor(t, uid)

	rec := env.do(http.MethodPost, "/api/favorites", map[string]string{"productId": "p1"}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	favs := decodeBody(t, rec)["favorites"].([]any)
	require.Contains(t, favs, "p1")

	// The optimistic write lands on the backend shortly after.
	require.Eventually(t, func() bool {
		ids := env.Backend.FavoritesOf(uid)
		return len(ids) == 1 && ids[0] == "p1"
	}, waitFor, tick)
}

func TestProxyFavorites_RemoveSyncsToBackend(t *testing.T) {
	env := newTestEnv(t)
	uid := env.Backend.AddUser(t, "claire@vasy.fr", "Secret123", models.RoleClient)
	token := env.Backend.TokenFor(t, uid)

	rec := env.do(http.MethodPost, "/api/favorites", map[string]string{"productId": "p1"}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Eventually(t, func() bool {
		return len(env.Backend.FavoritesOf(uid)) == 1
	}, waitFor, tick)

	rec = env.do(http.MethodDelete, "/api/favorites/p1", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, decodeBody(t, rec)["favorites"])
	require.Eventually(t, func() bool {
		return len(env.Backend.FavoritesOf(uid)) == 0
	}, waitFor, tick)
}

func TestProxyFavorites_BackendFailureRollsBack(t *testing.T) {
	env := newTestEnv(t)
	uid := env.Backend.AddUser(t, "claire@vasy.fr", "Secret123", models.RoleClient)
	token := env.Backend.TokenFor(t, uid)

	env.Backend.Override("POST /favorites/p1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	rec := env.do(http.MethodPost, "/api/favorites", map[string]string{"productId": "p1"}, token)
	require.Equal(t, http.StatusOK, rec.Code) // optimistic response

	// The rollback restores the stored partition to empty.
	require.Eventually(t, func() bool {
		raw, ok, err := env.State.Get("vasy_favorites_" + uid)
		if err != nil || !ok {
			return false
		}
		return string(raw) == "[]" || string(raw) == "null"
	}, waitFor, tick)
	require.Empty(t, env.Backend.FavoritesOf(uid))
}

func TestProxyListFavorites_BackendOutageReadsAsEmpty(t *testing.T) {
	env := newTestEnv(t)
	uid := env.Backend.AddUser(t, "claire@vasy.fr", "Secret123", models.RoleClient)

	env.Backend.Override("GET /favorites/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	rec := env.do(http.MethodGet, "/api/favorites", nil, env.Backend.TokenFor(t, uid))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())
}

func TestProxyCheckout_ForwardsBody(t *testing.T) {
	env := newTestEnv(t)
	uid := env.Backend.AddUser(t, "claire@vasy.fr", "Secret123", models.RoleClient)

	rec := env.do(http.MethodPost, "/api/checkout", map[string]any{
		"items": []map[string]any{{"id": "p1", "quantity": 2}},
	}, env.Backend.TokenFor(t, uid))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, uid, body["user_id"])
	require.NotEmpty(t, body["checkout_url"])
}

func TestProxyUploadAvatar_RelaysMultipartBody(t *testing.T) {
	env := newTestEnv(t)
	uid := env.Backend.AddUser(t, "claire@vasy.fr", "Secret123", models.RoleClient)
	token := env.Backend.TokenFor(t, uid)

	env.Backend.Override("POST /upload/avatar", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		file, header, err := r.FormFile("avatar")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		content, _ := io.ReadAll(file)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"filename": header.Filename,
			"size":     strconv.Itoa(len(content)),
			"url":      "/static/avatars/" + header.Filename,
		})
	})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("avatar", "portrait.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake png bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload/avatar", &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "portrait.png", body["filename"])
	require.Equal(t, strconv.Itoa(len("fake png bytes")), body["size"])
	require.Equal(t, "/static/avatars/portrait.png", body["url"])
}

func TestProxyReport_AnonymousSubmissionAccepted(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/reports", map[string]string{
		"productId": "p1", "reason": "contrefaçon",
	}, "")

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "contrefaçon", body["reason"])
	require.NotEmpty(t, body["id"])
}
