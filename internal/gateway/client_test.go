package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vasymarket/webfront/internal/localstore"
)

func TestClient_AttachesBearerAndContentType(t *testing.T) {
	var gotAuth, gotCT string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotCT = r.Header.Get("Content-Type")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Post(context.Background(), "/orders/checkout", map[string]string{"a": "b"}, "tok123")
	require.NoError(t, err)
	require.Equal(t, "Bearer tok123", gotAuth)
	require.Equal(t, "application/json", gotCT)
}

func TestClient_NoAuthorizationHeaderWithoutToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Get(context.Background(), "/products/", "")
	require.NoError(t, err)
	require.Empty(t, gotAuth)
}

func TestDo_ExtraHeadersMergeWithoutDisplacingContentType(t *testing.T) {
	var gotCT, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCT = r.Header.Get("Content-Type")
		gotLang = r.Header.Get("Accept-Language")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	extra := http.Header{"Accept-Language": {"fr"}, "Content-Type": {"text/plain"}}
	_, err := c.Do(context.Background(), http.MethodPost, "/reports", map[string]string{"a": "b"}, "", extra)
	require.NoError(t, err)
	require.Equal(t, "application/json", gotCT)
	require.Equal(t, "fr", gotLang)
}

func TestClient_ParsesBackendDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Identifiants invalides"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Post(context.Background(), "/auth/login", nil, "")
	require.Error(t, err)

	var ge *Error
	require.ErrorAs(t, err, &ge)
	require.Equal(t, http.StatusUnauthorized, ge.Status)
	require.Equal(t, "Identifiants invalides", ge.Message)
}

func TestClient_UnparsableErrorBodyFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>upstream timeout</html>"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Get(context.Background(), "/products/", "")

	var ge *Error
	require.ErrorAs(t, err, &ge)
	require.Equal(t, http.StatusBadGateway, ge.Status)
	require.Equal(t, FallbackMessage, ge.Message)
}

func TestClient_NotFoundHelper(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Produit non trouvé"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Get(context.Background(), "/products/nope", "")
	require.True(t, NotFound(err))
	require.False(t, NotFound(context.Canceled))
}

func TestGetAs_DecodesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"Vase bleu","price":2500}`))
	}))
	defer srv.Close()

	type product struct {
		Name  string `json:"name"`
		Price int64  `json:"price"`
	}

	got, err := GetAs[product](context.Background(), NewClient(srv.URL), "/products/p1", "")
	require.NoError(t, err)
	require.Equal(t, product{Name: "Vase bleu", Price: 2500}, got)
}

func TestForward_RelaysStatusAndBodyVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "multipart/form-data; boundary=xyz", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"url":"/media/a.png"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	status, body, err := c.Forward(context.Background(), http.MethodPost, "/upload/avatar",
		"multipart/form-data; boundary=xyz", nil, "tok")
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, status)
	require.JSONEq(t, `{"url":"/media/a.png"}`, string(body))
}

func TestCachedClient_TokenRoundTripsThroughStorage(t *testing.T) {
	state, err := localstore.Open(context.Background(), "", t.TempDir()+"/state.db")
	require.NoError(t, err)
	defer state.Close()

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	first := NewCachedClient(NewClient(srv.URL), state)
	require.NoError(t, first.SetToken("tok123"))

	// A fresh client over the same storage restores the token lazily.
	second := NewCachedClient(NewClient(srv.URL), state)
	require.Equal(t, "tok123", second.GetToken())

	_, err = second.Get(context.Background(), "/users/me")
	require.NoError(t, err)
	require.Equal(t, "Bearer tok123", gotAuth)

	require.NoError(t, second.SetToken(""))
	third := NewCachedClient(NewClient(srv.URL), state)
	require.Empty(t, third.GetToken())
}

func TestClient_RawMessageBodyPassesThroughUnchanged(t *testing.T) {
	var got []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error
		got, err = json.Marshal(mustDecode(t, r))
		require.NoError(t, err)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Post(context.Background(), "/reports",
		json.RawMessage(`{"reason":"contrefaçon","productId":"p1"}`), "")
	require.NoError(t, err)
	require.JSONEq(t, `{"reason":"contrefaçon","productId":"p1"}`, string(got))
}

func mustDecode(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&m))
	return m
}
