package localstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(context.Background(), "", t.TempDir()+"/state.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_PutGetRoundTrip(t *testing.T) {
	s := newTestStore(t)

	_, ok, err := s.Get("vasy_cart_u1")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Put("vasy_cart_u1", []byte(`{"items":[]}`)))

	raw, ok, err := s.Get("vasy_cart_u1")
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"items":[]}`, string(raw))
}

func TestStore_PutOverwritesExistingKey(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Put("token", []byte("first")))
	require.NoError(t, s.Put("token", []byte("second")))

	raw, ok, err := s.Get("token")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "second", string(raw))
}

func TestStore_DeleteIsIdempotent(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Put("vasy_favorites_u1", []byte(`["p1"]`)))
	require.NoError(t, s.Delete("vasy_favorites_u1"))
	require.NoError(t, s.Delete("vasy_favorites_u1"))

	_, ok, err := s.Get("vasy_favorites_u1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStore_KeysAreIsolated(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Put("vasy_cart_u1", []byte("a")))
	require.NoError(t, s.Put("vasy_cart_u2", []byte("b")))
	require.NoError(t, s.Delete("vasy_cart_u1"))

	raw, ok, err := s.Get("vasy_cart_u2")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "b", string(raw))
}
