package store

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

// memStorage is an in-memory Storage for tests.
type memStorage struct {
	data    map[string][]byte
	failPut bool
}

func newMemStorage() *memStorage {
	return &memStorage{data: make(map[string][]byte)}
}

func (m *memStorage) Get(key string) ([]byte, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStorage) Put(key string, value []byte) error {
	if m.failPut {
		return errors.New("storage unavailable")
	}
	m.data[key] = value
	return nil
}

func (m *memStorage) Delete(key string) error {
	delete(m.data, key)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestCart_AddItemMergesByProductID(t *testing.T) {
	cart := NewCart(newMemStorage(), testLogger())
	cart.Init("u1")

	cart.AddItem(CartItem{ID: "p1", Name: "Vase", Price: 2500, Quantity: 1})
	cart.AddItem(CartItem{ID: "p1", Name: "Vase", Price: 2500, Quantity: 2})

	items := cart.Items()
	require.Len(t, items, 1)
	require.Equal(t, 3, items[0].Quantity)
	require.Equal(t, int64(7500), cart.Subtotal())
}

func TestCart_AddItemClampsQuantityToOne(t *testing.T) {
	cart := NewCart(newMemStorage(), testLogger())
	cart.Init("u1")

	cart.AddItem(CartItem{ID: "p1", Price: 1000, Quantity: 0})

	items := cart.Items()
	require.Len(t, items, 1)
	require.Equal(t, 1, items[0].Quantity)
}

func TestCart_UpdateQuantityZeroRemovesItem(t *testing.T) {
	cart := NewCart(newMemStorage(), testLogger())
	cart.Init("u1")

	cart.AddItem(CartItem{ID: "p1", Price: 1000, Quantity: 2})
	cart.AddItem(CartItem{ID: "p2", Price: 2000, Quantity: 1})

	cart.UpdateQuantity("p1", 0)

	items := cart.Items()
	require.Len(t, items, 1)
	require.Equal(t, "p2", items[0].ID)

	cart.UpdateQuantity("p2", -3)
	require.Empty(t, cart.Items())
}

func TestCart_PartitionsAreIsolatedPerUser(t *testing.T) {
	state := newMemStorage()

	cart := NewCart(state, testLogger())
	cart.Init("u1")
	cart.AddItem(CartItem{ID: "p1", Price: 1000, Quantity: 1})

	cart.Init("u2")
	require.Empty(t, cart.Items())
	cart.AddItem(CartItem{ID: "p2", Price: 2000, Quantity: 5})

	cart.Init("u1")
	items := cart.Items()
	require.Len(t, items, 1)
	require.Equal(t, "p1", items[0].ID)
	require.Equal(t, 1, items[0].Quantity)
}

func TestCart_GuestPartitionSurvivesReload(t *testing.T) {
	state := newMemStorage()

	cart := NewCart(state, testLogger())
	cart.Init("")
	cart.AddItem(CartItem{ID: "p1", Name: "Bol", Price: 1500, Quantity: 2})

	reloaded := NewCart(state, testLogger())
	reloaded.Init("")
	items := reloaded.Items()
	require.Len(t, items, 1)
	require.Equal(t, "Bol", items[0].Name)
	require.Equal(t, 2, items[0].Quantity)

	_, ok := state.data["vasy_cart_guest"]
	require.True(t, ok)
}

func TestCart_UnparsablePartitionResetsToEmpty(t *testing.T) {
	state := newMemStorage()
	state.data["vasy_cart_u1"] = []byte("not json")

	cart := NewCart(state, testLogger())
	cart.Init("u1")
	require.Empty(t, cart.Items())
}

func TestCart_PersistenceFailureKeepsMemoryState(t *testing.T) {
	state := newMemStorage()
	state.failPut = true

	cart := NewCart(state, testLogger())
	cart.Init("u1")
	cart.AddItem(CartItem{ID: "p1", Price: 1000, Quantity: 1})

	require.Len(t, cart.Items(), 1)
	require.Empty(t, state.data)
}

func TestCart_ClearDeletesPartition(t *testing.T) {
	state := newMemStorage()

	cart := NewCart(state, testLogger())
	cart.Init("u1")
	cart.AddItem(CartItem{ID: "p1", Price: 1000, Quantity: 1})
	cart.Clear()

	require.Empty(t, cart.Items())
	_, ok := state.data["vasy_cart_u1"]
	require.False(t, ok)
}

func TestCart_SubscribersSeeEveryMutation(t *testing.T) {
	cart := NewCart(newMemStorage(), testLogger())

	var calls []int
	cart.Subscribe(func(userID string, items []CartItem) {
		calls = append(calls, len(items))
	})

	cart.Init("u1")
	cart.AddItem(CartItem{ID: "p1", Price: 1000, Quantity: 1})
	cart.RemoveItem("p1")

	require.Equal(t, []int{0, 1, 0}, calls)
}
