package store

import (
	"encoding/json"
	"log/slog"
	"sync"
)

type CartItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"` // per unit, in cents
	Quantity  int    `json:"quantity"`
	ImageURL  string `json:"image_url"`
	CreatorID string `json:"creator_id"`
}

type cartPayload struct {
	Items []CartItem `json:"items"`
}

// Cart is the per-user shopping cart. Mutations update memory first, notify
// subscribers synchronously, then write through to the active partition.
// Persistence failures are logged and swallowed: the in-memory change stands.
type Cart struct {
	state Storage
	log   *slog.Logger

	mu     sync.Mutex
	userID string
	items  []CartItem
	subs   []func(userID string, items []CartItem)
}

func NewCart(state Storage, log *slog.Logger) *Cart {
	return &Cart{state: state, log: log}
}

// Init switches the active partition to userID ("" means guest) and
// rehydrates from durable storage. A missing or unparsable partition resets
// the cart to empty.
func (c *Cart) Init(userID string) {
	c.mu.Lock()
	c.userID = userID
	c.items = nil

	raw, ok, err := c.state.Get(storageKey("cart", userID))
	if err != nil {
		c.log.Error("cart: load failed", "error", err)
	} else if ok {
		var p cartPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			c.log.Error("cart: stored payload unparsable", "error", err)
		} else {
			c.items = p.Items
		}
	}
	c.mu.Unlock()
	c.notify()
}

// AddItem merges by product id: a repeated add increments the existing
// quantity, so the cart never holds two entries for one product.
func (c *Cart) AddItem(item CartItem) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	c.mu.Lock()
	merged := false
	for i := range c.items {
		if c.items[i].ID == item.ID {
			c.items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		c.items = append(c.items, item)
	}
	c.persistLocked()
	c.mu.Unlock()
	c.notify()
}

func (c *Cart) RemoveItem(productID string) {
	c.mu.Lock()
	c.removeLocked(productID)
	c.persistLocked()
	c.mu.Unlock()
	c.notify()
}

// UpdateQuantity sets the quantity for productID; n <= 0 removes the item.
func (c *Cart) UpdateQuantity(productID string, n int) {
	c.mu.Lock()
	if n <= 0 {
		c.removeLocked(productID)
	} else {
		for i := range c.items {
			if c.items[i].ID == productID {
				c.items[i].Quantity = n
				break
			}
		}
	}
	c.persistLocked()
	c.mu.Unlock()
	c.notify()
}

// Clear empties the cart and deletes the active partition's storage entry.
func (c *Cart) Clear() {
	c.mu.Lock()
	c.items = nil
	if err := c.state.Delete(storageKey("cart", c.userID)); err != nil {
		c.log.Error("cart: clear failed", "error", err)
	}
	c.mu.Unlock()
	c.notify()
}

// Items returns a copy of the current cart contents, in insertion order.
func (c *Cart) Items() []CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// Subtotal is the cart total in cents.
func (c *Cart) Subtotal() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total int64
	for _, it := range c.items {
		total += it.Price * int64(it.Quantity)
	}
	return total
}

// Subscribe registers fn to run synchronously after every mutation.
func (c *Cart) Subscribe(fn func(userID string, items []CartItem)) {
	c.mu.Lock()
	c.subs = append(c.subs, fn)
	c.mu.Unlock()
}

func (c *Cart) removeLocked(productID string) {
	kept := c.items[:0]
	for _, it := range c.items {
		if it.ID != productID {
			kept = append(kept, it)
		}
	}
	c.items = kept
}

func (c *Cart) persistLocked() {
	data, err := json.Marshal(cartPayload{Items: c.items})
	if err != nil {
		c.log.Error("cart: encode failed", "error", err)
		return
	}
	if err := c.state.Put(storageKey("cart", c.userID), data); err != nil {
		c.log.Error("cart: persist failed", "error", err)
	}
}

func (c *Cart) notify() {
	c.mu.Lock()
	userID := c.userID
	items := make([]CartItem, len(c.items))
	copy(items, c.items)
	subs := c.subs
	c.mu.Unlock()

	for _, fn := range subs {
		fn(userID, items)
	}
}
