package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"sync"
)

// FavoritesRemote is the backend surface the favorites store syncs against.
// *gateway.CachedClient satisfies it.
type FavoritesRemote interface {
	Request(ctx context.Context, method, path string, body any) (json.RawMessage, error)
}

// Favorites is the per-user favorite product set. Without a remote it is
// purely local. With a remote, every mutation is applied optimistically,
// mirrored to the backend asynchronously, and rolled back (with a
// notification) when the backend call fails.
type Favorites struct {
	state  Storage
	log    *slog.Logger
	remote FavoritesRemote

	// OnSyncError, when set, receives the product id and error of a failed
	// remote mutation after the local state has been rolled back.
	OnSyncError func(productID string, err error)

	mu     sync.Mutex
	userID string
	ids    []string
	subs   []func(ids []string)
	wg     sync.WaitGroup
}

// NewFavorites builds a favorites store. remote may be nil, in which case the
// store is purely local.
func NewFavorites(state Storage, log *slog.Logger, remote FavoritesRemote) *Favorites {
	return &Favorites{state: state, log: log, remote: remote}
}

// Init switches the active partition and rehydrates; absent or unparsable
// storage resets to empty.
func (f *Favorites) Init(userID string) {
	f.mu.Lock()
	f.userID = userID
	f.ids = nil

	raw, ok, err := f.state.Get(storageKey("favorites", userID))
	if err != nil {
		f.log.Error("favorites: load failed", "error", err)
	} else if ok {
		var ids []string
		if err := json.Unmarshal(raw, &ids); err != nil {
			f.log.Error("favorites: stored payload unparsable", "error", err)
		} else {
			f.ids = ids
		}
	}
	f.mu.Unlock()
	f.notify()
}

// Toggle removes productID when present, adds it otherwise. It is its own
// inverse.
func (f *Favorites) Toggle(ctx context.Context, productID string) {
	f.mu.Lock()
	added := !slices.Contains(f.ids, productID)
	f.toggleLocked(productID)
	f.persistLocked()
	f.mu.Unlock()
	f.notify()

	f.sync(ctx, productID, added)
}

func (f *Favorites) Add(ctx context.Context, productID string) {
	f.mu.Lock()
	if slices.Contains(f.ids, productID) {
		f.mu.Unlock()
		return
	}
	f.ids = append(f.ids, productID)
	f.persistLocked()
	f.mu.Unlock()
	f.notify()

	f.sync(ctx, productID, true)
}

func (f *Favorites) Remove(ctx context.Context, productID string) {
	f.mu.Lock()
	if !slices.Contains(f.ids, productID) {
		f.mu.Unlock()
		return
	}
	f.toggleLocked(productID)
	f.persistLocked()
	f.mu.Unlock()
	f.notify()

	f.sync(ctx, productID, false)
}

func (f *Favorites) Contains(productID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Contains(f.ids, productID)
}

func (f *Favorites) IDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.ids)
}

func (f *Favorites) Clear() {
	f.mu.Lock()
	f.ids = nil
	if err := f.state.Delete(storageKey("favorites", f.userID)); err != nil {
		f.log.Error("favorites: clear failed", "error", err)
	}
	f.mu.Unlock()
	f.notify()
}

func (f *Favorites) Subscribe(fn func(ids []string)) {
	f.mu.Lock()
	f.subs = append(f.subs, fn)
	f.mu.Unlock()
}

// Flush waits for in-flight remote syncs. Test hook.
func (f *Favorites) Flush() {
	f.wg.Wait()
}

// sync mirrors one mutation to the backend. On failure the optimistic change
// is reverted and OnSyncError fires, so local state never silently diverges
// from backend truth.
func (f *Favorites) sync(ctx context.Context, productID string, added bool) {
	if f.remote == nil {
		return
	}
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()

		method := http.MethodPost
		if !added {
			method = http.MethodDelete
		}
		_, err := f.remote.Request(context.WithoutCancel(ctx), method, "/favorites/"+productID, nil)
		if err == nil {
			return
		}

		f.log.Error("favorites: remote sync failed, rolling back", "product_id", productID, "error", err)
		f.mu.Lock()
		f.toggleLocked(productID)
		f.persistLocked()
		f.mu.Unlock()
		f.notify()

		if f.OnSyncError != nil {
			f.OnSyncError(productID, err)
		}
	}()
}

func (f *Favorites) toggleLocked(productID string) {
	if i := slices.Index(f.ids, productID); i >= 0 {
		f.ids = slices.Delete(f.ids, i, i+1)
	} else {
		f.ids = append(f.ids, productID)
	}
}

func (f *Favorites) persistLocked() {
	data, err := json.Marshal(f.ids)
	if err != nil {
		f.log.Error("favorites: encode failed", "error", err)
		return
	}
	if err := f.state.Put(storageKey("favorites", f.userID), data); err != nil {
		f.log.Error("favorites: persist failed", "error", err)
	}
}

func (f *Favorites) notify() {
	f.mu.Lock()
	ids := slices.Clone(f.ids)
	subs := f.subs
	f.mu.Unlock()

	for _, fn := range subs {
		fn(ids)
	}
}
