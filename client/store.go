// Package client implements the watchlist synchronization layer: a unified
// CRUD surface over the current actor's watchlists, backed by either a local
// on-device store (guest mode) or the remote reelist API (authenticated mode).
package client

import (
	"context"
	"errors"

	"reelist/models"
)

var (
	ErrWatchlistNotFound = errors.New("watchlist not found")
	ErrDefaultWatchlist  = errors.New("default watchlist cannot be deleted")
	ErrItemNotFound      = errors.New("item not found")
	ErrItemExists        = errors.New("item already in watchlist")
	ErrUnauthorized      = errors.New("session expired or not logged in")
)

// Store is the operation contract both backends satisfy. The backend is
// chosen once per actor session; no operation body branches on actor mode.
type Store interface {
	// List returns every watchlist for the current actor, items included.
	List(ctx context.Context) ([]models.WatchlistWithItems, error)

	// Get resolves a single watchlist with its items, or ErrWatchlistNotFound.
	Get(ctx context.Context, id string) (models.WatchlistWithItems, error)

	// Create adds a new watchlist. An empty name falls back to the store's
	// default. When isDefault is set, any previous default is cleared first.
	Create(ctx context.Context, name string, isDefault bool) (models.WatchlistWithItems, error)

	// Rename changes the display name of an existing watchlist.
	Rename(ctx context.Context, id, name string) (models.Watchlist, error)

	// SetDefault makes the given watchlist the actor's single default.
	SetDefault(ctx context.Context, id string) (models.Watchlist, error)

	// Delete removes a watchlist and all of its items. The default watchlist
	// is refused with ErrDefaultWatchlist.
	Delete(ctx context.Context, id string) error

	// AddItem inserts an item at the head of a watchlist. Adding an id that
	// is already present returns ErrItemExists.
	AddItem(ctx context.Context, watchlistID string, input models.ItemInput) (models.WatchlistItem, error)

	// SetItemWatched sets the watched flag on an item.
	SetItemWatched(ctx context.Context, watchlistID, itemID string, watched bool) (models.WatchlistItem, error)

	// DeleteItem removes an item from a watchlist.
	DeleteItem(ctx context.Context, watchlistID, itemID string) error
}
