package models

import "time"

const (
	// LocalOwnerID marks watchlists created in guest mode, before any
	// account exists.
	LocalOwnerID = "local"

	// DefaultWatchlistName is used when a watchlist is created with an
	// empty name.
	DefaultWatchlistName = "New watchlist"
)

// Watchlist groups saved titles under a user-chosen name. At most one list
// per owner carries IsDefault.
type Watchlist struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Name      string    `json:"name"`
	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
}

// WatchlistWithItems is a watchlist together with its items, newest first.
type WatchlistWithItems struct {
	Watchlist
	Items []WatchlistItem `json:"items"`
}

// WatchlistItem is a snapshot of a searched title saved into a watchlist.
// Its ID is the external title identifier, reused as the item key, so a
// title can appear at most once per list.
type WatchlistItem struct {
	ID          string    `json:"id"`
	WatchlistID string    `json:"watchlistId"`
	Title       string    `json:"title"`
	ReleaseYear int       `json:"releaseYear,omitempty"`
	PosterURL   string    `json:"posterUrl,omitempty"`
	Watched     bool      `json:"watched"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ItemInput captures the data required to add an item to a watchlist.
// The release year travels under the historical "releaseDate" key the SPA
// has always sent.
type ItemInput struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	ReleaseYear int    `json:"releaseDate,omitempty"`
	PosterURL   string `json:"posterURL,omitempty"`
}
