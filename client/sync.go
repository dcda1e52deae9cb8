package client

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"reelist/models"
)

// LoadState tracks the lifecycle of the synchronizer's snapshot.
type LoadState string

const (
	LoadIdle      LoadState = "idle"
	LoadLoading   LoadState = "loading"
	LoadSucceeded LoadState = "succeeded"
	LoadFailed    LoadState = "failed"
)

// Synchronizer is the single source of truth for the current actor's
// watchlists. All mutations go through it: each one dispatches to the active
// Store, then re-reads the full collection so the snapshot always reflects
// the backend of record rather than an optimistic local merge.
//
// Operations never return errors. Failures are logged and surfaced as a nil
// resource or false, leaving the snapshot at its last known good state.
// Overlapping writes from the same consumer are not serialized against each
// other; whichever refresh read lands last wins.
type Synchronizer struct {
	mu       sync.Mutex
	store    Store
	snapshot []models.WatchlistWithItems
	state    LoadState
}

// NewSynchronizer starts idle on the given backend. Call Initialize before
// issuing writes.
func NewSynchronizer(store Store) *Synchronizer {
	return &Synchronizer{
		store: store,
		state: LoadIdle,
	}
}

// LoadState reports where the snapshot is in its lifecycle.
func (s *Synchronizer) LoadState() LoadState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns a copy of the current ordered collection. Callers must
// not mutate the returned watchlists.
func (s *Synchronizer) Snapshot() []models.WatchlistWithItems {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.WatchlistWithItems, len(s.snapshot))
	copy(out, s.snapshot)
	return out
}

// Initialize performs the first full read. It only runs from the idle state;
// calling it again while loading, succeeded or failed is a no-op, so
// consumers may call it freely on every mount.
func (s *Synchronizer) Initialize(ctx context.Context) {
	s.mu.Lock()
	if s.state != LoadIdle {
		s.mu.Unlock()
		return
	}
	s.state = LoadLoading
	s.mu.Unlock()

	lists, err := s.store.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("initial watchlist load failed")
		s.mu.Lock()
		s.state = LoadFailed
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	s.snapshot = Order(lists)
	s.state = LoadSucceeded
	s.mu.Unlock()
}

// Watchlist resolves a single watchlist from the backend, or nil if it does
// not exist or the read fails.
func (s *Synchronizer) Watchlist(ctx context.Context, id string) *models.WatchlistWithItems {
	list, err := s.store.Get(ctx, id)
	if err != nil {
		if err != ErrWatchlistNotFound {
			log.Error().Err(err).Str("watchlist_id", id).Msg("watchlist fetch failed")
		}
		return nil
	}
	return &list
}

// CreateWatchlist adds a new list. When isDefault is set, the store clears
// the previous default before inserting, so exactly one default exists both
// during and after the operation.
func (s *Synchronizer) CreateWatchlist(ctx context.Context, name string, isDefault bool) *models.WatchlistWithItems {
	if !s.ready() {
		return nil
	}

	created, err := s.store.Create(ctx, name, isDefault)
	if err != nil {
		log.Error().Err(err).Str("name", name).Msg("watchlist create failed")
		return nil
	}

	s.refresh(ctx)
	return &created
}

// RenameWatchlist changes a list's display name.
func (s *Synchronizer) RenameWatchlist(ctx context.Context, id, name string) *models.Watchlist {
	if !s.ready() {
		return nil
	}

	updated, err := s.store.Rename(ctx, id, name)
	if err != nil {
		log.Error().Err(err).Str("watchlist_id", id).Msg("watchlist rename failed")
		return nil
	}

	s.refresh(ctx)
	return &updated
}

// SetDefaultWatchlist moves the default flag onto the given list.
func (s *Synchronizer) SetDefaultWatchlist(ctx context.Context, id string) *models.Watchlist {
	if !s.ready() {
		return nil
	}

	updated, err := s.store.SetDefault(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("watchlist_id", id).Msg("set default failed")
		return nil
	}

	s.refresh(ctx)
	return &updated
}

// DeleteWatchlist removes a list and its items. Deleting an id that does not
// exist is a silent no-op; deleting the default watchlist is refused.
func (s *Synchronizer) DeleteWatchlist(ctx context.Context, id string) bool {
	if !s.ready() {
		return false
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if err == ErrWatchlistNotFound {
			return true
		}
		if err == ErrDefaultWatchlist {
			log.Warn().Str("watchlist_id", id).Msg("refused to delete default watchlist")
			return false
		}
		log.Error().Err(err).Str("watchlist_id", id).Msg("watchlist delete failed")
		return false
	}

	s.refresh(ctx)
	return true
}

// AddItem inserts an item at the head of a watchlist. A duplicate id is
// treated as success: the item is already present exactly once.
func (s *Synchronizer) AddItem(ctx context.Context, watchlistID string, input models.ItemInput) *models.WatchlistItem {
	if !s.ready() {
		return nil
	}

	created, err := s.store.AddItem(ctx, watchlistID, input)
	if err != nil {
		if err == ErrItemExists {
			s.refresh(ctx)
			if list := s.find(watchlistID); list != nil {
				for _, item := range list.Items {
					if item.ID == input.ID {
						return &item
					}
				}
			}
			return nil
		}
		log.Error().Err(err).Str("watchlist_id", watchlistID).Str("item_id", input.ID).Msg("add item failed")
		return nil
	}

	s.refresh(ctx)
	return &created
}

// SetItemWatched sets an item's watched flag.
func (s *Synchronizer) SetItemWatched(ctx context.Context, watchlistID, itemID string, watched bool) *models.WatchlistItem {
	if !s.ready() {
		return nil
	}

	updated, err := s.store.SetItemWatched(ctx, watchlistID, itemID, watched)
	if err != nil {
		log.Error().Err(err).Str("watchlist_id", watchlistID).Str("item_id", itemID).Msg("set watched failed")
		return nil
	}

	s.refresh(ctx)
	return &updated
}

// DeleteItem removes an item. A missing item id is a silent no-op.
func (s *Synchronizer) DeleteItem(ctx context.Context, watchlistID, itemID string) bool {
	if !s.ready() {
		return false
	}

	if err := s.store.DeleteItem(ctx, watchlistID, itemID); err != nil {
		if err == ErrItemNotFound || err == ErrWatchlistNotFound {
			return true
		}
		log.Error().Err(err).Str("watchlist_id", watchlistID).Str("item_id", itemID).Msg("delete item failed")
		return false
	}

	s.refresh(ctx)
	return true
}

// Reset empties the snapshot, returns to idle and swaps the backend. Called
// on every actor transition, login and logout alike, so the next Initialize
// re-derives state for the new actor.
func (s *Synchronizer) Reset(store Store) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store = store
	s.snapshot = nil
	s.state = LoadIdle
}

// ready reports whether writes may proceed. Writes issued before the first
// load completes are dropped rather than raced against it.
func (s *Synchronizer) ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == LoadSucceeded
}

// refresh replaces the snapshot with a fresh ordered read of the full
// collection. A failed read keeps the previous snapshot.
func (s *Synchronizer) refresh(ctx context.Context) {
	lists, err := s.store.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("snapshot refresh failed")
		return
	}

	s.mu.Lock()
	s.snapshot = Order(lists)
	s.mu.Unlock()
}

func (s *Synchronizer) find(id string) *models.WatchlistWithItems {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.snapshot {
		if s.snapshot[i].ID == id {
			list := s.snapshot[i]
			return &list
		}
	}
	return nil
}
