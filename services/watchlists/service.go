// Package watchlists manages persistence and retrieval of user watchlists
// and their items.
package watchlists

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"reelist/internal/database"
	"reelist/models"
)

var (
	ErrOwnerIDRequired    = errors.New("owner id is required")
	ErrWatchlistNotFound  = errors.New("watchlist not found")
	ErrItemNotFound       = errors.New("watchlist item not found")
	ErrItemExists         = errors.New("item already present in watchlist")
	ErrItemIDRequired     = errors.New("item id is required")
	ErrDefaultWatchlist   = errors.New("the default watchlist cannot be deleted")
	ErrNoDefaultWatchlist = errors.New("no default watchlist")
)

// Service manages watchlists backed by the relational store. Every
// operation is scoped to an owner so one account can never touch another's
// lists.
type Service struct {
	db *database.DB
}

// NewService creates a watchlists service on top of the given database.
func NewService(db *database.DB) *Service {
	return &Service{db: db}
}

// ListByOwner returns all watchlists for the owner. With populated set the
// items are embedded, newest first; otherwise the item slices are empty.
func (s *Service) ListByOwner(ctx context.Context, ownerID string, populated bool) ([]models.WatchlistWithItems, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, ErrOwnerIDRequired
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, name, is_default, created_at
		 FROM watchlist WHERE owner_id = ? ORDER BY created_at`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query watchlists: %w", err)
	}
	defer rows.Close()

	lists := make([]models.WatchlistWithItems, 0)
	for rows.Next() {
		var wl models.WatchlistWithItems
		if err := rows.Scan(&wl.ID, &wl.OwnerID, &wl.Name, &wl.IsDefault, &wl.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan watchlist: %w", err)
		}
		wl.Items = []models.WatchlistItem{}
		lists = append(lists, wl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watchlists: %w", err)
	}

	if !populated {
		return lists, nil
	}

	for i := range lists {
		items, err := s.listItems(ctx, lists[i].ID)
		if err != nil {
			return nil, err
		}
		lists[i].Items = items
	}

	return lists, nil
}

// Get returns a single watchlist with its items.
func (s *Service) Get(ctx context.Context, ownerID, id string) (models.WatchlistWithItems, error) {
	wl, err := s.byID(ctx, ownerID, id)
	if err != nil {
		return models.WatchlistWithItems{}, err
	}

	items, err := s.listItems(ctx, wl.ID)
	if err != nil {
		return models.WatchlistWithItems{}, err
	}

	return models.WatchlistWithItems{Watchlist: wl, Items: items}, nil
}

// GetDefault returns the owner's default watchlist, or ErrNoDefaultWatchlist.
func (s *Service) GetDefault(ctx context.Context, ownerID string) (models.WatchlistWithItems, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return models.WatchlistWithItems{}, ErrOwnerIDRequired
	}

	var wl models.Watchlist
	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, is_default, created_at
		 FROM watchlist WHERE owner_id = ? AND is_default = 1`, ownerID).
		Scan(&wl.ID, &wl.OwnerID, &wl.Name, &wl.IsDefault, &wl.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.WatchlistWithItems{}, ErrNoDefaultWatchlist
	}
	if err != nil {
		return models.WatchlistWithItems{}, fmt.Errorf("query default watchlist: %w", err)
	}

	items, err := s.listItems(ctx, wl.ID)
	if err != nil {
		return models.WatchlistWithItems{}, err
	}
	return models.WatchlistWithItems{Watchlist: wl, Items: items}, nil
}

// Create inserts a new watchlist. When isDefault is set the previous default
// is cleared inside the same transaction, so at most one default ever holds.
func (s *Service) Create(ctx context.Context, ownerID, name string, isDefault bool) (models.WatchlistWithItems, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return models.WatchlistWithItems{}, ErrOwnerIDRequired
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = models.DefaultWatchlistName
	}

	wl := models.Watchlist{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      name,
		IsDefault: isDefault,
		CreatedAt: time.Now().UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.WatchlistWithItems{}, fmt.Errorf("begin create watchlist: %w", err)
	}
	defer tx.Rollback()

	if isDefault {
		if _, err := tx.ExecContext(ctx,
			`UPDATE watchlist SET is_default = 0 WHERE owner_id = ? AND is_default = 1`, ownerID); err != nil {
			return models.WatchlistWithItems{}, fmt.Errorf("clear default watchlist: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO watchlist (id, owner_id, name, is_default, created_at) VALUES (?, ?, ?, ?, ?)`,
		wl.ID, wl.OwnerID, wl.Name, wl.IsDefault, wl.CreatedAt)
	if err != nil {
		return models.WatchlistWithItems{}, fmt.Errorf("insert watchlist: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.WatchlistWithItems{}, fmt.Errorf("commit create watchlist: %w", err)
	}

	return models.WatchlistWithItems{Watchlist: wl, Items: []models.WatchlistItem{}}, nil
}

// Rename updates the watchlist's name.
func (s *Service) Rename(ctx context.Context, ownerID, id, name string) (models.WatchlistWithItems, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = models.DefaultWatchlistName
	}

	if _, err := s.byID(ctx, ownerID, id); err != nil {
		return models.WatchlistWithItems{}, err
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE watchlist SET name = ? WHERE id = ? AND owner_id = ?`, name, id, ownerID); err != nil {
		return models.WatchlistWithItems{}, fmt.Errorf("rename watchlist: %w", err)
	}

	return s.Get(ctx, ownerID, id)
}

// SetDefault sets or clears the default flag. Setting it clears any other
// default in the same transaction.
func (s *Service) SetDefault(ctx context.Context, ownerID, id string, isDefault bool) (models.WatchlistWithItems, error) {
	if _, err := s.byID(ctx, ownerID, id); err != nil {
		return models.WatchlistWithItems{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.WatchlistWithItems{}, fmt.Errorf("begin set default: %w", err)
	}
	defer tx.Rollback()

	if isDefault {
		if _, err := tx.ExecContext(ctx,
			`UPDATE watchlist SET is_default = 0 WHERE owner_id = ? AND is_default = 1`, ownerID); err != nil {
			return models.WatchlistWithItems{}, fmt.Errorf("clear default watchlist: %w", err)
		}
	}

	flag := 0
	if isDefault {
		flag = 1
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE watchlist SET is_default = ? WHERE id = ? AND owner_id = ?`, flag, id, ownerID); err != nil {
		return models.WatchlistWithItems{}, fmt.Errorf("set default watchlist: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.WatchlistWithItems{}, fmt.Errorf("commit set default: %w", err)
	}

	return s.Get(ctx, ownerID, id)
}

// Delete removes a watchlist and, through the schema cascade, its items.
// The default list is protected as a contract, not just a UI affordance.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	wl, err := s.byID(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if wl.IsDefault {
		return ErrDefaultWatchlist
	}

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM watchlist WHERE id = ? AND owner_id = ?`, id, ownerID); err != nil {
		return fmt.Errorf("delete watchlist: %w", err)
	}
	return nil
}

// AddItem inserts an item into the watchlist. An item with the same id in
// the same list yields ErrItemExists; the caller treats that as benign.
func (s *Service) AddItem(ctx context.Context, ownerID, watchlistID string, input models.ItemInput) (models.WatchlistItem, error) {
	if strings.TrimSpace(input.ID) == "" {
		return models.WatchlistItem{}, ErrItemIDRequired
	}

	if _, err := s.byID(ctx, ownerID, watchlistID); err != nil {
		return models.WatchlistItem{}, err
	}

	item := models.WatchlistItem{
		ID:          strings.TrimSpace(input.ID),
		WatchlistID: watchlistID,
		Title:       strings.TrimSpace(input.Title),
		ReleaseYear: input.ReleaseYear,
		PosterURL:   strings.TrimSpace(input.PosterURL),
		Watched:     false,
		CreatedAt:   time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO watchlist_item (id, watchlist_id, title, release_year, poster_url, watched, created_at)
		 VALUES (?, ?, ?, ?, ?, 0, ?)`,
		item.ID, item.WatchlistID, item.Title, item.ReleaseYear, item.PosterURL, item.CreatedAt)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return models.WatchlistItem{}, ErrItemExists
		}
		return models.WatchlistItem{}, fmt.Errorf("insert watchlist item: %w", err)
	}

	return item, nil
}

// SetItemWatched sets the watched flag on an item.
func (s *Service) SetItemWatched(ctx context.Context, ownerID, watchlistID, itemID string, watched bool) (models.WatchlistItem, error) {
	if _, err := s.byID(ctx, ownerID, watchlistID); err != nil {
		return models.WatchlistItem{}, err
	}

	flag := 0
	if watched {
		flag = 1
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE watchlist_item SET watched = ? WHERE watchlist_id = ? AND id = ?`,
		flag, watchlistID, itemID)
	if err != nil {
		return models.WatchlistItem{}, fmt.Errorf("update watchlist item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.WatchlistItem{}, ErrItemNotFound
	}

	return s.item(ctx, watchlistID, itemID)
}

// DeleteItem removes an item from the watchlist.
func (s *Service) DeleteItem(ctx context.Context, ownerID, watchlistID, itemID string) error {
	if _, err := s.byID(ctx, ownerID, watchlistID); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM watchlist_item WHERE watchlist_id = ? AND id = ?`, watchlistID, itemID)
	if err != nil {
		return fmt.Errorf("delete watchlist item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (s *Service) byID(ctx context.Context, ownerID, id string) (models.Watchlist, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return models.Watchlist{}, ErrOwnerIDRequired
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return models.Watchlist{}, ErrWatchlistNotFound
	}

	var wl models.Watchlist
	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, is_default, created_at
		 FROM watchlist WHERE id = ? AND owner_id = ?`, id, ownerID).
		Scan(&wl.ID, &wl.OwnerID, &wl.Name, &wl.IsDefault, &wl.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Watchlist{}, ErrWatchlistNotFound
	}
	if err != nil {
		return models.Watchlist{}, fmt.Errorf("query watchlist: %w", err)
	}
	return wl, nil
}

func (s *Service) item(ctx context.Context, watchlistID, itemID string) (models.WatchlistItem, error) {
	var item models.WatchlistItem
	err := s.db.QueryRowContext(ctx,
		`SELECT id, watchlist_id, title, release_year, poster_url, watched, created_at
		 FROM watchlist_item WHERE watchlist_id = ? AND id = ?`, watchlistID, itemID).
		Scan(&item.ID, &item.WatchlistID, &item.Title, &item.ReleaseYear, &item.PosterURL, &item.Watched, &item.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.WatchlistItem{}, ErrItemNotFound
	}
	if err != nil {
		return models.WatchlistItem{}, fmt.Errorf("query watchlist item: %w", err)
	}
	return item, nil
}

func (s *Service) listItems(ctx context.Context, watchlistID string) ([]models.WatchlistItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, watchlist_id, title, release_year, poster_url, watched, created_at
		 FROM watchlist_item WHERE watchlist_id = ?
		 ORDER BY created_at DESC, id`, watchlistID)
	if err != nil {
		return nil, fmt.Errorf("query watchlist items: %w", err)
	}
	defer rows.Close()

	items := make([]models.WatchlistItem, 0)
	for rows.Next() {
		var item models.WatchlistItem
		if err := rows.Scan(&item.ID, &item.WatchlistID, &item.Title, &item.ReleaseYear, &item.PosterURL, &item.Watched, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan watchlist item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watchlist items: %w", err)
	}

	return items, nil
}
