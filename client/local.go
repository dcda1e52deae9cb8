package client

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"reelist/models"
)

// localFileName is the well-known file the guest collection lives in.
const localFileName = "watchlists.json"

// LocalStore persists the guest actor's watchlists as a single JSON array on
// the local filesystem. Every write replaces the whole file atomically via a
// temp file and rename; there is no partial patching on disk.
type LocalStore struct {
	mu   sync.Mutex
	fs   afero.Fs
	path string
}

// NewLocalStore creates a store rooted at dir on the OS filesystem.
func NewLocalStore(dir string) *LocalStore {
	return NewLocalStoreFs(afero.NewOsFs(), dir)
}

// NewLocalStoreFs creates a store on an explicit filesystem, mainly so tests
// can run against an in-memory one.
func NewLocalStoreFs(fs afero.Fs, dir string) *LocalStore {
	return &LocalStore{
		fs:   fs,
		path: filepath.Join(dir, localFileName),
	}
}

func (s *LocalStore) List(ctx context.Context) ([]models.WatchlistWithItems, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *LocalStore) Get(ctx context.Context, id string) (models.WatchlistWithItems, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lists, err := s.load()
	if err != nil {
		return models.WatchlistWithItems{}, err
	}
	for _, list := range lists {
		if list.ID == id {
			return list, nil
		}
	}
	return models.WatchlistWithItems{}, ErrWatchlistNotFound
}

func (s *LocalStore) Create(ctx context.Context, name string, isDefault bool) (models.WatchlistWithItems, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lists, err := s.load()
	if err != nil {
		return models.WatchlistWithItems{}, err
	}

	if name == "" {
		name = models.DefaultWatchlistName
	}

	if isDefault {
		for i := range lists {
			lists[i].IsDefault = false
		}
	}

	created := models.WatchlistWithItems{
		Watchlist: models.Watchlist{
			ID:        uuid.NewString(),
			OwnerID:   models.LocalOwnerID,
			Name:      name,
			IsDefault: isDefault,
			CreatedAt: time.Now().UTC(),
		},
		Items: []models.WatchlistItem{},
	}
	lists = append(lists, created)

	if err := s.save(lists); err != nil {
		return models.WatchlistWithItems{}, err
	}
	return created, nil
}

func (s *LocalStore) Rename(ctx context.Context, id, name string) (models.Watchlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lists, err := s.load()
	if err != nil {
		return models.Watchlist{}, err
	}

	if name == "" {
		name = models.DefaultWatchlistName
	}

	for i := range lists {
		if lists[i].ID == id {
			lists[i].Name = name
			if err := s.save(lists); err != nil {
				return models.Watchlist{}, err
			}
			return lists[i].Watchlist, nil
		}
	}
	return models.Watchlist{}, ErrWatchlistNotFound
}

func (s *LocalStore) SetDefault(ctx context.Context, id string) (models.Watchlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lists, err := s.load()
	if err != nil {
		return models.Watchlist{}, err
	}

	found := -1
	for i := range lists {
		lists[i].IsDefault = lists[i].ID == id
		if lists[i].ID == id {
			found = i
		}
	}
	if found < 0 {
		return models.Watchlist{}, ErrWatchlistNotFound
	}

	if err := s.save(lists); err != nil {
		return models.Watchlist{}, err
	}
	return lists[found].Watchlist, nil
}

func (s *LocalStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lists, err := s.load()
	if err != nil {
		return err
	}

	for i := range lists {
		if lists[i].ID == id {
			if lists[i].IsDefault {
				return ErrDefaultWatchlist
			}
			lists = append(lists[:i], lists[i+1:]...)
			return s.save(lists)
		}
	}
	return ErrWatchlistNotFound
}

func (s *LocalStore) AddItem(ctx context.Context, watchlistID string, input models.ItemInput) (models.WatchlistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lists, err := s.load()
	if err != nil {
		return models.WatchlistItem{}, err
	}

	for i := range lists {
		if lists[i].ID != watchlistID {
			continue
		}
		for _, existing := range lists[i].Items {
			if existing.ID == input.ID {
				return models.WatchlistItem{}, ErrItemExists
			}
		}
		item := models.WatchlistItem{
			ID:          input.ID,
			WatchlistID: watchlistID,
			Title:       input.Title,
			ReleaseYear: input.ReleaseYear,
			PosterURL:   input.PosterURL,
			CreatedAt:   time.Now().UTC(),
		}
		// newest first
		lists[i].Items = append([]models.WatchlistItem{item}, lists[i].Items...)
		if err := s.save(lists); err != nil {
			return models.WatchlistItem{}, err
		}
		return item, nil
	}
	return models.WatchlistItem{}, ErrWatchlistNotFound
}

func (s *LocalStore) SetItemWatched(ctx context.Context, watchlistID, itemID string, watched bool) (models.WatchlistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lists, err := s.load()
	if err != nil {
		return models.WatchlistItem{}, err
	}

	for i := range lists {
		if lists[i].ID != watchlistID {
			continue
		}
		for j := range lists[i].Items {
			if lists[i].Items[j].ID == itemID {
				lists[i].Items[j].Watched = watched
				if err := s.save(lists); err != nil {
					return models.WatchlistItem{}, err
				}
				return lists[i].Items[j], nil
			}
		}
		return models.WatchlistItem{}, ErrItemNotFound
	}
	return models.WatchlistItem{}, ErrWatchlistNotFound
}

func (s *LocalStore) DeleteItem(ctx context.Context, watchlistID, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lists, err := s.load()
	if err != nil {
		return err
	}

	for i := range lists {
		if lists[i].ID != watchlistID {
			continue
		}
		for j := range lists[i].Items {
			if lists[i].Items[j].ID == itemID {
				lists[i].Items = append(lists[i].Items[:j], lists[i].Items[j+1:]...)
				return s.save(lists)
			}
		}
		return ErrItemNotFound
	}
	return ErrWatchlistNotFound
}

// Clear wipes the persisted guest collection. Called when the actor signs in
// and the local data is discarded in favor of the server's.
func (s *LocalStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.Remove(s.path); err != nil {
		exists, statErr := afero.Exists(s.fs, s.path)
		if statErr == nil && !exists {
			return nil
		}
		return fmt.Errorf("clear local watchlists: %w", err)
	}
	return nil
}

func (s *LocalStore) load() ([]models.WatchlistWithItems, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		exists, statErr := afero.Exists(s.fs, s.path)
		if statErr == nil && !exists {
			return []models.WatchlistWithItems{}, nil
		}
		return nil, fmt.Errorf("read local watchlists: %w", err)
	}

	var lists []models.WatchlistWithItems
	if err := json.Unmarshal(data, &lists); err != nil {
		return nil, fmt.Errorf("parse local watchlists: %w", err)
	}
	return lists, nil
}

func (s *LocalStore) save(lists []models.WatchlistWithItems) error {
	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	data, err := json.MarshalIndent(lists, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal local watchlists: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write local watchlists: %w", err)
	}
	if err := s.fs.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replace local watchlists: %w", err)
	}
	return nil
}
