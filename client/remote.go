package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"reelist/models"
)

// RemoteStore talks to the reelist REST API on behalf of an authenticated
// actor. It shares the Session's resty client, so the session cookie rides
// along on every request. The server's state is authoritative: callers
// re-read the full collection after every write instead of merging
// responses optimistically.
type RemoteStore struct {
	c *resty.Client
}

// NewRemoteStore wraps the given client, normally Session.Client().
func NewRemoteStore(c *resty.Client) *RemoteStore {
	return &RemoteStore{c: c}
}

func (s *RemoteStore) List(ctx context.Context) ([]models.WatchlistWithItems, error) {
	resp, err := s.c.R().
		SetContext(ctx).
		SetQueryParam("populated", "true").
		Get("/watchlists")
	if err != nil {
		return nil, fmt.Errorf("list watchlists: %w", err)
	}
	if err := checkStatus(resp, nil, nil); err != nil {
		return nil, err
	}

	var lists []models.WatchlistWithItems
	if err := json.Unmarshal(resp.Body(), &lists); err != nil {
		return nil, fmt.Errorf("parse watchlists response: %w", err)
	}
	return lists, nil
}

// Get fetches the full collection and scans for the match. The API has no
// single-resource read path.
func (s *RemoteStore) Get(ctx context.Context, id string) (models.WatchlistWithItems, error) {
	lists, err := s.List(ctx)
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

func (s *RemoteStore) Create(ctx context.Context, name string, isDefault bool) (models.WatchlistWithItems, error) {
	resp, err := s.c.R().
		SetContext(ctx).
		SetBody(map[string]any{"name": name, "isDefault": isDefault}).
		Post("/watchlists")
	if err != nil {
		return models.WatchlistWithItems{}, fmt.Errorf("create watchlist: %w", err)
	}
	if err := checkStatus(resp, nil, nil); err != nil {
		return models.WatchlistWithItems{}, err
	}

	var created models.WatchlistWithItems
	if err := json.Unmarshal(resp.Body(), &created); err != nil {
		return models.WatchlistWithItems{}, fmt.Errorf("parse create response: %w", err)
	}
	return created, nil
}

func (s *RemoteStore) Rename(ctx context.Context, id, name string) (models.Watchlist, error) {
	resp, err := s.c.R().
		SetContext(ctx).
		SetBody(map[string]any{"name": name}).
		Patch(fmt.Sprintf("/watchlists/%s/name", id))
	if err != nil {
		return models.Watchlist{}, fmt.Errorf("rename watchlist: %w", err)
	}
	if err := checkStatus(resp, ErrWatchlistNotFound, nil); err != nil {
		return models.Watchlist{}, err
	}

	var updated models.Watchlist
	if err := json.Unmarshal(resp.Body(), &updated); err != nil {
		return models.Watchlist{}, fmt.Errorf("parse rename response: %w", err)
	}
	return updated, nil
}

func (s *RemoteStore) SetDefault(ctx context.Context, id string) (models.Watchlist, error) {
	resp, err := s.c.R().
		SetContext(ctx).
		SetBody(map[string]any{"isDefault": true}).
		Patch(fmt.Sprintf("/watchlists/%s/default", id))
	if err != nil {
		return models.Watchlist{}, fmt.Errorf("set default watchlist: %w", err)
	}
	if err := checkStatus(resp, ErrWatchlistNotFound, nil); err != nil {
		return models.Watchlist{}, err
	}

	var updated models.Watchlist
	if err := json.Unmarshal(resp.Body(), &updated); err != nil {
		return models.Watchlist{}, fmt.Errorf("parse set-default response: %w", err)
	}
	return updated, nil
}

func (s *RemoteStore) Delete(ctx context.Context, id string) error {
	resp, err := s.c.R().
		SetContext(ctx).
		Delete(fmt.Sprintf("/watchlists/%s", id))
	if err != nil {
		return fmt.Errorf("delete watchlist: %w", err)
	}
	return checkStatus(resp, ErrWatchlistNotFound, ErrDefaultWatchlist)
}

func (s *RemoteStore) AddItem(ctx context.Context, watchlistID string, input models.ItemInput) (models.WatchlistItem, error) {
	resp, err := s.c.R().
		SetContext(ctx).
		SetBody(&input).
		Put(fmt.Sprintf("/watchlists/%s/items", watchlistID))
	if err != nil {
		return models.WatchlistItem{}, fmt.Errorf("add watchlist item: %w", err)
	}
	if err := checkStatus(resp, ErrWatchlistNotFound, ErrItemExists); err != nil {
		return models.WatchlistItem{}, err
	}

	var created models.WatchlistItem
	if err := json.Unmarshal(resp.Body(), &created); err != nil {
		return models.WatchlistItem{}, fmt.Errorf("parse add-item response: %w", err)
	}
	return created, nil
}

func (s *RemoteStore) SetItemWatched(ctx context.Context, watchlistID, itemID string, watched bool) (models.WatchlistItem, error) {
	resp, err := s.c.R().
		SetContext(ctx).
		SetBody(map[string]any{"watched": watched}).
		Patch(fmt.Sprintf("/watchlists/%s/items/%s/watched", watchlistID, itemID))
	if err != nil {
		return models.WatchlistItem{}, fmt.Errorf("set item watched: %w", err)
	}
	if err := checkStatus(resp, ErrItemNotFound, nil); err != nil {
		return models.WatchlistItem{}, err
	}

	var updated models.WatchlistItem
	if err := json.Unmarshal(resp.Body(), &updated); err != nil {
		return models.WatchlistItem{}, fmt.Errorf("parse set-watched response: %w", err)
	}
	return updated, nil
}

func (s *RemoteStore) DeleteItem(ctx context.Context, watchlistID, itemID string) error {
	resp, err := s.c.R().
		SetContext(ctx).
		Delete(fmt.Sprintf("/watchlists/%s/items/%s", watchlistID, itemID))
	if err != nil {
		return fmt.Errorf("delete watchlist item: %w", err)
	}
	return checkStatus(resp, ErrItemNotFound, nil)
}

// checkStatus maps API status codes onto the store's error set. What 404 and
// 409 mean depends on the route, so each call site supplies its own sentinels;
// a nil sentinel falls through to the generic error.
func checkStatus(resp *resty.Response, notFound, conflict error) error {
	if resp.IsSuccess() {
		return nil
	}
	switch resp.StatusCode() {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		if notFound != nil {
			return notFound
		}
	case http.StatusConflict:
		if conflict != nil {
			return conflict
		}
	}
	return fmt.Errorf("api returned %d: %s", resp.StatusCode(), resp.Body())
}
