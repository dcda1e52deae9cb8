package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"reelist/models"
	"reelist/services/watchlists"
)

type watchlistsService interface {
	ListByOwner(ctx context.Context, ownerID string, populated bool) ([]models.WatchlistWithItems, error)
	Get(ctx context.Context, ownerID, id string) (models.WatchlistWithItems, error)
	GetDefault(ctx context.Context, ownerID string) (models.WatchlistWithItems, error)
	Create(ctx context.Context, ownerID, name string, isDefault bool) (models.WatchlistWithItems, error)
	Rename(ctx context.Context, ownerID, id, name string) (models.WatchlistWithItems, error)
	SetDefault(ctx context.Context, ownerID, id string, isDefault bool) (models.WatchlistWithItems, error)
	Delete(ctx context.Context, ownerID, id string) error
	AddItem(ctx context.Context, ownerID, watchlistID string, input models.ItemInput) (models.WatchlistItem, error)
	SetItemWatched(ctx context.Context, ownerID, watchlistID, itemID string, watched bool) (models.WatchlistItem, error)
	DeleteItem(ctx context.Context, ownerID, watchlistID, itemID string) error
}

var _ watchlistsService = (*watchlists.Service)(nil)

// WatchlistsHandler serves the watchlist resource API for the session's
// user.
type WatchlistsHandler struct {
	Service watchlistsService
}

func NewWatchlistsHandler(service watchlistsService) *WatchlistsHandler {
	return &WatchlistsHandler{Service: service}
}

// List returns the user's watchlists; ?populated=true embeds the items.
func (h *WatchlistsHandler) List(w http.ResponseWriter, r *http.Request) {
	populated := strings.EqualFold(r.URL.Query().Get("populated"), "true")

	lists, err := h.Service.ListByOwner(r.Context(), UserIDFrom(r.Context()), populated)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(lists)
}

// GetDefault returns the user's default watchlist, or a JSON null when none
// is flagged.
func (h *WatchlistsHandler) GetDefault(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	wl, err := h.Service.GetDefault(r.Context(), UserIDFrom(r.Context()))
	if errors.Is(err, watchlists.ErrNoDefaultWatchlist) {
		json.NewEncoder(w).Encode(nil)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(wl)
}

// Create makes a new watchlist for the user.
func (h *WatchlistsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name      string `json:"name"`
		IsDefault bool   `json:"isDefault"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	wl, err := h.Service.Create(r.Context(), UserIDFrom(r.Context()), body.Name, body.IsDefault)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(wl)
}

// Rename updates a watchlist's name.
func (h *WatchlistsHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var body struct {
		Name string `json:"name"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	wl, err := h.Service.Rename(r.Context(), UserIDFrom(r.Context()), id, body.Name)
	if err != nil {
		http.Error(w, err.Error(), watchlistStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(wl)
}

// SetDefault flips the default flag on a watchlist.
func (h *WatchlistsHandler) SetDefault(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var body struct {
		IsDefault bool `json:"isDefault"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	wl, err := h.Service.SetDefault(r.Context(), UserIDFrom(r.Context()), id, body.IsDefault)
	if err != nil {
		http.Error(w, err.Error(), watchlistStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(wl)
}

// Delete removes a watchlist. The default list is refused with a conflict.
func (h *WatchlistsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.Service.Delete(r.Context(), UserIDFrom(r.Context()), id); err != nil {
		http.Error(w, err.Error(), watchlistStatus(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddItem saves a title into the watchlist. A title already present answers
// 409, which the clients treat as success.
func (h *WatchlistsHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var body models.ItemInput
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	item, err := h.Service.AddItem(r.Context(), UserIDFrom(r.Context()), id, body)
	if err != nil {
		http.Error(w, err.Error(), watchlistStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(item)
}

// SetItemWatched sets the watched flag on an item.
func (h *WatchlistsHandler) SetItemWatched(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var body struct {
		Watched bool `json:"watched"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	item, err := h.Service.SetItemWatched(r.Context(), UserIDFrom(r.Context()), vars["id"], vars["itemID"], body.Watched)
	if err != nil {
		http.Error(w, err.Error(), watchlistStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(item)
}

// DeleteItem removes an item from a watchlist.
func (h *WatchlistsHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if err := h.Service.DeleteItem(r.Context(), UserIDFrom(r.Context()), vars["id"], vars["itemID"]); err != nil {
		http.Error(w, err.Error(), watchlistStatus(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func watchlistStatus(err error) int {
	switch {
	case errors.Is(err, watchlists.ErrWatchlistNotFound), errors.Is(err, watchlists.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, watchlists.ErrItemExists), errors.Is(err, watchlists.ErrDefaultWatchlist):
		return http.StatusConflict
	case errors.Is(err, watchlists.ErrItemIDRequired), errors.Is(err, watchlists.ErrOwnerIDRequired):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
