package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"reelist/models"
	"reelist/services/metadata"
)

type metadataService interface {
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
	Trending(ctx context.Context) ([]models.TrendingRow, error)
}

var _ metadataService = (*metadata.Service)(nil)

// MetadataHandler proxies title lookups so the TMDB key never reaches the
// browser.
type MetadataHandler struct {
	Service metadataService
}

func NewMetadataHandler(service metadataService) *MetadataHandler {
	return &MetadataHandler{Service: service}
}

func (h *MetadataHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))

	results, err := h.Service.Search(r.Context(), q)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

func (h *MetadataHandler) Trending(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.Trending(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rows)
}

func (h *MetadataHandler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	if errors.Is(err, metadata.ErrNotConfigured) {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
