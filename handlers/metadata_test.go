package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"reelist/handlers"
	"reelist/models"
	"reelist/services/metadata"
)

type fakeMetadata struct {
	results []models.SearchResult
	rows    []models.TrendingRow
	err     error
}

func (f *fakeMetadata) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func (f *fakeMetadata) Trending(ctx context.Context) ([]models.TrendingRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func TestMetadataSearch(t *testing.T) {
	h := handlers.NewMetadataHandler(&fakeMetadata{
		results: []models.SearchResult{{ID: "603", MediaType: "movie", Title: "The Matrix"}},
	})

	req := httptest.NewRequest(http.MethodGet, "/search?q=matrix", nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var results []models.SearchResult
	if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
		t.Fatalf("failed to decode results: %v", err)
	}
	if len(results) != 1 || results[0].Title != "The Matrix" {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestMetadataSearchWithoutAPIKey(t *testing.T) {
	h := handlers.NewMetadataHandler(&fakeMetadata{err: metadata.ErrNotConfigured})

	req := httptest.NewRequest(http.MethodGet, "/search?q=matrix", nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
}

func TestMetadataTrending(t *testing.T) {
	h := handlers.NewMetadataHandler(&fakeMetadata{
		rows: []models.TrendingRow{
			{MediaType: "movie", Items: []models.SearchResult{{ID: "1", Title: "Movie"}}},
			{MediaType: "tv", Items: []models.SearchResult{{ID: "2", Title: "Show"}}},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/trending", nil)
	rec := httptest.NewRecorder()
	h.Trending(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var rows []models.TrendingRow
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("failed to decode trending rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 shelves, got %d", len(rows))
	}
}
