// Package metadata looks up movie and TV titles from the external metadata
// source.
package metadata

import (
	"context"
	"errors"
	"net/http"

	"github.com/sourcegraph/conc/pool"

	"reelist/models"
)

// ErrNotConfigured is returned when no TMDB API key is set.
var ErrNotConfigured = errors.New("tmdb api key not configured")

// Service exposes title search and trending shelves.
type Service struct {
	client *tmdbClient
}

// NewService creates a metadata service using the provided TMDB credentials.
func NewService(tmdbAPIKey, language string) *Service {
	return &Service{client: newTMDBClient(tmdbAPIKey, language, nil)}
}

// NewServiceWithHTTPClient is NewService with an injectable HTTP client for
// tests.
func NewServiceWithHTTPClient(tmdbAPIKey, language string, httpc *http.Client) *Service {
	return &Service{client: newTMDBClient(tmdbAPIKey, language, httpc)}
}

// Search returns movie and TV titles matching the query.
func (s *Service) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	if !s.client.isConfigured() {
		return nil, ErrNotConfigured
	}
	if query == "" {
		return []models.SearchResult{}, nil
	}
	return s.client.searchMulti(ctx, query)
}

// Trending returns the movie and TV trending shelves, fetched in parallel.
func (s *Service) Trending(ctx context.Context) ([]models.TrendingRow, error) {
	if !s.client.isConfigured() {
		return nil, ErrNotConfigured
	}

	p := pool.NewWithResults[models.TrendingRow]().WithContext(ctx)
	for _, mediaType := range []string{"movie", "tv"} {
		p.Go(func(ctx context.Context) (models.TrendingRow, error) {
			items, err := s.client.trending(ctx, mediaType)
			if err != nil {
				return models.TrendingRow{}, err
			}
			return models.TrendingRow{MediaType: mediaType, Items: items}, nil
		})
	}

	return p.Wait()
}
