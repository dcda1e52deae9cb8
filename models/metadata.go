package models

// SearchResult is a single hit from the external metadata source, trimmed to
// what the watchlist UI needs. The ID is the TMDB identifier and doubles as
// the watchlist item key when a result is saved.
type SearchResult struct {
	ID          string  `json:"id"`
	MediaType   string  `json:"mediaType"` // movie | tv
	Title       string  `json:"title"`
	Overview    string  `json:"overview,omitempty"`
	ReleaseYear int     `json:"releaseYear,omitempty"`
	PosterURL   string  `json:"posterUrl,omitempty"`
	BackdropURL string  `json:"backdropUrl,omitempty"`
	VoteAverage float64 `json:"voteAverage,omitempty"`
}

// TrendingRow is one shelf of trending titles for the home view.
type TrendingRow struct {
	MediaType string         `json:"mediaType"`
	Items     []SearchResult `json:"items"`
}
