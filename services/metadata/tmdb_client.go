package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"

	"reelist/models"
)

const (
	tmdbBaseURL      = "https://api.themoviedb.org/3"
	tmdbImageBaseURL = "https://image.tmdb.org/t/p"
	// Optimized image sizes instead of "original": posters render in cards
	// a few hundred pixels wide, backdrops as page backgrounds.
	tmdbPosterSize   = "w500"
	tmdbBackdropSize = "w1280"
)

type tmdbClient struct {
	apiKey   string
	language string
	httpc    *http.Client

	// Rate limiting
	throttleMu  sync.Mutex
	lastRequest time.Time
	minInterval time.Duration
}

func newTMDBClient(apiKey, language string, httpc *http.Client) *tmdbClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &tmdbClient{
		apiKey:      strings.TrimSpace(apiKey),
		language:    language,
		httpc:       httpc,
		minInterval: 20 * time.Millisecond, // TMDB has generous rate limits
	}
}

func (c *tmdbClient) isConfigured() bool {
	return c.apiKey != ""
}

// doGET performs a rate-limited GET against the TMDB API, retrying transient
// failures with exponential backoff.
func (c *tmdbClient) doGET(ctx context.Context, endpoint string, params url.Values, v any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	full := tmdbBaseURL + endpoint + "?" + params.Encode()

	return retry.Do(
		func() error {
			c.throttleMu.Lock()
			if since := time.Since(c.lastRequest); since < c.minInterval {
				time.Sleep(c.minInterval - since)
			}
			c.lastRequest = time.Now()
			c.throttleMu.Unlock()

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}

			resp, err := c.httpc.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			switch {
			case resp.StatusCode == http.StatusOK:
				return json.NewDecoder(resp.Body).Decode(v)
			case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
				return fmt.Errorf("tmdb status %d", resp.StatusCode)
			default:
				return retry.Unrecoverable(fmt.Errorf("tmdb status %d", resp.StatusCode))
			}
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(300*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}

type tmdbListResponse struct {
	Results []tmdbEntry `json:"results"`
}

type tmdbEntry struct {
	ID           int64   `json:"id"`
	MediaType    string  `json:"media_type"`
	Title        string  `json:"title"` // movies
	Name         string  `json:"name"`  // tv
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"`   // movies
	FirstAirDate string  `json:"first_air_date"` // tv
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	VoteAverage  float64 `json:"vote_average"`
}

// searchMulti queries TMDB's multi search and keeps movie and tv entries
// only, the filter the web client has always applied.
func (c *tmdbClient) searchMulti(ctx context.Context, query string) ([]models.SearchResult, error) {
	var resp tmdbListResponse
	params := url.Values{"query": []string{query}, "include_adult": []string{"false"}}
	if err := c.doGET(ctx, "/search/multi", params, &resp); err != nil {
		return nil, fmt.Errorf("tmdb search: %w", err)
	}

	results := make([]models.SearchResult, 0, len(resp.Results))
	for _, e := range resp.Results {
		if e.MediaType != "movie" && e.MediaType != "tv" {
			continue
		}
		if r, ok := e.toResult(e.MediaType); ok {
			results = append(results, r)
		}
	}
	return results, nil
}

// trending fetches the day-trending list for a single media type.
func (c *tmdbClient) trending(ctx context.Context, mediaType string) ([]models.SearchResult, error) {
	var resp tmdbListResponse
	if err := c.doGET(ctx, "/trending/"+mediaType+"/day", nil, &resp); err != nil {
		return nil, fmt.Errorf("tmdb trending %s: %w", mediaType, err)
	}

	results := make([]models.SearchResult, 0, len(resp.Results))
	for _, e := range resp.Results {
		if r, ok := e.toResult(mediaType); ok {
			results = append(results, r)
		}
	}
	return results, nil
}

func (e tmdbEntry) toResult(mediaType string) (models.SearchResult, bool) {
	title := strings.TrimSpace(e.Title)
	if title == "" {
		title = strings.TrimSpace(e.Name)
	}
	if title == "" {
		return models.SearchResult{}, false
	}

	date := e.ReleaseDate
	if date == "" {
		date = e.FirstAirDate
	}

	return models.SearchResult{
		ID:          strconv.FormatInt(e.ID, 10),
		MediaType:   mediaType,
		Title:       title,
		Overview:    strings.TrimSpace(e.Overview),
		ReleaseYear: yearOf(date),
		PosterURL:   imageURL(tmdbPosterSize, e.PosterPath),
		BackdropURL: imageURL(tmdbBackdropSize, e.BackdropPath),
		VoteAverage: e.VoteAverage,
	}, true
}

func imageURL(size, path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return tmdbImageBaseURL + "/" + size + path
}

func yearOf(date string) int {
	date = strings.TrimSpace(date)
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
