package metadata_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"reelist/services/metadata"
)

// fakeTransport serves canned TMDB responses keyed by URL path.
type fakeTransport struct {
	responses map[string]string
	requests  []string
}

func (f *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	f.requests = append(f.requests, req.URL.Path)
	body, ok := f.responses[req.URL.Path]
	if !ok {
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Body:       io.NopCloser(strings.NewReader(`{"status_message":"not found"}`)),
			Header:     make(http.Header),
		}, nil
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}, nil
}

func newFakeService(responses map[string]string) (*metadata.Service, *fakeTransport) {
	transport := &fakeTransport{responses: responses}
	svc := metadata.NewServiceWithHTTPClient("test-key", "en-US", &http.Client{Transport: transport})
	return svc, transport
}

func TestSearchFiltersToMoviesAndTV(t *testing.T) {
	svc, _ := newFakeService(map[string]string{
		"/3/search/multi": `{"results":[
			{"id":603,"media_type":"movie","title":"The Matrix","release_date":"1999-03-31","poster_path":"/matrix.jpg","vote_average":8.2},
			{"id":1396,"media_type":"tv","name":"Breaking Bad","first_air_date":"2008-01-20"},
			{"id":6384,"media_type":"person","name":"Keanu Reeves"}
		]}`,
	})

	results, err := svc.Search(context.Background(), "matrix")
	require.NoError(t, err)
	require.Len(t, results, 2, "person entries are dropped")

	require.Equal(t, "603", results[0].ID)
	require.Equal(t, "movie", results[0].MediaType)
	require.Equal(t, "The Matrix", results[0].Title)
	require.Equal(t, 1999, results[0].ReleaseYear)
	require.Equal(t, "https://image.tmdb.org/t/p/w500/matrix.jpg", results[0].PosterURL)

	require.Equal(t, "Breaking Bad", results[1].Title, "tv entries fall back to name")
	require.Equal(t, 2008, results[1].ReleaseYear, "tv entries fall back to first_air_date")
}

func TestSearchEmptyQuery(t *testing.T) {
	svc, transport := newFakeService(nil)

	results, err := svc.Search(context.Background(), "")
	require.NoError(t, err)
	require.Empty(t, results)
	require.Empty(t, transport.requests, "empty query never hits the network")
}

func TestSearchRequiresAPIKey(t *testing.T) {
	svc := metadata.NewServiceWithHTTPClient("", "", &http.Client{Transport: &fakeTransport{}})

	_, err := svc.Search(context.Background(), "matrix")
	require.ErrorIs(t, err, metadata.ErrNotConfigured)

	_, err = svc.Trending(context.Background())
	require.ErrorIs(t, err, metadata.ErrNotConfigured)
}

func TestTrendingFetchesBothShelves(t *testing.T) {
	svc, _ := newFakeService(map[string]string{
		"/3/trending/movie/day": `{"results":[{"id":1,"title":"Movie One","release_date":"2024-06-01"}]}`,
		"/3/trending/tv/day":    `{"results":[{"id":2,"name":"Show One","first_air_date":"2023-02-02"}]}`,
	})

	rows, err := svc.Trending(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byType := map[string][]string{}
	for _, row := range rows {
		for _, item := range row.Items {
			byType[row.MediaType] = append(byType[row.MediaType], item.Title)
		}
	}
	require.Equal(t, []string{"Movie One"}, byType["movie"])
	require.Equal(t, []string{"Show One"}, byType["tv"])
}
